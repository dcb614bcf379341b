package sam

import (
	"fmt"
)

const (
	// Magic is ".SAM" read as a little-endian long
	Magic int32 = 0x2E53414D
	// Version is the only file version the decoder understands
	Version int32 = 1

	TwipsPerPixel = 20.0
	LongToFloat   = 65536.0
)

type Header struct {
	Magic     int32
	Version   int32
	FrameRate int
	X         int
	Y         int
	Width     int
	Height    int
}

func (h Header) String() string {
	return fmt.Sprintf("SAM v%d, fps: %d, bounds: %d,%d %dx%d", h.Version, h.FrameRate, h.X, h.Y, h.Width, h.Height)
}

func ReadHeader(d *BinaryDeserializer) (h Header, err error) {
	h.Magic, err = d.GetLong()
	if err != nil {
		return
	}
	if h.Magic != Magic {
		err = fmt.Errorf("%w: %#08x", ErrBadMagic, uint32(h.Magic))
		return
	}
	h.Version, err = d.GetLong()
	if err != nil {
		return
	}
	if h.Version != Version {
		err = fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
		return
	}

	rate, err := d.GetByte()
	if err != nil {
		return
	}
	h.FrameRate = int(rate)

	// bounds are stored in twips
	var bounds [4]int32
	for i := range bounds {
		bounds[i], err = d.GetLong()
		if err != nil {
			return
		}
	}
	h.X = twipsToPixels(bounds[0])
	h.Y = twipsToPixels(bounds[1])
	h.Width = twipsToPixels(bounds[2])
	h.Height = twipsToPixels(bounds[3])
	return
}

func twipsToPixels(v int32) int {
	return int(float32(v) / TwipsPerPixel)
}
