package sam

import (
	"fmt"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"
)

// frame flags
const (
	FrameRemoves   = 0x01
	FrameAdds      = 0x02
	FrameMoves     = 0x04
	FrameFrameName = 0x08
)

// move flags, the low bits carry the object id
const (
	MoveRotate     = 0x4000
	MoveColor      = 0x2000
	MoveMatrix     = 0x1000
	MoveLongCoords = 0x0800

	addIdMask  = 0x07FF
	moveIdMask = 0x03FF
)

type Option func(*Decoder)

// Strict makes unresolved sprites a decode failure
func Strict() Option {
	return func(d *Decoder) {
		d.strict = true
	}
}

func WithResolver(r SpriteResolver) Option {
	return func(d *Decoder) {
		if r != nil {
			d.resolver = r
		}
	}
}

// Decoder turns .sam bytes into a Definition. It holds no per-file state
// and can be shared.
type Decoder struct {
	strict   bool
	resolver SpriteResolver
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		resolver: unresolved{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses data read from source. The source path is only used to
// locate the images next to the file; it may be empty.
func (dec *Decoder) Decode(source string, data []byte) (*Definition, error) {
	r := &definitionReader{
		d:   NewDeserializer(data),
		dec: dec,
		def: &Definition{},
	}
	if source != "" {
		r.dir = filepath.Dir(source)
	}
	if err := r.read(); err != nil {
		DebugBuffer(data, r.d.Pos())
		return nil, &DecodeError{Offset: r.d.Pos(), Err: err}
	}
	return r.def, nil
}

// Release hands the valid sprites of def back to the resolver when it is a
// SpriteReleaser and returns how many were released. def itself is left
// untouched; its sprite ids must not be used afterwards.
func (dec *Decoder) Release(def *Definition) int {
	releaser, ok := dec.resolver.(SpriteReleaser)
	if !ok || def == nil {
		return 0
	}
	n := 0
	for _, image := range def.Images {
		if !image.Sprite.Valid() {
			continue
		}
		releaser.ReleaseSprite(image.Sprite)
		n++
	}
	return n
}

type definitionReader struct {
	d   *BinaryDeserializer
	dec *Decoder
	def *Definition
	dir string
}

func (r *definitionReader) read() (err error) {
	header, err := ReadHeader(r.d)
	if err != nil {
		return
	}
	log.Trace(header)

	r.def.FrameRate = header.FrameRate
	r.def.X = header.X
	r.def.Y = header.Y
	r.def.Width = header.Width
	r.def.Height = header.Height

	err = r.readImages()
	if err != nil {
		return
	}
	err = r.readFrames()
	if err != nil {
		return
	}
	r.finishLabels()

	if n := r.d.Remaining(); n > 0 {
		log.Warnf("ignoring %d trailing bytes", n)
	}
	return r.def.Validate()
}

func (r *definitionReader) readImages() (err error) {
	count, err := r.d.GetUShort()
	if err != nil {
		return
	}
	r.def.Images = make([]Image, 0, count)
	for i := 0; i < int(count); i++ {
		var image Image
		image, err = r.readImage()
		if err != nil {
			return
		}
		log.Tracef("image %d: %s %dx%d", i, image.Name, image.Width, image.Height)
		r.def.Images = append(r.def.Images, image)
	}
	return
}

func (r *definitionReader) readImage() (image Image, err error) {
	image.Name, err = r.d.GetString()
	if err != nil {
		return
	}
	w, err := r.d.GetShort()
	if err != nil {
		return
	}
	h, err := r.d.GetShort()
	if err != nil {
		return
	}
	image.Width = int(w)
	image.Height = int(h)

	var terms [4]int32
	for i := range terms {
		terms[i], err = r.d.GetLong()
		if err != nil {
			return
		}
	}
	tx, err := r.d.GetShort()
	if err != nil {
		return
	}
	ty, err := r.d.GetShort()
	if err != nil {
		return
	}

	const scale = LongToFloat * TwipsPerPixel
	image.Transform = Identity()
	image.Transform[0][0] = float32(terms[0]) / scale
	image.Transform[0][1] = -float32(terms[1]) / scale
	image.Transform[1][0] = -float32(terms[2]) / scale
	image.Transform[1][1] = float32(terms[3]) / scale
	image.Transform[0][2] = float32(tx) / TwipsPerPixel
	image.Transform[1][2] = float32(ty) / TwipsPerPixel

	path := image.Name
	if r.dir != "" {
		path = filepath.Join(r.dir, image.Name)
	}
	image.Sprite = r.dec.resolver.ResolveSprite(path)
	if !image.Sprite.Valid() {
		if r.dec.strict {
			err = fmt.Errorf("%w: %s", ErrSpriteUnresolved, path)
			return
		}
		log.Tracef("sprite not resolved: %s", path)
	}
	return
}

func (r *definitionReader) readFrames() (err error) {
	count, err := r.d.GetUShort()
	if err != nil {
		return
	}
	if count == 0 {
		return ErrNoFrames
	}
	r.def.StartFrame = 0
	r.def.EndFrame = int(count) - 1
	r.def.Frames = make([]Frame, count)

	stage := NewDisplayList()
	for frameNum := 0; frameNum < int(count); frameNum++ {
		err = r.readFrame(frameNum, &stage)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frameNum, err)
		}
		r.def.Frames[frameNum].Objects = stage.Snapshot()
		log.Tracef("frame %d: %d objects", frameNum, stage.Entries())
	}
	return
}

func (r *definitionReader) readFrame(frameNum int, stage *DisplayList) (err error) {
	flags, err := r.d.GetByte()
	if err != nil {
		return
	}

	if flags&FrameRemoves != 0 {
		var n int
		n, err = r.d.GetCount()
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			var id uint16
			id, err = r.d.GetUShort()
			if err != nil {
				return
			}
			stage.Remove(int(id))
		}
	}

	if flags&FrameAdds != 0 {
		var n int
		n, err = r.d.GetCount()
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			var id uint16
			id, err = r.d.GetUShort()
			if err != nil {
				return
			}
			var resNum byte
			resNum, err = r.d.GetByte()
			if err != nil {
				return
			}
			stage.Add(int(id&addIdMask), int(resNum))
		}
	}

	if flags&FrameMoves != 0 {
		var n int
		n, err = r.d.GetCount()
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			err = r.readMove(stage)
			if err != nil {
				return
			}
		}
	}

	if flags&FrameFrameName != 0 {
		var name string
		name, err = r.d.GetString()
		if err != nil {
			return
		}
		r.def.Labels = append(r.def.Labels, Label{Name: name, Start: frameNum})
	}
	return
}

func (r *definitionReader) readMove(stage *DisplayList) (err error) {
	word, err := r.d.GetUShort()
	if err != nil {
		return
	}

	linear := Identity()
	switch {
	case word&MoveMatrix != 0:
		var terms [4]int32
		for i := range terms {
			terms[i], err = r.d.GetLong()
			if err != nil {
				return
			}
		}
		linear[0][0] = float32(terms[0]) / LongToFloat
		linear[0][1] = -float32(terms[1]) / LongToFloat
		linear[1][0] = -float32(terms[2]) / LongToFloat
		linear[1][1] = float32(terms[3]) / LongToFloat
	case word&MoveRotate != 0:
		var rot int16
		rot, err = r.d.GetShort()
		if err != nil {
			return
		}
		linear = Rotation(float64(rot) / 1000)
	}

	var tx, ty float32
	if word&MoveLongCoords != 0 {
		var x, y int32
		if x, err = r.d.GetLong(); err != nil {
			return
		}
		if y, err = r.d.GetLong(); err != nil {
			return
		}
		tx, ty = float32(x), float32(y)
	} else {
		var x, y int16
		if x, err = r.d.GetShort(); err != nil {
			return
		}
		if y, err = r.d.GetShort(); err != nil {
			return
		}
		tx, ty = float32(x), float32(y)
	}

	var color Color
	hasColor := word&MoveColor != 0
	if hasColor {
		var rgba []byte
		rgba, err = r.d.GetBytes(4)
		if err != nil {
			return
		}
		color = Color{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	}

	id := int(word & moveIdMask)
	obj, ok := stage.Get(id)
	if !ok {
		log.Debugf("move for unknown object %d", id)
		return
	}
	obj.Transform = Translation(tx/TwipsPerPixel, ty/TwipsPerPixel).Mul(linear)
	if hasColor {
		obj.Color = color
	}
	return
}

// finishLabels orders labels by start frame; each one runs until the next
// one begins.
func (r *definitionReader) finishLabels() {
	labels := r.def.Labels
	sort.SliceStable(labels, func(i, j int) bool {
		return labels[i].Start < labels[j].Start
	})
	for i := range labels {
		if i < len(labels)-1 {
			labels[i].End = labels[i+1].Start - 1
		} else {
			labels[i].End = r.def.EndFrame
		}
	}
}
