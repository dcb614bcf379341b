package sam

import (
	"bytes"
	"encoding/binary"
)

// samWriter builds .sam streams for tests.
type samWriter struct {
	buf bytes.Buffer
}

func (w *samWriter) long(v int32) *samWriter {
	binary.Write(&w.buf, binary.LittleEndian, v)
	return w
}

func (w *samWriter) short(v int16) *samWriter {
	binary.Write(&w.buf, binary.LittleEndian, v)
	return w
}

func (w *samWriter) ushort(v uint16) *samWriter {
	binary.Write(&w.buf, binary.LittleEndian, v)
	return w
}

func (w *samWriter) u8(v byte) *samWriter {
	w.buf.WriteByte(v)
	return w
}

func (w *samWriter) str(s string) *samWriter {
	w.ushort(uint16(len(s)))
	w.buf.WriteString(s)
	return w
}

// header writes magic, version, fps and bounds in pixels
func (w *samWriter) header(fps byte, x, y, width, height int32) *samWriter {
	return w.long(Magic).long(Version).u8(fps).
		long(x * 20).long(y * 20).long(width * 20).long(height * 20)
}

// identityImage writes an image with an identity matrix and no offset
func (w *samWriter) identityImage(name string, width, height int16) *samWriter {
	const one = 65536 * 20
	return w.str(name).short(width).short(height).
		long(one).long(0).long(0).long(one).
		short(0).short(0)
}

func (w *samWriter) data() []byte {
	return w.buf.Bytes()
}
