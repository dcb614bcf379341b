package sam

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

type reader interface {
	io.ByteReader
	io.Reader
}

// BinaryDeserializer reads the little-endian primitives of a .sam stream
// and keeps track of the current offset for error reporting.
type BinaryDeserializer struct {
	_r       reader
	position int
	max      int
}

// NewDeserializer returns a deserializer over the whole buffer
func NewDeserializer(buffer []byte) *BinaryDeserializer {
	return &BinaryDeserializer{
		_r:  bytes.NewReader(buffer),
		max: len(buffer),
	}
}

// Pos current position in the stream
func (d *BinaryDeserializer) Pos() int {
	return d.position
}

// Remaining bytes not consumed yet
func (d *BinaryDeserializer) Remaining() int {
	return d.max - d.position
}

func (d *BinaryDeserializer) Read(b []byte) (n int, err error) {
	n, err = d._r.Read(b)
	d.position += n
	return
}

func (d *BinaryDeserializer) ReadByte() (b byte, err error) {
	b, err = d._r.ReadByte()
	if err != nil {
		return b, d.truncated(err)
	}
	d.position += 1
	return
}

func (d *BinaryDeserializer) GetByte() (byte, error) {
	return d.ReadByte()
}

func (d *BinaryDeserializer) GetBytes(size int) (result []byte, err error) {
	if size > d.Remaining() {
		return nil, d.truncated(io.ErrUnexpectedEOF)
	}
	result = make([]byte, size)
	_, err = io.ReadFull(d, result)
	if err != nil {
		return nil, d.truncated(err)
	}
	return
}

// GetShort reads a signed 16 bit value
func (d *BinaryDeserializer) GetShort() (result int16, err error) {
	err = d.truncated(binary.Read(d, binary.LittleEndian, &result))
	return
}

// GetUShort reads an unsigned 16 bit value, used for counts and flag words
func (d *BinaryDeserializer) GetUShort() (result uint16, err error) {
	err = d.truncated(binary.Read(d, binary.LittleEndian, &result))
	return
}

// GetLong reads a signed 32 bit value
func (d *BinaryDeserializer) GetLong() (result int32, err error) {
	err = d.truncated(binary.Read(d, binary.LittleEndian, &result))
	return
}

// GetString reads a short length prefix followed by that many bytes
func (d *BinaryDeserializer) GetString() (string, error) {
	length, err := d.GetUShort()
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}
	buf, err := d.GetBytes(int(length))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// GetCount reads a byte count, escaped to a short when the byte is 255
func (d *BinaryDeserializer) GetCount() (int, error) {
	b, err := d.GetByte()
	if err != nil {
		return 0, err
	}
	if b != 0xFF {
		return int(b), nil
	}
	n, err := d.GetUShort()
	return int(n), err
}

func (d *BinaryDeserializer) truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}

// DebugBuffer logs the bytes around pos with a marker under pos
func DebugBuffer(buffer []byte, pos int) {
	if !log.IsLevelEnabled(log.DebugLevel) {
		return
	}
	const window = 16
	start := pos - window
	if start < 0 {
		start = 0
	}
	end := pos + window
	if end > len(buffer) {
		end = len(buffer)
	}
	if start > end {
		start = end
	}
	padding := strings.Repeat("  ", pos-start)
	log.Debugf("%s", hex.EncodeToString(buffer[start:end]))
	log.Debugf("%s^  pos: %d (max: %d x%x)", padding, pos, len(buffer), len(buffer))
}
