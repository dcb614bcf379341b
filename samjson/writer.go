// Package samjson writes a sam.Definition in the compact JSON layout read
// by the runtime:
//
//	{"fps":24,"x":0,"y":0,"w":100,"h":100,
//	 "imgs":[{"img":"hero","t":[1,0,0,0,1,0,0,0,1]}],
//	 "sFrame":0,"eFrame":0,
//	 "frames":[{"objects":[{"resNum":0,"t":[1,0,0,0,1,0,0,0,1],"c":4278190335}]}],
//	 "labels":[{"name":"idle","start":0,"end":0}]}
//
// The output is a single line without whitespace or trailing newline. Key
// order is fixed, slices keep their order, and "c" is only written for a
// non-zero packed tint. Transform terms are written as the shortest decimal
// that reads back as the same float32, in %g style.
package samjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"

	"github.com/ddvk/sajson/sam"
)

var ErrNilDefinition = errors.New("nil definition")

// Marshal returns the JSON document for def.
func Marshal(def *sam.Definition) ([]byte, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	e := encoder{}
	e.definition(def)
	return e.buf, nil
}

// Write writes the JSON document for def to w.
func Write(w io.Writer, def *sam.Definition) error {
	data, err := Marshal(def)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

type encoder struct {
	buf []byte
}

func (e *encoder) raw(s string) {
	e.buf = append(e.buf, s...)
}

func (e *encoder) intField(key string, v int) {
	e.key(key)
	e.buf = strconv.AppendInt(e.buf, int64(v), 10)
}

// key writes "key": and expects the caller to have written any separator
func (e *encoder) key(key string) {
	e.buf = append(e.buf, '"')
	e.buf = append(e.buf, key...)
	e.buf = append(e.buf, '"', ':')
}

func (e *encoder) definition(def *sam.Definition) {
	e.raw("{")
	e.intField("fps", def.FrameRate)
	e.raw(",")
	e.intField("x", def.X)
	e.raw(",")
	e.intField("y", def.Y)
	e.raw(",")
	e.intField("w", def.Width)
	e.raw(",")
	e.intField("h", def.Height)
	e.raw(",")

	e.key("imgs")
	e.raw("[")
	for i, img := range def.Images {
		if i > 0 {
			e.raw(",")
		}
		e.image(img)
	}
	e.raw("],")

	e.intField("sFrame", def.StartFrame)
	e.raw(",")
	e.intField("eFrame", def.EndFrame)
	e.raw(",")

	e.key("frames")
	e.raw("[")
	for i, frame := range def.Frames {
		if i > 0 {
			e.raw(",")
		}
		e.frame(frame)
	}
	e.raw("],")

	e.key("labels")
	e.raw("[")
	for i, label := range def.Labels {
		if i > 0 {
			e.raw(",")
		}
		e.label(label)
	}
	e.raw("]}")
}

func (e *encoder) image(img sam.Image) {
	e.raw("{")
	e.key("img")
	e.quoted(img.Name)
	e.raw(",")
	e.transform(img.Transform)
	e.raw("}")
}

func (e *encoder) frame(frame sam.Frame) {
	e.raw("{")
	e.key("objects")
	e.raw("[")
	for i, obj := range frame.Objects {
		if i > 0 {
			e.raw(",")
		}
		e.object(obj)
	}
	e.raw("]}")
}

func (e *encoder) object(obj sam.Object) {
	e.raw("{")
	e.intField("resNum", obj.ResNum)
	e.raw(",")
	e.transform(obj.Transform)
	if c := obj.Color.Packed(); c != 0 {
		e.raw(",")
		e.key("c")
		e.buf = strconv.AppendUint(e.buf, uint64(c), 10)
	}
	e.raw("}")
}

func (e *encoder) label(label sam.Label) {
	e.raw("{")
	e.key("name")
	e.quoted(label.Name)
	e.raw(",")
	e.intField("start", label.Start)
	e.raw(",")
	e.intField("end", label.End)
	e.raw("}")
}

func (e *encoder) transform(m sam.Matrix) {
	e.key("t")
	e.raw("[")
	for i, v := range m.Coefficients() {
		if i > 0 {
			e.raw(",")
		}
		e.buf = AppendFloat(e.buf, v)
	}
	e.raw("]")
}

func (e *encoder) quoted(s string) {
	e.buf = AppendString(e.buf, s)
}

// AppendFloat appends v as the shortest %g decimal that parses back to the
// same float32. Negative zero is written as 0, NaN and infinities, which
// JSON cannot carry, as 0 too.
func AppendFloat(dst []byte, v float32) []byte {
	f := float64(v)
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return append(dst, '0')
	}
	return strconv.AppendFloat(dst, f, 'g', -1, 32)
}

// AppendString appends s as a quoted JSON string. Quotes, backslashes and
// control characters are escaped, invalid UTF-8 becomes U+FFFD, and HTML
// characters are left alone.
func AppendString(dst []byte, s string) []byte {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	// encoding a string cannot fail
	_ = enc.Encode(s)
	return append(dst, bytes.TrimSuffix(b.Bytes(), []byte("\n"))...)
}
