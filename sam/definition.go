package sam

import (
	"fmt"
)

// Definition is a fully decoded animation.
type Definition struct {
	StartFrame int
	EndFrame   int
	FrameRate  int
	X          int
	Y          int
	Width      int
	Height     int
	Frames     []Frame
	Images     []Image
	Labels     []Label
}

type Image struct {
	Sprite    SpriteID
	Name      string
	Width     int
	Height    int
	Transform Matrix
}

type Frame struct {
	Objects []Object
}

type Object struct {
	ID     int
	ResNum int
	// Transform is the placement of the object in the frame
	Transform Matrix
	Color     Color
}

type Label struct {
	Name  string
	Start int
	End   int
}

func (l Label) String() string {
	return fmt.Sprintf("Label: %s [%d-%d]", l.Name, l.Start, l.End)
}

// Color is a tint, all zero channels mean no tint.
type Color struct {
	R, G, B, A uint8
}

// Packed returns the tint as 0xRRGGBBAA
func (c Color) Packed() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// White is the colour of a freshly added object
var White = Color{R: 255, G: 255, B: 255, A: 255}

func (d *Definition) String() string {
	return fmt.Sprintf("Definition: fps: %d, frames: %d [%d-%d], images: %d, labels: %d",
		d.FrameRate, len(d.Frames), d.StartFrame, d.EndFrame, len(d.Images), len(d.Labels))
}

// Image returns the image an object's resource number points to.
func (d *Definition) Image(resNum int) (Image, bool) {
	if resNum < 0 || resNum >= len(d.Images) {
		return Image{}, false
	}
	return d.Images[resNum], true
}

// LabelAt finds a label by name
func (d *Definition) LabelAt(name string) (Label, bool) {
	for _, l := range d.Labels {
		if l.Name == name {
			return l, true
		}
	}
	return Label{}, false
}

// Validate checks the frame range invariants of the definition and its labels.
func (d *Definition) Validate() error {
	if d.StartFrame > d.EndFrame {
		return fmt.Errorf("%w: start frame %d after end frame %d", ErrInvalidDefinition, d.StartFrame, d.EndFrame)
	}
	if len(d.Frames) > 0 && (d.StartFrame < 0 || d.EndFrame >= len(d.Frames)) {
		return fmt.Errorf("%w: frame range [%d,%d] outside %d frames", ErrInvalidDefinition, d.StartFrame, d.EndFrame, len(d.Frames))
	}
	for _, l := range d.Labels {
		if l.Start > l.End || l.Start < d.StartFrame || l.End > d.EndFrame {
			return fmt.Errorf("%w: label %q range [%d,%d]", ErrInvalidDefinition, l.Name, l.Start, l.End)
		}
	}
	return nil
}
