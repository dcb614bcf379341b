package samjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/ddvk/sajson/sam"
	"github.com/tidwall/gjson"
)

func heroDefinition() *sam.Definition {
	return &sam.Definition{
		FrameRate: 24,
		Width:     100,
		Height:    100,
		Images: []sam.Image{
			{Name: "hero", Sprite: sam.InvalidSprite, Width: 64, Height: 64, Transform: sam.Identity()},
		},
		Frames: []sam.Frame{
			{Objects: []sam.Object{{ID: 0, ResNum: 0, Transform: sam.Identity()}}},
		},
		Labels: []sam.Label{{Name: "idle", Start: 0, End: 0}},
	}
}

func mustMarshal(t *testing.T, def *sam.Definition) string {
	t.Helper()
	data, err := Marshal(def)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !gjson.ValidBytes(data) || !json.Valid(data) {
		t.Fatalf("invalid JSON: %s", data)
	}
	return string(data)
}

func TestMarshalEndToEnd(t *testing.T) {
	want := `{"fps":24,"x":0,"y":0,"w":100,"h":100,` +
		`"imgs":[{"img":"hero","t":[1,0,0,0,1,0,0,0,1]}],` +
		`"sFrame":0,"eFrame":0,` +
		`"frames":[{"objects":[{"resNum":0,"t":[1,0,0,0,1,0,0,0,1]}]}],` +
		`"labels":[{"name":"idle","start":0,"end":0}]}`

	got := mustMarshal(t, heroDefinition())
	if got != want {
		t.Errorf("output mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, heroDefinition()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if strings.HasSuffix(buf.String(), "\n") {
		t.Error("output must not end with a newline")
	}
	if strings.ContainsAny(buf.String(), " \t\r\n") {
		t.Errorf("output contains whitespace: %s", buf.String())
	}
}

func TestWriteNilDefinition(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); !errors.Is(err, ErrNilDefinition) {
		t.Errorf("got %v, want ErrNilDefinition", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %q", buf.String())
	}
}

func TestTopLevelKeyOrder(t *testing.T) {
	want := []string{"fps", "x", "y", "w", "h", "imgs", "sFrame", "eFrame", "frames", "labels"}

	defs := map[string]*sam.Definition{
		"empty": {},
		"hero":  heroDefinition(),
		"bounds": {
			FrameRate: 60, X: -10, Y: 20, Width: 1, Height: 2,
			StartFrame: 1, EndFrame: 2, Frames: make([]sam.Frame, 3),
		},
	}
	for name, def := range defs {
		t.Run(name, func(t *testing.T) {
			var keys []string
			gjson.Parse(mustMarshal(t, def)).ForEach(func(key, _ gjson.Result) bool {
				keys = append(keys, key.String())
				return true
			})
			if strings.Join(keys, ",") != strings.Join(want, ",") {
				t.Errorf("keys: got %v, want %v", keys, want)
			}
		})
	}
}

func TestEmptyCollections(t *testing.T) {
	got := mustMarshal(t, &sam.Definition{})
	want := `{"fps":0,"x":0,"y":0,"w":0,"h":0,"imgs":[],"sFrame":0,"eFrame":0,"frames":[],"labels":[]}`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	got = mustMarshal(t, &sam.Definition{Frames: []sam.Frame{{}}})
	if !strings.Contains(got, `"frames":[{"objects":[]}]`) {
		t.Errorf("frame without objects: %s", got)
	}
}

func TestColorField(t *testing.T) {
	tests := []struct {
		name  string
		color sam.Color
		want  string
	}{
		{"no tint", sam.Color{}, `{"resNum":0,"t":[1,0,0,0,1,0,0,0,1]}`},
		{"red", sam.Color{R: 255, A: 255}, `{"resNum":0,"t":[1,0,0,0,1,0,0,0,1],"c":4278190335}`},
		{"white", sam.White, `{"resNum":0,"t":[1,0,0,0,1,0,0,0,1],"c":4294967295}`},
		{"alpha only", sam.Color{A: 1}, `{"resNum":0,"t":[1,0,0,0,1,0,0,0,1],"c":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := &sam.Definition{Frames: []sam.Frame{{Objects: []sam.Object{
				{Transform: sam.Identity(), Color: tt.color},
			}}}}
			got := gjson.Get(mustMarshal(t, def), "frames.0.objects.0").Raw
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOrderingPreserved(t *testing.T) {
	def := &sam.Definition{}
	for f := 0; f < 4; f++ {
		var frame sam.Frame
		// object ids deliberately descending, resNum carries the position
		for o := 0; o < 5; o++ {
			frame.Objects = append(frame.Objects, sam.Object{ID: 100 - o, ResNum: f*10 + o, Transform: sam.Identity()})
		}
		def.Frames = append(def.Frames, frame)
	}
	def.Images = []sam.Image{{Name: "z"}, {Name: "a"}, {Name: "m"}}
	def.Labels = []sam.Label{{Name: "late", Start: 3, End: 3}, {Name: "early", Start: 0, End: 2}}
	def.EndFrame = 3

	out := mustMarshal(t, def)

	for f := 0; f < 4; f++ {
		objects := gjson.Get(out, "frames."+strconv.Itoa(f)+".objects").Array()
		if len(objects) != 5 {
			t.Fatalf("frame %d: got %d objects", f, len(objects))
		}
		for o, obj := range objects {
			if got := obj.Get("resNum").Int(); got != int64(f*10+o) {
				t.Errorf("frame %d object %d: resNum %d", f, o, got)
			}
		}
	}
	if got := gjson.Get(out, "imgs.#.img").String(); got != `["z","a","m"]` {
		t.Errorf("image order: %s", got)
	}
	if got := gjson.Get(out, "labels.#.name").String(); got != `["late","early"]` {
		t.Errorf("label order: %s", got)
	}
}

func TestTransformCoefficients(t *testing.T) {
	m := sam.Matrix{{2, -0.5, 10.25}, {0.1, 1e6, -3}, {0, 0, 1}}
	def := &sam.Definition{Images: []sam.Image{{Name: "a", Transform: m}}}

	got := gjson.Get(mustMarshal(t, def), "imgs.0.t").Raw
	want := `[2,-0.5,10.25,0.1,1e+06,-3,0,0,1]`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestAppendFloat(t *testing.T) {
	tests := []struct {
		v    float32
		want string
	}{
		{0, "0"},
		{float32(math.Copysign(0, -1)), "0"},
		{1, "1"},
		{-1, "-1"},
		{0.05, "0.05"},
		{1.0 / 3, "0.33333334"},
		{123456, "123456"},
		{1234567, "1.234567e+06"},
		{0.00001, "1e-05"},
		{float32(math.NaN()), "0"},
		{float32(math.Inf(1)), "0"},
		{float32(math.Inf(-1)), "0"},
	}
	for _, tt := range tests {
		if got := string(AppendFloat(nil, tt.v)); got != tt.want {
			t.Errorf("AppendFloat(%v): got %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestAppendString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hero", `"hero"`},
		{"", `""`},
		{`say "hi"`, `"say \"hi\""`},
		{`C:\art\hero.png`, `"C:\\art\\hero.png"`},
		{"line\nbreak\ttab", `"line\nbreak\ttab"`},
		{"bell\x01", `"bell\u0001"`},
		{"<b>&amp;</b>", `"<b>&amp;</b>"`},
		{"héros", `"héros"`},
		{"bad\xffutf8", `"bad\ufffdutf8"`},
	}
	for _, tt := range tests {
		got := string(AppendString(nil, tt.in))
		if got != tt.want {
			t.Errorf("AppendString(%q): got %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestStringsRoundTrip(t *testing.T) {
	name := "quote\" slash\\ nl\n ctrl\x1f"
	def := &sam.Definition{
		Images: []sam.Image{{Name: name, Transform: sam.Identity()}},
		Labels: []sam.Label{{Name: name}},
	}
	out := mustMarshal(t, def)
	if got := gjson.Get(out, "imgs.0.img").String(); got != name {
		t.Errorf("img: got %q, want %q", got, name)
	}
	if got := gjson.Get(out, "labels.0.name").String(); got != name {
		t.Errorf("label: got %q, want %q", got, name)
	}
}
