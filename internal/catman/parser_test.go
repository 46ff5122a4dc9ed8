package catman

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"example.com/catread/internal/common"
)

func TestParserEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	encodeTestChannel(t, &buf, testChannel{
		index: 1,
		name:  "Time",
		unit:  "s",
		dt:    0.25,
		data:  []float64{0, 0.25, 0.5, 0.75, 1.0},
	})
	encodeTestChannel(t, &buf, testChannel{
		index: 2,
		name:  "Load",
		unit:  "kN",
		data:  []float64{1.5, -2, 0, 7.25, 3},
	})

	p := NewParser(buf.Bytes(), "run01")
	f, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Warnings) != 0 {
		t.Fatalf("warnings = %v, want none", f.Warnings)
	}
	if len(f.Channels) != 2 {
		t.Fatalf("channels = %d, want 2", len(f.Channels))
	}
	if len(f.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(f.Groups))
	}

	g := f.Groups[0]
	if g.ChannelX == nil || g.ChannelX.Name != "Time" {
		t.Fatalf("ChannelX = %v, want the Time channel", g.ChannelX)
	}
	if len(g.ChannelsY) != 1 || g.ChannelsY[0].Name != "Load" {
		t.Fatalf("ChannelsY = %v, want [Load]", names(g.ChannelsY))
	}
	if g.ChannelsY[0].TimeRef != g.ChannelX {
		t.Fatalf("Load channel not linked to the time axis")
	}
	if g.Frequency != 1/g.ChannelX.Data[1] {
		t.Fatalf("Frequency = %v, want %v", g.Frequency, 1/g.ChannelX.Data[1])
	}
	want := []float64{1.5, -2, 0, 7.25, 3}
	if !reflect.DeepEqual(g.ChannelsY[0].Data, want) {
		t.Fatalf("Load data = %v, want %v", g.ChannelsY[0].Data, want)
	}
}

func TestParserIdempotent(t *testing.T) {
	var buf bytes.Buffer
	encodeTestChannel(t, &buf, testChannel{index: 1, name: "Time", dt: 0.1, data: []float64{0, 0.1, 0.2}})
	encodeTestChannel(t, &buf, testChannel{index: 2, name: "Temp", unit: "°C", export: 1, data: []float64{20, 21, 22}})

	first, err := NewParser(buf.Bytes(), "f").Parse()
	if err != nil {
		t.Fatalf("first Parse: %v", err)
	}
	second, err := NewParser(buf.Bytes(), "f").Parse()
	if err != nil {
		t.Fatalf("second Parse: %v", err)
	}
	if !reflect.DeepEqual(first.Channels, second.Channels) {
		t.Fatalf("repeated decode differs:\nfirst:  %+v\nsecond: %+v", first.Channels, second.Channels)
	}
	if !reflect.DeepEqual(first.Warnings, second.Warnings) {
		t.Fatalf("repeated decode warnings differ")
	}
}

func TestParserMixedPrecisionsAndLengths(t *testing.T) {
	var buf bytes.Buffer
	encodeTestChannel(t, &buf, testChannel{name: "Time", dt: 0.5, data: []float64{0, 0.5, 1, 1.5}})
	encodeTestChannel(t, &buf, testChannel{name: "Force", export: 2, min: 0, max: 100, raw16: []uint16{0, 16384, 32767, 8192}})
	encodeTestChannel(t, &buf, testChannel{name: "Slow time", dt: 1, data: []float64{0, 1}})
	encodeTestChannel(t, &buf, testChannel{name: "Pressure", export: 1, data: []float64{1, 2}})

	f, err := NewParser(buf.Bytes(), "mix").Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(f.Groups))
	}

	force := f.Channels[1]
	if force.Precision != 2 {
		t.Fatalf("Force precision = %d, want 2", force.Precision)
	}
	if force.Data[0] != 0 || force.Data[2] != 100 {
		t.Fatalf("Force descaled data = %v", force.Data)
	}
	if force.TimeRef == nil || force.TimeRef.Name != "Time" {
		t.Fatalf("Force TimeRef = %v, want Time", force.TimeRef)
	}

	slow := f.Groups[1]
	if slow.ChannelX == nil || slow.ChannelX.Name != "Slow time" {
		t.Fatalf("second group ChannelX = %v, want Slow time", slow.ChannelX)
	}
	if slow.IntervalStr != "1.000s" {
		t.Fatalf("second group interval = %q, want 1.000s", slow.IntervalStr)
	}
}

func TestParserTruncatedBuffer(t *testing.T) {
	var buf bytes.Buffer
	encodeTestChannel(t, &buf, testChannel{name: "Time", dt: 0.1, data: []float64{0, 0.1, 0.2}})
	whole := buf.Bytes()

	tests := []struct {
		name string
		cut  int
	}{
		{name: "inside basic header", cut: 4},
		{name: "inside extended header", cut: 60},
		{name: "inside body", cut: len(whole) - 9},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewParser(whole[:tc.cut], "t").Parse()
			if !errors.Is(err, ErrOutOfBounds) {
				t.Fatalf("Parse = %v, want ErrOutOfBounds", err)
			}
		})
	}
}

func TestParserEmptyBuffer(t *testing.T) {
	f, err := NewParser(nil, "empty").Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Channels) != 0 || len(f.Groups) != 0 {
		t.Fatalf("decoded something from an empty buffer: %+v", f)
	}
}

func TestParserMetrics(t *testing.T) {
	var buf bytes.Buffer
	encodeTestChannel(t, &buf, testChannel{name: "Time", dt: 0.1, data: []float64{0, 0.1}})
	encodeTestChannel(t, &buf, testChannel{name: "Load", data: []float64{1, 2}})

	m := common.NewMetrics()
	p := NewParser(buf.Bytes(), "m")
	p.Metrics = m
	if _, err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	snap := m.Snapshot()
	if snap.Channels != 2 {
		t.Fatalf("metrics channels = %d, want 2", snap.Channels)
	}
	if snap.Bytes != int64(buf.Len()) {
		t.Fatalf("metrics bytes = %d, want %d", snap.Bytes, buf.Len())
	}
	if snap.TotalBytes != int64(buf.Len()) {
		t.Fatalf("metrics total bytes = %d, want %d", snap.TotalBytes, buf.Len())
	}
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/data/run01.bin", want: "run01"},
		{path: "run01.bin", want: "run01"},
		{path: "noext", want: "noext"},
		{path: "/data/archive.tar.bin", want: "archive.tar"},
	}
	for _, tc := range tests {
		if got := FileStem(tc.path); got != tc.want {
			t.Fatalf("FileStem(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
