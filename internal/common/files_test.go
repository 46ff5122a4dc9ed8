package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spaces", in: "Load cell 1", want: "Load_cell_1"},
		{name: "qualified", in: "run01.Load_cell", want: "run01.Load_cell"},
		{name: "path hostile", in: "a/b\\c:d*e?f\"g<h>i|j", want: "abcdefghij"},
		{name: "surrounding space", in: "  Time  ", want: "Time"},
		{name: "control bytes", in: "ch\x01an", want: "chan"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeName(tc.in); got != tc.want {
				t.Fatalf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSha256OfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.bin")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	hash, size, err := Sha256OfFile(path)
	if err != nil {
		t.Fatalf("Sha256OfFile: %v", err)
	}
	if size != 3 {
		t.Fatalf("size = %d, want 3", size)
	}
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if hash != want {
		t.Fatalf("hash = %s, want %s", hash, want)
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.Start()
	m.SetTotalBytes(200)
	m.AddChannel(50)
	m.AddChannel(50)
	m.AddWarnings(1)
	m.Stop()

	snap := m.Snapshot()
	if snap.Channels != 2 {
		t.Fatalf("channels = %d, want 2", snap.Channels)
	}
	if snap.Bytes != 100 {
		t.Fatalf("bytes = %d, want 100", snap.Bytes)
	}
	if snap.Warnings != 1 {
		t.Fatalf("warnings = %d, want 1", snap.Warnings)
	}
	if got := snap.Completion(); got != 0.5 {
		t.Fatalf("completion = %v, want 0.5", got)
	}
	if snap.Duration <= 0 {
		t.Fatalf("duration = %v, want > 0", snap.Duration)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{in: 512, want: "512 B"},
		{in: 2048, want: "2.00 KiB"},
		{in: 5 * 1024 * 1024, want: "5.00 MiB"},
	}
	for _, tc := range tests {
		if got := FormatBytes(tc.in); got != tc.want {
			t.Fatalf("FormatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
