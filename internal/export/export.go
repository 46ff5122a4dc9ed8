package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"example.com/catread/internal/catman"
	"example.com/catread/internal/common"
)

// Export modes accepted by the Save functions.
const (
	ModeCSV  = "csv"
	ModeJSON = "json"
)

var ErrUnsupportedMode = errors.New("unsupported export mode")

// GroupCSV writes one row per sample: the time value first, then every Y
// channel, tab separated.
func GroupCSV(w io.Writer, g *catman.Group) error {
	bw := bufio.NewWriter(w)
	n := groupSampleCount(g)
	for i := 0; i < n; i++ {
		if g.ChannelX != nil {
			bw.WriteString(formatSample(g.ChannelX.Data[i]))
		}
		for _, ch := range g.ChannelsY {
			bw.WriteByte('\t')
			bw.WriteString(formatSample(ch.Data[i]))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// GroupJSON writes the group as {"X": [...], "Y0": [...], ...}. The X key is
// omitted when the group has no time channel.
func GroupJSON(w io.Writer, g *catman.Group) error {
	data := make(map[string][]float64, len(g.ChannelsY)+1)
	if g.ChannelX != nil {
		data["X"] = g.ChannelX.Data
	}
	for i, ch := range g.ChannelsY {
		data[fmt.Sprintf("Y%d", i)] = ch.Data
	}
	return writeJSON(w, data)
}

// ChannelCSV writes time/value rows for a single channel. The time column is
// empty when the channel has no time reference.
func ChannelCSV(w io.Writer, ch *catman.Channel) error {
	bw := bufio.NewWriter(w)
	for i := range ch.Data {
		if ch.TimeRef != nil {
			bw.WriteString(formatSample(ch.TimeRef.Data[i]))
		}
		bw.WriteByte('\t')
		bw.WriteString(formatSample(ch.Data[i]))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ChannelJSON writes {"X": [...], "Y": [...]}, X omitted when unlinked.
func ChannelJSON(w io.Writer, ch *catman.Channel) error {
	data := make(map[string][]float64, 2)
	if ch.TimeRef != nil {
		data["X"] = ch.TimeRef.Data
	}
	data["Y"] = ch.Data
	return writeJSON(w, data)
}

// SaveChannel writes the channel under dir as <FullName>.<mode>. Time
// channels and empty channels are not saved on their own; the returned path
// is empty in that case.
func SaveChannel(ch *catman.Channel, dir, mode string) (string, error) {
	if ch.IsTime || ch.Length == 0 {
		return "", nil
	}
	if err := common.EnsureDir(dir); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, common.SanitizeName(ch.FullName)+"."+mode)
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()
	switch mode {
	case ModeCSV:
		err = ChannelCSV(f, ch)
	case ModeJSON:
		err = ChannelJSON(f, ch)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
	if err != nil {
		return "", err
	}
	return dest, f.Close()
}

// SaveGroup writes the group under dir as <FullName>.<mode>. A group with a
// single Y channel is saved as that channel, matching the acquisition
// software's export layout.
func SaveGroup(g *catman.Group, dir, mode string) (string, error) {
	if mode != ModeCSV && mode != ModeJSON {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
	if len(g.ChannelsY) == 1 {
		return SaveChannel(g.ChannelsY[0], dir, mode)
	}
	if err := common.EnsureDir(dir); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, common.SanitizeName(g.FullName)+"."+mode)
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if mode == ModeCSV {
		err = GroupCSV(f, g)
	} else {
		err = GroupJSON(f, g)
	}
	if err != nil {
		return "", err
	}
	return dest, f.Close()
}

// SaveFile exports every group of the file and returns the written paths.
func SaveFile(f *catman.File, dir, mode string) ([]string, error) {
	var paths []string
	for _, g := range f.Groups {
		p, err := SaveGroup(g, dir, mode)
		if err != nil {
			return paths, fmt.Errorf("group %q: %w", g.Name, err)
		}
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func groupSampleCount(g *catman.Group) int {
	if g.ChannelX != nil {
		return len(g.ChannelX.Data)
	}
	if len(g.ChannelsY) > 0 {
		return len(g.ChannelsY[0].Data)
	}
	return 0
}

func formatSample(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}
