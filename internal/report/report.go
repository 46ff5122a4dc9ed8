package report

import (
	"encoding/json"
	"os"

	"example.com/catread/internal/catman"
	"example.com/catread/internal/common"
)

// ChannelSummary is the per-channel metadata carried by a decode report; it
// never includes sample data.
type ChannelSummary struct {
	Index     int16  `json:"index"`
	Name      string `json:"name"`
	Unit      string `json:"unit,omitempty"`
	Comment   string `json:"comment,omitempty"`
	Samples   int32  `json:"samples"`
	Precision int    `json:"precision"`
	IsTime    bool   `json:"isTime,omitempty"`
	Broken    bool   `json:"broken,omitempty"`
	TimeRef   string `json:"timeRef,omitempty"`
}

type GroupSummary struct {
	Name        string   `json:"name"`
	Length      int32    `json:"length"`
	TimeChannel string   `json:"timeChannel,omitempty"`
	IntervalStr string   `json:"interval,omitempty"`
	Frequency   float64  `json:"frequency,omitempty"`
	RateValid   bool     `json:"rateValid"`
	Channels    []string `json:"channels"`
}

type Summary struct {
	File         string           `json:"file"`
	SourcePath   string           `json:"sourcePath,omitempty"`
	SourceSha256 string           `json:"sourceSha256,omitempty"`
	Channels     []ChannelSummary `json:"channels"`
	Groups       []GroupSummary   `json:"groups"`
	Warnings     []catman.Warning `json:"warnings,omitempty"`
}

// BuildSummary condenses a decoded file into report form. srcPath may be
// empty; when set, the source file is hashed so the report pins its input.
func BuildSummary(f *catman.File, srcPath string) (Summary, error) {
	s := Summary{File: f.Name, SourcePath: srcPath, Warnings: f.Warnings}
	if srcPath != "" {
		hash, _, err := common.Sha256OfFile(srcPath)
		if err != nil {
			return s, err
		}
		s.SourceSha256 = hash
	}
	for _, ch := range f.Channels {
		cs := ChannelSummary{
			Index:     ch.Index,
			Name:      ch.Name,
			Unit:      ch.Unit,
			Comment:   ch.Comment,
			Samples:   ch.Length,
			Precision: ch.Precision,
			IsTime:    ch.IsTime,
			Broken:    ch.Broken,
		}
		if ch.TimeRef != nil {
			cs.TimeRef = ch.TimeRef.Name
		}
		s.Channels = append(s.Channels, cs)
	}
	for _, g := range f.Groups {
		gs := GroupSummary{
			Name:        g.Name,
			Length:      groupLength(g),
			IntervalStr: g.IntervalStr,
			Frequency:   g.Frequency,
			RateValid:   g.RateValid,
		}
		if g.ChannelX != nil {
			gs.TimeChannel = g.ChannelX.Name
		}
		for _, ch := range g.Channels {
			gs.Channels = append(gs.Channels, ch.Name)
		}
		s.Groups = append(s.Groups, gs)
	}
	return s, nil
}

func groupLength(g *catman.Group) int32 {
	if len(g.Channels) == 0 {
		return 0
	}
	return g.Channels[0].Length
}

func SaveSummaryJSON(s Summary, out string) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}
