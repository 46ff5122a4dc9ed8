package catman

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"example.com/catread/internal/common"
)

// Parser decodes a whole catman buffer. The format stores channel records
// back to back with no index table, so decoding is strictly sequential:
// each channel's header and body must be consumed before the next record
// starts. There is no random access.
type Parser struct {
	cur      *Cursor
	fileName string

	// TimeMatch marks time channels before grouping. Nil means
	// DefaultTimePredicate.
	TimeMatch TimePredicate
	// Grouping partitions the decoded channels. Nil means GroupByLength.
	Grouping GroupPolicy
	// Metrics, when set, observes decode progress.
	Metrics *common.Metrics
}

// NewParser wraps an in-memory buffer. fileName is the source file's stem;
// it qualifies channel and group names.
func NewParser(buf []byte, fileName string) *Parser {
	return &Parser{cur: NewCursor(buf), fileName: fileName}
}

// Parse decodes every channel record until the buffer is exhausted, then
// links groups. Recoverable conditions accumulate as warnings on the result;
// a bounds violation aborts the whole file, since the next record boundary
// cannot be found once a record is lost.
func (p *Parser) Parse() (*File, error) {
	f := &File{Name: p.fileName}
	if p.Metrics != nil {
		p.Metrics.SetTotalBytes(int64(len(p.cur.buf)))
	}

	for p.cur.Remaining() > 0 {
		start := p.cur.Tell()
		ch, warns, err := DecodeChannel(p.cur, p.fileName)
		f.Warnings = append(f.Warnings, warns...)
		if err != nil {
			return nil, fmt.Errorf("channel %d at offset %d: %w", len(f.Channels), start, err)
		}
		if err := ch.ReadBody(p.cur); err != nil {
			return nil, fmt.Errorf("channel %q body at offset %d: %w", ch.Name, start, err)
		}
		f.Channels = append(f.Channels, ch)
		if p.Metrics != nil {
			p.Metrics.AddChannel(int64(p.cur.Tell() - start))
		}
	}

	MarkTimeChannels(f.Channels, p.TimeMatch)
	groups, warns := LinkGroups(f.Channels, p.fileName, p.Grouping)
	f.Groups = groups
	f.Warnings = append(f.Warnings, warns...)
	if p.Metrics != nil {
		p.Metrics.AddWarnings(int64(len(f.Warnings)))
	}
	return f, nil
}

// ParseFile loads path into memory and decodes it.
func ParseFile(path string) (*File, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	p := NewParser(buf, FileStem(path))
	return p.Parse()
}

// FileStem returns the base name of path without its extension; channels are
// qualified with it.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
