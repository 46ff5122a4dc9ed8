package catman

import (
	"fmt"
	"strings"
)

// TimePredicate decides whether a channel is the time axis of its group.
// The wire format carries no such marker; the convention of the acquisition
// software is that the time channel of a group has "time" in its name.
type TimePredicate func(*Channel) bool

// DefaultTimePredicate matches channel names containing "time", case
// insensitively.
func DefaultTimePredicate(ch *Channel) bool {
	return strings.Contains(strings.ToLower(ch.Name), "time")
}

// NameTimePredicate builds a predicate matching any of the given substrings,
// case insensitively. An empty pattern list yields DefaultTimePredicate.
func NameTimePredicate(patterns []string) TimePredicate {
	if len(patterns) == 0 {
		return DefaultTimePredicate
	}
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}
	return func(ch *Channel) bool {
		name := strings.ToLower(ch.Name)
		for _, p := range lowered {
			if p != "" && strings.Contains(name, p) {
				return true
			}
		}
		return false
	}
}

// MarkTimeChannels applies the predicate to every channel. It must run
// before LinkGroups; grouping only consults the IsTime flag.
func MarkTimeChannels(channels []*Channel, isTime TimePredicate) {
	if isTime == nil {
		isTime = DefaultTimePredicate
	}
	for _, ch := range channels {
		ch.IsTime = isTime(ch)
	}
}

// GroupPolicy partitions a file's channels into groups of related channels.
// It is a pure function so alternate linking strategies can be swapped in
// without touching the decoder.
type GroupPolicy func([]*Channel) [][]*Channel

// GroupByLength is the default policy: channels with an identical declared
// sample count are assumed to belong together. Partitions keep the channel
// order of the file, and partition order follows first appearance.
func GroupByLength(channels []*Channel) [][]*Channel {
	byLength := make(map[int32][]*Channel)
	var order []int32
	for _, ch := range channels {
		if _, seen := byLength[ch.Length]; !seen {
			order = append(order, ch.Length)
		}
		byLength[ch.Length] = append(byLength[ch.Length], ch)
	}
	parts := make([][]*Channel, 0, len(order))
	for _, n := range order {
		parts = append(parts, byLength[n])
	}
	return parts
}

// LinkGroups builds one Group per partition. Within a partition the first
// channel flagged IsTime becomes the X axis and every other channel gets a
// back-reference to it. A partition without a time channel still yields a
// group, but one that cannot be aligned (ChannelX nil, RateValid false).
func LinkGroups(channels []*Channel, fileName string, policy GroupPolicy) ([]*Group, []Warning) {
	if policy == nil {
		policy = GroupByLength
	}
	var groups []*Group
	var warns []Warning
	for _, part := range policy(channels) {
		g, w := newGroup(part, fileName)
		groups = append(groups, g)
		warns = append(warns, w...)
	}
	return groups, warns
}

func newGroup(channels []*Channel, fileName string) (*Group, []Warning) {
	g := &Group{FileName: fileName, Channels: channels}
	var warns []Warning

	for _, ch := range channels {
		if ch.IsTime && g.ChannelX == nil {
			g.ChannelX = ch
		}
	}
	for _, ch := range channels {
		if ch.IsTime {
			continue
		}
		ch.TimeRef = g.ChannelX
		g.ChannelsY = append(g.ChannelsY, ch)
	}

	switch {
	case g.ChannelX != nil:
		g.Name = g.ChannelX.Name
	case len(channels) > 0:
		g.Name = channels[0].Name
	}
	g.FullName = fileName + "." + strings.ReplaceAll(g.Name, " ", "_")

	if g.ChannelX == nil {
		warns = append(warns, Warning{
			Kind:    WarnNoTimeChannel,
			Group:   g.Name,
			Message: fmt.Sprintf("group of %d channel(s) with length %d has no time channel", len(channels), groupLength(channels)),
		})
		return g, warns
	}
	if len(g.ChannelX.Data) < 2 {
		warns = append(warns, Warning{
			Kind:    WarnDegenerateTimeChannel,
			Group:   g.Name,
			Message: fmt.Sprintf("time channel %q has %d sample(s); interval and frequency unavailable", g.ChannelX.Name, len(g.ChannelX.Data)),
		})
		return g, warns
	}

	// The first sample is commonly a zero origin, so the second sample is
	// the first interval. The thresholds cascade on purpose; this mirrors
	// the acquisition software's unit convention.
	dt := g.ChannelX.Data[1]
	unit := "s"
	fac := 1.0
	if dt < 1 {
		unit, fac = "ms", 1e3
	}
	if dt < 1e-3 {
		unit, fac = "ns", 1e6
	}
	if dt < 1e-6 {
		unit, fac = "µs", 1e9
	}
	g.IntervalStr = fmt.Sprintf("%.3f%s", dt*fac, unit)
	g.Interval = dt / 1e3
	if dt != 0 {
		g.Frequency = 1 / dt
		g.RateValid = true
	}
	return g, warns
}

func groupLength(channels []*Channel) int32 {
	if len(channels) == 0 {
		return 0
	}
	return channels[0].Length
}
