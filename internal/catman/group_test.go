package catman

import "testing"

func mkChannel(name string, length int32, data []float64) *Channel {
	return &Channel{Name: name, Length: length, Data: data}
}

func TestGroupByLength(t *testing.T) {
	a := mkChannel("Time", 100, nil)
	b := mkChannel("Load", 100, nil)
	c := mkChannel("Temp", 50, nil)
	d := mkChannel("Strain", 100, nil)

	parts := GroupByLength([]*Channel{a, b, c, d})
	if len(parts) != 2 {
		t.Fatalf("partitions = %d, want 2", len(parts))
	}
	if len(parts[0]) != 3 || parts[0][0] != a || parts[0][1] != b || parts[0][2] != d {
		t.Fatalf("first partition = %v, want [Time Load Strain] in file order", names(parts[0]))
	}
	if len(parts[1]) != 1 || parts[1][0] != c {
		t.Fatalf("second partition = %v, want [Temp]", names(parts[1]))
	}
}

func names(chs []*Channel) []string {
	out := make([]string, len(chs))
	for i, ch := range chs {
		out[i] = ch.Name
	}
	return out
}

func TestTimePredicates(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		channel  string
		want     bool
	}{
		{name: "default match", channel: "Time 1 - default sample rate", want: true},
		{name: "default case insensitive", channel: "TIME", want: true},
		{name: "default no match", channel: "Load", want: false},
		{name: "custom match", patterns: []string{"zeit"}, channel: "Zeitkanal", want: true},
		{name: "custom excludes default", patterns: []string{"zeit"}, channel: "Time", want: false},
		{name: "empty patterns fall back", patterns: nil, channel: "time", want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pred := NameTimePredicate(tc.patterns)
			got := pred(mkChannel(tc.channel, 1, nil))
			if got != tc.want {
				t.Fatalf("predicate(%q) = %v, want %v", tc.channel, got, tc.want)
			}
		})
	}
}

func TestLinkGroupsTimeAxis(t *testing.T) {
	tc := mkChannel("Time", 100, []float64{0, 0.25, 0.5})
	y1 := mkChannel("Load", 100, []float64{1, 2, 3})
	y2 := mkChannel("Strain", 100, []float64{4, 5, 6})
	channels := []*Channel{tc, y1, y2}
	MarkTimeChannels(channels, nil)

	groups, warns := LinkGroups(channels, "run", nil)
	if len(warns) != 0 {
		t.Fatalf("warnings = %v, want none", warns)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	g := groups[0]
	if g.ChannelX != tc {
		t.Fatalf("ChannelX = %v, want the Time channel", g.ChannelX)
	}
	if len(g.ChannelsY) != 2 {
		t.Fatalf("ChannelsY = %d, want 2", len(g.ChannelsY))
	}
	for _, ch := range g.ChannelsY {
		if ch.TimeRef != tc {
			t.Fatalf("channel %q TimeRef not set to the time channel", ch.Name)
		}
	}
	if g.Name != "Time" || g.FullName != "run.Time" {
		t.Fatalf("Name/FullName = %q/%q", g.Name, g.FullName)
	}
	if !g.RateValid {
		t.Fatalf("RateValid = false, want true")
	}
	if g.Frequency != 4 {
		t.Fatalf("Frequency = %v, want 4", g.Frequency)
	}
}

func TestIntervalInference(t *testing.T) {
	// The thresholds cascade: every matching check overwrites the previous
	// unit. This reproduces the acquisition software's convention exactly,
	// unit labels included.
	tests := []struct {
		name         string
		dt           float64
		wantInterval string
	}{
		{name: "seconds", dt: 2, wantInterval: "2.000s"},
		{name: "milliseconds", dt: 0.5, wantInterval: "500.000ms"},
		{name: "sub-millisecond", dt: 0.0005, wantInterval: "500.000ns"},
		{name: "sub-microsecond", dt: 0.0000005, wantInterval: "500.000µs"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x := mkChannel("Time", 3, []float64{0, tc.dt, 2 * tc.dt})
			x.IsTime = true
			y := mkChannel("Load", 3, []float64{1, 2, 3})
			groups, warns := LinkGroups([]*Channel{x, y}, "f", nil)
			if len(warns) != 0 {
				t.Fatalf("warnings = %v, want none", warns)
			}
			g := groups[0]
			if g.IntervalStr != tc.wantInterval {
				t.Fatalf("IntervalStr = %q, want %q", g.IntervalStr, tc.wantInterval)
			}
			if g.Frequency != 1/tc.dt {
				t.Fatalf("Frequency = %v, want %v", g.Frequency, 1/tc.dt)
			}
			if g.Interval != tc.dt/1e3 {
				t.Fatalf("Interval = %v, want %v", g.Interval, tc.dt/1e3)
			}
		})
	}
}

func TestLinkGroupsNoTimeChannel(t *testing.T) {
	y1 := mkChannel("Load", 10, []float64{1})
	y2 := mkChannel("Strain", 10, []float64{2})

	groups, warns := LinkGroups([]*Channel{y1, y2}, "f", nil)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	g := groups[0]
	if g.ChannelX != nil {
		t.Fatalf("ChannelX = %v, want nil", g.ChannelX)
	}
	if g.RateValid {
		t.Fatalf("RateValid = true, want false")
	}
	if len(g.ChannelsY) != 2 {
		t.Fatalf("ChannelsY = %d, want 2", len(g.ChannelsY))
	}
	for _, ch := range g.ChannelsY {
		if ch.TimeRef != nil {
			t.Fatalf("channel %q TimeRef = %v, want nil", ch.Name, ch.TimeRef)
		}
	}
	if len(warns) != 1 || warns[0].Kind != WarnNoTimeChannel {
		t.Fatalf("warnings = %v, want one no_time_channel", warns)
	}
}

func TestLinkGroupsDegenerateTimeChannel(t *testing.T) {
	x := mkChannel("Time", 1, []float64{0})
	x.IsTime = true
	y := mkChannel("Load", 1, []float64{7})

	groups, warns := LinkGroups([]*Channel{x, y}, "f", nil)
	g := groups[0]
	if g.ChannelX != x {
		t.Fatalf("ChannelX = %v, want the degenerate time channel", g.ChannelX)
	}
	if g.RateValid {
		t.Fatalf("RateValid = true, want false")
	}
	if g.Frequency != 0 || g.IntervalStr != "" {
		t.Fatalf("rate fields = %v/%q, want zeroed", g.Frequency, g.IntervalStr)
	}
	if len(warns) != 1 || warns[0].Kind != WarnDegenerateTimeChannel {
		t.Fatalf("warnings = %v, want one degenerate_time_channel", warns)
	}
}

func TestLinkGroupsCustomPolicy(t *testing.T) {
	a := mkChannel("Time", 10, []float64{0, 1})
	a.IsTime = true
	b := mkChannel("Load", 20, []float64{1, 2})

	// A policy that lumps everything together regardless of length.
	all := func(chs []*Channel) [][]*Channel { return [][]*Channel{chs} }
	groups, _ := LinkGroups([]*Channel{a, b}, "f", all)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1 with custom policy", len(groups))
	}
	if groups[0].ChannelX != a || len(groups[0].ChannelsY) != 1 {
		t.Fatalf("custom policy group mislinked")
	}
}
