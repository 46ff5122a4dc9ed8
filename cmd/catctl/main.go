package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"example.com/catread/internal/catman"
	"example.com/catread/internal/common"
	"example.com/catread/internal/export"
	"example.com/catread/internal/manifest"
	"example.com/catread/internal/report"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "inspect":
		inspectCmd(os.Args[2:])
	case "export":
		exportCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "manifest":
		manifestCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`catctl %s (built %s) <command> [options]

Commands:
  inspect   --in <file.bin> [--config <config.yaml>] [--metrics] [--progress]
  export    --in <file.bin> [--mode csv|json] [--out-dir <dir>] [--warnings-out <file.jsonl>] [--manifest <manifest.json>] [--config <config.yaml>] [--progress]
  report    --in <file.bin> --pdf <report.pdf> [--summary <summary.json>] [--config <config.yaml>]
  manifest  --inputs <comma-separated> --out <manifest.json>
`, version, buildDate)
}

type logConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type config struct {
	OutputDir    string    `yaml:"outputDir"`
	ExportMode   string    `yaml:"exportMode"`
	TimePatterns []string  `yaml:"timeChannelPatterns"`
	Logs         logConfig `yaml:"logs"`
}

func defaultConfig() config {
	return config{
		OutputDir:  "out",
		ExportMode: export.ModeCSV,
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "out"
	}
	if cfg.ExportMode == "" {
		cfg.ExportMode = export.ModeCSV
	}
	if cfg.Logs.Directory != "" {
		if cfg.Logs.MaxSizeMB <= 0 {
			cfg.Logs.MaxSizeMB = 25
		}
		if cfg.Logs.MaxAgeDays <= 0 {
			cfg.Logs.MaxAgeDays = 7
		}
		if cfg.Logs.MaxBackups <= 0 {
			cfg.Logs.MaxBackups = 5
		}
	}
	return cfg, nil
}

func setupLogging(cfg config) error {
	if cfg.Logs.Directory == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Logs.Directory, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Logs.Directory, "catctl.log"),
		MaxSize:    cfg.Logs.MaxSizeMB,
		MaxAge:     cfg.Logs.MaxAgeDays,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   cfg.Logs.Compress,
	}
	common.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return nil
}

// decode runs the whole-file parse with the configured time-channel match.
func decode(path string, cfg config, metrics *common.Metrics) (*catman.File, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	p := catman.NewParser(buf, catman.FileStem(path))
	p.TimeMatch = catman.NameTimePredicate(cfg.TimePatterns)
	p.Metrics = metrics
	return p.Parse()
}

func runDecode(in, configPath string, withMetrics, withProgress bool) (*catman.File, config, *common.Metrics) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Println("load config:", err)
		os.Exit(1)
	}
	if err := setupLogging(cfg); err != nil {
		fmt.Println("setup logging:", err)
		os.Exit(1)
	}

	var metrics *common.Metrics
	if withMetrics || withProgress {
		metrics = common.NewMetrics()
		metrics.Start()
	}
	var stopProgress func()
	if metrics != nil && withProgress {
		stopProgress = common.StartProgressPrinter(os.Stderr, metrics, 500*time.Millisecond)
	}
	f, err := decode(in, cfg, metrics)
	if stopProgress != nil {
		stopProgress()
	}
	if metrics != nil {
		metrics.Stop()
	}
	if err != nil {
		fmt.Println("decode:", err)
		os.Exit(1)
	}
	for _, w := range f.Warnings {
		common.Logf("warning: %s", w)
	}
	return f, cfg, metrics
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	in := fs.String("in", "", "input .bin")
	configPath := fs.String("config", "", "configuration file")
	metricsFlag := fs.Bool("metrics", false, "print decode throughput metrics")
	progressFlag := fs.Bool("progress", false, "display decode progress updates")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}

	f, _, metrics := runDecode(*in, *configPath, *metricsFlag, *progressFlag)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tUNIT\tSAMPLES\tPRECISION\tFLAGS")
	for _, ch := range f.Channels {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n",
			ch.Index, ch.Name, ch.Unit, ch.Length, ch.Precision, channelFlags(ch))
	}
	w.Flush()

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tTIME AXIS\tINTERVAL\tFREQUENCY\tCHANNELS")
	for _, g := range f.Groups {
		timeAxis := "-"
		if g.ChannelX != nil {
			timeAxis = g.ChannelX.Name
		}
		interval, freq := "-", "-"
		if g.RateValid {
			interval = g.IntervalStr
			freq = fmt.Sprintf("%.3f Hz", g.Frequency)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", g.Name, timeAxis, interval, freq, len(g.Channels))
	}
	w.Flush()

	if metrics != nil && *metricsFlag {
		snap := metrics.Snapshot()
		fmt.Printf("Metrics: duration=%s channels=%d warnings=%d processed=%s throughput=%.2f MB/s\n",
			snap.Duration.Round(10*time.Millisecond),
			snap.Channels,
			snap.Warnings,
			common.FormatBytes(snap.Bytes),
			snap.ThroughputBytesPerSecond()/1_000_000,
		)
	}
}

func channelFlags(ch *catman.Channel) string {
	var flags []string
	if ch.IsTime {
		flags = append(flags, "time")
	}
	if ch.Broken {
		flags = append(flags, "broken")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	in := fs.String("in", "", "input .bin")
	mode := fs.String("mode", "", "export mode: csv or json (default from config)")
	outDir := fs.String("out-dir", "", "output directory (default from config)")
	warningsOut := fs.String("warnings-out", "", "write decode warnings as NDJSON")
	manifestOut := fs.String("manifest", "", "write a manifest of produced files")
	configPath := fs.String("config", "", "configuration file")
	progressFlag := fs.Bool("progress", false, "display decode progress updates")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}

	f, cfg, _ := runDecode(*in, *configPath, false, *progressFlag)

	exportMode := cfg.ExportMode
	if *mode != "" {
		exportMode = *mode
	}
	dir := cfg.OutputDir
	if *outDir != "" {
		dir = *outDir
	}

	paths, err := export.SaveFile(f, dir, exportMode)
	if err != nil {
		fmt.Println("export:", err)
		os.Exit(1)
	}
	for _, p := range paths {
		fmt.Println("Wrote", p)
	}

	if *warningsOut != "" {
		if err := export.SaveWarningsNDJSON(*warningsOut, f.Warnings); err != nil {
			fmt.Println("write warnings:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *warningsOut)
	}

	if *manifestOut != "" {
		items := append([]string{*in}, paths...)
		m, err := manifest.Build(items)
		if err != nil {
			fmt.Println("manifest build:", err)
			os.Exit(1)
		}
		if err := manifest.Save(m, *manifestOut); err != nil {
			fmt.Println("manifest save:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *manifestOut)
	}
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	in := fs.String("in", "", "input .bin")
	pdfPath := fs.String("pdf", "", "output decode report PDF")
	summaryPath := fs.String("summary", "", "output decode summary JSON")
	configPath := fs.String("config", "", "configuration file")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	if *pdfPath == "" && *summaryPath == "" {
		fmt.Println("required: --pdf or --summary")
		os.Exit(1)
	}

	f, _, _ := runDecode(*in, *configPath, false, false)

	if *pdfPath != "" {
		if err := report.SaveDecodePDF(f, *in, *pdfPath); err != nil {
			fmt.Println("write pdf:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote PDF:", *pdfPath)
	}
	if *summaryPath != "" {
		sum, err := report.BuildSummary(f, *in)
		if err != nil {
			fmt.Println("build summary:", err)
			os.Exit(1)
		}
		if err := report.SaveSummaryJSON(sum, *summaryPath); err != nil {
			fmt.Println("write summary:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote summary:", *summaryPath)
	}
}

func manifestCmd(args []string) {
	fs := flag.NewFlagSet("manifest", flag.ExitOnError)
	inputs := fs.String("inputs", "", "comma-separated paths")
	out := fs.String("out", "manifest.json", "output json")
	fs.Parse(args)

	if *inputs == "" {
		fmt.Println("required: --inputs")
		os.Exit(1)
	}

	var paths []string
	for _, p := range strings.Split(*inputs, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		fmt.Println("no input paths specified")
		os.Exit(1)
	}

	m, err := manifest.Build(paths)
	if err != nil {
		fmt.Println("manifest build:", err)
		os.Exit(1)
	}
	if err := manifest.Save(m, *out); err != nil {
		fmt.Println("manifest save:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote", *out)
}
