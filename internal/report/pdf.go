package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"example.com/catread/internal/catman"
)

// SaveDecodePDF renders a decode report for the file into a PDF document:
// summary, channel table, per-group sections with a trace sketch, warnings,
// and a QR stamp of the source digest when one is available.
func SaveDecodePDF(f *catman.File, srcPath, out string) error {
	sum, err := BuildSummary(f, srcPath)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Decode Report", false)
	pdf.SetAuthor("catctl", false)
	pdf.SetCreator("catctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Decode Report")
	if sum.SourceSha256 != "" {
		addDigestStamp(pdf, sum.SourceSha256)
	}
	addSummarySection(pdf, sum)
	addChannelSection(pdf, sum.Channels)
	addGroupSections(pdf, f.Groups)
	addWarningsSection(pdf, sum.Warnings)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

// addDigestStamp places a QR code of the source digest in the top right
// corner so a printed report can be matched back to its input file.
func addDigestStamp(pdf *gofpdf.Fpdf, digest string) {
	png, err := DigestQR(digest, 256)
	if err != nil {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("source-digest", opts, bytes.NewReader(png))
	pageW, _ := pdf.GetPageSize()
	pdf.ImageOptions("source-digest", pageW-15-24, 12, 24, 24, false, opts, 0, "")
}

func addSummarySection(pdf *gofpdf.Fpdf, sum Summary) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "File", value: emptyFallback(sum.File, "-")},
		{label: "Channels", value: strconv.Itoa(len(sum.Channels))},
		{label: "Groups", value: strconv.Itoa(len(sum.Groups))},
		{label: "Warnings", value: strconv.Itoa(len(sum.Warnings))},
	}
	if sum.SourceSha256 != "" {
		items = append(items, struct {
			label string
			value string
		}{label: "Source SHA-256", value: shortDigest(sum.SourceSha256)})
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addChannelSection(pdf *gofpdf.Fpdf, channels []ChannelSummary) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Channels")
	pdf.Ln(9)

	headers := []string{"#", "Name", "Unit", "Samples", "Precision", "Flags"}
	widths := []float64{12, 68, 24, 24, 24, 28}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lineHeight := 5.0
	for _, ch := range channels {
		values := []string{
			strconv.Itoa(int(ch.Index)),
			emptyFallback(ch.Name, "-"),
			emptyFallback(ch.Unit, "-"),
			strconv.Itoa(int(ch.Samples)),
			fmt.Sprintf("%d bytes", ch.Precision),
			channelFlags(ch),
		}
		renderTableRow(pdf, widths, values, lineHeight)
	}
	pdf.Ln(4)
}

func addGroupSections(pdf *gofpdf.Fpdf, groups []*catman.Group) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Groups")
	pdf.Ln(9)

	if len(groups) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No groups linked.", "", "L", false)
		return
	}

	for i, g := range groups {
		pdf.SetFont("Helvetica", "B", 10)
		header := fmt.Sprintf("%d. %s", i+1, emptyFallback(g.Name, "(unnamed)"))
		pdf.MultiCell(0, 5, header, "", "L", false)

		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 4, groupMetadata(g), "", "L", false)
		addGroupTrace(pdf, g)
		pdf.Ln(3)
	}
	pdf.Ln(2)
}

// addGroupTrace sketches the first Y channel of the group as a polyline so
// the report gives a visual sanity check of the decoded signal.
func addGroupTrace(pdf *gofpdf.Fpdf, g *catman.Group) {
	if len(g.ChannelsY) == 0 {
		return
	}
	data := g.ChannelsY[0].Data
	if len(data) < 2 {
		return
	}

	const boxW, boxH = 170.0, 28.0
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+boxH > pageH-bottom {
		pdf.AddPage()
	}
	x0 := pdf.GetX()
	y0 := pdf.GetY()

	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(x0, y0, boxW, boxH, "D")

	points := downsample(data, 256)
	lo, hi := points[0], points[0]
	for _, v := range points {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	pdf.SetDrawColor(60, 60, 150)
	step := boxW / float64(len(points)-1)
	const pad = 2.0
	toY := func(v float64) float64 {
		return y0 + boxH - pad - (v-lo)/span*(boxH-2*pad)
	}
	for i := 1; i < len(points); i++ {
		pdf.Line(x0+float64(i-1)*step, toY(points[i-1]), x0+float64(i)*step, toY(points[i]))
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetXY(x0, y0+boxH+2)
}

func addWarningsSection(pdf *gofpdf.Fpdf, warns []catman.Warning) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Warnings")
	pdf.Ln(9)

	if len(warns) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No warnings recorded.", "", "L", false)
		return
	}

	for i, w := range warns {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, 5, fmt.Sprintf("%d. %s", i+1, w.Kind), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, w.String(), "", "L", false)
		pdf.Ln(2)
	}
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func channelFlags(ch ChannelSummary) string {
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
	return strings.Join(flags, ", ")
}

func groupMetadata(g *catman.Group) string {
	parts := make([]string, 0, 4)
	if g.ChannelX != nil {
		parts = append(parts, "time axis "+g.ChannelX.Name)
	} else {
		parts = append(parts, "no time axis")
	}
	if g.RateValid {
		parts = append(parts, "interval "+g.IntervalStr)
		parts = append(parts, fmt.Sprintf("%.3f Hz", g.Frequency))
	}
	parts = append(parts, fmt.Sprintf("%d channel(s)", len(g.Channels)))
	return strings.Join(parts, " / ")
}

func shortDigest(d string) string {
	if len(d) <= 16 {
		return d
	}
	return d[:16] + "..."
}

func downsample(data []float64, max int) []float64 {
	if len(data) <= max {
		return data
	}
	out := make([]float64, max)
	step := float64(len(data)-1) / float64(max-1)
	for i := range out {
		out[i] = data[int(float64(i)*step)]
	}
	return out
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
