package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/calvinalkan/school-reports/internal/locale"
	"github.com/calvinalkan/school-reports/internal/report"
)

// Orientation is the page orientation of the document.
type Orientation string

// Orientations.
const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// ErrInvalidOrientation is returned by ParseOrientation.
var ErrInvalidOrientation = errors.New("invalid orientation")

// ParseOrientation parses "portrait" or "landscape". Empty means portrait.
func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(s))) {
	case "", Portrait:
		return Portrait, nil
	case Landscape:
		return Landscape, nil
	default:
		return "", fmt.Errorf("%w: %q (want portrait or landscape)", ErrInvalidOrientation, s)
	}
}

func (o Orientation) code() string {
	if o == Landscape {
		return "L"
	}

	return "P"
}

// Institution is the letterhead printed above every document.
type Institution struct {
	Name    string
	Address string
}

// DefaultInstitution is used when none is configured.
var DefaultInstitution = Institution{
	Name:    "St. Mary's Academy",
	Address: "123 Education Street, Manila, Philippines",
}

// Page geometry in millimetres and type sizes in points.
const (
	pageMargin   = 15.0
	footerOffset = 10.0

	institutionSize = 18.0
	addressSize     = 9.0
	titleSize       = 14.0
	subtitleSize    = 10.0
	infoSize        = 10.0
	headSize        = 9.0
	bodySize        = 8.0
	footerSize      = 8.0

	headLineHeight = 3.8
	headPadding    = 2.0
	bodyLineHeight = 3.4
	bodyPadding    = 1.6

	summaryGap     = 12.0
	summarySpacing = 7.0
	summaryLabelX  = 100.0
	summaryValueX  = 35.0

	ptToMM = 25.4 / 72
	family = "Helvetica"
)

type rgb struct{ r, g, b int }

var (
	colorPrimary  = rgb{37, 99, 235}
	colorMuted    = rgb{100, 100, 100}
	colorBlack    = rgb{0, 0, 0}
	colorWhite    = rgb{255, 255, 255}
	colorBody     = rgb{50, 50, 50}
	colorStripe   = rgb{245, 247, 250}
	colorGrid     = rgb{200, 200, 200}
	colorFootnote = rgb{150, 150, 150}
)

// DocumentRenderer writes an A4 PDF: letterhead, title block, metadata,
// a table that continues over as many pages as needed with the header band
// repeated, the summary and a footer with the generation time and page
// numbers on every page.
type DocumentRenderer struct {
	institution Institution
	orientation Orientation
	now         func() time.Time
	locale      *locale.Formatter
	compress    bool
}

// DocumentOption configures a DocumentRenderer.
type DocumentOption func(*DocumentRenderer)

// WithInstitution sets the letterhead. Empty fields keep the default.
func WithInstitution(inst Institution) DocumentOption {
	return func(d *DocumentRenderer) {
		if inst.Name != "" {
			d.institution.Name = inst.Name
		}

		if inst.Address != "" {
			d.institution.Address = inst.Address
		}
	}
}

// WithOrientation sets the page orientation.
func WithOrientation(o Orientation) DocumentOption {
	return func(d *DocumentRenderer) { d.orientation = o }
}

// WithClock sets the time source for the footer and document dates.
func WithClock(now func() time.Time) DocumentOption {
	return func(d *DocumentRenderer) { d.now = now }
}

// WithCompression toggles stream compression. Uncompressed output is
// easier to inspect.
func WithCompression(on bool) DocumentOption {
	return func(d *DocumentRenderer) { d.compress = on }
}

// NewDocumentRenderer returns the PDF renderer.
func NewDocumentRenderer(opts ...DocumentOption) *DocumentRenderer {
	d := &DocumentRenderer{
		institution: DefaultInstitution,
		orientation: Portrait,
		now:         time.Now,
		locale:      locale.Default,
		compress:    true,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Format implements Renderer.
func (*DocumentRenderer) Format() Format { return FormatDocument }

// Extension implements Renderer.
func (*DocumentRenderer) Extension() string { return ".pdf" }

// Render implements Renderer.
func (d *DocumentRenderer) Render(w io.Writer, rep *report.Report) error {
	if err := rep.Validate(); err != nil {
		return err
	}

	now := d.now()

	// The first pass only counts pages so the footer can print the total.
	counting, err := d.layout(rep, now, 0)
	if err != nil {
		return err
	}

	doc, err := d.layout(rep, now, counting.PageCount())
	if err != nil {
		return err
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	return nil
}

// layout draws the whole document. A zero totalPages skips the footer.
func (d *DocumentRenderer) layout(rep *report.Report, now time.Time, totalPages int) (*fpdf.Fpdf, error) {
	pdf := fpdf.New(d.orientation.code(), "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(d.compress)
	pdf.SetCreationDate(now)
	pdf.SetTitle(rep.Title, true)
	pdf.SetCreator("rpt", false)

	width, height := pdf.GetPageSize()

	c := &canvas{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		width:  width,
		height: height,
	}

	if totalPages > 0 {
		stamp := "Generated on " + d.locale.Timestamp(now)

		pdf.SetFooterFunc(func() {
			c.footer(stamp, pdf.PageNo(), totalPages)
		})
	}

	pdf.AddPage()

	y := c.letterhead(d.institution, rep)
	y = c.table(rep, y)
	c.summary(rep.Summary, y)

	if pdf.Err() {
		return nil, fmt.Errorf("layout document: %w", pdf.Error())
	}

	return pdf, nil
}

// canvas wraps the fpdf handle with the page metrics and the cp1252
// translation the core fonts need.
type canvas struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	width  float64
	height float64
}

func (c *canvas) font(style string, size float64, col rgb) {
	c.pdf.SetFont(family, style, size)
	c.pdf.SetTextColor(col.r, col.g, col.b)
}

func (c *canvas) centered(text string, y float64) {
	t := c.tr(text)
	c.pdf.Text((c.width-c.pdf.GetStringWidth(t))/2, y, t)
}

func (c *canvas) rightAligned(text string, right, y float64) {
	t := c.tr(text)
	c.pdf.Text(right-c.pdf.GetStringWidth(t), y, t)
}

// letterhead draws everything above the table and returns the table top.
func (c *canvas) letterhead(inst Institution, rep *report.Report) float64 {
	y := pageMargin

	c.font("B", institutionSize, colorPrimary)
	c.centered(inst.Name, y)
	y += 6

	c.font("", addressSize, colorMuted)
	c.centered(inst.Address, y)
	y += 10

	c.pdf.SetDrawColor(colorPrimary.r, colorPrimary.g, colorPrimary.b)
	c.pdf.SetLineWidth(0.5)
	c.pdf.Line(pageMargin, y, c.width-pageMargin, y)
	y += 8

	c.font("B", titleSize, colorBlack)
	c.centered(rep.Title, y)
	y += 6

	if rep.Subtitle != "" {
		c.font("", subtitleSize, colorMuted)
		c.centered(rep.Subtitle, y)
		y += 6
	}

	if len(rep.Metadata) > 0 {
		y += 4
		bottom := c.height - pageMargin

		for _, p := range rep.Metadata {
			if y > bottom {
				c.pdf.AddPage()
				y = pageMargin + 5
			}

			label := c.tr(p.Label + ": ")

			c.font("B", infoSize, colorBlack)
			c.pdf.Text(pageMargin, y, label)
			labelWidth := c.pdf.GetStringWidth(label)

			c.font("", infoSize, colorBlack)
			c.pdf.Text(pageMargin+labelWidth, y, c.tr(p.Value))
			y += 5
		}

		y += 2
	}

	return y
}

// table draws the header band and body rows starting at top and returns
// the bottom edge of the last row.
func (c *canvas) table(rep *report.Report, top float64) float64 {
	widths := c.columnWidths(rep)
	bottom := c.height - pageMargin

	c.pdf.SetLineWidth(0.1)
	c.pdf.SetDrawColor(colorGrid.r, colorGrid.g, colorGrid.b)

	// Start on a fresh page when the header band and the first row would
	// not fit below the letterhead.
	need := c.headerHeight(rep.Headers, widths)
	if len(rep.Rows) > 0 {
		_, first := c.measureRow(rep.Rows[0], widths)
		need += first
	}

	if top > pageMargin && top+need > bottom {
		c.pdf.AddPage()
		top = pageMargin
	}

	y := c.headerBand(rep.Headers, widths, top)
	broke := false

	for i, row := range rep.Rows {
		lines, h := c.measureRow(row, widths)

		// A row taller than a whole page is drawn anyway rather than
		// breaking forever.
		if y+h > bottom && !broke {
			c.pdf.AddPage()
			y = c.headerBand(rep.Headers, widths, pageMargin)
			broke = true
		}

		fill := colorWhite
		if i%2 == 1 {
			fill = colorStripe
		}

		x := pageMargin
		for col, w := range widths {
			c.pdf.SetFillColor(fill.r, fill.g, fill.b)
			c.pdf.Rect(x, y, w, h, "FD")

			c.font(bodyStyle(col), bodySize, colorBody)

			for k, line := range lines[col] {
				c.pdf.Text(x+bodyPadding, baseline(y, bodyPadding, bodyLineHeight, bodySize, k), line)
			}

			x += w
		}

		y += h
		broke = false
	}

	return y
}

func bodyStyle(col int) string {
	if col == 0 {
		return "B"
	}

	return ""
}

func baseline(top, padding, lineHeight, size float64, line int) float64 {
	return top + padding + float64(line)*lineHeight + size*ptToMM*0.85
}

func (c *canvas) measureHeader(headers []string, widths []float64) ([][]string, float64) {
	c.font("B", headSize, colorWhite)

	lines := make([][]string, len(headers))
	maxLines := 1

	for i, h := range headers {
		lines[i] = c.wrap(c.tr(h), widths[i]-2*headPadding)
		maxLines = max(maxLines, len(lines[i]))
	}

	return lines, float64(maxLines)*headLineHeight + 2*headPadding
}

func (c *canvas) headerHeight(headers []string, widths []float64) float64 {
	_, h := c.measureHeader(headers, widths)
	return h
}

func (c *canvas) headerBand(headers []string, widths []float64, top float64) float64 {
	lines, h := c.measureHeader(headers, widths)

	x := pageMargin
	for i, w := range widths {
		c.pdf.SetFillColor(colorPrimary.r, colorPrimary.g, colorPrimary.b)
		c.pdf.Rect(x, top, w, h, "FD")

		for k, line := range lines[i] {
			lx := x + (w-c.pdf.GetStringWidth(line))/2
			c.pdf.Text(lx, baseline(top, headPadding, headLineHeight, headSize, k), line)
		}

		x += w
	}

	return top + h
}

func (c *canvas) measureRow(row []report.Cell, widths []float64) ([][]string, float64) {
	lines := make([][]string, len(row))
	maxLines := 1

	for i, cell := range row {
		c.pdf.SetFont(family, bodyStyle(i), bodySize)
		lines[i] = c.wrap(c.tr(cell.String()), widths[i]-2*bodyPadding)
		maxLines = max(maxLines, len(lines[i]))
	}

	return lines, float64(maxLines)*bodyLineHeight + 2*bodyPadding
}

// columnWidths splits the printable width in proportion to each column's
// widest content, capped so one long column cannot starve the others.
func (c *canvas) columnWidths(rep *report.Report) []float64 {
	available := c.width - 2*pageMargin
	limit := available * 0.45

	natural := make([]float64, rep.Columns())

	c.pdf.SetFont(family, "B", headSize)

	for i, h := range rep.Headers {
		natural[i] = c.pdf.GetStringWidth(c.tr(h)) + 2*headPadding
	}

	for _, row := range rep.Rows {
		for i, cell := range row {
			c.pdf.SetFont(family, bodyStyle(i), bodySize)
			natural[i] = max(natural[i], c.pdf.GetStringWidth(c.tr(cell.String()))+2*bodyPadding)
		}
	}

	total := 0.0
	for i := range natural {
		natural[i] = min(max(natural[i], 2*headPadding+1), limit)
		total += natural[i]
	}

	widths := make([]float64, len(natural))
	for i, n := range natural {
		widths[i] = n / total * available
	}

	return widths
}

// wrap breaks cp1252 text into lines no wider than width, splitting words
// that do not fit on a line of their own.
func (c *canvas) wrap(text string, width float64) []string {
	var lines []string

	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, c.wrapLine(para, width)...)
	}

	return lines
}

func (c *canvas) wrapLine(s string, width float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string

	cur := ""

	for _, word := range words {
		for len(word) > 1 && c.pdf.GetStringWidth(word) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}

			n := c.fit(word, width)
			lines = append(lines, word[:n])
			word = word[n:]
		}

		if cur == "" {
			cur = word
			continue
		}

		if joined := cur + " " + word; c.pdf.GetStringWidth(joined) <= width {
			cur = joined
		} else {
			lines = append(lines, cur)
			cur = word
		}
	}

	return append(lines, cur)
}

// fit returns how many leading bytes of s fit in width, at least one.
func (c *canvas) fit(s string, width float64) int {
	n := 1
	for n < len(s) && c.pdf.GetStringWidth(s[:n+1]) <= width {
		n++
	}

	return n
}

// summary draws the label/value pairs below the table, starting a new page
// when a line would run into the bottom margin.
func (c *canvas) summary(pairs []report.Pair, tableBottom float64) {
	y := tableBottom + summaryGap
	bottom := c.height - pageMargin

	for _, p := range pairs {
		if y > bottom {
			c.pdf.AddPage()
			y = pageMargin + 5
		}

		c.font("B", infoSize, colorBlack)
		c.pdf.Text(c.width-summaryLabelX, y, c.tr(p.Label+":"))

		c.font("", infoSize, colorBlack)
		c.rightAligned(p.Value, c.width-summaryValueX, y)

		y += summarySpacing
	}
}

func (c *canvas) footer(stamp string, page, total int) {
	y := c.height - footerOffset

	c.font("", footerSize, colorFootnote)
	c.pdf.Text(pageMargin, y, c.tr(stamp))
	c.rightAligned(fmt.Sprintf("Page %d of %d", page, total), c.width-pageMargin, y)
}
