package services

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"sales-report-api/pkg/models"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin       = 72.0
	pdfFont         = "report"
	pdfTitleSize    = 18.0
	pdfBodySize     = 10.0
	pdfTableSize    = 9.0
	pdfRowHeight    = 14.0
	pdfAscentFactor = 0.72
)

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	dejaVuRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	dejaVuBold []byte
)

// PDFFont はPDFに埋め込むTrueTypeフォントファミリーです。
// テキストは常にUnicodeのまま書き込まれ、描画できる文字はフォントのグリフ範囲で決まります。
type PDFFont struct {
	Regular []byte
	Bold    []byte
}

// DefaultPDFFont returns the embedded DejaVu Sans Condensed family
// (Latin, Greek, Cyrillic; no CJK glyphs).
func DefaultPDFFont() PDFFont {
	return PDFFont{Regular: dejaVuRegular, Bold: dejaVuBold}
}

// LoadPDFFont reads a TrueType family from disk, e.g. Noto Sans JP for Japanese
// product names. An empty boldPath reuses the regular face for bold text.
func LoadPDFFont(regularPath, boldPath string) (PDFFont, error) {
	regular, err := os.ReadFile(regularPath)
	if err != nil {
		return PDFFont{}, fmt.Errorf("read font: %w", err)
	}
	font := PDFFont{Regular: regular, Bold: regular}
	if boldPath != "" {
		if font.Bold, err = os.ReadFile(boldPath); err != nil {
			return PDFFont{}, fmt.Errorf("read bold font: %w", err)
		}
	}
	if err := font.validate(); err != nil {
		return PDFFont{}, err
	}
	return font, nil
}

// validate は実際にフォントを登録して、fpdfが解析できるかを確認します。
// 壊れたファイルでfpdfがpanicする場合もエラーとして返します。
func (f PDFFont) validate() (err error) {
	if len(f.Regular) == 0 || len(f.Bold) == 0 {
		return errors.New("font: empty font file")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("font: not a usable TrueType font: %v", r)
		}
	}()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddUTF8FontFromBytes(pdfFont, "", f.Regular)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", f.Bold)
	pdf.SetFont(pdfFont, "", pdfBodySize)
	pdf.SetFont(pdfFont, "B", pdfBodySize)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("font: not a usable TrueType font: %w", err)
	}
	return nil
}

// PDFAssembler はレポートをA4縦のPDFとして組み立てます。
type PDFAssembler struct {
	creator  string
	font     PDFFont
	compress bool
}

// PDFOption configures a PDFAssembler.
type PDFOption func(*PDFAssembler)

// WithFont replaces the embedded font family.
func WithFont(font PDFFont) PDFOption {
	return func(a *PDFAssembler) { a.font = font }
}

// NewPDFAssembler creates a PDFAssembler that stamps creator into the document info.
func NewPDFAssembler(creator string, opts ...PDFOption) *PDFAssembler {
	a := &PDFAssembler{creator: creator, font: DefaultPDFFont(), compress: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *PDFAssembler) Format() DocumentFormat { return FormatPDF }

func (a *PDFAssembler) Assemble(content ReportContent) ([]byte, error) {
	if content.Chart == nil {
		return nil, errNoChart
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetCreationDate(documentEpoch)
	pdf.SetModificationDate(documentEpoch)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(a.compress)
	pdf.SetTitle(content.Title, true)
	if a.creator != "" {
		pdf.SetCreator(a.creator, true)
	}
	pdf.AddUTF8FontFromBytes(pdfFont, "", a.font.Regular)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", a.font.Bold)

	pdf.AddPage()
	left, _, right, _ := pdf.GetMargins()
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - left - right

	pdf.SetFont(pdfFont, "B", pdfTitleSize)
	pdf.CellFormat(contentWidth, pdfTitleSize*1.2, pdfText(content.Title), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont(pdfFont, "", pdfBodySize)
	pdf.MultiCell(contentWidth, pdfBodySize*1.2, pdfText(content.Description), "", "L", false)
	pdf.Ln(20)

	chartTop := pdf.GetY()
	drawBarChart(pdf, content.Chart, left, chartTop)
	pdf.SetXY(left, chartTop+content.Chart.Config.Height)

	if len(content.Records) > 0 {
		pdf.Ln(20)
		drawSummaryTable(pdf, content.Records, contentWidth)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfText はfpdfのUTF-8フォントが扱えない基本多言語面外の文字を U+FFFD に置き換えます。
func pdfText(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return utf8.RuneError
		}
		return r
	}, s)
}

// drawBarChart renders the chart with its canvas top-left corner at (originX, originY).
func drawBarChart(pdf *fpdf.Fpdf, chart *BarChart, originX, originY float64) {
	cfg := chart.Config
	// キャンバス座標（左下原点）からページ座標（左上原点）へ変換
	px := func(x float64) float64 { return originX + x }
	py := func(y float64) float64 { return originY + cfg.Height - y }

	pdf.SetLineWidth(0.5)
	pdf.SetDrawColor(cfg.Stroke.R, cfg.Stroke.G, cfg.Stroke.B)
	pdf.SetTextColor(cfg.Stroke.R, cfg.Stroke.G, cfg.Stroke.B)

	// value axis
	pdf.SetFont(pdfFont, "", cfg.TickFontSize)
	ascent := cfg.TickFontSize * pdfAscentFactor
	for _, tick := range chart.ValueTicks() {
		y := py(tick.Y)
		pdf.Line(px(cfg.PlotX-5), y, px(cfg.PlotX), y)
		text := tick.Value.String()
		w := pdf.GetStringWidth(text)
		pdf.Text(px(cfg.PlotX-7)-w, y+ascent/2, text)
	}

	pdf.SetFillColor(cfg.BarFill.R, cfg.BarFill.G, cfg.BarFill.B)
	for _, r := range chart.BarRects() {
		if r.H <= 0 {
			continue
		}
		pdf.Rect(px(r.X), py(r.Y+r.H), r.W, r.H, "FD")
	}

	pdf.Rect(px(cfg.PlotX), py(cfg.PlotY+cfg.PlotHeight), cfg.PlotWidth, cfg.PlotHeight, "D")

	// category labels, rotated around their anchor
	pdf.SetFont(pdfFont, "", cfg.LabelFontSize)
	ascent = cfg.LabelFontSize * pdfAscentFactor
	for _, label := range chart.LabelAnchors() {
		text := pdfText(label.Text)
		w := pdf.GetStringWidth(text)
		x, y := px(label.X), py(label.Y)
		tx, ty := anchorOffset(label.Anchor, w, ascent)

		pdf.TransformBegin()
		pdf.TransformRotate(label.Angle, x, y)
		pdf.Text(x+tx, y+ty, text)
		pdf.TransformEnd()
	}
}

// anchorOffset returns the baseline start of a text box of width w relative to
// the anchor point, in page coordinates (y grows downwards).
func anchorOffset(anchor string, w, ascent float64) (float64, float64) {
	var dx, dy float64
	switch anchor {
	case "ne", "e", "se":
		dx = -w
	case "n", "c", "s":
		dx = -w / 2
	}
	switch anchor {
	case "ne", "n", "nw":
		dy = ascent
	case "e", "c", "w":
		dy = ascent / 2
	}
	return dx, dy
}

func drawSummaryTable(pdf *fpdf.Fpdf, records []models.SalesRecord, width float64) {
	widths := []float64{width * 0.4, width * 0.2, width * 0.2, width * 0.2}
	header := []string{"Product", "Price", "Quantity", "Subtotal"}
	aligns := []string{"L", "R", "R", "R"}

	pdf.SetFont(pdfFont, "B", pdfTableSize)
	pdf.SetFillColor(217, 217, 217)
	for i, h := range header {
		pdf.CellFormat(widths[i], pdfRowHeight, h, "1", 0, aligns[i], true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(pdfFont, "", pdfTableSize)
	for _, r := range records {
		cells := []string{
			pdfText(r.Name),
			r.Price.StringFixed(2),
			fmt.Sprintf("%d", r.Quantity),
			r.Subtotal().StringFixed(2),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], pdfRowHeight, c, "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont(pdfFont, "B", pdfTableSize)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], pdfRowHeight, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(widths[3], pdfRowHeight, models.BatchTotal(records).StringFixed(2), "1", 1, "R", false, 0, "")
}
