package services

import (
	"math"

	"sales-report-api/pkg/models"

	"github.com/shopspring/decimal"
)

// Color is an RGB colour with 0-255 channels.
type Color struct {
	R, G, B int
}

// Hex returns the colour as RRGGBB.
func (c Color) Hex() string {
	const digits = "0123456789ABCDEF"
	out := make([]byte, 0, 6)
	for _, v := range []int{c.R, c.G, c.B} {
		out = append(out, digits[(v>>4)&0xF], digits[v&0xF])
	}
	return string(out)
}

var (
	ColorSkyBlue = Color{R: 135, G: 206, B: 235}
	ColorBlack   = Color{R: 0, G: 0, B: 0}
)

// ChartConfig は棒グラフの全パラメータをまとめた不変の設定値です。
// 座標は左下原点のキャンバス単位（ポイント）です。
type ChartConfig struct {
	Width  float64
	Height float64

	PlotX      float64
	PlotY      float64
	PlotWidth  float64
	PlotHeight float64

	// ValueMargin is added to the largest value to get the axis maximum.
	ValueMargin decimal.Decimal
	// BarWidthRatio is the share of each category slot covered by its bar.
	BarWidthRatio float64

	LabelAngle    float64
	LabelAnchor   string
	LabelDX       float64
	LabelDY       float64
	LabelFontSize float64
	TickFontSize  float64

	BarFill Color
	Stroke  Color
}

// DefaultChartConfig returns the 400×200 layout used by every report.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:         400,
		Height:        200,
		PlotX:         50,
		PlotY:         50,
		PlotWidth:     300,
		PlotHeight:    125,
		ValueMargin:   decimal.NewFromInt(5),
		BarWidthRatio: 2.0 / 3.0,
		LabelAngle:    30,
		LabelAnchor:   "ne",
		LabelDX:       0,
		LabelDY:       -10,
		LabelFontSize: 8,
		TickFontSize:  8,
		BarFill:       ColorSkyBlue,
		Stroke:        ColorBlack,
	}
}

// Bar is one category of the chart.
type Bar struct {
	Label string
	Value decimal.Decimal
}

// Rect is an axis-aligned rectangle in canvas units, (X, Y) being its lower-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Label is a rotated category label. (X, Y) is the anchor point; Anchor names
// the corner of the text box that sits on it.
type Label struct {
	Text   string
	X, Y   float64
	Angle  float64
	Anchor string
}

// Tick is one value-axis gridline position.
type Tick struct {
	Value decimal.Decimal
	Y     float64
}

// BarChart は描画可能な棒グラフです。NewBarChart でのみ完全な状態で生成されます。
type BarChart struct {
	Config   ChartConfig
	Bars     []Bar
	ValueMin decimal.Decimal
	ValueMax decimal.Decimal
}

// NewBarChart builds a single-series bar chart from the records: label = name,
// value = price, in input order. The value axis runs from 0 to max(price) + margin.
func NewBarChart(cfg ChartConfig, records []models.SalesRecord) (*BarChart, error) {
	if len(records) == 0 {
		return nil, models.ErrEmptyBatch
	}

	bars := make([]Bar, len(records))
	maxValue := records[0].Price
	for i, r := range records {
		bars[i] = Bar{Label: r.Name, Value: r.Price}
		if r.Price.GreaterThan(maxValue) {
			maxValue = r.Price
		}
	}

	return &BarChart{
		Config:   cfg,
		Bars:     bars,
		ValueMin: decimal.Zero,
		ValueMax: maxValue.Add(cfg.ValueMargin),
	}, nil
}

// scale maps a value to its height above the plot baseline.
func (c *BarChart) scale(v decimal.Decimal) float64 {
	span := c.ValueMax.Sub(c.ValueMin)
	if !span.IsPositive() {
		return 0
	}
	return v.Sub(c.ValueMin).Div(span).InexactFloat64() * c.Config.PlotHeight
}

func (c *BarChart) slotWidth() float64 {
	return c.Config.PlotWidth / float64(len(c.Bars))
}

// BarRects returns the rectangle of every bar, in bar order.
func (c *BarChart) BarRects() []Rect {
	slot := c.slotWidth()
	w := slot * c.Config.BarWidthRatio
	rects := make([]Rect, len(c.Bars))
	for i, b := range c.Bars {
		rects[i] = Rect{
			X: c.Config.PlotX + slot*float64(i) + (slot-w)/2,
			Y: c.Config.PlotY,
			W: w,
			H: c.scale(b.Value),
		}
	}
	return rects
}

// LabelAnchors returns one rotated label per category, centred under its slot.
func (c *BarChart) LabelAnchors() []Label {
	slot := c.slotWidth()
	labels := make([]Label, len(c.Bars))
	for i, b := range c.Bars {
		labels[i] = Label{
			Text:   b.Label,
			X:      c.Config.PlotX + slot*(float64(i)+0.5) + c.Config.LabelDX,
			Y:      c.Config.PlotY + c.Config.LabelDY,
			Angle:  c.Config.LabelAngle,
			Anchor: c.Config.LabelAnchor,
		}
	}
	return labels
}

// maxTicks bounds the value axis no matter how the step degenerates.
const maxTicks = 50

// ValueTicks returns ticks from ValueMin up to ValueMax on a 1/2/2.5/5 step.
func (c *BarChart) ValueTicks() []Tick {
	step := niceStep(c.ValueMax.Sub(c.ValueMin).InexactFloat64(), 5)
	ticks := []Tick{}
	for v := c.ValueMin; v.LessThanOrEqual(c.ValueMax) && len(ticks) < maxTicks; v = v.Add(step) {
		ticks = append(ticks, Tick{Value: v, Y: c.Config.PlotY + c.scale(v)})
	}
	return ticks
}

// niceStep の指数はこの範囲に丸めます。範囲外のスパンは maxTicks で打ち切られます。
const (
	minStepExp = -18
	maxStepExp = 18
)

func niceStep(span float64, target int) decimal.Decimal {
	if span <= 0 || target <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return decimal.NewFromInt(1)
	}
	raw := span / float64(target)
	exp := math.Floor(math.Log10(raw))
	if exp < minStepExp || exp > maxStepExp {
		exp = math.Max(minStepExp, math.Min(maxStepExp, exp))
		return decimal.NewFromInt(1).Shift(int32(exp))
	}
	norm := raw / math.Pow(10, exp)

	var mult decimal.Decimal
	switch {
	case norm <= 1:
		mult = decimal.NewFromInt(1)
	case norm <= 2:
		mult = decimal.NewFromInt(2)
	case norm <= 2.5:
		mult = decimal.NewFromFloat(2.5)
	case norm <= 5:
		mult = decimal.NewFromInt(5)
	default:
		mult = decimal.NewFromInt(10)
	}
	return mult.Shift(int32(exp))
}
