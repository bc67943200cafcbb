package services

import (
	"fmt"

	"sales-report-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxSheet     = "Report"
	xlsxHeaderRow = 5
	xlsxChartCell = "F2"
)

// XLSXAssembler はレポートをExcelブックとして組み立て、ネイティブの縦棒グラフを埋め込みます。
type XLSXAssembler struct{}

func NewXLSXAssembler() *XLSXAssembler {
	return &XLSXAssembler{}
}

func (a *XLSXAssembler) Format() DocumentFormat { return FormatXLSX }

func (a *XLSXAssembler) Assemble(content ReportContent) ([]byte, error) {
	if content.Chart == nil {
		return nil, errNoChart
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 18}})
	if err != nil {
		return nil, fmt.Errorf("title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}

	if err := setRow(f, 1, content.Title); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", "A1", titleStyle); err != nil {
		return nil, err
	}
	if err := setRow(f, 3, content.Description); err != nil {
		return nil, err
	}

	if err := setRow(f, xlsxHeaderRow, "Product", "Price", "Quantity", "Subtotal"); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(xlsxSheet, "A5", "D5", headerStyle); err != nil {
		return nil, err
	}

	// グラフの系列は表の Product/Price 列を参照する
	first := xlsxHeaderRow + 1
	last := xlsxHeaderRow + len(content.Chart.Bars)
	for i, bar := range content.Chart.Bars {
		row := first + i
		values := []any{bar.Label, bar.Value.InexactFloat64()}
		if i < len(content.Records) {
			r := content.Records[i]
			values = append(values, r.Quantity, r.Subtotal().InexactFloat64())
		}
		if err := setRow(f, row, values...); err != nil {
			return nil, err
		}
	}
	totalRow := last + 1
	if len(content.Records) > 0 {
		total := models.BatchTotal(content.Records).InexactFloat64()
		if err := setRow(f, totalRow, "Total", nil, nil, total); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(xlsxSheet, fmt.Sprintf("B%d", first), fmt.Sprintf("B%d", last), moneyStyle); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(xlsxSheet, fmt.Sprintf("D%d", first), fmt.Sprintf("D%d", totalRow), moneyStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 28); err != nil {
		return nil, err
	}

	if err := f.AddChart(xlsxSheet, xlsxChartCell, barChartSpec(content.Chart, first, last)); err != nil {
		return nil, fmt.Errorf("add chart: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func barChartSpec(chart *BarChart, first, last int) *excelize.Chart {
	minValue := chart.ValueMin.InexactFloat64()
	maxValue := chart.ValueMax.InexactFloat64()
	varyColors := false

	return &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$%d", xlsxSheet, xlsxHeaderRow),
			Categories: fmt.Sprintf("%s!$A$%d:$A$%d", xlsxSheet, first, last),
			Values:     fmt.Sprintf("%s!$B$%d:$B$%d", xlsxSheet, first, last),
			Fill: excelize.Fill{
				Type:    "pattern",
				Pattern: 1,
				Color:   []string{chart.Config.BarFill.Hex()},
			},
		}},
		Dimension: excelize.ChartDimension{
			Width:  uint(chart.Config.Width),
			Height: uint(chart.Config.Height),
		},
		Legend:     excelize.ChartLegend{Position: "none"},
		VaryColors: &varyColors,
		YAxis: excelize.ChartAxis{
			Minimum:        &minValue,
			Maximum:        &maxValue,
			MajorGridLines: true,
		},
	}
}

func setRow(f *excelize.File, row int, values ...any) error {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
	}
	return nil
}
