package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sales-report-api/pkg/models"
)

// DocumentFormat identifies the serialized document type of a report.
type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatXLSX DocumentFormat = "xlsx"
)

// ErrUnsupportedFormat is returned for a format with no registered assembler.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// reportBaseName is the fixed download name, without extension.
const reportBaseName = "sales_report"

// documentEpoch は文書メタデータに埋め込む固定日時です。生成時刻は埋め込みません。
var documentEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseFormat converts a user supplied format name; the empty string means PDF.
func ParseFormat(s string) (DocumentFormat, error) {
	switch DocumentFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// MediaType returns the Content-Type for the format.
func (f DocumentFormat) MediaType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// containerType is the media type the document bytes must sniff as, directly
// or through a parent type.
func (f DocumentFormat) containerType() string {
	if f == FormatXLSX {
		return "application/zip"
	}
	return f.MediaType()
}

// Filename returns the fixed attachment name for the format.
func (f DocumentFormat) Filename() string {
	return reportBaseName + "." + string(f)
}

// ReportContent はレポート文書に配置する内容です。
// 配置順: タイトル, スペーサー, 説明文, スペーサー, グラフ, スペーサー, 集計表。
type ReportContent struct {
	Title       string
	Description string
	Chart       *BarChart
	Records     []models.SalesRecord
}

// DocumentAssembler lays out report content and serializes it fully in memory.
type DocumentAssembler interface {
	Format() DocumentFormat
	Assemble(content ReportContent) ([]byte, error)
}

var errNoChart = errors.New("report content has no chart")
