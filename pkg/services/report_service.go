package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sales-report-api/pkg/logger"
	"sales-report-api/pkg/models"

	"github.com/gabriel-vasile/mimetype"
)

const (
	reportTitle = "Report"

	StageChart    = "chart"
	StageDocument = "document"
	StageVerify   = "verify"
)

// ReportGenerationError wraps any failure inside chart construction or
// document assembly. Generation is deterministic, so it is never retried.
type ReportGenerationError struct {
	Stage string
	Err   error
}

func (e *ReportGenerationError) Error() string {
	return fmt.Sprintf("report generation failed at %s stage: %v", e.Stage, e.Err)
}

func (e *ReportGenerationError) Unwrap() error {
	return e.Err
}

// Report is a finished document ready for attachment delivery.
type Report struct {
	Format    DocumentFormat
	Filename  string
	MediaType string
	Body      []byte
}

// ReportService はグラフ生成と文書組み立てを順に実行するレポートパイプラインです。
// 起動時に一度だけ生成し、不変の設定のみを保持するため並行リクエストで共有できます。
type ReportService struct {
	chartConfig ChartConfig
	assemblers  map[DocumentFormat]DocumentAssembler
}

// NewReportService は新しいReportServiceを生成します。
func NewReportService(chartConfig ChartConfig, assemblers ...DocumentAssembler) *ReportService {
	m := make(map[DocumentFormat]DocumentAssembler, len(assemblers))
	for _, a := range assemblers {
		m[a.Format()] = a
	}
	return &ReportService{
		chartConfig: chartConfig,
		assemblers:  m,
	}
}

// Supports reports whether an assembler is registered for the format.
func (s *ReportService) Supports(format DocumentFormat) bool {
	_, ok := s.assemblers[format]
	return ok
}

// Generate builds the chart and the document for a validated, non-empty batch.
// An empty batch returns models.ErrEmptyBatch; an unknown format returns
// ErrUnsupportedFormat; everything else fails as *ReportGenerationError.
func (s *ReportService) Generate(ctx context.Context, records []models.SalesRecord, format DocumentFormat) (report *Report, err error) {
	log := logger.FromContext(ctx)

	if len(records) == 0 {
		return nil, models.ErrEmptyBatch
	}
	assembler, ok := s.assemblers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	stage := StageChart
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = &ReportGenerationError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
			log.Error("report generation panicked", "stage", stage, "panic", r)
		}
	}()

	start := time.Now()

	chart, err := NewBarChart(s.chartConfig, records)
	if err != nil {
		return nil, &ReportGenerationError{Stage: stage, Err: err}
	}

	stage = StageDocument
	body, err := assembler.Assemble(ReportContent{
		Title:       reportTitle,
		Description: describe(records),
		Chart:       chart,
		Records:     records,
	})
	if err != nil {
		return nil, &ReportGenerationError{Stage: stage, Err: err}
	}

	stage = StageVerify
	if err := verifyDocument(body, format); err != nil {
		return nil, &ReportGenerationError{Stage: stage, Err: err}
	}

	log.Info("report generated",
		"format", format,
		"records", len(records),
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Report{
		Format:    format,
		Filename:  format.Filename(),
		MediaType: format.MediaType(),
		Body:      body,
	}, nil
}

func describe(records []models.SalesRecord) string {
	noun := "records"
	if len(records) == 1 {
		noun = "record"
	}
	return fmt.Sprintf("Unit price per product for %d submitted sales %s. Total sales: %s.",
		len(records), noun, models.BatchTotal(records).StringFixed(2))
}

var errEmptyDocument = errors.New("assembler produced an empty document")

// verifyDocument はマジックバイトから文書の種類を判定し、要求フォーマットと一致するか確認します。
func verifyDocument(body []byte, format DocumentFormat) error {
	if len(body) == 0 {
		return errEmptyDocument
	}
	want := format.containerType()
	detected := mimetype.Detect(body)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(want) {
			return nil
		}
	}
	return fmt.Errorf("document sniffed as %s, want %s", detected.String(), want)
}
