package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"sales-report-api/pkg/logger"
	"sales-report-api/pkg/models"
	"sales-report-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ReportGenerator is the pipeline the handler delivers from.
type ReportGenerator interface {
	Generate(ctx context.Context, records []models.SalesRecord, format services.DocumentFormat) (*services.Report, error)
}

// ReportHandler はレポート生成リクエストを受け付け、文書を添付ファイルとして返します。
type ReportHandler struct {
	generator    ReportGenerator
	maxBodyBytes int64
	maxRecords   int
}

// NewReportHandler は新しいReportHandlerを生成します。
func NewReportHandler(generator ReportGenerator, maxBodyBytes int64, maxRecords int) *ReportHandler {
	return &ReportHandler{
		generator:    generator,
		maxBodyBytes: maxBodyBytes,
		maxRecords:   maxRecords,
	}
}

// GenerateSalesReport は販売明細のJSON配列を検証し、グラフ入りのレポートを返します。
// 1件でも不正な明細があればパイプラインを実行せず400を返します。
func (h *ReportHandler) GenerateSalesReport(c *gin.Context) {
	format, err := services.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	h.generate(c, format)
}

// GeneratePDFReport は旧パス向けです。format クエリは無視し、常にPDFを返します。
func (h *ReportHandler) GeneratePDFReport(c *gin.Context) {
	h.generate(c, services.FormatPDF)
}

func (h *ReportHandler) generate(c *gin.Context, format services.DocumentFormat) {
	log := logger.FromContext(c.Request.Context())

	body, err := h.readBody(c)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   "request body exceeds " + strconv.FormatInt(maxErr.Limit, 10) + " bytes",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "failed to read request body"})
		return
	}

	records, err := models.ParseBatch(body)
	if err == nil {
		err = models.ValidateBatchSize(records, h.maxRecords)
	}
	if err != nil {
		h.respondClientError(c, err)
		return
	}

	report, err := h.generator.Generate(c.Request.Context(), records, format)
	if err != nil {
		if errors.Is(err, models.ErrEmptyBatch) || errors.Is(err, services.ErrUnsupportedFormat) {
			h.respondClientError(c, err)
			return
		}
		log.Error("report generation failed", "error", err, "records", len(records), "format", format)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.DataFromReader(http.StatusOK, int64(len(report.Body)), report.MediaType, bytes.NewReader(report.Body), map[string]string{
		"Content-Disposition": `attachment; filename="` + report.Filename + `"`,
		"Cache-Control":       "no-store",
	})
}

func (h *ReportHandler) readBody(c *gin.Context) ([]byte, error) {
	reader := io.Reader(c.Request.Body)
	if h.maxBodyBytes > 0 {
		reader = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}
	return io.ReadAll(reader)
}

func (h *ReportHandler) respondClientError(c *gin.Context, err error) {
	resp := gin.H{
		"success": false,
		"error":   err.Error(),
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		resp["error"] = "validation failed"
		resp["details"] = verr.Fields
	}
	logger.FromContext(c.Request.Context()).Info("report request rejected", "error", err)
	c.JSON(http.StatusBadRequest, resp)
}
