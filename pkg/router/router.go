package router

import (
	"log/slog"
	"net/http"

	config "sales-report-api/configs"
	"sales-report-api/pkg/handlers"
	"sales-report-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Creator is written into the document metadata of every report.
const Creator = "sales-report-api"

// NewReportService はすべての文書フォーマットを登録したレポートパイプラインを生成します。
func NewReportService(opts ...services.PDFOption) *services.ReportService {
	return services.NewReportService(
		services.DefaultChartConfig(),
		services.NewPDFAssembler(Creator, opts...),
		services.NewXLSXAssembler(),
	)
}

// PDFOptions loads the configured PDF font. A font that cannot be read falls
// back to the embedded one so the service still starts.
func PDFOptions(cfg *config.Config, log *slog.Logger) []services.PDFOption {
	if cfg.PDFFontPath == "" {
		return nil
	}
	font, err := services.LoadPDFFont(cfg.PDFFontPath, cfg.PDFBoldFontPath)
	if err != nil {
		log.Warn("pdf font unavailable, using embedded font", "path", cfg.PDFFontPath, "error", err)
		return nil
	}
	log.Info("pdf font loaded", "path", cfg.PDFFontPath)
	return []services.PDFOption{services.WithFont(font)}
}

// New はGinルーターを初期化し、全ルートを登録します。
func New(cfg *config.Config, log *slog.Logger) *gin.Engine {
	r := gin.New()

	// サービスの初期化
	monitoringService := services.NewMonitoringService(0)
	reportService := NewReportService(PDFOptions(cfg, log)...)

	// ハンドラーの初期化
	reportHandler := handlers.NewReportHandler(reportService, cfg.MaxBodyBytes, cfg.MaxRecords)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// ミドルウェアの登録
	r.Use(gin.Recovery())
	r.Use(handlers.RequestLogger(log))
	r.Use(monitoringService.LoggingMiddleware())
	r.Use(cors.New(corsConfig(cfg)))

	r.GET("/health", handlers.HealthCheck)

	// 旧クライアント向けのパス
	r.POST("/pdf-report", reportHandler.GeneratePDFReport)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/reports/sales", reportHandler.GenerateSalesReport)

		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
	})

	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	if cfg.AllowAllOrigins() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowOrigins
	}
	c.ExposeHeaders = []string{"Content-Disposition", "X-Request-ID"}
	return c
}
