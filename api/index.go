package handler

import (
	"net/http"
	"sync"

	config "sales-report-api/configs"
	"sales-report-api/pkg/logger"
	"sales-report-api/pkg/router"

	"github.com/gin-gonic/gin"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() *gin.Engine {
	once.Do(func() {
		// 環境変数はプラットフォームの設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()
		logger.Init(cfg.LogLevel)
		gin.SetMode(gin.ReleaseMode)

		app = router.New(cfg, logger.L)
		logger.L.Info("serverless app initialized", "environment", cfg.Environment)
	})
	return app
}

// Handler はサーバーレス環境からのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
