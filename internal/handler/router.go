package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/vaultsync/internal/auth"
	"github.com/hitoshi/vaultsync/internal/metrics"
	"github.com/hitoshi/vaultsync/internal/middleware"
	"github.com/hitoshi/vaultsync/internal/repository"
)

// HealthChecker はヘルスチェックに必要な最小インターフェース。
// *sql.DBが実装している。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenConfig          auth.TokenConfig
	EnforceTenantBinding bool
	CORSAllowedOrigin    string
	RateLimiter          *middleware.RateLimiter
	Logger               *slog.Logger

	// 運用系
	HealthChecker   HealthChecker
	MetricsGatherer prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface

	// テナント
	CustomerRepo repository.CustomerRepository

	// ドキュメント
	DocumentService DocumentServiceInterface

	// コネクタ・同期
	ConnectorService ConnectorServiceInterface
	SyncService      SyncServiceInterface

	// 静的配信
	StaticDir string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → [Auth → TenantBinding → RateLimit(General)]
//
// ログイン（POST /api/login）、/health、/metricsは認証チェーンの外に配置する。
// 未マッチの/api/*は404 JSONを返し、それ以外のパスは静的フロントエンドを配信する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	authHandler := NewAuthHandler(deps.AuthService)
	customerHandler := NewCustomerHandler(deps.CustomerRepo)
	documentHandler := NewDocumentHandler(deps.DocumentService)
	connectorHandler := NewConnectorHandler(deps.ConnectorService)
	syncHandler := NewSyncHandler(deps.SyncService)

	// --- 認証不要のルート ---

	r.Post("/api/login", authHandler.Login)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/customers/{customerID}", func(r chi.Router) {
			// テナントバインディングは既定では無効（設定で有効化できる）
			r.Use(middleware.NewTenantBindingMiddleware(deps.EnforceTenantBinding))

			r.Get("/", customerHandler.GetCustomer)

			// ドキュメント管理
			r.Route("/documents", func(r chi.Router) {
				r.Get("/", documentHandler.ListDocuments)
				r.Post("/", documentHandler.CreateDocument)
				r.Get("/{documentID}", documentHandler.GetDocument)
			})

			// コネクタ管理
			r.Route("/connectors", func(r chi.Router) {
				r.Get("/", connectorHandler.ListConnectors)
				r.Post("/", connectorHandler.CreateConnector)

				// POST .../sync - 同期実行（同期専用レート制限を追加）
				r.With(deps.RateLimiter.SyncMiddleware()).Post("/{connectorID}/sync", syncHandler.RunSync)
			})
		})
	})

	// --- フォールバック ---
	// 未マッチの/api/*は404 JSON、それ以外は静的フロントエンドを配信する
	static := NewStaticHandler(deps.StaticDir)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if isAPIPath(req.URL.Path) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
			return
		}
		static.ServeHTTP(w, req)
	})

	return r
}

// isAPIPath はパスがAPI名前空間に属するかを判定する。
func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
