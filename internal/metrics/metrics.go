// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 同期オーケストレータとGitHubゲートウェイから利用する。
type MetricsCollector interface {
	RecordSyncSuccess(connectorID string)
	RecordSyncFailure(connectorID string)
	RecordSyncLatency(duration time.Duration)
	RecordDocumentsPushed(count int)
	RecordGitHubStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	syncSuccess     prometheus.Counter
	syncFail        prometheus.Counter
	syncLatency     prometheus.Histogram
	documentsPushed prometheus.Counter
	githubStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		syncSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaultsync_sync_success_total",
			Help: "同期実行成功の合計数",
		}),
		syncFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaultsync_sync_fail_total",
			Help: "同期実行失敗の合計数",
		}),
		syncLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaultsync_sync_latency_seconds",
			Help:    "同期実行のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		documentsPushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaultsync_documents_pushed_total",
			Help: "GitHubへプッシュされたドキュメントの合計数",
		}),
		githubStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultsync_github_status_total",
			Help: "GitHub APIのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.syncSuccess,
		c.syncFail,
		c.syncLatency,
		c.documentsPushed,
		c.githubStatus,
	)

	return c
}

// RecordSyncSuccess は同期成功を記録する。
func (c *Collector) RecordSyncSuccess(connectorID string) {
	c.syncSuccess.Inc()
}

// RecordSyncFailure は同期失敗を記録する。
func (c *Collector) RecordSyncFailure(connectorID string) {
	c.syncFail.Inc()
}

// RecordSyncLatency は同期実行のレイテンシを記録する。
func (c *Collector) RecordSyncLatency(duration time.Duration) {
	c.syncLatency.Observe(duration.Seconds())
}

// RecordDocumentsPushed はプッシュされたドキュメント数を記録する。
func (c *Collector) RecordDocumentsPushed(count int) {
	c.documentsPushed.Add(float64(count))
}

// RecordGitHubStatus はGitHub APIのHTTPステータスコードを記録する。
func (c *Collector) RecordGitHubStatus(statusCode int) {
	c.githubStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
