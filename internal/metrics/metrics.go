// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordLoginSuccess()
	RecordAuthFailure()
	RecordSignup()
	RecordScrumCreated()
	RecordTaskCreated()
	RecordCompositeFailure()
	RecordHistoryAppended()
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	loginSuccess     prometheus.Counter
	authFailure      prometheus.Counter
	signups          prometheus.Counter
	scrumsCreated    prometheus.Counter
	tasksCreated     prometheus.Counter
	compositeFailure prometheus.Counter
	historyAppended  prometheus.Counter
	httpStatus       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scrumdesk_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		authFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scrumdesk_auth_failure_total",
			Help: "認証失敗の合計数",
		}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scrumdesk_signups_total",
			Help: "サインアップ成功の合計数",
		}),
		scrumsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scrumdesk_scrums_created_total",
			Help: "作成されたスクラムの合計数",
		}),
		tasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scrumdesk_tasks_created_total",
			Help: "作成されたタスクの合計数",
		}),
		compositeFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scrumdesk_composite_failure_total",
			Help: "スクラム作成後にタスク作成が失敗した部分コミットの合計数",
		}),
		historyAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scrumdesk_history_appended_total",
			Help: "追記されたタスク履歴エントリの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scrumdesk_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.authFailure,
		c.signups,
		c.scrumsCreated,
		c.tasksCreated,
		c.compositeFailure,
		c.historyAppended,
		c.httpStatus,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordAuthFailure は認証失敗を記録する。
func (c *Collector) RecordAuthFailure() {
	c.authFailure.Inc()
}

// RecordSignup はサインアップ成功を記録する。
func (c *Collector) RecordSignup() {
	c.signups.Inc()
}

// RecordScrumCreated はスクラム作成を記録する。
func (c *Collector) RecordScrumCreated() {
	c.scrumsCreated.Inc()
}

// RecordTaskCreated はタスク作成を記録する。
func (c *Collector) RecordTaskCreated() {
	c.tasksCreated.Inc()
}

// RecordCompositeFailure は部分コミット（孤児スクラム発生）を記録する。
func (c *Collector) RecordCompositeFailure() {
	c.compositeFailure.Inc()
}

// RecordHistoryAppended は履歴エントリの追記を記録する。
func (c *Collector) RecordHistoryAppended() {
	c.historyAppended.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
