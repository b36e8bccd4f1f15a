// internal/infra/metrics/prometheus.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WorkflowsTotal counts finished workflow runs (operation=create/revoke/mint, outcome=succeeded/validation/upload/submission/internal)
	WorkflowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenforge",
		Subsystem: "workflow",
		Name:      "runs_total",
		Help:      "Finished workflow runs",
	}, []string{"operation", "outcome"})

	// StageDuration tracks time spent in each workflow state
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tokenforge",
		Subsystem: "workflow",
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each workflow state",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"state"})

	// FeesLamportsTotal sums protocol fees carried by confirmed transactions
	FeesLamportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenforge",
		Subsystem: "workflow",
		Name:      "fees_lamports_total",
		Help:      "Protocol fees carried by confirmed transactions",
	}, []string{"operation"})

	// UploadsTotal counts storage uploads (provider=pinata/gcs/arweave, kind=file/json, status=ok/error)
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenforge",
		Subsystem: "storage",
		Name:      "uploads_total",
		Help:      "Storage uploads",
	}, []string{"provider", "kind", "status"})

	// RPCRequestsTotal counts Solana RPC calls
	RPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenforge",
		Subsystem: "solana",
		Name:      "rpc_requests_total",
		Help:      "RPC requests to the Solana cluster",
	}, []string{"method", "status"})
)

// ObserveStage records how long a state lasted.
func ObserveStage(state string, started time.Time) {
	StageDuration.WithLabelValues(state).Observe(time.Since(started).Seconds())
}

// RecordUpload は成功/失敗を 1 件記録します。
func RecordUpload(provider, kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	UploadsTotal.WithLabelValues(provider, kind, status).Inc()
}

// RecordRPC は RPC 呼び出しを 1 件記録します。
func RecordRPC(method string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RPCRequestsTotal.WithLabelValues(method, status).Inc()
}
