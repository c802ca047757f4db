// Package telemetry exposes process-wide Prometheus counters for the
// purchase workflow. Global counters only, no per-item labels, so
// cardinality stays bounded regardless of catalog size.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	PurchasesSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "purchase_attempts_submitted_total",
		Help: "Total purchase attempts accepted into the pending ledger",
	})
	PurchasesConfirmed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "purchase_attempts_confirmed_total",
		Help: "Total purchase attempts confirmed by an operator",
	})
	PurchasesRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "purchase_attempts_rejected_total",
		Help: "Total purchase attempts rejected and deleted by an operator",
	})
	DuplicateTransactions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "purchase_duplicate_transactions_total",
		Help: "Total submissions refused because the transaction id was already confirmed",
	})
	DownloadsTracked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "downloads_tracked_total",
		Help: "Total download events recorded against the stats document",
	})
	RelayRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "relay_requests_total",
		Help: "Total upstream fetches attempted by the relay proxy",
	})
	RelayFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "relay_failures_total",
		Help: "Total relay fetches that failed or returned a non-200 upstream status",
	})
)

func init() {
	prometheus.MustRegister(
		PurchasesSubmitted,
		PurchasesConfirmed,
		PurchasesRejected,
		DuplicateTransactions,
		DownloadsTracked,
		RelayRequests,
		RelayFailures,
	)
}
