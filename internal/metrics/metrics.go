// Package metrics exposes Prometheus counters for the economy core. All
// metrics are registered with the default registry and served by the ops API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var TransactionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "economy_transactions_recorded_total",
	Help: "Transaction records written to the audit log, by type.",
}, []string{"type"})

var LedgerTimeouts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "economy_ledger_timeouts_total",
	Help: "Ledger adapter calls that timed out with an indeterminate result.",
})

var PayrollRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "economy_payroll_runs_total",
	Help: "Payroll runs, by outcome (completed, rejected, partial).",
}, []string{"outcome"})

var DailyClaims = promauto.NewCounter(prometheus.CounterOpts{
	Name: "economy_daily_claims_total",
	Help: "Successful daily reward claims.",
})

var LuckyBonuses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "economy_lucky_bonuses_total",
	Help: "Daily claims that won the lucky bonus draw.",
})

var ApprovalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "economy_approval_requests_total",
	Help: "Self-action approval requests, by terminal status.",
}, []string{"status"})

var RollbacksIssued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "economy_rollbacks_issued_total",
	Help: "Audit-log rollbacks that issued an inverse ledger operation.",
})
