// Package metrics defines the custom Prometheus metrics of the archive portal.
// All metrics are registered on the default registry through promauto and are
// exposed on /metrics next to the HTTP metrics from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sti_archives"

// ── Lifecycle metrics ─────────────────────────────────────────────────────────

// SignupsTotal counts signup attempts.
// Label:
//   - result: "created", "invalid" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of registrant signups, by result.",
	},
	[]string{"result"},
)

// ReviewActionsTotal counts admin review actions.
// Labels:
//   - action: "accept", "reject", "ban" or "remove"
//   - result: "ok", "not_found", "invalid" or "error"
var ReviewActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "review_actions_total",
		Help:      "Total number of admin review actions, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// EmailsTotal counts emails handed to the mail provider.
// Labels:
//   - channel: "queued" (dispatcher) or "direct" (email-first endpoints)
//   - result: "sent" or "failed"
var EmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_total",
		Help:      "Total number of transactional emails, by channel and result.",
	},
	[]string{"channel", "result"},
)

// MailQueueDepth tracks messages waiting in each dispatcher worker channel.
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of emails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// MailQueueDroppedTotal counts emails dropped because a worker channel was full.
var MailQueueDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_queue_dropped_total",
		Help:      "Total number of emails dropped because the dispatcher queue was full.",
	},
)

// ── File storage metrics ──────────────────────────────────────────────────────

// RemoteUploadDuration measures evidence uploads to the remote backend.
// Labels:
//   - backend: "s3" or "drive"
//   - result: "ok" or "error"
var RemoteUploadDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_upload_duration_seconds",
		Help:      "Duration of evidence uploads to the remote file backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"backend", "result"},
)

// LocalFallbackTotal counts evidence files kept on local disk.
// Labels:
//   - backend: configured remote backend, "none" when disabled
//   - reason: "disabled", "upload_failed" or "open_failed"
var LocalFallbackTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "local_fallback_total",
		Help:      "Total number of evidence files retained locally instead of remotely.",
	},
	[]string{"backend", "reason"},
)
