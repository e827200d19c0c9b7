package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"nudge/internal/metrics"
	"nudge/internal/schema"
)

const (
	minBatchLimit = 1
	maxBatchLimit = 200

	reasonNoChannel = "no channel configured/usable"
)

// ClampLimit bounds a requested batch size to [1,200].
func ClampLimit(n int) int {
	if n < minBatchLimit {
		return minBatchLimit
	}
	if n > maxBatchLimit {
		return maxBatchLimit
	}
	return n
}

// Result is the aggregate outcome of one dispatch cycle.
type Result struct {
	Succeeded    int `json:"succeeded"`
	Failed       int `json:"failed"`
	TotalClaimed int `json:"total_claimed"`
	Limit        int `json:"limit"`
}

type ClaimStore interface {
	Claim(ctx context.Context, tenantID string, limit int, caps schema.Capabilities, claimant string) ([]Claimed, error)
	MarkSent(ctx context.Context, id uint64, caps schema.Capabilities) error
	MarkFailed(ctx context.Context, id uint64, reason string, caps schema.Capabilities) error
	RecordRun(ctx context.Context, run DispatchRun) error
}

type Cataloger interface {
	Snapshot(ctx context.Context, tables ...string) schema.Capabilities
}

type ChatSender interface {
	Send(ctx context.Context, webhookURL, text string) error
}

type TextSender interface {
	Send(ctx context.Context, token, senderID, phone, text string) error
}

// WebhookValidator rejects a chat webhook URL before any network call.
type WebhookValidator func(raw string) error

// PhoneNormalizer reduces a free-form phone to a dialable destination,
// or "" when unusable.
type PhoneNormalizer func(raw string) string

// Dispatcher runs one bounded claim-resolve-deliver-record cycle per
// invocation. It holds no state between invocations; concurrency safety
// across invocations comes entirely from the claim transaction.
type Dispatcher struct {
	Store   ClaimStore
	Catalog Cataloger
	Chat    ChatSender
	Text    TextSender

	ValidateWebhook WebhookValidator
	NormalizePhone  PhoneNormalizer

	ID          string
	SendTimeout time.Duration
}

func (d *Dispatcher) sendTimeout() time.Duration {
	if d.SendTimeout <= 0 {
		return 5 * time.Second
	}
	return d.SendTimeout
}

// Dispatch claims up to limit due reminders for the tenant and attempts
// delivery on each. Per-job failures are recorded on the row and never
// abort the batch; only claim errors and the final audit write escalate.
func (d *Dispatcher) Dispatch(ctx context.Context, tenantID string, limit int) (Result, error) {
	limit = ClampLimit(limit)
	res := Result{Limit: limit}
	startedAt := time.Now()

	caps := d.Catalog.Snapshot(ctx, DispatchTables()...)

	jobs, err := d.Store.Claim(ctx, tenantID, limit, caps, d.ID)
	if err != nil {
		return res, err
	}
	res.TotalClaimed = len(jobs)
	if len(jobs) == 0 {
		return res, nil
	}

	reasons := []string{}
	for _, job := range jobs {
		if ctx.Err() != nil {
			// Remaining rows stay claimed; the stale-claim sweep of a
			// later cycle returns them to pending.
			log.Ctx(ctx).Warn().Str("tenant", tenantID).Msg("dispatch deadline hit mid-batch")
			break
		}

		if ok, reason := d.process(ctx, caps, job); ok {
			res.Succeeded++
			metrics.DispatchJobs.WithLabelValues(tenantID, "sent").Inc()
		} else {
			res.Failed++
			metrics.DispatchJobs.WithLabelValues(tenantID, "failed").Inc()
			reasons = append(reasons, fmt.Sprintf("reminder %d: %s", job.ID, reason))
		}
	}

	run := DispatchRun{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		Claimed:    res.TotalClaimed,
		Succeeded:  res.Succeeded,
		Failed:     res.Failed,
		LimitUsed:  limit,
		Errors:     pq.StringArray(reasons),
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	// The audit row must survive a deadline hit mid-batch; the per-job
	// work above already happened.
	if err := d.Store.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		return res, fmt.Errorf("record dispatch run: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("tenant", tenantID).
		Str("run_id", run.ID).
		Int("claimed", res.TotalClaimed).
		Int("succeeded", res.Succeeded).
		Int("failed", res.Failed).
		Msg("dispatch cycle finished")

	return res, nil
}

// process attempts delivery for one claimed job and writes its terminal
// state. A job only counts as succeeded when both the delivery and the
// sent write landed; a row whose write failed stays claimed and is
// recovered by the stale-claim sweep.
func (d *Dispatcher) process(ctx context.Context, caps schema.Capabilities, job Claimed) (bool, string) {
	text := ComposeText(Resolve(job))

	delivered, reason := d.deliver(ctx, job, text)
	if delivered {
		if err := d.Store.MarkSent(ctx, job.ID, caps); err != nil {
			log.Ctx(ctx).Error().Err(err).Uint64("reminder", job.ID).Msg("mark sent failed")
			return false, fmt.Sprintf("delivered but outcome write failed: %v", err)
		}
		return true, ""
	}

	if err := d.Store.MarkFailed(ctx, job.ID, reason, caps); err != nil {
		log.Ctx(ctx).Error().Err(err).Uint64("reminder", job.ID).Msg("mark failed failed")
	}
	return false, reason
}

// deliver walks the fixed channel priority: chat first when configured
// and its webhook validates, otherwise the text channel when usable.
// A validation failure skips to the next channel; an attempted send
// that errors terminates the job for this cycle.
func (d *Dispatcher) deliver(ctx context.Context, job Claimed, text string) (bool, string) {
	if job.ChatWebhookURL != nil && *job.ChatWebhookURL != "" {
		if err := d.ValidateWebhook(*job.ChatWebhookURL); err == nil {
			return d.send(ctx, "chat", func(sendCtx context.Context) error {
				return d.Chat.Send(sendCtx, *job.ChatWebhookURL, text)
			})
		}
		log.Ctx(ctx).Warn().Uint64("reminder", job.ID).Msg("chat webhook failed validation, skipping channel")
	}

	if job.TextAPIToken != nil && *job.TextAPIToken != "" &&
		job.TextSenderID != nil && *job.TextSenderID != "" &&
		job.ClientPhone != nil && d.NormalizePhone(*job.ClientPhone) != "" {
		token, sender, phone := *job.TextAPIToken, *job.TextSenderID, *job.ClientPhone
		return d.send(ctx, "text", func(sendCtx context.Context) error {
			return d.Text.Send(sendCtx, token, sender, phone, text)
		})
	}

	return false, reasonNoChannel
}

func (d *Dispatcher) send(ctx context.Context, channel string, fn func(context.Context) error) (bool, string) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout())
	defer cancel()

	start := time.Now()
	err := fn(sendCtx)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ChannelSendDuration.WithLabelValues(channel, status).Observe(time.Since(start).Seconds())

	if err != nil {
		return false, fmt.Sprintf("%s delivery failed: %v", channel, err)
	}
	return true, ""
}
