package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"nudge/internal/schema"
	"nudge/pkg/backoff"
)

const (
	TableReminders      = "reminders"
	TableTasks          = "tasks"
	TableClients        = "clients"
	TableChannelConfigs = "tenant_channel_configs"
)

// ErrNotInstalled means the reminders table is absent for this
// deployment. The module is optional per tenant; callers surface this
// as a distinct condition, not a server error.
var ErrNotInstalled = errors.New("reminders module not installed")

// DispatchTables are the tables one cycle's capability snapshot covers.
func DispatchTables() []string {
	return []string{TableReminders, TableTasks, TableClients, TableChannelConfigs}
}

type Store struct {
	DB       *gorm.DB
	ClaimTTL time.Duration
}

func (s *Store) claimTTL() time.Duration {
	if s.ClaimTTL <= 0 {
		return 5 * time.Minute
	}
	return s.ClaimTTL
}

// Claim atomically moves up to limit due pending rows to claimed and
// returns them joined against task, client and channel config.
// FOR UPDATE SKIP LOCKED keeps concurrent claimants from ever taking
// the same row without blocking each other.
func (s *Store) Claim(ctx context.Context, tenantID string, limit int, caps schema.Capabilities, claimant string) ([]Claimed, error) {
	if !caps.TableExists(TableReminders) {
		return nil, ErrNotInstalled
	}

	query, wantsClaimant := buildClaimQuery(caps)
	args := []any{tenantID, limit}
	if wantsClaimant {
		args = append(args, claimant)
	}

	var rows []Claimed
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Return stale claims (crashed claimant) to pending first, so
		// abandoned rows are picked up by this very cycle. Needs the
		// claim bookkeeping columns; older schemas have no stale state.
		if caps.Has(TableReminders, "claimed_at") {
			sweep := `
				update reminders
				set status = 'pending', claimed_at = null`
			if caps.Has(TableReminders, "claimed_by") {
				sweep += `, claimed_by = null`
			}
			if caps.Has(TableReminders, "updated_at") {
				sweep += `, updated_at = now()`
			}
			sweep += `
				where status = 'claimed'
				  and claimed_at is not null
				  and claimed_at < now() - make_interval(secs => ?)`
			if err := tx.Exec(sweep, s.claimTTL().Seconds()).Error; err != nil {
				return err
			}
		}

		return tx.Raw(query, args...).Scan(&rows).Error
	})
	if err != nil {
		if isUndefinedTable(err) {
			return nil, ErrNotInstalled
		}
		return nil, err
	}
	return rows, nil
}

// buildClaimQuery assembles the claim statement from the capability
// snapshot. Absent tables are not joined and absent columns are
// selected as typed nulls, so Claimed always scans the same shape.
// The second return reports whether the statement binds a claimant id.
func buildClaimQuery(caps schema.Capabilities) (string, bool) {
	sel := []string{
		"c.id",
		"c.tenant_id::text as tenant_id",
		"c.title",
		colOrNull(caps, TableReminders, "c", "message", "text") + " as message",
		"c.scheduled_at",
		colOrNull(caps, TableReminders, "c", "attempts", "int") + " as attempts",
	}
	var joins []string

	if caps.TableExists(TableTasks) && caps.Has(TableReminders, "task_id") {
		joins = append(joins, "left join tasks t on t.id = c.task_id and t.tenant_id::text = c.tenant_id")
		sel = append(sel,
			colOrNull(caps, TableTasks, "t", "title", "text")+" as task_title",
			colOrNull(caps, TableTasks, "t", "due_at", "timestamptz")+" as task_due_at",
		)
	} else {
		sel = append(sel, "null::text as task_title", "null::timestamptz as task_due_at")
	}

	if caps.TableExists(TableClients) && caps.Has(TableReminders, "client_id") {
		joins = append(joins, "left join clients cl on cl.id = c.client_id and cl.tenant_id::text = c.tenant_id")
		sel = append(sel,
			colOrNull(caps, TableClients, "cl", "name", "text")+" as client_name",
			colOrNull(caps, TableClients, "cl", "phone", "text")+" as client_phone",
		)
	} else {
		sel = append(sel, "null::text as client_name", "null::text as client_phone")
	}

	if caps.TableExists(TableChannelConfigs) {
		joins = append(joins, "left join tenant_channel_configs cc on cc.tenant_id::text = c.tenant_id")
		sel = append(sel,
			colOrNull(caps, TableChannelConfigs, "cc", "chat_webhook_url", "text")+" as chat_webhook_url",
			colOrNull(caps, TableChannelConfigs, "cc", "text_api_token", "text")+" as text_api_token",
			colOrNull(caps, TableChannelConfigs, "cc", "text_sender_id", "text")+" as text_sender_id",
		)
	} else {
		sel = append(sel,
			"null::text as chat_webhook_url",
			"null::text as text_api_token",
			"null::text as text_sender_id",
		)
	}

	set := []string{"status = 'claimed'"}
	if caps.Has(TableReminders, "updated_at") {
		set = append(set, "updated_at = now()")
	}
	wantsClaimant := caps.Has(TableReminders, "claimed_by")
	if wantsClaimant {
		set = append(set, "claimed_by = ?")
	}
	if caps.Has(TableReminders, "claimed_at") {
		set = append(set, "claimed_at = now()")
	}

	return fmt.Sprintf(`
with due as (
  select id
  from reminders
  where tenant_id::text = ?
    and status = 'pending'
    and scheduled_at <= now()
  order by scheduled_at asc, id asc
  limit ?
  for update skip locked
), c as (
  update reminders
  set %s
  where id in (select id from due)
  returning *
)
select %s
from c
%s
order by c.scheduled_at asc, c.id asc
`, strings.Join(set, ", "), strings.Join(sel, ",\n       "), strings.Join(joins, "\n")), wantsClaimant
}

func colOrNull(caps schema.Capabilities, table, alias, col, typ string) string {
	if caps.Has(table, col) {
		return alias + "." + col
	}
	return "null::" + typ
}

// Terminal writes go through the same capability snapshot as the claim:
// a lagging schema just records less bookkeeping, it never errors.

func (s *Store) MarkSent(ctx context.Context, id uint64, caps schema.Capabilities) error {
	return s.DB.WithContext(ctx).Exec(buildMarkSent(caps), id).Error
}

func buildMarkSent(caps schema.Capabilities) string {
	set := []string{"status = 'sent'"}
	if caps.Has(TableReminders, "sent_at") {
		set = append(set, "sent_at = now()")
	}
	if caps.Has(TableReminders, "last_error") {
		set = append(set, "last_error = null")
	}
	if caps.Has(TableReminders, "updated_at") {
		set = append(set, "updated_at = now()")
	}
	return "update reminders set " + strings.Join(set, ", ") + " where id = ? and status = 'claimed'"
}

func (s *Store) MarkFailed(ctx context.Context, id uint64, reason string, caps schema.Capabilities) error {
	query, bindsReason := buildMarkFailed(caps)
	args := []any{}
	if bindsReason {
		args = append(args, reason)
	}
	args = append(args, id)
	return s.DB.WithContext(ctx).Exec(query, args...).Error
}

// buildMarkFailed returns the failure UPDATE and whether it binds the
// failure reason (the last_error column may not exist yet).
func buildMarkFailed(caps schema.Capabilities) (string, bool) {
	set := []string{"status = 'failed'"}
	if caps.Has(TableReminders, "attempts") {
		set = append(set, "attempts = attempts + 1")
	}
	bindsReason := caps.Has(TableReminders, "last_error")
	if bindsReason {
		set = append(set, "last_error = ?")
	}
	if caps.Has(TableReminders, "updated_at") {
		set = append(set, "updated_at = now()")
	}
	return "update reminders set " + strings.Join(set, ", ") + " where id = ? and status = 'claimed'", bindsReason
}

// RequeueFailed returns failed rows with attempts below max to pending,
// spacing each by a jittered exponential backoff. Operator-invoked;
// the dispatch cycle itself never resurrects failed rows.
func (s *Store) RequeueFailed(ctx context.Context, tenantID string, maxAttempts int, base, max time.Duration) (int, error) {
	var requeued int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []struct {
			ID       uint64 `gorm:"column:id"`
			Attempts int    `gorm:"column:attempts"`
		}
		if err := tx.Raw(`
			select id, attempts
			from reminders
			where tenant_id::text = ? and status = 'failed' and attempts < ?
			for update skip locked
		`, tenantID, maxAttempts).Scan(&rows).Error; err != nil {
			return err
		}

		for _, r := range rows {
			delay := backoff.ExponentialJitter(base, max, r.Attempts)
			res := tx.Exec(`
				update reminders
				set status = 'pending', scheduled_at = now() + make_interval(secs => ?),
				    claimed_by = null, claimed_at = null, updated_at = now()
				where id = ? and status = 'failed'
			`, delay.Seconds(), r.ID)
			if res.Error != nil {
				return res.Error
			}
			requeued += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		if isUndefinedTable(err) {
			return 0, ErrNotInstalled
		}
		return 0, err
	}
	return int(requeued), nil
}

func (s *Store) RecordRun(ctx context.Context, run DispatchRun) error {
	return s.DB.WithContext(ctx).Create(&run).Error
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
