package reminder

import (
	"time"

	"github.com/lib/pq"
)

const (
	StatusPending = "pending"
	StatusClaimed = "claimed"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Reminder is the dispatch job. Rows are created by upstream CRM logic
// as pending; this engine is their only writer afterwards.
type Reminder struct {
	ID       uint64 `gorm:"primaryKey"`
	TenantID string `gorm:"type:text;index;not null"`

	Title   string `gorm:"type:text;not null"`
	Message string `gorm:"type:text;not null;default:''"`

	ScheduledAt time.Time `gorm:"index;not null"`
	TaskID      *uint64   `gorm:"index"`
	ClientID    *uint64   `gorm:"index"`

	Status   string `gorm:"type:text;index;not null;default:'pending'"` // pending/claimed/sent/failed
	Attempts int    `gorm:"not null;default:0"`

	LastError *string    `gorm:"type:text"`
	ClaimedBy *string    `gorm:"type:text"`
	ClaimedAt *time.Time `gorm:"type:timestamptz"`
	SentAt    *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// Task and Client are read-only here; the CRM owns them. They only
// exist as models so migrations and the claim join know their shape.
type Task struct {
	ID       uint64 `gorm:"primaryKey"`
	TenantID string `gorm:"type:text;index;not null"`

	Title    string     `gorm:"type:text;not null"`
	DueAt    *time.Time `gorm:"type:timestamptz"`
	ClientID *uint64    `gorm:"index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

type Client struct {
	ID       uint64 `gorm:"primaryKey"`
	TenantID string `gorm:"type:text;index;not null"`

	Name  string `gorm:"type:text;not null"`
	Phone string `gorm:"type:text;not null;default:''"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// TenantChannelConfig holds at most one row per tenant. A nil field
// means that channel is not configured, which is not an error.
type TenantChannelConfig struct {
	TenantID string `gorm:"type:text;primaryKey"`

	ChatWebhookURL *string `gorm:"type:text"`
	TextAPIToken   *string `gorm:"type:text"`
	TextSenderID   *string `gorm:"type:text"`

	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// DispatchRun is the audit row written after a cycle that claimed work.
type DispatchRun struct {
	ID       string `gorm:"type:uuid;primaryKey"`
	TenantID string `gorm:"type:text;index;not null"`

	Claimed   int `gorm:"not null"`
	Succeeded int `gorm:"not null"`
	Failed    int `gorm:"not null"`
	LimitUsed int `gorm:"not null"`

	Errors pq.StringArray `gorm:"type:text[];not null;default:'{}'"`

	StartedAt  time.Time `gorm:"not null"`
	FinishedAt time.Time `gorm:"not null"`
}

// Claimed is one claimed row joined against its optional task, client
// and channel config. Absent columns come back as typed nulls, so the
// scan shape is identical across tenant schema versions.
type Claimed struct {
	ID          uint64    `gorm:"column:id"`
	TenantID    string    `gorm:"column:tenant_id"`
	Title       string    `gorm:"column:title"`
	Message     string    `gorm:"column:message"`
	ScheduledAt time.Time `gorm:"column:scheduled_at"`
	Attempts    int       `gorm:"column:attempts"`

	TaskTitle *string    `gorm:"column:task_title"`
	TaskDueAt *time.Time `gorm:"column:task_due_at"`

	ClientName  *string `gorm:"column:client_name"`
	ClientPhone *string `gorm:"column:client_phone"`

	ChatWebhookURL *string `gorm:"column:chat_webhook_url"`
	TextAPIToken   *string `gorm:"column:text_api_token"`
	TextSenderID   *string `gorm:"column:text_sender_id"`
}
