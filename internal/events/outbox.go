package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BillEvent is an outbox row awaiting dispatch.
type BillEvent struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	EventType   string            `gorm:"type:text;not null;index"`
	Payload     datatypes.JSONMap `gorm:"not null"`
	DedupeKey   *string           `gorm:"type:text;uniqueIndex"`
	Published   bool              `gorm:"not null;default:false;index"`
	CreatedAt   time.Time         `gorm:"not null"`
	PublishedAt *time.Time
}

// TableName sets the database table name.
func (BillEvent) TableName() string { return "bill_events" }

// Event describes a billing event to store in the outbox.
type Event struct {
	Type      string
	Payload   map[string]any
	DedupeKey string
}

// Outbox inserts billing events into the bill_events table.
type Outbox struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewOutbox(db *gorm.DB, genID *snowflake.Node) *Outbox {
	return &Outbox{db: db, genID: genID}
}

// Publish stores an event. Duplicate dedupe keys are dropped silently
// so retried mutations never double-publish.
func (o *Outbox) Publish(ctx context.Context, event Event) error {
	if o == nil || o.db == nil {
		return errors.New("outbox_unavailable")
	}
	return o.insert(o.db.WithContext(ctx), event)
}

// PublishTx stores an event inside an existing transaction so the
// event row commits or rolls back together with the business write.
func (o *Outbox) PublishTx(tx *gorm.DB, event Event) error {
	if o == nil || tx == nil {
		return errors.New("outbox_unavailable")
	}
	return o.insert(tx, event)
}

func (o *Outbox) insert(tx *gorm.DB, event Event) error {
	if o.genID == nil {
		return errors.New("outbox_unavailable")
	}
	name := strings.TrimSpace(event.Type)
	if name == "" {
		return errors.New("missing_event_type")
	}

	payload := datatypes.JSONMap{}
	for key, value := range event.Payload {
		if strings.TrimSpace(key) == "" {
			continue
		}
		payload[key] = value
	}

	var dedupe *string
	if value := strings.TrimSpace(event.DedupeKey); value != "" {
		dedupe = &value
	}

	record := BillEvent{
		ID:        o.genID.Generate(),
		EventType: name,
		Payload:   payload,
		DedupeKey: dedupe,
		CreatedAt: time.Now().UTC(),
	}
	return tx.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedupe_key"}}, DoNothing: true}).
		Create(&record).Error
}
