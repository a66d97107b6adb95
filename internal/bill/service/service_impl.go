package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	billdomain "github.com/techverse/billdesk/internal/bill/domain"
	"github.com/techverse/billdesk/internal/clock"
	"github.com/techverse/billdesk/internal/events"
	"github.com/techverse/billdesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Outbox *events.Outbox `optional:"true"`
}

// Store is the ledger store. It owns the authoritative in-memory bill
// collection for the process lifetime and mediates every read and
// mutation against the durable store. The collection is newest-first;
// memory is only updated after the durable operation succeeds, so the
// two never diverge.
type Store struct {
	db  *gorm.DB
	log *zap.Logger

	genID    *snowflake.Node
	clock    clock.Clock
	billrepo repository.Repository[billdomain.Bill]
	outbox   *events.Outbox

	mu      sync.RWMutex
	bills   []billdomain.Response
	version uint64
	loading bool
	loadErr error
}

func NewStore(p ServiceParam) *Store {
	return &Store{
		db:  p.DB,
		log: p.Log.Named("bill.service"),

		genID:    p.GenID,
		clock:    p.Clock,
		billrepo: repository.ProvideStore[billdomain.Bill](p.DB),
		outbox:   p.Outbox,

		loading: true,
	}
}

// NewService exposes the store through the domain interface.
func NewService(p ServiceParam) (billdomain.Service, *Store) {
	store := NewStore(p)
	return store, store
}

// Load fetches the full bill collection from the durable store, newest
// first, and replaces the in-memory view. A fetch failure degrades to
// an empty, usable collection: the store still becomes ready and the
// error is reported to the caller rather than ending the process.
func (s *Store) Load(ctx context.Context) error {
	rows, err := s.billrepo.Find(ctx, nil, repository.WithOrder("created_at desc"))
	if err != nil {
		s.mu.Lock()
		s.bills = nil
		s.loading = false
		s.loadErr = fmt.Errorf("%w: %v", billdomain.ErrLoadFailed, err)
		loadErr := s.loadErr
		s.mu.Unlock()

		s.log.Error("initial bill fetch failed, starting with empty ledger", zap.Error(err))
		return loadErr
	}

	bills := make([]billdomain.Response, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		resp, err := toResponse(*row)
		if err != nil {
			s.log.Warn("skipping undecodable bill row",
				zap.String("bill_id", row.ID.String()), zap.Error(err))
			continue
		}
		bills = append(bills, resp)
	}

	s.mu.Lock()
	s.bills = bills
	s.loading = false
	s.loadErr = nil
	s.version++
	s.mu.Unlock()

	s.log.Info("bill ledger loaded", zap.Int("count", len(bills)))
	return nil
}

// LoadErr reports the outcome of the initial fetch. Nil once a fetch
// has succeeded.
func (s *Store) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// List returns a snapshot copy of the in-memory collection, newest
// first.
func (s *Store) List(ctx context.Context) billdomain.ListBillsResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bills := make([]billdomain.Response, len(s.bills))
	copy(bills, s.bills)
	return billdomain.ListBillsResponse{
		Loading: s.loading,
		Version: s.version,
		Bills:   bills,
	}
}

// NextInvoiceNumber suggests the next free invoice number. It is
// advisory only: nothing is reserved, and two drafts composed at the
// same time can be handed the same number.
func (s *Store) NextInvoiceNumber(ctx context.Context) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var highest int64
	for _, bill := range s.bills {
		if bill.InvoiceNumber > highest {
			highest = bill.InvoiceNumber
		}
	}
	return highest + 1
}

// Add validates a draft, persists it, and only then prepends the new
// bill to the in-memory collection. On persistence failure the
// collection is left untouched and the draft must not be treated as
// saved.
func (s *Store) Add(ctx context.Context, req billdomain.CreateBillRequest) (*billdomain.Response, error) {
	if err := billdomain.ValidateDraft(req); err != nil {
		return nil, err
	}

	items := s.assignItemIDs(req.Items)
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", billdomain.ErrPersistenceFailed, err)
	}

	record := billdomain.Bill{
		ID:              s.genID.Generate(),
		InvoiceNumber:   req.InvoiceNumber,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		Date:            strings.TrimSpace(req.Date),
		Items:           datatypes.JSON(encoded),
		Total:           billdomain.ComputeTotal(items),
		CreatedAt:       s.clock.Now(),
	}

	// Insert and outbox row share one transaction: a saved bill whose
	// created event was lost would be invisible to downstream consumers.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if s.outbox == nil {
			return nil
		}
		payload := events.BillPayload{
			BillID:        record.ID.String(),
			InvoiceNumber: record.InvoiceNumber,
			Total:         record.Total,
		}
		return s.outbox.PublishTx(tx, events.Event{
			Type:      events.EventBillCreated,
			Payload:   payload.ToMap(),
			DedupeKey: events.EventBillCreated + ":" + record.ID.String(),
		})
	})
	if err != nil {
		s.log.Error("bill insert failed",
			zap.Int64("invoice_number", req.InvoiceNumber), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", billdomain.ErrPersistenceFailed, err)
	}

	resp := billdomain.Response{
		ID:              record.ID.String(),
		Kind:            billdomain.DocumentKindInvoice,
		InvoiceNumber:   record.InvoiceNumber,
		Date:            record.Date,
		CustomerName:    record.CustomerName,
		CustomerAddress: record.CustomerAddress,
		Items:           items,
		Total:           record.Total,
		CreatedAt:       record.CreatedAt.Format(time.RFC3339),
	}

	s.mu.Lock()
	s.bills = append([]billdomain.Response{resp}, s.bills...)
	s.version++
	s.mu.Unlock()

	s.log.Info("bill saved",
		zap.String("bill_id", resp.ID),
		zap.Int64("invoice_number", resp.InvoiceNumber),
	)
	return &resp, nil
}

// Delete removes a bill from the durable store and then from memory.
// Deleting an unknown id is a no-op. There is no undo.
func (s *Store) Delete(ctx context.Context, id string) error {
	billID, err := billdomain.ParseID(id)
	if err != nil {
		return billdomain.ErrInvalidBillID
	}
	// Canonical form: the raw input may carry whitespace or leading
	// zeros that would never match the stored string ids.
	canonical := billID.String()

	deleted, err := s.billrepo.Delete(ctx, &billdomain.Bill{ID: billID})
	if err != nil {
		s.log.Error("bill delete failed", zap.String("bill_id", canonical), zap.Error(err))
		return fmt.Errorf("%w: %v", billdomain.ErrPersistenceFailed, err)
	}

	s.mu.Lock()
	for i, bill := range s.bills {
		if bill.ID == canonical {
			s.bills = append(s.bills[:i], s.bills[i+1:]...)
			s.version++
			break
		}
	}
	s.mu.Unlock()

	if deleted > 0 {
		s.publish(ctx, events.EventBillDeleted, events.BillPayload{BillID: canonical})
		s.log.Info("bill deleted", zap.String("bill_id", canonical))
	}
	return nil
}

// Preview validates a draft and returns the bill as it would be saved,
// with the draft sentinel id and a recomputed total. Nothing is
// persisted; quotations only ever pass through here.
func (s *Store) Preview(ctx context.Context, req billdomain.CreateBillRequest) (*billdomain.Response, error) {
	req.Total = billdomain.ComputeTotal(req.Items)
	if err := billdomain.ValidateDraft(req); err != nil {
		return nil, err
	}

	items := s.assignItemIDs(req.Items)
	return &billdomain.Response{
		ID:              billdomain.DraftBillID,
		Kind:            req.Kind.OrInvoice(),
		InvoiceNumber:   req.InvoiceNumber,
		Date:            strings.TrimSpace(req.Date),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		Items:           items,
		Total:           req.Total,
		CreatedAt:       s.clock.Now().Format(time.RFC3339),
	}, nil
}

func (s *Store) assignItemIDs(items []billdomain.LineItem) []billdomain.LineItem {
	out := make([]billdomain.LineItem, len(items))
	for i, item := range items {
		item.Description = strings.TrimSpace(item.Description)
		if strings.TrimSpace(item.ID) == "" {
			item.ID = uuid.NewString()
		}
		out[i] = item
	}
	return out
}

func (s *Store) publish(ctx context.Context, eventType string, payload events.BillPayload) {
	if s.outbox == nil {
		return
	}
	err := s.outbox.Publish(ctx, events.Event{
		Type:      eventType,
		Payload:   payload.ToMap(),
		DedupeKey: eventType + ":" + payload.BillID,
	})
	if err != nil {
		s.log.Warn("outbox publish failed",
			zap.String("event_type", eventType),
			zap.String("bill_id", payload.BillID),
			zap.Error(err),
		)
	}
}

func toResponse(record billdomain.Bill) (billdomain.Response, error) {
	var items []billdomain.LineItem
	if len(record.Items) > 0 {
		if err := json.Unmarshal(record.Items, &items); err != nil {
			return billdomain.Response{}, err
		}
	}
	return billdomain.Response{
		ID:              record.ID.String(),
		Kind:            billdomain.DocumentKindInvoice,
		InvoiceNumber:   record.InvoiceNumber,
		Date:            record.Date,
		CustomerName:    record.CustomerName,
		CustomerAddress: record.CustomerAddress,
		Items:           items,
		Total:           record.Total,
		CreatedAt:       record.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}
