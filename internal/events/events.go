package events

// Billing event types emitted by the ledger store.
const (
	EventBillCreated = "bill.created"
	EventBillDeleted = "bill.deleted"
)

// BillPayload captures the minimal data downstream consumers need to
// react to a ledger change.
type BillPayload struct {
	BillID        string  `json:"bill_id"`
	InvoiceNumber int64   `json:"invoice_number,omitempty"`
	Total         float64 `json:"total,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p BillPayload) ToMap() map[string]any {
	payload := map[string]any{
		"bill_id": p.BillID,
	}
	if p.InvoiceNumber != 0 {
		payload["invoice_number"] = p.InvoiceNumber
	}
	if p.Total != 0 {
		payload["total"] = p.Total
	}
	return payload
}
