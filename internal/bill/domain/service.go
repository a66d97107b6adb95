package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// CreateBillRequest is a draft bill supplied by a caller. The store
// assigns the ID and creation time; everything else is caller input.
type CreateBillRequest struct {
	InvoiceNumber   int64        `json:"invoice_number"`
	Date            string       `json:"date"`
	CustomerName    string       `json:"customer_name"`
	CustomerAddress string       `json:"customer_address"`
	Items           []LineItem   `json:"items"`
	Total           float64      `json:"total"`
	Kind            DocumentKind `json:"kind"`
}

// Response is the externally visible bill shape.
type Response struct {
	ID              string       `json:"id"`
	Kind            DocumentKind `json:"kind"`
	InvoiceNumber   int64        `json:"invoice_number"`
	Date            string       `json:"date"`
	CustomerName    string       `json:"customer_name"`
	CustomerAddress string       `json:"customer_address,omitempty"`
	Items           []LineItem   `json:"items"`
	Total           float64      `json:"total"`
	CreatedAt       string       `json:"created_at"`
}

// ListBillsResponse carries the in-memory snapshot plus store state.
// Loading is true only between startup and the initial fetch.
type ListBillsResponse struct {
	Loading bool       `json:"loading"`
	Version uint64     `json:"version"`
	Bills   []Response `json:"bills"`
}

// Service is the ledger store: the single owner of the in-memory bill
// collection. All reads and mutations go through it.
type Service interface {
	List(ctx context.Context) ListBillsResponse
	Add(ctx context.Context, req CreateBillRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	Preview(ctx context.Context, req CreateBillRequest) (*Response, error)
	NextInvoiceNumber(ctx context.Context) int64
}

func ParseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

var (
	ErrInvalidCustomerName    = errors.New("invalid_customer_name")
	ErrInvalidItemDescription = errors.New("invalid_item_description")
	ErrInvalidItemPrice       = errors.New("invalid_item_price")
	ErrMissingItems           = errors.New("missing_items")
	ErrInvalidInvoiceNumber   = errors.New("invalid_invoice_number")
	ErrInvalidDate            = errors.New("invalid_date")
	ErrTotalMismatch          = errors.New("total_mismatch")
	ErrInvalidBillID          = errors.New("invalid_bill_id")
	ErrBillNotFound           = errors.New("bill_not_found")
	ErrPersistenceFailed      = errors.New("persistence_failed")
	ErrLoadFailed             = errors.New("load_failed")
)
