package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// DraftBillID marks an unsaved bill under composition. Drafts keep the
// sentinel until the durable store assigns a real ID.
const DraftBillID = "preview"

// DocumentKind distinguishes the two printable document flavours.
// Quotations are never persisted; only invoices enter the ledger.
type DocumentKind string

const (
	DocumentKindInvoice   DocumentKind = "invoice"
	DocumentKindQuotation DocumentKind = "quotation"
)

// OrInvoice treats an unset kind as an invoice.
func (k DocumentKind) OrInvoice() DocumentKind {
	if k == DocumentKindQuotation {
		return k
	}
	return DocumentKindInvoice
}

// LineItem is a single priced row on a bill. IDs are opaque and unique
// within the parent bill; rows become immutable once the bill is saved.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Bill is a persisted invoice with its line items and stored total.
// Items live in a single JSON column, matching the one-document shape
// the rest of the app works with.
type Bill struct {
	ID              snowflake.ID   `gorm:"primaryKey"`
	InvoiceNumber   int64          `gorm:"not null;index"`
	CustomerName    string         `gorm:"type:text;not null"`
	CustomerAddress string         `gorm:"type:text"`
	Date            string         `gorm:"type:text;not null"`
	Items           datatypes.JSON `gorm:"not null"`
	Total           float64        `gorm:"not null"`
	CreatedAt       time.Time      `gorm:"not null;index"`
}

// TableName sets the database table name.
func (Bill) TableName() string { return "bills" }
