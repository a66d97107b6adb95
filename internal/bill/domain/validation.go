package domain

import (
	"math"
	"strings"
)

// ComputeTotal sums the line item prices. It is the single source of
// truth for a document's total, for drafts and persisted bills alike.
func ComputeTotal(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price
	}
	return total
}

// ValidateDraft checks a draft bill before it may be persisted or
// previewed. The stored total must match the recomputed one; callers
// are not trusted to add up their own line items.
func ValidateDraft(req CreateBillRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return ErrInvalidCustomerName
	}
	if req.InvoiceNumber <= 0 {
		return ErrInvalidInvoiceNumber
	}
	if strings.TrimSpace(req.Date) == "" {
		return ErrInvalidDate
	}
	if len(req.Items) == 0 {
		return ErrMissingItems
	}
	for _, item := range req.Items {
		if strings.TrimSpace(item.Description) == "" {
			return ErrInvalidItemDescription
		}
		if item.Price < 0 {
			return ErrInvalidItemPrice
		}
	}
	if !totalsMatch(req.Total, ComputeTotal(req.Items)) {
		return ErrTotalMismatch
	}
	return nil
}

// totalsMatch compares amounts at cent precision. Summing float prices
// accumulates binary rounding noise (0.1 + 0.2 != 0.3) that must not
// reject a correctly totalled draft.
func totalsMatch(a, b float64) bool {
	return math.Round(a*100) == math.Round(b*100)
}
