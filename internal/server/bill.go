package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billdomain "github.com/techverse/billdesk/internal/bill/domain"
)

// ListBills returns the in-memory ledger snapshot, newest first. The
// loading flag is true only before the initial fetch has finished.
func (s *Server) ListBills(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.billSvc.List(c.Request.Context())})
}

// CreateBill persists a draft invoice.
func (s *Server) CreateBill(c *gin.Context) {
	var req billdomain.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billSvc.Add(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// PreviewBill validates a draft and returns it with computed totals,
// persisting nothing. Quotations only ever pass through here.
func (s *Server) PreviewBill(c *gin.Context) {
	var req billdomain.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billSvc.Preview(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// DeleteBill removes a bill permanently. Unknown ids are a no-op so
// the operation stays idempotent for retrying clients.
func (s *Server) DeleteBill(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.billSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// NextInvoiceNumber suggests the next free invoice number. Advisory
// only; nothing is reserved.
func (s *Server) NextInvoiceNumber(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"next_invoice_number": s.billSvc.NextInvoiceNumber(c.Request.Context()),
	}})
}
