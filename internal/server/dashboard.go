package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type dashboardResponse struct {
	TotalInvoices int     `json:"total_invoices"`
	TotalRevenue  float64 `json:"total_revenue"`
	Loading       bool    `json:"loading"`
}

// GetDashboard returns the headline numbers shown on the home screen:
// the invoice count and the revenue across all saved bills.
func (s *Server) GetDashboard(c *gin.Context) {
	snapshot := s.billSvc.List(c.Request.Context())

	var revenue float64
	for _, bill := range snapshot.Bills {
		revenue += bill.Total
	}

	c.JSON(http.StatusOK, gin.H{"data": dashboardResponse{
		TotalInvoices: len(snapshot.Bills),
		TotalRevenue:  revenue,
		Loading:       snapshot.Loading,
	}})
}
