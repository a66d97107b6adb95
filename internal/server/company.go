package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/techverse/billdesk/internal/company"
)

// GetCompanyInfo returns the current company record.
func (s *Server) GetCompanyInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.companySvc.Get()})
}

// UpdateCompanyInfo replaces the company record wholesale. Callers
// must send every field; omitted fields are not merged.
func (s *Server) UpdateCompanyInfo(c *gin.Context) {
	var req company.Info
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.Address = strings.TrimSpace(req.Address)

	if err := s.companySvc.Update(req); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s.companySvc.Get()})
}
