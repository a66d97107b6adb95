package server

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	billdomain "github.com/techverse/billdesk/internal/bill/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var exportHeader = []string{"Invoice No", "Date", "Customer", "Address", "Items", "Total"}

// ExportCSV streams the full ledger as a CSV download.
func (s *Server) ExportCSV(c *gin.Context) {
	snapshot := s.billSvc.List(c.Request.Context())

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"bills_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write(exportHeader)
	for _, bill := range snapshot.Bills {
		_ = writer.Write(exportRow(bill))
	}
}

// ExportXLSX writes the ledger as a spreadsheet download.
func (s *Server) ExportXLSX(c *gin.Context) {
	snapshot := s.billSvc.List(c.Request.Context())

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bills"
	index, err := f.NewSheet(sheet)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for rowIdx, bill := range snapshot.Bills {
		for col, value := range exportRow(bill) {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"bills_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		s.log.Warn("xlsx export write failed", zap.Error(err))
	}
}

func exportRow(bill billdomain.Response) []string {
	items := ""
	for i, item := range bill.Items {
		if i > 0 {
			items += "; "
		}
		items += item.Description
	}
	return []string{
		strconv.FormatInt(bill.InvoiceNumber, 10),
		bill.Date,
		bill.CustomerName,
		bill.CustomerAddress,
		items,
		strconv.FormatFloat(bill.Total, 'f', 2, 64),
	}
}
