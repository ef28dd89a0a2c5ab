package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
}

func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, exportService: exportService}
}

func sendAttachment(c *gin.Context, data []byte, filename, contentType string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}

// @Summary Investor Statement PDF
// @Description Printable statement of an investor's terms and installments
// @Tags Reports
// @Produce application/pdf
// @Param id path int true "Investor ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /reports/investors/{id}/statement [get]
func (h *ReportHandler) InvestorStatement(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	data, filename, err := h.reportService.GenerateInvestorStatementPDF(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sendAttachment(c, data, filename, "application/pdf")
}

// @Summary Export Installments CSV
// @Description Download the filtered installment list as CSV
// @Tags Reports
// @Produce text/csv
// @Param status query string false "Filter by status"
// @Param investor_id query int false "Filter by investor"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reports/installments/csv [get]
func (h *ReportHandler) InstallmentsCSV(c *gin.Context) {
	query := buildListQuery(c)

	data, filename, err := h.exportService.ExportInstallmentsCSV(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sendAttachment(c, data, filename, "text/csv")
}

// @Summary Export Installments XLSX
// @Description Download the filtered installment list plus a status summary as an Excel workbook
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Filter by status"
// @Param investor_id query int false "Filter by investor"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /reports/installments/xlsx [get]
func (h *ReportHandler) InstallmentsXLSX(c *gin.Context) {
	query := buildListQuery(c)

	data, filename, err := h.exportService.ExportInstallmentsXLSX(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	sendAttachment(c, data, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}
