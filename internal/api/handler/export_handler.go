package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/techfix/panel-gateway/internal/core/ports"
	"github.com/techfix/panel-gateway/internal/pdf"
)

// ExportHandler renders panel listings and repair reports as PDF downloads.
type ExportHandler struct {
	catalog ports.CatalogAPI
	repairs ports.RepairAPI
}

func NewExportHandler(catalog ports.CatalogAPI, repairs ports.RepairAPI) *ExportHandler {
	return &ExportHandler{catalog: catalog, repairs: repairs}
}

// CustomersPDF handles GET /api/customers/export.pdf.
//
// @Summary      Export the customer list as PDF
// @Tags         exports
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/customers/export.pdf [get]
func (h *ExportHandler) CustomersPDF(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	defer observeUpstream("customers", time.Now())
	customers, err := h.catalog.Customers(c.Request().Context(), token)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(customers))
	for _, cu := range customers {
		rows = append(rows, []string{
			fmt.Sprintf("%d", cu.ID), cu.Name, cu.Email, cu.Phone,
		})
	}
	return servePDF(c, "customers.pdf", pdf.ListReport{
		Title:   "Customer",
		Columns: []string{"ID", "Name", "Email", "Phone"},
		Rows:    rows,
	})
}

// OrdersPDF handles GET /api/repair-orders/export.pdf.
func (h *ExportHandler) OrdersPDF(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	defer observeUpstream("repair_orders", time.Now())
	orders, err := h.repairs.RepairOrders(c.Request().Context(), token)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		customer := fmt.Sprintf("%d", o.CustomerID)
		if o.Customer != nil {
			customer = o.Customer.Name
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", o.ID),
			customer,
			o.ReportedProblem,
			string(o.Status),
			o.CreatedAt.Format("2006-01-02"),
		})
	}
	return servePDF(c, "repair-orders.pdf", pdf.ListReport{
		Title:   "Repair Order",
		Columns: []string{"ID", "Customer", "Problem", "Status", "Created"},
		Rows:    rows,
	})
}

// RepairReportPDF handles GET /api/repair-tasks/:id/report.pdf, the printable
// per-repair report handed to the customer on pickup.
//
// @Summary      Export one repair task as a printable report
// @Tags         exports
// @Produce      application/pdf
// @Param        id   path  int  true  "Repair task ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  map[string]string
// @Router       /api/repair-tasks/{id}/report.pdf [get]
func (h *ExportHandler) RepairReportPDF(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	defer observeUpstream("repair_tasks", time.Now())
	task, err := h.repairs.RepairTask(c.Request().Context(), token, id)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="repair-report-%d.pdf"`, id))
	c.Response().Header().Set(echo.HeaderContentType, "application/pdf")
	c.Response().WriteHeader(http.StatusOK)
	return pdf.RenderRepairReport(c.Response(), task)
}

func servePDF(c echo.Context, filename string, report pdf.ListReport) error {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/pdf")
	c.Response().WriteHeader(http.StatusOK)
	return pdf.RenderList(c.Response(), report)
}
