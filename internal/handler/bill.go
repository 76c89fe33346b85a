package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/repository"
	"github.com/Reainz/restaurant-system/internal/service"
)

// BillHandler exposes the billing and consistency HTTP surface of the
// table/bill service.
type BillHandler struct {
	bills         *service.BillService
	consistency   *service.ConsistencyService
	notifications *service.NotificationService
}

// NewBillHandler returns a BillHandler.
func NewBillHandler(bills *service.BillService, consistency *service.ConsistencyService, notifications *service.NotificationService) *BillHandler {
	return &BillHandler{bills: bills, consistency: consistency, notifications: notifications}
}

// List handles GET /api/bills. Filters: table_id, status (comma
// separated), payment_status, date (YYYY-MM-DD).
func (h *BillHandler) List(c echo.Context) error {
	filter := repository.BillFilter{
		TableID:       c.QueryParam("table_id"),
		PaymentStatus: c.QueryParam("payment_status"),
	}
	if raw := c.QueryParam("status"); raw != "" {
		for _, token := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, strings.TrimSpace(token))
		}
	}
	if raw := c.QueryParam("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return badRequest(c, "invalid date, expected YYYY-MM-DD")
		}
		filter.Date = &day
	}
	bills, err := h.bills.List(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, model.BillList{Bills: bills})
}

// Create handles POST /api/bills. Generating a bill for an order that
// already has one returns the existing bill with 200.
func (h *BillHandler) Create(c echo.Context) error {
	var req model.GenerateBill
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	bill, created, err := h.bills.CreateFromOrder(c.Request().Context(), req.OrderID)
	if err != nil {
		return writeError(c, err)
	}
	if created {
		return c.JSON(http.StatusCreated, bill)
	}
	return c.JSON(http.StatusOK, bill)
}

// Get handles GET /api/bills/:id.
func (h *BillHandler) Get(c echo.Context) error {
	bill, err := h.bills.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bill)
}

// Update handles PUT /api/bills/:id.
func (h *BillHandler) Update(c echo.Context) error {
	var upd model.UpdateBill
	if err := c.Bind(&upd); err != nil {
		return badRequest(c, "invalid request body")
	}
	bill, err := h.bills.Update(c.Request().Context(), c.Param("id"), upd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bill)
}

// UpdatePaymentStatus handles PUT /api/bills/:id/payment-status?payment_status=.
func (h *BillHandler) UpdatePaymentStatus(c echo.Context) error {
	token := c.QueryParam("payment_status")
	if token == "" {
		return badRequest(c, "payment_status query parameter is required")
	}
	bill, err := h.bills.UpdatePaymentStatus(c.Request().Context(), c.Param("id"), token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bill)
}

// Refresh handles POST /api/bills/:id/refresh.
func (h *BillHandler) Refresh(c echo.Context) error {
	result, err := h.consistency.ForceRefresh(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Verify handles GET /api/bills/:id/verify.
func (h *BillHandler) Verify(c echo.Context) error {
	result, err := h.consistency.Verify(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Reconcile handles POST /api/bills/:id/reconcile?auto_fix=.
func (h *BillHandler) Reconcile(c echo.Context) error {
	autoFix := c.QueryParam("auto_fix") == "true"
	result, err := h.consistency.Reconcile(c.Request().Context(), c.Param("id"), autoFix)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Receipt handles GET /api/bills/:id/receipt and renders HTML.
func (h *BillHandler) Receipt(c echo.Context) error {
	html, err := h.bills.ReceiptHTML(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.HTML(http.StatusOK, html)
}

// OrderStatusNotification handles POST /api/orders/status, the endpoint
// the order service posts terminal statuses to.
func (h *BillHandler) OrderStatusNotification(c echo.Context) error {
	var n model.OrderStatusNotification
	if err := c.Bind(&n); err != nil {
		return badRequest(c, "invalid request body")
	}
	if n.OrderID == "" || n.Status == "" {
		return badRequest(c, "order_id and status are required")
	}
	message, err := h.notifications.Handle(c.Request().Context(), n)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}
