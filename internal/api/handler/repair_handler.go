package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
)

// RepairHandler proxies repair orders and repair tasks.
type RepairHandler struct {
	repairs ports.RepairAPI
}

func NewRepairHandler(repairs ports.RepairAPI) *RepairHandler {
	return &RepairHandler{repairs: repairs}
}

type orderRequest struct {
	CustomerID      int64  `json:"customer_id"      validate:"required,gt=0"`
	DeviceID        int64  `json:"device_id"        validate:"required,gt=0"`
	TechnicianID    int64  `json:"technician_id"`
	ReportedProblem string `json:"reported_problem" validate:"required"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=received diagnosing in_repair ready delivered cancelled"`
}

type taskRequest struct {
	OrderID      int64   `json:"order_id"  validate:"required,gt=0"`
	Title        string  `json:"title"     validate:"required"`
	Status       string  `json:"status"`
	Diagnosis    string  `json:"diagnosis"`
	Solution     string  `json:"solution"`
	TimeSpentMin int     `json:"time_spent_min"`
	Cost         float64 `json:"cost"`
}

// --- repair orders ---

// ListOrders handles GET /api/repair-orders.
//
// @Summary      List repair orders
// @Tags         repair-orders
// @Produce      json
// @Success      200  {array}  domain.RepairOrder
// @Router       /api/repair-orders [get]
func (h *RepairHandler) ListOrders(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	defer observeUpstream("repair_orders", time.Now())
	orders, err := h.repairs.RepairOrders(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/repair-orders/:id.
func (h *RepairHandler) GetOrder(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	defer observeUpstream("repair_orders", time.Now())
	order, err := h.repairs.RepairOrder(c.Request().Context(), token, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// OrdersByCustomer handles GET /api/repair-orders/customer/:id. Staff may
// read any customer's orders; a customer only their own — a known user
// asking for someone else's records is unauthorized, not unauthenticated.
func (h *RepairHandler) OrdersByCustomer(c echo.Context) error {
	state, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	customerID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if state.RoleID() == domain.RoleCustomer && state.User.ID != customerID {
		return domain.ErrForbidden
	}

	defer observeUpstream("repair_orders", time.Now())
	orders, err := h.repairs.RepairOrdersByCustomer(c.Request().Context(), token, customerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// CreateOrder handles POST /api/repair-orders.
func (h *RepairHandler) CreateOrder(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	defer observeUpstream("repair_orders", time.Now())
	order, err := h.repairs.CreateRepairOrder(c.Request().Context(), token, domain.RepairOrder{
		CustomerID:      req.CustomerID,
		DeviceID:        req.DeviceID,
		TechnicianID:    req.TechnicianID,
		ReportedProblem: req.ReportedProblem,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// UpdateOrder handles PUT /api/repair-orders/:id.
func (h *RepairHandler) UpdateOrder(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	defer observeUpstream("repair_orders", time.Now())
	order, err := h.repairs.UpdateRepairOrder(c.Request().Context(), token, id, domain.RepairOrder{
		CustomerID:      req.CustomerID,
		DeviceID:        req.DeviceID,
		TechnicianID:    req.TechnicianID,
		ReportedProblem: req.ReportedProblem,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /api/repair-orders/:id/status.
func (h *RepairHandler) UpdateOrderStatus(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	defer observeUpstream("repair_orders", time.Now())
	order, err := h.repairs.UpdateRepairOrderStatus(c.Request().Context(), token, id, domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/repair-orders/:id.
func (h *RepairHandler) DeleteOrder(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	defer observeUpstream("repair_orders", time.Now())
	if err := h.repairs.DeleteRepairOrder(c.Request().Context(), token, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- repair tasks ---

// ListTasks handles GET /api/repair-tasks. Tasks come back hydrated with
// their order, device, and customer for the repairs screen.
//
// @Summary      List repair tasks
// @Tags         repair-tasks
// @Produce      json
// @Success      200  {array}  domain.RepairTask
// @Router       /api/repair-tasks [get]
func (h *RepairHandler) ListTasks(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	defer observeUpstream("repair_tasks", time.Now())
	tasks, err := h.repairs.RepairTasks(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// GetTask handles GET /api/repair-tasks/:id.
func (h *RepairHandler) GetTask(c echo.Context) error {
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
	return c.JSON(http.StatusOK, task)
}

// CreateTask handles POST /api/repair-tasks.
func (h *RepairHandler) CreateTask(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	defer observeUpstream("repair_tasks", time.Now())
	task, err := h.repairs.CreateRepairTask(c.Request().Context(), token, domain.RepairTask{
		OrderID:      req.OrderID,
		Title:        req.Title,
		Status:       req.Status,
		Diagnosis:    req.Diagnosis,
		Solution:     req.Solution,
		TimeSpentMin: req.TimeSpentMin,
		Cost:         req.Cost,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /api/repair-tasks/:id.
func (h *RepairHandler) UpdateTask(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	defer observeUpstream("repair_tasks", time.Now())
	task, err := h.repairs.UpdateRepairTask(c.Request().Context(), token, id, domain.RepairTask{
		OrderID:      req.OrderID,
		Title:        req.Title,
		Status:       req.Status,
		Diagnosis:    req.Diagnosis,
		Solution:     req.Solution,
		TimeSpentMin: req.TimeSpentMin,
		Cost:         req.Cost,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /api/repair-tasks/:id.
func (h *RepairHandler) DeleteTask(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	defer observeUpstream("repair_tasks", time.Now())
	if err := h.repairs.DeleteRepairTask(c.Request().Context(), token, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
