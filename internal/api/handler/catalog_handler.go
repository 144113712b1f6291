package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
)

// CatalogHandler proxies customers, devices, and the brand/model catalog.
type CatalogHandler struct {
	catalog ports.CatalogAPI
}

func NewCatalogHandler(catalog ports.CatalogAPI) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type customerRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

type deviceRequest struct {
	SerialNumber  string `json:"serial_number" validate:"required"`
	PhysicalState string `json:"physical_state"`
	CustomerID    int64  `json:"customer_id"   validate:"required,gt=0"`
	ModelID       int64  `json:"model_id"      validate:"required,gt=0"`
}

// --- customers ---

// ListCustomers handles GET /api/customers.
//
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Success      200  {array}  domain.Customer
// @Router       /api/customers [get]
func (h *CatalogHandler) ListCustomers(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	defer observeUpstream("customers", time.Now())
	customers, err := h.catalog.Customers(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customers)
}

// GetCustomer handles GET /api/customers/:id.
func (h *CatalogHandler) GetCustomer(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	defer observeUpstream("customers", time.Now())
	customer, err := h.catalog.Customer(c.Request().Context(), token, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer handles POST /api/customers.
func (h *CatalogHandler) CreateCustomer(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	defer observeUpstream("customers", time.Now())
	customer, err := h.catalog.CreateCustomer(c.Request().Context(), token, domain.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer handles PUT /api/customers/:id.
func (h *CatalogHandler) UpdateCustomer(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	defer observeUpstream("customers", time.Now())
	customer, err := h.catalog.UpdateCustomer(c.Request().Context(), token, id, domain.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/customers/:id.
func (h *CatalogHandler) DeleteCustomer(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	defer observeUpstream("customers", time.Now())
	if err := h.catalog.DeleteCustomer(c.Request().Context(), token, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- devices ---

// ListDevices handles GET /api/devices.
//
// @Summary      List devices
// @Tags         devices
// @Produce      json
// @Success      200  {array}  domain.Device
// @Router       /api/devices [get]
func (h *CatalogHandler) ListDevices(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	defer observeUpstream("devices", time.Now())
	devices, err := h.catalog.Devices(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, devices)
}

// GetDevice handles GET /api/devices/:id.
func (h *CatalogHandler) GetDevice(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	defer observeUpstream("devices", time.Now())
	device, err := h.catalog.Device(c.Request().Context(), token, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, device)
}

// DeviceHistory handles GET /api/devices/:id/history — the device's past
// repair orders.
func (h *CatalogHandler) DeviceHistory(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	defer observeUpstream("devices", time.Now())
	orders, err := h.catalog.DeviceHistory(c.Request().Context(), token, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// CreateDevice handles POST /api/devices.
func (h *CatalogHandler) CreateDevice(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req deviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	defer observeUpstream("devices", time.Now())
	device, err := h.catalog.CreateDevice(c.Request().Context(), token, domain.Device{
		SerialNumber:  req.SerialNumber,
		PhysicalState: req.PhysicalState,
		CustomerID:    req.CustomerID,
		ModelID:       req.ModelID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, device)
}

// UpdateDevice handles PUT /api/devices/:id.
func (h *CatalogHandler) UpdateDevice(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req deviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	defer observeUpstream("devices", time.Now())
	device, err := h.catalog.UpdateDevice(c.Request().Context(), token, id, domain.Device{
		SerialNumber:  req.SerialNumber,
		PhysicalState: req.PhysicalState,
		CustomerID:    req.CustomerID,
		ModelID:       req.ModelID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, device)
}

// DeleteDevice handles DELETE /api/devices/:id.
func (h *CatalogHandler) DeleteDevice(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	defer observeUpstream("devices", time.Now())
	if err := h.catalog.DeleteDevice(c.Request().Context(), token, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- brand / model catalog ---

// ListBrands handles GET /api/brands.
func (h *CatalogHandler) ListBrands(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	defer observeUpstream("brands", time.Now())
	brands, err := h.catalog.Brands(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, brands)
}

// ListDeviceModels handles GET /api/device-models, optionally filtered by
// ?brand_id=.
func (h *CatalogHandler) ListDeviceModels(c echo.Context) error {
	_, token, err := ctxSession(c)
	if err != nil {
		return err
	}

	var brandID int64
	if err := echo.QueryParamsBinder(c).Int64("brand_id", &brandID).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid brand_id")
	}

	defer observeUpstream("device_models", time.Now())
	models, err := h.catalog.DeviceModels(c.Request().Context(), token, brandID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models)
}
