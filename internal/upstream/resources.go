package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/techfix/panel-gateway/internal/core/domain"
	"github.com/techfix/panel-gateway/internal/core/ports"
)

// taskInclude mirrors the expansion the repairs screen asks for: each task
// hydrated with its order, the order's device/model/brand, customer, and
// technician.
const taskInclude = "order,order.device,order.device.model,order.device.model.brand,order.customer,order.technician"

// --- users ---

func (c *Client) Users(ctx context.Context, token string) ([]domain.User, error) {
	var out []domain.User
	return out, c.resource(ctx, http.MethodGet, "/api/users", token, nil, &out)
}

func (c *Client) User(ctx context.Context, token string, id int64) (*domain.User, error) {
	var out domain.User
	if err := c.resource(ctx, http.MethodGet, userPath(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, input ports.RegisterInput, role domain.Role) (*domain.User, error) {
	var out domain.User
	body := map[string]any{
		"name":     input.Name,
		"email":    input.Email,
		"password": input.Password,
		"phone":    input.Phone,
		"role_id":  int(role.Normalize()),
	}
	if err := c.resource(ctx, http.MethodPost, "/api/users", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, token string, id int64, input ports.RegisterInput) (*domain.User, error) {
	var out domain.User
	body := map[string]any{"name": input.Name, "email": input.Email, "phone": input.Phone}
	if err := c.resource(ctx, http.MethodPut, userPath(id), token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.resource(ctx, http.MethodDelete, userPath(id), token, nil, nil)
}

// --- customers ---

func (c *Client) Customers(ctx context.Context, token string) ([]domain.Customer, error) {
	var out []domain.Customer
	return out, c.resource(ctx, http.MethodGet, "/api/customers", token, nil, &out)
}

func (c *Client) Customer(ctx context.Context, token string, id int64) (*domain.Customer, error) {
	var out domain.Customer
	if err := c.resource(ctx, http.MethodGet, customerPath(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCustomer(ctx context.Context, token string, cust domain.Customer) (*domain.Customer, error) {
	var out domain.Customer
	if err := c.resource(ctx, http.MethodPost, "/api/customers", token, cust, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, token string, id int64, cust domain.Customer) (*domain.Customer, error) {
	var out domain.Customer
	if err := c.resource(ctx, http.MethodPut, customerPath(id), token, cust, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, token string, id int64) error {
	return c.resource(ctx, http.MethodDelete, customerPath(id), token, nil, nil)
}

// --- devices & catalog ---

func (c *Client) Devices(ctx context.Context, token string) ([]domain.Device, error) {
	var out []domain.Device
	return out, c.resource(ctx, http.MethodGet, "/api/devices", token, nil, &out)
}

func (c *Client) Device(ctx context.Context, token string, id int64) (*domain.Device, error) {
	var out domain.Device
	if err := c.resource(ctx, http.MethodGet, devicePath(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeviceHistory(ctx context.Context, token string, id int64) ([]domain.RepairOrder, error) {
	var out []domain.RepairOrder
	return out, c.resource(ctx, http.MethodGet, devicePath(id)+"/history", token, nil, &out)
}

func (c *Client) CreateDevice(ctx context.Context, token string, d domain.Device) (*domain.Device, error) {
	var out domain.Device
	if err := c.resource(ctx, http.MethodPost, "/api/devices", token, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDevice(ctx context.Context, token string, id int64, d domain.Device) (*domain.Device, error) {
	var out domain.Device
	if err := c.resource(ctx, http.MethodPut, devicePath(id), token, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDevice(ctx context.Context, token string, id int64) error {
	return c.resource(ctx, http.MethodDelete, devicePath(id), token, nil, nil)
}

func (c *Client) Brands(ctx context.Context, token string) ([]domain.Brand, error) {
	var out []domain.Brand
	return out, c.resource(ctx, http.MethodGet, "/api/brands", token, nil, &out)
}

func (c *Client) DeviceModels(ctx context.Context, token string, brandID int64) ([]domain.DeviceModel, error) {
	path := "/api/device-models"
	if brandID > 0 {
		path += "?brand_id=" + strconv.FormatInt(brandID, 10)
	}
	var out []domain.DeviceModel
	return out, c.resource(ctx, http.MethodGet, path, token, nil, &out)
}

// --- repair orders ---

func (c *Client) RepairOrders(ctx context.Context, token string) ([]domain.RepairOrder, error) {
	var out []domain.RepairOrder
	return out, c.resource(ctx, http.MethodGet, "/api/repair-orders", token, nil, &out)
}

func (c *Client) RepairOrder(ctx context.Context, token string, id int64) (*domain.RepairOrder, error) {
	var out domain.RepairOrder
	if err := c.resource(ctx, http.MethodGet, orderPath(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RepairOrdersByCustomer(ctx context.Context, token string, customerID int64) ([]domain.RepairOrder, error) {
	var out []domain.RepairOrder
	path := "/api/repair-orders/customer/" + strconv.FormatInt(customerID, 10)
	return out, c.resource(ctx, http.MethodGet, path, token, nil, &out)
}

func (c *Client) CreateRepairOrder(ctx context.Context, token string, o domain.RepairOrder) (*domain.RepairOrder, error) {
	var out domain.RepairOrder
	if err := c.resource(ctx, http.MethodPost, "/api/repair-orders", token, o, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRepairOrder(ctx context.Context, token string, id int64, o domain.RepairOrder) (*domain.RepairOrder, error) {
	var out domain.RepairOrder
	if err := c.resource(ctx, http.MethodPut, orderPath(id), token, o, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRepairOrderStatus(ctx context.Context, token string, id int64, status domain.OrderStatus) (*domain.RepairOrder, error) {
	var out domain.RepairOrder
	body := map[string]string{"status": string(status)}
	if err := c.resource(ctx, http.MethodPatch, orderPath(id)+"/status", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRepairOrder(ctx context.Context, token string, id int64) error {
	return c.resource(ctx, http.MethodDelete, orderPath(id), token, nil, nil)
}

// --- repair tasks ---

func (c *Client) RepairTasks(ctx context.Context, token string) ([]domain.RepairTask, error) {
	var out []domain.RepairTask
	path := "/api/repair-tasks?include=" + url.QueryEscape(taskInclude)
	return out, c.resource(ctx, http.MethodGet, path, token, nil, &out)
}

func (c *Client) RepairTask(ctx context.Context, token string, id int64) (*domain.RepairTask, error) {
	var out domain.RepairTask
	path := taskPath(id) + "?include=" + url.QueryEscape(taskInclude)
	if err := c.resource(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRepairTask(ctx context.Context, token string, t domain.RepairTask) (*domain.RepairTask, error) {
	var out domain.RepairTask
	if err := c.resource(ctx, http.MethodPost, "/api/repair-tasks", token, t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRepairTask(ctx context.Context, token string, id int64, t domain.RepairTask) (*domain.RepairTask, error) {
	var out domain.RepairTask
	if err := c.resource(ctx, http.MethodPut, taskPath(id), token, t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRepairTask(ctx context.Context, token string, id int64) error {
	return c.resource(ctx, http.MethodDelete, taskPath(id), token, nil, nil)
}

func userPath(id int64) string     { return fmt.Sprintf("/api/users/%d", id) }
func customerPath(id int64) string { return fmt.Sprintf("/api/customers/%d", id) }
func devicePath(id int64) string   { return fmt.Sprintf("/api/devices/%d", id) }
func orderPath(id int64) string    { return fmt.Sprintf("/api/repair-orders/%d", id) }
func taskPath(id int64) string     { return fmt.Sprintf("/api/repair-tasks/%d", id) }
