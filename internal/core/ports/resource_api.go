package ports

import (
	"context"

	"github.com/techfix/panel-gateway/internal/core/domain"
)

// Every resource call carries the session's bearer credential; the upstream
// API is the authority on per-record ownership. A 401 from any call surfaces
// as domain.ErrUnauthenticated so the gateway can revoke the session.

// UserAPI covers staff/user management (admin screens).
type UserAPI interface {
	Users(ctx context.Context, token string) ([]domain.User, error)
	User(ctx context.Context, token string, id int64) (*domain.User, error)
	CreateUser(ctx context.Context, token string, input RegisterInput, role domain.Role) (*domain.User, error)
	UpdateUser(ctx context.Context, token string, id int64, input RegisterInput) (*domain.User, error)
	DeleteUser(ctx context.Context, token string, id int64) error
}

// CatalogAPI covers customers, devices, and the brand/model catalog.
type CatalogAPI interface {
	Customers(ctx context.Context, token string) ([]domain.Customer, error)
	Customer(ctx context.Context, token string, id int64) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, token string, c domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, token string, id int64, c domain.Customer) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, token string, id int64) error

	Devices(ctx context.Context, token string) ([]domain.Device, error)
	Device(ctx context.Context, token string, id int64) (*domain.Device, error)
	DeviceHistory(ctx context.Context, token string, id int64) ([]domain.RepairOrder, error)
	CreateDevice(ctx context.Context, token string, d domain.Device) (*domain.Device, error)
	UpdateDevice(ctx context.Context, token string, id int64, d domain.Device) (*domain.Device, error)
	DeleteDevice(ctx context.Context, token string, id int64) error

	Brands(ctx context.Context, token string) ([]domain.Brand, error)
	DeviceModels(ctx context.Context, token string, brandID int64) ([]domain.DeviceModel, error)
}

// RepairAPI covers repair orders and repair tasks.
type RepairAPI interface {
	RepairOrders(ctx context.Context, token string) ([]domain.RepairOrder, error)
	RepairOrder(ctx context.Context, token string, id int64) (*domain.RepairOrder, error)
	RepairOrdersByCustomer(ctx context.Context, token string, customerID int64) ([]domain.RepairOrder, error)
	CreateRepairOrder(ctx context.Context, token string, o domain.RepairOrder) (*domain.RepairOrder, error)
	UpdateRepairOrder(ctx context.Context, token string, id int64, o domain.RepairOrder) (*domain.RepairOrder, error)
	UpdateRepairOrderStatus(ctx context.Context, token string, id int64, status domain.OrderStatus) (*domain.RepairOrder, error)
	DeleteRepairOrder(ctx context.Context, token string, id int64) error

	RepairTasks(ctx context.Context, token string) ([]domain.RepairTask, error)
	RepairTask(ctx context.Context, token string, id int64) (*domain.RepairTask, error)
	CreateRepairTask(ctx context.Context, token string, t domain.RepairTask) (*domain.RepairTask, error)
	UpdateRepairTask(ctx context.Context, token string, id int64, t domain.RepairTask) (*domain.RepairTask, error)
	DeleteRepairTask(ctx context.Context, token string, id int64) error
}
