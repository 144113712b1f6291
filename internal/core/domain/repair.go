package domain

import "time"

// OrderStatus represents the lifecycle state of a repair order.
type OrderStatus string

const (
	OrderReceived   OrderStatus = "received"
	OrderDiagnosing OrderStatus = "diagnosing"
	OrderInRepair   OrderStatus = "in_repair"
	OrderReady      OrderStatus = "ready"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Brand is a device manufacturer.
type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DeviceModel is a concrete model of a brand.
type DeviceModel struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	BrandID int64  `json:"brand_id"`
	Brand   *Brand `json:"brand,omitempty"`
}

// Customer owns devices and repair orders.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Device is a physical unit brought in for repair.
type Device struct {
	ID            int64        `json:"id"`
	SerialNumber  string       `json:"serial_number"`
	PhysicalState string       `json:"physical_state,omitempty"`
	CustomerID    int64        `json:"customer_id"`
	ModelID       int64        `json:"model_id"`
	Model         *DeviceModel `json:"model,omitempty"`
}

// RepairOrder is the intake record tying a customer's device to a technician.
type RepairOrder struct {
	ID              int64       `json:"id"`
	CustomerID      int64       `json:"customer_id"`
	DeviceID        int64       `json:"device_id"`
	TechnicianID    int64       `json:"technician_id,omitempty"`
	ReportedProblem string      `json:"reported_problem"`
	Status          OrderStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	Device          *Device     `json:"device,omitempty"`
	Customer        *Customer   `json:"customer,omitempty"`
	Technician      *User       `json:"technician,omitempty"`
}

// RepairTask is a unit of repair work performed against an order.
type RepairTask struct {
	ID           int64        `json:"id"`
	OrderID      int64        `json:"order_id"`
	Title        string       `json:"title"`
	Status       string       `json:"status"`
	Diagnosis    string       `json:"diagnosis,omitempty"`
	Solution     string       `json:"solution,omitempty"`
	TimeSpentMin int          `json:"time_spent_min"`
	Cost         float64      `json:"cost"`
	Order        *RepairOrder `json:"order,omitempty"`
}
