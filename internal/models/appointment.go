package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// VehicleInfo describes the customer's vehicle.
type VehicleInfo struct {
	Make         string `json:"make" bson:"make"`
	Model        string `json:"model" bson:"model"`
	Year         int    `json:"year" bson:"year"`
	LicensePlate string `json:"license_plate" bson:"license_plate"`
	Mileage      int    `json:"mileage" bson:"mileage"` // in kilometers
}

// String renders the vehicle as "2020 Toyota Camry".
func (v VehicleInfo) String() string {
	return fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
}

// CostItem is one additional-cost line on an appointment.
// Total is always Quantity * UnitPrice.
type CostItem struct {
	ID          string          `json:"id" bson:"id"`
	Description string          `json:"description" bson:"description"`
	Quantity    decimal.Decimal `json:"quantity" bson:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" bson:"unit_price"`
	Total       decimal.Decimal `json:"total" bson:"total"`
}

// StatusHistoryEntry records a committed status change.
type StatusHistoryEntry struct {
	Status    Status    `json:"status" bson:"status"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Notes     string    `json:"notes,omitempty" bson:"notes,omitempty"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
}

// Appointment represents a booked service visit.
type Appointment struct {
	ID              string               `json:"id" bson:"_id"`
	CustomerName    string               `json:"customer_name" bson:"customer_name"`
	CustomerEmail   string               `json:"customer_email" bson:"customer_email"`
	CustomerPhone   string               `json:"customer_phone" bson:"customer_phone"`
	ServiceName     string               `json:"service_name" bson:"service_name"`
	ServicePrice    decimal.Decimal      `json:"service_price" bson:"service_price"`
	EstimatedTime   int                  `json:"estimated_time" bson:"estimated_time"` // in minutes
	IncludesParts   bool                 `json:"includes_parts" bson:"includes_parts"`
	AppointmentDate string               `json:"appointment_date" bson:"appointment_date"` // YYYY-MM-DD
	AppointmentTime string               `json:"appointment_time" bson:"appointment_time"` // HH:MM
	Status          Status               `json:"status" bson:"status"`
	TrackingCode    string               `json:"tracking_code" bson:"tracking_code"`
	VehicleInfo     VehicleInfo          `json:"vehicle_info" bson:"vehicle_info"`
	WorkNotes       string               `json:"work_notes,omitempty" bson:"work_notes,omitempty"`
	AdditionalCosts *decimal.Decimal     `json:"additional_costs,omitempty" bson:"additional_costs,omitempty"`
	CostBreakdown   []CostItem           `json:"cost_breakdown,omitempty" bson:"cost_breakdown,omitempty"`
	StatusHistory   []StatusHistoryEntry `json:"status_history,omitempty" bson:"status_history,omitempty"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at" bson:"updated_at"`
}

// TotalCost is the base service price plus any additional costs.
func (a *Appointment) TotalCost() decimal.Decimal {
	if a.AdditionalCosts == nil {
		return a.ServicePrice
	}
	return a.ServicePrice.Add(*a.AdditionalCosts)
}

// SumCostItems adds up the line totals of items.
func SumCostItems(items []CostItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Total)
	}
	return sum
}
