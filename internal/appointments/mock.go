package appointments

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/ukydev/shop-admin/internal/models"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func costItem(id, description, quantity, unitPrice string) models.CostItem {
	q := decimal.RequireFromString(quantity)
	p := decimal.RequireFromString(unitPrice)
	return models.CostItem{ID: id, Description: description, Quantity: q, UnitPrice: p, Total: q.Mul(p)}
}

// MockAppointments returns the demo appointments shown on a fresh dashboard.
func MockAppointments() []models.Appointment {
	return []models.Appointment{
		{
			ID:              "1",
			CustomerName:    "John Smith",
			CustomerEmail:   "john.smith@email.com",
			CustomerPhone:   "(555) 123-4567",
			ServiceName:     "Oil Change & Filter",
			ServicePrice:    decimal.RequireFromString("45.99"),
			EstimatedTime:   30,
			IncludesParts:   true,
			AppointmentDate: "2024-01-15",
			AppointmentTime: "09:00",
			Status:          models.StatusScheduled,
			TrackingCode:    "MC-2024-001234",
			VehicleInfo: models.VehicleInfo{
				Make: "Toyota", Model: "Camry", Year: 2020, LicensePlate: "ABC-123", Mileage: 45000,
			},
			CreatedAt: mustTime("2024-01-10T10:00:00Z"),
			UpdatedAt: mustTime("2024-01-10T10:00:00Z"),
		},
		{
			ID:              "2",
			CustomerName:    "Sarah Johnson",
			CustomerEmail:   "sarah.j@email.com",
			CustomerPhone:   "(555) 987-6543",
			ServiceName:     "Brake Inspection & Repair",
			ServicePrice:    decimal.RequireFromString("189.99"),
			EstimatedTime:   120,
			AppointmentDate: "2024-01-15",
			AppointmentTime: "11:00",
			Status:          models.StatusInProgress,
			TrackingCode:    "MC-2024-001235",
			VehicleInfo: models.VehicleInfo{
				Make: "Honda", Model: "Civic", Year: 2018, LicensePlate: "XYZ-789", Mileage: 62000,
			},
			WorkNotes:       "Front brake pads need replacement. Rotors in good condition.",
			AdditionalCosts: money("85.50"),
			CostBreakdown:   []models.CostItem{costItem("2-1", "Front brake pads", "1", "85.50")},
			CreatedAt:       mustTime("2024-01-12T14:30:00Z"),
			UpdatedAt:       mustTime("2024-01-15T11:30:00Z"),
		},
		{
			ID:              "3",
			CustomerName:    "Mike Davis",
			CustomerEmail:   "mike.davis@email.com",
			CustomerPhone:   "(555) 456-7890",
			ServiceName:     "Engine Diagnostic",
			ServicePrice:    decimal.RequireFromString("125.00"),
			EstimatedTime:   60,
			AppointmentDate: "2024-01-14",
			AppointmentTime: "14:00",
			Status:          models.StatusCompleted,
			TrackingCode:    "MC-2024-001233",
			VehicleInfo: models.VehicleInfo{
				Make: "Ford", Model: "F-150", Year: 2019, LicensePlate: "DEF-456", Mileage: 38000,
			},
			WorkNotes:       "Check engine light caused by faulty oxygen sensor. Sensor replaced.",
			AdditionalCosts: money("95.00"),
			CostBreakdown:   []models.CostItem{costItem("3-1", "Oxygen sensor", "1", "95.00")},
			CreatedAt:       mustTime("2024-01-11T09:15:00Z"),
			UpdatedAt:       mustTime("2024-01-14T16:00:00Z"),
		},
	}
}
