package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartUsed is a part consumed while rendering a service.
type PartUsed struct {
	Name     string          `json:"name" bson:"name"`
	Quantity int             `json:"quantity" bson:"quantity"`
	Cost     decimal.Decimal `json:"cost" bson:"cost"`
}

// ServiceRecord is an immutable record of a rendered service, used for analytics.
type ServiceRecord struct {
	ID                   string          `json:"id" bson:"_id"`
	ServiceName          string          `json:"service_name" bson:"service_name"`
	Category             string          `json:"category" bson:"category"` // "Maintenance", "Repair", "Inspection"
	Technician           string          `json:"technician" bson:"technician"`
	CustomerName         string          `json:"customer_name" bson:"customer_name"`
	VehicleInfo          string          `json:"vehicle_info" bson:"vehicle_info"`
	StartTime            time.Time       `json:"start_time" bson:"start_time"`
	CompletionTime       time.Time       `json:"completion_time" bson:"completion_time"`
	DurationMinutes      int             `json:"duration_minutes" bson:"duration_minutes"`
	Status               Status          `json:"status" bson:"status"`
	Revenue              decimal.Decimal `json:"revenue" bson:"revenue"`
	PartsUsed            []PartUsed      `json:"parts_used" bson:"parts_used"`
	LaborHours           float64         `json:"labor_hours" bson:"labor_hours"`
	CustomerSatisfaction *float64        `json:"customer_satisfaction,omitempty" bson:"customer_satisfaction,omitempty"` // 0-5
	WarrantyPeriod       int             `json:"warranty_period" bson:"warranty_period"`                             // in months
	Notes                string          `json:"notes,omitempty" bson:"notes,omitempty"`
}

// MonthlyTrend accumulates completed services per calendar month.
type MonthlyTrend struct {
	Month    string          `json:"month"` // YYYY-MM
	Services int             `json:"services"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// ServiceMetrics is the services-rendered dashboard summary.
type ServiceMetrics struct {
	TotalServices        int                        `json:"total_services"`
	CompletedServices    int                        `json:"completed_services"`
	TotalRevenue         decimal.Decimal            `json:"total_revenue"`
	AverageServiceTime   float64                    `json:"average_service_time"`
	CustomerSatisfaction float64                    `json:"customer_satisfaction"`
	MostPopularService   string                     `json:"most_popular_service"`
	BusiestTechnician    string                     `json:"busiest_technician"`
	ServicesByCategory   map[string]int             `json:"services_by_category"`
	RevenueByService     map[string]decimal.Decimal `json:"revenue_by_service"`
	MonthlyTrends        []MonthlyTrend             `json:"monthly_trends"`
}
