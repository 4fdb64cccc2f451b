package analytics

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/shop-admin/internal/models"
)

func score(v float64) *float64 { return &v }

func record(name, category, tech string, status models.Status, start string, minutes int, revenue string, satisfaction *float64) models.ServiceRecord {
	t, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	return models.ServiceRecord{
		ServiceName:          name,
		Category:             category,
		Technician:           tech,
		Status:               status,
		StartTime:            t,
		DurationMinutes:      minutes,
		Revenue:              decimal.RequireFromString(revenue),
		CustomerSatisfaction: satisfaction,
	}
}

func sampleRecords() []models.ServiceRecord {
	return []models.ServiceRecord{
		record("Oil Change", "Maintenance", "Bob Johnson", models.StatusCompleted, "2024-02-03T10:00:00Z", 30, "60.00", score(4)),
		record("Brake Inspection", "Inspection", "Alice Smith", models.StatusCompleted, "2024-01-20T09:00:00Z", 90, "150.50", nil),
		record("Oil Change", "Maintenance", "Alice Smith", models.StatusCompleted, "2024-01-05T08:00:00Z", 60, "55.25", score(5)),
		record("Engine Diagnostic", "Repair", "Charlie Brown", models.StatusCancelled, "2024-01-07T08:00:00Z", 0, "999.00", score(1)),
		record("Wheel Alignment", "Maintenance", "Charlie Brown", models.StatusInProgress, "2024-02-10T08:00:00Z", 45, "80.00", nil),
	}
}

func TestCalculate(t *testing.T) {
	m := Calculate(sampleRecords())

	assert.Equal(t, 5, m.TotalServices)
	assert.Equal(t, 3, m.CompletedServices)
	assert.True(t, m.TotalRevenue.Equal(decimal.RequireFromString("265.75")))
	assert.InDelta(t, 60.0, m.AverageServiceTime, 1e-9)
	assert.InDelta(t, 4.5, m.CustomerSatisfaction, 1e-9)
	assert.Equal(t, "Oil Change", m.MostPopularService)
	assert.Equal(t, "Alice Smith", m.BusiestTechnician)
	assert.Equal(t, map[string]int{"Maintenance": 2, "Inspection": 1}, m.ServicesByCategory)

	require.Len(t, m.RevenueByService, 2)
	assert.True(t, m.RevenueByService["Oil Change"].Equal(decimal.RequireFromString("115.25")))
	assert.True(t, m.RevenueByService["Brake Inspection"].Equal(decimal.RequireFromString("150.50")))

	require.Len(t, m.MonthlyTrends, 2)
	assert.Equal(t, "2024-01", m.MonthlyTrends[0].Month)
	assert.Equal(t, 2, m.MonthlyTrends[0].Services)
	assert.True(t, m.MonthlyTrends[0].Revenue.Equal(decimal.RequireFromString("205.75")))
	assert.Equal(t, "2024-02", m.MonthlyTrends[1].Month)
	assert.Equal(t, 1, m.MonthlyTrends[1].Services)
}

func TestCalculate_Empty(t *testing.T) {
	m := Calculate(nil)
	assert.Equal(t, 0, m.TotalServices)
	assert.True(t, m.TotalRevenue.IsZero())
	assert.Zero(t, m.AverageServiceTime)
	assert.Zero(t, m.CustomerSatisfaction)
	assert.Equal(t, NotAvailable, m.MostPopularService)
	assert.Equal(t, NotAvailable, m.BusiestTechnician)
	assert.Empty(t, m.MonthlyTrends)
}

func TestCalculate_NoCompleted(t *testing.T) {
	records := []models.ServiceRecord{
		record("Oil Change", "Maintenance", "Bob Johnson", models.StatusCancelled, "2024-02-03T10:00:00Z", 30, "60.00", score(3)),
	}
	m := Calculate(records)
	assert.Equal(t, 1, m.TotalServices)
	assert.Equal(t, 0, m.CompletedServices)
	assert.Equal(t, NotAvailable, m.MostPopularService)
	assert.Zero(t, m.CustomerSatisfaction)
}

func TestCalculate_TiesGoToFirstSeen(t *testing.T) {
	records := []models.ServiceRecord{
		record("Tire Rotation", "Maintenance", "Charlie Brown", models.StatusCompleted, "2024-02-03T10:00:00Z", 30, "40", nil),
		record("Oil Change", "Maintenance", "Bob Johnson", models.StatusCompleted, "2024-02-04T10:00:00Z", 30, "60", nil),
	}
	m := Calculate(records)
	assert.Equal(t, "Tire Rotation", m.MostPopularService)
	assert.Equal(t, "Charlie Brown", m.BusiestTechnician)
}

func TestCalculate_ZeroSatisfactionCounts(t *testing.T) {
	records := []models.ServiceRecord{
		record("Oil Change", "Maintenance", "Bob Johnson", models.StatusCompleted, "2024-02-03T10:00:00Z", 30, "60", score(0)),
		record("Oil Change", "Maintenance", "Bob Johnson", models.StatusCompleted, "2024-02-03T11:00:00Z", 30, "60", score(4)),
	}
	assert.InDelta(t, 2.0, Calculate(records).CustomerSatisfaction, 1e-9)
}

func TestFilterRecords(t *testing.T) {
	start := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.February, 3, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 5},
		{"all keyword", Filter{Category: "all", Technician: "all"}, 5},
		{"category", Filter{Category: "Maintenance"}, 3},
		{"technician", Filter{Technician: "Charlie Brown"}, 2},
		{"range inclusive", Filter{Start: &start, End: &end}, 3},
		{"combined", Filter{Start: &start, Category: "Maintenance", Technician: "Charlie Brown"}, 1},
		{"unknown category", Filter{Category: "Bodywork"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, FilterRecords(sampleRecords(), tt.filter), tt.want)
		})
	}
}

func TestGenerateRecords(t *testing.T) {
	now := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	records := GenerateRecords(200, rand.New(rand.NewPCG(1, 2)), now)
	require.Len(t, records, 200)

	ids := make(map[string]bool)
	for _, rec := range records {
		assert.False(t, ids[rec.ID], "duplicate id %s", rec.ID)
		ids[rec.ID] = true

		assert.False(t, rec.StartTime.After(now))
		assert.True(t, rec.StartTime.After(now.Add(-30*24*time.Hour)))
		assert.False(t, rec.CompletionTime.Before(rec.StartTime))
		assert.LessOrEqual(t, rec.DurationMinutes, 8*60)
		assert.Contains(t, Categories, rec.Category)
		assert.Contains(t, Technicians, rec.Technician)
		assert.True(t, rec.Revenue.GreaterThanOrEqual(decimal.NewFromInt(50)))
		assert.True(t, rec.Revenue.LessThanOrEqual(decimal.NewFromInt(550)))
		assert.GreaterOrEqual(t, rec.WarrantyPeriod, 1)
		assert.LessOrEqual(t, rec.WarrantyPeriod, 12)
		if rec.Status == models.StatusCompleted {
			require.NotNil(t, rec.CustomerSatisfaction)
			assert.LessOrEqual(t, *rec.CustomerSatisfaction, 5.0)
		} else {
			assert.Nil(t, rec.CustomerSatisfaction)
		}
	}

	again := GenerateRecords(200, rand.New(rand.NewPCG(1, 2)), now)
	assert.Equal(t, records, again)
}
