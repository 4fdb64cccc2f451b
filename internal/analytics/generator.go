package analytics

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ukydev/shop-admin/internal/models"
)

var (
	// Categories are the service categories offered in the dashboard filter.
	Categories = []string{"Maintenance", "Repair", "Inspection"}
	// Technicians are the technicians offered in the dashboard filter.
	Technicians = []string{"Alice Smith", "Bob Johnson", "Charlie Brown"}

	serviceNames  = []string{"Oil Change", "Tire Rotation", "Brake Inspection", "Engine Diagnostic", "Wheel Alignment"}
	customerNames = []string{"John Doe", "Jane Smith", "Peter Jones", "Sarah Lee"}
	vehicles      = []string{"Toyota Camry 2018", "Honda Civic 2020", "Ford F-150 2022", "BMW X5 2019"}
	recordStatus  = []models.Status{models.StatusCompleted, models.StatusInProgress, models.StatusCancelled}
)

func pick[T any](rng *rand.Rand, options []T) T {
	return options[rng.IntN(len(options))]
}

// GenerateRecords builds n demo records started within the 30 days before now.
func GenerateRecords(n int, rng *rand.Rand, now time.Time) []models.ServiceRecord {
	records := make([]models.ServiceRecord, 0, n)
	for i := 0; i < n; i++ {
		start := now.Add(-time.Duration(rng.Int64N(int64(30 * 24 * time.Hour))))
		completion := start.Add(time.Duration(rng.Int64N(int64(8 * time.Hour))))
		minutes := int(math.Round(completion.Sub(start).Minutes()))
		status := pick(rng, recordStatus)

		var satisfaction *float64
		if status == models.StatusCompleted {
			s := math.Round(rng.Float64()*50) / 10
			satisfaction = &s
		}

		records = append(records, models.ServiceRecord{
			ID:                   fmt.Sprintf("srv_%d_%d", now.UnixMilli(), i),
			ServiceName:          pick(rng, serviceNames),
			Category:             pick(rng, Categories),
			Technician:           pick(rng, Technicians),
			CustomerName:         pick(rng, customerNames),
			VehicleInfo:          pick(rng, vehicles),
			StartTime:            start,
			CompletionTime:       completion,
			DurationMinutes:      minutes,
			Status:               status,
			Revenue:              decimal.NewFromFloat(rng.Float64()*500 + 50).Round(2),
			PartsUsed:            []models.PartUsed{},
			LaborHours:           math.Round(float64(minutes)/60*100) / 100,
			CustomerSatisfaction: satisfaction,
			WarrantyPeriod:       rng.IntN(12) + 1,
			Notes:                "Mock service record",
		})
	}
	return records
}
