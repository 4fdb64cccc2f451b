// Package analytics summarises rendered services for the dashboard.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ukydev/shop-admin/internal/models"
)

const (
	// NotAvailable is reported when there is nothing to rank.
	NotAvailable = "N/A"
	all          = "all"
)

// Filter narrows the records summarised. Empty or "all" Category and
// Technician match everything; Start and End bound StartTime inclusively.
type Filter struct {
	Start      *time.Time
	End        *time.Time
	Category   string
	Technician string
}

// Matches reports whether rec passes the filter.
func (f Filter) Matches(rec models.ServiceRecord) bool {
	if f.Start != nil && rec.StartTime.Before(*f.Start) {
		return false
	}
	if f.End != nil && rec.StartTime.After(*f.End) {
		return false
	}
	if f.Category != "" && f.Category != all && rec.Category != f.Category {
		return false
	}
	if f.Technician != "" && f.Technician != all && rec.Technician != f.Technician {
		return false
	}
	return true
}

// FilterRecords returns the records matching f in input order.
func FilterRecords(records []models.ServiceRecord, f Filter) []models.ServiceRecord {
	out := make([]models.ServiceRecord, 0, len(records))
	for _, rec := range records {
		if f.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// counter counts keys and remembers the order they were first seen.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns the most frequent key, the earliest seen on ties.
func (c *counter) top() string {
	best, bestCount := NotAvailable, 0
	for _, key := range c.order {
		if c.counts[key] > bestCount {
			best, bestCount = key, c.counts[key]
		}
	}
	return best
}

// Calculate summarises records. Revenue, durations, satisfaction and the
// breakdowns only count completed records; TotalServices counts all of them.
func Calculate(records []models.ServiceRecord) models.ServiceMetrics {
	m := models.ServiceMetrics{
		TotalServices:      len(records),
		TotalRevenue:       decimal.Zero,
		MostPopularService: NotAvailable,
		BusiestTechnician:  NotAvailable,
		ServicesByCategory: make(map[string]int),
		RevenueByService:   make(map[string]decimal.Decimal),
		MonthlyTrends:      []models.MonthlyTrend{},
	}

	var (
		totalMinutes      int
		satisfactionSum   float64
		satisfactionCount int
		services          = newCounter()
		technicians       = newCounter()
		months            = make(map[string]*models.MonthlyTrend)
	)
	for _, rec := range records {
		if rec.Status != models.StatusCompleted {
			continue
		}
		m.CompletedServices++
		m.TotalRevenue = m.TotalRevenue.Add(rec.Revenue)
		totalMinutes += rec.DurationMinutes
		if rec.CustomerSatisfaction != nil {
			satisfactionSum += *rec.CustomerSatisfaction
			satisfactionCount++
		}

		m.ServicesByCategory[rec.Category]++
		m.RevenueByService[rec.ServiceName] = m.RevenueByService[rec.ServiceName].Add(rec.Revenue)
		services.add(rec.ServiceName)
		technicians.add(rec.Technician)

		key := rec.StartTime.UTC().Format("2006-01")
		trend, ok := months[key]
		if !ok {
			trend = &models.MonthlyTrend{Month: key, Revenue: decimal.Zero}
			months[key] = trend
		}
		trend.Services++
		trend.Revenue = trend.Revenue.Add(rec.Revenue)
	}

	if m.CompletedServices > 0 {
		m.AverageServiceTime = float64(totalMinutes) / float64(m.CompletedServices)
		m.MostPopularService = services.top()
		m.BusiestTechnician = technicians.top()
	}
	if satisfactionCount > 0 {
		m.CustomerSatisfaction = satisfactionSum / float64(satisfactionCount)
	}

	for _, trend := range months {
		m.MonthlyTrends = append(m.MonthlyTrends, *trend)
	}
	sort.Slice(m.MonthlyTrends, func(i, j int) bool {
		return m.MonthlyTrends[i].Month < m.MonthlyTrends[j].Month
	})
	return m
}
