package appointments

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ukydev/shop-admin/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	FilterAll      = "all"
	DateToday      = "today"
	DateUpcoming   = "upcoming"
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// SortKey selects the dashboard ordering.
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByStatus   SortKey = "status"
	SortByCustomer SortKey = "customer"
)

// ParseSortKey accepts date, status or customer. Empty means date.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortByDate, nil
	case SortByDate, SortByStatus, SortByCustomer:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key: %q", s)
	}
}

// Filter narrows the dashboard list. Empty Status or Date means "all".
type Filter struct {
	Query  string
	Status string
	Date   string
}

// Matches reports whether appt passes every part of the filter.
func (f Filter) Matches(appt models.Appointment, now time.Time) bool {
	if q := strings.ToLower(f.Query); q != "" {
		if !strings.Contains(strings.ToLower(appt.CustomerName), q) &&
			!strings.Contains(strings.ToLower(appt.TrackingCode), q) &&
			!strings.Contains(strings.ToLower(appt.VehicleInfo.LicensePlate), q) {
			return false
		}
	}
	if f.Status != "" && f.Status != FilterAll && string(appt.Status) != f.Status {
		return false
	}
	today := now.Format(dateLayout)
	switch f.Date {
	case DateToday:
		return appt.AppointmentDate == today
	case DateUpcoming:
		return appt.AppointmentDate >= today
	}
	return true
}

// FilterAndSort returns the matching appointments in key order. The sort is
// stable so equal keys keep their input order.
func FilterAndSort(list []models.Appointment, f Filter, key SortKey, now time.Time) []models.Appointment {
	out := make([]models.Appointment, 0, len(list))
	for _, appt := range list {
		if f.Matches(appt, now) {
			out = append(out, appt)
		}
	}

	switch key {
	case SortByStatus:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Status.Priority() < out[j].Status.Priority()
		})
	case SortByCustomer:
		c := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].CustomerName, out[j].CustomerName) < 0
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return scheduledAt(out[i]).Before(scheduledAt(out[j]))
		})
	}
	return out
}

// scheduledAt parses the appointment's local date and time. Unparseable values sort first.
func scheduledAt(appt models.Appointment) time.Time {
	t, err := time.Parse(dateTimeLayout, appt.AppointmentDate+" "+appt.AppointmentTime)
	if err != nil {
		t, _ = time.Parse(dateLayout, appt.AppointmentDate)
	}
	return t
}
