package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/models"
)

var ErrCostItemNotFound = errors.New("cost item not found")

// Cost item fields that can fail validation.
const (
	FieldDescription = "description"
	FieldQuantity    = "quantity"
	FieldUnitPrice   = "unit_price"
)

// FieldError is a validation failure on one field of one cost item.
type FieldError struct {
	ItemID  string `json:"item_id"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is returned by CostSheet.Save when items are invalid.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fmt.Sprintf("%s %s: %s", fe.ItemID, fe.Field, fe.Message)
	}
	return "invalid cost items: " + strings.Join(msgs, "; ")
}

// Has reports whether itemID has an error on field.
func (v ValidationErrors) Has(itemID, field string) bool {
	for _, fe := range v {
		if fe.ItemID == itemID && fe.Field == field {
			return true
		}
	}
	return false
}

type fieldKey struct{ item, field string }

// CostSheet edits the additional cost items of one appointment.
// Every item's Total is kept equal to Quantity * UnitPrice.
type CostSheet struct {
	backend Backend
	log     logrus.FieldLogger
	newID   func() string

	appointmentID string
	servicePrice  decimal.Decimal
	items         []models.CostItem
	committed     []models.CostItem
	errs          map[fieldKey]string
}

// NewCostSheet opens a sheet on the appointment's current cost breakdown.
func NewCostSheet(backend Backend, appt models.Appointment, log logrus.FieldLogger) *CostSheet {
	if log == nil {
		log = logrus.StandardLogger()
	}
	items := append([]models.CostItem(nil), appt.CostBreakdown...)
	return &CostSheet{
		backend:       backend,
		log:           log.WithField("appointment_id", appt.ID),
		newID:         uuid.NewString,
		appointmentID: appt.ID,
		servicePrice:  appt.ServicePrice,
		items:         items,
		committed:     append([]models.CostItem(nil), items...),
		errs:          make(map[fieldKey]string),
	}
}

// Items returns a copy of the current items in order.
func (s *CostSheet) Items() []models.CostItem {
	return append([]models.CostItem(nil), s.items...)
}

// AddItem appends a blank item with quantity 1 and returns its id.
func (s *CostSheet) AddItem() string {
	item := models.CostItem{
		ID:        s.newID(),
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.Zero,
		Total:     decimal.Zero,
	}
	s.items = append(s.items, item)
	return item.ID
}

// RemoveItem drops the item and any errors recorded against it.
func (s *CostSheet) RemoveItem(id string) error {
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			for k := range s.errs {
				if k.item == id {
					delete(s.errs, k)
				}
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCostItemNotFound, id)
}

// SetDescription replaces the item's description and clears its description error.
func (s *CostSheet) SetDescription(id, description string) error {
	return s.edit(id, FieldDescription, func(item *models.CostItem) {
		item.Description = description
	})
}

// SetQuantity updates the quantity and recomputes the line total.
func (s *CostSheet) SetQuantity(id string, quantity decimal.Decimal) error {
	return s.edit(id, FieldQuantity, func(item *models.CostItem) {
		item.Quantity = quantity
		item.Total = item.Quantity.Mul(item.UnitPrice)
	})
}

// SetUnitPrice updates the unit price and recomputes the line total.
func (s *CostSheet) SetUnitPrice(id string, unitPrice decimal.Decimal) error {
	return s.edit(id, FieldUnitPrice, func(item *models.CostItem) {
		item.UnitPrice = unitPrice
		item.Total = item.Quantity.Mul(item.UnitPrice)
	})
}

func (s *CostSheet) edit(id, field string, apply func(*models.CostItem)) error {
	for i := range s.items {
		if s.items[i].ID == id {
			apply(&s.items[i])
			delete(s.errs, fieldKey{id, field})
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCostItemNotFound, id)
}

// AdditionalTotal is the sum of all item totals.
func (s *CostSheet) AdditionalTotal() decimal.Decimal {
	return models.SumCostItems(s.items)
}

// GrandTotal is the service price plus AdditionalTotal.
func (s *CostSheet) GrandTotal() decimal.Decimal {
	return s.servicePrice.Add(s.AdditionalTotal())
}

// Errors returns the outstanding validation errors in item order.
func (s *CostSheet) Errors() ValidationErrors {
	var out ValidationErrors
	for _, item := range s.items {
		for _, field := range []string{FieldDescription, FieldQuantity, FieldUnitPrice} {
			if msg, ok := s.errs[fieldKey{item.ID, field}]; ok {
				out = append(out, FieldError{ItemID: item.ID, Field: field, Message: msg})
			}
		}
	}
	return out
}

// Validate re-checks every item and replaces the outstanding errors.
func (s *CostSheet) Validate() ValidationErrors {
	s.errs = make(map[fieldKey]string)
	for _, item := range s.items {
		if strings.TrimSpace(item.Description) == "" {
			s.errs[fieldKey{item.ID, FieldDescription}] = "description is required"
		}
		if !item.Quantity.IsPositive() {
			s.errs[fieldKey{item.ID, FieldQuantity}] = "quantity must be greater than 0"
		}
		if item.UnitPrice.IsNegative() {
			s.errs[fieldKey{item.ID, FieldUnitPrice}] = "unit price cannot be negative"
		}
	}
	return s.Errors()
}

// Save validates and sends the items to the backend. Invalid items block the
// save with ValidationErrors. A backend failure restores the last saved items.
func (s *CostSheet) Save(ctx context.Context) error {
	if errs := s.Validate(); len(errs) > 0 {
		return errs
	}
	items := s.Items()
	total := s.AdditionalTotal()
	if err := s.backend.UpdateCosts(ctx, s.appointmentID, items, total); err != nil {
		s.log.WithError(err).Error("Failed to update costs")
		s.items = append([]models.CostItem(nil), s.committed...)
		return fmt.Errorf("update costs: %w", err)
	}
	s.committed = items
	return nil
}

// Replace swaps the whole item list, recomputing every total. Items without an
// id get a new one.
func (s *CostSheet) Replace(items []models.CostItem) {
	s.items = make([]models.CostItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			item.ID = s.newID()
		}
		item.Total = item.Quantity.Mul(item.UnitPrice)
		s.items = append(s.items, item)
	}
	s.errs = make(map[fieldKey]string)
}
