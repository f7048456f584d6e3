package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/query"
	"github.com/fleetpulse/fleetpulse/internal/stats"
)

// CustomerService manages customer accounts
type CustomerService struct {
	db *gorm.DB
}

// NewCustomerService creates a new customer service
func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

// CustomerFilter selects customers for listing
type CustomerFilter struct {
	SupportLevel database.SupportLevel
	Status       database.CustomerStatus
	Search       string
}

// customerSearchColumns are matched by the free-text search
var customerSearchColumns = []string{"name", "contact", "email", "location"}

func (f CustomerFilter) spec() *query.Spec {
	return query.New().
		Eq("support_level", string(f.SupportLevel)).
		Eq("status", string(f.Status)).
		Search(f.Search, customerSearchColumns...)
}

// CustomerStats summarizes the filtered customers
type CustomerStats struct {
	Total                     int64            `json:"total"`
	BySupportLevel            map[string]int64 `json:"bySupportLevel"`
	ByStatus                  map[string]int64 `json:"byStatus"`
	TotalDevices              int64            `json:"totalDevices"`
	AverageDevicesPerCustomer float64          `json:"averageDevicesPerCustomer"`
}

// CustomerList is one page of customers
type CustomerList struct {
	Items []database.Customer
	Total int64
	Stats CustomerStats
}

// List returns customers newest first
func (s *CustomerService) List(ctx context.Context, f CustomerFilter, offset, limit int) (*CustomerList, error) {
	spec := f.spec().OrderBy("created_at DESC", "customer_id ASC")

	page, err := query.List[database.Customer](ctx, s.db, spec, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	bySupport, err := query.CountBy[database.Customer](ctx, s.db, f.spec(), "support_level")
	if err != nil {
		return nil, err
	}
	byStatus, err := query.CountBy[database.Customer](ctx, s.db, f.spec(), "status")
	if err != nil {
		return nil, err
	}
	devices, err := query.Sum[database.Customer](ctx, s.db, f.spec(), "device_count")
	if err != nil {
		return nil, err
	}

	var totalDevices int64
	if devices != nil {
		totalDevices = int64(*devices)
	}

	return &CustomerList{
		Items: page.Items,
		Total: page.Total,
		Stats: CustomerStats{
			Total:                     page.Total,
			BySupportLevel:            stats.Distribution(bySupport),
			ByStatus:                  stats.Distribution(byStatus),
			TotalDevices:              totalDevices,
			AverageDevicesPerCustomer: stats.Ratio(devices, page.Total),
		},
	}, nil
}

// CustomerDetail is a customer with its devices and ticket summary
type CustomerDetail struct {
	database.Customer
	OpenTickets   int64             `json:"openTickets"`
	RecentTickets []database.Ticket `json:"recentTickets"`
}

// Get returns one customer with its devices
func (s *CustomerService) Get(ctx context.Context, id string) (*CustomerDetail, error) {
	var customer database.Customer
	err := s.db.WithContext(ctx).
		Preload("Devices", func(db *gorm.DB) *gorm.DB {
			return db.Order(query.RankCase("risk_level", "HIGH", "MEDIUM", "LOW")).Order("health_score ASC")
		}).
		Where("customer_id = ?", id).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer %s: %w", id, err)
	}

	detail := &CustomerDetail{Customer: customer, RecentTickets: []database.Ticket{}}
	if err := s.db.WithContext(ctx).Model(&database.Ticket{}).
		Where("customer_id = ? AND status IN ?", id, database.OpenTicketStatuses()).
		Count(&detail.OpenTickets).Error; err != nil {
		return nil, fmt.Errorf("count open tickets: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", id).
		Order("created_at DESC").
		Limit(5).
		Find(&detail.RecentTickets).Error; err != nil {
		return nil, fmt.Errorf("load recent tickets: %w", err)
	}
	return detail, nil
}

// Create inserts a new customer. Status defaults to ACTIVE.
func (s *CustomerService) Create(ctx context.Context, customer *database.Customer) error {
	customer.DeviceCount = 0
	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

// CustomerPatch lists the customer fields an update may overwrite. Nil fields
// are left unchanged.
type CustomerPatch struct {
	Name          *string
	Contact       *string
	Email         *string
	Phone         *string
	Location      *string
	SupportLevel  *database.SupportLevel
	Status        *database.CustomerStatus
	ContractStart *time.Time
	ContractEnd   *time.Time
}

func (p CustomerPatch) updates() map[string]interface{} {
	u := map[string]interface{}{}
	setIf(u, "name", p.Name)
	setIf(u, "contact", p.Contact)
	setIf(u, "email", p.Email)
	setIf(u, "phone", p.Phone)
	setIf(u, "location", p.Location)
	setIf(u, "support_level", p.SupportLevel)
	setIf(u, "status", p.Status)
	setIf(u, "contract_start", p.ContractStart)
	setIf(u, "contract_end", p.ContractEnd)
	return u
}

// Update overwrites the fields set in patch
func (s *CustomerService) Update(ctx context.Context, id string, patch CustomerPatch) (*database.Customer, error) {
	var customer database.Customer
	if err := s.db.WithContext(ctx).Where("customer_id = ?", id).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer %s: %w", id, err)
	}

	if u := patch.updates(); len(u) > 0 {
		if err := s.db.WithContext(ctx).Model(&customer).Updates(u).Error; err != nil {
			return nil, fmt.Errorf("update customer %s: %w", id, err)
		}
	}

	if err := s.db.WithContext(ctx).Where("customer_id = ?", id).First(&customer).Error; err != nil {
		return nil, fmt.Errorf("reload customer %s: %w", id, err)
	}
	return &customer, nil
}

// setIf adds column to updates when v is non-nil
func setIf[T any](updates map[string]interface{}, column string, v *T) {
	if v != nil {
		updates[column] = *v
	}
}
