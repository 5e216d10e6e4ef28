package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/partner"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var customerFilters = filterSpec{
	searchColumns: []string{"name", "code", "email"},
	filters: map[string]filterFunc{
		shared.FilterID:            equalsID("id"),
		partner.CustomerFilterCode: equals("code"),
	},
}

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) findOne(ctx context.Context, query string, arg any) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds a customer by ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByCode finds a customer by code
func (r *GormCustomerRepository) FindByCode(ctx context.Context, code string) (*partner.Customer, error) {
	return r.findOne(ctx, "code = ?", code)
}

// FindAll finds all customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter, opts shared.QueryOptions) ([]partner.Customer, error) {
	query, err := customerFilters.apply(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)
	if err != nil {
		return nil, err
	}

	var rows []models.CustomerModel
	if err := applyQueryOptions(query, opts, CustomerSortColumns).Find(&rows).Error; err != nil {
		return nil, err
	}

	customers := make([]partner.Customer, len(rows))
	for i := range rows {
		customers[i] = *rows[i].ToDomain()
	}
	return customers, nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query, err := customerFilters.apply(r.db.WithContext(ctx).Model(&models.CustomerModel{}), filter)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists reports whether any customer matches the filter
func (r *GormCustomerRepository) Exists(ctx context.Context, filter shared.Filter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// Delete removes a customer, reporting whether one was removed
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CustomerModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
