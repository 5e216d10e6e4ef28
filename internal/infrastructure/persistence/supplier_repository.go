package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/partner"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var supplierFilters = filterSpec{
	searchColumns: []string{"name", "code"},
	searchTags:    true,
	filters: map[string]filterFunc{
		shared.FilterID:                         equalsID("id"),
		partner.SupplierFilterCode:              equals("code"),
		partner.SupplierFilterStatus:            equals("status"),
		partner.SupplierFilterTag:               hasTag,
		partner.SupplierFilterQualificationType: hasQualification,
	},
}

// hasQualification matches suppliers holding a qualification of the given type
func hasQualification(db *gorm.DB, value any) (*gorm.DB, error) {
	return db.Where(
		"EXISTS (SELECT 1 FROM supplier_qualifications q WHERE q.supplier_id = suppliers.id AND LOWER(q.type) = LOWER(?))",
		fmt.Sprint(value),
	), nil
}

// GormSupplierRepository implements SupplierRepository using GORM.
// Contacts and qualifications are rewritten on every Save.
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

func (r *GormSupplierRepository) withChildren(ctx context.Context) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position") }
	return r.db.WithContext(ctx).
		Preload("Contacts", byPosition).
		Preload("Qualifications", byPosition)
}

// FindByID finds a supplier by its ID, (nil, nil) when absent
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.withChildren(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a supplier by exact code, (nil, nil) when absent
func (r *GormSupplierRepository) FindByCode(ctx context.Context, code string) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.withChildren(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all suppliers matching the filter
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter, opts shared.QueryOptions) ([]partner.Supplier, error) {
	query, err := supplierFilters.apply(r.withChildren(ctx).Model(&models.SupplierModel{}), filter)
	if err != nil {
		return nil, err
	}

	var rows []models.SupplierModel
	if err := applyQueryOptions(query, opts, SupplierSortColumns).Find(&rows).Error; err != nil {
		return nil, err
	}

	suppliers := make([]partner.Supplier, len(rows))
	for i := range rows {
		suppliers[i] = *rows[i].ToDomain()
	}
	return suppliers, nil
}

// Count counts suppliers matching the filter
func (r *GormSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query, err := supplierFilters.apply(r.db.WithContext(ctx).Model(&models.SupplierModel{}), filter)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists reports whether any supplier matches the filter
func (r *GormSupplierRepository) Exists(ctx context.Context, filter shared.Filter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

// Save inserts or updates the supplier together with its contacts and
// qualifications. A duplicate code yields shared.ErrAlreadyExists.
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	model := models.SupplierModelFromDomain(supplier)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_id = ?", model.ID).Delete(&models.SupplierContactModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_id = ?", model.ID).Delete(&models.SupplierQualificationModel{}).Error; err != nil {
			return err
		}
		if len(model.Contacts) > 0 {
			if err := tx.Create(&model.Contacts).Error; err != nil {
				return err
			}
		}
		if len(model.Qualifications) > 0 {
			if err := tx.Create(&model.Qualifications).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err)
}

// Delete removes the supplier and its children. It returns false when no
// supplier had the id.
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("supplier_id = ?", id).Delete(&models.SupplierContactModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_id = ?", id).Delete(&models.SupplierQualificationModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.SupplierModel{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
