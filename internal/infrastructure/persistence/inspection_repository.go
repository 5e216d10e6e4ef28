package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/quality"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var inspectionFilters = filterSpec{
	searchColumns: []string{"type", "notes"},
	filters: map[string]filterFunc{
		shared.FilterID:                       equalsID("id"),
		quality.InspectionFilterStatus:        equals("status"),
		quality.InspectionFilterType:          equalsFold("type"),
		quality.InspectionFilterCustomerID:    equalsID("customer_id"),
		quality.InspectionFilterSupplierID:    equalsID("supplier_id"),
		quality.InspectionFilterScheduledFrom: timeBound("scheduled_date", ">="),
		quality.InspectionFilterScheduledTo:   timeBound("scheduled_date", "<="),
	},
}

// GormInspectionRepository implements InspectionRepository using GORM
type GormInspectionRepository struct {
	db *gorm.DB
}

// NewGormInspectionRepository creates a new GormInspectionRepository
func NewGormInspectionRepository(db *gorm.DB) *GormInspectionRepository {
	return &GormInspectionRepository{db: db}
}

func (r *GormInspectionRepository) withFindings(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Findings", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

// FindByID finds an inspection with its findings
func (r *GormInspectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*quality.Inspection, error) {
	var model models.InspectionModel
	if err := r.withFindings(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all inspections matching the filter
func (r *GormInspectionRepository) FindAll(ctx context.Context, filter shared.Filter, opts shared.QueryOptions) ([]quality.Inspection, error) {
	query, err := inspectionFilters.apply(r.withFindings(ctx).Model(&models.InspectionModel{}), filter)
	if err != nil {
		return nil, err
	}

	var rows []models.InspectionModel
	if err := applyQueryOptions(query, opts, InspectionSortColumns).Find(&rows).Error; err != nil {
		return nil, err
	}

	inspections := make([]quality.Inspection, len(rows))
	for i := range rows {
		inspections[i] = *rows[i].ToDomain()
	}
	return inspections, nil
}

// Count counts inspections matching the filter
func (r *GormInspectionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query, err := inspectionFilters.apply(r.db.WithContext(ctx).Model(&models.InspectionModel{}), filter)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists reports whether any inspection matches the filter
func (r *GormInspectionRepository) Exists(ctx context.Context, filter shared.Filter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

// Save creates or updates an inspection and replaces its findings
func (r *GormInspectionRepository) Save(ctx context.Context, inspection *quality.Inspection) error {
	model := models.InspectionModelFromDomain(inspection)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("inspection_id = ?", model.ID).Delete(&models.InspectionFindingModel{}).Error; err != nil {
			return err
		}
		if len(model.Findings) > 0 {
			return tx.Create(&model.Findings).Error
		}
		return nil
	})
	return translateError(err)
}

// Delete removes an inspection and its findings
func (r *GormInspectionRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("inspection_id = ?", id).Delete(&models.InspectionFindingModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.InspectionModel{})
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

var _ quality.InspectionRepository = (*GormInspectionRepository)(nil)
