package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/quality"
)

// InspectionModel is the persistence model for the Inspection aggregate.
// Customer and supplier ids are plain references without foreign keys.
type InspectionModel struct {
	AggregateModel
	Type               string                   `gorm:"type:varchar(100);not null;index"`
	Status             quality.InspectionStatus `gorm:"type:varchar(20);not null;default:'scheduled';index"`
	ScheduledDate      time.Time                `gorm:"not null;index"`
	CustomerID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	SupplierID         *uuid.UUID               `gorm:"type:uuid;index"`
	Notes              string                   `gorm:"type:text"`
	StartedAt          *time.Time
	Result             *quality.InspectionResult `gorm:"type:varchar(20)"`
	Summary            string                    `gorm:"type:text"`
	CompletedAt        *time.Time
	CancellationReason string `gorm:"type:text"`

	Findings []InspectionFindingModel `gorm:"foreignKey:InspectionID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InspectionModel) TableName() string {
	return "inspections"
}

// InspectionFindingModel stores one finding recorded during an inspection
type InspectionFindingModel struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	InspectionID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Position     int              `gorm:"not null"`
	Description  string           `gorm:"type:text;not null"`
	Severity     quality.Severity `gorm:"type:varchar(10);not null"`
	RecordedAt   time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InspectionFindingModel) TableName() string {
	return "inspection_findings"
}

// InspectionModelFromDomain creates a persistence model, findings included
func InspectionModelFromDomain(i *quality.Inspection) *InspectionModel {
	m := &InspectionModel{
		Type:               i.Type,
		Status:             i.Status,
		ScheduledDate:      i.ScheduledDate.UTC(),
		CustomerID:         i.CustomerID,
		SupplierID:         i.SupplierID,
		Notes:              i.Notes,
		StartedAt:          utcPtr(i.StartedAt),
		CancellationReason: i.CancellationReason,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	if d := i.CompletionDetails; d != nil {
		result := d.Result
		completedAt := d.CompletedAt.UTC()
		m.Result = &result
		m.Summary = d.Summary
		m.CompletedAt = &completedAt
	}

	m.Findings = make([]InspectionFindingModel, len(i.Findings))
	for pos, f := range i.Findings {
		m.Findings[pos] = InspectionFindingModel{
			ID:           f.ID,
			InspectionID: i.ID,
			Position:     pos,
			Description:  f.Description,
			Severity:     f.Severity,
			RecordedAt:   f.RecordedAt.UTC(),
		}
	}
	return m
}

// ToDomain converts the model to an Inspection. Findings must be loaded
// ordered by position.
func (m *InspectionModel) ToDomain() *quality.Inspection {
	i := &quality.Inspection{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		Type:               m.Type,
		Status:             m.Status,
		ScheduledDate:      m.ScheduledDate,
		CustomerID:         m.CustomerID,
		SupplierID:         m.SupplierID,
		Notes:              m.Notes,
		Findings:           make([]quality.Finding, 0, len(m.Findings)),
		StartedAt:          m.StartedAt,
		CancellationReason: m.CancellationReason,
	}
	if m.Result != nil {
		details := quality.CompletionDetails{Result: *m.Result, Summary: m.Summary}
		if m.CompletedAt != nil {
			details.CompletedAt = *m.CompletedAt
		}
		i.CompletionDetails = &details
	}
	for _, f := range m.Findings {
		i.Findings = append(i.Findings, quality.Finding{
			ID:          f.ID,
			Description: f.Description,
			Severity:    f.Severity,
			RecordedAt:  f.RecordedAt,
		})
	}
	return i
}
