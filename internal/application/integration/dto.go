package integration

import (
	"time"

	"github.com/qms/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// ERP Sync DTOs
// ---------------------------------------------------------------------------

// ImportFailure describes one record that was not imported
type ImportFailure struct {
	Index    int    `json:"index"`
	SourceID string `json:"sourceId,omitempty"`
	Stage    string `json:"stage"`
	Reason   string `json:"reason"`
}

// Import failure stages
const (
	StageTranslate = "translate"
	StageUpsert    = "upsert"
)

// ImportResult summarises one batch import
type ImportResult struct {
	RunID      string                 `json:"runId"`
	Provider   integration.Provider   `json:"provider"`
	EntityType integration.EntityType `json:"entityType"`
	Total      int                    `json:"total"`
	Created    int                    `json:"created"`
	Updated    int                    `json:"updated"`
	Skipped    int                    `json:"skipped"`
	Failures   []ImportFailure        `json:"failures"`
}

// Failed returns the number of records that were not imported
func (r *ImportResult) Failed() int {
	return len(r.Failures)
}

// SyncConfig holds the tunables of the ERP sync job
type SyncConfig struct {
	Concurrency    int
	IdempotencyTTL time.Duration
}
