package persistence

import (
	"strings"

	"github.com/qms/backend/internal/domain/shared"
	"gorm.io/gorm/clause"
)

// SortColumns whitelists the sort keys a repository accepts, mapping the
// domain field name (as it appears in "-name,createdAt") to its column.
// Keys outside the whitelist are dropped so user input never reaches ORDER BY.
type SortColumns map[string]string

// Resolve returns the column for a sort key. Column names are accepted as
// well as field names.
func (c SortColumns) Resolve(field string) (string, bool) {
	field = strings.TrimSpace(field)
	if column, ok := c[field]; ok {
		return column, true
	}
	for _, column := range c {
		if strings.EqualFold(column, field) {
			return column, true
		}
	}
	return "", false
}

// OrderBy builds the ORDER BY clause for fields. Unknown fields are skipped,
// created_at ascending is used when nothing is left, and id is appended as a
// tie breaker so pagination is stable.
func (c SortColumns) OrderBy(fields []shared.SortField) clause.OrderBy {
	columns := make([]clause.OrderByColumn, 0, len(fields)+1)
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		column, ok := c.Resolve(f.Field)
		if !ok || seen[column] {
			continue
		}
		seen[column] = true
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: f.Desc})
	}
	if len(columns) == 0 {
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "created_at"}})
		seen["created_at"] = true
	}
	if !seen["id"] {
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return clause.OrderBy{Columns: columns}
}

var baseSortColumns = SortColumns{
	"id":        "id",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func withBase(extra SortColumns) SortColumns {
	out := make(SortColumns, len(baseSortColumns)+len(extra))
	for k, v := range baseSortColumns {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// SupplierSortColumns contains allowed sort keys for suppliers
var SupplierSortColumns = withBase(SortColumns{
	"code":   "code",
	"name":   "name",
	"status": "status",
	"email":  "email",
})

// CustomerSortColumns contains allowed sort keys for customers
var CustomerSortColumns = withBase(SortColumns{
	"code":  "code",
	"name":  "name",
	"email": "email",
})

// InspectionSortColumns contains allowed sort keys for inspections
var InspectionSortColumns = withBase(SortColumns{
	"type":          "type",
	"status":        "status",
	"scheduledDate": "scheduled_date",
	"customerId":    "customer_id",
	"supplierId":    "supplier_id",
})
