package tenant

import (
	"strings"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Callback provides GORM callback hooks that inject the tenant filter
// from the request context into queries that lack one.
type Callback struct {
	tenantColumn string
	required     bool
}

// NewCallback creates a new tenant callback handler
func NewCallback(tenantColumn string, required bool) *Callback {
	if tenantColumn == "" {
		tenantColumn = "tenant_id"
	}
	return &Callback{
		tenantColumn: tenantColumn,
		required:     required,
	}
}

// Register registers the tenant callbacks with GORM. Create is left
// alone: tenant_id is set explicitly when entities are built.
func (tc *Callback) Register(db *gorm.DB) {
	_ = db.Callback().Query().Before("gorm:query").Register("tenant:before_query", tc.addTenantFilter)
	_ = db.Callback().Update().Before("gorm:update").Register("tenant:before_update", tc.addTenantFilter)
	_ = db.Callback().Delete().Before("gorm:delete").Register("tenant:before_delete", tc.addTenantFilter)
	_ = db.Callback().Row().Before("gorm:row").Register("tenant:before_row", tc.addTenantFilter)
}

// addTenantFilter adds tenant filtering to the query
func (tc *Callback) addTenantFilter(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	if db.Statement.Unscoped {
		return
	}
	if tc.hasTenantCondition(db) {
		return
	}

	tenantID := logger.GetTenantID(db.Statement.Context)
	if tenantID == "" {
		if tc.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return
	}
	if _, err := uuid.Parse(tenantID); err != nil {
		_ = db.AddError(ErrInvalidTenantID)
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: clause.CurrentTable, Name: tc.tenantColumn},
				Value:  tenantID,
			},
		},
	})
}

// hasTenantCondition checks if tenant_id condition is already present
func (tc *Callback) hasTenantCondition(db *gorm.DB) bool {
	if whereClause, ok := db.Statement.Clauses["WHERE"]; ok {
		if where, ok := whereClause.Expression.(clause.Where); ok {
			for _, expr := range where.Exprs {
				if tc.exprContainsTenant(expr) {
					return true
				}
			}
		}
	}

	// Raw conditions land in the built SQL rather than typed clauses
	sql := db.Statement.SQL.String()
	return sql != "" && strings.Contains(sql, tc.tenantColumn)
}

// exprContainsTenant checks if an expression contains tenant_id column
func (tc *Callback) exprContainsTenant(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == tc.tenantColumn
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == tc.tenantColumn
		}
	case clause.Expr:
		return strings.Contains(e.SQL, tc.tenantColumn)
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if tc.exprContainsTenant(cond) {
				return true
			}
		}
	case clause.OrConditions:
		for _, cond := range e.Exprs {
			if tc.exprContainsTenant(cond) {
				return true
			}
		}
	}
	return false
}

// EnableAutoTenantFilter registers the tenant filter callbacks on a
// GORM DB instance. Repositories pass tenant IDs explicitly, so the
// filter is registered as non-required: system operations without a
// tenant in context keep working.
func EnableAutoTenantFilter(db *gorm.DB, required bool) {
	NewCallback("tenant_id", required).Register(db)
}
