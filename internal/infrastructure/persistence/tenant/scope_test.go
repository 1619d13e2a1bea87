package tenant

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestScope(t *testing.T) {
	t.Run("adds tenant filter to queries", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		type Product struct {
			ID       uint
			TenantID string
			Name     string
		}

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE tenant_id = \$1`).
			WithArgs(tenantID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}).
				AddRow(1, tenantID.String(), "Clavier"))

		var results []Product
		err := db.Scopes(Scope(tenantID)).Find(&results).Error
		require.NoError(t, err)
		assert.Len(t, results, 1)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("composes with other conditions", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		type Product struct {
			ID       uint
			TenantID string
			Active   bool
		}

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE tenant_id = \$1 AND active = \$2`).
			WithArgs(tenantID.String(), true).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "active"}))

		var results []Product
		err := db.Scopes(Scope(tenantID)).Where("active = ?", true).Find(&results).Error
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestScopeString(t *testing.T) {
	t.Run("parameterizes the tenant value", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		// Injection attempts ride through as a bound parameter
		tenantID := "tenant'; DROP TABLE orders; --"

		type Order struct {
			ID       uint
			TenantID string
		}

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id"}))

		var results []Order
		err := db.Scopes(ScopeString(tenantID)).Find(&results).Error
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
