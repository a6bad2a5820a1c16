package counter_test

import (
	"context"
	"errors"
	"testing"

	"go-hris-iam/internal/shared/counter"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func TestRepository_GetNextValue(t *testing.T) {
	companyID := uuid.New()

	t.Run("returns upserted value", func(t *testing.T) {
		gdb, mock := setupGorm(t)
		repo := counter.NewRepository(gdb)

		mock.ExpectQuery("INSERT INTO company_counters").
			WithArgs(companyID, counter.EmployeeCode).
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(7))

		v, err := repo.GetNextValue(context.Background(), companyID, counter.EmployeeCode)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), v)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates db error", func(t *testing.T) {
		gdb, mock := setupGorm(t)
		repo := counter.NewRepository(gdb)

		mock.ExpectQuery("INSERT INTO company_counters").
			WillReturnError(errors.New("db down"))

		_, err := repo.GetNextValue(context.Background(), companyID, counter.EmployeeCode)

		assert.Error(t, err)
	})
}
