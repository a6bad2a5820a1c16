package company_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"go-hris-iam/internal/company"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (company.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return company.NewRepository(gdb), mock
}

func TestRepository_Cascade(t *testing.T) {
	t.Run("deletes present collections then the company", func(t *testing.T) {
		repo, mock := setupRepo(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT table_name FROM information_schema.tables")).
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("users").AddRow("employees"))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "users" WHERE company_id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "employees" WHERE company_id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "companies" WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Cascade(context.Background(), id)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and names the failing collection", func(t *testing.T) {
		repo, mock := setupRepo(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT table_name FROM information_schema.tables")).
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("users").AddRow("employees"))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "users" WHERE company_id = $1`)).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "employees" WHERE company_id = $1`)).
			WillReturnError(errors.New("lock timeout"))
		mock.ExpectRollback()

		err := repo.Cascade(context.Background(), id)

		var cascadeErr *company.CascadeError
		require.ErrorAs(t, err, &cascadeErr)
		assert.Equal(t, "employees", cascadeErr.Collection)
		assert.Equal(t, id, cascadeErr.CompanyID)
		details := cascadeErr.Details().(map[string]any)
		assert.Equal(t, []string{"employees"}, details["failed_collections"])
		assert.Equal(t, true, details["rolled_back"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing company rolls back", func(t *testing.T) {
		repo, mock := setupRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT table_name FROM information_schema.tables")).
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "companies" WHERE id = $1`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Cascade(context.Background(), uuid.New())

		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_DocumentKeys(t *testing.T) {
	repo, mock := setupRepo(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "document_keys" FROM "employees" WHERE company_id = $1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"document_keys"}).
			AddRow("{c/e1/cv.pdf,c/e1/id.png}").
			AddRow("{}"))

	keys, err := repo.DocumentKeys(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, []string{"c/e1/cv.pdf", "c/e1/id.png"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}
