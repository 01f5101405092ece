package repository_test

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mahyudindev/e-commerce-sowryzel/repository"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)
	return gormDB, mock
}

func TestDecrementStock_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "produk" SET "stok"=stok - $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DecrementStock(gormDB, id, 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStock_GuardRejectsOverdraw(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB)
	id := uuid.New()

	// the stok >= qty predicate matches no row
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "produk" SET "stok"=stok - $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DecrementStock(gormDB, id, 5)
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementStock(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "produk" SET "stok"=stok + $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.IncrementStock(gormDB, id, 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "produk"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	p, err := repo.LockByID(gormDB, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, p)
}

func TestLockByID_UsesForUpdate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "nama_produk", "stok", "status_aktif"}).
		AddRow(id, "Kemeja Batik", 10, true)
	mock.ExpectQuery(`SELECT \* FROM "produk".*FOR UPDATE`).
		WillReturnRows(rows)

	p, err := repo.LockByID(gormDB, id)
	assert.NoError(t, err)
	assert.Equal(t, "Kemeja Batik", p.Name)
	assert.Equal(t, 10, p.Stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}
