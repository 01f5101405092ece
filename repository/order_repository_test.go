package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mahyudindev/e-commerce-sowryzel/models"
	"github.com/mahyudindev/e-commerce-sowryzel/repository"
)

func orderRows(id uuid.UUID, invoice string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "invoice_id", "customer_id", "status_transaksi", "status_pembayaran", "created_at", "updated_at"}).
		AddRow(id, invoice, uuid.New(), "pending", "unpaid", now, now)
}

func TestFindByInvoice_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "transaksi"`)).
		WillReturnRows(orderRows(id, "INV-AB12-20260101120000"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "detail_transaksi"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	order, err := repo.FindByInvoice(context.Background(), "INV-AB12-20260101120000")
	assert.NoError(t, err)
	assert.Equal(t, "INV-AB12-20260101120000", order.InvoiceID)
	assert.Equal(t, models.OrderPending, order.Status)
}

func TestFindByInvoice_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "transaksi"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	order, err := repo.FindByInvoice(context.Background(), "INV-NOPE")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, order)
}

func TestSearch_FreeTextJoinsCustomer(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)
	id := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "transaksi" LEFT JOIN pelanggan.*ILIKE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .* FROM "transaksi" LEFT JOIN pelanggan.*ILIKE`).
		WillReturnRows(orderRows(id, "INV-AB12-20260101120000"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "detail_transaksi"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	orders, total, err := repo.Search(context.Background(), repository.SearchParams{
		Search: "budi", Page: 1, Limit: 10,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, orders, 1)
}

func TestSearch_StatusFiltersSkipAll(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	// "all" on both axes must not add status predicates
	mock.ExpectQuery(`SELECT count\(\*\) FROM "transaksi" LEFT JOIN pelanggan ON pelanggan\.id = transaksi\.customer_id$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .* FROM "transaksi" LEFT JOIN pelanggan`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, total, err := repo.Search(context.Background(), repository.SearchParams{
		OrderStatus: "all", PaymentStatus: "all", Page: 1, Limit: 10,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_FiltersEachStatusAxis(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "transaksi".*status_transaksi = .*status_pembayaran = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .* FROM "transaksi"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.Search(context.Background(), repository.SearchParams{
		OrderStatus: "dikirim", PaymentStatus: "paid", Page: 1, Limit: 10,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
