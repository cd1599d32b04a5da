package catalog

import (
	"context"
	"errors"
	"testing"

	"cardvault/core/errs"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery(`select sqlite_version\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"sqlite_version()"}).AddRow("3.45.0"))

	dialector := sqlite.Dialector{Conn: db}
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock
}

func TestRepo_LookupMapsStoreFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepo(db)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("disk I/O error"))

	_, err := repo.FindNameFold(context.Background(), false, "Lightning Bolt")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrStore)

	var storeErr *errs.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "catalog lookup", storeErr.Op)
}

func TestRepo_CollectedScanMapsStoreFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepo(db)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("database is locked"))

	_, err := repo.CollectedPositive(context.Background())
	assert.ErrorIs(t, err, errs.ErrStore)
}

func TestRepo_CandidatePrefetchMapsStoreFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepo(db)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("database is locked"))

	_, err := repo.CandidatesByNames(context.Background(), []string{"Lightning Bolt"})
	assert.ErrorIs(t, err, errs.ErrStore)
}
