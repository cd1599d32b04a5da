package catalog

import (
	"context"
	"io"
	"strings"
	"testing"

	"cardvault/core/database"
	"cardvault/core/errs"
	"cardvault/core/progress"
	"cardvault/core/storage/mocks"
	"cardvault/feature/catalog/ingest"
	"cardvault/feature/catalog/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const bulkSample = `[
	{"id":"bolt-lea","name":"Lightning Bolt","set":"lea","collector_number":"161","lang":"en"},
	{"id":"bolt-m10","name":"Lightning Bolt","set":"m10","collector_number":"146","lang":"en"}
]`

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, models.Migrations()))
	return db
}

func TestService_ImportCatalog(t *testing.T) {
	db := newServiceDB(t)
	service := NewService(db, nil, "", zap.NewNop(), progress.NewBroadcaster(), ingest.Options{BatchSize: 10})

	summary, err := service.ImportCatalog(context.Background(), strings.NewReader(bulkSample), "bulk.json", false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Records)

	// A successful run records its provenance.
	meta, err := service.Meta(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bulk.json", meta.Source)
	assert.Equal(t, int64(2), meta.RecordCount)

	cards, err := service.Search(context.Background(), "lightning bolt")
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestService_ResolveAgainstStore(t *testing.T) {
	db := newServiceDB(t)
	service := NewService(db, nil, "", zap.NewNop(), progress.NewBroadcaster(), ingest.Options{BatchSize: 10})

	_, err := service.ImportCatalog(context.Background(), strings.NewReader(bulkSample), "bulk.json", false)
	require.NoError(t, err)

	// Wrong collector number drops to the set-only tier.
	match, err := service.Resolve(context.Background(), "lightning bolt", "LEA", "999")
	require.NoError(t, err)
	assert.Equal(t, "bolt-lea", match.Card.ID)

	_, err = service.Resolve(context.Background(), "unknown", "", "")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestService_ImportRejectsConcurrentRun(t *testing.T) {
	db := newServiceDB(t)
	service := NewService(db, nil, "", zap.NewNop(), progress.NewBroadcaster(), ingest.Options{})

	_, err := service.acquire(context.Background())
	require.NoError(t, err)
	defer service.release()

	_, err = service.ImportCatalog(context.Background(), strings.NewReader(bulkSample), "bulk.json", false)
	assert.ErrorIs(t, err, errs.ErrAlreadyRunning)
	assert.True(t, service.Importing())
}

func TestService_ImportFromStorage(t *testing.T) {
	db := newServiceDB(t)
	client := new(mocks.Client)
	client.On("StatObject", mock.Anything, "catalog", "bulk/all-cards.json", mock.Anything).
		Return(minio.ObjectInfo{Key: "bulk/all-cards.json", Size: int64(len(bulkSample))}, nil)
	client.On("GetObject", mock.Anything, "catalog", "bulk/all-cards.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(bulkSample)), nil)

	service := NewService(db, client, "catalog", zap.NewNop(), progress.NewBroadcaster(), ingest.Options{})
	summary, err := service.ImportFromStorage(context.Background(), "bulk/all-cards.json", false)
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.Records)
	client.AssertExpectations(t)
}

func TestService_ImportFromStorageWithoutClient(t *testing.T) {
	db := newServiceDB(t)
	service := NewService(db, nil, "", zap.NewNop(), progress.NewBroadcaster(), ingest.Options{})

	_, err := service.ImportFromStorage(context.Background(), "bulk/all-cards.json", false)
	assert.Error(t, err)
}
