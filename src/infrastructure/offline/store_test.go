package offline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	domainErrors "pet-emergency-api/src/domain/errors"
	domainOffline "pet-emergency-api/src/domain/offline"
	logger "pet-emergency-api/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLogger(t *testing.T) *logger.Logger {
	loggerInstance, err := logger.NewLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return loggerInstance
}

func storePath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "queue.json")
}

func TestNewFileStoreCreatesMissingFile(t *testing.T) {
	path := storePath(t)
	store, err := NewFileStore(path, setupLogger(t))
	require.NoError(t, err)
	require.NotNil(t, store)

	_, err = os.Stat(path)
	assert.NoError(t, err)

	records, err := store.ListAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewFileStoreRejectsCorruptFile(t *testing.T) {
	path := storePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewFileStore(path, setupLogger(t))
	assert.Nil(t, store)
	require.Error(t, err)

	appErr, ok := err.(*domainErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, domainErrors.StorageUnavailable, appErr.Type)
}

func TestEnqueueAssignsMonotonicIDs(t *testing.T) {
	store, err := NewFileStore(storePath(t), setupLogger(t))
	require.NoError(t, err)

	first, err := store.Enqueue(&domainOffline.QueuedSubmission{URL: "http://api/v1/emergency-requests", Method: "POST"})
	require.NoError(t, err)
	second, err := store.Enqueue(&domainOffline.QueuedSubmission{URL: "http://api/v1/emergency-requests", Method: "POST"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestEnqueueAppliesDefaultMaxRetries(t *testing.T) {
	store, err := NewFileStore(storePath(t), setupLogger(t))
	require.NoError(t, err)

	record := &domainOffline.QueuedSubmission{URL: "http://api", Method: "POST"}
	_, err = store.Enqueue(record)
	require.NoError(t, err)
	assert.Equal(t, domainOffline.DefaultMaxRetries, record.MaxRetries)
}

func TestIDsNotReusedAfterReopen(t *testing.T) {
	path := storePath(t)
	loggerInstance := setupLogger(t)

	store, err := NewFileStore(path, loggerInstance)
	require.NoError(t, err)
	id, err := store.Enqueue(&domainOffline.QueuedSubmission{URL: "http://api", Method: "POST"})
	require.NoError(t, err)
	require.NoError(t, store.Remove(id))

	// a reopened store must keep counting from the persisted high-water mark
	reopened, err := NewFileStore(path, loggerInstance)
	require.NoError(t, err)
	next, err := reopened.Enqueue(&domainOffline.QueuedSubmission{URL: "http://api", Method: "POST"})
	require.NoError(t, err)
	assert.Equal(t, id+1, next)
}

func TestListAllReturnsEnqueueOrder(t *testing.T) {
	store, err := NewFileStore(storePath(t), setupLogger(t))
	require.NoError(t, err)

	for _, url := range []string{"http://a", "http://b", "http://c"} {
		_, err := store.Enqueue(&domainOffline.QueuedSubmission{URL: url, Method: "POST"})
		require.NoError(t, err)
	}

	records, err := store.ListAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "http://a", records[0].URL)
	assert.Equal(t, "http://b", records[1].URL)
	assert.Equal(t, "http://c", records[2].URL)
}

func TestRemoveUnknownIDReturnsNotFound(t *testing.T) {
	store, err := NewFileStore(storePath(t), setupLogger(t))
	require.NoError(t, err)

	err = store.Remove(42)
	require.Error(t, err)
	appErr, ok := err.(*domainErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, domainErrors.NotFound, appErr.Type)
}

func TestUpdateRetryCountPersists(t *testing.T) {
	path := storePath(t)
	loggerInstance := setupLogger(t)
	store, err := NewFileStore(path, loggerInstance)
	require.NoError(t, err)

	id, err := store.Enqueue(&domainOffline.QueuedSubmission{URL: "http://api", Method: "POST"})
	require.NoError(t, err)
	require.NoError(t, store.Update(id, map[string]interface{}{"retryCount": 3}))

	reopened, err := NewFileStore(path, loggerInstance)
	require.NoError(t, err)
	records, err := reopened.ListAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].RetryCount)
}

func TestUpdateRejectsUnknownPartialKey(t *testing.T) {
	store, err := NewFileStore(storePath(t), setupLogger(t))
	require.NoError(t, err)

	id, err := store.Enqueue(&domainOffline.QueuedSubmission{URL: "http://api", Method: "POST"})
	require.NoError(t, err)

	err = store.Update(id, map[string]interface{}{"retryCuont": 3})
	require.Error(t, err)
	appErr, ok := err.(*domainErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, domainErrors.ValidationError, appErr.Type)

	records, err := store.ListAll()
	require.NoError(t, err)
	assert.Equal(t, 0, records[0].RetryCount)
}

func TestUpdateRejectsMistypedRetryCount(t *testing.T) {
	store, err := NewFileStore(storePath(t), setupLogger(t))
	require.NoError(t, err)

	id, err := store.Enqueue(&domainOffline.QueuedSubmission{URL: "http://api", Method: "POST"})
	require.NoError(t, err)

	err = store.Update(id, map[string]interface{}{"retryCount": "3"})
	require.Error(t, err)
	appErr, ok := err.(*domainErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, domainErrors.ValidationError, appErr.Type)

	records, err := store.ListAll()
	require.NoError(t, err)
	assert.Equal(t, 0, records[0].RetryCount)
}

func TestPersistedDocumentIsWellFormedJSON(t *testing.T) {
	path := storePath(t)
	store, err := NewFileStore(path, setupLogger(t))
	require.NoError(t, err)

	_, err = store.Enqueue(&domainOffline.QueuedSubmission{
		URL:     "http://api/v1/emergency-requests",
		Method:  "POST",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    []byte(`{"pet_name":"Mochi"}`),
	})
	require.NoError(t, err)

	// the rename leaves a complete document behind, never a partial one
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		LastID  int64                            `json:"lastId"`
		Records []domainOffline.QueuedSubmission `json:"records"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, int64(1), doc.LastID)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "application/json", doc.Records[0].Headers["Content-Type"])
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queue.json")
	store, err := NewFileStore(path, setupLogger(t))
	require.NoError(t, err)

	id, err := store.Enqueue(&domainOffline.QueuedSubmission{URL: "http://api", Method: "POST"})
	require.NoError(t, err)
	require.NoError(t, store.Remove(id))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "queue.json", entries[0].Name())
}
