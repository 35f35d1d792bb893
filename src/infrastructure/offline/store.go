package offline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	domainErrors "pet-emergency-api/src/domain/errors"
	domainOffline "pet-emergency-api/src/domain/offline"
	logger "pet-emergency-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

// storeDocument is the on-disk shape of the queue. LastID persists the
// monotonic id counter across restarts so ids are never reused.
type storeDocument struct {
	LastID  int64                            `json:"lastId"`
	Records []domainOffline.QueuedSubmission `json:"records"`
}

// FileStore is a crash-consistent durable queue store backed by a single JSON
// document. Every mutation rewrites the document to a temp file and atomically
// renames it over the old one, so a crash mid-write never exposes a partial
// record. The mutex serializes callers sharing one store, mirroring
// store-level transaction serialization.
type FileStore struct {
	path   string
	Logger *logger.Logger

	mu  sync.Mutex
	doc storeDocument
}

// NewFileStore opens (or creates) the queue store at path. An unreadable or
// corrupt store is a hard error: pretending to queue would break the offline
// guarantee.
func NewFileStore(path string, loggerInstance *logger.Logger) (*FileStore, error) {
	store := &FileStore{
		path:   path,
		Logger: loggerInstance,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			loggerInstance.Error("Durable queue store unreadable", zap.Error(err), zap.String("path", path))
			return nil, domainErrors.NewAppError(err, domainErrors.StorageUnavailable)
		}
		if err := store.persistLocked(); err != nil {
			return nil, err
		}
		return store, nil
	}

	if err := json.Unmarshal(data, &store.doc); err != nil {
		loggerInstance.Error("Durable queue store corrupt", zap.Error(err), zap.String("path", path))
		return nil, domainErrors.NewAppError(err, domainErrors.StorageUnavailable)
	}

	return store, nil
}

func (s *FileStore) Enqueue(record *domainOffline.QueuedSubmission) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.LastID++
	stored := *record
	stored.ID = s.doc.LastID
	if stored.MaxRetries <= 0 {
		stored.MaxRetries = domainOffline.DefaultMaxRetries
	}
	s.doc.Records = append(s.doc.Records, stored)

	if err := s.persistLocked(); err != nil {
		// roll back the in-memory state so a later retry starts clean
		s.doc.Records = s.doc.Records[:len(s.doc.Records)-1]
		s.doc.LastID--
		return 0, err
	}

	record.ID = stored.ID
	record.MaxRetries = stored.MaxRetries
	return stored.ID, nil
}

func (s *FileStore) ListAll() ([]domainOffline.QueuedSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domainOffline.QueuedSubmission, len(s.doc.Records))
	copy(out, s.doc.Records)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FileStore) Remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Records {
		if s.doc.Records[i].ID == id {
			removed := s.doc.Records[i]
			s.doc.Records = append(s.doc.Records[:i], s.doc.Records[i+1:]...)
			if err := s.persistLocked(); err != nil {
				s.doc.Records = append(s.doc.Records, removed)
				return err
			}
			return nil
		}
	}
	return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
}

// Update applies a partial mutation to one record. An unknown key or a
// mistyped value rejects the whole partial; silently dropping it would leave
// the caller believing the retry counter advanced.
func (s *FileStore) Update(id int64, partial map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Records {
		if s.doc.Records[i].ID != id {
			continue
		}
		previous := s.doc.Records[i]
		retryCount := previous.RetryCount
		for key, value := range partial {
			if key != "retryCount" {
				return domainErrors.NewAppErrorWithType(domainErrors.ValidationError)
			}
			count, ok := value.(int)
			if !ok {
				return domainErrors.NewAppErrorWithType(domainErrors.ValidationError)
			}
			retryCount = count
		}
		s.doc.Records[i].RetryCount = retryCount
		if err := s.persistLocked(); err != nil {
			s.doc.Records[i] = previous
			return err
		}
		return nil
	}
	return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
}

// persistLocked writes the document with temp-file + rename. Callers must hold mu.
func (s *FileStore) persistLocked() error {
	data, err := json.Marshal(&s.doc)
	if err != nil {
		return domainErrors.NewAppError(err, domainErrors.StorageUnavailable)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".queue-*")
	if err != nil {
		s.Logger.Error("Durable queue store write failed", zap.Error(err), zap.String("path", s.path))
		return domainErrors.NewAppError(err, domainErrors.StorageUnavailable)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return domainErrors.NewAppError(err, domainErrors.StorageUnavailable)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return domainErrors.NewAppError(err, domainErrors.StorageUnavailable)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return domainErrors.NewAppError(err, domainErrors.StorageUnavailable)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		s.Logger.Error("Durable queue store rename failed", zap.Error(err), zap.String("path", s.path))
		return domainErrors.NewAppError(err, domainErrors.StorageUnavailable)
	}
	return nil
}
