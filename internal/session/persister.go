package session

import (
	"context"
	"fmt"
	"sync"
)

// Persister is the durable key-value backend behind a Store. It stores one
// opaque blob.
type Persister interface {
	// Load returns the persisted blob. found is false when nothing has been
	// saved yet; that is not an error.
	Load(ctx context.Context) (data []byte, found bool, err error)

	// Save replaces the persisted blob
	Save(ctx context.Context, data []byte) error
}

// Backend names accepted by OpenPersister
const (
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendSQLite  = "sqlite"
	BackendMemory  = "memory"
)

// OpenPersister builds the persister for backend. path overrides the default
// location for the file and sqlite backends.
func OpenPersister(backend, path string) (Persister, error) {
	switch backend {
	case BackendFile, "":
		if path == "" {
			defaultPath, err := DefaultFilePath()
			if err != nil {
				return nil, err
			}
			path = defaultPath
		}
		return NewFilePersister(path), nil
	case BackendKeyring:
		return NewKeyringPersister(KeyringService, StorageKey), nil
	case BackendSQLite:
		if path == "" {
			defaultPath, err := DefaultSQLitePath()
			if err != nil {
				return nil, err
			}
			path = defaultPath
		}
		return OpenSQLitePersister(path, StorageKey)
	case BackendMemory:
		return NewMemoryPersister(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

// MemoryPersister keeps the blob in process memory
type MemoryPersister struct {
	mutex sync.Mutex
	data  []byte
	saves int
	err   error
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (m *MemoryPersister) Load(ctx context.Context) ([]byte, bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.data == nil {
		return nil, false, nil
	}
	return append([]byte(nil), m.data...), true, nil
}

func (m *MemoryPersister) Save(ctx context.Context, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

// FailWith makes every subsequent Save return err. Pass nil to recover.
func (m *MemoryPersister) FailWith(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.err = err
}

// Saves returns how many successful saves have happened
func (m *MemoryPersister) Saves() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.saves
}
