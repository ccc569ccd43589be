package storage

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

// FileStorage is a MemoryStorage mirrored to two JSON files. Writes are
// batched by background workers and flushed synchronously on Close.
type FileStorage struct {
	*MemoryStorage
	observationsFile string
	usersFile        string
	saveObsChan      chan struct{}
	saveUsersChan    chan struct{}
	shutdownChan     chan struct{}
	saveObsDelay     time.Duration
	saveUsersDelay   time.Duration
	logger           internal.Logger
}

func NewFileStorage(observationsFile, usersFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		MemoryStorage:    NewMemoryStorage(logger),
		observationsFile: observationsFile,
		usersFile:        usersFile,
		saveObsChan:      make(chan struct{}, 1),
		saveUsersChan:    make(chan struct{}, 1),
		shutdownChan:     make(chan struct{}),
		saveObsDelay:     500 * time.Millisecond,
		saveUsersDelay:   500 * time.Millisecond,
		logger:           logger,
	}

	for _, f := range []string{observationsFile, usersFile} {
		if err := os.MkdirAll(filepath.Dir(f), 0o755); err != nil {
			return nil, err
		}
	}
	if err := s.loadObservations(); err != nil {
		logger.Errorf("storage: failed to load observations: %v", err)
		return nil, err
	}
	if err := s.loadUsers(); err != nil {
		logger.Errorf("storage: failed to load users: %v", err)
		return nil, err
	}

	s.MemoryStorage.afterWrite = s.signal
	go s.saveWorker(s.saveObsChan, s.saveObsDelay, s.saveObservations, "observations")
	go s.saveWorker(s.saveUsersChan, s.saveUsersDelay, s.saveUsers, "users")

	return s, nil
}

func readJSONFile(path string, dst interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func (s *FileStorage) loadObservations() error {
	var observations []*internal.Observation
	if err := readJSONFile(s.observationsFile, &observations); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range observations {
		s.insertLocked(o)
	}
	return nil
}

func (s *FileStorage) loadUsers() error {
	var creds []*internal.Credential
	if err := readJSONFile(s.usersFile, &creds); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range creds {
		s.credentials[normalizeEmail(c.Email)] = c
		s.users[c.User.ID] = c
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveObservations() error {
	return atomicWriteFileJSON(s.observationsFile, s.allObservations())
}

func (s *FileStorage) saveUsers() error {
	return atomicWriteFileJSON(s.usersFile, s.allCredentials())
}

func (s *FileStorage) signal(kind string) {
	ch := s.saveObsChan
	if kind == "users" {
		ch = s.saveUsersChan
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (s *FileStorage) saveWorker(signal <-chan struct{}, delay time.Duration, save func() error, name string) {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-signal:
			pending = true
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(delay)
		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", name, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	// Save pending data synchronously on shutdown
	if err := s.saveObservations(); err != nil {
		return err
	}
	return s.saveUsers()
}

// --- Compile-time assertions ---
var _ Store = (*FileStorage)(nil)
