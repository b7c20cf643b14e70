package history

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/oarkflow/json"
)

// Entry is one recorded REPL line.
type Entry struct {
	Session string    `json:"session"`
	Line    string    `json:"line"`
	At      time.Time `json:"at"`
}

// Store persists REPL history as a JSON array on disk. A file lock
// guards the array across processes so concurrent sessions can share
// one history file; an in-process mutex guards it across goroutines.
type Store struct {
	path     string
	file     *os.File
	fileLock *flock.Flock
	mu       sync.Mutex
}

func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	return &Store{
		path:     path,
		file:     f,
		fileLock: flock.New(path + ".lock"),
	}, nil
}

// Append records one line at the end of the history file.
func (s *Store) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fileLock.Lock(); err != nil {
		return err
	}
	defer func() {
		_ = s.fileLock.Unlock()
	}()
	entries, err := s.readAll()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	return s.writeAll(entries)
}

// All returns every recorded entry, oldest first.
func (s *Store) All() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fileLock.Lock(); err != nil {
		return nil, err
	}
	defer func() {
		_ = s.fileLock.Unlock()
	}()
	return s.readAll()
}

// Recent returns up to n entries from the end of the history.
func (s *Store) Recent(n int) ([]Entry, error) {
	entries, err := s.All()
	if err != nil {
		return nil, err
	}
	if n <= 0 || n >= len(entries) {
		return entries, nil
	}
	return entries[len(entries)-n:], nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

func (s *Store) readAll() ([]Entry, error) {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	content, err := io.ReadAll(s.file)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(content, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) writeAll(entries []Entry) error {
	content, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := s.file.Truncate(0); err != nil {
		return err
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := s.file.Write(content); err != nil {
		return err
	}
	return s.file.Sync()
}
