package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
)

// ErrNoSnapshot is returned when nothing was stored under the requested key.
var ErrNoSnapshot = domain.NewError(domain.ErrCodeNotFound, "snapshot not found")

// Store keeps the client's last fetched task collections and its session in a BoltDB file.
type Store struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures the buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketTasks, bucketSession} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// SaveTasks overwrites the snapshot stored for snap.Page.
func (s *Store) SaveTasks(snap TaskSnapshot) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	return s.put(bucketTasks, snap.Page, snap)
}

// LoadTasks returns the snapshot stored for page.
func (s *Store) LoadTasks(page string) (TaskSnapshot, error) {
	var snap TaskSnapshot
	err := s.get(bucketTasks, page, &snap)
	return snap, err
}

// Pages lists the pages that have a stored snapshot.
func (s *Store) Pages() ([]string, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var pages []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTasks)).ForEach(func(k, _ []byte) error {
			pages = append(pages, string(k))
			return nil
		})
	})
	return pages, err
}

// SaveSession remembers the signed-in session between CLI invocations.
func (s *Store) SaveSession(session domain.Session) error {
	return s.put(bucketSession, sessionKey, session)
}

func (s *Store) LoadSession() (domain.Session, error) {
	var session domain.Session
	err := s.get(bucketSession, sessionKey, &session)
	return session, err
}

func (s *Store) ClearSession() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSession)).Delete([]byte(sessionKey))
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) put(bucket, key string, value any) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), payload)
	})
}

func (s *Store) get(bucket, key string, dest any) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if raw == nil {
			return ErrNoSnapshot
		}
		return json.Unmarshal(raw, dest)
	})
}
