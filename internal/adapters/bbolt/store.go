// Package bbolt implements the ports.PatternStore interface using bbolt (embedded B+ tree).
// All sets live under one top-level "sets" bucket; each set gets its own
// sub-bucket holding the binary-encoded patterns and a JSON metadata record.
// Each write is one transaction, so a crash mid-write leaves committed sets intact.
package bbolt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/corey/kwmatch/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketSets  = []byte("sets")
	keyPatterns = []byte("patterns")
	keyMeta     = []byte("meta")
)

// ErrInvalidSetName is returned for names that cannot key a bucket.
var ErrInvalidSetName = errors.New("invalid pattern set name")

// setMeta is the JSON record stored next to each set's patterns.
type setMeta struct {
	Count     int   `json:"count"`
	UpdatedAt int64 `json:"updated_at"`
}

// Store implements ports.PatternStore backed by bbolt.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// NewStore opens (or creates) a bbolt database at the given path,
// creating its parent directory if needed.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePatternSet stores patterns under name, overwriting any prior set.
func (s *Store) SavePatternSet(name string, patterns []string) error {
	if name == "" {
		return ErrInvalidSetName
	}

	metaJSON, err := json.Marshal(setMeta{Count: len(patterns), UpdatedAt: s.now().Unix()})
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	blob := encodePatterns(patterns)

	return s.db.Update(func(tx *bolt.Tx) error {
		sets, err := tx.CreateBucketIfNotExists(bucketSets)
		if err != nil {
			return err
		}
		sb, err := sets.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return err
		}
		if err := sb.Put(keyPatterns, blob); err != nil {
			return err
		}
		return sb.Put(keyMeta, metaJSON)
	})
}

// LoadPatternSet retrieves the set stored under name.
// Returns nil, nil if no such set exists.
func (s *Store) LoadPatternSet(name string) ([]string, error) {
	if name == "" {
		return nil, ErrInvalidSetName
	}

	var patterns []string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		sets := tx.Bucket(bucketSets)
		if sets == nil {
			return nil
		}
		sb := sets.Bucket([]byte(name))
		if sb == nil {
			return nil
		}
		v := sb.Get(keyPatterns)
		if v == nil {
			return nil
		}
		// decodePatterns copies, so nothing escapes the transaction.
		p, err := decodePatterns(v)
		if err != nil {
			return fmt.Errorf("decode set %q: %w", name, err)
		}
		patterns, found = p, true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return patterns, nil
}

// ListPatternSets summarizes all stored sets in lexical name order
// (bbolt iterates keys in byte order).
func (s *Store) ListPatternSets() ([]ports.PatternSetInfo, error) {
	var infos []ports.PatternSetInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		sets := tx.Bucket(bucketSets)
		if sets == nil {
			return nil
		}
		return sets.ForEach(func(k, v []byte) error {
			if v != nil {
				return nil // not a set bucket
			}
			info := ports.PatternSetInfo{Name: string(k)}
			if raw := sets.Bucket(k).Get(keyMeta); raw != nil {
				var meta setMeta
				if err := json.Unmarshal(raw, &meta); err != nil {
					return fmt.Errorf("unmarshal meta for %q: %w", k, err)
				}
				info.Count = meta.Count
				info.UpdatedAt = meta.UpdatedAt
			}
			infos = append(infos, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// DeletePatternSet removes a set.
// Idempotent: deleting a nonexistent set is not an error.
func (s *Store) DeletePatternSet(name string) error {
	if name == "" {
		return ErrInvalidSetName
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		sets := tx.Bucket(bucketSets)
		if sets == nil {
			return nil
		}
		err := sets.DeleteBucket([]byte(name))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}
