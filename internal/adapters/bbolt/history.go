// Package bbolt implements the ports.History interface using bbolt (embedded
// B+ tree). Each named store gets its own top-level bucket; generations are
// keyed by their big-endian sequence number so a cursor walks them oldest
// first. Appends are transactional — a crash mid-write cannot corrupt
// previously committed generations.
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/confwatch/internal/ports"
)

// History implements ports.History backed by bbolt.
type History struct {
	db *bolt.DB
}

// NewHistory opens (or creates) a bbolt database at the given path.
func NewHistory(path string) (*History, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &History{db: db}, nil
}

// Close closes the underlying bbolt database.
func (h *History) Close() error {
	return h.db.Close()
}

// Append records one generation under the named store, assigning the next
// sequence number.
func (h *History) Append(store string, gen ports.Generation) (uint64, error) {
	var seq uint64
	err := h.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(store))
		if err != nil {
			return err
		}
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		gen.Seq = seq
		data, err := json.Marshal(gen)
		if err != nil {
			return fmt.Errorf("marshal generation: %w", err)
		}
		return b.Put(seqKey(seq), data)
	})
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// List returns all generations for the named store, oldest first. An unknown
// store yields an empty slice.
func (h *History) List(store string) ([]ports.Generation, error) {
	var gens []ports.Generation
	err := h.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(store))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var gen ports.Generation
			if err := json.Unmarshal(v, &gen); err != nil {
				return fmt.Errorf("unmarshal generation: %w", err)
			}
			gens = append(gens, gen)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return gens, nil
}

// seqKey encodes a sequence number as a sortable big-endian key.
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
