package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"mimicbot/pkg/logger"
	"mimicbot/pkg/models"
)

// ErrDuplicateKey is returned by Insert when a record with the same
// event id already exists. The store never silently overwrites.
var ErrDuplicateKey = errors.New("duplicate event id")

var (
	db     *pebble.DB
	dbPath string
)

// seq reduces key collisions when multiple records share the same
// nanosecond timestamp.
var seq uint64

// keyLocks serializes mutations for the same event id; distinct ids hash
// to independent stripes and commute.
var keyLocks [32]sync.Mutex

func lockFor(eventID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(eventID))
	return &keyLocks[h.Sum32()%uint32(len(keyLocks))]
}

// RecKey returns the primary key for an event id.
func RecKey(eventID string) string {
	return "rec:" + eventID
}

// AuthorIdxKey returns the insertion-ordered author index key.
func AuthorIdxKey(authorID string, ts int64, s uint64) string {
	return fmt.Sprintf("author:%s:%020d-%06d", authorID, ts, s)
}

// Open opens (or creates) a Pebble database at the given path and keeps
// a global handle for simple usage in this package.
func Open(path string) error {
	var err error
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

// Insert writes a corpus record under its event id and adds an
// insertion-ordered author index entry. Both keys are committed in one
// batch so no reader observes a partial write. Inserting an event id that
// is already present fails with ErrDuplicateKey and leaves the existing
// record untouched.
func Insert(rec models.CorpusRecord) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	if rec.EventID == "" {
		return fmt.Errorf("missing event id")
	}
	mu := lockFor(rec.EventID)
	mu.Lock()
	defer mu.Unlock()

	key := []byte(RecKey(rec.EventID))
	if _, closer, err := db.Get(key); err == nil {
		if closer != nil {
			_ = closer.Close()
		}
		insertDuplicates.Inc()
		return fmt.Errorf("insert %s: %w", rec.EventID, ErrDuplicateKey)
	} else if !errors.Is(err, pebble.ErrNotFound) {
		return err
	}

	if rec.TS == 0 {
		rec.TS = time.Now().UTC().UnixNano()
	}
	s := atomic.AddUint64(&seq, 1)
	rec.IndexKey = AuthorIdxKey(rec.AuthorID, rec.TS, s)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	b := db.NewBatch()
	defer b.Close()
	if err := b.Set(key, data, nil); err != nil {
		return err
	}
	if err := b.Set([]byte(rec.IndexKey), []byte(rec.EventID), nil); err != nil {
		return err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		logger.Error("insert_record_failed", "event_id", rec.EventID, "error", err)
		return err
	}
	inserts.Inc()
	logger.Debug("record_inserted", "event_id", rec.EventID, "author", rec.AuthorID)
	return nil
}

// Delete removes the record for an event id together with its author
// index entry. An absent id is a no-op, not an error, so retried deletion
// events stay idempotent.
func Delete(eventID string) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	mu := lockFor(eventID)
	mu.Lock()
	defer mu.Unlock()

	key := []byte(RecKey(eventID))
	v, closer, err := db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			deleteNoops.Inc()
			return nil
		}
		return err
	}
	var rec models.CorpusRecord
	uerr := json.Unmarshal(v, &rec)
	if closer != nil {
		_ = closer.Close()
	}
	if uerr != nil {
		return fmt.Errorf("invalid record JSON for %s: %w", eventID, uerr)
	}

	b := db.NewBatch()
	defer b.Close()
	if err := b.Delete(key, nil); err != nil {
		return err
	}
	if rec.IndexKey != "" {
		if err := b.Delete([]byte(rec.IndexKey), nil); err != nil {
			return err
		}
	}
	if err := b.Commit(pebble.Sync); err != nil {
		logger.Error("delete_record_failed", "event_id", eventID, "error", err)
		return err
	}
	deletes.Inc()
	logger.Debug("record_deleted", "event_id", eventID)
	return nil
}

// getRecord loads one record by primary key.
func getRecord(eventID string) (models.CorpusRecord, error) {
	var rec models.CorpusRecord
	v, closer, err := db.Get([]byte(RecKey(eventID)))
	if err != nil {
		return rec, err
	}
	uerr := json.Unmarshal(v, &rec)
	if closer != nil {
		_ = closer.Close()
	}
	if uerr != nil {
		return rec, fmt.Errorf("invalid record JSON for %s: %w", eventID, uerr)
	}
	return rec, nil
}

// ListByAuthor returns the stored contents for one author in insertion
// order. Records whose primary row vanished mid-scan are skipped.
func ListByAuthor(authorID string) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte("author:" + authorID + ":")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		eventID := string(iter.Value())
		rec, gerr := getRecord(eventID)
		if gerr != nil {
			if errors.Is(gerr, pebble.ErrNotFound) {
				continue
			}
			return nil, gerr
		}
		out = append(out, rec.Content)
	}
	reads.Inc()
	return out, iter.Error()
}

// ListAll returns the contents of every stored record, order unspecified.
func ListAll() ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte("rec:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var rec models.CorpusRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("invalid record JSON at %s: %w", iter.Key(), err)
		}
		out = append(out, rec.Content)
	}
	reads.Inc()
	return out, iter.Error()
}

// CountRecords returns the number of stored corpus records.
func CountRecords() (int64, error) {
	if db == nil {
		return 0, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte("rec:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	var n int64
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		n++
	}
	return n, iter.Error()
}

// ListKeys returns all keys (as strings) that start with the given
// prefix. If prefix is empty it returns all keys in the DB.
func ListKeys(prefix string) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	if prefix == "" {
		for iter.First(); iter.Valid(); iter.Next() {
			out = append(out, string(append([]byte(nil), iter.Key()...)))
		}
		return out, iter.Error()
	}
	pfx := []byte(prefix)
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, string(append([]byte(nil), iter.Key()...)))
	}
	return out, iter.Error()
}
