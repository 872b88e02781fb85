// Package history owns the bounded, newest-first collection of past
// transcriptions and the lifecycle of their audio resources.
package history

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"voxpad/internal/blob"
	"voxpad/internal/domain"
	"voxpad/internal/ports"
)

// StorageKey is the single durable-store key holding the serialized
// collection.
const StorageKey = "transcriptionHistory"

// DefaultCapacity bounds the collection.
const DefaultCapacity = 10

// persistedRecord is the on-disk shape. Locators are persisted as opaque
// strings even though local ones only resolve within one process run.
type persistedRecord struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
	Filename  string `json:"filename"`
	AudioURL  string `json:"audioUrl"`
	WordCount int    `json:"wordCount"`
	CharCount int    `json:"charCount"`
}

// Store keeps records newest-first, capped at capacity. Every mutation
// rewrites the whole persisted value.
type Store struct {
	durable  ports.DurableStore
	blobs    *blob.Registry
	capacity int

	mu      sync.Mutex
	records []domain.TranscriptionRecord
	lastID  int64
}

// NewStore restores the persisted collection. Unreadable contents are
// logged and treated as empty; construction never fails on bad data.
func NewStore(durable ports.DurableStore, blobs *blob.Registry, capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Store{durable: durable, blobs: blobs, capacity: capacity}
	s.load()
	return s
}

func (s *Store) load() {
	value, ok, err := s.durable.Get(StorageKey)
	if err != nil {
		log.Printf("history: durable store read failed, starting empty: %v", err)
		return
	}
	if !ok {
		return
	}

	var persisted []persistedRecord
	if err := json.Unmarshal([]byte(value), &persisted); err != nil {
		log.Printf("history: discarding unreadable persisted history: %v", err)
		return
	}

	s.records = make([]domain.TranscriptionRecord, 0, len(persisted))
	for _, p := range persisted {
		if p.ID > s.lastID {
			s.lastID = p.ID
		}
		s.records = append(s.records, domain.TranscriptionRecord{
			ID:             p.ID,
			Timestamp:      p.Timestamp,
			Text:           p.Text,
			Filename:       p.Filename,
			AudioURL:       p.AudioURL,
			WordCount:      p.WordCount,
			CharCount:      p.CharCount,
			AudioAvailable: s.available(p.AudioURL),
		})
	}
}

// available reports whether a restored locator can still be played.
// Local locators must resolve in the registry; anything else is assumed
// reachable by the presentation layer.
func (s *Store) available(locator string) bool {
	if locator == "" {
		return false
	}
	if !blob.IsLocal(locator) {
		return true
	}
	_, ok := s.blobs.Resolve(locator)
	return ok
}

// NextID returns a time-derived identifier, strictly increasing across
// the collection's lifetime.
func (s *Store) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Insert prepends a record, evicts past capacity (revoking evicted
// audio), and persists the full collection.
func (s *Store) Insert(record domain.TranscriptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID > s.lastID {
		s.lastID = record.ID
	}

	s.records = append([]domain.TranscriptionRecord{record}, s.records...)
	if len(s.records) > s.capacity {
		evicted := s.records[s.capacity:]
		s.records = s.records[:s.capacity:s.capacity]
		for _, old := range evicted {
			if blob.IsLocal(old.AudioURL) {
				s.blobs.Revoke(old.AudioURL)
			}
		}
	}

	return s.persistLocked()
}

// ClearAll revokes every locally created audio resource, empties the
// collection, and removes the persisted value entirely.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if blob.IsLocal(record.AudioURL) {
			s.blobs.Revoke(record.AudioURL)
		}
	}
	s.records = nil

	if err := s.durable.Remove(StorageKey); err != nil {
		return fmt.Errorf("remove persisted history: %w", err)
	}
	return nil
}

// Select looks a record up by id. Pure read.
func (s *Store) Select(id int64) (domain.TranscriptionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records {
		if record.ID == id {
			return record, true
		}
	}
	return domain.TranscriptionRecord{}, false
}

// Records returns a newest-first copy of the collection.
func (s *Store) Records() []domain.TranscriptionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TranscriptionRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Size reports the current record count.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) persistLocked() error {
	persisted := make([]persistedRecord, 0, len(s.records))
	for _, r := range s.records {
		persisted = append(persisted, persistedRecord{
			ID:        r.ID,
			Timestamp: r.Timestamp,
			Text:      r.Text,
			Filename:  r.Filename,
			AudioURL:  r.AudioURL,
			WordCount: r.WordCount,
			CharCount: r.CharCount,
		})
	}

	raw, err := json.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("serialize history: %w", err)
	}
	if err := s.durable.Set(StorageKey, string(raw)); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}
