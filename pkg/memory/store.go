package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names. Preferences are durable; history entries expire after the
// configured TTL; feedback is append-only.
const (
	bucketPreferences = "preferences"
	bucketHistory     = "history"
	bucketFeedback    = "feedback"
)

// DefaultHistoryTTL is how long chat history entries are kept.
const DefaultHistoryTTL = 30 * 24 * time.Hour

// HistoryEntry is one stored chat turn.
type HistoryEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Feedback is a user rating for a chat response.
type Feedback struct {
	RunID     string    `json:"run_id"`
	Score     float64   `json:"score"` // 1.0 positive, 0.0 negative
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a bbolt-backed persistent store for per-user preferences, chat
// history, and feedback. Users are identified by a hash of their auth
// token so tokens are never written to disk.
type Store struct {
	db         *bolt.DB
	mu         sync.RWMutex
	historyTTL time.Duration
}

// NewStore opens (or creates) the store at path. A zero historyTTL uses
// DefaultHistoryTTL.
func NewStore(path string, historyTTL time.Duration) (*Store, error) {
	if historyTTL <= 0 {
		historyTTL = DefaultHistoryTTL
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketPreferences, bucketHistory, bucketFeedback} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &Store{db: db, historyTTL: historyTTL}, nil
}

// userKey hashes an auth token into a stable, non-reversible identifier.
func userKey(authToken string) string {
	sum := sha256.Sum256([]byte(authToken))
	return hex.EncodeToString(sum[:8])
}

// GetPreference returns a single preference value and whether it exists.
func (s *Store) GetPreference(authToken, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketPreferences)).Get(prefKey(authToken, key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &value)
	})
	if err != nil {
		return "", false, err
	}
	return value, found, nil
}

// SetPreference stores a single preference value.
func (s *Store) SetPreference(authToken, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal preference: %w", err)
		}
		return tx.Bucket([]byte(bucketPreferences)).Put(prefKey(authToken, key), data)
	})
}

// DeletePreference removes a single preference.
func (s *Store) DeletePreference(authToken, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPreferences)).Delete(prefKey(authToken, key))
	})
}

// Preferences returns all preferences for a user.
func (s *Store) Preferences(authToken string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := []byte(userKey(authToken) + "/")
	result := make(map[string]string)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketPreferences)).Cursor()
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var value string
			if err := json.Unmarshal(v, &value); err != nil {
				return fmt.Errorf("unmarshal preference %s: %w", string(k), err)
			}
			result[strings.TrimPrefix(string(k), string(prefix))] = value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AppendHistory records a chat turn for a user.
func (s *Store) AppendHistory(authToken string, entry HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal history entry: %w", err)
		}
		b := tx.Bucket([]byte(bucketHistory))
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("history sequence: %w", err)
		}
		// The timestamp orders entries; the bucket sequence breaks ties so
		// two turns stamped in the same nanosecond never share a key.
		key := fmt.Sprintf("%s/%020d-%012d", userKey(authToken), entry.CreatedAt.UnixNano(), seq)
		return b.Put([]byte(key), data)
	})
}

// History returns the user's chat turns in chronological order, dropping
// and deleting entries older than the store's TTL.
func (s *Store) History(authToken string) ([]HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := []byte(userKey(authToken) + "/")
	cutoff := time.Now().Add(-s.historyTTL)

	var entries []HistoryEntry
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketHistory))
		c := b.Cursor()
		var expired [][]byte
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var entry HistoryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshal history entry %s: %w", string(k), err)
			}
			if entry.CreatedAt.Before(cutoff) {
				expired = append(expired, append([]byte(nil), k...))
				continue
			}
			entries = append(entries, entry)
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return fmt.Errorf("expire history entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveFeedback stores a feedback record keyed by run ID.
func (s *Store) SaveFeedback(fb Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(fb)
		if err != nil {
			return fmt.Errorf("marshal feedback: %w", err)
		}
		return tx.Bucket([]byte(bucketFeedback)).Put([]byte(fb.RunID), data)
	})
}

// GetFeedback returns the feedback stored for a run ID, if any.
func (s *Store) GetFeedback(runID string) (Feedback, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fb Feedback
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketFeedback)).Get([]byte(runID))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &fb)
	})
	if err != nil {
		return Feedback{}, false, err
	}
	return fb, found, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func prefKey(authToken, key string) []byte {
	return []byte(userKey(authToken) + "/" + key)
}
