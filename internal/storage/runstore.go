package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	epochBucketName = "epochs"
	metaBucketName  = "metadata"

	checkpointKey = "checkpoint"
)

// EpochRecord captures one epoch of a training run.
type EpochRecord struct {
	RunID      string    `json:"run_id"`
	Epoch      int       `json:"epoch"`
	Loss       float64   `json:"loss"`
	Rates      []float64 `json:"rates"`
	DurationMs float64   `json:"duration_ms"`
	Timestamp  int64     `json:"timestamp"`
}

// Checkpoint is the resumable position of a run: feed LastEpoch back into
// the scheduler to continue where the run stopped.
type Checkpoint struct {
	RunID     string `json:"run_id"`
	LastEpoch int    `json:"last_epoch"`
	SavedAt   int64  `json:"saved_at"`
}

// RunStore persists epoch records and checkpoints for training runs.
type RunStore struct {
	db    *bolt.DB
	runID string
}

// Open creates or opens a run store at the given path and starts a new run.
func Open(dbPath string) (*RunStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(epochBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(metaBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &RunStore{
		db:    db,
		runID: uuid.NewString(),
	}, nil
}

// RunID returns the identifier of the current run.
func (rs *RunStore) RunID() string {
	return rs.runID
}

// Record saves one epoch record for the current run.
func (rs *RunStore) Record(rec EpochRecord) error {
	if rec.RunID == "" {
		rec.RunID = rs.runID
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	key := []byte(fmt.Sprintf("%s/%010d", rec.RunID, rec.Epoch))

	err = rs.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(epochBucketName))
		return bucket.Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}

	return nil
}

// LoadRun loads all records of the given run, in epoch order.
func (rs *RunStore) LoadRun(runID string) ([]EpochRecord, error) {
	prefix := []byte(runID + "/")
	var records []EpochRecord

	err := rs.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(epochBucketName)).Cursor()

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec EpochRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	return records, nil
}

// Count returns the number of stored epoch records across all runs.
func (rs *RunStore) Count() (int, error) {
	var count int

	err := rs.db.View(func(tx *bolt.Tx) error {
		stats := tx.Bucket([]byte(epochBucketName)).Stats()
		count = stats.KeyN
		return nil
	})

	return count, err
}

// SaveCheckpoint records the run's current scheduler position.
func (rs *RunStore) SaveCheckpoint(lastEpoch int) error {
	cp := Checkpoint{
		RunID:     rs.runID,
		LastEpoch: lastEpoch,
		SavedAt:   time.Now().Unix(),
	}

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	return rs.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(metaBucketName))
		return bucket.Put([]byte(checkpointKey), data)
	})
}

// LoadCheckpoint returns the last saved checkpoint, or nil if none exists.
func (rs *RunStore) LoadCheckpoint() (*Checkpoint, error) {
	var cp *Checkpoint

	err := rs.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(metaBucketName)).Get([]byte(checkpointKey))
		if data == nil {
			return nil
		}

		cp = &Checkpoint{}
		return json.Unmarshal(data, cp)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	return cp, nil
}

// SetMeta stores a metadata value.
func (rs *RunStore) SetMeta(key, value string) error {
	return rs.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(metaBucketName))
		return bucket.Put([]byte(key), []byte(value))
	})
}

// GetMeta retrieves a metadata value.
func (rs *RunStore) GetMeta(key string) (string, error) {
	var value string

	err := rs.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(metaBucketName)).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("key not found: %s", key)
		}
		value = string(data)
		return nil
	})

	return value, err
}

// ExportJSONL exports the current run's records to a JSONL file.
func (rs *RunStore) ExportJSONL(path string) error {
	records, err := rs.LoadRun(rs.runID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for _, rec := range records {
		if err := encoder.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}

	return nil
}

// Close closes the store.
func (rs *RunStore) Close() error {
	return rs.db.Close()
}
