package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.etcd.io/bbolt"
)

const (
	scanBucketName       = "scans"
	submissionBucketName = "submissions"
)

// ErrNotFound is returned for scans, files or submissions that do not exist
var ErrNotFound = errors.New("not found")

// DB defines the interface for database operations
type DB interface {
	// SaveScan inserts or replaces a scan
	SaveScan(scan *Scan) error

	// GetScan retrieves a scan by ID
	GetScan(id string) (*Scan, error)

	// ListScans returns all scans, newest first
	ListScans() ([]*Scan, error)

	// DeleteScan removes a scan and its submissions
	DeleteScan(id string) error

	// SaveSubmission records a submission attempt
	SaveSubmission(submission *Submission) error

	// ListSubmissions returns the submissions of a scan, oldest first
	ListSubmissions(scanID string) ([]*Submission, error)

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{scanBucketName, submissionBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveScan saves a scan to the database
func (b *BoltDB) SaveScan(scan *Scan) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(scan)
		if err != nil {
			return fmt.Errorf("marshaling scan: %w", err)
		}
		return tx.Bucket([]byte(scanBucketName)).Put([]byte(scan.ID), data)
	})
}

// GetScan retrieves a scan by ID
func (b *BoltDB) GetScan(id string) (*Scan, error) {
	var scan *Scan
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(scanBucketName)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("scan %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &scan)
	})
	if err != nil {
		return nil, err
	}
	return scan, nil
}

// ListScans returns all scans, newest first
func (b *BoltDB) ListScans() ([]*Scan, error) {
	scans := make([]*Scan, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(scanBucketName)).ForEach(func(k, v []byte) error {
			var scan Scan
			if err := json.Unmarshal(v, &scan); err != nil {
				return fmt.Errorf("unmarshaling scan: %w", err)
			}
			scans = append(scans, &scan)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Keys are random UUIDs, so order by creation time
	slices.SortStableFunc(scans, func(a, b *Scan) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return scans, nil
}

// DeleteScan removes a scan and every submission that references it
func (b *BoltDB) DeleteScan(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		scans := tx.Bucket([]byte(scanBucketName))
		if scans.Get([]byte(id)) == nil {
			return fmt.Errorf("scan %s: %w", id, ErrNotFound)
		}
		if err := scans.Delete([]byte(id)); err != nil {
			return err
		}

		submissions := tx.Bucket([]byte(submissionBucketName))
		var stale [][]byte
		err := submissions.ForEach(func(k, v []byte) error {
			var sub Submission
			if err := json.Unmarshal(v, &sub); err != nil {
				return fmt.Errorf("unmarshaling submission: %w", err)
			}
			if sub.ScanID == id {
				stale = append(stale, slices.Clone(k))
			}
			return nil
		})
		if err != nil {
			return err
		}
		// Deleting inside ForEach is not allowed
		for _, k := range stale {
			if err := submissions.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveSubmission saves a submission to the database
func (b *BoltDB) SaveSubmission(submission *Submission) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(submission)
		if err != nil {
			return fmt.Errorf("marshaling submission: %w", err)
		}
		return tx.Bucket([]byte(submissionBucketName)).Put([]byte(submission.ID), data)
	})
}

// ListSubmissions returns the submissions of a scan, oldest first
func (b *BoltDB) ListSubmissions(scanID string) ([]*Submission, error) {
	submissions := make([]*Submission, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(submissionBucketName)).ForEach(func(k, v []byte) error {
			var sub Submission
			if err := json.Unmarshal(v, &sub); err != nil {
				return fmt.Errorf("unmarshaling submission: %w", err)
			}
			if sub.ScanID == scanID {
				submissions = append(submissions, &sub)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(submissions, func(a, b *Submission) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return submissions, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
