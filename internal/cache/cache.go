// Package cache persists normalized resume text so repeated rankings skip
// PDF extraction. Records are keyed by a hash of the source file; a schema
// version bump invalidates every record at once.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	apperrors "cvranker/internal/errors"
)

// SchemaVersion changes whenever the normalization rules change, so stale
// canonical text is never reused across incompatible pipeline versions.
const SchemaVersion = 3

// Record is the persisted text-cache entry for one candidate document.
type Record struct {
	SchemaVersion  int       `json:"schemaVersion"`
	RecordID       string    `json:"recordId"`
	CandidateID    string    `json:"candidateId"`
	SourceHash     string    `json:"sourceHash"`
	NormalizedText string    `json:"normalizedText"`
	PageCount      int       `json:"pageCount"`
	UsedOCR        bool      `json:"usedOcr"`
	ExtractedAt    time.Time `json:"extractedAt"`
}

// Store is a directory-backed cache of Records.
type Store struct {
	dir     string
	enabled bool
	logger  *apperrors.Logger
}

// NewStore creates a store rooted at dir. A disabled store is a no-op.
func NewStore(dir string, enabled bool, logger *apperrors.Logger) *Store {
	return &Store{dir: dir, enabled: enabled, logger: logger}
}

// HashFile returns the content hash used as cache key for a source PDF.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			"Cannot hash source file: "+path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			"Cannot hash source file: "+path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *Store) recordPath(sourceHash string) string {
	return filepath.Join(s.dir, sourceHash+".json")
}

// Get returns the cached record for a source hash, or nil when absent,
// corrupt, or written by an incompatible schema version. Corrupt records
// are deleted so they are rebuilt on the next run.
func (s *Store) Get(sourceHash string) *Record {
	if !s.enabled {
		return nil
	}

	data, err := os.ReadFile(s.recordPath(sourceHash))
	if err != nil {
		return nil
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		if s.logger != nil {
			s.logger.Warn("Dropping corrupt cache record", "hash", sourceHash, "error", err.Error())
		}
		_ = os.Remove(s.recordPath(sourceHash))
		return nil
	}
	if record.SchemaVersion != SchemaVersion {
		return nil
	}
	return &record
}

// Put writes a record for the given extraction result.
func (s *Store) Put(candidateID, sourceHash, normalizedText string, pageCount int, usedOCR bool, now time.Time) error {
	if !s.enabled {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return apperrors.NewIOError("CACHE_DIR_FAILED",
			"Cannot create cache directory: "+s.dir, err)
	}

	record := Record{
		SchemaVersion:  SchemaVersion,
		RecordID:       uuid.NewString(),
		CandidateID:    candidateID,
		SourceHash:     sourceHash,
		NormalizedText: normalizedText,
		PageCount:      pageCount,
		UsedOCR:        usedOCR,
		ExtractedAt:    now.UTC(),
	}

	data, err := json.MarshalIndent(&record, "", "  ")
	if err != nil {
		return apperrors.NewInternalError(apperrors.ErrCodeCacheCorrupt,
			"Cannot encode cache record", err)
	}
	if err := os.WriteFile(s.recordPath(sourceHash), data, 0600); err != nil {
		return apperrors.NewIOError("CACHE_WRITE_FAILED",
			fmt.Sprintf("Cannot write cache record for %s", candidateID), err)
	}
	return nil
}
