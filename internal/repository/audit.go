package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tgmarketer/audit-bot/internal/model"
)

// AuditRepository abstracts persistence of submitted audit requests.
// Records are ordered oldest first and identified only by position, which
// is valid between two loads. A request rendered at index i may point at a
// different record once the collection has changed underneath; callers
// accept this (single operator usage).
type AuditRepository interface {
	// Append stores a new record, stamping Timestamp when empty.
	Append(ctx context.Context, req *model.AuditRequest) error
	// LoadAll returns all records oldest first. Malformed or missing
	// storage yields an empty slice, not an error.
	LoadAll(ctx context.Context) ([]*model.AuditRequest, error)
	// RemoveAt deletes the record at index. Out-of-range is a no-op.
	RemoveAt(ctx context.Context, index int) error
}

// FileAuditRepository stores requests as a single JSON array in a file.
// Every mutation reads the whole collection, mutates it in memory and
// replaces the file atomically via a temp file rename.
type FileAuditRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileAuditRepository(path string) *FileAuditRepository {
	return &FileAuditRepository{path: path}
}

// loadLocked reads the file, degrading to an empty collection when the
// file is missing or holds anything other than a JSON array.
func (r *FileAuditRepository) loadLocked() ([]*model.AuditRequest, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*model.AuditRequest{}, nil
		}
		return nil, err
	}
	var records []*model.AuditRequest
	if err := json.Unmarshal(b, &records); err != nil {
		log.Warn().Str("path", r.path).Err(err).Msg("audit store is malformed, treating as empty")
		return []*model.AuditRequest{}, nil
	}
	return records, nil
}

// saveLocked rewrites the whole collection. The JSON stays on one line
// with non-ASCII text unescaped so the file remains human-inspectable.
func (r *FileAuditRepository) saveLocked(records []*model.AuditRequest) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), "audits-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(bytes.TrimSpace(buf.Bytes())); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

func (r *FileAuditRepository) Append(ctx context.Context, req *model.AuditRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.loadLocked()
	if err != nil {
		return err
	}
	record := *req
	if record.Timestamp == "" {
		record.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	records = append(records, &record)
	return r.saveLocked(records)
}

func (r *FileAuditRepository) LoadAll(ctx context.Context) ([]*model.AuditRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.loadLocked()
	if err != nil {
		return nil, err
	}
	out := make([]*model.AuditRequest, len(records))
	for i, rec := range records {
		c := *rec
		out[i] = &c
	}
	return out, nil
}

func (r *FileAuditRepository) RemoveAt(ctx context.Context, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.loadLocked()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(records) {
		return nil
	}
	records = append(records[:index], records[index+1:]...)
	return r.saveLocked(records)
}
