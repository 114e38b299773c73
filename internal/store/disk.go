package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/peterbourgon/diskv/v3"

	"marginalia/internal/document"
)

// Disk persists the document as one JSON blob in a diskv store.
type Disk struct {
	d *diskv.Diskv
}

func OpenDisk(basePath string) *Disk {
	return &Disk{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 1024 * 1024,
	})}
}

func (s *Disk) Load(_ context.Context) (*document.Document, error) {
	if !s.d.Has(StateKey) {
		return nil, ErrNotFound
	}
	raw, err := s.d.Read(StateKey)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var doc document.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if doc.Notes == nil {
		doc.Notes = make(map[string]document.Note)
	}
	return &doc, nil
}

func (s *Disk) Save(_ context.Context, doc *document.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.d.Write(StateKey, raw); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func (s *Disk) Close() error {
	return nil
}
