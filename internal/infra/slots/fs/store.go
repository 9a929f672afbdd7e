// Package fs implements domain.SlotStore on the local filesystem. Each slot
// is a single JSON document named <slot>.json under the root directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"havenlist/pkg/domain"
)

var _ domain.SlotStore = (*Store)(nil)

// Store writes are atomic per slot (temp file + rename) but the store is
// not safe for concurrent writers in separate processes.
type Store struct {
	root string
}

// New returns a filesystem-backed slot store rooted at root, creating it if needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./havenlist-data"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create slot root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the directory holding the slot files.
func (s *Store) Root() string { return s.root }

// sanitizeSlot rejects names that would escape the root directory.
func sanitizeSlot(slot domain.Slot) (string, error) {
	name := string(slot)
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty slot name")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid slot name %q", name)
	}
	return name, nil
}

func (s *Store) pathFor(slot domain.Slot) (string, error) {
	name, err := sanitizeSlot(slot)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, name+".json"), nil
}

// Get reads the slot file. A missing file reports found=false.
func (s *Store) Get(_ context.Context, slot domain.Slot) ([]byte, bool, error) {
	path, err := s.pathFor(slot)
	if err != nil {
		return nil, false, err
	}
	// #nosec G304 -- path is confined to the root by sanitizeSlot
	data, err := os.ReadFile(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read slot %s: %w", slot, err)
	}
	return data, true, nil
}

// Put replaces the slot file atomically.
func (s *Store) Put(_ context.Context, slot domain.Slot, payload []byte) error {
	path, err := s.pathFor(slot)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", slot, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync slot %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close slot %s: %w", slot, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move slot %s into place: %w", slot, err)
	}
	return nil
}

// Close is a no-op for the filesystem store.
func (s *Store) Close() error { return nil }
