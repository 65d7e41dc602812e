// Package store owns the on-disk layout of the save directory.
//
// Layout:
//
//	<root>/LOCK                  advisory process lock
//	<root>/keysalt               key derivation salt
//	<root>/journal.db            operation journal
//	<root>/slots/<slot>/         one directory per save slot
//	<root>/slots/<slot>/00000001.sav
//	<root>/slots/<slot>/.stage-<uuid>
//
// Artifacts are published with a staged write: bytes go to a hidden stage
// file first, are fsynced, and only then renamed to their generation name.
// A crash at any point leaves either the previous artifact set intact or an
// orphaned stage file, never a partially visible artifact. Orphans are
// swept on the next Open.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/gofrs/flock"
)

const (
	lockFileName    = "LOCK"
	saltFileName    = "keysalt"
	journalFileName = "journal.db"
	slotsDirName    = "slots"
	stagePrefix     = ".stage-"
	artifactSuffix  = ".sav"
)

// slotNamePattern constrains slot names to filesystem-safe identifiers.
var slotNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)

// ValidateSlot rejects slot names that could escape the slots directory or
// collide with store internals.
func ValidateSlot(slot string) error {
	if !slotNamePattern.MatchString(slot) {
		return &IOError{
			Kind: KindIO,
			Op:   "validate slot",
			Slot: slot,
			Err:  fmt.Errorf("slot names are 1-32 characters of lowercase letters, digits, dash, underscore"),
		}
	}
	return nil
}

// Store is the save directory handle. Opening a store acquires an exclusive
// advisory lock so two processes never interleave writes to the same saves.
type Store struct {
	root string
	lock *flock.Flock
	log  *slog.Logger
}

// Open prepares the save directory: creates it if needed, takes the process
// lock, and sweeps stage files orphaned by an earlier crash.
func Open(root string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(filepath.Join(root, slotsDirName), 0o750); err != nil {
		return nil, &IOError{Kind: KindIO, Op: "create save directory", Err: err}
	}

	lock := flock.New(filepath.Join(root, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, &IOError{Kind: KindIO, Op: "acquire save lock", Err: err}
	}
	if !locked {
		return nil, &IOError{
			Kind: KindLocked,
			Op:   "acquire save lock",
			Err:  fmt.Errorf("save directory %s is in use by another process", root),
		}
	}

	s := &Store{
		root: root,
		lock: lock,
		log:  log.With(slog.String("component", "store")),
	}
	s.sweepStaged()
	return s, nil
}

// Close releases the process lock.
func (s *Store) Close() error {
	if err := s.lock.Unlock(); err != nil {
		return &IOError{Kind: KindIO, Op: "release save lock", Err: err}
	}
	return nil
}

// Root returns the save directory path.
func (s *Store) Root() string {
	return s.root
}

// SaltPath returns where the key derivation salt lives.
func (s *Store) SaltPath() string {
	return filepath.Join(s.root, saltFileName)
}

// JournalPath returns where the operation journal lives.
func (s *Store) JournalPath() string {
	return filepath.Join(s.root, journalFileName)
}

func (s *Store) slotDir(slot string) string {
	return filepath.Join(s.root, slotsDirName, slot)
}

func (s *Store) artifactPath(slot string, generation int64) string {
	return filepath.Join(s.slotDir(slot), fmt.Sprintf("%08d%s", generation, artifactSuffix))
}

// sweepStaged removes stage files left behind by a crash mid-save. The
// published artifacts are untouched; a stage file that never got renamed
// was by definition never the current save.
func (s *Store) sweepStaged() {
	slots, err := os.ReadDir(filepath.Join(s.root, slotsDirName))
	if err != nil {
		return
	}

	removed := 0
	for _, slot := range slots {
		if !slot.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, slotsDirName, slot.Name())
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || len(entry.Name()) <= len(stagePrefix) || entry.Name()[:len(stagePrefix)] != stagePrefix {
				continue
			}
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				s.log.Warn("failed to sweep orphaned stage file",
					slog.String("slot", slot.Name()),
					slog.String("file", entry.Name()),
					slog.String("error", err.Error()),
				)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		s.log.Info("swept orphaned stage files", slog.Int("count", removed))
	}
}

// ListSlots returns the slot names that currently exist, sorted.
func (s *Store) ListSlots(ctx context.Context) ([]string, error) {
	if err := ctxCheck(ctx, "list slots", ""); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.root, slotsDirName))
	if err != nil {
		return nil, &IOError{Kind: KindIO, Op: "list slots", Err: err}
	}

	slots := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && slotNamePattern.MatchString(entry.Name()) {
			slots = append(slots, entry.Name())
		}
	}
	sort.Strings(slots)
	return slots, nil
}

// DeleteSlot removes a slot and every artifact in it.
func (s *Store) DeleteSlot(ctx context.Context, slot string) error {
	if err := ctxCheck(ctx, "delete slot", slot); err != nil {
		return err
	}
	if err := ValidateSlot(slot); err != nil {
		return err
	}

	dir := s.slotDir(slot)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewNotFound("delete slot", slot, 0)
	}
	if err := os.RemoveAll(dir); err != nil {
		return &IOError{Kind: KindIO, Op: "delete slot", Slot: slot, Err: err}
	}
	if err := syncDir(filepath.Join(s.root, slotsDirName)); err != nil {
		s.log.Warn("directory sync failed after slot delete",
			slog.String("slot", slot),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// RenameSlot moves a slot to a new name. The target must not exist.
func (s *Store) RenameSlot(ctx context.Context, from, to string) error {
	if err := ctxCheck(ctx, "rename slot", from); err != nil {
		return err
	}
	if err := ValidateSlot(from); err != nil {
		return err
	}
	if err := ValidateSlot(to); err != nil {
		return err
	}

	if _, err := os.Stat(s.slotDir(from)); os.IsNotExist(err) {
		return NewNotFound("rename slot", from, 0)
	}
	if _, err := os.Stat(s.slotDir(to)); err == nil {
		return &IOError{
			Kind: KindAlreadyExists,
			Op:   "rename slot",
			Slot: to,
			Err:  fmt.Errorf("target slot already exists"),
		}
	}

	if err := os.Rename(s.slotDir(from), s.slotDir(to)); err != nil {
		return &IOError{Kind: KindIO, Op: "rename slot", Slot: from, Err: err}
	}
	if err := syncDir(filepath.Join(s.root, slotsDirName)); err != nil {
		s.log.Warn("directory sync failed after slot rename",
			slog.String("slot", to),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func ctxCheck(ctx context.Context, op, slot string) error {
	if err := ctx.Err(); err != nil {
		return &IOError{Kind: KindTimeout, Op: op, Slot: slot, Err: err}
	}
	return nil
}
