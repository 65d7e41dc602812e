package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Staged is an artifact written to disk but not yet published. It either
// becomes the next generation via Publish or disappears via Discard.
type Staged struct {
	slot string
	path string
}

// Slot returns the slot this staged artifact belongs to.
func (st *Staged) Slot() string {
	return st.slot
}

// Stage durably writes artifact bytes to a hidden stage file in the slot
// directory. The file is created exclusively under a unique name, so
// concurrent stages never collide, and fsynced before Stage returns.
func (s *Store) Stage(ctx context.Context, slot string, data []byte) (*Staged, error) {
	if err := ctxCheck(ctx, "stage artifact", slot); err != nil {
		return nil, err
	}
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}

	dir := s.slotDir(slot)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, &IOError{Kind: KindIO, Op: "create slot directory", Slot: slot, Err: err}
	}

	name := stagePrefix + uuid.Must(uuid.NewV7()).String()
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, &IOError{Kind: KindIO, Op: "create stage file", Slot: slot, Err: err}
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return nil, &IOError{Kind: KindIO, Op: "write stage file", Slot: slot, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, &IOError{Kind: KindIO, Op: "sync stage file", Slot: slot, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, &IOError{Kind: KindIO, Op: "close stage file", Slot: slot, Err: err}
	}

	return &Staged{slot: slot, path: path}, nil
}

// ReadStaged reads the staged bytes back from disk. The publish pipeline
// uses this to verify what actually hit the platters, not the buffer it
// wrote.
func (s *Store) ReadStaged(ctx context.Context, st *Staged) ([]byte, error) {
	if err := ctxCheck(ctx, "read staged artifact", st.slot); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(st.path)
	if err != nil {
		return nil, &IOError{Kind: KindIO, Op: "read staged artifact", Slot: st.slot, Err: err}
	}
	return data, nil
}

// Publish atomically promotes a staged artifact to the slot's next
// generation. Readers see either the previous newest generation or the new
// one, never an intermediate state.
func (s *Store) Publish(ctx context.Context, st *Staged) (int64, error) {
	if err := ctxCheck(ctx, "publish artifact", st.slot); err != nil {
		return 0, err
	}

	generations, err := s.ListGenerations(ctx, st.slot)
	if err != nil {
		return 0, err
	}
	next := int64(1)
	if len(generations) > 0 {
		next = generations[0] + 1
	}

	target := s.artifactPath(st.slot, next)
	if _, err := os.Stat(target); err == nil {
		return 0, &IOError{
			Kind:       KindAlreadyExists,
			Op:         "publish artifact",
			Slot:       st.slot,
			Generation: next,
			Err:        fmt.Errorf("generation already exists"),
		}
	}

	if err := os.Rename(st.path, target); err != nil {
		return 0, &IOError{Kind: KindIO, Op: "publish artifact", Slot: st.slot, Generation: next, Err: err}
	}

	// Sync the slot directory so the rename itself is durable
	if err := syncDir(s.slotDir(st.slot)); err != nil {
		s.log.Warn("directory sync failed after publish, artifact still valid",
			slog.String("slot", st.slot),
			slog.Int64("generation", next),
			slog.String("error", err.Error()),
		)
	}

	return next, nil
}

// Discard removes a staged artifact that will not be published. Best
// effort: a leftover stage file is swept on the next Open anyway.
func (s *Store) Discard(st *Staged) {
	if st == nil {
		return
	}
	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to discard stage file",
			slog.String("slot", st.slot),
			slog.String("error", err.Error()),
		)
	}
}

// syncDir syncs a directory to ensure durability of rename operations.
// Needed after atomic rename on some filesystems.
func syncDir(dirPath string) error {
	dir, err := os.Open(dirPath)
	if err != nil {
		return fmt.Errorf("open dir for sync: %w", err)
	}
	defer dir.Close()

	if err := dir.Sync(); err != nil {
		return fmt.Errorf("sync dir: %w", err)
	}
	return nil
}
