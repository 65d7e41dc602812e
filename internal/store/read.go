package store

import (
	"context"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ReadGeneration returns the artifact bytes for one generation of a slot.
func (s *Store) ReadGeneration(ctx context.Context, slot string, generation int64) ([]byte, error) {
	if err := ctxCheck(ctx, "read artifact", slot); err != nil {
		return nil, err
	}
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.artifactPath(slot, generation))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFound("read artifact", slot, generation)
		}
		return nil, &IOError{Kind: KindIO, Op: "read artifact", Slot: slot, Generation: generation, Err: err}
	}
	return data, nil
}

// StatGeneration returns the size and modification time of one artifact
// without reading it.
func (s *Store) StatGeneration(ctx context.Context, slot string, generation int64) (int64, time.Time, error) {
	if err := ctxCheck(ctx, "stat artifact", slot); err != nil {
		return 0, time.Time{}, err
	}
	if err := ValidateSlot(slot); err != nil {
		return 0, time.Time{}, err
	}

	info, err := os.Stat(s.artifactPath(slot, generation))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, time.Time{}, NewNotFound("stat artifact", slot, generation)
		}
		return 0, time.Time{}, &IOError{Kind: KindIO, Op: "stat artifact", Slot: slot, Generation: generation, Err: err}
	}
	return info.Size(), info.ModTime().UTC(), nil
}

// ListGenerations returns a slot's generation numbers, newest first.
// A slot with no artifacts (or no directory yet) lists as empty; that is
// not an error at this layer.
func (s *Store) ListGenerations(ctx context.Context, slot string) ([]int64, error) {
	if err := ctxCheck(ctx, "list generations", slot); err != nil {
		return nil, err
	}
	if err := ValidateSlot(slot); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.slotDir(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return []int64{}, nil
		}
		return nil, &IOError{Kind: KindIO, Op: "list generations", Slot: slot, Err: err}
	}

	generations := make([]int64, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		gen, ok := parseArtifactName(entry.Name())
		if !ok {
			continue
		}
		generations = append(generations, gen)
	}

	sort.Slice(generations, func(i, j int) bool { return generations[i] > generations[j] })
	return generations, nil
}

// RemoveGeneration deletes a single artifact.
func (s *Store) RemoveGeneration(ctx context.Context, slot string, generation int64) error {
	if err := ctxCheck(ctx, "remove artifact", slot); err != nil {
		return err
	}
	if err := ValidateSlot(slot); err != nil {
		return err
	}

	if err := os.Remove(s.artifactPath(slot, generation)); err != nil {
		if os.IsNotExist(err) {
			return NewNotFound("remove artifact", slot, generation)
		}
		return &IOError{Kind: KindIO, Op: "remove artifact", Slot: slot, Generation: generation, Err: err}
	}
	return nil
}

// parseArtifactName extracts the generation number from an artifact file
// name of the form 00000042.sav.
func parseArtifactName(name string) (int64, bool) {
	if !strings.HasSuffix(name, artifactSuffix) {
		return 0, false
	}
	digits := strings.TrimSuffix(name, artifactSuffix)
	if len(digits) != 8 {
		return 0, false
	}
	gen, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || gen <= 0 {
		return 0, false
	}
	return gen, true
}
