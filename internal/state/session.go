package state

import (
	"fmt"
	"sync"
)

// Session is an in-memory Source/Sink pair around a single graph.
//
// The gameplay loop owns one Session; the save scheduler snapshots from it
// and loads restore into it. All methods are safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	graph *Graph
}

// NewSession creates a session seeded with the given graph.
// The session keeps its own copy.
func NewSession(g *Graph) *Session {
	return &Session{graph: g.Clone()}
}

// Snapshot returns a deep copy of the current graph.
func (s *Session) Snapshot() (*Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph == nil {
		return nil, fmt.Errorf("session has no state")
	}
	return s.graph.Clone(), nil
}

// Restore validates the incoming graph against the session's referential
// rules, then swaps it in atomically. On validation failure the current
// graph is untouched.
func (s *Session) Restore(g *Graph) error {
	if g == nil {
		return &RestoreError{Message: "nil graph"}
	}
	if err := checkReferences(g); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g.Clone()
	return nil
}

// Mutate runs fn against the live graph under the session lock.
// Test scaffolding for driving state changes between snapshots.
func (s *Session) Mutate(fn func(*Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.graph)
}

// checkReferences verifies internal consistency of a graph: the current
// location exists, exits point at known locations, and equipped items are
// actually carried. Violations mean the snapshot came from a build whose
// world this one no longer understands.
func checkReferences(g *Graph) error {
	if g.World.CurrentLocation != "" {
		if _, ok := g.World.Locations[g.World.CurrentLocation]; !ok {
			return &RestoreError{
				Path:    "world.current_location",
				Message: fmt.Sprintf("unknown location %q", g.World.CurrentLocation),
			}
		}
	}

	for id, loc := range g.World.Locations {
		for dir, dest := range loc.Exits {
			if _, ok := g.World.Locations[dest]; !ok {
				return &RestoreError{
					Path:    fmt.Sprintf("world.locations.%s.exits.%s", id, dir),
					Message: fmt.Sprintf("exit leads to unknown location %q", dest),
				}
			}
		}
	}

	carried := make(map[string]bool, len(g.Inventory.Items))
	for _, item := range g.Inventory.Items {
		if item.Count <= 0 {
			return &RestoreError{
				Path:    fmt.Sprintf("inventory.items.%s", item.ID),
				Message: fmt.Sprintf("non-positive count %d", item.Count),
			}
		}
		carried[item.ID] = true
	}
	for slot, itemID := range g.Inventory.Equipment {
		if !carried[itemID] {
			return &RestoreError{
				Path:    fmt.Sprintf("inventory.equipment.%s", slot),
				Message: fmt.Sprintf("equipped item %q is not in inventory", itemID),
			}
		}
	}

	return nil
}
