package state

import (
	"slices"
	"sort"
)

// Relationship stages in ascending affinity order.
// StageForAffinity maps a raw affinity score onto these.
const (
	StageHostile    = "hostile"
	StageUnfriendly = "unfriendly"
	StageNeutral    = "neutral"
	StageFriendly   = "friendly"
	StageTrusting   = "trusting"
	StageAlly       = "ally"
	StageLover      = "lover"
	StageFamily     = "family"
)

// Graph is the complete persistable game state. A Graph is a plain value
// tree: no live references to engine internals, safe to hand across
// goroutines once cloned.
type Graph struct {
	Player        Player
	World         World
	Relationships map[string]Relationship // NPC ID -> relationship
	Inventory     Inventory
	Quests        QuestLog
	Flags         map[string]bool
	Reputation    map[string]int64 // faction -> standing
	TurnCount     int64
}

// Player holds character sheet state.
type Player struct {
	Name          string
	Class         string // "Warrior", "Mage", "Rogue", "Cleric"
	Level         int64
	XP            int64
	XPToNext      int64
	Health        int64
	MaxHealth     int64
	Mana          int64
	MaxMana       int64
	Gold          int64
	Strength      int64
	Defense       int64
	Intelligence  int64
	Skills        []string
	StatusEffects []string
	Difficulty    string // "easy", "normal", "hard", "legendary"
}

// World holds mutable world state: where the player is, what they have
// seen, and the location records the engine may rewrite at runtime
// (unlocked exits, changed region ownership).
type World struct {
	CurrentLocation     string
	DiscoveredLocations []string // set-like: sorted by Normalize
	LocationHistory     []string // visit order, oldest first
	Locations           map[string]Location
}

// Location is a world node. Exits map direction -> destination location ID.
type Location struct {
	Name   string
	Region string
	Exits  map[string]string
}

// Relationship tracks standing with a single NPC.
type Relationship struct {
	Affinity int64
	Stage    string
	Met      bool
	Flags    []string // set-like: sorted by Normalize
}

// Inventory holds carried items and worn equipment.
// Equipment maps slot name -> item ID; every equipped item must also be
// present in Items.
type Inventory struct {
	Items     []ItemStack // set-like by ID: sorted by Normalize
	Equipment map[string]string
	MaxSlots  int64
}

// ItemStack is a carried item with a count.
type ItemStack struct {
	ID    string
	Count int64
}

// QuestLog holds quest progression.
type QuestLog struct {
	Active         []Quest
	Completed      []string // set-like: sorted by Normalize
	Failed         []string // set-like: sorted by Normalize
	Available      []string // set-like: sorted by Normalize
	DailyCompleted int64
}

// Quest is an in-progress quest with per-objective counters.
type Quest struct {
	ID         string
	Status     string // "active"
	Objectives []Objective
}

// Objective tracks progress toward a single quest goal.
type Objective struct {
	ID       string
	Progress int64
	Required int64
}

// StageForAffinity maps an affinity score to a relationship stage.
// Thresholds are inclusive lower bounds.
func StageForAffinity(affinity int64) string {
	switch {
	case affinity >= 100:
		return StageFamily
	case affinity >= 95:
		return StageLover
	case affinity >= 80:
		return StageAlly
	case affinity >= 50:
		return StageTrusting
	case affinity >= 25:
		return StageFriendly
	case affinity >= 0:
		return StageNeutral
	case affinity >= -10:
		return StageUnfriendly
	default:
		return StageHostile
	}
}

// Clone returns a deep copy of the graph. Mutating the copy never affects
// the original, so a snapshot can be sealed while gameplay continues.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}

	out := &Graph{
		Player:     g.Player,
		TurnCount:  g.TurnCount,
		Flags:      cloneMap(g.Flags),
		Reputation: cloneMap(g.Reputation),
	}

	out.Player.Skills = slices.Clone(g.Player.Skills)
	out.Player.StatusEffects = slices.Clone(g.Player.StatusEffects)

	out.World = World{
		CurrentLocation:     g.World.CurrentLocation,
		DiscoveredLocations: slices.Clone(g.World.DiscoveredLocations),
		LocationHistory:     slices.Clone(g.World.LocationHistory),
	}
	if g.World.Locations != nil {
		out.World.Locations = make(map[string]Location, len(g.World.Locations))
		for id, loc := range g.World.Locations {
			loc.Exits = cloneMap(loc.Exits)
			out.World.Locations[id] = loc
		}
	}

	if g.Relationships != nil {
		out.Relationships = make(map[string]Relationship, len(g.Relationships))
		for id, rel := range g.Relationships {
			rel.Flags = slices.Clone(rel.Flags)
			out.Relationships[id] = rel
		}
	}

	out.Inventory = Inventory{
		Items:     slices.Clone(g.Inventory.Items),
		Equipment: cloneMap(g.Inventory.Equipment),
		MaxSlots:  g.Inventory.MaxSlots,
	}

	out.Quests = QuestLog{
		Completed:      slices.Clone(g.Quests.Completed),
		Failed:         slices.Clone(g.Quests.Failed),
		Available:      slices.Clone(g.Quests.Available),
		DailyCompleted: g.Quests.DailyCompleted,
	}
	if g.Quests.Active != nil {
		out.Quests.Active = make([]Quest, len(g.Quests.Active))
		for i, q := range g.Quests.Active {
			q.Objectives = slices.Clone(q.Objectives)
			out.Quests.Active[i] = q
		}
	}

	return out
}

// Normalize sorts the set-like collections in place so that semantically
// equal graphs encode to identical bytes. Ordered collections
// (LocationHistory, Skills, StatusEffects, Active quests and their
// objectives) are left untouched.
func (g *Graph) Normalize() {
	sort.Strings(g.World.DiscoveredLocations)
	sort.Strings(g.Quests.Completed)
	sort.Strings(g.Quests.Failed)
	sort.Strings(g.Quests.Available)
	slices.SortFunc(g.Inventory.Items, func(a, b ItemStack) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	for id, rel := range g.Relationships {
		sort.Strings(rel.Flags)
		g.Relationships[id] = rel
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
