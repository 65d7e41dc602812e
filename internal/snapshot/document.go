package snapshot

import (
	"github.com/emberkeep/emberkeep/internal/state"
)

// encodeDocument lowers a graph into the plain value tree that canonical
// marshaling understands. Every field is always emitted so the document
// shape is stable across saves; set-like collections must already be
// sorted (Encode normalizes a clone before calling this).
func encodeDocument(g *state.Graph) map[string]any {
	return map[string]any{
		"player":        encodePlayer(g.Player),
		"world":         encodeWorld(g.World),
		"relationships": encodeRelationships(g.Relationships),
		"inventory":     encodeInventory(g.Inventory),
		"quests":        encodeQuests(g.Quests),
		"flags":         orEmptyBools(g.Flags),
		"reputation":    orEmptyInts(g.Reputation),
		"turn_count":    g.TurnCount,
	}
}

func encodePlayer(p state.Player) map[string]any {
	return map[string]any{
		"name":           p.Name,
		"class":          p.Class,
		"level":          p.Level,
		"xp":             p.XP,
		"xp_to_next":     p.XPToNext,
		"health":         p.Health,
		"max_health":     p.MaxHealth,
		"mana":           p.Mana,
		"max_mana":       p.MaxMana,
		"gold":           p.Gold,
		"strength":       p.Strength,
		"defense":        p.Defense,
		"intelligence":   p.Intelligence,
		"skills":         orEmptyStrings(p.Skills),
		"status_effects": orEmptyStrings(p.StatusEffects),
		"difficulty":     p.Difficulty,
	}
}

func encodeWorld(w state.World) map[string]any {
	locations := make(map[string]any, len(w.Locations))
	for id, loc := range w.Locations {
		locations[id] = map[string]any{
			"name":   loc.Name,
			"region": loc.Region,
			"exits":  orEmptyStringMap(loc.Exits),
		}
	}
	return map[string]any{
		"current_location":     w.CurrentLocation,
		"discovered_locations": orEmptyStrings(w.DiscoveredLocations),
		"location_history":     orEmptyStrings(w.LocationHistory),
		"locations":            locations,
	}
}

func encodeRelationships(rels map[string]state.Relationship) map[string]any {
	out := make(map[string]any, len(rels))
	for id, rel := range rels {
		out[id] = map[string]any{
			"affinity": rel.Affinity,
			"stage":    rel.Stage,
			"met":      rel.Met,
			"flags":    orEmptyStrings(rel.Flags),
		}
	}
	return out
}

func encodeInventory(inv state.Inventory) map[string]any {
	items := make([]any, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = map[string]any{
			"id":    item.ID,
			"count": item.Count,
		}
	}
	return map[string]any{
		"items":     items,
		"equipment": orEmptyStringMap(inv.Equipment),
		"max_slots": inv.MaxSlots,
	}
}

func encodeQuests(q state.QuestLog) map[string]any {
	active := make([]any, len(q.Active))
	for i, quest := range q.Active {
		objectives := make([]any, len(quest.Objectives))
		for j, obj := range quest.Objectives {
			objectives[j] = map[string]any{
				"id":       obj.ID,
				"progress": obj.Progress,
				"required": obj.Required,
			}
		}
		active[i] = map[string]any{
			"id":         quest.ID,
			"status":     quest.Status,
			"objectives": objectives,
		}
	}
	return map[string]any{
		"active":          active,
		"completed":       orEmptyStrings(q.Completed),
		"failed":          orEmptyStrings(q.Failed),
		"available":       orEmptyStrings(q.Available),
		"daily_completed": q.DailyCompleted,
	}
}

func orEmptyStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func orEmptyBools(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}

func orEmptyInts(m map[string]int64) map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return m
}

// Typed document mirror for decoding. Fields are tagged with the document
// key names; decodeV2 rejects unknown fields, so this struct is the
// authoritative inventory of schema version 2.
type docV2 struct {
	Player        playerDoc              `json:"player"`
	World         worldDoc               `json:"world"`
	Relationships map[string]relationDoc `json:"relationships"`
	Inventory     inventoryDoc           `json:"inventory"`
	Quests        questsDoc              `json:"quests"`
	Flags         map[string]bool        `json:"flags"`
	Reputation    map[string]int64       `json:"reputation"`
	TurnCount     int64                  `json:"turn_count"`
}

type playerDoc struct {
	Name          string   `json:"name"`
	Class         string   `json:"class"`
	Level         int64    `json:"level"`
	XP            int64    `json:"xp"`
	XPToNext      int64    `json:"xp_to_next"`
	Health        int64    `json:"health"`
	MaxHealth     int64    `json:"max_health"`
	Mana          int64    `json:"mana"`
	MaxMana       int64    `json:"max_mana"`
	Gold          int64    `json:"gold"`
	Strength      int64    `json:"strength"`
	Defense       int64    `json:"defense"`
	Intelligence  int64    `json:"intelligence"`
	Skills        []string `json:"skills"`
	StatusEffects []string `json:"status_effects"`
	Difficulty    string   `json:"difficulty"`
}

type worldDoc struct {
	CurrentLocation     string                 `json:"current_location"`
	DiscoveredLocations []string               `json:"discovered_locations"`
	LocationHistory     []string               `json:"location_history"`
	Locations           map[string]locationDoc `json:"locations"`
}

type locationDoc struct {
	Name   string            `json:"name"`
	Region string            `json:"region"`
	Exits  map[string]string `json:"exits"`
}

type relationDoc struct {
	Affinity int64    `json:"affinity"`
	Stage    string   `json:"stage"`
	Met      bool     `json:"met"`
	Flags    []string `json:"flags"`
}

type inventoryDoc struct {
	Items     []itemDoc         `json:"items"`
	Equipment map[string]string `json:"equipment"`
	MaxSlots  int64             `json:"max_slots"`
}

type itemDoc struct {
	ID    string `json:"id"`
	Count int64  `json:"count"`
}

type questsDoc struct {
	Active         []questDoc `json:"active"`
	Completed      []string   `json:"completed"`
	Failed         []string   `json:"failed"`
	Available      []string   `json:"available"`
	DailyCompleted int64      `json:"daily_completed"`
}

type questDoc struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	Objectives []objectiveDoc `json:"objectives"`
}

type objectiveDoc struct {
	ID       string `json:"id"`
	Progress int64  `json:"progress"`
	Required int64  `json:"required"`
}

func (d *docV2) toGraph() *state.Graph {
	g := &state.Graph{
		Player: state.Player{
			Name:          d.Player.Name,
			Class:         d.Player.Class,
			Level:         d.Player.Level,
			XP:            d.Player.XP,
			XPToNext:      d.Player.XPToNext,
			Health:        d.Player.Health,
			MaxHealth:     d.Player.MaxHealth,
			Mana:          d.Player.Mana,
			MaxMana:       d.Player.MaxMana,
			Gold:          d.Player.Gold,
			Strength:      d.Player.Strength,
			Defense:       d.Player.Defense,
			Intelligence:  d.Player.Intelligence,
			Skills:        d.Player.Skills,
			StatusEffects: d.Player.StatusEffects,
			Difficulty:    d.Player.Difficulty,
		},
		World: state.World{
			CurrentLocation:     d.World.CurrentLocation,
			DiscoveredLocations: d.World.DiscoveredLocations,
			LocationHistory:     d.World.LocationHistory,
		},
		Flags:      d.Flags,
		Reputation: d.Reputation,
		TurnCount:  d.TurnCount,
	}

	g.World.Locations = make(map[string]state.Location, len(d.World.Locations))
	for id, loc := range d.World.Locations {
		g.World.Locations[id] = state.Location{Name: loc.Name, Region: loc.Region, Exits: loc.Exits}
	}

	g.Relationships = make(map[string]state.Relationship, len(d.Relationships))
	for id, rel := range d.Relationships {
		g.Relationships[id] = state.Relationship{
			Affinity: rel.Affinity,
			Stage:    rel.Stage,
			Met:      rel.Met,
			Flags:    rel.Flags,
		}
	}

	g.Inventory = state.Inventory{
		Equipment: d.Inventory.Equipment,
		MaxSlots:  d.Inventory.MaxSlots,
	}
	g.Inventory.Items = make([]state.ItemStack, len(d.Inventory.Items))
	for i, item := range d.Inventory.Items {
		g.Inventory.Items[i] = state.ItemStack{ID: item.ID, Count: item.Count}
	}

	g.Quests = state.QuestLog{
		Completed:      d.Quests.Completed,
		Failed:         d.Quests.Failed,
		Available:      d.Quests.Available,
		DailyCompleted: d.Quests.DailyCompleted,
	}
	g.Quests.Active = make([]state.Quest, len(d.Quests.Active))
	for i, quest := range d.Quests.Active {
		q := state.Quest{ID: quest.ID, Status: quest.Status}
		q.Objectives = make([]state.Objective, len(quest.Objectives))
		for j, obj := range quest.Objectives {
			q.Objectives[j] = state.Objective{ID: obj.ID, Progress: obj.Progress, Required: obj.Required}
		}
		g.Quests.Active[i] = q
	}

	return g
}
