// Package testutil provides shared test infrastructure: a controllable
// clock, artifact corruption helpers, and a populated game state.
package testutil

import "github.com/emberkeep/emberkeep/internal/state"

// GameState returns a populated mid-game state graph.
//
// The fixture is a fresh value on every call, so tests can mutate it
// freely. All set-like collections are non-nil, which keeps encode and
// decode results comparable with deep equality.
func GameState() *state.Graph {
	return &state.Graph{
		Player: state.Player{
			Name:          "Rook",
			Class:         "Rogue",
			Level:         7,
			XP:            5430,
			XPToNext:      6200,
			Health:        74,
			MaxHealth:     90,
			Mana:          20,
			MaxMana:       30,
			Gold:          312,
			Strength:      11,
			Defense:       9,
			Intelligence:  13,
			Skills:        []string{"backstab", "lockpick", "shadowstep"},
			StatusEffects: []string{},
			Difficulty:    "hard",
		},
		World: state.World{
			CurrentLocation:     "thieves_den",
			DiscoveredLocations: []string{"docks", "market", "thieves_den"},
			LocationHistory:     []string{"docks", "market", "thieves_den"},
			Locations: map[string]state.Location{
				"docks": {
					Name:   "Harbor Docks",
					Region: "port",
					Exits:  map[string]string{"east": "market"},
				},
				"market": {
					Name:   "Night Market",
					Region: "port",
					Exits:  map[string]string{"west": "docks", "down": "thieves_den"},
				},
				"thieves_den": {
					Name:   "Thieves' Den",
					Region: "undercity",
					Exits:  map[string]string{"up": "market"},
				},
			},
		},
		Relationships: map[string]state.Relationship{
			"fence": {
				Affinity: 62,
				Stage:    state.StageTrusting,
				Met:      true,
				Flags:    []string{"knows_password"},
			},
			"guard_captain": {
				Affinity: -40,
				Stage:    state.StageHostile,
				Met:      true,
				Flags:    []string{},
			},
		},
		Inventory: state.Inventory{
			Items: []state.ItemStack{
				{ID: "dagger", Count: 1},
				{ID: "lockpick", Count: 12},
				{ID: "smoke_bomb", Count: 3},
			},
			Equipment: map[string]string{"weapon": "dagger"},
			MaxSlots:  24,
		},
		Quests: state.QuestLog{
			Active: []state.Quest{
				{
					ID:     "the_big_score",
					Status: "active",
					Objectives: []state.Objective{
						{ID: "case_the_vault", Progress: 1, Required: 1},
						{ID: "recruit_crew", Progress: 2, Required: 3},
					},
				},
			},
			Completed:      []string{"first_job"},
			Failed:         []string{},
			Available:      []string{"guild_dues"},
			DailyCompleted: 1,
		},
		Flags: map[string]bool{
			"met_fence":     true,
			"vault_spotted": true,
		},
		Reputation: map[string]int64{
			"city_watch":    -25,
			"thieves_guild": 40,
		},
		TurnCount: 482,
	}
}
