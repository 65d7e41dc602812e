package snapshot

import (
	"github.com/emberkeep/emberkeep/internal/state"
)

// Schema version 1 predates relationship records and counted objectives:
// relationships were bare affinity integers and objectives carried a done
// flag. decodeV1 upgrades both on the way in - the stage is derived from
// the affinity thresholds, and a done flag becomes a 1-of-1 counter.

type docV1 struct {
	Player        playerDoc        `json:"player"`
	World         worldDoc         `json:"world"`
	Relationships map[string]int64 `json:"relationships"`
	Inventory     inventoryDoc     `json:"inventory"`
	Quests        questsDocV1      `json:"quests"`
	Flags         map[string]bool  `json:"flags"`
	Reputation    map[string]int64 `json:"reputation"`
	TurnCount     int64            `json:"turn_count"`
}

type questsDocV1 struct {
	Active         []questDocV1 `json:"active"`
	Completed      []string     `json:"completed"`
	Failed         []string     `json:"failed"`
	Available      []string     `json:"available"`
	DailyCompleted int64        `json:"daily_completed"`
}

type questDocV1 struct {
	ID         string           `json:"id"`
	Status     string           `json:"status"`
	Objectives []objectiveDocV1 `json:"objectives"`
}

type objectiveDocV1 struct {
	ID   string `json:"id"`
	Done bool   `json:"done"`
}

func decodeV1(body []byte) (*state.Graph, error) {
	var doc docV1
	if err := strictUnmarshal(body, &doc); err != nil {
		return nil, classifyBodyError(err)
	}

	upgraded := docV2{
		Player:     doc.Player,
		World:      doc.World,
		Inventory:  doc.Inventory,
		Flags:      doc.Flags,
		Reputation: doc.Reputation,
		TurnCount:  doc.TurnCount,
	}

	upgraded.Relationships = make(map[string]relationDoc, len(doc.Relationships))
	for id, affinity := range doc.Relationships {
		upgraded.Relationships[id] = relationDoc{
			Affinity: affinity,
			Stage:    state.StageForAffinity(affinity),
			Met:      true,
			Flags:    []string{},
		}
	}

	upgraded.Quests = questsDoc{
		Completed:      doc.Quests.Completed,
		Failed:         doc.Quests.Failed,
		Available:      doc.Quests.Available,
		DailyCompleted: doc.Quests.DailyCompleted,
	}
	upgraded.Quests.Active = make([]questDoc, len(doc.Quests.Active))
	for i, quest := range doc.Quests.Active {
		q := questDoc{ID: quest.ID, Status: quest.Status}
		q.Objectives = make([]objectiveDoc, len(quest.Objectives))
		for j, obj := range quest.Objectives {
			progress := int64(0)
			if obj.Done {
				progress = 1
			}
			q.Objectives[j] = objectiveDoc{ID: obj.ID, Progress: progress, Required: 1}
		}
		upgraded.Quests.Active[i] = q
	}

	return upgraded.toGraph(), nil
}
