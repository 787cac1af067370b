package watch

import "encoding/json"

// AlertIndex maps a character id to the ordered alerts naming it. It is
// rebuilt from scratch for every watcher invocation and never persisted.
type AlertIndex map[int64][]json.RawMessage

// IndexAlerts builds the per-character lookup. Alerts without a resolvable
// character id are dropped from the index; global reporting (contract scans)
// does not go through here.
func IndexAlerts(alerts []json.RawMessage) AlertIndex {
	index := make(AlertIndex, len(alerts))
	for _, alert := range alerts {
		id, ok := alertCharacterID(alert)
		if !ok {
			continue
		}
		index[id] = append(index[id], alert)
	}
	return index
}

// For returns the alerts for one character, never nil so that details
// serialize with an explicit empty alerts array.
func (idx AlertIndex) For(characterID int64) []json.RawMessage {
	if alerts, ok := idx[characterID]; ok {
		return alerts
	}
	return []json.RawMessage{}
}

// alertCharacterID is the single place the nested character.id field is
// extracted from a raw alert.
func alertCharacterID(alert json.RawMessage) (int64, bool) {
	var probe struct {
		Character *CharacterRef `json:"character"`
	}
	if err := json.Unmarshal(alert, &probe); err != nil {
		return 0, false
	}
	if probe.Character == nil || probe.Character.ID <= 0 {
		return 0, false
	}
	return probe.Character.ID, true
}
