package watch

import (
	"encoding/json"
	"fmt"

	"evewatch/internal/errs"
)

// CharacterRef is how watcher payloads name a character.
type CharacterRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PIReport is the pi-check output: alerts scoped to characters, plus the
// rule set the watcher evaluated (kept opaque, stored in run meta).
type PIReport struct {
	FetchedAt string            `json:"fetched_at"`
	Rules     json.RawMessage   `json:"rules"`
	Alerts    []json.RawMessage `json:"alerts"`
}

type SkillQueueEntry struct {
	Character   CharacterRef `json:"character"`
	Status      string       `json:"status"`
	QueueLength int          `json:"queue_length"`
}

type SkillQueueReport struct {
	FetchedAt  string            `json:"fetched_at"`
	Characters []SkillQueueEntry `json:"characters"`
	Alerts     []json.RawMessage `json:"alerts"`
}

type IndustryEntry struct {
	Character       CharacterRef `json:"character"`
	ReadyTotal      int          `json:"ready_total"`
	NewlyReadyCount int          `json:"newly_ready_count"`
}

type IndustryReport struct {
	FetchedAt  string            `json:"fetched_at"`
	Characters []IndustryEntry   `json:"characters"`
	Alerts     []json.RawMessage `json:"alerts"`
}

// ContractReport has no per-character array; its alerts are global anomalies.
type ContractReport struct {
	Scanned int               `json:"scanned"`
	Alerts  []json.RawMessage `json:"alerts"`
}

func ParsePIReport(raw json.RawMessage) (PIReport, error) {
	var report PIReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return PIReport{}, errs.Wrap(err, "parse pi report")
	}
	return report, nil
}

func ParseSkillQueueReport(raw json.RawMessage) (SkillQueueReport, error) {
	var report SkillQueueReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return SkillQueueReport{}, errs.Wrap(err, "parse skillq report")
	}
	for i, entry := range report.Characters {
		if entry.Character.ID <= 0 {
			return SkillQueueReport{}, fmt.Errorf("skillq report: characters[%d].character.id is required", i)
		}
	}
	return report, nil
}

func ParseIndustryReport(raw json.RawMessage) (IndustryReport, error) {
	var report IndustryReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return IndustryReport{}, errs.Wrap(err, "parse industry report")
	}
	for i, entry := range report.Characters {
		if entry.Character.ID <= 0 {
			return IndustryReport{}, fmt.Errorf("industry report: characters[%d].character.id is required", i)
		}
	}
	return report, nil
}

func ParseContractReport(raw json.RawMessage) (ContractReport, error) {
	var report ContractReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return ContractReport{}, errs.Wrap(err, "parse contract report")
	}
	if report.Scanned < 0 {
		return ContractReport{}, fmt.Errorf("contract report: scanned must not be negative, got %d", report.Scanned)
	}
	return report, nil
}
