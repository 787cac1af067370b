package watch

import (
	"encoding/json"
	"testing"
)

func rawAlerts(values ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		out = append(out, json.RawMessage(v))
	}
	return out
}

func TestIndexAlertsGroupsByCharacter(t *testing.T) {
	index := IndexAlerts(rawAlerts(
		`{"character":{"id":1001,"name":"Alice"},"kind":"extractor_expired"}`,
		`{"character":{"id":1001},"kind":"storage_full"}`,
		`{"character":{"id":1002},"kind":"launchpad_full"}`,
	))

	if len(index) != 2 {
		t.Fatalf("IndexAlerts() len = %d", len(index))
	}
	if got := index.For(1001); len(got) != 2 {
		t.Fatalf("For(1001) len = %d", len(got))
	}
	if got := index.For(1002); len(got) != 1 {
		t.Fatalf("For(1002) len = %d", len(got))
	}
}

func TestIndexAlertsDropsUnresolvableIDs(t *testing.T) {
	index := IndexAlerts(rawAlerts(
		`{"kind":"orphan"}`,
		`{"character":{}}`,
		`{"character":{"id":0}}`,
		`{"character":{"id":-5}}`,
		`not even json`,
	))

	if len(index) != 0 {
		t.Fatalf("IndexAlerts() len = %d, want 0", len(index))
	}
}

func TestForReturnsEmptyNotNil(t *testing.T) {
	index := IndexAlerts(nil)

	got := index.For(42)
	if got == nil {
		t.Fatalf("For() returned nil")
	}
	if len(got) != 0 {
		t.Fatalf("For() len = %d", len(got))
	}

	encoded, err := json.Marshal(map[string]any{"alerts": got})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `{"alerts":[]}` {
		t.Fatalf("marshal = %s", encoded)
	}
}

func TestIndexAlertsPreservesOrder(t *testing.T) {
	index := IndexAlerts(rawAlerts(
		`{"character":{"id":7},"seq":1}`,
		`{"character":{"id":7},"seq":2}`,
		`{"character":{"id":7},"seq":3}`,
	))

	alerts := index.For(7)
	if len(alerts) != 3 {
		t.Fatalf("For(7) len = %d", len(alerts))
	}
	for i, alert := range alerts {
		var probe struct {
			Seq int `json:"seq"`
		}
		if err := json.Unmarshal(alert, &probe); err != nil {
			t.Fatalf("unmarshal alert %d: %v", i, err)
		}
		if probe.Seq != i+1 {
			t.Fatalf("alert %d seq = %d", i, probe.Seq)
		}
	}
}
