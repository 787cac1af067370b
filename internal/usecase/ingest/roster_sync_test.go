package ingest

import (
	"context"
	"testing"

	"evewatch/internal/domain/watch"
)

func TestSyncRosterLinksCharactersToGroups(t *testing.T) {
	env := newTestEnv(t, testCatalog, &stubInvoker{})
	ctx := context.Background()

	mapping := watch.GroupMapping{
		"Wormhole Corp": {
			{ID: 1001, Name: "Alice"},
			{ID: 1002, Name: "Bob"},
		},
		"Hisec Alts": {
			{ID: 2001, Name: "Carol"},
		},
	}

	groups, characters, err := env.service.SyncRoster(ctx, mapping)
	if err != nil {
		t.Fatalf("SyncRoster() error = %v", err)
	}
	if groups != 2 || characters != 3 {
		t.Fatalf("SyncRoster() = %d groups, %d characters", groups, characters)
	}

	corp, err := env.roster.GetGroupByName(ctx, "Wormhole Corp")
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	members, err := env.roster.ListCharactersInGroup(ctx, corp.GroupID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %+v", members)
	}

	alice, err := env.roster.GetCharacterByName(ctx, "Alice")
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if alice.CharacterID != 1001 {
		t.Fatalf("alice id = %d", alice.CharacterID)
	}
	if alice.AccountGroupID == nil || *alice.AccountGroupID != corp.GroupID {
		t.Fatalf("alice group = %v", alice.AccountGroupID)
	}
}

func TestSyncRosterMovesCharacterBetweenGroups(t *testing.T) {
	env := newTestEnv(t, testCatalog, &stubInvoker{})
	ctx := context.Background()

	if _, _, err := env.service.SyncRoster(ctx, watch.GroupMapping{
		"Wormhole Corp": {{ID: 1001, Name: "Alice"}},
	}); err != nil {
		t.Fatalf("first SyncRoster() error = %v", err)
	}
	if _, _, err := env.service.SyncRoster(ctx, watch.GroupMapping{
		"Wormhole Corp": {},
		"Hisec Alts":    {{ID: 1001, Name: "Alice"}},
	}); err != nil {
		t.Fatalf("second SyncRoster() error = %v", err)
	}

	alts, err := env.roster.GetGroupByName(ctx, "Hisec Alts")
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	alice, err := env.roster.GetCharacterByName(ctx, "Alice")
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if alice.AccountGroupID == nil || *alice.AccountGroupID != alts.GroupID {
		t.Fatalf("alice group = %v, want %d", alice.AccountGroupID, alts.GroupID)
	}

	characters, err := env.roster.ListCharacters(ctx)
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(characters) != 1 {
		t.Fatalf("characters = %+v", characters)
	}
}
