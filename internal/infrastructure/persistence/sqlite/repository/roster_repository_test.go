package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"evewatch/internal/infrastructure/persistence/sqlite/model"
	"evewatch/internal/ports"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "checks.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.AccountGroup{},
		&model.Character{},
		&model.CheckRun{},
		&model.CharacterCheck{},
		&model.CharacterStatsLatest{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func TestUpsertGroupIdempotent(t *testing.T) {
	repo := NewRosterRepository(setupDB(t))
	ctx := context.Background()

	if err := repo.UpsertGroup(ctx, "Wormhole Corp", "2026-01-01T00:00:00Z"); err != nil {
		t.Fatalf("upsert group: %v", err)
	}
	first, err := repo.GetGroupByName(ctx, "Wormhole Corp")
	if err != nil {
		t.Fatalf("get group: %v", err)
	}

	if err := repo.UpsertGroup(ctx, "Wormhole Corp", "2026-01-02T00:00:00Z"); err != nil {
		t.Fatalf("upsert group again: %v", err)
	}

	groups, err := repo.ListGroups(ctx)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("ListGroups() len = %d", len(groups))
	}
	if groups[0].GroupID != first.GroupID {
		t.Fatalf("group id changed: %d != %d", groups[0].GroupID, first.GroupID)
	}
	if groups[0].UpdatedAt != "2026-01-02T00:00:00Z" {
		t.Fatalf("updated_at not refreshed: %q", groups[0].UpdatedAt)
	}
}

func TestUpsertCharacterKeyedByExternalID(t *testing.T) {
	repo := NewRosterRepository(setupDB(t))
	ctx := context.Background()

	if err := repo.UpsertGroup(ctx, "Wormhole Corp", nowStamp()); err != nil {
		t.Fatalf("upsert group: %v", err)
	}
	group, err := repo.GetGroupByName(ctx, "Wormhole Corp")
	if err != nil {
		t.Fatalf("get group: %v", err)
	}

	groupID := group.GroupID
	if err := repo.UpsertCharacter(ctx, ports.Character{
		CharacterID:    1001,
		Name:           "Alice",
		AccountGroupID: &groupID,
		UpdatedAt:      nowStamp(),
	}); err != nil {
		t.Fatalf("upsert character: %v", err)
	}

	// Same external id, renamed: still one row.
	if err := repo.UpsertCharacter(ctx, ports.Character{
		CharacterID:    1001,
		Name:           "Alice Renamed",
		AccountGroupID: &groupID,
		UpdatedAt:      nowStamp(),
	}); err != nil {
		t.Fatalf("upsert character again: %v", err)
	}

	characters, err := repo.ListCharacters(ctx)
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(characters) != 1 {
		t.Fatalf("ListCharacters() len = %d", len(characters))
	}
	if characters[0].Name != "Alice Renamed" {
		t.Fatalf("name = %q", characters[0].Name)
	}
	if characters[0].AccountGroupID == nil || *characters[0].AccountGroupID != groupID {
		t.Fatalf("account_group_id = %v", characters[0].AccountGroupID)
	}

	inGroup, err := repo.ListCharactersInGroup(ctx, groupID)
	if err != nil {
		t.Fatalf("list characters in group: %v", err)
	}
	if len(inGroup) != 1 || inGroup[0].CharacterID != 1001 {
		t.Fatalf("ListCharactersInGroup() = %+v", inGroup)
	}
}

func TestGetCharacterByNameNotFound(t *testing.T) {
	repo := NewRosterRepository(setupDB(t))

	_, err := repo.GetCharacterByName(context.Background(), "Nobody")
	if !errors.Is(err, ports.ErrCharacterNotFound) {
		t.Fatalf("GetCharacterByName() error = %v, want ErrCharacterNotFound", err)
	}
}

func TestGetGroupByNameNotFound(t *testing.T) {
	repo := NewRosterRepository(setupDB(t))

	_, err := repo.GetGroupByName(context.Background(), "No Group")
	if !errors.Is(err, ports.ErrGroupNotFound) {
		t.Fatalf("GetGroupByName() error = %v, want ErrGroupNotFound", err)
	}
}
