package ports

import (
	"context"
	"errors"
)

var (
	ErrGroupNotFound     = errors.New("account group not found")
	ErrCharacterNotFound = errors.New("character not found")
)

type AccountGroup struct {
	GroupID   uint64
	Name      string
	UpdatedAt string
}

type Character struct {
	CharacterID    int64
	Name           string
	AccountGroupID *uint64
	UpdatedAt      string
}

// RosterRepository maintains the character/group mapping tables. Upserts are
// keyed by natural key (group name, external character id) and never delete.
type RosterRepository interface {
	UpsertGroup(ctx context.Context, name string, updatedAt string) error
	ListGroups(ctx context.Context) ([]AccountGroup, error)
	GetGroupByName(ctx context.Context, name string) (AccountGroup, error)
	UpsertCharacter(ctx context.Context, character Character) error
	ListCharacters(ctx context.Context) ([]Character, error)
	ListCharactersInGroup(ctx context.Context, groupID uint64) ([]Character, error)
	GetCharacterByName(ctx context.Context, name string) (Character, error)
}
