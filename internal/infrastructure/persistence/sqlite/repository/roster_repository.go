package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"evewatch/internal/errs"
	"evewatch/internal/infrastructure/persistence/sqlite/model"
	"evewatch/internal/ports"
)

type RosterRepository struct {
	db *gorm.DB
}

func NewRosterRepository(db *gorm.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// UpsertGroup inserts the group or, when the name already exists, refreshes
// updated_at only. The generated group_id is stable across re-runs.
func (r *RosterRepository) UpsertGroup(ctx context.Context, name string, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.AccountGroup{
		Name:      name,
		UpdatedAt: updatedAt,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{"updated_at": updatedAt}),
	}).Create(&row).Error; err != nil {
		return errs.Wrapf(err, "upsert account group %q", name)
	}
	return nil
}

func (r *RosterRepository) ListGroups(ctx context.Context) ([]ports.AccountGroup, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.AccountGroup
	if err := db.Order("name asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query account groups")
	}

	items := make([]ports.AccountGroup, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapGroup(row))
	}
	return items, nil
}

func (r *RosterRepository) GetGroupByName(ctx context.Context, name string) (ports.AccountGroup, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.AccountGroup{}, err
	}

	var row model.AccountGroup
	if err := db.Where("name = ?", name).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.AccountGroup{}, ports.ErrGroupNotFound
		}
		return ports.AccountGroup{}, errs.Wrap(err, "query account group")
	}
	return mapGroup(row), nil
}

// UpsertCharacter is keyed by the externally assigned character id.
func (r *RosterRepository) UpsertCharacter(ctx context.Context, character ports.Character) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Character{
		CharacterID:    character.CharacterID,
		Name:           character.Name,
		AccountGroupID: character.AccountGroupID,
		UpdatedAt:      character.UpdatedAt,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "character_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":             character.Name,
			"account_group_id": character.AccountGroupID,
			"updated_at":       character.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrapf(err, "upsert character %d", character.CharacterID)
	}
	return nil
}

func (r *RosterRepository) ListCharacters(ctx context.Context) ([]ports.Character, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Character
	if err := db.Order("character_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query characters")
	}

	items := make([]ports.Character, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapCharacter(row))
	}
	return items, nil
}

func (r *RosterRepository) ListCharactersInGroup(ctx context.Context, groupID uint64) ([]ports.Character, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Character
	if err := db.Where("account_group_id = ?", groupID).Order("name asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query characters in group")
	}

	items := make([]ports.Character, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapCharacter(row))
	}
	return items, nil
}

func (r *RosterRepository) GetCharacterByName(ctx context.Context, name string) (ports.Character, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Character{}, err
	}

	var row model.Character
	if err := db.Where("name = ?", name).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Character{}, ports.ErrCharacterNotFound
		}
		return ports.Character{}, errs.Wrap(err, "query character")
	}
	return mapCharacter(row), nil
}

func mapGroup(row model.AccountGroup) ports.AccountGroup {
	return ports.AccountGroup{
		GroupID:   row.GroupID,
		Name:      row.Name,
		UpdatedAt: row.UpdatedAt,
	}
}

func mapCharacter(row model.Character) ports.Character {
	return ports.Character{
		CharacterID:    row.CharacterID,
		Name:           row.Name,
		AccountGroupID: row.AccountGroupID,
		UpdatedAt:      row.UpdatedAt,
	}
}
