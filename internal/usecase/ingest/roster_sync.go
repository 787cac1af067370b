package ingest

import (
	"context"
	"log/slog"

	"evewatch/internal/bootstrap/logging"
	"evewatch/internal/domain/watch"
	"evewatch/internal/errs"
	"evewatch/internal/ports"
)

// SyncRoster reconciles the static mapping into account_group and character.
// Idempotent: re-running with an unchanged mapping converges to the same rows
// and ids. Groups and characters dropped from the mapping are left in place.
func (s *Service) SyncRoster(ctx context.Context, mapping watch.GroupMapping) (int, int, error) {
	now := s.timestamp()

	names := mapping.GroupNames()
	for _, name := range names {
		if err := s.roster.UpsertGroup(ctx, name, now); err != nil {
			return 0, 0, errs.Wrapf(err, "upsert group %q", name)
		}
	}

	// Re-read the groups rather than trusting upsert return values, so the
	// name to generated-id table is correct even under concurrent creation.
	groups, err := s.roster.ListGroups(ctx)
	if err != nil {
		return 0, 0, errs.Wrap(err, "list groups")
	}
	groupIDByName := make(map[string]uint64, len(groups))
	for _, group := range groups {
		groupIDByName[group.Name] = group.GroupID
	}

	characters := 0
	for _, name := range names {
		groupID, ok := groupIDByName[name]
		var groupRef *uint64
		if ok {
			id := groupID
			groupRef = &id
		}

		for _, character := range mapping[name] {
			if err := s.roster.UpsertCharacter(ctx, ports.Character{
				CharacterID:    character.ID,
				Name:           character.Name,
				AccountGroupID: groupRef,
				UpdatedAt:      now,
			}); err != nil {
				return 0, 0, errs.Wrapf(err, "upsert character %d", character.ID)
			}
			characters++
		}
	}

	logging.Info(ctx, "roster synced",
		slog.Int("groups", len(names)),
		slog.Int("characters", characters),
	)
	return len(names), characters, nil
}
