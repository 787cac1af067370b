package ports

import (
	"context"
	"errors"
)

var (
	ErrRunNotFound   = errors.New("check run not found")
	ErrCheckNotFound = errors.New("character check not found")
	ErrStatsNotFound = errors.New("character stats not found")
)

type CheckRun struct {
	RunID      uint64
	CheckType  string
	StartedAt  string
	FinishedAt string
	OK         bool
	MetaJSON   string
}

type CheckRunCreate struct {
	CheckType  string
	StartedAt  string
	FinishedAt string
	OK         bool
	MetaJSON   string
}

type CharacterCheck struct {
	CheckID     uint64
	RunID       uint64
	CharacterID *int64
	Status      string
	CheckedAt   string
	DetailsJSON string
}

type CharacterCheckCreate struct {
	CharacterID *int64
	Status      string
	CheckedAt   string
	DetailsJSON string
}

type CharacterStats struct {
	CharacterID int64
	TotalSP     int64
	WalletISK   float64
	UpdatedAt   string
}

// CheckRepository is append-only: runs and checks are inserted, never
// updated or deleted. Reads serve the dashboard contract.
type CheckRepository interface {
	CreateRun(ctx context.Context, run CheckRunCreate) (CheckRun, error)
	AppendChecks(ctx context.Context, runID uint64, checks []CharacterCheckCreate) error
	GetRun(ctx context.Context, runID uint64) (CheckRun, error)
	ListRecentRuns(ctx context.Context, limit int) ([]CheckRun, error)
	ListChecksForRun(ctx context.Context, runID uint64) ([]CharacterCheck, error)
	LatestCheckForCharacter(ctx context.Context, characterID int64) (CharacterCheck, error)
	LatestCheckForCharacterByType(ctx context.Context, characterID int64, checkType string) (CharacterCheck, error)
	CountIssuesInRuns(ctx context.Context, runIDs []uint64) (int64, error)
	CountRuns(ctx context.Context) (int64, error)
	GetStatsLatest(ctx context.Context, characterID int64) (CharacterStats, error)
}
