package dashboard

import (
	"context"
	"encoding/json"
	"errors"

	"evewatch/internal/domain/watch"
	"evewatch/internal/errs"
	"evewatch/internal/ports"
)

// DefaultRunLookback bounds every dashboard view to the most recent runs
// instead of scanning full history.
const DefaultRunLookback = 50

var (
	ErrGroupNotFound     = ports.ErrGroupNotFound
	ErrCharacterNotFound = ports.ErrCharacterNotFound
)

// CredentialStatus is surfaced by the health view so a reader can tell
// "pipeline never ran" apart from "storage misconfigured".
type CredentialStatus struct {
	HasDatabaseDSN bool
	HasServiceKey  bool
}

// Service answers the read-only dashboard queries. Pure reads over the
// tables the recorder writes; no derived-state caching.
type Service struct {
	roster      ports.RosterRepository
	checks      ports.CheckRepository
	credentials CredentialStatus
}

func NewService(roster ports.RosterRepository, checks ports.CheckRepository, credentials CredentialStatus) *Service {
	return &Service{
		roster:      roster,
		checks:      checks,
		credentials: credentials,
	}
}

type RunInfo struct {
	RunID      uint64          `json:"run_id"`
	CheckType  string          `json:"check_type"`
	StartedAt  string          `json:"started_at"`
	FinishedAt string          `json:"finished_at"`
	OK         bool            `json:"ok"`
	Meta       json.RawMessage `json:"meta,omitempty"`
}

type Overview struct {
	LatestRuns []RunInfo `json:"latest_runs"`
	Issues     int64     `json:"issues"`
	Lookback   int       `json:"lookback"`
}

// Overview returns the latest run per check type within the recent-run
// window, plus the fail/warn row count over that same window.
func (s *Service) Overview(ctx context.Context, lookback int) (Overview, error) {
	if ctx == nil {
		return Overview{}, errors.New("context is required")
	}
	if lookback <= 0 {
		lookback = DefaultRunLookback
	}

	runs, err := s.checks.ListRecentRuns(ctx, lookback)
	if err != nil {
		return Overview{}, err
	}

	runIDs := make([]uint64, 0, len(runs))
	seen := make(map[string]bool, len(watch.CheckTypes))
	latest := make([]RunInfo, 0, len(watch.CheckTypes))
	for _, run := range runs {
		runIDs = append(runIDs, run.RunID)
		if seen[run.CheckType] {
			continue
		}
		seen[run.CheckType] = true
		latest = append(latest, mapRunInfo(run))
	}

	issues, err := s.checks.CountIssuesInRuns(ctx, runIDs)
	if err != nil {
		return Overview{}, err
	}

	return Overview{
		LatestRuns: latest,
		Issues:     issues,
		Lookback:   lookback,
	}, nil
}

type GroupSummary struct {
	Name       string `json:"name"`
	Characters int    `json:"characters"`
}

func (s *Service) ListGroups(ctx context.Context) ([]GroupSummary, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	groups, err := s.roster.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]GroupSummary, 0, len(groups))
	for _, group := range groups {
		characters, err := s.roster.ListCharactersInGroup(ctx, group.GroupID)
		if err != nil {
			return nil, err
		}
		items = append(items, GroupSummary{
			Name:       group.Name,
			Characters: len(characters),
		})
	}
	return items, nil
}

type CheckInfo struct {
	Status    string          `json:"status"`
	CheckedAt string          `json:"checked_at"`
	Details   json.RawMessage `json:"details,omitempty"`
}

type GroupCharacter struct {
	CharacterID int64      `json:"character_id"`
	Name        string     `json:"name"`
	Latest      *CheckInfo `json:"latest,omitempty"`
}

type GroupDetail struct {
	Name       string           `json:"name"`
	Characters []GroupCharacter `json:"characters"`
}

// GroupDetail lists a group's characters with each one's most recent check
// of any type.
func (s *Service) GroupDetail(ctx context.Context, name string) (GroupDetail, error) {
	if ctx == nil {
		return GroupDetail{}, errors.New("context is required")
	}

	group, err := s.roster.GetGroupByName(ctx, name)
	if err != nil {
		return GroupDetail{}, err
	}

	characters, err := s.roster.ListCharactersInGroup(ctx, group.GroupID)
	if err != nil {
		return GroupDetail{}, err
	}

	detail := GroupDetail{
		Name:       group.Name,
		Characters: make([]GroupCharacter, 0, len(characters)),
	}
	for _, character := range characters {
		item := GroupCharacter{
			CharacterID: character.CharacterID,
			Name:        character.Name,
		}

		latest, err := s.checks.LatestCheckForCharacter(ctx, character.CharacterID)
		switch {
		case err == nil:
			item.Latest = mapCheckInfo(latest)
		case errors.Is(err, ports.ErrCheckNotFound):
			// No check recorded yet for this character.
		default:
			return GroupDetail{}, err
		}

		detail.Characters = append(detail.Characters, item)
	}
	return detail, nil
}

type CharacterDetail struct {
	CharacterID int64                 `json:"character_id"`
	Name        string                `json:"name"`
	Group       string                `json:"group,omitempty"`
	Checks      map[string]*CheckInfo `json:"checks"`
	Stats       *StatsInfo            `json:"stats,omitempty"`
}

type StatsInfo struct {
	TotalSP   int64   `json:"total_sp"`
	WalletISK float64 `json:"wallet_isk"`
	UpdatedAt string  `json:"updated_at"`
}

// CharacterDetail returns the latest pi/skillq/industry checks for one
// character plus its stats row, when the stats collector has produced one.
func (s *Service) CharacterDetail(ctx context.Context, name string) (CharacterDetail, error) {
	if ctx == nil {
		return CharacterDetail{}, errors.New("context is required")
	}

	character, err := s.roster.GetCharacterByName(ctx, name)
	if err != nil {
		return CharacterDetail{}, err
	}

	detail := CharacterDetail{
		CharacterID: character.CharacterID,
		Name:        character.Name,
		Checks:      make(map[string]*CheckInfo, 3),
	}

	if character.AccountGroupID != nil {
		groups, err := s.roster.ListGroups(ctx)
		if err != nil {
			return CharacterDetail{}, err
		}
		for _, group := range groups {
			if group.GroupID == *character.AccountGroupID {
				detail.Group = group.Name
				break
			}
		}
	}

	for _, checkType := range []watch.CheckType{watch.CheckPI, watch.CheckSkillQueue, watch.CheckIndustry} {
		latest, err := s.checks.LatestCheckForCharacterByType(ctx, character.CharacterID, string(checkType))
		switch {
		case err == nil:
			detail.Checks[string(checkType)] = mapCheckInfo(latest)
		case errors.Is(err, ports.ErrCheckNotFound):
			detail.Checks[string(checkType)] = nil
		default:
			return CharacterDetail{}, err
		}
	}

	stats, err := s.checks.GetStatsLatest(ctx, character.CharacterID)
	switch {
	case err == nil:
		detail.Stats = &StatsInfo{
			TotalSP:   stats.TotalSP,
			WalletISK: stats.WalletISK,
			UpdatedAt: stats.UpdatedAt,
		}
	case errors.Is(err, ports.ErrStatsNotFound):
		// Stats collector has not run for this character.
	default:
		return CharacterDetail{}, err
	}

	return detail, nil
}

type HealthReport struct {
	OK             bool   `json:"ok"`
	CheckRunCount  int64  `json:"check_run_count"`
	Error          string `json:"error,omitempty"`
	HasDatabaseDSN *bool  `json:"has_database_dsn,omitempty"`
	HasServiceKey  *bool  `json:"has_service_key,omitempty"`
}

// Health reports storage reachability. On failure it also reports which
// credentials are present, without revealing their values.
func (s *Service) Health(ctx context.Context) HealthReport {
	if ctx == nil {
		return HealthReport{OK: false, Error: "context is required"}
	}

	count, err := s.checks.CountRuns(ctx)
	if err != nil {
		hasDSN := s.credentials.HasDatabaseDSN
		hasKey := s.credentials.HasServiceKey
		return HealthReport{
			OK:             false,
			Error:          errs.Wrap(err, "count check runs").Error(),
			HasDatabaseDSN: &hasDSN,
			HasServiceKey:  &hasKey,
		}
	}

	return HealthReport{OK: true, CheckRunCount: count}
}

func mapRunInfo(run ports.CheckRun) RunInfo {
	info := RunInfo{
		RunID:      run.RunID,
		CheckType:  run.CheckType,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		OK:         run.OK,
	}
	if run.MetaJSON != "" {
		info.Meta = json.RawMessage(run.MetaJSON)
	}
	return info
}

func mapCheckInfo(check ports.CharacterCheck) *CheckInfo {
	info := &CheckInfo{
		Status:    check.Status,
		CheckedAt: check.CheckedAt,
	}
	if check.DetailsJSON != "" {
		info.Details = json.RawMessage(check.DetailsJSON)
	}
	return info
}
