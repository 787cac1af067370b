package ingest

import (
	"context"
	"encoding/json"

	"evewatch/internal/domain/watch"
	"evewatch/internal/errs"
	"evewatch/internal/ports"
)

// preparedRun is one watcher's payload reduced to the rows the recorder will
// commit. Preparation is pure apart from the roster read for pi checks.
type preparedRun struct {
	checkType watch.CheckType
	meta      map[string]any
	rows      []ports.CharacterCheckCreate
}

// preparePI covers every known character, not just those mentioned in
// alerts: a quiet character still gets an explicit pass row.
func (s *Service) preparePI(ctx context.Context, raw json.RawMessage, checkedAt string) (preparedRun, error) {
	report, err := watch.ParsePIReport(raw)
	if err != nil {
		return preparedRun{}, err
	}

	index := watch.IndexAlerts(report.Alerts)
	characters, err := s.roster.ListCharacters(ctx)
	if err != nil {
		return preparedRun{}, errs.Wrap(err, "list characters")
	}

	rows := make([]ports.CharacterCheckCreate, 0, len(characters))
	for _, character := range characters {
		alerts := index.For(character.CharacterID)
		details, err := encodeDetails(watch.CheckPI, map[string]any{"alerts": alerts})
		if err != nil {
			return preparedRun{}, err
		}

		id := character.CharacterID
		rows = append(rows, ports.CharacterCheckCreate{
			CharacterID: &id,
			Status:      string(watch.DerivePIStatus(len(alerts))),
			CheckedAt:   checkedAt,
			DetailsJSON: details,
		})
	}

	return preparedRun{
		checkType: watch.CheckPI,
		meta:      map[string]any{"fetched_at": report.FetchedAt, "rules": report.Rules},
		rows:      rows,
	}, nil
}

// prepareSkillQueue only covers characters the watcher reported on.
func (s *Service) prepareSkillQueue(_ context.Context, raw json.RawMessage, checkedAt string) (preparedRun, error) {
	report, err := watch.ParseSkillQueueReport(raw)
	if err != nil {
		return preparedRun{}, err
	}

	index := watch.IndexAlerts(report.Alerts)
	rows := make([]ports.CharacterCheckCreate, 0, len(report.Characters))
	for _, entry := range report.Characters {
		alerts := index.For(entry.Character.ID)
		details, err := encodeDetails(watch.CheckSkillQueue, map[string]any{
			"status":       entry.Status,
			"queue_length": entry.QueueLength,
			"alerts":       alerts,
		})
		if err != nil {
			return preparedRun{}, err
		}

		id := entry.Character.ID
		rows = append(rows, ports.CharacterCheckCreate{
			CharacterID: &id,
			Status:      string(watch.DeriveSkillQueueStatus(len(alerts), entry.Status)),
			CheckedAt:   checkedAt,
			DetailsJSON: details,
		})
	}

	return preparedRun{
		checkType: watch.CheckSkillQueue,
		meta:      map[string]any{"fetched_at": report.FetchedAt},
		rows:      rows,
	}, nil
}

func (s *Service) prepareIndustry(_ context.Context, raw json.RawMessage, checkedAt string) (preparedRun, error) {
	report, err := watch.ParseIndustryReport(raw)
	if err != nil {
		return preparedRun{}, err
	}

	index := watch.IndexAlerts(report.Alerts)
	rows := make([]ports.CharacterCheckCreate, 0, len(report.Characters))
	for _, entry := range report.Characters {
		alerts := index.For(entry.Character.ID)
		details, err := encodeDetails(watch.CheckIndustry, map[string]any{
			"ready_total":       entry.ReadyTotal,
			"newly_ready_count": entry.NewlyReadyCount,
			"alerts":            alerts,
		})
		if err != nil {
			return preparedRun{}, err
		}

		id := entry.Character.ID
		rows = append(rows, ports.CharacterCheckCreate{
			CharacterID: &id,
			Status:      string(watch.DeriveIndustryStatus(len(alerts))),
			CheckedAt:   checkedAt,
			DetailsJSON: details,
		})
	}

	return preparedRun{
		checkType: watch.CheckIndustry,
		meta:      map[string]any{"fetched_at": report.FetchedAt},
		rows:      rows,
	}, nil
}

// prepareContract produces one global row per anomaly, character_id null.
func (s *Service) prepareContract(_ context.Context, raw json.RawMessage, checkedAt string) (preparedRun, error) {
	report, err := watch.ParseContractReport(raw)
	if err != nil {
		return preparedRun{}, err
	}

	rows := make([]ports.CharacterCheckCreate, 0, len(report.Alerts))
	for _, alert := range report.Alerts {
		details, err := encodeDetails(watch.CheckContract, map[string]any{"alert": alert})
		if err != nil {
			return preparedRun{}, err
		}

		rows = append(rows, ports.CharacterCheckCreate{
			CharacterID: nil,
			Status:      string(watch.StatusFail),
			CheckedAt:   checkedAt,
			DetailsJSON: details,
		})
	}

	return preparedRun{
		checkType: watch.CheckContract,
		meta:      map[string]any{"scanned": report.Scanned},
		rows:      rows,
	}, nil
}

// commitRun writes the run row and all its check rows in one transaction so
// the dashboard never observes a half-populated run.
func (s *Service) commitRun(ctx context.Context, prepared preparedRun, startedAt string, finishedAt string) (ports.CheckRun, error) {
	metaJSON, err := json.Marshal(prepared.meta)
	if err != nil {
		return ports.CheckRun{}, errs.Wrap(err, "encode run meta")
	}

	var run ports.CheckRun
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		created, err := s.checks.CreateRun(txCtx, ports.CheckRunCreate{
			CheckType:  string(prepared.checkType),
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
			OK:         true,
			MetaJSON:   string(metaJSON),
		})
		if err != nil {
			return err
		}
		if err := s.checks.AppendChecks(txCtx, created.RunID, prepared.rows); err != nil {
			return err
		}
		run = created
		return nil
	}); err != nil {
		return ports.CheckRun{}, errs.Wrapf(err, "commit %s run", prepared.checkType)
	}
	return run, nil
}

// recordFailedRun leaves a visible ok=false run with no check rows when the
// invocation itself failed.
func (s *Service) recordFailedRun(ctx context.Context, checkType watch.CheckType, startedAt string, cause error) (ports.CheckRun, error) {
	metaJSON, err := json.Marshal(map[string]any{"error": cause.Error()})
	if err != nil {
		return ports.CheckRun{}, errs.Wrap(err, "encode failure meta")
	}

	run, err := s.checks.CreateRun(ctx, ports.CheckRunCreate{
		CheckType:  string(checkType),
		StartedAt:  startedAt,
		FinishedAt: s.timestamp(),
		OK:         false,
		MetaJSON:   string(metaJSON),
	})
	if err != nil {
		return ports.CheckRun{}, errs.Wrapf(err, "record failed %s run", checkType)
	}
	return run, nil
}

func encodeDetails(checkType watch.CheckType, fields map[string]any) (string, error) {
	payload := make(map[string]any, len(fields)+1)
	payload["check_type"] = string(checkType)
	for key, value := range fields {
		payload[key] = value
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", errs.Wrap(err, "encode check details")
	}
	return string(encoded), nil
}
