package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"evewatch/internal/bootstrap/logging"
	"evewatch/internal/domain/watch"
	"evewatch/internal/errs"
	"evewatch/internal/ports"
)

// Service drives one ingestion cycle: roster sync, then one invoke/index/
// record pass per configured watcher type.
type Service struct {
	roster  ports.RosterRepository
	checks  ports.CheckRepository
	uow     ports.UnitOfWork
	invoker ports.WatcherInvoker
	now     func() time.Time
}

func NewService(roster ports.RosterRepository, checks ports.CheckRepository, uow ports.UnitOfWork, invoker ports.WatcherInvoker) *Service {
	return &Service{
		roster:  roster,
		checks:  checks,
		uow:     uow,
		invoker: invoker,
		now:     time.Now,
	}
}

type CycleInput struct {
	MappingFile  string
	WatchersFile string
	Workdir      string
}

type RunReport struct {
	CheckType string `json:"check_type"`
	RunID     uint64 `json:"run_id,omitempty"`
	OK        bool   `json:"ok"`
	Checks    int    `json:"checks"`
	Error     string `json:"error,omitempty"`
}

type CycleResult struct {
	CycleID    string      `json:"cycle_id"`
	StartedAt  string      `json:"started_at"`
	FinishedAt string      `json:"finished_at"`
	OK         bool        `json:"ok"`
	Groups     int         `json:"groups"`
	Characters int         `json:"characters"`
	Runs       []RunReport `json:"runs"`
}

// RunCycle executes one full ingestion cycle. Configuration and roster
// errors are fatal for the cycle; a failing watcher only fails its own run.
func (s *Service) RunCycle(ctx context.Context, input CycleInput) (CycleResult, error) {
	if ctx == nil {
		return CycleResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return CycleResult{}, errs.Wrap(err, "check context")
	}
	if s.roster == nil || s.checks == nil || s.uow == nil || s.invoker == nil {
		return CycleResult{}, errors.New("ingest service is not fully wired")
	}

	cycleID := uuid.NewString()
	ctx = logging.WithAttrs(ctx,
		slog.String("component", "usecase.ingest"),
		slog.String("cycle_id", cycleID),
	)

	result := CycleResult{
		CycleID:   cycleID,
		StartedAt: s.timestamp(),
		OK:        true,
	}

	mapping, err := watch.LoadGroupMapping(input.MappingFile)
	if err != nil {
		return CycleResult{}, errs.Wrap(err, "load group mapping")
	}

	groups, characters, err := s.SyncRoster(ctx, mapping)
	if err != nil {
		return CycleResult{}, errs.Wrap(err, "sync roster")
	}
	result.Groups = groups
	result.Characters = characters

	catalog, err := loadWatcherCatalog(input.WatchersFile)
	if err != nil {
		return CycleResult{}, errs.Wrap(err, "load watcher catalog")
	}

	for _, checkType := range watch.CheckTypes {
		desc, configured := catalog.descriptor(checkType, input.Workdir)
		if !configured {
			logging.Warn(ctx, "watcher not configured, skipping",
				slog.String("check_type", string(checkType)),
			)
			continue
		}

		report := s.ingestWatcher(ctx, checkType, desc)
		result.Runs = append(result.Runs, report)
		if !report.OK {
			result.OK = false
		}
	}

	result.FinishedAt = s.timestamp()
	logging.Info(ctx, "ingestion cycle finished",
		slog.Bool("ok", result.OK),
		slog.Int("runs", len(result.Runs)),
	)
	return result, nil
}

// ingestWatcher is the error boundary per watcher type: every failure inside
// it is reported through the returned RunReport, never propagated.
func (s *Service) ingestWatcher(ctx context.Context, checkType watch.CheckType, desc ports.WatcherDescriptor) RunReport {
	logCtx := logging.WithAttrs(ctx, slog.String("check_type", string(checkType)))
	startedAt := s.timestamp()

	raw, err := s.invoker.Invoke(logCtx, desc)
	if err != nil {
		logging.Error(logCtx, "watcher invocation failed", slog.Any("err", errs.Loggable(err)))
		return s.reportFailure(logCtx, checkType, startedAt, err)
	}

	var prepared preparedRun
	switch checkType {
	case watch.CheckPI:
		prepared, err = s.preparePI(logCtx, raw, startedAt)
	case watch.CheckSkillQueue:
		prepared, err = s.prepareSkillQueue(logCtx, raw, startedAt)
	case watch.CheckIndustry:
		prepared, err = s.prepareIndustry(logCtx, raw, startedAt)
	case watch.CheckContract:
		prepared, err = s.prepareContract(logCtx, raw, startedAt)
	default:
		err = errs.Wrapf(errors.New("unknown check type"), "%s", checkType)
	}
	if err != nil {
		logging.Error(logCtx, "watcher payload rejected", slog.Any("err", errs.Loggable(err)))
		return s.reportFailure(logCtx, checkType, startedAt, err)
	}
	finishedAt := s.timestamp()

	run, err := s.commitRun(logCtx, prepared, startedAt, finishedAt)
	if err != nil {
		logging.Error(logCtx, "recording run failed", slog.Any("err", errs.Loggable(err)))
		return RunReport{CheckType: string(checkType), OK: false, Error: err.Error()}
	}

	logging.Info(logCtx, "watcher run recorded",
		slog.Uint64("run_id", run.RunID),
		slog.Int("checks", len(prepared.rows)),
	)
	return RunReport{
		CheckType: string(checkType),
		RunID:     run.RunID,
		OK:        true,
		Checks:    len(prepared.rows),
	}
}

func (s *Service) reportFailure(ctx context.Context, checkType watch.CheckType, startedAt string, cause error) RunReport {
	report := RunReport{CheckType: string(checkType), OK: false, Error: cause.Error()}

	run, err := s.recordFailedRun(ctx, checkType, startedAt, cause)
	if err != nil {
		// The failed-run marker is best effort; the original failure wins.
		logging.Error(ctx, "recording failed run marker failed", slog.Any("err", errs.Loggable(err)))
		return report
	}
	report.RunID = run.RunID
	return report
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
