package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"evewatch/internal/errs"
	"evewatch/internal/infrastructure/persistence/sqlite/model"
	"evewatch/internal/ports"
)

type CheckRepository struct {
	db *gorm.DB
}

func NewCheckRepository(db *gorm.DB) *CheckRepository {
	return &CheckRepository{db: db}
}

func (r *CheckRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
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

func (r *CheckRepository) CreateRun(ctx context.Context, run ports.CheckRunCreate) (ports.CheckRun, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.CheckRun{}, err
	}

	row := model.CheckRun{
		CheckType:  run.CheckType,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		OK:         run.OK,
		MetaJSON:   run.MetaJSON,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.CheckRun{}, errs.Wrap(err, "insert check run")
	}
	return mapRun(row), nil
}

func (r *CheckRepository) AppendChecks(ctx context.Context, runID uint64, checks []ports.CharacterCheckCreate) error {
	if len(checks) == 0 {
		return nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.CharacterCheck, 0, len(checks))
	for _, check := range checks {
		rows = append(rows, model.CharacterCheck{
			RunID:       runID,
			CharacterID: check.CharacterID,
			Status:      check.Status,
			CheckedAt:   check.CheckedAt,
			DetailsJSON: check.DetailsJSON,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return errs.Wrapf(err, "insert character checks for run %d", runID)
	}
	return nil
}

func (r *CheckRepository) GetRun(ctx context.Context, runID uint64) (ports.CheckRun, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.CheckRun{}, err
	}

	var row model.CheckRun
	if err := db.Where("run_id = ?", runID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CheckRun{}, ports.ErrRunNotFound
		}
		return ports.CheckRun{}, errs.Wrap(err, "query check run")
	}
	return mapRun(row), nil
}

// ListRecentRuns is the bounded lookback every dashboard view starts from.
func (r *CheckRepository) ListRecentRuns(ctx context.Context, limit int) ([]ports.CheckRun, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.CheckRun{}).Order("started_at desc, run_id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.CheckRun
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query recent check runs")
	}

	items := make([]ports.CheckRun, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapRun(row))
	}
	return items, nil
}

func (r *CheckRepository) ListChecksForRun(ctx context.Context, runID uint64) ([]ports.CharacterCheck, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.CharacterCheck
	if err := db.Where("run_id = ?", runID).Order("check_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query checks for run")
	}

	items := make([]ports.CharacterCheck, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapCheck(row))
	}
	return items, nil
}

func (r *CheckRepository) LatestCheckForCharacter(ctx context.Context, characterID int64) (ports.CharacterCheck, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.CharacterCheck{}, err
	}

	var row model.CharacterCheck
	if err := db.
		Where("character_id = ?", characterID).
		Order("checked_at desc, check_id desc").
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CharacterCheck{}, ports.ErrCheckNotFound
		}
		return ports.CharacterCheck{}, errs.Wrap(err, "query latest character check")
	}
	return mapCheck(row), nil
}

func (r *CheckRepository) LatestCheckForCharacterByType(ctx context.Context, characterID int64, checkType string) (ports.CharacterCheck, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.CharacterCheck{}, err
	}

	var row model.CharacterCheck
	if err := db.Model(&model.CharacterCheck{}).
		Select("character_check.*").
		Joins("JOIN check_run ON check_run.run_id = character_check.run_id").
		Where("character_check.character_id = ? AND check_run.check_type = ?", characterID, checkType).
		Order("character_check.checked_at desc, character_check.check_id desc").
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CharacterCheck{}, ports.ErrCheckNotFound
		}
		return ports.CharacterCheck{}, errs.Wrap(err, "query latest character check by type")
	}
	return mapCheck(row), nil
}

func (r *CheckRepository) CountIssuesInRuns(ctx context.Context, runIDs []uint64) (int64, error) {
	if len(runIDs) == 0 {
		return 0, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.CharacterCheck{}).
		Where("run_id IN ?", runIDs).
		Where("status IN ?", []string{"fail", "warn"}).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count failing checks")
	}
	return count, nil
}

func (r *CheckRepository) CountRuns(ctx context.Context) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.CheckRun{}).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count check runs")
	}
	return count, nil
}

func (r *CheckRepository) GetStatsLatest(ctx context.Context, characterID int64) (ports.CharacterStats, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.CharacterStats{}, err
	}

	var row model.CharacterStatsLatest
	if err := db.Where("character_id = ?", characterID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CharacterStats{}, ports.ErrStatsNotFound
		}
		return ports.CharacterStats{}, errs.Wrap(err, "query character stats")
	}
	return ports.CharacterStats{
		CharacterID: row.CharacterID,
		TotalSP:     row.TotalSP,
		WalletISK:   row.WalletISK,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func mapRun(row model.CheckRun) ports.CheckRun {
	return ports.CheckRun{
		RunID:      row.RunID,
		CheckType:  row.CheckType,
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
		OK:         row.OK,
		MetaJSON:   row.MetaJSON,
	}
}

func mapCheck(row model.CharacterCheck) ports.CharacterCheck {
	return ports.CharacterCheck{
		CheckID:     row.CheckID,
		RunID:       row.RunID,
		CharacterID: row.CharacterID,
		Status:      row.Status,
		CheckedAt:   row.CheckedAt,
		DetailsJSON: row.DetailsJSON,
	}
}
