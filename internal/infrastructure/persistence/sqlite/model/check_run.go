package model

type CheckRun struct {
	RunID      uint64 `gorm:"column:run_id;primaryKey;autoIncrement"`
	CheckType  string `gorm:"column:check_type;type:text;not null;index"`
	StartedAt  string `gorm:"column:started_at;type:text;not null;index"`
	FinishedAt string `gorm:"column:finished_at;type:text;not null"`
	OK         bool   `gorm:"column:ok;not null;default:0"`
	MetaJSON   string `gorm:"column:meta;type:text;not null"`
}

func (CheckRun) TableName() string {
	return "check_run"
}
