package model

// CharacterStatsLatest is written by the stats collector, not by the
// ingestion pipeline. Migrated and read here so the dashboard can join it.
type CharacterStatsLatest struct {
	CharacterID int64   `gorm:"column:character_id;primaryKey;autoIncrement:false"`
	TotalSP     int64   `gorm:"column:total_sp;not null;default:0"`
	WalletISK   float64 `gorm:"column:wallet_isk;not null;default:0"`
	UpdatedAt   string  `gorm:"column:updated_at;type:text;not null"`
}

func (CharacterStatsLatest) TableName() string {
	return "character_stats_latest"
}
