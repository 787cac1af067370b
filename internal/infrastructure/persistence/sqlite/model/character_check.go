package model

type CharacterCheck struct {
	CheckID     uint64 `gorm:"column:check_id;primaryKey;autoIncrement"`
	RunID       uint64 `gorm:"column:run_id;not null;index"`
	CharacterID *int64 `gorm:"column:character_id;index"`
	Status      string `gorm:"column:status;type:text;not null"`
	CheckedAt   string `gorm:"column:checked_at;type:text;not null"`
	DetailsJSON string `gorm:"column:details;type:text;not null"`
}

func (CharacterCheck) TableName() string {
	return "character_check"
}
