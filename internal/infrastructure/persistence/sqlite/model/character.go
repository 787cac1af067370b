package model

// Character ids are assigned by the external game API, never generated here.
type Character struct {
	CharacterID    int64   `gorm:"column:character_id;primaryKey;autoIncrement:false"`
	Name           string  `gorm:"column:name;type:text;not null"`
	AccountGroupID *uint64 `gorm:"column:account_group_id;index"`
	UpdatedAt      string  `gorm:"column:updated_at;type:text;not null"`
}

func (Character) TableName() string {
	return "character"
}
