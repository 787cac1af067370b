package model

type AccountGroup struct {
	GroupID   uint64 `gorm:"column:group_id;primaryKey;autoIncrement"`
	Name      string `gorm:"column:name;type:text;not null;uniqueIndex"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (AccountGroup) TableName() string {
	return "account_group"
}
