package entity

import "time"

// ItemGroup is a hierarchical tag for order lines (e.g. a collection or a
// season). ParentID nil means root group.
type ItemGroup struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	ParentID  *uint     `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Parent   *ItemGroup  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []ItemGroup `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

func (ItemGroup) TableName() string {
	return "item_group"
}
