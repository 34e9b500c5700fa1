package entity

import "time"

type ColorShade struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ColorID   uint      `gorm:"column:color_id;index;not null" json:"color_id"`
	Name      string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Color *Color `gorm:"foreignKey:ColorID" json:"color,omitempty"`
}

func (ColorShade) TableName() string {
	return "color_shade"
}
