package entity

import "time"

type Color struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(128);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Shades []ColorShade `gorm:"foreignKey:ColorID" json:"shades,omitempty"`
}

func (Color) TableName() string {
	return "color"
}
