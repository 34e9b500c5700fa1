package entity

import "time"

// ApiToken is a long-lived access token for one user of the mobile client.
// The authenticated user id is what delivery records are attributed to.
type ApiToken struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Token     string    `gorm:"column:token;type:varchar(64);not null;uniqueIndex" json:"-"`
	Revoked   uint16    `gorm:"column:revoked;not null;default:0" json:"revoked"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ApiToken) TableName() string {
	return "api_token"
}
