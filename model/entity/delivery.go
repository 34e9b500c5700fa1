package entity

import "time"

// Delivery is a receipt event: N units of an order line received by a user.
// Deliveries are the complete consumption ledger for their line: the sum of
// their quantities equals initial_qty - remaining_qty.
type Delivery struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Quantity    int       `gorm:"column:quantity;not null" json:"quantity"`
	OrderLineID uint      `gorm:"column:order_line_id;index;not null" json:"order_line_id"`
	UserID      string    `gorm:"column:user_id;type:varchar(64);not null" json:"user_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Line *OrderLine `gorm:"foreignKey:OrderLineID" json:"line,omitempty"`
}

func (Delivery) TableName() string {
	return "delivery"
}
