package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is one stock-keeping entry within an order. RemainingQty starts
// equal to InitialQty and is written exclusively by the reconciliation
// service; 0 <= remaining_qty <= initial_qty holds at all times.
type OrderLine struct {
	ID            uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID       uint            `gorm:"column:order_id;index;not null" json:"order_id"`
	GarmentTypeID uint            `gorm:"column:garment_type_id;not null" json:"garment_type_id"`
	InitialQty    int             `gorm:"column:initial_qty;not null" json:"initial_qty"`
	RemainingQty  int             `gorm:"column:remaining_qty;not null" json:"remaining_qty"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null" json:"unit_price"`
	Color         string          `gorm:"column:color;type:varchar(64);not null" json:"color"`
	Ref           *string         `gorm:"column:ref;type:varchar(64)" json:"ref,omitempty"`
	Size          *string         `gorm:"column:size;type:varchar(32)" json:"size,omitempty"`
	GroupID       *uint           `gorm:"column:group_id" json:"group_id,omitempty"`
	ShadeID       *uint           `gorm:"column:shade_id" json:"shade_id,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Order       *Order       `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	GarmentType *GarmentType `gorm:"foreignKey:GarmentTypeID" json:"garment_type,omitempty"`
	Group       *ItemGroup   `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Shade       *ColorShade  `gorm:"foreignKey:ShadeID" json:"shade,omitempty"`
}

func (OrderLine) TableName() string {
	return "order_line"
}

// Open reports whether the line still has undelivered quantity.
func (l OrderLine) Open() bool {
	return l.RemainingQty > 0
}

// DeliveredQty is the quantity consumed so far per the line counters.
func (l OrderLine) DeliveredQty() int {
	return l.InitialQty - l.RemainingQty
}
