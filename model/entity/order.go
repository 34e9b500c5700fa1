package entity

import "time"

// Order represents one purchase placed with a supplier for a store. Lines are
// created together with the order and only ever deleted with it.
type Order struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StoreID    uint      `gorm:"column:store_id;index;not null" json:"store_id"`
	SupplierID uint      `gorm:"column:supplier_id;index;not null" json:"supplier_id"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Store    *Store      `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	Supplier *Supplier   `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Lines    []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}
