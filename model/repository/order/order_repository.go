package order

import (
	"context"

	"gorm.io/gorm"

	entity "garment.GO/model/entity"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func linePreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Store").
		Preload("Supplier").
		Preload("Lines").
		Preload("Lines.GarmentType").
		Preload("Lines.Group").
		Preload("Lines.Shade").
		Preload("Lines.Shade.Color")
}

// CreateWithLines persists an order and all of its lines in one transaction.
// Callers set remaining_qty = initial_qty on every line before calling.
func (r *OrderRepository) CreateWithLines(ctx context.Context, o *entity.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*entity.Order, error) {
	var o entity.Order
	if err := linePreloads(r.db.WithContext(ctx)).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// ListWithLines returns all orders with lines and references expanded, newest
// first. Status filtering happens in the service layer since order status is
// derived from line state, never stored.
func (r *OrderRepository) ListWithLines(ctx context.Context) ([]entity.Order, error) {
	var out []entity.Order
	err := linePreloads(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// Delete removes an order as a whole: its deliveries, its lines, then the
// order row, in one transaction.
func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&entity.OrderLine{}).Select("id").Where("order_id = ?", id)
		if err := tx.Where("order_line_id IN (?)", sub).Delete(&entity.Delivery{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&entity.OrderLine{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
