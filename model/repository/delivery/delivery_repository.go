package delivery

import (
	"context"

	"gorm.io/gorm"

	entity "garment.GO/model/entity"
)

// DeliveryRepository is the record-store boundary for the reconciliation
// service: the delivery table plus the two guarded writes on order_line.
// Nothing else in the codebase writes remaining_qty.
type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// detailPreloads expands a delivery down to the store and supplier names the
// listing screens show.
func detailPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Line").
		Preload("Line.GarmentType").
		Preload("Line.Shade").
		Preload("Line.Shade.Color").
		Preload("Line.Order").
		Preload("Line.Order.Store").
		Preload("Line.Order.Supplier")
}

func (r *DeliveryRepository) FindByID(ctx context.Context, id uint) (*entity.Delivery, error) {
	var d entity.Delivery
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByIDWithDetails returns a delivery with its line, order, store and
// supplier expanded.
func (r *DeliveryRepository) FindByIDWithDetails(ctx context.Context, id uint) (*entity.Delivery, error) {
	var d entity.Delivery
	if err := detailPreloads(r.db.WithContext(ctx)).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListWithDetails returns all deliveries, newest first.
func (r *DeliveryRepository) ListWithDetails(ctx context.Context) ([]entity.Delivery, error) {
	var out []entity.Delivery
	err := detailPreloads(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// ListByLine returns the deliveries recorded against one order line, newest first.
func (r *DeliveryRepository) ListByLine(ctx context.Context, lineID uint) ([]entity.Delivery, error) {
	var out []entity.Delivery
	err := detailPreloads(r.db.WithContext(ctx)).
		Where("order_line_id = ?", lineID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *DeliveryRepository) Insert(ctx context.Context, d *entity.Delivery) error {
	return r.db.WithContext(ctx).Create(d).Error
}

// Delete removes a delivery row. Returns the number of rows removed so callers
// can distinguish "already gone" from a successful delete.
func (r *DeliveryRepository) Delete(ctx context.Context, id uint) (int64, error) {
	tx := r.db.WithContext(ctx).Delete(&entity.Delivery{}, id)
	return tx.RowsAffected, tx.Error
}

// UpdateQuantity rewrites the quantity of an existing delivery row. Only the
// reconciliation service calls this, paired with the matching line delta.
func (r *DeliveryRepository) UpdateQuantity(ctx context.Context, id uint, qty int) error {
	return r.db.WithContext(ctx).
		Model(&entity.Delivery{}).
		Where("id = ?", id).
		UpdateColumn("quantity", qty).Error
}

// SumForLine totals the delivery ledger of one line.
func (r *DeliveryRepository) SumForLine(ctx context.Context, lineID uint) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&entity.Delivery{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("order_line_id = ?", lineID).
		Scan(&total).Error
	return total, err
}

// ListLines returns every order line; the ledger audit walks them all.
func (r *DeliveryRepository) ListLines(ctx context.Context) ([]entity.OrderLine, error) {
	var out []entity.OrderLine
	err := r.db.WithContext(ctx).Find(&out).Error
	return out, err
}

// SaveAudit persists one ledger-audit run.
func (r *DeliveryRepository) SaveAudit(ctx context.Context, a *entity.LedgerAudit) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// --- order_line guarded writes ---

func (r *DeliveryRepository) FindLine(ctx context.Context, lineID uint) (*entity.OrderLine, error) {
	var line entity.OrderLine
	if err := r.db.WithContext(ctx).First(&line, lineID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// DecrementRemaining runs the conditional decrement
//
//	UPDATE order_line SET remaining_qty = remaining_qty - q
//	WHERE id = ? AND remaining_qty >= q
//
// and reports whether a row was updated. A false return with nil error means
// the condition did not hold (insufficient remaining quantity), which is how
// two racing deliveries against the same line are serialized: at most one
// decrement wins.
func (r *DeliveryRepository) DecrementRemaining(ctx context.Context, lineID uint, qty int) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&entity.OrderLine{}).
		Where("id = ? AND remaining_qty >= ?", lineID, qty).
		UpdateColumn("remaining_qty", gorm.Expr("remaining_qty - ?", qty))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// RestoreRemaining adds qty back to a line, guarded so the result can never
// exceed initial_qty. False with nil error means the guard rejected the
// restore (the line counters no longer match the ledger).
func (r *DeliveryRepository) RestoreRemaining(ctx context.Context, lineID uint, qty int) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&entity.OrderLine{}).
		Where("id = ? AND remaining_qty + ? <= initial_qty", lineID, qty).
		UpdateColumn("remaining_qty", gorm.Expr("remaining_qty + ?", qty))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
