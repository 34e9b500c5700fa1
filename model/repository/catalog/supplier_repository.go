package catalog

import (
	"context"

	"gorm.io/gorm"

	"garment.GO/core/cache"
	entity "garment.GO/model/entity"
)

type SupplierRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db, cache: cache.GetInstance()}
}

func (r *SupplierRepository) List(ctx context.Context) ([]entity.Supplier, error) {
	if v, ok := r.cache.Get("supplier:list"); ok {
		return v.([]entity.Supplier), nil
	}
	var out []entity.Supplier
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	r.cache.Set("supplier:list", out, listTTL, []string{"supplier"})
	return out, nil
}

func (r *SupplierRepository) FindByID(ctx context.Context, id uint) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepository) Create(ctx context.Context, s *entity.Supplier) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("supplier")
	return nil
}

func (r *SupplierRepository) Update(ctx context.Context, s *entity.Supplier) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("supplier")
	return nil
}

func (r *SupplierRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Supplier{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.cache.DeleteByTag("supplier")
	return nil
}
