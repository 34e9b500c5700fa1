package catalog

import (
	"context"

	"gorm.io/gorm"

	"garment.GO/core/cache"
	entity "garment.GO/model/entity"
)

type GarmentTypeRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewGarmentTypeRepository(db *gorm.DB) *GarmentTypeRepository {
	return &GarmentTypeRepository{db: db, cache: cache.GetInstance()}
}

func (r *GarmentTypeRepository) List(ctx context.Context) ([]entity.GarmentType, error) {
	if v, ok := r.cache.Get("garment_type:list"); ok {
		return v.([]entity.GarmentType), nil
	}
	var out []entity.GarmentType
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	r.cache.Set("garment_type:list", out, listTTL, []string{"garment_type"})
	return out, nil
}

func (r *GarmentTypeRepository) FindByID(ctx context.Context, id uint) (*entity.GarmentType, error) {
	var t entity.GarmentType
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// NameExists reports whether another garment type already carries this name.
func (r *GarmentTypeRepository) NameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&entity.GarmentType{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GarmentTypeRepository) Create(ctx context.Context, t *entity.GarmentType) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("garment_type")
	return nil
}

func (r *GarmentTypeRepository) Update(ctx context.Context, t *entity.GarmentType) error {
	if err := r.db.WithContext(ctx).Save(t).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("garment_type")
	return nil
}

func (r *GarmentTypeRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.GarmentType{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.cache.DeleteByTag("garment_type")
	return nil
}
