package catalog

import (
	"context"

	"gorm.io/gorm"

	"garment.GO/core/cache"
	entity "garment.GO/model/entity"
)

type MaterialRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db, cache: cache.GetInstance()}
}

func (r *MaterialRepository) List(ctx context.Context) ([]entity.Material, error) {
	if v, ok := r.cache.Get("material:list"); ok {
		return v.([]entity.Material), nil
	}
	var out []entity.Material
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	r.cache.Set("material:list", out, listTTL, []string{"material"})
	return out, nil
}

func (r *MaterialRepository) FindByID(ctx context.Context, id uint) (*entity.Material, error) {
	var m entity.Material
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// NameExists reports whether another material already carries this name.
func (r *MaterialRepository) NameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&entity.Material{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MaterialRepository) Create(ctx context.Context, m *entity.Material) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("material")
	return nil
}

func (r *MaterialRepository) Update(ctx context.Context, m *entity.Material) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("material")
	return nil
}

func (r *MaterialRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Material{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.cache.DeleteByTag("material")
	return nil
}
