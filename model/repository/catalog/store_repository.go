package catalog

import (
	"context"

	"gorm.io/gorm"

	"garment.GO/core/cache"
	entity "garment.GO/model/entity"
)

// listTTL is how long cached reference lists live before a re-read (seconds).
const listTTL = 300

type StoreRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db, cache: cache.GetInstance()}
}

func (r *StoreRepository) List(ctx context.Context, owner string) ([]entity.Store, error) {
	if v, ok := r.cache.GetN("store:list", owner); ok {
		return v.([]entity.Store), nil
	}
	var out []entity.Store
	q := r.db.WithContext(ctx).Order("name")
	if owner != "" {
		q = q.Where("owner = ?", owner)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	r.cache.SetN([]interface{}{"store:list", owner}, out, listTTL, []string{"store"})
	return out, nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id uint) (*entity.Store, error) {
	var s entity.Store
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepository) Create(ctx context.Context, s *entity.Store) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("store")
	return nil
}

func (r *StoreRepository) Update(ctx context.Context, s *entity.Store) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("store")
	return nil
}

func (r *StoreRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Store{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.cache.DeleteByTag("store")
	return nil
}
