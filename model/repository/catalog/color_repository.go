package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"garment.GO/core/cache"
	entity "garment.GO/model/entity"
)

// ErrColorHasShades rejects deleting a color that still owns shades.
var ErrColorHasShades = errors.New("color has shades and cannot be deleted")

type ColorRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewColorRepository(db *gorm.DB) *ColorRepository {
	return &ColorRepository{db: db, cache: cache.GetInstance()}
}

func (r *ColorRepository) List(ctx context.Context) ([]entity.Color, error) {
	if v, ok := r.cache.Get("color:list"); ok {
		return v.([]entity.Color), nil
	}
	var out []entity.Color
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	r.cache.Set("color:list", out, listTTL, []string{"color"})
	return out, nil
}

// ListWithShades returns every color with its shades preloaded.
func (r *ColorRepository) ListWithShades(ctx context.Context) ([]entity.Color, error) {
	var out []entity.Color
	err := r.db.WithContext(ctx).Preload("Shades").Order("name").Find(&out).Error
	return out, err
}

func (r *ColorRepository) FindByID(ctx context.Context, id uint) (*entity.Color, error) {
	var c entity.Color
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ColorRepository) Create(ctx context.Context, c *entity.Color) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("color")
	return nil
}

func (r *ColorRepository) Update(ctx context.Context, c *entity.Color) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("color")
	return nil
}

// Delete removes a color. Colors that still own shades are rejected, matching
// the client rule that shades must be removed first.
func (r *ColorRepository) Delete(ctx context.Context, id uint) error {
	var shadeCount int64
	if err := r.db.WithContext(ctx).Model(&entity.ColorShade{}).
		Where("color_id = ?", id).Count(&shadeCount).Error; err != nil {
		return err
	}
	if shadeCount > 0 {
		return ErrColorHasShades
	}
	res := r.db.WithContext(ctx).Delete(&entity.Color{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.cache.DeleteByTag("color")
	return nil
}

// --- shades ---

func (r *ColorRepository) ListShades(ctx context.Context, colorID uint) ([]entity.ColorShade, error) {
	var out []entity.ColorShade
	err := r.db.WithContext(ctx).
		Where("color_id = ?", colorID).
		Order("name").
		Find(&out).Error
	return out, err
}

func (r *ColorRepository) FindShadeByID(ctx context.Context, id uint) (*entity.ColorShade, error) {
	var s entity.ColorShade
	if err := r.db.WithContext(ctx).Preload("Color").First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateShade verifies the parent color exists before inserting.
func (r *ColorRepository) CreateShade(ctx context.Context, s *entity.ColorShade) error {
	var parent entity.Color
	if err := r.db.WithContext(ctx).First(&parent, s.ColorID).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("color")
	return nil
}

func (r *ColorRepository) UpdateShade(ctx context.Context, s *entity.ColorShade) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("color")
	return nil
}

func (r *ColorRepository) DeleteShade(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.ColorShade{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.cache.DeleteByTag("color")
	return nil
}
