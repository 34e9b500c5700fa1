package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"garment.GO/core/cache"
	entity "garment.GO/model/entity"
)

// ErrGroupHasChildren rejects deleting a group that still has subgroups.
var ErrGroupHasChildren = errors.New("group has subgroups and cannot be deleted")

type GroupRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db, cache: cache.GetInstance()}
}

func (r *GroupRepository) List(ctx context.Context) ([]entity.ItemGroup, error) {
	if v, ok := r.cache.Get("item_group:list"); ok {
		return v.([]entity.ItemGroup), nil
	}
	var out []entity.ItemGroup
	if err := r.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	r.cache.Set("item_group:list", out, listTTL, []string{"item_group"})
	return out, nil
}

// ListRoots returns groups without a parent.
func (r *GroupRepository) ListRoots(ctx context.Context) ([]entity.ItemGroup, error) {
	var out []entity.ItemGroup
	err := r.db.WithContext(ctx).
		Where("parent_id IS NULL").
		Order("name").
		Find(&out).Error
	return out, err
}

// ListChildren returns the direct subgroups of a group.
func (r *GroupRepository) ListChildren(ctx context.Context, parentID uint) ([]entity.ItemGroup, error) {
	var out []entity.ItemGroup
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name").
		Find(&out).Error
	return out, err
}

func (r *GroupRepository) FindByID(ctx context.Context, id uint) (*entity.ItemGroup, error) {
	var g entity.ItemGroup
	if err := r.db.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// Breadcrumb walks parents up to the root and joins names with " > ".
func (r *GroupRepository) Breadcrumb(ctx context.Context, id uint) (string, error) {
	var names []string
	cur := id
	for {
		g, err := r.FindByID(ctx, cur)
		if err != nil {
			return "", err
		}
		names = append([]string{g.Name}, names...)
		if g.ParentID == nil {
			break
		}
		cur = *g.ParentID
	}
	return strings.Join(names, " > "), nil
}

// Tree returns the full hierarchy: roots with children preloaded one level deep.
func (r *GroupRepository) Tree(ctx context.Context) ([]entity.ItemGroup, error) {
	var out []entity.ItemGroup
	err := r.db.WithContext(ctx).
		Preload("Children").
		Where("parent_id IS NULL").
		Order("name").
		Find(&out).Error
	return out, err
}

// NameExists checks name uniqueness among siblings (same parent).
func (r *GroupRepository) NameExists(ctx context.Context, name string, parentID *uint, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&entity.ItemGroup{}).Where("name = ?", name)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GroupRepository) Create(ctx context.Context, g *entity.ItemGroup) error {
	if g.ParentID != nil {
		if _, err := r.FindByID(ctx, *g.ParentID); err != nil {
			return err
		}
	}
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("item_group")
	return nil
}

func (r *GroupRepository) Update(ctx context.Context, g *entity.ItemGroup) error {
	if err := r.db.WithContext(ctx).Save(g).Error; err != nil {
		return err
	}
	r.cache.DeleteByTag("item_group")
	return nil
}

func (r *GroupRepository) Delete(ctx context.Context, id uint) error {
	children, err := r.ListChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return ErrGroupHasChildren
	}
	res := r.db.WithContext(ctx).Delete(&entity.ItemGroup{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.cache.DeleteByTag("item_group")
	return nil
}
