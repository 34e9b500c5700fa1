package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"garment.GO/core/cache"
	entity "garment.GO/model/entity"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.Store{}, &entity.Supplier{}, &entity.GarmentType{},
		&entity.Material{}, &entity.Color{}, &entity.ColorShade{}, &entity.ItemGroup{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// The cache is a process singleton; drop anything a previous test cached.
	for _, tag := range []string{"store", "color", "item_group", "material"} {
		cache.GetInstance().DeleteByTag(tag)
	}
	return db
}

func TestStoreRepository_ListCachesAndInvalidates(t *testing.T) {
	db := testDB(t)
	repo := NewStoreRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &entity.Store{Name: "Downtown", Owner: "ana"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	first, err := repo.List(ctx, "")
	if err != nil || len(first) != 1 {
		t.Fatalf("List: %v (%d)", err, len(first))
	}

	// Second read must come from cache: insert behind the repo's back and the
	// list should not change.
	if err := db.Create(&entity.Store{Name: "Uptown"}).Error; err != nil {
		t.Fatalf("raw insert: %v", err)
	}
	cached, err := repo.List(ctx, "")
	if err != nil || len(cached) != 1 {
		t.Fatalf("cached List: %v (%d)", err, len(cached))
	}

	// A write through the repo invalidates the tag.
	if err := repo.Create(ctx, &entity.Store{Name: "Harbour"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	fresh, err := repo.List(ctx, "")
	if err != nil || len(fresh) != 3 {
		t.Fatalf("fresh List: %v (%d), want 3", err, len(fresh))
	}
}

func TestStoreRepository_ListFiltersByOwner(t *testing.T) {
	db := testDB(t)
	repo := NewStoreRepository(db)
	ctx := context.Background()

	for _, s := range []entity.Store{{Name: "A", Owner: "ana"}, {Name: "B", Owner: "rui"}} {
		st := s
		if err := repo.Create(ctx, &st); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	mine, err := repo.List(ctx, "ana")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 || mine[0].Owner != "ana" {
		t.Errorf("owner filter: %+v", mine)
	}
}

func TestColorRepository_DeleteRejectsWithShades(t *testing.T) {
	db := testDB(t)
	repo := NewColorRepository(db)
	ctx := context.Background()

	col := entity.Color{Name: "Blue"}
	if err := repo.Create(ctx, &col); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.CreateShade(ctx, &entity.ColorShade{ColorID: col.ID, Name: "Navy"}); err != nil {
		t.Fatalf("CreateShade: %v", err)
	}

	if err := repo.Delete(ctx, col.ID); !errors.Is(err, ErrColorHasShades) {
		t.Errorf("err = %v, want ErrColorHasShades", err)
	}

	shades, err := repo.ListShades(ctx, col.ID)
	if err != nil || len(shades) != 1 {
		t.Fatalf("ListShades: %v (%d)", err, len(shades))
	}
	if err := repo.DeleteShade(ctx, shades[0].ID); err != nil {
		t.Fatalf("DeleteShade: %v", err)
	}
	if err := repo.Delete(ctx, col.ID); err != nil {
		t.Errorf("Delete after shades removed: %v", err)
	}
}

func TestColorRepository_CreateShadeRequiresParent(t *testing.T) {
	db := testDB(t)
	repo := NewColorRepository(db)

	err := repo.CreateShade(context.Background(), &entity.ColorShade{ColorID: 404, Name: "Ghost"})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestGroupRepository_Hierarchy(t *testing.T) {
	db := testDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	root := entity.ItemGroup{Name: "Winter"}
	if err := repo.Create(ctx, &root); err != nil {
		t.Fatalf("Create root: %v", err)
	}
	child := entity.ItemGroup{Name: "Coats", ParentID: &root.ID}
	if err := repo.Create(ctx, &child); err != nil {
		t.Fatalf("Create child: %v", err)
	}
	leaf := entity.ItemGroup{Name: "Parkas", ParentID: &child.ID}
	if err := repo.Create(ctx, &leaf); err != nil {
		t.Fatalf("Create leaf: %v", err)
	}

	bc, err := repo.Breadcrumb(ctx, leaf.ID)
	if err != nil {
		t.Fatalf("Breadcrumb: %v", err)
	}
	if bc != "Winter > Coats > Parkas" {
		t.Errorf("breadcrumb = %q", bc)
	}

	roots, err := repo.ListRoots(ctx)
	if err != nil || len(roots) != 1 || roots[0].ID != root.ID {
		t.Fatalf("ListRoots: %v %+v", err, roots)
	}

	tree, err := repo.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree) != 1 || len(tree[0].Children) != 1 || tree[0].Children[0].ID != child.ID {
		t.Errorf("tree = %+v", tree)
	}

	if err := repo.Delete(ctx, root.ID); !errors.Is(err, ErrGroupHasChildren) {
		t.Errorf("delete root: err = %v, want ErrGroupHasChildren", err)
	}
	if err := repo.Delete(ctx, leaf.ID); err != nil {
		t.Errorf("delete leaf: %v", err)
	}
}

func TestGroupRepository_NameExistsAmongSiblings(t *testing.T) {
	db := testDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	root := entity.ItemGroup{Name: "Winter"}
	if err := repo.Create(ctx, &root); err != nil {
		t.Fatalf("Create: %v", err)
	}
	child := entity.ItemGroup{Name: "Basics", ParentID: &root.ID}
	if err := repo.Create(ctx, &child); err != nil {
		t.Fatalf("Create: %v", err)
	}

	exists, err := repo.NameExists(ctx, "Basics", &root.ID, 0)
	if err != nil || !exists {
		t.Errorf("same parent: exists=%v err=%v, want true", exists, err)
	}
	// The same name under a different parent is fine.
	exists, err = repo.NameExists(ctx, "Basics", nil, 0)
	if err != nil || exists {
		t.Errorf("root level: exists=%v err=%v, want false", exists, err)
	}
	// A group never collides with itself.
	exists, err = repo.NameExists(ctx, "Basics", &root.ID, child.ID)
	if err != nil || exists {
		t.Errorf("excluded self: exists=%v err=%v, want false", exists, err)
	}
}

func TestMaterialRepository_CRUDAndNameExists(t *testing.T) {
	db := testDB(t)
	repo := NewMaterialRepository(db)
	ctx := context.Background()

	m := entity.Material{Name: "Cotton"}
	if err := repo.Create(ctx, &m); err != nil {
		t.Fatalf("Create: %v", err)
	}
	exists, err := repo.NameExists(ctx, "Cotton", 0)
	if err != nil || !exists {
		t.Errorf("exists=%v err=%v, want true", exists, err)
	}
	exists, err = repo.NameExists(ctx, "Cotton", m.ID)
	if err != nil || exists {
		t.Errorf("excluded self: exists=%v err=%v, want false", exists, err)
	}

	m.Name = "Organic Cotton"
	if err := repo.Update(ctx, &m); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.FindByID(ctx, m.ID)
	if err != nil || got.Name != "Organic Cotton" {
		t.Fatalf("FindByID: %v %+v", err, got)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: %v (%d)", err, len(list))
	}

	if err := repo.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, m.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("second delete: err = %v, want ErrRecordNotFound", err)
	}
}

func TestGarmentTypeRepository_NameExists(t *testing.T) {
	db := testDB(t)
	repo := NewGarmentTypeRepository(db)
	ctx := context.Background()

	gt := entity.GarmentType{Name: "T-Shirt"}
	if err := repo.Create(ctx, &gt); err != nil {
		t.Fatalf("Create: %v", err)
	}
	exists, err := repo.NameExists(ctx, "T-Shirt", 0)
	if err != nil || !exists {
		t.Errorf("exists=%v err=%v, want true", exists, err)
	}
	exists, err = repo.NameExists(ctx, "T-Shirt", gt.ID)
	if err != nil || exists {
		t.Errorf("excluded self: exists=%v err=%v, want false", exists, err)
	}
}
