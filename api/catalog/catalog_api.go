package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"garment.GO/api"
	"garment.GO/core/auth"
	entity "garment.GO/model/entity"
	catalogRepo "garment.GO/model/repository/catalog"
)

func init() {
	api.RegisterModule(RegisterCatalogRoutes)
}

// RegisterCatalogRoutes exposes CRUD for the reference tables the order and
// delivery screens depend on: stores, suppliers, garment types, materials,
// colors with shades, and hierarchical groups.
func RegisterCatalogRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/catalog")
	registerStores(g, catalogRepo.NewStoreRepository(db))
	registerSuppliers(g, catalogRepo.NewSupplierRepository(db))
	registerGarmentTypes(g, catalogRepo.NewGarmentTypeRepository(db))
	registerMaterials(g, catalogRepo.NewMaterialRepository(db))
	registerColors(g, catalogRepo.NewColorRepository(db))
	registerGroups(g, catalogRepo.NewGroupRepository(db))
}

func paramID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func catalogError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, catalogRepo.ErrColorHasShades),
		errors.Is(err, catalogRepo.ErrGroupHasChildren):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}

func registerStores(g *echo.Group, repo *catalogRepo.StoreRepository) {
	g.GET("/stores", func(c echo.Context) error {
		out, err := repo.List(c.Request().Context(), c.QueryParam("owner"))
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	})
	g.POST("/stores", func(c echo.Context) error {
		var s entity.Store
		if err := c.Bind(&s); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if s.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		if s.Owner == "" {
			s.Owner = auth.UserID(c)
		}
		if err := repo.Create(c.Request().Context(), &s); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusCreated, s)
	})
	g.PUT("/stores/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		s, err := repo.FindByID(c.Request().Context(), id)
		if err != nil {
			return catalogError(c, err)
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := c.Bind(&body); err != nil || body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		s.Name = body.Name
		if err := repo.Update(c.Request().Context(), s); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, s)
	})
	g.DELETE("/stores/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		if err := repo.Delete(c.Request().Context(), id); err != nil {
			return catalogError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func registerSuppliers(g *echo.Group, repo *catalogRepo.SupplierRepository) {
	g.GET("/suppliers", func(c echo.Context) error {
		out, err := repo.List(c.Request().Context())
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	})
	g.POST("/suppliers", func(c echo.Context) error {
		var s entity.Supplier
		if err := c.Bind(&s); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if s.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		if err := repo.Create(c.Request().Context(), &s); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusCreated, s)
	})
	g.PUT("/suppliers/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		s, err := repo.FindByID(c.Request().Context(), id)
		if err != nil {
			return catalogError(c, err)
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := c.Bind(&body); err != nil || body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		s.Name = body.Name
		if err := repo.Update(c.Request().Context(), s); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, s)
	})
	g.DELETE("/suppliers/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		if err := repo.Delete(c.Request().Context(), id); err != nil {
			return catalogError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func registerGarmentTypes(g *echo.Group, repo *catalogRepo.GarmentTypeRepository) {
	g.GET("/garment-types", func(c echo.Context) error {
		out, err := repo.List(c.Request().Context())
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	})
	g.POST("/garment-types", func(c echo.Context) error {
		var t entity.GarmentType
		if err := c.Bind(&t); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if t.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		exists, err := repo.NameExists(c.Request().Context(), t.Name, 0)
		if err != nil {
			return catalogError(c, err)
		}
		if exists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists"})
		}
		if err := repo.Create(c.Request().Context(), &t); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusCreated, t)
	})
	g.PUT("/garment-types/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		t, err := repo.FindByID(c.Request().Context(), id)
		if err != nil {
			return catalogError(c, err)
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := c.Bind(&body); err != nil || body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		exists, err := repo.NameExists(c.Request().Context(), body.Name, id)
		if err != nil {
			return catalogError(c, err)
		}
		if exists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists"})
		}
		t.Name = body.Name
		if err := repo.Update(c.Request().Context(), t); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, t)
	})
	g.DELETE("/garment-types/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		if err := repo.Delete(c.Request().Context(), id); err != nil {
			return catalogError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func registerMaterials(g *echo.Group, repo *catalogRepo.MaterialRepository) {
	g.GET("/materials", func(c echo.Context) error {
		out, err := repo.List(c.Request().Context())
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	})
	g.POST("/materials", func(c echo.Context) error {
		var m entity.Material
		if err := c.Bind(&m); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if m.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		exists, err := repo.NameExists(c.Request().Context(), m.Name, 0)
		if err != nil {
			return catalogError(c, err)
		}
		if exists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists"})
		}
		if err := repo.Create(c.Request().Context(), &m); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusCreated, m)
	})
	g.PUT("/materials/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		m, err := repo.FindByID(c.Request().Context(), id)
		if err != nil {
			return catalogError(c, err)
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := c.Bind(&body); err != nil || body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		exists, err := repo.NameExists(c.Request().Context(), body.Name, id)
		if err != nil {
			return catalogError(c, err)
		}
		if exists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists"})
		}
		m.Name = body.Name
		if err := repo.Update(c.Request().Context(), m); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, m)
	})
	g.DELETE("/materials/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		if err := repo.Delete(c.Request().Context(), id); err != nil {
			return catalogError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func registerColors(g *echo.Group, repo *catalogRepo.ColorRepository) {
	g.GET("/colors", func(c echo.Context) error {
		if c.QueryParam("with_shades") == "true" {
			out, err := repo.ListWithShades(c.Request().Context())
			if err != nil {
				return catalogError(c, err)
			}
			return c.JSON(http.StatusOK, out)
		}
		out, err := repo.List(c.Request().Context())
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	})
	g.POST("/colors", func(c echo.Context) error {
		var col entity.Color
		if err := c.Bind(&col); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if col.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		if err := repo.Create(c.Request().Context(), &col); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusCreated, col)
	})
	g.PUT("/colors/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		col, err := repo.FindByID(c.Request().Context(), id)
		if err != nil {
			return catalogError(c, err)
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := c.Bind(&body); err != nil || body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		col.Name = body.Name
		if err := repo.Update(c.Request().Context(), col); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, col)
	})
	g.DELETE("/colors/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		if err := repo.Delete(c.Request().Context(), id); err != nil {
			return catalogError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})

	// shades
	g.GET("/colors/:id/shades", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		out, err := repo.ListShades(c.Request().Context(), id)
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	})
	g.POST("/colors/:id/shades", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := c.Bind(&body); err != nil || body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		s := entity.ColorShade{ColorID: id, Name: body.Name}
		if err := repo.CreateShade(c.Request().Context(), &s); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusCreated, s)
	})
	g.PUT("/shades/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		s, err := repo.FindShadeByID(c.Request().Context(), id)
		if err != nil {
			return catalogError(c, err)
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := c.Bind(&body); err != nil || body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		s.Name = body.Name
		if err := repo.UpdateShade(c.Request().Context(), s); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, s)
	})
	g.DELETE("/shades/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		if err := repo.DeleteShade(c.Request().Context(), id); err != nil {
			return catalogError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func registerGroups(g *echo.Group, repo *catalogRepo.GroupRepository) {
	g.GET("/groups", func(c echo.Context) error {
		if c.QueryParam("roots") == "true" {
			out, err := repo.ListRoots(c.Request().Context())
			if err != nil {
				return catalogError(c, err)
			}
			return c.JSON(http.StatusOK, out)
		}
		out, err := repo.List(c.Request().Context())
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	})
	g.GET("/groups/tree", func(c echo.Context) error {
		out, err := repo.Tree(c.Request().Context())
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	})
	g.GET("/groups/:id/breadcrumb", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		bc, err := repo.Breadcrumb(c.Request().Context(), id)
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"breadcrumb": bc})
	})
	g.GET("/groups/:id/children", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		out, err := repo.ListChildren(c.Request().Context(), id)
		if err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	})
	g.POST("/groups", func(c echo.Context) error {
		var grp entity.ItemGroup
		if err := c.Bind(&grp); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if grp.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		exists, err := repo.NameExists(c.Request().Context(), grp.Name, grp.ParentID, 0)
		if err != nil {
			return catalogError(c, err)
		}
		if exists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists under this parent"})
		}
		if err := repo.Create(c.Request().Context(), &grp); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusCreated, grp)
	})
	g.PUT("/groups/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		grp, err := repo.FindByID(c.Request().Context(), id)
		if err != nil {
			return catalogError(c, err)
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := c.Bind(&body); err != nil || body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		exists, err := repo.NameExists(c.Request().Context(), body.Name, grp.ParentID, id)
		if err != nil {
			return catalogError(c, err)
		}
		if exists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists under this parent"})
		}
		grp.Name = body.Name
		if err := repo.Update(c.Request().Context(), grp); err != nil {
			return catalogError(c, err)
		}
		return c.JSON(http.StatusOK, grp)
	})
	g.DELETE("/groups/:id", func(c echo.Context) error {
		id, ok := paramID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		if err := repo.Delete(c.Request().Context(), id); err != nil {
			return catalogError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}
