package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"garment.GO/api"
	"garment.GO/config"
	orderService "garment.GO/service/order"
	"garment.GO/service/reconcile"
)

func init() {
	api.RegisterModule(RegisterOrderRoutes)
}

func RegisterOrderRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := orderService.NewService(db, config.GetLogger())
	g := apiGroup.Group("/orders")

	// POST /api/orders – create an order with all its lines in one submit
	g.POST("", func(c echo.Context) error {
		var in orderService.CreateOrderInput
		if err := c.Bind(&in); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		v, err := svc.CreateOrder(c.Request().Context(), in)
		if err != nil {
			return orderError(c, err)
		}
		return c.JSON(http.StatusCreated, v)
	})

	// GET /api/orders?status=open|finalized – newest first, zero-line orders hidden
	g.GET("", func(c echo.Context) error {
		var want reconcile.Status
		switch c.QueryParam("status") {
		case "":
			want = ""
		case string(reconcile.StatusOpen):
			want = reconcile.StatusOpen
		case string(reconcile.StatusFinalized):
			want = reconcile.StatusFinalized
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be open or finalized"})
		}
		out, err := svc.ListOrders(c.Request().Context(), want)
		if err != nil {
			return orderError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	})

	// GET /api/orders/:id
	g.GET("/:id", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		v, err := svc.GetOrder(c.Request().Context(), uint(id))
		if err != nil {
			return orderError(c, err)
		}
		return c.JSON(http.StatusOK, v)
	})

	// DELETE /api/orders/:id – delete the order as a whole
	g.DELETE("/:id", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		if err := svc.DeleteOrder(c.Request().Context(), uint(id)); err != nil {
			return orderError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func orderError(c echo.Context, err error) error {
	var verr *orderService.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error()})
	case errors.Is(err, orderService.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}
