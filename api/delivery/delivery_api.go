package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"garment.GO/api"
	"garment.GO/config"
	"garment.GO/core/auth"
	"garment.GO/service/reconcile"
)

func init() {
	api.RegisterModule(RegisterDeliveryRoutes)
}

func newService(db *gorm.DB) *reconcile.Service {
	opts := []reconcile.Option{reconcile.WithRedis(config.RedisClient)}
	if config.AppConfig != nil {
		opts = append(opts, reconcile.WithTimeout(config.AppConfig.StoreTimeout))
	}
	return reconcile.NewService(db, config.GetLogger(), opts...)
}

func RegisterDeliveryRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := newService(db)
	g := apiGroup.Group("/deliveries")

	// POST /api/deliveries – record a delivery against an order line
	g.POST("", func(c echo.Context) error {
		var body struct {
			LineID         uint   `json:"line_id"`
			Quantity       int    `json:"quantity"`
			UserID         string `json:"user_id"`
			IdempotencyKey string `json:"idempotency_key"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		userID := auth.UserID(c)
		if userID == "" {
			userID = body.UserID
		}

		d, err := svc.RecordDelivery(c.Request().Context(), reconcile.RecordDeliveryInput{
			LineID:         body.LineID,
			Quantity:       body.Quantity,
			UserID:         userID,
			IdempotencyKey: body.IdempotencyKey,
		})
		if err != nil {
			return reconcileError(c, err)
		}
		return c.JSON(http.StatusCreated, d)
	})

	// GET /api/deliveries – all deliveries, or one line's ledger via ?line_id=
	g.GET("", func(c echo.Context) error {
		if raw := c.QueryParam("line_id"); raw != "" {
			lineID, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid line_id"})
			}
			out, err := svc.ListDeliveriesByLine(c.Request().Context(), uint(lineID))
			if err != nil {
				return reconcileError(c, err)
			}
			return c.JSON(http.StatusOK, out)
		}
		out, err := svc.ListDeliveries(c.Request().Context())
		if err != nil {
			return reconcileError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	})

	// GET /api/deliveries/:id
	g.GET("/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		d, err := svc.GetDelivery(c.Request().Context(), id)
		if err != nil {
			return reconcileError(c, err)
		}
		return c.JSON(http.StatusOK, d)
	})

	// PATCH /api/deliveries/:id – adjust quantity, re-running the line delta
	g.PATCH("/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		var body struct {
			Quantity int `json:"quantity"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		d, err := svc.AdjustDeliveryQuantity(c.Request().Context(), id, body.Quantity)
		if err != nil {
			return reconcileError(c, err)
		}
		return c.JSON(http.StatusOK, d)
	})

	// DELETE /api/deliveries/:id – cancel the delivery, restoring quantity
	g.DELETE("/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		if err := svc.CancelDelivery(c.Request().Context(), id); err != nil {
			return reconcileError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}

// reconcileError maps the reconciliation error taxonomy onto HTTP responses.
// Partial-effect failures carry explicit flags so clients cannot mistake them
// for plain server errors.
func reconcileError(c echo.Context, err error) error {
	var insufficient *reconcile.InsufficientQuantityError
	var reconFailed *reconcile.ReconciliationFailedError
	var compFailed *reconcile.CompensationFailedError
	var restoreFailed *reconcile.QuantityRestoreFailedError

	switch {
	case errors.Is(err, reconcile.ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, reconcile.ErrLineNotFound), errors.Is(err, reconcile.ErrDeliveryNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.As(err, &insufficient):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     insufficient.Error(),
			"remaining": insufficient.Remaining,
			"requested": insufficient.Requested,
		})
	case errors.Is(err, reconcile.ErrDuplicateDelivery):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &reconFailed):
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":     reconFailed.Error(),
			"retryable": true,
		})
	case errors.As(err, &compFailed):
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":                          compFailed.Error(),
			"manual_reconciliation_required": true,
			"delivery_id":                    compFailed.DeliveryID,
		})
	case errors.As(err, &restoreFailed):
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":                      restoreFailed.Error(),
			"manual_correction_required": true,
			"line_id":                    restoreFailed.LineID,
		})
	case errors.Is(err, reconcile.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}
