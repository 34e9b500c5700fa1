package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	entity "garment.GO/model/entity"
	orderRepo "garment.GO/model/repository/order"
	"garment.GO/service/reconcile"
)

var ErrOrderNotFound = errors.New("order not found")

// ValidationError points at the first invalid line of an order submission.
type ValidationError struct {
	Line  int // 1-based line index, 0 for order-level problems
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s %s", e.Line, e.Field, e.Msg)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Msg)
}

type Service struct {
	repo     *orderRepo.OrderRepository
	validate *validator.Validate
	log      *logrus.Logger
	timeout  time.Duration
}

func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		repo:     orderRepo.NewOrderRepository(db),
		validate: validator.New(),
		log:      log,
		timeout:  10 * time.Second,
	}
}

type LineInput struct {
	GarmentTypeID uint            `json:"garment_type_id" validate:"required"`
	InitialQty    int             `json:"initial_qty" validate:"required,gt=0"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Color         string          `json:"color" validate:"required"`
	Ref           *string         `json:"ref,omitempty"`
	Size          *string         `json:"size,omitempty"`
	GroupID       *uint           `json:"group_id,omitempty"`
	ShadeID       *uint           `json:"shade_id,omitempty"`
}

type CreateOrderInput struct {
	StoreID    uint        `json:"store_id" validate:"required"`
	SupplierID uint        `json:"supplier_id" validate:"required"`
	Lines      []LineInput `json:"lines" validate:"required,min=1,dive"`
}

// OrderView is an order with its derived status and money totals attached.
type OrderView struct {
	entity.Order
	Status     reconcile.Status     `json:"status"`
	Financials reconcile.Financials `json:"financials"`
}

// CreateOrder validates and persists an order with all its lines in one
// submit. Every line starts with remaining_qty = initial_qty.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderView, error) {
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	o := &entity.Order{
		StoreID:    in.StoreID,
		SupplierID: in.SupplierID,
	}
	for _, li := range in.Lines {
		o.Lines = append(o.Lines, entity.OrderLine{
			GarmentTypeID: li.GarmentTypeID,
			InitialQty:    li.InitialQty,
			RemainingQty:  li.InitialQty,
			UnitPrice:     li.UnitPrice,
			Color:         li.Color,
			Ref:           li.Ref,
			Size:          li.Size,
			GroupID:       li.GroupID,
			ShadeID:       li.ShadeID,
		})
	}

	c, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.CreateWithLines(c, o); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"module": "order",
		"order":  o.ID,
		"lines":  len(o.Lines),
	}).Info("order created")
	return s.GetOrder(ctx, o.ID)
}

func (s *Service) checkInput(in CreateOrderInput) error {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return validationError(verrs[0])
		}
		return err
	}
	for i, li := range in.Lines {
		if li.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return &ValidationError{Line: i + 1, Field: "unit_price", Msg: "must be greater than zero"}
		}
	}
	return nil
}

func validationError(fe validator.FieldError) error {
	msg := "is invalid"
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "gt":
		msg = "must be greater than " + fe.Param()
	case "min":
		msg = "needs at least " + fe.Param() + " entries"
	}
	// Namespace looks like CreateOrderInput.Lines[2].Color
	ve := &ValidationError{Field: fe.Field(), Msg: msg}
	var idx int
	if n, err := fmt.Sscanf(fe.Namespace(), "CreateOrderInput.Lines[%d]", &idx); err == nil && n == 1 {
		ve.Line = idx + 1
	}
	return ve
}

// GetOrder returns one order with status and financials computed.
func (s *Service) GetOrder(ctx context.Context, id uint) (*OrderView, error) {
	c, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	o, err := s.repo.FindByID(c, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	v := s.view(*o)
	return &v, nil
}

// ListOrders returns orders matching the wanted status, newest first. Orders
// without lines appear in no listing. Status is recomputed from lines on
// every call.
func (s *Service) ListOrders(ctx context.Context, want reconcile.Status) ([]OrderView, error) {
	c, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	orders, err := s.repo.ListWithLines(c)
	if err != nil {
		return nil, err
	}

	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		if len(o.Lines) == 0 {
			continue
		}
		v := s.view(o)
		if want != "" && v.Status != want {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// DeleteOrder removes an order as a whole, cascading to lines and deliveries.
func (s *Service) DeleteOrder(ctx context.Context, id uint) error {
	c, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.repo.Delete(c, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return err
}

func (s *Service) view(o entity.Order) OrderView {
	return OrderView{
		Order:      o,
		Status:     reconcile.ComputeOrderStatus(o.Lines),
		Financials: reconcile.ComputeFinancials(o.Lines),
	}
}
