package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	entity "garment.GO/model/entity"
	deliveryRepo "garment.GO/model/repository/delivery"
)

const (
	idemKeyPrefix = "delivery:idem:"
	idemKeyTTL    = 24 * time.Hour
	lineLockTTL   = 10 * time.Second
)

// Service keeps order lines consistent with their delivery ledger. It is the
// only writer of order_line.remaining_qty.
//
// Both mutation paths are two independent store calls, not a transaction. The
// create path compensates a failed second step by deleting the inserted
// delivery; the cancel path never re-creates a deleted delivery and surfaces a
// louder error instead. The line decrement itself is a conditional update, so
// racing deliveries against the same line cannot drive remaining_qty negative.
type Service struct {
	repo    *deliveryRepo.DeliveryRepository
	log     *logrus.Logger
	locker  *redislock.Client
	rdb     *redis.Client
	timeout time.Duration
}

type Option func(*Service)

// WithRedis enables idempotency-key claims and per-line locking.
func WithRedis(client *redis.Client) Option {
	return func(s *Service) {
		if client == nil {
			return
		}
		s.rdb = client
		s.locker = redislock.New(client)
	}
}

// WithTimeout bounds every store round trip.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewService(db *gorm.DB, log *logrus.Logger, opts ...Option) *Service {
	if log == nil {
		log = logrus.New()
	}
	s := &Service{
		repo:    deliveryRepo.NewDeliveryRepository(db),
		log:     log,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordDeliveryInput carries a delivery intent. IdempotencyKey is optional;
// when set and Redis is configured, replays of the same key are rejected
// before any mutation.
type RecordDeliveryInput struct {
	LineID         uint
	Quantity       int
	UserID         string
	IdempotencyKey string
}

// RecordDelivery validates the intent, inserts the delivery record, then
// decrements the line's remaining quantity. Steps run in that order so the
// ledger row exists before the line ever reflects its consumption.
func (s *Service) RecordDelivery(ctx context.Context, in RecordDeliveryInput) (*entity.Delivery, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	line, err := s.findLine(ctx, in.LineID)
	if err != nil {
		return nil, err
	}
	if in.Quantity > line.RemainingQty {
		return nil, &InsufficientQuantityError{LineID: line.ID, Remaining: line.RemainingQty, Requested: in.Quantity}
	}

	if err := s.claimIdempotency(ctx, in.IdempotencyKey); err != nil {
		return nil, err
	}
	release, err := s.lockLine(ctx, line.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	d := &entity.Delivery{
		Quantity:    in.Quantity,
		OrderLineID: line.ID,
		UserID:      in.UserID,
	}
	if err := s.callWithTimeout(ctx, func(c context.Context) error {
		return s.repo.Insert(c, d)
	}); err != nil {
		return nil, storeErr(err)
	}

	ok, err := s.decrement(ctx, line.ID, in.Quantity)
	if err != nil {
		cerr := s.compensateInsert(ctx, d, err)
		var rf *ReconciliationFailedError
		if errors.As(cerr, &rf) {
			// Net no-op; free the key so a retry of the same operation is
			// accepted. On CompensationFailed the outcome is ambiguous and
			// the key stays claimed.
			s.releaseIdempotency(ctx, in.IdempotencyKey)
		}
		return nil, cerr
	}
	if !ok {
		// Lost a race: someone consumed the quantity between our read and the
		// conditional decrement. Undo the insert and report fresh remaining.
		if cerr := s.compensateInsert(ctx, d, errNotEnoughRemaining); cerr != nil {
			var rf *ReconciliationFailedError
			if !errors.As(cerr, &rf) {
				return nil, cerr
			}
		}
		s.releaseIdempotency(ctx, in.IdempotencyKey)
		remaining := 0
		if fresh, ferr := s.findLine(ctx, line.ID); ferr == nil {
			remaining = fresh.RemainingQty
		}
		return nil, &InsufficientQuantityError{LineID: line.ID, Remaining: remaining, Requested: in.Quantity}
	}

	s.log.WithFields(logrus.Fields{
		"module":   "reconcile",
		"delivery": d.ID,
		"line":     line.ID,
		"quantity": in.Quantity,
		"user":     in.UserID,
	}).Info("delivery recorded")
	return d, nil
}

var errNotEnoughRemaining = errors.New("conditional decrement rejected: not enough remaining quantity")

// CancelDelivery removes a delivery and restores its quantity to the owning
// line. The delivery is deleted before the restore so the ledger never shows a
// receipt whose quantity was already handed back.
func (s *Service) CancelDelivery(ctx context.Context, deliveryID uint) error {
	d, err := s.findDelivery(ctx, deliveryID)
	if err != nil {
		return err
	}
	line, err := s.findLine(ctx, d.OrderLineID)
	if err != nil {
		return err
	}

	release, err := s.lockLine(ctx, line.ID)
	if err != nil {
		return err
	}
	defer release()

	var rows int64
	if err := s.callWithTimeout(ctx, func(c context.Context) error {
		var derr error
		rows, derr = s.repo.Delete(c, d.ID)
		return derr
	}); err != nil {
		return storeErr(err)
	}
	if rows == 0 {
		return ErrDeliveryNotFound
	}

	var ok bool
	err = s.callWithTimeout(ctx, func(c context.Context) error {
		var rerr error
		ok, rerr = s.repo.RestoreRemaining(c, line.ID, d.Quantity)
		return rerr
	})
	if err != nil || !ok {
		if err == nil {
			err = errRestoreGuardRejected
		}
		rfErr := &QuantityRestoreFailedError{DeliveryID: d.ID, LineID: line.ID, Quantity: d.Quantity, Cause: err}
		s.log.WithFields(logrus.Fields{
			"module":   "reconcile",
			"delivery": d.ID,
			"line":     line.ID,
			"quantity": d.Quantity,
		}).Error(rfErr.Error())
		return rfErr
	}

	s.log.WithFields(logrus.Fields{
		"module":   "reconcile",
		"delivery": d.ID,
		"line":     line.ID,
		"quantity": d.Quantity,
	}).Info("delivery cancelled, quantity restored")
	return nil
}

var errRestoreGuardRejected = errors.New("restore guard rejected: result would exceed initial quantity")

// AdjustDeliveryQuantity changes the quantity of an existing delivery and
// applies the matching delta to the owning line, so edits can never
// desynchronize the ledger. An increase mirrors the create path, including
// compensation; a decrease mirrors the cancel path, including its asymmetry.
func (s *Service) AdjustDeliveryQuantity(ctx context.Context, deliveryID uint, newQty int) (*entity.Delivery, error) {
	if newQty <= 0 {
		return nil, ErrInvalidQuantity
	}
	d, err := s.findDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	delta := newQty - d.Quantity
	if delta == 0 {
		return d, nil
	}
	line, err := s.findLine(ctx, d.OrderLineID)
	if err != nil {
		return nil, err
	}

	release, err := s.lockLine(ctx, line.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if delta > 0 {
		if delta > line.RemainingQty {
			return nil, &InsufficientQuantityError{LineID: line.ID, Remaining: line.RemainingQty, Requested: delta}
		}
		if err := s.updateDeliveryQty(ctx, d.ID, newQty); err != nil {
			return nil, storeErr(err)
		}
		ok, derr := s.decrement(ctx, line.ID, delta)
		if derr != nil || !ok {
			if derr == nil {
				derr = errNotEnoughRemaining
			}
			// Revert the delivery row to its recorded quantity. Rewriting the
			// same row is a safe inverse, unlike re-inserting a deleted one.
			if rerr := s.updateDeliveryQty(ctx, d.ID, d.Quantity); rerr != nil {
				cf := &CompensationFailedError{DeliveryID: d.ID, LineID: line.ID, UpdateErr: derr, DeleteErr: rerr}
				s.log.WithField("module", "reconcile").Error(cf.Error())
				return nil, cf
			}
			if errors.Is(derr, errNotEnoughRemaining) {
				remaining := 0
				if fresh, ferr := s.findLine(ctx, line.ID); ferr == nil {
					remaining = fresh.RemainingQty
				}
				return nil, &InsufficientQuantityError{LineID: line.ID, Remaining: remaining, Requested: delta}
			}
			return nil, &ReconciliationFailedError{LineID: line.ID, Cause: derr}
		}
	} else {
		if err := s.updateDeliveryQty(ctx, d.ID, newQty); err != nil {
			return nil, storeErr(err)
		}
		var ok bool
		err = s.callWithTimeout(ctx, func(c context.Context) error {
			var rerr error
			ok, rerr = s.repo.RestoreRemaining(c, line.ID, -delta)
			return rerr
		})
		if err != nil || !ok {
			if err == nil {
				err = errRestoreGuardRejected
			}
			rfErr := &QuantityRestoreFailedError{DeliveryID: d.ID, LineID: line.ID, Quantity: -delta, Cause: err}
			s.log.WithField("module", "reconcile").Error(rfErr.Error())
			return nil, rfErr
		}
	}

	d.Quantity = newQty
	s.log.WithFields(logrus.Fields{
		"module":   "reconcile",
		"delivery": d.ID,
		"line":     line.ID,
		"delta":    delta,
	}).Info("delivery quantity adjusted")
	return d, nil
}

// GetDelivery returns one delivery with details expanded.
func (s *Service) GetDelivery(ctx context.Context, id uint) (*entity.Delivery, error) {
	var d *entity.Delivery
	err := s.callWithTimeout(ctx, func(c context.Context) error {
		var ferr error
		d, ferr = s.repo.FindByIDWithDetails(c, id)
		return ferr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryNotFound
		}
		return nil, storeErr(err)
	}
	return d, nil
}

// ListDeliveries returns all deliveries, newest first.
func (s *Service) ListDeliveries(ctx context.Context) ([]entity.Delivery, error) {
	var out []entity.Delivery
	err := s.callWithTimeout(ctx, func(c context.Context) error {
		var lerr error
		out, lerr = s.repo.ListWithDetails(c)
		return lerr
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// ListDeliveriesByLine returns the ledger of one line, newest first.
func (s *Service) ListDeliveriesByLine(ctx context.Context, lineID uint) ([]entity.Delivery, error) {
	var out []entity.Delivery
	err := s.callWithTimeout(ctx, func(c context.Context) error {
		var lerr error
		out, lerr = s.repo.ListByLine(c, lineID)
		return lerr
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// --- internals ---

func (s *Service) callWithTimeout(ctx context.Context, fn func(context.Context) error) error {
	c, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(c)
}

func (s *Service) findLine(ctx context.Context, lineID uint) (*entity.OrderLine, error) {
	var line *entity.OrderLine
	err := s.callWithTimeout(ctx, func(c context.Context) error {
		var ferr error
		line, ferr = s.repo.FindLine(c, lineID)
		return ferr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineNotFound
		}
		return nil, storeErr(err)
	}
	return line, nil
}

func (s *Service) findDelivery(ctx context.Context, id uint) (*entity.Delivery, error) {
	var d *entity.Delivery
	err := s.callWithTimeout(ctx, func(c context.Context) error {
		var ferr error
		d, ferr = s.repo.FindByID(c, id)
		return ferr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryNotFound
		}
		return nil, storeErr(err)
	}
	return d, nil
}

func (s *Service) decrement(ctx context.Context, lineID uint, qty int) (bool, error) {
	var ok bool
	err := s.callWithTimeout(ctx, func(c context.Context) error {
		var derr error
		ok, derr = s.repo.DecrementRemaining(c, lineID, qty)
		return derr
	})
	return ok, err
}

func (s *Service) updateDeliveryQty(ctx context.Context, id uint, qty int) error {
	return s.callWithTimeout(ctx, func(c context.Context) error {
		return s.repo.UpdateQuantity(c, id, qty)
	})
}

// compensateInsert deletes a just-inserted delivery after the line update
// failed. Returns ReconciliationFailed when the delete succeeds (net no-op,
// safe to retry) and CompensationFailed when it does not.
func (s *Service) compensateInsert(ctx context.Context, d *entity.Delivery, cause error) error {
	err := s.callWithTimeout(ctx, func(c context.Context) error {
		_, derr := s.repo.Delete(c, d.ID)
		return derr
	})
	if err != nil {
		cf := &CompensationFailedError{DeliveryID: d.ID, LineID: d.OrderLineID, UpdateErr: cause, DeleteErr: err}
		s.log.WithFields(logrus.Fields{
			"module":   "reconcile",
			"delivery": d.ID,
			"line":     d.OrderLineID,
		}).Error(cf.Error())
		return cf
	}
	return &ReconciliationFailedError{LineID: d.OrderLineID, Cause: cause}
}

// claimIdempotency reserves the operation key via SETNX. A second claim of the
// same key within the TTL is rejected before any mutation, making caller
// retries of an already-applied operation safe.
func (s *Service) claimIdempotency(ctx context.Context, key string) error {
	if s.rdb == nil || key == "" {
		return nil
	}
	ok, err := s.rdb.SetNX(ctx, idemKeyPrefix+key, 1, idemKeyTTL).Result()
	if err != nil {
		return storeErr(err)
	}
	if !ok {
		return ErrDuplicateDelivery
	}
	return nil
}

// releaseIdempotency frees a claimed key after an operation that ended with no
// net effect. Retrying the same key must reach the store again, otherwise a
// compensated failure would shadow the operation for the whole TTL.
func (s *Service) releaseIdempotency(ctx context.Context, key string) {
	if s.rdb == nil || key == "" {
		return
	}
	if err := s.rdb.Del(ctx, idemKeyPrefix+key).Err(); err != nil {
		s.log.WithField("module", "reconcile").Warnf("idempotency key release failed: %v", err)
	}
}

// lockLine serializes writers of one line across instances when Redis is
// configured. Without Redis the conditional decrement is still race-safe; the
// lock only narrows the window where a racing call burns an insert it then has
// to compensate.
func (s *Service) lockLine(ctx context.Context, lineID uint) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	lock, err := s.locker.Obtain(ctx, fmt.Sprintf("lock:order_line:%d", lineID), lineLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 10),
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return func() {
		if rerr := lock.Release(context.Background()); rerr != nil && !errors.Is(rerr, redislock.ErrLockNotHeld) {
			s.log.WithField("line", lineID).Warnf("line lock release failed: %v", rerr)
		}
	}, nil
}
