package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coursehub-backend/internal/domains/cart/model"
	repo "coursehub-backend/internal/domains/cart/repository"
	enrollmentmodel "coursehub-backend/internal/domains/enrollment/model"
	enrollmentrepo "coursehub-backend/internal/domains/enrollment/repository"
	idemmodel "coursehub-backend/internal/domains/idempotency/model"
	idempotency "coursehub-backend/internal/domains/idempotency/service"
	ordermodel "coursehub-backend/internal/domains/order/model"
	orderrepo "coursehub-backend/internal/domains/order/repository"
	"coursehub-backend/internal/shared/result"
	"coursehub-backend/internal/shared/utils"
	"coursehub-backend/pkg/database"
	"coursehub-backend/pkg/logger"
)

type timeNow func() time.Time

// rejectionError carries a Rejection across the idempotency/transaction
// boundary so the outer layer can turn it back into a coded result
type rejectionError struct {
	rejection *Rejection
}

func (e *rejectionError) Error() string {
	return e.rejection.Message
}

type CartService struct {
	repository     repo.RepositoryInterface
	orderRepo      orderrepo.RepositoryInterface
	enrollmentRepo enrollmentrepo.RepositoryInterface
	validation     *ValidationService
	idempotency    *idempotency.Service
	txRunner       database.TxRunner
	now            timeNow
}

func NewCartService(
	r repo.RepositoryInterface,
	orderRepo orderrepo.RepositoryInterface,
	enrollmentRepo enrollmentrepo.RepositoryInterface,
	validation *ValidationService,
	idem *idempotency.Service,
	txRunner database.TxRunner,
) ServiceInterface {
	return &CartService{
		repository:     r,
		orderRepo:      orderRepo,
		enrollmentRepo: enrollmentRepo,
		validation:     validation,
		idempotency:    idem,
		txRunner:       txRunner,
		now:            time.Now,
	}
}

// NewCartServiceWithClock injects a clock for deterministic TTL tests
func NewCartServiceWithClock(
	r repo.RepositoryInterface,
	orderRepo orderrepo.RepositoryInterface,
	enrollmentRepo enrollmentrepo.RepositoryInterface,
	validation *ValidationService,
	idem *idempotency.Service,
	txRunner database.TxRunner,
	now func() time.Time,
) ServiceInterface {
	return &CartService{
		repository:     r,
		orderRepo:      orderRepo,
		enrollmentRepo: enrollmentRepo,
		validation:     validation,
		idempotency:    idem,
		txRunner:       txRunner,
		now:            now,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) result.Result[*model.CartResponse] {
	cart, err := s.repository.GetByUserID(ctx, userID)
	if err != nil {
		return result.Error[*model.CartResponse](result.CodeInternal, err.Error())
	}

	// No cart, or a cart past its TTL, reads as empty: the sweep will
	// physically remove expired rows
	if cart == nil || cart.IsExpired(s.now()) {
		empty := model.NewCart(userID, s.now())
		empty.ID = uuid.Nil
		return result.Ok(empty.ToResponse())
	}

	return result.Ok(cart.ToResponse())
}

func (s *CartService) AddCourse(ctx context.Context, userID, courseID uuid.UUID) result.Result[*model.CartResponse] {
	var response *model.CartResponse
	var rejection *Rejection

	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		now := s.now()

		cart, err := s.repository.GetByUserIDForUpdateTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		// An expired cart is dead weight: replace it so the new item gets a
		// fresh TTL instead of landing in a cart about to be swept
		if cart != nil && cart.IsExpired(now) {
			if err := s.repository.DeleteTx(ctx, tx, cart.ID); err != nil {
				return err
			}
			cart = nil
		}

		if cart == nil {
			cart = model.NewCart(userID, now)
			if err := s.repository.CreateTx(ctx, tx, cart); err != nil {
				return err
			}
		}

		course, rej, err := s.validation.ValidateAddToCart(ctx, tx, userID, courseID, cart)
		if err != nil {
			return err
		}
		if rej != nil {
			rejection = rej
			return &rejectionError{rejection: rej}
		}

		item := model.NewCartItem(cart.ID, courseID, course.Title, course.InstructorName, course.Price, now)
		if err := s.repository.AddItemTx(ctx, tx, &item); err != nil {
			// The unique constraint closes the race the in-memory check
			// cannot see
			if errors.Is(err, model.ErrAlreadyInCart) {
				rejection = reject(result.CodeAlreadyInCart, "course is already in the cart")
				return &rejectionError{rejection: rejection}
			}
			return err
		}

		if err := cart.AddCourse(item); err != nil {
			return err
		}

		response = cart.ToResponse()
		return nil
	})

	if rejection != nil {
		return result.Error[*model.CartResponse](rejection.Code, rejection.Message)
	}
	if err != nil {
		return result.Error[*model.CartResponse](result.CodeInternal, err.Error())
	}

	return result.Ok(response)
}

func (s *CartService) RemoveCourse(ctx context.Context, userID, courseID uuid.UUID) result.Result[*model.CartResponse] {
	var response *model.CartResponse
	var rejection *Rejection

	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		cart, err := s.repository.GetByUserIDForUpdateTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cart == nil || !cart.ContainsCourse(courseID) {
			rejection = reject(result.CodeNotInCart, "course is not in the cart")
			return &rejectionError{rejection: rejection}
		}

		if err := s.repository.RemoveItemTx(ctx, tx, cart.ID, courseID); err != nil {
			return err
		}
		if err := cart.RemoveCourse(courseID); err != nil {
			return err
		}

		response = cart.ToResponse()
		return nil
	})

	if rejection != nil {
		return result.Error[*model.CartResponse](rejection.Code, rejection.Message)
	}
	if err != nil {
		return result.Error[*model.CartResponse](result.CodeInternal, err.Error())
	}

	return result.Ok(response)
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) result.Result[*model.CartResponse] {
	var response *model.CartResponse

	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		cart, err := s.repository.GetByUserIDForUpdateTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			empty := model.NewCart(userID, s.now())
			empty.ID = uuid.Nil
			response = empty.ToResponse()
			return nil
		}

		if err := s.repository.ClearItemsTx(ctx, tx, cart.ID); err != nil {
			return err
		}

		cart.Clear()
		response = cart.ToResponse()
		return nil
	})
	if err != nil {
		return result.Error[*model.CartResponse](result.CodeInternal, err.Error())
	}

	return result.Ok(response)
}

// Checkout is the one place where cart, order, enrollment and idempotency
// meet. The whole flow runs in a single transaction inside the idempotency
// wrapper: a replayed key returns the stored outcome without touching any
// table.
func (s *CartService) Checkout(ctx context.Context, userID uuid.UUID, idempotencyKey string) result.Result[*model.CheckoutResponse] {
	payload := map[string]interface{}{
		"operation": "checkout",
		"user_id":   userID.String(),
	}

	outcome, err := idempotency.Execute(ctx, s.idempotency, idempotencyKey, userID, idemmodel.OpCheckout,
		payload, func(ctx context.Context, tx pgx.Tx) (*model.CheckoutResponse, error) {
			return s.checkoutInTx(ctx, tx, userID)
		})
	if err != nil {
		return checkoutErrorResult(err)
	}

	res := result.OkWithWarnings(outcome.Data, outcome.Data.Warnings)
	res.Replayed = outcome.Replayed
	return res
}

// checkoutInTx performs the actual conversion. Any returned error rolls the
// whole transaction back.
func (s *CartService) checkoutInTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.CheckoutResponse, error) {
	now := s.now()

	// Step 1: Lock the cart so a concurrent mutation or second checkout waits
	cart, err := s.repository.GetByUserIDForUpdateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	// Step 2: Entry validation
	if rej := s.validation.ValidateForCheckout(cart, userID, s.now); rej != nil {
		return nil, &rejectionError{rejection: rej}
	}

	// Step 3: Integrity check against the live catalog
	warnings, rej, err := s.validation.CheckCartIntegrity(ctx, tx, cart)
	if err != nil {
		return nil, err
	}
	if rej != nil {
		return nil, &rejectionError{rejection: rej}
	}

	// Step 4: Per-line enrollment re-check; one conflict fails the whole
	// checkout
	for i := range cart.Items {
		enrolled, err := s.enrollmentRepo.ExistsTx(ctx, tx, userID, cart.Items[i].CourseID)
		if err != nil {
			return nil, err
		}
		if enrolled {
			return nil, &rejectionError{rejection: reject(result.CodeAlreadyEnrolled,
				"student is already enrolled in "+cart.Items[i].CourseTitle)}
		}
	}

	// Step 5: Build the order from snapshots
	lines := make([]ordermodel.OrderLine, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		lines[i] = ordermodel.OrderLine{
			CourseID:       item.CourseID,
			CourseTitle:    item.CourseTitle,
			InstructorName: item.InstructorName,
			UnitPrice:      item.UnitPrice,
		}
	}
	order := ordermodel.NewOrder(uuid.New(), userID, utils.GenerateOrderNumber(now), lines, now)
	if err := s.orderRepo.CreateTx(ctx, tx, order); err != nil {
		return nil, err
	}

	// Step 6: One unpaid enrollment per line, awaiting payment review
	enrollmentIDs := make([]uuid.UUID, 0, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		enrollment := enrollmentmodel.NewEnrollment(uuid.New(), userID, item.CourseID, item.UnitPrice, now)
		if err := s.enrollmentRepo.CreateTx(ctx, tx, enrollment); err != nil {
			if errors.Is(err, enrollmentmodel.ErrEnrollmentExists) {
				return nil, &rejectionError{rejection: reject(result.CodeAlreadyEnrolled,
					"student is already enrolled in "+item.CourseTitle)}
			}
			return nil, err
		}
		enrollmentIDs = append(enrollmentIDs, enrollment.ID)
	}

	// Step 7: The cart is consumed
	if err := s.repository.DeleteTx(ctx, tx, cart.ID); err != nil {
		return nil, err
	}

	logger.Info("checkout completed", map[string]interface{}{
		"user_id":      userID.String(),
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount.String(),
		"line_count":   len(lines),
	})

	return &model.CheckoutResponse{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		TotalAmount:   order.TotalAmount,
		EnrollmentIDs: enrollmentIDs,
		Warnings:      warnings,
		CreatedAt:     now,
	}, nil
}

// checkoutErrorResult translates idempotency and rejection errors into
// coded results
func checkoutErrorResult(err error) result.Result[*model.CheckoutResponse] {
	var rejErr *rejectionError
	if errors.As(err, &rejErr) {
		return result.Error[*model.CheckoutResponse](rejErr.rejection.Code, rejErr.rejection.Message)
	}

	var idemErr *idemmodel.IdempotencyError
	if errors.As(err, &idemErr) {
		return result.Error[*model.CheckoutResponse](idemErr.Code, idemErr.Message)
	}

	return result.Error[*model.CheckoutResponse](result.CodeInternal, err.Error())
}

func (s *CartService) CleanupExpired(ctx context.Context) (int, error) {
	count, err := s.repository.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logger.Info("expired carts deleted", map[string]interface{}{
			"count": count,
		})
	}
	return count, nil
}
