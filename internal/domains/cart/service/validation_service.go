package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	cartmodel "coursehub-backend/internal/domains/cart/model"
	coursemodel "coursehub-backend/internal/domains/course/model"
	courserepo "coursehub-backend/internal/domains/course/repository"
	enrollmentrepo "coursehub-backend/internal/domains/enrollment/repository"
	"coursehub-backend/internal/shared/result"
)

// Rejection is a business-rule refusal with a stable code. Infrastructure
// failures travel as plain errors instead.
type Rejection struct {
	Code    string
	Message string
}

func reject(code, message string) *Rejection {
	return &Rejection{Code: code, Message: message}
}

// ValidationService centralizes the cart business rules so the add-to-cart
// path and the checkout path cannot drift apart
type ValidationService struct {
	courseRepo     courserepo.RepositoryInterface
	enrollmentRepo enrollmentrepo.RepositoryInterface
}

func NewValidationService(courseRepo courserepo.RepositoryInterface, enrollmentRepo enrollmentrepo.RepositoryInterface) *ValidationService {
	return &ValidationService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// ValidateAddToCart runs the add-to-cart checks in order, stopping at the
// first failure: course exists, course active, not already enrolled, not
// already in the cart. On success the resolved course is returned so the
// caller snapshots exactly what was validated.
func (v *ValidationService) ValidateAddToCart(ctx context.Context, tx pgx.Tx, userID, courseID uuid.UUID, cart *cartmodel.Cart) (*coursemodel.Course, *Rejection, error) {
	course, err := v.courseRepo.GetByIDTx(ctx, tx, courseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve course: %w", err)
	}
	if course == nil {
		return nil, reject(result.CodeCourseNotFound, "course not found"), nil
	}

	if !course.IsActive {
		return nil, reject(result.CodeCourseInactive, "course is not open for enrollment"), nil
	}

	enrolled, err := v.enrollmentRepo.ExistsTx(ctx, tx, userID, courseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if enrolled {
		return nil, reject(result.CodeAlreadyEnrolled, "student is already enrolled in this course"), nil
	}

	if cart != nil && cart.ContainsCourse(courseID) {
		return nil, reject(result.CodeAlreadyInCart, "course is already in the cart"), nil
	}

	return course, nil, nil
}

// ValidateForCheckout gates the checkout entry: a missing or empty cart is
// CART_EMPTY, an expired cart is CART_EXPIRED, a cart belonging to another
// user is INVALID_CART_ID. The ownership check cannot fire for callers that
// load the cart by user id; it guards any future caller that resolves a cart
// by its own id.
func (v *ValidationService) ValidateForCheckout(cart *cartmodel.Cart, userID uuid.UUID, now timeNow) *Rejection {
	if cart == nil || cart.IsEmpty() {
		return reject(result.CodeCartEmpty, "cart is empty")
	}
	if cart.UserID != userID {
		return reject(result.CodeInvalidCartID, "cart does not belong to this user")
	}
	if cart.IsExpired(now()) {
		return reject(result.CodeCartExpired, "cart has expired")
	}
	return nil
}

// CheckCartIntegrity re-resolves every cart line against the live catalog.
// A deleted course is a hard COURSE_DELETED failure; a price drift is a
// PRICE_CHANGED warning and the snapshot price is still honored.
func (v *ValidationService) CheckCartIntegrity(ctx context.Context, tx pgx.Tx, cart *cartmodel.Cart) ([]result.Warning, *Rejection, error) {
	var warnings []result.Warning

	for i := range cart.Items {
		item := &cart.Items[i]

		course, err := v.courseRepo.GetByIDTx(ctx, tx, item.CourseID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to re-resolve course: %w", err)
		}
		if course == nil {
			return nil, reject(result.CodeCourseDeleted,
				fmt.Sprintf("course %s was removed from the catalog", item.CourseID)), nil
		}

		if !course.Price.Equal(item.UnitPrice) {
			warnings = append(warnings, result.Warning{
				Code:    result.CodePriceChanged,
				Message: fmt.Sprintf("price of %q changed since it was added", item.CourseTitle),
				Details: cartmodel.PriceChangeDetail{
					CourseID:      item.CourseID,
					SnapshotPrice: item.UnitPrice,
					CurrentPrice:  course.Price,
				},
			})
		}
	}

	return warnings, nil, nil
}
