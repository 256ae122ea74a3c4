package model

import "errors"

var (
	ErrCartNotFound  = errors.New("cart not found")
	ErrDuplicateCart = errors.New("user already has a cart")
	ErrAlreadyInCart = errors.New("course is already in the cart")
	ErrNotInCart     = errors.New("course is not in the cart")
	ErrCartEmpty     = errors.New("cart is empty")
	ErrCartExpired   = errors.New("cart has expired")
	ErrInvalidCartID = errors.New("cart does not belong to this user")
)
