package common

import (
	"net/http"
)

type ErrorKind int

const (
	ErrValidation ErrorKind = iota
	ErrNotFound
	ErrNotAuthorized
	ErrInvalidOperation
	ErrConflict
	ErrPaymentFailed
)

// OpError is the failure of a booking/review operation. Kind decides the HTTP
// status; PaymentFailed is the one retriable kind (the caller may invoke pay
// again), everything else requires different input or a state re-fetch.
type OpError struct {
	Kind    ErrorKind
	Message string
}

func (e *OpError) Error() string {
	return e.Message
}

func (e *OpError) Status() int {
	switch e.Kind {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrNotAuthorized:
		return http.StatusForbidden
	case ErrConflict:
		return http.StatusConflict
	case ErrPaymentFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusBadRequest
	}
}

func validationError(msg string) error {
	return &OpError{Kind: ErrValidation, Message: msg}
}

func notFoundError(msg string) error {
	return &OpError{Kind: ErrNotFound, Message: msg}
}

func notAuthorizedError(msg string) error {
	return &OpError{Kind: ErrNotAuthorized, Message: msg}
}

func invalidOperationError(msg string) error {
	return &OpError{Kind: ErrInvalidOperation, Message: msg}
}

func conflictError(msg string) error {
	return &OpError{Kind: ErrConflict, Message: msg}
}

func paymentFailedError(msg string) error {
	return &OpError{Kind: ErrPaymentFailed, Message: msg}
}
