package domain

import "fmt"

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// AcceptsTracking reports whether a tracking number may be attached at s.
func (s OrderStatus) AcceptsTracking() bool {
	return s == StatusShipped || s == StatusDelivered
}

// CheckTransition validates an admin status update. Re-setting the current
// status is only allowed to attach a tracking number.
func CheckTransition(current, next OrderStatus, trackingNumber string) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}
	if trackingNumber != "" && !next.AcceptsTracking() {
		return fmt.Errorf("%w: tracking number requires status %s or %s", ErrValidation, StatusShipped, StatusDelivered)
	}
	if current == next {
		if trackingNumber == "" {
			return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, current)
		}
		return nil
	}
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}
	return nil
}
