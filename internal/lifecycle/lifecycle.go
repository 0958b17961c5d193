// Package lifecycle holds the order status rules: the forward progression
// from pending to completed, the cancellation window and the display
// helpers derived from a status's position.
package lifecycle

import (
	"mini-eats/internal/model"
)

// progression lists the forward states in order.
var progression = []model.OrderStatus{
	model.StatusPending,
	model.StatusConfirmed,
	model.StatusPreparing,
	model.StatusReady,
	model.StatusDelivering,
	model.StatusCompleted,
}

// progressSteps is the number of pre-completion steps shown on a progress bar.
const progressSteps = 5

var labels = map[model.OrderStatus]string{
	model.StatusPending:    "En attente",
	model.StatusConfirmed:  "Confirmée",
	model.StatusPreparing:  "En préparation",
	model.StatusReady:      "Prête",
	model.StatusDelivering: "En livraison",
	model.StatusCompleted:  "Livrée",
	model.StatusCancelled:  "Annulée",
}

// Valid reports whether s is a known status.
func Valid(s model.OrderStatus) bool {
	_, ok := labels[s]
	return ok
}

// Step returns the 1-based position of s in the forward progression,
// or 0 for cancelled and unknown statuses.
func Step(s model.OrderStatus) int {
	for i, st := range progression {
		if st == s {
			return i + 1
		}
	}
	return 0
}

// Next returns the immediate successor of s.
func Next(s model.OrderStatus) (model.OrderStatus, bool) {
	step := Step(s)
	if step == 0 || step == len(progression) {
		return "", false
	}
	return progression[step], true
}

// Advance validates moving an order from current to target.
// Replaying the current status is a no-op and reports changed=false.
// Only the immediate successor is accepted; skipping stages, moving
// backwards and leaving a terminal state return *model.InvalidTransitionError.
func Advance(current, target model.OrderStatus) (changed bool, err error) {
	if current == target {
		return false, nil
	}
	next, ok := Next(current)
	if !ok || next != target {
		return false, &model.InvalidTransitionError{From: current, To: target}
	}
	return true, nil
}

// Cancel validates cancelling an order in the current status.
// Cancelling an already cancelled order is a no-op.
func Cancel(current model.OrderStatus) (changed bool, err error) {
	switch current {
	case model.StatusPending, model.StatusConfirmed:
		return true, nil
	case model.StatusCancelled:
		return false, nil
	case model.StatusPreparing, model.StatusReady, model.StatusDelivering, model.StatusCompleted:
		return false, model.ErrCancellationWindowClosed
	default:
		return false, &model.InvalidTransitionError{From: current, To: model.StatusCancelled}
	}
}

// Apply validates any requested status change, routing cancellation through
// Cancel and everything else through Advance.
func Apply(current, target model.OrderStatus) (bool, error) {
	if target == model.StatusCancelled {
		return Cancel(current)
	}
	if !Valid(target) {
		return false, &model.InvalidTransitionError{From: current, To: target}
	}
	return Advance(current, target)
}

// Progress returns the progress-bar percentage for s, derived from its step.
// Completed orders report 100; cancelled orders report 0.
func Progress(s model.OrderStatus) int {
	step := Step(s)
	if step > progressSteps {
		return 100
	}
	return step * 100 / progressSteps
}

// Label returns the customer-facing label for s. Unknown statuses fall back
// to the pending label.
func Label(s model.OrderStatus) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return labels[model.StatusPending]
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(s model.OrderStatus) bool {
	return s == model.StatusCompleted || s == model.StatusCancelled
}

// IsActive reports whether the order is still in progress.
func IsActive(s model.OrderStatus) bool {
	return Step(s) > 0 && !IsTerminal(s)
}

// CanReview reports whether the customer may rate the order's restaurant.
func CanReview(s model.OrderStatus) bool {
	return s == model.StatusCompleted
}
