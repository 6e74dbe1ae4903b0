// Package booking implements the reservation and ticket lifecycle: cart
// aggregation, slot-capacity admission, order construction with price
// snapshotting, ticket issuance and the single-use serve transition.
// Persistence, rendering, mail and the session store are collaborators
// reached through interfaces; the package owns only the counting and
// state-transition rules.
package booking

import "errors"

// Validation failures.  Reported to the caller as-is, never retried.
var (
	// ErrInvalidQuantity is returned when a cart addition or order line
	// carries a quantity of zero or less.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrEmptyOrder is returned when an order submission contains no lines.
	ErrEmptyOrder = errors.New("order has no items")

	// ErrUnknownItem is returned when a referenced menu item does not
	// exist in the catalog.
	ErrUnknownItem = errors.New("unknown menu item")
)

// Terminal business outcomes.  These are correct rejections, not system
// failures, and are reported with their precise reason.
var (
	// ErrSlotFull is returned when a slot has reached its reservation
	// capacity.
	ErrSlotFull = errors.New("slot is fully booked")

	// ErrTokenNotFound is returned when no reservation carries the
	// presented ticket token.
	ErrTokenNotFound = errors.New("ticket token not found")

	// ErrAlreadyServed is returned when a ticket has already been
	// redeemed.  Of N concurrent serve attempts exactly one succeeds and
	// the rest observe this error.
	ErrAlreadyServed = errors.New("ticket already served")

	// ErrCancelled is returned when the reservation behind a ticket was
	// cancelled before the scan.
	ErrCancelled = errors.New("reservation cancelled")
)

// Internal conditions.
var (
	// ErrPersistenceConflict signals a transient conflict (deadlock, lock
	// wait timeout) from the underlying atomic update.  Components retry
	// it a bounded number of times before surfacing a failure; it is
	// never converted into a false success.
	ErrPersistenceConflict = errors.New("transient persistence conflict")

	// ErrTokenCollision signals that a freshly minted ticket token
	// collided with one issued earlier.  The ticket issuer retries with a
	// new token; callers outside this package never see it.
	ErrTokenCollision = errors.New("ticket token collision")
)
