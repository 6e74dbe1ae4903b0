package booking

import (
	"crypto/rand"
	"encoding/hex"
)

// tokenBytes sizes the random ticket token.  32 bytes of entropy make
// enumeration infeasible; the hex form is 64 characters.
const tokenBytes = 32

// tokenRetries bounds how many fresh tokens are minted when an insert
// reports a collision before the issuer gives up.
const tokenRetries = 5

// QREncoder turns an opaque token into a scannable bitmap.  The engine
// owns only the token value; visual encoding belongs to the
// collaborator behind this interface.
type QREncoder interface {
	// Encode returns the token rendered as an image (PNG bytes).
	Encode(token string) ([]byte, error)
}

// Ticket is the single-use credential bound 1:1 to a reservation.  The
// token is an opaque string with no internal structure; consumers must
// treat it as a black box.
type Ticket struct {
	Token         string `json:"token"`
	ReservationID uint64 `json:"reservation_id"`
}

// TicketIssuer mints ticket tokens.  Tokens are unique against every
// token ever issued, including tokens of cancelled reservations;
// uniqueness is enforced by the store at insert time and a collision is
// answered by minting a new token, never surfaced to callers.
type TicketIssuer struct{}

// NewToken returns a fresh high-entropy token.  Collisions are not
// checked here; the store's unique constraint is the authority and the
// order builder re-mints on ErrTokenCollision.
func (TicketIssuer) NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Issue binds a token to a persisted reservation.  The reservation
// must already carry its token (written atomically with the header);
// Issue only packages the pair for callers and collaborators.
func (TicketIssuer) Issue(reservationID uint64, token string) Ticket {
	return Ticket{Token: token, ReservationID: reservationID}
}
