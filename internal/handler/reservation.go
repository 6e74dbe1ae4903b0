package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/restaurant-eugene/booking-api/internal/booking"
	"github.com/restaurant-eugene/booking-api/internal/model"
	"github.com/restaurant-eugene/booking-api/internal/queue"
	"github.com/restaurant-eugene/booking-api/internal/render"
	"github.com/restaurant-eugene/booking-api/internal/repository"
	"github.com/restaurant-eugene/booking-api/internal/session"
	queuepub "github.com/restaurant-eugene/booking-api/internal/service"
)

// ReservationHandler drives checkout and the customer-facing
// reservation views.  Orders come out of the session cart; bookings
// add a slot claim.  Both paths end in the same engine and emit a
// created event for the ticket pipeline.
type ReservationHandler struct {
	Builder      *booking.OrderBuilder
	Machine      *booking.ServingStateMachine
	Reservations *repository.ReservationRepo
	Clients      *repository.ClientRepo
	Carts        session.CartStore
	Encoder      render.QR
	EventsOn     bool
}

func NewReservationHandler(b *booking.OrderBuilder, m *booking.ServingStateMachine, r *repository.ReservationRepo, cl *repository.ClientRepo, carts session.CartStore, eventsOn bool) *ReservationHandler {
	return &ReservationHandler{Builder: b, Machine: m, Reservations: r, Clients: cl, Carts: carts, EventsOn: eventsOn}
}

// ----- DTOs -----

type contactReq struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type createOrderReq struct {
	Message string     `json:"message"`
	Contact contactReq `json:"contact"`
}

type createBookingReq struct {
	Date      string           `json:"date"` // YYYY-MM-DD
	Time      string           `json:"time"` // HH:MM
	PartySize uint32           `json:"party_size"`
	Message   string           `json:"message"`
	Items     []addCartItemReq `json:"items"`
	Contact   contactReq       `json:"contact"`
}

type lineItemPart struct {
	ItemID         uint64 `json:"item_id"`
	ItemName       string `json:"item_name"`
	Quantity       uint32 `json:"quantity"`
	UnitPriceCents uint32 `json:"unit_price_cents"`
	LineTotalCents uint32 `json:"line_total_cents"`
}

type reservationPart struct {
	ID          uint64         `json:"id"`
	Kind        string         `json:"kind"`
	Status      string         `json:"status"`
	SlotDate    string         `json:"slot_date,omitempty"`
	SlotTime    string         `json:"slot_time,omitempty"`
	PartySize   uint32         `json:"party_size"`
	Message     *string        `json:"message,omitempty"`
	TotalCents  uint32         `json:"total_cents"`
	TicketToken string         `json:"ticket_token,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	ServedAt    *time.Time     `json:"served_at,omitempty"`
	Items       []lineItemPart `json:"items"`
}

func toReservationPart(res *model.Reservation, items []model.LineItem, withToken bool) reservationPart {
	p := reservationPart{
		ID:         res.ID,
		Kind:       res.Kind,
		Status:     res.Status,
		SlotDate:   res.Slot.Date,
		SlotTime:   res.Slot.Time,
		PartySize:  res.PartySize,
		Message:    res.Message,
		TotalCents: res.TotalCents,
		CreatedAt:  res.CreatedAt,
		ServedAt:   res.ServedAt,
		Items:      make([]lineItemPart, 0, len(items)),
	}
	if withToken {
		p.TicketToken = res.TicketToken
	}
	for _, li := range items {
		p.Items = append(p.Items, lineItemPart{
			ItemID:         li.ItemID,
			ItemName:       li.ItemName,
			Quantity:       li.Quantity,
			UnitPriceCents: li.UnitPriceCents,
			LineTotalCents: li.LineTotalCents(),
		})
	}
	return p
}

// resolveClient returns the client record for this checkout: the
// authenticated customer's, or a guest record matched by phone and
// created on first sight.
func (h *ReservationHandler) resolveClient(ctx context.Context, c echo.Context, contact contactReq) (*model.Client, error) {
	if cid, ok := claimUint64(c, "client_id"); ok {
		return h.Clients.GetByID(ctx, cid)
	}
	name := strings.TrimSpace(contact.Name)
	phone := strings.TrimSpace(contact.Phone)
	if name == "" || phone == "" {
		return nil, errGuestContact
	}
	client, err := h.Clients.FindOrCreateGuest(ctx, name, strings.TrimSpace(contact.Email), phone)
	if err != nil {
		return nil, err
	}
	if fn := strings.TrimSpace(contact.FirstName); fn != "" && client.FirstName == nil {
		client.FirstName = &fn
	}
	return client, nil
}

var errGuestContact = fmt.Errorf("guest checkout requires contact name and phone")

// CreateOrder turns the session cart into a PENDING reservation with
// frozen prices, clears the cart and hands back the ticket token.
func (h *ReservationHandler) CreateOrder(c echo.Context) error {
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	client, err := h.resolveClient(ctx, c, req.Contact)
	if err != nil {
		if err == errGuestContact {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resolve client failed"})
	}

	cartKey, ok := existingCartKey(c)
	if !ok {
		return bookingError(c, booking.ErrEmptyOrder)
	}
	cart, err := h.Carts.Load(ctx, cartKey)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
	}

	var message *string
	if m := strings.TrimSpace(req.Message); m != "" {
		message = &m
	}

	res, items, err := h.Builder.BuildOrder(ctx, client.ID, booking.ToOrderRequest(cart), message)
	if err != nil {
		return bookingError(c, err)
	}
	_ = h.Carts.Clear(ctx, cartKey)

	h.publishCreated(res, client, items)
	return c.JSON(http.StatusCreated, echo.Map{
		"reservation": toReservationPart(res, items, true),
		"ticket":      booking.TicketIssuer{}.Issue(res.ID, res.TicketToken),
	})
}

// CreateBooking claims a capacity unit for the requested slot and, if
// admitted, persists the booking with any pre-ordered dishes.
func (h *ReservationHandler) CreateBooking(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time, want HH:MM"})
	}
	if req.PartySize == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	client, err := h.resolveClient(ctx, c, req.Contact)
	if err != nil {
		if err == errGuestContact {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resolve client failed"})
	}

	var message *string
	if m := strings.TrimSpace(req.Message); m != "" {
		message = &m
	}
	lines := make([]booking.OrderLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, booking.OrderLine{ItemID: it.ItemID, Quantity: it.Quantity})
	}

	res, items, err := h.Builder.BuildBooking(ctx, booking.BookingRequest{
		ClientID:  client.ID,
		Slot:      model.Slot{Date: req.Date, Time: req.Time},
		PartySize: req.PartySize,
		Message:   message,
		Items:     lines,
	})
	if err != nil {
		return bookingError(c, err)
	}

	h.publishCreated(res, client, items)
	return c.JSON(http.StatusCreated, echo.Map{
		"reservation": toReservationPart(res, items, true),
		"ticket":      booking.TicketIssuer{}.Issue(res.ID, res.TicketToken),
	})
}

// ListMine returns the authenticated customer's reservations, newest
// first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	cid, ok := claimUint64(c, "client_id")
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no client profile"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reservations, itemsByID, err := h.Reservations.ListByClient(ctx, cid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reservationPart, 0, len(reservations))
	for i := range reservations {
		res := &reservations[i]
		out = append(out, toReservationPart(res, itemsByID[res.ID], true))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// Get returns one reservation owned by the caller.
func (h *ReservationHandler) Get(c echo.Context) error {
	res, items, err := h.ownedReservation(c)
	if err != nil {
		return ownedError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationPart(res, items, true))
}

// Cancel moves a PENDING reservation to CANCELLED and, for bookings,
// releases the slot capacity unit.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	res, _, err := h.ownedReservation(c)
	if err != nil {
		return ownedError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Machine.Cancel(ctx, res.TicketToken); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Ticket renders the printable PDF ticket for a reservation.
func (h *ReservationHandler) Ticket(c echo.Context) error {
	res, items, err := h.ownedReservation(c)
	if err != nil {
		return ownedError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	client, err := h.Clients.GetByID(ctx, res.ClientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load client failed"})
	}
	qrPNG, err := h.Encoder.Encode(res.TicketToken)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode qr failed"})
	}
	pdfBytes, err := render.TicketPDF(res, client, items, qrPNG)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render ticket failed"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="ticket_%d.pdf"`, res.ID))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

var (
	errNoClientProfile = fmt.Errorf("no client profile")
	errBadID           = fmt.Errorf("invalid id")
)

// ownedReservation loads :id scoped to the caller's client profile.
func (h *ReservationHandler) ownedReservation(c echo.Context) (*model.Reservation, []model.LineItem, error) {
	cid, ok := claimUint64(c, "client_id")
	if !ok {
		return nil, nil, errNoClientProfile
	}
	id, err := pathID(c)
	if err != nil {
		return nil, nil, errBadID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	return h.Reservations.GetByIDForClient(ctx, id, cid)
}

// ownedError maps ownedReservation failures.  Foreign reservations
// read as 404 so ids cannot be probed.
func ownedError(c echo.Context, err error) error {
	switch err {
	case errNoClientProfile:
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errBadID:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case repository.ErrForbidden, sql.ErrNoRows:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
}

// publishCreated emits the created event for the ticket worker.  Event
// delivery is fire-and-forget; checkout never waits on the broker.
func (h *ReservationHandler) publishCreated(res *model.Reservation, client *model.Client, items []model.LineItem) {
	if !h.EventsOn {
		return
	}
	ev := queue.ReservationCreatedEvent{
		ID:            uuid.NewString(),
		ReservationID: res.ID,
		Kind:          res.Kind,
		ClientID:      client.ID,
		ClientName:    client.Name,
		ClientEmail:   client.Email,
		SlotDate:      res.Slot.Date,
		SlotTime:      res.Slot.Time,
		PartySize:     res.PartySize,
		TicketToken:   res.TicketToken,
		TotalCents:    res.TotalCents,
		CreatedAt:     res.CreatedAt.UTC().Format(time.RFC3339),
		Items:         make([]queue.EventLine, 0, len(items)),
	}
	if client.Phone != nil {
		ev.ClientPhone = *client.Phone
	}
	for _, li := range items {
		ev.Items = append(ev.Items, queue.EventLine{
			ItemName:       li.ItemName,
			Quantity:       li.Quantity,
			UnitPriceCents: li.UnitPriceCents,
		})
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queuepub.Publish(ctx, queue.ReservationCreatedQueue, ev)
	}()
}
