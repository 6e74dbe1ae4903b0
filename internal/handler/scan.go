package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/restaurant-eugene/booking-api/internal/booking"
	"github.com/restaurant-eugene/booking-api/internal/model"
	"github.com/restaurant-eugene/booking-api/internal/queue"
	"github.com/restaurant-eugene/booking-api/internal/repository"
	queuepub "github.com/restaurant-eugene/booking-api/internal/service"
)

// ScanHandler backs the staff scanning devices.  Verify shows the
// reservation behind a QR code without consuming it; Serve redeems it.
// Two devices scanning the same ticket race on one database row, so
// exactly one of them gets the success screen.
type ScanHandler struct {
	Machine      *booking.ServingStateMachine
	Reservations *repository.ReservationRepo
	Clients      *repository.ClientRepo
	Slots        *repository.SlotRepo
	SlotCapacity int
	EventsOn     bool
}

func NewScanHandler(m *booking.ServingStateMachine, r *repository.ReservationRepo, cl *repository.ClientRepo, slots *repository.SlotRepo, slotCapacity int, eventsOn bool) *ScanHandler {
	return &ScanHandler{Machine: m, Reservations: r, Clients: cl, Slots: slots, SlotCapacity: slotCapacity, EventsOn: eventsOn}
}

type scanReq struct {
	Token string `json:"token"`
}

type scanResp struct {
	Reservation reservationPart `json:"reservation"`
	Client      clientPart      `json:"client"`
}

type clientPart struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

func (h *ScanHandler) bindToken(c echo.Context) (string, bool) {
	var req scanReq
	if err := c.Bind(&req); err != nil {
		return "", false
	}
	return strings.TrimSpace(req.Token), true
}

// Verify resolves a scanned token read-only.  The confirmation screen
// shows the order and the recomputed total before staff commits.
func (h *ScanHandler) Verify(c echo.Context) error {
	token, ok := h.bindToken(c)
	if !ok || token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	snap, err := h.Machine.Verify(ctx, token)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, h.snapshotResp(ctx, snap))
}

// Serve redeems the ticket.  Replays and concurrent losers get 409
// with the already-served reason, cancelled tickets 410.
func (h *ScanHandler) Serve(c echo.Context) error {
	token, ok := h.bindToken(c)
	if !ok || token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	snap, err := h.Machine.Serve(ctx, token)
	if err != nil {
		return bookingError(c, err)
	}

	resp := h.snapshotResp(ctx, snap)
	h.publishServed(resp)
	return c.JSON(http.StatusOK, resp)
}

// ServedClients is the back-office rollup: every client with at least
// one served reservation, with visit count and last visit.
func (h *ScanHandler) ServedClients(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Reservations.ServedClients(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"clients": rows})
}

// SlotStatus reports the occupancy of one slot so the floor can see
// how full a seating is before taking walk-ins.
func (h *ScanHandler) SlotStatus(c echo.Context) error {
	slot := model.Slot{Date: c.QueryParam("date"), Time: c.QueryParam("time")}
	if _, err := time.Parse("2006-01-02", slot.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	if _, err := time.Parse("15:04", slot.Time); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time, want HH:MM"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reserved, err := h.Slots.Reserved(ctx, slot)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":     slot.Date,
		"time":     slot.Time,
		"reserved": reserved,
		"capacity": h.SlotCapacity,
	})
}

func (h *ScanHandler) snapshotResp(ctx context.Context, snap *booking.Snapshot) scanResp {
	resp := scanResp{Reservation: toReservationPart(snap.Reservation, snap.Items, false)}
	resp.Reservation.TotalCents = snap.TotalCents
	if client, err := h.Clients.GetByID(ctx, snap.Reservation.ClientID); err == nil {
		resp.Client = clientPart{ID: client.ID, Name: client.Name, Email: client.Email, Phone: client.Phone}
	}
	return resp
}

func (h *ScanHandler) publishServed(resp scanResp) {
	if !h.EventsOn {
		return
	}
	servedAt := time.Now().UTC()
	if resp.Reservation.ServedAt != nil {
		servedAt = resp.Reservation.ServedAt.UTC()
	}
	ev := queue.ReservationServedEvent{
		ID:            uuid.NewString(),
		ReservationID: resp.Reservation.ID,
		ClientID:      resp.Client.ID,
		ClientName:    resp.Client.Name,
		TotalCents:    resp.Reservation.TotalCents,
		ServedAt:      servedAt.Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queuepub.Publish(ctx, queue.ReservationServedQueue, ev)
	}()
}
