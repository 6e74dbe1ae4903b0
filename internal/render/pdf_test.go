package render_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restaurant-eugene/booking-api/internal/model"
	"github.com/restaurant-eugene/booking-api/internal/render"
)

func TestQREncodeProducesPNG(t *testing.T) {
	png, err := render.QR{}.Encode("a1b2c3d4")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "QR output must be a PNG")
}

func TestTicketPDFRendersBookingTicket(t *testing.T) {
	phone := "+32470000000"
	first := "Ada"
	res := &model.Reservation{
		ID:          12,
		ClientID:    3,
		Kind:        model.KindBooking,
		Slot:        model.Slot{Date: "2026-09-12", Time: "19:30"},
		PartySize:   4,
		Status:      model.StatusPending,
		TotalCents:  3400,
		TicketToken: "feedface",
		CreatedAt:   time.Now().UTC(),
	}
	client := &model.Client{ID: 3, Name: "Lovelace", FirstName: &first, Email: "ada@example.com", Phone: &phone}
	items := []model.LineItem{
		{ItemName: "Soup", Quantity: 2, UnitPriceCents: 500},
		{ItemName: "Steak", Quantity: 1, UnitPriceCents: 2400},
	}

	qrPNG, err := render.QR{}.Encode(res.TicketToken)
	require.NoError(t, err)

	pdf, err := render.TicketPDF(res, client, items, qrPNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Greater(t, len(pdf), 1000)
}

func TestTicketPDFRendersOrderWithoutSlot(t *testing.T) {
	res := &model.Reservation{
		ID:          13,
		ClientID:    3,
		Kind:        model.KindOrder,
		PartySize:   1,
		Status:      model.StatusPending,
		TotalCents:  500,
		TicketToken: "cafebabe",
		CreatedAt:   time.Now().UTC(),
	}
	client := &model.Client{ID: 3, Name: "Lovelace", Email: "ada@example.com"}
	items := []model.LineItem{{ItemName: "Soup", Quantity: 1, UnitPriceCents: 500}}

	qrPNG, err := render.QR{}.Encode(res.TicketToken)
	require.NoError(t, err)

	pdf, err := render.TicketPDF(res, client, items, qrPNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
