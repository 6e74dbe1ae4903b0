package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/restaurant-eugene/booking-api/internal/model"
)

// Receipt-roll dimensions in millimetres.
const (
	ticketWidth = 80.0
	margin      = 4.0
	lineHeight  = 4.5
	qrSide      = 25.0
)

// TicketPDF lays out the printable ticket: black header band, client
// block, one line per dish with its snapshot price, the total and the
// centred QR code.  qrPNG is the pre-encoded token bitmap.
func TicketPDF(res *model.Reservation, client *model.Client, items []model.LineItem, qrPNG []byte) ([]byte, error) {
	height := float64(len(items))*lineHeight + 120
	if height < 150 {
		height = 150
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: ticketWidth, Ht: height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Header band.
	const headerHeight = 18.0
	pdf.SetFillColor(33, 33, 33)
	pdf.Rect(0, 0, ticketWidth, headerHeight, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(0, headerHeight/2-5)
	pdf.CellFormat(ticketWidth, 5, "Restaurant Eugene", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(ticketWidth, 5, fmt.Sprintf("Ticket #%d", res.ID), "", 1, "C", false, 0, "")

	y := headerHeight + 3
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Courier", "", 8)
	y = textLine(pdf, y, fmt.Sprintf("Client: %s", clientName(client)))
	y = textLine(pdf, y, fmt.Sprintf("Email:  %s", client.Email))
	if client.Phone != nil {
		y = textLine(pdf, y, fmt.Sprintf("Phone:  %s", *client.Phone))
	}
	if res.Kind == model.KindBooking {
		y = textLine(pdf, y, fmt.Sprintf("Table:  %s %s, %d guests", res.Slot.Date, res.Slot.Time, res.PartySize))
	}
	y += 1
	y = perforation(pdf, y)

	if len(items) > 0 {
		pdf.SetFont("Courier", "B", 8)
		y = textLine(pdf, y, "Items:")
		pdf.SetFont("Courier", "", 8)
		for _, li := range items {
			pdf.SetXY(margin, y)
			pdf.CellFormat(ticketWidth-2*margin-18, lineHeight,
				fmt.Sprintf("%s x%d", li.ItemName, li.Quantity), "", 0, "L", false, 0, "")
			pdf.CellFormat(18, lineHeight, dollars(li.LineTotalCents()), "", 1, "R", false, 0, "")
			y += lineHeight
		}
		y = perforation(pdf, y)
		pdf.SetFont("Courier", "B", 9)
		pdf.SetXY(margin, y)
		pdf.CellFormat(ticketWidth-2*margin-18, lineHeight, "Total:", "", 0, "L", false, 0, "")
		pdf.CellFormat(18, lineHeight, dollars(model.TotalCents(items)), "", 1, "R", false, 0, "")
		y += lineHeight + 2
	}

	// Centred QR code.
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("ticket-qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("ticket-qr", (ticketWidth-qrSide)/2, y, qrSide, qrSide, false, opts, 0, "")
	y += qrSide + 3

	pdf.SetFont("Courier", "I", 6)
	pdf.SetXY(0, y)
	pdf.CellFormat(ticketWidth, lineHeight, "Thank you for your reservation!", "", 1, "C", false, 0, "")
	pdf.CellFormat(ticketWidth, lineHeight, "Present the QR code on arrival.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func textLine(pdf *gofpdf.Fpdf, y float64, s string) float64 {
	pdf.SetXY(margin, y)
	pdf.CellFormat(ticketWidth-2*margin, lineHeight, s, "", 1, "L", false, 0, "")
	return y + lineHeight
}

func perforation(pdf *gofpdf.Fpdf, y float64) float64 {
	pdf.SetDashPattern([]float64{1, 1}, 0)
	pdf.Line(margin, y, ticketWidth-margin, y)
	pdf.SetDashPattern([]float64{}, 0)
	return y + lineHeight
}

func clientName(c *model.Client) string {
	if c.FirstName != nil {
		return *c.FirstName + " " + c.Name
	}
	return c.Name
}

// dollars formats cents as a dollar amount for the printed ticket.
func dollars(cents uint32) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
