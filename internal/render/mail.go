package render

import (
	"bytes"
	"fmt"
	"io"

	gomail "gopkg.in/gomail.v2"

	"github.com/restaurant-eugene/booking-api/internal/model"
)

// Mailer delivers rendered tickets over SMTP.  A zero Host disables
// sending; callers check Enabled before rendering attachments.
type Mailer struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Enabled reports whether SMTP delivery is configured.
func (m Mailer) Enabled() bool { return m.Host != "" }

// SendTicket emails the PDF ticket to the reservation's client.
func (m Mailer) SendTicket(res *model.Reservation, client *model.Client, pdfBytes []byte) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", client.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Your reservation ticket #%d", res.ID))

	body := fmt.Sprintf("Hello %s,\n\nThank you for your reservation at Restaurant Eugene.\n", clientName(client))
	if res.Kind == model.KindBooking {
		body += fmt.Sprintf("\nDate: %s\nTime: %s\nGuests: %d\n", res.Slot.Date, res.Slot.Time, res.PartySize)
	}
	body += "\nYour ticket with its QR code is attached. Present it on arrival.\n\nSee you soon!\n"
	msg.SetBody("text/plain", body)

	attachment := fmt.Sprintf("ticket_%d.pdf", res.ID)
	msg.Attach(attachment, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(pdfBytes))
		return err
	}))

	d := gomail.NewDialer(m.Host, m.Port, m.User, m.Pass)
	return d.DialAndSend(msg)
}
