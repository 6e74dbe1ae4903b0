// Package render holds the visual and delivery collaborators of the
// ticket pipeline: QR encoding, PDF layout and email.  The booking
// engine hands these only the token and reservation data; nothing in
// here touches reservation state.
package render

import qrcode "github.com/skip2/go-qrcode"

// qrSize is the pixel width of the generated QR image.
const qrSize = 256

// QR encodes ticket tokens as PNG images.  Implements
// booking.QREncoder.  The token goes in verbatim; scanners must treat
// it as an opaque string.
type QR struct{}

// Encode returns the token as a PNG QR code with medium error
// correction.
func (QR) Encode(token string) ([]byte, error) {
	return qrcode.Encode(token, qrcode.Medium, qrSize)
}
