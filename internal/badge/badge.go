package badge

import (
	"fmt"
	"image"

	qrcode "github.com/skip2/go-qrcode"
)

// Size is the edge length the QR is generated at; the renderer scales it
// down to a tenth of the frame height.
const Size = 256

// Image renders a QR code pointing at the license URL. The result is
// composed onto every frame as a corner overlay.
func Image(url string) (image.Image, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("генерация qr: %w", err)
	}
	return q.Image(Size), nil
}
