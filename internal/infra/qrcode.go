package infra

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRImageSize matches the 300px image the scanner page and ticket PDF expect.
const QRImageSize = 300

// RenderQRPNG encodes a check-in payload into a PNG image. High error
// correction so a slightly damaged print or dim phone screen still scans.
func RenderQRPNG(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.High, QRImageSize)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encode payload: %w", err)
	}
	return png, nil
}
