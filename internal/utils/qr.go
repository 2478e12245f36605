package utils

import (
	qrcode "github.com/skip2/go-qrcode"
)

// QRPNG renders content as a QR code PNG of the given size in pixels.
func QRPNG(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
