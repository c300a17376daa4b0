package integrity

import (
	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/evidenceledger/credstore/internal/models"
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the edge length in pixels used when RenderQR gets a
// non-positive size.
const DefaultQRSize = 256

// RenderQR encodes the certificate's stored QR ciphertext as a PNG.
func RenderQR(cert models.Certificate, size int) ([]byte, error) {
	if cert.QRCipher == "" {
		return nil, errl.Validation("certificate %s has no QR payload", cert.ID)
	}
	if size <= 0 {
		size = DefaultQRSize
	}

	png, err := qrcode.Encode(cert.QRCipher, qrcode.Medium, size)
	if err != nil {
		return nil, errl.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
