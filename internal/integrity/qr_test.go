package integrity

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/evidenceledger/credstore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderQR(t *testing.T) {
	cert := models.Certificate{ID: "c1", QRCipher: "gAAAAABk-opaque-ciphertext"}

	for _, tt := range []struct {
		size, want int
	}{
		{0, DefaultQRSize},
		{128, 128},
	} {
		out, err := RenderQR(cert, tt.size)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, tt.want, img.Bounds().Dx())
		assert.Equal(t, tt.want, img.Bounds().Dy())
	}
}

func TestRenderQR_NoPayload(t *testing.T) {
	_, err := RenderQR(models.Certificate{ID: "c1"}, 0)
	require.ErrorIs(t, err, errl.ErrValidation)
}
