package wa

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// EncodeQR рендерит строку привязки в PNG и отдаёт data URI для <img src>
func EncodeQR(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, qrSize)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return BuildDataURI(bytes.NewReader(png))
}

// BuildDataURI читает данные, определяет MIME по первым 512 байтам,
// уточняет формат через image.DecodeConfig и формирует Data URI (RFC 2397).
func BuildDataURI(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read data: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	mimeType := http.DetectContentType(data[:min(512, len(data))])

	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		mimeType = "image/" + format
	}

	b64 := base64.StdEncoding.EncodeToString(data)

	return fmt.Sprintf("data:%s;base64,%s", mimeType, b64), nil
}
