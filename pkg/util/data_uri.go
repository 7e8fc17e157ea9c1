package util

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrInvalidDataURI       = errors.New("invalid data URI")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrImageContentMismatch = errors.New("image content does not match declared type")
	ErrImageTooLarge        = errors.New("image exceeds maximum upload size")
)

// allowedImageTypes maps accepted image MIME types to the file extension they are stored with.
var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodedImage is a validated image payload.
type DecodedImage struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeImageDataURI decodes a "data:image/<subtype>;base64,<payload>" string.
// Both the declared type and the sniffed content type must be allowed images
// and the decoded payload may not exceed maxBytes (no limit when maxBytes <= 0).
func DecodeImageDataURI(uri string, maxBytes int64) (*DecodedImage, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidDataURI
	}

	declared := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"))
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}
	ext, ok := allowedImageTypes[declared]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImageType, declared)
	}

	// Reject before decoding when the encoded payload alone is already too big.
	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+2 {
		return nil, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidDataURI
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrImageTooLarge
	}

	sniffed := mimetype.Detect(data)
	if _, allowed := allowedImageTypes[sniffed.String()]; !allowed || !sniffed.Is(declared) {
		return nil, fmt.Errorf("%w: declared %s, detected %s", ErrImageContentMismatch, declared, sniffed.String())
	}

	return &DecodedImage{
		Data:        data,
		ContentType: declared,
		Extension:   ext,
	}, nil
}
