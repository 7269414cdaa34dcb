// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Registered decoders for the formats uploads are served in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned when fetched bytes do not decode as an image,
// typically an HTML error page served with status 200.
var ErrNotImage = errors.New("payload is not an image")

// VerifyImage checks that data starts with a decodable image header and
// returns the detected format.
func VerifyImage(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return format, nil
}
