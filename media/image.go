package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotRaster is returned by Dimensions for content that is not a raster
// image it can decode.
var ErrNotRaster = errors.New("media: not a decodable raster image")

// Dimensions returns the pixel width and height of a raster image. Only the
// image header is decoded.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return 0, 0, ErrNotRaster
		}
		return 0, 0, fmt.Errorf("decoding image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
