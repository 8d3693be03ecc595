// Package synthetic renders deterministic placeholder images so the pipeline
// can run locally without model credentials.
package synthetic

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"strconv"

	"github.com/rs/zerolog"

	"petfood/internal/generation"
)

// Backend implements generation.Backend without any remote call. The same
// prompt and seed always produce the same bytes.
type Backend struct {
	logger zerolog.Logger
}

// New returns a synthetic backend.
func New(logger zerolog.Logger) *Backend {
	return &Backend{logger: logger}
}

func (b *Backend) Invoke(ctx context.Context, req *generation.Request) (*generation.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := req.ImageGenerationConfig
	count := cfg.NumberOfImages
	if count <= 0 {
		count = 1
	}
	images := make([]string, 0, count)
	for i := 0; i < count; i++ {
		seed := deterministicSeed(req.TextToImageParams.Text, cfg.Seed, i)
		data, err := render(cfg.Width, cfg.Height, seed)
		if err != nil {
			return nil, fmt.Errorf("synthetic: render image: %w", err)
		}
		images = append(images, base64.StdEncoding.EncodeToString(data))
	}
	b.logger.Debug().Int("images", len(images)).Int("seed", cfg.Seed).Msg("synthetic: rendered placeholder images")
	return &generation.Response{Images: images}, nil
}

// render draws a striped plate in colors derived from seed.
func render(width, height int, seed string) ([]byte, error) {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 512
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{colorFromSeed(seed, 0)}, image.Point{}, draw.Src)

	accent := colorFromSeed(seed, 1)
	stripe := max(16, height/12)
	for y := 0; y < height; y += stripe * 2 {
		draw.Draw(img, image.Rect(0, y, width, min(height, y+stripe)), &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	// bowl
	bowl := colorFromSeed(seed, 2)
	cx, cy, r := width/2, height/2, min(width, height)/3
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, bowl)
			}
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if len(seed) < 6 {
		seed = "000000"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{R: hexByte(segment[0:2]), G: hexByte(segment[2:4]), B: hexByte(segment[4:6]), A: 255}
}

func hexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(fmt.Sprintf("%v", part)))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:18]
}
