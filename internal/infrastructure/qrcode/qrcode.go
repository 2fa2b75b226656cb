package qrcode

import (
	"encoding/base64"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"

	"github.com/janhq/surprise-api/internal/config"
)

const dataURLPrefix = "data:image/png;base64,"

// Options controls QR rendering.
type Options struct {
	// Size is the width and height of the PNG in pixels.
	Size int
	// Margin toggles the quiet zone; zero renders the code edge to edge.
	Margin int
	Level  goqrcode.RecoveryLevel
}

// DefaultOptions matches the share images handed to uploaders.
func DefaultOptions() Options {
	return Options{Size: 200, Margin: 2, Level: goqrcode.Low}
}

// Encode renders content as a PNG QR code.
func Encode(content string, opts Options) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr content is empty")
	}
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Margin < 0 {
		opts.Margin = 0
	}

	code, err := goqrcode.New(content, opts.Level)
	if err != nil {
		return nil, fmt.Errorf("build qr code: %w", err)
	}
	if opts.Margin == 0 {
		code.DisableBorder = true
	}

	png, err := code.PNG(opts.Size)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

// DataURL wraps PNG bytes in a data URL.
func DataURL(png []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png)
}

// Generator renders share links with fixed options.
type Generator struct {
	opts Options
}

func NewGenerator(cfg *config.Config) *Generator {
	opts := DefaultOptions()
	if cfg.QRCodeSize > 0 {
		opts.Size = cfg.QRCodeSize
	}
	if cfg.QRCodeMargin >= 0 {
		opts.Margin = cfg.QRCodeMargin
	}
	return &Generator{opts: opts}
}

// DataURL encodes content and returns it as an inline PNG.
func (g *Generator) DataURL(content string) (string, error) {
	png, err := Encode(content, g.opts)
	if err != nil {
		return "", err
	}
	return DataURL(png), nil
}
