package render

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

type fontStyle int

const (
	styleRegular fontStyle = iota
	styleItalic
	styleBoldItalic
)

type faceKey struct {
	style fontStyle
	size  float64
}

// fontSet parses the Go fonts once and hands out faces sized for the
// canvas resolution.
type fontSet struct {
	dpi   float64
	fonts map[fontStyle]*truetype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

func newFontSet(dpi float64) (*fontSet, error) {
	sources := map[fontStyle][]byte{
		styleRegular:    goregular.TTF,
		styleItalic:     goitalic.TTF,
		styleBoldItalic: gobolditalic.TTF,
	}
	fs := &fontSet{
		dpi:   dpi,
		fonts: make(map[fontStyle]*truetype.Font, len(sources)),
		faces: make(map[faceKey]font.Face),
	}
	for style, ttf := range sources {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
		fs.fonts[style] = f
	}
	return fs, nil
}

// face returns a face of the given style at size points.
func (fs *fontSet) face(style fontStyle, size float64) font.Face {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	key := faceKey{style: style, size: size}
	if f, ok := fs.faces[key]; ok {
		return f
	}
	f := truetype.NewFace(fs.fonts[style], &truetype.Options{
		Size:    size,
		DPI:     fs.dpi,
		Hinting: font.HintingFull,
	})
	fs.faces[key] = f
	return f
}

// px converts points to pixels at the set's resolution.
func (fs *fontSet) px(points float64) float64 {
	return points * fs.dpi / 72
}
