package raster

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/yungbote/chalkboard/internal/canvas"
)

// textSize is the page-space em size; canvas.EstimateText assumes it.
const textSize = 22.0

type fontSet struct {
	sans *truetype.Font
	mono *truetype.Font
}

func loadFonts(sansPath, monoPath string) (fontSet, error) {
	var fs fontSet
	var err error
	if sansPath != "" {
		if fs.sans, err = parseFont(sansPath); err != nil {
			return fs, err
		}
	}
	if monoPath != "" {
		if fs.mono, err = parseFont(monoPath); err != nil {
			return fs, err
		}
	}
	return fs, nil
}

func parseFont(path string) (*truetype.Font, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	f, err := truetype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF %s: %w", path, err)
	}
	return f, nil
}

// face returns a face for f at the current render scale. Without TrueType
// files the fixed-size bitmap face is used for everything.
func (fs fontSet) face(f canvas.Font, scale float64) font.Face {
	ttf := fs.sans
	if f == canvas.FontMono && fs.mono != nil {
		ttf = fs.mono
	}
	if ttf == nil {
		return basicfont.Face7x13
	}
	size := textSize * scale
	if size < 4 {
		size = 4
	}
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
