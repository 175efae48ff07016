// Package diagram holds the drawing instruction model produced by the
// generation endpoint and consumed by playback.
package diagram

import (
	"strings"
	"time"

	"github.com/yungbote/chalkboard/internal/geom"
)

type Kind string

const (
	KindText         Kind = "drawText"
	KindArrow        Kind = "drawArrow"
	KindCircle       Kind = "drawCircle"
	KindRectangle    Kind = "drawRectangle"
	KindTriangle     Kind = "drawTriangle"
	KindLine         Kind = "drawLine"
	KindPath         Kind = "drawPath"
	KindHighlight    Kind = "drawHighlight"
	KindImage        Kind = "showImage"
	KindCodeBlock    Kind = "drawCodeBlock"
	KindSpeechBubble Kind = "drawSpeechBubble"
)

var Kinds = []Kind{
	KindText, KindArrow, KindCircle, KindRectangle, KindTriangle, KindLine,
	KindPath, KindHighlight, KindImage, KindCodeBlock, KindSpeechBubble,
}

var kindAliases = map[string]Kind{
	"text":         KindText,
	"label":        KindText,
	"arrow":        KindArrow,
	"circle":       KindCircle,
	"ellipse":      KindCircle,
	"rectangle":    KindRectangle,
	"rect":         KindRectangle,
	"box":          KindRectangle,
	"triangle":     KindTriangle,
	"polygon":      KindTriangle,
	"line":         KindLine,
	"path":         KindPath,
	"highlight":    KindHighlight,
	"image":        KindImage,
	"codeblock":    KindCodeBlock,
	"code":         KindCodeBlock,
	"speechbubble": KindSpeechBubble,
	"bubble":       KindSpeechBubble,
}

// ParseKind resolves a kind name case-insensitively, accepting both the
// canonical names and short aliases ("circle", "rect", "code").
func ParseKind(s string) (Kind, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", false
	}
	for _, k := range Kinds {
		if strings.ToLower(string(k)) == key {
			return k, true
		}
	}
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	key = strings.TrimPrefix(key, "draw")
	key = strings.TrimPrefix(key, "show")
	k, ok := kindAliases[key]
	return k, ok
}

func (k Kind) TextLike() bool {
	return k == KindText || k == KindCodeBlock || k == KindSpeechBubble
}

// Instruction is one declarative drawing command. Variant-specific fields are
// only meaningful for the kinds that use them; pointer fields are nil when the
// value was absent.
type Instruction struct {
	Kind Kind

	ID        string
	Step      int
	Color     string
	Opacity   *float64
	Layer     int
	Duration  time.Duration
	Visible   *bool
	Narration string

	Text     string
	Position *geom.Point
	Size     *geom.Size
	From     *geom.Point
	To       *geom.Point
	Points   []geom.Point
	URL      string
}

func (in Instruction) Hidden() bool {
	return in.Visible != nil && !*in.Visible
}

// Response is the generation endpoint's output. Playback uses Instructions in
// slice order; Step is informational.
type Response struct {
	Narration    string
	Instructions []Instruction
}
