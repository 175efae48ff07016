package generation

import (
	"fmt"
	"strings"

	"github.com/yungbote/chalkboard/internal/diagram"
	"github.com/yungbote/chalkboard/internal/palette"
)

const SchemaName = "diagram_response"

func systemPrompt() string {
	kinds := make([]string, len(diagram.Kinds))
	for i, k := range diagram.Kinds {
		kinds[i] = string(k)
	}
	colors := make([]string, 0, len(palette.All()))
	for _, c := range palette.All() {
		colors = append(colors, string(c))
	}
	return strings.TrimSpace(fmt.Sprintf(`
You are an instructor drawing on a whiteboard. Explain the requested topic with a
short diagram drawn step by step.

Reply with JSON only: {"narration": string, "instructions": [instruction, ...]}.
Each instruction has a "type" (one of %s) and optional "color" (one of %s),
"opacity" (0..1), "layer", "step", and a "narration" sentence spoken before
the step is drawn.

Geometry, on a canvas roughly 800 wide and 600 tall with y growing downward:
- drawText, drawCodeBlock, drawSpeechBubble: "text" and "position" {"x","y"}.
- drawArrow: "from" [x,y] and "to" [x,y].
- drawLine, drawPath: "points" [[x,y], ...] with at least two points.
- drawTriangle, drawHighlight: "points" with at least three points.
- drawCircle, drawRectangle: "position" and "size" {"width","height"}.
- showImage: "url", "position" and "size".

Use 8 to 20 instructions. Keep labels short. Narrate the key steps only.
`, strings.Join(kinds, ", "), strings.Join(colors, ", ")))
}

func userPrompt(topic string) string {
	return "Topic: " + topic
}

// Schema is the structured-output schema sent to providers that support it.
// Strict mode requires every property, so optional ones are nullable.
func Schema() map[string]any {
	num := map[string]any{"type": []any{"number", "null"}}
	str := map[string]any{"type": []any{"string", "null"}}
	pair := map[string]any{
		"type":     []any{"array", "null"},
		"items":    map[string]any{"type": "number"},
		"minItems": 2,
		"maxItems": 2,
	}
	xy := map[string]any{
		"type":                 []any{"object", "null"},
		"properties":           map[string]any{"x": map[string]any{"type": "number"}, "y": map[string]any{"type": "number"}},
		"required":             []any{"x", "y"},
		"additionalProperties": false,
	}
	size := map[string]any{
		"type":                 []any{"object", "null"},
		"properties":           map[string]any{"width": map[string]any{"type": "number"}, "height": map[string]any{"type": "number"}},
		"required":             []any{"width", "height"},
		"additionalProperties": false,
	}
	kinds := make([]any, len(diagram.Kinds))
	for i, k := range diagram.Kinds {
		kinds[i] = string(k)
	}
	props := map[string]any{
		"type":      map[string]any{"type": "string", "enum": kinds},
		"step":      num,
		"color":     str,
		"opacity":   num,
		"layer":     num,
		"narration": str,
		"text":      str,
		"url":       str,
		"position":  xy,
		"size":      size,
		"from":      pair,
		"to":        pair,
		"points":    map[string]any{"type": []any{"array", "null"}, "items": map[string]any{"type": "array", "items": map[string]any{"type": "number"}, "minItems": 2, "maxItems": 2}},
	}
	required := make([]any, 0, len(props))
	for _, k := range []string{"type", "step", "color", "opacity", "layer", "narration", "text", "url", "position", "size", "from", "to", "points"} {
		required = append(required, k)
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"narration": map[string]any{"type": "string"},
			"instructions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"properties":           props,
					"required":             required,
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"narration", "instructions"},
		"additionalProperties": false,
	}
}
