package diagram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/chalkboard/internal/geom"
)

var (
	ErrMalformed      = errors.New("diagram: malformed document")
	ErrNoInstructions = errors.New("diagram: no instructions")
)

// Issue records an instruction dropped while parsing.
type Issue struct {
	Index  int
	Reason string
}

func (i Issue) String() string { return fmt.Sprintf("instruction %d: %s", i.Index, i.Reason) }

// ParseResponse decodes provider or endpoint output. Individual instructions
// that fail to decode are dropped and reported as issues; only a document
// without an instruction list is an error.
func ParseResponse(raw []byte) (Response, []Issue, error) {
	raw = []byte(stripFences(string(raw)))
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Response{}, nil, ErrMalformed
	}

	var (
		narration string
		items     []json.RawMessage
	)
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Response{}, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	case '{':
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return Response{}, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		list, ok := doc["instructions"]
		if !ok || isNull(list) {
			return Response{}, nil, ErrNoInstructions
		}
		if err := json.Unmarshal(list, &items); err != nil {
			return Response{}, nil, fmt.Errorf("%w: instructions: %v", ErrMalformed, err)
		}
		if n, ok := doc["narration"]; ok {
			narration, _ = decodeString(n)
		}
	default:
		return Response{}, nil, ErrMalformed
	}

	resp := Response{Narration: strings.TrimSpace(narration), Instructions: make([]Instruction, 0, len(items))}
	var issues []Issue
	for i, item := range items {
		ins, err := decodeInstruction(item)
		if err != nil {
			issues = append(issues, Issue{Index: i, Reason: err.Error()})
			continue
		}
		resp.Instructions = append(resp.Instructions, ins)
	}
	return resp, issues, nil
}

func (in *Instruction) UnmarshalJSON(b []byte) error {
	v, err := decodeInstruction(b)
	if err != nil {
		return err
	}
	*in = v
	return nil
}

func (r *Response) UnmarshalJSON(b []byte) error {
	v, _, err := ParseResponse(b)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func decodeInstruction(raw json.RawMessage) (Instruction, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Instruction{}, errors.New("not an object")
	}
	d := &fieldDecoder{fields: fields}

	name := d.str("type", "kind", "action")
	kind, ok := ParseKind(name)
	if !ok {
		if name == "" {
			return Instruction{}, errors.New("missing type")
		}
		return Instruction{}, fmt.Errorf("unknown type %q", name)
	}

	in := Instruction{Kind: kind}
	in.ID = d.str("id")
	in.Step = int(d.num("step"))
	in.Color = d.str("color", "colour", "stroke")
	in.Opacity = d.optNum("opacity")
	in.Layer = int(d.num("layer", "zIndex"))
	if ms := d.num("duration"); ms > 0 {
		in.Duration = time.Duration(ms * float64(time.Millisecond))
	}
	in.Visible = d.optBool("visible")
	in.Narration = d.str("narration", "speech")

	in.Text = d.str("text", "content", "code", "label")
	in.URL = d.str("url", "src", "imageUrl")
	in.Position = d.point("position", "pos", "at")
	if in.Position == nil {
		in.Position = d.flatPoint("x", "y")
	}
	in.Size = d.size("size", "dimensions")
	if in.Size == nil {
		in.Size = d.flatSize()
	}
	in.From = d.point("from", "start")
	in.To = d.point("to", "end")
	in.Points = d.points("points", "vertices")

	if d.err != nil {
		return Instruction{}, d.err
	}
	return in, nil
}

// fieldDecoder reads loosely-typed fields, keeping the first error.
type fieldDecoder struct {
	fields map[string]json.RawMessage
	err    error
}

func (d *fieldDecoder) lookup(keys ...string) (string, json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := d.fields[k]; ok && !isNull(v) {
			return k, v, true
		}
	}
	return "", nil, false
}

func (d *fieldDecoder) fail(key string, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("field %q: %v", key, err)
	}
}

func (d *fieldDecoder) str(keys ...string) string {
	k, raw, ok := d.lookup(keys...)
	if !ok {
		return ""
	}
	s, err := decodeString(raw)
	if err != nil {
		d.fail(k, err)
	}
	return strings.TrimSpace(s)
}

func (d *fieldDecoder) num(keys ...string) float64 {
	k, raw, ok := d.lookup(keys...)
	if !ok {
		return 0
	}
	f, err := decodeNumber(raw)
	if err != nil {
		d.fail(k, err)
	}
	return f
}

func (d *fieldDecoder) optNum(keys ...string) *float64 {
	k, raw, ok := d.lookup(keys...)
	if !ok {
		return nil
	}
	f, err := decodeNumber(raw)
	if err != nil {
		d.fail(k, err)
		return nil
	}
	return &f
}

func (d *fieldDecoder) optBool(keys ...string) *bool {
	k, raw, ok := d.lookup(keys...)
	if !ok {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b
	}
	s, err := decodeString(raw)
	if err == nil {
		if v, perr := strconv.ParseBool(strings.TrimSpace(s)); perr == nil {
			return &v
		}
	}
	d.fail(k, errors.New("expected boolean"))
	return nil
}

func (d *fieldDecoder) point(keys ...string) *geom.Point {
	k, raw, ok := d.lookup(keys...)
	if !ok {
		return nil
	}
	p, err := decodePoint(raw)
	if err != nil {
		d.fail(k, err)
		return nil
	}
	return &p
}

func (d *fieldDecoder) flatPoint(xKey, yKey string) *geom.Point {
	if _, _, ok := d.lookup(xKey); !ok {
		return nil
	}
	if _, _, ok := d.lookup(yKey); !ok {
		return nil
	}
	p := geom.Point{X: d.num(xKey), Y: d.num(yKey)}
	return &p
}

func (d *fieldDecoder) size(keys ...string) *geom.Size {
	k, raw, ok := d.lookup(keys...)
	if !ok {
		return nil
	}
	s, err := decodeSize(raw)
	if err != nil {
		d.fail(k, err)
		return nil
	}
	return &s
}

func (d *fieldDecoder) flatSize() *geom.Size {
	_, _, hasW := d.lookup("width", "w")
	_, _, hasH := d.lookup("height", "h")
	if !hasW || !hasH {
		return nil
	}
	s := geom.Size{Width: d.num("width", "w"), Height: d.num("height", "h")}
	return &s
}

func (d *fieldDecoder) points(keys ...string) []geom.Point {
	k, raw, ok := d.lookup(keys...)
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.fail(k, errors.New("expected array of points"))
		return nil
	}
	out := make([]geom.Point, 0, len(items))
	for i, item := range items {
		p, err := decodePoint(item)
		if err != nil {
			d.fail(k, fmt.Errorf("point %d: %v", i, err))
			return nil
		}
		out = append(out, p)
	}
	return out
}

func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", errors.New("expected string")
}

func decodeNumber(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if serr := json.Unmarshal(raw, &s); serr != nil {
			return 0, errors.New("expected number")
		}
		parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return 0, errors.New("expected number")
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("number is not finite")
	}
	return f, nil
}

func decodePoint(raw json.RawMessage) (geom.Point, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) < 2 {
			return geom.Point{}, errors.New("point needs two coordinates")
		}
		x, err := decodeNumber(arr[0])
		if err != nil {
			return geom.Point{}, err
		}
		y, err := decodeNumber(arr[1])
		if err != nil {
			return geom.Point{}, err
		}
		return geom.Point{X: x, Y: y}, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return geom.Point{}, errors.New("expected [x, y] or {x, y}")
	}
	xr, okX := obj["x"]
	yr, okY := obj["y"]
	if !okX || !okY {
		return geom.Point{}, errors.New("point needs x and y")
	}
	x, err := decodeNumber(xr)
	if err != nil {
		return geom.Point{}, err
	}
	y, err := decodeNumber(yr)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: x, Y: y}, nil
}

func decodeSize(raw json.RawMessage) (geom.Size, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) < 2 {
			return geom.Size{}, errors.New("size needs width and height")
		}
		w, err := decodeNumber(arr[0])
		if err != nil {
			return geom.Size{}, err
		}
		h, err := decodeNumber(arr[1])
		if err != nil {
			return geom.Size{}, err
		}
		return geom.Size{Width: w, Height: h}, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return geom.Size{}, errors.New("expected {width, height} or [w, h]")
	}
	wr, okW := obj["width"]
	if !okW {
		wr, okW = obj["w"]
	}
	hr, okH := obj["height"]
	if !okH {
		hr, okH = obj["h"]
	}
	if !okW || !okH {
		return geom.Size{}, errors.New("size needs width and height")
	}
	w, err := decodeNumber(wr)
	if err != nil {
		return geom.Size{}, err
	}
	h, err := decodeNumber(hr)
	if err != nil {
		return geom.Size{}, err
	}
	return geom.Size{Width: w, Height: h}, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// stripFences removes a surrounding ```json ... ``` block.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[firstNL+1:]
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
