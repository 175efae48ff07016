package diagram

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/chalkboard/internal/geom"
)

func TestParseResponseTolerantShapes(t *testing.T) {
	raw := []byte("```json\n" + `{
		"narration": " Let's draw. ",
		"instructions": [
			{"type": "drawText", "text": "Hello", "position": {"x": 10, "y": "20"}, "color": "red"},
			{"kind": "drawArrow", "from": [0, 0], "to": {"x": 100, "y": 50}},
			{"action": "circle", "x": 5, "y": 6, "width": 30, "height": 40},
			{"type": "drawRectangle", "position": [1, 2], "size": {"w": 3, "h": 4}},
			{"type": "drawLine", "points": [[0,0],[1,1],{"x":2,"y":2}], "duration": 1500, "visible": "false"}
		]
	}` + "\n```")

	resp, issues, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if resp.Narration != "Let's draw." {
		t.Fatalf("narration=%q", resp.Narration)
	}
	hidden := false
	want := []Instruction{
		{Kind: KindText, Text: "Hello", Color: "red", Position: &geom.Point{X: 10, Y: 20}},
		{Kind: KindArrow, From: &geom.Point{}, To: &geom.Point{X: 100, Y: 50}},
		{Kind: KindCircle, Position: &geom.Point{X: 5, Y: 6}, Size: &geom.Size{Width: 30, Height: 40}},
		{Kind: KindRectangle, Position: &geom.Point{X: 1, Y: 2}, Size: &geom.Size{Width: 3, Height: 4}},
		{Kind: KindLine, Points: []geom.Point{{}, {X: 1, Y: 1}, {X: 2, Y: 2}}, Duration: 1500 * time.Millisecond, Visible: &hidden},
	}
	if diff := cmp.Diff(want, resp.Instructions); diff != "" {
		t.Fatalf("instructions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResponseSkipsBadInstructions(t *testing.T) {
	raw := []byte(`{"instructions": [
		{"type": "drawSparkles"},
		{"text": "no type"},
		{"type": "drawText", "position": {"x": "abc", "y": 1}},
		{"type": "drawCircle", "points": [[0,0],[1]]},
		"not an object",
		{"type": "drawText", "text": "ok", "position": [0, 0]}
	]}`)

	resp, issues, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(resp.Instructions) != 1 || resp.Instructions[0].Text != "ok" {
		t.Fatalf("instructions=%+v", resp.Instructions)
	}
	var idx []int
	for _, is := range issues {
		idx = append(idx, is.Index)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, idx); diff != "" {
		t.Fatalf("issue indexes (-want +got):\n%s", diff)
	}
}

func TestParseResponseDocumentErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", ErrMalformed},
		{"prose", "Sure! Here is a diagram.", ErrMalformed},
		{"truncated", `{"instructions": [`, ErrMalformed},
		{"missing list", `{"narration": "hi"}`, ErrNoInstructions},
		{"null list", `{"instructions": null}`, ErrNoInstructions},
		{"list not array", `{"instructions": {"type": "drawText"}}`, ErrMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseResponse([]byte(tc.raw))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want %v", err, tc.want)
			}
		})
	}
}

func TestParseResponseBareArray(t *testing.T) {
	resp, _, err := ParseResponse([]byte(`[{"type":"drawText","text":"a","position":[1,1]}]`))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(resp.Instructions) != 1 || resp.Narration != "" {
		t.Fatalf("resp=%+v", resp)
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"drawText":           KindText,
		"DRAWTEXT":           KindText,
		"showImage":          KindImage,
		"draw_speech_bubble": KindSpeechBubble,
		"code":               KindCodeBlock,
		"rect":               KindRectangle,
	}
	for in, want := range cases {
		got, ok := ParseKind(in)
		if !ok || got != want {
			t.Errorf("ParseKind(%q)=%q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseKind("sparkle"); ok {
		t.Fatal("unknown kind accepted")
	}
}

func TestMarshalCanonical(t *testing.T) {
	op := 0.5
	resp := Response{Instructions: []Instruction{{
		Kind:     KindArrow,
		Opacity:  &op,
		From:     &geom.Point{X: 1, Y: 2},
		To:       &geom.Point{X: 3, Y: 4},
		Duration: 2 * time.Second,
	}}}
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"instructions":[{"type":"drawArrow","opacity":0.5,"duration":2000,"from":[1,2],"to":[3,4]}]}`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}

	var back Response
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(resp, back); diff != "" {
		t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalEmptyResponse(t *testing.T) {
	b, err := json.Marshal(Response{})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"instructions":[]}` {
		t.Fatalf("got %s", b)
	}
}
