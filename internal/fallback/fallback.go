// Package fallback serves canned diagrams when no generative provider is
// available or the provider fails.
package fallback

import (
	"strings"

	"github.com/yungbote/chalkboard/internal/diagram"
	"github.com/yungbote/chalkboard/internal/geom"
)

type topic struct {
	key   string
	build func() []diagram.Instruction
}

// Declaration order decides which topic wins when several match.
var topics = []topic{
	{"photosynthesis", photosynthesis},
	{"water cycle", waterCycle},
	{"solar system", solarSystem},
	{"pythagorean theorem", pythagorean},
	{"plant cell", plantCell},
}

// Topics lists the topics with a dedicated diagram.
func Topics() []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = t.key
	}
	return out
}

// Generate returns the canned diagram for the first topic contained in the
// lower-cased input, or a generic placeholder titled with the input.
func Generate(input string) diagram.Response {
	lower := strings.ToLower(input)
	for _, t := range topics {
		if strings.Contains(lower, t.key) {
			return diagram.Response{Instructions: number(t.build())}
		}
	}
	return diagram.Response{Instructions: number(generic(input))}
}

func number(ins []diagram.Instruction) []diagram.Instruction {
	for i := range ins {
		ins[i].Step = i + 1
	}
	return ins
}

func p(x, y float64) *geom.Point { return &geom.Point{X: x, Y: y} }

func sz(w, h float64) *geom.Size { return &geom.Size{Width: w, Height: h} }

func pts(xy ...float64) []geom.Point {
	out := make([]geom.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, geom.Point{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func text(x, y float64, s, color, narration string) diagram.Instruction {
	return diagram.Instruction{Kind: diagram.KindText, Position: p(x, y), Text: s, Color: color, Narration: narration}
}

func arrow(x1, y1, x2, y2 float64, color, narration string) diagram.Instruction {
	return diagram.Instruction{Kind: diagram.KindArrow, From: p(x1, y1), To: p(x2, y2), Color: color, Narration: narration}
}

func circle(x, y, w, h float64, color, narration string) diagram.Instruction {
	return diagram.Instruction{Kind: diagram.KindCircle, Position: p(x, y), Size: sz(w, h), Color: color, Narration: narration}
}

func rect(x, y, w, h float64, color, narration string) diagram.Instruction {
	return diagram.Instruction{Kind: diagram.KindRectangle, Position: p(x, y), Size: sz(w, h), Color: color, Narration: narration}
}

func photosynthesis() []diagram.Instruction {
	return []diagram.Instruction{
		text(300, 40, "PHOTOSYNTHESIS", "green", "Let's look at how plants make their own food through photosynthesis."),
		circle(60, 80, 100, 100, "yellow", "The sun provides the light energy that drives the whole process."),
		text(85, 120, "Sun", "orange", ""),
		rect(320, 220, 180, 120, "green", "This is a leaf, where photosynthesis happens inside the chloroplasts."),
		text(365, 265, "Leaf", "green", ""),
		arrow(160, 150, 320, 250, "orange", "Light energy travels from the sun to the leaf."),
		arrow(150, 320, 320, 300, "blue", "The roots bring water up to the leaf."),
		text(40, 320, "Water (H2O)", "blue", ""),
		arrow(620, 200, 500, 250, "grey", "Carbon dioxide enters the leaf from the air."),
		text(600, 170, "CO2", "grey", ""),
		arrow(500, 320, 640, 380, "light-blue", "Oxygen is released back into the air."),
		text(650, 380, "Oxygen (O2)", "light-blue", ""),
		arrow(410, 340, 410, 440, "violet", "And the plant stores the energy as glucose, a sugar."),
		text(360, 455, "Glucose", "violet", ""),
		{
			Kind:      diagram.KindSpeechBubble,
			Position:  p(40, 520),
			Text:      "6CO2 + 6H2O + light -> C6H12O6 + 6O2",
			Narration: "Put together, carbon dioxide and water plus light become glucose and oxygen.",
		},
	}
}

func waterCycle() []diagram.Instruction {
	return []diagram.Instruction{
		text(320, 30, "THE WATER CYCLE", "blue", "The water cycle describes how water moves around our planet."),
		{Kind: diagram.KindPath, Points: pts(40, 420, 200, 400, 360, 430, 520, 410, 700, 425), Color: "blue", Narration: "It starts with bodies of water like oceans and lakes."},
		text(300, 450, "Ocean", "blue", ""),
		circle(600, 60, 90, 90, "yellow", "The sun heats the water."),
		arrow(250, 400, 250, 180, "orange", "Heated water evaporates and rises as vapor."),
		text(130, 280, "Evaporation", "orange", ""),
		circle(220, 100, 200, 80, "grey", "As the vapor cools high up, it condenses into clouds."),
		text(260, 130, "Condensation", "grey", ""),
		arrow(420, 160, 520, 380, "light-blue", "When the clouds get heavy, water falls as precipitation."),
		text(480, 260, "Precipitation", "light-blue", ""),
		arrow(560, 400, 380, 420, "blue", "The water collects and flows back to the ocean, and the cycle repeats."),
		text(420, 380, "Collection", "blue", ""),
	}
}

func solarSystem() []diagram.Instruction {
	planets := []struct {
		name  string
		x     float64
		size  float64
		color string
	}{
		{"Mercury", 190, 12, "grey"},
		{"Venus", 240, 20, "orange"},
		{"Earth", 300, 22, "blue"},
		{"Mars", 360, 16, "red"},
		{"Jupiter", 440, 56, "orange"},
		{"Saturn", 540, 46, "yellow"},
		{"Uranus", 630, 30, "light-blue"},
		{"Neptune", 700, 28, "blue"},
	}
	out := []diagram.Instruction{
		text(300, 30, "THE SOLAR SYSTEM", "violet", "Our solar system is the sun and everything that orbits it."),
		circle(20, 200, 130, 130, "yellow", "At the center is the sun, a star that holds everything together with gravity."),
		text(60, 255, "Sun", "orange", ""),
	}
	for i, pl := range planets {
		ins := circle(pl.x, 265-pl.size/2, pl.size, pl.size, pl.color, "")
		if i == 0 {
			ins.Narration = "Eight planets orbit the sun, starting with the small rocky inner planets."
		}
		if pl.name == "Jupiter" {
			ins.Narration = "Beyond Mars are the gas giants, starting with Jupiter, the largest planet."
		}
		out = append(out, ins, text(pl.x, 310, pl.name, pl.color, ""))
	}
	return append(out,
		diagram.Instruction{Kind: diagram.KindHighlight, Points: pts(180, 230, 380, 230, 380, 300, 180, 300), Narration: "The four inner planets are rocky."},
		diagram.Instruction{Kind: diagram.KindHighlight, Points: pts(410, 220, 740, 220, 740, 305, 410, 305), Color: "light-blue", Opacity: opacity(0.25), Narration: "The four outer planets are giants made mostly of gas and ice."},
	)
}

func opacity(v float64) *float64 { return &v }

func pythagorean() []diagram.Instruction {
	return []diagram.Instruction{
		text(240, 30, "PYTHAGOREAN THEOREM", "violet", "The Pythagorean theorem relates the sides of a right triangle."),
		{Kind: diagram.KindTriangle, Points: pts(200, 400, 500, 400, 200, 160), Color: "blue", Narration: "Here is a right triangle."},
		rect(200, 380, 20, 20, "grey", "The small square marks the right angle."),
		text(340, 410, "a", "red", "The two shorter sides are called legs, a and b."),
		text(175, 280, "b", "red", ""),
		text(360, 260, "c", "green", "The longest side, opposite the right angle, is the hypotenuse c."),
		{Kind: diagram.KindSpeechBubble, Position: p(520, 140), Text: "a² + b² = c²", Narration: "The theorem says a squared plus b squared equals c squared."},
		{Kind: diagram.KindCodeBlock, Position: p(520, 240), Text: "3² + 4² = 9 + 16 = 25 = 5²", Narration: "For example, a three four five triangle: nine plus sixteen is twenty five."},
	}
}

func plantCell() []diagram.Instruction {
	return []diagram.Instruction{
		text(300, 30, "PLANT CELL", "green", "Let's explore the parts of a plant cell."),
		rect(150, 80, 460, 360, "green", "The cell wall is a rigid outer layer that gives the plant its structure."),
		rect(165, 95, 430, 330, "light-green", "Just inside is the cell membrane, which controls what enters and leaves."),
		circle(200, 140, 110, 110, "violet", "The nucleus holds the cell's genetic material."),
		text(225, 185, "Nucleus", "violet", ""),
		rect(360, 160, 180, 190, "light-blue", "The large central vacuole stores water and keeps the cell firm."),
		text(395, 245, "Vacuole", "blue", ""),
		circle(220, 320, 70, 40, "green", "Chloroplasts capture sunlight for photosynthesis."),
		circle(300, 360, 70, 40, "green", ""),
		text(200, 450, "Chloroplasts", "green", ""),
		arrow(640, 120, 600, 120, "grey", "The labels on the right point out the cell wall."),
		text(650, 105, "Cell wall", "grey", ""),
	}
}

func generic(input string) []diagram.Instruction {
	title := strings.ToUpper(strings.TrimSpace(input))
	return []diagram.Instruction{
		text(250, 40, title, "blue", "Here is a simple overview of "+strings.TrimSpace(input)+"."),
		circle(300, 160, 200, 120, "violet", "At the center is the main idea."),
		text(345, 205, "Main idea", "violet", ""),
		arrow(300, 220, 150, 320, "grey", "It connects to a few key parts."),
		rect(60, 320, 160, 70, "green", ""),
		text(80, 345, "Key part 1", "green", ""),
		arrow(500, 220, 650, 320, "grey", ""),
		rect(580, 320, 160, 70, "orange", ""),
		text(600, 345, "Key part 2", "orange", ""),
		text(200, 450, "Try an AI provider for a detailed diagram.", "grey", "With an AI provider configured, you would see a detailed diagram here."),
	}
}
