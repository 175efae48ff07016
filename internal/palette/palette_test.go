package palette

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{"#FF0000", Red},
		{"red", Red},
		{"RED", Red},
		{" Red ", Red},
		{"#ff0000", Red},
		{"f00", Red},
		{"gray", Grey},
		{"light blue", LightBlue},
		{"purple", Violet},
		{"", Default},
		{"not-a-color", Default},
		{"#12", Default},
		{"#GGGGGG", Default},
		{"#FEFEFE", White},
		{"#0A0A0A", Black},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeAlwaysInPalette(t *testing.T) {
	inputs := []string{"#123456", "#abcdef", "chartreuse", "#7f7f7f", "lime", "  "}
	for _, in := range inputs {
		if c := Normalize(in); !c.Valid() {
			t.Errorf("Normalize(%q)=%q is outside the palette", in, c)
		}
	}
}

func TestNRGBAFallsBackToDefault(t *testing.T) {
	if Color("mauve").NRGBA() != Default.NRGBA() {
		t.Fatalf("expected default render color for unknown palette value")
	}
}
