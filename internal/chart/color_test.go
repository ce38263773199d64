package chart

import "testing"

func TestParseColor(t *testing.T) {
	c, err := ParseColor("rgba(54, 162, 235, 1)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.R != 54 || c.G != 162 || c.B != 235 || c.A != 1 {
		t.Fatalf("unexpected %+v", c)
	}
	if got := c.WithAlpha(FillAlpha).String(); got != "rgba(54, 162, 235, 0.2)" {
		t.Fatalf("fill = %q", got)
	}
	if d := c.Drawing(); d.R != 54 || d.A != 255 {
		t.Fatalf("drawing = %+v", d)
	}

	hex, err := ParseColor("#ff6384")
	if err != nil || hex.R != 255 || hex.G != 99 || hex.B != 132 {
		t.Fatalf("hex = %+v %v", hex, err)
	}

	for _, bad := range []string{"", "red", "rgba(1, 2, 3)", "rgb(256, 0, 0)", "rgba(1, 2, 3, 2)"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestFillOfUnparseable(t *testing.T) {
	if got := fillOf("tomato"); got != "tomato" {
		t.Fatalf("got %q", got)
	}
}
