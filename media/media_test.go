package media

import (
	"errors"
	"testing"
)

func TestDefaultCatalogPrintableDots(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	res, err := c.LookupResolution("")
	if err != nil {
		t.Fatalf("default resolution: %v", err)
	}
	want := map[string]int{"W6": 32, "W9": 50, "W12": 70, "W18": 112, "W24": 128}
	for name, dots := range want {
		m, err := c.Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if got := m.PrintableDots(res); got != dots {
			t.Fatalf("%s printable dots: got %d want %d", name, got, dots)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if _, err := c.Lookup("W99"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
	m, err := c.Lookup("w24")
	if err != nil || m.Name != "W24" {
		t.Fatalf("case-insensitive lookup failed: %v %#v", err, m)
	}
}

func TestResolutionConversions(t *testing.T) {
	r := Resolution{Name: "x", DPIFeed: 360, DPICross: 180, MinLengthMM: 4.4}
	if got := r.VerticalScale(); got != 2 {
		t.Fatalf("vertical scale: %g", got)
	}
	if got := r.FeedDots(25.4); got != 360 {
		t.Fatalf("feed dots: %d", got)
	}
	if got := r.FeedDots(-3); got != 0 {
		t.Fatalf("negative mm should clamp to 0, got %d", got)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	if _, err := Parse([]byte("media:\n  - name: bad\n    width_mm: 3\n    printable_mm: 5\n")); err == nil {
		t.Fatalf("printable wider than tape should fail")
	}
}
