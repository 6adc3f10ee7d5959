package layout

import (
	"math"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for physical lengths and device dots.

// Unit represents the original unit of a length value as specified in a label file.
type Unit int

const (
	UnitDot Unit = iota // bare numbers are device dots
	UnitMM              // millimeters
	UnitCM              // centimeters
	UnitIN              // inches
	UnitPT              // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// String formats the length the way it is written in a label file, e.g. "10mm" or "12".
func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ToMM converts a physical length to millimeters. Dot lengths need a resolution, see ToDots.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// ToDots converts this length to device dots using dotsPerMM; dot lengths pass through.
func (l Length) ToDots(dotsPerMM float64) int {
	if l.Unit == UnitDot {
		return int(math.Round(l.Value))
	}
	return int(math.Round(l.ToMM() * dotsPerMM))
}

// ParseLength parses a length string preserving its unit. Unknown input yields a zero dot length.
func ParseLength(value string) Length {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}
	}
	unit := UnitDot
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}

// DotsToMM converts device dots to millimeters at dotsPerMM.
func DotsToMM(dots int, dotsPerMM float64) float64 {
	if dotsPerMM <= 0 {
		return 0
	}
	return float64(dots) / dotsPerMM
}

// ToPt converts a size in canvas units (one unit per dot) to points for font faces.
func ToPt(units float64) float64 { return units * MmToPt }
