package dsl_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/labelcanvas/dsl"
	"github.com/ByLCY/labelcanvas/layout"
)

const sampleDSL = `
// 资产标签
label "Asset" media W24 resolution 180 horizontal length 30mm {
  data {
    name: "Ada"
    count: 3
    owner: { team: "infra" }
    tags: [ "a", "b" ]
  }

  text "Hello ${name}" size 16 bold underline
  text { "line one"; "" ; "line three" }
  qr "https://example.com" size 60 ecc q version 4 mode byte
  barcode "12345678" format CODE128 height 30 module 2 text
  image "logo.png" width 40 height 40 dither floyd-steinberg smooth
  icon "action-home" width 32 height 32 invert
  shape star width 20 height 10 stroke 2 sides 5 fill id badge

  absolute x 200 y -4 rotate 90 {
    text "Side" rotate 10
    qr "side"
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Name != "Asset" {
		t.Fatalf("expected label name Asset, got %s", doc.Name)
	}
	if len(doc.Params) != 7 {
		t.Fatalf("expected 7 header params, got %d", len(doc.Params))
	}
	if doc.Params[1].Value != "W24" || doc.Params[6].Value != "30mm" {
		t.Fatalf("unexpected header params: %+v", doc.Params)
	}
	if len(doc.Block.Statements) != 9 {
		t.Fatalf("expected 9 statements, got %d", len(doc.Block.Statements))
	}
	if doc.Block.Statements[0].Data == nil {
		t.Fatalf("first statement should be data section")
	}
	text := doc.Block.Statements[1].Command
	if text == nil || text.Name != "text" || !text.Args[0].IsString() {
		t.Fatalf("expected text command, got %+v", doc.Block.Statements[1])
	}
	if got := text.Args[0].Value; !strings.Contains(got, "${name}") {
		t.Fatalf("expected interpolation kept in text, got %s", got)
	}
	abs := doc.Block.Statements[8].Command
	if abs == nil || abs.Name != "absolute" || abs.Block == nil || len(abs.Block.Statements) != 2 {
		t.Fatalf("expected absolute block with 2 children, got %+v", abs)
	}
	if abs.Args[3].Value != "-4" {
		t.Fatalf("negative numbers should lex as one token: %+v", abs.Args)
	}
}

func TestItemsConversion(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	lbl, err := dsl.Items(doc, dsl.Resolution{FeedDotsPerMM: 180 / 25.4, CrossDotsPerMM: 180 / 25.4})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if lbl.Media != "W24" || lbl.Resolution != "180" || lbl.Orientation != layout.Horizontal || lbl.LengthMM != 30 {
		t.Fatalf("unexpected label settings: %+v", lbl)
	}
	wantValues := map[string]any{
		"name":  "Ada",
		"count": 3,
		"owner": map[string]any{"team": "infra"},
		"tags":  []any{"a", "b"},
	}
	if diff := cmp.Diff(wantValues, lbl.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	var ids []string
	for _, it := range lbl.Items {
		ids = append(ids, it.ID)
	}
	wantIDs := []string{"text-1", "text-2", "qr-1", "barcode-1", "image-1", "icon-1", "badge", "text-3", "qr-2"}
	if diff := cmp.Diff(wantIDs, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	first := lbl.Items[0]
	if first.Text != "Hello ${name}" || first.FontSize != 16 || !first.Bold || !first.Underline {
		t.Fatalf("unexpected text item: %+v", first)
	}
	if got := lbl.Items[1].Text; got != "line one\n\nline three" {
		t.Fatalf("text block should keep blank lines: %q", got)
	}
	qr := lbl.Items[2]
	if qr.Data != "https://example.com" || qr.Size != 60 || qr.ErrorCorrection != "Q" || qr.Version != 4 || qr.EncodingMode != "byte" {
		t.Fatalf("unexpected qr item: %+v", qr)
	}
	bc := lbl.Items[3]
	if bc.Format != "code128" || bc.Height != 30 || bc.ModuleWidth != 2 || !bc.ShowText {
		t.Fatalf("unexpected barcode item: %+v", bc)
	}
	img := lbl.Items[4]
	if img.Source != "logo.png" || img.Dither != "floyd-steinberg" || !img.Smoothing {
		t.Fatalf("unexpected image item: %+v", img)
	}
	if icon := lbl.Items[5]; icon.Source != "action-home" || !icon.Invert {
		t.Fatalf("unexpected icon item: %+v", icon)
	}
	shape := lbl.Items[6]
	if shape.ShapeType != "star" || shape.Sides != 5 || !shape.Fill || shape.StrokeWidth != 2 {
		t.Fatalf("unexpected shape item: %+v", shape)
	}

	side := lbl.Items[7]
	if !side.IsAbsolute() || side.XOffset != 200 || side.YOffset != -4 || side.Rotation != 100 {
		t.Fatalf("absolute frame should offset children: %+v", side)
	}
	if !lbl.Items[8].IsAbsolute() || lbl.Items[8].Rotation != 90 {
		t.Fatalf("unexpected absolute qr: %+v", lbl.Items[8])
	}
}

func TestUnitLengthsUseResolution(t *testing.T) {
	doc, err := dsl.ParseString(`label "U" { shape rect width 10mm height 2mm }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = dsl.Items(doc, dsl.Resolution{})
	if !errors.Is(err, dsl.ErrNeedResolution) {
		t.Fatalf("expected ErrNeedResolution, got %v", err)
	}
	if !strings.Contains(err.Error(), "10mm") {
		t.Fatalf("error should quote the length as written: %v", err)
	}
	lbl, err := dsl.Items(doc, dsl.Resolution{FeedDotsPerMM: 10, CrossDotsPerMM: 10})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if it := lbl.Items[0]; it.Width != 100 || it.Height != 20 {
		t.Fatalf("unit lengths should convert to dots: %dx%d", it.Width, it.Height)
	}
}

func TestUnitLengthsFollowAxisResolution(t *testing.T) {
	res := dsl.Resolution{FeedDotsPerMM: 20, CrossDotsPerMM: 10}
	cases := []struct {
		src                 string
		width, height, size int
		x, y                int
	}{
		// 横向：X 为走纸方向。
		{`label "A" { absolute x 1mm y 1mm { shape rect width 10mm height 2mm stroke 1mm } }`, 200, 20, 10, 20, 10},
		// 纵向：Y 为走纸方向。
		{`label "A" vertical { absolute x 1mm y 1mm { shape rect width 10mm height 2mm stroke 1mm } }`, 100, 40, 10, 10, 20},
	}
	for _, tc := range cases {
		doc, err := dsl.ParseString(tc.src)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		lbl, err := dsl.Items(doc, res)
		if err != nil {
			t.Fatalf("convert failed: %v", err)
		}
		it := lbl.Items[0]
		if it.Width != tc.width || it.Height != tc.height || it.StrokeWidth != tc.size {
			t.Fatalf("%s: got %dx%d stroke %d, want %dx%d stroke %d", lbl.Orientation, it.Width, it.Height, it.StrokeWidth, tc.width, tc.height, tc.size)
		}
		if it.XOffset != tc.x || it.YOffset != tc.y {
			t.Fatalf("%s: frame offset %d,%d, want %d,%d", lbl.Orientation, it.XOffset, it.YOffset, tc.x, tc.y)
		}
	}
}

func TestItemsErrors(t *testing.T) {
	cases := map[string]string{
		"unknown command":  `label "E" { table "x" }`,
		"unknown option":   `label "E" { text "x" colour red }`,
		"missing value":    `label "E" { text "x" size }`,
		"non-number size":  `label "E" { text "x" size big }`,
		"nested absolute":  `label "E" { absolute x 1 { absolute { text "x" } } }`,
		"duplicate id":     `label "E" { text "a" id same; text "b" id same }`,
		"unknown header":   `label "E" sideways { }`,
		"block on qr":      `label "E" { qr "x" { "y" } }`,
		"top-level string": `label "E" { "loose" }`,
	}
	for name, src := range cases {
		doc, err := dsl.ParseString(src)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", name, err)
		}
		if _, err := dsl.Items(doc, dsl.Resolution{}); err == nil {
			t.Fatalf("%s: expected conversion error", name)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	if _, err := dsl.ParseString(`label "E" { text "x"`); err == nil {
		t.Fatalf("expected error for unterminated block")
	}
	if _, err := dsl.ParseString(`doc "E" { }`); err == nil {
		t.Fatalf("expected error for missing label keyword")
	}
}
