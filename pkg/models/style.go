package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
)

// Align is a named subtitle anchor. It maps onto the ASS numpad codes.
type Align string

const (
	AlignBottomLeft   Align = "bottom-left"
	AlignBottomCenter Align = "bottom-center"
	AlignBottomRight  Align = "bottom-right"
	AlignMiddleLeft   Align = "middle-left"
	AlignMiddleCenter Align = "middle-center"
	AlignMiddleRight  Align = "middle-right"
	AlignTopLeft      Align = "top-left"
	AlignTopCenter    Align = "top-center"
	AlignTopRight     Align = "top-right"
)

var alignCodes = map[Align]int{
	AlignBottomLeft:   1,
	AlignBottomCenter: 2,
	AlignBottomRight:  3,
	AlignMiddleLeft:   4,
	AlignMiddleCenter: 5,
	AlignMiddleRight:  6,
	AlignTopLeft:      7,
	AlignTopCenter:    8,
	AlignTopRight:     9,
}

// Code returns the ASS numpad alignment code, or 0 for an unknown align.
func (a Align) Code() int {
	return alignCodes[a]
}

// FontFamilies lists the bundled fonts. Resolution at burn time uses the
// fonts directory exclusively, so anything outside this set cannot
// render.
var FontFamilies = []string{"Inter", "Arial", "Georgia", "Helvetica", "Times New Roman"}

// StylePreset names a size/outline shorthand.
type StylePreset string

const (
	PresetDefault StylePreset = "default"
	PresetKaraoke StylePreset = "karaoke"
	PresetMinimal StylePreset = "minimal"
)

// Style is the resolved typographic descriptor attached to a burn
// request. All fields are concrete; defaults and presets are applied by
// ResolveStyle at the API boundary.
type Style struct {
	Preset         StylePreset `json:"preset"`
	FontFamily     string      `json:"font_family"`
	FontSizePx     int         `json:"font_size_px"`
	Color          string      `json:"color"`
	Bold           bool        `json:"bold"`
	Italic         bool        `json:"italic"`
	StrokePx       int         `json:"stroke_px"`
	StrokeColor    string      `json:"stroke_color"`
	ShadowPx       int         `json:"shadow_px"`
	Align          Align       `json:"align"`
	PosX           *float64    `json:"pos_x"`
	PosY           *float64    `json:"pos_y"`
	MaxWidthPct    int         `json:"max_width_pct"`
	OutlineSamples int         `json:"outline_samples"`
	Opacity        int         `json:"opacity"`
	Rotation       int         `json:"rotation"`
}

// StyleInput is the open-edged wire form of a style: every field is
// optional, unknown fields are rejected at decode time. Nil means "use
// the preset/default value".
type StyleInput struct {
	Preset         *StylePreset `json:"preset"`
	FontFamily     *string      `json:"font_family"`
	FontSizePx     *int         `json:"font_size_px"`
	Color          *string      `json:"color"`
	Bold           *bool        `json:"bold"`
	Italic         *bool        `json:"italic"`
	StrokePx       *int         `json:"stroke_px"`
	StrokeColor    *string      `json:"stroke_color"`
	ShadowPx       *int         `json:"shadow_px"`
	Align          *Align       `json:"align"`
	PosX           *float64     `json:"pos_x"`
	PosY           *float64     `json:"pos_y"`
	MaxWidthPct    *int         `json:"max_width_pct"`
	OutlineSamples *int         `json:"outline_samples"`
	Opacity        *int         `json:"opacity"`
	Rotation       *int         `json:"rotation"`
}

// DecodeStyleInput parses a style JSON object, rejecting unknown fields.
func DecodeStyleInput(data []byte) (*StyleInput, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var in StyleInput
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("decode style: %w", err)
	}
	return &in, nil
}

// DefaultStyle returns the fully resolved default descriptor.
func DefaultStyle() Style {
	return Style{
		Preset:         PresetDefault,
		FontFamily:     "Inter",
		FontSizePx:     28,
		Color:          "#FFFFFF",
		StrokePx:       3,
		StrokeColor:    "#000000",
		Align:          AlignBottomCenter,
		MaxWidthPct:    90,
		OutlineSamples: 16,
		Opacity:        100,
	}
}

// presetBase maps a preset onto its size/outline shorthand. Explicit
// fields in the input still win over the preset.
func presetBase(p StylePreset) (Style, bool) {
	st := DefaultStyle()
	st.Preset = p
	switch p {
	case PresetDefault:
	case PresetKaraoke:
		st.FontSizePx = 42
		st.StrokePx = 4
		st.Bold = true
	case PresetMinimal:
		st.FontSizePx = 22
		st.StrokePx = 0
	default:
		return Style{}, false
	}
	return st, true
}

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ResolveStyle applies preset and defaults, overlays the explicit input
// fields, and validates the result against the schema bounds.
func ResolveStyle(in *StyleInput) (Style, error) {
	preset := PresetDefault
	if in != nil && in.Preset != nil {
		preset = *in.Preset
	}
	st, ok := presetBase(preset)
	if !ok {
		return Style{}, fmt.Errorf("unknown preset %q", preset)
	}
	if in != nil {
		if in.FontFamily != nil {
			st.FontFamily = *in.FontFamily
		}
		if in.FontSizePx != nil {
			st.FontSizePx = *in.FontSizePx
		}
		if in.Color != nil {
			st.Color = *in.Color
		}
		if in.Bold != nil {
			st.Bold = *in.Bold
		}
		if in.Italic != nil {
			st.Italic = *in.Italic
		}
		if in.StrokePx != nil {
			st.StrokePx = *in.StrokePx
		}
		if in.StrokeColor != nil {
			st.StrokeColor = *in.StrokeColor
		}
		if in.ShadowPx != nil {
			st.ShadowPx = *in.ShadowPx
		}
		if in.Align != nil {
			st.Align = *in.Align
		}
		if in.PosX != nil {
			st.PosX = in.PosX
		}
		if in.PosY != nil {
			st.PosY = in.PosY
		}
		if in.MaxWidthPct != nil {
			st.MaxWidthPct = *in.MaxWidthPct
		}
		if in.OutlineSamples != nil {
			st.OutlineSamples = *in.OutlineSamples
		}
		if in.Opacity != nil {
			st.Opacity = *in.Opacity
		}
		if in.Rotation != nil {
			st.Rotation = *in.Rotation
		}
	}
	if err := st.Validate(); err != nil {
		return Style{}, err
	}
	return st, nil
}

// Validate checks the descriptor against the schema bounds.
func (s Style) Validate() error {
	fontOK := false
	for _, f := range FontFamilies {
		if s.FontFamily == f {
			fontOK = true
			break
		}
	}
	if !fontOK {
		return fmt.Errorf("font_family %q is not bundled", s.FontFamily)
	}
	if s.FontSizePx < 8 || s.FontSizePx > 200 {
		return fmt.Errorf("font_size_px %d out of range 8..200", s.FontSizePx)
	}
	if !hexColorPattern.MatchString(s.Color) {
		return fmt.Errorf("color %q is not #RGB or #RRGGBB", s.Color)
	}
	if !hexColorPattern.MatchString(s.StrokeColor) {
		return fmt.Errorf("stroke_color %q is not #RGB or #RRGGBB", s.StrokeColor)
	}
	if s.StrokePx < 0 || s.StrokePx > 16 {
		return fmt.Errorf("stroke_px %d out of range 0..16", s.StrokePx)
	}
	if s.ShadowPx != 0 {
		return fmt.Errorf("shadow_px must be 0")
	}
	if s.Align.Code() == 0 {
		return fmt.Errorf("unknown align %q", s.Align)
	}
	if (s.PosX == nil) != (s.PosY == nil) {
		return fmt.Errorf("pos_x and pos_y must be set together")
	}
	if s.MaxWidthPct < 10 || s.MaxWidthPct > 100 {
		return fmt.Errorf("max_width_pct %d out of range 10..100", s.MaxWidthPct)
	}
	if s.Opacity < 0 || s.Opacity > 100 {
		return fmt.Errorf("opacity %d out of range 0..100", s.Opacity)
	}
	if s.Rotation < 0 || s.Rotation > 359 {
		return fmt.Errorf("rotation %d out of range 0..359", s.Rotation)
	}
	return nil
}

// Value implements driver.Valuer so a style can be stored as jsonb.
func (s Style) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for database retrieval.
func (s *Style) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}
