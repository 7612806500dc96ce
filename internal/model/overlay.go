package model

import (
	"fmt"
	"strconv"
)

// Position is a named overlay anchor on the screen.
type Position string

const (
	PositionTopLeft      Position = "top-left"
	PositionTopCenter    Position = "top-center"
	PositionTopRight     Position = "top-right"
	PositionMiddleLeft   Position = "middle-left"
	PositionMiddleRight  Position = "middle-right"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomCenter Position = "bottom-center"
	PositionBottomRight  Position = "bottom-right"
)

// Positions lists every valid anchor in display order.
var Positions = []Position{
	PositionTopLeft, PositionTopCenter, PositionTopRight,
	PositionMiddleLeft, PositionMiddleRight,
	PositionBottomLeft, PositionBottomCenter, PositionBottomRight,
}

// ParsePosition validates an anchor name.
func ParsePosition(s string) (Position, error) {
	for _, p := range Positions {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown overlay position %q", s)
}

// Transparency is an opacity fraction in [0,1]. It is written with exactly
// one decimal place.
type Transparency float64

// MarshalJSON implements json.Marshaler.
func (t Transparency) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(t.Clamp()), 'f', 1, 64)), nil
}

// Clamp limits t to [0,1].
func (t Transparency) Clamp() Transparency {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// OverlaySettings is the persisted presentation document of the overlay.
type OverlaySettings struct {
	Enabled               bool           `json:"enabled"`
	Position              Position       `json:"position"`
	CustomPosition        CustomPosition `json:"custom_position"`
	Transparency          Transparency   `json:"transparency"`
	TransparentBackground bool           `json:"transparent_background"`
	DisplayOptions        DisplayOptions `json:"display_options"`
}

// CustomPosition is an explicit overlay location, used instead of Position
// when Enabled.
type CustomPosition struct {
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Enabled bool `json:"enabled"`
}

// DisplayOptions selects the overlay content.
type DisplayOptions struct {
	ShowStatus     bool `json:"show_status"`
	ShowHours      bool `json:"show_hours"`
	ShowWeek       bool `json:"show_week"`
	ShowDepartment bool `json:"show_department"`
}

// DefaultOverlaySettings returns the document used when none is persisted.
func DefaultOverlaySettings() OverlaySettings {
	return OverlaySettings{
		Position:       PositionTopRight,
		CustomPosition: CustomPosition{X: 100, Y: 100},
		Transparency:   0.8,
		DisplayOptions: DisplayOptions{
			ShowStatus: true,
			ShowHours:  true,
		},
	}
}
