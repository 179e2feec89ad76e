package render

import (
	"fmt"

	"github.com/ilievs/facelight/core"
	"github.com/ilievs/facelight/dispatch"
)

type Color string

const (
	ColorOn     Color = "#22c55e"
	ColorOff    Color = "#ef4444"
	ColorViolet Color = "#8b5cf6"
	ColorCyan   Color = "#06b6d4"
	ColorRed    Color = "#ef4444"
)

const NoFacesPlaceholder = "No faces registered"

var modeColors = map[core.Mode]Color{
	core.ModeNormal:   ColorViolet,
	core.ModeRelaxing: ColorCyan,
	core.ModeParty:    ColorRed,
}

// ModeColor is the badge color of a mode. Unknown modes get violet.
func ModeColor(m core.Mode) Color {
	if c, ok := modeColors[m]; ok {
		return c
	}
	return ColorViolet
}

type FaceRow struct {
	Name        string
	Placeholder bool
	// Delete is nil on the placeholder row.
	Delete *dispatch.Intent
}

type ModeButton struct {
	Mode   core.Mode
	Active bool
	Select dispatch.Intent
}

// View is everything the surface needs to draw one snapshot.
type View struct {
	PowerText  string
	PowerColor Color

	Brightness     int
	BrightnessText string

	ModeText  string
	ModeColor Color

	FaceCountText string
	Faces         []FaceRow

	Modes []ModeButton
}

// Build maps a snapshot to a View. It keeps no state between calls, so every
// field, mode highlighting included, is recomputed from s alone.
func Build(s core.Snapshot) View {
	v := View{
		PowerText:      "OFF",
		PowerColor:     ColorOff,
		Brightness:     s.Brightness,
		BrightnessText: dispatch.BrightnessReadout(s.Brightness),
		ModeText:       string(s.Mode),
		ModeColor:      ModeColor(s.Mode),
		FaceCountText:  fmt.Sprintf("%d / %d", s.FaceCount, s.MaxFaces),
	}
	if s.On {
		v.PowerText = "ON"
		v.PowerColor = ColorOn
	}

	if len(s.RegisteredFaces) == 0 {
		v.Faces = []FaceRow{{Name: NoFacesPlaceholder, Placeholder: true}}
	} else {
		v.Faces = make([]FaceRow, 0, len(s.RegisteredFaces))
		for _, name := range s.RegisteredFaces {
			del := dispatch.RequestDelete(name)
			v.Faces = append(v.Faces, FaceRow{Name: name, Delete: &del})
		}
	}

	v.Modes = make([]ModeButton, len(core.Modes))
	for i, m := range core.Modes {
		v.Modes[i] = ModeButton{
			Mode:   m,
			Active: m == s.Mode,
			Select: dispatch.SelectMode(m),
		}
	}
	return v
}
