package core

import "slices"

type Mode string

const (
	ModeNormal   Mode = "Normal"
	ModeRelaxing Mode = "Relaxing"
	ModeParty    Mode = "Party"
)

// Modes lists the lighting presets in display order.
var Modes = []Mode{ModeNormal, ModeRelaxing, ModeParty}

func (m Mode) Valid() bool {
	return slices.Contains(Modes, m)
}

// Snapshot is the cached view of the remote device. It is replaced
// wholesale on every applied poll, never patched.
type Snapshot struct {
	On              bool     `json:"on"`
	Brightness      int      `json:"brightness"`
	Mode            Mode     `json:"mode"`
	FaceCount       int      `json:"face_count"`
	MaxFaces        int      `json:"max_faces"`
	RegisteredFaces []string `json:"registered_faces"`
}

// Clone returns a copy that does not share the face slice.
func (s Snapshot) Clone() Snapshot {
	s.RegisteredFaces = append([]string{}, s.RegisteredFaces...)
	return s
}

// Result is the {success, message} envelope every write operation returns.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Command is a device instruction delivered over MQTT by gesture and clap
// detectors.
type Command struct {
	Name      string   `json:"name"`
	Arguments []string `json:"args"`
}
