package state

import "fmt"

// Phase is a discrete stage of round progression.
type Phase int

const (
	Preparation Phase = iota
	WaveActive
	RoundEnd
	GameOver
	Victory
)

var phaseNames = [...]string{
	Preparation: "Preparation",
	WaveActive:  "WaveActive",
	RoundEnd:    "RoundEnd",
	GameOver:    "GameOver",
	Victory:     "Victory",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// IsTerminal reports whether the match can no longer change.
func (p Phase) IsTerminal() bool {
	return p == GameOver || p == Victory
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("state: unknown phase %q", b)
}
