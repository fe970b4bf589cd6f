package core

// RuntimeConfig contains the fixed-step timing parameters of a match.
// The same values always produce the same simulation.
type RuntimeConfig struct {
	TickRate int   // Simulation ticks per second (default 10)
	Seed     int64 // RNG seed for the combat model
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		TickRate: 10,
		Seed:     1,
	}
}

// TickDuration returns the simulated seconds covered by one tick.
func (c RuntimeConfig) TickDuration() float64 {
	if c.TickRate <= 0 {
		return 0.1
	}
	return 1.0 / float64(c.TickRate)
}
