package tui

import (
	"fmt"

	"github.com/vovakirdan/towerdefense/internal/event"
	"github.com/vovakirdan/towerdefense/internal/state"
)

// feedTypes are the notifications shown in the status line.
var feedTypes = []event.Type{
	event.TypePhaseChanged,
	event.TypeWaveCleared,
	event.TypeLivesLost,
}

// eventFeed keeps the latest match notification until the model takes it.
// Models are copied by value, so they share the feed through a pointer.
type eventFeed struct {
	latest string
}

func (f *eventFeed) OnEvent(e event.Event) {
	switch e := e.(type) {
	case event.PhaseChanged:
		switch e.To {
		case state.Preparation:
			f.latest = fmt.Sprintf("round %d: build your defenses", e.Round)
		case state.WaveActive:
			f.latest = fmt.Sprintf("round %d: enemies incoming", e.Round)
		case state.RoundEnd:
			f.latest = fmt.Sprintf("round %d cleared", e.Round)
		}
	case event.WaveCleared:
		f.latest = fmt.Sprintf("wave %d cleared, bonus $%d", e.WaveIndex+1, e.Bonus)
	case event.LivesLost:
		f.latest = fmt.Sprintf("%s leaked, %d lives left", e.EnemyType, e.Remaining)
	}
}

// take returns the pending notification and clears it.
func (f *eventFeed) take() string {
	s := f.latest
	f.latest = ""
	return s
}
