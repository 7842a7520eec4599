package bus

import (
	"time"

	"github.com/nvandessel/ox500/internal/models"
)

// TickPayload is published on TopicTick.
type TickPayload struct {
	TS time.Time
}

// FeedPayload is published on TopicFeedPush by the ambient feed. Injected
// feed pushes may carry no payload.
type FeedPayload struct {
	Message string
	Phase   models.Phase
}

// GlitchPayload is published on TopicGlitchTrigger. Type "whisper" marks a
// whisper-channel breach; incident overlay pulses use "incident:<effect>".
type GlitchPayload struct {
	Type string
}

// PhasePayload is published on TopicSystemPhase.
type PhasePayload struct {
	Phase    models.Phase
	Previous models.Phase
	Pressure float64
	At       time.Time
}

// VisibilityPayload is published on TopicVisibility.
type VisibilityPayload struct {
	Hidden bool
}

// FirePayload is published on TopicAnomalyFire when an effect is applied.
type FirePayload struct {
	RecipeID string
	Key      models.EffectKey
	Duration time.Duration
	At       time.Time
}

// Payload extracts a typed payload from an event. ok is false when the
// payload has a different type, so subscribers can ignore malformed events.
func Payload[T any](ev Event) (T, bool) {
	p, ok := ev.Payload.(T)
	return p, ok
}
