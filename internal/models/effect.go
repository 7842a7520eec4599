package models

import "fmt"

// EffectKey identifies which handler and which cooldown bucket an anomaly uses.
// The set is closed: every key must have a handler and a cooldown.
type EffectKey string

const (
	EffectTextCorrupt         EffectKey = "text_corrupt"
	EffectDiagCorrupt         EffectKey = "diag_corrupt"
	EffectLineFlip            EffectKey = "line_flip"
	EffectLineFade            EffectKey = "line_fade"
	EffectSensorBurn          EffectKey = "sensor_burn"
	EffectPhaseFlicker        EffectKey = "phase_flicker"
	EffectFeedEcho            EffectKey = "feed_echo"
	EffectLinkGhost           EffectKey = "link_ghost"
	EffectNodeGhost           EffectKey = "node_ghost"
	EffectAvailBlink          EffectKey = "avail_blink"
	EffectSemanticCorrupt     EffectKey = "semantic_corrupt"
	EffectStatusContradiction EffectKey = "status_contradiction"
)

var allEffectKeys = []EffectKey{
	EffectTextCorrupt,
	EffectDiagCorrupt,
	EffectLineFlip,
	EffectLineFade,
	EffectSensorBurn,
	EffectPhaseFlicker,
	EffectFeedEcho,
	EffectLinkGhost,
	EffectNodeGhost,
	EffectAvailBlink,
	EffectSemanticCorrupt,
	EffectStatusContradiction,
}

// AllEffectKeys returns every known effect key in declaration order
func AllEffectKeys() []EffectKey {
	out := make([]EffectKey, len(allEffectKeys))
	copy(out, allEffectKeys)
	return out
}

// ParseEffectKey validates a key name
func ParseEffectKey(s string) (EffectKey, error) {
	for _, k := range allEffectKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown effect key %q", s)
}

// String returns the key name
func (k EffectKey) String() string {
	return string(k)
}
