package models

import (
	"encoding/json"
	"time"
)

// Recipe is a fully parameterized, schedulable instance of a base effect.
// Recipes are values and never change once built.
type Recipe struct {
	// ID is A001.. for generated pool recipes and I001.. for incident recipes
	ID string

	// Key selects the handler and cooldown bucket
	Key EffectKey

	// Interval is the wait between fire attempts once the loop is running
	Interval time.Duration

	// Duration is how long a fired effect stays applied
	Duration time.Duration

	// InitialBias delays the first attempt so loops don't fire in lockstep
	InitialBias time.Duration
}

type recipeJSON struct {
	ID            string    `json:"id"`
	Key           EffectKey `json:"key"`
	IntervalMs    int64     `json:"interval_ms"`
	DurationMs    int64     `json:"duration_ms"`
	InitialBiasMs int64     `json:"initial_bias_ms"`
}

// MarshalJSON encodes durations as integer milliseconds
func (r Recipe) MarshalJSON() ([]byte, error) {
	return json.Marshal(recipeJSON{
		ID:            r.ID,
		Key:           r.Key,
		IntervalMs:    r.Interval.Milliseconds(),
		DurationMs:    r.Duration.Milliseconds(),
		InitialBiasMs: r.InitialBias.Milliseconds(),
	})
}

// UnmarshalJSON decodes the millisecond representation
func (r *Recipe) UnmarshalJSON(data []byte) error {
	var raw recipeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Recipe{
		ID:          raw.ID,
		Key:         raw.Key,
		Interval:    time.Duration(raw.IntervalMs) * time.Millisecond,
		Duration:    time.Duration(raw.DurationMs) * time.Millisecond,
		InitialBias: time.Duration(raw.InitialBiasMs) * time.Millisecond,
	}
	return nil
}
