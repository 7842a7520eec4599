package anomaly

import (
	"time"

	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/prng"
)

// ClockLayout is how the station clock is displayed.
const ClockLayout = "15:04:05"

// ClockDistorter computes the displayed clock for each tick. NOMINAL shows
// real time, UNSTABLE runs backwards when the profile says so, and INCIDENT
// freezes, jumps and flips direction at random.
type ClockDistorter struct {
	rng      *prng.Source
	profile  Profile
	reverse  time.Time
	incident time.Time
}

// NewClockDistorter creates a distorter whose reverse clock starts the
// profile's offset behind now.
func NewClockDistorter(rng *prng.Source, profile Profile, now time.Time) *ClockDistorter {
	return &ClockDistorter{
		rng:      rng,
		profile:  profile,
		reverse:  now.Add(-profile.ReverseOffset),
		incident: now,
	}
}

// StartIncident rewinds the incident clock a random few seconds behind now.
func (c *ClockDistorter) StartIncident(now time.Time) {
	c.incident = now.Add(-c.rng.Duration(constants.IncidentClockBackMin, constants.IncidentClockBackMax))
}

// Tick returns the clock text for now. ok is false when the display should
// keep showing its previous value.
func (c *ClockDistorter) Tick(phase models.Phase, now time.Time) (text string, ok bool) {
	switch {
	case phase == models.PhaseUnstable && c.profile.ReverseClock:
		step := constants.ClockStep
		if c.rng.Chance(c.profile.ReverseStepJitterChance) {
			step = constants.ReverseClockDoubleStep
		}
		if now.Before(c.reverse) {
			c.reverse = now
		}
		c.reverse = c.reverse.Add(-step)
		return c.reverse.Format(ClockLayout), true

	case phase == models.PhaseIncident:
		if c.rng.Chance(constants.ClockFreezeChance) {
			return "", false
		}
		switch {
		case c.rng.Chance(constants.ClockJumpAheadChance):
			c.incident = c.incident.Add(c.rng.Duration(constants.ClockJumpAheadMin, constants.ClockJumpAheadMax))
		case c.rng.Chance(constants.ClockJumpBackChance):
			c.incident = c.incident.Add(-c.rng.Duration(constants.ClockJumpBackMin, constants.ClockJumpBackMax))
		default:
			step := -constants.ClockStep
			if c.rng.Chance(0.5) {
				step = constants.ClockStep
			}
			if c.rng.Chance(constants.ClockDoubleStepChance) {
				step *= 2
			}
			c.incident = c.incident.Add(step)
		}
		return c.incident.Format(ClockLayout), true
	}
	return now.Format(ClockLayout), true
}
