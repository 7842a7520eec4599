package anomaly

import (
	"fmt"
	"math"
	"time"

	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/prng"
)

// BuildPool expands bases into concrete recipes: every tempo × hold × start
// bias variant of each base in turn, until constants.PoolTarget recipes exist.
// Ids run A001, A002, ...
func BuildPool(bases []Base) []models.Recipe {
	out := make([]models.Recipe, 0, constants.PoolTarget)
	serial := 1
	for _, b := range bases {
		for _, tempo := range constants.TempoMultipliers {
			for _, hold := range constants.HoldMultipliers {
				for _, bias := range constants.StartBiases {
					if len(out) >= constants.PoolTarget {
						return out
					}
					out = append(out, models.Recipe{
						ID:          fmt.Sprintf("%s%03d", constants.PoolIDPrefix, serial),
						Key:         b.Key,
						Interval:    clampMs(float64(b.Interval.Milliseconds())*tempo, constants.MinInterval, constants.MaxInterval),
						Duration:    clampMs(float64(b.Duration.Milliseconds())*hold, constants.MinDuration, constants.MaxDuration),
						InitialBias: bias,
					})
					serial++
				}
			}
		}
	}
	return out
}

// SelectSession samples min(n, len(pool)) recipes without replacement.
func SelectSession(rng *prng.Source, pool []models.Recipe, n int) []models.Recipe {
	return prng.PickUnique(rng, pool, n)
}

func clampMs(v float64, lo, hi time.Duration) time.Duration {
	d := time.Duration(math.Round(v)) * time.Millisecond
	return max(lo, min(hi, d))
}
