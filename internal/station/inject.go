package station

import (
	"context"
	"fmt"

	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/ratelimit"
)

// Injector forwards activity from outside the session into a station. Each
// activity kind is charged to the limiter on the loop, so an injection that
// never reaches the station costs nothing. Safe for concurrent use.
type Injector struct {
	st      *Station
	limiter *ratelimit.Limiter[constants.Activity]
}

// NewInjector returns an injector for st. A nil limiter means the default
// activity limiter.
func NewInjector(st *Station, limiter *ratelimit.Limiter[constants.Activity]) *Injector {
	if limiter == nil {
		limiter = ratelimit.NewActivityLimiter()
	}
	return &Injector{st: st, limiter: limiter}
}

// Inject validates a, charges the limiter and runs the injection on the
// station loop. Errors wrap ErrUnknownActivity or ratelimit.ErrLimited.
func (in *Injector) Inject(ctx context.Context, a constants.Activity) error {
	if !a.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownActivity, a)
	}
	var err error
	charge := func() {
		if err = in.limiter.Check(a); err != nil {
			return
		}
		err = in.st.Inject(a)
	}
	if callErr := in.st.Exec(ctx, charge); callErr != nil {
		return fmt.Errorf("station unavailable: %w", callErr)
	}
	return err
}
