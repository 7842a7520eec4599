// Package simulation provides a headless harness for validating the emergent
// dynamics of a station session.
//
// The simulation exercises the real diagnostics model, anomaly engine, glitch
// pulser and feed on a virtual clock. No mocks. Scenarios script activity at
// offsets from session start; the runner records every phase transition,
// applied effect and metrics sample so tests can make property-based
// assertions over a whole run.
//
// Usage:
//
//	func TestFloodEscalates(t *testing.T) {
//	    res := simulation.MustRun(t, simulation.Scenario{
//	        Name:     "flood",
//	        Seed:     42,
//	        Duration: 2 * time.Minute,
//	        Events:   simulation.Repeat(0, 100*time.Millisecond, 40*time.Second, constants.ActivityGlitch),
//	    })
//	    simulation.AssertReentryGuard(t, res)
//	    simulation.AssertCeilingRespected(t, res)
//	}
package simulation
