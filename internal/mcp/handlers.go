package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/ox500/internal/anomaly"
	"github.com/nvandessel/ox500/internal/constants"
	"github.com/nvandessel/ox500/internal/models"
	"github.com/nvandessel/ox500/internal/ratelimit"
)

const terminalURI = "ox500://terminal"

// registerTools registers the station tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "ox500_snapshot",
		Description: "Read the diagnostics panel of the running OX-500 session, optionally with a plain-text render of the whole terminal.",
	}, s.handleSnapshot)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "ox500_stats",
		Description: "Read the raw diagnostics metrics and anomaly engine state of the running session.",
	}, s.handleStats)

	if s.injector != nil {
		sdk.AddTool(s.server, &sdk.Tool{
			Name:        "ox500_inject",
			Description: "Poke the running session with external activity (feed, page, log, glitch or whisper). Rate limited per kind.",
		}, s.handleInject)
	}

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "ox500_recipes",
		Description: "List the anomaly recipes of the session: the session set, the incident set or the whole generated pool.",
	}, s.handleRecipes)
}

// registerResources exposes the rendered terminal as a resource.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         terminalURI,
		Name:        "ox500-terminal",
		Description: "Plain-text render of the OX-500 terminal as it currently looks.",
		MIMEType:    "text/plain",
	}, s.handleTerminalResource)
}

func (s *Server) handleTerminalResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      terminalURI,
				MIMEType: "text/plain",
				Text:     s.st.Board().Render(s.width, nil),
			},
		},
	}, nil
}

func (s *Server) handleSnapshot(ctx context.Context, req *sdk.CallToolRequest, args SnapshotInput) (_ *sdk.CallToolResult, _ SnapshotOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("ox500_snapshot", start, retErr, sanitizeToolParams(map[string]interface{}{
			"render": args.Render, "width": args.Width,
		}))
	}()

	if args.Width < 0 {
		return nil, SnapshotOutput{}, fmt.Errorf("width must be positive, got %d", args.Width)
	}

	snap := s.st.Snapshot()
	out := SnapshotOutput{
		Drift:      snap.Drift,
		Density:    snap.Density,
		Coherence:  snap.Coherence,
		Anomaly:    snap.Anomaly,
		Phase:      string(snap.Phase),
		Transient:  snap.Transient,
		PhaseClass: snap.PhaseClass,
	}
	if args.Render {
		width := args.Width
		if width == 0 {
			width = s.width
		}
		out.Render = s.st.Board().Render(width, nil)
	}
	return nil, out, nil
}

func (s *Server) handleStats(ctx context.Context, req *sdk.CallToolRequest, args StatsInput) (_ *sdk.CallToolResult, _ StatsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("ox500_stats", start, retErr, nil)
	}()

	stats := s.st.Stats()
	m := stats.Diagnostics
	return nil, StatsOutput{
		SessionID:     stats.SessionID,
		Seed:          stats.Seed,
		Visible:       stats.Visible,
		Phase:         string(m.Phase),
		Pressure:      m.Pressure,
		Coherence:     m.Coherence,
		Anomaly:       m.Anomaly,
		TemporalDrift: m.TemporalDrift,
		AmbientStress: m.AmbientStress,
		RecentEvents:  m.RecentEvents,
		LastSemantic:  m.LastSemantic,
		Engine:        summarizeEngine(stats.Engine),
	}, nil
}

func summarizeEngine(st anomaly.Stats) EngineSummary {
	refused := make(map[string]int, len(st.Refused))
	for k, v := range st.Refused {
		refused[k] = v
	}
	return EngineSummary{
		Phase:             string(st.Phase),
		Hidden:            st.Hidden,
		ActiveEffects:     st.ActiveEffects,
		Ceiling:           st.Ceiling,
		OutstandingTimers: st.OutstandingTimers,
		PoolSize:          st.PoolSize,
		SessionRecipes:    append([]string{}, st.SessionRecipes...),
		IncidentRecipes:   append([]string{}, st.IncidentRecipes...),
		Fired:             st.Fired,
		Refused:           refused,
	}
}

func (s *Server) handleInject(ctx context.Context, req *sdk.CallToolRequest, args InjectInput) (_ *sdk.CallToolResult, _ InjectOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("ox500_inject", start, retErr, sanitizeToolParams(map[string]interface{}{
			"kind": args.Kind,
		}))
	}()

	if s.injector == nil {
		return nil, InjectOutput{}, errors.New("injection is disabled")
	}
	if args.Kind == "" {
		return nil, InjectOutput{}, errors.New("kind is required")
	}

	kind := constants.Activity(args.Kind)
	if err := s.injector.Inject(ctx, kind); err != nil {
		var limited *ratelimit.LimitedError
		if errors.As(err, &limited) {
			return nil, InjectOutput{
				Kind:     args.Kind,
				Accepted: false,
				Message:  err.Error(),
			}, nil
		}
		return nil, InjectOutput{}, err
	}

	s.logger.Debug("activity injected", "kind", kind, "via", "mcp")
	return nil, InjectOutput{
		Kind:     args.Kind,
		Accepted: true,
		Message:  fmt.Sprintf("%s delivered to session %s", kind, s.st.ID()),
	}, nil
}

func (s *Server) handleRecipes(ctx context.Context, req *sdk.CallToolRequest, args RecipesInput) (_ *sdk.CallToolResult, _ RecipesOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("ox500_recipes", start, retErr, sanitizeToolParams(map[string]interface{}{
			"set": args.Set,
		}))
	}()

	set := args.Set
	if set == "" {
		set = "session"
	}

	var recipes []models.Recipe
	switch set {
	case "session":
		recipes = s.st.Engine().Session()
	case "incident":
		recipes = s.st.Engine().Incident()
	case "pool":
		recipes = s.st.Engine().Pool()
	default:
		return nil, RecipesOutput{}, fmt.Errorf("unknown recipe set %q (want session, incident or pool)", args.Set)
	}

	items := make([]RecipeItem, 0, len(recipes))
	for _, r := range recipes {
		items = append(items, RecipeItem{
			ID:            r.ID,
			Key:           string(r.Key),
			IntervalMs:    r.Interval.Milliseconds(),
			DurationMs:    r.Duration.Milliseconds(),
			InitialBiasMs: r.InitialBias.Milliseconds(),
		})
	}
	return nil, RecipesOutput{
		Set:     set,
		Recipes: items,
		Count:   len(items),
	}, nil
}
