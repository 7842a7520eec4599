package mcp

// SnapshotInput defines the input for the ox500_snapshot tool.
type SnapshotInput struct {
	Render bool `json:"render,omitempty" jsonschema:"also return the plain-text terminal render"`
	Width  int  `json:"width,omitempty" jsonschema:"render width in columns (default 72)"`
}

// SnapshotOutput defines the output for the ox500_snapshot tool.
type SnapshotOutput struct {
	Drift      string `json:"drift" jsonschema:"formatted temporal drift"`
	Density    string `json:"density" jsonschema:"event density label"`
	Coherence  string `json:"coherence" jsonschema:"formatted coherence"`
	Anomaly    string `json:"anomaly" jsonschema:"anomaly label"`
	Phase      string `json:"phase" jsonschema:"NOMINAL, UNSTABLE or INCIDENT"`
	Transient  string `json:"transient" jsonschema:"last semantic event label"`
	PhaseClass string `json:"phase_class" jsonschema:"phase style class"`
	Render     string `json:"render,omitempty" jsonschema:"plain-text terminal render"`
}

// StatsInput defines the input for the ox500_stats tool.
type StatsInput struct{}

// StatsOutput defines the output for the ox500_stats tool.
type StatsOutput struct {
	SessionID     string        `json:"session_id" jsonschema:"session uuid"`
	Seed          uint32        `json:"seed" jsonschema:"effective session seed"`
	Visible       bool          `json:"visible" jsonschema:"whether the station is visible"`
	Phase         string        `json:"phase" jsonschema:"current phase"`
	Pressure      float64       `json:"pressure" jsonschema:"systemic pressure (0-1)"`
	Coherence     float64       `json:"coherence" jsonschema:"coherence (0.84-1)"`
	Anomaly       float64       `json:"anomaly" jsonschema:"anomaly index (0-0.25)"`
	TemporalDrift float64       `json:"temporal_drift" jsonschema:"temporal drift"`
	AmbientStress float64       `json:"ambient_stress" jsonschema:"ambient stress"`
	RecentEvents  int           `json:"recent_events" jsonschema:"events in the last 60 seconds"`
	LastSemantic  string        `json:"last_semantic" jsonschema:"last semantic event label"`
	Engine        EngineSummary `json:"engine" jsonschema:"anomaly engine introspection"`
}

// EngineSummary is the anomaly engine part of StatsOutput.
type EngineSummary struct {
	Phase             string         `json:"phase"`
	Hidden            bool           `json:"hidden"`
	ActiveEffects     int            `json:"active_effects"`
	Ceiling           int            `json:"ceiling"`
	OutstandingTimers int            `json:"outstanding_timers"`
	PoolSize          int            `json:"pool_size"`
	SessionRecipes    []string       `json:"session_recipes"`
	IncidentRecipes   []string       `json:"incident_recipes"`
	Fired             int            `json:"fired"`
	Refused           map[string]int `json:"refused"`
}

// InjectInput defines the input for the ox500_inject tool.
type InjectInput struct {
	Kind string `json:"kind" jsonschema:"activity to inject: feed, page, log, glitch or whisper"`
}

// InjectOutput defines the output for the ox500_inject tool.
type InjectOutput struct {
	Kind     string `json:"kind" jsonschema:"the injected activity"`
	Accepted bool   `json:"accepted" jsonschema:"whether the activity reached the station"`
	Message  string `json:"message" jsonschema:"human-readable result message"`
}

// RecipesInput defines the input for the ox500_recipes tool.
type RecipesInput struct {
	Set string `json:"set,omitempty" jsonschema:"which recipes: session (default), incident or pool"`
}

// RecipesOutput defines the output for the ox500_recipes tool.
type RecipesOutput struct {
	Set     string       `json:"set" jsonschema:"the listed set"`
	Recipes []RecipeItem `json:"recipes" jsonschema:"recipes in schedule order"`
	Count   int          `json:"count" jsonschema:"number of recipes"`
}

// RecipeItem is a list view of a recipe.
type RecipeItem struct {
	ID            string `json:"id"`
	Key           string `json:"key"`
	IntervalMs    int64  `json:"interval_ms"`
	DurationMs    int64  `json:"duration_ms"`
	InitialBiasMs int64  `json:"initial_bias_ms"`
}
