package models

// Snapshot is the diagnostics panel content, already formatted. The
// presentation layer paints it verbatim.
type Snapshot struct {
	Drift      string `json:"drift"`
	Density    string `json:"density"`
	Coherence  string `json:"coherence"`
	Anomaly    string `json:"anomaly"`
	Phase      Phase  `json:"phase"`
	Transient  string `json:"transient"`
	PhaseClass string `json:"phase_class"`
}

// DiagnosticsPayload carries the raw numbers behind a Snapshot for compact
// status displays that do their own formatting
type DiagnosticsPayload struct {
	Phase         Phase   `json:"phase"`
	TemporalDrift float64 `json:"temporal_drift"`
	Anomaly       float64 `json:"anomaly"`
	EventDensity  float64 `json:"event_density"`
}

// Transition describes a single phase change
type Transition struct {
	From     Phase   `json:"from"`
	To       Phase   `json:"to"`
	AtMs     int64   `json:"at_ms"`
	Pressure float64 `json:"pressure"`
}
