package diagnostics

// SetPressure overrides the pressure metric for tests.
func (m *Model) SetPressure(p float64) {
	m.pressure = p
}
