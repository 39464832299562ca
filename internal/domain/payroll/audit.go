package payroll

import (
	"time"
)

// Calculation phases recorded in the audit trail.
const (
	PhaseContextBuild   = "construccion_contexto"
	PhaseIncidents      = "procesamiento_incidencias"
	PhaseEarnings       = "evaluacion_percepciones"
	PhaseTaxableBase    = "calculo_base_gravable"
	PhaseStatutory      = "evaluacion_isr_imss"
	PhaseOtherDeduction = "evaluacion_otras_deducciones"
	PhaseTotals         = "totales"
)

// TrailEntry is one append-only record of the calculation audit trail.
type TrailEntry struct {
	Phase     string        `json:"phase"`
	Action    string        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
	Warning   bool          `json:"warning,omitempty"`
}

// TrailRecorder collects the audit trail of exactly one calculator
// invocation. It is write-only during the run and returned inside the
// result, never shared between runs, so concurrent calculations cannot
// interleave entries.
type TrailRecorder struct {
	entries    []TrailEntry
	phaseStart time.Time
}

// NewTrailRecorder creates an empty recorder
func NewTrailRecorder() *TrailRecorder {
	return &TrailRecorder{entries: make([]TrailEntry, 0, 16)}
}

// BeginPhase marks the start of a phase for duration measurement
func (r *TrailRecorder) BeginPhase() {
	r.phaseStart = time.Now()
}

// EndPhase appends the phase-boundary entry with the measured duration
func (r *TrailRecorder) EndPhase(phase, action string) {
	r.entries = append(r.entries, TrailEntry{
		Phase:     phase,
		Action:    action,
		Timestamp: time.Now(),
		Duration:  time.Since(r.phaseStart),
	})
}

// Record appends an informational entry without duration
func (r *TrailRecorder) Record(phase, action string) {
	r.entries = append(r.entries, TrailEntry{
		Phase:     phase,
		Action:    action,
		Timestamp: time.Now(),
	})
}

// Warn appends a non-fatal warning entry
func (r *TrailRecorder) Warn(phase, action string) {
	r.entries = append(r.entries, TrailEntry{
		Phase:     phase,
		Action:    action,
		Timestamp: time.Now(),
		Warning:   true,
	})
}

// Entries returns the accumulated trail
func (r *TrailRecorder) Entries() []TrailEntry {
	return r.entries
}
