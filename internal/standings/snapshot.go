package standings

import "time"

// Status is the health marker of a snapshot
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
)

// Snapshot is the persisted result of a run
type Snapshot struct {
	UpdatedAt     string  `json:"updated_at"` // RFC3339 timestamp
	Source        string  `json:"source"`
	Standings     []Row   `json:"standings"`
	StandingCount int     `json:"standing_count"`
	Status        Status  `json:"status"`
	Warning       *string `json:"warning"`
}

// NewSnapshot builds a snapshot from rows. An empty warning means the run was
// clean; any other value marks the snapshot degraded.
func NewSnapshot(rows []Row, source, warning string, at time.Time) *Snapshot {
	copied := make([]Row, 0, len(rows))
	for _, r := range rows {
		copied = append(copied, r.normalized())
	}

	snap := &Snapshot{
		UpdatedAt:     at.Format(time.RFC3339),
		Source:        source,
		Standings:     copied,
		StandingCount: len(copied),
		Status:        StatusOK,
	}

	if warning != "" {
		w := warning
		snap.Warning = &w
		snap.Status = StatusDegraded
	}

	return snap
}

// HasRows reports whether the snapshot carries any standings
func (s *Snapshot) HasRows() bool {
	return s != nil && len(s.Standings) > 0
}

// WarningText returns the warning or an empty string
func (s *Snapshot) WarningText() string {
	if s == nil || s.Warning == nil {
		return ""
	}
	return *s.Warning
}

// Degraded reports whether the snapshot is flagged as degraded
func (s *Snapshot) Degraded() bool {
	return s != nil && s.Status == StatusDegraded
}

// Repair rebuilds a snapshot read from disk so that the count and status
// fields match its rows and warning again.
func (s *Snapshot) Repair() *Snapshot {
	at, err := time.Parse(time.RFC3339, s.UpdatedAt)
	repaired := NewSnapshot(s.Standings, s.Source, s.WarningText(), at)
	if err != nil {
		repaired.UpdatedAt = s.UpdatedAt
	}
	return repaired
}
