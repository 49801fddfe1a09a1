package standings

// ChangeType names what happened to a team between two runs
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeRank    ChangeType = "rank"
	ChangePoints  ChangeType = "points"
)

// Change describes one difference between the previous and the current rows
type Change struct {
	Name     string     `json:"name"`
	Type     ChangeType `json:"type"`
	OldValue string     `json:"old_value,omitempty"`
	NewValue string     `json:"new_value,omitempty"`
}

// DiffResult contains the results of comparing two row sets
type DiffResult struct {
	Changes []Change
}

// Empty reports whether nothing changed
func (d *DiffResult) Empty() bool {
	return d == nil || len(d.Changes) == 0
}

// Diff compares current rows against a previous snapshot. Teams are matched by
// name. Changes follow the order of the current table, removed teams come last
// in their previous order.
func Diff(previous *Snapshot, current []Row) *DiffResult {
	result := &DiffResult{
		Changes: make([]Change, 0),
	}

	prevByName := make(map[string]Row)
	if previous != nil {
		for _, r := range previous.Standings {
			prevByName[r.Name] = r
		}
	}

	seen := make(map[string]bool, len(current))
	for _, cur := range current {
		seen[cur.Name] = true

		prev, exists := prevByName[cur.Name]
		if !exists {
			result.Changes = append(result.Changes, Change{
				Name:     cur.Name,
				Type:     ChangeAdded,
				NewValue: cur.Rank,
			})
			continue
		}

		if prev.Rank != cur.Rank {
			result.Changes = append(result.Changes, Change{
				Name:     cur.Name,
				Type:     ChangeRank,
				OldValue: prev.Rank,
				NewValue: cur.Rank,
			})
		}

		if prev.Points != cur.Points {
			result.Changes = append(result.Changes, Change{
				Name:     cur.Name,
				Type:     ChangePoints,
				OldValue: prev.Points,
				NewValue: cur.Points,
			})
		}
	}

	if previous != nil {
		for _, prev := range previous.Standings {
			if seen[prev.Name] {
				continue
			}
			seen[prev.Name] = true
			result.Changes = append(result.Changes, Change{
				Name:     prev.Name,
				Type:     ChangeRemoved,
				OldValue: prev.Rank,
			})
		}
	}

	return result
}
