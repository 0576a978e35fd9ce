package shared

// Status is the classification of one live file against the baseline.
type Status int

const (
	// Unchanged files are tracked and match their record. They are never
	// reported.
	Unchanged Status = iota
	// Untracked files have no usable record.
	Untracked
	// Modified files differ from their record in size or content.
	Modified
)

func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Untracked:
		return "untracked"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Short is the one-letter marker used in status listings.
func (s Status) Short() string {
	switch s {
	case Untracked:
		return "?"
	case Modified:
		return "M"
	default:
		return " "
	}
}

// Change is a classified file.
type Change struct {
	Path   string `json:"path"`
	Status Status `json:"status"`
}
