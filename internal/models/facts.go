package models

// SampleFact is one time-sample row from the fact scan. User is the
// canonical identity: the linked username when an Email row matches the
// commit author email, otherwise the raw email.
type SampleFact struct {
	User        string
	Timestamp   int64
	TimeSeconds int64
}

// EditFact is one file-edit row from the fact scan, timestamped by its
// parent commit.
type EditFact struct {
	User         string
	Path         string
	CommitHash   string
	Timestamp    int64
	TimeSeconds  int64
	LinesAdded   int64
	LinesDeleted int64
}

// ComparisonFact is the denormalized row the comparison view scans:
// one row per (commit, file edit) with repository and branch context.
type ComparisonFact struct {
	User         string
	RepositoryID int64
	Repository   string
	CommitHash   string
	Branch       string
	Timestamp    int64
	TimeSeconds  int64
	LinesAdded   int64
	LinesDeleted int64
}

// ExportRow is the denormalized per-(commit, path) shape the export
// endpoint streams for downstream analysis.
type ExportRow struct {
	User         string `json:"user"`
	Platform     string `json:"provider"`
	Repository   string `json:"repo"`
	Branch       string `json:"branch"`
	CommitHash   string `json:"hash"`
	Message      string `json:"message"`
	Path         string `json:"path"`
	Timestamp    int64  `json:"timestamp"`
	TimeSeconds  int64  `json:"time"`
	LinesAdded   int64  `json:"lines_added"`
	LinesDeleted int64  `json:"lines_removed"`
}
