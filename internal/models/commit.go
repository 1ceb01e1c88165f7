package models

type Commit struct {
	ID           int64  `json:"-"`
	RepositoryID int64  `json:"-"`
	Hash         string `json:"hash"`
	Message      string `json:"message"`
	AuthorEmail  string `json:"author_email"`
	GitUserName  string `json:"git_user_name"`
	Branch       string `json:"branch"`
	// Timestamp is seconds since epoch as reported by the sync client.
	Timestamp int64 `json:"timestamp"`
}

type FileEdit struct {
	ID           int64  `json:"-"`
	CommitID     int64  `json:"-"`
	Path         string `json:"path"`
	Status       string `json:"status"`
	TimeSeconds  int64  `json:"time"`
	LinesAdded   int64  `json:"lines_added"`
	LinesDeleted int64  `json:"lines_deleted"`
}

// TimeSample is one time-on-task sample for a file edit. Timestamps are
// aligned to whatever bucket the upstream agent chose, usually a full hour.
type TimeSample struct {
	ID          int64 `json:"-"`
	FileEditID  int64 `json:"-"`
	Timestamp   int64 `json:"timestamp"`
	TimeSeconds int64 `json:"time"`
}
