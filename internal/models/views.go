package models

// TimelineBucket is one interval-timeline entry. Time is hours rounded
// to one decimal place.
type TimelineBucket struct {
	Start     string  `json:"start"`
	End       string  `json:"end"`
	TimeHours float64 `json:"time"`
	UserCount int     `json:"users"`
}

// ActivityBucket is one cyclic-activity entry, keyed by position within
// the recurrence (hour of day, day of week, day of month, month of year).
type ActivityBucket struct {
	Label        string  `json:"label"`
	LabelKey     int     `json:"label_key"`
	TimeHours    float64 `json:"time"`
	LinesAdded   int64   `json:"lines_added"`
	LinesRemoved int64   `json:"lines_removed"`
	UserCount    int     `json:"users"`
}

// SubdirEntry is one (bucket, path) roll-up entry.
type SubdirEntry struct {
	Path         string  `json:"path"`
	TimeHours    float64 `json:"time"`
	LinesAdded   int64   `json:"lines_added"`
	LinesRemoved int64   `json:"lines_removed"`
	Commits      int     `json:"commits"`
	UserCount    int     `json:"users"`
}

// SubdirTimeline is the full roll-up response: the sorted union of kept
// paths plus "other", and one path→entry map per outer bucket.
type SubdirTimeline struct {
	Paths []string       `json:"paths"`
	Data  []SubdirBucket `json:"data"`
}

type SubdirBucket struct {
	Start   string                 `json:"start"`
	End     string                 `json:"end"`
	Entries map[string]SubdirEntry `json:"entries"`
}

// Stat is one comparison metric: whole-cohort total, the subset matching
// the request filters, the filtered subset's rank among all
// (user × repo × branch) partitions ordered by time descending, and the
// per-rank values.
type Stat struct {
	Total       float64     `json:"total"`
	Highlighted float64     `json:"highlighted"`
	Rank        int         `json:"rank"`
	Data        []RankValue `json:"data"`
}

type RankValue struct {
	Rank  int     `json:"rank"`
	Value float64 `json:"value"`
}

// Comparison is the cross-cohort comparison response.
type Comparison struct {
	Branches         []string         `json:"branches"`
	Users            []string         `json:"users"`
	Repos            []ComparisonRepo `json:"repos"`
	Time             Stat             `json:"time"`
	Commits          Stat             `json:"commits"`
	LinesAdded       Stat             `json:"lines_added"`
	LinesRemoved     Stat             `json:"lines_removed"`
	Timeline         []TimelineBucket `json:"timeline"`
	FilteredTimeline []TimelineBucket `json:"filtered_timeline"`
}

type ComparisonRepo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserStat is the per-contributor row in group stats.
type UserStat struct {
	User           string  `json:"user"`
	TimeHours      float64 `json:"time"`
	Commits        int     `json:"commits"`
	LinesAdded     int64   `json:"lines_added"`
	LinesRemoved   int64   `json:"lines_removed"`
	LinesPerHour   int64   `json:"lines_per_hour"`
	CommitsPerHour float64 `json:"commits_per_hour"`
	LinesPerCommit float64 `json:"lines_per_commit"`
}

// FileStat is the per-path row in group stats. TimePerUser divides the
// raw time by the number of unique commit authors touching the path.
type FileStat struct {
	Path         string  `json:"path"`
	TimeHours    float64 `json:"time"`
	TimePerUser  float64 `json:"time_per_user"`
	Commits      int     `json:"commits"`
	LinesAdded   int64   `json:"lines_added"`
	LinesRemoved int64   `json:"lines_removed"`
	UserCount    int     `json:"users"`
}

// GroupStats is the /stats response.
type GroupStats struct {
	Users []UserStat `json:"users"`
	Files []FileStat `json:"files"`
}

// RepositoryView is the ingest response shape.
type RepositoryView struct {
	ID          int64  `json:"id"`
	Platform    string `json:"provider"`
	Owner       string `json:"user"`
	Slug        string `json:"repo"`
	Group       string `json:"group"`
	CommitCount int    `json:"commit_count"`
}
