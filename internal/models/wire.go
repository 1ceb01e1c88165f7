package models

// NewCommitData is the commit shape sync clients post. All string
// fields must be non-empty and Author must parse as "NAME <EMAIL>".
type NewCommitData struct {
	Author  string        `json:"author"`
	Branch  string        `json:"branch"`
	Message string        `json:"message"`
	Hash    string        `json:"hash"`
	Time    int64         `json:"time"`
	Files   []NewFileData `json:"files"`
}

type NewFileData struct {
	Path         string          `json:"path"`
	Status       string          `json:"status"`
	TimeTotal    int64           `json:"time_total"`
	AddedLines   int64           `json:"added_lines"`
	DeletedLines int64           `json:"deleted_lines"`
	Timeline     []NewSampleData `json:"timeline"`
}

type NewSampleData struct {
	Timestamp   int64 `json:"timestamp"`
	TimeSeconds int64 `json:"time"`
}

// NewRepositoryData is the batch payload sync clients send.
type NewRepositoryData struct {
	Owner    string          `json:"user"`
	Platform string          `json:"provider"`
	Slug     string          `json:"repo"`
	Commits  []NewCommitData `json:"commits"`
}

// NewRepositoryEnvelope is the request body for POST/PUT /repositories:
// the batch payload nested under its "repository" key.
type NewRepositoryEnvelope struct {
	Repository NewRepositoryData `json:"repository"`
}

// HashInfo answers the sync client's "what do you already have" query.
// A repository with zero commits yields the zero value with an empty list.
type HashInfo struct {
	Hash                string   `json:"hash"`
	Timestamp           int64    `json:"timestamp"`
	TrackedCommitHashes []string `json:"tracked_commit_hashes"`
}
