package models

import "time"

// SyncClientType distinguishes publicly reachable sync agents from
// private ones that only push.
type SyncClientType int

const (
	SyncClientPublic  SyncClientType = 1
	SyncClientPrivate SyncClientType = 2
)

// SyncClient is an upstream agent allowed to post commit batches.
// The first client to create a repository becomes its exclusive owner.
type SyncClient struct {
	ID      int64          `json:"id"`
	BaseURL string         `json:"base_url"`
	APIKey  string         `json:"-"`
	Type    SyncClientType `json:"type"`
}

type Repository struct {
	ID       int64  `json:"id"`
	GroupID  int64  `json:"-"`
	Platform string `json:"provider"`
	Owner    string `json:"user"`
	Slug     string `json:"repo"`
	// SyncClientID is nil for orphaned repositories; the next updating
	// client claims them.
	SyncClientID *int64    `json:"-"`
	CreatedAt    time.Time `json:"added_at"`
}
