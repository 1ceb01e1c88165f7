package models

import "time"

// Group is a node in the repository grouping graph. Leaf groups are
// named {platform}-{owner}-{repo} and own exactly one repository;
// every other group exists only to roll leaves up.
type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"added_at"`
}

// GroupEdge is a parent→child edge in the group graph. The relation
// must stay acyclic; edge creation checks for cycles.
type GroupEdge struct {
	ParentID int64 `json:"parent_id"`
	ChildID  int64 `json:"child_id"`
}

// GroupAccess grants a user read access to a group. With Recursive set
// the grant extends to every transitive descendant of the group.
type GroupAccess struct {
	UserID    int64 `json:"user_id"`
	GroupID   int64 `json:"group_id"`
	Recursive bool  `json:"recursive"`
}
