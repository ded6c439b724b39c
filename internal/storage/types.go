package storage

import "time"

// GoalStatus mirrors the tracker's goal lifecycle.
type GoalStatus int

const (
	StatusToDo GoalStatus = iota + 1
	StatusInProgress
	StatusDone
	StatusArchived
)

// Label returns the user-facing status name.
func (s GoalStatus) Label() string {
	switch s {
	case StatusToDo:
		return "To do"
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	case StatusArchived:
		return "Archived"
	default:
		return "Unknown"
	}
}

// GoalPriority mirrors the tracker's priority scale.
type GoalPriority int

const (
	PriorityLow GoalPriority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// ParticipantRole is a board participant's permission level.
type ParticipantRole int

const (
	RoleOwner ParticipantRole = iota + 1
	RoleWriter
	RoleReader
)

// Board is a goal board the account participates in.
type Board struct {
	ID        int64
	Title     string
	IsDeleted bool
	Created   time.Time
	Updated   time.Time
}

// Category groups goals on a board. A category is selectable for goal
// creation only when it belongs to the requesting account's boards and is
// not soft-deleted.
type Category struct {
	ID        int64
	BoardID   int64
	Title     string
	IsDeleted bool
	Created   time.Time
	Updated   time.Time
}

// Goal is a tracked goal owned by an account.
type Goal struct {
	ID            int64
	AccountID     int64
	CategoryID    int64
	CategoryTitle string
	Title         string
	Description   string
	DueDate       string // YYYY-MM-DD, empty when unset
	Status        GoalStatus
	Priority      GoalPriority
	Created       time.Time
	Updated       time.Time
}

// NewGoal carries the fields collected by the creation workflow.
type NewGoal struct {
	AccountID   int64
	CategoryID  int64
	Title       string
	Description string
	DueDate     string // YYYY-MM-DD, empty when unset
}
