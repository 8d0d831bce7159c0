package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrProjectNotFound        = errors.New("project not found")
	ErrStateNotFound          = errors.New("task state not found")
	ErrPriorityNotFound       = errors.New("priority not found")
	ErrTagNotFound            = errors.New("tag not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrTaskUpdateNotFound     = errors.New("task update not found")
	ErrPresetNotFound         = errors.New("filter preset not found")
	ErrNotAuthenticated       = errors.New("not authenticated")
	ErrNotAuthorized          = errors.New("not authorized")
	ErrAllowlistNotConfigured = errors.New("allowed emails list is not configured")
	ErrInUse                  = errors.New("entity is referenced by existing tasks")
	ErrTitleRequired          = errors.New("task title is required")
)

// AuditAction identifies one kind of state-changing operation. The set is
// closed: new behavior gets a new action rather than reusing an existing one.
type AuditAction string

const (
	ActionCreate       AuditAction = "create"
	ActionUpdate       AuditAction = "update"
	ActionDelete       AuditAction = "delete"
	ActionArchive      AuditAction = "archive"
	ActionUnarchive    AuditAction = "unarchive"
	ActionReorder      AuditAction = "reorder"
	ActionSignup       AuditAction = "signup"
	ActionAddUpdate    AuditAction = "add_update"
	ActionRemoveUpdate AuditAction = "remove_update"
)

// IsValid reports whether a is one of the known audit actions.
func (a AuditAction) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionArchive, ActionUnarchive,
		ActionReorder, ActionSignup, ActionAddUpdate, ActionRemoveUpdate:
		return true
	default:
		return false
	}
}

// Entity type names used in audit entries.
const (
	EntityTask       = "task"
	EntityProject    = "project"
	EntityTaskState  = "taskState"
	EntityPriority   = "priority"
	EntityTag        = "tag"
	EntityTaskUpdate = "taskUpdate"
	EntityPreset     = "filterPreset"
	EntityUser       = "user"
)

// Millis converts a time to epoch milliseconds. All entity timestamps are
// stored as epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// Task is the primary trackable unit of work.
type Task struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description *string     `json:"description" db:"description"`
	StateID     uuid.UUID   `json:"state_id" db:"state_id"`
	PriorityID  uuid.UUID   `json:"priority_id" db:"priority_id"`
	ProjectID   *uuid.UUID  `json:"project_id" db:"project_id"`
	Assignees   []uuid.UUID `json:"assignees"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
	CreatorID   uuid.UUID   `json:"creator_id" db:"creator_id"`
	Archived    bool        `json:"archived" db:"archived"`
	ArchivedAt  *int64      `json:"archived_at" db:"archived_at"`
	CreatedAt   int64       `json:"created_at" db:"created_at"`
	UpdatedAt   int64       `json:"updated_at" db:"updated_at"`
}

// HasAssignee reports whether the task is assigned to the given user.
func (t *Task) HasAssignee(userID uuid.UUID) bool {
	for _, a := range t.Assignees {
		if a == userID {
			return true
		}
	}
	return false
}

// HasTag reports whether the task carries the given tag.
func (t *Task) HasTag(tagID uuid.UUID) bool {
	for _, id := range t.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// SetArchived flips the archived flag keeping the archived/archivedAt
// invariant: archivedAt is set iff archived is true.
func (t *Task) SetArchived(archived bool, now int64) {
	t.Archived = archived
	if archived {
		at := now
		t.ArchivedAt = &at
	} else {
		t.ArchivedAt = nil
	}
	t.UpdatedAt = now
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.ProjectID != nil {
		p := *t.ProjectID
		c.ProjectID = &p
	}
	if t.ArchivedAt != nil {
		at := *t.ArchivedAt
		c.ArchivedAt = &at
	}
	c.Assignees = append([]uuid.UUID(nil), t.Assignees...)
	c.TagIDs = append([]uuid.UUID(nil), t.TagIDs...)
	return &c
}

// TaskState is a user-defined workflow stage with manual ordering. Order is
// dense, zero-based and unique within the collection.
type TaskState struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     *string   `json:"color" db:"color"`
	Order     int       `json:"order" db:"sort_order"`
	CreatedAt int64     `json:"created_at" db:"created_at"`
	UpdatedAt int64     `json:"updated_at" db:"updated_at"`
}

// Priority is a user-defined urgency level with manual ordering.
type Priority struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     *string   `json:"color" db:"color"`
	Order     int       `json:"order" db:"sort_order"`
	CreatedAt int64     `json:"created_at" db:"created_at"`
	UpdatedAt int64     `json:"updated_at" db:"updated_at"`
}

// Tag is a user-defined label, many-to-many with tasks.
type Tag struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt int64     `json:"created_at" db:"created_at"`
	UpdatedAt int64     `json:"updated_at" db:"updated_at"`
}

// Project groups tasks. Projects are never deleted, only archived.
type Project struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Archived    bool      `json:"archived" db:"archived"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt   int64     `json:"created_at" db:"created_at"`
	UpdatedAt   int64     `json:"updated_at" db:"updated_at"`
}

// User is an externally managed identity. Rows are provisioned on first
// sign-in and treated as read-only afterwards.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      *string   `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt int64     `json:"created_at" db:"created_at"`
}

// DisplayName returns the user's name, falling back to the email address.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}

// TaskUpdate is a free-text comment attached to exactly one task.
type TaskUpdate struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TaskID    uuid.UUID `json:"task_id" db:"task_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt int64     `json:"created_at" db:"created_at"`
}

// TaskUpdateView is a task update with its author resolved.
type TaskUpdateView struct {
	TaskUpdate
	User *User `json:"user"`
}

// FilterPreset is a named snapshot of a filter specification and sort-key
// sequence, both carried as opaque serialized strings.
type FilterPreset struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Filters   string    `json:"filters" db:"filters"`
	SortKeys  string    `json:"sort_keys" db:"sort_keys"`
	CreatedBy uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt int64     `json:"created_at" db:"created_at"`
	UpdatedAt int64     `json:"updated_at" db:"updated_at"`
}

// FieldChange records a single field's before/after values in an audit entry.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// AuditEntry is an append-only record of one state-changing action. Entries
// are never mutated or deleted by normal flows.
type AuditEntry struct {
	ID         uuid.UUID              `json:"id" db:"id"`
	UserID     uuid.UUID              `json:"user_id" db:"user_id"`
	Action     AuditAction            `json:"action" db:"action"`
	EntityType string                 `json:"entity_type" db:"entity_type"`
	EntityID   string                 `json:"entity_id" db:"entity_id"`
	Changes    map[string]FieldChange `json:"changes,omitempty"`
	Metadata   map[string]any         `json:"metadata,omitempty"`
	Timestamp  int64                  `json:"timestamp" db:"timestamp"`
}

// AuditEntryView is an audit entry with the acting user resolved.
type AuditEntryView struct {
	AuditEntry
	User *User `json:"user"`
}

// TaskView is a task with its referenced entities embedded. Missing
// references resolve to nil; missing assignees and tags are dropped.
type TaskView struct {
	Task
	State         *TaskState `json:"state"`
	Priority      *Priority  `json:"priority"`
	Project       *Project   `json:"project"`
	AssigneeUsers []*User    `json:"assignee_users"`
	TagList       []*Tag     `json:"tag_list"`
}
