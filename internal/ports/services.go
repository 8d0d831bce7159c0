package ports

import (
	"github.com/google/uuid"
)

// TaskListFilter is the filter specification accepted by the task query
// engine: one archived/active partition flag plus five dimensions, each with
// an inclusion and an exclusion set. Within a dimension membership is OR;
// dimensions combine with AND. An empty set passes everything.
type TaskListFilter struct {
	Archived bool `json:"archived"`

	StateIDs        []uuid.UUID `json:"state_ids,omitempty"`
	ExcludeStateIDs []uuid.UUID `json:"exclude_state_ids,omitempty"`

	PriorityIDs        []uuid.UUID `json:"priority_ids,omitempty"`
	ExcludePriorityIDs []uuid.UUID `json:"exclude_priority_ids,omitempty"`

	ProjectIDs        []uuid.UUID `json:"project_ids,omitempty"`
	ExcludeProjectIDs []uuid.UUID `json:"exclude_project_ids,omitempty"`

	AssigneeIDs        []uuid.UUID `json:"assignee_ids,omitempty"`
	ExcludeAssigneeIDs []uuid.UUID `json:"exclude_assignee_ids,omitempty"`

	TagIDs        []uuid.UUID `json:"tag_ids,omitempty"`
	ExcludeTagIDs []uuid.UUID `json:"exclude_tag_ids,omitempty"`

	// Limit caps the returned page after creation-time-descending ordering.
	// Zero or negative means the default of 50.
	Limit int `json:"limit,omitempty"`
}

// DefaultTaskListLimit is applied when a filter carries no explicit limit.
const DefaultTaskListLimit = 50

// SortColumn enumerates the columns the sort layer understands.
type SortColumn string

const (
	SortByTitle     SortColumn = "title"
	SortByState     SortColumn = "state"
	SortByPriority  SortColumn = "priority"
	SortByProject   SortColumn = "project"
	SortByCreatedAt SortColumn = "createdAt"
	SortByUpdatedAt SortColumn = "updatedAt"
)

// IsValid reports whether c is a sortable column.
func (c SortColumn) IsValid() bool {
	switch c {
	case SortByTitle, SortByState, SortByPriority, SortByProject, SortByCreatedAt, SortByUpdatedAt:
		return true
	default:
		return false
	}
}

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortKey is one (column, direction) pair. Keys compose lexicographically:
// the first non-tied key decides.
type SortKey struct {
	Column    SortColumn    `json:"column"`
	Direction SortDirection `json:"direction"`
}

// Request types

// CreateTaskRequest carries the fields for task creation.
type CreateTaskRequest struct {
	Title       string      `json:"title" validate:"required,min=1"`
	Description *string     `json:"description"`
	StateID     uuid.UUID   `json:"state_id" validate:"required"`
	PriorityID  uuid.UUID   `json:"priority_id" validate:"required"`
	ProjectID   *uuid.UUID  `json:"project_id"`
	Assignees   []uuid.UUID `json:"assignees"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
}

// UpdateTaskRequest is a partial patch: only non-nil fields are applied and
// only fields whose value actually changed appear in the audit diff.
type UpdateTaskRequest struct {
	Title       *string      `json:"title" validate:"omitempty,min=1"`
	Description *string      `json:"description"`
	StateID     *uuid.UUID   `json:"state_id"`
	PriorityID  *uuid.UUID   `json:"priority_id"`
	ProjectID   *uuid.UUID   `json:"project_id"`
	Assignees   *[]uuid.UUID `json:"assignees"`
	TagIDs      *[]uuid.UUID `json:"tag_ids"`
}

// CreateLookupRequest covers task state and priority creation.
type CreateLookupRequest struct {
	Name  string  `json:"name" validate:"required,min=1"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateLookupRequest patches a task state or priority.
type UpdateLookupRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

// CreateTagRequest carries the fields for tag creation. Tag color is
// mandatory, unlike states and priorities.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,min=1"`
	Color string `json:"color" validate:"required,hexcolor"`
}

// UpdateTagRequest patches a tag.
type UpdateTagRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

// CreateProjectRequest carries the fields for project creation.
type CreateProjectRequest struct {
	Name        string  `json:"name" validate:"required,min=1"`
	Description *string `json:"description"`
}

// UpdateProjectRequest patches a project.
type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

// CreateUpdateRequest adds a comment to a task.
type CreateUpdateRequest struct {
	TaskID uuid.UUID `json:"task_id" validate:"required"`
	Body   string    `json:"body" validate:"required,min=1"`
}

// CreatePresetRequest saves a filter preset. Filters and sort keys travel as
// opaque serialized strings owned by the caller.
type CreatePresetRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Filters  string `json:"filters" validate:"required"`
	SortKeys string `json:"sort_keys" validate:"required"`
}

// UpdatePresetRequest patches a filter preset.
type UpdatePresetRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Filters  *string `json:"filters"`
	SortKeys *string `json:"sort_keys"`
}
