package services

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/ports"
)

// Default tertiary strength: case and diacritics distinguish titles that
// compare equal at the primary level, lowercase ordering before uppercase.
var taskCollator = collate.New(language.English)

// SortAndSearch narrows a denormalized page by a free-text query and then
// applies multi-key ordering. The input slice is not modified.
func SortAndSearch(tasks []*entities.TaskView, keys []ports.SortKey, search string) []*entities.TaskView {
	result := make([]*entities.TaskView, 0, len(tasks))
	query := strings.ToLower(strings.TrimSpace(search))
	for _, t := range tasks {
		if query == "" || taskMatchesSearch(t, query) {
			result = append(result, t)
		}
	}

	keys = dedupeSortKeys(keys)
	if len(keys) == 0 {
		return result
	}

	sort.SliceStable(result, func(i, j int) bool {
		for _, key := range keys {
			c := compareTasks(result[i], result[j], key.Column)
			if key.Direction == ports.SortDesc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	return result
}

// taskMatchesSearch does case-insensitive substring matching over the title
// and every denormalized name the task carries.
func taskMatchesSearch(t *entities.TaskView, query string) bool {
	if strings.Contains(strings.ToLower(t.Title), query) {
		return true
	}
	if t.State != nil && strings.Contains(strings.ToLower(t.State.Name), query) {
		return true
	}
	if t.Priority != nil && strings.Contains(strings.ToLower(t.Priority.Name), query) {
		return true
	}
	if t.Project != nil && strings.Contains(strings.ToLower(t.Project.Name), query) {
		return true
	}
	for _, u := range t.AssigneeUsers {
		if strings.Contains(strings.ToLower(u.DisplayName()), query) {
			return true
		}
		if strings.Contains(strings.ToLower(u.Email), query) {
			return true
		}
	}
	for _, tg := range t.TagList {
		if strings.Contains(strings.ToLower(tg.Name), query) {
			return true
		}
	}
	return false
}

// dedupeSortKeys keeps the first occurrence of each column; a later duplicate
// can never influence the ordering anyway.
func dedupeSortKeys(keys []ports.SortKey) []ports.SortKey {
	seen := make(map[ports.SortColumn]bool, len(keys))
	out := make([]ports.SortKey, 0, len(keys))
	for _, k := range keys {
		if !k.Column.IsValid() || seen[k.Column] {
			continue
		}
		seen[k.Column] = true
		out = append(out, k)
	}
	return out
}

func compareTasks(a, b *entities.TaskView, column ports.SortColumn) int {
	switch column {
	case ports.SortByTitle:
		return taskCollator.CompareString(a.Title, b.Title)
	case ports.SortByState:
		return compareInt(lookupOrder(a.State), lookupOrder(b.State))
	case ports.SortByPriority:
		return compareInt(lookupPriorityOrder(a.Priority), lookupPriorityOrder(b.Priority))
	case ports.SortByProject:
		return taskCollator.CompareString(projectName(a), projectName(b))
	case ports.SortByCreatedAt:
		return compareInt64(a.CreatedAt, b.CreatedAt)
	case ports.SortByUpdatedAt:
		return compareInt64(a.UpdatedAt, b.UpdatedAt)
	}
	return 0
}

func lookupOrder(st *entities.TaskState) int {
	if st == nil {
		return 0
	}
	return st.Order
}

func lookupPriorityOrder(p *entities.Priority) int {
	if p == nil {
		return 0
	}
	return p.Order
}

func projectName(t *entities.TaskView) string {
	if t.Project == nil {
		return ""
	}
	return t.Project.Name
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
