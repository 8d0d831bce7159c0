package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/ports"
)

func makeView(title string, stateOrder, priorityOrder int, project string, createdAt int64) *entities.TaskView {
	v := &entities.TaskView{
		Task: entities.Task{Title: title, CreatedAt: createdAt, UpdatedAt: createdAt},
		State: &entities.TaskState{
			Name:  "state",
			Order: stateOrder,
		},
		Priority: &entities.Priority{
			Name:  "priority",
			Order: priorityOrder,
		},
	}
	if project != "" {
		v.Project = &entities.Project{Name: project}
	}
	return v
}

func titles(views []*entities.TaskView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Title)
	}
	return out
}

func TestSortByTitleLocaleAware(t *testing.T) {
	views := []*entities.TaskView{
		makeView("banana", 0, 0, "", 1),
		makeView("Apple", 0, 0, "", 2),
		makeView("cherry", 0, 0, "", 3),
	}

	sorted := SortAndSearch(views, []ports.SortKey{{Column: ports.SortByTitle, Direction: ports.SortAsc}}, "")
	assert.Equal(t, []string{"Apple", "banana", "cherry"}, titles(sorted))

	sorted = SortAndSearch(views, []ports.SortKey{{Column: ports.SortByTitle, Direction: ports.SortDesc}}, "")
	assert.Equal(t, []string{"cherry", "banana", "Apple"}, titles(sorted))
}

func TestSortByTitleDistinguishesCase(t *testing.T) {
	views := []*entities.TaskView{
		makeView("Apple", 0, 0, "", 1),
		makeView("apple", 0, 0, "", 2),
	}

	// Titles differing only in case are not equal; lowercase sorts first
	// ascending under English collation.
	sorted := SortAndSearch(views, []ports.SortKey{{Column: ports.SortByTitle, Direction: ports.SortAsc}}, "")
	assert.Equal(t, []string{"apple", "Apple"}, titles(sorted))

	sorted = SortAndSearch(views, []ports.SortKey{{Column: ports.SortByTitle, Direction: ports.SortDesc}}, "")
	assert.Equal(t, []string{"Apple", "apple"}, titles(sorted))
}

func TestSortByOrderFields(t *testing.T) {
	views := []*entities.TaskView{
		makeView("c", 2, 0, "", 1),
		makeView("a", 0, 0, "", 2),
		makeView("b", 1, 0, "", 3),
	}

	sorted := SortAndSearch(views, []ports.SortKey{{Column: ports.SortByState, Direction: ports.SortAsc}}, "")
	assert.Equal(t, []string{"a", "b", "c"}, titles(sorted))
}

func TestSortMissingReferenceTreatedAsZero(t *testing.T) {
	withState := makeView("ordered", 3, 0, "", 1)
	orphan := makeView("orphan", 0, 0, "", 2)
	orphan.State = nil

	sorted := SortAndSearch([]*entities.TaskView{withState, orphan},
		[]ports.SortKey{{Column: ports.SortByState, Direction: ports.SortAsc}}, "")
	assert.Equal(t, []string{"orphan", "ordered"}, titles(sorted))
}

func TestSortMultiKeyLexicographic(t *testing.T) {
	views := []*entities.TaskView{
		makeView("b", 1, 0, "", 1),
		makeView("a", 1, 0, "", 2),
		makeView("c", 0, 0, "", 3),
	}

	sorted := SortAndSearch(views, []ports.SortKey{
		{Column: ports.SortByState, Direction: ports.SortAsc},
		{Column: ports.SortByTitle, Direction: ports.SortAsc},
	}, "")
	assert.Equal(t, []string{"c", "a", "b"}, titles(sorted))
}

func TestSortStableAndDuplicateKeysIgnored(t *testing.T) {
	views := []*entities.TaskView{
		makeView("first", 0, 0, "", 1),
		makeView("second", 0, 0, "", 1),
	}

	// All keys tie; input order is preserved. The duplicate descending title
	// key cannot override the first title key.
	sorted := SortAndSearch(views, []ports.SortKey{
		{Column: ports.SortByState, Direction: ports.SortAsc},
		{Column: ports.SortByCreatedAt, Direction: ports.SortAsc},
	}, "")
	assert.Equal(t, []string{"first", "second"}, titles(sorted))

	sorted = SortAndSearch(views, []ports.SortKey{
		{Column: ports.SortByTitle, Direction: ports.SortAsc},
		{Column: ports.SortByTitle, Direction: ports.SortDesc},
	}, "")
	assert.Equal(t, []string{"first", "second"}, titles(sorted))
}

func TestSearchMatchesDenormalizedNames(t *testing.T) {
	urgent := makeView("fix login", 0, 0, "Website", 1)
	urgent.Priority.Name = "Urgent"
	name := "Bob Smith"
	urgent.AssigneeUsers = []*entities.User{{Name: &name, Email: "bob@example.com"}}
	urgent.TagList = []*entities.Tag{{Name: "backend"}}

	other := makeView("write docs", 0, 0, "Docs", 2)

	views := []*entities.TaskView{urgent, other}

	for _, query := range []string{"LOGIN", "urgent", "website", "bob", "bob@example", "BACKend"} {
		result := SortAndSearch(views, nil, query)
		require.Len(t, result, 1, "query %q", query)
		assert.Equal(t, "fix login", result[0].Title, "query %q", query)
	}

	assert.Len(t, SortAndSearch(views, nil, "nothing-matches"), 0)
	assert.Len(t, SortAndSearch(views, nil, "  "), 2)
}
