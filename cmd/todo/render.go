package todo

import (
	"fmt"
	"github.com/ValentinKolb/dTodo/lib/todo"
	"github.com/charmbracelet/lipgloss"
	"sort"
	"strings"
	"time"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

func ok(msg string) {
	fmt.Println(successStyle.Render("✔ " + msg))
}

// renderTodo renders all fields of a single todo in a panel
func renderTodo(t todo.Todo) string {
	status := pendingStyle.Render("open")
	if t.Completed {
		status = successStyle.Render("done")
	}
	completedAt := "-"
	if t.CompletedAt != nil {
		completedAt = t.CompletedAt.Local().Format(time.DateTime)
	}

	lines := []string{
		titleStyle.Render(t.Title),
		"",
		mutedStyle.Render("id         ") + accentStyle.Render(t.ID),
		mutedStyle.Render("status     ") + status,
		mutedStyle.Render("created    ") + t.CreatedAt.Local().Format(time.DateTime),
		mutedStyle.Render("completed  ") + completedAt,
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// renderList renders one line per todo, open todos first, each group sorted by creation time
func renderList(todos []todo.Todo) string {
	if len(todos) == 0 {
		return mutedStyle.Render("No todos found")
	}

	sorted := make([]todo.Todo, len(todos))
	copy(sorted, todos)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Completed != sorted[j].Completed {
			return !sorted[i].Completed
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	done := 0
	lines := make([]string, 0, len(sorted)+2)
	for _, t := range sorted {
		if t.Completed {
			done++
			lines = append(lines, fmt.Sprintf("%s %s %s", boxChecked, doneStyle.Render(t.Title), mutedStyle.Render(t.ID)))
		} else {
			lines = append(lines, fmt.Sprintf("%s %s %s", boxUnchecked, t.Title, mutedStyle.Render(t.ID)))
		}
	}
	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("%d/%d done", done, len(sorted))))

	return panelStyle.Render(strings.Join(lines, "\n"))
}
