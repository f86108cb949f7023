package cli

import (
	"fmt"
	"io"
	"strings"

	"tasklist/internal/model"
	"tasklist/internal/toast"
)

// formatTask writes "{ID:>6}  [x] {TEXT}".
func formatTask(w io.Writer, t model.Task) {
	mark := " "
	if t.Done {
		mark = "x"
	}
	fmt.Fprintf(w, "%6s  [%s] %s\n", t.ID, mark, normalizeText(t.Text))
}

func formatTasks(w io.Writer, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	for _, t := range tasks {
		formatTask(w, t)
	}
}

func formatToasts(w io.Writer, toasts []toast.Toast) {
	for _, t := range toasts {
		fmt.Fprintf(w, "%s: %s\n", t.Kind, t.Message)
	}
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
