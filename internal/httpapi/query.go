package httpapi

import (
	"errors"
	"net/url"
	"strings"

	"tasklist/internal/model"
)

type listFilters struct {
	hasDone bool
	done    bool
}

func parseListFilters(q url.Values) (listFilters, error) {
	var filters listFilters
	if v := q.Get("done"); v != "" {
		parsed, err := parseBoolStrict(v)
		if err != nil {
			return listFilters{}, errors.New("done must be true or false")
		}
		filters.hasDone = true
		filters.done = parsed
	}
	return filters, nil
}

func filterTasks(tasks []model.Task, filters listFilters) []model.Task {
	if !filters.hasDone {
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Done == filters.done {
			out = append(out, t)
		}
	}
	return out
}

func parseBoolStrict(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, errors.New("not a bool")
	}
}
