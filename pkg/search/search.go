// Package search narrows an organization's employee page by a free-text term.
package search

import (
	"strings"

	"org-registry-backend/pkg/models"
)

// PageLimit caps how many employees a single organization view returns,
// with or without a search term.
const PageLimit = 5

// Filter returns the employees matching term, case-insensitively, across
// name, surname, patronymic, position and all three phone fields. An empty
// term matches everything. The result is capped at limit entries and keeps
// the input order; the input slice is never modified.
func Filter(employees []models.Employee, term string, limit int) []models.Employee {
	if limit <= 0 {
		limit = PageLimit
	}
	term = strings.ToLower(strings.TrimSpace(term))

	var result []models.Employee
	for _, e := range employees {
		if term == "" || matches(e, term) {
			result = append(result, e)
			if len(result) == limit {
				break
			}
		}
	}
	return result
}

func matches(e models.Employee, term string) bool {
	for _, field := range []string{
		e.Name,
		e.Surname,
		e.Patronymic,
		e.Position,
		e.WorkPhone,
		e.PersonalPhone,
		e.Fax,
	} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
