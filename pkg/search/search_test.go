package search

import (
	"fmt"
	"testing"

	"org-registry-backend/pkg/models"
)

func staff() []models.Employee {
	return []models.Employee{
		{Name: "Ivan", Surname: "Ivanov", Patronymic: "Ivanovich", Position: "Director", WorkPhone: "+74950000001"},
		{Name: "Petr", Surname: "Petrov", Patronymic: "Petrovich", Position: "Manager", PersonalPhone: "+74950000002"},
		{Name: "Anna", Surname: "Sidorova", Patronymic: "Olegovna", Position: "Accountant", Fax: "+74950000003"},
	}
}

func TestFilter_CaseInsensitiveSurname(t *testing.T) {
	got := Filter(staff(), "ivanov", PageLimit)
	if len(got) != 1 || got[0].Surname != "Ivanov" {
		t.Fatalf("Filter(ivanov) = %v, want the single Ivanov record", got)
	}

	got = Filter(staff(), "IVANOV", PageLimit)
	if len(got) != 1 {
		t.Fatalf("Filter(IVANOV) returned %d results, want 1", len(got))
	}
}

func TestFilter_MatchesEveryField(t *testing.T) {
	cases := []struct {
		term string
		want string
	}{
		{"petr", "Petrov"},          // name
		{"sidorova", "Sidorova"},    // surname
		{"olegovna", "Sidorova"},    // patronymic
		{"manager", "Petrov"},       // position
		{"74950000001", "Ivanov"},   // work phone
		{"74950000002", "Petrov"},   // personal phone
		{"74950000003", "Sidorova"}, // fax
	}
	for _, tc := range cases {
		t.Run(tc.term, func(t *testing.T) {
			got := Filter(staff(), tc.term, PageLimit)
			if len(got) == 0 || got[0].Surname != tc.want {
				t.Fatalf("Filter(%q) = %v, want surname %s", tc.term, got, tc.want)
			}
		})
	}
}

func TestFilter_EmptyTermReturnsCappedPage(t *testing.T) {
	var many []models.Employee
	for i := 0; i < 12; i++ {
		many = append(many, models.Employee{
			Name:      fmt.Sprintf("Name%d", i),
			Surname:   "Common",
			WorkPhone: fmt.Sprintf("+7000000%04d", i),
		})
	}

	got := Filter(many, "", PageLimit)
	if len(got) != PageLimit {
		t.Fatalf("empty term returned %d results, want %d", len(got), PageLimit)
	}
}

func TestFilter_CapAppliesToMatches(t *testing.T) {
	var many []models.Employee
	for i := 0; i < 9; i++ {
		many = append(many, models.Employee{
			Name:      "Ivan",
			Surname:   "Ivanov",
			WorkPhone: fmt.Sprintf("+7111111%04d", i),
		})
	}

	got := Filter(many, "ivanov", PageLimit)
	if len(got) != PageLimit {
		t.Fatalf("Filter returned %d results, want cap %d", len(got), PageLimit)
	}
}

func TestFilter_NoMatch(t *testing.T) {
	got := Filter(staff(), "nonexistent", PageLimit)
	if len(got) != 0 {
		t.Fatalf("Filter(nonexistent) = %v, want empty", got)
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	in := staff()
	Filter(in, "ivanov", 1)
	if in[0].Surname != "Ivanov" || len(in) != 3 {
		t.Fatal("Filter modified its input slice")
	}
}
