package models

import (
	"fmt"
	"strings"
	"time"
)

// Employee is a contact record in the staff registry. An employee must be
// reachable through at least one of the three phone fields, and a personal
// phone number, when set, is unique across the whole registry.
type Employee struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Surname       string    `json:"surname" db:"surname"`
	Patronymic    string    `json:"patronymic" db:"patronymic"`
	Position      string    `json:"position" db:"position"`
	WorkPhone     string    `json:"work_phone,omitempty" db:"work_phone"`
	PersonalPhone string    `json:"personal_phone,omitempty" db:"personal_phone"`
	Fax           string    `json:"fax,omitempty" db:"fax"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// EmployeePatch carries a partial update. Nil fields keep the stored value,
// so PATCH requests can distinguish "leave alone" from "clear".
type EmployeePatch struct {
	Name          *string `json:"name"`
	Surname       *string `json:"surname"`
	Patronymic    *string `json:"patronymic"`
	Position      *string `json:"position"`
	WorkPhone     *string `json:"work_phone"`
	PersonalPhone *string `json:"personal_phone"`
	Fax           *string `json:"fax"`
}

// ValidationError reports a rule-violating field to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the employee invariants on the full field set.
func (e *Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(e.Surname) == "" {
		return &ValidationError{Field: "surname", Message: "surname is required"}
	}
	if e.WorkPhone == "" && e.PersonalPhone == "" && e.Fax == "" {
		return &ValidationError{Message: "at least one phone number must be provided"}
	}
	return nil
}

// Merge applies a patch on top of the stored record and returns the result.
// Validation always runs against the merged set, so a partial update cannot
// strip the last remaining contact method unnoticed.
func (e Employee) Merge(patch EmployeePatch) Employee {
	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.Surname != nil {
		e.Surname = *patch.Surname
	}
	if patch.Patronymic != nil {
		e.Patronymic = *patch.Patronymic
	}
	if patch.Position != nil {
		e.Position = *patch.Position
	}
	if patch.WorkPhone != nil {
		e.WorkPhone = *patch.WorkPhone
	}
	if patch.PersonalPhone != nil {
		e.PersonalPhone = *patch.PersonalPhone
	}
	if patch.Fax != nil {
		e.Fax = *patch.Fax
	}
	return e
}
