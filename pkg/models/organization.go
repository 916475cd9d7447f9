package models

import "time"

// Organization is a named entity owning a set of employees. The creator is
// fixed at creation time; other users gain edit access through the
// collaborator relation.
type Organization struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Address     string    `json:"address,omitempty" db:"address"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatorID   string    `json:"creator_id" db:"creator_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// OrganizationEmployee links an employee to an organization. The pair is
// unique; deleting either side clears the reference instead of cascading.
type OrganizationEmployee struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	EmployeeID     string    `json:"employee_id" db:"employee_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// OrganizationCollaborator records granted edit access, distinct from
// creation. The (organization, user) pair is unique.
type OrganizationCollaborator struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
