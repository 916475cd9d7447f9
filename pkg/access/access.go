// Package access answers "may user U act on organization O" and manages the
// collaborator set. A user holds exactly one role per organization.
package access

import (
	"errors"
	"fmt"

	"org-registry-backend/pkg/database"
	"org-registry-backend/pkg/models"
)

// Role is the caller's standing toward one organization.
type Role string

const (
	// RoleCreator is assigned once at creation and never transitions.
	RoleCreator Role = "creator"
	// RoleCollaborator marks granted edit access.
	RoleCollaborator Role = "collaborator"
	// RoleNone is everyone else.
	RoleNone Role = "none"
)

// ErrForbidden marks an authenticated caller without the required role.
var ErrForbidden = errors.New("forbidden")

// Controller resolves roles and mutates the collaborator set.
type Controller struct {
	db database.Store
}

// NewController wraps a store.
func NewController(db database.Store) *Controller {
	return &Controller{db: db}
}

// RoleFor resolves the caller's role. The creator check runs first, so the
// creator is always part of the edit set even without a collaborator row.
func (c *Controller) RoleFor(userID string, org *models.Organization) (Role, error) {
	if org.CreatorID == userID {
		return RoleCreator, nil
	}
	ok, err := c.db.IsCollaborator(org.ID, userID)
	if err != nil {
		return RoleNone, err
	}
	if ok {
		return RoleCollaborator, nil
	}
	return RoleNone, nil
}

// CanEdit reports whether the caller may read or write the organization.
// Read and write share one predicate; only admin actions are creator-bound.
func (c *Controller) CanEdit(userID string, org *models.Organization) (bool, error) {
	role, err := c.RoleFor(userID, org)
	if err != nil {
		return false, err
	}
	return role != RoleNone, nil
}

// IsCreator is the strict check behind delete, grant, revoke, and the
// collaborator listing.
func (c *Controller) IsCreator(userID string, org *models.Organization) bool {
	return org.CreatorID == userID
}

// Grant adds every user named by email to the collaborator set. The whole
// email list is resolved before anything is written, so one unknown address
// mutates nothing. Granting to an existing collaborator is a no-op.
func (c *Controller) Grant(org *models.Organization, callerID string, emails []string) ([]models.User, error) {
	if !c.IsCreator(callerID, org) {
		return nil, ErrForbidden
	}
	users, err := c.db.GetUsersByEmails(emails)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == org.CreatorID {
			// The creator already holds the edit role.
			continue
		}
		if err := c.db.AddCollaborator(org.ID, u.ID); err != nil {
			return nil, fmt.Errorf("failed to grant access to %s: %w", u.Email, err)
		}
	}
	return c.db.ListCollaborators(org.ID)
}

// Revoke removes every named user from the collaborator set. Both the email
// resolution and the membership check complete before the first removal, so
// a bad entry leaves the set untouched.
func (c *Controller) Revoke(org *models.Organization, callerID string, emails []string) ([]models.User, error) {
	if !c.IsCreator(callerID, org) {
		return nil, ErrForbidden
	}
	users, err := c.db.GetUsersByEmails(emails)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		ok, err := c.db.IsCollaborator(org.ID, u.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("user %s has no access to revoke: %w", u.Email, database.ErrNotFound)
		}
	}
	for _, u := range users {
		if err := c.db.RemoveCollaborator(org.ID, u.ID); err != nil {
			return nil, fmt.Errorf("failed to revoke access from %s: %w", u.Email, err)
		}
	}
	return c.db.ListCollaborators(org.ID)
}

// Collaborators returns the collaborator set; creator only.
func (c *Controller) Collaborators(org *models.Organization, callerID string) ([]models.User, error) {
	if !c.IsCreator(callerID, org) {
		return nil, ErrForbidden
	}
	return c.db.ListCollaborators(org.ID)
}
