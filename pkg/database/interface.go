package database

import (
	"errors"
	"fmt"

	"org-registry-backend/pkg/models"
)

// Sentinel errors shared by every Store backend. Handlers match these with
// errors.Is and translate them to the response envelope.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateTitle = errors.New("organization title already taken")
	ErrDuplicatePhone = errors.New("personal phone number already in use")
)

// Store defines the persistence surface of the registry.
type Store interface {
	// Users
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	// GetUsersByEmails resolves every email or fails with ErrNotFound
	// without returning a partial result.
	GetUsersByEmails(emails []string) ([]models.User, error)
	DeactivateUser(id string) error

	// Employees
	CreateEmployee(e *models.Employee) error
	GetEmployee(id string) (*models.Employee, error)
	// GetEmployeesByIDs resolves every ID or fails with ErrNotFound.
	GetEmployeesByIDs(ids []string) ([]models.Employee, error)
	ListEmployees() ([]models.Employee, error)
	UpdateEmployee(e *models.Employee) error
	DeleteEmployee(id string) error

	// Organizations
	CreateOrganization(org *models.Organization) error
	GetOrganization(id string) (*models.Organization, error)
	ListUserOrganizations(userID string) ([]models.Organization, error)
	UpdateOrganization(org *models.Organization) error
	DeleteOrganization(id string) error

	// Organization employees
	SetOrganizationEmployees(orgID string, employeeIDs []string) error
	ListOrganizationEmployees(orgID string) ([]models.Employee, error)

	// Collaborators
	AddCollaborator(orgID, userID string) error
	RemoveCollaborator(orgID, userID string) error
	IsCollaborator(orgID, userID string) (bool, error)
	ListCollaborators(orgID string) ([]models.User, error)

	HealthCheck() error
	Close() error
}

// Config selects and parameterizes the Store backend.
type Config struct {
	PostgresDSN string
	Debug       bool
}

// NewStore picks the backend from configuration: PostgreSQL when a DSN is
// present, otherwise the in-memory store (development and tests only).
func NewStore(cfg Config) (Store, error) {
	if cfg.PostgresDSN != "" {
		fmt.Printf("🗄️  Using PostgreSQL database\n")
		return NewPostgresStore(cfg.PostgresDSN)
	}

	fmt.Printf("🧪  Using in-memory database (data is not persisted)\n")
	return NewMemoryStore(), nil
}
