package database

import (
	"fmt"
	"sync"
	"time"

	"org-registry-backend/pkg/models"

	"github.com/google/uuid"
)

// MemoryStore is the non-Postgres Store backend, used for development and
// tests. It enforces the same uniqueness rules as the SQL schema.
type MemoryStore struct {
	mu sync.Mutex

	users     map[string]*models.User
	userOrder []string

	employees     map[string]*models.Employee
	employeeOrder []string

	orgs     map[string]*models.Organization
	orgOrder []string

	// orgID -> employee IDs / collaborator user IDs, insertion-ordered
	orgEmployees     map[string][]string
	orgCollaborators map[string][]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:            make(map[string]*models.User),
		employees:        make(map[string]*models.Employee),
		orgs:             make(map[string]*models.Organization),
		orgEmployees:     make(map[string][]string),
		orgCollaborators: make(map[string][]string),
	}
}

// ==== Users ====

func (s *MemoryStore) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	copied := *user
	s.users[user.ID] = &copied
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

func (s *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.userOrder {
		if u := s.users[id]; u != nil && u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByID(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryStore) GetUsersByEmails(emails []string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byEmail := make(map[string]*models.User, len(s.users))
	for _, u := range s.users {
		byEmail[u.Email] = u
	}

	// A repeated input email resolves to one user, as the SQL backend's
	// set-membership lookup does.
	seen := make(map[string]bool, len(emails))
	var result []models.User
	for _, email := range emails {
		if seen[email] {
			continue
		}
		seen[email] = true
		u, ok := byEmail[email]
		if !ok {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		result = append(result, *u)
	}
	return result, nil
}

func (s *MemoryStore) DeactivateUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.IsActive = false
	u.UpdatedAt = time.Now()
	return nil
}

// ==== Employees ====

func (s *MemoryStore) CreateEmployee(e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.PersonalPhone != "" {
		for _, existing := range s.employees {
			if existing.PersonalPhone == e.PersonalPhone {
				return ErrDuplicatePhone
			}
		}
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt

	copied := *e
	s.employees[e.ID] = &copied
	s.employeeOrder = append(s.employeeOrder, e.ID)
	return nil
}

func (s *MemoryStore) GetEmployee(id string) (*models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.employees[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (s *MemoryStore) GetEmployeesByIDs(ids []string) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Employee
	for _, id := range ids {
		e, ok := s.employees[id]
		if !ok {
			return nil, fmt.Errorf("employee %s: %w", id, ErrNotFound)
		}
		result = append(result, *e)
	}
	return result, nil
}

func (s *MemoryStore) ListEmployees() ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Employee
	for _, id := range s.employeeOrder {
		if e, ok := s.employees[id]; ok {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (s *MemoryStore) UpdateEmployee(e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.employees[e.ID]
	if !ok {
		return ErrNotFound
	}
	if e.PersonalPhone != "" {
		for id, existing := range s.employees {
			if id != e.ID && existing.PersonalPhone == e.PersonalPhone {
				return ErrDuplicatePhone
			}
		}
	}
	e.CreatedAt = stored.CreatedAt
	e.UpdatedAt = time.Now()

	copied := *e
	s.employees[e.ID] = &copied
	return nil
}

func (s *MemoryStore) DeleteEmployee(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return ErrNotFound
	}
	delete(s.employees, id)
	// Drop the relation entries outright: a relation row whose employee
	// reference was nulled is invisible to every read path anyway.
	for orgID, ids := range s.orgEmployees {
		s.orgEmployees[orgID] = removeString(ids, id)
	}
	return nil
}

// ==== Organizations ====

func (s *MemoryStore) CreateOrganization(org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orgs {
		if o.Title == org.Title {
			return ErrDuplicateTitle
		}
	}
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt

	copied := *org
	s.orgs[org.ID] = &copied
	s.orgOrder = append(s.orgOrder, org.ID)
	return nil
}

func (s *MemoryStore) GetOrganization(id string) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *MemoryStore) ListUserOrganizations(userID string) ([]models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Organization
	for _, id := range s.orgOrder {
		o, ok := s.orgs[id]
		if !ok {
			continue
		}
		if o.CreatorID == userID || containsString(s.orgCollaborators[id], userID) {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (s *MemoryStore) UpdateOrganization(org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orgs[org.ID]
	if !ok {
		return ErrNotFound
	}
	for id, o := range s.orgs {
		if id != org.ID && o.Title == org.Title {
			return ErrDuplicateTitle
		}
	}
	org.CreatorID = stored.CreatorID
	org.CreatedAt = stored.CreatedAt
	org.UpdatedAt = time.Now()

	copied := *org
	s.orgs[org.ID] = &copied
	return nil
}

func (s *MemoryStore) DeleteOrganization(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[id]; !ok {
		return ErrNotFound
	}
	delete(s.orgs, id)
	delete(s.orgEmployees, id)
	delete(s.orgCollaborators, id)
	s.orgOrder = removeString(s.orgOrder, id)
	return nil
}

// ==== Organization employees ====

func (s *MemoryStore) SetOrganizationEmployees(orgID string, employeeIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[orgID]; !ok {
		return ErrNotFound
	}
	var deduped []string
	for _, id := range employeeIDs {
		if !containsString(deduped, id) {
			deduped = append(deduped, id)
		}
	}
	s.orgEmployees[orgID] = deduped
	return nil
}

func (s *MemoryStore) ListOrganizationEmployees(orgID string) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Employee
	for _, id := range s.orgEmployees[orgID] {
		if e, ok := s.employees[id]; ok {
			result = append(result, *e)
		}
	}
	return result, nil
}

// ==== Collaborators ====

func (s *MemoryStore) AddCollaborator(orgID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[orgID]; !ok {
		return ErrNotFound
	}
	if containsString(s.orgCollaborators[orgID], userID) {
		return nil
	}
	s.orgCollaborators[orgID] = append(s.orgCollaborators[orgID], userID)
	return nil
}

func (s *MemoryStore) RemoveCollaborator(orgID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !containsString(s.orgCollaborators[orgID], userID) {
		return ErrNotFound
	}
	s.orgCollaborators[orgID] = removeString(s.orgCollaborators[orgID], userID)
	return nil
}

func (s *MemoryStore) IsCollaborator(orgID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return containsString(s.orgCollaborators[orgID], userID), nil
}

func (s *MemoryStore) ListCollaborators(orgID string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.User
	for _, userID := range s.orgCollaborators[orgID] {
		if u, ok := s.users[userID]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (s *MemoryStore) HealthCheck() error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func removeString(slice []string, item string) []string {
	var result []string
	for _, s := range slice {
		if s != item {
			result = append(result, s)
		}
	}
	return result
}
