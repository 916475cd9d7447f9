package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"org-registry-backend/pkg/models"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// PostgresStore is the primary Store backend.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool against the given DSN.
func NewPostgresStore(dsn string) (Store, error) {
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn = strings.TrimSpace(dsn)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// mapConstraintError turns unique-violation errors from lib/pq into the
// store sentinels so handlers never inspect driver errors.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation {
		switch pqErr.Constraint {
		case "users_email_key":
			return ErrDuplicateEmail
		case "organizations_title_key":
			return ErrDuplicateTitle
		case "employees_personal_phone_key":
			return ErrDuplicatePhone
		}
	}
	return err
}

func nullIfEmpty(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// ==== Users ====

func (s *PostgresStore) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, is_active, is_staff, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(query, user.Email, user.Password, user.IsActive, user.IsStaff).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapConstraintError(err))
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, COALESCE(password_hash,''), is_active, is_staff, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var u models.User
	err := s.db.QueryRow(query, email).Scan(
		&u.ID, &u.Email, &u.Password, &u.IsActive, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByID(id string) (*models.User, error) {
	query := `
		SELECT id, email, is_active, is_staff, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var u models.User
	err := s.db.QueryRow(query, id).Scan(
		&u.ID, &u.Email, &u.IsActive, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUsersByEmails(emails []string) ([]models.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, email, is_active, is_staff, created_at, updated_at
		FROM users
		WHERE email = ANY($1)
	`
	rows, err := s.db.Query(query, pq.Array(emails))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users by email: %w", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(emails))
	var result []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.IsActive, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		found[u.Email] = true
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	// All-or-nothing: one unknown email fails the whole batch.
	for _, email := range emails {
		if !found[email] {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
	}
	return result, nil
}

func (s *PostgresStore) DeactivateUser(id string) error {
	result, err := s.db.Exec(`UPDATE users SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ==== Employees ====

func (s *PostgresStore) CreateEmployee(e *models.Employee) error {
	query := `
		INSERT INTO employees (name, surname, patronymic, position, work_phone, personal_phone, fax, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(query,
		e.Name, e.Surname, e.Patronymic, e.Position,
		e.WorkPhone, nullIfEmpty(e.PersonalPhone), e.Fax,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", mapConstraintError(err))
	}
	return nil
}

func (s *PostgresStore) GetEmployee(id string) (*models.Employee, error) {
	query := `
		SELECT id, name, surname, patronymic, position,
		       COALESCE(work_phone,''), COALESCE(personal_phone,''), COALESCE(fax,''),
		       created_at, updated_at
		FROM employees
		WHERE id = $1
	`
	var e models.Employee
	err := s.db.QueryRow(query, id).Scan(
		&e.ID, &e.Name, &e.Surname, &e.Patronymic, &e.Position,
		&e.WorkPhone, &e.PersonalPhone, &e.Fax, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) GetEmployeesByIDs(ids []string) ([]models.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, name, surname, patronymic, position,
		       COALESCE(work_phone,''), COALESCE(personal_phone,''), COALESCE(fax,''),
		       created_at, updated_at
		FROM employees
		WHERE id = ANY($1)
	`
	rows, err := s.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve employees: %w", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(ids))
	var result []models.Employee
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Surname, &e.Patronymic, &e.Position,
			&e.WorkPhone, &e.PersonalPhone, &e.Fax, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		found[e.ID] = true
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}
	for _, id := range ids {
		if !found[id] {
			return nil, fmt.Errorf("employee %s: %w", id, ErrNotFound)
		}
	}
	return result, nil
}

func (s *PostgresStore) ListEmployees() ([]models.Employee, error) {
	query := `
		SELECT id, name, surname, patronymic, position,
		       COALESCE(work_phone,''), COALESCE(personal_phone,''), COALESCE(fax,''),
		       created_at, updated_at
		FROM employees
		ORDER BY created_at ASC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var result []models.Employee
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Surname, &e.Patronymic, &e.Position,
			&e.WorkPhone, &e.PersonalPhone, &e.Fax, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *PostgresStore) UpdateEmployee(e *models.Employee) error {
	query := `
		UPDATE employees
		SET name = $1, surname = $2, patronymic = $3, position = $4,
		    work_phone = $5, personal_phone = $6, fax = $7, updated_at = NOW()
		WHERE id = $8
	`
	result, err := s.db.Exec(query,
		e.Name, e.Surname, e.Patronymic, e.Position,
		e.WorkPhone, nullIfEmpty(e.PersonalPhone), e.Fax, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", mapConstraintError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteEmployee(id string) error {
	// Relation rows keep their row but lose the reference (ON DELETE SET NULL).
	result, err := s.db.Exec(`DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ==== Organizations ====

func (s *PostgresStore) CreateOrganization(org *models.Organization) error {
	query := `
		INSERT INTO organizations (title, address, description, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(query, org.Title, org.Address, org.Description, org.CreatorID).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", mapConstraintError(err))
	}
	return nil
}

func (s *PostgresStore) GetOrganization(id string) (*models.Organization, error) {
	query := `
		SELECT id, title, COALESCE(address,''), COALESCE(description,''), creator_id, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	var o models.Organization
	err := s.db.QueryRow(query, id).Scan(
		&o.ID, &o.Title, &o.Address, &o.Description, &o.CreatorID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &o, nil
}

func (s *PostgresStore) ListUserOrganizations(userID string) ([]models.Organization, error) {
	// Creator is always part of the visible set, whether or not a
	// collaborator row exists for them.
	query := `
		SELECT DISTINCT o.id, o.title, COALESCE(o.address,''), COALESCE(o.description,''),
		                o.creator_id, o.created_at, o.updated_at
		FROM organizations o
		LEFT JOIN organization_collaborators c ON c.organization_id = o.id
		WHERE o.creator_id = $1 OR c.user_id = $1
		ORDER BY o.created_at DESC
	`
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var result []models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Title, &o.Address, &o.Description, &o.CreatorID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (s *PostgresStore) UpdateOrganization(org *models.Organization) error {
	result, err := s.db.Exec(`
		UPDATE organizations
		SET title = $1, address = $2, description = $3, updated_at = NOW()
		WHERE id = $4
	`, org.Title, org.Address, org.Description, org.ID)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", mapConstraintError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteOrganization(id string) error {
	result, err := s.db.Exec(`DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ==== Organization employees ====

func (s *PostgresStore) SetOrganizationEmployees(orgID string, employeeIDs []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM organization_employees WHERE organization_id = $1`, orgID); err != nil {
		return fmt.Errorf("failed to clear organization employees: %w", err)
	}
	for _, employeeID := range employeeIDs {
		_, err := tx.Exec(`
			INSERT INTO organization_employees (organization_id, employee_id, created_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (organization_id, employee_id) DO NOTHING
		`, orgID, employeeID)
		if err != nil {
			return fmt.Errorf("failed to link employee %s: %w", employeeID, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ListOrganizationEmployees(orgID string) ([]models.Employee, error) {
	query := `
		SELECT DISTINCT e.id, e.name, e.surname, e.patronymic, e.position,
		       COALESCE(e.work_phone,''), COALESCE(e.personal_phone,''), COALESCE(e.fax,''),
		       e.created_at, e.updated_at
		FROM employees e
		JOIN organization_employees oe ON oe.employee_id = e.id
		WHERE oe.organization_id = $1
		ORDER BY e.created_at ASC
	`
	rows, err := s.db.Query(query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization employees: %w", err)
	}
	defer rows.Close()

	var result []models.Employee
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Surname, &e.Patronymic, &e.Position,
			&e.WorkPhone, &e.PersonalPhone, &e.Fax, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// ==== Collaborators ====

func (s *PostgresStore) AddCollaborator(orgID, userID string) error {
	// Idempotent: granting to an existing collaborator is a no-op, the
	// unique constraint keeps concurrent grants from duplicating rows.
	_, err := s.db.Exec(`
		INSERT INTO organization_collaborators (organization_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (organization_id, user_id) DO NOTHING
	`, orgID, userID)
	if err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveCollaborator(orgID, userID string) error {
	result, err := s.db.Exec(`
		DELETE FROM organization_collaborators
		WHERE organization_id = $1 AND user_id = $2
	`, orgID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) IsCollaborator(orgID, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM organization_collaborators
			WHERE organization_id = $1 AND user_id = $2
		)
	`, orgID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check collaborator: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListCollaborators(orgID string) ([]models.User, error) {
	query := `
		SELECT u.id, u.email, u.is_active, u.is_staff, u.created_at, u.updated_at
		FROM users u
		JOIN organization_collaborators c ON c.user_id = u.id
		WHERE c.organization_id = $1
		ORDER BY c.created_at ASC
	`
	rows, err := s.db.Query(query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.IsActive, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *PostgresStore) HealthCheck() error {
	return s.db.Ping()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
