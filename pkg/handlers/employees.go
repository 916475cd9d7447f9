package handlers

import (
	"errors"
	"net/http"
	"strings"

	"org-registry-backend/pkg/config"
	"org-registry-backend/pkg/database"
	"org-registry-backend/pkg/middleware"
	"org-registry-backend/pkg/models"
	"org-registry-backend/pkg/utils"

	chiRoute "github.com/go-chi/chi/v5"
)

// EmployeesHandler serves the global employee registry.
type EmployeesHandler struct {
	config *config.Config
	db     database.Store
}

// NewEmployeesHandler creates the handler.
func NewEmployeesHandler(cfg *config.Config, db database.Store) *EmployeesHandler {
	return &EmployeesHandler{config: cfg, db: db}
}

func (h *EmployeesHandler) loadEmployee(w http.ResponseWriter, r *http.Request) (*models.Employee, bool) {
	id := chiRoute.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		utils.WriteBadRequestResponse(w, "employee id required")
		return nil, false
	}
	employee, err := h.db.GetEmployee(id)
	if err != nil {
		utils.WriteNotFoundResponse(w, "employee not found")
		return nil, false
	}
	return employee, true
}

// writeEmployeeError translates validation and store failures.
func writeEmployeeError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		utils.WriteValidationErrorResponse(w, vErr.Message, vErr.Field)
	case errors.Is(err, database.ErrDuplicatePhone):
		utils.WriteValidationErrorResponse(w, "personal phone number already in use", "personal_phone")
	case errors.Is(err, database.ErrNotFound):
		utils.WriteNotFoundResponse(w, "employee not found")
	default:
		utils.WriteInternalServerErrorResponse(w, err.Error())
	}
}

// GET /api/employees
func (h *EmployeesHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.RequireUser(r.Context()); err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	employees, err := h.db.ListEmployees()
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"employees": employees})
}

// GET /api/employees/{id}
func (h *EmployeesHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.RequireUser(r.Context()); err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	employee, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"employee": employee})
}

// POST /api/employees
func (h *EmployeesHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.RequireUser(r.Context()); err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	var employee models.Employee
	if err := utils.ParseJSONBody(r, &employee); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	employee.ID = ""

	if err := employee.Validate(); err != nil {
		writeEmployeeError(w, err)
		return
	}
	if err := h.db.CreateEmployee(&employee); err != nil {
		writeEmployeeError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, map[string]interface{}{"employee": employee})
}

// PUT /api/employees/{id} replaces the full field set.
func (h *EmployeesHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.RequireUser(r.Context()); err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	stored, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	var employee models.Employee
	if err := utils.ParseJSONBody(r, &employee); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	employee.ID = stored.ID

	if err := employee.Validate(); err != nil {
		writeEmployeeError(w, err)
		return
	}
	if err := h.db.UpdateEmployee(&employee); err != nil {
		writeEmployeeError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"employee": employee})
}

// PATCH /api/employees/{id} merges the patch with the stored record before
// re-validating, so a partial update cannot drop the last contact method.
func (h *EmployeesHandler) PatchEmployee(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.RequireUser(r.Context()); err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	stored, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	var patch models.EmployeePatch
	if err := utils.ParseJSONBody(r, &patch); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	merged := stored.Merge(patch)
	if err := merged.Validate(); err != nil {
		writeEmployeeError(w, err)
		return
	}
	if err := h.db.UpdateEmployee(&merged); err != nil {
		writeEmployeeError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"employee": merged})
}

// DELETE /api/employees/{id}
func (h *EmployeesHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.RequireUser(r.Context()); err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	employee, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	if err := h.db.DeleteEmployee(employee.ID); err != nil {
		writeEmployeeError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"deleted": true, "id": employee.ID})
}
