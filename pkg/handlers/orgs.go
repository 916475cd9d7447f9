package handlers

import (
	"errors"
	"net/http"
	"strings"

	"org-registry-backend/pkg/access"
	"org-registry-backend/pkg/config"
	"org-registry-backend/pkg/database"
	"org-registry-backend/pkg/middleware"
	"org-registry-backend/pkg/models"
	"org-registry-backend/pkg/search"
	"org-registry-backend/pkg/utils"

	chiRoute "github.com/go-chi/chi/v5"
)

// OrgsHandler serves the organization registry and its collaborator
// sub-resource.
type OrgsHandler struct {
	config *config.Config
	db     database.Store
	access *access.Controller
}

// NewOrgsHandler creates the handler.
func NewOrgsHandler(cfg *config.Config, db database.Store) *OrgsHandler {
	return &OrgsHandler{config: cfg, db: db, access: access.NewController(db)}
}

// loadOrg resolves the path parameter and writes the 404 itself.
func (h *OrgsHandler) loadOrg(w http.ResponseWriter, r *http.Request) (*models.Organization, bool) {
	orgID := chiRoute.URLParam(r, "id")
	if strings.TrimSpace(orgID) == "" {
		utils.WriteBadRequestResponse(w, "organization id required")
		return nil, false
	}
	org, err := h.db.GetOrganization(orgID)
	if err != nil {
		utils.WriteNotFoundResponse(w, "organization not found")
		return nil, false
	}
	return org, true
}

// requireEditor writes the 403 when the caller is neither creator nor
// collaborator.
func (h *OrgsHandler) requireEditor(w http.ResponseWriter, userID string, org *models.Organization) bool {
	ok, err := h.access.CanEdit(userID, org)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return false
	}
	if !ok {
		utils.WriteForbiddenResponse(w, "No access to this organization")
		return false
	}
	return true
}

// GET /api/orgs
func (h *OrgsHandler) ListMyOrganizations(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	orgs, err := h.db.ListUserOrganizations(user.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"organizations": orgs})
}

// POST /api/orgs
func (h *OrgsHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	var req struct {
		Title       string   `json:"title"`
		Address     string   `json:"address"`
		Description string   `json:"description"`
		Employees   []string `json:"employees"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		utils.WriteValidationErrorResponse(w, "title is required", "")
		return
	}

	// Resolve the whole employee list before creating anything
	if len(req.Employees) > 0 {
		if _, err := h.db.GetEmployeesByIDs(req.Employees); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.WriteNotFoundResponse(w, err.Error())
				return
			}
			utils.WriteInternalServerErrorResponse(w, err.Error())
			return
		}
	}

	org := &models.Organization{
		Title:       req.Title,
		Address:     req.Address,
		Description: req.Description,
		CreatorID:   user.ID,
	}
	if err := h.db.CreateOrganization(org); err != nil {
		if errors.Is(err, database.ErrDuplicateTitle) {
			utils.WriteConflictResponse(w, "organization title already taken")
			return
		}
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}

	if len(req.Employees) > 0 {
		if err := h.db.SetOrganizationEmployees(org.ID, req.Employees); err != nil {
			utils.WriteInternalServerErrorResponse(w, err.Error())
			return
		}
	}

	utils.WriteCreatedResponse(w, map[string]interface{}{"organization": org})
}

// GET /api/orgs/{id}?search=term
func (h *OrgsHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	org, ok := h.loadOrg(w, r)
	if !ok {
		return
	}
	if !h.requireEditor(w, user.ID, org) {
		return
	}

	employees, err := h.db.ListOrganizationEmployees(org.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}
	term := utils.GetQueryParam(r, "search", "")
	page := search.Filter(employees, term, search.PageLimit)

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"organization": org,
		"employees":    page,
	})
}

// PUT /api/orgs/{id}
func (h *OrgsHandler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	org, ok := h.loadOrg(w, r)
	if !ok {
		return
	}
	if !h.requireEditor(w, user.ID, org) {
		return
	}

	var req struct {
		Title       string    `json:"title"`
		Address     string    `json:"address"`
		Description string    `json:"description"`
		Employees   *[]string `json:"employees"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	// Apply patch values (only non-empty)
	if strings.TrimSpace(req.Title) != "" {
		org.Title = req.Title
	}
	if strings.TrimSpace(req.Address) != "" {
		org.Address = req.Address
	}
	if strings.TrimSpace(req.Description) != "" {
		org.Description = req.Description
	}

	if req.Employees != nil {
		if _, err := h.db.GetEmployeesByIDs(*req.Employees); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.WriteNotFoundResponse(w, err.Error())
				return
			}
			utils.WriteInternalServerErrorResponse(w, err.Error())
			return
		}
	}

	if err := h.db.UpdateOrganization(org); err != nil {
		if errors.Is(err, database.ErrDuplicateTitle) {
			utils.WriteConflictResponse(w, "organization title already taken")
			return
		}
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}
	if req.Employees != nil {
		if err := h.db.SetOrganizationEmployees(org.ID, *req.Employees); err != nil {
			utils.WriteInternalServerErrorResponse(w, err.Error())
			return
		}
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"organization": org})
}

// DELETE /api/orgs/{id}
func (h *OrgsHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	org, ok := h.loadOrg(w, r)
	if !ok {
		return
	}
	if !h.access.IsCreator(user.ID, org) {
		utils.WriteForbiddenResponse(w, "Only the creator can delete an organization")
		return
	}
	if err := h.db.DeleteOrganization(org.ID); err != nil {
		utils.WriteInternalServerErrorResponse(w, err.Error())
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"deleted": true, "id": org.ID})
}

// accessRequest names users by email, as the collaborator endpoints do.
type accessRequest struct {
	Users []string `json:"users"`
}

// GET /api/orgs/{id}/access
func (h *OrgsHandler) ListAccess(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	org, ok := h.loadOrg(w, r)
	if !ok {
		return
	}
	collaborators, err := h.access.Collaborators(org, user.ID)
	if err != nil {
		h.writeAccessError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"users": collaboratorEmails(collaborators)})
}

// POST /api/orgs/{id}/access
func (h *OrgsHandler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	org, ok := h.loadOrg(w, r)
	if !ok {
		return
	}
	var req accessRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if len(req.Users) == 0 {
		utils.WriteValidationErrorResponse(w, "users list is required", "")
		return
	}
	collaborators, err := h.access.Grant(org, user.ID, normalizeEmails(req.Users))
	if err != nil {
		h.writeAccessError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"organization": org,
		"users":        collaboratorEmails(collaborators),
	})
}

// DELETE /api/orgs/{id}/access
func (h *OrgsHandler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	org, ok := h.loadOrg(w, r)
	if !ok {
		return
	}
	var req accessRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if len(req.Users) == 0 {
		utils.WriteValidationErrorResponse(w, "users list is required", "")
		return
	}
	collaborators, err := h.access.Revoke(org, user.ID, normalizeEmails(req.Users))
	if err != nil {
		h.writeAccessError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"organization": org,
		"users":        collaboratorEmails(collaborators),
	})
}

// writeAccessError translates access/store errors to the envelope.
func (h *OrgsHandler) writeAccessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrForbidden):
		utils.WriteForbiddenResponse(w, "Creator privileges required")
	case errors.Is(err, database.ErrNotFound):
		utils.WriteNotFoundResponse(w, err.Error())
	default:
		utils.WriteInternalServerErrorResponse(w, err.Error())
	}
}

// normalizeEmails applies the same lowercase/trim form registration stores.
func normalizeEmails(emails []string) []string {
	normalized := make([]string, 0, len(emails))
	for _, email := range emails {
		normalized = append(normalized, strings.TrimSpace(strings.ToLower(email)))
	}
	return normalized
}

func collaboratorEmails(users []models.User) []string {
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return emails
}
