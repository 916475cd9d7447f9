package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func TestOrganizationLifecycle(t *testing.T) {
	h, _ := newTestServer(t)
	creator := registerAndLogin(t, h, "creator@example.com", "secret-password")

	orgID := createOrganization(t, h, creator, "Lubimovka Theatre")

	rec, env := doJSON(t, h, http.MethodGet, "/api/orgs/"+orgID, creator, nil)
	wantStatus(t, rec, http.StatusOK)
	var org struct {
		Title     string `json:"title"`
		CreatorID string `json:"creator_id"`
	}
	if err := json.Unmarshal(env.Data["organization"], &org); err != nil {
		t.Fatalf("decode organization: %v", err)
	}
	if org.Title != "Lubimovka Theatre" || org.CreatorID == "" {
		t.Errorf("organization = %+v", org)
	}

	rec, env = doJSON(t, h, http.MethodGet, "/api/orgs", creator, nil)
	wantStatus(t, rec, http.StatusOK)
	var orgs []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data["organizations"], &orgs); err != nil {
		t.Fatalf("decode organizations: %v", err)
	}
	if len(orgs) != 1 || orgs[0].ID != orgID {
		t.Fatalf("organizations = %v, want exactly the created one", orgs)
	}

	rec, _ = doJSON(t, h, http.MethodPut, "/api/orgs/"+orgID, creator, map[string]string{
		"address": "5 Stage Lane",
	})
	wantStatus(t, rec, http.StatusOK)

	rec, _ = doJSON(t, h, http.MethodDelete, "/api/orgs/"+orgID, creator, nil)
	wantStatus(t, rec, http.StatusOK)
	rec, _ = doJSON(t, h, http.MethodGet, "/api/orgs/"+orgID, creator, nil)
	wantStatus(t, rec, http.StatusNotFound)
}

func TestCreateOrganization_DuplicateTitle(t *testing.T) {
	h, _ := newTestServer(t)
	creator := registerAndLogin(t, h, "creator@example.com", "secret-password")

	createOrganization(t, h, creator, "Theatre")
	rec, env := doJSON(t, h, http.MethodPost, "/api/orgs", creator, map[string]string{
		"title": "Theatre",
	})
	wantStatus(t, rec, http.StatusConflict)
	wantErrorCode(t, env, "CONFLICT")
}

func TestCreateOrganization_UnknownEmployeeCreatesNothing(t *testing.T) {
	h, _ := newTestServer(t)
	creator := registerAndLogin(t, h, "creator@example.com", "secret-password")

	rec, env := doJSON(t, h, http.MethodPost, "/api/orgs", creator, map[string]interface{}{
		"title":     "Theatre",
		"employees": []string{"no-such-employee"},
	})
	wantStatus(t, rec, http.StatusNotFound)
	wantErrorCode(t, env, "NOT_FOUND")

	// The title is still free.
	createOrganization(t, h, creator, "Theatre")
}

func TestCollaboratorAccessFlow(t *testing.T) {
	h, _ := newTestServer(t)
	creator := registerAndLogin(t, h, "alice@example.com", "secret-password")
	collab := registerAndLogin(t, h, "bob@example.com", "secret-password")

	orgID := createOrganization(t, h, creator, "Theatre")

	// Before the grant, the second user cannot even read it.
	rec, env := doJSON(t, h, http.MethodGet, "/api/orgs/"+orgID, collab, nil)
	wantStatus(t, rec, http.StatusForbidden)
	wantErrorCode(t, env, "FORBIDDEN")

	rec, env = doJSON(t, h, http.MethodPost, "/api/orgs/"+orgID+"/access", creator, map[string][]string{
		"users": {"bob@example.com"},
	})
	wantStatus(t, rec, http.StatusOK)
	var users []string
	if err := json.Unmarshal(env.Data["users"], &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 || users[0] != "bob@example.com" {
		t.Fatalf("collaborators after grant = %v", users)
	}

	// The collaborator can now read and update.
	rec, _ = doJSON(t, h, http.MethodGet, "/api/orgs/"+orgID, collab, nil)
	wantStatus(t, rec, http.StatusOK)
	rec, _ = doJSON(t, h, http.MethodPut, "/api/orgs/"+orgID, collab, map[string]string{
		"description": "updated by collaborator",
	})
	wantStatus(t, rec, http.StatusOK)

	// But deletion and access management stay with the creator.
	rec, env = doJSON(t, h, http.MethodDelete, "/api/orgs/"+orgID, collab, nil)
	wantStatus(t, rec, http.StatusForbidden)
	wantErrorCode(t, env, "FORBIDDEN")
	rec, env = doJSON(t, h, http.MethodGet, "/api/orgs/"+orgID+"/access", collab, nil)
	wantStatus(t, rec, http.StatusForbidden)
	wantErrorCode(t, env, "FORBIDDEN")
	rec, env = doJSON(t, h, http.MethodPost, "/api/orgs/"+orgID+"/access", collab, map[string][]string{
		"users": {"alice@example.com"},
	})
	wantStatus(t, rec, http.StatusForbidden)
	wantErrorCode(t, env, "FORBIDDEN")

	// The organization shows up in the collaborator's listing.
	rec, env = doJSON(t, h, http.MethodGet, "/api/orgs", collab, nil)
	wantStatus(t, rec, http.StatusOK)
	var orgs []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data["organizations"], &orgs); err != nil {
		t.Fatalf("decode organizations: %v", err)
	}
	if len(orgs) != 1 || orgs[0].ID != orgID {
		t.Fatalf("collaborator's organizations = %v", orgs)
	}

	// Revoke and verify access is gone.
	rec, env = doJSON(t, h, http.MethodDelete, "/api/orgs/"+orgID+"/access", creator, map[string][]string{
		"users": {"bob@example.com"},
	})
	wantStatus(t, rec, http.StatusOK)
	if err := json.Unmarshal(env.Data["users"], &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("collaborators after revoke = %v", users)
	}
	rec, _ = doJSON(t, h, http.MethodGet, "/api/orgs/"+orgID, collab, nil)
	wantStatus(t, rec, http.StatusForbidden)
}

func TestAccessEndpoints_NormalizeEmailCase(t *testing.T) {
	h, _ := newTestServer(t)
	creator := registerAndLogin(t, h, "alice@example.com", "secret-password")
	registerAndLogin(t, h, "bob@example.com", "secret-password")

	orgID := createOrganization(t, h, creator, "Theatre")

	// The grant list accepts the address in any case or padding.
	rec, env := doJSON(t, h, http.MethodPost, "/api/orgs/"+orgID+"/access", creator, map[string][]string{
		"users": {" Bob@Example.COM "},
	})
	wantStatus(t, rec, http.StatusOK)
	var users []string
	if err := json.Unmarshal(env.Data["users"], &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 || users[0] != "bob@example.com" {
		t.Fatalf("collaborators after mixed-case grant = %v", users)
	}

	rec, env = doJSON(t, h, http.MethodDelete, "/api/orgs/"+orgID+"/access", creator, map[string][]string{
		"users": {"BOB@example.com"},
	})
	wantStatus(t, rec, http.StatusOK)
	if err := json.Unmarshal(env.Data["users"], &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("collaborators after mixed-case revoke = %v", users)
	}
}

func TestGrantAccess_UnknownEmailIsAtomic(t *testing.T) {
	h, _ := newTestServer(t)
	creator := registerAndLogin(t, h, "creator@example.com", "secret-password")
	registerAndLogin(t, h, "known@example.com", "secret-password")

	orgID := createOrganization(t, h, creator, "Theatre")

	rec, env := doJSON(t, h, http.MethodPost, "/api/orgs/"+orgID+"/access", creator, map[string][]string{
		"users": {"known@example.com", "missing@example.com"},
	})
	wantStatus(t, rec, http.StatusNotFound)
	wantErrorCode(t, env, "NOT_FOUND")

	// Nobody got access.
	rec, env = doJSON(t, h, http.MethodGet, "/api/orgs/"+orgID+"/access", creator, nil)
	wantStatus(t, rec, http.StatusOK)
	var users []string
	if err := json.Unmarshal(env.Data["users"], &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("collaborators = %v, want none after the failed batch", users)
	}
}

func TestRevokeAccess_NonCollaboratorIsAtomic(t *testing.T) {
	h, _ := newTestServer(t)
	creator := registerAndLogin(t, h, "creator@example.com", "secret-password")
	registerAndLogin(t, h, "member@example.com", "secret-password")
	registerAndLogin(t, h, "outsider@example.com", "secret-password")

	orgID := createOrganization(t, h, creator, "Theatre")
	rec, _ := doJSON(t, h, http.MethodPost, "/api/orgs/"+orgID+"/access", creator, map[string][]string{
		"users": {"member@example.com"},
	})
	wantStatus(t, rec, http.StatusOK)

	rec, env := doJSON(t, h, http.MethodDelete, "/api/orgs/"+orgID+"/access", creator, map[string][]string{
		"users": {"member@example.com", "outsider@example.com"},
	})
	wantStatus(t, rec, http.StatusNotFound)
	wantErrorCode(t, env, "NOT_FOUND")

	// The valid member still has access.
	rec, env = doJSON(t, h, http.MethodGet, "/api/orgs/"+orgID+"/access", creator, nil)
	wantStatus(t, rec, http.StatusOK)
	var users []string
	if err := json.Unmarshal(env.Data["users"], &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 || users[0] != "member@example.com" {
		t.Fatalf("collaborators = %v, want member kept", users)
	}
}

func TestOrganizationEmployees_AssignAndSearch(t *testing.T) {
	h, _ := newTestServer(t)
	creator := registerAndLogin(t, h, "creator@example.com", "secret-password")

	ivanov := createEmployee(t, h, creator, map[string]string{
		"name": "Ivan", "surname": "Ivanov", "position": "Director", "work_phone": "+74950000001",
	})
	petrov := createEmployee(t, h, creator, map[string]string{
		"name": "Petr", "surname": "Petrov", "position": "Manager", "work_phone": "+74950000002",
	})

	rec, env := doJSON(t, h, http.MethodPost, "/api/orgs", creator, map[string]interface{}{
		"title":     "Theatre",
		"employees": []string{ivanov, petrov},
	})
	wantStatus(t, rec, http.StatusCreated)
	var org struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data["organization"], &org); err != nil {
		t.Fatalf("decode organization: %v", err)
	}

	type employee struct {
		Surname string `json:"surname"`
	}
	readStaff := func(query string) []employee {
		t.Helper()
		rec, env := doJSON(t, h, http.MethodGet, "/api/orgs/"+org.ID+query, creator, nil)
		wantStatus(t, rec, http.StatusOK)
		var staff []employee
		if err := json.Unmarshal(env.Data["employees"], &staff); err != nil {
			t.Fatalf("decode employees: %v", err)
		}
		return staff
	}

	if staff := readStaff(""); len(staff) != 2 {
		t.Fatalf("staff = %v, want both employees", staff)
	}
	// Case-insensitive search on surname.
	staff := readStaff("?search=IVANOV")
	if len(staff) != 1 || staff[0].Surname != "Ivanov" {
		t.Fatalf("search=IVANOV -> %v", staff)
	}
	if staff := readStaff("?search=nobody"); len(staff) != 0 {
		t.Fatalf("search=nobody -> %v", staff)
	}

	// Replace the assignment with a single employee.
	rec, _ = doJSON(t, h, http.MethodPut, "/api/orgs/"+org.ID, creator, map[string]interface{}{
		"employees": []string{petrov},
	})
	wantStatus(t, rec, http.StatusOK)
	staff = readStaff("")
	if len(staff) != 1 || staff[0].Surname != "Petrov" {
		t.Fatalf("staff after replace = %v", staff)
	}
}

func TestOrganizationSearch_CapsAtFive(t *testing.T) {
	h, _ := newTestServer(t)
	creator := registerAndLogin(t, h, "creator@example.com", "secret-password")

	var ids []string
	for i := 0; i < 7; i++ {
		ids = append(ids, createEmployee(t, h, creator, map[string]string{
			"name": "Ivan", "surname": "Ivanov", "work_phone": fmt.Sprintf("+7495000%04d", i),
		}))
	}
	rec, env := doJSON(t, h, http.MethodPost, "/api/orgs", creator, map[string]interface{}{
		"title":     "Theatre",
		"employees": ids,
	})
	wantStatus(t, rec, http.StatusCreated)
	var org struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data["organization"], &org); err != nil {
		t.Fatalf("decode organization: %v", err)
	}

	rec, env = doJSON(t, h, http.MethodGet, "/api/orgs/"+org.ID+"?search=ivanov", creator, nil)
	wantStatus(t, rec, http.StatusOK)
	var staff []json.RawMessage
	if err := json.Unmarshal(env.Data["employees"], &staff); err != nil {
		t.Fatalf("decode employees: %v", err)
	}
	if len(staff) != 5 {
		t.Fatalf("search returned %d employees, want the cap of 5", len(staff))
	}
}
