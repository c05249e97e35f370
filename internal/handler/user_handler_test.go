package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/language-lab-api/internal/models"
)

func TestUserHandlerRegister(t *testing.T) {
	app := newTestApp()

	rec := app.do(http.MethodPost, "/users", "", `{"email":"fresh@lab.io","name":"Fresh"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"insertedId":"user-1"`)

	rec = app.do(http.MethodPost, "/users", "", `{"email":"fresh@lab.io","name":"Fresh"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "user already exists", env.Message)
	assert.Nil(t, env.Error)
}

func TestUserHandlerInstructorsListsOnlyInstructors(t *testing.T) {
	app := newTestApp()

	for _, path := range []string{"/all-instructor", "/all-instructor?role=admin", "/all-instructor?role=student"} {
		rec := app.do(http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		var users []models.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users), path)
		require.Len(t, users, 1, path)
		assert.Equal(t, "tutor@lab.io", users[0].Email, path)
	}
}

func TestUserHandlerPromote(t *testing.T) {
	app := newTestApp()

	rec := app.do(http.MethodPatch, "/users/admin/6f1c6a7e-3a55-4e1b-9d50-0e7c1b4d8a11", "admin@lab.io", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"6f1c6a7e-3a55-4e1b-9d50-0e7c1b4d8a11"}, app.directory.promoted)
}

func TestAuthHandlerIssueAndLogout(t *testing.T) {
	app := newTestApp()

	rec := app.do(http.MethodPost, "/jwt", "", `{"email":"student@lab.io"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token":"signed.student@lab.io"`)

	rec = app.do(http.MethodPost, "/logout", "student@lab.io", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "logged out", decodeEnvelope(t, rec).Message)
	assert.Equal(t, []string{"student@lab.io"}, app.auth.revoked)
}
