package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/language-lab-api/internal/dto"
	"github.com/noah-isme/language-lab-api/internal/models"
	"github.com/noah-isme/language-lab-api/internal/service"
	appErrors "github.com/noah-isme/language-lab-api/pkg/errors"
	"github.com/noah-isme/language-lab-api/pkg/payment"
)

// fakeTokens treats the bearer token as the caller's email.
type fakeTokens struct{}

func (fakeTokens) ValidateToken(_ context.Context, token string) (*models.JWTClaims, error) {
	if token == "expired" {
		return nil, appErrors.ErrInvalidToken
	}
	return &models.JWTClaims{Email: token}, nil
}

type fakeDirectory struct {
	roles      map[string]models.UserRole
	registered map[string]bool
	promoted   []string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		roles: map[string]models.UserRole{
			"admin@lab.io":     models.RoleAdmin,
			"tutor@lab.io":     models.RoleInstructor,
			"student@lab.io":   models.RoleStudent,
			"newcomer@lab.io":  models.RoleUnset,
			"classmate@lab.io": models.RoleStudent,
		},
		registered: map[string]bool{},
	}
}

func (f *fakeDirectory) RoleOf(_ context.Context, email string) (models.UserRole, bool, error) {
	role, ok := f.roles[email]
	return role, ok, nil
}

func (f *fakeDirectory) RegisterIfAbsent(_ context.Context, req dto.RegisterUserRequest) (*models.InsertResult, error) {
	if _, ok := f.roles[req.Email]; ok || f.registered[req.Email] {
		return nil, appErrors.ErrAlreadyExists
	}
	f.registered[req.Email] = true
	return &models.InsertResult{Acknowledged: true, InsertedID: "user-1"}, nil
}

func (f *fakeDirectory) GetRole(_ context.Context, email string) (*dto.RoleResponse, error) {
	role, ok := f.roles[email]
	return &dto.RoleResponse{Email: email, Role: string(role), Found: ok}, nil
}

func (f *fakeDirectory) GetByEmail(_ context.Context, email string) (*models.User, error) {
	role, ok := f.roles[email]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return &models.User{Email: email, Role: role}, nil
}

func (f *fakeDirectory) List(context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(f.roles))
	for email, role := range f.roles {
		users = append(users, models.User{Email: email, Role: role})
	}
	return users, nil
}

func (f *fakeDirectory) ListByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	var users []models.User
	for email, r := range f.roles {
		if r == role {
			users = append(users, models.User{Email: email, Role: r})
		}
	}
	return users, nil
}

func (f *fakeDirectory) PromoteRole(_ context.Context, _ service.Actor, id string, _ models.UserRole) (*models.UpdateResult, error) {
	f.promoted = append(f.promoted, id)
	return &models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeDirectory) AuthorizeSubject(_ context.Context, caller, subject string) (string, error) {
	if subject == "" || subject == caller {
		return caller, nil
	}
	if f.roles[caller] != models.RoleAdmin {
		return "", appErrors.ErrForbidden
	}
	return subject, nil
}

type fakeClasses struct {
	approved []models.ClassListing
	hit      bool
	created  []dto.CreateClassRequest
	owner    string
	status   models.ClassStatus
}

func (f *fakeClasses) Create(_ context.Context, actor service.Actor, req dto.CreateClassRequest) (*models.InsertResult, error) {
	f.created = append(f.created, req)
	f.owner = actor.Email
	return &models.InsertResult{Acknowledged: true, InsertedID: "class-1"}, nil
}

func (f *fakeClasses) Get(_ context.Context, id string) (*models.ClassListing, error) {
	if id != "class-1" {
		return nil, appErrors.ErrNotFound
	}
	return &models.ClassListing{ID: id}, nil
}

func (f *fakeClasses) ListAll(context.Context) ([]models.ClassListing, error) {
	return f.approved, nil
}

func (f *fakeClasses) ListApproved(_ context.Context, status models.ClassStatus) ([]models.ClassListing, bool, error) {
	f.status = status
	return f.approved, f.hit, nil
}

func (f *fakeClasses) ListByInstructor(_ context.Context, email string) ([]models.ClassListing, error) {
	return []models.ClassListing{{ID: "class-1", InstructorEmail: email}}, nil
}

func (f *fakeClasses) SetStatus(_ context.Context, _ service.Actor, _ string, status models.ClassStatus) (*models.UpdateResult, error) {
	f.status = status
	return &models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeClasses) SetFeedback(context.Context, service.Actor, string, dto.FeedbackRequest) (*models.UpdateResult, error) {
	return &models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

type fakeSelections struct {
	listedFor string
}

func (f *fakeSelections) Select(context.Context, service.Actor, dto.SelectClassRequest) (*models.InsertResult, error) {
	return &models.InsertResult{Acknowledged: true, InsertedID: "sel-1"}, nil
}

func (f *fakeSelections) ListForStudent(_ context.Context, email string) ([]models.SelectionEntry, error) {
	f.listedFor = email
	return []models.SelectionEntry{{ID: "sel-1", StudentEmail: email}}, nil
}

func (f *fakeSelections) Remove(_ context.Context, actor service.Actor, id string) (*models.DeleteResult, error) {
	if id == "foreign" {
		return nil, appErrors.ErrForbidden
	}
	return &models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

type fakePayments struct {
	enrollErr error
	exported  dto.ExportFormat
	historyOf string
}

func (f *fakePayments) CreateIntent(_ context.Context, req dto.PaymentIntentRequest) (*payment.Intent, error) {
	return &payment.Intent{ID: "pi_1", ClientSecret: "pi_1_secret", Amount: payment.MinorUnits(req.Price), Currency: "usd"}, nil
}

func (f *fakePayments) Enroll(context.Context, service.Actor, dto.PaymentRequest) (*models.EnrollmentResult, error) {
	if f.enrollErr != nil {
		return nil, f.enrollErr
	}
	return &models.EnrollmentResult{
		InsertResult: models.InsertResult{Acknowledged: true, InsertedID: "pay-1"},
		UpdateResult: models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1},
		DeleteResult: models.DeleteResult{Acknowledged: true, DeletedCount: 1},
	}, nil
}

func (f *fakePayments) History(_ context.Context, email string) ([]models.PaymentRecord, error) {
	f.historyOf = email
	return []models.PaymentRecord{{ID: "pay-1", StudentEmail: email}}, nil
}

func (f *fakePayments) Enrolled(ctx context.Context, email string) ([]models.PaymentRecord, error) {
	return f.History(ctx, email)
}

func (f *fakePayments) ExportHistory(_ context.Context, _ string, format dto.ExportFormat) (*service.ExportFile, error) {
	f.exported = format
	if format == dto.ExportFormatCSV {
		return &service.ExportFile{Filename: "payment-history-20240101.csv", ContentType: "text/csv", Body: []byte("id\n")}, nil
	}
	return &service.ExportFile{Filename: "payment-history-20240101.pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}, nil
}

type fakeAuth struct {
	revoked []string
}

func (f *fakeAuth) IssueToken(req models.TokenRequest) (*models.TokenResponse, error) {
	if req.Email == "" {
		return nil, appErrors.ErrValidation
	}
	return &models.TokenResponse{Token: "signed." + req.Email}, nil
}

func (f *fakeAuth) Revoke(_ context.Context, actor service.Actor, _ *models.JWTClaims) error {
	f.revoked = append(f.revoked, actor.Email)
	return nil
}

type testApp struct {
	router     *gin.Engine
	directory  *fakeDirectory
	classes    *fakeClasses
	selections *fakeSelections
	payments   *fakePayments
	auth       *fakeAuth
}

func newTestApp() *testApp {
	gin.SetMode(gin.TestMode)
	app := &testApp{
		router:     gin.New(),
		directory:  newFakeDirectory(),
		classes:    &fakeClasses{},
		selections: &fakeSelections{},
		payments:   &fakePayments{},
		auth:       &fakeAuth{},
	}
	handlers := Handlers{
		Auth:       NewAuthHandler(app.auth),
		Users:      NewUserHandler(app.directory),
		Classes:    NewClassHandler(app.classes, app.directory),
		Selections: NewSelectionHandler(app.selections, app.directory),
		Payments:   NewPaymentHandler(app.payments, app.directory),
		Metrics:    NewMetricsHandler(service.NewMetricsService(), nil),
	}
	Register(app.router, Gates{Tokens: fakeTokens{}, Roles: app.directory}, Routes(handlers))
	return app
}

func (a *testApp) do(method, path, caller, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		req.Header.Set("Authorization", "Bearer "+caller)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// responseEnvelope is the body of message and error responses.
type responseEnvelope struct {
	Message string           `json:"message"`
	Error   *appErrors.Error `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestRoutesGateEveryMutation(t *testing.T) {
	routes := Routes(Handlers{
		Auth:       &AuthHandler{},
		Users:      &UserHandler{},
		Classes:    &ClassHandler{},
		Selections: &SelectionHandler{},
		Payments:   &PaymentHandler{},
		Metrics:    &MetricsHandler{},
	})

	publicWrites := map[string]bool{"POST /jwt": true, "POST /users": true}
	seen := map[string]bool{}
	for _, route := range routes {
		key := route.Method + " " + route.Path
		require.False(t, seen[key], "duplicate route %s", key)
		seen[key] = true

		if route.Method == http.MethodGet {
			continue
		}
		if publicWrites[key] {
			assert.Equal(t, AccessPublic, route.Access, key)
			assert.True(t, route.Throttled, key)
			continue
		}
		assert.NotEqual(t, AccessPublic, route.Access, "%s must not be public", key)
	}
}

func TestRouterAccessLevels(t *testing.T) {
	app := newTestApp()

	cases := []struct {
		name   string
		method string
		path   string
		caller string
		body   string
		status int
	}{
		{"public catalog", http.MethodGet, "/approved-classes", "", "", http.StatusOK},
		{"public banner", http.MethodGet, "/", "", "", http.StatusOK},
		{"create class without token", http.MethodPost, "/class", "", `{"name":"Spanish"}`, http.StatusUnauthorized},
		{"create class with bad token", http.MethodPost, "/class", "expired", `{"name":"Spanish"}`, http.StatusForbidden},
		{"student cannot create class", http.MethodPost, "/class", "student@lab.io", `{"name":"Spanish"}`, http.StatusForbidden},
		{"instructor creates class", http.MethodPost, "/class", "tutor@lab.io", `{"name":"Spanish"}`, http.StatusCreated},
		{"student cannot list users", http.MethodGet, "/users", "student@lab.io", "", http.StatusForbidden},
		{"admin lists users", http.MethodGet, "/users", "admin@lab.io", "", http.StatusOK},
		{"instructor cannot promote", http.MethodPatch, "/users/admin/u-1", "tutor@lab.io", "", http.StatusForbidden},
		{"admin promotes", http.MethodPatch, "/users/instructor/u-1", "admin@lab.io", "", http.StatusOK},
		{"student cannot moderate", http.MethodPatch, "/status/class-1?status=approved", "student@lab.io", "", http.StatusForbidden},
		{"unknown user cannot write feedback", http.MethodPut, "/feedback/class-1", "ghost@lab.io", `{"feedback":"ok"}`, http.StatusForbidden},
		{"unset role selects as student", http.MethodPost, "/select-class", "newcomer@lab.io", `{"classId":"class-1"}`, http.StatusCreated},
		{"instructor cannot select", http.MethodPost, "/select-class", "tutor@lab.io", `{"classId":"class-1"}`, http.StatusForbidden},
		{"admin cannot pay", http.MethodPost, "/payments", "admin@lab.io", `{}`, http.StatusForbidden},
		{"logout requires token", http.MethodPost, "/logout", "", "", http.StatusUnauthorized},
		{"metrics summary is admin only", http.MethodGet, "/metrics/summary", "tutor@lab.io", "", http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := app.do(tc.method, tc.path, tc.caller, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouterOwnershipOnReads(t *testing.T) {
	app := newTestApp()

	rec := app.do(http.MethodGet, "/selected-classes", "student@lab.io", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "student@lab.io", app.selections.listedFor)

	rec = app.do(http.MethodGet, "/selected-classes?email=classmate@lab.io", "student@lab.io", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodGet, "/payment-history?email=classmate@lab.io", "admin@lab.io", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "classmate@lab.io", app.payments.historyOf)

	rec = app.do(http.MethodGet, "/users/classmate@lab.io", "student@lab.io", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodGet, "/users/student@lab.io", "student@lab.io", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterStaticSegmentWinsOverEmailParam(t *testing.T) {
	app := newTestApp()

	rec := app.do(http.MethodGet, "/users/check-role/tutor@lab.io", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"instructor"`), rec.Body.String())
}
