package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/pms_backend/config"
	apihttp "github.com/Alijeyrad/pms_backend/internal/api/http"
	"github.com/Alijeyrad/pms_backend/internal/api/http/router"
	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/event"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/repo/repotest"
	"github.com/Alijeyrad/pms_backend/internal/service/assessment"
	"github.com/Alijeyrad/pms_backend/internal/service/auth"
	"github.com/Alijeyrad/pms_backend/internal/service/patient"
	"github.com/Alijeyrad/pms_backend/internal/service/practitioner"
	"github.com/Alijeyrad/pms_backend/internal/service/user"
	"github.com/Alijeyrad/pms_backend/pkg/authcode"
	"github.com/Alijeyrad/pms_backend/pkg/authorize/authorizetest"
	pasetotoken "github.com/Alijeyrad/pms_backend/pkg/paseto"
	"github.com/Alijeyrad/pms_backend/pkg/s3"
)

type envelope struct {
	Status  int                 `json:"status"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
	Message string              `json:"message"`
}

type fixture struct {
	app      *fiber.App
	db       *repo.Client
	sessions *auth.MemorySessions
	paseto   *pasetotoken.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Authentication: config.AuthenticationConfig{
			DefaultRegion:     "NG",
			MaxLoginAttempts:  5,
			LockoutMinutes:    15,
			TokenTTLHours:     72,
			MinPasswordLength: 8,
		},
		Password: config.PasswordConfig{MemoryKiB: 1024, Iterations: 1, Parallelism: 1},
		Assessment: config.AssessmentConfig{
			Scoring:         config.ScoringConfig{Policy: "percentage", PointsPerCorrect: 2},
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}

	db := repotest.Open(t)
	keys := pasetotoken.NewLocalKeys()
	pm, err := pasetotoken.New(pasetotoken.Config{Mode: keys.Mode, Issuer: "pms", Audience: "pms"}, keys)
	require.NoError(t, err)
	codes, err := authcode.New([]byte("code-secret"), "pms", time.Minute)
	require.NoError(t, err)
	sessions := auth.NewMemorySessions()

	authSvc, err := auth.New(db, sessions, pm, codes, nil, cfg)
	require.NoError(t, err)
	practitionerSvc, err := practitioner.New(db, s3.NewMemory(), cfg)
	require.NoError(t, err)
	assessmentSvc, err := assessment.New(db, &event.Recorder{}, cfg)
	require.NoError(t, err)
	catalogSvc, err := assessment.NewCatalog(db, cfg)
	require.NoError(t, err)

	r := router.NewRouter(router.Params{
		Cfg:             cfg,
		Auth:            authorizetest.Seeded(t),
		Sessions:        sessions,
		PasetoMgr:       pm,
		AuthSvc:         authSvc,
		UserSvc:         user.New(db, s3.NewMemory(), cfg),
		PractitionerSvc: practitionerSvc,
		PatientSvc:      patient.New(db, cfg),
		AssessmentSvc:   assessmentSvc,
		CatalogSvc:      catalogSvc,
	})

	app := apihttp.NewApp(cfg, nil, false)
	r.Register(app)

	return &fixture{app: app, db: db, sessions: sessions, paseto: pm}
}

// login opens a session for u and returns its access token.
func (f *fixture) login(t *testing.T, u *repo.User) string {
	t.Helper()
	sid := uuid.New()
	require.NoError(t, f.sessions.Create(context.Background(), sid, u.ID, time.Hour))
	tok, err := f.paseto.IssueAccess(u.ID, sid, u.UserRole)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type idOnly struct {
	ID uuid.UUID `json:"id"`
}

// ---------------------------------------------------------------------------
// Gates
// ---------------------------------------------------------------------------

func TestRequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodGet, "/api/v1/assessment", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, http.StatusUnauthorized, env.Status)
	assert.Equal(t, "Authentication credentials were not provided.", env.Message)
}

func TestRevokedSessionIsRejected(t *testing.T) {
	f := newFixture(t)
	u := repotest.User(t, f.db, enum.UserTypeUser)

	sid := uuid.New()
	tok, err := f.paseto.IssueAccess(u.ID, sid, u.UserRole)
	require.NoError(t, err)

	status, _ := f.do(t, http.MethodGet, "/api/v1/users/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPractitionerOnlyGate(t *testing.T) {
	f := newFixture(t)
	pr := repotest.User(t, f.db, enum.UserTypePractitioner)
	pt := repotest.User(t, f.db, enum.UserTypeUser)
	prTok, ptTok := f.login(t, pr), f.login(t, pt)

	status, env := f.do(t, http.MethodPost, "/api/v1/assessment/types", prTok, map[string]any{"name": "Mood Screening"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	typ := decode[idOnly](t, env.Data)
	base := "/api/v1/assessment/types/" + typ.ID.String()
	status, env = f.do(t, http.MethodPost, base+"/questions", prTok, map[string]any{"text": "Do you feel low?"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	q := decode[idOnly](t, env.Data)
	answers := base + "/questions/" + q.ID.String() + "/answers"
	status, env = f.do(t, http.MethodPost, answers, prTok, map[string]any{"text": "No", "is_correct": true})
	require.Equal(t, http.StatusCreated, status, env.Message)
	no := decode[idOnly](t, env.Data)

	assessmentBody := map[string]any{
		"patient":         pt.ID,
		"assessment_type": typ.ID,
		"date":            "2024-03-01",
		"results":         []map[string]any{{"question": q.ID, "answer": no.ID}},
	}
	status, env = f.do(t, http.MethodPost, "/api/v1/assessment", prTok, assessmentBody)
	require.Equal(t, http.StatusCreated, status, env.Message)
	existing := decode[idOnly](t, env.Data)

	tables := []string{"assessments", "assessment_results", "assessment_types", "questions", "answers"}
	before := map[string]int{}
	for _, tbl := range tables {
		before[tbl] = repotest.Count(t, f.db, tbl)
	}

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/v1/assessment", assessmentBody},
		{http.MethodPut, "/api/v1/assessment/" + existing.ID.String(), map[string]any{"results": []map[string]any{}}},
		{http.MethodDelete, "/api/v1/assessment/" + existing.ID.String(), nil},
		{http.MethodPost, "/api/v1/assessment/types", map[string]any{"name": "Memory"}},
		{http.MethodDelete, base, nil},
		{http.MethodPost, base + "/questions", map[string]any{"text": "Do you sleep well?"}},
		{http.MethodPost, answers, map[string]any{"text": "Yes", "is_correct": true}},
		{http.MethodGet, "/api/v1/patients", nil},
	} {
		status, env := f.do(t, tc.method, tc.path, ptTok, tc.body)
		assert.Equal(t, http.StatusForbidden, status, tc.method+" "+tc.path)
		assert.Equal(t, http.StatusForbidden, env.Status)
		assert.Equal(t, "You currently do not have access to this resource", env.Message)
	}

	for _, tbl := range tables {
		assert.Equal(t, before[tbl], repotest.Count(t, f.db, tbl), tbl)
	}
	status, env = f.do(t, http.MethodGet, "/api/v1/assessment/"+existing.ID.String(), prTok, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	got := decode[struct {
		FinalScore float64 `json:"final_score"`
	}](t, env.Data)
	assert.Equal(t, float64(100), got.FinalScore)
}

func TestPatientOnlyGate(t *testing.T) {
	f := newFixture(t)
	pr := repotest.User(t, f.db, enum.UserTypePractitioner)

	status, env := f.do(t, http.MethodGet, "/api/v1/patients/settings", f.login(t, pr), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You currently do not have access to this resource", env.Message)
}

func TestAdminOnlyUserList(t *testing.T) {
	f := newFixture(t)
	pr := repotest.User(t, f.db, enum.UserTypePractitioner)
	admin := repotest.User(t, f.db, enum.UserTypeAdmin)

	status, _ := f.do(t, http.MethodGet, "/api/v1/users", f.login(t, pr), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := f.do(t, http.MethodGet, "/api/v1/users?role=practitioner", f.login(t, admin), nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[struct {
		Count int `json:"count"`
	}](t, env.Data)
	assert.Equal(t, 1, page.Count)
}

func TestAdminOnlyProfileDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pr := repotest.User(t, f.db, enum.UserTypePractitioner)
	prof, err := f.db.Practitioners.Create(ctx, pr.ID)
	require.NoError(t, err)
	pt := repotest.User(t, f.db, enum.UserTypeUser)
	patient, err := f.db.Patients.Create(ctx, pt.ID)
	require.NoError(t, err)
	prTok, adminTok := f.login(t, pr), f.login(t, repotest.User(t, f.db, enum.UserTypeAdmin))

	patientPath := "/api/v1/patients/" + patient.ID.String()
	status, env := f.do(t, http.MethodDelete, patientPath, prTok, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You currently do not have access to this resource", env.Message)
	assert.Equal(t, 1, repotest.Count(t, f.db, "patients"))

	status, env = f.do(t, http.MethodDelete, patientPath, adminTok, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "Account deleted successfully", env.Message)
	status, _ = f.do(t, http.MethodGet, patientPath, prTok, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = f.do(t, http.MethodDelete, "/api/v1/practitioners/"+prof.ID.String(), adminTok, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Zero(t, repotest.Count(t, f.db, "practitioners"))
	status, _ = f.do(t, http.MethodDelete, "/api/v1/practitioners/"+prof.ID.String(), adminTok, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// ---------------------------------------------------------------------------
// Assessments end to end
// ---------------------------------------------------------------------------

func TestAssessmentLifecycle(t *testing.T) {
	f := newFixture(t)
	pr := repotest.User(t, f.db, enum.UserTypePractitioner)
	pt := repotest.User(t, f.db, enum.UserTypeUser)
	prTok, ptTok := f.login(t, pr), f.login(t, pt)

	status, env := f.do(t, http.MethodPost, "/api/v1/assessment/types", prTok, map[string]any{"name": "Mood Screening"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, "Assessment type created successfully", env.Message)
	typ := decode[idOnly](t, env.Data)

	base := "/api/v1/assessment/types/" + typ.ID.String()
	status, env = f.do(t, http.MethodPost, base+"/questions", prTok, map[string]any{"text": "Do you feel low?"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, "Question added successfully", env.Message)
	q := decode[idOnly](t, env.Data)

	answers := base + "/questions/" + q.ID.String() + "/answers"
	status, env = f.do(t, http.MethodPost, answers, prTok, map[string]any{"text": "Yes", "is_correct": false})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, "Answer submitted successfully", env.Message)
	status, env = f.do(t, http.MethodPost, answers, prTok, map[string]any{"text": "No", "is_correct": true})
	require.Equal(t, http.StatusCreated, status, env.Message)
	no := decode[idOnly](t, env.Data)

	status, env = f.do(t, http.MethodPost, "/api/v1/assessment", prTok, map[string]any{
		"patient":         pt.ID,
		"assessment_type": typ.ID,
		"date":            "2024-03-01",
		"results":         []map[string]any{{"question": q.ID, "answer": no.ID}},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, "Assessment created successfully", env.Message)
	created := decode[struct {
		ID         uuid.UUID `json:"id"`
		Date       string    `json:"date"`
		FinalScore float64   `json:"final_score"`
		Results    []any     `json:"results"`
	}](t, env.Data)
	assert.Equal(t, float64(100), created.FinalScore)
	assert.Equal(t, "2024-03-01", created.Date)
	assert.Len(t, created.Results, 1)

	path := "/api/v1/assessment/" + created.ID.String()

	// The patient sees their own assessment.
	status, _ = f.do(t, http.MethodGet, path, ptTok, nil)
	assert.Equal(t, http.StatusOK, status)

	// Someone else's assessment does not exist for an unrelated practitioner.
	other := repotest.User(t, f.db, enum.UserTypePractitioner)
	status, env = f.do(t, http.MethodGet, path, f.login(t, other), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Assessment not found", env.Message)

	status, env = f.do(t, http.MethodPut, path, prTok, map[string]any{"results": []any{}})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, "Assessment updated successfully", env.Message)
	updated := decode[struct {
		FinalScore float64 `json:"final_score"`
	}](t, env.Data)
	assert.Equal(t, float64(0), updated.FinalScore)

	status, env = f.do(t, http.MethodGet, path+"/questions", ptTok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]any](t, env.Data), 1)

	status, env = f.do(t, http.MethodDelete, path, prTok, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Assessment deleted successfully", env.Message)

	status, _ = f.do(t, http.MethodGet, path, prTok, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAssessmentValidationEnvelope(t *testing.T) {
	f := newFixture(t)
	pr := repotest.User(t, f.db, enum.UserTypePractitioner)
	tok := f.login(t, pr)

	status, env := f.do(t, http.MethodPost, "/api/v1/assessment", tok, map[string]any{"date": "01/03/2024"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, http.StatusBadRequest, env.Status)
	assert.Contains(t, env.Errors, "date")

	status, env = f.do(t, http.MethodPost, "/api/v1/assessment", tok, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "patient")
	assert.Contains(t, env.Errors, "assessment_type")
}

func TestTypesRouteIsNotAnAssessmentID(t *testing.T) {
	f := newFixture(t)
	pt := repotest.User(t, f.db, enum.UserTypeUser)

	status, env := f.do(t, http.MethodGet, "/api/v1/assessment/types", f.login(t, pt), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]any](t, env.Data))

	status, env = f.do(t, http.MethodGet, "/api/v1/assessment/not-a-uuid", f.login(t, pt), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not found.", env.Message)
}

func TestUnknownTypeIsNotFound(t *testing.T) {
	f := newFixture(t)
	pr := repotest.User(t, f.db, enum.UserTypePractitioner)

	status, env := f.do(t, http.MethodPut, "/api/v1/assessment/types/"+uuid.NewString(), f.login(t, pr), map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Assessment type not found", env.Message)
}

// ---------------------------------------------------------------------------
// Accounts and profiles
// ---------------------------------------------------------------------------

func TestRegisterLoginAndProfile(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodPost, "/api/v1/auth/register/user", "", map[string]any{
		"username":                      "adaeze",
		"email":                         "ada@example.com",
		"phone_number":                  "0803 123 4567",
		"password":                      "correct-horse-battery",
		"first_name":                    "Ada",
		"last_name":                     "Obi",
		"is_accept_terms_and_condition": true,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, "Account created successfully", env.Message)

	status, env = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "ada@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	login := decode[struct {
		Token struct {
			Access string `json:"access"`
		} `json:"token"`
		AuthCode string `json:"auth_code"`
	}](t, env.Data)
	require.NotEmpty(t, login.Token.Access)
	assert.NotEmpty(t, login.AuthCode)

	status, env = f.do(t, http.MethodPut, "/api/v1/patients/settings", login.Token.Access, map[string]any{
		"blood_group": "o+",
		"genotype":    "AA",
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	p := decode[struct {
		BloodGroup *string `json:"blood_group"`
	}](t, env.Data)
	require.NotNil(t, p.BloodGroup)
	assert.Equal(t, "O+", *p.BloodGroup)

	status, env = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "ada@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid credentials. Please provide valid credentials.", env.Message)

	status, env = f.do(t, http.MethodGet, "/api/v1/auth/logout", login.Token.Access, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	status, _ = f.do(t, http.MethodGet, "/api/v1/users/me", login.Token.Access, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPractitionerDocumentsNeedFiles(t *testing.T) {
	f := newFixture(t)
	pr := repotest.User(t, f.db, enum.UserTypePractitioner)
	_, err := f.db.Practitioners.Create(context.Background(), pr.ID)
	require.NoError(t, err)

	status, env := f.do(t, http.MethodPut, "/api/v1/practitioners/upload", f.login(t, pr), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No files were uploaded.", env.Message)
}

func TestPatientValidationEnvelope(t *testing.T) {
	f := newFixture(t)
	pt := repotest.User(t, f.db, enum.UserTypeUser)
	_, err := f.db.Patients.Create(context.Background(), pt.ID)
	require.NoError(t, err)

	status, env := f.do(t, http.MethodPut, "/api/v1/patients/settings", f.login(t, pt), map[string]any{
		"blood_group": "Z",
		"allergies":   []uuid.UUID{uuid.New()},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid input.", env.Message)
	assert.Contains(t, env.Errors, "blood_group")
	assert.Contains(t, env.Errors, "allergies")
}
