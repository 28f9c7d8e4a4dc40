package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"landestate/internal/config"
	"landestate/internal/db/dbtest"
	"landestate/internal/domain"
	"landestate/internal/queue"
	"landestate/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (r *recordingPublisher) Publish(_ context.Context, _ string, event queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) ofType(eventType string) []queue.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []queue.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	pub    *recordingPublisher
	cfg    *config.Config
}

func newEnv(t *testing.T, rdb *redis.Client) *testEnv {
	t.Helper()
	domain.BcryptCost = bcrypt.MinCost
	gdb := dbtest.Open(t)
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiryHours: 1, PublicURL: "http://localhost:8080"}
	pub := &recordingPublisher{}
	r := NewRouter(Deps{DB: gdb, Redis: rdb, Publisher: pub, Config: cfg})
	return &testEnv{t: t, db: gdb, router: r, pub: pub, cfg: cfg}
}

// do sends a JSON request, authenticated as p when p is not nil
func (e *testEnv) do(method, path string, body any, p *domain.Participant) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		token, err := utils.GenerateJWT(*p, "test@example.com", "Test", e.cfg.JWTSecret, time.Hour)
		require.NoError(e.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createUser(name, email string) domain.User {
	e.t.Helper()
	u := domain.User{Name: name, Email: email}
	require.NoError(e.t, u.SetPassword("password1"))
	require.NoError(e.t, e.db.Create(&u).Error)
	return u
}

func (e *testEnv) createEmployee(managerID uint, name, email string) domain.Employee {
	e.t.Helper()
	emp := domain.Employee{ManagerID: managerID, Name: name, Email: email, IsActive: true}
	require.NoError(e.t, emp.SetPassword("password1"))
	require.NoError(e.t, e.db.Create(&emp).Error)
	return emp
}

// createProperty creates a property through the API and returns it
func (e *testEnv) createProperty(owner domain.User, employeeID *uint) domain.Property {
	e.t.Helper()
	p := owner.Participant()
	w := e.do(http.MethodPost, "/api/users/"+id(owner.ID)+"/properties", gin.H{
		"name":       "Maple Court",
		"address":    "12 Maple Street",
		"city":       "Springfield",
		"type":       "apartment",
		"images":     []string{"https://img.example.com/maple.jpg"},
		"employeeId": employeeID,
	}, &p)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var property domain.Property
	decode(e.t, w, &property)
	return property
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}

func id(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func TestHealth(t *testing.T) {
	env := newEnv(t, nil)
	w := env.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthHidesDriverError(t *testing.T) {
	env := newEnv(t, nil)
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := env.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","error":"Database unavailable"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newEnv(t, nil)
	env.do(http.MethodGet, "/health", nil, nil)
	w := env.do(http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "landestate_http_requests_total")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newEnv(t, nil)
	w := env.do(http.MethodGet, "/api/messages/conversations", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSelfAuthorization(t *testing.T) {
	env := newEnv(t, nil)
	lena := env.createUser("Lena Landlord", "lena@example.com")
	otto := env.createUser("Otto Owner", "otto@example.com")
	alice := env.createEmployee(lena.ID, "Alice", "alice@example.com")

	asLena, asAlice := lena.Participant(), alice.Participant()

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/users/"+id(lena.ID), nil, &asLena).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/users/"+id(otto.ID), nil, &asLena).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodDelete, "/api/users/"+id(otto.ID), nil, &asLena).Code)
	// an employee token never opens a landlord route, even with a matching numeric id
	asFakeUser := domain.EmployeeParticipant(lena.ID)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/users/"+id(lena.ID), nil, &asFakeUser).Code)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/employees/"+id(alice.ID), nil, &asAlice).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/employees/"+id(alice.ID), nil, &asLena).Code)

	var count int64
	require.NoError(t, env.db.Model(&domain.User{}).Where("id = ?", otto.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateUser(t *testing.T) {
	env := newEnv(t, nil)
	lena := env.createUser("Lena Landlord", "lena@example.com")
	env.createUser("Otto Owner", "otto@example.com")
	p := lena.Participant()
	path := "/api/users/" + id(lena.ID)

	w := env.do(http.MethodPut, path, gin.H{"email": "OTTO@example.com"}, &p)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPut, path, gin.H{"phone": "12"}, &p)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPut, path, gin.H{"name": "Lena Lands", "phone": "+1 555 0100 22", "password": "newpassword2"}, &p)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), `"password"`)
	var updated domain.User
	decode(t, w, &updated)
	assert.Equal(t, "Lena Lands", updated.Name)
	assert.Equal(t, "lena@example.com", updated.Email)

	w = env.do(http.MethodPost, "/api/users/login", gin.H{"email": "lena@example.com", "password": "newpassword2"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
