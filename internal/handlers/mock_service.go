package handlers

import (
	"context"
	"net/http"

	"cardcms/internal/models"
	"cardcms/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	token        string
	tokenErr     error
	user         *models.User
	verifyErr    error
	bootstrapErr error

	lastUsername  string
	lastPassword  string
	lastVerified  string
	verifyCalls   int
	generateCalls int
}

func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.generateCalls++
	m.lastUsername = username
	m.lastPassword = password
	return m.token, m.tokenErr
}

func (m *mockAuth) VerifyToken(ctx context.Context, accessToken string) (*models.User, error) {
	m.verifyCalls++
	m.lastVerified = accessToken
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return m.user, nil
}

func (m *mockAuth) EnsureBootstrapUser(ctx context.Context) error { return m.bootstrapErr }

type mockCards struct {
	listResp []models.Card
	listErr  error
	lastPage int

	createResp models.Card
	createErr  error
	lastCreate service.CreateCardInput

	updateResp   models.Card
	updateErr    error
	lastUpdateID string
	lastUpdate   service.UpdateCardInput

	deleteErr    error
	lastDeleteID string

	snapResp service.ContentSnapshot
	snapErr  error

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int
}

func (m *mockCards) List(ctx context.Context, page int) ([]models.Card, error) {
	m.listCalls++
	m.lastPage = page
	return m.listResp, m.listErr
}

func (m *mockCards) Create(ctx context.Context, in service.CreateCardInput) (models.Card, error) {
	m.createCalls++
	m.lastCreate = in
	return m.createResp, m.createErr
}

func (m *mockCards) Update(ctx context.Context, id string, in service.UpdateCardInput) (models.Card, error) {
	m.updateCalls++
	m.lastUpdateID = id
	m.lastUpdate = in
	return m.updateResp, m.updateErr
}

func (m *mockCards) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	m.lastDeleteID = id
	return m.deleteErr
}

func (m *mockCards) Snapshot(ctx context.Context) (service.ContentSnapshot, error) {
	return m.snapResp, m.snapErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// okAuth returns a mock that accepts any token as the bootstrap admin.
func okAuth() *mockAuth {
	return &mockAuth{user: &models.User{ID: "u1", Username: "admin", Role: "admin"}}
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
