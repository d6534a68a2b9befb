package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drukmotors/dealership-backend/config"
	"github.com/drukmotors/dealership-backend/internal/app/controller"
	"github.com/drukmotors/dealership-backend/internal/app/service"
	"github.com/drukmotors/dealership-backend/internal/cache"
	"github.com/drukmotors/dealership-backend/internal/middleware"
	"github.com/drukmotors/dealership-backend/internal/registry"
	"github.com/drukmotors/dealership-backend/internal/router"
	"github.com/drukmotors/dealership-backend/internal/storage"
	"github.com/drukmotors/dealership-backend/internal/store"
	"github.com/drukmotors/dealership-backend/pkg/util"
)

const testSecret = "controller-test-secret"

type testServer struct {
	engine *gin.Engine
	mem    *store.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := registry.New()
	mem := store.NewMemory(reg)

	cfg := &config.Config{}
	cfg.Server.GinMode = gin.TestMode
	cfg.CORS.AllowedOrigins = []string{"*"}

	resourceService := service.NewResourceService(reg, mem, cache.Noop{})
	authService := service.NewAuthService(mem, storage.Disabled{}, testSecret, 15*time.Minute, 24*time.Hour)
	announcementService := service.NewAnnouncementService(mem, cache.Noop{})
	appointmentService := service.NewAppointmentService(mem)
	catalogService := service.NewCatalogService(mem)
	contentService := service.NewContentService(mem, storage.Disabled{}, cache.Noop{})
	statsService := service.NewStatsService(mem, announcementService)

	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewCatalogController(catalogService, announcementService),
		controller.NewAppointmentController(appointmentService),
		controller.NewAdminController(resourceService, statsService),
		controller.NewManagementController(announcementService, contentService),
		middleware.NewAuthMiddleware(testSecret),
		cfg,
	)

	return &testServer{engine: r.Setup(), mem: mem}
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	tokens, err := util.GenerateTokenPair("admin-1", "admin", "ADMIN", testSecret, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return tokens.AccessToken
}

func (s *testServer) customerToken(t *testing.T) string {
	t.Helper()
	tokens, err := util.GenerateTokenPair("cust-1", "customer", "CUSTOMER", testSecret, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return tokens.AccessToken
}

func (s *testServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedCategories(t *testing.T, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		_, err := s.mem.Insert(ctx, "categories", store.Record{
			"name": fmt.Sprintf("category-%02d", i),
		})
		require.NoError(t, err)
	}
}

func seedServiceType(t *testing.T, s *testServer) {
	t.Helper()
	_, err := s.mem.Insert(context.Background(), "serviceTypes", store.Record{
		"name":      "Standard Alignment",
		"basePrice": 1500.0,
	})
	require.NoError(t, err)
}

func TestAdminListDefaultsAndContentRange(t *testing.T) {
	s := newTestServer(t)
	s.seedCategories(t, 25)
	token := s.adminToken(t)

	w := s.request(t, http.MethodGet, "/api/v1/admin/categories", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "categories 0-9/25", w.Header().Get("Content-Range"))
	assert.Equal(t, "Content-Range", w.Header().Get("Access-Control-Expose-Headers"))

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 10, "default range is the first ten records")
}

func TestAdminListExplicitParams(t *testing.T) {
	s := newTestServer(t)
	s.seedCategories(t, 25)
	token := s.adminToken(t)

	query := url.Values{}
	query.Set("sort", `["id","DESC"]`)
	query.Set("range", `[0,4]`)

	w := s.request(t, http.MethodGet, "/api/v1/admin/categories?"+query.Encode(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "categories 0-4/25", w.Header().Get("Content-Range"))

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 5)
	assert.Equal(t, float64(25), rows[0]["id"], "DESC sort puts the newest id first")
}

func TestAdminListMalformedParams(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	tests := []struct {
		name  string
		query string
	}{
		{"malformed sort", `sort=not-json`},
		{"malformed range", `range={"bad":1}`},
		{"malformed filter", `filter=[1,2]`},
		{"inverted range", `range=[9,0]`},
		{"unknown sort field", `sort=["bogus","ASC"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.request(t, http.MethodGet, "/api/v1/admin/categories?"+tt.query, token, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAdminUnknownResource(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	w := s.request(t, http.MethodGet, "/api/v1/admin/widgets", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCRUDRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	// Create a category, then a part referencing it
	w := s.request(t, http.MethodPost, "/api/v1/admin/categories", token, map[string]interface{}{
		"name": "Brakes",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.request(t, http.MethodPost, "/api/v1/admin/parts", token, map[string]interface{}{
		"name":       "Brake Pads",
		"price":      4500,
		"stock":      20,
		"categoryId": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, float64(1), created["id"])
	assert.NotNil(t, created["createdAt"])

	// Read it back, category attached
	w = s.request(t, http.MethodGet, "/api/v1/admin/parts/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	category, ok := got["category"].(map[string]interface{})
	require.True(t, ok, "part reads attach the category")
	assert.Equal(t, "Brakes", category["name"])

	// Update and verify
	w = s.request(t, http.MethodPut, "/api/v1/admin/parts/1", token, map[string]interface{}{
		"name":     "Premium Brake Pads",
		"category": map[string]interface{}{"id": 1, "name": "Brakes"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Premium Brake Pads", updated["name"])

	// Delete returns the removed record; a second read is a 404
	w = s.request(t, http.MethodDelete, "/api/v1/admin/parts/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.request(t, http.MethodGet, "/api/v1/admin/parts/1", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCreateConflictSurfacesStoreError(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	w := s.request(t, http.MethodPost, "/api/v1/admin/categories", token, map[string]interface{}{
		"id":   1,
		"name": "Brakes",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.request(t, http.MethodPost, "/api/v1/admin/categories", token, map[string]interface{}{
		"id":   1,
		"name": "Engine",
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// The envelope carries the store's message so operators can diagnose the
	// failure from the response alone
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	message, _ := body["message"].(string)
	assert.Contains(t, message, "duplicate id")
}

func TestAdminAnnouncementFilterAfterDeactivate(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := s.mem.Insert(ctx, "announcements", store.Record{
		"text": "welcome", "active": true, "createdAt": now, "updatedAt": now,
	})
	require.NoError(t, err)

	w := s.request(t, http.MethodPut, "/api/v1/admin/announcements/1", token, map[string]interface{}{
		"active": false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	query := url.Values{}
	query.Set("filter", `{"active":true}`)
	w = s.request(t, http.MethodGet, "/api/v1/admin/announcements?"+query.Encode(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "announcements 0-9/0", w.Header().Get("Content-Range"))

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Empty(t, rows)
}

func TestAdminUserResponsesHidePassword(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	w := s.request(t, http.MethodPost, "/api/v1/admin/users", token, map[string]interface{}{
		"username": "dorji",
		"email":    "dorji@example.com",
		"password": "secret-password",
		"role":     "CUSTOMER",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotContains(t, created, "password")
	id, ok := created["id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, id, "missing string keys are generated")

	w = s.request(t, http.MethodGet, "/api/v1/admin/users?"+url.Values{"filter": {`{"username":"dorji"}`}}.Encode(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.NotContains(t, rows[0], "password")
}

func TestAdminRequiresAdminRole(t *testing.T) {
	s := newTestServer(t)
	s.seedCategories(t, 1)

	before, err := s.mem.Count(context.Background(), "categories", nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"customer token", s.customerToken(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.request(t, http.MethodGet, "/api/v1/admin/categories", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = s.request(t, http.MethodPost, "/api/v1/admin/categories", tt.token, map[string]interface{}{
				"name": "Intruder",
			})
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = s.request(t, http.MethodDelete, "/api/v1/admin/categories/1", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	// Rejected requests never touch the store
	after, err := s.mem.Count(context.Background(), "categories", nil)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAdminStats(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)
	ctx := context.Background()

	s.seedCategories(t, 2)
	now := time.Now().UTC()
	_, err := s.mem.Insert(ctx, "announcements", store.Record{
		"text": "welcome", "active": true, "createdAt": now, "updatedAt": now,
	})
	require.NoError(t, err)

	w := s.request(t, http.MethodGet, "/api/v1/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, float64(2), stats["categories"])
	assert.Equal(t, float64(1), stats["activeAnnouncements"])

	latest, ok := stats["latestAnnouncement"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "welcome", latest["text"])
}
