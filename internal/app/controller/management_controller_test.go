package controller_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagementPublishAndClearAnnouncement(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	w := s.request(t, http.MethodPost, "/api/v1/admin/announcements/publish", token, map[string]interface{}{
		"text": "Monsoon service camp now open",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// The public banner endpoint reflects the published text
	w = s.request(t, http.MethodGet, "/api/v1/announcement", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	banner, ok := body["announcement"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Monsoon service camp now open", banner["text"])

	// Publishing again swaps the banner
	w = s.request(t, http.MethodPost, "/api/v1/admin/announcements/publish", token, map[string]interface{}{
		"text": "Winter tyre promotion",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.request(t, http.MethodGet, "/api/v1/announcement", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	banner = body["announcement"].(map[string]interface{})
	assert.Equal(t, "Winter tyre promotion", banner["text"])

	// Clearing leaves the storefront without a banner
	w = s.request(t, http.MethodPost, "/api/v1/admin/announcements/clear", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.request(t, http.MethodGet, "/api/v1/announcement", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body["announcement"])
}

func TestManagementPublishRequiresAdmin(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, http.MethodPost, "/api/v1/admin/announcements/publish", s.customerToken(t), map[string]interface{}{
		"text": "not allowed",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestManagementAddPartMultipart(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)
	s.seedCategories(t, 1)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("name", "Oil Filter"))
	require.NoError(t, form.WriteField("description", "Genuine oil filter"))
	require.NoError(t, form.WriteField("price", "650"))
	require.NoError(t, form.WriteField("stock", "40"))
	require.NoError(t, form.WriteField("categoryId", "1"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/content/parts", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	part, ok := body["part"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Oil Filter", part["name"])
	assert.Equal(t, "admin-1", part["addedBy"])
	// No object storage configured in tests, the part lands without an image
	assert.Nil(t, part["image"])
}

func TestManagementAddPartUnknownCategory(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("name", "Oil Filter"))
	require.NoError(t, form.WriteField("price", "650"))
	require.NoError(t, form.WriteField("stock", "40"))
	require.NoError(t, form.WriteField("categoryId", "404"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/content/parts", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestManagementUpdateAnnouncementText(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	w := s.request(t, http.MethodPost, "/api/v1/admin/announcements/publish", token, map[string]interface{}{
		"text": "draft",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	banner := created["announcement"].(map[string]interface{})

	w = s.request(t, http.MethodPut, "/api/v1/admin/announcements/1/text", token, map[string]interface{}{
		"text": "final",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.request(t, http.MethodGet, "/api/v1/announcement", "", nil)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	updated := body["announcement"].(map[string]interface{})
	assert.Equal(t, banner["id"], updated["id"])
	assert.Equal(t, "final", updated["text"])
}
