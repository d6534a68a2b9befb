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

func TestAuthRegisterLoginMe(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "dorji",
		"email":    "dorji@example.com",
		"password": "secret-password",
		"phone":    "+975 17000000",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Login works with either identifier
	for _, identifier := range []string{"dorji@example.com", "dorji"} {
		w = s.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
			"identifier": identifier,
			"password":   "secret-password",
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	var login map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	accessToken, ok := login["access_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, accessToken)

	user, ok := login["user"].(map[string]interface{})
	require.True(t, ok)
	assert.NotContains(t, user, "password")

	w = s.request(t, http.MethodGet, "/api/v1/auth/me", accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	profile := me["user"].(map[string]interface{})
	assert.Equal(t, "dorji", profile["username"])
}

func TestAuthLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "dorji",
		"email":    "dorji@example.com",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"identifier": "dorji",
		"password":   "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRegisterDuplicateConflict(t *testing.T) {
	s := newTestServer(t)

	payload := map[string]interface{}{
		"username": "dorji",
		"email":    "dorji@example.com",
		"password": "secret-password",
	}
	w := s.request(t, http.MethodPost, "/api/v1/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.request(t, http.MethodPost, "/api/v1/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthMeRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthUpdateOwnProfile(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "dorji",
		"email":    "dorji@example.com",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"identifier": "dorji",
		"password":   "secret-password",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	token := login["access_token"].(string)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("phone", "+975 77112233"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/auth/me", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	profile := body["user"].(map[string]interface{})
	assert.Equal(t, "+975 77112233", profile["phone"])
	assert.NotContains(t, profile, "password")

	// The change is visible on a fresh read
	w = s.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "+975 77112233", me["user"].(map[string]interface{})["phone"])
}

func TestAuthUpdateProfileRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, http.MethodPut, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAppointmentBookingFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "dorji",
		"email":    "dorji@example.com",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"identifier": "dorji",
		"password":   "secret-password",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	token := login["access_token"].(string)

	// Seed a bookable service type directly
	seedServiceType(t, s)

	w = s.request(t, http.MethodPost, "/api/v1/appointments", token, map[string]interface{}{
		"serviceTypeId": 1,
		"date":          "2026-09-15",
		"time":          "10:00",
		"notes":         "brake noise",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.request(t, http.MethodGet, "/api/v1/appointments/my", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	appointments := body["appointments"].([]interface{})
	require.Len(t, appointments, 1)

	first := appointments[0].(map[string]interface{})
	assert.Equal(t, "PENDING", first["status"])

	serviceType, ok := first["serviceType"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Standard Alignment", serviceType["name"])
}
