package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/entity"
	gerr "github.com/softkom/site-manager/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminStub struct {
	dependency.Admin
	hashes map[string]string
}

func (a *adminStub) AddAdmin(ctx context.Context, un, pwHash string) error {
	a.hashes[un] = pwHash
	return nil
}

func (a *adminStub) DeleteAdmin(ctx context.Context, username string) error {
	if _, ok := a.hashes[username]; !ok {
		return gerr.ErrNotFound
	}
	delete(a.hashes, username)
	return nil
}

func (a *adminStub) ChangePassword(ctx context.Context, un, newHash string) error {
	if _, ok := a.hashes[un]; !ok {
		return gerr.ErrNotFound
	}
	a.hashes[un] = newHash
	return nil
}

func (a *adminStub) PasswordHashByUsername(ctx context.Context, un string) (string, error) {
	hash, ok := a.hashes[un]
	if !ok {
		return "", gerr.ErrNotFound
	}
	return hash, nil
}

func (a *adminStub) GetAdminByUsername(ctx context.Context, username string) (*entity.Admin, error) {
	hash, ok := a.hashes[username]
	if !ok {
		return nil, gerr.ErrNotFound
	}
	return &entity.Admin{Username: username, PasswordHash: hash}, nil
}

func (a *adminStub) ListAdmins(ctx context.Context) ([]entity.Admin, error) {
	names := make([]string, 0, len(a.hashes))
	for un := range a.hashes {
		names = append(names, un)
	}
	sort.Strings(names)
	out := make([]entity.Admin, 0, len(names))
	for i, un := range names {
		out = append(out, entity.Admin{ID: i + 1, Username: un, PasswordHash: a.hashes[un]})
	}
	return out, nil
}

func testConfig() *Config {
	return &Config{
		JWTSecret:                "test-secret",
		MasterPassword:           "master-pw",
		PasswordHasherSaltSize:   16,
		PasswordHasherIterations: 1000,
		JWTTTL:                   "1h",
	}
}

func newTestServer(t *testing.T) (*Server, *adminStub, *httptest.Server) {
	t.Helper()
	admins := &adminStub{hashes: map[string]string{}}
	s, err := New(testConfig(), admins)
	require.NoError(t, err)

	// seed one user through the server's own hasher
	hash, err := s.pwhash.HashPassword("operator-pw")
	require.NoError(t, err)
	admins.hashes["operator"] = hash

	r := chi.NewRouter()
	r.Route("/api/auth", s.Routes)
	return s, admins, httptest.NewServer(r)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func TestLogin(t *testing.T) {
	_, _, ts := newTestServer(t)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/auth/login", map[string]string{
		"username": "Operator",
		"password": "operator-pw",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.NotEmpty(t, body["authToken"])

	resp = postJSON(t, ts.URL+"/api/auth/login", map[string]string{
		"username": "operator",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/auth/login", map[string]string{
		"username": "ghost",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateUserRequiresMasterPassword(t *testing.T) {
	_, admins, ts := newTestServer(t)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/auth/users", map[string]string{
		"username":       "NewAdmin",
		"password":       "pw123456",
		"masterPassword": "master-pw",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	assert.Contains(t, admins.hashes, "newadmin")

	resp = postJSON(t, ts.URL+"/api/auth/users", map[string]string{
		"username":       "intruder",
		"password":       "pw123456",
		"masterPassword": "guess",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
	assert.NotContains(t, admins.hashes, "intruder")
}

func TestListUsers(t *testing.T) {
	_, _, ts := newTestServer(t)
	defer ts.Close()

	// no token
	resp, err := http.Get(ts.URL + "/api/auth/users")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	loginResp := postJSON(t, ts.URL+"/api/auth/login", map[string]string{
		"username": "operator",
		"password": "operator-pw",
	})
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var login map[string]string
	require.NoError(t, json.NewDecoder(loginResp.Body).Decode(&login))
	loginResp.Body.Close()

	get := func(path string) *http.Response {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+path, nil)
		req.Header.Set("Authorization", "Bearer "+login["authToken"])
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp = get("/api/auth/users")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	resp.Body.Close()
	require.Len(t, users, 1)
	assert.Equal(t, "operator", users[0]["username"])
	// the hash must never serialize
	assert.NotContains(t, users[0], "passwordHash")
	assert.NotContains(t, users[0], "password_hash")

	resp = get("/api/auth/users/operator")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	resp.Body.Close()
	assert.Equal(t, "operator", user["username"])

	resp = get("/api/auth/users/ghost")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestWithAuth(t *testing.T) {
	s, _, ts := newTestServer(t)
	defer ts.Close()

	protected := s.WithAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	pts := httptest.NewServer(protected)
	defer pts.Close()

	// no token
	resp, err := http.Get(pts.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// token from a real login
	loginResp := postJSON(t, ts.URL+"/api/auth/login", map[string]string{
		"username": "operator",
		"password": "operator-pw",
	})
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(loginResp.Body).Decode(&body))
	loginResp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, pts.URL, nil)
	req.Header.Set("Authorization", "Bearer "+body["authToken"])
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// garbage token
	req, _ = http.NewRequest(http.MethodGet, pts.URL, nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
