package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/dmitrijs2005/litmgmt/internal/cryptox"
	"github.com/dmitrijs2005/litmgmt/internal/logging"
	"github.com/dmitrijs2005/litmgmt/internal/server/auth"
	"github.com/dmitrijs2005/litmgmt/internal/server/collections"
	"github.com/dmitrijs2005/litmgmt/internal/server/ids"
	"github.com/dmitrijs2005/litmgmt/internal/server/users"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t   *testing.T
	srv *HTTPServer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logging.NewDiscardLogger()
	alloc := ids.NewAllocator()
	issuer := auth.NewIssuer([]byte("test-secret"))
	dir := users.NewDirectory(alloc, issuer, logger,
		users.WithDigestParams(cryptox.Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}))
	store := collections.NewStore(alloc, logger)
	return &harness{t: t, srv: NewHTTPServer("127.0.0.1:0", time.Second, logger, dir, store, issuer)}
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(h.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", common.AuthorizationScheme+token)
	}
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// session registers and logs in a user and returns the token.
func (h *harness) session(name string) string {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": name, "email": name + "@example.com", "password": "pw",
	})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPost, "/api/login", "", map[string]string{"name": name, "password": "pw"})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[tokenResponse](h.t, rec).Token
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	u := decode[userResponse](t, rec)
	assert.Equal(t, "alice", u.Name)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"duplicate", map[string]string{"name": "ALICE", "email": "a@example.com", "password": "x"}, http.StatusConflict},
		{"bad email", map[string]string{"name": "bob", "email": "bob", "password": "x"}, http.StatusBadRequest},
		{"empty", map[string]string{"name": "", "email": "b@example.com", "password": "x"}, http.StatusBadRequest},
		{"garbage", "{nope", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(http.MethodPost, "/api/register", "", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec = h.do(http.MethodPost, "/api/login", "", map[string]string{"name": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	t1 := decode[tokenResponse](t, rec).Token

	rec = h.do(http.MethodPost, "/api/login", "", map[string]string{"name": "Alice", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, t1, decode[tokenResponse](t, rec).Token)

	rec = h.do(http.MethodPost, "/api/login", "", map[string]string{"name": "alice", "password": "nope"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSessionRequired(t *testing.T) {
	h := newHarness(t)
	token := h.session("alice")

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/collections", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/collections", "not-a-jwt", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/collections", token, nil).Code)

	rec := h.do(http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/collections", token, nil).Code)

	// logout without a session is still fine
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/api/logout", "", nil).Code)
}

func TestTokenSignedElsewhereRejected(t *testing.T) {
	h := newHarness(t)
	h.session("alice")

	forged, err := auth.NewIssuer([]byte("other")).Mint(0, "alice", "x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/collections", forged, nil).Code)
}

func TestCollectionsFlow(t *testing.T) {
	h := newHarness(t)
	alice := h.session("alice")
	bob := h.session("bob")

	rec := h.do(http.MethodPost, "/api/collections", alice, map[string]string{"name": "refs"})
	require.Equal(t, http.StatusCreated, rec.Code)
	col := decode[collectionResponse](t, rec)

	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/api/collections", alice, map[string]string{"name": "refs"}).Code)
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/collections", bob, map[string]string{"name": "refs"}).Code)

	path := fmt.Sprintf("/api/collections/%d", col.ID)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, path, alice, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, path, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/collections/999", alice, nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/collections/abc", alice, nil).Code)

	rec = h.do(http.MethodPut, path, alice, map[string]string{"name": "papers"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "papers", decode[collectionResponse](t, rec).Name)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, path, bob, map[string]string{"name": "x"}).Code)

	rec = h.do(http.MethodGet, "/api/collections", alice, nil)
	list := decode[[]collectionSummary](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "papers", list[0].Name)

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodDelete, path, bob, nil).Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, path, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, alice, nil).Code)
	assert.Empty(t, decode[[]collectionSummary](t, h.do(http.MethodGet, "/api/collections", alice, nil)))
}

func TestEntriesFlow(t *testing.T) {
	h := newHarness(t)
	alice := h.session("alice")
	bob := h.session("bob")

	col := decode[collectionResponse](t, h.do(http.MethodPost, "/api/collections", alice, map[string]string{"name": "refs"}))
	base := fmt.Sprintf("/api/collections/%d/entries", col.ID)

	rec := h.do(http.MethodPost, base, alice, map[string]string{"citeKey": "knuth84", "entryType": "Book"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	e := decode[entryResponse](t, rec)
	assert.Equal(t, "knuth84", e.CiteKey)
	assert.Contains(t, rec.Body.String(), `"entryType":"book"`)

	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, base, alice, map[string]string{"citeKey": "knuth84", "entryType": "article"}).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, base, alice, map[string]string{"citeKey": "x", "entryType": "pamphlet"}).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, base, alice, map[string]string{"citeKey": "x"}).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, base, bob, map[string]string{"citeKey": "y", "entryType": "misc"}).Code)

	entryPath := fmt.Sprintf("%s/%d", base, e.ID)

	rec = h.do(http.MethodPut, entryPath+"/fields", alice, map[string]string{"fieldType": "title", "value": "The TeXbook"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodPut, entryPath+"/fields", alice, map[string]any{
		"fields": []map[string]string{
			{"fieldType": "author", "value": "Knuth"},
			{"fieldType": "TITLE", "value": "TeXbook"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[entryResponse](t, rec)
	require.Len(t, got.Fields, 2)
	assert.Equal(t, "TeXbook", got.Fields[0].Value)
	assert.Equal(t, "Knuth", got.Fields[1].Value)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPut, entryPath+"/fields", alice, map[string]string{"fieldType": "colour", "value": "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPut, entryPath+"/fields", alice, map[string]any{}).Code)

	// entry type is immutable
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, entryPath, alice, map[string]string{"entryType": "article"}).Code)
	rec = h.do(http.MethodPut, entryPath, alice, map[string]string{"entryType": "book", "citeKey": "knuth-texbook"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "knuth-texbook", decode[entryResponse](t, rec).CiteKey)

	rec = h.do(http.MethodGet, base, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]entryResponse](t, rec), 1)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, entryPath, alice, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, entryPath, bob, nil).Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, entryPath, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, entryPath, alice, nil).Code)
}

func TestDescriptions(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/descriptions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entryType":"article"`)
	assert.Contains(t, rec.Body.String(), `"required":["author","title","journal","year"]`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrKeyConflict, http.StatusConflict},
		{common.ErrNameConflict, http.StatusConflict},
		{common.ErrInvalidEmail, http.StatusBadRequest},
		{common.ErrEmptyField, http.StatusBadRequest},
		{common.ErrParseFailure, http.StatusBadRequest},
		{common.ErrAuthenticationFailure, http.StatusForbidden},
		{common.ErrForbidden, http.StatusForbidden},
		{common.ErrForbiddenModification, http.StatusForbidden},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrorNotFound, http.StatusNotFound},
		{echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	h := newHarness(t)
	h.srv.address = addr

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
