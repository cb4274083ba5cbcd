package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI mimics the server side of the auth flow: a login that issues a
// token pair, a refresh endpoint that rotates it, and a protected route.
type fakeAPI struct {
	mu           sync.Mutex
	validAccess  string
	validRefresh string
	refreshCalls int32
	refreshDelay time.Duration
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.validAccess = "access-1"
		f.validRefresh = "refresh-1"
		f.mu.Unlock()

		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "refresh-1", Path: "/api/auth", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"access_token": "access-1",
				"user":         map[string]string{"id": "u1", "email": "a@b.com"},
			},
		})
	})

	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("refreshToken")

		f.mu.Lock()
		ok := err == nil && cookie.Value == f.validRefresh
		f.mu.Unlock()

		if !ok {
			writeError(w, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN")
			return
		}

		// hold the round-trip open so concurrent callers pile up behind it
		time.Sleep(f.refreshDelay)
		atomic.AddInt32(&f.refreshCalls, 1)

		f.mu.Lock()
		f.validAccess = "access-2"
		f.validRefresh = "refresh-2"
		f.mu.Unlock()

		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "refresh-2", Path: "/api/auth", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]string{"access_token": "access-2"},
		})
	})

	mux.HandleFunc("GET /api/items", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		expected := "Bearer " + f.validAccess
		f.mu.Unlock()

		if r.Header.Get("Authorization") != expected {
			writeError(w, http.StatusUnauthorized, "INVALID_TOKEN")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"items": []string{"one"}},
		})
	})

	return mux
}

func (f *fakeAPI) expireAccessToken() {
	f.mu.Lock()
	f.validAccess = "rotated-away"
	f.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": code, "message": code},
	})
}

func TestClient_DoRefreshesOn401(t *testing.T) {
	api := &fakeAPI{}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "a@b.com", "Passw0rd")
	require.NoError(t, err)
	assert.Equal(t, "access-1", client.AccessToken())

	var out struct {
		Items []string `json:"items"`
	}
	require.NoError(t, client.Do(context.Background(), "GET", "/api/items", nil, &out))
	assert.Equal(t, []string{"one"}, out.Items)
	assert.Equal(t, int32(0), atomic.LoadInt32(&api.refreshCalls))

	// the server rotates the access token out from under the client
	api.expireAccessToken()

	require.NoError(t, client.Do(context.Background(), "GET", "/api/items", nil, &out))
	assert.Equal(t, "access-2", client.AccessToken())
	assert.Equal(t, int32(1), atomic.LoadInt32(&api.refreshCalls))
}

func TestClient_ConcurrentRefreshIsShared(t *testing.T) {
	api := &fakeAPI{refreshDelay: 100 * time.Millisecond}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "a@b.com", "Passw0rd")
	require.NoError(t, err)

	api.expireAccessToken()

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out struct {
				Items []string `json:"items"`
			}
			errs[i] = client.Do(context.Background(), "GET", "/api/items", nil, &out)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "caller %d", i)
	}

	// every 401 collapses into a single refresh round-trip
	assert.Equal(t, int32(1), atomic.LoadInt32(&api.refreshCalls))
}

func TestClient_DoWithoutSessionFails(t *testing.T) {
	api := &fakeAPI{}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	// no login, so no refresh cookie either: the retry path cannot recover
	err = client.Do(context.Background(), "GET", "/api/items", nil, nil)
	assert.Error(t, err)
}

func TestClient_LogoutClearsToken(t *testing.T) {
	api := &fakeAPI{}
	mux := api.handler().(*http.ServeMux)
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "", Path: "/api/auth", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Logged out"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "a@b.com", "Passw0rd")
	require.NoError(t, err)
	require.NotEmpty(t, client.AccessToken())

	require.NoError(t, client.Logout(context.Background()))
	assert.Empty(t, client.AccessToken())
}
