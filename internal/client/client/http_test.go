package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/credentials"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/models"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/common"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/logging"
)

// ---- helpers ----

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newStore(t *testing.T) *credentials.Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file:httpclient_"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE credentials (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return credentials.NewStore(db)
}

func seedSession(t *testing.T, store *credentials.Store, access, refresh string) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), models.Credentials{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         &models.UserRecord{Username: "farmer"},
	}))
}

func writeJSON(t testing.TB, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

// expiredJWT builds a token whose exp claim is in the past. The client only
// reads the claim, so the signing key is irrelevant.
func expiredJWT(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	s, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

// ---- TESTS ----

func TestDo_AttachesBearerTokenAndRequestID(t *testing.T) {
	store := newStore(t)
	seedSession(t, store, "acc-1", "ref-1")

	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		writeJSON(t, w, models.UserRecord{Username: "farmer"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second, store, testLogger())
	_, err := c.GetProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer acc-1", gotAuth)
	require.NotEmpty(t, gotReqID)
}

func TestDo_NoTokenSendsUnauthenticatedRequest(t *testing.T) {
	store := newStore(t)

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, map[string]string{"message": "ok"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second, store, testLogger())
	err := c.Register(context.Background(), RegisterRequest{Username: "u", Password: "p", Password2: "p"})
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestRefresh_SingleFlight_AllCallersSucceed(t *testing.T) {
	const concurrent = 8

	store := newStore(t)
	seedSession(t, store, "acc-stale", "ref-1")

	var refreshCalls, rejected int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc-new" {
			atomic.AddInt64(&rejected, 1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, models.UserRecord{Username: "farmer"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&refreshCalls, 1)
		// Hold the refresh open until every request has failed once, so all
		// callers must join the same in-flight refresh.
		for atomic.LoadInt64(&rejected) < concurrent {
			time.Sleep(2 * time.Millisecond)
		}
		writeJSON(t, w, map[string]string{"access": "acc-new"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 10*time.Second, store, testLogger())

	var wg sync.WaitGroup
	errs := make([]error, concurrent)
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetProfile(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "caller %d", i)
	}
	require.EqualValues(t, 1, atomic.LoadInt64(&refreshCalls),
		"concurrent authorization failures must share one refresh call")
	require.Equal(t, "acc-new", store.Load(context.Background()).AccessToken)
}

func TestRefresh_SingleFlight_AllCallersFail(t *testing.T) {
	const concurrent = 8

	store := newStore(t)
	seedSession(t, store, "acc-stale", "ref-dead")

	var refreshCalls, rejected int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&rejected, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&refreshCalls, 1)
		for atomic.LoadInt64(&rejected) < concurrent {
			time.Sleep(2 * time.Millisecond)
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 10*time.Second, store, testLogger())

	var wg sync.WaitGroup
	errs := make([]error, concurrent)
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetProfile(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.ErrorIs(t, err, common.ErrUnauthorized, "caller %d", i)
	}
	require.EqualValues(t, 1, atomic.LoadInt64(&refreshCalls))
	require.True(t, store.Load(context.Background()).Empty(),
		"a rejected refresh must clear all credentials")
}

func TestDo_RetriesExactlyOnceAfterRefresh(t *testing.T) {
	store := newStore(t)
	seedSession(t, store, "acc-stale", "ref-1")

	var profileCalls, refreshCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&profileCalls, 1)
		// Reject even the retried request: the client must give up, not loop.
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&refreshCalls, 1)
		writeJSON(t, w, map[string]string{"access": "acc-new"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second, store, testLogger())
	_, err := c.GetProfile(context.Background())

	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.EqualValues(t, 2, atomic.LoadInt64(&profileCalls), "original request plus exactly one retry")
	require.EqualValues(t, 1, atomic.LoadInt64(&refreshCalls))
}

func TestDo_NoRefreshTokenFailsWithoutCallingRefresh(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save(context.Background(), models.Credentials{AccessToken: "acc-stale"}))

	var refreshCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&refreshCalls, 1)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second, store, testLogger())
	_, err := c.GetProfile(context.Background())

	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.EqualValues(t, 0, atomic.LoadInt64(&refreshCalls))
}

func TestDo_ExpiredTokenRefreshesProactively(t *testing.T) {
	store := newStore(t)
	seedSession(t, store, expiredJWT(t), "ref-1")

	var profileCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/profile/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&profileCalls, 1)
		if r.Header.Get("Authorization") != "Bearer acc-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, models.UserRecord{Username: "farmer"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]string{"access": "acc-new"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second, store, testLogger())
	_, err := c.GetProfile(context.Background())

	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt64(&profileCalls),
		"an expired token must be refreshed before the request, not after a 401")
}

func TestDo_NetworkErrorIsRecognizable(t *testing.T) {
	store := newStore(t)
	seedSession(t, store, "acc-1", "ref-1")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	c := NewHTTPClient(srv.URL, time.Second, store, testLogger())
	_, err := c.GetProfile(context.Background())

	require.Error(t, err)
	require.True(t, IsNetworkError(err))
	require.False(t, errors.Is(err, common.ErrUnauthorized))
	require.False(t, store.Load(context.Background()).Empty(),
		"a transport failure must never clear the session")
}

func TestDo_ValidationErrorCarriesFieldDetail(t *testing.T) {
	store := newStore(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"username": ["A user with that username already exists."]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second, store, testLogger())
	err := c.Register(context.Background(), RegisterRequest{Username: "taken", Password: "p", Password2: "p"})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, []string{"A user with that username already exists."}, ve.Fields["username"])
	require.Contains(t, ve.Error(), "username")
}

func TestDo_ServerErrorCarriesStatusAndBody(t *testing.T) {
	store := newStore(t)
	seedSession(t, store, "acc-1", "ref-1")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second, store, testLogger())
	_, err := c.GetProfile(context.Background())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusInternalServerError, se.Status)
	require.Equal(t, "boom", se.Body)
}

func TestLogin_SynthesizesUserWhenResponseOmitsIt(t *testing.T) {
	store := newStore(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]string{"access": "acc-1", "refresh": "ref-1"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second, store, testLogger())
	res, err := c.Login(context.Background(), "farmer", "secret")

	require.NoError(t, err)
	require.Equal(t, "acc-1", res.AccessToken)
	require.Equal(t, "ref-1", res.RefreshToken)
	require.NotNil(t, res.User)
	require.Equal(t, "farmer", res.User.Username)
}

func TestLogin_SurfacesServerSuppliedMessage(t *testing.T) {
	store := newStore(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "No active account found with the given credentials"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second, store, testLogger())
	_, err := c.Login(context.Background(), "farmer", "wrong")

	require.ErrorIs(t, err, common.ErrUnauthorized)
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, "No active account found with the given credentials", ae.Detail)
}

func TestAnalyze_SendsMultipartForm(t *testing.T) {
	store := newStore(t)
	seedSession(t, store, "acc-1", "ref-1")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "leaf spot", r.FormValue("symptoms"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "leaf.jpg", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "fake image bytes", string(data))

		writeJSON(t, w, map[string]any{"id": 1, "result": "healthy", "created_at": "2024-01-01T00:00:00Z"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second, store, testLogger())
	raw, err := c.Analyze(context.Background(), AnalyzeRequest{
		Image:    strings.NewReader("fake image bytes"),
		Filename: "leaf.jpg",
		Symptoms: "leaf spot",
	})

	require.NoError(t, err)
	m, ok := raw.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "healthy", m["result"])
}

func TestHistory_PassesPaginationParameters(t *testing.T) {
	store := newStore(t)
	seedSession(t, store, "acc-1", "ref-1")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "3", r.URL.Query().Get("page"))
		require.Equal(t, "25", r.URL.Query().Get("limit"))
		writeJSON(t, w, []map[string]any{{"id": 1, "result": "x", "created_at": "t"}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second, store, testLogger())
	raw, err := c.History(context.Background(), 3, 25)

	require.NoError(t, err)
	list, ok := raw.([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
}
