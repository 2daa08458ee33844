package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	adapterHTTP "github.com/comitanigiacomo/keystroke-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/keystroke-engine/internal/adapters/wordlist"
	"github.com/comitanigiacomo/keystroke-engine/internal/config"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/services"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/textgen"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/workers"
)

func setupTestServer(t *testing.T) (*gin.Engine, *stores) {
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Storage = config.StorageMemory
	cfg.Auth.Secret = "e2e-secret"

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	st, err := openStores(ctx, cfg)
	require.NoError(t, err)

	streakWorker := workers.NewStreakWorker(st.summaries, st.sessions)
	streakWorker.Start(ctx)

	tokens := services.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, st.users)
	summarySvc := services.NewSummaryService(st.summaries, st.sessions, streakWorker, nil)
	textSvc := services.NewTextService(st.summaries, wordlist.NewCorpus("", cfg.Practice.Lang), textgen.New(),
		services.TextDefaults{WordLimit: cfg.Practice.WordLimit, MinLen: cfg.Practice.MinLen, MaxLen: cfg.Practice.MaxLen})

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:    adapterHTTP.NewAuthHandler(services.NewAuthService(st.users, st.summaries, tokens)),
		SessionHandler: adapterHTTP.NewSessionHandler(summarySvc),
		SummaryHandler: adapterHTTP.NewSummaryHandler(summarySvc),
		TextHandler:    adapterHTTP.NewTextHandler(textSvc),
		TokenService:   tokens,
		StartTime:      time.Now(),
	})
	return router, st
}

func call(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEndToEnd_PracticeLifecycle(t *testing.T) {
	router, st := setupTestServer(t)

	var token, userID string
	today := time.Now().UTC()

	t.Run("1. Health reports disabled backends", func(t *testing.T) {
		w := call(router, http.MethodGet, "/health", "", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "disabled", gjson.Get(w.Body.String(), "database").String())
		assert.Equal(t, "disabled", gjson.Get(w.Body.String(), "redis").String())
	})

	t.Run("2. Register and login", func(t *testing.T) {
		creds := `{"email": "e2e@keystroke.dev", "password": "PracticeMakes1"}`

		w := call(router, http.MethodPost, "/api/v1/auth/register", "", creds)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		userID = gjson.Get(w.Body.String(), "id").String()

		w = call(router, http.MethodPost, "/api/v1/auth/login", "", creds)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		token = gjson.Get(w.Body.String(), "token").String()
		require.NotEmpty(t, token)
	})

	t.Run("3. Submit sessions on consecutive days", func(t *testing.T) {
		require.NotEmpty(t, token, "Login step failed")

		for i, day := range []time.Time{today.AddDate(0, 0, -1), today} {
			payload, _ := json.Marshal(map[string]any{
				"wpm":               50 + 10*i,
				"accuracy":          94,
				"practice_duration": 30000,
				"start_time":        day.Format(time.RFC3339),
				"unigraphs": map[string]any{
					"q": map[string]any{"count": 5, "accuracy": 40},
				},
				"digraphs": map[string]any{
					"qu": map[string]any{"count": 5, "accuracy": 60, "mean_interval": 250},
				},
			})

			w := call(router, http.MethodPost, "/api/v1/sessions", token, string(payload))
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		}
	})

	t.Run("4. Summary aggregates both sessions and the streak catches up", func(t *testing.T) {
		require.Eventually(t, func() bool {
			s, err := st.summaries.GetByUserID(context.Background(), userID)
			return err == nil && s.PracticeStreak == 2
		}, 2*time.Second, 20*time.Millisecond)

		w := call(router, http.MethodGet, "/api/v1/stats/summary", token, "")

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Equal(t, int64(2), gjson.Get(body, "total_sessions").Int())
		assert.Equal(t, 55.0, gjson.Get(body, "average_wpm").Float())
		assert.Equal(t, int64(2), gjson.Get(body, "longest_streak").Int())
		assert.Equal(t, int64(10), gjson.Get(body, `unigraphs.#(key=="q").count`).Int())
	})

	t.Run("5. Session history", func(t *testing.T) {
		w := call(router, http.MethodGet, "/api/v1/sessions", token, "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(2), gjson.Get(w.Body.String(), "count").Int())
	})

	t.Run("6. Generate text", func(t *testing.T) {
		w := call(router, http.MethodPost, "/api/v1/text/generate", token, `{"word_limit": 12}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, strings.Fields(gjson.Get(w.Body.String(), "text").String()), 12)
	})

	t.Run("7. Delete account", func(t *testing.T) {
		w := call(router, http.MethodDelete, "/api/v1/auth/account", token, "")
		require.Equal(t, http.StatusNoContent, w.Code)

		w = call(router, http.MethodGet, "/api/v1/stats/summary", token, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGenerateCommand(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"generate", "--words", "7", "--min-len", "3", "--max-len", "5"})

	require.NoError(t, cmd.Execute())

	words := strings.Fields(out.String())
	require.Len(t, words, 7)
	for _, w := range words {
		assert.GreaterOrEqual(t, len(w), 3)
		assert.LessOrEqual(t, len(w), 5)
	}
}
