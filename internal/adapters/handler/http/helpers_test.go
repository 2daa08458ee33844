package http

import (
	"bytes"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/comitanigiacomo/keystroke-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/keystroke-engine/internal/adapters/wordlist"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/services"
	"github.com/comitanigiacomo/keystroke-engine/internal/core/textgen"
)

const testPassword = "CorrectHorse42"

type testApp struct {
	router    *gin.Engine
	users     *repository.InMemoryUserRepository
	summaries *repository.InMemorySummaryRepository
}

// newTestApp wires the full router on in-memory storage, optionally replacing the summary store.
func newTestApp(t *testing.T, summaryOverride domain.SummaryRepository) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := repository.NewInMemoryUserRepository()
	store := repository.NewInMemorySummaryRepository()

	var summaries domain.SummaryRepository = store
	if summaryOverride != nil {
		summaries = summaryOverride
	}

	tokens := services.NewTokenService("handler-test-secret", "handler-test", time.Hour, users)
	authSvc := services.NewAuthService(users, summaries, tokens)
	summarySvc := services.NewSummaryService(summaries, store, nil, nil)
	textSvc := services.NewTextService(summaries, wordlist.NewCorpus("", "en"),
		textgen.NewWithSource(rand.NewSource(7)),
		services.TextDefaults{WordLimit: 30, MinLen: 1, MaxLen: 20})

	router := NewRouter(RouterDependencies{
		AuthHandler:    NewAuthHandler(authSvc),
		SessionHandler: NewSessionHandler(summarySvc),
		SummaryHandler: NewSummaryHandler(summarySvc),
		TextHandler:    NewTextHandler(textSvc),
		TokenService:   tokens,
		StartTime:      time.Now(),
	})

	return &testApp{router: router, users: users, summaries: store}
}

func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// signUp registers and logs in a user, returning the access token.
func (a *testApp) signUp(t *testing.T, email string) string {
	t.Helper()

	w := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token := gjson.Get(w.Body.String(), "token").String()
	require.NotEmpty(t, token)
	return token
}

func sessionPayload(wpm, accuracy float64, start time.Time) map[string]any {
	return map[string]any{
		"wpm":               wpm,
		"accuracy":          accuracy,
		"practice_duration": 60000,
		"total_keystrokes":  320,
		"total_char_count":  300,
		"error_char_count":  12,
		"start_time":        start.Format(time.RFC3339),
		"unigraphs": map[string]any{
			"t": map[string]any{"count": 10, "accuracy": 90, "mistyped": map[string]int{"r": 1}},
			"a": map[string]any{"count": 8, "accuracy": 100},
		},
		"digraphs": map[string]any{
			"th": map[string]any{"count": 4, "accuracy": 75, "mean_interval": 140},
		},
	}
}
