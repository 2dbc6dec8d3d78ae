package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"twotier-board/internal/bootstrap"
	"twotier-board/internal/config"
	"twotier-board/internal/model"
	"twotier-board/internal/testutil"
	httptransport "twotier-board/internal/transport/http"
)

func newRouter(t *testing.T, seed ...string) (*gin.Engine, *gorm.DB) {
	t.Helper()

	cfg := config.Default()
	cfg.App.Name = "Test Board"
	cfg.App.Env = "testing"
	cfg.App.GinMode = gin.TestMode

	db := testutil.NewDB(t, seed...)
	app, err := bootstrap.NewWithDB(context.Background(), cfg, db)
	require.NoError(t, err)

	router, err := httptransport.NewRouter(app)
	require.NoError(t, err)
	return router, db
}

func closeDB(t *testing.T, db *gorm.DB) {
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func postForm(router http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func countMessages(t *testing.T, db *gorm.DB) int64 {
	var count int64
	require.NoError(t, db.Model(&model.Message{}).Count(&count).Error)
	return count
}

func TestIndexRendersAppAndEnvironment(t *testing.T) {
	router, _ := newRouter(t)

	rec := get(router, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Test Board</title>")
	assert.Contains(t, body, "testing")
	assert.Contains(t, body, "No messages yet.")
}

func TestPostRedirectsAndListsNewestFirst(t *testing.T) {
	router, _ := newRouter(t)

	rec := postForm(router, url.Values{"message": {"hello board"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	body := get(router, "/").Body.String()
	assert.Contains(t, body, "hello board")
	assert.NotContains(t, body, "No messages yet.")
}

func TestMessagesRenderInReverseInsertionOrder(t *testing.T) {
	router, _ := newRouter(t)

	for _, msg := range []string{"message-A", "message-B", "message-C"} {
		require.Equal(t, http.StatusSeeOther, postForm(router, url.Values{"message": {msg}}).Code)
	}

	body := get(router, "/").Body.String()
	a := strings.Index(body, "message-A")
	b := strings.Index(body, "message-B")
	c := strings.Index(body, "message-C")
	require.True(t, a >= 0 && b >= 0 && c >= 0)
	assert.Less(t, c, b)
	assert.Less(t, b, a)
}

func TestBlankPostDoesNotInsert(t *testing.T) {
	router, db := newRouter(t, "existing")

	for _, form := range []url.Values{
		{"message": {""}},
		{"message": {"   "}},
		{},
		{"other": {"field"}},
	} {
		rec := postForm(router, form)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	}

	assert.Equal(t, int64(1), countMessages(t, db))
}

func TestMessageContentIsEscaped(t *testing.T) {
	router, db := newRouter(t)
	payload := `<script>alert("x")</script>`

	require.Equal(t, http.StatusSeeOther, postForm(router, url.Values{"message": {payload}}).Code)

	var stored model.Message
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, payload, stored.Content)

	body := get(router, "/").Body.String()
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestHealthIsUpWithoutDatabase(t *testing.T) {
	router, db := newRouter(t)
	closeDB(t, db)

	rec := get(router, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"UP"}`, rec.Body.String())
}

func TestStorageFailureReturnsServerError(t *testing.T) {
	router, db := newRouter(t)
	closeDB(t, db)

	rec := get(router, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable")

	rec = postForm(router, url.Values{"message": {"lost"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReadinessReflectsDatabase(t *testing.T) {
	router, db := newRouter(t)

	rec := get(router, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status       string `json:"status"`
		App          string `json:"app"`
		Dependencies map[string]struct {
			OK bool `json:"ok"`
		} `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "UP", body.Status)
	assert.Equal(t, "Test Board", body.App)
	assert.True(t, body.Dependencies["mysql"].OK)
	assert.NotContains(t, body.Dependencies, "redis")

	closeDB(t, db)
	rec = get(router, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
