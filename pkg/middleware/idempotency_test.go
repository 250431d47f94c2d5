package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/prohmpiriya/queue-buddy/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const joinBody = `{"service_id":"sal-1"}`

func setupIdempotencyRouter(t *testing.T, status int) (*gin.Engine, redismock.ClientMock, *int) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	calls := 0

	r := gin.New()
	r.POST("/sessions/:session_id/queue",
		Idempotency(db, IdempotencyConfig{}, logger.NewNop()),
		func(c *gin.Context) {
			calls++
			c.JSON(status, gin.H{"ticket": "sal-1-1"})
		},
	)
	return r, mock, &calls
}

func joinRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/sessions/s1/queue", strings.NewReader(joinBody))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	return req
}

func hashOf(method, path, body string) string {
	sum := sha256.Sum256([]byte(method + path + body))
	return hex.EncodeToString(sum[:])
}

func storedRecord(t *testing.T, rec replayRecord) string {
	t.Helper()
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	return string(raw)
}

func TestIdempotency_NoHeaderPassesThrough(t *testing.T) {
	r, mock, calls := setupIdempotencyRouter(t, http.StatusCreated)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, joinRequest(""))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, *calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_FirstRequestIsStored(t *testing.T) {
	r, mock, calls := setupIdempotencyRouter(t, http.StatusCreated)

	mock.ExpectGet("idempotency:s1:k1").RedisNil()
	mock.Regexp().ExpectSetNX("idempotency:s1:k1", `processing`, 30*time.Second).SetVal(true)
	mock.Regexp().ExpectSet("idempotency:s1:k1", `completed`, 5*time.Minute).SetVal("OK")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, joinRequest("k1"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, *calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	r, mock, calls := setupIdempotencyRouter(t, http.StatusCreated)

	mock.ExpectGet("idempotency:s1:k1").SetVal(storedRecord(t, replayRecord{
		Status:       replayCompleted,
		RequestHash:  hashOf(http.MethodPost, "/sessions/s1/queue", joinBody),
		ResponseCode: http.StatusCreated,
		ResponseBody: `{"ticket":"sal-1-0"}`,
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, joinRequest("k1"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `{"ticket":"sal-1-0"}`, w.Body.String())
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 0, *calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_InFlightConflict(t *testing.T) {
	r, mock, calls := setupIdempotencyRouter(t, http.StatusCreated)

	mock.ExpectGet("idempotency:s1:k1").SetVal(storedRecord(t, replayRecord{
		Status:      replayProcessing,
		RequestHash: hashOf(http.MethodPost, "/sessions/s1/queue", joinBody),
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, joinRequest("k1"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_IN_PROGRESS")
	assert.Equal(t, 0, *calls)
}

func TestIdempotency_KeyReusedWithDifferentBody(t *testing.T) {
	r, mock, calls := setupIdempotencyRouter(t, http.StatusCreated)

	mock.ExpectGet("idempotency:s1:k1").SetVal(storedRecord(t, replayRecord{
		Status:      replayCompleted,
		RequestHash: hashOf(http.MethodPost, "/sessions/s1/queue", `{"service_id":"dmv-1"}`),
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, joinRequest("k1"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "IDEMPOTENCY_KEY_REUSED")
	assert.Equal(t, 0, *calls)
}

func TestIdempotency_FailsOpenOnRedisError(t *testing.T) {
	r, mock, calls := setupIdempotencyRouter(t, http.StatusCreated)

	mock.ExpectGet("idempotency:s1:k1").SetErr(errors.New("connection refused"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, joinRequest("k1"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, *calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ServerErrorIsNotStored(t *testing.T) {
	r, mock, _ := setupIdempotencyRouter(t, http.StatusInternalServerError)

	mock.ExpectGet("idempotency:s1:k1").RedisNil()
	mock.Regexp().ExpectSetNX("idempotency:s1:k1", `processing`, 30*time.Second).SetVal(true)
	mock.ExpectDel("idempotency:s1:k1").SetVal(1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, joinRequest("k1"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
