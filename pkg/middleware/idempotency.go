package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/queue-buddy/pkg/logger"
	"github.com/prohmpiriya/queue-buddy/pkg/response"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client-chosen retry key
const IdempotencyKeyHeader = "Idempotency-Key"

type replayStatus string

const (
	replayProcessing replayStatus = "processing"
	replayCompleted  replayStatus = "completed"
)

// replayRecord is what gets stored per key
type replayRecord struct {
	Status       replayStatus `json:"status"`
	RequestHash  string       `json:"request_hash"`
	ResponseCode int          `json:"response_code,omitempty"`
	ResponseBody string       `json:"response_body,omitempty"`
}

// IdempotencyConfig configures request replay
type IdempotencyConfig struct {
	KeyPrefix     string        // default: "idempotency:"
	TTL           time.Duration // completed record lifetime (default: 5m)
	ProcessingTTL time.Duration // in-flight marker lifetime (default: 30s)
}

// Idempotency replays the stored response when a write is retried with the same
// Idempotency-Key. Requests without the header pass through untouched, and
// Redis failures fail open.
func Idempotency(rdb redis.Cmdable, cfg IdempotencyConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "idempotency:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.ProcessingTTL <= 0 {
		cfg.ProcessingTTL = 30 * time.Second
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		hash := requestHash(c, body)

		ctx := c.Request.Context()
		redisKey := cfg.KeyPrefix + c.Param("session_id") + ":" + key

		existing, err := loadReplay(c, rdb, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Warn("Idempotency lookup failed", zap.String("key", redisKey), zap.Error(err))
			c.Next()
			return
		}
		if existing != nil {
			replay(c, existing, hash)
			return
		}

		marker, _ := json.Marshal(replayRecord{Status: replayProcessing, RequestHash: hash})
		won, err := rdb.SetNX(ctx, redisKey, string(marker), cfg.ProcessingTTL).Result()
		if err != nil {
			log.Warn("Idempotency claim failed", zap.String("key", redisKey), zap.Error(err))
			c.Next()
			return
		}
		if !won {
			// Lost the race to a concurrent retry
			if existing, _ = loadReplay(c, rdb, redisKey); existing != nil {
				replay(c, existing, hash)
				return
			}
		}

		rw := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rw
		c.Next()

		// Server errors are not worth replaying; let the client retry for real
		if rw.Status() >= http.StatusInternalServerError {
			rdb.Del(ctx, redisKey)
			return
		}

		done, _ := json.Marshal(replayRecord{
			Status:       replayCompleted,
			RequestHash:  hash,
			ResponseCode: rw.Status(),
			ResponseBody: rw.body.String(),
		})
		if err := rdb.Set(ctx, redisKey, string(done), cfg.TTL).Err(); err != nil {
			log.Warn("Idempotency save failed", zap.String("key", redisKey), zap.Error(err))
		}
	}
}

func replay(c *gin.Context, rec *replayRecord, hash string) {
	switch {
	case rec.RequestHash != hash:
		response.Error(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED",
			"Idempotency key already used with a different request", "")
	case rec.Status == replayProcessing:
		response.Error(c, http.StatusConflict, "REQUEST_IN_PROGRESS",
			"A request with this idempotency key is still being processed", "")
	default:
		c.Header("Idempotent-Replayed", "true")
		c.Data(rec.ResponseCode, "application/json; charset=utf-8", []byte(rec.ResponseBody))
	}
	c.Abort()
}

func loadReplay(c *gin.Context, rdb redis.Cmdable, key string) (*replayRecord, error) {
	raw, err := rdb.Get(c.Request.Context(), key).Result()
	if err != nil {
		return nil, err
	}
	var rec replayRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func requestHash(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
