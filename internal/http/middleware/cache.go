package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"apprehension-service/internal/cache"
)

type bodyCapture struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Cached serves GET responses from Redis keyed by prefix plus the full
// request URI, and stores fresh 200 responses for the given TTL. Cache
// failures fall through to the handler.
func Cached(store *cache.Cache, prefix string, ttl time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := prefix + ":" + c.Request.URL.RequestURI()

		payload, err := store.Get(c.Request.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		} else if payload != nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			c.Abort()
			return
		}

		capture := &bodyCapture{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = capture
		c.Next()

		if c.Writer.Status() != http.StatusOK || capture.body.Len() == 0 {
			return
		}
		if err := store.Set(c.Request.Context(), key, capture.body.Bytes(), ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
}
