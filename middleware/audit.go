package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ecohub-backend/log"
)

// paths whose request bodies are logged with the password removed
var redactedPaths = []string{"/user/login", "/user/register", "/user/users"}

const maxLoggedBody = 4096

// AuditLogger logs one line per request.
func AuditLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		var reqBody []byte
		if log.DebugEnabled() && c.Request.Body != nil &&
			strings.HasPrefix(c.ContentType(), "application/json") {
			reqBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBody))
			rest := c.Request.Body
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(reqBody), rest))
		}

		c.Next()

		kvs := []interface{}{
			"method", c.Request.Method,
			"uri", c.Request.URL.RequestURI(),
			"status", c.Writer.Status(),
			"took", time.Since(start),
			"remote-ip", c.ClientIP(),
		}
		if id, ok := GetUserID(c); ok {
			kvs = append(kvs, "user_id", id)
		}
		if len(reqBody) > 0 {
			kvs = append(kvs, "req", string(redact(path, reqBody)))
		}
		if len(c.Errors) > 0 {
			kvs = append(kvs, "err", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			log.ErrorLog("Audit", kvs...)
		case len(reqBody) > 0:
			log.DebugLog("Audit", kvs...)
		default:
			log.InfoLog("Audit", kvs...)
		}
	}
}

func redact(path string, body []byte) []byte {
	sensitive := false
	for _, p := range redactedPaths {
		if strings.HasPrefix(path, p) {
			sensitive = true
			break
		}
	}
	if !sensitive {
		return body
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return []byte("<unparseable>")
	}
	for _, key := range []string{"password", "credential"} {
		if _, ok := fields[key]; ok {
			fields[key] = "<redacted>"
		}
	}
	out, _ := json.Marshal(fields)
	return out
}
