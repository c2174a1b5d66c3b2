package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Kike1196/beyco-sdadd-sub000/pkg/response"
)

const requestIDHeader = "X-Request-ID"

// incoming ids longer than this are replaced
const requestIDMaxLen = 64

// RequestID tags the request with an id. A caller-supplied X-Request-ID is
// kept only when it is short and made of id characters; anything else is
// replaced by a UUID. The id is echoed in the response header, written to the
// request log line and returned in 500 answers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(response.RequestIDKey, rid)
		c.Header(requestIDHeader, rid)

		c.Next()
	}
}

// GetRequestID id assigned by RequestID, "" outside it
func GetRequestID(c *gin.Context) string {
	return c.GetString(response.RequestIDKey)
}

func validRequestID(rid string) bool {
	if rid == "" || len(rid) > requestIDMaxLen {
		return false
	}
	for _, r := range rid {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}
