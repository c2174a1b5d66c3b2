package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck one dependency probed by /health
type HealthCheck struct {
	Name     string
	Ping     func(ctx context.Context) error
	Optional bool // a failing optional check degrades instead of failing
}

// HealthHandler liveness and dependency status
type HealthHandler struct {
	checks []HealthCheck
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Check GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	deps := make(gin.H, len(h.checks))
	for _, chk := range h.checks {
		if err := chk.Ping(ctx); err != nil {
			deps[chk.Name] = err.Error()
			if chk.Optional {
				if status == "ok" {
					status = "degraded"
				}
				continue
			}
			status = "down"
			code = http.StatusServiceUnavailable
			continue
		}
		deps[chk.Name] = "ok"
	}

	c.JSON(code, gin.H{"status": status, "dependencies": deps})
}
