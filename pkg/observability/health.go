package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthChecker reports database reachability and PayWay availability.
// A failing database makes the service unhealthy; a failing PayWay check
// only degrades it, since no local action fixes an upstream outage.
type HealthChecker struct {
	db      Pinger
	gateway func() error
	now     func() time.Time
}

// NewHealthChecker creates a new HealthChecker; either argument may be nil
func NewHealthChecker(db Pinger, gateway func() error) *HealthChecker {
	return &HealthChecker{
		db:      db,
		gateway: gateway,
		now:     time.Now,
	}
}

// Check performs health checks and returns the status
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusHealthy,
		Timestamp: h.now().UTC(),
		Checks:    make(map[string]string),
	}

	if h.db == nil {
		status.Checks["database"] = "not configured"
	} else {
		dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := h.db.Ping(dbCtx); err != nil {
			status.Checks["database"] = StatusUnhealthy + ": " + err.Error()
			status.Status = StatusUnhealthy
		} else {
			status.Checks["database"] = StatusHealthy
		}
	}

	if h.gateway != nil {
		if err := h.gateway(); err != nil {
			status.Checks["payway"] = StatusDegraded + ": " + err.Error()
			if status.Status == StatusHealthy {
				status.Status = StatusDegraded
			}
		} else {
			status.Checks["payway"] = StatusHealthy
		}
	}

	return status
}

// ReadyHandler answers 503 only when the service is unhealthy
func (h *HealthChecker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	}
}
