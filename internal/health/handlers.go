// Package health exposes liveness and readiness probes for the pricing API.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips the process readiness flag. The API clears it when a
// shutdown begins so load balancers stop routing new quotes to it.
func SetReady(v bool) {
	ready.Store(v)
}

// Pinger is a dependency that can be probed for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler exposes HTTP handlers for health endpoints. Redis is optional; a
// nil Redis pinger is reported as "disabled".
type Handler struct {
	Redis        Pinger
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on the shutdown flag and dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"app": "ok", "redis": "disabled"}
	ok := true
	if !ready.Load() {
		status["app"] = "shutting down"
		ok = false
	}
	if h.Redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.redisTimeout())
		defer cancel()
		if err := h.Redis.Ping(ctx); err != nil {
			status["redis"] = err.Error()
			ok = false
		} else {
			status["redis"] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if ok {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
