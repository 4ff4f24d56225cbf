package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/workdora/waitlist/internal/infra/http/middleware"
	"github.com/workdora/waitlist/internal/usecase"
)

const maxBodyBytes = 64 << 10

type JoinWaitlistExecutor interface {
	Execute(ctx context.Context, input usecase.JoinWaitlistInput) (*usecase.JoinWaitlistOutput, error)
}

type ReferralStatsExecutor interface {
	Execute(ctx context.Context, code string) (*usecase.ReferralStatsOutput, error)
}

type LeadHandler struct {
	join        JoinWaitlistExecutor
	referrals   ReferralStatsExecutor
	rateLimiter *RateLimiter
	logger      *zap.Logger
}

func NewLeadHandler(join JoinWaitlistExecutor, referrals ReferralStatsExecutor, limiter *RateLimiter, logger *zap.Logger) *LeadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandler{
		join:        join,
		referrals:   referrals,
		rateLimiter: limiter,
		logger:      logger,
	}
}

type joinData struct {
	ReferralCode string `json:"referralCode"`
	IdealLoi     bool   `json:"idealLoi"`
	Score        int    `json:"score"`
}

// JoinWaitlist handles POST /api/waitlist.
func (h *LeadHandler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		middleware.RecordSignup(middleware.SignupLimited, false)
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	var req usecase.JoinWaitlistInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		middleware.RecordSignup(middleware.SignupRejected, false)
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	out, err := h.join.Execute(r.Context(), req)
	if err != nil {
		var de *usecase.DomainError
		if errors.As(err, &de) {
			middleware.RecordSignup(middleware.SignupRejected, false)
			status := http.StatusBadRequest
			if de.Code == usecase.CodeValidation {
				status = http.StatusUnprocessableEntity
			}
			writeError(w, status, de.Message)
			return
		}
		middleware.RecordSignup(middleware.SignupError, false)
		h.logger.Error("join waitlist failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "We couldn't add you to the waitlist right now. Please try again.")
		return
	}

	status, result := http.StatusOK, middleware.SignupExisting
	if out.Created {
		status, result = http.StatusCreated, middleware.SignupCreated
	}
	middleware.RecordSignup(result, out.Qualification.IdealLoi)

	writeJSON(w, status, apiResponse{
		Success: true,
		Message: out.Message,
		Data: joinData{
			ReferralCode: out.ReferralCode,
			IdealLoi:     out.Qualification.IdealLoi,
			Score:        out.Qualification.Score,
		},
	})
}

// ReferralStats handles GET /api/referrals/{code}.
func (h *LeadHandler) ReferralStats(w http.ResponseWriter, r *http.Request) {
	out, err := h.referrals.Execute(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if usecase.IsDomainError(err) {
			writeError(w, http.StatusNotFound, "Referral code not found")
			return
		}
		h.logger.Error("referral stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not load referral stats")
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: out})
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimiter is a fixed window counter per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	count     int
	lastReset time.Time
}

// NewRateLimiter evicts idle visitors until ctx is done.
func NewRateLimiter(ctx context.Context, limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}

	go rl.cleanup(ctx)
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := rl.now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict()
		}
	}
}

func (rl *RateLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, ip)
		}
	}
}
