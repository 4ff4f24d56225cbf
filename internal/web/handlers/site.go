package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	g "maragu.dev/gomponents"

	"github.com/workdora/waitlist/internal/entity"
	"github.com/workdora/waitlist/internal/usecase"
	"github.com/workdora/waitlist/internal/web/components"
	"github.com/workdora/waitlist/internal/web/referral"
)

const (
	// maxFormBytes bounds the signup form body.
	maxFormBytes = 64 << 10
	// referralCountTimeout caps how long a page waits for the referral count.
	referralCountTimeout = 2 * time.Second
)

type Submitter interface {
	Execute(ctx context.Context, input usecase.SubmitWaitlistInput) (*usecase.SubmitWaitlistOutput, error)
	ReferralCount(ctx context.Context, code string) int
}

// Warmer wakes the backend before the visitor reaches the form.
type Warmer interface {
	Ping(ctx context.Context) error
}

type Site struct {
	submitter     Submitter
	warmer        Warmer
	warmupLimiter *rate.Limiter
	siteURL       string
	secureCookies bool
	countTimeout  time.Duration
	logger        *zap.Logger
}

func NewSite(submitter Submitter, warmer Warmer, warmupLimiter *rate.Limiter, siteURL string, secureCookies bool, logger *zap.Logger) *Site {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Site{
		submitter:     submitter,
		warmer:        warmer,
		warmupLimiter: warmupLimiter,
		siteURL:       siteURL,
		secureCookies: secureCookies,
		countTimeout:  referralCountTimeout,
		logger:        logger,
	}
}

// Landing renders the home page. A visitor who already joined sees their
// share link instead of the form.
func (s *Site) Landing(w http.ResponseWriter, r *http.Request) {
	s.warmUp()

	store := referral.NewCookieStore(w, r, s.secureCookies)
	if code, ok := store.Get(); ok {
		render(w, http.StatusOK, components.Landing(components.Confirmation(s.confirmation(r.Context(), code, "", false))))
		return
	}

	q := r.URL.Query()
	values := usecase.CleanAttribution(entity.SubmissionFields{
		UTMSource:   q.Get("utm_source"),
		UTMCampaign: q.Get("utm_campaign"),
		Referrer:    r.Referer(),
		ReferredBy:  q.Get("ref"),
	})
	render(w, http.StatusOK, components.Landing(components.WaitlistForm(components.FormState{Values: values})))
}

// Join handles the waitlist form post.
func (s *Site) Join(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		render(w, http.StatusBadRequest, components.Landing(components.WaitlistForm(components.FormState{
			Error: "We couldn't read your submission. Please try again.",
		})))
		return
	}

	values := formValues(r)
	out, err := s.submitter.Execute(r.Context(), usecase.SubmitWaitlistInput{
		Submission: entity.NewWaitlistSubmission(values),
		Referrals:  referral.NewCookieStore(w, r, s.secureCookies),
	})
	if err != nil {
		message := usecase.MsgGeneric
		if out != nil && out.Message != "" {
			message = out.Message
		}
		render(w, submitStatus(err), components.Landing(components.WaitlistForm(components.FormState{
			Values: values,
			Error:  message,
		})))
		return
	}

	state := s.confirmation(r.Context(), out.ReferralCode, out.Message, out.Qualification.IdealLoi)
	render(w, http.StatusOK, components.Landing(components.Confirmation(state)))
}

func (s *Site) About(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, components.AboutPage())
}

func (s *Site) Privacy(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, components.PrivacyPage())
}

func (s *Site) Terms(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, components.TermsPage())
}

func (s *Site) NotFound(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusNotFound, components.NotFoundPage())
}

func (s *Site) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Site) confirmation(ctx context.Context, code, message string, designPartner bool) components.ConfirmationState {
	state := components.ConfirmationState{
		Message:       message,
		ReferralCode:  code,
		DesignPartner: designPartner,
	}
	if code != "" {
		state.ShareLink = entity.ReferralLink(s.siteURL, code)

		countCtx, cancel := context.WithTimeout(ctx, s.countTimeout)
		state.Referrals = s.submitter.ReferralCount(countCtx, code)
		cancel()
	}
	return state
}

// warmUp pings the backend in the background. The request does not wait for
// it and its outcome is only logged.
func (s *Site) warmUp() {
	if s.warmer == nil {
		return
	}
	if s.warmupLimiter != nil && !s.warmupLimiter.Allow() {
		return
	}
	go func() {
		if err := s.warmer.Ping(context.Background()); err != nil {
			s.logger.Debug("backend warm-up failed", zap.Error(err))
		}
	}()
}

func formValues(r *http.Request) entity.SubmissionFields {
	return usecase.CleanAttribution(entity.SubmissionFields{
		Name:           r.PostForm.Get("name"),
		Email:          r.PostForm.Get("email"),
		Phone:          r.PostForm.Get("phone"),
		JobTitle:       r.PostForm.Get("jobTitle"),
		Organization:   r.PostForm.Get("organization"),
		ToolsUsed:      r.PostForm["toolsUsed"],
		DesiredChanges: r.PostForm.Get("desiredChanges"),
		UTMSource:      r.PostForm.Get("utmSource"),
		UTMCampaign:    r.PostForm.Get("utmCampaign"),
		Referrer:       r.PostForm.Get("referrer"),
		ReferredBy:     r.PostForm.Get("referredBy"),
	})
}

func submitStatus(err error) int {
	var de *usecase.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	switch de.Code {
	case usecase.CodeValidation:
		return http.StatusUnprocessableEntity
	case usecase.CodeInProgress:
		return http.StatusConflict
	case usecase.CodeSubmissionTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func render(w http.ResponseWriter, status int, page g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = page.Render(w)
}
