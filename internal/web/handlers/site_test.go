package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/workdora/waitlist/internal/entity"
	"github.com/workdora/waitlist/internal/infra/integration/waitlistapi"
	"github.com/workdora/waitlist/internal/retry"
	"github.com/workdora/waitlist/internal/usecase"
	"github.com/workdora/waitlist/internal/web/referral"
)

type fakeSubmitter struct {
	mu        sync.Mutex
	inputs    []usecase.SubmitWaitlistInput
	out       *usecase.SubmitWaitlistOutput
	err       error
	referrals int
	// hangCount makes ReferralCount wait for its context.
	hangCount bool
}

func (f *fakeSubmitter) Execute(ctx context.Context, input usecase.SubmitWaitlistInput) (*usecase.SubmitWaitlistOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if f.err == nil && f.out != nil && input.Referrals != nil {
		_ = input.Referrals.Save(f.out.ReferralCode)
	}
	return f.out, f.err
}

func (f *fakeSubmitter) ReferralCount(ctx context.Context, code string) int {
	if f.hangCount {
		<-ctx.Done()
		return 0
	}
	return f.referrals
}

type countingWarmer struct {
	pings chan struct{}
}

func (c *countingWarmer) Ping(ctx context.Context) error {
	c.pings <- struct{}{}
	return nil
}

func newSite(sub Submitter, warmer Warmer) *Site {
	return NewSite(sub, warmer, rate.NewLimiter(rate.Every(time.Hour), 1), "https://workdora.com", true, nil)
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/waitlist", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validForm() url.Values {
	return url.Values{
		"name":         {"Ana Souza"},
		"email":        {"ana@example.com"},
		"organization": {"Acme"},
		"toolsUsed":    {"Slack", "Asana", "Harvest"},
		"referredBy":   {"bob_abc123"},
		"utmSource":    {"newsletter"},
	}
}

func TestLandingRendersFormWithAttribution(t *testing.T) {
	site := newSite(&fakeSubmitter{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/?ref=bob_abc123&utm_source=twitter&utm_campaign=launch", nil)
	req.Header.Set("Referer", "https://news.example.com/post")
	rec := httptest.NewRecorder()
	site.Landing(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `id="waitlist-form"`)
	assert.Contains(t, body, `value="bob_abc123"`)
	assert.Contains(t, body, `value="twitter"`)
	assert.Contains(t, body, `value="launch"`)
	assert.Contains(t, body, `value="https://news.example.com/post"`)
}

func TestLandingShowsShareLinkForReturningVisitor(t *testing.T) {
	site := newSite(&fakeSubmitter{referrals: 3}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: referral.CookieName, Value: "ana_abc123"})
	rec := httptest.NewRecorder()
	site.Landing(rec, req)

	body := rec.Body.String()
	assert.NotContains(t, body, `id="waitlist-form"`)
	assert.Contains(t, body, "https://workdora.com/?ref=ana_abc123")
	assert.Contains(t, body, "3 people joined through your link.")
}

func TestLandingWarmUpIsRateLimited(t *testing.T) {
	warmer := &countingWarmer{pings: make(chan struct{}, 4)}
	site := newSite(&fakeSubmitter{}, warmer)

	for range 3 {
		site.Landing(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	select {
	case <-warmer.pings:
	case <-time.After(time.Second):
		t.Fatal("expected a warm-up ping")
	}
	select {
	case <-warmer.pings:
		t.Fatal("warm-up should be limited to one ping per interval")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestJoinSuccessSetsCookieAndRendersConfirmation(t *testing.T) {
	sub := &fakeSubmitter{
		out: &usecase.SubmitWaitlistOutput{
			State:         usecase.StateSuccess,
			ReferralCode:  "ana_x1y2z3",
			Message:       usecase.MsgJoined,
			Qualification: entity.Qualification{IdealLoi: true, Score: 80},
		},
	}
	site := newSite(sub, nil)

	rec := httptest.NewRecorder()
	site.Join(rec, postForm(validForm()))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="waitlist-confirmation"`)
	assert.Contains(t, body, "https://workdora.com/?ref=ana_x1y2z3")
	assert.Contains(t, body, "design partner")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, referral.CookieName, cookies[0].Name)
	assert.Equal(t, "ana_x1y2z3", cookies[0].Value)

	require.Len(t, sub.inputs, 1)
	fields := sub.inputs[0].Submission.Fields()
	assert.Equal(t, "ana@example.com", fields.Email)
	assert.Equal(t, []string{"Asana", "Slack", "Harvest"}, fields.ToolsUsed)
	assert.Equal(t, "bob_abc123", fields.ReferredBy)
	assert.Equal(t, "newsletter", fields.UTMSource)
}

func TestJoinFailureKeepsValuesAndShowsMessage(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		status int
	}{
		{"validation", usecase.CodeValidation, http.StatusUnprocessableEntity},
		{"in progress", usecase.CodeInProgress, http.StatusConflict},
		{"timeout", usecase.CodeSubmissionTimeout, http.StatusGatewayTimeout},
		{"unreachable", usecase.CodeNetworkUnreachable, http.StatusBadGateway},
		{"rejected", usecase.CodeSubmissionRejected, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domainErr := &usecase.DomainError{Code: tt.code, Message: "Something specific happened."}
			sub := &fakeSubmitter{
				out: &usecase.SubmitWaitlistOutput{State: usecase.StateFailed, Message: domainErr.Message},
				err: domainErr,
			}
			site := newSite(sub, nil)

			rec := httptest.NewRecorder()
			site.Join(rec, postForm(validForm()))

			assert.Equal(t, tt.status, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, "Something specific happened.")
			assert.Contains(t, body, `value="ana@example.com"`)
			assert.Contains(t, body, `id="waitlist-form"`)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestStaticPages(t *testing.T) {
	site := newSite(&fakeSubmitter{}, nil)

	pages := map[string]http.HandlerFunc{
		"About Workdora":   site.About,
		"Privacy Policy":   site.Privacy,
		"Terms of Service": site.Terms,
	}
	for heading, handler := range pages {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), heading)
	}

	rec := httptest.NewRecorder()
	site.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLandingDropsMalformedReferral(t *testing.T) {
	site := newSite(&fakeSubmitter{}, nil)

	rec := httptest.NewRecorder()
	site.Landing(rec, httptest.NewRequest(http.MethodGet, "/?ref=bogus", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `name="referredBy"`)
}

func TestLandingReferralCountDoesNotWaitForSlowBackend(t *testing.T) {
	site := newSite(&fakeSubmitter{hangCount: true}, nil)
	site.countTimeout = 50 * time.Millisecond

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: referral.CookieName, Value: "ana_abc123"})
	rec := httptest.NewRecorder()

	start := time.Now()
	site.Landing(rec, req)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://workdora.com/?ref=ana_abc123")
	assert.NotContains(t, rec.Body.String(), "joined through your link")
}

func TestJoinWithMalformedAttributionReachesBackend(t *testing.T) {
	var (
		mu   sync.Mutex
		sent map[string]any
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			_, _ = w.Write([]byte(`{"success":true,"data":{"referralCode":"ana_srv123","referrals":0}}`))
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		sent = body
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"You're in!","data":{"referralCode":"ana_srv123"}}`))
	}))
	defer backend.Close()

	client := waitlistapi.NewClient(backend.URL, retry.Policy{MaxAttempts: 1, AttemptTimeout: time.Second}, nil)
	site := newSite(usecase.NewSubmitWaitlistUseCase(client, nil, nil), nil)

	form := validForm()
	form.Set("referredBy", "bogus")
	form.Set("referrer", "https://example.com/?q="+strings.Repeat("x", 3000))
	form.Set("utmCampaign", strings.Repeat("c", 250))

	rec := httptest.NewRecorder()
	site.Join(rec, postForm(form))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `id="waitlist-confirmation"`)

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, sent)
	assert.NotContains(t, sent, "referredBy")
	assert.Len(t, sent["referrer"], 2048)
	assert.Len(t, sent["utmCampaign"], 200)
}
