package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/workdora/waitlist/internal/entity"
	"github.com/workdora/waitlist/internal/infra/integration/waitlistapi"
)

type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s SubmissionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	MsgJoined          = "You're on the waitlist! Expect updates soon."
	MsgTimeout         = "Our server is taking longer than usual to respond. It may be waking up, so please try again in a minute."
	MsgUnreachable     = "We couldn't reach our server. Please check your internet connection and try again."
	MsgGeneric         = "Something went wrong while joining the waitlist. Please try again."
	MsgAlreadyInFlight = "Your signup is already being processed. Please wait a moment."
)

// DefaultGuardTTL covers four 30s attempts and the delays between them.
const DefaultGuardTTL = 3 * time.Minute

// SubmitWaitlistUseCase delivers one form submission to the waitlist
// backend and records the visitor's referral code on success.
type SubmitWaitlistUseCase struct {
	API      WaitlistAPI
	Guard    SubmissionGuard
	GuardTTL time.Duration
	Logger   *zap.Logger
}

func NewSubmitWaitlistUseCase(api WaitlistAPI, guard SubmissionGuard, logger *zap.Logger) *SubmitWaitlistUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmitWaitlistUseCase{
		API:      api,
		Guard:    guard,
		GuardTTL: DefaultGuardTTL,
		Logger:   logger,
	}
}

// Execute moves a submission from Idle through Submitting to Success or
// Failed. Failed is not terminal: the caller may submit again. The output is
// never nil; on failure err is a *DomainError whose Message is shown to the
// visitor.
func (uc *SubmitWaitlistUseCase) Execute(ctx context.Context, input SubmitWaitlistInput) (*SubmitWaitlistOutput, error) {
	s := entity.NewWaitlistSubmission(CleanAttribution(input.Submission.Fields()))
	out := &SubmitWaitlistOutput{
		State:         StateIdle,
		Qualification: s.Qualification(),
	}

	if errs := ValidateSubmission(s.Fields()); len(errs) > 0 {
		return uc.fail(out, &DomainError{Code: CodeValidation, Message: joinValidationErrors(errs)})
	}

	if uc.Guard != nil {
		release, err := uc.Guard.Acquire(ctx, strings.ToLower(s.Email()), uc.GuardTTL)
		if err != nil {
			if errors.Is(err, ErrSubmissionInProgress) {
				return uc.fail(out, &DomainError{Code: CodeInProgress, Message: MsgAlreadyInFlight, Err: err})
			}
			// a broken guard must not block signups
			uc.Logger.Warn("submission guard unavailable", zap.Error(err))
		} else {
			defer release()
		}
	}

	out.State = StateSubmitting
	result, err := uc.API.Join(ctx, s)
	if err != nil {
		return uc.fail(out, submissionError(err))
	}
	out.Attempts = result.Attempts

	code, err := uc.persistReferral(input.Referrals, result.ReferralCode, s.Email())
	if err != nil {
		uc.Logger.Error("could not persist referral code", zap.Error(err))
	}
	out.ReferralCode = code
	out.State = StateSuccess
	out.Message = result.Message
	if out.Message == "" {
		out.Message = MsgJoined
	}

	uc.Logger.Info("waitlist submission succeeded",
		zap.Bool("ideal_loi", out.Qualification.IdealLoi),
		zap.Int("score", out.Qualification.Score),
		zap.Int("attempts", out.Attempts),
	)
	return out, nil
}

func (uc *SubmitWaitlistUseCase) fail(out *SubmitWaitlistOutput, err *DomainError) (*SubmitWaitlistOutput, error) {
	out.State = StateFailed
	out.Message = err.Message
	uc.Logger.Warn("waitlist submission failed", zap.String("code", err.Code), zap.Error(err.Err))
	return out, err
}

// persistReferral writes the referral slot once. An existing value wins.
func (uc *SubmitWaitlistUseCase) persistReferral(store ReferralStore, serverCode, email string) (string, error) {
	if store != nil {
		if existing, ok := store.Get(); ok && existing != "" {
			return existing, nil
		}
	}

	code := serverCode
	if code == "" {
		code = entity.NewReferralCode(email)
	}
	if store == nil {
		return code, nil
	}
	return code, store.Save(code)
}

// ReferralCount is best effort; zero is returned when the backend cannot answer.
func (uc *SubmitWaitlistUseCase) ReferralCount(ctx context.Context, code string) int {
	n, err := uc.API.ReferralCount(ctx, code)
	if err != nil {
		uc.Logger.Debug("referral count unavailable", zap.String("referral_code", code), zap.Error(err))
		return 0
	}
	return n
}

// submissionError maps the client's error taxonomy onto one visitor-facing message.
func submissionError(err error) *DomainError {
	var serverErr *waitlistapi.ServerError
	switch {
	case errors.Is(err, waitlistapi.ErrTimeout):
		return &DomainError{Code: CodeSubmissionTimeout, Message: MsgTimeout, Err: err}
	case errors.Is(err, waitlistapi.ErrUnreachable):
		return &DomainError{Code: CodeNetworkUnreachable, Message: MsgUnreachable, Err: err}
	case errors.As(err, &serverErr) && serverErr.Message != "":
		return &DomainError{Code: CodeSubmissionRejected, Message: serverErr.Message, Err: err}
	default:
		return &DomainError{Code: CodeSubmissionFailed, Message: MsgGeneric, Err: err}
	}
}
