package usecase

import "errors"

// DomainError is a failure the visitor can act on. Message is safe to show.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is an infrastructure failure (database, queue).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeSubmissionTimeout  = "SUBMISSION_TIMEOUT"
	CodeNetworkUnreachable = "NETWORK_UNREACHABLE"
	CodeSubmissionRejected = "SUBMISSION_REJECTED"
	CodeSubmissionFailed   = "SUBMISSION_FAILED"
	CodeInProgress         = "SUBMISSION_IN_PROGRESS"
	CodeReferralNotFound   = "REFERRAL_NOT_FOUND"
	CodeDatabase           = "DATABASE_ERROR"
	CodeQueue              = "QUEUE_ERROR"
)

var ErrSubmissionInProgress = errors.New("a submission for this email is already in progress")
