package usecase

import (
	"context"
	"errors"

	"github.com/workdora/waitlist/internal/entity"
)

type ReferralStatsUseCase struct {
	Repo entity.LeadRepositoryInterface
}

func NewReferralStatsUseCase(repo entity.LeadRepositoryInterface) *ReferralStatsUseCase {
	return &ReferralStatsUseCase{Repo: repo}
}

func (uc *ReferralStatsUseCase) Execute(ctx context.Context, code string) (*ReferralStatsOutput, error) {
	if !referralCodePattern.MatchString(code) {
		return nil, &DomainError{Code: CodeReferralNotFound, Message: "referral code not found"}
	}

	if _, err := uc.Repo.FindByReferralCode(ctx, code); err != nil {
		if errors.Is(err, entity.ErrReferralNotFound) {
			return nil, &DomainError{Code: CodeReferralNotFound, Message: "referral code not found", Err: err}
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: "could not load referral", Err: err}
	}

	n, err := uc.Repo.CountReferrals(ctx, code)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "could not count referrals", Err: err}
	}
	return &ReferralStatsOutput{ReferralCode: code, Referrals: n}, nil
}
