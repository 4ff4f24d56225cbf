package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/workdora/waitlist/internal/entity"
	"github.com/workdora/waitlist/internal/infra/integration/kommo"
	"github.com/workdora/waitlist/internal/infra/integration/waitlistapi"
	"github.com/workdora/waitlist/internal/infra/queue"
)

type MockWaitlistAPI struct {
	mock.Mock
}

func (m *MockWaitlistAPI) Join(ctx context.Context, s entity.WaitlistSubmission) (*waitlistapi.JoinResult, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waitlistapi.JoinResult), args.Error(1)
}

func (m *MockWaitlistAPI) ReferralCount(ctx context.Context, code string) (int, error) {
	args := m.Called(ctx, code)
	return args.Int(0), args.Error(1)
}

// memoryReferralStore records every Save so tests can assert write-once.
type memoryReferralStore struct {
	code  string
	saves int
}

func (s *memoryReferralStore) Get() (string, bool) {
	return s.code, s.code != ""
}

func (s *memoryReferralStore) Save(code string) error {
	s.saves++
	s.code = code
	return nil
}

type lockGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func (g *lockGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held == nil {
		g.held = map[string]bool{}
	}
	if g.held[key] {
		return nil, ErrSubmissionInProgress
	}
	g.held[key] = true
	return func() {
		g.mu.Lock()
		delete(g.held, key)
		g.mu.Unlock()
	}, nil
}

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Upsert(ctx context.Context, lead *entity.Lead) (bool, error) {
	args := m.Called(ctx, lead)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLeadRepository) FindByReferralCode(ctx context.Context, code string) (*entity.Lead, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) CountReferrals(ctx context.Context, code string) (int, error) {
	args := m.Called(ctx, code)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) FindDueForReminder(ctx context.Context, stage int, sentBefore time.Time, limit int) ([]*entity.Lead, error) {
	args := m.Called(ctx, stage, sentBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) MarkEmailSent(ctx context.Context, id string, stage int, at time.Time) error {
	return m.Called(ctx, id, stage, at).Error(0)
}

type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishLeadJoined(ctx context.Context, payload queue.LeadJoinedPayload) error {
	return m.Called(ctx, payload).Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendWelcome(to, name, referralLink string) error {
	return m.Called(to, name, referralLink).Error(0)
}

func (m *MockEmailService) SendDesignPartnerInvite(to, name, organization string) error {
	return m.Called(to, name, organization).Error(0)
}

func (m *MockEmailService) SendReferralReminder(to, name, referralLink string, referrals int) error {
	return m.Called(to, name, referralLink, referrals).Error(0)
}

type MockWhatsAppService struct {
	mock.Mock
}

func (m *MockWhatsAppService) SendWelcome(ctx context.Context, phone, name, referralLink string) error {
	return m.Called(ctx, phone, name, referralLink).Error(0)
}

type MockCRMService struct {
	mock.Mock
}

func (m *MockCRMService) CreateLead(ctx context.Context, input kommo.CreateLeadInput) (int, error) {
	args := m.Called(ctx, input)
	return args.Int(0), args.Error(1)
}
