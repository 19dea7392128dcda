package signup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/voyagevault/auth-api/internal/domain"
	jwtinfra "github.com/voyagevault/auth-api/internal/infrastructure/jwt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockCodeStore struct{ mock.Mock }

func (m *mockCodeStore) Put(ctx context.Context, v *domain.VerificationCode) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockCodeStore) Get(ctx context.Context, email string) (*domain.VerificationCode, error) {
	args := m.Called(ctx, email)
	if v, _ := args.Get(0).(*domain.VerificationCode); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCodeStore) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendVerificationCode(to, code string) error {
	return m.Called(to, code).Error(0)
}

type mockTokenIssuer struct{ mock.Mock }

func (m *mockTokenIssuer) IssueTokenPair(userID string) (jwtinfra.TokenPair, error) {
	args := m.Called(userID)
	pair, _ := args.Get(0).(jwtinfra.TokenPair)
	return pair, args.Error(1)
}

func newService(us *mockUserStore, cs *mockCodeStore, ml *mockMailer, ti *mockTokenIssuer) Service {
	return NewService(us, cs, ml, ti, 10*time.Minute)
}

func liveCode(email, code string) *domain.VerificationCode {
	return &domain.VerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		CreatedAt: time.Now(),
	}
}

// --- IssueSignupCode ---

func TestIssueSignupCode_NewAccount_CreatesAndDispatches(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "a@b.com" && !u.Verified &&
			u.SignupMethod == domain.SignupMethodEmail && u.UserID != ""
	})).Return(nil)
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.VerificationCode")).Return(nil)
	ml.On("SendVerificationCode", "a@b.com", mock.Anything).Return(nil)

	svc := newService(us, cs, ml, nil)
	err := svc.IssueSignupCode(context.Background(), domain.SignupRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "a@b.com",
	})

	require.NoError(t, err)
	us.AssertExpectations(t)
	cs.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestIssueSignupCode_VerifiedAccount_ReturnsConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Verified: true}, nil)

	svc := newService(us, nil, nil, nil)
	err := svc.IssueSignupCode(context.Background(), domain.SignupRequest{Email: "a@b.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestIssueSignupCode_UnverifiedAccount_ReissuesWithoutPut(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Verified: false}, nil)
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.VerificationCode")).Return(nil)
	ml.On("SendVerificationCode", "a@b.com", mock.Anything).Return(nil)

	svc := newService(us, cs, ml, nil)
	err := svc.IssueSignupCode(context.Background(), domain.SignupRequest{Email: "a@b.com"})

	require.NoError(t, err)
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	cs.AssertExpectations(t)
}

func TestIssueSignupCode_DispatchFailure_ReturnsUpstreamAfterCommit(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.VerificationCode")).Return(nil)
	ml.On("SendVerificationCode", "a@b.com", mock.Anything).Return(errors.New("smtp down"))

	svc := newService(us, cs, ml, nil)
	err := svc.IssueSignupCode(context.Background(), domain.SignupRequest{Email: "a@b.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	cs.AssertExpectations(t) // the code row was committed before dispatch
}

// --- ResendCode ---

func TestResendCode_UnknownEmail_ReturnsNotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil)
	err := svc.ResendCode(context.Background(), "x@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestResendCode_VerifiedAccount_ReturnsConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Verified: true}, nil)

	svc := newService(us, nil, nil, nil)
	err := svc.ResendCode(context.Background(), "a@b.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestResendCode_OverwritesPriorCode(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)

	var stored *domain.VerificationCode
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.VerificationCode")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.VerificationCode) }).
		Return(nil)
	ml.On("SendVerificationCode", "a@b.com", mock.Anything).Return(nil)

	svc := newService(us, cs, ml, nil)
	require.NoError(t, svc.ResendCode(context.Background(), "a@b.com"))

	// The row is keyed by email, so this Put replaces any earlier code.
	require.NotNil(t, stored)
	assert.Equal(t, "a@b.com", stored.Email)
	assert.Len(t, stored.Code, 6)
}

// --- VerifyCode ---

func TestVerifyCode_HappyPath_MarksVerifiedAndMintsTokens(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}
	ti := &mockTokenIssuer{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Email: "a@b.com"}, nil)
	cs.On("Get", mock.Anything, "a@b.com").Return(liveCode("a@b.com", "123456"), nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"verified": true}).Return(nil)
	cs.On("Delete", mock.Anything, "a@b.com").Return(nil)
	ti.On("IssueTokenPair", "u1").Return(jwtinfra.TokenPair{AccessToken: "at", RefreshToken: "rt"}, nil)

	svc := newService(us, cs, nil, ti)
	res, err := svc.VerifyCode(context.Background(), "a@b.com", "123456")

	require.NoError(t, err)
	assert.True(t, res.User.Verified)
	assert.Equal(t, "at", res.Tokens.AccessToken)
	us.AssertExpectations(t)
	cs.AssertExpectations(t)
}

func TestVerifyCode_WrongCode_ReturnsUnauthorized(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)
	cs.On("Get", mock.Anything, "a@b.com").Return(liveCode("a@b.com", "123456"), nil)

	svc := newService(us, cs, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "a@b.com", "654321")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyCode_MissingCode_ReturnsUnauthorized(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)
	cs.On("Get", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, cs, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "a@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerifyCode_ExpiredCode_ReturnsUnauthorized(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}

	expired := &domain.VerificationCode{
		Email:     "a@b.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Second).Unix(),
	}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)
	cs.On("Get", mock.Anything, "a@b.com").Return(expired, nil)

	svc := newService(us, cs, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "a@b.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerifyCode_UnknownEmail_ReturnsNotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "x@x.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- InitiateSignIn / VerifySignInCode ---

func TestInitiateSignIn_UnverifiedAccount_ReturnsUnauthorized(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Verified: false}, nil)

	svc := newService(us, nil, nil, nil)
	err := svc.InitiateSignIn(context.Background(), "a@b.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestInitiateSignIn_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Verified: true}, nil)
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.VerificationCode")).Return(nil)
	ml.On("SendVerificationCode", "a@b.com", mock.Anything).Return(nil)

	svc := newService(us, cs, ml, nil)
	require.NoError(t, svc.InitiateSignIn(context.Background(), "a@b.com"))
	cs.AssertExpectations(t)
}

func TestVerifySignInCode_HappyPath_BurnsCodeWithoutMutation(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}
	ti := &mockTokenIssuer{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Email: "a@b.com", Verified: true}, nil)
	cs.On("Get", mock.Anything, "a@b.com").Return(liveCode("a@b.com", "123456"), nil)
	cs.On("Delete", mock.Anything, "a@b.com").Return(nil)
	ti.On("IssueTokenPair", "u1").Return(jwtinfra.TokenPair{AccessToken: "at", RefreshToken: "rt"}, nil)

	svc := newService(us, cs, nil, ti)
	res, err := svc.VerifySignInCode(context.Background(), "a@b.com", "123456")

	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.UserID)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	cs.AssertExpectations(t)
}

func TestVerifySignInCode_CodeIsSingleUse(t *testing.T) {
	us := &mockUserStore{}
	cs := &mockCodeStore{}
	ti := &mockTokenIssuer{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Verified: true}, nil)
	cs.On("Get", mock.Anything, "a@b.com").Return(liveCode("a@b.com", "123456"), nil).Once()
	cs.On("Delete", mock.Anything, "a@b.com").Return(nil)
	ti.On("IssueTokenPair", "u1").Return(jwtinfra.TokenPair{}, nil)

	svc := newService(us, cs, nil, ti)
	_, err := svc.VerifySignInCode(context.Background(), "a@b.com", "123456")
	require.NoError(t, err)

	// The row is gone after the first use.
	cs.On("Get", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	_, err = svc.VerifySignInCode(context.Background(), "a@b.com", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
