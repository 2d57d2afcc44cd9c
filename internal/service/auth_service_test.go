package service

import (
	"context"
	"testing"
	"time"

	"confidential-ledger/internal/core/domain"
	"confidential-ledger/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc        *AuthServiceImpl
	holderRepo *mocks.MockHolderRepository
	hashSvc    *mocks.MockHashService
	tokenSvc   *mocks.MockTokenService
	ctrl       *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		holderRepo: mocks.NewMockHolderRepository(ctrl),
		hashSvc:    mocks.NewMockHashService(ctrl),
		tokenSvc:   mocks.NewMockTokenService(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewAuthService(d.holderRepo, d.hashSvc, d.tokenSvc)
	return d
}

func TestAuthService_Register_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.holderRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("s3cret").Return("$argon2id$hash", nil)
	d.holderRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	holder, err := d.svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, holder)
	assert.Equal(t, "alice", holder.Username)
	assert.Equal(t, "$argon2id$hash", holder.PasswordHash)
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.holderRepo.EXPECT().GetByUsername(ctx, "alice").Return(&domain.Holder{Username: "alice"}, nil)

	holder, err := d.svc.Register(ctx, "alice", "s3cret")
	assert.Nil(t, holder)
	assertAppError(t, err, "AUTH_002")
}

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	holderID := uuid.New()
	expiry := time.Now().Add(time.Hour)

	d.holderRepo.EXPECT().GetByUsername(ctx, "alice").Return(&domain.Holder{
		ID:           holderID,
		Username:     "alice",
		PasswordHash: "$argon2id$hash",
	}, nil)
	d.hashSvc.EXPECT().Verify("s3cret", "$argon2id$hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(holderID).Return("jwt-token", expiry, nil)

	token, exp, err := d.svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, expiry, exp)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.holderRepo.EXPECT().GetByUsername(ctx, "alice").Return(&domain.Holder{
		ID:           uuid.New(),
		PasswordHash: "$argon2id$hash",
	}, nil)
	d.hashSvc.EXPECT().Verify("wrong", "$argon2id$hash").Return(false, nil)

	token, _, err := d.svc.Login(ctx, "alice", "wrong")
	assert.Empty(t, token)
	assertAppError(t, err, "AUTH_001")
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.holderRepo.EXPECT().GetByUsername(ctx, "ghost").Return(nil, nil)

	token, _, err := d.svc.Login(ctx, "ghost", "pw")
	assert.Empty(t, token)
	assertAppError(t, err, "AUTH_001")
}
