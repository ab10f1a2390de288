package service_test

import (
	"context"
	"testing"
	"time"

	"diplomsklad/internal/apierror"
	"diplomsklad/internal/dto"
	"diplomsklad/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string { return &s }

func newUserService(f *fixture, guard *service.SecretGuard) service.UserService {
	return service.NewUserService(f.users, guard, service.NewAdminTokenIssuer("signing-key", 30*time.Minute))
}

func TestRegister_WorkerThenDuplicate(t *testing.T) {
	f := newFixture()
	svc := newUserService(f, service.NewSecretGuard("", ""))
	ctx := context.Background()

	first, err := svc.Register(ctx, dto.RegisterRequest{ExternalID: 555, Username: strPtr("ivan"), Role: "worker"})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, "worker", first.Role)
	assert.True(t, first.IsActive)
	assert.NotEmpty(t, first.CreatedAt)

	_, err = svc.Register(ctx, dto.RegisterRequest{ExternalID: 555, Username: strPtr("other"), Role: "worker"})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))

	stored, err := f.users.FindByExternalID(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, "ivan", *stored.Username, "first registration unaffected")
}

func TestRegister_DefaultsToWorker(t *testing.T) {
	f := newFixture()
	resp, err := newUserService(f, nil).Register(context.Background(), dto.RegisterRequest{ExternalID: 1})
	require.NoError(t, err)
	assert.Equal(t, "worker", resp.Role)
}

func TestRegister_AdminRequiresSecret(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name   string
		guard  *service.SecretGuard
		secret *string
		ok     bool
	}{
		{"no server secret", service.NewSecretGuard("", ""), strPtr("anything"), false},
		{"no client secret", service.NewSecretGuard("s3cret", ""), nil, false},
		{"empty client secret", service.NewSecretGuard("s3cret", ""), strPtr(""), false},
		{"mismatch", service.NewSecretGuard("s3cret", ""), strPtr("guess"), false},
		{"match", service.NewSecretGuard("s3cret", ""), strPtr("s3cret"), true},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			resp, err := newUserService(f, tc.guard).Register(ctx, dto.RegisterRequest{
				ExternalID: int64(100 + i), Role: "admin", AdminSecret: tc.secret,
			})
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, "admin", resp.Role)
				return
			}
			assert.True(t, apierror.Is(err, apierror.KindForbidden))
			assert.Empty(t, f.store.users)
		})
	}
}

func TestSecretGuard_HashTakesPrecedence(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	g := service.NewSecretGuard("plain-secret", string(hash))

	assert.True(t, g.Verify("hashed-secret"))
	assert.False(t, g.Verify("plain-secret"))
	assert.False(t, g.Verify(""))
}

func TestGetByExternalID(t *testing.T) {
	f := newFixture()
	f.seedUser(31, true)
	svc := newUserService(f, nil)

	u, err := svc.GetByExternalID(context.Background(), 31)
	require.NoError(t, err)
	assert.Equal(t, int64(31), u.ExternalID)
	assert.Nil(t, u.LastLogin)

	_, err = svc.GetByExternalID(context.Background(), 32)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
}

func TestCheckAdminSecret_IssuesToken(t *testing.T) {
	f := newFixture()
	svc := newUserService(f, service.NewSecretGuard("s3cret", ""))

	resp, err := svc.CheckAdminSecret(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1800, resp.ExpiresIn)

	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("signing-key"), nil
	})
	require.NoError(t, err)
	assert.True(t, tok.Valid)
	assert.Equal(t, service.AdminRole, claims["role"])
}

func TestCheckAdminSecret_Mismatch(t *testing.T) {
	f := newFixture()
	_, err := newUserService(f, service.NewSecretGuard("s3cret", "")).CheckAdminSecret(context.Background(), "nope")
	assert.True(t, apierror.Is(err, apierror.KindForbidden))
}

func TestCheckAdminSecret_NoSigningKey(t *testing.T) {
	f := newFixture()
	svc := service.NewUserService(f.users, service.NewSecretGuard("s3cret", ""), service.NewAdminTokenIssuer("", time.Minute))

	resp, err := svc.CheckAdminSecret(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Token)
}
