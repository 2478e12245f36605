package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/tribuna/internal/apperr"
	"github.com/example/tribuna/internal/models"
	"github.com/example/tribuna/internal/services"
	"github.com/example/tribuna/internal/utils"
)

func TestIssueAndAuthenticate(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	svc := services.NewTokenService(db, cfg)

	user := &models.User{Username: testPhone, IsActive: true, KeyVersion: 1}
	require.NoError(t, db.Create(user).Error)

	token, err := svc.Issue(user)
	require.NoError(t, err)

	authed, err := svc.Authenticate(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, authed.ID)
}

func TestAuthenticateRejectsStaleKeyVersion(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	svc := services.NewTokenService(db, cfg)

	user := &models.User{Username: testPhone, IsActive: true, KeyVersion: 1}
	require.NoError(t, db.Create(user).Error)

	token, err := svc.Issue(user)
	require.NoError(t, err)

	require.NoError(t, svc.Rotate(user))

	_, err = svc.Authenticate(token)
	require.ErrorIs(t, err, apperr.TokenInvalid(""))
}

func TestRefreshRotatesAndInvalidatesOldToken(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	svc := services.NewTokenService(db, cfg)

	user := &models.User{Username: testPhone, IsActive: true, KeyVersion: 1}
	require.NoError(t, db.Create(user).Error)

	oldToken, err := svc.Issue(user)
	require.NoError(t, err)

	newToken, err := svc.Refresh(oldToken)
	require.NoError(t, err)
	require.NotEqual(t, oldToken, newToken)

	_, err = svc.Authenticate(oldToken)
	require.ErrorIs(t, err, apperr.TokenInvalid(""), "refresh revokes the old token")

	authed, err := svc.Authenticate(newToken)
	require.NoError(t, err)
	require.Equal(t, 2, authed.KeyVersion)
}

func TestRefreshAcceptsExpiredAccessToken(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	svc := services.NewTokenService(db, cfg)

	user := &models.User{Username: testPhone, IsActive: true, KeyVersion: 1}
	require.NoError(t, db.Create(user).Error)

	expired, err := utils.GenerateToken(cfg.JWTSecret, user.ID, user.KeyVersion, time.Now(), -time.Hour)
	require.NoError(t, err)

	_, err = svc.Authenticate(expired)
	require.ErrorIs(t, err, apperr.TokenExpired())

	refreshed, err := svc.Refresh(expired)
	require.NoError(t, err)

	_, err = svc.Authenticate(refreshed)
	require.NoError(t, err)
}

func TestRefreshWindowExpired(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	svc := services.NewTokenService(db, cfg)

	user := &models.User{Username: testPhone, IsActive: true, KeyVersion: 1}
	require.NoError(t, db.Create(user).Error)

	origIat := time.Now().Add(-cfg.RefreshWindow - time.Hour)
	token, err := utils.GenerateToken(cfg.JWTSecret, user.ID, user.KeyVersion, origIat, cfg.TokenExpires)
	require.NoError(t, err)

	_, err = svc.Refresh(token)
	require.ErrorIs(t, err, apperr.RefreshWindowExpired())
}

func TestRefreshKeepsOriginalIssuanceTime(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	svc := services.NewTokenService(db, cfg)

	user := &models.User{Username: testPhone, IsActive: true, KeyVersion: 1}
	require.NoError(t, db.Create(user).Error)

	origIat := time.Now().Add(-time.Hour).Truncate(time.Second)
	token, err := utils.GenerateToken(cfg.JWTSecret, user.ID, user.KeyVersion, origIat, cfg.TokenExpires)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(token)
	require.NoError(t, err)

	claims, err := utils.ParseToken(cfg.JWTSecret, refreshed)
	require.NoError(t, err)
	require.Equal(t, origIat.Unix(), claims.OrigIat, "the refresh ceiling is absolute")
}

func TestRefreshRejectsTamperedToken(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	svc := services.NewTokenService(db, cfg)

	user := &models.User{Username: testPhone, IsActive: true, KeyVersion: 1}
	require.NoError(t, db.Create(user).Error)

	token, err := utils.GenerateToken("other-secret", user.ID, user.KeyVersion, time.Now(), time.Hour)
	require.NoError(t, err)

	_, err = svc.Refresh(token)
	require.ErrorIs(t, err, apperr.TokenInvalid(""))
}

func TestObtainByPassword(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	svc := services.NewTokenService(db, cfg)

	hash, err := bcrypt.GenerateFromPassword([]byte("31July2018"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{
		Username:     "admin",
		IsActive:     true,
		IsStaff:      true,
		KeyVersion:   1,
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(user).Error)

	token, authed, err := svc.ObtainByPassword("admin", "31July2018")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, authed.ID)

	_, _, err = svc.ObtainByPassword("admin", "wrong")
	require.ErrorIs(t, err, apperr.Unauthorized(""))

	_, _, err = svc.ObtainByPassword("nobody", "31July2018")
	require.ErrorIs(t, err, apperr.Unauthorized(""))
}
