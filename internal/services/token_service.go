package services

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/example/tribuna/internal/apperr"
	"github.com/example/tribuna/internal/config"
	"github.com/example/tribuna/internal/metrics"
	"github.com/example/tribuna/internal/models"
	"github.com/example/tribuna/internal/utils"
)

// TokenService issues, authenticates and refreshes bearer tokens. Every
// token carries the user's key version; bumping the version on the user row
// revokes everything issued before.
type TokenService struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewTokenService constructs a TokenService.
func NewTokenService(db *gorm.DB, cfg *config.Config) *TokenService {
	return &TokenService{db: db, cfg: cfg}
}

// Issue creates a fresh token for the user, stamping the original issuance
// time used by the refresh ceiling.
func (s *TokenService) Issue(user *models.User) (string, error) {
	return utils.GenerateToken(s.cfg.JWTSecret, user.ID, user.KeyVersion, time.Now(), s.cfg.TokenExpires)
}

// Authenticate decodes the token, loads its user and rejects tokens signed
// for a stale key version.
func (s *TokenService) Authenticate(tokenString string) (*models.User, error) {
	claims, err := utils.ParseToken(s.cfg.JWTSecret, tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userForClaims(claims.UserID)
	if err != nil {
		return nil, err
	}

	if claims.KeyVersion != user.KeyVersion {
		return nil, apperr.TokenInvalid("token has been revoked")
	}
	return user, nil
}

// ObtainByPassword implements the staff password grant.
func (s *TokenService) ObtainByPassword(username, password string) (string, *models.User, error) {
	var user models.User
	if err := s.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.Unauthorized("invalid credentials")
		}
		return "", nil, err
	}

	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, apperr.Unauthorized("invalid credentials")
	}
	if !user.IsActive {
		return "", nil, apperr.Unauthorized("account is disabled")
	}

	token, err := s.Issue(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// Refresh validates an unexpired-or-refreshable token, enforces the absolute
// refresh window from the original issuance time, rotates the user's key
// version and issues a replacement token carrying the original orig_iat.
func (s *TokenService) Refresh(tokenString string) (string, error) {
	claims, err := utils.ParseTokenForRefresh(s.cfg.JWTSecret, tokenString)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("invalid").Inc()
		return "", err
	}

	user, err := s.userForClaims(claims.UserID)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("invalid").Inc()
		return "", err
	}

	if claims.KeyVersion != user.KeyVersion {
		metrics.TokenRefreshes.WithLabelValues("revoked").Inc()
		return "", apperr.TokenInvalid("token has been revoked")
	}

	if claims.OrigIat == 0 {
		metrics.TokenRefreshes.WithLabelValues("invalid").Inc()
		return "", apperr.TokenInvalid("token is not refreshable")
	}

	origIat := time.Unix(claims.OrigIat, 0)
	if time.Now().After(origIat.Add(s.cfg.RefreshWindow)) {
		metrics.TokenRefreshes.WithLabelValues("window_expired").Inc()
		return "", apperr.RefreshWindowExpired()
	}

	if err := s.Rotate(user); err != nil {
		return "", err
	}

	token, err := utils.GenerateToken(s.cfg.JWTSecret, user.ID, user.KeyVersion, origIat, s.cfg.TokenExpires)
	if err != nil {
		return "", err
	}

	metrics.TokenRefreshes.WithLabelValues("ok").Inc()
	zap.L().Info("token refreshed", zap.String("user_id", user.ID.String()),
		zap.Int("key_version", user.KeyVersion))
	return token, nil
}

// Rotate bumps the user's key version, invalidating all outstanding tokens.
func (s *TokenService) Rotate(user *models.User) error {
	user.KeyVersion++
	return s.db.Model(user).Update("key_version", user.KeyVersion).Error
}

func (s *TokenService) userForClaims(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.TokenInvalid("token user no longer exists")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("account is disabled")
	}
	return &user, nil
}
