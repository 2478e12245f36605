package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/tribuna/internal/apperr"
	"github.com/example/tribuna/internal/config"
	"github.com/example/tribuna/internal/metrics"
	"github.com/example/tribuna/internal/models"
	"github.com/example/tribuna/internal/utils"
)

// ActivationService owns the one-time code lifecycle: creation with a reuse
// window, validity checks, resend with a bounded counter, and completion
// that resolves or creates the user.
type ActivationService struct {
	db     *gorm.DB
	cfg    *config.Config
	sender CodeSender
}

// NewActivationService constructs an ActivationService.
func NewActivationService(db *gorm.DB, cfg *config.Config, sender CodeSender) *ActivationService {
	return &ActivationService{db: db, cfg: cfg, sender: sender}
}

// Find loads an activation by ID.
func (s *ActivationService) Find(id string) (*models.Activation, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.ValidationFailed("invalid id")
	}

	var activation models.Activation
	if err := s.db.First(&activation, "id = ?", parsed).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("activation not found")
		}
		return nil, err
	}
	return &activation, nil
}

// FindOrCreate returns the still-active activation for (phone, user, type)
// created within the reuse window, or mints a new one and dispatches its
// code. A reused activation triggers no delivery.
func (s *ActivationService) FindOrCreate(phone string, user *models.User, activationType string) (*models.Activation, error) {
	if existing, err := s.findReusable(phone, user, activationType); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	// An abandoned activation keeps its row active past the reuse window.
	// Retire those before creating so the unique index only trips on a
	// genuinely concurrent request.
	if err := s.retireStale(phone, activationType); err != nil {
		return nil, err
	}

	activation := &models.Activation{
		Phone:          phone,
		ActivationType: activationType,
		EndTime:        time.Now().Add(s.cfg.ActivationTTL),
		IsActive:       true,
	}
	if user != nil {
		activation.UserID = &user.ID
	}

	if err := s.db.Create(activation).Error; err != nil {
		// A concurrent request may have won the active-activation index.
		if isUniqueViolation(err) {
			if existing, lookupErr := s.findReusable(phone, user, activationType); lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	metrics.ActivationsCreated.Inc()
	if err := s.dispatchCode(activation, false); err != nil {
		return nil, err
	}

	zap.L().Info("activation created",
		zap.String("activation_id", activation.ID.String()),
		zap.String("phone", phone))
	return activation, nil
}

// Validate runs the ordered validity checks and returns the first failure:
// expiry, then code correctness (when a code is submitted), then the active
// flag, then the resend budget (when enforced).
func (s *ActivationService) Validate(activation *models.Activation, submittedCode string, checkIteration bool) error {
	if activation.Expired(time.Now()) {
		return apperr.CodeExpired()
	}
	if submittedCode != "" && activation.Code != submittedCode {
		return apperr.CodeIncorrect()
	}
	if !activation.IsActive {
		return apperr.CodeInactive()
	}
	if checkIteration && activation.Iteration >= s.cfg.MaxResendAttempts {
		return apperr.RetryLimitExceeded()
	}
	return nil
}

// Check is the non-failing form of Validate.
func (s *ActivationService) Check(activation *models.Activation, submittedCode string, checkIteration bool) (bool, string) {
	if err := s.Validate(activation, submittedCode, checkIteration); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// Complete resolves the activation to a user, creating one if no account
// exists for the phone, and deactivates the activation. Returns the user
// and whether it was newly created.
func (s *ActivationService) Complete(activation *models.Activation) (*models.User, bool, error) {
	var user models.User
	created := false

	err := s.db.First(&user, "username = ?", activation.Phone).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created = true
		user = models.User{
			Username:     activation.Phone,
			Status:       models.StatusFan,
			IsActive:     true,
			IsRegistered: false,
			KeyVersion:   1,
		}
	case err != nil:
		return nil, false, err
	}

	user.Phone = activation.Phone
	if err := s.db.Save(&user).Error; err != nil {
		return nil, false, err
	}

	activation.UserID = &user.ID
	activation.IsActive = false
	if err := s.db.Save(activation).Error; err != nil {
		return nil, false, err
	}

	newUserLabel := "false"
	if created {
		newUserLabel = "true"
	}
	metrics.ActivationsCompleted.WithLabelValues(newUserLabel).Inc()

	zap.L().Info("activation completed",
		zap.String("activation_id", activation.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.Bool("new_user", created))
	return &user, created, nil
}

// Resend increments the attempt counter and dispatches a fresh code. Callers
// must run Validate with retry enforcement first; Resend itself does not
// check the budget.
func (s *ActivationService) Resend(activation *models.Activation) error {
	return s.dispatchCode(activation, true)
}

// retireStale deactivates active activations for (phone, type) that fell out
// of the reuse window.
func (s *ActivationService) retireStale(phone, activationType string) error {
	return s.db.Model(&models.Activation{}).
		Where("phone = ? AND activation_type = ? AND is_active = ? AND created_at <= ?",
			phone, activationType, true, time.Now().Add(-s.cfg.ActivationReuse)).
		Update("is_active", false).Error
}

func (s *ActivationService) findReusable(phone string, user *models.User, activationType string) (*models.Activation, error) {
	query := s.db.Where(
		"phone = ? AND activation_type = ? AND is_active = ? AND created_at > ?",
		phone, activationType, true, time.Now().Add(-s.cfg.ActivationReuse),
	)
	if user != nil {
		query = query.Where("user_id = ?", user.ID)
	} else {
		query = query.Where("user_id IS NULL")
	}

	var activation models.Activation
	if err := query.First(&activation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &activation, nil
}

// dispatchCode assigns the activation its code and delivers it. Test-phone
// and delivery-disabled runs get a fixed well-known code without touching
// the gateway.
func (s *ActivationService) dispatchCode(activation *models.Activation, iterate bool) error {
	if iterate {
		activation.Iteration++
	}

	if !s.cfg.SMSEnabled || s.cfg.IsTestPhone(activation.Phone) {
		activation.Code = s.cfg.TestCode
		if err := s.db.Save(activation).Error; err != nil {
			return err
		}
		metrics.CodesSent.WithLabelValues("test").Inc()
		return nil
	}

	code, err := utils.GenerateSMSCode()
	if err != nil {
		return err
	}
	activation.Code = code
	if err := s.db.Save(activation).Error; err != nil {
		return err
	}

	if err := s.sender.Send(activation.Phone, code); err != nil {
		zap.L().Error("code delivery failed",
			zap.String("activation_id", activation.ID.String()), zap.Error(err))
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
