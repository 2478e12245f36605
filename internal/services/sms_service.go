package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/tribuna/internal/metrics"
)

// CodeSender delivers one-time codes to a phone number. Delivery is
// best-effort; there is no confirmation feedback loop.
type CodeSender interface {
	Send(phone, code string) error
}

// SMSService sends one-time codes through the SMS provider HTTP API.
type SMSService struct {
	apiURL string
	apiKey string
	sender string
}

// NewSMSService creates a new SMSService.
func NewSMSService(apiURL, apiKey, sender string) *SMSService {
	return &SMSService{
		apiURL: apiURL,
		apiKey: apiKey,
		sender: sender,
	}
}

type smsMessage struct {
	Recipient string `json:"recipient"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
}

// Send posts the code to the provider.
func (s *SMSService) Send(phone, code string) error {
	if s.apiURL == "" {
		zap.L().Warn("sms api url not configured, code not sent",
			zap.String("phone", phone))
		return nil
	}

	msg := smsMessage{
		Recipient: phone,
		Sender:    s.sender,
		Text:      fmt.Sprintf("Your login code: %s", code),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		zap.L().Error("sms delivery failed", zap.String("phone", phone), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		zap.L().Error("sms provider returned unexpected status",
			zap.String("phone", phone), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}

	metrics.CodesSent.WithLabelValues("sms").Inc()
	return nil
}
