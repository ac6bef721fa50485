package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"resty.dev/v3"

	"spokd/internal/config"
)

// SMS sends confirmation codes through the external gateway. When the
// gateway is not configured the code is written to the log instead, which is
// the development mode.
type SMS struct {
	Logger *slog.Logger
	Config *config.Config

	client *resty.Client
}

func (s *SMS) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "identity.SMS")

	if s.Config.SMSGatewayURL == "" {
		return nil
	}

	s.client = resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         2 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	}).
		SetBaseURL(s.Config.SMSGatewayURL).
		SetAuthToken(s.Config.SMSGatewayKey)

	return nil
}

func (s *SMS) Shutdown(context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *SMS) SendCode(ctx context.Context, phone, code string) error {
	if s.client == nil {
		s.Logger.Info("confirmation code issued", "phone", phone, "code", code)
		return nil
	}

	resp, err := s.client.R().
		WithContext(ctx).
		SetBody(map[string]string{
			"to":   phone,
			"text": "Your confirmation code: " + code,
		}).
		Post("/messages")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("sms gateway responded %s", resp.Status())
	}
	return nil
}
