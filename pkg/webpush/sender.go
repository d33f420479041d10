// Package webpush wraps VAPID web-push delivery. Delivery outcomes are
// classified so callers can prune endpoints the push service reports as
// gone without inspecting transport details themselves.
package webpush

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	wp "github.com/SherClockHolmes/webpush-go"
)

// ErrSubscriptionGone marks an endpoint the push service will never
// accept again (404/410/401). The subscription row should be deleted.
var ErrSubscriptionGone = errors.New("push subscription gone")

type Config struct {
	Subject    string `yaml:"subject"`
	PublicKey  string `yaml:"publicKey"`
	PrivateKey string `yaml:"privateKey"`
	TTL        int    `yaml:"ttl"`
}

type Subscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

type Sender struct {
	cfg     Config
	timeout time.Duration
}

func NewSender(cfg Config) (*Sender, error) {
	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, errors.New("VAPID keys are not configured")
	}
	if cfg.Subject == "" {
		cfg.Subject = "mailto:admin@selapp.com"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 60 * 60 * 24
	}

	return &Sender{cfg: cfg, timeout: 10 * time.Second}, nil
}

// PublicKey returns the VAPID public key clients subscribe with.
func (s *Sender) PublicKey() string {
	return s.cfg.PublicKey
}

// Send pushes the payload to a single endpoint. A non-2xx response is
// an error; gone endpoints are reported as ErrSubscriptionGone.
func (s *Sender) Send(ctx context.Context, sub Subscription, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := wp.SendNotificationWithContext(ctx, payload, &wp.Subscription{
		Endpoint: sub.Endpoint,
		Keys: wp.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &wp.Options{
		Subscriber:      s.cfg.Subject,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             s.cfg.TTL,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusGone,
		resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("endpoint rejected with status %d: %w", resp.StatusCode, ErrSubscriptionGone)
	default:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}
}
