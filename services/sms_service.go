package services

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"urban-auto-server/config"
)

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Send(phone, body string) error
}

// TwilioSender sends SMS through the Twilio REST API.
type TwilioSender struct {
	client      *twilio.RestClient
	from        string
	countryCode string
}

// NewSMSSender returns a Twilio-backed sender, or a logging fallback when
// Twilio credentials are not configured.
func NewSMSSender() SMSSender {
	cfg := config.AppConfig.Twilio
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		log.Println("⚠️ Twilio not configured, OTP codes will be logged instead")
		return &LogSender{countryCode: cfg.CountryCode}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{client: client, from: cfg.FromNumber, countryCode: cfg.CountryCode}
}

// Send delivers the message over Twilio
func (s *TwilioSender) Send(phone, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.countryCode + phone)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	return nil
}

// LogSender writes the message to the log. Used in development and as the
// fallback when the SMS provider is unconfigured.
type LogSender struct {
	countryCode string
}

// Send logs the message instead of delivering it
func (s *LogSender) Send(phone, body string) error {
	log.Printf("📱 [DEV] SMS for %s%s: %s", s.countryCode, phone, body)
	return nil
}
