package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

const textbeltURL = "https://textbelt.com/text"

// NotificationService sends SMS through Textbelt.
type NotificationService struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewNotificationService(apiKey string) *NotificationService {
	return &NotificationService{
		apiKey:   apiKey,
		endpoint: textbeltURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SendDoctorWelcomeSMS notifies a newly registered doctor without blocking the request.
func (s *NotificationService) SendDoctorWelcomeSMS(doctorName, phone string) {
	if s == nil || s.apiKey == "" {
		return
	}
	if phone == "" {
		log.Println("SMS not sent: doctor has no phone number.")
		return
	}

	msg := fmt.Sprintf("Welcome %s! Your doctor profile has been created on the admin panel.", doctorName)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.SendSMS(ctx, phone, msg); err != nil {
			log.Printf("Failed to send SMS via Textbelt to %s. Reason: %v", phone, err)
			return
		}
		log.Printf("Successfully sent SMS via Textbelt to %s", phone)
	}()
}

// SendSMS posts one message to Textbelt.
func (s *NotificationService) SendSMS(ctx context.Context, phone, message string) error {
	postBody, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(postBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode textbelt response: %w", err)
	}
	if !result.Success {
		if result.Error == "" {
			result.Error = "unknown error"
		}
		return errors.New(result.Error)
	}
	return nil
}
