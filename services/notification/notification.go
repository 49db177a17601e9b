package notification

import (
	"context"
	"fmt"

	customerRepo "fixify/database/repository/customer"
	professionalRepo "fixify/database/repository/professional"
	"fixify/utils"

	"firebase.google.com/go/v4/messaging"
)

// NotificationService sends FCM pushes to booking parties.
type NotificationService interface {
	NotifyCustomer(ctx context.Context, customerID, title, body string, data map[string]string) error
	NotifyProfessional(ctx context.Context, professionalID, title, body string, data map[string]string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	customers     customerRepo.Repository
	professionals professionalRepo.Repository
}

func NewDefaultNotificationService(
	customers customerRepo.Repository,
	professionals professionalRepo.Repository,
) (*DefaultNotificationService, error) {
	if customers == nil || professionals == nil {
		return nil, fmt.Errorf("notification service initialization error: customer or professional repo is nil")
	}
	return &DefaultNotificationService{
		customers:     customers,
		professionals: professionals,
	}, nil
}

// NotifyCustomer looks up a customer's FCM token and sends a push.
func (s *DefaultNotificationService) NotifyCustomer(
	ctx context.Context,
	customerID, title, body string,
	data map[string]string,
) error {
	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("NotifyCustomer: could not find customer %s: %w", customerID, err)
	}
	if c.FCMToken == "" {
		return fmt.Errorf("NotifyCustomer: customer %s has no FCM token", customerID)
	}
	if _, ok := data["role"]; !ok {
		data["role"] = "customer"
	}
	return send(ctx, c.FCMToken, title, body, data)
}

// NotifyProfessional looks up a professional's FCM token and sends a push.
func (s *DefaultNotificationService) NotifyProfessional(
	ctx context.Context,
	professionalID, title, body string,
	data map[string]string,
) error {
	p, err := s.professionals.GetByID(ctx, professionalID)
	if err != nil {
		return fmt.Errorf("NotifyProfessional: could not find professional %s: %w", professionalID, err)
	}
	if p.FCMToken == "" {
		return fmt.Errorf("NotifyProfessional: professional %s has no FCM token", professionalID)
	}
	if _, ok := data["role"]; !ok {
		data["role"] = "professional"
	}
	return send(ctx, p.FCMToken, title, body, data)
}

func send(ctx context.Context, token, title, body string, data map[string]string) error {
	if utils.FCMClient == nil {
		return fmt.Errorf("notification: FCM client not initialized")
	}
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("notification: failed to send FCM message: %w", err)
	}
	return nil
}
