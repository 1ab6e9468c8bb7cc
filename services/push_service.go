package services

import (
	"context"
	"encoding/json"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"urban-auto-server/models"
)

// PushService sends push notifications via Firebase Cloud Messaging and
// persists an in-app Notification row per recipient. Tokens FCM reports as
// unregistered are deactivated.
type PushService struct {
	client *messaging.Client
	db     *gorm.DB
}

// NewPushService creates a push service. A missing service account leaves the
// FCM client nil: notifications are stored but not pushed.
func NewPushService(db *gorm.DB, serviceAccountPath string) *PushService {
	svc := &PushService{db: db}
	if serviceAccountPath == "" {
		log.Println("⚠️ Firebase not configured, push notifications disabled")
		return svc
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Printf("❌ Failed to init Firebase app: %v", err)
		return svc
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("❌ Failed to get Messaging client: %v", err)
		return svc
	}
	svc.client = client
	return svc
}

// SendToUser pushes to all of a user's active device tokens and stores one
// Notification row. Push failures are logged, never surfaced to the caller.
func (s *PushService) SendToUser(ctx context.Context, userID uint, title, body, notifType string, data map[string]string) {
	s.storeNotification(userID, title, body, notifType, data)

	var tokens []models.DeviceToken
	if err := s.db.Where("user_id = ? AND active = ?", userID, true).Find(&tokens).Error; err != nil {
		log.Printf("❌ Error fetching device tokens for user %d: %v", userID, err)
		return
	}

	sent := 0
	for _, t := range tokens {
		if s.send(ctx, t.Token, title, body, data) {
			sent++
		}
	}
	log.Printf("📊 Push summary: %d/%d sent to user %d", sent, len(tokens), userID)
}

// Broadcast pushes to every active device token across all users. Returns the
// number of devices targeted.
func (s *PushService) Broadcast(ctx context.Context, title, body string) int {
	var tokens []models.DeviceToken
	if err := s.db.Where("active = ?", true).Find(&tokens).Error; err != nil {
		log.Printf("❌ Error fetching device tokens for broadcast: %v", err)
		return 0
	}

	for _, t := range tokens {
		s.send(ctx, t.Token, title, body, map[string]string{"type": "promotion"})
	}
	log.Printf("📡 Broadcast push sent to %d devices", len(tokens))
	return len(tokens)
}

// send dispatches one FCM message. Unregistered tokens are deactivated.
func (s *PushService) send(ctx context.Context, token, title, body string, data map[string]string) bool {
	if s.client == nil || token == "" {
		return false
	}

	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: token,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := s.client.Send(ctx, msg); err != nil {
		if messaging.IsUnregistered(err) {
			s.pruneToken(token)
		} else {
			log.Printf("❌ FCM send error: %v", err)
		}
		return false
	}
	return true
}

// pruneToken deactivates a token FCM no longer recognizes
func (s *PushService) pruneToken(token string) {
	if err := s.db.Model(&models.DeviceToken{}).
		Where("token = ?", token).
		Update("active", false).Error; err != nil {
		log.Printf("❌ Failed to prune device token: %v", err)
		return
	}
	log.Printf("🧹 Pruned unregistered device token")
}

// storeNotification persists the in-app notification row
func (s *PushService) storeNotification(userID uint, title, body, notifType string, data map[string]string) {
	payload := ""
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = string(b)
		}
	}

	n := models.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Type:   notifType,
		Data:   payload,
	}
	if err := s.db.Create(&n).Error; err != nil {
		log.Printf("❌ Failed to store notification for user %d: %v", userID, err)
	}
}
