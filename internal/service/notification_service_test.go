package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

type fakeNotificationRepo struct {
	notifications []models.Notification
	nextID        uint
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	f.nextID++
	notification.ID = f.nextID
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	var result []models.Notification
	for _, notification := range f.notifications {
		if notification.UserID == userID {
			result = append(result, notification)
		}
	}
	return result, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id uint, userID string) (models.Notification, error) {
	for i, notification := range f.notifications {
		if notification.ID == id && notification.UserID == userID {
			f.notifications[i].Read = true
			return f.notifications[i], nil
		}
	}
	return models.Notification{}, gorm.ErrRecordNotFound
}

func TestNotificationServicePersistsAndPublishes(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, client, "lexia", nil, testLogger())

	subscriber := client.Subscribe(context.Background(), "lexia:notifications")
	t.Cleanup(func() { _ = subscriber.Close() })
	_, err := subscriber.Receive(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.NotifyEvaluationCompleted(context.Background(), 7, 3))

	require.Len(t, repo.notifications, 1)
	require.Equal(t, "7", repo.notifications[0].UserID)
	require.Equal(t, models.NotificationTypeEvaluationCompleted, repo.notifications[0].Type)

	select {
	case message := <-subscriber.Channel():
		var event struct {
			Source       string              `json:"source"`
			Notification models.Notification `json:"notification"`
		}
		require.NoError(t, json.Unmarshal([]byte(message.Payload), &event))
		require.NotEmpty(t, event.Source)
		require.Equal(t, models.NotificationTypeEvaluationCompleted, event.Notification.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a published notification event")
	}
}

func TestNotificationServiceWorksWithoutTransports(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, nil, "", nil, testLogger())

	require.NoError(t, svc.NotifyFeedbackReady(context.Background(), 5, 9))
	require.Len(t, repo.notifications, 1)
	require.Equal(t, models.NotificationTypeFeedbackReady, repo.notifications[0].Type)
}

func TestNotificationServiceListAndMarkRead(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, nil, "", nil, testLogger())

	require.NoError(t, svc.NotifyEvaluationCompleted(context.Background(), 7, 1))
	require.NoError(t, svc.NotifyFeedbackReady(context.Background(), 7, 2))
	require.NoError(t, svc.NotifyEvaluationCompleted(context.Background(), 8, 3))

	mine, err := svc.List(context.Background(), "7", 20, 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	read, err := svc.MarkRead(context.Background(), mine[0].ID, "7")
	require.NoError(t, err)
	require.True(t, read.Read)

	_, err = svc.MarkRead(context.Background(), mine[0].ID, "8")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.List(context.Background(), "  ", 20, 0)
	require.Error(t, err)
}
