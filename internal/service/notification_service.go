package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lexia-go-api/internal/models"
	"github.com/noah-isme/lexia-go-api/internal/observability"
	"github.com/noah-isme/lexia-go-api/internal/repository"
)

// Notifier dispatches student-facing notifications. Calls are fire-and-
// forget from the pipeline's perspective: returned errors are logged by the
// caller, never propagated to the evaluation outcome.
type Notifier interface {
	NotifyEvaluationCompleted(ctx context.Context, studentID uint, evaluationID uint) error
	NotifyFeedbackReady(ctx context.Context, studentID uint, feedbackID uint) error
}

// NotificationService persists notifications and fans them out to other
// nodes over redis and NATS.
type NotificationService interface {
	Notifier
	List(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uint, userID string) (models.Notification, error)
}

type notificationEvent struct {
	Source       string              `json:"source"`
	Notification models.Notification `json:"notification"`
	SentAt       time.Time           `json:"sent_at"`
}

// NewNotificationService constructs a notification service. The redis client
// and NATS connection are both optional; absent transports are skipped.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) NotificationService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &notificationService{
		repo:        repo,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "notification_service").Logger(),
		nodeID:      uuid.NewString(),
	}
}

type notificationService struct {
	repo        repository.NotificationRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	nodeID      string
}

func (s *notificationService) NotifyEvaluationCompleted(ctx context.Context, studentID uint, evaluationID uint) error {
	message := fmt.Sprintf("Your submission has been evaluated (evaluation #%d).", evaluationID)
	return s.dispatch(ctx, studentID, models.NotificationTypeEvaluationCompleted, message)
}

func (s *notificationService) NotifyFeedbackReady(ctx context.Context, studentID uint, feedbackID uint) error {
	message := fmt.Sprintf("Personalized feedback is ready for you (feedback #%d).", feedbackID)
	return s.dispatch(ctx, studentID, models.NotificationTypeFeedbackReady, message)
}

func (s *notificationService) dispatch(ctx context.Context, studentID uint, notificationType, message string) error {
	notification := models.Notification{
		UserID:  fmt.Sprintf("%d", studentID),
		Type:    notificationType,
		Message: message,
	}

	if err := s.repo.Create(ctx, &notification); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if err := s.publish(ctx, notification); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish notification event")
	}

	observability.NotificationsPublishedTotal().WithLabelValues(notificationType).Inc()
	return nil
}

func (s *notificationService) List(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *notificationService) MarkRead(ctx context.Context, id uint, userID string) (models.Notification, error) {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *notificationService) publish(ctx context.Context, notification models.Notification) error {
	if (s.redis == nil || s.redisStream == "") && (s.nats == nil || s.natsSubject == "") {
		return nil
	}

	event := notificationEvent{
		Source:       s.nodeID,
		Notification: notification,
		SentAt:       time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}
