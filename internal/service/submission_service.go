package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/lexia-go-api/internal/dto"
	"github.com/noah-isme/lexia-go-api/internal/models"
	"github.com/noah-isme/lexia-go-api/internal/repository"
)

// ErrStudentNotFound indicates the referenced student does not exist.
var ErrStudentNotFound = errors.New("student not found")

// ErrActivityNotFound indicates the referenced activity does not exist.
var ErrActivityNotFound = errors.New("activity not found")

// ErrContentPayloadMismatch indicates the payload present does not match the
// declared content type, or more than one payload was supplied.
var ErrContentPayloadMismatch = errors.New("content payload does not match content type")

// SubmissionService exposes submission intake operations.
type SubmissionService interface {
	Create(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
}

// NewSubmissionService constructs a submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, students repository.StudentRepository, activities repository.ActivityRepository, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		students:    students,
		activities:  activities,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

type submissionService struct {
	submissions repository.SubmissionRepository
	students    repository.StudentRepository
	activities  repository.ActivityRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	content, err := s.buildContent(payload)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrStudentNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if _, err := s.activities.GetByID(ctx, payload.ActivityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrActivityNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("encode content: %w", err)
	}

	submission := models.Submission{
		StudentID:   payload.StudentID,
		ActivityID:  payload.ActivityID,
		ContentType: payload.ContentType,
		Content:     datatypes.JSON(raw),
		Status:      models.SubmissionStatusPending,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Str("content_type", submission.ContentType).
		Msg("submission created")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

// buildContent checks the payload/tag pairing and produces the typed content
// with student-authored text sanitized.
func (s *submissionService) buildContent(payload dto.SubmissionCreateRequest) (models.SubmissionContent, error) {
	supplied := 0
	if payload.Speaking != nil {
		supplied++
	}
	if payload.Writing != nil {
		supplied++
	}
	if payload.Quiz != nil {
		supplied++
	}
	if supplied != 1 {
		return nil, ErrContentPayloadMismatch
	}

	switch payload.ContentType {
	case models.ContentTypeSpeaking:
		if payload.Speaking == nil {
			return nil, ErrContentPayloadMismatch
		}
		return models.SpeakingContent{
			AudioURL:        payload.Speaking.AudioURL,
			DurationSeconds: payload.Speaking.DurationSeconds,
			Transcript:      s.sanitizeText(payload.Speaking.Transcript),
		}, nil
	case models.ContentTypeWriting:
		if payload.Writing == nil {
			return nil, ErrContentPayloadMismatch
		}
		text := s.sanitizeText(payload.Writing.Text)
		return models.WritingContent{
			Text:      text,
			WordCount: len(strings.Fields(text)),
			CharCount: len([]rune(text)),
		}, nil
	case models.ContentTypeQuiz:
		if payload.Quiz == nil {
			return nil, ErrContentPayloadMismatch
		}
		answers := make([]models.QuizAnswer, 0, len(payload.Quiz.Answers))
		for _, answer := range payload.Quiz.Answers {
			answers = append(answers, models.QuizAnswer{
				QuestionIndex: answer.QuestionIndex,
				Answer:        s.sanitizeText(answer.Answer),
			})
		}
		return models.QuizContent{Answers: answers}, nil
	default:
		return nil, ErrUnsupportedContentType
	}
}

func (s *submissionService) sanitizeText(text string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(text))
}
