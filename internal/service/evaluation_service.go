package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/lexia-go-api/internal/dto"
	"github.com/noah-isme/lexia-go-api/internal/models"
	"github.com/noah-isme/lexia-go-api/internal/observability"
	"github.com/noah-isme/lexia-go-api/internal/repository"
)

// ErrSubmissionNotFound indicates the submission cannot be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrEvaluationNotFound indicates no evaluation exists for the submission.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// ErrEvaluationInProgress indicates another evaluation run holds the
// submission's exclusion lock.
var ErrEvaluationInProgress = errors.New("evaluation already in progress")

// ErrSubmissionAlreadyEvaluated indicates the submission reached completed
// and a fresh trigger is not a retry.
var ErrSubmissionAlreadyEvaluated = errors.New("submission already evaluated")

// ErrEvaluationAlreadyReviewed indicates a teacher review is terminal.
var ErrEvaluationAlreadyReviewed = errors.New("evaluation already reviewed")

// EvaluationConfig carries pipeline tuning knobs.
type EvaluationConfig struct {
	BatchWorkers int
	CacheTTL     time.Duration
}

// EvaluationService orchestrates the evaluation pipeline per submission:
// score, persist evaluation, detect mistakes, compose feedback, complete,
// notify. It owns the retry and failure semantics.
type EvaluationService interface {
	Evaluate(ctx context.Context, submissionID uint) (dto.EvaluationResponse, error)
	EvaluateBatch(ctx context.Context, limit int) (dto.BatchEvaluationResponse, error)
	GetBySubmissionID(ctx context.Context, submissionID uint) (dto.EvaluationResponse, error)
	Review(ctx context.Context, evaluationID uint, payload dto.TeacherReviewRequest) (dto.EvaluationResponse, error)
}

// NewEvaluationService constructs the evaluation pipeline.
func NewEvaluationService(
	submissions repository.SubmissionRepository,
	activities repository.ActivityRepository,
	evaluations repository.EvaluationRepository,
	feedbackRepo repository.FeedbackRepository,
	scoring ScoringService,
	detector MistakeDetector,
	composer FeedbackService,
	notifier Notifier,
	cache *redis.Client,
	validate *validator.Validate,
	logger zerolog.Logger,
	cfg EvaluationConfig,
) EvaluationService {
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = 4
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return &evaluationService{
		submissions:  submissions,
		activities:   activities,
		evaluations:  evaluations,
		feedbackRepo: feedbackRepo,
		scoring:      scoring,
		detector:     detector,
		composer:     composer,
		notifier:     notifier,
		cache:        cache,
		validator:    validate,
		logger:       logger.With().Str("component", "evaluation_service").Logger(),
		config:       cfg,
		now:          time.Now,
	}
}

type evaluationService struct {
	submissions  repository.SubmissionRepository
	activities   repository.ActivityRepository
	evaluations  repository.EvaluationRepository
	feedbackRepo repository.FeedbackRepository
	scoring      ScoringService
	detector     MistakeDetector
	composer     FeedbackService
	notifier     Notifier
	cache        *redis.Client
	validator    *validator.Validate
	logger       zerolog.Logger
	config       EvaluationConfig
	now          func() time.Time
}

func (s *evaluationService) Evaluate(ctx context.Context, submissionID uint) (dto.EvaluationResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/lexia-go-api/internal/service/evaluation")
	ctx, span := tracer.Start(ctx, "evaluation.run")
	span.SetAttributes(attribute.Int64("evaluation.submission_id", int64(submissionID)))
	defer span.End()

	start := s.now()
	observability.EvaluationsStartedTotal().Inc()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.EvaluationResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.EvaluationResponse{}, err
	}

	// The evaluating status is the per-submission exclusion lock; it is held
	// in the store, not in process memory, so concurrent triggers across
	// nodes observe it too.
	switch submission.Status {
	case models.SubmissionStatusPending, models.SubmissionStatusFailed:
	case models.SubmissionStatusEvaluating:
		return dto.EvaluationResponse{}, ErrEvaluationInProgress
	default:
		return dto.EvaluationResponse{}, ErrSubmissionAlreadyEvaluated
	}

	if err := s.submissions.UpdateStatus(ctx, submission.ID, models.SubmissionStatusEvaluating); err != nil {
		span.RecordError(err)
		return dto.EvaluationResponse{}, fmt.Errorf("acquire evaluation lock: %w", err)
	}

	response, err := s.runPipeline(ctx, submission)
	duration := s.now().Sub(start)
	observability.EvaluationPipelineDuration().Observe(duration.Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pipeline_failed")
		s.markFailed(ctx, submission.ID, err)
		return dto.EvaluationResponse{}, err
	}

	span.SetAttributes(attribute.Int("evaluation.overall_score", response.OverallScore))
	return response, nil
}

// runPipeline executes the scoring stages once the lock is held. Any stage
// error leaves the submission failed; a partial evaluation row is a valid
// terminal state because retries purge it first.
func (s *evaluationService) runPipeline(ctx context.Context, submission models.Submission) (dto.EvaluationResponse, error) {
	// Retries must be idempotent: clear any prior partial results before
	// writing fresh ones.
	if err := s.evaluations.PurgeBySubmissionID(ctx, submission.ID); err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("purge prior evaluation: %w", err)
	}
	s.invalidateCache(ctx, submission.ID)

	var questions []models.QuizQuestion
	if submission.ContentType == models.ContentTypeQuiz {
		activity, err := s.activities.GetByID(ctx, submission.ActivityID)
		if err != nil {
			return dto.EvaluationResponse{}, fmt.Errorf("load activity: %w", err)
		}
		questions, err = ParseQuizQuestions(activity)
		if err != nil {
			return dto.EvaluationResponse{}, err
		}
	}

	result, err := s.scoring.Score(ctx, submission, questions)
	if err != nil {
		observability.EvaluationsFailedTotal().WithLabelValues("scoring").Inc()
		return dto.EvaluationResponse{}, err
	}

	evaluation := models.Evaluation{
		SubmissionID:       submission.ID,
		OverallScore:       result.Overall,
		GrammarScore:       result.Grammar,
		VocabularyScore:    result.Vocabulary,
		PronunciationScore: result.Pronunciation,
		LogicScore:         result.Logic,
		AIConfidence:       result.Confidence,
		Breakdown:          result.Breakdown,
		EvaluatedAt:        s.now().UTC(),
	}
	if err := s.evaluations.Create(ctx, &evaluation); err != nil {
		observability.EvaluationsFailedTotal().WithLabelValues("persist_evaluation").Inc()
		return dto.EvaluationResponse{}, fmt.Errorf("persist evaluation: %w", err)
	}

	mistakes, err := s.detector.Detect(ctx, submission, evaluation, questions)
	if err != nil {
		observability.EvaluationsFailedTotal().WithLabelValues("detection").Inc()
		return dto.EvaluationResponse{}, err
	}

	feedback := s.composer.Compose(evaluation, mistakes, submission)
	if err := s.feedbackRepo.Create(ctx, &feedback); err != nil {
		observability.EvaluationsFailedTotal().WithLabelValues("persist_feedback").Inc()
		return dto.EvaluationResponse{}, fmt.Errorf("persist feedback: %w", err)
	}

	if err := s.submissions.UpdateStatus(ctx, submission.ID, models.SubmissionStatusCompleted); err != nil {
		observability.EvaluationsFailedTotal().WithLabelValues("status").Inc()
		return dto.EvaluationResponse{}, fmt.Errorf("complete submission: %w", err)
	}

	observability.EvaluationsCompletedTotal().WithLabelValues(submission.ContentType).Inc()

	// Notification is best-effort; completion stands even when it fails.
	if s.notifier != nil {
		if err := s.notifier.NotifyEvaluationCompleted(ctx, submission.StudentID, evaluation.ID); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("evaluation notification failed")
		}
		if err := s.notifier.NotifyFeedbackReady(ctx, submission.StudentID, feedback.ID); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("feedback notification failed")
		}
	}

	evaluation.Mistakes = mistakes
	response := dto.NewEvaluationResponse(evaluation)
	s.storeCache(ctx, submission.ID, response)

	return response, nil
}

func (s *evaluationService) markFailed(ctx context.Context, submissionID uint, cause error) {
	if err := s.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusFailed); err != nil {
		s.logger.Error().Err(err).Uint("submission_id", submissionID).Msg("failed to record failure status")
		return
	}
	s.logger.Warn().Err(cause).Uint("submission_id", submissionID).Msg("evaluation failed; retry available")
}

// EvaluateBatch evaluates up to limit pending submissions with a bounded
// worker pool. Submissions are independent; one failure never stops the run.
func (s *evaluationService) EvaluateBatch(ctx context.Context, limit int) (dto.BatchEvaluationResponse, error) {
	pending, err := s.submissions.ListPending(ctx, limit)
	if err != nil {
		return dto.BatchEvaluationResponse{}, err
	}

	items := make([]dto.BatchEvaluationItem, len(pending))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := s.config.BatchWorkers
	if workers > len(pending) && len(pending) > 0 {
		workers = len(pending)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				submission := pending[index]
				response, evalErr := s.Evaluate(ctx, submission.ID)
				item := dto.BatchEvaluationItem{SubmissionID: submission.ID}
				if evalErr != nil {
					item.Status = models.SubmissionStatusFailed
					item.Error = evalErr.Error()
				} else {
					item.Status = models.SubmissionStatusCompleted
					evaluationID := response.ID
					item.EvaluationID = &evaluationID
				}
				items[index] = item
			}
		}()
	}

	for index := range pending {
		jobs <- index
	}
	close(jobs)
	wg.Wait()

	response := dto.BatchEvaluationResponse{Requested: len(pending), Items: items}
	for _, item := range items {
		if item.Status == models.SubmissionStatusCompleted {
			response.Succeeded++
		} else {
			response.Failed++
		}
	}

	return response, nil
}

func (s *evaluationService) GetBySubmissionID(ctx context.Context, submissionID uint) (dto.EvaluationResponse, error) {
	if cached, ok := s.loadCache(ctx, submissionID); ok {
		return cached, nil
	}

	evaluation, err := s.evaluations.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	response := dto.NewEvaluationResponse(evaluation)
	s.storeCache(ctx, submissionID, response)
	return response, nil
}

// Review applies a teacher review to an evaluation. A review is terminal:
// once reviewed, further reviews are rejected.
func (s *evaluationService) Review(ctx context.Context, evaluationID uint, payload dto.TeacherReviewRequest) (dto.EvaluationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EvaluationResponse{}, err
	}

	evaluation, err := s.evaluations.GetByID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	if evaluation.ReviewedByTeacher {
		return dto.EvaluationResponse{}, ErrEvaluationAlreadyReviewed
	}

	evaluation.ReviewedByTeacher = true
	evaluation.TeacherNotes = payload.Notes
	evaluation.TeacherScore = payload.Score

	if err := s.evaluations.Update(ctx, &evaluation); err != nil {
		return dto.EvaluationResponse{}, err
	}

	s.invalidateCache(ctx, evaluation.SubmissionID)
	return dto.NewEvaluationResponse(evaluation), nil
}

func evaluationCacheKey(submissionID uint) string {
	return fmt.Sprintf("lexia:evaluation:submission:%d", submissionID)
}

func (s *evaluationService) loadCache(ctx context.Context, submissionID uint) (dto.EvaluationResponse, bool) {
	if s.cache == nil {
		return dto.EvaluationResponse{}, false
	}

	cached, err := s.cache.Get(ctx, evaluationCacheKey(submissionID)).Result()
	if err != nil || cached == "" {
		observability.EvaluationCacheRequests().WithLabelValues("miss").Inc()
		return dto.EvaluationResponse{}, false
	}

	var response dto.EvaluationResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		observability.EvaluationCacheRequests().WithLabelValues("miss").Inc()
		return dto.EvaluationResponse{}, false
	}

	response.CacheHit = true
	observability.EvaluationCacheRequests().WithLabelValues("hit").Inc()
	return response, true
}

func (s *evaluationService) storeCache(ctx context.Context, submissionID uint, response dto.EvaluationResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, evaluationCacheKey(submissionID), payload, s.config.CacheTTL).Err(); err != nil {
		s.logger.Debug().Err(err).Uint("submission_id", submissionID).Msg("evaluation cache write failed")
	}
}

func (s *evaluationService) invalidateCache(ctx context.Context, submissionID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, evaluationCacheKey(submissionID)).Err(); err != nil {
		s.logger.Debug().Err(err).Uint("submission_id", submissionID).Msg("evaluation cache invalidation failed")
	}
}
