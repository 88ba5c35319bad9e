package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/lexia-go-api/internal/dto"
	"github.com/noah-isme/lexia-go-api/internal/models"
)

type evaluationFixture struct {
	submissions *fakeSubmissionRepo
	activities  *fakeActivityRepo
	evaluations *fakeEvaluationRepo
	feedback    *fakeFeedbackRepo
	mistakes    *fakeMistakeRepo
	notifier    *fakeNotifier
	service     EvaluationService
}

func newEvaluationFixture(t *testing.T, cache *redis.Client) *evaluationFixture {
	t.Helper()

	fixture := &evaluationFixture{
		submissions: newFakeSubmissionRepo(),
		activities:  newFakeActivityRepo(),
		evaluations: newFakeEvaluationRepo(),
		feedback:    newFakeFeedbackRepo(),
		mistakes:    &fakeMistakeRepo{},
		notifier:    &fakeNotifier{},
	}

	scoring := NewScoringService(fixedRandom{value: 0.5}, testLogger())
	detector := NewMistakeDetector(fixture.mistakes, testLogger())
	composer := NewFeedbackService(fixture.feedback, testLogger())

	fixture.service = NewEvaluationService(
		fixture.submissions,
		fixture.activities,
		fixture.evaluations,
		fixture.feedback,
		scoring,
		detector,
		composer,
		fixture.notifier,
		cache,
		validator.New(validator.WithRequiredStructEnabled()),
		testLogger(),
		EvaluationConfig{BatchWorkers: 2, CacheTTL: time.Minute},
	)

	return fixture
}

func (f *evaluationFixture) addWritingSubmission(t *testing.T, text string) models.Submission {
	t.Helper()
	return f.submissions.add(models.Submission{
		StudentID:   10,
		ActivityID:  20,
		ContentType: models.ContentTypeWriting,
		Content:     mustContent(t, models.WritingContent{Text: text}),
		Status:      models.SubmissionStatusPending,
	})
}

func TestEvaluateWritingHappyPath(t *testing.T) {
	fixture := newEvaluationFixture(t, nil)
	submission := fixture.addWritingSubmission(t, "He are happy. Its sunny.a dog runs.")

	response, err := fixture.service.Evaluate(context.Background(), submission.ID)
	require.NoError(t, err)

	require.Equal(t, submission.ID, response.SubmissionID)
	require.Equal(t, 85, response.OverallScore)
	require.Len(t, response.Mistakes, 3)
	require.Equal(t, models.SubmissionStatusCompleted, fixture.submissions.status(submission.ID))
	require.Equal(t, 1, fixture.evaluations.countForSubmission(submission.ID))
	require.Equal(t, 1, fixture.notifier.evaluationSent)
	require.Equal(t, 1, fixture.notifier.feedbackSent)

	stored, err := fixture.feedback.GetByEvaluationID(context.Background(), response.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.Narrative)
}

func TestEvaluateSubmissionNotFound(t *testing.T) {
	fixture := newEvaluationFixture(t, nil)

	_, err := fixture.service.Evaluate(context.Background(), 42)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestEvaluateRejectsConcurrentRun(t *testing.T) {
	fixture := newEvaluationFixture(t, nil)
	submission := fixture.submissions.add(models.Submission{
		ContentType: models.ContentTypeWriting,
		Content:     mustContent(t, models.WritingContent{Text: "fine"}),
		Status:      models.SubmissionStatusEvaluating,
	})

	_, err := fixture.service.Evaluate(context.Background(), submission.ID)
	require.ErrorIs(t, err, ErrEvaluationInProgress)
}

func TestEvaluateRejectsCompletedSubmission(t *testing.T) {
	fixture := newEvaluationFixture(t, nil)
	submission := fixture.submissions.add(models.Submission{
		ContentType: models.ContentTypeWriting,
		Content:     mustContent(t, models.WritingContent{Text: "fine"}),
		Status:      models.SubmissionStatusCompleted,
	})

	_, err := fixture.service.Evaluate(context.Background(), submission.ID)
	require.ErrorIs(t, err, ErrSubmissionAlreadyEvaluated)
}

func TestEvaluateFailureThenRetryLeavesOneEvaluation(t *testing.T) {
	fixture := newEvaluationFixture(t, nil)
	submission := fixture.addWritingSubmission(t, "He are happy. Its sunny.a dog runs.")

	fixture.evaluations.createErr = context.DeadlineExceeded
	_, err := fixture.service.Evaluate(context.Background(), submission.ID)
	require.Error(t, err)
	require.Equal(t, models.SubmissionStatusFailed, fixture.submissions.status(submission.ID))
	require.Equal(t, 0, fixture.evaluations.countForSubmission(submission.ID))
	require.Equal(t, 0, fixture.notifier.evaluationSent)

	// Failed submissions are retryable and the retry purges stale state first.
	fixture.evaluations.createErr = nil
	response, err := fixture.service.Evaluate(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusCompleted, fixture.submissions.status(submission.ID))
	require.Equal(t, 1, fixture.evaluations.countForSubmission(submission.ID))
	require.Equal(t, 2, fixture.evaluations.purgeCalls)
	require.Equal(t, 85, response.OverallScore)
}

func TestEvaluateNotifierFailureIsNotFatal(t *testing.T) {
	fixture := newEvaluationFixture(t, nil)
	fixture.notifier.err = context.DeadlineExceeded
	submission := fixture.addWritingSubmission(t, "A calm day in the park.")

	_, err := fixture.service.Evaluate(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusCompleted, fixture.submissions.status(submission.ID))
}

func TestEvaluateQuizLoadsActivityQuestions(t *testing.T) {
	fixture := newEvaluationFixture(t, nil)
	fixture.activities.activities[20] = models.Activity{
		ID:   20,
		Type: models.ContentTypeQuiz,
		Questions: datatypes.JSON(`[
			{"index": 0, "type": "multiple_choice", "correct_answer": "Paris"},
			{"index": 1, "type": "true_false", "correct_answer": "true"}
		]`),
	}
	submission := fixture.submissions.add(models.Submission{
		StudentID:   10,
		ActivityID:  20,
		ContentType: models.ContentTypeQuiz,
		Content: mustContent(t, models.QuizContent{Answers: []models.QuizAnswer{
			{QuestionIndex: 0, Answer: "paris"},
			{QuestionIndex: 1, Answer: "false"},
		}}),
		Status: models.SubmissionStatusPending,
	})

	response, err := fixture.service.Evaluate(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, 50, response.OverallScore)
	require.NotNil(t, response.LogicScore)
	require.Len(t, response.Mistakes, 1)
}

func TestEvaluateQuizMissingActivityFails(t *testing.T) {
	fixture := newEvaluationFixture(t, nil)
	submission := fixture.submissions.add(models.Submission{
		ActivityID:  99,
		ContentType: models.ContentTypeQuiz,
		Content:     mustContent(t, models.QuizContent{}),
		Status:      models.SubmissionStatusPending,
	})

	_, err := fixture.service.Evaluate(context.Background(), submission.ID)
	require.Error(t, err)
	require.Equal(t, models.SubmissionStatusFailed, fixture.submissions.status(submission.ID))
}

func TestEvaluateBatchProcessesIndependently(t *testing.T) {
	fixture := newEvaluationFixture(t, nil)
	good1 := fixture.addWritingSubmission(t, "A quiet morning walk.")
	bad := fixture.submissions.add(models.Submission{
		ActivityID:  99,
		ContentType: models.ContentTypeQuiz,
		Content:     mustContent(t, models.QuizContent{}),
		Status:      models.SubmissionStatusPending,
	})
	good2 := fixture.addWritingSubmission(t, "Another quiet evening walk.")

	result, err := fixture.service.EvaluateBatch(context.Background(), 10)
	require.NoError(t, err)

	require.Equal(t, 3, result.Requested)
	require.Equal(t, 2, result.Succeeded)
	require.Equal(t, 1, result.Failed)
	require.Len(t, result.Items, 3)

	outcomes := make(map[uint]dto.BatchEvaluationItem, len(result.Items))
	for _, item := range result.Items {
		outcomes[item.SubmissionID] = item
	}
	require.Equal(t, models.SubmissionStatusCompleted, outcomes[good1.ID].Status)
	require.Equal(t, models.SubmissionStatusCompleted, outcomes[good2.ID].Status)
	require.Equal(t, models.SubmissionStatusFailed, outcomes[bad.ID].Status)
	require.NotEmpty(t, outcomes[bad.ID].Error)
	require.Nil(t, outcomes[bad.ID].EvaluationID)
}

func TestGetBySubmissionIDNotFound(t *testing.T) {
	fixture := newEvaluationFixture(t, nil)

	_, err := fixture.service.GetBySubmissionID(context.Background(), 5)
	require.ErrorIs(t, err, ErrEvaluationNotFound)
}

func TestGetBySubmissionIDReadThroughCache(t *testing.T) {
	server := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	fixture := newEvaluationFixture(t, cache)
	submission := fixture.addWritingSubmission(t, "He are happy. Its sunny.a dog runs.")

	_, err := fixture.service.Evaluate(context.Background(), submission.ID)
	require.NoError(t, err)

	cached, err := fixture.service.GetBySubmissionID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, 85, cached.OverallScore)

	// A teacher review invalidates the cached entry.
	_, err = fixture.service.Review(context.Background(), cached.ID, dto.TeacherReviewRequest{Notes: "solid work"})
	require.NoError(t, err)

	fresh, err := fixture.service.GetBySubmissionID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
	require.True(t, fresh.ReviewedByTeacher)
}

func TestReviewIsTerminal(t *testing.T) {
	fixture := newEvaluationFixture(t, nil)
	submission := fixture.addWritingSubmission(t, "A short note.")

	response, err := fixture.service.Evaluate(context.Background(), submission.ID)
	require.NoError(t, err)

	score := 91.5
	reviewed, err := fixture.service.Review(context.Background(), response.ID, dto.TeacherReviewRequest{
		Notes: "well structured",
		Score: &score,
	})
	require.NoError(t, err)
	require.True(t, reviewed.ReviewedByTeacher)
	require.Equal(t, "well structured", reviewed.TeacherNotes)
	require.NotNil(t, reviewed.TeacherScore)

	_, err = fixture.service.Review(context.Background(), response.ID, dto.TeacherReviewRequest{Notes: "again"})
	require.ErrorIs(t, err, ErrEvaluationAlreadyReviewed)
}

func TestReviewValidatesPayload(t *testing.T) {
	fixture := newEvaluationFixture(t, nil)

	bad := 150.0
	_, err := fixture.service.Review(context.Background(), 1, dto.TeacherReviewRequest{Score: &bad})
	require.Error(t, err)
}
