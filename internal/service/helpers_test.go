package service

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func mustContent(t *testing.T, content models.SubmissionContent) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	return datatypes.JSON(raw)
}

// fixedRandom always returns the same value so score assertions are exact.
type fixedRandom struct {
	value float64
}

func (f fixedRandom) Float64() float64 { return f.value }

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[uint]models.Submission
	nextID      uint
	statusLog   []string
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: make(map[uint]models.Submission)}
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	submission.ID = f.nextID
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) ListPending(ctx context.Context, limit int) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pending []models.Submission
	for id := uint(1); id <= f.nextID; id++ {
		submission, ok := f.submissions[id]
		if ok && submission.Status == models.SubmissionStatusPending {
			pending = append(pending, submission)
		}
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (f *fakeSubmissionRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	submission, ok := f.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	submission.Status = status
	f.submissions[id] = submission
	f.statusLog = append(f.statusLog, status)
	return nil
}

func (f *fakeSubmissionRepo) add(submission models.Submission) models.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	if submission.ID == 0 {
		f.nextID++
		submission.ID = f.nextID
	} else if submission.ID > f.nextID {
		f.nextID = submission.ID
	}
	f.submissions[submission.ID] = submission
	return submission
}

func (f *fakeSubmissionRepo) status(id uint) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submissions[id].Status
}

type fakeActivityRepo struct {
	activities map[uint]models.Activity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{activities: make(map[uint]models.Activity)}
}

func (f *fakeActivityRepo) GetByID(ctx context.Context, id uint) (models.Activity, error) {
	activity, ok := f.activities[id]
	if !ok {
		return models.Activity{}, gorm.ErrRecordNotFound
	}
	return activity, nil
}

type fakeEvaluationRepo struct {
	mu          sync.Mutex
	evaluations map[uint]models.Evaluation
	nextID      uint
	purgeCalls  int
	createErr   error
}

func newFakeEvaluationRepo() *fakeEvaluationRepo {
	return &fakeEvaluationRepo{evaluations: make(map[uint]models.Evaluation)}
}

func (f *fakeEvaluationRepo) Create(ctx context.Context, evaluation *models.Evaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	evaluation.ID = f.nextID
	f.evaluations[evaluation.ID] = *evaluation
	return nil
}

func (f *fakeEvaluationRepo) Update(ctx context.Context, evaluation *models.Evaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.evaluations[evaluation.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.evaluations[evaluation.ID] = *evaluation
	return nil
}

func (f *fakeEvaluationRepo) GetByID(ctx context.Context, id uint) (models.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	evaluation, ok := f.evaluations[id]
	if !ok {
		return models.Evaluation{}, gorm.ErrRecordNotFound
	}
	return evaluation, nil
}

func (f *fakeEvaluationRepo) GetBySubmissionID(ctx context.Context, submissionID uint) (models.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, evaluation := range f.evaluations {
		if evaluation.SubmissionID == submissionID {
			return evaluation, nil
		}
	}
	return models.Evaluation{}, gorm.ErrRecordNotFound
}

func (f *fakeEvaluationRepo) PurgeBySubmissionID(ctx context.Context, submissionID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purgeCalls++
	for id, evaluation := range f.evaluations {
		if evaluation.SubmissionID == submissionID {
			delete(f.evaluations, id)
		}
	}
	return nil
}

func (f *fakeEvaluationRepo) countForSubmission(submissionID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, evaluation := range f.evaluations {
		if evaluation.SubmissionID == submissionID {
			count++
		}
	}
	return count
}

type fakeMistakeRepo struct {
	mu      sync.Mutex
	created []models.Mistake
}

func (f *fakeMistakeRepo) CreateMany(ctx context.Context, mistakes []models.Mistake) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, mistakes...)
	return nil
}

func (f *fakeMistakeRepo) ListByEvaluationID(ctx context.Context, evaluationID uint) ([]models.Mistake, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Mistake
	for _, mistake := range f.created {
		if mistake.EvaluationID == evaluationID {
			result = append(result, mistake)
		}
	}
	return result, nil
}

type fakeFeedbackRepo struct {
	mu       sync.Mutex
	feedback map[uint]models.Feedback
	nextID   uint
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{feedback: make(map[uint]models.Feedback)}
}

func (f *fakeFeedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	feedback.ID = f.nextID
	f.feedback[feedback.ID] = *feedback
	return nil
}

func (f *fakeFeedbackRepo) Update(ctx context.Context, feedback *models.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.feedback[feedback.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.feedback[feedback.ID] = *feedback
	return nil
}

func (f *fakeFeedbackRepo) GetByID(ctx context.Context, id uint) (models.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	feedback, ok := f.feedback[id]
	if !ok {
		return models.Feedback{}, gorm.ErrRecordNotFound
	}
	return feedback, nil
}

func (f *fakeFeedbackRepo) GetByEvaluationID(ctx context.Context, evaluationID uint) (models.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, feedback := range f.feedback {
		if feedback.EvaluationID == evaluationID {
			return feedback, nil
		}
	}
	return models.Feedback{}, gorm.ErrRecordNotFound
}

type fakeNotifier struct {
	mu             sync.Mutex
	evaluationSent int
	feedbackSent   int
	err            error
}

func (f *fakeNotifier) NotifyEvaluationCompleted(ctx context.Context, studentID uint, evaluationID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluationSent++
	return f.err
}

func (f *fakeNotifier) NotifyFeedbackReady(ctx context.Context, studentID uint, feedbackID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedbackSent++
	return f.err
}
