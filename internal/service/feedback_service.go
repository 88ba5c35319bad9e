package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lexia-go-api/internal/dto"
	"github.com/noah-isme/lexia-go-api/internal/models"
	"github.com/noah-isme/lexia-go-api/internal/repository"
	"github.com/noah-isme/lexia-go-api/internal/rules"
)

// ErrFeedbackNotFound indicates the feedback cannot be located.
var ErrFeedbackNotFound = errors.New("feedback not found")

// Feedback composition bounds.
const (
	strengthScoreThreshold    = 80
	improvementScoreThreshold = 70
	encouragingToneThreshold  = 80
	maxRecommendations        = 5
	maxMistakesPerCategory    = 2
	maxNarrativeLength        = 2000
)

// FeedbackService composes and serves narrative feedback. Compose is a pure
// function of its inputs; Summarize mutates stored feedback idempotently.
type FeedbackService interface {
	Compose(evaluation models.Evaluation, mistakes []models.Mistake, submission models.Submission) models.Feedback
	GetByEvaluationID(ctx context.Context, evaluationID uint) (dto.FeedbackResponse, error)
	Summarize(ctx context.Context, feedbackID uint) (dto.FeedbackResponse, error)
}

// NewFeedbackService constructs a feedback service.
func NewFeedbackService(feedback repository.FeedbackRepository, logger zerolog.Logger) FeedbackService {
	return &feedbackService{
		feedback: feedback,
		logger:   logger.With().Str("component", "feedback_service").Logger(),
	}
}

type feedbackService struct {
	feedback repository.FeedbackRepository
	logger   zerolog.Logger
}

// subScore pairs a named grading dimension with its value for threshold
// scans; ordering fixes the narrative ordering.
type subScore struct {
	category string
	label    string
	value    int
}

func (s *feedbackService) Compose(evaluation models.Evaluation, mistakes []models.Mistake, submission models.Submission) models.Feedback {
	scores := relevantSubScores(evaluation, submission.ContentType)

	strengths := make([]string, 0, len(scores))
	improvements := make([]string, 0, len(scores))
	improvementCategories := make(map[string]bool)
	for _, score := range scores {
		switch {
		case score.value >= strengthScoreThreshold:
			strengths = append(strengths, fmt.Sprintf("strong %s (%d/100)", score.label, score.value))
		case score.value < improvementScoreThreshold:
			improvements = append(improvements, fmt.Sprintf("%s needs attention (%d/100)", score.label, score.value))
			improvementCategories[score.category] = true
		}
	}
	improvements = append(improvements, mistakeHighlights(mistakes, scores)...)

	recommendations := buildRecommendations(evaluation.OverallScore, improvementCategories)

	tone := models.ToneConstructive
	if evaluation.OverallScore >= encouragingToneThreshold {
		tone = models.ToneEncouraging
	}

	narrative := buildNarrative(evaluation, submission.ContentType, scores, strengths, improvements)

	return models.Feedback{
		EvaluationID:    evaluation.ID,
		Narrative:       narrative,
		Strengths:       strengths,
		Improvements:    improvements,
		Recommendations: recommendations,
		Tone:            tone,
	}
}

func (s *feedbackService) GetByEvaluationID(ctx context.Context, evaluationID uint) (dto.FeedbackResponse, error) {
	feedback, err := s.feedback.GetByEvaluationID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackResponse{}, ErrFeedbackNotFound
		}
		return dto.FeedbackResponse{}, err
	}
	return dto.NewFeedbackResponse(feedback), nil
}

// Summarize replaces the narrative with a two-clause digest. Re-summarizing
// an already-summarized feedback is a no-op.
func (s *feedbackService) Summarize(ctx context.Context, feedbackID uint) (dto.FeedbackResponse, error) {
	feedback, err := s.feedback.GetByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackResponse{}, ErrFeedbackNotFound
		}
		return dto.FeedbackResponse{}, err
	}

	if feedback.Summarized {
		return dto.NewFeedbackResponse(feedback), nil
	}

	feedback.Narrative = summaryDigest(feedback.Strengths, feedback.Improvements)
	feedback.Summarized = true

	if err := s.feedback.Update(ctx, &feedback); err != nil {
		return dto.FeedbackResponse{}, err
	}

	s.logger.Debug().Uint("feedback_id", feedback.ID).Msg("feedback summarized")
	return dto.NewFeedbackResponse(feedback), nil
}

func relevantSubScores(evaluation models.Evaluation, contentType string) []subScore {
	var scores []subScore
	add := func(category, label string, value *int) {
		if value != nil {
			scores = append(scores, subScore{category: category, label: label, value: *value})
		}
	}

	switch contentType {
	case models.ContentTypeSpeaking:
		add(rules.CategoryPronunciation, "pronunciation", evaluation.PronunciationScore)
		add(rules.CategoryVocabulary, "vocabulary use", evaluation.VocabularyScore)
		add(rules.CategoryGrammar, "grammar", evaluation.GrammarScore)
	case models.ContentTypeWriting:
		add(rules.CategoryGrammar, "grammar", evaluation.GrammarScore)
		add(rules.CategoryVocabulary, "vocabulary range", evaluation.VocabularyScore)
	case models.ContentTypeQuiz:
		add(rules.CategoryLogic, "comprehension", evaluation.LogicScore)
	}

	return scores
}

// mistakeHighlights surfaces up to two distinct mistake descriptions per
// relevant error category.
func mistakeHighlights(mistakes []models.Mistake, scores []subScore) []string {
	relevant := make(map[string]bool, len(scores))
	for _, score := range scores {
		relevant[score.category] = true
	}
	// Spelling and punctuation ride along with grammar feedback.
	if relevant[rules.CategoryGrammar] {
		relevant[rules.CategorySpelling] = true
		relevant[rules.CategoryPunctuation] = true
	}

	perCategory := make(map[string]int)
	seen := make(map[string]bool)
	var highlights []string
	for _, mistake := range mistakes {
		if !relevant[mistake.Category] || seen[mistake.Description] {
			continue
		}
		if perCategory[mistake.Category] >= maxMistakesPerCategory {
			continue
		}
		perCategory[mistake.Category]++
		seen[mistake.Description] = true
		highlights = append(highlights, mistake.Description)
	}

	return highlights
}

// buildRecommendations applies the fixed score-band decision table, then adds
// category-specific advice for each improvement area, truncated to five.
func buildRecommendations(overall int, improvementCategories map[string]bool) []string {
	var recommendations []string

	switch {
	case overall < 60:
		recommendations = append(recommendations,
			"revisit the fundamentals covered by this activity",
			"schedule short daily practice sessions this week")
	case overall < 75:
		recommendations = append(recommendations,
			"focus your practice on the mistake categories listed above",
			"repeat a similar activity to consolidate your progress")
	case overall < 85:
		recommendations = append(recommendations,
			"challenge yourself with more advanced material")
	default:
		recommendations = append(recommendations,
			"keep up the excellent work",
			"try explaining the topic to a peer to consolidate it")
	}

	categoryAdvice := []struct {
		category string
		advice   string
	}{
		{rules.CategoryGrammar, "complete targeted grammar drills"},
		{rules.CategoryVocabulary, "read widely and keep a vocabulary journal"},
		{rules.CategoryPronunciation, "shadow native speakers for ten minutes a day"},
		{rules.CategoryLogic, "re-read each question carefully before answering"},
	}
	for _, entry := range categoryAdvice {
		if improvementCategories[entry.category] {
			recommendations = append(recommendations, entry.advice)
		}
	}

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}

// buildNarrative assembles the fixed template sections in order: opening,
// strengths, improvements, score breakdown, closing.
func buildNarrative(evaluation models.Evaluation, contentType string, scores []subScore, strengths, improvements []string) string {
	var sections []string

	sections = append(sections, openingSentence(evaluation.OverallScore, contentType))

	if len(strengths) > 0 {
		sections = append(sections, "What went well:\n"+bulletList(strengths))
	}
	if len(improvements) > 0 {
		sections = append(sections, "Where to focus next:\n"+bulletList(improvements))
	}

	if len(scores) > 0 {
		lines := make([]string, 0, len(scores))
		for _, score := range scores {
			lines = append(lines, fmt.Sprintf("- %s: %d/100", score.label, score.value))
		}
		sections = append(sections, "Score breakdown:\n"+strings.Join(lines, "\n"))
	}

	sections = append(sections, closingSentence(evaluation.OverallScore))

	narrative := strings.Join(sections, "\n\n")
	if len(narrative) > maxNarrativeLength {
		narrative = narrative[:maxNarrativeLength]
	}
	return narrative
}

func openingSentence(overall int, contentType string) string {
	switch {
	case overall >= 85:
		return fmt.Sprintf("Outstanding work on this %s activity: you scored %d out of 100.", contentType, overall)
	case overall >= 75:
		return fmt.Sprintf("Great job on this %s activity: you scored %d out of 100.", contentType, overall)
	case overall >= 60:
		return fmt.Sprintf("Good effort on this %s activity: you scored %d out of 100.", contentType, overall)
	default:
		return fmt.Sprintf("Thanks for completing this %s activity: you scored %d out of 100.", contentType, overall)
	}
}

func closingSentence(overall int) string {
	if overall >= encouragingToneThreshold {
		return "Keep this momentum going, you're doing really well."
	}
	return "Steady practice on the points above will lift your next score."
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

func summaryDigest(strengths, improvements []string) string {
	strengthClause := "You showed solid overall effort"
	if len(strengths) > 0 {
		strengthClause = "Strengths: " + strings.Join(limitItems(strengths, 2), "; ")
	}

	improvementClause := "keep practicing regularly."
	if len(improvements) > 0 {
		improvementClause = "focus areas: " + strings.Join(limitItems(improvements, 2), "; ") + "."
	}

	return strengthClause + ". Next, " + improvementClause
}

func limitItems(items []string, limit int) []string {
	if len(items) <= limit {
		return items
	}
	return items[:limit]
}
