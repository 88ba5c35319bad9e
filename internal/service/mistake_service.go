package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/lexia-go-api/internal/models"
	"github.com/noah-isme/lexia-go-api/internal/repository"
	"github.com/noah-isme/lexia-go-api/internal/rules"
	"github.com/noah-isme/lexia-go-api/pkg/textmatch"
)

// Detection thresholds.
const (
	lowPronunciationScore     = 70
	phoneticPronunciationGate = 75
	phoneticRecurrenceMinimum = 3
	shortSpeakingSeconds      = 60
	repetitionMinimumTokens   = 50
	repetitionWordLength      = 4
	repetitionOccurrenceLimit = 5
)

// MistakeDetector re-runs the rule tables against a submission to produce
// the persisted mistake records for an evaluation. Detection thresholds read
// the evaluation's computed scores.
type MistakeDetector interface {
	Detect(ctx context.Context, submission models.Submission, evaluation models.Evaluation, questions []models.QuizQuestion) ([]models.Mistake, error)
}

// NewMistakeDetector constructs a mistake detector.
func NewMistakeDetector(mistakes repository.MistakeRepository, logger zerolog.Logger) MistakeDetector {
	return &mistakeDetector{
		mistakes: mistakes,
		logger:   logger.With().Str("component", "mistake_detector").Logger(),
	}
}

type mistakeDetector struct {
	mistakes repository.MistakeRepository
	logger   zerolog.Logger
}

func (d *mistakeDetector) Detect(ctx context.Context, submission models.Submission, evaluation models.Evaluation, questions []models.QuizQuestion) ([]models.Mistake, error) {
	content, err := submission.DecodeContent()
	if err != nil {
		return nil, err
	}

	var detected []models.Mistake
	switch payload := content.(type) {
	case models.SpeakingContent:
		detected = d.detectSpeaking(payload, evaluation)
	case models.WritingContent:
		detected = d.detectWriting(payload)
	case models.QuizContent:
		detected = d.detectQuiz(payload, questions)
	}

	for i := range detected {
		detected[i].EvaluationID = evaluation.ID
	}

	if err := d.mistakes.CreateMany(ctx, detected); err != nil {
		return nil, fmt.Errorf("persist mistakes: %w", err)
	}

	d.logger.Debug().
		Uint("evaluation_id", evaluation.ID).
		Int("count", len(detected)).
		Msg("mistakes detected")

	return detected, nil
}

// detectSpeaking emits coarse score-gated mistakes when no transcript exists.
// With a transcript, a phonetic pattern must both recur more than three times
// and coincide with a low pronunciation score before it is reported; either
// signal alone is too weak.
func (d *mistakeDetector) detectSpeaking(content models.SpeakingContent, evaluation models.Evaluation) []models.Mistake {
	var detected []models.Mistake

	pronunciation := 100
	if evaluation.PronunciationScore != nil {
		pronunciation = *evaluation.PronunciationScore
	}

	if strings.TrimSpace(content.Transcript) == "" {
		if pronunciation < lowPronunciationScore {
			detected = append(detected, models.Mistake{
				Category:    rules.CategoryPronunciation,
				Severity:    rules.SeverityMajor,
				Description: "overall pronunciation clarity is below the expected level",
				Suggestion:  "record yourself and compare against native audio samples",
				Possible:    true,
			})
		}
		if content.DurationSeconds < shortSpeakingSeconds {
			detected = append(detected, models.Mistake{
				Category:    rules.CategoryLogic,
				Severity:    rules.SeverityMinor,
				Description: "the spoken response is shorter than one minute",
				Suggestion:  "aim to speak for at least a full minute to develop your ideas",
				Possible:    true,
			})
		}
		return detected
	}

	matches := rules.Apply(content.Transcript, rules.Phonetic)
	counts := rules.CountByRule(matches)
	for _, rule := range rules.Phonetic {
		if counts[rule.Name] > phoneticRecurrenceMinimum && pronunciation < phoneticPronunciationGate {
			detected = append(detected, models.Mistake{
				Category:    rule.Category,
				Severity:    rule.Severity,
				Description: rule.Description,
				Suggestion:  rule.Suggestion,
				Possible:    true,
			})
		}
	}

	return detected
}

// detectWriting produces one mistake per grammar-rule match with its span and
// generated correction, plus spelling lookups and a repetition advisory.
func (d *mistakeDetector) detectWriting(content models.WritingContent) []models.Mistake {
	var detected []models.Mistake

	for _, match := range rules.Apply(content.Text, rules.Grammar) {
		start := match.Start
		end := match.End
		detected = append(detected, models.Mistake{
			Category:      match.Category,
			Severity:      match.Severity,
			Description:   match.Description,
			Suggestion:    match.Suggestion,
			SpanStart:     &start,
			SpanEnd:       &end,
			OriginalText:  match.Text,
			CorrectedText: match.Suggestion,
		})
	}

	detected = append(detected, d.detectSpelling(content.Text)...)

	if repeated := repeatedContentWords(content.Text); len(repeated) > 0 {
		detected = append(detected, models.Mistake{
			Category:    rules.CategoryVocabulary,
			Severity:    rules.SeverityMinor,
			Description: fmt.Sprintf("overused words: %s", strings.Join(repeated, ", ")),
			Suggestion:  "vary your word choice with synonyms",
			Possible:    true,
		})
	}

	return detected
}

func (d *mistakeDetector) detectSpelling(text string) []models.Mistake {
	var detected []models.Mistake
	for _, span := range wordPattern.FindAllStringIndex(text, -1) {
		word := text[span[0]:span[1]]
		corrected, known := rules.SpellingCorrections[strings.ToLower(word)]
		if !known {
			continue
		}
		start := span[0]
		end := span[1]
		detected = append(detected, models.Mistake{
			Category:      rules.CategorySpelling,
			Severity:      rules.SeverityMinor,
			Description:   fmt.Sprintf("%q is misspelled", word),
			Suggestion:    corrected,
			SpanStart:     &start,
			SpanEnd:       &end,
			OriginalText:  word,
			CorrectedText: corrected,
		})
	}
	return detected
}

// detectQuiz records binary correctness per question; fuzzy credit belongs to
// the scoring engine, not here.
func (d *mistakeDetector) detectQuiz(content models.QuizContent, questions []models.QuizQuestion) []models.Mistake {
	answers := make(map[int]string, len(content.Answers))
	for _, answer := range content.Answers {
		answers[answer.QuestionIndex] = answer.Answer
	}

	var detected []models.Mistake
	for _, question := range questions {
		submitted := answers[question.Index]
		if textmatch.Normalize(submitted) == textmatch.Normalize(question.CorrectAnswer) {
			continue
		}
		detected = append(detected, models.Mistake{
			Category:      rules.CategoryLogic,
			Severity:      rules.SeverityMajor,
			Description:   fmt.Sprintf("question %d answered incorrectly; the correct answer is %q", question.Index+1, question.CorrectAnswer),
			Suggestion:    fmt.Sprintf("review the material for question %d", question.Index+1),
			OriginalText:  submitted,
			CorrectedText: question.CorrectAnswer,
		})
	}

	return detected
}

// repeatedContentWords flags content words (longer than four characters)
// appearing more than five times in texts of over fifty tokens.
func repeatedContentWords(text string) []string {
	words := tokenize(text)
	if len(words) <= repetitionMinimumTokens {
		return nil
	}

	counts := make(map[string]int)
	for _, word := range words {
		if len(word) > repetitionWordLength {
			counts[word]++
		}
	}

	var repeated []string
	for _, word := range words {
		if counts[word] > repetitionOccurrenceLimit {
			repeated = append(repeated, word)
			counts[word] = 0
		}
	}
	return repeated
}
