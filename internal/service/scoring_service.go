package service

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/lexia-go-api/internal/models"
	"github.com/noah-isme/lexia-go-api/internal/rules"
	"github.com/noah-isme/lexia-go-api/pkg/textmatch"
)

// ErrUnsupportedContentType indicates a submission carries an unknown
// content-type tag. The pipeline aborts before persisting anything.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// ErrQuizQuestionsMissing indicates a quiz submission arrived without its
// activity question list.
var ErrQuizQuestionsMissing = errors.New("quiz questions missing")

// Overall score weights per content type.
const (
	speakingPronunciationWeight = 0.4
	speakingVocabularyWeight    = 0.3
	speakingGrammarWeight       = 0.3

	writingGrammarWeight    = 0.4
	writingVocabularyWeight = 0.35
	writingStructureWeight  = 0.25
)

// Grammar deduction bounds shared by writing text and speaking transcripts.
const (
	grammarDeductionCap = 40
	advancedWordLength  = 7
)

// Short-answer similarity tiers.
const (
	fullCreditSimilarity    = 0.9
	partialCreditSimilarity = 0.7
	halfCreditSimilarity    = 0.5
)

// ScoreResult is the output of scoring one submission. Sub-scores are set
// only when applicable to the content type.
type ScoreResult struct {
	Overall       int
	Grammar       *int
	Vocabulary    *int
	Pronunciation *int
	Logic         *int
	Confidence    float64
	Breakdown     map[string]interface{}
}

// ScoringService computes per-criterion and overall scores for submissions.
// Quiz question lists are an explicit input; the engine never loads entities.
type ScoringService interface {
	Score(ctx context.Context, submission models.Submission, questions []models.QuizQuestion) (ScoreResult, error)
}

// NewScoringService constructs the scoring engine.
func NewScoringService(random RandomSource, logger zerolog.Logger) ScoringService {
	if random == nil {
		random = NewSystemRandomSource()
	}
	return &scoringService{
		random: random,
		logger: logger.With().Str("component", "scoring_service").Logger(),
	}
}

type scoringService struct {
	random RandomSource
	logger zerolog.Logger
}

func (s *scoringService) Score(ctx context.Context, submission models.Submission, questions []models.QuizQuestion) (ScoreResult, error) {
	switch submission.ContentType {
	case models.ContentTypeSpeaking, models.ContentTypeWriting, models.ContentTypeQuiz:
	default:
		return ScoreResult{}, ErrUnsupportedContentType
	}

	content, err := submission.DecodeContent()
	if err != nil {
		return ScoreResult{}, err
	}

	switch payload := content.(type) {
	case models.SpeakingContent:
		return s.scoreSpeaking(payload), nil
	case models.WritingContent:
		return s.scoreWriting(payload), nil
	case models.QuizContent:
		return s.scoreQuiz(payload, questions)
	default:
		return ScoreResult{}, ErrUnsupportedContentType
	}
}

func (s *scoringService) scoreSpeaking(content models.SpeakingContent) ScoreResult {
	// Pronunciation proxy: monotonically increasing in audio duration,
	// blended with a 0.8-1.0 multiplicative random band.
	base := 55 + math.Min(35, content.DurationSeconds*0.15)
	band := 0.8 + 0.2*s.random.Float64()
	pronunciation := clampScore(roundScore(base * band))

	vocabulary := roundScore(60 + 35*s.random.Float64())

	grammarMatches := 0
	var grammar int
	if strings.TrimSpace(content.Transcript) != "" {
		matches := rules.Apply(content.Transcript, rules.Grammar)
		grammarMatches = len(matches)
		grammar = grammarScoreFromWeight(rules.TotalWeight(matches))
	} else {
		// Baseline quality assumption for unmeasured grammar; a design
		// placeholder, not a correctness claim.
		grammar = roundScore(65 + 30*s.random.Float64())
	}

	overall := roundScore(speakingPronunciationWeight*float64(pronunciation) +
		speakingVocabularyWeight*float64(vocabulary) +
		speakingGrammarWeight*float64(grammar))

	return ScoreResult{
		Overall:       overall,
		Grammar:       intPtr(grammar),
		Vocabulary:    intPtr(vocabulary),
		Pronunciation: intPtr(pronunciation),
		Confidence:    0.75 + 0.2*s.random.Float64(),
		Breakdown: map[string]interface{}{
			"pronunciation_base":   base,
			"duration_seconds":     content.DurationSeconds,
			"grammar_rule_matches": grammarMatches,
			"transcript_present":   strings.TrimSpace(content.Transcript) != "",
		},
	}
}

func (s *scoringService) scoreWriting(content models.WritingContent) ScoreResult {
	matches := rules.Apply(content.Text, rules.Grammar)
	deduction := rules.TotalWeight(matches)
	if deduction > grammarDeductionCap {
		deduction = grammarDeductionCap
	}
	grammar := 100 - deduction

	words := tokenize(content.Text)
	diversity := lexicalDiversity(words)
	advancedRatio := advancedWordRatio(words)
	vocabulary := roundScore(60 + 50*diversity + 100*advancedRatio)
	if vocabulary > 95 {
		vocabulary = 95
	}

	paragraphs := countParagraphs(content.Text)
	avgSentence := averageSentenceLength(content.Text, len(words))
	structure := structureScore(len(words), paragraphs, avgSentence)

	overall := roundScore(writingGrammarWeight*float64(grammar) +
		writingVocabularyWeight*float64(vocabulary) +
		writingStructureWeight*float64(structure))

	return ScoreResult{
		Overall:    overall,
		Grammar:    intPtr(grammar),
		Vocabulary: intPtr(vocabulary),
		Confidence: 0.8 + 0.15*s.random.Float64(),
		Breakdown: map[string]interface{}{
			"grammar_deduction":    deduction,
			"grammar_rule_matches": len(matches),
			"lexical_diversity":    diversity,
			"advanced_word_ratio":  advancedRatio,
			"word_count":           len(words),
			"paragraph_count":      paragraphs,
			"avg_sentence_length":  avgSentence,
			"structure_score":      structure,
		},
	}
}

func (s *scoringService) scoreQuiz(content models.QuizContent, questions []models.QuizQuestion) (ScoreResult, error) {
	if len(questions) == 0 {
		return ScoreResult{}, ErrQuizQuestionsMissing
	}

	answers := make(map[int]string, len(content.Answers))
	for _, answer := range content.Answers {
		answers[answer.QuestionIndex] = answer.Answer
	}

	var earned, total float64
	correct := 0
	for _, question := range questions {
		points := question.PointsOrDefault()
		total += points

		credit := answerCredit(question, answers[question.Index])
		earned += credit * points
		if credit == 1 {
			correct++
		}
	}

	logic := roundScore(100 * earned / total)

	return ScoreResult{
		Overall:    logic,
		Logic:      intPtr(logic),
		Confidence: 0.95,
		Breakdown: map[string]interface{}{
			"earned_points":  earned,
			"total_points":   total,
			"question_count": len(questions),
			"correct_count":  correct,
		},
	}, nil
}

// answerCredit returns the credit fraction for one question. Choice-based
// questions are all-or-nothing; short answers earn tiered fuzzy credit.
func answerCredit(question models.QuizQuestion, submitted string) float64 {
	expected := textmatch.Normalize(question.CorrectAnswer)
	actual := textmatch.Normalize(submitted)

	switch question.Type {
	case models.QuestionTypeShortAnswer:
		similarity := textmatch.Similarity(expected, actual)
		switch {
		case similarity >= fullCreditSimilarity:
			return 1
		case similarity >= partialCreditSimilarity:
			return 0.75
		case similarity >= halfCreditSimilarity:
			return 0.5
		default:
			return 0
		}
	default:
		if expected == actual && expected != "" {
			return 1
		}
		return 0
	}
}

// grammarScoreFromWeight converts a total matched-rule weight into a grammar
// score with the deduction cap applied (floor 60).
func grammarScoreFromWeight(weight int) int {
	if weight > grammarDeductionCap {
		weight = grammarDeductionCap
	}
	return 100 - weight
}

var wordPattern = regexp.MustCompile(`[a-zA-Z']+`)

func tokenize(text string) []string {
	raw := wordPattern.FindAllString(text, -1)
	words := make([]string, 0, len(raw))
	for _, word := range raw {
		words = append(words, strings.ToLower(word))
	}
	return words
}

func lexicalDiversity(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	for _, word := range words {
		unique[word] = struct{}{}
	}
	return float64(len(unique)) / float64(len(words))
}

func advancedWordRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	advanced := 0
	for _, word := range words {
		if len(word) > advancedWordLength {
			advanced++
		}
	}
	return float64(advanced) / float64(len(words))
}

func countParagraphs(text string) int {
	count := 0
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

var sentencePattern = regexp.MustCompile(`[.!?]+`)

func averageSentenceLength(text string, wordCount int) float64 {
	sentences := 0
	for _, part := range sentencePattern.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}
	return float64(wordCount) / float64(sentences)
}

func structureScore(wordCount, paragraphs int, avgSentence float64) int {
	score := 60

	switch {
	case wordCount >= 100 && wordCount <= 500:
		score += 15
	case wordCount >= 50 && wordCount <= 99:
		score += 10
	}

	switch {
	case paragraphs >= 2 && paragraphs <= 5:
		score += 15
	case paragraphs >= 1:
		score += 8
	}

	if avgSentence >= 10 && avgSentence <= 25 {
		score += 10
	}

	if score > 95 {
		score = 95
	}
	return score
}

func roundScore(value float64) int {
	return int(math.Round(value))
}

func clampScore(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func intPtr(value int) *int {
	return &value
}
