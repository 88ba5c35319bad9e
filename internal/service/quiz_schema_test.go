package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

func TestParseQuizQuestionsValid(t *testing.T) {
	activity := models.Activity{
		Questions: datatypes.JSON(`[
			{"index": 0, "type": "multiple_choice", "prompt": "Capital of France?", "options": ["Paris", "Rome"], "correct_answer": "Paris", "points": 2},
			{"index": 1, "type": "short_answer", "correct_answer": "elephant"}
		]`),
	}

	questions, err := ParseQuizQuestions(activity)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	require.Equal(t, "Paris", questions[0].CorrectAnswer)
	require.Equal(t, 2.0, questions[0].PointsOrDefault())
	require.Equal(t, 1.0, questions[1].PointsOrDefault())
}

func TestParseQuizQuestionsMissing(t *testing.T) {
	_, err := ParseQuizQuestions(models.Activity{})
	require.ErrorIs(t, err, ErrQuizQuestionsMissing)
}

func TestParseQuizQuestionsRejectsInvalidShape(t *testing.T) {
	cases := map[string]string{
		"empty list":          `[]`,
		"unknown type":        `[{"index": 0, "type": "essay", "correct_answer": "x"}]`,
		"missing answer":      `[{"index": 0, "type": "true_false"}]`,
		"empty answer":        `[{"index": 0, "type": "true_false", "correct_answer": ""}]`,
		"negative index":      `[{"index": -1, "type": "true_false", "correct_answer": "true"}]`,
		"not an array":        `{"index": 0}`,
		"non-object question": `["true"]`,
	}

	for name, document := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQuizQuestions(models.Activity{Questions: datatypes.JSON(document)})
			require.Error(t, err)
		})
	}
}
