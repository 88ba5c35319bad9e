package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/lexia-go-api/internal/models"
)

// quizQuestionsSchema guards the shape of activity question lists before the
// scoring engine trusts them.
const quizQuestionsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["index", "type", "correct_answer"],
    "properties": {
      "index": {"type": "integer", "minimum": 0},
      "type": {"enum": ["multiple_choice", "true_false", "short_answer"]},
      "prompt": {"type": "string"},
      "options": {"type": "array", "items": {"type": "string"}},
      "correct_answer": {"type": "string", "minLength": 1},
      "points": {"type": "number", "minimum": 0}
    }
  }
}`

var (
	quizSchemaOnce sync.Once
	quizSchema     *jsonschema.Schema
	quizSchemaErr  error
)

func compiledQuizSchema() (*jsonschema.Schema, error) {
	quizSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("quiz_questions.json", strings.NewReader(quizQuestionsSchema)); err != nil {
			quizSchemaErr = err
			return
		}
		quizSchema, quizSchemaErr = compiler.Compile("quiz_questions.json")
	})
	return quizSchema, quizSchemaErr
}

// ParseQuizQuestions validates an activity's question list against the
// schema and decodes it for the scoring engine and mistake detector.
func ParseQuizQuestions(activity models.Activity) ([]models.QuizQuestion, error) {
	if len(activity.Questions) == 0 {
		return nil, ErrQuizQuestionsMissing
	}

	schema, err := compiledQuizSchema()
	if err != nil {
		return nil, fmt.Errorf("compile quiz schema: %w", err)
	}

	var document interface{}
	if err := json.Unmarshal(activity.Questions, &document); err != nil {
		return nil, fmt.Errorf("decode quiz questions: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return nil, fmt.Errorf("invalid quiz questions: %w", err)
	}

	return activity.QuizQuestions()
}
