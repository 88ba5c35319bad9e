package rules

import (
	"regexp"
	"strings"
)

// Grammar is the ordered rule table applied to writing text and speaking
// transcripts. Weights feed the grammar score deduction; severities feed the
// persisted mistake records.
var Grammar = []Rule{
	{
		Name:        "subject_verb_agreement_singular",
		Pattern:     regexp.MustCompile(`(?i)\b(?:he|she|it)\s+(?:are|were|am)\b`),
		Category:    CategoryGrammar,
		Severity:    SeverityMajor,
		Weight:      6,
		Description: "singular subject used with a plural verb form",
		Suggest: func(matched string) string {
			fields := strings.Fields(matched)
			if len(fields) != 2 {
				return matched
			}
			verb := "is"
			if strings.EqualFold(fields[1], "were") {
				verb = "was"
			}
			return fields[0] + " " + verb
		},
	},
	{
		Name:        "subject_verb_agreement_first_person",
		Pattern:     regexp.MustCompile(`(?i)\bi\s+(?:is|are|has)\b`),
		Category:    CategoryGrammar,
		Severity:    SeverityMajor,
		Weight:      6,
		Description: "first-person subject used with a third-person verb form",
		Suggest: func(matched string) string {
			fields := strings.Fields(matched)
			if len(fields) != 2 {
				return matched
			}
			verb := "am"
			if strings.EqualFold(fields[1], "has") {
				verb = "have"
			}
			return fields[0] + " " + verb
		},
	},
	{
		Name:        "subject_verb_agreement_plural",
		Pattern:     regexp.MustCompile(`(?i)\b(?:they|we|you)\s+(?:is|was|has)\b`),
		Category:    CategoryGrammar,
		Severity:    SeverityMajor,
		Weight:      6,
		Description: "plural subject used with a singular verb form",
		Suggest: func(matched string) string {
			fields := strings.Fields(matched)
			if len(fields) != 2 {
				return matched
			}
			verb := "are"
			switch strings.ToLower(fields[1]) {
			case "was":
				verb = "were"
			case "has":
				verb = "have"
			}
			return fields[0] + " " + verb
		},
	},
	{
		Name:        "article_before_vowel",
		Pattern:     regexp.MustCompile(`(?i)\ba\s+[aeiou]\w*`),
		Category:    CategoryGrammar,
		Severity:    SeverityMinor,
		Weight:      3,
		Description: "article \"a\" used before a vowel sound",
		Suggest: func(matched string) string {
			rest := strings.TrimSpace(matched[1:])
			return "an " + rest
		},
	},
	{
		Name:        "double_negative",
		Pattern:     regexp.MustCompile(`(?i)\b(?:don't|doesn't|didn't|can't|won't|not)\s+(?:\w+\s+)?(?:no|nothing|nobody|nowhere|never)\b`),
		Category:    CategoryGrammar,
		Severity:    SeverityMajor,
		Weight:      6,
		Description: "double negative construction",
		Suggestion:  "use a single negative, e.g. \"don't have any\" instead of \"don't have no\"",
	},
	{
		Name:        "double_comparative",
		Pattern:     regexp.MustCompile(`(?i)\bmore\s+\w+er\b`),
		Category:    CategoryGrammar,
		Severity:    SeverityMinor,
		Weight:      3,
		Description: "double comparative",
		Suggest: func(matched string) string {
			return strings.TrimSpace(strings.TrimPrefix(strings.ToLower(matched), "more"))
		},
	},
	{
		Name:        "missing_space_after_punctuation",
		Pattern:     regexp.MustCompile(`[.!?,;:][A-Za-z]`),
		Category:    CategoryPunctuation,
		Severity:    SeverityMinor,
		Weight:      3,
		Description: "missing space after punctuation",
		Suggest: func(matched string) string {
			return matched[:1] + " " + matched[1:]
		},
	},
	{
		Name:        "its_missing_apostrophe",
		Pattern:     regexp.MustCompile(`(?i)\bits\s+(?:sunny|rainy|cloudy|windy|snowy|cold|hot|warm|raining|snowing|getting)\b`),
		Category:    CategoryPunctuation,
		Severity:    SeverityMinor,
		Weight:      3,
		Description: "\"its\" used where the contraction \"it's\" is needed",
		Suggest: func(matched string) string {
			return "it'" + matched[2:]
		},
	},
}

// Phonetic lists sound families that commonly challenge learners. Matches are
// words containing the cluster; the mistake detector requires both high
// recurrence and a low pronunciation score before reporting, since lexical
// frequency alone is not evidence of mispronunciation.
var Phonetic = []Rule{
	{
		Name:        "th_sound",
		Pattern:     regexp.MustCompile(`(?i)\b\w*th\w*\b`),
		Category:    CategoryPronunciation,
		Severity:    SeverityMinor,
		Weight:      2,
		Description: "frequent use of words with the \"th\" sound",
		Suggestion:  "practice placing the tongue between the teeth for \"th\" words",
	},
	{
		Name:        "r_sound",
		Pattern:     regexp.MustCompile(`(?i)\b\w*r\w*\b`),
		Category:    CategoryPronunciation,
		Severity:    SeverityMinor,
		Weight:      2,
		Description: "frequent use of words with the \"r\" sound",
		Suggestion:  "practice curling the tongue back slightly for \"r\" words",
	},
	{
		Name:        "v_sound",
		Pattern:     regexp.MustCompile(`(?i)\b\w*v\w*\b`),
		Category:    CategoryPronunciation,
		Severity:    SeverityMinor,
		Weight:      2,
		Description: "frequent use of words with the \"v\" sound",
		Suggestion:  "practice touching the upper teeth to the lower lip for \"v\" words",
	},
	{
		Name:        "l_sound",
		Pattern:     regexp.MustCompile(`(?i)\b\w*l\w*\b`),
		Category:    CategoryPronunciation,
		Severity:    SeverityMinor,
		Weight:      2,
		Description: "frequent use of words with the \"l\" sound",
		Suggestion:  "practice touching the tip of the tongue behind the upper teeth for \"l\" words",
	},
}

// SpellingCorrections maps known misspellings to their corrected forms.
// Lookups are done on lowercased tokens.
var SpellingCorrections = map[string]string{
	"recieve":    "receive",
	"teh":        "the",
	"definately": "definitely",
	"seperate":   "separate",
	"occured":    "occurred",
	"wich":       "which",
	"becuase":    "because",
	"alot":       "a lot",
	"untill":     "until",
	"tommorow":   "tomorrow",
	"freind":     "friend",
	"wierd":      "weird",
	"beleive":    "believe",
	"goverment":  "government",
	"enviroment": "environment",
}
