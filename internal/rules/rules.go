// Package rules implements the declarative pattern-rule engine used for
// grammar, pronunciation and spelling detection. Rule tables are data: adding
// a detection means adding a table entry, not a code path.
package rules

import "regexp"

// Error categories shared by rule tables and mistake records.
const (
	CategoryGrammar       = "grammar"
	CategoryVocabulary    = "vocabulary"
	CategoryPronunciation = "pronunciation"
	CategoryLogic         = "logic"
	CategorySpelling      = "spelling"
	CategoryPunctuation   = "punctuation"
)

// Severity levels, ordered from most to least serious.
const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
)

// Rule is a single, independent pattern rule. Either Suggestion or Suggest
// provides the correction; Suggest wins when both are set.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Category    string
	Severity    string
	Weight      int
	Description string
	Suggestion  string
	Suggest     func(matched string) string
}

// Match is one occurrence of a rule within the scanned text. Start and End
// are byte offsets into the original input ([Start, End)).
type Match struct {
	Rule        string
	Category    string
	Severity    string
	Weight      int
	Start       int
	End         int
	Text        string
	Description string
	Suggestion  string
}

// Apply evaluates every rule in the table against the full text, in
// declaration order. Each non-overlapping occurrence of a rule yields one
// match. Overlaps between different rules are intentionally kept; the
// taxonomy favors completeness and callers threshold on counts instead.
func Apply(text string, table []Rule) []Match {
	var matches []Match
	for _, rule := range table {
		for _, span := range rule.Pattern.FindAllStringIndex(text, -1) {
			matched := text[span[0]:span[1]]
			suggestion := rule.Suggestion
			if rule.Suggest != nil {
				suggestion = rule.Suggest(matched)
			}
			matches = append(matches, Match{
				Rule:        rule.Name,
				Category:    rule.Category,
				Severity:    rule.Severity,
				Weight:      rule.Weight,
				Start:       span[0],
				End:         span[1],
				Text:        matched,
				Description: rule.Description,
				Suggestion:  suggestion,
			})
		}
	}
	return matches
}

// TotalWeight sums the weights of the given matches.
func TotalWeight(matches []Match) int {
	total := 0
	for _, match := range matches {
		total += match.Weight
	}
	return total
}

// CountByRule returns the number of matches per rule name.
func CountByRule(matches []Match) map[string]int {
	counts := make(map[string]int, len(matches))
	for _, match := range matches {
		counts[match.Rule]++
	}
	return counts
}
