package router

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aroyle/depthroute/src/models"
)

// MaxScore is the upper bound of the complexity scale.
const MaxScore = 100

const (
	keywordWeight = 15
	lengthDivisor = 40
	maxLengthTerm = 30
)

// DefaultKeywords is the fixed vocabulary the heuristic scorer matches
// against. Each hit contributes keywordWeight points.
var DefaultKeywords = []string{
	"explain", "analyze", "compare", "evaluate", "why",
	"how does", "what if", "reasoning", "detailed",
	"meaning", "philosophy", "consciousness", "implications",
	"trade-off", "architecture",
}

// HeuristicScore rates a message without any model call: a fixed weight per
// matched keyword plus a length-derived term, capped at MaxScore. It is a
// pure function of its inputs.
func HeuristicScore(message string, keywords []string) models.RequestScore {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	lower := strings.ToLower(message)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched++
		}
	}

	lengthTerm := len(message) / lengthDivisor
	if lengthTerm > maxLengthTerm {
		lengthTerm = maxLengthTerm
	}

	score := matched*keywordWeight + lengthTerm
	if score > MaxScore {
		score = MaxScore
	}

	return models.RequestScore{
		Score: score,
		Rationale: fmt.Sprintf("heuristic: %d keyword match(es), length term %d",
			matched, lengthTerm),
	}
}

var scoreReplyPattern = regexp.MustCompile(`\d{1,3}`)

// ParseScoreReply extracts a 0-100 score and its justification from a
// model's rating reply. The model is asked to lead with the number, but
// any first in-range integer is accepted.
func ParseScoreReply(reply string) (models.RequestScore, error) {
	match := scoreReplyPattern.FindString(reply)
	if match == "" {
		return models.RequestScore{}, fmt.Errorf("no score found in reply %q", reply)
	}

	score, err := strconv.Atoi(match)
	if err != nil || score > MaxScore {
		return models.RequestScore{}, fmt.Errorf("score %q out of range", match)
	}

	rationale := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(reply), match))
	rationale = strings.TrimLeft(rationale, ".,:;- ")
	if rationale == "" {
		rationale = "model-scored"
	}

	return models.RequestScore{Score: score, Rationale: rationale}, nil
}
