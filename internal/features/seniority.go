package features

import (
	"regexp"
	"strings"

	"cvranker/internal/match"
	"cvranker/internal/types"
)

// Default seniority indicator tokens, overridable per role.
var (
	defaultSeniorTokens = []string{
		"senior", "sr", "lead", "principal", "staff", "architect",
		"architecte", "expert", "head", "director", "directeur",
	}
	defaultMidTokens = []string{
		"mid-level", "midlevel", "intermediate", "intermediaire", "confirme",
	}
	defaultJuniorTokens = []string{
		"junior", "jr", "entry level", "entry-level", "graduate",
		"debutant", "stagiaire", "intern", "trainee", "apprenti",
	}
	leadershipPhrases = []string{
		"team lead", "tech lead", "led a team", "led the team",
		"managed a team", "engineering manager", "chef d'equipe",
		"encadrement d'equipe", "encadre une equipe", "management d'equipe",
	}
)

func tokenRegexp(token string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(token) + `\b`)
}

func countToken(folded, token string) (int, int) {
	locs := tokenRegexp(token).FindAllStringIndex(folded, -1)
	if len(locs) == 0 {
		return 0, -1
	}
	return len(locs), locs[0][0]
}

// seniority accumulates senior vs junior signal from token occurrences,
// leadership phrases (double weight), and total-years bands, and converts
// the net into a level with a clamped confidence.
func (e *Extractor) seniority(ix *match.Index, years *float64, indicators *types.SeniorityIndicators) types.Seniority {
	seniorTokens, juniorTokens := defaultSeniorTokens, defaultJuniorTokens
	if indicators != nil {
		if len(indicators.Senior) > 0 {
			seniorTokens = indicators.Senior
		}
		if len(indicators.Junior) > 0 {
			juniorTokens = indicators.Junior
		}
	}

	folded := ix.FoldedText()
	seniorScore, juniorScore := 0, 0
	var evidence []string
	seenSnippets := map[string]bool{}

	addEvidence := func(foldedOffset int) {
		snippet := ix.Snippet(ix.ToOriginal(foldedOffset))
		if snippet != "" && !seenSnippets[snippet] {
			seenSnippets[snippet] = true
			evidence = append(evidence, snippet)
		}
	}

	for _, token := range seniorTokens {
		if n, off := countToken(folded, strings.ToLower(token)); n > 0 {
			seniorScore += n
			addEvidence(off)
		}
	}
	for _, phrase := range leadershipPhrases {
		if n, off := countToken(folded, phrase); n > 0 {
			seniorScore += 2 * n
			addEvidence(off)
		}
	}
	for _, token := range juniorTokens {
		if n, off := countToken(folded, strings.ToLower(token)); n > 0 {
			juniorScore += n
			addEvidence(off)
		}
	}

	if years != nil {
		switch {
		case *years >= 5:
			seniorScore += 2
		case *years >= 3:
			seniorScore++
		}
		if *years < 2 {
			juniorScore++
		}
	}

	net := seniorScore - juniorScore
	level := types.SeniorityUnknown
	switch {
	case net >= 3:
		level = types.SenioritySenior
	case net >= 1:
		level = types.SeniorityMid
	case net <= -1:
		level = types.SeniorityJunior
	}

	confidence := 0.5 + 0.1*abs(net)
	if confidence > 0.95 {
		confidence = 0.95
	}
	if confidence < 0.3 {
		confidence = 0.3
	}

	if evidence == nil {
		evidence = []string{}
	}
	return types.Seniority{Level: level, Confidence: confidence, Evidence: evidence}
}

func abs(n int) float64 {
	if n < 0 {
		return float64(-n)
	}
	return float64(n)
}
