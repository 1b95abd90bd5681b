package features

import (
	"regexp"
	"strconv"
	"strings"

	"cvranker/internal/match"
	"cvranker/internal/types"
)

var (
	userScaleRe = regexp.MustCompile(`\b(\d+(?:[ .,]\d{3})*(?:[.,]\d+)?)\s*([km])?\+?\s*(?:users?|clients?|customers?|utilisateurs?|employes?|subscribers?|abonnes?|visitors?|visiteurs?)\b`)
	teamLeadRe  = regexp.MustCompile(`\b(?:team of|equipe de|managed|encadre(?:ment de)?)\s*(\d{1,3})\b`)
	teamTailRe  = regexp.MustCompile(`\b(\d{1,3})\s*(?:developers?|engineers?|devs?|people|personnes?|ingenieurs?|developpeurs?)\b`)

	companyTypeTokens = []string{
		"startup", "scale-up", "scaleup", "enterprise", "grand groupe",
		"pme", "agence", "agency", "consulting", "esn",
		"fortune 500", "cac 40", "big tech",
	}
	enterpriseTypes = map[string]bool{
		"enterprise": true, "grand groupe": true,
		"fortune 500": true, "cac 40": true, "big tech": true,
	}
	impactTokens = []string{
		"launched", "shipped", "migrated", "migration", "optimized",
		"reduced", "increased", "improved", "production", "sla",
		"availability", "revenue", "lance", "optimise", "reduit", "ameliore",
	}
)

// projectScale extracts size signals: the largest user base mentioned, the
// largest team, company-type tokens and impact vocabulary.
func (e *Extractor) projectScale(ix *match.Index) types.ProjectScale {
	folded := ix.FoldedText()
	out := types.ProjectScale{CompanyTypes: []string{}, ImpactIndicators: []string{}}

	for _, m := range userScaleRe.FindAllStringSubmatch(folded, -1) {
		if n, ok := parseScaleNumber(m[1], m[2]); ok && n > out.MaxUserScale {
			out.MaxUserScale = n
		}
	}

	for _, re := range []*regexp.Regexp{teamLeadRe, teamTailRe} {
		for _, m := range re.FindAllStringSubmatch(folded, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n > out.MaxTeamSize && n <= 500 {
				out.MaxTeamSize = n
			}
		}
	}

	for _, token := range companyTypeTokens {
		if n, _ := countToken(folded, token); n > 0 {
			out.CompanyTypes = append(out.CompanyTypes, token)
		}
	}
	for _, token := range impactTokens {
		if n, _ := countToken(folded, token); n > 0 {
			out.ImpactIndicators = append(out.ImpactIndicators, token)
		}
	}

	out.ScaleScore = scaleScore(out)
	return out
}

// parseScaleNumber reads "10 000", "10,000", "1.5" with optional k/m
// multipliers.
func parseScaleNumber(digits, suffix string) (int64, bool) {
	cleaned := strings.NewReplacer(" ", "", ",", "", ".", "").Replace(digits)
	decimal := 0.0
	if idx := strings.LastIndexAny(digits, ".,"); idx >= 0 && len(digits)-idx-1 < 3 {
		// trailing short fraction: treat as decimal, e.g. "1.5m"
		whole := strings.NewReplacer(" ", "", ",", ".", ".", ".").Replace(digits)
		if f, err := strconv.ParseFloat(whole, 64); err == nil {
			decimal = f
		}
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil && decimal == 0 {
		return 0, false
	}
	value := float64(n)
	if decimal != 0 {
		value = decimal
	}
	switch suffix {
	case "k":
		value *= 1_000
	case "m":
		value *= 1_000_000
	}
	if value <= 0 {
		return 0, false
	}
	return int64(value), true
}

func scaleScore(s types.ProjectScale) float64 {
	score := 0.3

	switch {
	case s.MaxUserScale >= 1_000_000:
		score += 0.3
	case s.MaxUserScale >= 100_000:
		score += 0.25
	case s.MaxUserScale >= 10_000:
		score += 0.2
	case s.MaxUserScale >= 1_000:
		score += 0.12
	case s.MaxUserScale >= 100:
		score += 0.06
	case s.MaxUserScale > 0:
		score += 0.03
	}

	switch {
	case s.MaxTeamSize >= 20:
		score += 0.2
	case s.MaxTeamSize >= 10:
		score += 0.15
	case s.MaxTeamSize >= 5:
		score += 0.1
	case s.MaxTeamSize >= 2:
		score += 0.05
	}

	companyBonus := 0.0
	for _, ct := range s.CompanyTypes {
		if enterpriseTypes[ct] {
			companyBonus = 0.1
			break
		}
		companyBonus = 0.05
	}
	score += companyBonus

	indicatorBonus := 0.025 * float64(len(s.ImpactIndicators))
	if indicatorBonus > 0.1 {
		indicatorBonus = 0.1
	}
	score += indicatorBonus

	if score > 1 {
		score = 1
	}
	return score
}
