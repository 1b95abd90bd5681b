package features

import (
	"regexp"

	"cvranker/internal/match"
	"cvranker/internal/types"
)

// Degree pattern families, matched on folded text, ranked best first.
var degreePatterns = []struct {
	level types.DegreeLevel
	re    *regexp.Regexp
}{
	{types.DegreePhD, regexp.MustCompile(`\bph\.?\s?d\b|\bdoctorat\b|\bdoctorate\b`)},
	{types.DegreeMasters, regexp.MustCompile(`\bmasters?\b|\bmsc\b|\bm\.s\b|\bmba\b|\bdea\b|\bdess\b|diplome d'ingenieur|ingenieur d'etat|\bbac ?\+ ?5\b`)},
	{types.DegreeBachelors, regexp.MustCompile(`\bbachelors?\b|\bbsc\b|\bb\.s\b|\blicence\b|\bbac ?\+ ?3\b`)},
	{types.DegreeAssociate, regexp.MustCompile(`\bassociate degree\b|\bdut\b|\bbts\b|\bdeug\b|\bbac ?\+ ?2\b`)},
	{types.DegreeBootcamp, regexp.MustCompile(`\bbootcamp\b|\ble wagon\b|\bopenclassrooms\b|\bcoding school\b`)},
}

var degreeRank = map[types.DegreeLevel]int{
	types.DegreePhD:       5,
	types.DegreeMasters:   4,
	types.DegreeBachelors: 3,
	types.DegreeAssociate: 2,
	types.DegreeBootcamp:  1,
}

var degreeBaseScore = map[types.DegreeLevel]float64{
	types.DegreePhD:       1.0,
	types.DegreeMasters:   0.9,
	types.DegreeBachelors: 0.8,
	types.DegreeAssociate: 0.6,
	types.DegreeBootcamp:  0.55,
}

// noDegreeScore keeps candidates without detected education mid-range
// instead of zeroing them; resumes often omit the education section.
const noDegreeScore = 0.5

var fieldPatterns = []struct {
	field types.DegreeField
	re    *regexp.Regexp
}{
	{types.FieldCS, regexp.MustCompile(`computer science|informatique|software|computing|data science|genie logiciel`)},
	{types.FieldEngineering, regexp.MustCompile(`engineering|ingenieur|ingenierie|genie|polytech`)},
	{types.FieldRelated, regexp.MustCompile(`mathemati|physics|physique|statisti|electroni|telecom|data|reseaux?|networks?`)},
	{types.FieldUnrelated, regexp.MustCompile(`business|marketing|\blaw\b|droit|biolog|finance|literature|litterature|histoire|history|psycholog`)},
}

var certificationRe = regexp.MustCompile(`\baws certified\b|\bgcp\b|\bgoogle cloud certified\b|\bazure (?:certified|administrator|developer)\b|\bcka\b|\bckad\b|\bkubernetes certified\b|\bscrum master\b|\bpsm\b|\bpmp\b|\bcissp\b|\bcomptia\b|\boracle certified\b|\bterraform associate\b`)

const fieldWindow = 100

// education detects degrees and certifications, classifies degree fields
// from surrounding context, and scores the best relevant degree.
func (e *Extractor) education(ix *match.Index) types.Education {
	folded := ix.FoldedText()
	out := types.Education{Degrees: []types.Degree{}, Certifications: []string{}}

	for _, family := range degreePatterns {
		for _, loc := range family.re.FindAllStringIndex(folded, -1) {
			degree := types.Degree{
				Level:    family.level,
				Field:    fieldAround(folded, loc[0], loc[1]),
				Evidence: ix.Snippet(ix.ToOriginal(loc[0])),
			}
			out.Degrees = append(out.Degrees, degree)
		}
	}

	seen := map[string]bool{}
	for _, cert := range certificationRe.FindAllString(folded, -1) {
		if !seen[cert] {
			seen[cert] = true
			out.Certifications = append(out.Certifications, cert)
		}
	}

	for i := range out.Degrees {
		d := &out.Degrees[i]
		if d.Field == types.FieldUnrelated {
			continue
		}
		if out.BestDegree == nil || degreeRank[d.Level] > degreeRank[out.BestDegree.Level] {
			out.BestDegree = d
		}
	}

	score := noDegreeScore
	if out.BestDegree != nil {
		score = degreeBaseScore[out.BestDegree.Level]
	}
	score += 0.05 * float64(len(out.Certifications))
	if score > 1 {
		score = 1
	}
	out.EducationScore = score
	return out
}

// fieldAround classifies the study field from a window around the degree
// mention. The first family with a hit wins, most specific first.
func fieldAround(folded string, start, end int) types.DegreeField {
	lo := start - fieldWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + fieldWindow
	if hi > len(folded) {
		hi = len(folded)
	}
	window := folded[lo:hi]

	for _, family := range fieldPatterns {
		if family.re.MatchString(window) {
			return family.field
		}
	}
	return types.FieldUnknown
}
