package dates

import (
	"sort"
	"strconv"
	"strings"
)

// monthTokens maps normalized month names, full and short, English and
// French (diacritics already stripped by folding), to 1-based months.
var monthTokens = map[string]int{
	"jan": 1, "january": 1, "janv": 1, "janvier": 1,
	"feb": 2, "february": 2, "fev": 2, "fevr": 2, "fevrier": 2,
	"mar": 3, "march": 3, "mars": 3,
	"apr": 4, "april": 4, "avr": 4, "avril": 4,
	"may": 5, "mai": 5,
	"jun": 6, "june": 6, "juin": 6,
	"jul": 7, "july": 7, "juil": 7, "juillet": 7,
	"aug": 8, "august": 8, "aou": 8, "aout": 8,
	"sep": 9, "sept": 9, "september": 9, "septembre": 9,
	"oct": 10, "october": 10, "octobre": 10,
	"nov": 11, "november": 11, "novembre": 11,
	"dec": 12, "december": 12, "decembre": 12,
}

// presentAlt matches every locale form of "until now", on folded text.
// Longest alternatives first so partial forms never shadow full ones.
const presentAlt = `(?:actuellement|aujourd'?hui|a ce jour|ce jour|maintenant|en cours|to date|present|current|ongoing|actuel|today|now)`

// monthAlt returns the month-name alternation, longest tokens first.
func monthAlt() string {
	names := make([]string, 0, len(monthTokens))
	for name := range monthTokens {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return strings.Join(names, "|")
}

// monthNumber resolves a folded month token to its 1-based month.
func monthNumber(token string) (int, bool) {
	m, ok := monthTokens[token]
	return m, ok
}

const (
	minYear = 1950
)

// mapYear validates a 4-digit year or windows a 2-digit one. Two-digit
// years up to currentYear%100+1 land in the 2000s, the rest in the 1900s.
func (p *Parser) mapYear(token string) (int, bool) {
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	if len(token) == 2 {
		if n <= p.now.Year%100+1 {
			n += 2000
		} else {
			n += 1900
		}
	}
	if n < minYear || n > p.now.Year+1 {
		return 0, false
	}
	return n, true
}
