// Package extractor turns free-form shopping requests into
// [domain.SearchConstraints].
package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/niksmo/shopfinder/internal/core/domain"
	"github.com/niksmo/shopfinder/internal/core/lexicon"
	"github.com/niksmo/shopfinder/internal/core/port"
)

var _ port.QueryExtractor = (*Extractor)(nil)

var (
	underN       = regexp.MustCompile(`(?i)(?:under|below|less than|up to|max|maximum)\s*\$?(\d+(?:\.\d{2})?)`)
	dollarOrLess = regexp.MustCompile(`(?i)\$(\d+(?:\.\d{2})?)\s*(?:or less|max|maximum)`)
	priceUnder   = regexp.MustCompile(`(?i)price\s*(?:under|below|less than|up to|max|maximum)\s*\$?(\d+(?:\.\d{2})?)`)
	budgetN      = regexp.MustCompile(`(?i)budget\s*(?:of|is|under|below)?\s*\$?(\d+(?:\.\d{2})?)`)

	ratedAbove    = regexp.MustCompile(`(?i)(?:rating|rated)\s*(?:above|over|at least)\s*(\d(?:\.\d)?)`)
	starsOrAbove  = regexp.MustCompile(`(?i)(\d(?:\.\d)?)\s*(?:stars?|rating)\s*(?:or|and)\s*(?:above|over|higher)`)
	minimumRating = regexp.MustCompile(`(?i)(?:minimum|min)\s*(?:rating|stars?)\s*(?:of)?\s*(\d(?:\.\d)?)`)
)

// First match wins.
var (
	priceRules  = []*regexp.Regexp{underN, dollarOrLess, priceUnder, budgetN}
	ratingRules = []*regexp.Regexp{ratedAbove, starsOrAbove, minimumRating}
)

// Longer phrases go first so no qualifier word is left behind.
var stripRules = []*regexp.Regexp{
	priceUnder, budgetN, dollarOrLess, underN,
	minimumRating, ratedAbove, starsOrAbove,
}

var stopWords = map[string]struct{}{
	"i": {}, "need": {}, "want": {}, "looking": {}, "for": {}, "find": {},
	"show": {}, "me": {}, "get": {}, "buy": {}, "search": {}, "a": {},
	"an": {}, "the": {}, "some": {}, "any": {},
}

const tokenSeparators = ",.-!?;:()[]\"/"

type Extractor struct {
	lex lexicon.Lexicon
}

func New(lex lexicon.Lexicon) Extractor {
	return Extractor{lex}
}

// Extract never fails. Slots it cannot resolve are left empty.
func (e Extractor) Extract(text string) domain.SearchConstraints {
	text = strings.ToLower(strings.TrimSpace(text))
	c := domain.SearchConstraints{Query: text}

	if text != "" {
		e.fill(&c, text)
	}

	c.ResultLimit = domain.DefaultResultLimit
	return c
}

func (e Extractor) fill(c *domain.SearchConstraints, text string) {
	if v, ok := firstNumber(priceRules, text); ok {
		c.PriceMax = &v
	}

	if v, ok := firstNumber(ratingRules, text); ok && v <= domain.MaxRating {
		c.MinRating = &v
	}

	rest := text
	for _, re := range stripRules {
		rest = re.ReplaceAllString(rest, " ")
	}

	// Product names match literally, so "jackets" yields "jacket".
	for _, name := range e.lex.ProductNames {
		if strings.Contains(text, name) {
			c.ProductName = name
			rest = removeWord(rest, name)
			break
		}
	}

	filled := make(map[lexicon.Slot]bool, len(lexicon.Slots))

	for _, slot := range lexicon.Slots {
		for _, entry := range e.lex.Vocabulary(slot) {
			if !isPhrase(entry) || indexPhrase(rest, entry) < 0 {
				continue
			}
			setSlot(c, slot, entry)
			filled[slot] = true
			rest = removePhrase(rest, entry)
			break
		}
	}

	for _, token := range tokenize(rest) {
		for _, slot := range lexicon.Slots {
			if filled[slot] {
				continue
			}
			if m, ok := FuzzyMatch(token, e.lex.Vocabulary(slot)); ok {
				setSlot(c, slot, m)
				filled[slot] = true
				break
			}
		}
	}
}

func setSlot(c *domain.SearchConstraints, slot lexicon.Slot, v string) {
	switch slot {
	case lexicon.SlotCategory:
		c.Category = v
	case lexicon.SlotSubcategory:
		c.Subcategory = v
	case lexicon.SlotBrand:
		c.Brand = v
	case lexicon.SlotColor:
		c.Color = v
	case lexicon.SlotLocation:
		c.Location = v
	case lexicon.SlotSize:
		c.Size = v
	}
}

func firstNumber(rules []*regexp.Regexp, text string) (float64, bool) {
	for _, re := range rules {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(tokenSeparators, r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) <= 1 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// isPhrase reports whether entry spans several tokens.
func isPhrase(entry string) bool {
	return strings.ContainsAny(entry, " -")
}

// indexPhrase returns the index of the first occurrence of phrase in text
// that is not glued to a neighbouring letter or digit, or -1.
func indexPhrase(text, phrase string) int {
	if phrase == "" {
		return -1
	}
	for offset := 0; offset <= len(text)-len(phrase); {
		i := strings.Index(text[offset:], phrase)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return start
		}
		offset = start + 1
	}
	return -1
}

func boundaryBefore(text string, i int) bool {
	r, size := utf8.DecodeLastRuneInString(text[:i])
	return size == 0 || !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	r, size := utf8.DecodeRuneInString(text[i:])
	return size == 0 || !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// removeWord drops the whole word around the first literal occurrence of
// part, so a plural suffix does not survive as a token.
func removeWord(text, part string) string {
	i := strings.Index(text, part)
	if i < 0 {
		return text
	}
	start, end := i, i+len(part)
	for !boundaryBefore(text, start) {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	for !boundaryAfter(text, end) {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return text[:start] + " " + text[end:]
}

func removePhrase(text, phrase string) string {
	i := indexPhrase(text, phrase)
	if i < 0 {
		return text
	}
	return text[:i] + " " + text[i+len(phrase):]
}
