package strategy

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var digitReplacer = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"٫", ".", "٪", "%", "‌", " ",
)

var (
	numberPattern     = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	listMarkerPattern = regexp.MustCompile(`^(?:[-*•·▪]+|\(?\d{1,2}[.)]|\(?[a-z][)])\s*`)
)

// normalizeText lower-cases, maps Persian and Arabic-Indic digits to ASCII
// and collapses whitespace
func normalizeText(s string) string {
	s = strings.ToLower(digitReplacer.Replace(s))
	return strings.Join(strings.Fields(s), " ")
}

// containsWord reports whether word occurs in text. ASCII words must not be
// glued to other letters; Persian words match as substrings since they take
// attached affixes.
func containsWord(text, word string) bool {
	_, ok := indexWord(text, word)
	return ok
}

func indexWord(text, word string) (int, bool) {
	if !isASCII(word) {
		i := strings.Index(text, word)
		return i, i >= 0
	}
	from := 0
	for from <= len(text) {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return -1, false
		}
		start := from + i
		end := start + len(word)
		first, _ := utf8.DecodeRuneInString(word)
		last, _ := utf8.DecodeLastRuneInString(word)
		if (!unicode.IsLetter(first) || !letterBefore(text, start)) &&
			(!unicode.IsLetter(last) || !letterAfter(text, end)) {
			return start, true
		}
		from = start + 1
	}
	return -1, false
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if containsWord(text, w) {
			return true
		}
	}
	return false
}

// firstOf returns the earliest occurring word and where it ends
func firstOf(text string, words []string) (word string, start, end int) {
	start = -1
	for _, w := range words {
		i, ok := indexWord(text, w)
		if !ok {
			continue
		}
		if start < 0 || i < start || (i == start && len(w) > len(word)) {
			word, start, end = w, i, i+len(w)
		}
	}
	return word, start, end
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func letterBefore(text string, i int) bool {
	if i <= 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return unicode.IsLetter(r)
}

func letterAfter(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return unicode.IsLetter(r)
}

// Direction is the comparison a clause asks for
type Direction int

const (
	DirectionNone Direction = iota
	DirectionBelow
	DirectionAbove
)

func (d Direction) String() string {
	switch d {
	case DirectionBelow:
		return "below"
	case DirectionAbove:
		return "above"
	default:
		return "none"
	}
}

var (
	belowWords = []string{
		"below", "under", "less than", "lower than", "crosses below", "cross below",
		"falls below", "drops below", "beneath", "oversold", "<",
		"زیر", "کمتر از", "پایین‌تر از", "پایین تر از", "اشباع فروش",
	}
	aboveWords = []string{
		"above", "over", "greater than", "more than", "higher than", "exceeds",
		"crosses above", "cross above", "rises above", "breaks above", "overbought", ">",
		"بالای", "بالاتر از", "بیشتر از", "اشباع خرید",
	}
)

// directionOf finds the earliest direction keyword; end is the byte offset
// just past it, or -1 when the clause names no direction
func directionOf(text string) (Direction, int) {
	_, bStart, bEnd := firstOf(text, belowWords)
	_, aStart, aEnd := firstOf(text, aboveWords)
	switch {
	case bStart < 0 && aStart < 0:
		return DirectionNone, -1
	case aStart < 0 || (bStart >= 0 && bStart < aStart):
		return DirectionBelow, bEnd
	default:
		return DirectionAbove, aEnd
	}
}

// numberAfter returns the first number at or after byte offset from
func numberAfter(text string, from int) (float64, bool) {
	if from < 0 || from > len(text) {
		return 0, false
	}
	loc := numberPattern.FindStringIndex(text[from:])
	if loc == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(text[from+loc[0]:from+loc[1]], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// thresholdOf returns the number following the direction keyword
func thresholdOf(text string) (Direction, float64, bool) {
	dir, end := directionOf(text)
	if dir == DirectionNone {
		return dir, 0, false
	}
	v, ok := numberAfter(text, end)
	return dir, v, ok
}

var (
	buyWords  = []string{"buy", "long", "enter", "entry", "go long", "خرید", "ورود"}
	sellWords = []string{"sell", "short", "exit", "take profit", "stop loss", "فروش", "خروج", "حد سود", "حد ضرر"}
)

// actionOf classifies a clause as buy, sell or neither by its earliest keyword
func actionOf(text string) (Signal, bool) {
	_, bStart, _ := firstOf(text, buyWords)
	_, sStart, _ := firstOf(text, sellWords)
	switch {
	case bStart < 0 && sStart < 0:
		return SignalHold, false
	case sStart < 0 || (bStart >= 0 && bStart < sStart):
		return SignalBuy, true
	default:
		return SignalSell, true
	}
}

// splitClauses breaks a condition into atomic clauses on line breaks,
// semicolons, sentence ends and list markers
func splitClauses(text string) []string {
	text = digitReplacer.Replace(text)
	runes := []rune(text)
	var parts []string
	var current strings.Builder
	flush := func() {
		if part := cleanClause(current.String()); part != "" {
			parts = append(parts, part)
		}
		current.Reset()
	}

	for i, r := range runes {
		switch r {
		case '\n', '\r', ';', '؛', '!', '?', '؟':
			flush()
			continue
		case '.':
			if i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
				break
			}
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()
	return parts
}

func cleanClause(s string) string {
	s = strings.TrimSpace(s)
	for {
		stripped := strings.TrimSpace(listMarkerPattern.ReplaceAllString(s, ""))
		if stripped == s {
			break
		}
		s = stripped
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			return s
		}
	}
	return ""
}
