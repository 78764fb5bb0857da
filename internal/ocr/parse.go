package ocr

import (
	"regexp"
	"strconv"
	"strings"
)

// Status records how a field's value was obtained.
type Status int

const (
	// Missing means no matching percentage was found in the text.
	Missing Status = iota

	// Parsed means a percentage was found and accepted.
	Parsed

	// Unparseable means a token matched but could not be read as a number.
	Unparseable

	// OutOfRange means a bar percentage above 100 was read and discarded.
	OutOfRange
)

func (s Status) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case Unparseable:
		return "unparseable"
	case OutOfRange:
		return "out_of_range"
	default:
		return "missing"
	}
}

// Reading is the outcome of parsing one field.
type Reading struct {
	Value  float64
	Status Status
}

// Float collapses the reading to its record value: the parsed number, or 0.0
// for every other status.
func (r Reading) Float() float64 {
	if r.Status != Parsed {
		return 0.0
	}
	return r.Value
}

// MaxBarPercent is the largest bar value accepted. Anything larger is an OCR
// merge of adjacent digits.
const MaxBarPercent = 100.0

// number matches a percentage token. The letter O is allowed in digit
// positions because Tesseract confuses it with 0.
const number = `([0-9Oo]+(?:\.[0-9Oo]*)?)%`

var (
	cleanPattern    = regexp.MustCompile(`[Cc]lean\s*` + number)
	blownOutPattern = regexp.MustCompile(`(?:Blown|Biown)\s*out\s*` + number)
	tooSmallPattern = regexp.MustCompile(`[Tt]oo\s*small\s*` + number)
	barPattern      = regexp.MustCompile(number)
)

// CleanPercentage replaces the letter O (either case) with the digit 0 and
// parses the result. ok is false when the token is still not a number.
func CleanPercentage(token string) (value float64, ok bool) {
	token = strings.NewReplacer("O", "0", "o", "0").Replace(strings.TrimSpace(token))
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0.0, false
	}
	return v, true
}

// HeaderReadings holds the three condition percentages.
type HeaderReadings struct {
	Clean    Reading
	BlownOut Reading
	TooSmall Reading
}

// ParseHeader extracts the condition percentages from recognized header text.
// Each label is matched independently; a label that is absent leaves its
// reading Missing. Header values are not range checked.
func ParseHeader(text string) HeaderReadings {
	return HeaderReadings{
		Clean:    matchLabel(cleanPattern, text),
		BlownOut: matchLabel(blownOutPattern, text),
		TooSmall: matchLabel(tooSmallPattern, text),
	}
}

func matchLabel(pattern *regexp.Regexp, text string) Reading {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return Reading{Status: Missing}
	}
	return readToken(m[1])
}

// ParseBar extracts the first percentage from recognized bar text. Values
// above MaxBarPercent are discarded, not clamped.
func ParseBar(text string) Reading {
	matches := barPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return Reading{Status: Missing}
	}
	r := readToken(matches[0][1])
	if r.Status == Parsed && r.Value > MaxBarPercent {
		return Reading{Value: r.Value, Status: OutOfRange}
	}
	return r
}

func readToken(token string) Reading {
	v, ok := CleanPercentage(token)
	if !ok {
		return Reading{Status: Unparseable}
	}
	return Reading{Value: v, Status: Parsed}
}
