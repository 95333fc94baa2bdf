package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Validation error codes produced by the normalizer.
const (
	CodeInvalidDate     = "InvalidDate"
	CodeFutureDate      = "FutureDate"
	CodeInvalidTimeSlot = "InvalidTimeSlot"
)

// ValidationError reports a rejected input field. It travels as an ordinary
// return value so callers can map it to a client error without unwrapping.
type ValidationError struct {
	Field string
	Code  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %s (%s)", e.Field, e.Code)
}

// EntryInput carries raw entry fields exactly as received on the wire.
type EntryInput struct {
	Date               string
	TimeSlot           string
	MedicationID       string
	Dose               string
	Sleep              string
	Hyperactivity      string
	Mood               string
	Irritability       string
	Appetite           string
	Focus              string
	Weight             string
	OtherEffects       string
	SideEffects        string
	SpecialEvents      string
	MenstruationPhase  string
	TeacherFeedback    string
	EmotionalReactions string
	TagIDs             []int64
}

// EntryDraft is the typed payload a successful Normalize produces. Absent
// optional fields stay nil, never zero.
type EntryDraft struct {
	Date               time.Time
	TimeSlot           string
	MedicationID       *uint
	Dose               string
	Sleep              *int
	Hyperactivity      *int
	Mood               *int
	Irritability       *int
	Appetite           *int
	Focus              *int
	Weight             *string
	OtherEffects       string
	SideEffects        string
	SpecialEvents      string
	MenstruationPhase  string
	TeacherFeedback    string
	EmotionalReactions string
	TagIDs             []uint
}

// Normalizer validates and sanitizes raw entry input into an EntryDraft.
type Normalizer struct {
	clock Clock
}

// NewNormalizer creates a Normalizer with the given clock.
func NewNormalizer(clock Clock) *Normalizer {
	if clock == nil {
		clock = SystemClock()
	}
	return &Normalizer{clock: clock}
}

const dateLayout = "2006-01-02"

// Normalize turns raw input into a typed draft or a validation failure naming
// the offending field. Free-text fields pass through unmodified.
func (n *Normalizer) Normalize(in EntryInput) (*EntryDraft, *ValidationError) {
	date, ok := parseEntryDate(in.Date)
	if !ok {
		return nil, &ValidationError{Field: "date", Code: CodeInvalidDate}
	}
	if afterDay(date, n.clock.Now()) {
		return nil, &ValidationError{Field: "date", Code: CodeFutureDate}
	}

	slot := strings.TrimSpace(in.TimeSlot)
	switch slot {
	case "morning", "noon", "evening":
	default:
		return nil, &ValidationError{Field: "time", Code: CodeInvalidTimeSlot}
	}

	draft := &EntryDraft{
		Date:               date,
		TimeSlot:           slot,
		MedicationID:       parseMedicationID(in.MedicationID),
		Dose:               in.Dose,
		Sleep:              parseRating(in.Sleep),
		Hyperactivity:      parseRating(in.Hyperactivity),
		Mood:               parseRating(in.Mood),
		Irritability:       parseRating(in.Irritability),
		Appetite:           parseRating(in.Appetite),
		Focus:              parseRating(in.Focus),
		Weight:             parseWeight(in.Weight),
		OtherEffects:       in.OtherEffects,
		SideEffects:        in.SideEffects,
		SpecialEvents:      in.SpecialEvents,
		MenstruationPhase:  in.MenstruationPhase,
		TeacherFeedback:    in.TeacherFeedback,
		EmotionalReactions: in.EmotionalReactions,
		TagIDs:             positiveTagIDs(in.TagIDs),
	}
	return draft, nil
}

// parseEntryDate sanitizes a raw date string to YYYY-MM-DD and parses it.
// Accepted separators are -, / and .; Unicode dash variants are folded to the
// ASCII hyphen and zero-width/control characters are stripped. ISO date-times
// are truncated to their date portion.
func parseEntryDate(raw string) (time.Time, bool) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case isZeroWidth(r) || unicode.IsControl(r):
			// mobile keyboards and copy-paste smuggle these in
		case isDashVariant(r) || r == '/' || r == '.':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	s := strings.TrimSpace(b.String())
	if i := strings.IndexAny(s, "T "); i > 0 {
		s = s[:i]
	}

	for _, layout := range []string{dateLayout, "2006-1-2"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return false
}

func isDashVariant(r rune) bool {
	// U+2010..U+2015 hyphen/dash family plus the minus sign
	return (r >= '\u2010' && r <= '\u2015') || r == '\u2212'
}

// parseRating keeps the numeric value truncated to an integer, or absent.
// Non-numeric input is dropped to absent, never coerced to zero.
func parseRating(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil
	}
	v := int(f)
	return &v
}

// parseWeight accepts comma or dot decimals and normalizes to two decimals.
// Anything non-numeric is dropped to absent.
func parseWeight(raw string) *string {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	w := fmt.Sprintf("%.2f", f)
	return &w
}

// parseMedicationID maps non-positive or non-numeric references to "no
// medication" so they never collide with a real foreign key.
func parseMedicationID(raw string) *uint {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	u := uint(id)
	return &u
}

func positiveTagIDs(ids []int64) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, uint(id))
		}
	}
	return out
}
