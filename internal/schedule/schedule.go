package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrMissingField is returned when a required entry field is empty or absent.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidTimeFormat is returned when the time field is not HH:MM-HH:MM.
	ErrInvalidTimeFormat = errors.New("invalid time format, expected HH:MM-HH:MM")
	// ErrUnknownWeekday is returned when the day field is not a recognized weekday name.
	ErrUnknownWeekday = errors.New("unknown weekday name")
)

// Weekday indexes the days of the week with Monday = 0.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

func (w Weekday) String() string {
	names := [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if w < Monday || w > Sunday {
		return "Unknown"
	}
	return names[w]
}

// FromTime converts a time.Weekday (Sunday = 0) to the Monday-based index.
func FromTime(w time.Weekday) Weekday {
	return Weekday((int(w) + 6) % 7)
}

// diacritics folds the Romanian special characters so that "Sâmbătă" and
// "Sambata" parse the same way.
var diacritics = strings.NewReplacer(
	"ă", "a", "â", "a", "î", "i",
	"ș", "s", "ş", "s",
	"ț", "t", "ţ", "t",
)

var weekdayNames = map[string]Weekday{
	// Romanian names, the vocabulary schedule files typically use.
	"luni": Monday, "marti": Tuesday, "miercuri": Wednesday,
	"joi": Thursday, "vineri": Friday, "sambata": Saturday, "duminica": Sunday,

	"monday": Monday, "tuesday": Tuesday, "wednesday": Wednesday,
	"thursday": Thursday, "friday": Friday, "saturday": Saturday, "sunday": Sunday,
}

// ParseWeekday resolves a free-text day name to its Monday-based index.
// Matching is case- and diacritic-insensitive.
func ParseWeekday(name string) (Weekday, bool) {
	normalized := diacritics.Replace(strings.ToLower(strings.TrimSpace(name)))
	w, ok := weekdayNames[normalized]
	return w, ok
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// At anchors the time of day on the given calendar date.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// TimeRange is the start/end pair parsed from an "HH:MM-HH:MM" field.
type TimeRange struct {
	Start TimeOfDay
	End   TimeOfDay
}

// ParseTimeRange parses an "HH:MM-HH:MM" field. Exactly one separator is
// required and both sides must be valid wall-clock times.
func ParseTimeRange(s string) (TimeRange, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	start, err := parseTimeOfDay(parts[0])
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	end, err := parseTimeOfDay(parts[1])
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	return TimeRange{Start: start, End: end}, nil
}

func parseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Entry is one record of the weekly schedule. Day and Time keep the exact
// (trimmed) strings they were loaded with so an export round-trips.
type Entry struct {
	Day      string `json:"day"`
	Time     string `json:"time"`
	Subject  string `json:"subject"`
	Location string `json:"location,omitempty"`
}

// Weekday resolves the entry's day name.
func (e Entry) Weekday() (Weekday, bool) {
	return ParseWeekday(e.Day)
}

// TimeRange parses the entry's time field.
func (e Entry) TimeRange() (TimeRange, error) {
	return ParseTimeRange(e.Time)
}

// Validate checks the entry against the loader rules: required fields,
// parseable time range and a recognized weekday name.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Day) == "" {
		return fmt.Errorf("%w: day", ErrMissingField)
	}
	if strings.TrimSpace(e.Time) == "" {
		return fmt.Errorf("%w: time", ErrMissingField)
	}
	if strings.TrimSpace(e.Subject) == "" {
		return fmt.Errorf("%w: subject", ErrMissingField)
	}

	if _, err := ParseTimeRange(e.Time); err != nil {
		return err
	}

	if _, ok := ParseWeekday(e.Day); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWeekday, e.Day)
	}

	return nil
}

// normalize trims whitespace on every field.
func (e Entry) normalize() Entry {
	return Entry{
		Day:      strings.TrimSpace(e.Day),
		Time:     strings.TrimSpace(e.Time),
		Subject:  strings.TrimSpace(e.Subject),
		Location: strings.TrimSpace(e.Location),
	}
}

// Sanitize trims and validates a batch of entries. The first invalid entry
// aborts with an error naming its position.
func Sanitize(entries []Entry) ([]Entry, error) {
	out := make([]Entry, 0, len(entries))
	for i, e := range entries {
		e = e.normalize()
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("schedule entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// EntriesForDay returns the entries whose day name resolves to the same
// weekday as dayName. Unknown names match nothing.
func EntriesForDay(entries []Entry, dayName string) []Entry {
	target, ok := ParseWeekday(dayName)
	if !ok {
		return nil
	}

	var out []Entry
	for _, e := range entries {
		if w, ok := e.Weekday(); ok && w == target {
			out = append(out, e)
		}
	}
	return out
}

// EntriesForTomorrow returns the entries scheduled for the day after now.
func EntriesForTomorrow(entries []Entry, now time.Time) []Entry {
	tomorrow := FromTime(now.AddDate(0, 0, 1).Weekday())

	var out []Entry
	for _, e := range entries {
		if w, ok := e.Weekday(); ok && w == tomorrow {
			out = append(out, e)
		}
	}
	return out
}

// TimeSlots returns the sorted unique time ranges present in the schedule.
func TimeSlots(entries []Entry) []string {
	seen := make(map[string]struct{})
	var slots []string
	for _, e := range entries {
		if _, ok := seen[e.Time]; ok {
			continue
		}
		seen[e.Time] = struct{}{}
		slots = append(slots, e.Time)
	}
	sort.Strings(slots)
	return slots
}
