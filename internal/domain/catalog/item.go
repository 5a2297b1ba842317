// Package catalog holds the holiday listing record and its enumerations.
package catalog

import (
	"strings"
	"time"
)

// Theme classifies a holiday listing.
type Theme string

// Theme values mirror the catalog schema.
const (
	ThemeDarkHistory     Theme = "DARK_HISTORY"
	ThemeParanormal      Theme = "PARANORMAL"
	ThemeCultural        Theme = "CULTURAL"
	ThemeFestival        Theme = "FESTIVAL"
	ThemeMacabreFestival Theme = "MACABRE_FESTIVALS"
	ThemeExtreme         Theme = "EXTREME"
)

// ParseTheme maps a raw value to a Theme. ok=false for unknown values.
func ParseTheme(s string) (Theme, bool) {
	t := Theme(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case ThemeDarkHistory, ThemeParanormal, ThemeCultural, ThemeFestival, ThemeMacabreFestival, ThemeExtreme:
		return t, true
	}
	return "", false
}

// Difficulty grades the physical demand of a holiday.
type Difficulty string

// Difficulty values.
const (
	DifficultyEasy        Difficulty = "EASY"
	DifficultyModerate    Difficulty = "MODERATE"
	DifficultyChallenging Difficulty = "CHALLENGING"
	DifficultyExtreme     Difficulty = "EXTREME"
)

// ParseDifficulty maps a raw value to a Difficulty. ok=false for unknown values.
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case DifficultyEasy, DifficultyModerate, DifficultyChallenging, DifficultyExtreme:
		return d, true
	}
	return "", false
}

// Status is the publication state of a listing.
type Status string

// Status values. Discovery only ever exposes Published by default.
const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
	StatusSoldOut   Status = "SOLD_OUT"
)

// ParseStatus maps a raw value to a Status. ok=false for unknown values.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusDraft, StatusPublished, StatusArchived, StatusSoldOut:
		return st, true
	}
	return "", false
}

// Item is a bookable holiday listing, the unit of search and ranking.
// Owned by the CRUD subsystem; discovery reads it and only ever
// mutates the popularity counters.
type Item struct {
	ID               string `json:"id"`
	Slug             string `json:"slug"`
	Title            string `json:"title"`
	Subtitle         string `json:"subtitle,omitempty"`
	Description      string `json:"description,omitempty"`
	ShortDescription string `json:"shortDescription,omitempty"`

	Theme      Theme      `json:"theme"`
	Difficulty Difficulty `json:"difficulty"`
	Status     Status     `json:"status"`

	Country string `json:"country"`
	City    string `json:"city"`
	Region  string `json:"region,omitempty"`

	BasePrice     float64  `json:"basePrice"`
	Currency      string   `json:"currency"`
	DiscountPrice *float64 `json:"discountPrice,omitempty"`

	DurationDays   int `json:"durationDays"`
	DurationNights int `json:"durationNights"`

	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	IsYearRound bool       `json:"isYearRound"`

	ViewCount     int64   `json:"viewCount"`
	BookingCount  int64   `json:"bookingCount"`
	ReviewCount   int64   `json:"reviewCount"`
	AverageRating float64 `json:"averageRating"`

	Keywords    []string   `json:"keywords,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// HasKeyword reports whether the item carries the given keyword tag
// (case-insensitive).
func (i *Item) HasKeyword(word string) bool {
	for _, k := range i.Keywords {
		if strings.EqualFold(k, word) {
			return true
		}
	}
	return false
}

// Slugify derives a URL slug from a title: lower-case, non-alphanumeric
// runs collapsed to single dashes, edges trimmed.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
