package catalog

import (
	"encoding/json"
	"strconv"
	"time"

	domcat "github.com/dannythehat/eerie-escapes/internal/domain/catalog"
)

// Hash field names for a stored catalog item.
const (
	fieldID               = "id"
	fieldSlug             = "slug"
	fieldTitle            = "title"
	fieldSubtitle         = "subtitle"
	fieldDescription      = "description"
	fieldShortDescription = "short_description"
	fieldTheme            = "theme"
	fieldDifficulty       = "difficulty"
	fieldStatus           = "status"
	fieldCountry          = "country"
	fieldCity             = "city"
	fieldRegion           = "region"
	fieldBasePrice        = "base_price"
	fieldCurrency         = "currency"
	fieldDiscountPrice    = "discount_price"
	fieldDurationDays     = "duration_days"
	fieldDurationNights   = "duration_nights"
	fieldStartDate        = "start_date"
	fieldEndDate          = "end_date"
	fieldIsYearRound      = "is_year_round"
	fieldViewCount        = "view_count"
	fieldBookingCount     = "booking_count"
	fieldReviewCount      = "review_count"
	fieldAverageRating    = "average_rating"
	fieldKeywords         = "keywords"
	fieldPublishedAt      = "published_at"
)

// itemToFields flattens an item into hash fields.
func itemToFields(item *domcat.Item) map[string]string {
	f := map[string]string{
		fieldID:               item.ID,
		fieldSlug:             item.Slug,
		fieldTitle:            item.Title,
		fieldSubtitle:         item.Subtitle,
		fieldDescription:      item.Description,
		fieldShortDescription: item.ShortDescription,
		fieldTheme:            string(item.Theme),
		fieldDifficulty:       string(item.Difficulty),
		fieldStatus:           string(item.Status),
		fieldCountry:          item.Country,
		fieldCity:             item.City,
		fieldRegion:           item.Region,
		fieldBasePrice:        strconv.FormatFloat(item.BasePrice, 'f', -1, 64),
		fieldCurrency:         item.Currency,
		fieldDurationDays:     strconv.Itoa(item.DurationDays),
		fieldDurationNights:   strconv.Itoa(item.DurationNights),
		fieldIsYearRound:      strconv.FormatBool(item.IsYearRound),
		fieldViewCount:        strconv.FormatInt(item.ViewCount, 10),
		fieldBookingCount:     strconv.FormatInt(item.BookingCount, 10),
		fieldReviewCount:      strconv.FormatInt(item.ReviewCount, 10),
		fieldAverageRating:    strconv.FormatFloat(item.AverageRating, 'f', -1, 64),
	}
	if item.DiscountPrice != nil {
		f[fieldDiscountPrice] = strconv.FormatFloat(*item.DiscountPrice, 'f', -1, 64)
	}
	if item.StartDate != nil {
		f[fieldStartDate] = item.StartDate.Format(time.RFC3339)
	}
	if item.EndDate != nil {
		f[fieldEndDate] = item.EndDate.Format(time.RFC3339)
	}
	if item.PublishedAt != nil {
		f[fieldPublishedAt] = item.PublishedAt.Format(time.RFC3339)
	}
	if len(item.Keywords) > 0 {
		if data, err := json.Marshal(item.Keywords); err == nil {
			f[fieldKeywords] = string(data)
		}
	}
	return f
}

// itemFromFields decodes hash fields into an item.
// Malformed numeric fields decode to zero values rather than failing
// the whole result set.
func itemFromFields(fields map[string]string) domcat.Item {
	item := domcat.Item{
		ID:               fields[fieldID],
		Slug:             fields[fieldSlug],
		Title:            fields[fieldTitle],
		Subtitle:         fields[fieldSubtitle],
		Description:      fields[fieldDescription],
		ShortDescription: fields[fieldShortDescription],
		Theme:            domcat.Theme(fields[fieldTheme]),
		Difficulty:       domcat.Difficulty(fields[fieldDifficulty]),
		Status:           domcat.Status(fields[fieldStatus]),
		Country:          fields[fieldCountry],
		City:             fields[fieldCity],
		Region:           fields[fieldRegion],
		Currency:         fields[fieldCurrency],
	}

	item.BasePrice, _ = strconv.ParseFloat(fields[fieldBasePrice], 64)
	item.AverageRating, _ = strconv.ParseFloat(fields[fieldAverageRating], 64)
	item.DurationDays, _ = strconv.Atoi(fields[fieldDurationDays])
	item.DurationNights, _ = strconv.Atoi(fields[fieldDurationNights])
	item.IsYearRound, _ = strconv.ParseBool(fields[fieldIsYearRound])
	item.ViewCount, _ = strconv.ParseInt(fields[fieldViewCount], 10, 64)
	item.BookingCount, _ = strconv.ParseInt(fields[fieldBookingCount], 10, 64)
	item.ReviewCount, _ = strconv.ParseInt(fields[fieldReviewCount], 10, 64)

	if v := fields[fieldDiscountPrice]; v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			item.DiscountPrice = &p
		}
	}
	if v := fields[fieldStartDate]; v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			item.StartDate = &t
		}
	}
	if v := fields[fieldEndDate]; v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			item.EndDate = &t
		}
	}
	if v := fields[fieldPublishedAt]; v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			item.PublishedAt = &t
		}
	}
	if v := fields[fieldKeywords]; v != "" {
		_ = json.Unmarshal([]byte(v), &item.Keywords)
	}

	return item
}
