package models

import (
	"fmt"
	"strings"
	"time"
)

// OfferCategory is a closed set persisted as plain strings.
type OfferCategory string

const (
	CategoryEcommerce     OfferCategory = "ecommerce"
	CategoryFood          OfferCategory = "food"
	CategoryEntertainment OfferCategory = "entertainment"
	CategoryTravel        OfferCategory = "travel"
	CategoryFinance       OfferCategory = "finance"
	CategoryHealth        OfferCategory = "health"
	CategoryEducation     OfferCategory = "education"
	CategoryOther         OfferCategory = "other"
)

var offerCategories = map[OfferCategory]bool{
	CategoryEcommerce:     true,
	CategoryFood:          true,
	CategoryEntertainment: true,
	CategoryTravel:        true,
	CategoryFinance:       true,
	CategoryHealth:        true,
	CategoryEducation:     true,
	CategoryOther:         true,
}

// legacyCategories maps values written by old clients to their current names.
// The same remap runs once against stored rows in migration 00002.
var legacyCategories = map[string]OfferCategory{
	"shopping": CategoryEcommerce,
	"dining":   CategoryFood,
}

// ParseOfferCategory normalizes and validates a category string, accepting
// legacy values.
func ParseOfferCategory(s string) (OfferCategory, error) {
	c := OfferCategory(strings.ToLower(strings.TrimSpace(s)))
	if legacy, ok := legacyCategories[string(c)]; ok {
		return legacy, nil
	}
	if !offerCategories[c] {
		return "", fmt.Errorf("unknown offer category %q: %w", s, ErrBadRequest)
	}
	return c, nil
}

func (c OfferCategory) Valid() bool {
	return offerCategories[c]
}

func (c OfferCategory) String() string {
	return string(c)
}

type Offer struct {
	ID                 string
	Title              string
	Description        string
	ImageURL           string
	ProviderName       string
	Category           OfferCategory
	DiscountPercentage *float64
	DiscountAmount     *float64
	OriginalPrice      *float64
	DiscountedPrice    *float64
	ReferralLink       string
	PromoCode          string
	TermsConditions    string
	Instructions       string
	ExpiryDate         time.Time
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Swipeable reports whether the offer is eligible for the feed: active and
// not yet expired.
func (o *Offer) Swipeable(now time.Time) bool {
	return o.IsActive && o.ExpiryDate.After(now)
}
