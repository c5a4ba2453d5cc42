package fetcher

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	marketPattern = regexp.MustCompile(`^[A-Z]{2}$`)

	AlbumGroups = []string{"album", "single", "appears_on", "compilation"}
)

// Options tune a crawl batch.
type Options struct {
	Market string

	// Similarity expansion; see similar.Expander.Expand.
	TargetCount int
	TopExpand   int
	MinScore    float64

	AlbumLimit    int
	AlbumPages    int
	IncludeGroups []string

	// ForceRefresh replaces stored top tracks instead of skipping artists
	// that have some.
	ForceRefresh   bool
	SkipEnrichment bool
}

func DefaultOptions() Options {
	return Options{
		Market:        "US",
		TargetCount:   50,
		TopExpand:     10,
		MinScore:      0.03,
		AlbumLimit:    50,
		AlbumPages:    10,
		IncludeGroups: []string{"album", "single"},
		ForceRefresh:  true,
	}
}

func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Market, validation.Required, validation.Match(marketPattern).Error("must be an ISO 3166 alpha-2 code")),
		validation.Field(&o.TargetCount, validation.Required, validation.Min(1)),
		validation.Field(&o.TopExpand, validation.Min(0)),
		validation.Field(&o.MinScore, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&o.AlbumLimit, validation.Required, validation.Min(1), validation.Max(50)),
		validation.Field(&o.AlbumPages, validation.Required, validation.Min(1)),
		validation.Field(&o.IncludeGroups, validation.Each(validation.In(groups()...))),
	)
}

func groups() []any {
	out := make([]any, len(AlbumGroups))
	for i, g := range AlbumGroups {
		out[i] = g
	}
	return out
}

func validateMarket(market string) error {
	return validation.Validate(market, validation.Required, validation.Match(marketPattern).Error("must be an ISO 3166 alpha-2 code"))
}

func validatePaging(limit, pages int) error {
	return validation.Errors{
		"limit": validation.Validate(limit, validation.Required, validation.Min(1), validation.Max(50)),
		"pages": validation.Validate(pages, validation.Required, validation.Min(1)),
	}.Filter()
}
