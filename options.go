package readingorder

import (
	"github.com/rs/zerolog"

	"github.com/histpath/readingorder/layout"
)

// LowConfidenceThreshold is the page average below which a warning is
// emitted.
const LowConfidenceThreshold = 0.5

// MinCJKRatio is the share of CJK letters below which a page is flagged as
// probably not vertical CJK text.
const MinCJKRatio = 0.5

// OrderOptions holds configuration for reading order reconstruction.
type OrderOptions struct {
	// Page selection (1-indexed in API, stored as-is)
	pages []int

	// Clustering
	strategy layout.StrategyConfig
	custom   layout.ClusteringStrategy // overrides strategy when set

	// Input handling
	normalizeText bool

	logger zerolog.Logger
}

// defaultOptions returns the default ordering options.
func defaultOptions() OrderOptions {
	return OrderOptions{
		pages: nil, // nil means all pages
		strategy: layout.StrategyConfig{
			Name:       layout.StrategyDensityBased,
			Threshold:  layout.DefaultThreshold,
			Eps:        layout.DefaultEps,
			MinSamples: layout.DefaultMinSamples,
		},
		logger: zerolog.Nop(),
	}
}

// clone creates a deep copy of OrderOptions.
func (o OrderOptions) clone() OrderOptions {
	newOpts := o

	// Deep copy pages slice
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}

	return newOpts
}

// clusteringStrategy resolves the configured strategy.
func (o OrderOptions) clusteringStrategy() (layout.ClusteringStrategy, error) {
	if o.custom != nil {
		if err := o.custom.Validate(); err != nil {
			return nil, err
		}
		return o.custom, nil
	}
	return layout.NewStrategy(o.strategy)
}
