package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/histpath/readingorder/model"
)

// Default clustering parameters, in the coordinate units of the input
// (pixels for image backends).
const (
	DefaultThreshold  = 50.0
	DefaultEps        = 120.0
	DefaultMinSamples = 1
)

// Strategy names accepted by NewStrategy.
const (
	StrategySequential   = "sequential"
	StrategyDensityBased = "dbscan"
)

// ClusteringStrategy partitions elements into columns using the proximity of
// their center X only. Implementations must be deterministic for a given
// input order and must place every element in exactly one column.
type ClusteringStrategy interface {
	// Name identifies the strategy in logs and configuration.
	Name() string

	// Validate reports ErrConfiguration for out-of-range parameters.
	Validate() error

	// Cluster groups the elements. Column IDs are assigned in creation
	// order starting at 0.
	Cluster(elements []*model.Element) ([]*Column, error)
}

// Sequential groups elements in one pass over them sorted by center X: an
// element joins the open column when it lies within Threshold of the
// column's running mean, otherwise it starts a new column. Earlier decisions
// are never revisited.
type Sequential struct {
	Threshold float64
}

// DefaultSequential returns a Sequential strategy with the default threshold.
func DefaultSequential() Sequential {
	return Sequential{Threshold: DefaultThreshold}
}

// Name implements ClusteringStrategy.
func (s Sequential) Name() string {
	return StrategySequential
}

// Validate implements ClusteringStrategy.
func (s Sequential) Validate() error {
	if !(s.Threshold >= 0) {
		return &ConfigError{Strategy: s.Name(), Param: "threshold", Value: s.Threshold}
	}
	return nil
}

// Cluster implements ClusteringStrategy.
func (s Sequential) Cluster(elements []*model.Element) ([]*Column, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, nil
	}

	sorted := sortedByX(elements)

	current := newColumn(0)
	current.add(sorted[0])
	columns := []*Column{current}

	for _, e := range sorted[1:] {
		if current.distance(e.CenterX()) <= s.Threshold {
			current.add(e)
			continue
		}
		current = newColumn(len(columns))
		current.add(e)
		columns = append(columns, current)
	}

	return columns, nil
}

// DensityBased clusters elements with DBSCAN over their center X.
//
// The neighborhood of an element is every element (itself included) whose
// center X lies within Eps. Elements with at least MinSamples neighbors are
// core points; clusters grow through chains of core points and absorb
// border points. Remaining elements are noise and are reassigned, in input
// order, to the column whose current mean is closest (lowest column ID on
// ties). The chosen column's mean is updated before the next noise element
// is placed.
//
// With MinSamples = 1 every element is a core point and no noise arises.
type DensityBased struct {
	Eps        float64
	MinSamples int

	// MaxReassignDistance caps how far a noise element may be moved to join
	// a column. A noise element farther than this from every column starts
	// its own column. Zero means no cap.
	MaxReassignDistance float64
}

// DefaultDensityBased returns a DensityBased strategy with default eps and
// min samples, and no reassignment cap.
func DefaultDensityBased() DensityBased {
	return DensityBased{Eps: DefaultEps, MinSamples: DefaultMinSamples}
}

// Name implements ClusteringStrategy.
func (s DensityBased) Name() string {
	return StrategyDensityBased
}

// Validate implements ClusteringStrategy.
func (s DensityBased) Validate() error {
	if !(s.Eps > 0) {
		return &ConfigError{Strategy: s.Name(), Param: "eps", Value: s.Eps}
	}
	if s.MinSamples < 1 {
		return &ConfigError{Strategy: s.Name(), Param: "min_samples", Value: float64(s.MinSamples)}
	}
	if !(s.MaxReassignDistance >= 0) {
		return &ConfigError{Strategy: s.Name(), Param: "max_reassign_distance", Value: s.MaxReassignDistance}
	}
	return nil
}

const (
	labelUnvisited = -2
	labelNoise     = -1
)

// Cluster implements ClusteringStrategy.
func (s DensityBased) Cluster(elements []*model.Element) ([]*Column, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, nil
	}

	labels := s.labels(elements)

	var columns []*Column
	for i, label := range labels {
		if label == labelNoise {
			continue
		}
		for label >= len(columns) {
			columns = append(columns, newColumn(len(columns)))
		}
		columns[label].add(elements[i])
	}

	for i, label := range labels {
		if label != labelNoise {
			continue
		}
		columns = s.reassign(columns, elements[i])
	}

	return columns, nil
}

// labels runs DBSCAN and returns a cluster label (or labelNoise) per
// element. Clusters are seeded in input order.
func (s DensityBased) labels(elements []*model.Element) []int {
	idx := newNeighborIndex(elements, s.Eps)

	labels := make([]int, len(elements))
	for i := range labels {
		labels[i] = labelUnvisited
	}

	cluster := 0
	for i := range elements {
		if labels[i] != labelUnvisited {
			continue
		}
		neighbors := idx.neighbors(i)
		if len(neighbors) < s.MinSamples {
			labels[i] = labelNoise
			continue
		}

		labels[i] = cluster
		queue := neighbors
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]

			if labels[j] == labelNoise {
				labels[j] = cluster // border point
				continue
			}
			if labels[j] != labelUnvisited {
				continue
			}
			labels[j] = cluster

			if next := idx.neighbors(j); len(next) >= s.MinSamples {
				queue = append(queue, next...)
			}
		}
		cluster++
	}

	return labels
}

// reassign places one noise element and returns the (possibly grown)
// column list.
func (s DensityBased) reassign(columns []*Column, e *model.Element) []*Column {
	if len(columns) == 0 {
		col := newColumn(0)
		col.add(e)
		return append(columns, col)
	}

	nearest := columns[0]
	best := nearest.distance(e.CenterX())
	for _, col := range columns[1:] {
		if d := col.distance(e.CenterX()); d < best {
			nearest, best = col, d
		}
	}

	if s.MaxReassignDistance > 0 && best > s.MaxReassignDistance {
		col := newColumn(len(columns))
		col.add(e)
		return append(columns, col)
	}

	nearest.add(e)
	return columns
}

// neighborIndex answers eps-neighborhood queries on center X. Positions are
// kept sorted by X so a neighborhood is a contiguous run.
type neighborIndex struct {
	eps   float64
	xs    []float64 // center X in sorted order
	order []int     // input position, parallel to xs
	pos   []int     // position in xs, indexed by input position
}

func newNeighborIndex(elements []*model.Element, eps float64) *neighborIndex {
	order := make([]int, len(elements))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := elements[order[a]], elements[order[b]]
		if ea.CenterX() != eb.CenterX() {
			return ea.CenterX() < eb.CenterX()
		}
		return ea.Index() < eb.Index()
	})

	idx := &neighborIndex{
		eps:   eps,
		xs:    make([]float64, len(order)),
		order: order,
		pos:   make([]int, len(order)),
	}
	for p, i := range order {
		idx.xs[p] = elements[i].CenterX()
		idx.pos[i] = p
	}
	return idx
}

// neighbors returns the input positions of every element within eps of
// element i, i itself included, in ascending X order.
func (n *neighborIndex) neighbors(i int) []int {
	p := n.pos[i]
	x := n.xs[p]

	lo := p
	for lo > 0 && x-n.xs[lo-1] <= n.eps {
		lo--
	}
	hi := p
	for hi < len(n.xs)-1 && n.xs[hi+1]-x <= n.eps {
		hi++
	}

	out := make([]int, hi-lo+1)
	copy(out, n.order[lo:hi+1])
	return out
}

// StrategyConfig is the flat, configuration-file friendly description of a
// clustering strategy.
type StrategyConfig struct {
	Name                string
	Threshold           float64
	Eps                 float64
	MinSamples          int
	MaxReassignDistance float64
}

// NewStrategy builds and validates the strategy named in config. Accepted
// names are "sequential", "dbscan" and its alias "density".
func NewStrategy(config StrategyConfig) (ClusteringStrategy, error) {
	var strategy ClusteringStrategy
	switch strings.ToLower(strings.TrimSpace(config.Name)) {
	case StrategySequential, "threshold":
		strategy = Sequential{Threshold: config.Threshold}
	case StrategyDensityBased, "density", "":
		strategy = DensityBased{
			Eps:                 config.Eps,
			MinSamples:          config.MinSamples,
			MaxReassignDistance: config.MaxReassignDistance,
		}
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrConfiguration, config.Name)
	}

	if err := strategy.Validate(); err != nil {
		return nil, err
	}
	return strategy, nil
}

// StrategyFromName returns the named strategy with default parameters.
func StrategyFromName(name string) (ClusteringStrategy, error) {
	return NewStrategy(StrategyConfig{
		Name:       name,
		Threshold:  DefaultThreshold,
		Eps:        DefaultEps,
		MinSamples: DefaultMinSamples,
	})
}
