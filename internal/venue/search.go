package venue

import (
	"sort"
	"time"

	"github.com/onnwee/nightpulse/internal/geo"
)

// DefaultRadiusKm is the default proximity radius for venue search.
const DefaultRadiusKm = 10.0

// Sort key constants for venue search results.
const (
	SortByDistance = "distance"
	SortByCrowd    = "crowd"
	SortByRating   = "rating"
)

// Filters describes the smart filters applied to a venue search.
// Zero values mean "no filter" for the corresponding field.
type Filters struct {
	// Center enables proximity filtering when non-nil. RadiusKm
	// defaults to DefaultRadiusKm when <= 0.
	Center   *geo.Coordinate
	RadiusKm float64

	Genre     string
	PriceTier string
	VibeLevel string

	MinCrowd  *int
	MaxCrowd  *int
	MinRating *float64

	// OpenNow filters to venues open at Now.
	OpenNow bool

	// LiveVenueIDs, when non-nil, restricts results to venues with a
	// currently live event. The caller resolves the set from the event
	// store so search stays independent of it.
	LiveVenueIDs map[string]bool

	// Now is the reference instant for OpenNow. Zero means time.Now().
	Now time.Time

	// SortBy is one of the SortBy* constants; default is distance when
	// a center is given, otherwise most recently updated first.
	SortBy string
}

// Result is a venue annotated with its distance from the search center.
type Result struct {
	*Venue
	DistanceKm float64 `json:"distance_km"`
}

// Search filters and sorts venues. It is a pure function over the given
// slice; the repository provides the candidates.
func Search(venues []*Venue, f Filters) []Result {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}

	radius := f.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}

	// Resolve the radius cut up front; the loop below then only
	// applies the attribute filters.
	var inRange map[string]float64
	if f.Center != nil {
		candidates := make([]geo.Candidate, 0, len(venues))
		for _, v := range venues {
			candidates = append(candidates, geo.Candidate{ID: v.ID, Point: v.Location})
		}
		inRange = make(map[string]float64, len(candidates))
		for _, m := range geo.WithinRadius(*f.Center, radius, candidates) {
			inRange[m.ID] = m.DistanceKm
		}
	}

	results := make([]Result, 0, len(venues))
	for _, v := range venues {
		if f.Genre != "" && v.Genre != f.Genre {
			continue
		}
		if f.PriceTier != "" && v.PriceTier != f.PriceTier {
			continue
		}
		if f.VibeLevel != "" && v.VibeLevel != f.VibeLevel {
			continue
		}
		if f.MinCrowd != nil && v.CurrentCrowd < *f.MinCrowd {
			continue
		}
		if f.MaxCrowd != nil && v.CurrentCrowd > *f.MaxCrowd {
			continue
		}
		if f.MinRating != nil && v.AverageRating < *f.MinRating {
			continue
		}
		if f.OpenNow && !v.IsOpenAt(now) {
			continue
		}
		if f.LiveVenueIDs != nil && !f.LiveVenueIDs[v.ID] {
			continue
		}

		res := Result{Venue: v}
		if f.Center != nil {
			d, ok := inRange[v.ID]
			if !ok {
				continue
			}
			res.DistanceKm = roundKm(d)
		}
		results = append(results, res)
	}

	sortResults(results, f)
	return results
}

func sortResults(results []Result, f Filters) {
	switch f.SortBy {
	case SortByCrowd:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].CurrentCrowd > results[j].CurrentCrowd
		})
	case SortByRating:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].AverageRating > results[j].AverageRating
		})
	case SortByDistance:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].DistanceKm < results[j].DistanceKm
		})
	default:
		if f.Center != nil {
			sort.SliceStable(results, func(i, j int) bool {
				return results[i].DistanceKm < results[j].DistanceKm
			})
		} else {
			sort.SliceStable(results, func(i, j int) bool {
				return results[i].LastUpdated.After(results[j].LastUpdated)
			})
		}
	}
}

// roundKm rounds a distance to two decimals for display.
func roundKm(d float64) float64 {
	return float64(int(d*100+0.5)) / 100
}
