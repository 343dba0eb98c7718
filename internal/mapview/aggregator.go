// Package mapview assembles the nightlife map snapshot: venues around
// a point, what is happening now and soon, the latest activity, and
// which venues are trending. Each section comes from its own source
// and a failing source degrades to an empty section rather than
// failing the snapshot.
package mapview

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/onnwee/nightpulse/internal/event"
	"github.com/onnwee/nightpulse/internal/feed"
	"github.com/onnwee/nightpulse/internal/geo"
	"github.com/onnwee/nightpulse/internal/venue"
)

// Snapshot defaults.
const (
	DefaultRadiusKm    = 20.0
	EventHorizon       = 7 * 24 * time.Hour
	TrendingWindow     = 6 * time.Hour
	TrendingSize       = 5
	RecentActivitySize = 10
)

// VenueMarker is a venue pinned on the map with its distance from the
// snapshot center and the locality cell clients use to cluster
// overlapping pins.
type VenueMarker struct {
	*venue.Venue
	DistanceKm   float64 `json:"distance_km"`
	LocalityCell string  `json:"locality_cell"`
}

// TrendingVenue is a venue ranked by recent check-in momentum.
type TrendingVenue struct {
	*venue.Venue
	RecentCheckIns int `json:"recent_checkins"`
}

// Snapshot is one assembled map view.
type Snapshot struct {
	Center         geo.Coordinate        `json:"center"`
	RadiusKm       float64               `json:"radius_km"`
	Venues         []VenueMarker         `json:"venues"`
	Events         []*event.Event        `json:"events"`
	RecentActivity []*feed.ActivityEntry `json:"recent_activity"`
	Trending       []TrendingVenue       `json:"trending"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// ActivitySource serves the snapshot's activity strip.
type ActivitySource interface {
	Recent(ctx context.Context, limit int) ([]*feed.ActivityEntry, error)
}

// CheckInCounter reports check-in momentum per venue.
type CheckInCounter interface {
	RecentCheckIns(ctx context.Context, venueID string, window time.Duration) (int, error)
}

// Aggregator builds map snapshots from the domain stores.
type Aggregator struct {
	venues   venue.Repository
	events   event.Repository
	activity ActivitySource
	checkIns CheckInCounter
	logger   *slog.Logger
}

// NewAggregator creates a map aggregator.
func NewAggregator(venues venue.Repository, events event.Repository, activity ActivitySource, checkIns CheckInCounter, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		venues:   venues,
		events:   events,
		activity: activity,
		checkIns: checkIns,
		logger:   logger,
	}
}

// Snapshot assembles the map view around center. radiusKm <= 0 falls
// back to the default radius. The radius applies to venues only:
// events are included by time (live, or starting within the horizon)
// wherever they are.
func (a *Aggregator) Snapshot(ctx context.Context, center geo.Coordinate, radiusKm float64) (*Snapshot, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	now := time.Now()

	snap := &Snapshot{
		Center:         center,
		RadiusKm:       radiusKm,
		Venues:         []VenueMarker{},
		Events:         []*event.Event{},
		RecentActivity: []*feed.ActivityEntry{},
		Trending:       []TrendingVenue{},
		GeneratedAt:    now,
	}

	allVenues, err := a.venues.List(ctx)
	if err != nil {
		a.logger.Error("map snapshot: venue source failed", "error", err)
		allVenues = nil
	}

	snap.Venues = nearbyVenues(allVenues, center, radiusKm)
	snap.Trending = a.trendingVenues(ctx, allVenues, now)
	snap.Events = a.upcomingEvents(ctx, now)

	if a.activity != nil {
		entries, err := a.activity.Recent(ctx, RecentActivitySize)
		if err != nil {
			a.logger.Error("map snapshot: activity source failed", "error", err)
		} else {
			snap.RecentActivity = entries
		}
	}

	return snap, nil
}

// nearbyVenues filters to the radius and sorts closest first.
func nearbyVenues(all []*venue.Venue, center geo.Coordinate, radiusKm float64) []VenueMarker {
	results := venue.Search(all, venue.Filters{
		Center:   &center,
		RadiusKm: radiusKm,
		SortBy:   venue.SortByDistance,
	})

	markers := make([]VenueMarker, 0, len(results))
	for _, r := range results {
		markers = append(markers, VenueMarker{
			Venue:        r.Venue,
			DistanceKm:   r.DistanceKm,
			LocalityCell: r.Venue.LocalityCell(),
		})
	}
	return markers
}

// upcomingEvents returns live events plus those starting within the
// horizon, soonest first.
func (a *Aggregator) upcomingEvents(ctx context.Context, now time.Time) []*event.Event {
	all, err := a.events.List(ctx)
	if err != nil {
		a.logger.Error("map snapshot: event source failed", "error", err)
		return []*event.Event{}
	}

	horizon := now.Add(EventHorizon)
	out := []*event.Event{}
	for _, e := range all {
		if e.IsLive(now) || (e.IsUpcoming(now) && e.StartsAt.Before(horizon)) {
			out = append(out, e)
		}
	}
	return out
}

// trendingVenues ranks by check-in count within the trending window,
// breaking ties by current crowd, and keeps the top few.
func (a *Aggregator) trendingVenues(ctx context.Context, all []*venue.Venue, now time.Time) []TrendingVenue {
	if a.checkIns == nil || len(all) == 0 {
		return []TrendingVenue{}
	}

	ranked := make([]TrendingVenue, 0, len(all))
	for _, v := range all {
		count, err := a.checkIns.RecentCheckIns(ctx, v.ID, TrendingWindow)
		if err != nil {
			a.logger.Error("map snapshot: check-in counter failed",
				"error", err, "venue_id", v.ID)
			return []TrendingVenue{}
		}
		ranked = append(ranked, TrendingVenue{Venue: v, RecentCheckIns: count})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RecentCheckIns != ranked[j].RecentCheckIns {
			return ranked[i].RecentCheckIns > ranked[j].RecentCheckIns
		}
		return ranked[i].CurrentCrowd > ranked[j].CurrentCrowd
	})

	if len(ranked) > TrendingSize {
		ranked = ranked[:TrendingSize]
	}
	return ranked
}
