package analytics

import (
	"sort"

	"gorm.io/gorm"

	"clickpulse/internal/events"
	"clickpulse/internal/sessions"
	"clickpulse/internal/users"
)

// SessionJourney is one session in a user's journey, enriched with its own
// derived stats and the events that fell into it.
type SessionJourney struct {
	Session sessions.Session `json:"session"`
	Stats   UserStats        `json:"stats"`
	Events  []events.Event   `json:"events"`
}

// JourneyMetrics are the user's overall numbers for the journey window.
type JourneyMetrics struct {
	TotalEvents   int64   `json:"total_events"`
	Purchases     int64   `json:"purchases"`
	TotalTimeSec  float64 `json:"total_time_sec"`
	TotalSessions int64   `json:"total_sessions"`
}

// Journey is the per-user composite view: profile, sessions (newest first)
// with per-session stats, events without a session reference, overall
// metrics, and a per-day trend scoped to this user. Events in the
// no-session bucket count toward metrics and trend but toward no session.
type Journey struct {
	User            users.User       `json:"user"`
	Sessions        []SessionJourney `json:"sessions"`
	NoSessionEvents []events.Event   `json:"no_session_events"`
	Metrics         JourneyMetrics   `json:"metrics"`
	Trend           []TrendPoint     `json:"trend"`
}

// GetUserJourney assembles the journey for one user. Returns
// users.ErrUserNotFound when the id does not exist. The filter's event-type
// restriction narrows the events considered; the date range bounds both
// sessions and events.
func GetUserJourney(db *gorm.DB, f Filter, userID uint) (Journey, error) {
	user, err := users.GetUserByID(db, userID)
	if err != nil {
		return Journey{}, err
	}

	sessionList, err := sessions.GetSessionsForUser(db, userID, f.Range.From, f.Range.To)
	if err != nil {
		return Journey{}, err
	}

	eventList, err := events.GetEventsForUser(db, userID, f.Range.From, f.Range.To)
	if err != nil {
		return Journey{}, err
	}
	if f.EventType != "" {
		filtered := eventList[:0]
		for _, e := range eventList {
			if e.EventType == f.EventType {
				filtered = append(filtered, e)
			}
		}
		eventList = filtered
	}

	journey := Journey{
		User:            user,
		Sessions:        make([]SessionJourney, len(sessionList)),
		NoSessionEvents: []events.Event{},
	}

	sessionIdx := make(map[uint]int, len(sessionList))
	for i, s := range sessionList {
		journey.Sessions[i] = SessionJourney{Session: s, Events: []events.Event{}}
		sessionIdx[s.ID] = i
	}

	trendByDate := make(map[string]*TrendPoint)

	for _, e := range eventList {
		journey.Metrics.TotalEvents++
		journey.Metrics.TotalTimeSec += e.DurationSec
		if e.EventType == events.EventTypePurchase {
			journey.Metrics.Purchases++
		}

		day := e.Timestamp.UTC().Format("2006-01-02")
		point, exists := trendByDate[day]
		if !exists {
			point = &TrendPoint{Date: day}
			trendByDate[day] = point
		}
		point.TimeSpent += e.DurationSec
		switch e.EventType {
		case events.EventTypePageVisit:
			point.PageVisits++
		case events.EventTypePurchase:
			point.Purchases++
		}

		idx, inSession := sessionIdx[e.SessionID]
		if e.SessionID == events.NoSessionID || !inSession {
			journey.NoSessionEvents = append(journey.NoSessionEvents, e)
			continue
		}

		sj := &journey.Sessions[idx]
		sj.Events = append(sj.Events, e)
		sj.Stats.TimeSpent += e.DurationSec
		switch e.EventType {
		case events.EventTypePageVisit:
			sj.Stats.PagesVisited++
		case events.EventTypePurchase:
			sj.Stats.Purchases++
		}
	}

	journey.Metrics.TotalSessions = int64(len(sessionList))

	journey.Trend = make([]TrendPoint, 0, len(trendByDate))
	for _, point := range trendByDate {
		journey.Trend = append(journey.Trend, *point)
	}
	sort.Slice(journey.Trend, func(i, j int) bool {
		return journey.Trend[i].Date < journey.Trend[j].Date
	})

	return journey, nil
}
