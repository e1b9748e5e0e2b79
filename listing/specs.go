package listing

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecohub-backend/models"
)

// Bucket restricts an event listing by start time.
type Bucket int

const (
	All Bucket = iota
	Upcoming
	Past
)

func col(name string, desc bool) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: name}, Desc: desc}
}

// EventOrder sorts upcoming and unbucketed listings soonest first and past
// listings most recent first.
func EventOrder(b Bucket) []clause.OrderByColumn {
	desc := b == Past
	return []clause.OrderByColumn{col("starts_at", desc), col("event_end_time", desc), col("event_id", desc)}
}

var eventLabels = []string{"EventType", "EventLocation", "EventCategory"}

// Events configures public event listings.
func Events(b Bucket) Spec {
	return Spec{
		PageSize:      DefaultPageSize,
		SearchColumns: []string{"event_title", "event_description"},
		Filters: map[string]string{
			"category": "event_cat_id",
			"type":     "event_type_id",
		},
		Order:    EventOrder(b),
		Preloads: eventLabels,
	}
}

// ManagedEvents configures admin and organiser event and proposal listings.
func ManagedEvents(b Bucket) Spec {
	s := Events(b)
	s.Filters["status"] = "event_status_id"
	s.Filters["location"] = "event_location_id"
	s.Preloads = append(append([]string{}, eventLabels...), "EventStatus")
	return s
}

func Users() Spec {
	return Spec{
		PageSize:      DefaultPageSize,
		SearchColumns: []string{"first_name", "last_name", "email", "username"},
		Filters:       map[string]string{"role": "user_type_id"},
		Order:         []clause.OrderByColumn{col("user_id", false)},
	}
}

func Rewards() Spec {
	return Spec{
		PageSize:      DefaultPageSize,
		SearchColumns: []string{"reward_name", "reward_description"},
		Filters:       map[string]string{"type": "rewards_type_id"},
		Order:         []clause.OrderByColumn{col("reward_id", false)},
		Preloads:      []string{"RewardsType"},
	}
}

// SignUps configures a user's sign-up history, newest first.
func SignUps() Spec {
	return Spec{
		PageSize: DefaultPageSize,
		Filters:  map[string]string{"eventId": "event_id"},
		Order:    []clause.OrderByColumn{col("SignUpDate", true), col("SignUpId", true)},
		Preloads: []string{"Event"},
	}
}

// Claims configures a user's claimed rewards, newest first.
func Claims() Spec {
	return Spec{
		PageSize: DefaultPageSize,
		Order:    []clause.OrderByColumn{col("claimDate", true), col("claim_Id", true)},
		Preloads: []string{"Reward", "Reward.RewardsType"},
	}
}

// InBucket compares starts_at against now.
func InBucket(b Bucket, now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch b {
		case Upcoming:
			return db.Where("starts_at > ?", now.UTC())
		case Past:
			return db.Where("starts_at <= ?", now.UTC())
		}
		return db
	}
}

// Active limits events to those visible to the public.
func Active(db *gorm.DB) *gorm.DB {
	return WithStatus(models.StatusActive)(db)
}

func WithStatus(ids ...uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("event_status_id IN ?", ids)
	}
}

// OwnedBy limits rows to those whose user_id is userID.
func OwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
