package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ClockLayout is the wire and storage format of event start/end times.
const ClockLayout = "15:04"

// DateLayout is the calendar-day format accepted for event_date.
const DateLayout = "2006-01-02"

// Event is the core event model. StartsAt is derived from EventDate and
// EventStartTime on every save and is the only column used for time
// bucketing and ordering.
type Event struct {
	EventID          uint      `json:"event_id" gorm:"column:event_id;primaryKey"`
	EventTypeID      uint      `json:"event_type_id" gorm:"column:event_type_id;not null"`
	EventTitle       string    `json:"event_title" gorm:"column:event_title;size:100;not null"`
	EventStartTime   string    `json:"event_start_time" gorm:"column:event_start_time;size:5;not null"`
	EventEndTime     string    `json:"event_end_time" gorm:"column:event_end_time;size:5;not null"`
	EventLocationID  uint      `json:"event_location_id" gorm:"column:event_location_id;not null"`
	RewardID         uint      `json:"reward_id" gorm:"column:reward_id;not null"`
	EventDescription string    `json:"event_description" gorm:"column:event_description;size:1000;not null"`
	EventCatID       uint      `json:"event_cat_id" gorm:"column:event_cat_id;not null;index"`
	EventDate        time.Time `json:"event_date" gorm:"column:event_date;not null"`
	StartsAt         time.Time `json:"starts_at" gorm:"column:starts_at;not null;index"`
	EventStatusID    uint      `json:"event_status_id" gorm:"column:event_status_id;not null;index"`
	UserID           uint      `json:"user_id" gorm:"column:user_id;not null;index"`
	ImageFile        string    `json:"imageFile" gorm:"column:imageFile;size:255"`
	SignupLimit      *int      `json:"signup_limit" gorm:"column:signup_limit"`

	EventType     *EventType     `json:"eventType,omitempty" gorm:"foreignKey:EventTypeID;references:EventTypeID"`
	EventLocation *EventLocation `json:"eventLocation,omitempty" gorm:"foreignKey:EventLocationID;references:EventLocationID"`
	EventCategory *EventCategory `json:"eventCategory,omitempty" gorm:"foreignKey:EventCatID;references:EventCatID"`
	EventStatus   *EventStatus   `json:"eventStatus,omitempty" gorm:"foreignKey:EventStatusID;references:EventStatusID"`
	Reward        *Reward        `json:"reward,omitempty" gorm:"foreignKey:RewardID;references:RewardID"`
	User          *User          `json:"user,omitempty" gorm:"foreignKey:UserID;references:UserID"`
}

func (Event) TableName() string {
	return "events"
}

// BeforeSave keeps StartsAt in step with the date and start time.
func (e *Event) BeforeSave(tx *gorm.DB) error {
	if e.EventStartTime == "" {
		return nil
	}
	startsAt, err := CombineDateClock(e.EventDate, e.EventStartTime)
	if err != nil {
		return err
	}
	e.EventDate = startsAt.Truncate(24 * time.Hour)
	e.StartsAt = startsAt
	return nil
}

// CombineDateClock returns the UTC instant of clock ("HH:MM") on day's calendar date.
func CombineDateClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, use HH:MM", clock)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// ParseEventDate accepts RFC3339 or YYYY-MM-DD and keeps only the calendar day.
func ParseEventDate(s string) (time.Time, error) {
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		d, err = time.Parse(DateLayout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date format (use RFC3339 or YYYY-MM-DD)")
		}
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
}
