package controllers

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"ecohub-backend/models"
	"ecohub-backend/validation"
)

// EventRequest is the body of every event create or update.
type EventRequest struct {
	EventCatID       uint   `json:"event_cat_id" binding:"required"`
	EventTypeID      uint   `json:"event_type_id" binding:"required"`
	EventLocationID  uint   `json:"event_location_id" binding:"required"`
	RewardID         uint   `json:"reward_id" binding:"required"`
	EventTitle       string `json:"event_title" binding:"required,min=3,max=100"`
	EventDescription string `json:"event_description" binding:"required,min=3,max=1000"`
	EventDate        string `json:"event_date" binding:"required"`
	EventStartTime   string `json:"event_start_time" binding:"required,clock"`
	EventEndTime     string `json:"event_end_time" binding:"required,clock"`
	EventStatusID    uint   `json:"event_status_id" binding:"omitempty,oneof=1 2 3"`
	ImageFile        string `json:"imageFile" binding:"max=255"`
	SignupLimit      *int   `json:"signup_limit" binding:"omitempty,gt=0"`
}

// EventPatch is a partial update. Nil fields keep their current value.
type EventPatch struct {
	EventCatID       *uint   `json:"event_cat_id"`
	EventTypeID      *uint   `json:"event_type_id"`
	EventLocationID  *uint   `json:"event_location_id"`
	RewardID         *uint   `json:"reward_id"`
	EventTitle       *string `json:"event_title" binding:"omitempty,min=3,max=100"`
	EventDescription *string `json:"event_description" binding:"omitempty,min=3,max=1000"`
	EventDate        *string `json:"event_date"`
	EventStartTime   *string `json:"event_start_time" binding:"omitempty,clock"`
	EventEndTime     *string `json:"event_end_time" binding:"omitempty,clock"`
	EventStatusID    *uint   `json:"event_status_id" binding:"omitempty,oneof=1 2 3"`
	ImageFile        *string `json:"imageFile" binding:"omitempty,max=255"`
	SignupLimit      *int    `json:"signup_limit" binding:"omitempty,gt=0"`
}

func eventRequestFrom(e *models.Event) EventRequest {
	return EventRequest{
		EventCatID:       e.EventCatID,
		EventTypeID:      e.EventTypeID,
		EventLocationID:  e.EventLocationID,
		RewardID:         e.RewardID,
		EventTitle:       e.EventTitle,
		EventDescription: e.EventDescription,
		EventDate:        e.EventDate.Format(models.DateLayout),
		EventStartTime:   e.EventStartTime,
		EventEndTime:     e.EventEndTime,
		EventStatusID:    e.EventStatusID,
		ImageFile:        e.ImageFile,
		SignupLimit:      e.SignupLimit,
	}
}

// merge overlays the non-nil fields of p onto r.
func (p *EventPatch) merge(r *EventRequest) {
	if p.EventCatID != nil {
		r.EventCatID = *p.EventCatID
	}
	if p.EventTypeID != nil {
		r.EventTypeID = *p.EventTypeID
	}
	if p.EventLocationID != nil {
		r.EventLocationID = *p.EventLocationID
	}
	if p.RewardID != nil {
		r.RewardID = *p.RewardID
	}
	if p.EventTitle != nil {
		r.EventTitle = *p.EventTitle
	}
	if p.EventDescription != nil {
		r.EventDescription = *p.EventDescription
	}
	if p.EventDate != nil {
		r.EventDate = *p.EventDate
	}
	if p.EventStartTime != nil {
		r.EventStartTime = *p.EventStartTime
	}
	if p.EventEndTime != nil {
		r.EventEndTime = *p.EventEndTime
	}
	if p.EventStatusID != nil {
		r.EventStatusID = *p.EventStatusID
	}
	if p.ImageFile != nil {
		r.ImageFile = *p.ImageFile
	}
	if p.SignupLimit != nil {
		r.SignupLimit = p.SignupLimit
	}
}

// check validates the rules that span fields or need the database.
func (r *EventRequest) check(ctx context.Context, db *gorm.DB) ([]validation.FieldError, error) {
	var errs []validation.FieldError
	add := func(field, msg string) {
		errs = append(errs, validation.FieldError{Field: field, Message: msg})
	}

	r.EventTitle = strings.TrimSpace(r.EventTitle)
	r.EventDescription = strings.TrimSpace(r.EventDescription)
	if len(r.EventTitle) < 3 {
		add("event_title", "event_title must be at least 3 characters")
	}
	if len(r.EventDescription) < 3 {
		add("event_description", "event_description must be at least 3 characters")
	}

	if _, err := models.ParseEventDate(r.EventDate); err != nil {
		add("event_date", err.Error())
	}
	start, errStart := time.Parse(models.ClockLayout, r.EventStartTime)
	end, errEnd := time.Parse(models.ClockLayout, r.EventEndTime)
	if errStart == nil && errEnd == nil {
		r.EventStartTime = start.Format(models.ClockLayout)
		r.EventEndTime = end.Format(models.ClockLayout)
		if !end.After(start) {
			add("event_end_time", "event_end_time must be after event_start_time")
		}
	}
	if r.SignupLimit == nil && r.EventLocationID != models.LocationOnline {
		add("signup_limit", "Signup limit is required if location is not Online")
	}

	refs := []struct {
		field string
		model interface{}
		id    uint
	}{
		{"event_cat_id", &models.EventCategory{}, r.EventCatID},
		{"event_type_id", &models.EventType{}, r.EventTypeID},
		{"event_location_id", &models.EventLocation{}, r.EventLocationID},
		{"reward_id", &models.Reward{}, r.RewardID},
	}
	for _, ref := range refs {
		var count int64
		if err := db.WithContext(ctx).Model(ref.model).Where(ref.field+" = ?", ref.id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			add(ref.field, ref.field+" does not exist")
		}
	}
	return errs, nil
}

// apply copies the request onto e. Status is left to the caller.
func (r *EventRequest) apply(e *models.Event) {
	day, _ := models.ParseEventDate(r.EventDate)
	e.EventCatID = r.EventCatID
	e.EventTypeID = r.EventTypeID
	e.EventLocationID = r.EventLocationID
	e.RewardID = r.RewardID
	e.EventTitle = r.EventTitle
	e.EventDescription = r.EventDescription
	e.EventDate = day
	e.EventStartTime = r.EventStartTime
	e.EventEndTime = r.EventEndTime
	e.ImageFile = strings.TrimSpace(r.ImageFile)
	e.SignupLimit = r.SignupLimit
}
