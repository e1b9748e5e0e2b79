package models

// Event status ids.
const (
	StatusPending  uint = 1
	StatusRejected uint = 2
	StatusActive   uint = 3
)

// LocationOnline is the location id for which a signup limit is optional.
const LocationOnline uint = 5

type EventCategory struct {
	EventCatID          uint   `json:"event_cat_id" gorm:"column:event_cat_id;primaryKey"`
	EventCatDescription string `json:"event_cat_description" gorm:"column:event_cat_description;size:45;not null"`
}

func (EventCategory) TableName() string { return "eventCategory" }

type EventType struct {
	EventTypeID          uint   `json:"event_type_id" gorm:"column:event_type_id;primaryKey"`
	EventTypeDescription string `json:"event_type_description" gorm:"column:event_type_description;size:45;not null"`
}

func (EventType) TableName() string { return "eventType" }

type EventLocation struct {
	EventLocationID          uint   `json:"event_location_id" gorm:"column:event_location_id;primaryKey"`
	EventLocationDescription string `json:"event_location_description" gorm:"column:event_location_description;size:100;not null"`
}

func (EventLocation) TableName() string { return "eventLocation" }

type EventStatus struct {
	EventStatusID uint   `json:"event_status_id" gorm:"column:event_status_id;primaryKey"`
	Description   string `json:"description" gorm:"column:description;size:45;not null"`
}

func (EventStatus) TableName() string { return "eventStatus" }

type RewardsType struct {
	RewardsTypeID          uint   `json:"rewards_type_id" gorm:"column:rewards_type_id;primaryKey"`
	RewardsTypeDescription string `json:"rewards_type_description" gorm:"column:rewards_type_description;size:45;not null"`
}

func (RewardsType) TableName() string { return "rewardsType" }
