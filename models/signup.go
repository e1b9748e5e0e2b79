package models

import "time"

const (
	SignUpRegistered   = "registered"
	SignUpUnregistered = "unregistered"

	AttendanceMarked    = "marked"
	AttendanceNotMarked = "not_marked"
)

// EventSignUp is a user's registration for an event.
type EventSignUp struct {
	SignUpID   uint      `json:"SignUpId" gorm:"column:SignUpId;primaryKey"`
	EventID    uint      `json:"event_id" gorm:"column:event_id;not null;uniqueIndex:idx_signup_event_user"`
	UserID     uint      `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:idx_signup_event_user"`
	SignUpDate time.Time `json:"SignUpDate" gorm:"column:SignUpDate;not null"`
	Status     string    `json:"status" gorm:"column:status;size:16;not null;default:registered"`
	Attendance string    `json:"attendance" gorm:"column:attendance;size:16;not null;default:not_marked"`

	Event *Event `json:"events,omitempty" gorm:"foreignKey:EventID;references:EventID;constraint:OnDelete:CASCADE"`
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
}

func (EventSignUp) TableName() string {
	return "eventSignUp"
}
