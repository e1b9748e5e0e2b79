package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecohub-backend/listing"
	"ecohub-backend/log"
	"ecohub-backend/models"
)

type AttendanceRow struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	PhoneNo    string `json:"phone_no"`
	Status     string `json:"status"`
	Attendance string `json:"attendance"`
	EventTitle string `json:"event_title"`
}

type AttendanceUpdate struct {
	UserID     uint   `json:"userId" binding:"required"`
	Attendance string `json:"attendance" binding:"required,oneof=marked not_marked"`
}

type AttendanceRequest struct {
	AttendanceUpdates []AttendanceUpdate `json:"attendanceUpdates" binding:"required,min=1,dive"`
}

// ListAttendance lists everyone signed up for an event. Organisers only see
// events they created.
func (ctl *Controller) ListAttendance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	event, err := ctl.loadEvent(c.Request.Context(), id, ctl.attendanceOwner(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var signups []models.EventSignUp
	if err := ctl.DB.WithContext(c.Request.Context()).Preload("User").
		Where("event_id = ?", id).Order("user_id").Find(&signups).Error; err != nil {
		respondError(c, err)
		return
	}

	rows := make([]AttendanceRow, 0, len(signups))
	for _, s := range signups {
		row := AttendanceRow{
			UserID:     s.UserID,
			Username:   "N/A",
			PhoneNo:    "N/A",
			Status:     s.Status,
			Attendance: s.Attendance,
			EventTitle: event.EventTitle,
		}
		if s.User != nil {
			row.Username = s.User.Username
			row.PhoneNo = s.User.PhoneNo
		}
		rows = append(rows, row)
	}
	c.JSON(http.StatusOK, gin.H{"attendance": rows})
}

// UpdateAttendance applies a batch of attendance marks in one transaction.
// If any user in the batch never signed up, nothing is changed.
func (ctl *Controller) UpdateAttendance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ownerID := ctl.attendanceOwner(c)

	err := ctl.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Event{}).Where("event_id = ?", id)
		if ownerID != 0 {
			q = q.Scopes(listing.OwnedBy(ownerID))
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrEventNotFound
		}

		userIDs := make([]uint, 0, len(req.AttendanceUpdates))
		for _, u := range req.AttendanceUpdates {
			userIDs = append(userIDs, u.UserID)
		}
		var signedUp []uint
		if err := tx.Model(&models.EventSignUp{}).
			Where("event_id = ? AND user_id IN ?", id, userIDs).
			Pluck("user_id", &signedUp).Error; err != nil {
			return err
		}
		known := make(map[uint]bool, len(signedUp))
		for _, uid := range signedUp {
			known[uid] = true
		}
		var missing []uint
		for _, uid := range userIDs {
			if !known[uid] {
				missing = append(missing, uid)
				known[uid] = true
			}
		}
		if len(missing) > 0 {
			return &MissingSignupsError{UserIDs: missing}
		}

		for _, u := range req.AttendanceUpdates {
			if err := tx.Model(&models.EventSignUp{}).
				Where("event_id = ? AND user_id = ?", id, u.UserID).
				Update("attendance", u.Attendance).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.InfoLog("attendance updated", "event_id", id, "count", len(req.AttendanceUpdates))
	c.JSON(http.StatusOK, gin.H{"message": "Attendance updated successfully", "updated": len(req.AttendanceUpdates)})
}
