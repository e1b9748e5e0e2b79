package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecohub-backend/listing"
	"ecohub-backend/log"
	"ecohub-backend/middleware"
	"ecohub-backend/models"
	"ecohub-backend/rbac"
)

type SignupRequest struct {
	UserID  uint `json:"userId" form:"userId"`
	EventID uint `json:"eventId" form:"eventId" binding:"required"`
}

// target resolves whose signup the request is about, defaulting to the
// caller, and rejects acting for someone else without manage rights.
func (ctl *Controller) signupTarget(c *gin.Context, req *SignupRequest) bool {
	if req.UserID == 0 {
		req.UserID, _ = middleware.GetUserID(c)
	}
	if !ctl.canActFor(c, req.UserID, rbac.ResourceEvents) {
		jsonError(c, http.StatusForbidden, "You can only manage your own signups")
		return false
	}
	return true
}

func (ctl *Controller) CheckSignup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	if !ctl.signupTarget(c, &req) {
		return
	}

	var count int64
	err := ctl.DB.WithContext(c.Request.Context()).Model(&models.EventSignUp{}).
		Where("user_id = ? AND event_id = ?", req.UserID, req.EventID).
		Count(&count).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasSignedUp": count > 0})
}

// SignUp registers a user for an active, future event with room left.
func (ctl *Controller) SignUp(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !ctl.signupTarget(c, &req) {
		return
	}

	var signup models.EventSignUp
	err := ctl.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, req.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if event.EventStatusID != models.StatusActive {
			return ErrEventNotActive
		}
		if !event.StartsAt.After(ctl.now()) {
			return ErrEventStarted
		}
		if err := tx.Select("user_id").First(&models.User{}, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.EventSignUp{}).
			Where("event_id = ? AND user_id = ?", req.EventID, req.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadySignedUp
		}

		if event.SignupLimit != nil {
			var taken int64
			if err := tx.Model(&models.EventSignUp{}).
				Where("event_id = ? AND status = ?", req.EventID, models.SignUpRegistered).
				Count(&taken).Error; err != nil {
				return err
			}
			if taken >= int64(*event.SignupLimit) {
				return ErrEventFull
			}
		}

		signup = models.EventSignUp{
			EventID:    req.EventID,
			UserID:     req.UserID,
			SignUpDate: ctl.now(),
			Status:     models.SignUpRegistered,
			Attendance: models.AttendanceNotMarked,
		}
		if err := tx.Create(&signup).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadySignedUp
			}
			return err
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.InfoLog("signup created", "event_id", req.EventID, "user_id", req.UserID)
	c.JSON(http.StatusCreated, signup)
}

func (ctl *Controller) Withdraw(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	if !ctl.signupTarget(c, &req) {
		return
	}

	res := ctl.DB.WithContext(c.Request.Context()).
		Where("event_id = ? AND user_id = ?", req.EventID, req.UserID).
		Delete(&models.EventSignUp{})
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, ErrSignupNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Withdraw successful"})
}

// UserSignups lists a user's signups with their events, newest first.
func (ctl *Controller) UserSignups(c *gin.Context) {
	var req struct {
		UserID uint `form:"userId"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.UserID == 0 {
		req.UserID, _ = middleware.GetUserID(c)
	}
	if !ctl.canActFor(c, req.UserID, rbac.ResourceEvents) {
		jsonError(c, http.StatusForbidden, "You can only view your own signups")
		return
	}

	q := listQuery(c, "eventId")
	q.Scopes = []func(*gorm.DB) *gorm.DB{listing.OwnedBy(req.UserID)}
	page, err := listing.Find[models.EventSignUp](c.Request.Context(), ctl.DB, listing.SignUps(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	pageJSON(c, "signups", page)
}
