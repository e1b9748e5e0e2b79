package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecohub-backend/listing"
	"ecohub-backend/middleware"
	"ecohub-backend/models"
)

// organiserEvents limits events to those created by organisers.
func organiserEvents(db *gorm.DB) *gorm.DB {
	sub := db.Session(&gorm.Session{NewDB: true}).Model(&models.User{}).
		Select("user_id").Where("user_type_id = ?", models.RoleOrganiser)
	return db.Where("user_id IN (?)", sub)
}

// AdminListProposals lists organiser proposals waiting for review.
func (ctl *Controller) AdminListProposals(c *gin.Context) {
	ctl.listManaged(c, "proposals", listing.WithStatus(models.StatusPending), organiserEvents)
}

func (ctl *Controller) AdminGetProposal(c *gin.Context) {
	ctl.showEvent(c, 0)
}

// AdminReviewProposal applies a partial update to any event, typically
// flipping event_status_id to accept (3) or reject (2) a proposal.
func (ctl *Controller) AdminReviewProposal(c *gin.Context) {
	ctl.updateEvent(c, 0, true, func(current *models.Event, req *EventRequest) (uint, error) {
		return req.EventStatusID, nil
	})
}

func (ctl *Controller) AdminListEvents(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctl.listManaged(c, "events", listing.OwnedBy(userID))
}

// AdminCreateEvent creates an event owned by the admin. Without an explicit
// status it is published immediately.
func (ctl *Controller) AdminCreateEvent(c *gin.Context) {
	ctl.createEvent(c, func(req *EventRequest) uint {
		if req.EventStatusID == 0 {
			return models.StatusActive
		}
		return req.EventStatusID
	})
}

func (ctl *Controller) AdminGetEvent(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctl.showEvent(c, userID)
}

func (ctl *Controller) AdminUpdateEvent(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctl.updateEvent(c, userID, false, func(current *models.Event, req *EventRequest) (uint, error) {
		if req.EventStatusID == 0 {
			return current.EventStatusID, nil
		}
		return req.EventStatusID, nil
	})
}

func (ctl *Controller) AdminDeleteEvent(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctl.deleteEvent(c, userID, nil)
}
