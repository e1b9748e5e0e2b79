package controllers

import (
	"github.com/gin-gonic/gin"

	"ecohub-backend/listing"
	"ecohub-backend/middleware"
	"ecohub-backend/models"
)

// proposalStatuses are the statuses an organiser may still edit or withdraw.
var proposalStatuses = []uint{models.StatusPending, models.StatusRejected}

func isProposal(e *models.Event) bool {
	return e.EventStatusID == models.StatusPending || e.EventStatusID == models.StatusRejected
}

func (ctl *Controller) OrganiserListProposals(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctl.listManaged(c, "proposals", listing.OwnedBy(userID), listing.WithStatus(proposalStatuses...))
}

// OrganiserCreateProposal submits an event for review. It always starts
// pending, whatever the body says.
func (ctl *Controller) OrganiserCreateProposal(c *gin.Context) {
	ctl.createEvent(c, func(*EventRequest) uint {
		return models.StatusPending
	})
}

func (ctl *Controller) OrganiserGetProposal(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctl.showEvent(c, userID)
}

// organiserUpdate keeps the stored status, except that a rejected event
// goes back to pending for another review.
func organiserUpdate(current *models.Event, _ *EventRequest) (uint, error) {
	if current.EventStatusID == models.StatusRejected {
		return models.StatusPending, nil
	}
	return current.EventStatusID, nil
}

func (ctl *Controller) OrganiserUpdateProposal(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctl.updateEvent(c, userID, false, func(current *models.Event, req *EventRequest) (uint, error) {
		if !isProposal(current) {
			return 0, ErrNotEditable
		}
		return organiserUpdate(current, req)
	})
}

func (ctl *Controller) OrganiserDeleteProposal(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctl.deleteEvent(c, userID, func(e *models.Event) error {
		if !isProposal(e) {
			return ErrNotEditable
		}
		return nil
	})
}

// OrganiserListEvents lists the organiser's approved events.
func (ctl *Controller) OrganiserListEvents(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctl.listManaged(c, "events", listing.OwnedBy(userID), listing.Active)
}

func (ctl *Controller) OrganiserGetEvent(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctl.showEvent(c, userID)
}

func (ctl *Controller) OrganiserUpdateEvent(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctl.updateEvent(c, userID, false, organiserUpdate)
}

func (ctl *Controller) OrganiserDeleteEvent(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	ctl.deleteEvent(c, userID, nil)
}
