package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecohub-backend/listing"
	"ecohub-backend/log"
	"ecohub-backend/middleware"
	"ecohub-backend/models"
	"ecohub-backend/validation"
)

// bucketFor maps ?filter=upcoming|past to a bucket; anything else is All.
func bucketFor(filter string) listing.Bucket {
	switch filter {
	case "upcoming":
		return listing.Upcoming
	case "past":
		return listing.Past
	}
	return listing.All
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("EventType").Preload("EventLocation").Preload("EventCategory").
		Preload("EventStatus").Preload("Reward").Preload("User")
}

// loadEvent fetches an event with its labels. ownerID 0 means any owner.
func (ctl *Controller) loadEvent(ctx context.Context, id, ownerID uint) (*models.Event, error) {
	tx := ctl.DB.WithContext(ctx).Scopes(withDetails)
	if ownerID != 0 {
		tx = tx.Scopes(listing.OwnedBy(ownerID))
	}
	var event models.Event
	if err := tx.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// listManaged renders a paginated listing of events for admin and
// organiser views.
func (ctl *Controller) listManaged(c *gin.Context, key string, scopes ...func(*gorm.DB) *gorm.DB) {
	b := bucketFor(c.Query("filter"))
	spec := listing.ManagedEvents(b)
	spec.Preloads = append(spec.Preloads, "User")
	q := listQuery(c, "category", "type", "status", "location")
	q.Scopes = append(scopes, listing.InBucket(b, ctl.now()))
	page, err := listing.Find[models.Event](c.Request.Context(), ctl.DB, spec, q)
	if err != nil {
		respondError(c, err)
		return
	}
	pageJSON(c, key, page)
}

func (ctl *Controller) showEvent(c *gin.Context, ownerID uint) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	event, err := ctl.loadEvent(c.Request.Context(), id, ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// createEvent stores a new event owned by the caller with the given status.
func (ctl *Controller) createEvent(c *gin.Context, status func(req *EventRequest) uint) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctx := c.Request.Context()
	ferrs, err := req.check(ctx, ctl.DB)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(ferrs) > 0 {
		fieldErrors(c, ferrs)
		return
	}

	userID, _ := middleware.GetUserID(c)
	event := models.Event{UserID: userID, EventStatusID: status(&req)}
	req.apply(&event)
	if err := ctl.DB.WithContext(ctx).Omit(clause.Associations).Create(&event).Error; err != nil {
		respondError(c, err)
		return
	}
	log.InfoLog("event created", "event_id", event.EventID, "user_id", userID, "status", event.EventStatusID)
	c.JSON(http.StatusCreated, event)
}

// updateRule decides, given the stored event, whether it may be changed
// and which status it ends up with.
type updateRule func(current *models.Event, req *EventRequest) (uint, error)

// updateEvent replaces an event's fields. ownerID 0 means any owner. With
// partial set the body is merged onto the stored values instead of
// replacing them.
func (ctl *Controller) updateEvent(c *gin.Context, ownerID uint, partial bool, rule updateRule) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req EventRequest
	var patch EventPatch
	if partial {
		if err := c.ShouldBindJSON(&patch); err != nil {
			bindError(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	var event models.Event
	var invalid []validation.FieldError
	err := ctl.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if ownerID != 0 {
			q = q.Scopes(listing.OwnedBy(ownerID))
		}
		if err := q.First(&event, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if partial {
			req = eventRequestFrom(&event)
			patch.merge(&req)
		}
		status, err := rule(&event, &req)
		if err != nil {
			return err
		}
		errs, err := req.check(ctx, tx)
		if err != nil {
			return err
		}
		if len(errs) > 0 {
			invalid = errs
			return errRollback
		}
		req.apply(&event)
		event.EventStatusID = status
		return tx.Omit(clause.Associations).Save(&event).Error
	})
	if len(invalid) > 0 {
		fieldErrors(c, invalid)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	log.InfoLog("event updated", "event_id", event.EventID, "status", event.EventStatusID)
	c.JSON(http.StatusOK, gin.H{"message": "Event was updated successfully.", "event": event})
}

// errRollback aborts a transaction whose outcome was already decided.
var errRollback = errors.New("rollback")

// deleteEvent removes an event and its signups. allowed may veto the
// deletion based on the stored event.
func (ctl *Controller) deleteEvent(c *gin.Context, ownerID uint, allowed func(*models.Event) error) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	err := ctl.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		q := tx
		if ownerID != 0 {
			q = q.Scopes(listing.OwnedBy(ownerID))
		}
		var event models.Event
		if err := q.First(&event, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if allowed != nil {
			if err := allowed(&event); err != nil {
				return err
			}
		}
		if err := tx.Where("event_id = ?", id).Delete(&models.EventSignUp{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	log.InfoLog("event deleted", "event_id", id)
	c.JSON(http.StatusOK, gin.H{"message": "Event was deleted successfully."})
}
