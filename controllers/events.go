package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecohub-backend/listing"
	"ecohub-backend/models"
)

const homePageSize = 3

// Home returns the next three upcoming and the three most recent past events.
func (ctl *Controller) Home(c *gin.Context) {
	ctx := c.Request.Context()
	now := ctl.now()

	upSpec := listing.Events(listing.Upcoming)
	upSpec.PageSize = homePageSize
	up, err := listing.Find[models.Event](ctx, ctl.DB, upSpec, listing.Query{
		Page:   1,
		Scopes: []func(*gorm.DB) *gorm.DB{listing.Active, listing.InBucket(listing.Upcoming, now)},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	pastSpec := listing.Events(listing.Past)
	pastSpec.PageSize = homePageSize
	past, err := listing.Find[models.Event](ctx, ctl.DB, pastSpec, listing.Query{
		Page:   1,
		Scopes: []func(*gorm.DB) *gorm.DB{listing.Active, listing.InBucket(listing.Past, now)},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"upcomingEvents": up.Rows, "pastEvents": past.Rows})
}

func (ctl *Controller) listPublic(c *gin.Context, b listing.Bucket) {
	q := listQuery(c, "category", "type")
	q.Scopes = []func(*gorm.DB) *gorm.DB{listing.Active, listing.InBucket(b, ctl.now())}
	page, err := listing.Find[models.Event](c.Request.Context(), ctl.DB, listing.Events(b), q)
	if err != nil {
		respondError(c, err)
		return
	}
	pageJSON(c, "events", page)
}

func (ctl *Controller) UpcomingEvents(c *gin.Context) { ctl.listPublic(c, listing.Upcoming) }

func (ctl *Controller) PastEvents(c *gin.Context) { ctl.listPublic(c, listing.Past) }

// SortedEvents lists every active event regardless of date.
func (ctl *Controller) SortedEvents(c *gin.Context) { ctl.listPublic(c, listing.All) }

func (ctl *Controller) EventDetails(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var event models.Event
	err := ctl.DB.WithContext(c.Request.Context()).
		Scopes(listing.Active).
		Preload("EventType").Preload("EventLocation").Preload("EventCategory").Preload("Reward").
		First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, ErrEventNotFound)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

const similarLimit = 3

// SimilarEvents suggests up to three active future events: same category
// first, then the soonest event of each other category.
func (ctl *Controller) SimilarEvents(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	db := ctl.DB.WithContext(c.Request.Context())
	now := ctl.now()

	var current models.Event
	if err := db.First(&current, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrEventNotFound
		}
		respondError(c, err)
		return
	}

	upcoming := func() *gorm.DB {
		tx := db.Scopes(listing.Active, listing.InBucket(listing.Upcoming, now)).
			Preload("EventType").Preload("EventLocation").Preload("EventCategory")
		for _, o := range listing.EventOrder(listing.Upcoming) {
			tx = tx.Order(o)
		}
		return tx
	}

	similar := make([]models.Event, 0, similarLimit)
	if err := upcoming().
		Where("event_cat_id = ? AND event_id <> ?", current.EventCatID, current.EventID).
		Limit(similarLimit).Find(&similar).Error; err != nil {
		respondError(c, err)
		return
	}

	if len(similar) < similarLimit {
		var others []models.EventCategory
		if err := db.Where("event_cat_id <> ?", current.EventCatID).
			Order("event_cat_id").Find(&others).Error; err != nil {
			respondError(c, err)
			return
		}
		for _, cat := range others {
			if len(similar) >= similarLimit {
				break
			}
			var next []models.Event
			if err := upcoming().
				Where("event_cat_id = ? AND event_id <> ?", cat.EventCatID, current.EventID).
				Limit(1).Find(&next).Error; err != nil {
				respondError(c, err)
				return
			}
			similar = append(similar, next...)
		}
	}

	c.JSON(http.StatusOK, similar)
}

func (ctl *Controller) Categories(c *gin.Context) {
	var rows []models.EventCategory
	ctl.lookup(c, &rows, "event_cat_id")
}

func (ctl *Controller) Types(c *gin.Context) {
	var rows []models.EventType
	ctl.lookup(c, &rows, "event_type_id")
}

func (ctl *Controller) Locations(c *gin.Context) {
	var rows []models.EventLocation
	ctl.lookup(c, &rows, "event_location_id")
}

func (ctl *Controller) Statuses(c *gin.Context) {
	var rows []models.EventStatus
	ctl.lookup(c, &rows, "event_status_id")
}

func (ctl *Controller) lookup(c *gin.Context, dest interface{}, orderBy string) {
	if err := ctl.DB.WithContext(c.Request.Context()).Order(orderBy).Find(dest).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dest)
}
