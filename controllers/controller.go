// Package controllers holds the gin handlers for every EcoHub endpoint.
package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecohub-backend/listing"
	"ecohub-backend/middleware"
	"ecohub-backend/rbac"
	"ecohub-backend/utils"
)

// Controller carries the dependencies shared by all handlers.
type Controller struct {
	DB        *gorm.DB
	Tokens    *utils.TokenIssuer
	Enforcer  *rbac.Enforcer
	Google    utils.GoogleVerifier
	UploadDir string
	// Now is the clock used for upcoming/past decisions.
	Now func() time.Time
}

func New(db *gorm.DB, tokens *utils.TokenIssuer, en *rbac.Enforcer, google utils.GoogleVerifier, uploadDir string) *Controller {
	return &Controller{
		DB:        db,
		Tokens:    tokens,
		Enforcer:  en,
		Google:    google,
		UploadDir: uploadDir,
		Now:       time.Now,
	}
}

func (ctl *Controller) now() time.Time {
	return ctl.Now().UTC()
}

// canActFor reports whether the caller may act on behalf of userID: always
// for themselves, otherwise only with manage rights on obj.
func (ctl *Controller) canActFor(c *gin.Context, userID uint, obj string) bool {
	callerID, ok := middleware.GetUserID(c)
	if !ok {
		return false
	}
	if callerID == userID {
		return true
	}
	return ctl.Enforcer.Enforce(middleware.GetRole(c), obj, rbac.ActionManage)
}

// attendanceOwner is the owner filter for attendance routes: 0 (any event)
// for admins, otherwise the caller's own id.
func (ctl *Controller) attendanceOwner(c *gin.Context) uint {
	if ctl.Enforcer.Enforce(middleware.GetRole(c), rbac.ResourceAdmin, rbac.ActionManage) {
		return 0
	}
	userID, _ := middleware.GetUserID(c)
	return userID
}

func jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		jsonError(c, 400, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// pageJSON renders a listing page with its rows under key.
func pageJSON[T any](c *gin.Context, key string, page *listing.Page[T]) {
	c.JSON(200, gin.H{
		key:           page.Rows,
		"currentPage": page.CurrentPage,
		"totalPages":  page.TotalPages,
		"totalRows":   page.TotalRows,
	})
}

// listQuery collects the common page/search/filter parameters. The page
// comes from the path when the route has one, otherwise from ?page=.
func listQuery(c *gin.Context, filters ...string) listing.Query {
	page := c.Param("page")
	if page == "" {
		page = c.Query("page")
	}
	q := listing.Query{
		Page:   listing.ParsePage(page),
		Search: c.Query("search"),
		Params: map[string]string{},
	}
	for _, f := range filters {
		q.Params[f] = c.Query(f)
	}
	return q
}
