package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecohub-backend/listing"
	"ecohub-backend/log"
	"ecohub-backend/validation"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrEventNotActive  = errors.New("event is not open for signup")
	ErrEventStarted    = errors.New("event has already started")
	ErrEventFull       = errors.New("event is full")
	ErrAlreadySignedUp = errors.New("user has already signed up for this event")
	ErrSignupNotFound  = errors.New("user has not signed up for this event")
	ErrUserNotFound    = errors.New("user not found")
	ErrRewardNotFound  = errors.New("reward not found")
	ErrRewardExhausted = errors.New("reward is fully claimed")
	ErrRewardInUse     = errors.New("reward is still linked to events")
	ErrUserOwnsEvents  = errors.New("user still owns events")
	ErrNotEditable     = errors.New("only pending or rejected proposals can be changed")
	ErrEmailTaken      = errors.New("email already exists")
	ErrUsernameTaken   = errors.New("username already exists")
)

// MissingSignupsError lists users in an attendance batch who never signed up.
type MissingSignupsError struct {
	UserIDs []uint
}

func (e *MissingSignupsError) Error() string {
	return fmt.Sprintf("no signup for users %v", e.UserIDs)
}

func statusFor(err error) int {
	var missing *MissingSignupsError
	switch {
	case errors.As(err, &missing):
		return http.StatusNotFound
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, ErrEventNotFound),
		errors.Is(err, ErrSignupNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrRewardNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEventNotActive),
		errors.Is(err, ErrEventStarted),
		errors.Is(err, ErrEventFull),
		errors.Is(err, ErrAlreadySignedUp),
		errors.Is(err, ErrRewardExhausted),
		errors.Is(err, ErrRewardInUse),
		errors.Is(err, ErrUserOwnsEvents),
		errors.Is(err, ErrNotEditable):
		return http.StatusConflict
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, listing.ErrInvalidFilter):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError maps err to a status and body. Unknown errors are logged
// and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.ErrorLog("request failed", "method", c.Request.Method, "uri", c.Request.URL.RequestURI(), "err", err)
		_ = c.Error(err)
		jsonError(c, code, "Server error")
		return
	}
	var missing *MissingSignupsError
	if errors.As(err, &missing) {
		c.JSON(code, gin.H{"error": "Some users have not signed up for this event", "missing": missing.UserIDs})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		jsonError(c, code, "Not found")
		return
	}
	jsonError(c, code, err.Error())
}

// bindError renders a binding failure as a field error list.
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors(err)})
}

func fieldErrors(c *gin.Context, errs []validation.FieldError) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
}
