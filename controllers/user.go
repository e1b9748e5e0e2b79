package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecohub-backend/listing"
	"ecohub-backend/log"
	"ecohub-backend/middleware"
	"ecohub-backend/models"
	"ecohub-backend/rbac"
	"ecohub-backend/utils"
)

const loginFailed = "Email or password is not correct."

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,min=3,max=50,personname"`
	LastName  string `json:"last_name" binding:"required,min=3,max=50,personname"`
	Username  string `json:"username" binding:"required,min=3,max=50,username"`
	Email     string `json:"email" binding:"required,email,max=50"`
	Password  string `json:"password" binding:"required,min=8,max=50,password"`
	PhoneNo   string `json:"phone_no" binding:"required,phone"`
	Location  string `json:"location" binding:"required,min=3,max=50,place"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=50"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	RegisterRequest
	UserTypeID uint `json:"user_type_id" binding:"omitempty,oneof=1 2 3"`
}

type UpdateUserRequest struct {
	FirstName    string  `json:"first_name" binding:"required,min=3,max=50,personname"`
	LastName     string  `json:"last_name" binding:"required,min=3,max=50,personname"`
	Username     string  `json:"username" binding:"required,min=3,max=50,username"`
	Email        string  `json:"email" binding:"required,email,max=50"`
	PhoneNo      string  `json:"phone_no" binding:"required,phone"`
	Location     string  `json:"location" binding:"required,min=3,max=50,place"`
	ProfileImage *string `json:"profile_image" binding:"omitempty,max=255"`
	Password     *string `json:"password" binding:"omitempty,min=8,max=50,password"`
	UserTypeID   *uint   `json:"user_type_id" binding:"omitempty,oneof=1 2 3"`
}

type GoogleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ensureUnique fails if email or username belongs to a user other than exceptID.
func ensureUnique(tx *gorm.DB, email, username string, exceptID uint) error {
	var count int64
	if err := tx.Model(&models.User{}).
		Where("email = ? AND user_id <> ?", email, exceptID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	if err := tx.Model(&models.User{}).
		Where("username = ? AND user_id <> ?", username, exceptID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	return nil
}

func (ctl *Controller) createUser(c *gin.Context, req *RegisterRequest, role uint) (*models.User, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		UserTypeID: role,
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      normalizeEmail(req.Email),
		Username:   strings.TrimSpace(req.Username),
		PhoneNo:    req.PhoneNo,
		Password:   hash,
		Location:   strings.TrimSpace(req.Location),
	}
	err = ctl.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, user.Email, user.Username, 0); err != nil {
			return err
		}
		err := tx.Create(user).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	log.InfoLog("user created", "id", user.UserID, "email", user.Email, "role", models.RoleName(role))
	return user, nil
}

func (ctl *Controller) respondWithToken(c *gin.Context, code int, user *models.User) {
	token, claims, err := ctl.Tokens.GenerateToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(code, gin.H{"accessToken": token, "user": claims.Profile()})
}

func (ctl *Controller) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := ctl.createUser(c, &req, models.RoleUser)
	if err != nil {
		respondError(c, err)
		return
	}
	ctl.respondWithToken(c, http.StatusOK, user)
}

func (ctl *Controller) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	var user models.User
	err := ctl.DB.WithContext(c.Request.Context()).
		Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		jsonError(c, http.StatusBadRequest, loginFailed)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	// accounts created through Google have no password and never match
	match, err := utils.CheckPassword(user.Password, req.Password)
	if err != nil || !match {
		jsonError(c, http.StatusBadRequest, loginFailed)
		return
	}
	ctl.respondWithToken(c, http.StatusOK, &user)
}

var usernameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// GoogleLogin signs in with a Google ID token, creating a normal user on
// first use.
func (ctl *Controller) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if ctl.Google == nil {
		jsonError(c, http.StatusServiceUnavailable, utils.ErrGoogleNotConfigured.Error())
		return
	}

	identity, err := ctl.Google.Verify(c.Request.Context(), req.Credential)
	if errors.Is(err, utils.ErrGoogleNotConfigured) {
		jsonError(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		log.InfoLog("google token rejected", "err", err)
		jsonError(c, http.StatusBadRequest, "Invalid Google credential")
		return
	}
	if !identity.EmailVerified {
		jsonError(c, http.StatusBadRequest, "Email not verified")
		return
	}

	email := normalizeEmail(identity.Email)
	var user models.User
	err = ctl.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&user).Error
		if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		username, err := freeUsername(tx, strings.SplitN(email, "@", 2)[0])
		if err != nil {
			return err
		}
		user = models.User{
			UserTypeID: models.RoleUser,
			FirstName:  identity.GivenName,
			LastName:   identity.FamilyName,
			Email:      email,
			Username:   username,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ctl.respondWithToken(c, http.StatusOK, &user)
}

// freeUsername derives an unused username from base.
func freeUsername(tx *gorm.DB, base string) (string, error) {
	base = usernameUnsafe.ReplaceAllString(base, "_")
	if base == "" {
		base = "user"
	}
	candidate := base
	for i := 1; i <= 100; i++ {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
	return "", ErrUsernameTaken
}

// Auth returns the profile carried by the caller's token.
func (ctl *Controller) Auth(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": claims.Profile()})
}

func (ctl *Controller) ListUsers(c *gin.Context) {
	page, err := listing.Find[models.User](c.Request.Context(), ctl.DB, listing.Users(), listQuery(c, "role"))
	if err != nil {
		respondError(c, err)
		return
	}
	pageJSON(c, "users", page)
}

func (ctl *Controller) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !ctl.canActFor(c, id, rbac.ResourceUsers) {
		jsonError(c, http.StatusForbidden, "You can only view your own profile")
		return
	}
	var user models.User
	if err := ctl.DB.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrUserNotFound
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser lets an admin add an account with any role.
func (ctl *Controller) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	role := req.UserTypeID
	if role == 0 {
		role = models.RoleUser
	}
	user, err := ctl.createUser(c, &req.RegisterRequest, role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Register Success", "user": user})
}

func (ctl *Controller) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !ctl.canActFor(c, id, rbac.ResourceUsers) {
		jsonError(c, http.StatusForbidden, "You can only update your own profile")
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	isAdmin := ctl.Enforcer.Enforce(middleware.GetRole(c), rbac.ResourceUsers, rbac.ActionManage)

	var user models.User
	err := ctl.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		user.FirstName = strings.TrimSpace(req.FirstName)
		user.LastName = strings.TrimSpace(req.LastName)
		user.Username = strings.TrimSpace(req.Username)
		user.Email = normalizeEmail(req.Email)
		user.PhoneNo = req.PhoneNo
		user.Location = strings.TrimSpace(req.Location)
		if req.ProfileImage != nil {
			user.ProfileImage = *req.ProfileImage
		}
		if req.UserTypeID != nil && isAdmin {
			user.UserTypeID = *req.UserTypeID
		}
		if req.Password != nil {
			hash, err := utils.HashPassword(*req.Password)
			if err != nil {
				return err
			}
			user.Password = hash
		}
		if err := ensureUnique(tx, user.Email, user.Username, user.UserID); err != nil {
			return err
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User Updated", "user": user})
}

// DeleteUser removes a user together with their signups and claims.
// Users who still own events must have them reassigned or deleted first.
func (ctl *Controller) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	err := ctl.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		var owned int64
		if err := tx.Model(&models.Event{}).Where("user_id = ?", id).Count(&owned).Error; err != nil {
			return err
		}
		if owned > 0 {
			return ErrUserOwnsEvents
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.EventSignUp{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.RewardClaim{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	log.InfoLog("user deleted", "id", id)
	c.JSON(http.StatusOK, gin.H{"message": "User Deleted"})
}
