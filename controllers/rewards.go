package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecohub-backend/listing"
	"ecohub-backend/log"
	"ecohub-backend/middleware"
	"ecohub-backend/models"
	"ecohub-backend/rbac"
)

type RewardRequest struct {
	RewardName        string  `json:"reward_name" binding:"required,min=1,max=45"`
	RewardsTypeID     uint    `json:"rewards_type_id" binding:"required"`
	RewardQuantity    int     `json:"reward_quantity" binding:"gte=0"`
	RewardDuration    float64 `json:"reward_duration" binding:"gte=0"`
	RewardDescription string  `json:"reward_description" binding:"required,max=1000"`
}

type RewardTypeRequest struct {
	RewardsTypeDescription string `json:"rewards_type_description" binding:"required,max=45"`
}

type AssignTagRequest struct {
	RewardID     uint   `json:"reward_id" binding:"required"`
	CategoryID   uint   `json:"category_id" binding:"required_without=CategoryName"`
	CategoryName string `json:"category_name" binding:"max=45"`
}

type ClaimRequest struct {
	UserID   uint `json:"userId"`
	RewardID uint `json:"reward_id" binding:"required"`
}

func (r *RewardRequest) apply(m *models.Reward) {
	m.RewardName = strings.TrimSpace(r.RewardName)
	m.RewardsTypeID = r.RewardsTypeID
	m.RewardQuantity = r.RewardQuantity
	m.RewardDuration = r.RewardDuration
	m.RewardDescription = strings.TrimSpace(r.RewardDescription)
}

func rewardTypeExists(tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := tx.Model(&models.RewardsType{}).Where("rewards_type_id = ?", id).Count(&count).Error
	return count > 0, err
}

func (ctl *Controller) ListRewards(c *gin.Context) {
	page, err := listing.Find[models.Reward](c.Request.Context(), ctl.DB, listing.Rewards(), listQuery(c, "type"))
	if err != nil {
		respondError(c, err)
		return
	}
	pageJSON(c, "currentrewards", page)
}

func (ctl *Controller) RewardDetails(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var reward models.Reward
	err := ctl.DB.WithContext(c.Request.Context()).Preload("RewardsType").First(&reward, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrRewardNotFound
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reward)
}

func (ctl *Controller) AddReward(c *gin.Context) {
	var req RewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	db := ctl.DB.WithContext(c.Request.Context())
	ok, err := rewardTypeExists(db, req.RewardsTypeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		jsonError(c, http.StatusBadRequest, "rewards_type_id does not exist")
		return
	}

	var reward models.Reward
	req.apply(&reward)
	if err := db.Omit(clause.Associations).Create(&reward).Error; err != nil {
		respondError(c, err)
		return
	}
	log.InfoLog("reward created", "reward_id", reward.RewardID)
	c.JSON(http.StatusCreated, reward)
}

func (ctl *Controller) UpdateReward(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req RewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	var reward models.Reward
	var badType bool
	err := ctl.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reward, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotFound
			}
			return err
		}
		ok, err := rewardTypeExists(tx, req.RewardsTypeID)
		if err != nil {
			return err
		}
		if !ok {
			badType = true
			return errRollback
		}
		req.apply(&reward)
		return tx.Omit(clause.Associations).Save(&reward).Error
	})
	if badType {
		jsonError(c, http.StatusBadRequest, "rewards_type_id does not exist")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reward updated successfully", "reward": reward})
}

// DeleteReward removes a reward named by the "id" field of the body. A
// reward still offered by an event cannot be deleted.
func (ctl *Controller) DeleteReward(c *gin.Context) {
	var req struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	err := ctl.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var reward models.Reward
		if err := tx.First(&reward, req.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotFound
			}
			return err
		}
		var linked int64
		if err := tx.Model(&models.Event{}).Where("reward_id = ?", req.ID).Count(&linked).Error; err != nil {
			return err
		}
		if linked > 0 {
			return ErrRewardInUse
		}
		if err := tx.Where("reward_id = ?", req.ID).Delete(&models.RewardCategoryAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reward_id = ?", req.ID).Delete(&models.RewardClaim{}).Error; err != nil {
			return err
		}
		return tx.Delete(&reward).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reward deleted successfully"})
}

// FilteredRewards lists rewards whose type description matches requestBody_type.
func (ctl *Controller) FilteredRewards(c *gin.Context) {
	var req struct {
		Type string `json:"requestBody_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	db := ctl.DB.WithContext(c.Request.Context())
	var rtype models.RewardsType
	if err := db.Where("rewards_type_description = ?", req.Type).First(&rtype).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(c, http.StatusNotFound, "reward type not found")
			return
		}
		respondError(c, err)
		return
	}
	var rewards []models.Reward
	if err := db.Preload("RewardsType").Where("rewards_type_id = ?", rtype.RewardsTypeID).
		Order("reward_id").Find(&rewards).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected_rewards": rewards})
}

func (ctl *Controller) RewardTypes(c *gin.Context) {
	var types []models.RewardsType
	if err := ctl.DB.WithContext(c.Request.Context()).Order("rewards_type_id").Find(&types).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewardtypes": types})
}

func (ctl *Controller) AddRewardType(c *gin.Context) {
	var req RewardTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	rtype := models.RewardsType{RewardsTypeDescription: strings.TrimSpace(req.RewardsTypeDescription)}
	if err := ctl.DB.WithContext(c.Request.Context()).Create(&rtype).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rtype)
}

// RewardCategories lists every reward tag.
func (ctl *Controller) RewardCategories(c *gin.Context) {
	var cats []models.RewardCategory
	if err := ctl.DB.WithContext(c.Request.Context()).Order(clause.OrderByColumn{Column: clause.Column{Name: "rewardCatID"}}).Find(&cats).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

// AssignRewardTag tags a reward with an existing category id, or with a
// category name that is created on first use.
func (ctl *Controller) AssignRewardTag(c *gin.Context) {
	var req AssignTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	var assign models.RewardCategoryAssignment
	err := ctl.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("reward_id").First(&models.Reward{}, req.RewardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotFound
			}
			return err
		}

		var cat models.RewardCategory
		if req.CategoryID != 0 {
			if err := tx.First(&cat, req.CategoryID).Error; err != nil {
				return err
			}
		} else {
			name := strings.TrimSpace(req.CategoryName)
			if err := tx.Where(models.RewardCategory{EventCatDescription: name}).
				FirstOrCreate(&cat).Error; err != nil {
				return err
			}
		}

		assign = models.RewardCategoryAssignment{RewardCatID: cat.RewardCatID, RewardID: req.RewardID}
		if err := tx.Where(assign).FirstOrCreate(&assign).Error; err != nil {
			return err
		}
		assign.RewardCategory = &cat
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assign)
}

func (ctl *Controller) RewardTags(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var tags []models.RewardCategoryAssignment
	if err := ctl.DB.WithContext(c.Request.Context()).Preload("RewardCategory").
		Where("reward_id = ?", id).Order("assign_id").Find(&tags).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// ClaimReward records a claim and takes one unit off the reward's
// remaining quantity. An exhausted reward cannot be claimed.
func (ctl *Controller) ClaimReward(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.UserID == 0 {
		req.UserID, _ = middleware.GetUserID(c)
	}
	if !ctl.canActFor(c, req.UserID, rbac.ResourceRewards) {
		jsonError(c, http.StatusForbidden, "You can only claim rewards for yourself")
		return
	}

	var claim models.RewardClaim
	err := ctl.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var reward models.Reward
		if err := tx.First(&reward, req.RewardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotFound
			}
			return err
		}
		if err := tx.Select("user_id").First(&models.User{}, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		// the guarded decrement keeps concurrent claims from overdrawing
		res := tx.Model(&models.Reward{}).
			Where("reward_id = ? AND reward_quantity > 0", req.RewardID).
			Update("reward_quantity", gorm.Expr("reward_quantity - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRewardExhausted
		}

		claim = models.RewardClaim{RewardID: req.RewardID, UserID: req.UserID, ClaimDate: ctl.now()}
		return tx.Omit(clause.Associations).Create(&claim).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	log.InfoLog("reward claimed", "reward_id", req.RewardID, "user_id", req.UserID)
	c.JSON(http.StatusCreated, claim)
}

func (ctl *Controller) ClaimedRewards(c *gin.Context) {
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	if !ctl.canActFor(c, userID, rbac.ResourceRewards) {
		jsonError(c, http.StatusForbidden, "You can only view your own claims")
		return
	}
	q := listQuery(c)
	q.Scopes = []func(*gorm.DB) *gorm.DB{listing.OwnedBy(userID)}
	page, err := listing.Find[models.RewardClaim](c.Request.Context(), ctl.DB, listing.Claims(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	pageJSON(c, "claimedRewards", page)
}
