package models

import "time"

type Reward struct {
	RewardID          uint    `json:"reward_id" gorm:"column:reward_id;primaryKey"`
	RewardName        string  `json:"reward_name" gorm:"column:reward_name;size:45;not null"`
	RewardsTypeID     uint    `json:"rewards_type_id" gorm:"column:rewards_type_id;not null;index"`
	RewardQuantity    int     `json:"reward_quantity" gorm:"column:reward_quantity;not null"`
	RewardDuration    float64 `json:"reward_duration" gorm:"column:reward_duration;not null"`
	RewardDescription string  `json:"reward_description" gorm:"column:reward_description;size:1000;not null"`

	RewardsType *RewardsType `json:"rewardsType,omitempty" gorm:"foreignKey:RewardsTypeID;references:RewardsTypeID"`
}

func (Reward) TableName() string { return "rewards" }

// RewardClaim records a user redeeming a reward.
type RewardClaim struct {
	ClaimID   uint      `json:"claim_Id" gorm:"column:claim_Id;primaryKey"`
	RewardID  uint      `json:"reward_id" gorm:"column:reward_id;not null;index"`
	UserID    uint      `json:"user_id" gorm:"column:user_id;not null;index"`
	ClaimDate time.Time `json:"claimDate" gorm:"column:claimDate;not null"`

	Reward *Reward `json:"rewards,omitempty" gorm:"foreignKey:RewardID;references:RewardID;constraint:OnDelete:CASCADE"`
}

func (RewardClaim) TableName() string { return "rewardsClaimed" }

// RewardCategory is a free-form tag for rewards.
type RewardCategory struct {
	RewardCatID         uint   `json:"rewardCatID" gorm:"column:rewardCatID;primaryKey"`
	EventCatDescription string `json:"eventCatDescription" gorm:"column:eventCatDescription;size:45;not null"`
}

func (RewardCategory) TableName() string { return "rewardCategory" }

type RewardCategoryAssignment struct {
	AssignID    uint `json:"assign_id" gorm:"column:assign_id;primaryKey"`
	RewardCatID uint `json:"rewards_type_id" gorm:"column:rewards_type_id;not null;uniqueIndex:idx_reward_tag"`
	RewardID    uint `json:"reward_id" gorm:"column:reward_id;not null;uniqueIndex:idx_reward_tag"`

	RewardCategory *RewardCategory `json:"rewardCategory,omitempty" gorm:"foreignKey:RewardCatID;references:RewardCatID"`
}

func (RewardCategoryAssignment) TableName() string { return "rewardCategoryAssignments" }

// All lists every model for AutoMigrate, lookups first.
func All() []interface{} {
	return []interface{}{
		&EventCategory{}, &EventType{}, &EventLocation{}, &EventStatus{}, &RewardsType{},
		&RewardCategory{}, &User{}, &Reward{}, &Event{}, &EventSignUp{},
		&RewardClaim{}, &RewardCategoryAssignment{},
	}
}
