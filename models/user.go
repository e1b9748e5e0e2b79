package models

// Role ids stored in users.user_type_id.
const (
	RoleUser      uint = 1
	RoleAdmin     uint = 2
	RoleOrganiser uint = 3
)

// RoleName maps a user_type_id to the name used in permission policies.
func RoleName(id uint) string {
	switch id {
	case RoleAdmin:
		return "admin"
	case RoleOrganiser:
		return "organiser"
	case RoleUser:
		return "user"
	}
	return ""
}

// User represents a registered account.
type User struct {
	UserID       uint   `json:"user_id" gorm:"column:user_id;primaryKey"`
	UserTypeID   uint   `json:"user_type_id" gorm:"column:user_type_id;not null;default:1"`
	FirstName    string `json:"first_name" gorm:"column:first_name;size:50;not null"`
	LastName     string `json:"last_name" gorm:"column:last_name;size:50;not null"`
	Email        string `json:"email" gorm:"column:email;size:100;uniqueIndex;not null"`
	Username     string `json:"username" gorm:"column:username;size:100;uniqueIndex;not null"`
	PhoneNo      string `json:"phone_no" gorm:"column:phone_no;size:15"`
	Password     string `json:"-" gorm:"column:password;size:1000;not null"`
	Location     string `json:"location" gorm:"column:location;size:50"`
	ProfileImage string `json:"profile_image,omitempty" gorm:"column:profile_image;size:255"`
}

func (User) TableName() string {
	return "users"
}
