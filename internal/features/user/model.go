package user

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/types"
)

// User represents a marketplace account (student, mentor or admin).
type User struct {
	types.BaseModel

	FullName     string         `gorm:"type:varchar(60);not null;column:full_name" json:"fullName"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password     string         `gorm:"type:varchar(255);not null" json:"-"`
	UserType     types.UserType `gorm:"type:varchar(20);not null;default:'student';column:user_type;index" json:"userType"`
	Bio          *string        `gorm:"type:varchar(1000)" json:"bio,omitempty"`
	Active       bool           `gorm:"type:boolean;not null;default:true;column:is_active;index" json:"isActive"`
	RefreshToken *string        `gorm:"type:text;column:refresh_token" json:"-"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// CreateInput carries data for creating a new user.
type CreateInput struct {
	FullName string
	Email    string
	Password string
	UserType types.UserType
}

// Create inserts a new user with a bcrypt-hashed password.
func Create(db *gorm.DB, input CreateInput) (User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return User{}, ErrEmailRequired
	}

	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return User{}, ErrNameRequired
	}

	if len(input.Password) < 8 {
		return User{}, ErrPasswordTooShort
	}

	var existing User
	err := db.First(&existing, "email = ?", email).Error
	if err == nil {
		return User{}, ErrEmailTaken
	}
	if err != gorm.ErrRecordNotFound {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	userType := input.UserType
	if userType == "" {
		userType = types.UserTypeStudent
	}

	usr := User{
		FullName: name,
		Email:    email,
		Password: string(hashed),
		UserType: userType,
		Active:   true,
	}

	if err := db.Create(&usr).Error; err != nil {
		return User{}, err
	}

	return usr, nil
}

// GetByEmail retrieves a user by email address.
func GetByEmail(db *gorm.DB, email string) (User, error) {
	var usr User
	err := db.First(&usr, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// CheckPassword compares the stored bcrypt hash against a candidate password.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
