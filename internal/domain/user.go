package domain

import "time"

type UserRole string

const (
	UserRoleMember    UserRole = "member"
	UserRoleAdmin     UserRole = "admin"
	UserRoleWarehouse UserRole = "warehouse"
)

func (r UserRole) Valid() bool {
	return r == UserRoleMember || r == UserRoleAdmin || r == UserRoleWarehouse
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type User struct {
	ID           int32              `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	PhoneNumber  string             `json:"phone_number"`
	Address      string             `json:"address"`
	PasswordHash string             `json:"-"`
	Role         UserRole           `json:"role"`
	Status       VerificationStatus `json:"status"`
	CreatedOn    time.Time          `json:"created_on"`
	UpdatedOn    time.Time          `json:"updated_on"`
}
