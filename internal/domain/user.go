package domain

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// AdminUser is an operator account mirrored from the external identity
// provider. The provider owns credentials; this side only records the
// provider subject and the granted role.
type AdminUser struct {
	UserID    string    `json:"userId"`
	Subject   string    `json:"subject"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
