package entity

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
	RoleAdmin  Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleFarmer, RoleBuyer, RoleAdmin:
		return true
	}
	return false
}

type Location struct {
	State    string `bson:"state,omitempty" json:"state,omitempty"`
	District string `bson:"district,omitempty" json:"district,omitempty"`
	Pincode  string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Location Location           `bson:"location,omitempty" json:"location,omitempty"`

	// Role is the legacy single-role field kept in sync with CurrentRole for
	// older consumers.
	Role           Role   `bson:"role" json:"role"`
	CurrentRole    Role   `bson:"current_role,omitempty" json:"currentRole,omitempty"`
	AvailableRoles []Role `bson:"available_roles" json:"availableRoles"`

	EmailVerified           bool       `bson:"email_verified" json:"emailVerified"`
	EmailVerificationToken  string     `bson:"email_verification_token,omitempty" json:"-"`
	EmailVerificationExpire *time.Time `bson:"email_verification_expire,omitempty" json:"-"`
	ResetPasswordToken      string     `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpire     *time.Time `bson:"reset_password_expire,omitempty" json:"-"`

	IsActive  bool                 `bson:"is_active" json:"isActive"`
	Wishlist  []primitive.ObjectID `bson:"wishlist,omitempty" json:"wishlist,omitempty"`
	CreatedAt time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updatedAt"`
}

// HasRole reports whether the user may act under the given role.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.AvailableRoles {
		if r == role {
			return true
		}
	}
	return u.Role == role
}

// ActiveRole resolves the role the user is currently acting under.
func (u *User) ActiveRole() Role {
	if u.CurrentRole != "" {
		return u.CurrentRole
	}
	return u.Role
}

// SwitchRole moves the user to the requested role. Both the active role and
// the legacy role field are updated.
func (u *User) SwitchRole(role Role) error {
	if !u.HasRole(role) {
		return ErrRoleNotPermitted
	}
	u.CurrentRole = role
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return nil
}

var ErrRoleNotPermitted = errors.New("role not permitted for this account")
