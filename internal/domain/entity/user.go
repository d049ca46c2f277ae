package entity

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var ErrAddressNotFound = errors.New("address not found")

type Address struct {
	ID        string `bson:"_id" json:"id"`
	Street    string `bson:"street" json:"street"`
	City      string `bson:"city" json:"city"`
	State     string `bson:"state" json:"state"`
	ZipCode   string `bson:"zip_code" json:"zipCode"`
	Phone     string `bson:"phone" json:"phone"`
	IsDefault bool   `bson:"is_default" json:"isDefault"`
}

type User struct {
	ID                  string     `bson:"_id,omitempty" json:"id"`
	Name                string     `bson:"name" json:"name"`
	Email               string     `bson:"email" json:"email"`
	PasswordHash        string     `bson:"password" json:"-"`
	Phone               string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Role                Role       `bson:"role" json:"role"`
	Addresses           []Address  `bson:"addresses" json:"addresses"`
	IsActive            bool       `bson:"is_active" json:"isActive"`
	LastLogin           *time.Time `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	ResetPasswordToken  string     `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpire *time.Time `bson:"reset_password_expire,omitempty" json:"-"`
	CreatedAt           time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `bson:"updated_at" json:"updatedAt"`
}

func NewUser(name, email, passwordHash, phone string) *User {
	now := time.Now().UTC()
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        phone,
		Role:         RoleUser,
		Addresses:    []Address{},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AddAddress appends a new address. The very first address becomes the
// default automatically; marking a later address default clears the flag
// on every other one, so at most one default exists at any time.
func (u *User) AddAddress(addr Address) Address {
	addr.ID = primitive.NewObjectID().Hex()
	if len(u.Addresses) == 0 {
		addr.IsDefault = true
	}
	if addr.IsDefault {
		u.clearDefaultAddresses()
	}
	u.Addresses = append(u.Addresses, addr)
	u.UpdatedAt = time.Now().UTC()
	return addr
}

func (u *User) FindAddress(addressID string) *Address {
	for i := range u.Addresses {
		if u.Addresses[i].ID == addressID {
			return &u.Addresses[i]
		}
	}
	return nil
}

// UpdateAddress overwrites the provided fields. The default flag only moves
// when an address is explicitly promoted; omitting it never leaves the user
// without a default.
func (u *User) UpdateAddress(addressID string, updated Address) error {
	addr := u.FindAddress(addressID)
	if addr == nil {
		return ErrAddressNotFound
	}
	if updated.Street != "" {
		addr.Street = updated.Street
	}
	if updated.City != "" {
		addr.City = updated.City
	}
	if updated.State != "" {
		addr.State = updated.State
	}
	if updated.ZipCode != "" {
		addr.ZipCode = updated.ZipCode
	}
	if updated.Phone != "" {
		addr.Phone = updated.Phone
	}
	if updated.IsDefault {
		u.clearDefaultAddresses()
		addr.IsDefault = true
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) RemoveAddress(addressID string) error {
	for i := range u.Addresses {
		if u.Addresses[i].ID == addressID {
			u.Addresses = append(u.Addresses[:i], u.Addresses[i+1:]...)
			u.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrAddressNotFound
}

func (u *User) DefaultAddress() *Address {
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			return &u.Addresses[i]
		}
	}
	return nil
}

func (u *User) SetResetToken(tokenHash string, expiresAt time.Time) {
	u.ResetPasswordToken = tokenHash
	u.ResetPasswordExpire = &expiresAt
}

// ClearResetToken is called after redemption; the token is single-use.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
}

func (u *User) clearDefaultAddresses() {
	for i := range u.Addresses {
		u.Addresses[i].IsDefault = false
	}
}
