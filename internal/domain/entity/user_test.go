package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_AddAddress_FirstIsDefault(t *testing.T) {
	user := NewUser("Asha Rao", "asha@example.com", "hash", "")

	first := user.AddAddress(Address{Street: "14 Market Road", City: "Pune"})

	assert.True(t, first.IsDefault)
	assert.NotEmpty(t, first.ID)
}

func TestUser_AddAddress_SingleDefault(t *testing.T) {
	user := NewUser("Asha Rao", "asha@example.com", "hash", "")
	user.AddAddress(Address{Street: "14 Market Road"})
	user.AddAddress(Address{Street: "7 Hill View", IsDefault: true})

	var defaults int
	for _, a := range user.Addresses {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
	assert.Equal(t, "7 Hill View", user.DefaultAddress().Street)
}

func TestUser_AddAddress_SecondWithoutFlagIsNotDefault(t *testing.T) {
	user := NewUser("Asha Rao", "asha@example.com", "hash", "")
	user.AddAddress(Address{Street: "14 Market Road"})
	second := user.AddAddress(Address{Street: "7 Hill View"})

	assert.False(t, second.IsDefault)
	assert.Equal(t, "14 Market Road", user.DefaultAddress().Street)
}

func TestUser_UpdateAddress_MoveDefault(t *testing.T) {
	user := NewUser("Asha Rao", "asha@example.com", "hash", "")
	user.AddAddress(Address{Street: "14 Market Road"})
	second := user.AddAddress(Address{Street: "7 Hill View"})

	err := user.UpdateAddress(second.ID, Address{IsDefault: true})

	assert.NoError(t, err)
	assert.Equal(t, "7 Hill View", user.DefaultAddress().Street)
	assert.False(t, user.Addresses[0].IsDefault)
}

func TestUser_UpdateAddress_OmittedFlagKeepsDefault(t *testing.T) {
	user := NewUser("Asha Rao", "asha@example.com", "hash", "")
	addr := user.AddAddress(Address{Street: "14 Market Road"})

	err := user.UpdateAddress(addr.ID, Address{Street: "15 Market Road"})

	assert.NoError(t, err)
	assert.Equal(t, "15 Market Road", user.Addresses[0].Street)
	assert.True(t, user.Addresses[0].IsDefault)
	assert.NotNil(t, user.DefaultAddress())
}

func TestUser_UpdateAddress_Unknown(t *testing.T) {
	user := NewUser("Asha Rao", "asha@example.com", "hash", "")
	err := user.UpdateAddress("missing", Address{Street: "x"})
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestUser_RemoveAddress(t *testing.T) {
	user := NewUser("Asha Rao", "asha@example.com", "hash", "")
	addr := user.AddAddress(Address{Street: "14 Market Road"})

	assert.NoError(t, user.RemoveAddress(addr.ID))
	assert.Empty(t, user.Addresses)
	assert.ErrorIs(t, user.RemoveAddress(addr.ID), ErrAddressNotFound)
}

func TestUser_ResetTokenLifecycle(t *testing.T) {
	user := NewUser("Asha Rao", "asha@example.com", "hash", "")
	expires := time.Now().Add(15 * time.Minute)

	user.SetResetToken("hashed-token", expires)
	assert.Equal(t, "hashed-token", user.ResetPasswordToken)
	assert.NotNil(t, user.ResetPasswordExpire)

	user.ClearResetToken()
	assert.Empty(t, user.ResetPasswordToken)
	assert.Nil(t, user.ResetPasswordExpire)
}

func TestUser_IsAdmin(t *testing.T) {
	user := NewUser("Asha Rao", "asha@example.com", "hash", "")
	assert.False(t, user.IsAdmin())
	user.Role = RoleAdmin
	assert.True(t, user.IsAdmin())
}
