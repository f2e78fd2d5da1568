package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Fields
}

func TestRegisterInputValidate(t *testing.T) {
	in := RegisterInput{
		Username: "ramesh",
		Password: "password123",
		FullName: "Ramesh Patel",
		Email:    "ramesh@example.com",
		Role:     RoleFarmer,
	}
	assert.NoError(t, in.Validate())

	bad := RegisterInput{Password: "123", Email: "nope", Role: "wizard"}
	fields := fieldErrors(t, bad.Validate())
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "fullName")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "role")
}

func TestProductInputValidate(t *testing.T) {
	in := ProductInput{
		Name:     "Red Onions",
		Category: "Vegetables",
		Quantity: 100,
		Unit:     "kg",
		Price:    22.5,
		Location: "Nashik",
	}
	assert.NoError(t, in.Validate())

	in.Unit = "bushel"
	in.Quantity = 0
	fields := fieldErrors(t, in.Validate())
	assert.Contains(t, fields, "unit")
	assert.Contains(t, fields, "quantity")
}

func TestTransportInputValidate(t *testing.T) {
	in := TransportInput{
		ProductID:        1,
		PickupLocation:   "Nashik",
		DeliveryLocation: "Mumbai",
		Quantity:         50,
		Date:             time.Now().Add(48 * time.Hour),
	}
	assert.NoError(t, in.Validate())

	in.Date = time.Now().Add(-time.Hour)
	fields := fieldErrors(t, in.Validate())
	assert.Contains(t, fields, "date")

	in.Date = time.Time{}
	fields = fieldErrors(t, in.Validate())
	assert.Contains(t, fields, "date")
}

func TestMessageInputValidate(t *testing.T) {
	in := MessageInput{ReceiverID: 2, Content: "hello"}
	assert.NoError(t, in.Validate())

	in.Content = ""
	fields := fieldErrors(t, in.Validate())
	assert.Contains(t, fields, "content")
}
