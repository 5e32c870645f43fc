package dto

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faya/preorder-api/pkg/apperrors"
)

func fields(t *testing.T, err error) map[string]apperrors.FieldViolation {
	t.Helper()
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr), "expected a validation error, got %v", err)
	require.Equal(t, apperrors.KindValidation, appErr.Kind)
	out := make(map[string]apperrors.FieldViolation, len(appErr.Fields))
	for _, f := range appErr.Fields {
		out[f.Field] = f
	}
	return out
}

func TestRegisterRequestValidate(t *testing.T) {
	assert.NoError(t, RegisterRequest{FullName: "Ada Student", Email: "ada@campus.edu", Password: "longenough"}.Validate())

	got := fields(t, RegisterRequest{FullName: " ", Email: "not-an-email", Password: "short"}.Validate())
	assert.Equal(t, "Full name is required", got["fullName"].Message)
	assert.Equal(t, "Please provide a valid email format", got["email"].Message)
	assert.Equal(t, "not-an-email", got["email"].RejectedValue)
	assert.Equal(t, "Password must be at least 8 characters long", got["password"].Message)

	got = fields(t, RegisterRequest{}.Validate())
	assert.Equal(t, "Email is required", got["email"].Message)
	assert.Equal(t, "Password is required", got["password"].Message)

	got = fields(t, RegisterRequest{FullName: "A", Email: "a@b.co", Password: strings.Repeat("p", 73)}.Validate())
	assert.Contains(t, got, "password")
}

func TestValidEmail(t *testing.T) {
	for _, ok := range []string{"ada@campus.edu", "first.last+tag@sub.example.org"} {
		assert.True(t, validEmail(ok), ok)
	}
	for _, bad := range []string{"ada", "ada@", "@campus.edu", "Ada <ada@campus.edu>", "ada@localhost"} {
		assert.False(t, validEmail(bad), bad)
	}
}

func TestCreateOrderRequestValidate(t *testing.T) {
	valid := CreateOrderRequest{Items: []OrderLineRequest{{FoodItemID: "3f2b8c1e-8a0c-4d59-9a0e-0c7c2a6d51f1", Quantity: 2}}}
	assert.NoError(t, valid.Validate())

	got := fields(t, CreateOrderRequest{}.Validate())
	assert.Contains(t, got, "items")

	got = fields(t, CreateOrderRequest{Items: []OrderLineRequest{
		{FoodItemID: "3f2b8c1e-8a0c-4d59-9a0e-0c7c2a6d51f1", Quantity: 1},
		{FoodItemID: "nope", Quantity: 0},
	}}.Validate())
	assert.Contains(t, got, "items[1].foodItemId")
	assert.Contains(t, got, "items[1].quantity")
	assert.NotContains(t, got, "items[0].quantity")
}

func TestUpdateOrderStatusRequestValidate(t *testing.T) {
	assert.NoError(t, UpdateOrderStatusRequest{Status: "READY"}.Validate())
	assert.Contains(t, fields(t, UpdateOrderStatusRequest{}.Validate()), "status")
	assert.Contains(t, fields(t, UpdateOrderStatusRequest{Status: "SHIPPED"}.Validate()), "status")
}
