package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therapyassist/dashboard-go/internal/model"
)

func TestValidateNewUser(t *testing.T) {
	tests := []struct {
		name         string
		req          model.CreateUserRequest
		requireEmail bool
		want         string
	}{
		{"blank name", model.CreateUserRequest{Name: " ", Email: "a@b.co"}, true, "Name is required"},
		{"missing email on full form", model.CreateUserRequest{Name: "Bob"}, true, "Email is required"},
		{"missing email on quick form", model.CreateUserRequest{Name: "Bob"}, false, ""},
		{"malformed email", model.CreateUserRequest{Name: "Bob", Email: "bob@example"}, true, "Please enter a valid email address"},
		{"valid", model.CreateUserRequest{Name: "Bob", Email: "bob@example.com"}, true, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateNewUser(tc.req, tc.requireEmail)
			if tc.want == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tc.want, err.Message)
		})
	}
}

func TestUserService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin(t)
	ctx := context.Background()

	f.noRequests(t, func() {
		_, err := f.users.Create(ctx, model.CreateUserRequest{Name: "Bob", Email: "nope"}, true)
		assert.EqualError(t, err, "Please enter a valid email address")
	})

	created, err := f.users.Create(ctx, model.CreateUserRequest{Name: "  Bob Jones ", Email: "bob@example.com"}, true)
	require.NoError(t, err)
	assert.Equal(t, "Bob Jones", created.Name)
	assert.NotEmpty(t, created.Username)
	assert.NotEmpty(t, created.Password)
	assert.Equal(t, "User created successfully!", f.lastNotice().Message)

	_, err = f.users.Create(ctx, model.CreateUserRequest{Name: "Other", Email: "bob@example.com"}, true)
	assert.EqualError(t, err, "A user with this email already exists")

	users, err := f.users.List(ctx, model.ListUsersParams{Limit: 100})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, created.UserID, users[0].UserID)

	blank := " "
	f.noRequests(t, func() {
		_, err = f.users.Update(ctx, created.UserID, model.UpdateUserRequest{Name: &blank})
		assert.EqualError(t, err, "Name is required")
	})

	renamed := " Robert "
	updated, err := f.users.Update(ctx, created.UserID, model.UpdateUserRequest{Name: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)

	require.NoError(t, f.users.Deactivate(ctx, created.UserID, model.UserTypeDashboard))
	assert.Equal(t, "Dashboard user deactivated successfully", f.lastNotice().Message)

	got, err := f.users.Get(ctx, created.UserID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, f.users.Reactivate(ctx, created.UserID))
	got, err = f.users.Get(ctx, created.UserID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	history, err := f.users.History(ctx, created.UserID)
	require.NoError(t, err)
	assert.Equal(t, created.UserID, history.UserID)

	_, err = f.users.Get(ctx, "missing")
	assert.EqualError(t, err, "User not found")
}

func TestUserService_VRDeactivationMessage(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin(t)
	vr := f.backend.SeedVRUser("Headset", "vr@example.com")

	require.NoError(t, f.users.Deactivate(context.Background(), vr.UserID, vr.UserType))
	assert.Equal(t, "VR user deactivated successfully", f.lastNotice().Message)
}
