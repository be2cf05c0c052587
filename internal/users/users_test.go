package users_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clickpulse/internal/testsupport"
	"clickpulse/internal/users"
)

func TestFindUsersSearchCaseInsensitive(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	testsupport.CreateTestUser(t, db, "Alice Jones", "alice@example.com", users.DeviceDesktop, "US")
	testsupport.CreateTestUser(t, db, "Bob Smith", "bob@shop.io", users.DeviceMobile, "IN")

	found, err := users.FindUsers(db, users.FindQuery{Search: "ALICE", Limit: 10})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "alice@example.com", found[0].Email)

	// Search matches the email too.
	found, err = users.FindUsers(db, users.FindQuery{Search: "shop.io", Limit: 10})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bob Smith", found[0].Name)
}

func TestFindUsersDeviceAndCountry(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	testsupport.CreateTestUser(t, db, "Alice", "alice@example.com", users.DeviceDesktop, "US")
	testsupport.CreateTestUser(t, db, "Bob", "bob@example.com", users.DeviceMobile, "US")
	testsupport.CreateTestUser(t, db, "Carol", "carol@example.com", users.DeviceMobile, "IN")

	found, err := users.FindUsers(db, users.FindQuery{Device: users.DeviceMobile, Country: "US", Limit: 10})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bob", found[0].Name)

	count, err := users.CountUsers(db, users.FindQuery{Device: users.DeviceMobile})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestFindUsersPagination(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		testsupport.CreateTestUser(t, db, name, name+"@example.com", users.DeviceDesktop, "US")
	}

	page, err := users.FindUsers(db, users.FindQuery{Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "C", page[0].Name)
	assert.Equal(t, "D", page[1].Name)
}

func TestGetUserByIDNotFound(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	_, err := users.GetUserByID(db, 999999)
	require.ErrorIs(t, err, users.ErrUserNotFound)
}
