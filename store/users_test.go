package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"filmkiste/models"
)

func TestCreateUser_Defaults(t *testing.T) {
	st := New(setupTestDB(t))

	id, err := st.CreateUser("Clara", "Clara@Example.COM", "hash", "")
	assert.NoError(t, err)
	assert.NotZero(t, id)

	user, err := st.FindUserByEmail("clara@example.com")
	assert.NoError(t, err)
	if assert.NotNil(t, user) {
		assert.Equal(t, models.RoleUser, user.Role)
		// stored lowercased
		assert.Equal(t, "clara@example.com", *user.Email)
		assert.Equal(t, "hash", *user.PasswordHash)
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	st := New(setupTestDB(t))

	_, err := st.CreateUser("Clara", "clara@example.com", "hash", "superuser")
	assert.Error(t, err)
}

func TestFindUserByEmail_CaseInsensitive(t *testing.T) {
	st := New(setupTestDB(t))

	createTestUser(t, st, "Clara", "clara@example.com", models.RoleUser)

	user, err := st.FindUserByEmail("CLARA@EXAMPLE.COM")
	assert.NoError(t, err)
	assert.NotNil(t, user)
}

func TestFindUserByEmail_NotFound(t *testing.T) {
	st := New(setupTestDB(t))

	user, err := st.FindUserByEmail("niemand@example.com")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestCreateUser_EmailUniqueIgnoresCase(t *testing.T) {
	st := New(setupTestDB(t))

	createTestUser(t, st, "Clara", "clara@example.com", models.RoleUser)

	_, err := st.CreateUser("Klara", "CLARA@example.com", "hash", models.RoleUser)
	assert.True(t, IsUniqueViolation(err))
}

func TestCreateUser_NoEmailNoUniqueness(t *testing.T) {
	st := New(setupTestDB(t))

	_, err := st.CreateUser("Ohne", "", "", models.RoleUser)
	assert.NoError(t, err)
	_, err = st.CreateUser("AuchOhne", "", "", models.RoleUser)
	assert.NoError(t, err)
}

func TestListUsers_OrderedWithoutHashes(t *testing.T) {
	st := New(setupTestDB(t))

	createTestUser(t, st, "Zoe", "zoe@example.com", models.RoleUser)
	createTestUser(t, st, "Adam", "adam@example.com", models.RoleAdmin)

	users, err := st.ListUsers()
	assert.NoError(t, err)
	if assert.Len(t, users, 2) {
		assert.Equal(t, "Zoe", users[0].Name) // id order, not name order
		assert.Equal(t, "Adam", users[1].Name)
		assert.Nil(t, users[0].PasswordHash)
		assert.Nil(t, users[1].PasswordHash)
	}
}

func TestListAuthors_OnlyPostersAlphabetical(t *testing.T) {
	st := New(setupTestDB(t))

	zoe := createTestUser(t, st, "zoe", "zoe@example.com", models.RoleUser)
	adam := createTestUser(t, st, "Adam", "adam@example.com", models.RoleUser)
	createTestUser(t, st, "Stumm", "stumm@example.com", models.RoleUser)

	_, err := st.CreateContent("Film A", "", "krimi", "/a.jpg", zoe)
	assert.NoError(t, err)
	_, err = st.CreateContent("Film B", "", "krimi", "/b.jpg", adam)
	assert.NoError(t, err)

	authors, err := st.ListAuthors()
	assert.NoError(t, err)
	if assert.Len(t, authors, 2) {
		// case-insensitive ordering puts Adam before zoe
		assert.Equal(t, "Adam", authors[0].Name)
		assert.Equal(t, "zoe", authors[1].Name)
	}
}
