package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhive/study_go_server/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	_ = NewUserRepository(db)

	email := "test@example.com"
	user := testutil.TestUser(t, db, testutil.WithEmail(email))

	assert.NotZero(t, user.ID)
	assert.Equal(t, email, *user.Email)
}

func TestUserRepository_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	created := testutil.TestUser(t, db)

	found, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Username, found.Username)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	_, err := repo.GetByID(99999)
	assert.Error(t, err)
}

func TestUserRepository_GetByUsernames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	u1 := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	u2 := testutil.TestUser(t, db, testutil.WithUsername("bob"))
	testutil.TestUser(t, db, testutil.WithUsername("carol"))

	users, err := repo.GetByUsernames([]string{"alice", "bob", "nobody"})
	require.NoError(t, err)
	require.Len(t, users, 2)

	ids := []int64{users[0].ID, users[1].ID}
	assert.Contains(t, ids, u1.ID)
	assert.Contains(t, ids, u2.ID)
}

func TestUserRepository_GetByUsernames_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	users, err := repo.GetByUsernames(nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	email := "exists@example.com"
	testutil.TestUser(t, db, testutil.WithEmail(email))

	exists, err := repo.ExistsByEmail(email)
	require.NoError(t, err)
	assert.True(t, exists)

	notExists, err := repo.ExistsByEmail("notexists@example.com")
	require.NoError(t, err)
	assert.False(t, notExists)
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	username := "uniqueuser"
	testutil.TestUser(t, db, testutil.WithUsername(username))

	exists, err := repo.ExistsByUsername(username)
	require.NoError(t, err)
	assert.True(t, exists)

	notExists, err := repo.ExistsByUsername("notexistsuser")
	require.NoError(t, err)
	assert.False(t, notExists)
}

func TestUserRepository_IncrementCommentCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	user := testutil.TestUser(t, db)

	require.NoError(t, repo.IncrementCommentCount(user.ID, 1))
	require.NoError(t, repo.IncrementCommentCount(user.ID, 1))

	updated, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CommentCount)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	user := testutil.TestUser(t, db)

	err := repo.UpdateFields(user.ID, map[string]interface{}{
		"display_name": "New Name",
		"bio":          "hello",
	})
	require.NoError(t, err)

	updated, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.DisplayName)
	assert.Equal(t, "hello", updated.Bio)

	stamp := updated.Stamp()
	assert.Equal(t, "New Name", stamp.DisplayName)
}
