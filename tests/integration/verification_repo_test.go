package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashoffers/api/internal/models"
)

func TestVerificationCodeLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(ctx)

	repos := InitializeRepositories(testDB.DB)

	user, err := SeedUser(ctx, testDB.Pool, "codes@example.com", "+15550003333", "test-password-42")
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))
		user, err = SeedUser(ctx, testDB.Pool, "codes@example.com", "+15550003333", "test-password-42")
		require.NoError(t, err)

		created, err := repos.Codes.Create(ctx, user.ID, "123456", models.CodeTypeEmail, time.Now().Add(10*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, user.ID, created.UserID)
		assert.Nil(t, created.UsedAt)

		consumed, err := repos.Codes.Consume(ctx, user.ID, "123456", models.CodeTypeEmail)
		require.NoError(t, err)
		assert.True(t, consumed)
	})

	t.Run("consume is single use", func(t *testing.T) {
		_, err := repos.Codes.Create(ctx, user.ID, "222222", models.CodeTypePhone, time.Now().Add(10*time.Minute))
		require.NoError(t, err)

		first, err := repos.Codes.Consume(ctx, user.ID, "222222", models.CodeTypePhone)
		require.NoError(t, err)
		assert.True(t, first)

		second, err := repos.Codes.Consume(ctx, user.ID, "222222", models.CodeTypePhone)
		require.NoError(t, err)
		assert.False(t, second, "a spent code must not redeem twice")
	})

	t.Run("expiry boundary", func(t *testing.T) {
		// Still inside its lifetime for one more second.
		_, err := repos.Codes.Create(ctx, user.ID, "333333", models.CodeTypeEmail, time.Now().Add(time.Second))
		require.NoError(t, err)

		consumed, err := repos.Codes.Consume(ctx, user.ID, "333333", models.CodeTypeEmail)
		require.NoError(t, err)
		assert.True(t, consumed, "code just inside its lifetime must redeem")

		// One second past expiry.
		_, err = repos.Codes.Create(ctx, user.ID, "444444", models.CodeTypeEmail, time.Now().Add(-time.Second))
		require.NoError(t, err)

		consumed, err = repos.Codes.Consume(ctx, user.ID, "444444", models.CodeTypeEmail)
		require.NoError(t, err)
		assert.False(t, consumed, "code just past its lifetime must not redeem")
	})

	t.Run("wrong type does not redeem", func(t *testing.T) {
		_, err := repos.Codes.Create(ctx, user.ID, "555555", models.CodeTypeEmail, time.Now().Add(10*time.Minute))
		require.NoError(t, err)

		consumed, err := repos.Codes.Consume(ctx, user.ID, "555555", models.CodeTypePhone)
		require.NoError(t, err)
		assert.False(t, consumed)
	})

	t.Run("resend invalidates predecessors", func(t *testing.T) {
		_, err := repos.Codes.Create(ctx, user.ID, "666666", models.CodeTypePhone, time.Now().Add(10*time.Minute))
		require.NoError(t, err)

		require.NoError(t, repos.Codes.InvalidateByType(ctx, user.ID, models.CodeTypePhone))

		_, err = repos.Codes.Create(ctx, user.ID, "777777", models.CodeTypePhone, time.Now().Add(10*time.Minute))
		require.NoError(t, err)

		stale, err := repos.Codes.Consume(ctx, user.ID, "666666", models.CodeTypePhone)
		require.NoError(t, err)
		assert.False(t, stale, "superseded code must not redeem")

		fresh, err := repos.Codes.Consume(ctx, user.ID, "777777", models.CodeTypePhone)
		require.NoError(t, err)
		assert.True(t, fresh)
	})
}
