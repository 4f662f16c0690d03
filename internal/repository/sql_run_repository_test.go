package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/database"
	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/models"
)

func TestSQLRunRepository_CreateAndGet(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *database.DB) {
		repo := NewSQLRunRepository(db)
		ctx := context.Background()
		user := createTestUser(t, db, "runs@example.com")

		run := &models.Run{
			UserID:  &user.ID,
			Kind:    models.RunOptimize,
			Success: true,
			Input:   json.RawMessage(`{"vehicle":{"model":"e4"}}`),
			Result:  json.RawMessage(`{"success":true}`),
		}
		require.NoError(t, repo.Create(ctx, run))
		assert.NotEqual(t, uuid.Nil, run.ID)

		got, err := repo.GetByID(ctx, user.ID, run.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RunOptimize, got.Kind)
		assert.True(t, got.Success)
		assert.JSONEq(t, `{"vehicle":{"model":"e4"}}`, string(got.Input))
		assert.JSONEq(t, `{"success":true}`, string(got.Result))
		require.NotNil(t, got.UserID)
		assert.Equal(t, user.ID, *got.UserID)
		assert.Nil(t, got.ProfileID)

		_, err = repo.GetByID(ctx, uuid.New(), run.ID)
		assert.ErrorIs(t, err, ErrRunNotFound)
	})
}

func TestSQLRunRepository_Anonymous(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *database.DB) {
		repo := NewSQLRunRepository(db)

		run := &models.Run{
			Kind:   models.RunTrip,
			Input:  json.RawMessage(`{}`),
			Result: json.RawMessage(`{}`),
		}
		require.NoError(t, repo.Create(context.Background(), run))
	})
}

func TestSQLRunRepository_ListNewestFirst(t *testing.T) {
	forEachDriver(t, func(t *testing.T, db *database.DB) {
		repo := NewSQLRunRepository(db)
		ctx := context.Background()
		user := createTestUser(t, db, "history@example.com")

		base := time.Now().UTC().Truncate(time.Second)
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.Create(ctx, &models.Run{
				UserID:    &user.ID,
				Kind:      models.RunOptimize,
				Input:     json.RawMessage(`{}`),
				Result:    json.RawMessage(`{}`),
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		runs, err := repo.ListByUser(ctx, user.ID, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
		assert.Equal(t, base.Add(2*time.Minute).Unix(), runs[0].CreatedAt.Unix())

		runs, err = repo.ListByUser(ctx, user.ID, 0)
		require.NoError(t, err)
		assert.Len(t, runs, 3)
	})
}
