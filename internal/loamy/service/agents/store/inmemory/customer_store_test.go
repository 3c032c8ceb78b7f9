package inmemory

import (
	"context"
	"testing"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg/errno"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/store/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerStore(t *testing.T) {
	ctx := context.Background()
	s := NewCustomerStore()
	require.NoError(t, seed.Load(ctx, s))

	c, err := s.Get(ctx, "  ALICE ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", c.Name)
	assert.Equal(t, entity.StatusVerified, c.Status)
	assert.Equal(t, 780, c.CreditScore)

	// Returned values are copies.
	c.CreditScore = 1
	again, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 780, again.CreditScore)

	_, err = s.Get(ctx, "zoe")
	assert.ErrorIs(t, err, errno.ErrCustomerNotFound)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "Alice", list[0].Name)
	assert.Equal(t, "David", list[3].Name)

	require.NoError(t, s.Upsert(ctx, &entity.Customer{Name: "alice", Status: entity.StatusFailed}))
	c, err = s.Get(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, c.Status)
}
