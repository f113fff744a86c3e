package processor

import (
	"context"
	"testing"

	"github.com/mintforge/edition-engine/modules/editions/datagateway"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/mintforge/edition-engine/modules/editions/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingTransferDatasource(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()

	instanceId := editions.NewInstanceID("alpha", 1)
	firstId, err := repo.CreatePendingTransfer(ctx, &entity.PendingTransfer{
		InstanceID:    instanceId,
		SenderID:      testMarket,
		PreviousOwner: testBuyer,
		ReceiverID:    testReceiver,
		Status:        entity.PendingTransferStatusPending,
		CreatedAt:     testNow,
	})
	require.NoError(t, err)
	secondId, err := repo.CreatePendingTransfer(ctx, &entity.PendingTransfer{
		InstanceID:    instanceId,
		SenderID:      testBuyer,
		PreviousOwner: testBuyer,
		ReceiverID:    testMarket,
		Status:        entity.PendingTransferStatusPending,
		CreatedAt:     testNow,
	})
	require.NoError(t, err)

	datasource := NewPendingTransferDatasource(repo)
	transfers, err := datasource.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	assert.Equal(t, firstId, transfers[0].Id)
	assert.Equal(t, secondId, transfers[1].Id)

	require.NoError(t, repo.ResolvePendingTransfer(ctx, datagateway.ResolvePendingTransferParams{
		Id:         firstId,
		Status:     entity.PendingTransferStatusKept,
		ResolvedAt: testNow,
	}))

	transfers, err = datasource.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, secondId, transfers[0].Id)
}
