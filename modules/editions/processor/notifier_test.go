package processor

import (
	"context"
	"testing"
	"time"

	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoticeDispatcherShutdown(t *testing.T) {
	ctx := context.Background()

	cleanedUp := false
	dispatcher := NewNoticeDispatcher(nil, common.NetworkTestnet, []func(context.Context) error{
		func(context.Context) error {
			cleanedUp = true
			return nil
		},
	})

	runErr := make(chan error, 1)
	go func() {
		runErr <- dispatcher.Run(ctx)
	}()

	// notices are dropped without a gateway, commands must not block
	require.NoError(t, dispatcher.DrawNotices().Send(ctx, entity.DrawNotice{
		WinnerID: testBuyer,
	}))
	require.NoError(t, dispatcher.ApprovalNotices().Send(ctx, entity.ApprovalNotice{
		ApprovedID: testReceiver,
	}))

	require.NoError(t, dispatcher.Shutdown())
	assert.True(t, cleanedUp)

	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop")
	}
}
