package processor

import (
	"context"
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintTestInstance(t *testing.T, processor *Processor, owner string) *entity.Instance {
	t.Helper()
	ctx := context.Background()
	created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Sunset"))
	require.NoError(t, err)
	mint, err := processor.MintCreator(ctx, testCall(testOwner, 1_000_000), created.Series.ID, editions.AccountID(owner))
	require.NoError(t, err)
	return mint.Instance
}

func TestProcessorTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("owner transfers", func(t *testing.T) {
		processor, repo := newTestProcessor(t, testConfig())
		instance := mintTestInstance(t, processor, testBuyer)

		transferred, err := processor.Transfer(ctx, testCall(testBuyer, 0), TransferParams{
			InstanceID: instance.ID,
			ReceiverID: testReceiver,
		})
		require.NoError(t, err)
		assert.Equal(t, editions.AccountID(testReceiver), transferred.Owner)

		stored, err := repo.GetInstanceByID(ctx, instance.ID)
		require.NoError(t, err)
		assert.Equal(t, editions.AccountID(testReceiver), stored.Owner)
	})

	t.Run("approved account transfers and approvals reset", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())
		created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Sunset"))
		require.NoError(t, err)
		mint, err := processor.MintAndApprove(ctx, testCall(testOwner, 1_000_000), MintAndApproveParams{
			SeriesID:   created.Series.ID,
			ApprovedID: testMarket,
		})
		require.NoError(t, err)

		transferred, err := processor.Transfer(ctx, testCall(testMarket, 0), TransferParams{
			InstanceID: mint.Instance.ID,
			ReceiverID: testBuyer,
		})
		require.NoError(t, err)
		assert.Equal(t, editions.AccountID(testBuyer), transferred.Owner)
		assert.Empty(t, transferred.Approvals)

		// the approval died with the ownership change
		_, err = processor.Transfer(ctx, testCall(testMarket, 0), TransferParams{
			InstanceID: mint.Instance.ID,
			ReceiverID: testReceiver,
		})
		require.ErrorIs(t, err, errs.Unauthorized)
	})

	t.Run("rejections", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())
		instance := mintTestInstance(t, processor, testBuyer)

		_, err := processor.Transfer(ctx, testCall(testReceiver, 0), TransferParams{
			InstanceID: instance.ID,
			ReceiverID: testReceiver,
		})
		require.ErrorIs(t, err, errs.Unauthorized)

		_, err = processor.Transfer(ctx, testCall(testBuyer, 0), TransferParams{
			InstanceID: instance.ID,
			ReceiverID: testBuyer,
		})
		require.ErrorIs(t, err, errs.InvalidArgument)

		_, err = processor.Transfer(ctx, testCall(testBuyer, 0), TransferParams{
			InstanceID: editions.NewInstanceID("404", 1),
			ReceiverID: testReceiver,
		})
		require.ErrorIs(t, err, errs.NotFound)
	})
}

func TestProcessorTransferCall(t *testing.T) {
	ctx := context.Background()

	startTransfer := func(t *testing.T) (*Processor, *TransferCallResult) {
		t.Helper()
		processor, _ := newTestProcessor(t, testConfig())
		instance := mintTestInstance(t, processor, testBuyer)
		result, err := processor.TransferCall(ctx, testCall(testBuyer, 0), TransferCallParams{
			InstanceID: instance.ID,
			ReceiverID: testReceiver,
			Message:    lo.ToPtr("hello"),
		})
		require.NoError(t, err)
		return processor, result
	}

	t.Run("moves immediately and records the pending transfer", func(t *testing.T) {
		processor, result := startTransfer(t)
		assert.Equal(t, editions.AccountID(testReceiver), result.Instance.Owner)

		transfer, err := processor.editionsDg.GetPendingTransferByID(ctx, result.TransferID)
		require.NoError(t, err)
		assert.Equal(t, entity.PendingTransferStatusPending, transfer.Status)
		assert.Equal(t, editions.AccountID(testBuyer), transfer.PreviousOwner)
		assert.Equal(t, editions.AccountID(testReceiver), transfer.ReceiverID)
	})

	t.Run("keep verdict leaves the receiver as owner", func(t *testing.T) {
		processor, result := startTransfer(t)

		resolved, err := processor.ResolvePendingTransfer(ctx, testCall(testReceiver, 0), result.TransferID, false)
		require.NoError(t, err)
		assert.Equal(t, entity.PendingTransferStatusKept, resolved.Status)

		instance, err := processor.editionsDg.GetInstanceByID(ctx, result.Instance.ID)
		require.NoError(t, err)
		assert.Equal(t, editions.AccountID(testReceiver), instance.Owner)
	})

	t.Run("return verdict restores the previous owner", func(t *testing.T) {
		processor, result := startTransfer(t)

		resolved, err := processor.ResolvePendingTransfer(ctx, testCall(testReceiver, 0), result.TransferID, true)
		require.NoError(t, err)
		assert.Equal(t, entity.PendingTransferStatusReturned, resolved.Status)

		instance, err := processor.editionsDg.GetInstanceByID(ctx, result.Instance.ID)
		require.NoError(t, err)
		assert.Equal(t, editions.AccountID(testBuyer), instance.Owner)
	})

	t.Run("return after the receiver moved on stands", func(t *testing.T) {
		processor, result := startTransfer(t)

		_, err := processor.Transfer(ctx, testCall(testReceiver, 0), TransferParams{
			InstanceID: result.Instance.ID,
			ReceiverID: testMarket,
		})
		require.NoError(t, err)

		resolved, err := processor.ResolvePendingTransfer(ctx, testCall(testReceiver, 0), result.TransferID, true)
		require.NoError(t, err)
		assert.Equal(t, entity.PendingTransferStatusKept, resolved.Status)

		instance, err := processor.editionsDg.GetInstanceByID(ctx, result.Instance.ID)
		require.NoError(t, err)
		assert.Equal(t, editions.AccountID(testMarket), instance.Owner)
	})

	t.Run("return after a burn stands", func(t *testing.T) {
		processor, result := startTransfer(t)
		require.NoError(t, processor.Burn(ctx, testCall(testReceiver, 0), result.Instance.ID))

		resolved, err := processor.ResolvePendingTransfer(ctx, testCall(testReceiver, 0), result.TransferID, true)
		require.NoError(t, err)
		assert.Equal(t, entity.PendingTransferStatusKept, resolved.Status)
	})

	t.Run("resolution is exactly once", func(t *testing.T) {
		processor, result := startTransfer(t)

		_, err := processor.ResolvePendingTransfer(ctx, testCall(testReceiver, 0), result.TransferID, false)
		require.NoError(t, err)
		_, err = processor.ResolvePendingTransfer(ctx, testCall(testReceiver, 0), result.TransferID, true)
		require.ErrorIs(t, err, errs.ConflictSetting)
	})

	t.Run("only the receiver or the engine owner resolves", func(t *testing.T) {
		processor, result := startTransfer(t)

		_, err := processor.ResolvePendingTransfer(ctx, testCall(testMarket, 0), result.TransferID, false)
		require.ErrorIs(t, err, errs.Unauthorized)

		_, err = processor.ResolvePendingTransfer(ctx, testCall(testOwner, 0), result.TransferID, false)
		require.NoError(t, err)
	})
}

func TestProcessorTransferWithPayout(t *testing.T) {
	ctx := context.Background()

	t.Run("splits the balance and counts the sale", func(t *testing.T) {
		processor, repo := newTestProcessor(t, testConfig())
		params := testSeriesParams("Sunset")
		params.Royalty = editions.RoyaltyMap{"payee.one": 1000}
		created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), params)
		require.NoError(t, err)
		mint, err := processor.MintCreator(ctx, testCall(testOwner, 1_000_000), created.Series.ID, testBuyer)
		require.NoError(t, err)

		result, err := processor.TransferWithPayout(ctx, testCall(testBuyer, 0), TransferPayoutParams{
			InstanceID: mint.Instance.ID,
			ReceiverID: testReceiver,
			Balance:    lo.ToPtr(uint128.From64(1_000_000)),
			MaxPayees:  editions.MaxRoyaltyAccounts + 1,
		})
		require.NoError(t, err)
		assert.Equal(t, editions.AccountID(testReceiver), result.Instance.Owner)
		assert.Equal(t, uint128.From64(100_000), result.Payout["payee.one"])
		assert.Equal(t, uint128.From64(900_000), result.Payout[editions.AccountID(testBuyer)])
		assert.Equal(t, uint64(1), result.SaleCount)

		count, err := repo.GetSellerSaleCount(ctx, testBuyer)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)
	})

	t.Run("payee limit bounds the fan-out", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())
		params := testSeriesParams("Sunset")
		params.Royalty = editions.RoyaltyMap{"payee.one": 1000}
		created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), params)
		require.NoError(t, err)
		mint, err := processor.MintCreator(ctx, testCall(testOwner, 1_000_000), created.Series.ID, testBuyer)
		require.NoError(t, err)

		_, err = processor.TransferWithPayout(ctx, testCall(testBuyer, 0), TransferPayoutParams{
			InstanceID: mint.Instance.ID,
			ReceiverID: testReceiver,
			Balance:    lo.ToPtr(uint128.From64(1_000_000)),
			MaxPayees:  1,
		})
		require.ErrorIs(t, err, errs.PayeeCountExceedsLimit)
	})

	t.Run("nil balance still counts the sale", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())
		instance := mintTestInstance(t, processor, testBuyer)

		result, err := processor.TransferWithPayout(ctx, testCall(testBuyer, 0), TransferPayoutParams{
			InstanceID: instance.ID,
			ReceiverID: testReceiver,
		})
		require.NoError(t, err)
		assert.Nil(t, result.Payout)
		assert.Equal(t, uint64(1), result.SaleCount)
	})
}
