package processor

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed(n uint64) []byte {
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, n)
	return seed
}

func TestProcessorPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("splits the price among payees, creator and treasury", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())
		params := testSeriesParams("Sunset")
		params.Price = lo.ToPtr(uint128.From64(1_000_000))
		params.Royalty = editions.RoyaltyMap{"payee.one": 1000}
		created, err := processor.CreateSeries(ctx, testCall(testOwner, 10_000_000), params)
		require.NoError(t, err)

		result, err := processor.Purchase(ctx, testCall(testBuyer, 2_000_000), PurchaseParams{
			SeriesID:   created.Series.ID,
			ReceiverID: testBuyer,
		})
		require.NoError(t, err)
		assert.Equal(t, editions.NewInstanceID(created.Series.ID, 1), result.Instance.ID)
		assert.Equal(t, editions.AccountID(testBuyer), result.Instance.Owner)
		assert.Equal(t, uint128.From64(1_000_000), result.Price)

		// default fee is 500 bps, snapshotted at creation
		assert.Equal(t, uint128.From64(50_000), result.Fee)
		assert.Equal(t, editions.AccountID(testTreasury), result.Treasury)
		assert.Equal(t, uint128.From64(100_000), result.Payout["payee.one"])
		assert.Equal(t, uint128.From64(850_000), result.Payout[editions.AccountID(testOwner)])
		assert.Equal(t, uint128.From64(2_000_000-1_000_000-instanceStorageBytes(result.Instance)), result.Refund)

		distributed := result.Fee
		for _, share := range result.Payout {
			distributed = distributed.Add(share)
		}
		assert.LessOrEqual(t, distributed.Cmp(result.Price), 0)
	})

	t.Run("unpriced series is not for sale", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())
		created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Sunset"))
		require.NoError(t, err)

		_, err = processor.Purchase(ctx, testCall(testBuyer, 2_000_000), PurchaseParams{
			SeriesID:   created.Series.ID,
			ReceiverID: testBuyer,
		})
		require.ErrorIs(t, err, errs.InvalidArgument)
	})

	t.Run("attached value must cover the price", func(t *testing.T) {
		processor, repo := newTestProcessor(t, testConfig())
		params := testSeriesParams("Sunset")
		params.Price = lo.ToPtr(uint128.From64(1_000_000))
		created, err := processor.CreateSeries(ctx, testCall(testOwner, 10_000_000), params)
		require.NoError(t, err)

		_, err = processor.Purchase(ctx, testCall(testBuyer, 500_000), PurchaseParams{
			SeriesID:   created.Series.ID,
			ReceiverID: testBuyer,
		})
		require.ErrorIs(t, err, errs.InsufficientDeposit)

		// the failed mint must roll back entirely
		count, err := repo.CountInstances(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
		series, err := repo.GetSeriesByID(ctx, created.Series.ID)
		require.NoError(t, err)
		assert.Zero(t, series.MintedCount)
	})

	t.Run("settles against the snapshot, not the live fee", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())
		params := testSeriesParams("Sunset")
		params.Price = lo.ToPtr(uint128.From64(1_000_000))
		created, err := processor.CreateSeries(ctx, testCall(testOwner, 10_000_000), params)
		require.NoError(t, err)

		// schedule a cheaper fee; the series keeps its 500 bps snapshot
		activation := testNow.Add(time.Hour)
		_, err = processor.ScheduleFee(ctx, testCall(testOwner, 0), 100, &activation)
		require.NoError(t, err)

		lateCall := testCall(testBuyer, 2_000_000)
		lateCall.Now = testNow.Add(2 * time.Hour)
		result, err := processor.Purchase(ctx, lateCall, PurchaseParams{
			SeriesID:   created.Series.ID,
			ReceiverID: testBuyer,
		})
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(50_000), result.Fee)

		// re-pricing re-snapshots against the settled 100 bps fee
		lateOwnerCall := testCall(testOwner, 0)
		lateOwnerCall.Now = testNow.Add(2 * time.Hour)
		_, err = processor.SetSeriesPrice(ctx, lateOwnerCall, created.Series.ID, lo.ToPtr(uint128.From64(1_000_000)))
		require.NoError(t, err)

		result, err = processor.Purchase(ctx, lateCall, PurchaseParams{
			SeriesID:   created.Series.ID,
			ReceiverID: testBuyer,
		})
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(10_000), result.Fee)
	})
}

func TestProcessorMintExhaustion(t *testing.T) {
	ctx := context.Background()
	processor, repo := newTestProcessor(t, testConfig())

	params := testSeriesParams("Sunset")
	params.Metadata.Copies = lo.ToPtr(uint64(3))
	created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), params)
	require.NoError(t, err)

	seen := make(map[editions.InstanceID]struct{})
	for i := uint64(1); i <= 3; i++ {
		mint, err := processor.MintCreator(ctx, testCall(testOwner, 1_000_000), created.Series.ID, testOwner)
		require.NoError(t, err)
		assert.Equal(t, i, mint.Instance.ID.Edition)
		seen[mint.Instance.ID] = struct{}{}
	}
	assert.Len(t, seen, 3)

	series, err := repo.GetSeriesByID(ctx, created.Series.ID)
	require.NoError(t, err)
	assert.False(t, series.Mintable)
	assert.Equal(t, uint64(3), series.MintedCount)

	_, err = processor.MintCreator(ctx, testCall(testOwner, 1_000_000), created.Series.ID, testOwner)
	require.ErrorIs(t, err, errs.SeriesNotMintable)
}

func TestProcessorMintAllowlist(t *testing.T) {
	ctx := context.Background()
	processor, _ := newTestProcessor(t, testConfig())

	created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Sunset"))
	require.NoError(t, err)

	_, err = processor.MintAllowlist(ctx, testCall(testBuyer, 1_000_000), created.Series.ID, testBuyer)
	require.ErrorIs(t, err, errs.Unauthorized)

	_, err = processor.AddOgAccount(ctx, testCall(testOwner, 0), testBuyer, lo.ToPtr(uint32(1)))
	require.NoError(t, err)

	mint, err := processor.MintAllowlist(ctx, testCall(testBuyer, 1_000_000), created.Series.ID, testBuyer)
	require.NoError(t, err)
	assert.Equal(t, editions.AccountID(testBuyer), mint.Instance.Owner)
	assert.Zero(t, mint.RemainingBalance)

	// the balance is spent
	_, err = processor.MintAllowlist(ctx, testCall(testBuyer, 1_000_000), created.Series.ID, testBuyer)
	require.ErrorIs(t, err, errs.Unauthorized)
}

func TestProcessorDrawAndMint(t *testing.T) {
	ctx := context.Background()

	t.Run("draws are disabled without a pool", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())
		_, err := processor.DrawAndMint(ctx, testCall(testBuyer, 1_000_000))
		require.ErrorIs(t, err, errs.Unsupported)
	})

	t.Run("drains the pool without replacement", func(t *testing.T) {
		conf := testConfig()
		conf.DrawPoolSize = 3
		processor, _ := newTestProcessor(t, conf)

		for _, title := range []string{"Sunset", "Moonrise", "Eclipse"} {
			_, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams(title))
			require.NoError(t, err)
		}

		seenIndices := make(map[uint64]struct{})
		for i := uint64(0); i < 3; i++ {
			call := testCall(testBuyer, 1_000_000)
			call.Seed = testSeed(i * 7)
			result, err := processor.DrawAndMint(ctx, call)
			require.NoError(t, err)
			assert.Less(t, result.Index, uint64(3))
			assert.Equal(t, editions.NewSeriesID(result.Index+1), result.SeriesID)
			assert.Equal(t, editions.AccountID(testBuyer), result.Instance.Owner)
			seenIndices[result.Index] = struct{}{}
		}
		assert.Len(t, seenIndices, 3)

		call := testCall(testBuyer, 1_000_000)
		call.Seed = testSeed(99)
		_, err := processor.DrawAndMint(ctx, call)
		require.ErrorIs(t, err, errs.PoolExhausted)
	})
}

func TestProcessorMintAndApprove(t *testing.T) {
	ctx := context.Background()
	processor, _ := newTestProcessor(t, testConfig())

	created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Sunset"))
	require.NoError(t, err)

	_, err = processor.MintAndApprove(ctx, testCall(testBuyer, 1_000_000), MintAndApproveParams{
		SeriesID:   created.Series.ID,
		ApprovedID: testMarket,
	})
	require.ErrorIs(t, err, errs.NotCreator)

	result, err := processor.MintAndApprove(ctx, testCall(testOwner, 1_000_000), MintAndApproveParams{
		SeriesID:   created.Series.ID,
		ApprovedID: testMarket,
		Message:    lo.ToPtr("list it"),
	})
	require.NoError(t, err)
	assert.Equal(t, editions.AccountID(testOwner), result.Instance.Owner)
	assert.Equal(t, uint64(1), result.ApprovalID)
	assert.Equal(t, map[editions.AccountID]uint64{testMarket: 1}, result.Instance.Approvals)
	assert.Equal(t, uint64(2), result.Instance.NextApprovalID)
}

func TestProcessorBurn(t *testing.T) {
	ctx := context.Background()
	processor, repo := newTestProcessor(t, testConfig())

	created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Sunset"))
	require.NoError(t, err)
	mint, err := processor.MintCreator(ctx, testCall(testOwner, 1_000_000), created.Series.ID, testBuyer)
	require.NoError(t, err)

	err = processor.Burn(ctx, testCall(testReceiver, 0), mint.Instance.ID)
	require.ErrorIs(t, err, errs.Unauthorized)

	require.NoError(t, processor.Burn(ctx, testCall(testBuyer, 0), mint.Instance.ID))
	_, err = repo.GetInstanceByID(ctx, mint.Instance.ID)
	require.ErrorIs(t, err, errs.NotFound)

	// the edition number stays consumed
	series, err := repo.GetSeriesByID(ctx, created.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), series.MintedCount)
	next, err := processor.MintCreator(ctx, testCall(testOwner, 1_000_000), created.Series.ID, testBuyer)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.Instance.ID.Edition)
}
