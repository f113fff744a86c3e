package processor

import (
	"context"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/config"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/mintforge/edition-engine/modules/editions/repository/memory"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const (
	testOwner    = "mintforge.owner"
	testTreasury = "mintforge.treasury"
	testBuyer    = "buyer.one"
	testReceiver = "receiver.one"
	testMarket   = "market.mintforge"
)

func testConfig() config.Config {
	return config.Config{
		Owner:           testOwner,
		Treasury:        testTreasury,
		StorageByteCost: 1,
	}
}

func newTestProcessor(t *testing.T, conf config.Config) (*Processor, *memory.Repository) {
	t.Helper()
	repo := memory.NewRepository()
	processor, err := NewProcessor(repo, repo, common.NetworkTestnet, conf, nil, nil)
	require.NoError(t, err)
	require.NoError(t, processor.VerifyStates(context.Background()))
	return processor, repo
}

func testCall(caller string, attached uint64) CallContext {
	return CallContext{
		Caller:   editions.AccountID(caller),
		Attached: uint128.From64(attached),
		Now:      testNow,
	}
}

func testSeriesParams(title string) CreateSeriesParams {
	return CreateSeriesParams{
		Metadata: editions.SeriesMetadata{Title: title},
	}
}

func TestProcessorCreateSeries(t *testing.T) {
	ctx := context.Background()

	t.Run("auto ids are sequential", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())

		first, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Sunset"))
		require.NoError(t, err)
		assert.Equal(t, editions.SeriesID("1"), first.Series.ID)
		assert.True(t, first.Series.Mintable)
		assert.Equal(t, lo.ToPtr(editions.DefaultFeeBps), first.Series.FeeBps)
		assert.Equal(t, uint128.From64(1_000_000-seriesStorageBytes(first.Series)), first.Refund)

		second, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Moonrise"))
		require.NoError(t, err)
		assert.Equal(t, editions.SeriesID("2"), second.Series.ID)
	})

	t.Run("custom id squatting the next auto id", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())

		params := testSeriesParams("Sunset")
		params.SeriesID = lo.ToPtr(editions.SeriesID("1"))
		_, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), params)
		require.NoError(t, err)

		// the auto path would also assign "1" now; it must collide, not overwrite
		_, err = processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Moonrise"))
		require.ErrorIs(t, err, errs.DuplicateSeries)
	})

	t.Run("validation failures", func(t *testing.T) {
		type testcase struct {
			name          string
			caller        string
			attached      uint64
			params        CreateSeriesParams
			expectedError error
		}
		testcases := []testcase{
			{
				name:          "caller is not the owner",
				caller:        testBuyer,
				attached:      1_000_000,
				params:        testSeriesParams("Sunset"),
				expectedError: errs.Unauthorized,
			},
			{
				name:     "explicit creator differs from caller",
				caller:   testOwner,
				attached: 1_000_000,
				params: CreateSeriesParams{
					Creator:  lo.ToPtr(editions.AccountID(testBuyer)),
					Metadata: editions.SeriesMetadata{Title: "Sunset"},
				},
				expectedError: errs.Unauthorized,
			},
			{
				name:          "missing title",
				caller:        testOwner,
				attached:      1_000_000,
				params:        CreateSeriesParams{},
				expectedError: errs.InvalidMetadata,
			},
			{
				name:     "custom id contains the instance delimiter",
				caller:   testOwner,
				attached: 1_000_000,
				params: CreateSeriesParams{
					SeriesID: lo.ToPtr(editions.SeriesID("bad:id")),
					Metadata: editions.SeriesMetadata{Title: "Sunset"},
				},
				expectedError: errs.InvalidArgument,
			},
			{
				name:     "royalty above the cap",
				caller:   testOwner,
				attached: 1_000_000,
				params: CreateSeriesParams{
					Metadata: editions.SeriesMetadata{Title: "Sunset"},
					Royalty: editions.RoyaltyMap{
						"payee.one": 5000,
						"payee.two": 4001,
					},
				},
				expectedError: errs.RoyaltyLimitExceeded,
			},
			{
				name:     "price at the ceiling",
				caller:   testOwner,
				attached: 1_000_000,
				params: CreateSeriesParams{
					Metadata: editions.SeriesMetadata{Title: "Sunset"},
					Price:    lo.ToPtr(editions.MaxPrice),
				},
				expectedError: errs.PriceOutOfRange,
			},
			{
				name:          "attached value cannot cover storage",
				caller:        testOwner,
				attached:      10,
				params:        testSeriesParams("Sunset"),
				expectedError: errs.InsufficientDeposit,
			},
		}
		for _, tc := range testcases {
			t.Run(tc.name, func(t *testing.T) {
				processor, repo := newTestProcessor(t, testConfig())
				_, err := processor.CreateSeries(ctx, testCall(tc.caller, tc.attached), tc.params)
				require.ErrorIs(t, err, tc.expectedError)

				// a failed call must leave no series behind
				count, err := repo.CountSeries(ctx)
				require.NoError(t, err)
				assert.Zero(t, count)
			})
		}
	})
}

func TestProcessorSeriesLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("set price re-snapshots the fee", func(t *testing.T) {
		processor, repo := newTestProcessor(t, testConfig())
		created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Sunset"))
		require.NoError(t, err)

		_, err = processor.ScheduleFee(ctx, testCall(testOwner, 0), 100, nil)
		require.NoError(t, err)

		series, err := processor.SetSeriesPrice(ctx, testCall(testOwner, 0), created.Series.ID, lo.ToPtr(uint128.From64(500_000)))
		require.NoError(t, err)
		assert.Equal(t, lo.ToPtr(uint128.From64(500_000)), series.Price)
		assert.Equal(t, lo.ToPtr(uint16(100)), series.FeeBps)

		stored, err := repo.GetSeriesByID(ctx, created.Series.ID)
		require.NoError(t, err)
		assert.Equal(t, lo.ToPtr(uint16(100)), stored.FeeBps)
	})

	t.Run("set price authorization and state", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())
		created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Sunset"))
		require.NoError(t, err)

		_, err = processor.SetSeriesPrice(ctx, testCall(testBuyer, 0), created.Series.ID, nil)
		require.ErrorIs(t, err, errs.NotCreator)

		_, err = processor.SetSeriesPrice(ctx, testCall(testOwner, 0), "404", nil)
		require.ErrorIs(t, err, errs.NoSuchSeries)

		_, err = processor.SetSeriesNonMintable(ctx, testCall(testOwner, 0), created.Series.ID)
		require.NoError(t, err)
		_, err = processor.SetSeriesPrice(ctx, testCall(testOwner, 0), created.Series.ID, nil)
		require.ErrorIs(t, err, errs.NotMintable)
	})

	t.Run("set non-mintable", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())
		uncapped, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Sunset"))
		require.NoError(t, err)

		series, err := processor.SetSeriesNonMintable(ctx, testCall(testOwner, 0), uncapped.Series.ID)
		require.NoError(t, err)
		assert.False(t, series.Mintable)

		_, err = processor.SetSeriesNonMintable(ctx, testCall(testOwner, 0), uncapped.Series.ID)
		require.ErrorIs(t, err, errs.AlreadyNonMintable)

		cappedParams := testSeriesParams("Moonrise")
		cappedParams.Metadata.Copies = lo.ToPtr(uint64(5))
		capped, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), cappedParams)
		require.NoError(t, err)
		_, err = processor.SetSeriesNonMintable(ctx, testCall(testOwner, 0), capped.Series.ID)
		require.ErrorIs(t, err, errs.UseDecreaseInstead)
	})

	t.Run("decrease copies", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())
		params := testSeriesParams("Sunset")
		params.Metadata.Copies = lo.ToPtr(uint64(5))
		created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), params)
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			_, err = processor.MintCreator(ctx, testCall(testOwner, 1_000_000), created.Series.ID, testOwner)
			require.NoError(t, err)
		}

		_, err = processor.DecreaseSeriesCopies(ctx, testCall(testBuyer, 0), created.Series.ID, 1)
		require.ErrorIs(t, err, errs.NotCreator)

		_, err = processor.DecreaseSeriesCopies(ctx, testCall(testOwner, 0), created.Series.ID, 4)
		require.ErrorIs(t, err, errs.CannotDecreaseBelowMinted)

		series, err := processor.DecreaseSeriesCopies(ctx, testCall(testOwner, 0), created.Series.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, lo.ToPtr(uint64(3)), series.CopiesCap())
		assert.True(t, series.Mintable)

		// dropping the cap to the minted count closes the series
		series, err = processor.DecreaseSeriesCopies(ctx, testCall(testOwner, 0), created.Series.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, lo.ToPtr(uint64(2)), series.CopiesCap())
		assert.False(t, series.Mintable)

		_, err = processor.MintCreator(ctx, testCall(testOwner, 1_000_000), created.Series.ID, testOwner)
		require.ErrorIs(t, err, errs.SeriesNotMintable)

		uncapped, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Moonrise"))
		require.NoError(t, err)
		_, err = processor.DecreaseSeriesCopies(ctx, testCall(testOwner, 0), uncapped.Series.ID, 1)
		require.ErrorIs(t, err, errs.InvalidArgument)
	})
}

func TestProcessorScheduleFee(t *testing.T) {
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())

		_, err := processor.ScheduleFee(ctx, testCall(testBuyer, 0), 100, nil)
		require.ErrorIs(t, err, errs.Unauthorized)

		_, err = processor.ScheduleFee(ctx, testCall(testOwner, 0), 10_000, nil)
		require.ErrorIs(t, err, errs.InvalidFee)

		_, err = processor.ScheduleFee(ctx, testCall(testOwner, 0), 100, lo.ToPtr(testNow.Add(-time.Hour)))
		require.ErrorIs(t, err, errs.ActivationInPast)
	})

	t.Run("immediate change clears a pending one", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())

		scheduled, err := processor.ScheduleFee(ctx, testCall(testOwner, 0), 100, lo.ToPtr(testNow.Add(time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, uint16(500), scheduled.Fee.CurrentFee)
		assert.True(t, scheduled.Fee.IsPending())

		immediate, err := processor.ScheduleFee(ctx, testCall(testOwner, 0), 200, nil)
		require.NoError(t, err)
		assert.Equal(t, editions.FeeSchedule{CurrentFee: 200}, immediate.Fee)
	})

	t.Run("pending change settles once matured", func(t *testing.T) {
		processor, repo := newTestProcessor(t, testConfig())

		_, err := processor.ScheduleFee(ctx, testCall(testOwner, 0), 100, lo.ToPtr(testNow.Add(time.Hour)))
		require.NoError(t, err)

		// any later command observes and persists the settled fee
		lateCall := testCall(testOwner, 1_000_000)
		lateCall.Now = testNow.Add(2 * time.Hour)
		created, err := processor.CreateSeries(ctx, lateCall, testSeriesParams("Sunset"))
		require.NoError(t, err)
		assert.Equal(t, lo.ToPtr(uint16(100)), created.Series.FeeBps)

		params, err := repo.GetEngineParams(ctx)
		require.NoError(t, err)
		assert.Equal(t, editions.FeeSchedule{CurrentFee: 100}, params.Fee)
	})
}

func TestProcessorEngineParams(t *testing.T) {
	ctx := context.Background()

	t.Run("first run seeds owner and treasury", func(t *testing.T) {
		_, repo := newTestProcessor(t, testConfig())

		params, err := repo.GetEngineParams(ctx)
		require.NoError(t, err)
		assert.Equal(t, editions.AccountID(testOwner), params.Owner)
		assert.Equal(t, editions.AccountID(testTreasury), params.Treasury)
		assert.Equal(t, editions.FeeSchedule{CurrentFee: editions.DefaultFeeBps}, params.Fee)
		assert.Zero(t, params.DefaultOgBalance)
		assert.Zero(t, params.TotalMinted)
	})

	t.Run("treasury defaults to the owner", func(t *testing.T) {
		conf := testConfig()
		conf.Treasury = ""
		_, repo := newTestProcessor(t, conf)

		params, err := repo.GetEngineParams(ctx)
		require.NoError(t, err)
		assert.Equal(t, editions.AccountID(testOwner), params.Treasury)
	})

	t.Run("set treasury is owner only", func(t *testing.T) {
		processor, _ := newTestProcessor(t, testConfig())

		_, err := processor.SetTreasury(ctx, testCall(testBuyer, 0), "vault.mintforge")
		require.ErrorIs(t, err, errs.Unauthorized)

		params, err := processor.SetTreasury(ctx, testCall(testOwner, 0), "vault.mintforge")
		require.NoError(t, err)
		assert.Equal(t, editions.AccountID("vault.mintforge"), params.Treasury)
	})

	t.Run("network mismatch is rejected", func(t *testing.T) {
		repo := memory.NewRepository()
		processor, err := NewProcessor(repo, repo, common.NetworkTestnet, testConfig(), nil, nil)
		require.NoError(t, err)
		require.NoError(t, processor.VerifyStates(context.Background()))

		other, err := NewProcessor(repo, repo, common.NetworkMainnet, testConfig(), nil, nil)
		require.NoError(t, err)
		require.ErrorIs(t, other.VerifyStates(context.Background()), errs.ConflictSetting)
	})

	t.Run("draw pool size mismatch is rejected", func(t *testing.T) {
		repo := memory.NewRepository()
		conf := testConfig()
		conf.DrawPoolSize = 4
		processor, err := NewProcessor(repo, repo, common.NetworkTestnet, conf, nil, nil)
		require.NoError(t, err)
		require.NoError(t, processor.VerifyStates(context.Background()))

		conf.DrawPoolSize = 8
		other, err := NewProcessor(repo, repo, common.NetworkTestnet, conf, nil, nil)
		require.NoError(t, err)
		require.ErrorIs(t, other.VerifyStates(context.Background()), errs.ConflictSetting)
	})
}

func TestProcessorEventChain(t *testing.T) {
	ctx := context.Background()
	processor, repo := newTestProcessor(t, testConfig())

	created, err := processor.CreateSeries(ctx, testCall(testOwner, 1_000_000), testSeriesParams("Sunset"))
	require.NoError(t, err)
	_, err = processor.SetSeriesPrice(ctx, testCall(testOwner, 0), created.Series.ID, lo.ToPtr(uint128.From64(1_000)))
	require.NoError(t, err)
	mint, err := processor.MintCreator(ctx, testCall(testOwner, 1_000_000), created.Series.ID, testBuyer)
	require.NoError(t, err)
	_, err = processor.Transfer(ctx, testCall(testBuyer, 0), TransferParams{
		InstanceID: mint.Instance.ID,
		ReceiverID: testReceiver,
	})
	require.NoError(t, err)
	require.NoError(t, processor.Burn(ctx, testCall(testReceiver, 0), mint.Instance.ID))

	events, err := repo.GetEventsAfter(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, events, 5)

	actions := lo.Map(events, func(event *entity.Event, _ int) entity.EventAction { return event.Action })
	assert.Equal(t, []entity.EventAction{
		entity.EventActionCreateSeries,
		entity.EventActionSetSeriesPrice,
		entity.EventActionMint,
		entity.EventActionTransfer,
		entity.EventActionBurn,
	}, actions)

	prevCumulativeHash := chainhash.Hash{}
	for _, event := range events {
		assert.Equal(t, calculateEventHash(event), event.Hash)
		assert.Equal(t, calculateCumulativeEventHash(prevCumulativeHash, event.Hash), event.CumulativeHash)
		prevCumulativeHash = event.CumulativeHash
	}
}
