package processor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/mintforge/edition-engine/modules/editions/repository/memory"
	"github.com/mintforge/edition-engine/pkg/parquetutils"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go/writer"
)

func testEvent(t *testing.T, action entity.EventAction, actor string) *entity.Event {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"type": string(action)})
	require.NoError(t, err)
	return &entity.Event{
		Action:         action,
		Actor:          editions.AccountID(actor),
		Payload:        payload,
		Hash:           chainhash.DoubleHashH([]byte(action)),
		CumulativeHash: chainhash.DoubleHashH([]byte(actor)),
		CreatedAt:      testNow,
	}
}

func TestArchiveEventsDatasource(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.CreateEvent(ctx, testEvent(t, entity.EventActionMint, testBuyer)))
	}

	datasource := NewArchiveEventsDatasource(repo, repo, 2)

	// no watermark yet, fetch starts from the beginning
	events, err := datasource.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, int64(1), events[0].Id)

	require.NoError(t, repo.SetLastArchivedEventId(ctx, 3))
	events, err = datasource.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(4), events[0].Id)
	assert.Equal(t, int64(5), events[1].Id)

	require.NoError(t, repo.SetLastArchivedEventId(ctx, 5))
	events, err = datasource.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventArchiveRowRoundTrip(t *testing.T) {
	seriesId := editions.SeriesID("alpha")
	event := testEvent(t, entity.EventActionCreateSeries, "creator.one")
	event.Id = 42
	event.SeriesID = &seriesId
	burnEvent := testEvent(t, entity.EventActionBurn, testBuyer)
	burnEvent.Id = 43

	buf := parquetutils.NewBuffer()
	w, err := writer.NewParquetWriter(buf, new(eventArchiveRow), parquetWriterConcurrency)
	require.NoError(t, err)
	require.NoError(t, w.Write(newEventArchiveRow(event)))
	require.NoError(t, w.Write(newEventArchiveRow(burnEvent)))
	require.NoError(t, w.WriteStop())

	rows, err := parquetutils.ReadAll[eventArchiveRow](parquetutils.NewBufferFrom(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(42), rows[0].Id)
	assert.Equal(t, string(entity.EventActionCreateSeries), rows[0].Action)
	assert.Equal(t, "creator.one", rows[0].Actor)
	assert.Equal(t, lo.ToPtr(seriesId.String()), rows[0].SeriesId)
	assert.Nil(t, rows[0].InstanceId)
	assert.Equal(t, event.Hash.String(), rows[0].Hash)
	assert.Equal(t, event.CumulativeHash.String(), rows[0].CumulativeHash)
	assert.Equal(t, testNow.UnixMilli(), rows[0].CreatedAt)

	assert.Equal(t, int64(43), rows[1].Id)
	assert.Nil(t, rows[1].SeriesId)
}

func TestArchiverBatchKey(t *testing.T) {
	archiver := &EventArchiver{batchSize: 10}
	assert.Equal(t, "events-000000000001-000000000010.parquet", archiver.batchKey(1, 10))

	archiver.keyPrefix = "testnet/editions"
	assert.Equal(t, "testnet/editions/events-000000000011-000000000020.parquet", archiver.batchKey(11, 20))
}
