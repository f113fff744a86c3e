package processor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/core/indexer"
	"github.com/mintforge/edition-engine/modules/editions/config"
	"github.com/mintforge/edition-engine/modules/editions/datagateway"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/mintforge/edition-engine/pkg/logger"
	"github.com/mintforge/edition-engine/pkg/logger/slogx"
	"github.com/mintforge/edition-engine/pkg/parquetutils"
	cstream "github.com/planxnx/concurrent-stream"
	"github.com/samber/lo"
	"github.com/xitongsys/parquet-go/writer"
)

const (
	defaultArchiveBatchSize = 1000
	DefaultArchiveInterval  = time.Minute

	archiverUploadConcurrency = 4
	parquetWriterConcurrency  = 4
)

// Make sure to implement the Datasource interface
var _ indexer.Datasource[*entity.Event] = (*archiveEventsDatasource)(nil)

// archiveEventsDatasource feeds the archiver with events newer than the
// archive watermark, oldest first.
type archiveEventsDatasource struct {
	editionsDg   datagateway.EditionsDataGateway
	engineInfoDg datagateway.EngineInfoDataGateway
	fetchSize    int32
}

func NewArchiveEventsDatasource(editionsDg datagateway.EditionsDataGateway, engineInfoDg datagateway.EngineInfoDataGateway, batchSize int) *archiveEventsDatasource {
	return &archiveEventsDatasource{
		editionsDg:   editionsDg,
		engineInfoDg: engineInfoDg,
		fetchSize:    int32(batchSize * archiverUploadConcurrency),
	}
}

func (archiveEventsDatasource) Name() string {
	return "unarchived_events"
}

func (d *archiveEventsDatasource) Fetch(ctx context.Context) ([]*entity.Event, error) {
	lastArchivedId, err := d.engineInfoDg.GetLastArchivedEventId(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return nil, errors.Wrap(err, "failed to get last archived event id")
	}
	events, err := d.editionsDg.GetEventsAfter(ctx, lastArchivedId, d.fetchSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get events")
	}
	return events, nil
}

// eventArchiveRow is the Parquet layout of one event log record. The layout
// is a stable contract with off-system consumers of the archive.
type eventArchiveRow struct {
	Id             int64   `parquet:"name=id, type=INT64"`
	Action         string  `parquet:"name=action, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Actor          string  `parquet:"name=actor, type=BYTE_ARRAY, convertedtype=UTF8"`
	SeriesId       *string `parquet:"name=series_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	InstanceId     *string `parquet:"name=instance_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Payload        string  `parquet:"name=payload, type=BYTE_ARRAY, convertedtype=UTF8"`
	Hash           string  `parquet:"name=hash, type=BYTE_ARRAY, convertedtype=UTF8"`
	CumulativeHash string  `parquet:"name=cumulative_hash, type=BYTE_ARRAY, convertedtype=UTF8"`
	CreatedAt      int64   `parquet:"name=created_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

// Make sure to implement the Processor interface
var _ indexer.Processor[*entity.Event] = (*EventArchiver)(nil)

// EventArchiver drains the event log into Parquet files on S3. Files are
// keyed by the event id range they cover, so a retried batch overwrites its
// previous upload instead of duplicating it. The watermark only advances
// after every file of the poll landed.
type EventArchiver struct {
	engineInfoDg datagateway.EngineInfoDataGateway
	uploader     *manager.Uploader
	s3Bucket     string
	keyPrefix    string
	batchSize    int
}

func NewEventArchiver(ctx context.Context, engineInfoDg datagateway.EngineInfoDataGateway, conf config.ArchiveConfig) (*EventArchiver, error) {
	if conf.S3Bucket == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "archive.s3_bucket config is required if archive is enabled")
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "can't load aws user config")
	}
	s3Client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if conf.S3Region != "" {
			o.Region = conf.S3Region
		}
	})
	batchSize := conf.BatchSize
	if batchSize <= 0 {
		batchSize = defaultArchiveBatchSize
	}
	return &EventArchiver{
		engineInfoDg: engineInfoDg,
		uploader:     manager.NewUploader(s3Client),
		s3Bucket:     conf.S3Bucket,
		keyPrefix:    strings.TrimSuffix(conf.KeyPrefix, "/"),
		batchSize:    batchSize,
	}, nil
}

func (EventArchiver) Name() string {
	return "editions_event_archiver"
}

// BatchSize is the number of events per archive file, for sizing the
// datasource fetch.
func (a *EventArchiver) BatchSize() int {
	return a.batchSize
}

func (a *EventArchiver) Process(ctx context.Context, events []*entity.Event) error {
	// Upload batches in parallel
	out := make(chan error)
	stream := cstream.NewStream(ctx, archiverUploadConcurrency, out)

	go func() {
		defer close(out)
		_ = stream.Wait()
	}()

	go func() {
		defer stream.Close()
		for _, batch := range lo.Chunk(events, a.batchSize) {
			batch := batch
			stream.Go(func() error {
				return a.uploadBatch(ctx, batch)
			})
		}
	}()

	var errList []error
	for err := range out {
		if err != nil {
			errList = append(errList, err)
		}
	}
	if err := errors.Join(errList...); err != nil {
		return errors.Wrap(err, "failed to upload event batches")
	}

	lastId := events[len(events)-1].Id
	if err := a.engineInfoDg.SetLastArchivedEventId(ctx, lastId); err != nil {
		return errors.Wrap(err, "failed to set last archived event id")
	}
	logger.InfoContext(ctx, "Archived events",
		slogx.Int("events", len(events)),
		slogx.Int64("lastEventId", lastId),
	)
	return nil
}

func (a *EventArchiver) Shutdown(_ context.Context) error {
	return nil
}

func (a *EventArchiver) uploadBatch(ctx context.Context, events []*entity.Event) error {
	buf := parquetutils.NewBuffer()
	w, err := writer.NewParquetWriter(buf, new(eventArchiveRow), parquetWriterConcurrency)
	if err != nil {
		return errors.Wrap(err, "can't create parquet writer")
	}
	for _, event := range events {
		if err := w.Write(newEventArchiveRow(event)); err != nil {
			return errors.Wrapf(err, "can't write event %d", event.Id)
		}
	}
	if err := w.WriteStop(); err != nil {
		return errors.Wrap(err, "can't finalize parquet file")
	}

	key := a.batchKey(events[0].Id, events[len(events)-1].Id)
	if _, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.s3Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	}); err != nil {
		return errors.Wrapf(err, "can't upload %q", key)
	}
	return nil
}

func (a *EventArchiver) batchKey(fromId, toId int64) string {
	key := fmt.Sprintf("events-%012d-%012d.parquet", fromId, toId)
	if a.keyPrefix != "" {
		key = a.keyPrefix + "/" + key
	}
	return key
}

func newEventArchiveRow(event *entity.Event) eventArchiveRow {
	row := eventArchiveRow{
		Id:             event.Id,
		Action:         string(event.Action),
		Actor:          event.Actor.String(),
		Payload:        string(event.Payload),
		Hash:           event.Hash.String(),
		CumulativeHash: event.CumulativeHash.String(),
		CreatedAt:      event.CreatedAt.UnixMilli(),
	}
	if event.SeriesID != nil {
		row.SeriesId = lo.ToPtr(event.SeriesID.String())
	}
	if event.InstanceID != nil {
		row.InstanceId = lo.ToPtr(event.InstanceID.String())
	}
	return row
}
