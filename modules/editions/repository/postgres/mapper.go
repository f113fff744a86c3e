package postgres

import (
	"encoding/json"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
)

func uint128FromNumeric(src pgtype.Numeric) (*uint128.Uint128, error) {
	if !src.Valid {
		return nil, nil
	}
	bytes, err := src.MarshalJSON()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	result, err := uint128.FromString(string(bytes))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &result, nil
}

func numericFromUint128(src *uint128.Uint128) (pgtype.Numeric, error) {
	if src == nil {
		return pgtype.Numeric{}, nil
	}
	bytes := []byte(src.String())
	var result pgtype.Numeric
	err := result.UnmarshalJSON(bytes)
	if err != nil {
		return pgtype.Numeric{}, errors.WithStack(err)
	}
	return result, nil
}

func timestampFromTime(src time.Time) pgtype.Timestamp {
	return pgtype.Timestamp{Time: src.UTC(), Valid: true}
}

func timestampFromTimePtr(src *time.Time) pgtype.Timestamp {
	if src == nil {
		return pgtype.Timestamp{}
	}
	return timestampFromTime(*src)
}

func timeFromTimestamp(src pgtype.Timestamp) time.Time {
	if !src.Valid {
		return time.Time{}
	}
	return src.Time.UTC()
}

func timePtrFromTimestamp(src pgtype.Timestamp) *time.Time {
	if !src.Valid {
		return nil
	}
	t := src.Time.UTC()
	return &t
}

type seriesModel struct {
	ID          string
	Creator     string
	Title       string
	Description string
	Media       string
	Reference   string
	Copies      pgtype.Int8
	Extra       string
	Royalty     []byte
	Price       pgtype.Numeric
	FeeBps      pgtype.Int2
	Mintable    bool
	MintedCount int64
	CreatedAt   pgtype.Timestamp
	UpdatedAt   pgtype.Timestamp
}

func mapSeriesModelToType(src seriesModel) (*entity.Series, error) {
	var royalty editions.RoyaltyMap
	if len(src.Royalty) > 0 {
		if err := json.Unmarshal(src.Royalty, &royalty); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal royalty")
		}
	}
	price, err := uint128FromNumeric(src.Price)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse price")
	}
	var copies *uint64
	if src.Copies.Valid {
		c := uint64(src.Copies.Int64)
		copies = &c
	}
	var feeBps *uint16
	if src.FeeBps.Valid {
		fee := uint16(src.FeeBps.Int16)
		feeBps = &fee
	}
	return &entity.Series{
		ID:      editions.SeriesID(src.ID),
		Creator: editions.AccountID(src.Creator),
		Metadata: editions.SeriesMetadata{
			Title:       src.Title,
			Description: src.Description,
			Media:       src.Media,
			Reference:   src.Reference,
			Copies:      copies,
			Extra:       src.Extra,
		},
		Royalty:     royalty,
		Price:       price,
		FeeBps:      feeBps,
		Mintable:    src.Mintable,
		MintedCount: uint64(src.MintedCount),
		CreatedAt:   timeFromTimestamp(src.CreatedAt),
		UpdatedAt:   timeFromTimestamp(src.UpdatedAt),
	}, nil
}

func mapSeriesTypeToModel(src *entity.Series) (seriesModel, error) {
	royalty, err := json.Marshal(src.Royalty)
	if err != nil {
		return seriesModel{}, errors.Wrap(err, "failed to marshal royalty")
	}
	price, err := numericFromUint128(src.Price)
	if err != nil {
		return seriesModel{}, errors.Wrap(err, "failed to convert price")
	}
	var copies pgtype.Int8
	if src.Metadata.Copies != nil {
		copies = pgtype.Int8{Int64: int64(*src.Metadata.Copies), Valid: true}
	}
	var feeBps pgtype.Int2
	if src.FeeBps != nil {
		feeBps = pgtype.Int2{Int16: int16(*src.FeeBps), Valid: true}
	}
	return seriesModel{
		ID:          src.ID.String(),
		Creator:     src.Creator.String(),
		Title:       src.Metadata.Title,
		Description: src.Metadata.Description,
		Media:       src.Metadata.Media,
		Reference:   src.Metadata.Reference,
		Copies:      copies,
		Extra:       src.Metadata.Extra,
		Royalty:     royalty,
		Price:       price,
		FeeBps:      feeBps,
		Mintable:    src.Mintable,
		MintedCount: int64(src.MintedCount),
		CreatedAt:   timestampFromTime(src.CreatedAt),
		UpdatedAt:   timestampFromTime(src.UpdatedAt),
	}, nil
}

type instanceModel struct {
	SeriesID       string
	Edition        int64
	Owner          string
	Approvals      []byte
	NextApprovalID int64
	IssuedAt       pgtype.Timestamp
}

func mapInstanceModelToType(src instanceModel) (*entity.Instance, error) {
	approvals := make(map[editions.AccountID]uint64)
	if len(src.Approvals) > 0 {
		if err := json.Unmarshal(src.Approvals, &approvals); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal approvals")
		}
	}
	return &entity.Instance{
		ID:             editions.NewInstanceID(editions.SeriesID(src.SeriesID), uint64(src.Edition)),
		Owner:          editions.AccountID(src.Owner),
		Approvals:      approvals,
		NextApprovalID: uint64(src.NextApprovalID),
		IssuedAt:       timeFromTimestamp(src.IssuedAt),
	}, nil
}

func mapInstanceTypeToModel(src *entity.Instance) (instanceModel, error) {
	approvals := src.Approvals
	if approvals == nil {
		approvals = make(map[editions.AccountID]uint64)
	}
	approvalsBytes, err := json.Marshal(approvals)
	if err != nil {
		return instanceModel{}, errors.Wrap(err, "failed to marshal approvals")
	}
	return instanceModel{
		SeriesID:       src.ID.SeriesID.String(),
		Edition:        int64(src.ID.Edition),
		Owner:          src.Owner.String(),
		Approvals:      approvalsBytes,
		NextApprovalID: int64(src.NextApprovalID),
		IssuedAt:       timestampFromTime(src.IssuedAt),
	}, nil
}

type eventModel struct {
	Id             int64
	Action         string
	Actor          string
	SeriesID       pgtype.Text
	InstanceID     pgtype.Text
	Payload        []byte
	Hash           string
	CumulativeHash string
	CreatedAt      pgtype.Timestamp
}

func mapEventModelToType(src eventModel) (*entity.Event, error) {
	hash, err := chainhash.NewHashFromStr(src.Hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse event hash")
	}
	cumulativeHash, err := chainhash.NewHashFromStr(src.CumulativeHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse cumulative event hash")
	}
	var seriesId *editions.SeriesID
	if src.SeriesID.Valid {
		id := editions.SeriesID(src.SeriesID.String)
		seriesId = &id
	}
	var instanceId *editions.InstanceID
	if src.InstanceID.Valid {
		id, err := editions.NewInstanceIDFromString(src.InstanceID.String)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse instance id")
		}
		instanceId = &id
	}
	return &entity.Event{
		Id:             src.Id,
		Action:         entity.EventAction(src.Action),
		Actor:          editions.AccountID(src.Actor),
		SeriesID:       seriesId,
		InstanceID:     instanceId,
		Payload:        json.RawMessage(src.Payload),
		Hash:           *hash,
		CumulativeHash: *cumulativeHash,
		CreatedAt:      timeFromTimestamp(src.CreatedAt),
	}, nil
}

func mapEventTypeToModel(src *entity.Event) eventModel {
	var seriesId pgtype.Text
	if src.SeriesID != nil {
		seriesId = pgtype.Text{String: src.SeriesID.String(), Valid: true}
	}
	var instanceId pgtype.Text
	if src.InstanceID != nil {
		instanceId = pgtype.Text{String: src.InstanceID.String(), Valid: true}
	}
	return eventModel{
		Id:             src.Id,
		Action:         string(src.Action),
		Actor:          src.Actor.String(),
		SeriesID:       seriesId,
		InstanceID:     instanceId,
		Payload:        src.Payload,
		Hash:           src.Hash.String(),
		CumulativeHash: src.CumulativeHash.String(),
		CreatedAt:      timestampFromTime(src.CreatedAt),
	}
}

type pendingTransferModel struct {
	Id             int64
	SeriesID       string
	Edition        int64
	Sender         string
	PreviousOwner  string
	Receiver       string
	PriorApprovals []byte
	Message        pgtype.Text
	Status         string
	CreatedAt      pgtype.Timestamp
	ResolvedAt     pgtype.Timestamp
}

func mapPendingTransferModelToType(src pendingTransferModel) (*entity.PendingTransfer, error) {
	priorApprovals := make(map[editions.AccountID]uint64)
	if len(src.PriorApprovals) > 0 {
		if err := json.Unmarshal(src.PriorApprovals, &priorApprovals); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal prior approvals")
		}
	}
	var message *string
	if src.Message.Valid {
		message = &src.Message.String
	}
	return &entity.PendingTransfer{
		Id:             src.Id,
		InstanceID:     editions.NewInstanceID(editions.SeriesID(src.SeriesID), uint64(src.Edition)),
		SenderID:       editions.AccountID(src.Sender),
		PreviousOwner:  editions.AccountID(src.PreviousOwner),
		ReceiverID:     editions.AccountID(src.Receiver),
		PriorApprovals: priorApprovals,
		Message:        message,
		Status:         entity.PendingTransferStatus(src.Status),
		CreatedAt:      timeFromTimestamp(src.CreatedAt),
		ResolvedAt:     timePtrFromTimestamp(src.ResolvedAt),
	}, nil
}
