package notifyclient

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/pkg/httpclient"
	"github.com/mintforge/edition-engine/pkg/logger"
)

type Config struct {
	Disabled bool   `mapstructure:"disabled"`
	BaseURL  string `mapstructure:"base_url"`
	Name     string `mapstructure:"name"` // engine instance name, sent with every notice
}

// NotifyClient delivers transfer and draw notices to the receiver gateway.
type NotifyClient struct {
	httpClient *httpclient.Client
	config     Config
}

func New(config Config) (*NotifyClient, error) {
	if config.BaseURL == "" {
		return nil, errors.New("notify.base_url config is required if notify is enabled")
	}
	httpClient, err := httpclient.New(config.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "can't create http client")
	}
	if config.Name == "" {
		return nil, errors.New("notify.name config is required if notify is enabled")
	}
	return &NotifyClient{
		httpClient: httpClient,
		config:     config,
	}, nil
}

type TransferNoticePayload struct {
	Name          string         `json:"name"`
	ClientVersion string         `json:"clientVersion"`
	Network       common.Network `json:"network"`
	TransferID    int64          `json:"transferId"`
	SenderID      string         `json:"senderId"`
	PreviousOwner string         `json:"previousOwnerId"`
	ReceiverID    string         `json:"receiverId"`
	InstanceID    string         `json:"instanceId"`
	Message       string         `json:"message"`
}

type transferNoticeResult struct {
	ReturnAsset bool `json:"returnAsset"`
}

// SubmitTransferNotice posts a pending transfer to the receiver gateway and
// returns the receiver's verdict: true means the receiver refuses the asset
// and it should be returned to the previous owner.
func (n *NotifyClient) SubmitTransferNotice(ctx context.Context, payload TransferNoticePayload) (returnAsset bool, err error) {
	payload.Name = n.config.Name
	body, err := json.Marshal(payload)
	if err != nil {
		return false, errors.Wrap(err, "can't marshal payload")
	}
	resp, err := n.httpClient.Post(ctx, "/v1/notices/transfer", httpclient.RequestOptions{
		Body: body,
	})
	if err != nil {
		return false, errors.Wrap(err, "can't send request")
	}
	if resp.StatusCode() >= 400 {
		return false, errors.Errorf("transfer notice rejected with status %d: %s", resp.StatusCode(), resp.Body())
	}
	var result transferNoticeResult
	if err := resp.UnmarshalBody(&result); err != nil {
		return false, errors.Wrap(err, "can't unmarshal transfer notice response")
	}
	logger.DebugContext(ctx, "transfer notice submitted",
		slog.Int64("transferId", payload.TransferID),
		slog.Bool("returnAsset", result.ReturnAsset),
	)
	return result.ReturnAsset, nil
}

type DrawNoticePayload struct {
	Name          string         `json:"name"`
	ClientVersion string         `json:"clientVersion"`
	Network       common.Network `json:"network"`
	WinnerID      string         `json:"winnerId"`
	SeriesID      string         `json:"seriesId"`
	InstanceID    string         `json:"instanceId"`
}

// SubmitDrawNotice reports a lottery draw result. Best effort; a failed
// submission is logged and not retried.
func (n *NotifyClient) SubmitDrawNotice(ctx context.Context, payload DrawNoticePayload) error {
	payload.Name = n.config.Name
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "can't marshal payload")
	}
	resp, err := n.httpClient.Post(ctx, "/v1/notices/draw", httpclient.RequestOptions{
		Body: body,
	})
	if err != nil {
		return errors.Wrap(err, "can't send request")
	}
	if resp.StatusCode() >= 400 {
		logger.WarnContext(ctx, "failed to submit draw notice", slog.Any("payload", payload), slog.Any("responseBody", resp.Body()))
	}
	return nil
}

type ApprovalNoticePayload struct {
	Name          string         `json:"name"`
	ClientVersion string         `json:"clientVersion"`
	Network       common.Network `json:"network"`
	OwnerID       string         `json:"ownerId"`
	ApprovedID    string         `json:"approvedId"`
	InstanceID    string         `json:"instanceId"`
	ApprovalID    uint64         `json:"approvalId"`
	Message       string         `json:"message"`
}

// SubmitApprovalNotice forwards a mint-and-approve message to the approved
// account's gateway. Best effort; a failed submission is logged and not
// retried.
func (n *NotifyClient) SubmitApprovalNotice(ctx context.Context, payload ApprovalNoticePayload) error {
	payload.Name = n.config.Name
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "can't marshal payload")
	}
	resp, err := n.httpClient.Post(ctx, "/v1/notices/approval", httpclient.RequestOptions{
		Body: body,
	})
	if err != nil {
		return errors.Wrap(err, "can't send request")
	}
	if resp.StatusCode() >= 400 {
		logger.WarnContext(ctx, "failed to submit approval notice", slog.Any("payload", payload), slog.Any("responseBody", resp.Body()))
	}
	return nil
}
