package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/mintforge/edition-engine/modules/editions/processor"
	"github.com/gofiber/fiber/v2"
)

type transferRequest struct {
	callRequest
	InstanceId string  `json:"instanceId"`
	ReceiverId string  `json:"receiverId"`
	Memo       *string `json:"memo"`
}

func (r transferRequest) Validate() error {
	var errList []error
	if _, err := editions.NewInstanceIDFromString(r.InstanceId); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid instanceId"))
	}
	if err := editions.AccountID(r.ReceiverId).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid receiverId"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type transferResult struct {
	Instance instanceResult `json:"instance"`
}

type transferResponse = common.HttpResponse[transferResult]

// Transfer moves an instance synchronously, without notifying the receiver.
func (h *HttpHandler) Transfer(ctx *fiber.Ctx) (err error) {
	var req transferRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	instanceId, err := editions.NewInstanceIDFromString(req.InstanceId)
	if err != nil {
		return errors.WithStack(err)
	}
	call, err := h.parseCallContext(ctx, req.callRequest)
	if err != nil {
		return errors.WithStack(err)
	}

	instance, err := h.processor.Transfer(ctx.UserContext(), call, processor.TransferParams{
		InstanceID: instanceId,
		ReceiverID: editions.AccountID(req.ReceiverId),
		Memo:       req.Memo,
	})
	if err != nil {
		return publicIfCallError(err)
	}

	result := transferResult{Instance: newInstanceResult(instance, nil)}
	return errors.WithStack(ctx.JSON(transferResponse{
		Result: &result,
	}))
}

type transferCallRequest struct {
	transferRequest
	// Message is forwarded to the receiver gateway, whose verdict decides
	// whether the transfer stands.
	Message *string `json:"message"`
}

type transferCallResult struct {
	Instance instanceResult `json:"instance"`
	// TransferId tracks the pending resolution.
	TransferId int64 `json:"transferId"`
}

type transferCallResponse = common.HttpResponse[transferCallResult]

// TransferCall moves an instance and registers a pending transfer awaiting
// the receiver gateway's verdict. The move is visible immediately; a negative
// verdict is corrective, not preventive.
func (h *HttpHandler) TransferCall(ctx *fiber.Ctx) (err error) {
	var req transferCallRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	instanceId, err := editions.NewInstanceIDFromString(req.InstanceId)
	if err != nil {
		return errors.WithStack(err)
	}
	call, err := h.parseCallContext(ctx, req.callRequest)
	if err != nil {
		return errors.WithStack(err)
	}

	transferred, err := h.processor.TransferCall(ctx.UserContext(), call, processor.TransferCallParams{
		InstanceID: instanceId,
		ReceiverID: editions.AccountID(req.ReceiverId),
		Message:    req.Message,
		Memo:       req.Memo,
	})
	if err != nil {
		return publicIfCallError(err)
	}

	result := transferCallResult{
		Instance:   newInstanceResult(transferred.Instance, nil),
		TransferId: transferred.TransferID,
	}
	return errors.WithStack(ctx.JSON(transferCallResponse{
		Result: &result,
	}))
}

type transferPayoutRequest struct {
	transferRequest
	// Balance is the sale amount to split. Nil skips the payout computation
	// but still transfers and counts the sale.
	Balance   *string `json:"balance"`
	MaxPayees uint32  `json:"maxPayees"`
}

func (r transferPayoutRequest) Validate() error {
	var errList []error
	if err := r.transferRequest.Validate(); err != nil {
		errList = append(errList, err)
	}
	if r.Balance != nil {
		if _, err := uint128.FromString(*r.Balance); err != nil {
			errList = append(errList, errors.Wrap(err, "invalid balance"))
		}
	}
	if r.MaxPayees == 0 {
		errList = append(errList, errors.New("maxPayees is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type transferPayoutResult struct {
	Instance  instanceResult `json:"instance"`
	Payout    payoutResult   `json:"payout,omitempty"`
	SaleCount uint64         `json:"saleCount"`
}

type transferPayoutResponse = common.HttpResponse[transferPayoutResult]

// TransferPayout moves an instance as part of a sale and reports the royalty
// split for the marketplace to settle.
func (h *HttpHandler) TransferPayout(ctx *fiber.Ctx) (err error) {
	var req transferPayoutRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	instanceId, err := editions.NewInstanceIDFromString(req.InstanceId)
	if err != nil {
		return errors.WithStack(err)
	}
	call, err := h.parseCallContext(ctx, req.callRequest)
	if err != nil {
		return errors.WithStack(err)
	}
	var balance *uint128.Uint128
	if req.Balance != nil {
		parsed, err := uint128.FromString(*req.Balance)
		if err != nil {
			return errors.WithStack(err)
		}
		balance = &parsed
	}

	transferred, err := h.processor.TransferWithPayout(ctx.UserContext(), call, processor.TransferPayoutParams{
		InstanceID: instanceId,
		ReceiverID: editions.AccountID(req.ReceiverId),
		Memo:       req.Memo,
		Balance:    balance,
		MaxPayees:  req.MaxPayees,
	})
	if err != nil {
		return publicIfCallError(err)
	}

	result := transferPayoutResult{
		Instance:  newInstanceResult(transferred.Instance, nil),
		Payout:    transferred.Payout,
		SaleCount: transferred.SaleCount,
	}
	return errors.WithStack(ctx.JSON(transferPayoutResponse{
		Result: &result,
	}))
}

type resolveTransferRequest struct {
	callRequest
	Id int64 `params:"id"`
	// ReturnAsset true rejects the transfer: the instance goes back to the
	// previous owner if the receiver still holds it.
	ReturnAsset bool `json:"returnAsset"`
}

func (r resolveTransferRequest) Validate() error {
	var errList []error
	if r.Id <= 0 {
		errList = append(errList, errors.New("invalid transfer id"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type resolveTransferResult struct {
	TransferId int64                        `json:"transferId"`
	Status     entity.PendingTransferStatus `json:"status"`
}

type resolveTransferResponse = common.HttpResponse[resolveTransferResult]

// ResolveTransfer applies a verdict to a pending transfer on behalf of the
// receiver or the engine owner, as an alternative to the resolver worker.
func (h *HttpHandler) ResolveTransfer(ctx *fiber.Ctx) (err error) {
	var req resolveTransferRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	call, err := h.parseCallContext(ctx, req.callRequest)
	if err != nil {
		return errors.WithStack(err)
	}

	resolved, err := h.processor.ResolvePendingTransfer(ctx.UserContext(), call, req.Id, req.ReturnAsset)
	if err != nil {
		return publicIfCallError(err)
	}

	result := resolveTransferResult{
		TransferId: resolved.TransferID,
		Status:     resolved.Status,
	}
	return errors.WithStack(ctx.JSON(resolveTransferResponse{
		Result: &result,
	}))
}
