package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/processor"
	"github.com/gofiber/fiber/v2"
)

type mintRequest struct {
	callRequest
	SeriesId   string `json:"seriesId"`
	ReceiverId string `json:"receiverId"`
}

func (r mintRequest) Validate() error {
	var errList []error
	if err := editions.SeriesID(r.SeriesId).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid seriesId"))
	}
	if err := editions.AccountID(r.ReceiverId).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid receiverId"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type mintResult struct {
	Instance instanceResult  `json:"instance"`
	Refund   uint128.Uint128 `json:"refund"`
}

type mintResponse = common.HttpResponse[mintResult]

func (h *HttpHandler) MintCreator(ctx *fiber.Ctx) (err error) {
	var req mintRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	call, err := h.parseCallContext(ctx, req.callRequest)
	if err != nil {
		return errors.WithStack(err)
	}

	minted, err := h.processor.MintCreator(ctx.UserContext(), call, editions.SeriesID(req.SeriesId), editions.AccountID(req.ReceiverId))
	if err != nil {
		return publicIfCallError(err)
	}

	result := mintResult{
		Instance: newInstanceResult(minted.Instance, nil),
		Refund:   minted.Refund,
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(mintResponse{
		Result: &result,
	}))
}

type mintAllowlistResult struct {
	Instance         instanceResult  `json:"instance"`
	Refund           uint128.Uint128 `json:"refund"`
	RemainingBalance uint32          `json:"remainingBalance"`
}

type mintAllowlistResponse = common.HttpResponse[mintAllowlistResult]

func (h *HttpHandler) MintAllowlist(ctx *fiber.Ctx) (err error) {
	var req mintRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	call, err := h.parseCallContext(ctx, req.callRequest)
	if err != nil {
		return errors.WithStack(err)
	}

	minted, err := h.processor.MintAllowlist(ctx.UserContext(), call, editions.SeriesID(req.SeriesId), editions.AccountID(req.ReceiverId))
	if err != nil {
		return publicIfCallError(err)
	}

	result := mintAllowlistResult{
		Instance:         newInstanceResult(minted.Instance, nil),
		Refund:           minted.Refund,
		RemainingBalance: minted.RemainingBalance,
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(mintAllowlistResponse{
		Result: &result,
	}))
}

type mintAndApproveRequest struct {
	callRequest
	SeriesId   string  `json:"seriesId"`
	ApprovedId string  `json:"approvedId"`
	Message    *string `json:"message"`
}

func (r mintAndApproveRequest) Validate() error {
	var errList []error
	if err := editions.SeriesID(r.SeriesId).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid seriesId"))
	}
	if err := editions.AccountID(r.ApprovedId).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid approvedId"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type mintAndApproveResult struct {
	Instance   instanceResult  `json:"instance"`
	ApprovalId uint64          `json:"approvalId"`
	Refund     uint128.Uint128 `json:"refund"`
}

type mintAndApproveResponse = common.HttpResponse[mintAndApproveResult]

func (h *HttpHandler) MintAndApprove(ctx *fiber.Ctx) (err error) {
	var req mintAndApproveRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	call, err := h.parseCallContext(ctx, req.callRequest)
	if err != nil {
		return errors.WithStack(err)
	}

	minted, err := h.processor.MintAndApprove(ctx.UserContext(), call, processor.MintAndApproveParams{
		SeriesID:   editions.SeriesID(req.SeriesId),
		ApprovedID: editions.AccountID(req.ApprovedId),
		Message:    req.Message,
	})
	if err != nil {
		return publicIfCallError(err)
	}

	result := mintAndApproveResult{
		Instance:   newInstanceResult(minted.Instance, nil),
		ApprovalId: minted.ApprovalID,
		Refund:     minted.Refund,
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(mintAndApproveResponse{
		Result: &result,
	}))
}

type drawAndMintRequest struct {
	callRequest
}

type drawAndMintResult struct {
	Instance instanceResult    `json:"instance"`
	SeriesId editions.SeriesID `json:"seriesId"`
	Index    uint64            `json:"index"`
	Refund   uint128.Uint128   `json:"refund"`
}

type drawAndMintResponse = common.HttpResponse[drawAndMintResult]

func (h *HttpHandler) DrawAndMint(ctx *fiber.Ctx) (err error) {
	var req drawAndMintRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	call, err := h.parseCallContext(ctx, req.callRequest)
	if err != nil {
		return errors.WithStack(err)
	}
	if len(call.Seed) == 0 {
		return errs.NewPublicError("seed is required for draws")
	}

	drawn, err := h.processor.DrawAndMint(ctx.UserContext(), call)
	if err != nil {
		return publicIfCallError(err)
	}

	result := drawAndMintResult{
		Instance: newInstanceResult(drawn.Instance, nil),
		SeriesId: drawn.SeriesID,
		Index:    drawn.Index,
		Refund:   drawn.Refund,
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(drawAndMintResponse{
		Result: &result,
	}))
}
