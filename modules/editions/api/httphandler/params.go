package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/gofiber/fiber/v2"
)

type scheduleFeeRequest struct {
	callRequest
	NextFeeBps uint16 `json:"nextFeeBps"`
	// StartTime is a unix timestamp. Zero applies the fee immediately and
	// clears any pending change.
	StartTime int64 `json:"startTime"`
}

func (r scheduleFeeRequest) Validate() error {
	var errList []error
	if r.NextFeeBps >= editions.TotalBps {
		errList = append(errList, errors.Errorf("nextFeeBps must be less than %d", editions.TotalBps))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type engineParamsResult struct {
	Owner            editions.AccountID `json:"owner"`
	Treasury         editions.AccountID `json:"treasury"`
	CurrentFeeBps    uint16             `json:"currentFeeBps"`
	NextFeeBps       *uint16            `json:"nextFeeBps,omitempty"`
	StartTime        *int64             `json:"startTime,omitempty"`
	DefaultOgBalance uint32             `json:"defaultOgBalance"`
	TotalMinted      uint64             `json:"totalMinted"`
}

func newEngineParamsResult(params *entity.EngineParams) engineParamsResult {
	result := engineParamsResult{
		Owner:            params.Owner,
		Treasury:         params.Treasury,
		CurrentFeeBps:    params.Fee.CurrentFee,
		NextFeeBps:       params.Fee.NextFee,
		DefaultOgBalance: params.DefaultOgBalance,
		TotalMinted:      params.TotalMinted,
	}
	if params.Fee.StartTime != nil {
		startTime := params.Fee.StartTime.Unix()
		result.StartTime = &startTime
	}
	return result
}

type engineParamsResponse = common.HttpResponse[engineParamsResult]

func (h *HttpHandler) ScheduleFee(ctx *fiber.Ctx) (err error) {
	var req scheduleFeeRequest
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
	var startTime *time.Time
	if req.StartTime != 0 {
		parsed := time.Unix(req.StartTime, 0)
		startTime = &parsed
	}

	params, err := h.processor.ScheduleFee(ctx.UserContext(), call, req.NextFeeBps, startTime)
	if err != nil {
		return publicIfCallError(err)
	}

	result := newEngineParamsResult(params)
	return errors.WithStack(ctx.JSON(engineParamsResponse{
		Result: &result,
	}))
}

type setTreasuryRequest struct {
	callRequest
	Treasury string `json:"treasury"`
}

func (r setTreasuryRequest) Validate() error {
	var errList []error
	if err := editions.AccountID(r.Treasury).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid treasury"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (h *HttpHandler) SetTreasury(ctx *fiber.Ctx) (err error) {
	var req setTreasuryRequest
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

	params, err := h.processor.SetTreasury(ctx.UserContext(), call, editions.AccountID(req.Treasury))
	if err != nil {
		return publicIfCallError(err)
	}

	result := newEngineParamsResult(params)
	return errors.WithStack(ctx.JSON(engineParamsResponse{
		Result: &result,
	}))
}

type setDefaultOgBalanceRequest struct {
	callRequest
	Balance uint32 `json:"balance"`
}

func (h *HttpHandler) SetDefaultOgBalance(ctx *fiber.Ctx) (err error) {
	var req setDefaultOgBalanceRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	call, err := h.parseCallContext(ctx, req.callRequest)
	if err != nil {
		return errors.WithStack(err)
	}

	params, err := h.processor.SetDefaultOgBalance(ctx.UserContext(), call, req.Balance)
	if err != nil {
		return publicIfCallError(err)
	}

	result := newEngineParamsResult(params)
	return errors.WithStack(ctx.JSON(engineParamsResponse{
		Result: &result,
	}))
}

type addOgAccountRequest struct {
	callRequest
	AccountId string `json:"accountId"`
	// Balance overrides the default allowlist balance when set.
	Balance *uint32 `json:"balance"`
}

func (r addOgAccountRequest) Validate() error {
	var errList []error
	if err := editions.AccountID(r.AccountId).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid accountId"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type ogAccountResult struct {
	AccountId editions.AccountID `json:"accountId"`
	Balance   uint32             `json:"balance"`
}

type ogAccountResponse = common.HttpResponse[ogAccountResult]

func (h *HttpHandler) AddOgAccount(ctx *fiber.Ctx) (err error) {
	var req addOgAccountRequest
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

	account, err := h.processor.AddOgAccount(ctx.UserContext(), call, editions.AccountID(req.AccountId), req.Balance)
	if err != nil {
		return publicIfCallError(err)
	}

	result := ogAccountResult{
		AccountId: account.AccountID,
		Balance:   account.Balance,
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(ogAccountResponse{
		Result: &result,
	}))
}

type removeOgAccountRequest struct {
	callRequest
	AccountId string `params:"account"`
}

func (r removeOgAccountRequest) Validate() error {
	var errList []error
	if err := editions.AccountID(r.AccountId).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid account"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type removeOgAccountResponse = common.HttpResponse[ogAccountResult]

func (h *HttpHandler) RemoveOgAccount(ctx *fiber.Ctx) (err error) {
	var req removeOgAccountRequest
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

	if err := h.processor.RemoveOgAccount(ctx.UserContext(), call, editions.AccountID(req.AccountId)); err != nil {
		return publicIfCallError(err)
	}

	result := ogAccountResult{AccountId: editions.AccountID(req.AccountId)}
	return errors.WithStack(ctx.JSON(removeOgAccountResponse{
		Result: &result,
	}))
}
