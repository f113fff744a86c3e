package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/gofiber/fiber/v2"
)

type getAccountRequest struct {
	Account string `params:"account"`
}

func (r getAccountRequest) Validate() error {
	var errList []error
	if err := editions.AccountID(r.Account).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid account"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getAccountResult struct {
	Account editions.AccountID `json:"account"`
	// IsOg and OgBalance report the allowlist state.
	IsOg      bool   `json:"isOg"`
	OgBalance uint32 `json:"ogBalance"`
	// IsSeller and SaleCount report completed transfer-with-payout sales.
	IsSeller  bool   `json:"isSeller"`
	SaleCount uint64 `json:"saleCount"`
	// InstancesCount is the number of instances currently owned.
	InstancesCount uint64 `json:"instancesCount"`
}

type getAccountResponse = common.HttpResponse[getAccountResult]

func (h *HttpHandler) GetAccount(ctx *fiber.Ctx) (err error) {
	var req getAccountRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	accountId := editions.AccountID(req.Account)

	ogAccount, err := h.usecase.GetOgAccount(ctx.UserContext(), accountId)
	if err != nil {
		return errors.Wrap(err, "error during GetOgAccount")
	}
	saleCount, err := h.usecase.GetSellerSaleCount(ctx.UserContext(), accountId)
	if err != nil {
		return errors.Wrap(err, "error during GetSellerSaleCount")
	}
	instancesCount, err := h.usecase.CountInstancesByOwner(ctx.UserContext(), accountId)
	if err != nil {
		return errors.Wrap(err, "error during CountInstancesByOwner")
	}

	result := getAccountResult{
		Account:        accountId,
		IsSeller:       saleCount > 0,
		SaleCount:      saleCount,
		InstancesCount: instancesCount,
	}
	if ogAccount != nil {
		result.IsOg = true
		result.OgBalance = ogAccount.Balance
	}
	return errors.WithStack(ctx.JSON(getAccountResponse{
		Result: &result,
	}))
}
