package httphandler

import (
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/gofiber/fiber/v2"
)

type getPayoutPreviewRequest struct {
	Id        string `params:"id"`
	Amount    string `query:"amount"`
	MaxPayees uint32 `query:"maxPayees"`
}

func (r *getPayoutPreviewRequest) Validate() error {
	var errList []error
	id, err := url.QueryUnescape(r.Id)
	if err != nil {
		return errors.WithStack(err)
	}
	r.Id = id
	if _, err := editions.NewInstanceIDFromString(r.Id); err != nil {
		errList = append(errList, err)
	}
	if r.Amount == "" {
		errList = append(errList, errors.New("amount is required"))
	} else if _, err := uint128.FromString(r.Amount); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid amount"))
	}
	// same rule as the transfer-with-payout endpoint, so a preview that
	// passes never turns into a transfer that rejects
	if r.MaxPayees == 0 {
		errList = append(errList, errors.New("maxPayees is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getPayoutPreviewResult struct {
	Payout payoutResult `json:"payout"`
}

type getPayoutPreviewResponse = common.HttpResponse[getPayoutPreviewResult]

func (h *HttpHandler) GetPayoutPreview(ctx *fiber.Ctx) (err error) {
	var req getPayoutPreviewRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	instanceId, err := editions.NewInstanceIDFromString(req.Id)
	if err != nil {
		return errors.WithStack(err)
	}
	amount, err := uint128.FromString(req.Amount)
	if err != nil {
		return errors.WithStack(err)
	}

	payout, err := h.usecase.PreviewPayout(ctx.UserContext(), instanceId, amount, req.MaxPayees)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("instance not found")
		}
		return publicIfCallError(err)
	}

	result := getPayoutPreviewResult{Payout: payout}
	return errors.WithStack(ctx.JSON(getPayoutPreviewResponse{
		Result: &result,
	}))
}
