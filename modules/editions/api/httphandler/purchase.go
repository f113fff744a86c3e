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

type purchaseRequest struct {
	callRequest
	SeriesId   string `json:"seriesId"`
	ReceiverId string `json:"receiverId"`
}

func (r purchaseRequest) Validate() error {
	var errList []error
	if err := editions.SeriesID(r.SeriesId).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid seriesId"))
	}
	if err := editions.AccountID(r.ReceiverId).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid receiverId"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type purchaseResult struct {
	Instance instanceResult  `json:"instance"`
	Price    uint128.Uint128 `json:"price"`
	// Fee is the platform fee owed to Treasury; Payout maps the royalty
	// payees and the creator to their shares with the fee already deducted
	// from the creator's share.
	Fee      uint128.Uint128    `json:"fee"`
	Payout   payoutResult       `json:"payout"`
	Treasury editions.AccountID `json:"treasury"`
	Creator  editions.AccountID `json:"creator"`
	Refund   uint128.Uint128    `json:"refund"`
}

type purchaseResponse = common.HttpResponse[purchaseResult]

func (h *HttpHandler) Purchase(ctx *fiber.Ctx) (err error) {
	var req purchaseRequest
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

	purchased, err := h.processor.Purchase(ctx.UserContext(), call, processor.PurchaseParams{
		SeriesID:   editions.SeriesID(req.SeriesId),
		ReceiverID: editions.AccountID(req.ReceiverId),
	})
	if err != nil {
		return publicIfCallError(err)
	}

	result := purchaseResult{
		Instance: newInstanceResult(purchased.Instance, nil),
		Price:    purchased.Price,
		Fee:      purchased.Fee,
		Payout:   purchased.Payout,
		Treasury: purchased.Treasury,
		Creator:  purchased.Creator,
		Refund:   purchased.Refund,
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(purchaseResponse{
		Result: &result,
	}))
}
