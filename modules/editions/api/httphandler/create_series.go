package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/processor"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type createSeriesRequest struct {
	callRequest
	// Id is the custom-id variant. Empty auto-assigns registry size + 1.
	Id       string                  `json:"id"`
	Creator  string                  `json:"creator"`
	Metadata editions.SeriesMetadata `json:"metadata"`
	Royalty  map[string]uint16       `json:"royalty"`
	Price    *string                 `json:"price"`
}

func (r createSeriesRequest) Validate() error {
	var errList []error
	if r.Id != "" {
		if err := editions.SeriesID(r.Id).Validate(); err != nil {
			errList = append(errList, errors.Wrap(err, "invalid id"))
		}
	}
	if r.Creator != "" {
		if err := editions.AccountID(r.Creator).Validate(); err != nil {
			errList = append(errList, errors.Wrap(err, "invalid creator"))
		}
	}
	if r.Price != nil {
		if _, err := uint128.FromString(*r.Price); err != nil {
			errList = append(errList, errors.Wrap(err, "invalid price"))
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type createSeriesResult struct {
	Series seriesResult    `json:"series"`
	Refund uint128.Uint128 `json:"refund"`
}

type createSeriesResponse = common.HttpResponse[createSeriesResult]

func (h *HttpHandler) CreateSeries(ctx *fiber.Ctx) (err error) {
	var req createSeriesRequest
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

	params := processor.CreateSeriesParams{
		Metadata: req.Metadata,
	}
	if req.Id != "" {
		params.SeriesID = lo.ToPtr(editions.SeriesID(req.Id))
	}
	if req.Creator != "" {
		params.Creator = lo.ToPtr(editions.AccountID(req.Creator))
	}
	if len(req.Royalty) > 0 {
		royalty := make(editions.RoyaltyMap, len(req.Royalty))
		for account, bps := range req.Royalty {
			royalty[editions.AccountID(account)] = bps
		}
		params.Royalty = royalty
	}
	if req.Price != nil {
		price, err := uint128.FromString(*req.Price)
		if err != nil {
			return errors.WithStack(err)
		}
		params.Price = &price
	}

	created, err := h.processor.CreateSeries(ctx.UserContext(), call, params)
	if err != nil {
		return publicIfCallError(err)
	}

	result := createSeriesResult{
		Series: newSeriesResult(created.Series),
		Refund: created.Refund,
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(createSeriesResponse{
		Result: &result,
	}))
}
