package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/gofiber/fiber/v2"
)

type setSeriesPriceRequest struct {
	callRequest
	Id string `params:"id"`
	// Price unsets the series price when nil, taking it off sale.
	Price *string `json:"price"`
}

func (r setSeriesPriceRequest) Validate() error {
	var errList []error
	if err := editions.SeriesID(r.Id).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid id"))
	}
	if r.Price != nil {
		if _, err := uint128.FromString(*r.Price); err != nil {
			errList = append(errList, errors.Wrap(err, "invalid price"))
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type updateSeriesResponse = common.HttpResponse[seriesResult]

func (h *HttpHandler) SetSeriesPrice(ctx *fiber.Ctx) (err error) {
	var req setSeriesPriceRequest
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
	var price *uint128.Uint128
	if req.Price != nil {
		parsed, err := uint128.FromString(*req.Price)
		if err != nil {
			return errors.WithStack(err)
		}
		price = &parsed
	}

	series, err := h.processor.SetSeriesPrice(ctx.UserContext(), call, editions.SeriesID(req.Id), price)
	if err != nil {
		return publicIfCallError(err)
	}

	result := newSeriesResult(series)
	return errors.WithStack(ctx.JSON(updateSeriesResponse{
		Result: &result,
	}))
}

type decreaseSeriesCopiesRequest struct {
	callRequest
	Id       string `params:"id"`
	Decrease uint64 `json:"decrease"`
}

func (r decreaseSeriesCopiesRequest) Validate() error {
	var errList []error
	if err := editions.SeriesID(r.Id).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid id"))
	}
	if r.Decrease == 0 {
		errList = append(errList, errors.New("decrease must be positive"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (h *HttpHandler) DecreaseSeriesCopies(ctx *fiber.Ctx) (err error) {
	var req decreaseSeriesCopiesRequest
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

	series, err := h.processor.DecreaseSeriesCopies(ctx.UserContext(), call, editions.SeriesID(req.Id), req.Decrease)
	if err != nil {
		return publicIfCallError(err)
	}

	result := newSeriesResult(series)
	return errors.WithStack(ctx.JSON(updateSeriesResponse{
		Result: &result,
	}))
}

type setSeriesNonMintableRequest struct {
	callRequest
	Id string `params:"id"`
}

func (r setSeriesNonMintableRequest) Validate() error {
	var errList []error
	if err := editions.SeriesID(r.Id).Validate(); err != nil {
		errList = append(errList, errors.Wrap(err, "invalid id"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (h *HttpHandler) SetSeriesNonMintable(ctx *fiber.Ctx) (err error) {
	var req setSeriesNonMintableRequest
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

	series, err := h.processor.SetSeriesNonMintable(ctx.UserContext(), call, editions.SeriesID(req.Id))
	if err != nil {
		return publicIfCallError(err)
	}

	result := newSeriesResult(series)
	return errors.WithStack(ctx.JSON(updateSeriesResponse{
		Result: &result,
	}))
}
