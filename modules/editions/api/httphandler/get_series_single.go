package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/gofiber/fiber/v2"
)

type getSeriesSingleRequest struct {
	Id string `params:"id"`
}

func (r getSeriesSingleRequest) Validate() error {
	var errList []error
	if err := editions.SeriesID(r.Id).Validate(); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getSeriesSingleResponse = common.HttpResponse[seriesResult]

func (h *HttpHandler) GetSeriesSingle(ctx *fiber.Ctx) (err error) {
	var req getSeriesSingleRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	series, err := h.usecase.GetSeriesByID(ctx.UserContext(), editions.SeriesID(req.Id))
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("series not found")
		}
		return errors.Wrap(err, "error during GetSeriesByID")
	}

	result := newSeriesResult(series)
	return errors.WithStack(ctx.JSON(getSeriesSingleResponse{
		Result: &result,
	}))
}
