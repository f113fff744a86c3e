package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type getSeriesListRequest struct {
	Creator string `query:"creator"`
	Limit   int32  `query:"limit"`
	Offset  int32  `query:"offset"`
}

func (r *getSeriesListRequest) Validate() error {
	var errList []error
	if r.Creator != "" {
		if err := editions.AccountID(r.Creator).Validate(); err != nil {
			errList = append(errList, errors.Wrap(err, "invalid creator"))
		}
	}
	limit, offset, err := normalizePagination(r.Limit, r.Offset)
	if err != nil {
		errList = append(errList, err)
	}
	r.Limit, r.Offset = limit, offset
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getSeriesListResult struct {
	List  []seriesResult `json:"list"`
	Total uint64         `json:"total"`
}

type getSeriesListResponse = common.HttpResponse[getSeriesListResult]

func (h *HttpHandler) GetSeriesList(ctx *fiber.Ctx) (err error) {
	var req getSeriesListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	var seriesList []*entity.Series
	if req.Creator != "" {
		seriesList, err = h.usecase.GetSeriesByCreator(ctx.UserContext(), editions.AccountID(req.Creator), req.Limit, req.Offset)
		if err != nil {
			return errors.Wrap(err, "error during GetSeriesByCreator")
		}
	} else {
		seriesList, err = h.usecase.GetSeriesList(ctx.UserContext(), req.Limit, req.Offset)
		if err != nil {
			return errors.Wrap(err, "error during GetSeriesList")
		}
	}
	total, err := h.usecase.CountSeries(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during CountSeries")
	}

	result := getSeriesListResult{
		List: lo.Map(seriesList, func(series *entity.Series, _ int) seriesResult {
			return newSeriesResult(series)
		}),
		Total: total,
	}
	return errors.WithStack(ctx.JSON(getSeriesListResponse{
		Result: &result,
	}))
}
