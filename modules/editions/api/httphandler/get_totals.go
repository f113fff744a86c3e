package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/gofiber/fiber/v2"
)

type getTotalsResult struct {
	// TotalSeries is the registry size, custom-id series included.
	TotalSeries uint64 `json:"totalSeries"`
	// TotalSupply is the number of live instances; burns decrease it.
	TotalSupply uint64 `json:"totalSupply"`
	// TotalMinted counts every mint ever performed; burns do not decrease it.
	TotalMinted uint64 `json:"totalMinted"`
}

type getTotalsResponse = common.HttpResponse[getTotalsResult]

func (h *HttpHandler) GetTotals(ctx *fiber.Ctx) (err error) {
	totalSeries, err := h.usecase.CountSeries(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during CountSeries")
	}
	totalSupply, err := h.usecase.CountInstances(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during CountInstances")
	}
	params, err := h.usecase.GetEngineParams(ctx.UserContext(), time.Now())
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("engine params not initialized")
		}
		return errors.Wrap(err, "error during GetEngineParams")
	}

	result := getTotalsResult{
		TotalSeries: totalSeries,
		TotalSupply: totalSupply,
		TotalMinted: params.TotalMinted,
	}
	return errors.WithStack(ctx.JSON(getTotalsResponse{
		Result: &result,
	}))
}
