package httphandler

import (
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/gofiber/fiber/v2"
)

type getInstanceSingleRequest struct {
	Id string `params:"id"`
}

func (r *getInstanceSingleRequest) Validate() error {
	var errList []error
	id, err := url.QueryUnescape(r.Id)
	if err != nil {
		return errors.WithStack(err)
	}
	r.Id = id
	if _, err := editions.NewInstanceIDFromString(r.Id); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getInstanceSingleResponse = common.HttpResponse[instanceResult]

func (h *HttpHandler) GetInstanceSingle(ctx *fiber.Ctx) (err error) {
	var req getInstanceSingleRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	instanceId, err := editions.NewInstanceIDFromString(req.Id)
	if err != nil {
		return errors.WithStack(err)
	}

	instance, err := h.usecase.GetInstanceByID(ctx.UserContext(), instanceId)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("instance not found")
		}
		return errors.Wrap(err, "error during GetInstanceByID")
	}
	series, err := h.usecase.GetSeriesByID(ctx.UserContext(), instanceId.SeriesID)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("series not found")
		}
		return errors.Wrap(err, "error during GetSeriesByID")
	}

	result := newInstanceResult(instance, series)
	return errors.WithStack(ctx.JSON(getInstanceSingleResponse{
		Result: &result,
	}))
}
