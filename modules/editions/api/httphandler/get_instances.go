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

type getInstancesRequest struct {
	SeriesId string `query:"seriesId"`
	OwnerId  string `query:"ownerId"`
	Limit    int32  `query:"limit"`
	Offset   int32  `query:"offset"`
}

func (r *getInstancesRequest) Validate() error {
	var errList []error
	if (r.SeriesId == "") == (r.OwnerId == "") {
		errList = append(errList, errors.New("exactly one of seriesId or ownerId is required"))
	}
	if r.SeriesId != "" {
		if err := editions.SeriesID(r.SeriesId).Validate(); err != nil {
			errList = append(errList, errors.Wrap(err, "invalid seriesId"))
		}
	}
	if r.OwnerId != "" {
		if err := editions.AccountID(r.OwnerId).Validate(); err != nil {
			errList = append(errList, errors.Wrap(err, "invalid ownerId"))
		}
	}
	limit, offset, err := normalizePagination(r.Limit, r.Offset)
	if err != nil {
		errList = append(errList, err)
	}
	r.Limit, r.Offset = limit, offset
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getInstancesResult struct {
	List []instanceResult `json:"list"`
}

type getInstancesResponse = common.HttpResponse[getInstancesResult]

// GetInstances lists instances within a series or owned by an account. The
// series view joins the series row once, so every entry carries derived
// metadata; the owner view resolves each instance's series separately.
func (h *HttpHandler) GetInstances(ctx *fiber.Ctx) (err error) {
	var req getInstancesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	var list []instanceResult
	if req.SeriesId != "" {
		seriesId := editions.SeriesID(req.SeriesId)
		series, err := h.usecase.GetSeriesByID(ctx.UserContext(), seriesId)
		if err != nil {
			if errors.Is(err, errs.NotFound) {
				return errs.NewPublicError("series not found")
			}
			return errors.Wrap(err, "error during GetSeriesByID")
		}
		instances, err := h.usecase.GetInstancesBySeries(ctx.UserContext(), seriesId, req.Limit, req.Offset)
		if err != nil {
			return errors.Wrap(err, "error during GetInstancesBySeries")
		}
		list = lo.Map(instances, func(instance *entity.Instance, _ int) instanceResult {
			return newInstanceResult(instance, series)
		})
	} else {
		instances, err := h.usecase.GetInstancesByOwner(ctx.UserContext(), editions.AccountID(req.OwnerId), req.Limit, req.Offset)
		if err != nil {
			return errors.Wrap(err, "error during GetInstancesByOwner")
		}
		seriesCache := make(map[editions.SeriesID]*entity.Series)
		list = make([]instanceResult, 0, len(instances))
		for _, instance := range instances {
			series, ok := seriesCache[instance.ID.SeriesID]
			if !ok {
				series, err = h.usecase.GetSeriesByID(ctx.UserContext(), instance.ID.SeriesID)
				if err != nil && !errors.Is(err, errs.NotFound) {
					return errors.Wrap(err, "error during GetSeriesByID")
				}
				seriesCache[instance.ID.SeriesID] = series
			}
			list = append(list, newInstanceResult(instance, series))
		}
	}

	result := getInstancesResult{List: list}
	return errors.WithStack(ctx.JSON(getInstancesResponse{
		Result: &result,
	}))
}
