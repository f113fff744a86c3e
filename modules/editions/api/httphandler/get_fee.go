package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/gofiber/fiber/v2"
)

type getFeeRequest struct {
	SeriesId string `query:"seriesId"`
}

func (r getFeeRequest) Validate() error {
	var errList []error
	if r.SeriesId != "" {
		if err := editions.SeriesID(r.SeriesId).Validate(); err != nil {
			errList = append(errList, errors.Wrap(err, "invalid seriesId"))
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getFeeResult struct {
	// CurrentFeeBps is the settled global fee.
	CurrentFeeBps uint16 `json:"currentFeeBps"`
	// NextFeeBps and StartTime report a scheduled change that has not
	// activated yet.
	NextFeeBps *uint16 `json:"nextFeeBps,omitempty"`
	StartTime  *int64  `json:"startTime,omitempty"`
	// EffectiveFeeBps is the fee a purchase of seriesId would settle
	// against. Present only when seriesId was given.
	EffectiveFeeBps *uint16 `json:"effectiveFeeBps,omitempty"`
}

type getFeeResponse = common.HttpResponse[getFeeResult]

func (h *HttpHandler) GetFee(ctx *fiber.Ctx) (err error) {
	var req getFeeRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	params, err := h.usecase.GetEngineParams(ctx.UserContext(), now)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("engine params not initialized")
		}
		return errors.Wrap(err, "error during GetEngineParams")
	}

	result := getFeeResult{
		CurrentFeeBps: params.Fee.CurrentFee,
		NextFeeBps:    params.Fee.NextFee,
	}
	if params.Fee.StartTime != nil {
		startTime := params.Fee.StartTime.Unix()
		result.StartTime = &startTime
	}
	if req.SeriesId != "" {
		effectiveFee, err := h.usecase.GetEffectiveSeriesFee(ctx.UserContext(), editions.SeriesID(req.SeriesId), now)
		if err != nil {
			if errors.Is(err, errs.NotFound) {
				return errs.NewPublicError("series not found")
			}
			return errors.Wrap(err, "error during GetEffectiveSeriesFee")
		}
		result.EffectiveFeeBps = &effectiveFee
	}
	return errors.WithStack(ctx.JSON(getFeeResponse{
		Result: &result,
	}))
}
