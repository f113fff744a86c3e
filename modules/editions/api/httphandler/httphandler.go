package httphandler

import (
	"encoding/hex"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/mintforge/edition-engine/modules/editions/processor"
	"github.com/mintforge/edition-engine/modules/editions/usecase"
	"github.com/gofiber/fiber/v2"
)

// CallerIdHeader carries the already-authenticated caller identity. The
// engine trusts the value; authentication happens upstream.
const CallerIdHeader = "X-Caller-Id"

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

type HttpHandler struct {
	network   common.Network
	usecase   *usecase.Usecase
	processor *processor.Processor
}

func New(network common.Network, usecase *usecase.Usecase, processor *processor.Processor) *HttpHandler {
	return &HttpHandler{
		network:   network,
		usecase:   usecase,
		processor: processor,
	}
}

// callRequest carries the execution-context fields of a command body: the
// attached value in base units and the optional draw seed. The caller
// identity comes from the request header, not the body.
type callRequest struct {
	AttachedValue string `json:"attachedValue"`
	Seed          string `json:"seed"`
}

func (h *HttpHandler) parseCallContext(ctx *fiber.Ctx, req callRequest) (processor.CallContext, error) {
	var errList []error
	caller := editions.AccountID(ctx.Get(CallerIdHeader))
	if err := caller.Validate(); err != nil {
		errList = append(errList, errors.Wrapf(err, "header %s", CallerIdHeader))
	}
	attached := uint128.Zero
	if req.AttachedValue != "" {
		parsed, err := uint128.FromString(req.AttachedValue)
		if err != nil {
			errList = append(errList, errors.Wrap(err, "invalid attachedValue"))
		} else {
			attached = parsed
		}
	}
	var seed []byte
	if req.Seed != "" {
		parsed, err := hex.DecodeString(req.Seed)
		if err != nil {
			errList = append(errList, errors.Wrap(err, "seed must be hex encoded"))
		} else {
			seed = parsed
		}
	}
	if len(errList) > 0 {
		return processor.CallContext{}, errs.WithPublicMessage(errors.Join(errList...), "validation error")
	}
	return processor.CallContext{
		Caller:   caller,
		Attached: attached,
		Now:      time.Now(),
		Seed:     seed,
	}, nil
}

// parseBody decodes a JSON command body. Commands with no inputs beyond the
// caller header may omit the body entirely.
func parseBody(ctx *fiber.Ctx, out any) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	return errors.WithStack(ctx.BodyParser(out))
}

// normalizePagination applies the default and maximum page size. Limit -1
// requests all rows.
func normalizePagination(limit, offset int32) (int32, int32, error) {
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit < -1 || limit > maxPageLimit {
		return 0, 0, errors.Errorf("limit must be between -1 and %d", maxPageLimit)
	}
	if offset < 0 {
		return 0, 0, errors.New("offset must not be negative")
	}
	return limit, offset, nil
}

// publicIfCallError converts the domain error kinds to public errors, so
// callers get actionable messages instead of a blanket 500.
func publicIfCallError(err error) error {
	if err == nil {
		return nil
	}
	kinds := []errs.ErrorKind{
		errs.NotFound, errs.InvalidArgument, errs.Unsupported,
		errs.Unauthorized, errs.NotCreator,
		errs.DuplicateSeries, errs.InvalidMetadata, errs.RoyaltyLimitExceeded,
		errs.PriceOutOfRange, errs.NoSuchSeries, errs.NotMintable,
		errs.SeriesNotMintable, errs.CannotDecreaseBelowMinted,
		errs.AlreadyNonMintable, errs.UseDecreaseInstead,
		errs.InvalidFee, errs.ActivationInPast, errs.PayeeCountExceedsLimit,
		errs.InsufficientDeposit, errs.PoolExhausted, errs.ConflictSetting,
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return errs.WithPublicMessage(err, "")
		}
	}
	return errors.WithStack(err)
}
