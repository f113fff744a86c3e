package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/gofiber/fiber/v2"
)

type getFormatResult struct {
	InstanceDelimiter string `json:"instanceDelimiter"`
	TitleDelimiter    string `json:"titleDelimiter"`
	EditionDelimiter  string `json:"editionDelimiter"`
}

type getFormatResponse = common.HttpResponse[getFormatResult]

// GetFormat describes how instance ids and display titles are assembled, so
// clients can parse them without hardcoding the delimiters.
func (h *HttpHandler) GetFormat(ctx *fiber.Ctx) error {
	result := getFormatResult{
		InstanceDelimiter: editions.InstanceDelimiter,
		TitleDelimiter:    editions.TitleDelimiter,
		EditionDelimiter:  editions.EditionDelimiter,
	}
	return errors.WithStack(ctx.JSON(getFormatResponse{
		Result: &result,
	}))
}
