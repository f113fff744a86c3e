package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/editions")

	// queries
	r.Get("/series", h.GetSeriesList)
	r.Get("/series/:id", h.GetSeriesSingle)
	r.Get("/instances", h.GetInstances)
	r.Get("/instances/:id", h.GetInstanceSingle)
	r.Get("/instances/:id/payout", h.GetPayoutPreview)
	r.Get("/fee", h.GetFee)
	r.Get("/format", h.GetFormat)
	r.Get("/totals", h.GetTotals)
	r.Get("/accounts/:account", h.GetAccount)

	// series registry
	r.Post("/series", h.CreateSeries)
	r.Post("/series/:id/price", h.SetSeriesPrice)
	r.Post("/series/:id/decrease-copies", h.DecreaseSeriesCopies)
	r.Post("/series/:id/non-mintable", h.SetSeriesNonMintable)

	// minting
	r.Post("/purchases", h.Purchase)
	r.Post("/mints/creator", h.MintCreator)
	r.Post("/mints/allowlist", h.MintAllowlist)
	r.Post("/mints/approve", h.MintAndApprove)
	r.Post("/mints/draw", h.DrawAndMint)
	r.Post("/instances/:id/burn", h.Burn)

	// transfers
	r.Post("/transfers", h.Transfer)
	r.Post("/transfers/call", h.TransferCall)
	r.Post("/transfers/payout", h.TransferPayout)
	r.Post("/transfers/:id/resolve", h.ResolveTransfer)

	// platform params
	r.Post("/params/fee", h.ScheduleFee)
	r.Post("/params/treasury", h.SetTreasury)
	r.Post("/params/og-balance", h.SetDefaultOgBalance)
	r.Post("/og-accounts", h.AddOgAccount)
	r.Delete("/og-accounts/:account", h.RemoveOgAccount)

	return nil
}
