package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/dutchauction/v1")

	r.Get("/price/:projectId", h.GetPrice)
	r.Get("/auction/:projectId", h.GetAuction)
	r.Get("/settlement/:projectId", h.GetSettlement)
	r.Get("/excess/:projectId", h.GetExcess)
	r.Get("/events/purchases/:projectId", h.GetPurchaseEvents)
	r.Get("/events/settlements/:projectId", h.GetSettlementEvents)

	r.Put("/auction/:projectId", h.SetAuction)
	r.Delete("/auction/:projectId", h.ResetAuction)
	r.Put("/max-invocations/:projectId", h.SetMaxInvocations)
	r.Post("/purchase/:projectId", h.Purchase)
	r.Post("/withdraw/:projectId", h.WithdrawRevenues)
	r.Post("/reclaim", h.ReclaimExcess)

	return nil
}
