package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s Server) RegisterRoutes(r chi.Router) { //nolint:funlen
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Use(Identity)

			r.Route("/deals", func(r chi.Router) {
				r.Post("/", handler(s.postV1Deals))
				r.Get("/buying", handler(s.listHandler(s.dealService.ListBuyerDeals)))
				r.Get("/selling", handler(s.listHandler(s.dealService.ListSellerDeals)))
				r.Get("/dashboard", handler(s.getV1Dashboard))

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", handler(s.getV1Deal))
					r.Post("/proposals", handler(dealAction(s.propose)))
					r.Post("/accept", handler(dealAction(s.accept)))
					r.Post("/stage", handler(dealAction(s.changeStage)))
					r.Post("/alternatives", handler(dealAction(s.selectAlternative)))
					r.Post("/invoice", handler(dealAction(s.uploadInvoice)))
					r.Post("/invoice/review", handler(dealAction(s.reviewInvoice)))
					r.Post("/payment", handler(dealAction(s.confirmPayment)))
					r.Post("/tracking", handler(dealAction(s.addTracking)))
					r.Post("/delivery", handler(dealAction(s.confirmDelivery)))
					r.Get("/pairing", handler(s.pairingHandler(s.dealService.VerifyPairingIntegrity)))
					r.Post("/pairing/reconcile", handler(s.pairingHandler(s.dealService.ReconcilePairing)))
				})
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			replyError(r.Context(), w, err)
		}
	}
}
