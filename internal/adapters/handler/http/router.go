package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(transactionHandler *TransactionHandler, accountHandler *AccountHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", accountHandler.Program)

		r.With(RequireSigner).Post("/transactions", transactionHandler.Submit)

		r.Get("/accounts/{address}", accountHandler.GetAccount)
		r.Post("/airdrop", accountHandler.Airdrop)

		r.Route("/addresses/polls/{pollID}", func(r chi.Router) {
			r.Get("/", accountHandler.DerivePollAddress)
			r.Get("/candidates/{name}", accountHandler.DeriveCandidateAddress)
		})
	})

	return r
}
