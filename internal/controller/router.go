package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/ws", c.websocket)

		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", c.createRoom)
			r.Get("/", c.listRooms)

			r.Route("/{room-hash}", func(r chi.Router) {
				r.Get("/", c.getRoom)
				r.Delete("/", c.deleteRoom)
				r.Post("/check-password", c.checkRoomPassword)
				r.Post("/close", c.closeRoom)
				r.Get("/messages", c.getMessages)

				r.Route("/playlist", func(r chi.Router) {
					r.Get("/", c.getPlaylist)
					r.Post("/", c.addVideo)
					r.Post("/from-url", c.addPlaylistByUrl)
					r.Delete("/", c.clearPlaylist)
					r.Delete("/{item-id}", c.removeVideo)
				})
			})
		})
	})

	return r
}
