// Package httpapi exposes the routing engine over HTTP: a POST /search
// endpoint backed by the single-worker request queue, and a GET /health
// endpoint reporting readiness.
package httpapi

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/antigravity/skane-transit/internal/geo"
	"github.com/antigravity/skane-transit/internal/scheduler"
)

var departureTimeRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)

// searchRequestBody is the wire shape of a POST /search body.
type searchRequestBody struct {
	Origin        [2]float64 `json:"origin"`
	Destination   [2]float64 `json:"destination"`
	DepartureTime *string    `json:"departure_time"`
}

// NewRouter assembles the chi router serving the engine's HTTP surface.
func NewRouter(sched *scheduler.Scheduler, queue *Queue) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Get("/health", healthHandler(sched))
	r.Post("/search", searchHandler(queue))

	return r
}

func healthHandler(sched *scheduler.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !sched.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "loading"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func searchHandler(queue *Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body searchRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		req, err := validateSearchRequest(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		journeys, err := queue.Submit(r.Context(), req)
		if err != nil {
			http.Error(w, "request cancelled", http.StatusRequestTimeout)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(journeys)
	}
}

func validateSearchRequest(body searchRequestBody) (SearchRequest, error) {
	lat, lon := body.Origin[0], body.Origin[1]
	dLat, dLon := body.Destination[0], body.Destination[1]

	for _, v := range []float64{lat, dLat} {
		if v < -90 || v > 90 {
			return SearchRequest{}, errInvalidLatitude
		}
	}
	for _, v := range []float64{lon, dLon} {
		if v < -180 || v > 180 {
			return SearchRequest{}, errInvalidLongitude
		}
	}

	var departureTime *int
	if body.DepartureTime != nil {
		if !departureTimeRe.MatchString(*body.DepartureTime) {
			return SearchRequest{}, errInvalidDepartureTime
		}
		seconds, err := geo.StringToSeconds(*body.DepartureTime)
		if err != nil {
			return SearchRequest{}, errInvalidDepartureTime
		}
		departureTime = &seconds
	}

	return SearchRequest{
		Origin:        geo.Point{Lat: lat, Lon: lon},
		Destination:   geo.Point{Lat: dLat, Lon: dLon},
		DepartureTime: departureTime,
	}, nil
}
