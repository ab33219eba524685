package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"staybook/internal/app"
	"staybook/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	C *app.CommandService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/users", h.getUserByEmail)
	s.mux.Get("/v1/users/{id}", h.getUser)
	s.mux.Get("/v1/users/{id}/reservations", h.listReservations)
	s.mux.Get("/v1/properties", h.searchProperties)
	s.mux.Post("/v1/users", h.createUser)
	s.mux.Post("/v1/properties", h.createProperty)
	s.mux.Post("/v1/reservations", h.createReservation)
}

// ---- response shapes ----

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type propertyResponse struct {
	ID                int64   `json:"id"`
	OwnerID           int64   `json:"owner_id"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	ThumbnailURL      string  `json:"thumbnail_url"`
	CoverURL          string  `json:"cover_url"`
	CostPerNightCents int64   `json:"cost_per_night_cents"`
	ParkingSpaces     int     `json:"parking_spaces"`
	Bathrooms         int     `json:"bathrooms"`
	Bedrooms          int     `json:"bedrooms"`
	Country           string  `json:"country"`
	Street            string  `json:"street"`
	City              string  `json:"city"`
	Province          string  `json:"province"`
	PostalCode        string  `json:"postal_code"`
	Active            bool    `json:"active"`
	AverageRating     float64 `json:"average_rating,omitempty"`
}

func toPropertyResponse(p domain.Property, avg float64) propertyResponse {
	return propertyResponse{
		ID: p.ID, OwnerID: p.OwnerID, Title: p.Title, Description: p.Description,
		ThumbnailURL: p.ThumbnailURL, CoverURL: p.CoverURL,
		CostPerNightCents: p.CostPerNightCents, ParkingSpaces: p.ParkingSpaces,
		Bathrooms: p.Bathrooms, Bedrooms: p.Bedrooms,
		Country: p.Country, Street: p.Street, City: p.City,
		Province: p.Province, PostalCode: p.PostalCode, Active: p.Active,
		AverageRating: avg,
	}
}

type reservationResponse struct {
	ReservationID int64            `json:"reservation_id"`
	StartDate     string           `json:"start_date"`
	EndDate       string           `json:"end_date"`
	Property      propertyResponse `json:"property"`
}

// ---- plumbing ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write problem response failed")
	}
}

// writeError maps tagged service errors onto HTTP statuses. Storage
// failures are logged here and surface as 500, never as "empty".
func writeError(w http.ResponseWriter, err error) {
	var ve *app.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "no matching record")
	case errors.Is(err, domain.ErrEmailTaken):
		writeProblem(w, http.StatusConflict, "Conflict", "email already registered")
	case errors.As(err, &ve):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid Input", ve.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// calcETagAndBody marshals once and hashes once.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response for ETag failed")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write response body failed")
	}
}

func writeCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write created body failed")
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func queryLimit(r *http.Request, def, max int) (int, bool) {
	ls := r.URL.Query().Get("limit")
	if ls == "" {
		return def, true
	}
	l, err := strconv.Atoi(ls)
	if err != nil || l <= 0 || l > max {
		return 0, false
	}
	return l, true
}

// ---- read handlers ----

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	u, err := h.Q.UserByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, toUserResponse(u))
}

func (h *Handlers) getUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeProblem(w, http.StatusBadRequest, "Missing email", "email query parameter is required")
		return
	}
	u, err := h.Q.UserByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, toUserResponse(u))
}

func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	limit, ok := queryLimit(r, 10, 100)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 100")
		return
	}
	rs, err := h.Q.GuestReservations(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]reservationResponse, 0, len(rs))
	for _, rl := range rs {
		out = append(out, reservationResponse{
			ReservationID: rl.ReservationID,
			StartDate:     rl.StartDate.Format("2006-01-02"),
			EndDate:       rl.EndDate.Format("2006-01-02"),
			Property:      toPropertyResponse(rl.Property, rl.AverageRating),
		})
	}
	writeCached(w, r, out)
}

func (h *Handlers) searchProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f domain.PropertyFilters
	f.City = q.Get("city")
	if v := q.Get("owner_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid owner_id", "owner_id must be a number")
			return
		}
		f.OwnerID = n
	}
	if v := q.Get("min_price"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid min_price", "min_price must be a number of major currency units")
			return
		}
		f.MinPricePerNight = n
	}
	if v := q.Get("max_price"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid max_price", "max_price must be a number of major currency units")
			return
		}
		f.MaxPricePerNight = n
	}
	if v := q.Get("min_rating"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid min_rating", "min_rating must be a number")
			return
		}
		f.MinRating = n
	}
	limit, ok := queryLimit(r, 10, 100)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 100")
		return
	}

	ps, err := h.Q.SearchProperties(r.Context(), f, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]propertyResponse, 0, len(ps))
	for _, pl := range ps {
		out = append(out, toPropertyResponse(pl.Property, pl.AverageRating))
	}
	writeCached(w, r, out)
}

// ---- write handlers ----

func (h *Handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var in app.RegisterUserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	u, err := h.C.RegisterUser(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, toUserResponse(u))
}

func (h *Handlers) createProperty(w http.ResponseWriter, r *http.Request) {
	var in app.AddPropertyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	p, err := h.C.AddProperty(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, toPropertyResponse(p, 0))
}

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var in app.AddReservationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	rv, err := h.C.AddReservation(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, map[string]any{
		"id":          rv.ID,
		"property_id": rv.PropertyID,
		"guest_id":    rv.GuestID,
		"start_date":  rv.StartDate.Format("2006-01-02"),
		"end_date":    rv.EndDate.Format("2006-01-02"),
	})
}
