package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vbonduro/cafeapi/internal/domain"
	"github.com/vbonduro/cafeapi/internal/service"
)

const (
	msgNoCafeAtLocation = "Sorry, we don't have a cafe at that location."
	msgNoCafes          = "Sorry, there are no cafes in the database."
	msgCafeNotFound     = "Sorry, a cafe with that id wasn't found in the database."
	msgForbidden        = "Sorry, that's not allowed. Make sure you have the correct api_key."
	msgDuplicateName    = "Sorry, a cafe with that name already exists."
	msgInternal         = "Sorry, something went wrong."

	msgAdded        = "Successfully added the new cafe."
	msgPriceUpdated = "Successfully updated the price"
	msgDeleted      = "Successfully deleted the cafe from the database."
)

const maxFormMemory = 1 << 20 // 1 MB

type cafesResponse struct {
	Cafes []*domain.Cafe `json:"cafes"`
}

type foundCafesResponse struct {
	FoundCafes []*domain.Cafe `json:"found_cafes"`
}

type successResponse struct {
	Success string `json:"success"`
}

type addResponse struct {
	Response successResponse `json:"response"`
}

type failResponse struct {
	Fail string `json:"fail"`
}

// errorResponse renders as {"error": {"<Status Text>": "<message>"}}.
type errorResponse struct {
	Error map[string]string `json:"error"`
}

func newErrorResponse(status int, msg string) errorResponse {
	return errorResponse{Error: map[string]string{http.StatusText(status): msg}}
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	cafe, err := s.service.RandomCafe(r.Context())
	if errors.Is(err, domain.ErrEmpty) {
		s.writeJSON(w, r, http.StatusNotFound, newErrorResponse(http.StatusNotFound, msgNoCafes))
		return
	}
	if err != nil {
		s.internalError(w, r, "random cafe failed", err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, cafe)
}

func (s *Server) handleListAll(w http.ResponseWriter, r *http.Request) {
	cafes, err := s.service.ListCafes(r.Context())
	if err != nil {
		s.internalError(w, r, "list cafes failed", err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, cafesResponse{Cafes: cafes})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var found []*domain.Cafe
	// An absent loc matches nothing; an empty one is searched for literally.
	if query.Has("loc") {
		var err error
		found, err = s.service.SearchByLocation(r.Context(), query.Get("loc"))
		if err != nil {
			s.internalError(w, r, "search failed", err)
			return
		}
	}

	if len(found) == 0 {
		s.writeJSON(w, r, http.StatusNotFound, newErrorResponse(http.StatusNotFound, msgNoCafeAtLocation))
		return
	}
	s.writeJSON(w, r, http.StatusOK, foundCafesResponse{FoundCafes: found})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	// Accept both urlencoded and multipart bodies; multipart fields land in
	// r.PostForm too.
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.writeJSON(w, r, http.StatusBadRequest, newErrorResponse(http.StatusBadRequest, "failed to parse form"))
		return
	}

	newCafe, err := service.ParseNewCafe(r.PostForm)
	if err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, newErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	cafe, err := s.service.AddCafe(r.Context(), newCafe)
	switch {
	case errors.Is(err, domain.ErrDuplicateName):
		s.writeJSON(w, r, http.StatusBadRequest, newErrorResponse(http.StatusBadRequest, msgDuplicateName))
		return
	case errors.Is(err, domain.ErrInvalid):
		s.writeJSON(w, r, http.StatusBadRequest, newErrorResponse(http.StatusBadRequest, err.Error()))
		return
	case err != nil:
		s.internalError(w, r, "add cafe failed", err)
		return
	}

	s.logger.DebugContext(r.Context(), "cafe created", "cafe_id", cafe.ID)
	s.writeJSON(w, r, http.StatusOK, addResponse{Response: successResponse{Success: msgAdded}})
}

func (s *Server) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	cafeID, err := parseID(r)
	if err != nil {
		s.writeJSON(w, r, http.StatusNotFound, failResponse{Fail: msgCafeNotFound})
		return
	}

	// An absent new_price clears the price.
	var price *string
	if query := r.URL.Query(); query.Has("new_price") {
		p := query.Get("new_price")
		price = &p
	}

	err = s.service.UpdatePrice(r.Context(), cafeID, price)
	if errors.Is(err, domain.ErrNotFound) {
		s.writeJSON(w, r, http.StatusNotFound, failResponse{Fail: msgCafeNotFound})
		return
	}
	if err != nil {
		s.internalError(w, r, "update price failed", err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, successResponse{Success: msgPriceUpdated})
}

func (s *Server) handleReportClosed(w http.ResponseWriter, r *http.Request) {
	cafeID, err := parseID(r)
	if err != nil {
		s.writeJSON(w, r, http.StatusNotFound, failResponse{Fail: msgCafeNotFound})
		return
	}

	err = s.service.DeleteCafe(r.Context(), cafeID, r.URL.Query().Get("api-key"))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeJSON(w, r, http.StatusNotFound, failResponse{Fail: msgCafeNotFound})
	case errors.Is(err, domain.ErrForbidden):
		s.writeJSON(w, r, http.StatusForbidden, failResponse{Fail: msgForbidden})
	case err != nil:
		s.internalError(w, r, "delete cafe failed", err)
	default:
		s.writeJSON(w, r, http.StatusOK, successResponse{Success: msgDeleted})
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.renderPage(w, nil, "index.html"); err != nil {
		s.logger.ErrorContext(r.Context(), "render page failed", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health.PingContext(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "health check failed", "error", err)
		s.writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.ErrorContext(r.Context(), msg, "error", err)
	s.writeJSON(w, r, http.StatusInternalServerError, newErrorResponse(http.StatusInternalServerError, msgInternal))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.ErrorContext(r.Context(), "write response failed", "error", err)
	}
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
