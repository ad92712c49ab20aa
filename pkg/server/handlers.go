package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/corkboard/pkg/api"
	"github.com/matzehuels/corkboard/pkg/board"
	corkerrors "github.com/matzehuels/corkboard/pkg/errors"
	"github.com/matzehuels/corkboard/pkg/store"
)

const maxBodyBytes = 4 << 20

var errNoRoute = corkerrors.New(corkerrors.ErrCodeNotFound, "no such route")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	boardID, err := boardParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.store.ListItems(r.Context(), boardID)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	if items == nil {
		items = []board.Item{}
	}
	writeJSON(w, http.StatusOK, api.ItemsResponse{Board: boardID, Items: items})
}

func (s *Server) handlePutItems(w http.ResponseWriter, r *http.Request) {
	boardID, err := boardParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req api.PutItemsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	for _, it := range req.Items {
		if err := corkerrors.ValidateCoordinates(it.Position.Top, it.Position.Left); err != nil {
			writeError(w, r, corkerrors.Wrap(corkerrors.ErrCodeInvalidPosition, err, "item %d", it.ID))
			return
		}
	}
	if err := s.store.PutItems(r.Context(), boardID, req.Items); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	boardID, itemID, err := itemParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req api.PositionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Top == nil || req.Left == nil {
		writeError(w, r, corkerrors.New(corkerrors.ErrCodeInvalidPosition, "top and left are required"))
		return
	}
	if err := corkerrors.ValidateCoordinates(*req.Top, *req.Left); err != nil {
		writeError(w, r, err)
		return
	}
	pos := board.Position{Top: *req.Top, Left: *req.Left}
	if err := s.store.UpdatePosition(r.Context(), boardID, itemID, pos); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	boardID, itemID, err := itemParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.DeleteItem(r.Context(), boardID, itemID); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func boardParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "board")
	if err := corkerrors.ValidateBoardID(id); err != nil {
		return "", err
	}
	return id, nil
}

func itemParams(r *http.Request) (string, int64, error) {
	boardID, err := boardParam(r)
	if err != nil {
		return "", 0, err
	}
	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return "", 0, corkerrors.New(corkerrors.ErrCodeInvalidInput, "invalid item id %q", chi.URLParam(r, "id"))
	}
	return boardID, itemID, nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return corkerrors.Wrap(corkerrors.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}

// storeError maps store.ErrNotFound to ITEM_NOT_FOUND and logs everything else
// as an internal failure.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, corkerrors.Wrap(corkerrors.ErrCodeItemNotFound, err, "item not found"))
		return
	}
	s.logger.Error("store failure", "method", r.Method, "path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()), "err", err)
	writeError(w, r, corkerrors.Wrap(corkerrors.ErrCodeStore, err, "store failure"))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := corkerrors.GetCode(err)
	if code == "" {
		code = corkerrors.ErrCodeInternal
	}
	writeJSON(w, corkerrors.HTTPStatus(code), api.ErrorResponse{Error: api.ErrorBody{
		Code:    string(code),
		Message: corkerrors.UserMessage(err),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
