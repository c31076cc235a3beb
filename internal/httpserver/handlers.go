package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/SeamusWaldron/cubetac"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

type markReq struct {
	X      *int   `json:"x"`
	Y      *int   `json:"y"`
	Z      *int   `json:"z"`
	Player string `json:"player,omitempty"`
}

type rotateReq struct {
	Axis  *types.Axis `json:"axis"`
	Layer *int        `json:"layer"`
	Turn  *types.Turn `json:"turn"`
}

type outcomeResp struct {
	Outcome cubetac.Outcome      `json:"outcome"`
	State   *cubetac.RenderState `json:"state,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	rs, err := s.ctrl.Snapshot(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleMark(w http.ResponseWriter, r *http.Request) {
	var req markReq
	if err := decode(w, r, &req); err != nil || req.X == nil || req.Y == nil || req.Z == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	player, err := types.ParseMark(req.Player)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_player")
		return
	}

	pos := types.Vec{X: *req.X, Y: *req.Y, Z: *req.Z}
	out, rs, err := s.ctrl.Mark(r.Context(), pos, player)
	s.respond(w, out, rs, err)
}

func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	var req rotateReq
	if err := decode(w, r, &req); err != nil || req.Axis == nil || req.Layer == nil || req.Turn == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	out, rs, err := s.ctrl.Rotate(r.Context(), *req.Axis, *req.Layer, *req.Turn)
	s.respond(w, out, rs, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	rs, err := s.ctrl.Reset(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

// respond maps an outcome to a status: 200 accepted, 400 invalid
// arguments, 409 any other rejection, 500 invariant violation.
func (s *Server) respond(w http.ResponseWriter, out cubetac.Outcome, rs cubetac.RenderState, err error) {
	if err != nil {
		s.internalError(w, err)
		return
	}

	switch out {
	case cubetac.Accepted:
		writeJSON(w, http.StatusOK, outcomeResp{Outcome: out, State: &rs})
	case cubetac.RejectedInvalid:
		writeJSON(w, http.StatusBadRequest, outcomeResp{Outcome: out})
	default:
		writeJSON(w, http.StatusConflict, outcomeResp{Outcome: out})
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	if errors.Is(err, cubetac.ErrOrientationInvariant) {
		log.Error().Err(err).Msg("invariant violation")
	} else {
		log.Warn().Err(err).Msg("request failed")
	}
	writeError(w, http.StatusInternalServerError, "internal")
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
