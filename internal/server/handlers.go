package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"career-advisor/internal/chat"
	"career-advisor/internal/models"
)

type messageRequest struct {
	Input string `json:"input"`
}

type messageResponse struct {
	Answer string `json:"answer"`
	Turns  int    `json:"turns"`
}

type finishRequest struct {
	Feedback string `json:"feedback"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := chat.NewSession(s.answerer)
	if err != nil {
		log.Error().Err(err).Msg("Error creating session")
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.addSession(sess)
	log.Info().Str("session", sess.ID).Msg("Chat session started")
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := sess.Ask(r.Context(), req.Input)
	switch {
	case errors.Is(err, models.ErrMissingInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, models.ErrUpstreamUnavailable):
		log.Error().Err(err).Str("session", sess.ID).Msg("Upstream model failed")
		s.respondError(w, http.StatusBadGateway, "language model unavailable")
		return
	case err != nil:
		log.Error().Err(err).Str("session", sess.ID).Msg("Error answering")
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, messageResponse{Answer: answer, Turns: sess.Len()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, sess.History().Turns())
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	var req finishRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	id := chi.URLParam(r, "id")
	sess, ok := s.session(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	// removed only once the transcript is stored
	transcript := sess.Finish(req.Feedback)
	if s.transcripts != nil {
		if err := s.transcripts.SaveTranscript(r.Context(), transcript); err != nil {
			log.Error().Err(err).Str("session", sess.ID).Msg("Error saving transcript")
			s.respondError(w, http.StatusInternalServerError, "failed to save transcript")
			return
		}
	}
	if _, ok := s.removeSession(id); !ok {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, transcript)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
