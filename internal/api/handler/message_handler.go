package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"leet2git/internal/api/middleware"
	"leet2git/internal/common"
	"leet2git/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

// Dispatcher handles one channel message and always produces a response.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg model.Message) model.Response
}

type MessageHandler struct {
	dispatcher Dispatcher
}

func NewMessageHandler(dispatcher Dispatcher) *MessageHandler {
	return &MessageHandler{dispatcher: dispatcher}
}

func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.send)
}

// send answers every well-formed, permitted message with 200 and the
// dispatcher's response; handler failures travel inside that response.
func (h *MessageHandler) send(w http.ResponseWriter, r *http.Request) {
	var msg model.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if msg.Kind == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Message kind is required")
		return
	}

	role, _ := middleware.GetClientRoleFromContext(r.Context())
	if !model.KindAllowed(role, msg.Kind) {
		clientID, _ := middleware.GetClientIDFromContext(r.Context())
		log.Printf("WARN: Client %q (%s) may not send %s", clientID, role, msg.Kind)
		common.RespondWithError(w, http.StatusForbidden, fmt.Sprintf("Role %q may not send %s", role, msg.Kind))
		return
	}

	common.RespondWithJSON(w, http.StatusOK, h.dispatcher.Dispatch(r.Context(), msg))
}
