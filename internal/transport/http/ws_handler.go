package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"startup-apply-service/internal/app"
	"startup-apply-service/internal/domain"
)

// WSHandler drives a live form-filling session over a websocket: the client
// streams field edits and submit/reset triggers, the server answers with
// state snapshots and submit outcomes.
type WSHandler struct {
	service  *app.FormService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.FormService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type setFieldPayload struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// statePayload is the incremental snapshot sent after each accepted edit.
type statePayload struct {
	Values      domain.FormState  `json:"values"`
	Errors      domain.ErrorState `json:"errors"`
	Phase       app.Phase         `json:"phase"`
	SubmitError string            `json:"submitError,omitempty"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the form
// engine. Messages are handled strictly in arrival order, which preserves
// the single-threaded, event-driven model of the form.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	formID := r.URL.Query().Get("formId")
	sessionID := r.URL.Query().Get("sessionId")
	if formID == "" || sessionID == "" {
		http.Error(w, "missing formId or sessionId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	schema, session, err := h.service.Open(r.Context(), formID, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Close(r.Context(), sessionID)

	if err := conn.WriteJSON(outboundMessage[formView]{Type: "form", Payload: renderForm(schema, session)}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "setField":
			var payload setFieldPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.writeError(conn, "invalid setField payload")
				continue
			}
			view, err := h.service.SetField(r.Context(), formID, sessionID, payload.Field, payload.Value)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			h.writeState(conn, view)
		case "submit":
			outcome, err := h.service.Submit(r.Context(), formID, sessionID)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(outboundMessage[app.SubmitOutcome]{Type: "submitResult", Payload: outcome})
		case "reset":
			view, err := h.service.Reset(r.Context(), sessionID)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			h.writeState(conn, view)
		default:
			h.writeError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) writeState(conn *websocket.Conn, view app.SessionView) {
	_ = conn.WriteJSON(outboundMessage[statePayload]{Type: "state", Payload: statePayload{
		Values:      view.Values,
		Errors:      view.Errors,
		Phase:       view.Phase,
		SubmitError: view.SubmitError,
	}})
}

func (h *WSHandler) writeError(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}})
}
