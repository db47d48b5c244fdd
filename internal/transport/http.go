// Package transport adapts HTTP requests to dispatch events: one
// decoded envelope in, one encoded response (or one structured error)
// out, per request. No streaming, no multiplexing.
package transport

import (
	"errors"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/DavePearce/OnlineCards/internal/dispatch"
	"github.com/DavePearce/OnlineCards/internal/room"
)

// UserHeader carries the acting user's opaque identifier. Establishing
// or verifying that identity is out of scope here; the value is
// forwarded as-is.
const UserHeader = "X-User"

type errorResponse struct {
	Error string `json:"error"`
}

// eventBody is the decoded request payload. Kind is a pointer so a
// body that never names a kind is distinguishable from kind zero.
type eventBody struct {
	Kind    *int `json:"kind"`
	Payload any  `json:"payload,omitempty"`
}

// Handler serves the room event endpoint.
type Handler struct {
	dispatcher *dispatch.Dispatcher
	registry   *room.Registry
	logger     *zap.Logger
}

// NewHandler creates a Handler backed by the given dispatcher.
//
// Precondition: dispatcher, registry, and logger must be non-nil.
func NewHandler(dispatcher *dispatch.Dispatcher, registry *room.Registry, logger *zap.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		registry:   registry,
		logger:     logger,
	}
}

// Register attaches the handler's routes to the given router.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/room/:id", h.handleRoomEvent)
	e.GET("/healthz", h.handleHealth)
}

// handleRoomEvent decodes one event envelope (room ID from the path,
// kind and payload from the JSON body, user from the X-User header),
// dispatches it, and encodes the result.
func (h *Handler) handleRoomEvent(c echo.Context) error {
	var body eventBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if body.Kind == nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "missing event kind"})
	}

	ev := dispatch.Envelope{
		Kind:    dispatch.Kind(*body.Kind),
		RoomID:  c.Param("id"),
		UserID:  c.Request().Header.Get(UserHeader),
		Payload: body.Payload,
	}

	resp, err := h.dispatcher.Handle(ev)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("event failed",
				zap.Stringer("kind", ev.Kind),
				zap.String("room_id", ev.RoomID),
				zap.Error(err),
			)
		}
		return c.JSON(status, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  h.registry.Len(),
	})
}

// statusFor maps the dispatch error taxonomy to HTTP status codes so
// every failure is distinguishable by the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrMalformedEvent):
		return http.StatusBadRequest
	case errors.Is(err, room.ErrRoomExists):
		return http.StatusConflict
	case errors.Is(err, room.ErrRoomNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
