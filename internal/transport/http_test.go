package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DavePearce/OnlineCards/internal/dispatch"
	"github.com/DavePearce/OnlineCards/internal/game"
	"github.com/DavePearce/OnlineCards/internal/room"
)

type fakeSession struct{}

func (fakeSession) Snapshot() game.Snapshot { return game.Snapshot{"fake": true} }
func (fakeSession) End()                    {}

func newTestRouter(t *testing.T) (*echo.Echo, *room.Registry) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	reg := room.NewRegistry(logger)
	d := dispatch.NewDispatcher(reg, func() game.Session { return fakeSession{} }, logger)
	h := NewHandler(d, reg, logger)

	e := echo.New()
	h.Register(e)
	return e, reg
}

func postEvent(e *echo.Echo, roomID, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/room/"+roomID, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleRoomEvent_Create(t *testing.T) {
	e, reg := newTestRouter(t)

	rec := postEvent(e, "table1", "alice", `{"kind": 0}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dispatch.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dispatch.RoomState, resp.Kind)
	assert.Equal(t, true, resp.Snapshot["fake"])
	assert.Equal(t, 1, reg.Len())
}

func TestHandleRoomEvent_DuplicateCreateConflicts(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := postEvent(e, "table1", "alice", `{"kind": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postEvent(e, "table1", "alice", `{"kind": 0}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "already exists")
}

func TestHandleRoomEvent_EnterMissingRoom(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := postEvent(e, "ghost", "alice", `{"kind": 2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRoomEvent_UnknownKind(t *testing.T) {
	e, reg := newTestRouter(t)

	rec := postEvent(e, "table1", "alice", `{"kind": 9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, reg.Len())
}

func TestHandleRoomEvent_BadJSON(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := postEvent(e, "table1", "alice", `{kind}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRoomEvent_MissingKind(t *testing.T) {
	e, reg := newTestRouter(t)

	rec := postEvent(e, "table1", "alice", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, reg.Len())
}

func TestHandleRoomEvent_UserHeaderForwarded(t *testing.T) {
	e, reg := newTestRouter(t)

	require.Equal(t, http.StatusOK, postEvent(e, "table1", "", `{"kind": 0}`).Code)
	require.Equal(t, http.StatusOK, postEvent(e, "table1", "alice", `{"kind": 2}`).Code)

	r, err := reg.Get("table1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, r.Participants())
}

func TestHandleRoomEvent_RemoveIsIdempotent(t *testing.T) {
	e, _ := newTestRouter(t)

	require.Equal(t, http.StatusOK, postEvent(e, "table1", "alice", `{"kind": 0}`).Code)
	for i := 0; i < 3; i++ {
		rec := postEvent(e, "table1", "alice", `{"kind": 1}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	e, reg := newTestRouter(t)
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, postEvent(e, fmt.Sprintf("r%d", i), "", `{"kind": 0}`).Code)
	}
	require.Equal(t, 2, reg.Len())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(2), body["rooms"])
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", dispatch.ErrMalformedEvent), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", room.ErrRoomExists), http.StatusConflict},
		{fmt.Errorf("wrapped: %w", room.ErrRoomNotFound), http.StatusNotFound},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err))
	}
}
