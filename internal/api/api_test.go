package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/lumen-core/internal/auth"
	"github.com/nerrad567/lumen-core/internal/daemon"
	"github.com/nerrad567/lumen-core/internal/driver"
	"github.com/nerrad567/lumen-core/internal/event"
	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
	"github.com/nerrad567/lumen-core/internal/infrastructure/logging"
	"github.com/nerrad567/lumen-core/internal/persistence"
)

const (
	testSecret = "test-secret-with-enough-length-0123456789"
	mouseID    = "0003:1532:0084.0001"
	mouseSN    = "MS0001"
)

var mouseFiles = map[string]string{
	"device_type":            "Test Mouse\n",
	"device_serial":          mouseSN + "\n",
	"firmware_version":       "v1.2\n",
	"device_mode":            "\x00\x00",
	"matrix_effect_static":   "",
	"matrix_effect_spectrum": "",
	"matrix_brightness":      "255\n",
	"dpi":                    "",
	"poll_rate":              "500\n",
}

type testEnv struct {
	server  *Server
	http    *httptest.Server
	manager *daemon.Manager
	root    string
}

func testLogger() *logging.Logger {
	return logging.NewWithWriter(config.LoggingConfig{Level: "error", Format: "text"}, "test", &bytes.Buffer{})
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	for name, content := range mouseFiles {
		path := filepath.Join(root, mouseID, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	catalogue, err := driver.NewCatalogue([]config.ModelConfig{
		{Name: "Test Mouse", VendorID: 0x1532, ProductID: 0x0084, Type: "mouse", DPIMax: 16000},
	})
	require.NoError(t, err)

	m, err := daemon.NewManager(daemon.Options{
		Devices:   config.DevicesConfig{HIDRoot: root, DriverVersion: "3.0.1"},
		Catalogue: catalogue,
		Store:     persistence.NewStore(nil),
		Logger:    testLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	added, err := m.Discover(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, added)

	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	authn, err := auth.NewAuthenticator([]auth.User{
		{Username: "alice", PasswordHash: hash, Role: auth.RoleOperator},
	}, testSecret, time.Minute)
	require.NoError(t, err)

	s, err := New(Deps{
		WS:      config.WebSocketConfig{MaxMessageSize: 4096, PingInterval: 30, PongTimeout: 10},
		Logger:  testLogger(),
		Manager: m,
		Auth:    authn,
		Version: "test",
	})
	require.NoError(t, err)
	m.AddSink(s.Hub())

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{server: s, http: srv, manager: m, root: root}
}

func tokenFor(t *testing.T, role auth.Role) string {
	t.Helper()
	token, err := auth.GenerateAccessToken("user-"+string(role), role, testSecret, time.Minute)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequestWithContext(t.Context(), method, e.http.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)

	_, err = New(Deps{Logger: testLogger()})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, env.http.URL+"/api/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc123", resp.Header.Get("X-Request-ID"))

	resp = env.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Len(t, resp.Header.Get("X-Request-ID"), 36)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Username: "alice", Password: "correct horse"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[loginResponse](t, resp)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, 60, body.ExpiresIn)

	claims, err := auth.ParseToken(body.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, auth.RoleOperator, claims.Role)

	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "", "not an object")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/devices", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/devices", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	other, err := auth.GenerateAccessToken("mallory", auth.RoleAdmin, "another-secret", time.Minute)
	require.NoError(t, err)
	resp = env.do(t, http.MethodGet, "/api/v1/devices", other, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPermissions(t *testing.T) {
	env := newTestEnv(t)
	base := "/api/v1/devices/" + mouseSN

	tests := []struct {
		name   string
		role   auth.Role
		method string
		path   string
		body   any
		want   int
	}{
		{"viewer reads", auth.RoleViewer, http.MethodGet, base, nil, http.StatusOK},
		{"viewer cannot operate", auth.RoleViewer, http.MethodPut, base + "/zones/backlight/brightness", map[string]any{"value": 10}, http.StatusForbidden},
		{"operator operates", auth.RoleOperator, http.MethodPut, base + "/zones/backlight/brightness", map[string]any{"value": 10}, http.StatusOK},
		{"operator cannot configure", auth.RoleOperator, http.MethodPut, base + "/dpi", map[string]any{"dpi": []int{800}}, http.StatusForbidden},
		{"operator cannot discover", auth.RoleOperator, http.MethodPost, "/api/v1/devices/discover", nil, http.StatusForbidden},
		{"admin discovers", auth.RoleAdmin, http.MethodPost, "/api/v1/devices/discover", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, tt.method, tt.path, tokenFor(t, tt.role), tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestListAndGetDevices(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, auth.RoleViewer)

	resp := env.do(t, http.MethodGet, "/api/v1/devices", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[struct {
		Devices []daemon.Status `json:"devices"`
		Count   int             `json:"count"`
	}](t, resp)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, mouseSN, list.Devices[0].Serial)
	assert.Equal(t, "mouse", list.Devices[0].Type)

	resp = env.do(t, http.MethodGet, "/api/v1/devices/"+mouseSN, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[daemon.Status](t, resp)
	assert.Equal(t, []int{1800, 1800}, st.DPI)
	assert.Equal(t, 500, st.PollRate)

	resp = env.do(t, http.MethodGet, "/api/v1/devices/NOPE", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeviceInfo(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/devices/"+mouseSN+"/info", tokenFor(t, auth.RoleViewer), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info := decode[DeviceInfo](t, resp)
	assert.Equal(t, mouseID, info.HIDID)
	assert.Equal(t, "v1.2", info.FirmwareVersion)
	assert.Equal(t, "3.0.1", info.DriverVersion)
	assert.Equal(t, []int{0x1532, 0x0084}, info.VidPid)
	assert.Equal(t, []int{125, 500, 1000}, info.PollRates)
	assert.ElementsMatch(t, []string{"static", "spectrum"}, info.Effects["backlight"])
}

func TestSetEffect(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, auth.RoleOperator)
	path := "/api/v1/devices/" + mouseSN + "/zones/backlight/effect"

	resp := env.do(t, http.MethodPut, path, token, map[string]any{"effect": "static", "args": []int{255, 0, 16}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[daemon.Status](t, resp)
	assert.Equal(t, "static", st.Zones["backlight"].Effect)

	raw, err := os.ReadFile(filepath.Join(env.root, mouseID, "matrix_effect_static"))
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 0, 16}, raw)

	resp = env.do(t, http.MethodGet, "/api/v1/devices/"+mouseSN+"/zones/backlight", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	zr := decode[ZoneResponse](t, resp)
	assert.Equal(t, "static", zr.Effect)
	assert.Equal(t, []int{255, 0, 16}, zr.Colors[:3])
}

func TestSetEffect_Errors(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, auth.RoleOperator)
	base := "/api/v1/devices/" + mouseSN + "/zones/"

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"unknown zone", base + "nowhere/effect", map[string]any{"effect": "static", "args": []int{1, 2, 3}}, http.StatusNotFound},
		{"absent zone", base + "logo/effect", map[string]any{"effect": "static", "args": []int{1, 2, 3}}, http.StatusNotFound},
		{"unsupported effect", base + "backlight/effect", map[string]any{"effect": "wave", "args": []int{1}}, http.StatusUnprocessableEntity},
		{"wrong argument count", base + "backlight/effect", map[string]any{"effect": "static", "args": []int{1}}, http.StatusBadRequest},
		{"missing effect", base + "backlight/effect", map[string]any{}, http.StatusBadRequest},
		{"malformed body", base + "backlight/effect", "static", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPut, tt.path, token, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestDPIAndPollRate(t *testing.T) {
	env := newTestEnv(t)
	admin := tokenFor(t, auth.RoleAdmin)
	base := "/api/v1/devices/" + mouseSN

	resp := env.do(t, http.MethodPut, base+"/dpi", admin, map[string]any{"dpi": []int{800}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, base+"/dpi", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{800.0, 800.0}, decode[map[string]any](t, resp)["dpi"])

	resp = env.do(t, http.MethodPut, base+"/dpi", admin, map[string]any{"dpi": []int{20000, 800}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPut, base+"/poll-rate", admin, map[string]any{"rate": 1000})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, base+"/poll-rate", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1000.0, decode[map[string]any](t, resp)["poll_rate"])

	resp = env.do(t, http.MethodPut, base+"/poll-rate", admin, map[string]any{"rate": 300})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeviceMode(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/devices/"+mouseSN+"/mode", tokenFor(t, auth.RoleViewer), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0:0", decode[map[string]any](t, resp)["mode"])

	resp = env.do(t, http.MethodPut, "/api/v1/devices/"+mouseSN+"/mode", tokenFor(t, auth.RoleAdmin), map[string]any{"mode": []int{3}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSuspendResume(t *testing.T) {
	env := newTestEnv(t)
	admin := tokenFor(t, auth.RoleAdmin)
	base := "/api/v1/devices/" + mouseSN

	resp := env.do(t, http.MethodPost, base+"/suspend", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "suspended", decode[daemon.Status](t, resp).State)

	resp = env.do(t, http.MethodPut, base+"/zones/backlight/brightness", admin, map[string]any{"value": 50})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodPost, base+"/resume", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", decode[daemon.Status](t, resp).State)
}

func TestRemoveDevice(t *testing.T) {
	env := newTestEnv(t)
	admin := tokenFor(t, auth.RoleAdmin)

	resp := env.do(t, http.MethodDelete, "/api/v1/devices/"+mouseSN, admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/devices/"+mouseSN, admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/v1/devices/"+mouseSN, admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	m := decode[SystemMetrics](t, resp)
	assert.Equal(t, "test", m.Version)
	assert.Equal(t, 1, m.Devices.Total)
	assert.Equal(t, 1, m.Devices.ByType["mouse"])
	assert.Equal(t, 1, m.Devices.ByState["active"])
	assert.Equal(t, 0, m.WebSocket.ConnectedClients)
	assert.Equal(t, 0, m.Devices.Wireless)
	assert.Positive(t, m.Devices.Zones)
	assert.False(t, m.MQTT.Enabled)
}

func TestWebSocket_RequiresTicket(t *testing.T) {
	env := newTestEnv(t)
	wsURL := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/api/v1/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?ticket=forged", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_RelaysDeviceEvents(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, auth.RoleViewer)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/ws-ticket", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ticket, _ := decode[map[string]any](t, resp)["ticket"].(string)
	require.NotEmpty(t, ticket)

	wsURL := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/api/v1/ws?ticket=" + ticket
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Tickets are single-use.
	_, resp, err = websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	require.NoError(t, conn.WriteJSON(WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "1",
		Payload: WSSubscribePayload{Channels: []string{ChannelFor(event.KindEffect)}},
	}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ack WSMessage
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, WSTypeResponse, ack.Type)
	assert.Equal(t, "1", ack.ID)

	require.NoError(t, env.manager.Execute(mouseSN, daemon.Command{Action: daemon.ActionEffect, Effect: "spectrum"}))

	var msg struct {
		Type      string      `json:"type"`
		EventType string      `json:"event_type"`
		Payload   event.Event `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, WSTypeEvent, msg.Type)
	assert.Equal(t, "device.effect", msg.EventType)
	assert.Equal(t, mouseSN, msg.Payload.Source)
	assert.Equal(t, "spectrum", msg.Payload.Effect)
}

func TestWSClient_Subscriptions(t *testing.T) {
	c := &WSClient{subscriptions: map[string]struct{}{}}
	assert.False(t, c.isSubscribed("device.state"))

	c.subscriptions[ChannelAll] = struct{}{}
	assert.True(t, c.isSubscribed("device.state"))
	assert.True(t, c.isSubscribed("device.battery"))
}

func TestWSClient_DeviceFilter(t *testing.T) {
	c := &WSClient{
		subscriptions: map[string]struct{}{ChannelFor(event.KindEffect): {}},
		serials:       map[string]struct{}{},
	}
	assert.True(t, c.wants("device.effect", "KB0001"))
	assert.False(t, c.wants("device.state", "KB0001"))

	c.serials["MS0001"] = struct{}{}
	assert.True(t, c.wants("device.effect", "MS0001"))
	assert.False(t, c.wants("device.effect", "KB0001"))
}

func TestTicketStore(t *testing.T) {
	ts := newTicketStore()
	ticket := ts.issue("alice", auth.RoleAdmin)

	entry, ok := ts.redeem(ticket)
	require.True(t, ok)
	assert.Equal(t, "alice", entry.subject)
	assert.Equal(t, auth.RoleAdmin, entry.role)

	_, ok = ts.redeem(ticket)
	assert.False(t, ok)

	expired := ts.issue("bob", auth.RoleViewer)
	ts.mu.Lock()
	e := ts.tickets[expired]
	e.expiresAt = time.Now().Add(-time.Second)
	ts.tickets[expired] = e
	ts.mu.Unlock()

	ts.cleanExpired()
	ts.mu.Lock()
	assert.Empty(t, ts.tickets)
	ts.mu.Unlock()
}

func TestMDNSTXT(t *testing.T) {
	assert.Equal(t, []string{"version=1.0.0", "path=/api/v1"}, mdnsTXT("1.0.0"))
}
