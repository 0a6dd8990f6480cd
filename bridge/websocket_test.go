package bridge_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"walletbridge/bridge"
	"walletbridge/channel"
)

func TestWebSocketCalls(t *testing.T) {
	promReg := prometheus.NewRegistry()
	metrics := bridge.NewMetrics(promReg)
	web := bridge.NewWebServer(testRegistry(t, metrics), bridge.WebConfig{}, promReg, zaptest.NewLogger(t))

	ts := httptest.NewServer(web.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(bridge.Request{ID: "a", Channel: "echo", Method: "echo", Arguments: channel.Args{"text": "hello"}}))
	var resp bridge.Response
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "a", resp.ID)
	assert.Equal(t, bridge.TypeSuccess, resp.Type)
	assert.Equal(t, "hello", resp.Result)

	for _, method := range []string{"nothing", "something"} {
		require.NoError(t, conn.WriteJSON(bridge.Request{ID: "b", Channel: "echo", Method: method}))
		resp = bridge.Response{}
		require.NoError(t, conn.ReadJSON(&resp))
		assert.Equal(t, bridge.TypeNotImplemented, resp.Type)
	}

	require.NoError(t, conn.WriteJSON(bridge.Request{ID: "c", Type: bridge.TypeChannels}))
	resp = bridge.Response{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, []string{"echo"}, resp.Channels)

	res, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `walletbridge_calls_total{channel="echo",method="echo",outcome="success"} 1`)
	assert.Contains(t, string(body), `walletbridge_calls_total{channel="echo",method="unknown",outcome="not_implemented"} 2`)
	assert.NotContains(t, string(body), `method="nothing"`)
	assert.Contains(t, string(body), `walletbridge_call_duration_seconds_count{channel="echo",method="echo"} 1`)
}

func TestWebSocketOriginCheck(t *testing.T) {
	web := bridge.NewWebServer(testRegistry(t), bridge.WebConfig{Origins: []string{"app://wallet"}}, nil, zaptest.NewLogger(t))
	ts := httptest.NewServer(web.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, res, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"app://wallet"}})
	require.NoError(t, err)
	conn.Close()
}

func TestHealthz(t *testing.T) {
	web := bridge.NewWebServer(testRegistry(t), bridge.WebConfig{}, nil, zaptest.NewLogger(t))
	rec := httptest.NewRecorder()
	web.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","channels":["echo"]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	web.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
