package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iwvelando/smart-calc-suite/internal/calculator"
	"github.com/iwvelando/smart-calc-suite/internal/catalog"
	"github.com/iwvelando/smart-calc-suite/internal/insight"
	"github.com/iwvelando/smart-calc-suite/internal/page"
	"github.com/iwvelando/smart-calc-suite/internal/visitors"
	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"github.com/iwvelando/smart-calc-suite/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, stub *testutil.StubCollaborator, regOpts ...page.RegistryOption) (http.Handler, *page.Registry) {
	t.Helper()
	opts := page.Options{
		Definitions: catalog.Definitions(),
		CounterOptions: []visitors.Option{
			visitors.WithClock(testutil.FixedClock(visitors.LaunchEpoch)),
		},
		Logger: zap.NewNop(),
	}
	if stub != nil {
		opts.Collaborator = stub
	}
	reg := page.NewRegistry(context.Background(), opts, regOpts...)
	t.Cleanup(reg.CloseAll)
	return NewHandler(zap.NewNop(), reg, constants.DefaultMaxBodySizeBytes, "v1.2.3"), reg
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func mountPage(t *testing.T, h http.Handler) page.State {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/api/pages", nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var state page.State
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	return state
}

func TestHandleVersion(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rr := doJSON(t, h, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "v1.2.3", resp["version"])
}

func TestHandleVersionMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rr := doJSON(t, h, http.MethodPost, "/api/version", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandleCalculators(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rr := doJSON(t, h, http.MethodGet, "/api/calculators", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var infos []struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Theme  string `json:"theme"`
		Styles struct {
			Background string `json:"bg"`
		} `json:"styles"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &infos))
	require.Len(t, infos, 4)
	for i, id := range catalog.IDs() {
		assert.Equal(t, id, infos[i].ID)
		assert.NotEmpty(t, infos[i].Title)
		assert.NotEmpty(t, infos[i].Styles.Background)
	}
}

func TestHandleCalculate(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	tests := []struct {
		name        string
		body        calculateRequest
		wantStatus  int
		wantDisplay string
	}{
		{
			name:        "appraisal",
			body:        calculateRequest{Calculator: catalog.AppraisalID, Inputs: map[string]string{"old": "50000", "new": "55000"}},
			wantStatus:  http.StatusOK,
			wantDisplay: "10.00%",
		},
		{
			name:        "discount",
			body:        calculateRequest{Calculator: catalog.DiscountID, Inputs: map[string]string{"amount": "1200", "percent": "25"}},
			wantStatus:  http.StatusOK,
			wantDisplay: "900.00",
		},
		{
			name:       "partial inputs give no result",
			body:       calculateRequest{Calculator: catalog.PriceIncreaseID, Inputs: map[string]string{"amount": "2000"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "rejected text",
			body:       calculateRequest{Calculator: catalog.DiscountID, Inputs: map[string]string{"amount": "-5", "percent": "10"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown calculator",
			body:       calculateRequest{Calculator: "mortgage"},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, h, http.MethodPost, "/api/calculate", tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			var state calculator.State
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
			assert.Equal(t, tt.wantDisplay, state.Display)
			if tt.wantDisplay == "" {
				assert.Nil(t, state.Result)
			}
		})
	}
}

func TestHandleCalculateRejectsOversizedBody(t *testing.T) {
	reg := page.NewRegistry(context.Background(), page.Options{Definitions: catalog.Definitions()})
	t.Cleanup(reg.CloseAll)
	h := NewHandler(zap.NewNop(), reg, 32, "")

	body := `{"calculator":"discount","inputs":{"amount":"` + strings.Repeat("1", 64) + `"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestPageLifecycle(t *testing.T) {
	stub := &testutil.StubCollaborator{Text: "A strong raise."}
	h, reg := newTestHandler(t, stub)

	state := mountPage(t, h)
	require.NotEmpty(t, state.ID)
	assert.Len(t, state.Calculators, 4)
	assert.Equal(t, int64(constants.VisitorBaseCount), state.Visitors)
	assert.Equal(t, 1, reg.Len())

	base := "/api/pages/" + state.ID + "/calculators/" + catalog.AppraisalID

	rr := doJSON(t, h, http.MethodPost, base+"/insight", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, "insight without a result")

	var input inputResponse
	rr = doJSON(t, h, http.MethodPut, base+"/inputs/old", inputRequest{Value: "50000"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &input))
	assert.True(t, input.Accepted)
	assert.Nil(t, input.State.Result)

	rr = doJSON(t, h, http.MethodPut, base+"/inputs/new", inputRequest{Value: "55000"})
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &input))
	assert.Equal(t, "10.00%", input.State.Display)

	rr = doJSON(t, h, http.MethodPut, base+"/inputs/new", inputRequest{Value: "55k"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &input))
	assert.False(t, input.Accepted)
	assert.Equal(t, "55000", input.State.RawInputs["new"])

	rr = doJSON(t, h, http.MethodPut, base+"/inputs/bonus", inputRequest{Value: "1"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var insight insightResponse
	rr = doJSON(t, h, http.MethodPost, base+"/insight", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &insight))
	assert.Equal(t, "A strong raise.", insight.Insight)
	require.NotNil(t, insight.State.Insight)
	assert.Equal(t, calculator.PhaseHasInsight, insight.State.Phase)

	rr = doJSON(t, h, http.MethodGet, "/api/pages/"+state.ID+"/visitors", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var count visitorsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &count))
	assert.Equal(t, state.ID, count.Page)
	assert.Equal(t, int64(constants.VisitorBaseCount), count.Count)

	rr = doJSON(t, h, http.MethodGet, "/api/pages/"+state.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, h, http.MethodDelete, "/api/pages/"+state.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 0, reg.Len())

	rr = doJSON(t, h, http.MethodGet, "/api/pages/"+state.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMountPageLimit(t *testing.T) {
	h, reg := newTestHandler(t, nil, page.WithMaxPages(1))

	first := mountPage(t, h)
	rr := doJSON(t, h, http.MethodPost, "/api/pages", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, 1, reg.Len())

	rr = doJSON(t, h, http.MethodDelete, "/api/pages/"+first.ID, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	mountPage(t, h)
}

func TestInsightPendingConflict(t *testing.T) {
	stub := &testutil.StubCollaborator{
		Text:    "Fine.",
		Gate:    make(chan struct{}),
		Started: make(chan insight.Request, 1),
	}
	h, _ := newTestHandler(t, stub)
	state := mountPage(t, h)
	base := "/api/pages/" + state.ID + "/calculators/" + catalog.DiscountID

	doJSON(t, h, http.MethodPut, base+"/inputs/amount", inputRequest{Value: "100"})
	doJSON(t, h, http.MethodPut, base+"/inputs/percent", inputRequest{Value: "10"})

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- doJSON(t, h, http.MethodPost, base+"/insight", nil)
	}()

	select {
	case <-stub.Started:
	case <-time.After(2 * time.Second):
		t.Fatal("insight request never reached the collaborator")
	}

	rr := doJSON(t, h, http.MethodPost, base+"/insight", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = doJSON(t, h, http.MethodPut, base+"/inputs/percent", inputRequest{Value: "20"})
	require.Equal(t, http.StatusOK, rr.Code)

	close(stub.Gate)
	stale := <-first
	require.Equal(t, http.StatusConflict, stale.Code, stale.Body.String())

	var resp insightResponse
	require.NoError(t, json.Unmarshal(stale.Body.Bytes(), &resp))
	assert.True(t, resp.Stale)
	assert.Nil(t, resp.State.Insight)
	assert.Equal(t, "80.00", resp.State.Display)
}

func TestUnknownPageAndCalculator(t *testing.T) {
	h, _ := newTestHandler(t, nil)
	state := mountPage(t, h)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/pages/missing"},
		{http.MethodDelete, "/api/pages/missing"},
		{http.MethodGet, "/api/pages/missing/visitors"},
		{http.MethodPost, "/api/pages/" + state.ID + "/calculators/mortgage/insight"},
		{http.MethodGet, "/ws/pages/missing/visitors"},
	}
	for _, p := range paths {
		rr := doJSON(t, h, p.method, p.path, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code, "%s %s", p.method, p.path)
	}
}

func TestVisitorStream(t *testing.T) {
	h, reg := newTestHandler(t, nil)
	state := mountPage(t, h)

	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/pages/" + state.ID + "/visitors"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg visitors.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, visitors.EventVisitors, msg.Event)
	assert.Equal(t, int64(constants.VisitorBaseCount), msg.Count)

	p, err := reg.Get(state.ID)
	require.NoError(t, err)
	next := p.Visitors().Tick()

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, next, msg.Count)
}
