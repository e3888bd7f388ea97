package rest

import (
	"accioncsat/internal/cache"
	"accioncsat/internal/form"
	"accioncsat/internal/model"
	"accioncsat/internal/schema"
	"accioncsat/internal/service"
	"accioncsat/internal/transport/ws"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAPI struct {
	handler http.Handler
	svc     *service.FormService
	survey  *model.Schema
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	survey, err := schema.Default()
	require.NoError(t, err)

	logger := zap.NewNop()
	tokens := service.NewTokenService("test-secret", time.Hour)
	svc := service.NewFormService(
		form.NewEngine(survey),
		cache.NewMemorySessionCache(time.Hour),
		tokens,
		service.NewSimulatedSubmitter(10*time.Millisecond, logger),
		logger,
	)
	hub := ws.NewHub(logger)
	svc.SetBroadcaster(hub)
	t.Cleanup(func() {
		svc.Wait()
		hub.Close()
	})

	return &testAPI{
		handler: NewRouter(&Container{
			FormService: svc,
			Tokens:      tokens,
			WSHub:       hub,
			Logger:      logger,
		}),
		svc:    svc,
		survey: survey,
	}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) start(t *testing.T) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp model.StartSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) model.SessionView {
	t.Helper()
	var view model.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view), rec.Body.String())
	require.NotNil(t, view.FormSession)
	return view
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSurveyAndDocs(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/survey", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var survey model.Schema
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &survey))
	assert.Len(t, survey.Questions(), 20)

	rec = api.do(t, http.MethodGet, "/v1/docs/openapi.json", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/form/submit")
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodOptions, "/v1/form/submit", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestFormRequiresToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/form", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/v1/form", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := api.start(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/form?token="+token, nil)
	qrec := httptest.NewRecorder()
	api.handler.ServeHTTP(qrec, req)
	assert.Equal(t, http.StatusOK, qrec.Code)
}

func TestUpdateAnswerErrors(t *testing.T) {
	api := newTestAPI(t)
	token := api.start(t)

	tests := []struct {
		name   string
		key    string
		body   interface{}
		status int
	}{
		{"scalar answer", "q1", map[string]interface{}{"value": "5"}, http.StatusOK},
		{"list answer", "q17", map[string]interface{}{"value": []string{"avb", "pilots"}}, http.StatusOK},
		{"other text", "q17_other", map[string]interface{}{"value": "workshops"}, http.StatusOK},
		{"low rating needs justification", "q1", map[string]interface{}{"value": "1"}, http.StatusBadRequest},
		{"list for scalar question", "q12", map[string]interface{}{"value": []string{"x"}}, http.StatusBadRequest},
		{"undeclared option", "q18", map[string]interface{}{"value": "maybe"}, http.StatusBadRequest},
		{"unknown question", "q99", map[string]interface{}{"value": "x"}, http.StatusNotFound},
		{"missing value", "q1", map[string]interface{}{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPut, "/v1/form/answers/"+tt.key, token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestLowRatingFlow(t *testing.T) {
	api := newTestAPI(t)
	token := api.start(t)

	rec := api.do(t, http.MethodPost, "/v1/form/ratings/q3", token, map[string]string{"rating": "2"})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	require.NotNil(t, view.Prompt)
	assert.Equal(t, "q3", view.Prompt.QuestionKey)
	assert.True(t, view.Record["q3"].IsEmpty())

	rec = api.do(t, http.MethodPost, "/v1/form/prompt", token, map[string]string{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/form/prompt", token, map[string]string{"text": "slow response"})
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeView(t, rec)
	assert.Nil(t, view.Prompt)
	assert.Equal(t, "2", view.Record["q3"].Text())
	require.Len(t, view.ActiveExamples, 1)
	assert.Equal(t, "slow response", view.ActiveExamples[0].Example)

	rec = api.do(t, http.MethodPost, "/v1/form/ratings/q3/edit", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeView(t, rec)
	require.NotNil(t, view.Prompt)
	assert.Equal(t, "slow response", view.Prompt.Previous)

	rec = api.do(t, http.MethodDelete, "/v1/form/prompt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeView(t, rec)
	assert.True(t, view.Record["q3"].IsEmpty())

	rec = api.do(t, http.MethodDelete, "/v1/form/prompt", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/form/ratings/q3/edit", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestToggleOption(t *testing.T) {
	api := newTestAPI(t)
	token := api.start(t)

	api.do(t, http.MethodPost, "/v1/form/answers/q17/options", token, map[string]interface{}{"value": "avb", "checked": true})
	rec := api.do(t, http.MethodPost, "/v1/form/answers/q17/options", token, map[string]interface{}{"value": "pilots", "checked": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"avb", "pilots"}, decodeView(t, rec).Record["q17"].Values())

	rec = api.do(t, http.MethodPost, "/v1/form/answers/q17/options", token, map[string]interface{}{"value": "avb", "checked": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"pilots"}, decodeView(t, rec).Record["q17"].Values())
}

func TestSubmitIncomplete(t *testing.T) {
	api := newTestAPI(t)
	token := api.start(t)

	api.do(t, http.MethodPut, "/v1/form/answers/q1", token, map[string]string{"value": "5"})
	api.do(t, http.MethodPost, "/v1/form/ratings/q3", token, map[string]string{"rating": "2"})
	api.do(t, http.MethodPost, "/v1/form/prompt", token, map[string]string{"text": "slow response"})

	rec := api.do(t, http.MethodPost, "/v1/form/submit", token, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Missing []string          `json:"missing"`
		Focus   string            `json:"focus"`
		Session model.SessionView `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	var want []string
	for _, key := range api.survey.RequiredKeys() {
		if key != "q1" && key != "q3" {
			want = append(want, key)
		}
	}
	assert.Equal(t, want, resp.Missing)
	assert.Equal(t, "q2", resp.Focus)
	assert.Equal(t, want, resp.Session.Errors)
}

func fillForm(t *testing.T, api *testAPI, token string) {
	t.Helper()
	for _, q := range api.survey.Questions() {
		var value interface{}
		switch q.Kind {
		case model.QuestionKindRating:
			value = "5"
		case model.QuestionKindChoice:
			value = q.Options[0].Value
		case model.QuestionKindMultiChoice:
			value = []string{q.Options[0].Value}
		default:
			value = "fine"
		}
		rec := api.do(t, http.MethodPut, "/v1/form/answers/"+q.Key, token, map[string]interface{}{"value": value})
		require.Equal(t, http.StatusOK, rec.Code, "%s: %s", q.Key, rec.Body.String())
	}
}

func TestSubmitComplete(t *testing.T) {
	api := newTestAPI(t)
	token := api.start(t)
	fillForm(t, api, token)

	rec := api.do(t, http.MethodPost, "/v1/form/submit", token, nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, model.SessionSubmitting, decodeView(t, rec).Status)

	rec = api.do(t, http.MethodPost, "/v1/form/submit", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	api.svc.Wait()

	rec = api.do(t, http.MethodGet, "/v1/form", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	assert.Equal(t, model.SessionSubmitted, view.Status)
	assert.Equal(t, 1, view.Submissions)
}

func TestEndSession(t *testing.T) {
	api := newTestAPI(t)
	token := api.start(t)

	rec := api.do(t, http.MethodDelete, "/v1/form", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/v1/form", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormWebSocket(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.handler)
	defer srv.Close()

	token := api.start(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/form?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() ws.Message {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg ws.Message
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	assert.Equal(t, ws.MessageType(service.EventStateChanged), read().Type)

	api.do(t, http.MethodPost, "/v1/form/ratings/q5", token, map[string]string{"rating": "1"})
	msg := read()
	assert.Equal(t, ws.MessageType(service.EventPromptOpened), msg.Type)

	var view model.SessionView
	require.NoError(t, json.Unmarshal(msg.Payload, &view))
	require.NotNil(t, view.Prompt)
	assert.Equal(t, "q5", view.Prompt.QuestionKey)

	_, _, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/ws/form?token=bad", nil)
	assert.Error(t, err)
}
