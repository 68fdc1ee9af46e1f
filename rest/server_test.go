package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mohitkumar/workflower/action"
	"github.com/mohitkumar/workflower/expression"
	"github.com/mohitkumar/workflower/metadata"
	"github.com/mohitkumar/workflower/service"
	"github.com/mohitkumar/workflower/shard"
	"github.com/mohitkumar/workflower/workflow"
	"github.com/stretchr/testify/require"
)

const orderFlow = `{
	"name": "order",
	"flowObjects": [
		{"id": "start", "type": "startEvent"},
		{"id": "pack", "type": "activity", "role": "warehouse"},
		{"id": "total", "type": "activity", "operation": "javascript", "params": {"script": "$.total = $.price * $.qty;"}},
		{"id": "end", "type": "endEvent"}
	],
	"sequenceFlows": [
		{"id": "f1", "source": "start", "target": "pack"},
		{"id": "f2", "source": "pack", "target": "total"},
		{"id": "f3", "source": "total", "target": "end"}
	]
}`

func newTestServer(t *testing.T) *httptest.Server {
	registry := action.NewDefaultRegistry()
	metadataService := metadata.NewMetadataService(metadata.NewMemoryStorage(), registry)
	evaluator, err := expression.New("")
	require.NoError(t, err)
	executor := service.NewWorkflowExecutionService(metadataService, service.NewMemoryInstanceStore(), shard.NewManager(2, 4), evaluator, registry, nil, service.Config{})
	executor.Start()
	t.Cleanup(executor.Stop)
	s, err := NewServer(0, metadataService, executor, registry)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url string, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func get(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestServer(t *testing.T) {
	ts := newTestServer(t)

	code, body := post(t, ts.URL+"/metadata/workflow", orderFlow)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["created"])

	code, body = post(t, ts.URL+"/metadata/workflow", `{"name": "broken", "flowObjects": []}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "InvalidArgument", body["code"])

	var def map[string]any
	require.Equal(t, http.StatusOK, get(t, ts.URL+"/metadata/workflow/order", &def))
	require.Equal(t, "order", def["name"])
	require.Equal(t, http.StatusNotFound, get(t, ts.URL+"/metadata/workflow/nope", &def))

	var actions []map[string]any
	require.Equal(t, http.StatusOK, get(t, ts.URL+"/metadata/action", &actions))
	require.Len(t, actions, 4)

	code, body = post(t, ts.URL+"/process", `{"workflow": "order", "data": {"price": 4, "qty": 2}}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, string(workflow.INSTANCE_STARTED), body["state"])
	id := body["id"].(string)

	code, body = post(t, ts.URL+"/process/"+id+"/activity/pack/allocate", `{"participantId": "joe"}`)
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "PermissionDenied", body["code"])

	code, body = post(t, ts.URL+"/process/"+id+"/activity/pack/complete", `{"participantId": "joe"}`)
	require.Equal(t, http.StatusConflict, code)

	code, body = post(t, ts.URL+"/process/"+id+"/activity/pack/execute", `{"participantId": "joe", "roles": ["warehouse"]}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, string(workflow.INSTANCE_COMPLETED), body["state"])

	var snapshot map[string]any
	require.Equal(t, http.StatusOK, get(t, ts.URL+"/process/"+id, &snapshot))
	require.Equal(t, float64(8), snapshot["processData"].(map[string]any)["total"])

	code, _ = post(t, ts.URL+"/process/"+id+"/activity/pack/start", ``)
	require.Equal(t, http.StatusPreconditionFailed, code)
	require.Equal(t, http.StatusNotFound, get(t, ts.URL+"/process/missing", &snapshot))

	code, _ = post(t, ts.URL+"/process/missing/resume", `{"data": {"retry": true}}`)
	require.Equal(t, http.StatusNotFound, code)
	code, body = post(t, ts.URL+"/process/"+id+"/resume", ``)
	require.Equal(t, http.StatusPreconditionFailed, code)
	require.Equal(t, "FailedPrecondition", body["code"])
}
