package redis

import (
	"context"
	"testing"

	rd "github.com/go-redis/redis/v9"
	"github.com/google/uuid"
	"github.com/mohitkumar/workflower/metadata"
	"github.com/mohitkumar/workflower/model"
	"github.com/mohitkumar/workflower/persistence"
	"github.com/mohitkumar/workflower/workflow"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) (rd.UniversalClient, Config) {
	conf := Config{
		Addrs:     []string{"localhost:6379"},
		Namespace: "test-" + uuid.New().String(),
	}
	client := NewClient(conf)
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})
	return client, conf
}

func TestRedisStorage(t *testing.T) {
	for scenario, fn := range map[string]func(
		t *testing.T, client rd.UniversalClient, conf Config,
	){
		"metadata round trip": testMetadata,
		"instance round trip": testInstance,
	} {
		t.Run(scenario, func(t *testing.T) {
			client, conf := testClient(t)
			fn(t, client, conf)
		})
	}
}

func testMetadata(t *testing.T, client rd.UniversalClient, conf Config) {
	storage := NewRedisMetadataStorage(client, conf)
	wf := model.Workflow{
		Name: "linear",
		FlowObjects: []model.FlowObjectDef{
			{Id: "start", Type: model.START_EVENT},
			{Id: "end", Type: model.END_EVENT},
		},
		SequenceFlows: []model.SequenceFlowDef{{Id: "f1", Source: "start", Target: "end"}},
	}
	require.NoError(t, storage.SaveWorkflowDefinition(wf))
	got, err := storage.GetWorkflowDefinition("linear")
	require.NoError(t, err)
	require.Equal(t, wf, *got)

	names, err := storage.ListWorkflowDefinitions()
	require.NoError(t, err)
	require.Equal(t, []string{"linear"}, names)

	require.NoError(t, storage.DeleteWorkflowDefinition("linear"))
	_, err = storage.GetWorkflowDefinition("linear")
	require.ErrorIs(t, err, metadata.ErrDefinitionNotFound)
}

func testInstance(t *testing.T, client rd.UniversalClient, conf Config) {
	storage := NewRedisInstanceStorage(client, conf)
	ctx := context.Background()
	g := workflow.NewGraph("linear")
	require.NoError(t, g.AddFlowObject(workflow.NewStartEvent("start", "")))
	require.NoError(t, g.AddFlowObject(workflow.NewActivity("task", "", "", "", nil)))
	require.NoError(t, g.AddSequenceFlow(&workflow.SequenceFlow{Id: "f1", Source: "start", Target: "task"}))
	pi := workflow.NewProcessInstance("p1", g)
	pi.SetProcessData(map[string]any{"amount": 10.5, "tags": []any{"a"}})
	require.NoError(t, pi.Start(ctx, g.StartEvents()[0]))

	require.NoError(t, storage.SaveInstance(ctx, pi.Snapshot()))
	count, err := storage.CountInstances(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	got, err := storage.GetInstance(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, workflow.INSTANCE_STARTED, got.State)
	require.Equal(t, "task", got.CurrentFlowObject)
	require.Equal(t, map[string]any{"amount": 10.5, "tags": []any{"a"}}, got.ProcessData)
	require.Len(t, got.WorkItems, 1)

	require.NoError(t, storage.DeleteInstance(ctx, "p1"))
	_, err = storage.GetInstance(ctx, "p1")
	require.ErrorIs(t, err, persistence.ErrInstanceNotFound)
	count, err = storage.CountInstances(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
