package analytics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats/view"
)

func TestLogFileDataCollector(t *testing.T) {
	file := filepath.Join(t.TempDir(), "analytics.log")
	require.NoError(t, InitDataCollector(DataCollectorConfig{FileName: file, CollectorType: LOG_FILE_DATA_COLLECTOR}))
	defer SetDataCollector(noopCollector{})

	RecordWorkItemTransition("order", "p1", "pack", "w1", "ALLOCATED")
	RecordProcessState("order", "p1", "COMPLETED")
	RecordOperationFailure("order", "p1", "pay", "card declined")
	require.NoError(t, current().(*LogFileDataCollector).Sync())

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], `"state":"ALLOCATED"`)
	require.Contains(t, lines[1], `"msg":"process"`)
	require.Contains(t, lines[2], `"reason":"card declined"`)
}

func TestMetrics(t *testing.T) {
	require.NoError(t, RegisterViews())
	defer view.Unregister(WorkItemTransitionsView, ActiveInstancesView)

	RecordWorkItemTransition("order", "p1", "pack", "w1", "STARTED")
	RecordWorkItemTransition("order", "p1", "pack", "w1", "STARTED")
	RecordActiveInstances(3)

	rows, err := view.RetrieveData(WorkItemTransitionsView.Name)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(2), rows[0].Data.(*view.CountData).Value)

	rows, err = view.RetrieveData(ActiveInstancesView.Name)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, float64(3), rows[0].Data.(*view.LastValueData).Value)
}
