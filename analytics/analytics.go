package analytics

import "sync"

type DataCollectorConfig struct {
	FileName      string
	CollectorType DataCollectorType
}

type DataCollectorType string

const LOG_FILE_DATA_COLLECTOR DataCollectorType = "LOG_FILE_DATA_COLLECTOR"
const NOOP_DATA_COLLECTOR DataCollectorType = "NOOP_DATA_COLLECTOR"

// WorkflowDataCollector receives the lifecycle events of process instances.
type WorkflowDataCollector interface {
	RecordWorkItemTransition(wfName string, processId string, activityId string, workItemId string, state string)
	RecordProcessState(wfName string, processId string, state string)
	RecordOperationFailure(wfName string, processId string, activityId string, reason string)
}

type noopCollector struct{}

func (noopCollector) RecordWorkItemTransition(wfName string, processId string, activityId string, workItemId string, state string) {
}
func (noopCollector) RecordProcessState(wfName string, processId string, state string) {}
func (noopCollector) RecordOperationFailure(wfName string, processId string, activityId string, reason string) {
}

var (
	mu        sync.RWMutex
	collector WorkflowDataCollector = noopCollector{}
)

func InitDataCollector(config DataCollectorConfig) error {
	switch config.CollectorType {
	case LOG_FILE_DATA_COLLECTOR:
		c, err := NewLogFileDataCollector(config.FileName)
		if err != nil {
			return err
		}
		SetDataCollector(c)
	default:
		SetDataCollector(noopCollector{})
	}
	return nil
}

func SetDataCollector(c WorkflowDataCollector) {
	mu.Lock()
	defer mu.Unlock()
	collector = c
}

func current() WorkflowDataCollector {
	mu.RLock()
	defer mu.RUnlock()
	return collector
}

func RecordWorkItemTransition(wfName string, processId string, activityId string, workItemId string, state string) {
	current().RecordWorkItemTransition(wfName, processId, activityId, workItemId, state)
	recordTransition(state)
}

func RecordProcessState(wfName string, processId string, state string) {
	current().RecordProcessState(wfName, processId, state)
}

func RecordOperationFailure(wfName string, processId string, activityId string, reason string) {
	current().RecordOperationFailure(wfName, processId, activityId, reason)
}
