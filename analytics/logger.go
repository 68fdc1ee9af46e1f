package analytics

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFileDataCollector appends one JSON line per event to a file.
type LogFileDataCollector struct {
	fileName string
	logger   *zap.Logger
}

func NewLogFileDataCollector(fileName string) (*LogFileDataCollector, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.StacktraceKey = ""
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	logFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(fileEncoder, zapcore.AddSync(logFile), zapcore.InfoLevel)
	return &LogFileDataCollector{
		fileName: fileName,
		logger:   zap.New(core),
	}, nil
}

func (lc *LogFileDataCollector) RecordWorkItemTransition(wfName string, processId string, activityId string, workItemId string, state string) {
	lc.logger.Info("workitem", zap.String("workflow", wfName), zap.String("processId", processId), zap.String("activity", activityId), zap.String("workItem", workItemId), zap.String("state", state))
}

func (lc *LogFileDataCollector) RecordProcessState(wfName string, processId string, state string) {
	lc.logger.Info("process", zap.String("workflow", wfName), zap.String("processId", processId), zap.String("state", state))
}

func (lc *LogFileDataCollector) RecordOperationFailure(wfName string, processId string, activityId string, reason string) {
	lc.logger.Info("failure", zap.String("workflow", wfName), zap.String("processId", processId), zap.String("activity", activityId), zap.String("reason", reason))
}

func (lc *LogFileDataCollector) Sync() error {
	return lc.logger.Sync()
}
