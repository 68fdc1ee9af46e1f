package redis

import (
	"context"
	"errors"
	"sort"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/workflower/logger"
	"github.com/mohitkumar/workflower/metadata"
	"github.com/mohitkumar/workflower/model"
	"github.com/mohitkumar/workflower/persistence"
	"github.com/mohitkumar/workflower/util"
	"go.uber.org/zap"
)

const WORKFLOW_DEF string = "WORKFLOW"

var _ metadata.MetadataStorage = new(redisMetadataStorage)

// redisMetadataStorage keeps every definition as a field of one hash.
type redisMetadataStorage struct {
	*baseDao
	workflowEncoderDecoder util.EncoderDecoder[model.Workflow]
}

func NewRedisMetadataStorage(client rd.UniversalClient, conf Config) *redisMetadataStorage {
	return &redisMetadataStorage{
		baseDao:                newBaseDao(client, conf),
		workflowEncoderDecoder: util.NewJsonEncoderDecoder[model.Workflow](),
	}
}

func (rfd *redisMetadataStorage) SaveWorkflowDefinition(wf model.Workflow) error {
	key := rfd.getNamespaceKey(WORKFLOW_DEF)
	data, err := rfd.workflowEncoderDecoder.Encode(wf)
	if err != nil {
		return err
	}
	if err := rfd.redisClient.HSet(context.Background(), key, wf.Name, string(data)).Err(); err != nil {
		logger.Error("error in saving workflow definition", zap.String("workflow", wf.Name), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rfd *redisMetadataStorage) DeleteWorkflowDefinition(name string) error {
	key := rfd.getNamespaceKey(WORKFLOW_DEF)
	if err := rfd.redisClient.HDel(context.Background(), key, name).Err(); err != nil {
		logger.Error("error in deleting workflow definition", zap.String("workflow", name), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rfd *redisMetadataStorage) GetWorkflowDefinition(name string) (*model.Workflow, error) {
	key := rfd.getNamespaceKey(WORKFLOW_DEF)
	val, err := rfd.redisClient.HGet(context.Background(), key, name).Result()
	if errors.Is(err, rd.Nil) {
		return nil, metadata.ErrDefinitionNotFound
	}
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rfd.workflowEncoderDecoder.Decode([]byte(val))
}

func (rfd *redisMetadataStorage) ListWorkflowDefinitions() ([]string, error) {
	key := rfd.getNamespaceKey(WORKFLOW_DEF)
	names, err := rfd.redisClient.HKeys(context.Background(), key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	sort.Strings(names)
	return names, nil
}
