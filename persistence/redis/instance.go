package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/workflower/persistence"
	"github.com/mohitkumar/workflower/util"
	"github.com/mohitkumar/workflower/workflow"
)

const INSTANCE_KEY string = "INSTANCE"
const INSTANCE_INDEX_KEY string = "INSTANCES"

const (
	stateField = "state"
	dataField  = "data"
)

var _ persistence.InstanceStorage = new(redisInstanceStorage)

// redisInstanceStorage stores a snapshot as a hash: the runtime state as JSON
// and the process data as a protobuf Struct.
type redisInstanceStorage struct {
	*baseDao
	stateEncoderDecoder util.EncoderDecoder[workflow.Snapshot]
	dataEncoderDecoder  util.EncoderDecoder[map[string]any]
}

func NewRedisInstanceStorage(client rd.UniversalClient, conf Config) *redisInstanceStorage {
	return &redisInstanceStorage{
		baseDao:             newBaseDao(client, conf),
		stateEncoderDecoder: util.NewJsonEncoderDecoder[workflow.Snapshot](),
		dataEncoderDecoder:  util.NewProtoDataEncoderDecoder(),
	}
}

func (r *redisInstanceStorage) SaveInstance(ctx context.Context, snapshot *workflow.Snapshot) error {
	state := *snapshot
	state.ProcessData = nil
	stateBytes, err := r.stateEncoderDecoder.Encode(state)
	if err != nil {
		return err
	}
	dataBytes, err := r.dataEncoderDecoder.Encode(snapshot.ProcessData)
	if err != nil {
		return err
	}
	key := r.getNamespaceKey(INSTANCE_KEY, snapshot.Id)
	index := r.getNamespaceKey(INSTANCE_INDEX_KEY)
	_, err = r.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.HSet(ctx, key, stateField, string(stateBytes), dataField, string(dataBytes))
		pipe.SAdd(ctx, index, snapshot.Id)
		return nil
	})
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (r *redisInstanceStorage) GetInstance(ctx context.Context, id string) (*workflow.Snapshot, error) {
	key := r.getNamespaceKey(INSTANCE_KEY, id)
	fields, err := r.redisClient.HGetAll(ctx, key).Result()
	if err != nil && !errors.Is(err, rd.Nil) {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	stateStr, ok := fields[stateField]
	if !ok {
		return nil, persistence.ErrInstanceNotFound
	}
	snapshot, err := r.stateEncoderDecoder.Decode([]byte(stateStr))
	if err != nil {
		return nil, err
	}
	data, err := r.dataEncoderDecoder.Decode([]byte(fields[dataField]))
	if err != nil {
		return nil, err
	}
	snapshot.ProcessData = *data
	return snapshot, nil
}

func (r *redisInstanceStorage) DeleteInstance(ctx context.Context, id string) error {
	key := r.getNamespaceKey(INSTANCE_KEY, id)
	index := r.getNamespaceKey(INSTANCE_INDEX_KEY)
	_, err := r.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, index, id)
		return nil
	})
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (r *redisInstanceStorage) CountInstances(ctx context.Context) (int, error) {
	n, err := r.redisClient.SCard(ctx, r.getNamespaceKey(INSTANCE_INDEX_KEY)).Result()
	if err != nil {
		return 0, persistence.StorageLayerError{Message: err.Error()}
	}
	return int(n), nil
}
