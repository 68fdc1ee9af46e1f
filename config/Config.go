package config

import (
	"time"

	"github.com/mohitkumar/workflower/analytics"
	"github.com/mohitkumar/workflower/expression"
)

type StorageType string

type LockType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

const LOCK_TYPE_LOCAL LockType = "local"
const LOCK_TYPE_REDIS LockType = "redis"

type Config struct {
	RedisConfig        RedisStorageConfig
	HttpPort           int
	StorageType        StorageType
	LockType           LockType
	LockTTL            time.Duration
	ExpressionLanguage expression.Language
	MaxSteps           int
	ShardConfig        ShardConfig
	DefinitionsDir     string
	AnalyticsConfig    analytics.DataCollectorConfig
	GaugeInterval      time.Duration
	LogLevel           string
	Development        bool
}

type ShardConfig struct {
	PartitionCount   int
	ExecutorCapacity int
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
}
