package agent

import (
	"fmt"
	"sync"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/workflower/action"
	"github.com/mohitkumar/workflower/analytics"
	"github.com/mohitkumar/workflower/config"
	"github.com/mohitkumar/workflower/expression"
	"github.com/mohitkumar/workflower/lock"
	"github.com/mohitkumar/workflower/logger"
	"github.com/mohitkumar/workflower/metadata"
	"github.com/mohitkumar/workflower/persistence"
	"github.com/mohitkumar/workflower/persistence/redis"
	"github.com/mohitkumar/workflower/rest"
	"github.com/mohitkumar/workflower/service"
	"github.com/mohitkumar/workflower/shard"
	"github.com/mohitkumar/workflower/workflow"
	"go.uber.org/zap"
)

type Agent struct {
	Config                   config.Config
	redisClient              rd.UniversalClient
	metadataStorage          metadata.MetadataStorage
	instanceStorage          persistence.InstanceStorage
	locker                   lock.Locker
	evaluator                workflow.ExpressionEvaluator
	registry                 *action.Registry
	metadataService          metadata.MetadataService
	workflowExecutionService *service.WorkflowExecutionService
	httpServer               *rest.Server
	shutdown                 bool
	shutdowns                chan struct{}
	shutdownLock             sync.Mutex
}

func New(config config.Config) (*Agent, error) {
	a := &Agent{
		Config:    config,
		shutdowns: make(chan struct{}),
	}
	setup := []func() error{
		a.setupAnalytics,
		a.setupStorage,
		a.setupLocker,
		a.setupEvaluator,
		a.setupMetadataService,
		a.setupWorkflowExecutionService,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupAnalytics() error {
	if err := analytics.InitDataCollector(a.Config.AnalyticsConfig); err != nil {
		return err
	}
	return analytics.RegisterViews()
}

func (a *Agent) redisConfig() redis.Config {
	return redis.Config{
		Addrs:     a.Config.RedisConfig.Addrs,
		Namespace: a.Config.RedisConfig.Namespace,
	}
}

func (a *Agent) client() rd.UniversalClient {
	if a.redisClient == nil {
		a.redisClient = redis.NewClient(a.redisConfig())
	}
	return a.redisClient
}

func (a *Agent) setupStorage() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		a.metadataStorage = redis.NewRedisMetadataStorage(a.client(), a.redisConfig())
		a.instanceStorage = redis.NewRedisInstanceStorage(a.client(), a.redisConfig())
	case config.STORAGE_TYPE_INMEM, "":
		a.metadataStorage = metadata.NewMemoryStorage()
		a.instanceStorage = service.NewMemoryInstanceStore()
	default:
		return fmt.Errorf("unsupported storage type %s", a.Config.StorageType)
	}
	return nil
}

func (a *Agent) setupLocker() error {
	switch a.Config.LockType {
	case config.LOCK_TYPE_REDIS:
		a.locker = lock.NewRedisLocker(a.client(), a.Config.RedisConfig.Namespace)
	case config.LOCK_TYPE_LOCAL, "":
		a.locker = lock.NewLocalLocker()
	default:
		return fmt.Errorf("unsupported lock type %s", a.Config.LockType)
	}
	return nil
}

func (a *Agent) setupEvaluator() error {
	var err error
	a.evaluator, err = expression.New(string(a.Config.ExpressionLanguage))
	return err
}

func (a *Agent) setupMetadataService() error {
	a.registry = action.NewDefaultRegistry()
	a.metadataService = metadata.NewMetadataService(a.metadataStorage, a.registry)
	if a.Config.DefinitionsDir == "" {
		return nil
	}
	return metadata.Register(a.metadataService, a.Config.DefinitionsDir)
}

func (a *Agent) setupWorkflowExecutionService() error {
	shards := shard.NewManager(a.Config.ShardConfig.PartitionCount, a.Config.ShardConfig.ExecutorCapacity)
	a.workflowExecutionService = service.NewWorkflowExecutionService(a.metadataService, a.instanceStorage, shards, a.evaluator, a.registry, a.locker, service.Config{
		MaxSteps:      a.Config.MaxSteps,
		LockTTL:       a.Config.LockTTL,
		GaugeInterval: a.Config.GaugeInterval,
	})
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.metadataService, a.workflowExecutionService, a.registry)
	if err != nil {
		return err
	}
	return nil
}

func (a *Agent) Start() error {
	a.workflowExecutionService.Start()
	go func() {
		if err := a.httpServer.Start(); err != nil {
			logger.Error("http server stopped", zap.Error(err))
			_ = a.Shutdown()
		}
	}()
	return nil
}

// Done is closed once Shutdown ran.
func (a *Agent) Done() <-chan struct{} {
	return a.shutdowns
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true
	close(a.shutdowns)

	shutdown := []func() error{
		a.httpServer.Stop,
		func() error {
			a.workflowExecutionService.Stop()
			return nil
		},
		func() error {
			if a.redisClient == nil {
				return nil
			}
			return a.redisClient.Close()
		},
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	return logger.Sync()
}
