package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mohitkumar/workflower/analytics"
	"github.com/mohitkumar/workflower/config"
	"github.com/mohitkumar/workflower/expression"
	"github.com/mohitkumar/workflower/logger"
	"github.com/mohitkumar/workflower/server/agent"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cfg struct {
	config.Config
}
type cli struct {
	cfg cfg
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "workflower", "namespace used in storage")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints")
	cmd.Flags().String("storage-impl", "memory", "implementation of underline storage, memory or redis")
	cmd.Flags().String("lock-impl", "local", "implementation of instance lock, local or redis")
	cmd.Flags().Duration("lock-ttl", 0, "expiry of an instance lock, 0 for the default")
	cmd.Flags().String("expression-language", string(expression.LANGUAGE_EXPR), "language of sequence flow conditions, expr, jsonpath or javascript")
	cmd.Flags().Int("max-steps", 0, "step limit of execute, 0 for the default")
	cmd.Flags().Int("partitions", 8, "number of shards serializing instance operations")
	cmd.Flags().Int("executor-capacity", 512, "queue capacity of each shard")
	cmd.Flags().String("definitions-dir", "", "directory of workflow definitions loaded at startup")
	cmd.Flags().String("analytics-file", "", "file analytics events get appended to, none if empty")
	cmd.Flags().Duration("gauge-interval", 0, "interval of the active instances gauge, 0 for the default")
	cmd.Flags().String("log-level", "info", "log level")
	cmd.Flags().Bool("development", false, "development logging")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	var err error

	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err = viper.ReadInConfig(); err != nil {
			// it's ok if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return err
			}
		}
	}

	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.StorageType = config.StorageType(viper.GetString("storage-impl"))
	c.cfg.LockType = config.LockType(viper.GetString("lock-impl"))
	c.cfg.LockTTL = viper.GetDuration("lock-ttl")
	c.cfg.ExpressionLanguage = expression.Language(viper.GetString("expression-language"))
	c.cfg.MaxSteps = viper.GetInt("max-steps")
	c.cfg.ShardConfig.PartitionCount = viper.GetInt("partitions")
	c.cfg.ShardConfig.ExecutorCapacity = viper.GetInt("executor-capacity")
	c.cfg.DefinitionsDir = viper.GetString("definitions-dir")
	c.cfg.GaugeInterval = viper.GetDuration("gauge-interval")
	c.cfg.LogLevel = viper.GetString("log-level")
	c.cfg.Development = viper.GetBool("development")
	if file := viper.GetString("analytics-file"); file != "" {
		c.cfg.AnalyticsConfig = analytics.DataCollectorConfig{FileName: file, CollectorType: analytics.LOG_FILE_DATA_COLLECTOR}
	}
	return logger.Init(c.cfg.LogLevel, c.cfg.Development)
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	agent, err := agent.New(c.cfg.Config)
	if err != nil {
		return err
	}
	if err := agent.Start(); err != nil {
		return err
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-agent.Done():
	}
	return agent.Shutdown()
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "workflower",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
