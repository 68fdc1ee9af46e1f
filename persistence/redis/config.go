package redis

type Config struct {
	Addrs     []string
	Namespace string
	PoolSize  int
	Password  string
}

func (c Config) namespace() string {
	if c.Namespace == "" {
		return "workflower"
	}
	return c.Namespace
}
