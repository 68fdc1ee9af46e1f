package redis

import (
	"fmt"
	"strings"

	rd "github.com/go-redis/redis/v9"
)

type baseDao struct {
	redisClient rd.UniversalClient
	namespace   string
}

// NewClient returns a client for a single node or a cluster depending on the
// number of addresses.
func NewClient(conf Config) rd.UniversalClient {
	return rd.NewUniversalClient(&rd.UniversalOptions{
		Addrs:    conf.Addrs,
		Password: conf.Password,
		PoolSize: conf.PoolSize,
	})
}

func newBaseDao(client rd.UniversalClient, conf Config) *baseDao {
	return &baseDao{
		redisClient: client,
		namespace:   conf.namespace(),
	}
}

func (bs *baseDao) getNamespaceKey(args ...string) string {
	return fmt.Sprintf("%s:%s", bs.namespace, strings.Join(args, ":"))
}
