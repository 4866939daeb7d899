/*
Copyright 2026, Cossack Labs Limited

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"flag"
	"strconv"

	goRedis "github.com/go-redis/redis/v7"
)

const (
	redisDefaultDB = 0
	// DefaultRedisPolicyKey is key of policy bundle in Redis
	DefaultRedisPolicyKey = "acra-rasp/policy"
)

// RedisOptions keep command-line options related to Redis database configuration.
type RedisOptions struct {
	HostPort string
	Password string
	DB       int
	Key      string
}

// RegisterRedisParameters registers Redis parameters with given flag set and prefix.
// Use empty prefix, or something like "src_" or "dst_", for example.
func RegisterRedisParameters(flags *flag.FlagSet, prefix string, description string) {
	if description != "" {
		description = " (" + description + ")"
	}
	if flags.Lookup(prefix+"redis_host_port") == nil {
		flags.String(prefix+"redis_host_port", "", "<host>:<port> used to connect to Redis"+description)
		flags.String(prefix+"redis_password", "", "Password to Redis database"+description)
		flags.Int(prefix+"redis_db_policy", redisDefaultDB, "Number of Redis database for policy bundle"+description)
		flags.String(prefix+"redis_policy_key", DefaultRedisPolicyKey, "Key of policy bundle in Redis"+description)
	}
}

// ParseRedisParametersFromFlags returns RedisOptions from provided FlagSet
func ParseRedisParametersFromFlags(flags *flag.FlagSet, prefix string) *RedisOptions {
	options := RedisOptions{}
	if f := flags.Lookup(prefix + "redis_host_port"); f != nil {
		options.HostPort = f.Value.String()
	}
	if f := flags.Lookup(prefix + "redis_password"); f != nil {
		options.Password = f.Value.String()
	}
	if f := flags.Lookup(prefix + "redis_db_policy"); f != nil {
		if db, err := strconv.Atoi(f.Value.String()); err == nil {
			options.DB = db
		}
	}
	if f := flags.Lookup(prefix + "redis_policy_key"); f != nil {
		options.Key = f.Value.String()
	}
	return &options
}

// Configured returns true if Redis address is set
func (redis *RedisOptions) Configured() bool {
	return redis.HostPort != ""
}

// Options returns Redis connection configuration
func (redis *RedisOptions) Options() *goRedis.Options {
	return &goRedis.Options{
		Addr:     redis.HostPort,
		Password: redis.Password,
		DB:       redis.DB,
	}
}
