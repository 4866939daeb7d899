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
	"os"
	"strconv"
	"testing"
)

// GetTestRedisOptions returns Redis options from TEST_REDIS_* environment variables or skips the test if
// TEST_REDIS_HOSTPORT is not set
func GetTestRedisOptions(t testing.TB) RedisOptions {
	hostport := os.Getenv("TEST_REDIS_HOSTPORT")
	if hostport == "" {
		t.Skip("TEST_REDIS_HOSTPORT not set")
	}
	password := os.Getenv("TEST_REDIS_PASSWORD")
	dbNum := os.Getenv("TEST_REDIS_DB")
	if dbNum == "" {
		dbNum = "0"
	}
	dbInt, err := strconv.ParseInt(dbNum, 10, 64)
	if err != nil {
		t.Fatal(err)
	}
	return RedisOptions{DB: int(dbInt), HostPort: hostport, Password: password, Key: DefaultRedisPolicyKey}
}
