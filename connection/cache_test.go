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
package connection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorCache(t *testing.T) {
	cache := NewDescriptorCache(2)
	descriptor, err := cache.Parse(ServerPgSQL, "user=app host=db.local")
	require.NoError(t, err)
	assert.Equal(t, "app", descriptor.Username)
	assert.Equal(t, 1, cache.Len())

	// returned descriptors are copies
	descriptor.Username = "changed"
	cached, ok := cache.Get(ServerPgSQL, "user=app host=db.local")
	require.True(t, ok)
	assert.Equal(t, "app", cached.Username)

	// same string of another kind is another entry
	_, ok = cache.Get(ServerMySQL, "user=app host=db.local")
	assert.False(t, ok)

	// failed parse isn't cached
	_, err = cache.Parse(ServerPgSQL, "user=app host")
	assert.Error(t, err)
	assert.Equal(t, 1, cache.Len())

	for i := 0; i < 3; i++ {
		_, err := cache.Parse(ServerMySQL, fmt.Sprintf("user%d@tcp(db:3306)/app", i))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cache.Len())
	_, ok = cache.Get(ServerPgSQL, "user=app host=db.local")
	assert.False(t, ok)
}

func TestDescriptorCacheDefaultSize(t *testing.T) {
	cache := NewDescriptorCache(0)
	for i := 0; i < DefaultCacheSize+10; i++ {
		cache.Add(&Descriptor{ServerKind: ServerPgSQL, ConnectionString: fmt.Sprintf("user=u%d", i)})
	}
	assert.Equal(t, DefaultCacheSize, cache.Len())
}
