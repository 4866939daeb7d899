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
	"os"
)

var statFunc = os.Stat

// IsLocalSocketPath returns true if path exists and is a directory (postgresql socket directory) or a unix socket
func IsLocalSocketPath(path string) bool {
	if path == "" {
		return false
	}
	info, err := statFunc(path)
	if err != nil {
		return false
	}
	return info.IsDir() || info.Mode()&os.ModeSocket != 0
}

// IsLocalHost returns true for literal "localhost" and for local socket paths
func IsLocalHost(host string) bool {
	return host == LocalHost || IsLocalSocketPath(host)
}
