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

package consul

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestFlags(t *testing.T, prefix string, arguments ...string) *CLIOptions {
	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterCLIParametersWithFlagSet(flags, prefix, "")
	RegisterCLIParametersWithFlagSet(flags, prefix, "registered twice")
	require.NoError(t, flags.Parse(arguments))
	return ParseCLIParametersFromFlags(flags, prefix)
}

func TestParseCLIParameters(t *testing.T) {
	options := parseTestFlags(t, "")
	assert.Equal(t, &CLIOptions{BundlePath: defaultConsulBundlePath}, options)

	options = parseTestFlags(t, "cache_",
		"--cache_consul_connection_api_string=https://consul:8501",
		"--cache_consul_kv_policy_path=app/policy",
		"--cache_consul_tls_ca_path=/etc/ca",
		"--cache_consul_tls_client_cert=client.crt",
		"--cache_consul_tls_client_key=client.key",
		"--cache_consul_tls_transport_enable")
	assert.Equal(t, &CLIOptions{
		Address:    "https://consul:8501",
		BundlePath: "app/policy",
		CAPath:     "/etc/ca",
		ClientCert: "client.crt",
		ClientKey:  "client.key",
		EnableTLS:  true,
	}, options)

	assert.Equal(t, &CLIOptions{}, ParseCLIParametersFromFlags(flag.NewFlagSet("empty", flag.ContinueOnError), ""))
}

func TestClientConfig(t *testing.T) {
	options := &CLIOptions{Address: "https://consul:8501", CAPath: "/etc/ca", ClientCert: "client.crt", ClientKey: "client.key"}
	config, err := options.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, "consul:8501", config.Address)
	assert.Equal(t, "https", config.Scheme)
	assert.Empty(t, config.TLSConfig.CAPath)

	options.EnableTLS = true
	config, err = options.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, "/etc/ca", config.TLSConfig.CAPath)
	assert.Equal(t, "client.crt", config.TLSConfig.CertFile)
	assert.Equal(t, "client.key", config.TLSConfig.KeyFile)

	_, err = (&CLIOptions{Address: "consul.local"}).ClientConfig()
	assert.Error(t, err)
}
