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
	"net/url"
	"strconv"

	"github.com/hashicorp/consul/api"
	log "github.com/sirupsen/logrus"
)

const defaultConsulBundlePath = "acra-rasp/policy"

// Flag names without prefix
const (
	FlagAddress    = "consul_connection_api_string"
	FlagBundlePath = "consul_kv_policy_path"
	FlagCAPath     = "consul_tls_ca_path"
	FlagClientCert = "consul_tls_client_cert"
	FlagClientKey  = "consul_tls_client_key"
	FlagEnableTLS  = "consul_tls_transport_enable"
)

// CLIOptions describe consul bundle storage
type CLIOptions struct {
	Address    string
	BundlePath string
	CAPath     string
	ClientCert string
	ClientKey  string
	EnableTLS  bool
}

// RegisterCLIParametersWithFlagSet registers consul flags with prefix once
func RegisterCLIParametersWithFlagSet(flags *flag.FlagSet, prefix, description string) {
	if flags.Lookup(prefix+FlagAddress) != nil {
		return
	}
	suffix := ""
	if description != "" {
		suffix = " (" + description + ")"
	}
	flags.String(prefix+FlagAddress, "", "Consul API URL (http://host:port) serving policy bundle"+suffix)
	flags.String(prefix+FlagBundlePath, defaultConsulBundlePath, "Consul KV key holding policy bundle"+suffix)
	flags.String(prefix+FlagCAPath, "", "CA certificate used to verify Consul"+suffix)
	flags.String(prefix+FlagClientCert, "", "Client certificate presented to Consul"+suffix)
	flags.String(prefix+FlagClientKey, "", "Key of client certificate presented to Consul"+suffix)
	flags.Bool(prefix+FlagEnableTLS, false, "Talk to Consul over TLS"+suffix)
}

// ParseCLIParametersFromFlags collects consul options from flags, unregistered flags keep zero values
func ParseCLIParametersFromFlags(flags *flag.FlagSet, prefix string) *CLIOptions {
	value := func(name string) string {
		if f := flags.Lookup(prefix + name); f != nil {
			return f.Value.String()
		}
		return ""
	}
	options := &CLIOptions{
		Address:    value(FlagAddress),
		BundlePath: value(FlagBundlePath),
		CAPath:     value(FlagCAPath),
		ClientCert: value(FlagClientCert),
		ClientKey:  value(FlagClientKey),
	}
	if raw := value(FlagEnableTLS); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			log.WithField("value", raw).Warnf("Invalid %s%s, TLS disabled", prefix, FlagEnableTLS)
		}
		options.EnableTLS = enabled
	}
	return options
}

// ClientConfig converts options into consul client config. TLS settings are set only with EnableTLS.
func (options *CLIOptions) ClientConfig() (*api.Config, error) {
	consulURL, err := url.ParseRequestURI(options.Address)
	if err != nil {
		return nil, err
	}
	config := &api.Config{Address: consulURL.Host, Scheme: consulURL.Scheme}
	if options.EnableTLS {
		config.TLSConfig = api.TLSConfig{
			CAPath:   options.CAPath,
			CertFile: options.ClientCert,
			KeyFile:  options.ClientKey,
		}
	}
	return config, nil
}
