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

package logging

import (
	"fmt"
	"time"

	"github.com/cossacklabs/acra-rasp/utils"
	"github.com/sirupsen/logrus"
)

// Keys of fields added by formatters
const (
	FieldKeyUnixTime  = "unixTime"
	FieldKeyProduct   = "product"
	FieldKeyVersion   = "version"
	FieldKeyVendor    = "vendor"
	FieldKeyEventCode = "code"
)

// Keys of alarm fields
const (
	FieldKeyServer       = "server"
	FieldKeyQuery        = "query"
	FieldKeyCheckType    = "check_type"
	FieldKeyAction       = "action"
	FieldKeyUsername     = "username"
	FieldKeyHost         = "host"
	FieldKeyPort         = "port"
	FieldKeyRequestKey   = "request_key"
	FieldKeyErrorCode    = "error_code"
	FieldKeyErrorMessage = "error_message"
)

const (
	defaultProduct = "acra-rasp"
	defaultVendor  = "cossacklabs"
)

// JSONFieldMap renames default logrus keys
var JSONFieldMap = logrus.FieldMap{
	logrus.FieldKeyTime:  "timestamp",
	logrus.FieldKeyMsg:   "msg",
	logrus.FieldKeyLevel: "level",
}

// Formatter fills product, version and timestamp fields and renders entries with encoder.
// Entries passed to Format are never modified.
type Formatter struct {
	encoder     logrus.Formatter
	defaults    logrus.Fields
	serviceName string
	addUnixTime bool
}

// NewTextFormatter returns plaintext formatter. Plaintext entries get no extra fields.
func NewTextFormatter() *Formatter {
	return &Formatter{
		encoder: &logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  time.RFC3339,
			QuoteEmptyFields: true,
		},
	}
}

// NewJSONFormatter returns JSON formatter
func NewJSONFormatter() *Formatter {
	return &Formatter{
		encoder: &logrus.JSONFormatter{
			FieldMap:        JSONFieldMap,
			TimestampFormat: time.RFC3339,
		},
		defaults: logrus.Fields{
			FieldKeyProduct: defaultProduct,
			FieldKeyVersion: utils.VERSION,
		},
		addUnixTime: true,
	}
}

// NewCEFFormatter returns CEF formatter, entries without event code get 0 as signature id
func NewCEFFormatter() *Formatter {
	return &Formatter{
		encoder: &CEFEncoder{},
		defaults: logrus.Fields{
			FieldKeyProduct:   defaultProduct,
			FieldKeyVersion:   utils.VERSION,
			FieldKeyVendor:    defaultVendor,
			FieldKeyEventCode: 0,
		},
		addUnixTime: true,
	}
}

// SetServiceName replaces product field of JSON and CEF entries
func (f *Formatter) SetServiceName(serviceName string) {
	f.serviceName = serviceName
}

// Format renders entry together with formatter fields. Fields of entry take precedence over defaults.
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	if len(f.defaults) == 0 && !f.addUnixTime {
		return f.encoder.Format(entry)
	}
	data := make(logrus.Fields, len(f.defaults)+len(entry.Data)+1)
	for k, v := range f.defaults {
		data[k] = v
	}
	if f.serviceName != "" {
		data[FieldKeyProduct] = f.serviceName
	}
	for k, v := range entry.Data {
		data[k] = v
	}
	if f.addUnixTime {
		data[FieldKeyUnixTime] = unixTimeWithMilliseconds(entry.Time)
	}
	extended := &logrus.Entry{
		Logger:  entry.Logger,
		Data:    data,
		Time:    entry.Time,
		Level:   entry.Level,
		Caller:  entry.Caller,
		Message: entry.Message,
		Context: entry.Context,
	}
	return f.encoder.Format(extended)
}

func unixTimeWithMilliseconds(t time.Time) string {
	return fmt.Sprintf("%.3f", float64(t.UnixNano()/int64(time.Millisecond))/1000.0)
}
