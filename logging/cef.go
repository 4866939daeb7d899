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
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// CEF line layout:
// CEF:Version|Device Vendor|Device Product|Device Version|Signature ID|Name|Severity|Extension
const (
	cefVersion     = "CEF:0"
	cefDivider     = "|"
	cefDefaultHost = "host"
)

var cefHeaderKeys = map[string]struct{}{
	FieldKeyVendor:    {},
	FieldKeyProduct:   {},
	FieldKeyVersion:   {},
	FieldKeyEventCode: {},
}

// alarm fields which have a name in the CEF extension dictionary
var cefExtensionNames = map[string]string{
	FieldKeyUsername:  "duser",
	FieldKeyHost:      "dhost",
	FieldKeyPort:      "dpt",
	FieldKeyAction:    "act",
	FieldKeyCheckType: "cat",
}

var cefEscaper = strings.NewReplacer(
	"\n", " ",
	"\r", " ",
	"\t", " ",
	`\`, `\\`,
	"|", `\|`,
	"=", `\=`,
)

// CEFEncoder renders entries as CEF lines. Header values are taken from vendor, product, version and code fields,
// the rest of fields go to the extension sorted by key.
type CEFEncoder struct {
	// SyslogPrefix starts every line with "<timestamp> <host> "
	SyslogPrefix bool
	// HostName of syslog prefix, os.Hostname() by default
	HostName string

	once sync.Once
}

func (e *CEFEncoder) init() {
	if e.HostName != "" {
		return
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = cefDefaultHost
	}
	e.HostName = hostname
}

// Format renders entry
func (e *CEFEncoder) Format(entry *logrus.Entry) ([]byte, error) {
	e.once.Do(e.init)
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}
	if e.SyslogPrefix {
		b.WriteString(entry.Time.Format(time.RFC3339))
		b.WriteByte(' ')
		b.WriteString(e.HostName)
		b.WriteByte(' ')
	}
	b.WriteString(cefVersion)
	for _, value := range []interface{}{
		entry.Data[FieldKeyVendor],
		entry.Data[FieldKeyProduct],
		entry.Data[FieldKeyVersion],
		entry.Data[FieldKeyEventCode],
		entry.Message,
		cefSeverity(entry.Level),
	} {
		b.WriteString(cefDivider)
		b.WriteString(cefValue(value))
	}
	b.WriteString(cefDivider)

	extension := make(map[string]interface{}, len(entry.Data))
	for key, value := range entry.Data {
		if _, ok := cefHeaderKeys[key]; ok {
			continue
		}
		if name, ok := cefExtensionNames[key]; ok {
			key = name
		}
		extension[key] = value
	}
	keys := make([]string, 0, len(extension))
	for key := range extension {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(cefEscape(key))
		b.WriteByte('=')
		b.WriteString(cefValue(extension[key]))
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func cefEscape(value string) string {
	return cefEscaper.Replace(strings.TrimSpace(value))
}

// cefValue escapes value, empty values are written as single space
func cefValue(value interface{}) string {
	str, ok := value.(string)
	if !ok {
		if value == nil {
			str = ""
		} else {
			str = fmt.Sprint(value)
		}
	}
	str = cefEscape(str)
	if str == "" {
		return " "
	}
	return str
}

func cefSeverity(level logrus.Level) int {
	switch level {
	case logrus.InfoLevel:
		return 1
	case logrus.WarnLevel:
		return 3
	case logrus.ErrorLevel:
		return 6
	case logrus.FatalLevel:
		return 8
	case logrus.PanicLevel:
		return 10
	}
	return 0
}
