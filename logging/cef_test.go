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
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCEFEscape(t *testing.T) {
	assert.Equal(t, "small string", cefEscape("small string"))
	assert.Equal(t, `small \| \= string`, cefEscape("small | = string"))
	assert.Equal(t, "small     string", cefEscape("small \t \n string"))
	assert.Equal(t, `c:\\tmp`, cefEscape(`c:\tmp`))
	assert.Equal(t, " ", cefValue(""))
	assert.Equal(t, " ", cefValue(nil))
	assert.Equal(t, "42", cefValue(42))
}

func TestCEFAlarmLine(t *testing.T) {
	encoder := &CEFEncoder{HostName: "test-host"}
	entry := &logrus.Entry{
		Message: "Connection policy violation",
		Level:   logrus.WarnLevel,
		Time:    time.Unix(0, 0),
		Data: logrus.Fields{
			FieldKeyVendor:    "cossacklabs",
			FieldKeyProduct:   "acra-rasp",
			FieldKeyVersion:   "0.1.0",
			FieldKeyEventCode: EventCodeAlarmPolicyViolation,
			FieldKeyServer:    "pgsql",
			FieldKeyUsername:  "postgres",
			FieldKeyHost:      "db",
			FieldKeyPort:      5432,
			FieldKeyAction:    "block",
		},
	}
	out, err := encoder.Format(entry)
	require.NoError(t, err)
	assert.Equal(t,
		"CEF:0|cossacklabs|acra-rasp|0.1.0|201|Connection policy violation|3|act=block dhost=db dpt=5432 duser=postgres server=pgsql\n",
		string(out))
}

func TestCEFFormatterDefaults(t *testing.T) {
	formatter := NewCEFFormatter()
	formatter.SetServiceName("acra-rasp-policy")
	entry := &logrus.Entry{Message: "query", Level: logrus.InfoLevel, Time: time.Unix(2, 0), Data: logrus.Fields{
		FieldKeyQuery: "select 1",
	}}
	out, err := formatter.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.True(t, strings.HasPrefix(line, "CEF:0|cossacklabs|acra-rasp-policy|"), line)
	assert.Contains(t, line, "|0|query|1|")
	assert.Contains(t, line, "query=select 1 unixTime=2.000")
}

func TestCEFSyslogPrefix(t *testing.T) {
	encoder := &CEFEncoder{HostName: "test-host", SyslogPrefix: true}
	entry := &logrus.Entry{Message: "msg", Time: time.Unix(0, 0).UTC(), Data: logrus.Fields{}}
	out, err := encoder.Format(entry)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "1970-01-01T00:00:00Z test-host CEF:0|"), string(out))
}
