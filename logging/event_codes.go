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

// Event codes for different events in acra-rasp, splitted by groups.
const (
	// 100 .. 200 some events
	EventCodeGeneral = 100

	// 200 .. 300 alarms
	EventCodeAlarmSQLError         = 200
	EventCodeAlarmPolicyViolation  = 201
	EventCodeAlarmAttack           = 202
	EventCodeAlarmOperationBlocked = 203

	// 500 .. 600 errors
	EventCodeErrorGeneral    = 500
	EventCodeErrorWrongParam = 501

	// processes
	EventCodeErrorCantStartService      = 505
	EventCodeErrorWrongConfiguration    = 507
	EventCodeErrorCantReadServiceConfig = 508
	EventCodeErrorPrometheusHTTPHandler = 509

	// policy store
	EventCodeErrorPolicyWhitelistTooLarge = 560
	EventCodeErrorPolicyInvalidCheckType  = 561
	EventCodeErrorPolicyInvalidAction     = 562
	EventCodeErrorPolicyMalformedBundle   = 563

	// whitelist
	EventCodeErrorWhitelistCompile = 570

	// connection inspection
	EventCodeErrorMalformedConnectionString = 580

	// configuration delivery
	EventCodeErrorConfigLoaderCantLoad    = 590
	EventCodeErrorConfigLoaderCantPublish = 591
	EventCodeErrorConfigLoaderStorage     = 592

	// detection plugin
	EventCodeErrorDetectorFailed = 600
)
