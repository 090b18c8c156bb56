/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package fakehci is a scriptable stand-in for a real controller. It
// backs the advset test suite's command-ordering assertions and also
// drives bleadvctl's demo mode, where there is no real radio to talk to.
package fakehci

import (
	"github.com/nimble-bt/bleadv/bdaddr"
	"github.com/nimble-bt/bleadv/hci"
)

// Call records one invocation, for tests that assert ordering (§8
// scenarios 3, 4, 6).
type Call struct {
	Name   string
	InstID uint8
	Op     hci.DataOperation
	Data   []byte
}

// HCI is a fake controller. Every command completes synchronously and
// successfully unless a per-command override has been installed with
// FailNext, which matches the single-threaded
// cooperative model this module assumes (real completions are
// asynchronous; the fake collapses that to "happens before the call
// returns" since nothing in this module depends on true concurrency to
// be correct).
type HCI struct {
	InstanceCount uint8
	PublicAddr    bdaddr.Addr
	ZeroHandleBug bool

	Calls []Call

	observer hci.AdvertisingSetObserver

	// statusOverride, keyed by command name, forces the next matching
	// command to complete with that status instead of success. Cleared
	// after firing once.
	statusOverride map[string]hci.Status
}

func New(instanceCount uint8, publicAddr bdaddr.Addr) *HCI {
	return &HCI{
		InstanceCount:  instanceCount,
		PublicAddr:     publicAddr,
		statusOverride: make(map[string]hci.Status),
	}
}

// FailNext arranges for the next call to the named command (e.g.
// "SetAdvertisingData") to complete with the given status.
func (f *HCI) FailNext(command string, status hci.Status) {
	f.statusOverride[command] = status
}

func (f *HCI) takeStatus(command string) hci.Status {
	if s, ok := f.statusOverride[command]; ok {
		delete(f.statusOverride, command)
		return s
	}
	return hci.StatusSuccess
}

func (f *HCI) record(c Call) {
	f.Calls = append(f.Calls, c)
}

func (f *HCI) ReadInstanceCount(cb func(instanceCount uint8)) {
	cb(f.InstanceCount)
}

func (f *HCI) SetRandomAddress(instID uint8, addr bdaddr.Addr, cb func(status hci.Status)) {
	f.record(Call{Name: "SetRandomAddress", InstID: instID})
	cb(f.takeStatus("SetRandomAddress"))
}

func (f *HCI) SetParameters(instID uint8, p hci.AdvertisingParams, cb func(status hci.Status, grantedTxPower int8)) {
	f.record(Call{Name: "SetParameters", InstID: instID})
	status := f.takeStatus("SetParameters")
	cb(status, p.TxPower)
}

func (f *HCI) SetAdvertisingData(instID uint8, op hci.DataOperation, fragPref uint8, data []byte, cb func(status hci.Status)) {
	f.record(Call{Name: "SetAdvertisingData", InstID: instID, Op: op, Data: append([]byte(nil), data...)})
	cb(f.takeStatus("SetAdvertisingData"))
}

func (f *HCI) SetScanResponseData(instID uint8, op hci.DataOperation, fragPref uint8, data []byte, cb func(status hci.Status)) {
	f.record(Call{Name: "SetScanResponseData", InstID: instID, Op: op, Data: append([]byte(nil), data...)})
	cb(f.takeStatus("SetScanResponseData"))
}

func (f *HCI) SetPeriodicAdvertisingParameters(instID uint8, p hci.PeriodicParams, cb func(status hci.Status)) {
	f.record(Call{Name: "SetPeriodicAdvertisingParameters", InstID: instID})
	cb(f.takeStatus("SetPeriodicAdvertisingParameters"))
}

func (f *HCI) SetPeriodicAdvertisingData(instID uint8, op hci.DataOperation, data []byte, cb func(status hci.Status)) {
	f.record(Call{Name: "SetPeriodicAdvertisingData", InstID: instID, Op: op, Data: append([]byte(nil), data...)})
	cb(f.takeStatus("SetPeriodicAdvertisingData"))
}

func (f *HCI) SetPeriodicAdvertisingEnable(enable bool, instID uint8, cb func(status hci.Status)) {
	f.record(Call{Name: "SetPeriodicAdvertisingEnable", InstID: instID})
	cb(f.takeStatus("SetPeriodicAdvertisingEnable"))
}

func (f *HCI) Enable(enable bool, instID uint8, durationUnits uint16, maxExtAdvEvents uint8, cb func(status hci.Status)) {
	f.record(Call{Name: "Enable", InstID: instID})
	cb(f.takeStatus("Enable"))
}

func (f *HCI) QuirkAdvertiserZeroHandle() bool {
	return f.ZeroHandleBug
}

func (f *HCI) SetAdvertisingEventObserver(observer hci.AdvertisingSetObserver) {
	f.observer = observer
}

// Terminate synthesizes an LE Advertising Set Terminated event, for
// tests and demo mode driving the termination/re-arm handler directly.
func (f *HCI) Terminate(evt hci.TerminatedEvent) {
	if f.observer != nil {
		f.observer.AdvertisingSetTerminated(evt)
	}
}
