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

// Package hci defines the abstract boundary between the advertising
// manager and the controller. Nothing in this package talks to a real
// transport; HCI is satisfied by a real driver in a full stack, and by
// fakehci.HCI in tests and in the bleadvctl demo mode.
package hci

import "github.com/nimble-bt/bleadv/bdaddr"

// Status is the one-byte HCI command-complete status. Zero is success;
// anything else is a controller error code propagated verbatim to the
// caller.
type Status = uint8

const StatusSuccess Status = 0x00

// DataOperation tags a chunk of a fragmented advertising/scan-response/
// periodic payload. Values match the HCI "Advertising Data Operation"
// field.
type DataOperation uint8

const (
	OpIntermediate DataOperation = 0x00
	OpFirst        DataOperation = 0x01
	OpLast         DataOperation = 0x02
	OpComplete     DataOperation = 0x03
)

// FragPreferControllerShouldFragment is the frag_pref byte this module
// always passes: the controller is permitted to further fragment a chunk
// that still doesn't fit over the air.
const FragPreferControllerShouldFragment = 0x01

// MaxDataLen is the largest payload, in bytes, that may be carried by a
// single SetAdvertisingData/SetScanResponseData/SetPeriodicAdvertisingData
// command.
const MaxDataLen = 251

// EIR structure type codes reused inside advertising AD structures.
const (
	EIRFlagsType        = 0x01
	EIRTxPowerLevelType = 0x0A
)

// Discoverability flag values written into the Flags AD structure.
const (
	FlagsLimitedDiscoverable = 0x01
	FlagsGeneralDiscoverable = 0x02
)

// AdvEventProperties is the 16-bit advertising_event_properties bitfield.
type AdvEventProperties uint16

const (
	PropConnectable AdvEventProperties = 1 << 0
	PropDirectedLo  AdvEventProperties = 1 << 2
	PropDirectedHi  AdvEventProperties = 1 << 3
	PropLegacy      AdvEventProperties = 1 << 4

	propDirectedMask = PropDirectedLo | PropDirectedHi
)

// LegacyConnectable reports whether both the connectable and legacy bits
// are set — the condition under which SetData prepends a Flags AD
// structure.
func (p AdvEventProperties) LegacyConnectable() bool {
	return p&PropLegacy != 0 && p&PropConnectable != 0
}

// Directed reports whether either directed-advertising bit is set.
func (p AdvEventProperties) Directed() bool {
	return p&propDirectedMask != 0
}

// sidPlaceholder is hardcoded per the original implementation, which
// carries the same TODO: proper SID assignment was never wired up.
const sidPlaceholder = 0x01

// SecondaryMaxSkipPlaceholder is the fixed secondary_max_skip sent on
// every SetParameters call.
const SecondaryMaxSkipPlaceholder = 0x01

// SID returns the fixed advertising SID used by every instance.
func SID() uint8 { return sidPlaceholder }

// AdvertisingParams bundles the fields SetAdvertisingParameters needs,
// separated from the instance so the HCI boundary doesn't import advset.
type AdvertisingParams struct {
	Properties              AdvEventProperties
	IntervalMin             uint16
	IntervalMax             uint16
	ChannelMap               uint8
	OwnAddrType              bdaddr.AddrType
	OwnAddr                  bdaddr.Addr
	PeerAddrType             uint8
	PeerAddr                 bdaddr.Addr
	FilterPolicy             uint8
	TxPower                  int8
	PrimaryPhy               uint8
	SecondaryPhy             uint8
	SecondaryMaxSkip         uint8
	SID                      uint8
	ScanRequestNotifyEnable  bool
}

// PeriodicParams bundles SetPeriodicAdvertisingParameters' fields plus
// the Enable flag the pipeline branches on.
type PeriodicParams struct {
	Enable      bool
	MinInterval uint16
	MaxInterval uint16
	Properties  uint16
}

// TerminatedEvent is delivered to an AdvertisingSetObserver when the
// controller reports LE Advertising Set Terminated.
type TerminatedEvent struct {
	Status                        Status
	AdvertisingHandle              uint8
	ConnectionHandle                uint16
	NumCompletedExtendedAdvEvents uint8
}

// AdvertisingSetObserver receives controller-originated advertising
// lifecycle events.
type AdvertisingSetObserver interface {
	AdvertisingSetTerminated(evt TerminatedEvent)
}

// HCI is the capability the manager requires of its transport. Every
// asynchronous command takes a completion callback, invoked exactly once,
// on the same single dispatch loop the manager itself runs on (see
// advset.Manager's doc comment).
type HCI interface {
	ReadInstanceCount(cb func(instanceCount uint8))

	SetRandomAddress(instID uint8, addr bdaddr.Addr, cb func(status Status))

	SetParameters(instID uint8, p AdvertisingParams,
		cb func(status Status, grantedTxPower int8))

	SetAdvertisingData(instID uint8, op DataOperation, fragPref uint8,
		data []byte, cb func(status Status))

	SetScanResponseData(instID uint8, op DataOperation, fragPref uint8,
		data []byte, cb func(status Status))

	SetPeriodicAdvertisingParameters(instID uint8, p PeriodicParams,
		cb func(status Status))

	SetPeriodicAdvertisingData(instID uint8, op DataOperation, data []byte,
		cb func(status Status))

	SetPeriodicAdvertisingEnable(enable bool, instID uint8,
		cb func(status Status))

	Enable(enable bool, instID uint8, durationUnits uint16,
		maxExtAdvEvents uint8, cb func(status Status))

	QuirkAdvertiserZeroHandle() bool

	SetAdvertisingEventObserver(observer AdvertisingSetObserver)
}
