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

package advset

import (
	log "github.com/sirupsen/logrus"

	"github.com/nimble-bt/bleadv/hci"
)

// StartParams bundles the advertising parameters a commissioning call
// passes through to SetParameters, kept separate from hci.AdvertisingParams
// so pipeline callers never have to fill in own-address fields themselves
// (the instance table owns those).
type StartParams struct {
	Properties             hci.AdvEventProperties
	IntervalMin            uint16
	IntervalMax            uint16
	ChannelMap             uint8
	FilterPolicy           uint8
	TxPower                int8
	PrimaryPhy             uint8
	SecondaryPhy           uint8
	ScanRequestNotifyEnable bool
}

// PeriodicStart bundles the periodic-advertising sub-chain inputs. A
// zero-value PeriodicStart with Enable==false skips the sub-chain
// entirely, matching §4.8 step 6's "if periodic_params.enable" gate.
type PeriodicStart struct {
	Enable      bool
	MinInterval uint16
	MaxInterval uint16
	Properties  uint16
	Data        []byte
}

// startCtx is the commissioning context threaded through the closures of
// a single StartAdvertising/StartAdvertisingSet call. It is built once
// at the call's entry and never aliased: each step either calls the next
// step with it, or calls the terminal callback and stops. Mirrors the
// original's CreatorParams / the teacher's fns []func() error chaining.
type startCtx struct {
	instID     uint8
	registered bool // true only for StartAdvertisingSet; its done callback runs the Unregister-on-failure

	params   StartParams
	advData  []byte
	scanRsp  []byte
	periodic PeriodicStart

	timeoutS  uint32
	timeoutCb func(instID uint8)
}

// StartAdvertising drives §4.8's first entry point over an
// already-registered instance: SetParameters, SetRandomAddress,
// SetData(adv), SetData(scan_rsp), Enable. No compensation runs on
// failure — this entry point never allocates.
func (m *Manager) StartAdvertising(
	instID uint8,
	params StartParams,
	advData, scanRsp []byte,
	timeoutS uint32,
	timeoutCb func(instID uint8),
	cb func(status hci.Status),
) {
	inst, ok := m.table.get(instID)
	if !ok || !inst.inUse {
		log.Warnf("advset: StartAdvertising on invalid instance %d", instID)
		m.noteInvalidInstance(instID)
		cb(StatusFailure)
		return
	}

	ctx := &startCtx{
		instID:    instID,
		params:    params,
		advData:   advData,
		scanRsp:   scanRsp,
		timeoutS:  timeoutS,
		timeoutCb: timeoutCb,
	}

	m.runStartChain(ctx, func(status hci.Status) {
		cb(status)
	})
}

// StartAdvertisingSet drives §4.8's second entry point: Register first,
// then the same chain as StartAdvertising, with the optional periodic
// advertising sub-chain inserted between SetData(scan_rsp) and Enable,
// and compensated with Unregister on any failure from step 2 onward.
func (m *Manager) StartAdvertisingSet(
	params StartParams,
	advData, scanRsp []byte,
	periodic PeriodicStart,
	timeoutS uint32,
	timeoutCb func(instID uint8),
	cb func(instID uint8, txPower int8, status hci.Status),
) {
	m.Register(func(instID uint8, status hci.Status) {
		if status != StatusSuccess {
			cb(0, 0, status)
			return
		}

		ctx := &startCtx{
			instID:     instID,
			registered: true,
			params:     params,
			advData:    advData,
			scanRsp:    scanRsp,
			periodic:   periodic,
			timeoutS:   timeoutS,
			timeoutCb:  timeoutCb,
		}

		m.runStartChain(ctx, func(status hci.Status) {
			if status != StatusSuccess {
				m.Unregister(instID)
				cb(0, 0, status)
				return
			}

			inst, _ := m.table.get(instID)
			cb(instID, inst.txPower, StatusSuccess)
		})
	})
}

// runStartChain executes the ordered HCI step sequence shared by both
// entry points. done is invoked exactly once, with the first non-success
// status encountered, or StatusSuccess after Enable completes.
func (m *Manager) runStartChain(ctx *startCtx, done func(status hci.Status)) {
	m.SetParameters(
		ctx.instID,
		ctx.params.Properties,
		ctx.params.IntervalMin,
		ctx.params.IntervalMax,
		ctx.params.ChannelMap,
		ctx.params.FilterPolicy,
		ctx.params.TxPower,
		ctx.params.PrimaryPhy,
		ctx.params.SecondaryPhy,
		ctx.params.ScanRequestNotifyEnable,
		func(status hci.Status) {
			if status != StatusSuccess {
				done(status)
				return
			}
			m.startStepSetRandomAddress(ctx, done)
		},
	)
}

func (m *Manager) startStepSetRandomAddress(ctx *startCtx, done func(status hci.Status)) {
	inst, ok := m.table.get(ctx.instID)
	if !ok || !inst.inUse {
		m.noteInvalidInstance(ctx.instID)
		done(StatusFailure)
		return
	}

	m.hci.SetRandomAddress(ctx.instID, inst.ownAddr, func(status hci.Status) {
		if status != StatusSuccess {
			m.noteHCIStatus(status)
			done(status)
			return
		}
		m.startStepSetAdvData(ctx, done)
	})
}

func (m *Manager) startStepSetAdvData(ctx *startCtx, done func(status hci.Status)) {
	m.SetData(ctx.instID, false, ctx.advData, func(status hci.Status) {
		if status != StatusSuccess {
			done(status)
			return
		}
		m.startStepSetScanRsp(ctx, done)
	})
}

func (m *Manager) startStepSetScanRsp(ctx *startCtx, done func(status hci.Status)) {
	m.SetData(ctx.instID, true, ctx.scanRsp, func(status hci.Status) {
		if status != StatusSuccess {
			done(status)
			return
		}
		m.startStepPeriodic(ctx, done)
	})
}

func (m *Manager) startStepPeriodic(ctx *startCtx, done func(status hci.Status)) {
	if !ctx.periodic.Enable {
		m.startStepEnable(ctx, done)
		return
	}

	m.SetPeriodicAdvertisingParameters(
		ctx.instID, ctx.periodic.MinInterval, ctx.periodic.MaxInterval, ctx.periodic.Properties,
		func(status hci.Status) {
			if status != StatusSuccess {
				done(status)
				return
			}

			m.SetPeriodicAdvertisingData(ctx.instID, ctx.periodic.Data, func(status hci.Status) {
				if status != StatusSuccess {
					done(status)
					return
				}

				m.SetPeriodicAdvertisingEnable(ctx.instID, true, func(status hci.Status) {
					if status != StatusSuccess {
						done(status)
						return
					}
					m.startStepEnable(ctx, done)
				})
			})
		},
	)
}

func (m *Manager) startStepEnable(ctx *startCtx, done func(status hci.Status)) {
	m.Enable(ctx.instID, true, func(status hci.Status) {
		done(status)
	}, ctx.timeoutS, ctx.timeoutCb)
}
