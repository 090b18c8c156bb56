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

// Package advset is the control-plane core: the instance table, the
// commissioning pipeline that turns a "start advertising" call into an
// ordered chain of HCI commands, and the termination/re-arm handler that
// reacts to controller-originated events. Every exported method on
// *Manager assumes it is called from the single dispatch loop the
// embedding program runs — see the Manager doc comment.
package advset

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/nimble-bt/bleadv/alarm"
	"github.com/nimble-bt/bleadv/bdaddr"
	"github.com/nimble-bt/bleadv/fragment"
	"github.com/nimble-bt/bleadv/hci"
	"github.com/nimble-bt/bleadv/rpa"
)

// PrivacyAddrInterval is the default RPA rotation period, matching the
// original implementation's BTM_BLE_PRIVATE_ADDR_INT_MS.
const PrivacyAddrInterval = 15 * time.Minute

// Manager owns the instance table and drives the HCI command sequences
// that implement it. A Manager is not safe for concurrent use: every
// method, and every HCI/alarm completion callback it schedules, must run
// on one designated goroutine, exactly as nmxact.BleFsm expects serialized
// access to its own state. Callers that need concurrent access must
// serialize it themselves (a single-goroutine dispatch loop reading off a
// channel, for instance).
type Manager struct {
	hci       hci.HCI
	scheduler alarm.Scheduler
	encryptor rpa.Encryptor

	irk             [16]byte
	publicAddr      bdaddr.Addr
	privacyEnabled  bool
	privacyInterval time.Duration

	table      *table
	aclUpdater ACLAddressUpdater

	lastErr error
}

// LastError returns the most recently observed failure, typed per the
// taxonomy in errors.go and wrapped with github.com/pkg/errors stack
// context. Callers that need to distinguish a too-many-advertisers
// rejection from an invalid-instance reference or a controller-rejected
// HCI command should check it with IsTooManyAdvertisers/IsInvalidInstance/
// IsHCIStatus (or HCIStatusOf) right after a callback reports a
// non-success status; LastError is overwritten by the next failure.
func (m *Manager) LastError() error {
	return m.lastErr
}

// noteInvalidInstance records an InvalidInstanceError as LastError.
func (m *Manager) noteInvalidInstance(instID uint8) {
	m.lastErr = errors.WithStack(NewInvalidInstanceError(instID))
}

// noteHCIStatus records an HCIStatusError as LastError if status reports
// a controller-side failure; a success status is not an error and leaves
// LastError unchanged.
func (m *Manager) noteHCIStatus(status hci.Status) {
	if status != StatusSuccess {
		m.lastErr = errors.WithStack(NewHCIStatusError(status))
	}
}

// NewManager constructs a Manager over an already-initialized HCI. It
// calls ReadInstanceCount synchronously-by-contract (the fake and any
// real transport are expected to invoke the callback before returning,
// since instance count is static controller configuration, not a slow
// round trip) to size the instance table, then runs the handle-zero
// quirk workaround (§4.10) if the HCI requires it.
func NewManager(
	h hci.HCI,
	scheduler alarm.Scheduler,
	encryptor rpa.Encryptor,
	irk [16]byte,
	publicAddr bdaddr.Addr,
	privacyEnabled bool,
) (*Manager, error) {
	m := &Manager{
		hci:             h,
		scheduler:       scheduler,
		encryptor:       encryptor,
		irk:             irk,
		publicAddr:      publicAddr,
		privacyEnabled:  privacyEnabled,
		privacyInterval: PrivacyAddrInterval,
	}

	var instCount uint8
	h.ReadInstanceCount(func(n uint8) {
		instCount = n
	})
	m.table = newTable(instCount)

	m.hci.SetAdvertisingEventObserver(m)

	if h.QuirkAdvertiserZeroHandle() {
		log.Debug("advset: controller cannot use handle 0, burning it at init")
		m.Register(func(instID uint8, status hci.Status) {
			if status != StatusSuccess {
				log.Warn("advset: handle-zero quirk registration failed")
			}
		})
	}

	return m, nil
}

// SetPrivacyInterval overrides the default RPA rotation period. Must be
// called before any Register.
func (m *Manager) SetPrivacyInterval(d time.Duration) {
	m.privacyInterval = d
}

// Register allocates the first free instance table slot and invokes cb
// with its inst_id and StatusSuccess, or with (InvalidInstID,
// StatusTooManyAdvertisers) if the table is full.
func (m *Manager) Register(cb func(instID uint8, status hci.Status)) {
	inst, ok := m.table.allocate()
	if !ok {
		log.Debug("advset: Register found no free instance")
		m.lastErr = errors.WithStack(NewTooManyAdvertisersError())
		cb(InvalidInstID, StatusTooManyAdvertisers)
		return
	}

	if m.privacyEnabled {
		inst.ownAddrType = bdaddr.Random
		if err := m.rotateRpa(inst); err != nil {
			log.WithError(err).Warn("advset: RPA generation failed at Register")
			inst.inUse = false
			cb(InvalidInstID, StatusFailure)
			return
		}
		inst.advRaddrTimer = m.scheduler.Every(m.privacyInterval, func() {
			m.onRpaTimerFire(inst.instID)
		})
	} else {
		inst.ownAddrType = bdaddr.Public
		inst.ownAddr = m.publicAddr
	}

	log.Debugf("advset: registered instance %d", inst.instID)
	cb(inst.instID, StatusSuccess)
}

// Unregister disables and frees an instance. Idempotent once the
// instance is already free; an invalid inst_id is a logged no-op.
func (m *Manager) Unregister(instID uint8) {
	inst, ok := m.table.get(instID)
	if !ok {
		log.Warnf("advset: Unregister of invalid instance %d", instID)
		return
	}
	if !inst.inUse {
		return
	}

	m.hci.Enable(false, instID, 0x0000, 0x00, func(status hci.Status) {})

	if inst.advRaddrTimer != nil {
		inst.advRaddrTimer.Cancel()
		inst.advRaddrTimer = nil
	}
	if inst.timeoutTimer != nil {
		inst.timeoutTimer.Cancel()
		inst.timeoutTimer = nil
	}

	inst.inUse = false
	log.Debugf("advset: unregistered instance %d", instID)
}

// rotateRpa draws a fresh prand, derives the RPA under the manager's IRK,
// and stores it on inst.
func (m *Manager) rotateRpa(inst *instance) error {
	prand, err := rpa.NewPrand()
	if err != nil {
		return errors.Wrap(err, "rpa prand")
	}
	inst.ownAddr = rpa.Generate(prand, m.irk, m.encryptor)
	return nil
}

func (m *Manager) onRpaTimerFire(instID uint8) {
	inst, ok := m.table.get(instID)
	if !ok || !inst.inUse {
		return
	}

	if err := m.rotateRpa(inst); err != nil {
		log.WithError(err).Warn("advset: RPA rotation failed")
		return
	}

	m.hci.SetRandomAddress(instID, inst.ownAddr, func(status hci.Status) {
		if status != StatusSuccess {
			log.Warnf("advset: SetRandomAddress on rotation failed, status=0x%02x", status)
			m.noteHCIStatus(status)
		}
	})
}

// SetParameters validates inst_id, records the requested properties and
// tx_power into the instance ahead of the HCI round trip (matching the
// original's caching order — see DESIGN.md), then issues
// SetAdvertisingParameters. On success the instance's tx_power is
// overwritten with the controller-granted value before cb runs.
func (m *Manager) SetParameters(
	instID uint8,
	props hci.AdvEventProperties,
	intervalMin, intervalMax uint16,
	channelMap uint8,
	filterPolicy uint8,
	txPower int8,
	primaryPhy, secondaryPhy uint8,
	scanReqNotify bool,
	cb func(status hci.Status),
) {
	inst, ok := m.table.get(instID)
	if !ok || !inst.inUse {
		log.Warnf("advset: SetParameters on invalid instance %d", instID)
		m.noteInvalidInstance(instID)
		cb(StatusFailure)
		return
	}

	inst.props = props
	inst.txPower = txPower

	p := hci.AdvertisingParams{
		Properties:              props,
		IntervalMin:              intervalMin,
		IntervalMax:              intervalMax,
		ChannelMap:               channelMap,
		OwnAddrType:              inst.ownAddrType,
		OwnAddr:                  inst.ownAddr,
		PeerAddrType:             0x00,
		PeerAddr:                 bdaddr.Addr{},
		FilterPolicy:             filterPolicy,
		TxPower:                  txPower,
		PrimaryPhy:               primaryPhy,
		SecondaryPhy:             secondaryPhy,
		SecondaryMaxSkip:         hci.SecondaryMaxSkipPlaceholder,
		SID:                      hci.SID(),
		ScanRequestNotifyEnable:  scanReqNotify,
	}

	m.hci.SetParameters(instID, p, func(status hci.Status, grantedTxPower int8) {
		if status == StatusSuccess {
			inst.txPower = grantedTxPower
		} else {
			log.Warnf("advset: SetParameters inst=%d failed, status=0x%02x", instID, status)
			m.noteHCIStatus(status)
		}
		cb(status)
	})
}

// SetData preprocesses and fragments adv_data (isScanRsp=false) or
// scan_rsp (isScanRsp=true) per §4.5 and dispatches it over the
// fragmenter.
func (m *Manager) SetData(instID uint8, isScanRsp bool, data []byte, cb func(status hci.Status)) {
	inst, ok := m.table.get(instID)
	if !ok || !inst.inUse {
		log.Warnf("advset: SetData on invalid instance %d", instID)
		m.noteInvalidInstance(instID)
		cb(StatusFailure)
		return
	}

	m.setData(inst, isScanRsp, data, func(status hci.Status) {
		m.noteHCIStatus(status)
		cb(status)
	})
}

// SetPeriodicAdvertisingParameters issues the periodic parameter HCI
// command for an in-use instance.
func (m *Manager) SetPeriodicAdvertisingParameters(
	instID uint8,
	minInterval, maxInterval uint16,
	properties uint16,
	cb func(status hci.Status),
) {
	inst, ok := m.table.get(instID)
	if !ok || !inst.inUse {
		m.noteInvalidInstance(instID)
		cb(StatusFailure)
		return
	}

	m.hci.SetPeriodicAdvertisingParameters(instID, hci.PeriodicParams{
		Enable:      true,
		MinInterval: minInterval,
		MaxInterval: maxInterval,
		Properties:  properties,
	}, func(status hci.Status) {
		m.noteHCIStatus(status)
		cb(status)
	})
}

// SetPeriodicAdvertisingData fragments and dispatches periodic
// advertising payload.
func (m *Manager) SetPeriodicAdvertisingData(instID uint8, data []byte, cb func(status hci.Status)) {
	inst, ok := m.table.get(instID)
	if !ok || !inst.inUse {
		m.noteInvalidInstance(instID)
		cb(StatusFailure)
		return
	}

	fragment.Send(data, func(op hci.DataOperation, chunk []byte, fcb func(status hci.Status)) {
		m.hci.SetPeriodicAdvertisingData(instID, op, chunk, fcb)
	}, func(status hci.Status) {
		m.noteHCIStatus(status)
		cb(status)
	})
}

// SetPeriodicAdvertisingEnable toggles periodic advertising for instID.
func (m *Manager) SetPeriodicAdvertisingEnable(instID uint8, enable bool, cb func(status hci.Status)) {
	inst, ok := m.table.get(instID)
	if !ok || !inst.inUse {
		m.noteInvalidInstance(instID)
		cb(StatusFailure)
		return
	}

	m.hci.SetPeriodicAdvertisingEnable(enable, instID, func(status hci.Status) {
		m.noteHCIStatus(status)
		cb(status)
	})
}

// Enable implements §4.7: when turning on with a positive timeout, the
// timeout timer is armed only after the controller has accepted the
// Enable command, never before.
func (m *Manager) Enable(
	instID uint8,
	enable bool,
	cb func(status hci.Status),
	timeoutS uint32,
	timeoutCb func(instID uint8),
) {
	inst, ok := m.table.get(instID)
	if !ok || !inst.inUse {
		m.noteInvalidInstance(instID)
		cb(StatusFailure)
		return
	}

	if enable && timeoutS > 0 {
		inst.timeoutS = timeoutS
		m.hci.Enable(true, instID, 0x0000, 0x00, func(status hci.Status) {
			m.noteHCIStatus(status)
			cb(status)
			if status != StatusSuccess {
				return
			}

			inst.timeoutTimer = m.scheduler.After(time.Duration(timeoutS)*time.Second, func() {
				m.onTimeoutFire(instID, timeoutCb)
			})
		})
		return
	}

	if inst.timeoutTimer != nil {
		inst.timeoutTimer.Cancel()
		inst.timeoutTimer = nil
	}

	m.hci.Enable(enable, instID, 0x0000, 0x00, func(status hci.Status) {
		m.noteHCIStatus(status)
		cb(status)
	})
}

func (m *Manager) onTimeoutFire(instID uint8, timeoutCb func(instID uint8)) {
	inst, ok := m.table.get(instID)
	if !ok {
		return
	}
	inst.timeoutTimer = nil

	m.Enable(instID, false, func(status hci.Status) {}, 0, nil)
	if timeoutCb != nil {
		timeoutCb(instID)
	}
}
