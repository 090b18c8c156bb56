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
	"testing"
	"time"

	"github.com/nimble-bt/bleadv/alarm"
	"github.com/nimble-bt/bleadv/bdaddr"
	"github.com/nimble-bt/bleadv/fakehci"
	"github.com/nimble-bt/bleadv/hci"
	"github.com/nimble-bt/bleadv/rpa"
)

func newTestManager(t *testing.T, instCount uint8, privacy bool) (*Manager, *fakehci.HCI, *alarm.Manual) {
	t.Helper()

	pubAddr, err := bdaddr.Parse("AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatal(err)
	}

	h := fakehci.New(instCount, pubAddr)
	man := alarm.NewManual()

	var irk [16]byte
	mgr, err := NewManager(h, man, rpa.NewAES128(), irk, pubAddr, privacy)
	if err != nil {
		t.Fatal(err)
	}

	return mgr, h, man
}

// Scenario 1: register on empty table.
func TestRegisterOnEmptyTable(t *testing.T) {
	mgr, _, _ := newTestManager(t, 3, false)

	var instID uint8
	var status hci.Status
	mgr.Register(func(id uint8, s hci.Status) { instID, status = id, s })

	if status != StatusSuccess {
		t.Fatalf("status = 0x%02x, want success", status)
	}
	if instID != 0 {
		t.Fatalf("instID = %d, want 0", instID)
	}

	snap := mgr.Snapshot()[0]
	if !snap.InUse || snap.OwnAddrType != "public" || snap.OwnAddress != "AA:BB:CC:DD:EE:FF" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

// Scenario 2: register when full.
func TestRegisterWhenFull(t *testing.T) {
	mgr, _, _ := newTestManager(t, 1, false)

	mgr.Register(func(id uint8, s hci.Status) {})

	var instID uint8
	var status hci.Status
	mgr.Register(func(id uint8, s hci.Status) { instID, status = id, s })

	if status != StatusTooManyAdvertisers {
		t.Fatalf("status = 0x%02x, want StatusTooManyAdvertisers", status)
	}
	if instID != InvalidInstID {
		t.Fatalf("instID = %d, want InvalidInstID", instID)
	}
	if !IsTooManyAdvertisers(mgr.LastError()) {
		t.Fatalf("LastError() = %v, want a TooManyAdvertisersError", mgr.LastError())
	}
}

func TestLastErrorInvalidInstance(t *testing.T) {
	mgr, _, _ := newTestManager(t, 1, false)

	var status hci.Status
	mgr.SetParameters(5, 0, 0, 0, 0, 0, 0, 0, 0, false, func(s hci.Status) { status = s })

	if status != StatusFailure {
		t.Fatalf("status = 0x%02x, want StatusFailure", status)
	}
	if !IsInvalidInstance(mgr.LastError()) {
		t.Fatalf("LastError() = %v, want an InvalidInstanceError", mgr.LastError())
	}
}

func TestLastErrorHCIStatus(t *testing.T) {
	mgr, h, _ := newTestManager(t, 1, false)

	var instID uint8
	mgr.Register(func(id uint8, s hci.Status) { instID = id })

	h.FailNext("SetParameters", StatusFailure)

	var status hci.Status
	mgr.SetParameters(instID, 0, 0, 0, 0, 0, 0, 0, 0, false, func(s hci.Status) { status = s })

	if status != StatusFailure {
		t.Fatalf("status = 0x%02x, want StatusFailure", status)
	}
	got, ok := HCIStatusOf(mgr.LastError())
	if !ok || got != StatusFailure {
		t.Fatalf("HCIStatusOf(LastError()) = (0x%02x, %v), want (0x%02x, true)", got, ok, StatusFailure)
	}
}

// I1: at most inst_count concurrently allocated.
func TestI1RegisterCapacity(t *testing.T) {
	mgr, _, _ := newTestManager(t, 2, false)

	ids := map[uint8]bool{}
	for i := 0; i < 2; i++ {
		mgr.Register(func(id uint8, s hci.Status) {
			if s != StatusSuccess {
				t.Fatalf("unexpected failure registering instance %d", i)
			}
			ids[id] = true
		})
	}
	if len(ids) != 2 {
		t.Fatalf("got %d distinct ids, want 2", len(ids))
	}

	var status hci.Status
	mgr.Register(func(id uint8, s hci.Status) { status = s })
	if status != StatusTooManyAdvertisers {
		t.Fatalf("third Register should fail, got status=0x%02x", status)
	}
}

// I2: after Unregister, the slot is freed and Register succeeds again.
func TestI2UnregisterThenReregister(t *testing.T) {
	mgr, _, _ := newTestManager(t, 1, false)

	mgr.Register(func(id uint8, s hci.Status) {})
	mgr.Unregister(0)

	snap := mgr.Snapshot()[0]
	if snap.InUse {
		t.Fatalf("slot still in use after Unregister")
	}

	var status hci.Status
	mgr.Register(func(id uint8, s hci.Status) { status = s })
	if status != StatusSuccess {
		t.Fatalf("re-register failed: status=0x%02x", status)
	}
}

// Scenario 3: StartAdvertising happy path, command ordering.
func TestStartAdvertisingHappyPath(t *testing.T) {
	mgr, h, man := newTestManager(t, 1, false)

	mgr.Register(func(id uint8, s hci.Status) {})

	advData := []byte{0x02, 0xFF, 0x42}
	props := hci.AdvEventProperties(hci.PropConnectable | hci.PropLegacy)

	var status hci.Status
	mgr.StartAdvertising(0, StartParams{
		Properties:   props,
		IntervalMin:  0x00A0,
		IntervalMax:  0x00A0,
		ChannelMap:   0x07,
		PrimaryPhy:   0x01,
		SecondaryPhy: 0x01,
	}, advData, nil, 30, nil, func(s hci.Status) { status = s })

	if status != StatusSuccess {
		t.Fatalf("status = 0x%02x, want success", status)
	}

	wantOrder := []string{"SetParameters", "SetRandomAddress", "SetAdvertisingData", "SetScanResponseData", "Enable"}
	if len(h.Calls) != len(wantOrder) {
		t.Fatalf("got %d calls, want %d: %+v", len(h.Calls), len(wantOrder), h.Calls)
	}
	for i, name := range wantOrder {
		if h.Calls[i].Name != name {
			t.Errorf("call %d = %s, want %s", i, h.Calls[i].Name, name)
		}
	}

	advCall := h.Calls[2]
	wantBytes := []byte{0x02, hci.EIRFlagsType, hci.FlagsGeneralDiscoverable, 0x02, 0xFF, 0x42}
	if len(advCall.Data) != len(wantBytes) {
		t.Fatalf("adv data = %v, want %v", advCall.Data, wantBytes)
	}
	for i := range wantBytes {
		if advCall.Data[i] != wantBytes[i] {
			t.Fatalf("adv data = %v, want %v", advCall.Data, wantBytes)
		}
	}
	if advCall.Op != hci.OpComplete {
		t.Errorf("adv data op = %v, want COMPLETE", advCall.Op)
	}

	scanCall := h.Calls[3]
	if len(scanCall.Data) != 0 || scanCall.Op != hci.OpComplete {
		t.Errorf("scan rsp call = %+v, want empty COMPLETE", scanCall)
	}

	// I4: once 30s have elapsed, the timeout timer issues a disable Enable.
	man.Advance(30 * time.Second)

	lastCall := h.Calls[len(h.Calls)-1]
	if lastCall.Name != "Enable" {
		t.Fatalf("last call after timeout = %s, want Enable (disable)", lastCall.Name)
	}
}

// Scenario 4: StartAdvertisingSet compensates with Unregister on failure.
func TestStartAdvertisingSetCompensatesOnFailure(t *testing.T) {
	mgr, h, _ := newTestManager(t, 1, false)
	h.FailNext("SetAdvertisingData", 0x12)

	var instID uint8
	var txPower int8
	var status hci.Status

	mgr.StartAdvertisingSet(StartParams{
		Properties:   hci.AdvEventProperties(hci.PropConnectable | hci.PropLegacy),
		IntervalMin:  0x00A0,
		IntervalMax:  0x00A0,
		PrimaryPhy:   0x01,
		SecondaryPhy: 0x01,
	}, []byte{0x01}, nil, PeriodicStart{}, 0, nil, func(id uint8, tx int8, s hci.Status) {
		instID, txPower, status = id, tx, s
	})

	if status != 0x12 {
		t.Fatalf("status = 0x%02x, want 0x12", status)
	}
	if instID != 0 || txPower != 0 {
		t.Fatalf("expected zeroed (instID, txPower) on failure, got (%d, %d)", instID, txPower)
	}

	snap := mgr.Snapshot()[0]
	if snap.InUse {
		t.Fatalf("instance not freed after compensating Unregister")
	}
}

// Scenario 5 is covered by fragment package tests directly (I6).

// Scenario 6: termination re-arm, non-directed vs directed.
func TestTerminationReArm(t *testing.T) {
	mgr, h, _ := newTestManager(t, 2, false)

	mgr.Register(func(id uint8, s hci.Status) {})
	mgr.SetParameters(0, hci.AdvEventProperties(hci.PropConnectable|hci.PropLegacy),
		0x00A0, 0x00A0, 0x07, 0x00, 0, 0x01, 0x01, false, func(status hci.Status) {})

	h.Terminate(hci.TerminatedEvent{Status: 0, AdvertisingHandle: 0})

	found := false
	for _, c := range h.Calls {
		if c.Name == "Enable" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a re-enable Enable call after non-directed termination")
	}
	if !mgr.Snapshot()[0].InUse {
		t.Fatalf("non-directed instance should remain in_use after termination")
	}
}

func TestTerminationDirectedClearsInUse(t *testing.T) {
	mgr, h, _ := newTestManager(t, 2, false)

	mgr.Register(func(id uint8, s hci.Status) {})
	mgr.SetParameters(0, hci.AdvEventProperties(hci.PropConnectable|hci.PropLegacy|hci.PropDirectedLo),
		0x00A0, 0x00A0, 0x07, 0x00, 0, 0x01, 0x01, false, func(status hci.Status) {})

	callsBefore := len(h.Calls)
	h.Terminate(hci.TerminatedEvent{Status: 0, AdvertisingHandle: 0})

	if len(h.Calls) != callsBefore {
		t.Fatalf("directed termination should not issue any further HCI calls")
	}
	if mgr.Snapshot()[0].InUse {
		t.Fatalf("directed instance should have in_use cleared after termination")
	}
}

// I5: RPA rebuilds always carry the resolvable class bits.
func TestI5PrivacyRotation(t *testing.T) {
	mgr, h, man := newTestManager(t, 1, true)

	mgr.Register(func(id uint8, s hci.Status) {})

	snap := mgr.Snapshot()[0]
	if snap.OwnAddrType != "random" {
		t.Fatalf("addr type = %s, want random", snap.OwnAddrType)
	}

	addr, err := bdaddr.Parse(snap.OwnAddress)
	if err != nil {
		t.Fatal(err)
	}
	if !addr.IsResolvable() {
		t.Fatalf("address %v is not marked resolvable", addr)
	}

	man.Advance(PrivacyAddrInterval)

	found := false
	for _, c := range h.Calls {
		if c.Name == "SetRandomAddress" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a SetRandomAddress call after privacy interval elapsed")
	}

	rotated := mgr.Snapshot()[0]
	rotatedAddr, err := bdaddr.Parse(rotated.OwnAddress)
	if err != nil {
		t.Fatal(err)
	}
	if !rotatedAddr.IsResolvable() {
		t.Fatalf("rotated address %v is not marked resolvable", rotatedAddr)
	}
}
