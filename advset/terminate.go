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

// MaxMultiAdvHandle bounds the handles this manager's ACL-address-update
// hook applies to, matching the original's MAX_MULTI_ADV_HANDLE gate in
// OnAdvertisingSetTerminated.
const MaxMultiAdvHandle = 0xEF

// ACLAddressUpdater is the external hook notified when a privacy-enabled
// set terminates, so the connection layer can learn which local address
// was in use. Optional: a Manager with no updater set simply skips the
// call.
type ACLAddressUpdater interface {
	UpdateLocalAddress(connHandle uint16, addr [6]byte)
}

// SetACLAddressUpdater installs the hook used by AdvertisingSetTerminated.
func (m *Manager) SetACLAddressUpdater(u ACLAddressUpdater) {
	m.aclUpdater = u
}

// AdvertisingSetTerminated implements hci.AdvertisingSetObserver. It
// implements §4.9 exactly: informs the ACL layer of the address in use
// for a privacy-enabled, in-range handle, then either re-enables a
// non-directed set or marks a directed one-shot set as no longer in use.
func (m *Manager) AdvertisingSetTerminated(evt hci.TerminatedEvent) {
	inst, ok := m.table.get(evt.AdvertisingHandle)
	if !ok {
		log.Warnf("advset: terminated event for out-of-range handle %d", evt.AdvertisingHandle)
		return
	}

	if m.privacyEnabled && evt.AdvertisingHandle <= MaxMultiAdvHandle && m.aclUpdater != nil {
		m.aclUpdater.UpdateLocalAddress(evt.ConnectionHandle, inst.ownAddr.Bytes)
	}

	if !inst.inUse {
		return
	}

	if !inst.props.Directed() {
		m.hci.Enable(true, evt.AdvertisingHandle, 0x0000, 0x00, func(status hci.Status) {
			if status != StatusSuccess {
				log.Warnf("advset: re-enable after termination failed, inst=%d status=0x%02x",
					evt.AdvertisingHandle, status)
				m.noteHCIStatus(status)
			}
		})
		return
	}

	log.Debugf("advset: directed set %d terminated, not re-arming", evt.AdvertisingHandle)
	inst.inUse = false
}
