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
	"github.com/nimble-bt/bleadv/advdata"
	"github.com/nimble-bt/bleadv/fragment"
	"github.com/nimble-bt/bleadv/hci"
)

// setData implements §4.5: prepend a Flags AD structure for legacy
// connectable advertising data (never for scan-response payloads, which
// the original never flags-prepends either), rewrite the TX Power Level
// AD structure to the instance's current effective tx_power, and
// dispatch the result through the fragmenter.
func (m *Manager) setData(inst *instance, isScanRsp bool, data []byte, cb func(status hci.Status)) {
	payload := data

	if !isScanRsp && inst.props.LegacyConnectable() {
		flags := byte(hci.FlagsGeneralDiscoverable)
		if inst.timeoutS != 0 {
			flags = hci.FlagsLimitedDiscoverable
		}
		payload = advdata.PrependFlags(payload, flags)
	}

	payload = advdata.RewriteTxPower(payload, inst.txPower)

	sendFn := m.hci.SetAdvertisingData
	if isScanRsp {
		sendFn = m.hci.SetScanResponseData
	}

	fragment.Send(payload, func(op hci.DataOperation, chunk []byte, fcb func(status hci.Status)) {
		sendFn(inst.instID, op, hci.FragPreferControllerShouldFragment, chunk, fcb)
	}, cb)
}
