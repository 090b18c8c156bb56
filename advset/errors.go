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
	"fmt"

	"github.com/pkg/errors"

	"github.com/nimble-bt/bleadv/hci"
)

// Status values returned to API callbacks alongside, or instead of, a
// raw HCI status byte.
const (
	StatusSuccess            hci.Status = 0x00
	StatusTooManyAdvertisers hci.Status = 0xFE
	StatusFailure            hci.Status = 0xFF
)

// TooManyAdvertisersError reports that Register found no free instance
// table slot.
type TooManyAdvertisersError struct{}

func NewTooManyAdvertisersError() *TooManyAdvertisersError {
	return &TooManyAdvertisersError{}
}

func (e *TooManyAdvertisersError) Error() string {
	return "no free advertising instance"
}

func IsTooManyAdvertisers(err error) bool {
	_, ok := errors.Cause(err).(*TooManyAdvertisersError)
	return ok
}

// InvalidInstanceError reports a reference to an inst_id that is out of
// range or not currently in use.
type InvalidInstanceError struct {
	InstID uint8
}

func NewInvalidInstanceError(instID uint8) *InvalidInstanceError {
	return &InvalidInstanceError{InstID: instID}
}

func (e *InvalidInstanceError) Error() string {
	return fmt.Sprintf("invalid or unregistered advertising instance %d", e.InstID)
}

func IsInvalidInstance(err error) bool {
	_, ok := errors.Cause(err).(*InvalidInstanceError)
	return ok
}

// HCIStatusError wraps a non-zero status byte returned by the
// controller for a single HCI command.
type HCIStatusError struct {
	Status hci.Status
}

func NewHCIStatusError(status hci.Status) *HCIStatusError {
	return &HCIStatusError{Status: status}
}

func (e *HCIStatusError) Error() string {
	return fmt.Sprintf("HCI command failed, status=0x%02x", e.Status)
}

func IsHCIStatus(err error) bool {
	_, ok := errors.Cause(err).(*HCIStatusError)
	return ok
}

// HCIStatusOf extracts the status byte from err if it is (or wraps) an
// HCIStatusError, and ok=false otherwise.
func HCIStatusOf(err error) (hci.Status, bool) {
	e, ok := errors.Cause(err).(*HCIStatusError)
	if !ok {
		return 0, false
	}
	return e.Status, true
}
