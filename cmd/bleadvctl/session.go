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

package main

import (
	"github.com/pkg/errors"

	"github.com/nimble-bt/bleadv/advset"
	"github.com/nimble-bt/bleadv/alarm"
	"github.com/nimble-bt/bleadv/bdaddr"
	"github.com/nimble-bt/bleadv/config"
	"github.com/nimble-bt/bleadv/fakehci"
	"github.com/nimble-bt/bleadv/rpa"
)

// session bundles the simulated controller and the manager under test so
// every subcommand shares one instance table for the life of the
// process (or, for `shell`, for the life of the REPL).
type session struct {
	cfg config.Config
	hci *fakehci.HCI
	mgr *advset.Manager
}

func newSession(cfg config.Config) (*session, error) {
	pubAddr, err := bdaddr.Parse(cfg.PublicAddress)
	if err != nil {
		return nil, errors.Wrap(err, "public_address")
	}

	irk, err := cfg.IRK()
	if err != nil {
		return nil, err
	}

	h := fakehci.New(cfg.InstanceCount, pubAddr)

	mgr, err := advset.NewManager(h, alarm.NewReal(), rpa.NewAES128(), irk, pubAddr, cfg.PrivacyEnabled)
	if err != nil {
		return nil, errors.Wrap(err, "new manager")
	}
	mgr.SetPrivacyInterval(cfg.PrivacyInterval())

	return &session{cfg: cfg, hci: h, mgr: mgr}, nil
}
