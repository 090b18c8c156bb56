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
	"strconv"

	ishell "gopkg.in/abiosoft/ishell.v2"

	"github.com/nimble-bt/bleadv/advset"
	"github.com/nimble-bt/bleadv/hci"
	"github.com/spf13/cobra"
)

// shellCmd opens an interactive REPL for ad hoc Register/Unregister/
// Enable calls and a status listing against the session's simulated
// controller, grounded on
// newtmgr/cli/interactive.go's ishell usage.
func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell against the simulated controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			runShell()
			return nil
		},
	}
}

func runShell() {
	sh := ishell.New()
	sh.SetPrompt("bleadvctl> ")

	sh.AddCmd(&ishell.Cmd{
		Name: "register",
		Help: "allocate a free instance",
		Func: func(c *ishell.Context) {
			sess.mgr.Register(func(instID uint8, status hci.Status) {
				if status != advset.StatusSuccess {
					c.Println("FAILED")
					return
				}
				c.Printf("instance %d\n", instID)
			})
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "unregister",
		Help: "unregister <inst_id>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Println("usage: unregister <inst_id>")
				return
			}
			n, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Println(err)
				return
			}
			sess.mgr.Unregister(uint8(n))
			c.Println("ok")
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "enable",
		Help: "enable <inst_id> <0|1>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Println("usage: enable <inst_id> <0|1>")
				return
			}
			instID, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Println(err)
				return
			}
			on := c.Args[1] == "1"

			sess.mgr.Enable(uint8(instID), on, func(status hci.Status) {
				if status != advset.StatusSuccess {
					c.Printf("FAILED status=0x%02x\n", status)
					return
				}
				c.Println("ok")
			}, 0, nil)
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "status",
		Help: "print the instance table",
		Func: func(c *ishell.Context) {
			for _, snap := range sess.mgr.Snapshot() {
				c.Printf("inst=%d in_use=%v addr=%s tx_power=%d\n",
					snap.InstID, snap.InUse, snap.OwnAddress, snap.TxPower)
			}
		},
	})

	sh.Run()
}
