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
	"encoding/hex"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/fatih/structs"
	"github.com/spf13/cobra"
	"github.com/ugorji/go/codec"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/nimble-bt/bleadv/advset"
	"github.com/nimble-bt/bleadv/hci"
)

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Allocate a free advertising instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			var instID uint8
			var status hci.Status
			sess.mgr.Register(func(id uint8, s hci.Status) {
				instID, status = id, s
			})
			printStatus(status)
			if status == advset.StatusSuccess {
				fmt.Printf("instance %d\n", instID)
			}
			return nil
		},
	}
}

func unregisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unregister [inst_id]",
		Short: "Free an advertising instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instID, err := parseInstID(args[0])
			if err != nil {
				return err
			}
			sess.mgr.Unregister(instID)
			printStatus(advset.StatusSuccess)
			return nil
		},
	}
	return cmd
}

func startCmd() *cobra.Command {
	var instID uint8
	var advDataHex, scanRspHex string
	var timeoutS uint32
	var connectable bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run StartAdvertising on an already-registered instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			advData, err := hex.DecodeString(advDataHex)
			if err != nil {
				return err
			}
			scanRsp, err := hex.DecodeString(scanRspHex)
			if err != nil {
				return err
			}

			props := hci.AdvEventProperties(hci.PropLegacy)
			if connectable {
				props |= hci.PropConnectable
			}

			var status hci.Status
			sess.mgr.StartAdvertising(instID, startParams(props), advData, scanRsp, timeoutS, nil,
				func(s hci.Status) { status = s })

			printStatus(status)
			if status == advset.StatusSuccess && timeoutS > 0 {
				countdown(timeoutS)
			}
			return nil
		},
	}

	cmd.Flags().Uint8Var(&instID, "inst", 0, "instance id")
	cmd.Flags().StringVar(&advDataHex, "data", "", "advertising data, hex-encoded")
	cmd.Flags().StringVar(&scanRspHex, "scanrsp", "", "scan response data, hex-encoded")
	cmd.Flags().Uint32Var(&timeoutS, "timeout", 0, "advertising duration in seconds (0 = unbounded)")
	cmd.Flags().BoolVar(&connectable, "connectable", true, "set the connectable property bit")
	return cmd
}

func startSetCmd() *cobra.Command {
	var advDataHex, scanRspHex string
	var timeoutS uint32
	var connectable bool

	cmd := &cobra.Command{
		Use:   "start-set",
		Short: "Register then StartAdvertisingSet",
		RunE: func(cmd *cobra.Command, args []string) error {
			advData, err := hex.DecodeString(advDataHex)
			if err != nil {
				return err
			}
			scanRsp, err := hex.DecodeString(scanRspHex)
			if err != nil {
				return err
			}

			props := hci.AdvEventProperties(hci.PropLegacy)
			if connectable {
				props |= hci.PropConnectable
			}

			var instID uint8
			var txPower int8
			var status hci.Status
			sess.mgr.StartAdvertisingSet(startParams(props), advData, scanRsp, advset.PeriodicStart{}, timeoutS, nil,
				func(id uint8, tx int8, s hci.Status) {
					instID, txPower, status = id, tx, s
				})

			printStatus(status)
			if status == advset.StatusSuccess {
				fmt.Printf("instance %d, tx_power=%d dBm\n", instID, txPower)
				if timeoutS > 0 {
					countdown(timeoutS)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&advDataHex, "data", "", "advertising data, hex-encoded")
	cmd.Flags().StringVar(&scanRspHex, "scanrsp", "", "scan response data, hex-encoded")
	cmd.Flags().Uint32Var(&timeoutS, "timeout", 0, "advertising duration in seconds (0 = unbounded)")
	cmd.Flags().BoolVar(&connectable, "connectable", true, "set the connectable property bit")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current instance table",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, snap := range sess.mgr.Snapshot() {
				m := structs.Map(snap)
				state := color.RedString("free")
				if snap.InUse {
					state = color.GreenString("in use")
				}
				fmt.Printf("inst=%v %-8s addr_type=%v addr=%v tx_power=%v timeout_s=%v\n",
					m["InstID"], state, m["OwnAddrType"], m["OwnAddress"], m["TxPower"], m["TimeoutS"])
			}
			return nil
		},
	}
}

func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "CBOR-encode the instance table snapshot to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps := sess.mgr.Snapshot()

			fields := make([]map[string]interface{}, len(snaps))
			for i, s := range snaps {
				fields[i] = structs.New(s).Map()
			}

			var payload []byte
			if err := codec.NewEncoderBytes(&payload, new(codec.CborHandle)).Encode(fields); err != nil {
				return err
			}

			fmt.Println(hex.EncodeToString(payload))
			return nil
		},
	}
}

func startParams(props hci.AdvEventProperties) advset.StartParams {
	return advset.StartParams{
		Properties:   props,
		IntervalMin:  0x00A0,
		IntervalMax:  0x00A0,
		ChannelMap:   0x07,
		FilterPolicy: 0x00,
		TxPower:      0,
		PrimaryPhy:   0x01,
		SecondaryPhy: 0x01,
	}
}

func printStatus(status hci.Status) {
	if status == advset.StatusSuccess {
		fmt.Println(color.GreenString("SUCCESS"))
		return
	}
	fmt.Println(color.RedString("FAILED status=0x%02x", status))
}

func countdown(timeoutS uint32) {
	bar := pb.New(int(timeoutS)).SetUnits(pb.U_DURATION)
	bar.Start()
	for i := uint32(0); i < timeoutS; i++ {
		time.Sleep(time.Second)
		bar.Increment()
	}
	bar.FinishPrint("advertising disabled (timeout)")
}

func parseInstID(s string) (uint8, error) {
	var instID uint8
	_, err := fmt.Sscanf(s, "%d", &instID)
	return instID, err
}
