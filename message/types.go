// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package message

import (
	"fmt"
)

// Type is the message type byte that begins every message.
type Type uint8

// Message types, in wire order. Types without a Message implementation in this
// package are recognized but cannot be decoded.
const (
	TypeNone Type = iota
	TypeWhoAreYou
	TypeIAmADie
	TypeState
	TypeTelemetry
	TypeBulkSetup
	TypeBulkSetupAck
	TypeBulkData
	TypeBulkDataAck
	TypeTransferAnimSet
	TypeTransferAnimSetAck
	TypeTransferSettings
	TypeTransferSettingsAck
	TypeDebugLog
	TypePlayAnim
	TypePlayAnimEvent
	TypeStopAnim
	TypeRequestState
	TypeRequestAnimSet
	TypeRequestSettings
	TypeRequestTelemetry
	TypeProgramDefaultAnimSet
	TypeProgramDefaultAnimSetFinished
	TypeFlash
	TypeFlashFinished
	TypeRequestDefaultAnimSetColor
	TypeDefaultAnimSetColor
	TypeRequestBatteryLevel
	TypeBatteryLevel
	TypeCalibrate
	TypeCalibrateFace
	TypeNotifyUser
	TypeNotifyUserAck
	TypeTestHardware
	TypeSetStandardState
	TypeSetLEDAnimState
	TypeSetBattleState
	TypeProgramDefaultParameters
	TypeProgramDefaultParametersFinished
	TypeTestBulkSend
	TypeTestBulkReceive
	TypeSetAllLEDsToColor
	TypeAttractMode
	TypePrintNormals
	TypePlaySound

	// TypeCount is the number of message types.
	TypeCount
)

var typeNames = [TypeCount]string{
	"None",
	"WhoAreYou",
	"IAmADie",
	"State",
	"Telemetry",
	"BulkSetup",
	"BulkSetupAck",
	"BulkData",
	"BulkDataAck",
	"TransferAnimSet",
	"TransferAnimSetAck",
	"TransferSettings",
	"TransferSettingsAck",
	"DebugLog",
	"PlayAnim",
	"PlayAnimEvent",
	"StopAnim",
	"RequestState",
	"RequestAnimSet",
	"RequestSettings",
	"RequestTelemetry",
	"ProgramDefaultAnimSet",
	"ProgramDefaultAnimSetFinished",
	"Flash",
	"FlashFinished",
	"RequestDefaultAnimSetColor",
	"DefaultAnimSetColor",
	"RequestBatteryLevel",
	"BatteryLevel",
	"Calibrate",
	"CalibrateFace",
	"NotifyUser",
	"NotifyUserAck",
	"TestHardware",
	"SetStandardState",
	"SetLEDAnimState",
	"SetBattleState",
	"ProgramDefaultParameters",
	"ProgramDefaultParametersFinished",
	"TestBulkSend",
	"TestBulkReceive",
	"SetAllLEDsToColor",
	"AttractMode",
	"PrintNormals",
	"PlaySound",
}

func (t Type) String() string {
	if t < TypeCount {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}
