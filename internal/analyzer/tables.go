// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

package analyzer

import "fmt"

// atCommands maps known ELM327 AT command prefixes to a human description.
// Lookup picks the longest key that is a prefix of the (uppercased) line.
var atCommands = map[string]string{
	"ATZ":   "Reset all",
	"ATE0":  "Echo off",
	"ATE1":  "Echo on",
	"ATL0":  "Linefeeds off",
	"ATL1":  "Linefeeds on",
	"ATH0":  "Headers off",
	"ATH1":  "Headers on",
	"ATS0":  "Spaces off",
	"ATS1":  "Spaces on",
	"ATSP0": "Set protocol to auto",
	"ATSP":  "Set protocol",
	"ATDP":  "Describe current protocol",
	"ATAT0": "Adaptive timing off",
	"ATAT1": "Adaptive timing auto 1",
	"ATAT2": "Adaptive timing auto 2",
	"ATST":  "Set timeout",
	"ATRV":  "Read voltage",
	"ATI":   "Print version ID",
	"ATD":   "Set defaults",
	"ATCAF0": "CAN auto formatting off",
	"ATCAF1": "CAN auto formatting on",
	"ATCRA": "Set CAN receive address filter",
	"ATSH":  "Set CAN header",
	"ATWM":  "Set wakeup message",
	"ATFI":  "Fast initialization",
}

// stCommands maps known STN vendor-extension command prefixes.
var stCommands = map[string]string{
	"STI":    "Print STN version",
	"STDI":   "Print STN device info",
	"STBR":   "Set UART baud rate",
	"STFAP":  "Set CAN filter and acceptance pattern",
	"STPBR":  "Set protocol baud rate",
	"STCMM":  "Set CAN monitor mode",
	"STCSEG": "Set CAN segmentation",
}

// obdModes describes OBD-II service/mode IDs (<= 0x0F).
var obdModes = map[byte]string{
	0x01: "Show current data",
	0x02: "Show freeze frame data",
	0x03: "Show stored DTCs",
	0x04: "Clear DTCs",
	0x05: "O2 sensor monitoring",
	0x06: "Other monitoring",
	0x07: "Pending DTCs",
	0x08: "Control on-board component",
	0x09: "Request vehicle information",
	0x0A: "Permanent DTCs",
}

// udsModes describes UDS/KWP service IDs (> 0x0F).
var udsModes = map[byte]string{
	0x10: "Diagnostic session control",
	0x11: "ECU reset",
	0x14: "Clear diagnostic information",
	0x19: "Read DTC information",
	0x22: "Read data by identifier",
	0x23: "Read memory by address",
	0x27: "Security access",
	0x28: "Communication control",
	0x2E: "Write data by identifier",
	0x31: "Routine control",
	0x34: "Request download",
	0x35: "Request upload",
	0x36: "Transfer data",
	0x37: "Request transfer exit",
	0x3E: "Tester present",
	0x85: "Control DTC setting",
}

// nrcTable describes ISO 14229-1:2020 negative response codes.
var nrcTable = map[byte]string{
	0x10: "General reject",
	0x11: "Service not supported",
	0x12: "Sub-function not supported",
	0x13: "Incorrect message length or invalid format",
	0x14: "Response too long",
	0x21: "Busy, repeat request",
	0x22: "Conditions not correct",
	0x23: "Routine not complete",
	0x24: "Request sequence error",
	0x25: "No response from subnet component",
	0x31: "Request out of range",
	0x33: "Security access denied",
	0x35: "Invalid key",
	0x36: "Exceeded number of attempts",
	0x37: "Required time delay not expired",
	0x40: "General programming failure",
	0x41: "Wrong block sequence counter",
	0x42: "Reserved for specific conditions (0x42)",
	0x43: "Reserved for specific conditions (0x43)",
	0x50: "Reserved for specific conditions (0x50)",
	0x51: "Reserved for specific conditions (0x51)",
	0x52: "Reserved for specific conditions (0x52)",
	0x53: "Reserved for specific conditions (0x53)",
	0x70: "Upload/download not accepted",
	0x71: "Transfer data suspended",
	0x72: "General programming failure",
	0x73: "Wrong block sequence counter",
	0x77: "Request correctly received, response pending timeout",
	0x78: "Request correctly received, response pending",
	0x7E: "Sub-function not supported in active session",
	0x7F: "Service not supported in active session",
	0x80: "Reserved for specific conditions (0x80)",
	0x81: "Reserved for specific conditions (0x81)",
	0x82: "Reserved for specific conditions (0x82)",
	0x83: "Reserved for specific conditions (0x83)",
	0x84: "Reserved for specific conditions (0x84)",
	0x85: "Reserved for specific conditions (0x85)",
	0x86: "Reserved for specific conditions (0x86)",
	0x87: "Reserved for specific conditions (0x87)",
	0x88: "Reserved for specific conditions (0x88)",
	0x89: "Reserved for specific conditions (0x89)",
	0x8A: "Reserved for specific conditions (0x8A)",
	0x8B: "Reserved for specific conditions (0x8B)",
	0x8C: "Reserved for specific conditions (0x8C)",
	0x8D: "Reserved for specific conditions (0x8D)",
	0x8E: "Reserved for specific conditions (0x8E)",
	0x8F: "Reserved for specific conditions (0x8F)",
	0x90: "Reserved for specific conditions (0x90)",
	0x91: "Reserved for specific conditions (0x91)",
	0x92: "Reserved for specific conditions (0x92)",
	0x93: "Reserved for specific conditions (0x93)",
	0xF1: "Reserved for specific conditions (0xF1)",
	0xFA: "Reserved for specific conditions (0xFA)",
	0xFB: "Reserved for specific conditions (0xFB)",
	0xFC: "Reserved for specific conditions (0xFC)",
	0xFD: "Reserved for specific conditions (0xFD)",
	0xFE: "Reserved for specific conditions (0xFE)",
}

func nrcDescription(code byte) string {
	if desc, ok := nrcTable[code]; ok {
		return desc
	}
	return "Unknown NRC"
}

// pidFormatter formats a PID's data bytes (A, B, ... following mode+PID) as
// a detail string, or returns "" if there are too few bytes. The PID's
// display name is kept beside it in pidInfo.
type pidFormatter func(data []byte) string

type pidInfo struct {
	name   string
	format pidFormatter
}

// pidTable carries the canonical formulas required by spec.md §4.3.
var pidTable = map[byte]pidInfo{
	0x05: {"Coolant temperature", func(d []byte) string {
		if len(d) < 1 {
			return ""
		}
		return fmt.Sprintf("%d °C", int(d[0])-40)
	}},
	0x0C: {"Engine RPM", func(d []byte) string {
		if len(d) < 2 {
			return ""
		}
		rpm := (int(d[0])<<8 + int(d[1])) / 4
		return fmt.Sprintf("%d rpm", rpm)
	}},
	0x0D: {"Vehicle speed", func(d []byte) string {
		if len(d) < 1 {
			return ""
		}
		return fmt.Sprintf("%d km/h", int(d[0]))
	}},
	0x0F: {"Intake air temperature", func(d []byte) string {
		if len(d) < 1 {
			return ""
		}
		return fmt.Sprintf("%d °C", int(d[0])-40)
	}},
	0x11: {"Throttle position", func(d []byte) string {
		if len(d) < 1 {
			return ""
		}
		return fmt.Sprintf("%s%%", formatPercentOneDecimal(d[0]))
	}},
	0x2F: {"Fuel level", func(d []byte) string {
		if len(d) < 1 {
			return ""
		}
		return fmt.Sprintf("%s%%", formatPercentOneDecimal(d[0]))
	}},
}

// formatPercentOneDecimal computes A*100/255 truncated to one decimal
// digit using integer arithmetic, matching spec.md's "one-decimal %"
// formula exactly rather than relying on float rounding.
func formatPercentOneDecimal(a byte) string {
	tenths := int(a) * 1000 / 255
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}
