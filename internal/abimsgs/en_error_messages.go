// Copyright © 2024 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package abimsgs is the message catalog for the abi package - every
// error the codec returns is registered here with a stable code, so
// callers can match on the code rather than the rendered string.
package abimsgs

import "github.com/hyperledger/firefly-common/pkg/i18n"

var ffe = i18n.FFE

//revive:disable
var (
	MsgUnsupportedABIType          = ffe("GOABI0001", "Unsupported ABI type '%s' in '%s'")
	MsgMissingABISuffix            = ffe("GOABI0002", "Missing required suffix on ABI type '%s' (%s)")
	MsgInvalidABISuffix            = ffe("GOABI0003", "Invalid suffix on ABI type '%s' (%s)")
	MsgInvalidABIArraySpec         = ffe("GOABI0004", "Invalid array specifier in ABI type '%s'")
	MsgBadABITypeComponent         = ffe("GOABI0005", "Invalid ABI type component: %v")
	MsgWrongTypeComponentABIEncode = ffe("GOABI0006", "Expected '%s' but got '%T' (%s)")
	MsgInsufficientDataABIEncode   = ffe("GOABI0007", "Expected %d bytes but got %d (%s)")
	MsgNumberTooLargeABIEncode     = ffe("GOABI0008", "Number does not fit in %d bits for %s")
	MsgMustBeSliceABIInput         = ffe("GOABI0009", "Expected a list/array for input '%v' (%s)")
	MsgFixedLengthABIArrayMismatch = ffe("GOABI0010", "Wrong number of entries in array %d != %d (%s)")
	MsgTupleABIArrayMismatch       = ffe("GOABI0011", "Wrong number of entries in tuple %d != %d (%s)")
	MsgTupleABINotArrayOrMap       = ffe("GOABI0012", "Expected a list/array or map for input '%v' (%s)")
	MsgTupleInABINoName            = ffe("GOABI0013", "Tuple field %d has no name, so cannot be supplied via a map (%s)")
	MsgMissingInputKeyABITuple     = ffe("GOABI0014", "Missing input field '%s' (%s)")
	MsgInvalidIntegerABIInput      = ffe("GOABI0015", "Invalid integer value '%v' (%T) (%s)")
	MsgInvalidFloatABIInput        = ffe("GOABI0016", "Invalid floating point value '%v' (%T) (%s)")
	MsgInvalidBoolABIInput         = ffe("GOABI0017", "Invalid boolean value '%v' (%T) (%s)")
	MsgInvalidStringABIInput       = ffe("GOABI0018", "Invalid string value '%v' (%T) (%s)")
	MsgInvalidHexABIInput          = ffe("GOABI0019", "Invalid hex value '%v' (%T) (%s)")
	MsgNotEnoughBytesABIValue      = ffe("GOABI0020", "Not enough bytes to decode %v (%s)")
	MsgNotEnoughBytesABIArrayCount = ffe("GOABI0021", "Not enough bytes to decode array length (%s)")
	MsgABIArrayCountTooLarge       = ffe("GOABI0022", "Array count too large: %s (%s)")
	MsgInvalidBoolABIValue         = ffe("GOABI0023", "Invalid boolean byte value 0x%x (%s)")
	MsgNotEnoughtBytesABISignature = ffe("GOABI0024", "Not enough bytes to read the function selector")
	MsgIncorrectABISignatureID     = ffe("GOABI0025", "Incorrect function selector for %s: expected=%s received=%s")
	MsgUnsupportedPackedMode       = ffe("GOABI0026", "Type '%s' cannot be used with packed encoding")
	MsgNoSelectorMatch             = ffe("GOABI0027", "No selector found matching method id '%s'")
	MsgNoEventMatch                = ffe("GOABI0028", "No event found matching topic0 '%s' with %d indexed topics")
	MsgParseErrorAt                = ffe("GOABI0029", "Parse error at offset %d in '%s': %s")
	MsgUnexpectedToken             = ffe("GOABI0030", "Unexpected character '%c' at offset %d in '%s'")
	MsgUnexpectedEndOfInput        = ffe("GOABI0031", "Unexpected end of input parsing '%s'")
	MsgOffsetOutOfBounds           = ffe("GOABI0032", "Offset %d is out of bounds for a buffer of length %d (%s)")
	MsgValuesTypesLengthMismatch   = ffe("GOABI0033", "Supplied %d values for %d types")
	MsgUnknownEntryType            = ffe("GOABI0034", "Unknown ABI entry type '%s'")
	MsgUnknownABIElementaryType    = ffe("GOABI0035", "Unknown ABI elementary type '%s' (%s)")
	MsgUnknownTupleSerializer      = ffe("GOABI0036", "Unknown tuple serialization format mode %d")
	MsgNotEnoughTopics             = ffe("GOABI0037", "Not enough indexed topics supplied: expected %d but got %d")
	MsgTopicWrongLength            = ffe("GOABI0038", "Indexed topic for '%s' must be exactly 32 bytes, got %d")
)
