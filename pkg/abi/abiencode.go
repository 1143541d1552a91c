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

package abi

import (
	"context"
	"math/big"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/evm-abi/internal/abimsgs"
)

// abiEncodeBytes covers bytes<M>, function and the fixed-length case of bytes.
// Values are packed into the front of a 32 byte word, left aligned, with
// trailing zeros - unlike numeric words which are right aligned.
func abiEncodeBytes(ctx context.Context, desc string, tc *typeComponent, value interface{}) (data []byte, dynamic bool, err error) {
	b, ok := value.([]byte)
	if !ok {
		return nil, false, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, "[]byte", value, desc)
	}

	fixedLength := int(tc.m)
	if tc.elementaryType == ElementaryTypeFunction.(*elementaryTypeInfo) {
		fixedLength = 24
	} else if tc.elementarySuffix == "" {
		// The type "bytes" (without a length suffix) is a variable encoding
		return abiEncodeDynamicBytes(b)
	}

	if len(b) < fixedLength || fixedLength > 32 {
		return nil, false, i18n.NewError(ctx, abimsgs.MsgInsufficientDataABIEncode, fixedLength, len(b), desc)
	}

	data = make([]byte, 32)
	copy(data, b[0:fixedLength])
	return data, false, nil
}

func abiEncodeString(ctx context.Context, desc string, tc *typeComponent, value interface{}) (data []byte, dynamic bool, err error) {
	s, ok := value.(string)
	if !ok {
		return nil, false, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, "string", value, desc)
	}
	return abiEncodeDynamicBytes([]byte(s))
}

func abiEncodeDynamicBytes(value []byte) (data []byte, dynamic bool, err error) {
	dataLen := 32 + // length is prefixed as uint256
		(len(value)/32)*32 // count of whole 32 byte chunks
	if (len(value) % 32) != 0 {
		dataLen += 32 // add 32 byte chunk for remainder
	}
	data = make([]byte, dataLen)
	_ = big.NewInt(int64(len(value))).FillBytes(data[0:32])
	copy(data[32:], value)
	return data, true, nil
}

func abiEncodeSignedInteger(ctx context.Context, desc string, tc *typeComponent, value interface{}) (data []byte, dynamic bool, err error) {
	i, ok := value.(*big.Int)
	if !ok {
		return nil, false, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, "*big.Int", value, desc)
	}
	if !checkSignedIntFits(i, int(tc.m)) {
		return nil, false, i18n.NewError(ctx, abimsgs.MsgNumberTooLargeABIEncode, tc.m, desc)
	}
	return serializeInt256TwosComplementBytes(i), false, nil
}

func abiEncodeUnsignedInteger(ctx context.Context, desc string, tc *typeComponent, value interface{}) (data []byte, dynamic bool, err error) {
	i, ok := value.(*big.Int)
	if !ok {
		return nil, false, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, "*big.Int", value, desc)
	}
	if !checkUnsignedIntFits(i, int(tc.m)) {
		return nil, false, i18n.NewError(ctx, abimsgs.MsgNumberTooLargeABIEncode, tc.m, desc)
	}
	data = make([]byte, 32)
	_ = i.FillBytes(data)
	return data, false, nil
}

// fixedToInt scales a big.Float by 10^n and truncates it toward zero -
// the inverse of intToFixed on the decode path. Neither fixed nor ufixed
// values are marshalled by this package, so this is dead code kept only as
// the natural counterpart of intToFixed; nothing calls it.
func fixedToInt(f *big.Float, n uint16) *big.Int {
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil))
	scaled := new(big.Float).Mul(f, scale)
	i, _ := scaled.Int(nil)
	return i
}

// abiEncodeUnsupportedFixed rejects any attempt to encode a fixed/ufixed
// value - this package parses fixed/ufixed type strings but never marshals
// their values.
func abiEncodeUnsupportedFixed(ctx context.Context, desc string, tc *typeComponent, value interface{}) (data []byte, dynamic bool, err error) {
	return nil, false, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc.String())
}

// abiEncodeAddress packs a 20 byte address right-aligned into a 32 byte word,
// the same layout as a uint160.
func abiEncodeAddress(ctx context.Context, desc string, tc *typeComponent, value interface{}) (data []byte, dynamic bool, err error) {
	b, ok := value.([]byte)
	if !ok || len(b) != 20 {
		return nil, false, i18n.NewError(ctx, abimsgs.MsgInsufficientDataABIEncode, 20, len(b), desc)
	}
	data = make([]byte, 32)
	copy(data[12:], b)
	return data, false, nil
}

// abiEncodeBool packs a bool as a single 0x00/0x01 byte, right-aligned into
// a 32 byte word.
func abiEncodeBool(ctx context.Context, desc string, tc *typeComponent, value interface{}) (data []byte, dynamic bool, err error) {
	v, ok := value.(bool)
	if !ok {
		return nil, false, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, "bool", value, desc)
	}
	data = make([]byte, 32)
	if v {
		data[31] = 1
	}
	return data, false, nil
}
