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
	"fmt"
	"math/big"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/evm-abi/internal/abimsgs"
)

// EncodeABIDataPacked serializes a value tree using Solidity's "packed"
// encoding: no 32-byte padding, no length prefixes on fixed-size primitives,
// elements of a dynamic array concatenated directly. It exists solely to
// feed off-chain hashing (e.g. the classic `abi.encodePacked` pattern) - it
// is inherently ambiguous for nested dynamic types, so tuples and nested
// dynamic arrays are rejected, and there is no corresponding decoder.
func (cv *ComponentValue) EncodeABIDataPacked() ([]byte, error) {
	return cv.EncodeABIDataPackedCtx(context.Background())
}

func (cv *ComponentValue) EncodeABIDataPackedCtx(ctx context.Context) ([]byte, error) {
	if cv.Component == nil || cv.Component.ComponentType() != TupleComponent {
		return nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, cv.Component)
	}
	out := make([]byte, 0)
	for i, child := range cv.Children {
		b, err := encodeABIValuePacked(ctx, fmt.Sprintf("[%d]", i), child, true /* top-level tuple children may be dynamic */)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// encodeABIValuePacked encodes a single value using packed rules.
// topLevel is true only for the direct children of the outermost tuple being
// packed-encoded - Solidity permits a top-level dynamic array argument there,
// but never a tuple, and never a dynamic array nested inside anything else.
func encodeABIValuePacked(ctx context.Context, breadcrumbs string, cv *ComponentValue, topLevel bool) ([]byte, error) {
	tc := asTC(cv.Component)
	switch tc.cType {
	case ElementaryComponent:
		return encodePackedElementary(ctx, breadcrumbs, tc, cv.Value)
	case FixedArrayComponent:
		out := make([]byte, 0)
		for i, child := range cv.Children {
			b, err := encodeABIValuePacked(ctx, fmt.Sprintf("%s[%d]", breadcrumbs, i), child, false)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		return out, nil
	case DynamicArrayComponent:
		if !topLevel {
			return nil, i18n.NewError(ctx, abimsgs.MsgUnsupportedPackedMode, tc.String())
		}
		out := make([]byte, 0)
		for i, child := range cv.Children {
			b, err := encodeABIValuePacked(ctx, fmt.Sprintf("%s[%d]", breadcrumbs, i), child, false)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		return out, nil
	case TupleComponent:
		return nil, i18n.NewError(ctx, abimsgs.MsgUnsupportedPackedMode, tc.String())
	default:
		return nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc.cType)
	}
}

func encodePackedElementary(ctx context.Context, desc string, tc *typeComponent, value interface{}) ([]byte, error) {
	switch tc.elementaryType.name {
	case "uint", "int":
		i, ok := value.(*big.Int)
		if !ok {
			return nil, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, "*big.Int", value, desc)
		}
		bytesLen := int(tc.m) / 8
		if tc.elementaryType.name == "uint" {
			if !checkUnsignedIntFits(i, int(tc.m)) {
				return nil, i18n.NewError(ctx, abimsgs.MsgNumberTooLargeABIEncode, tc.m, desc)
			}
			b := make([]byte, bytesLen)
			i.FillBytes(b)
			return b, nil
		}
		if !checkSignedIntFits(i, int(tc.m)) {
			return nil, i18n.NewError(ctx, abimsgs.MsgNumberTooLargeABIEncode, tc.m, desc)
		}
		full := serializeInt256TwosComplementBytes(i)
		return full[32-bytesLen:], nil
	case "address":
		b, ok := value.([]byte)
		if !ok || len(b) != 20 {
			return nil, i18n.NewError(ctx, abimsgs.MsgInsufficientDataABIEncode, 20, len(b), desc)
		}
		return b, nil
	case "bool":
		v, ok := value.(bool)
		if !ok {
			return nil, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, "bool", value, desc)
		}
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case "bytes":
		b, ok := value.([]byte)
		if !ok {
			return nil, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, "[]byte", value, desc)
		}
		if tc.elementarySuffix != "" && len(b) != int(tc.m) {
			return nil, i18n.NewError(ctx, abimsgs.MsgInsufficientDataABIEncode, int(tc.m), len(b), desc)
		}
		return b, nil
	case "string":
		s, ok := value.(string)
		if !ok {
			return nil, i18n.NewError(ctx, abimsgs.MsgWrongTypeComponentABIEncode, "string", value, desc)
		}
		return []byte(s), nil
	default:
		return nil, i18n.NewError(ctx, abimsgs.MsgUnsupportedPackedMode, tc.String())
	}
}
