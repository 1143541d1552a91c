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

// EncodeABIData serializes a value tree (built by ParseJSON/ParseExternalData,
// or constructed directly) into standard ABI encoded bytes. The tree must be
// rooted at a tuple - this is always true for a ComponentValue produced from
// a ParameterArray, which is how function/event inputs and outputs are modelled.
func (cv *ComponentValue) EncodeABIData() ([]byte, error) {
	return cv.EncodeABIDataCtx(context.Background())
}

func (cv *ComponentValue) EncodeABIDataCtx(ctx context.Context) ([]byte, error) {
	if cv.Component == nil || cv.Component.ComponentType() != TupleComponent {
		return nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, cv.Component)
	}
	return encodeHeadTail(ctx, "", cv.Children)
}

// asTC recovers the concrete typeComponent behind a TypeComponent interface
// value. Every TypeComponent in this package is built by this package, so the
// assertion always holds.
func asTC(tc TypeComponent) *typeComponent {
	return tc.(*typeComponent)
}

// encodeHeadTail implements the two-pass head/tail layout described for
// tuples, dynamic fixed arrays and dynamic array element sequences: static
// children are emitted inline, dynamic children are emitted as an offset
// marker in the head plus their payload appended to the tail.
//
// Pass one walks the children once, encoding each to either its final static
// bytes or its tail payload. Pass two (after the full head size is known)
// rewrites every marker to a concrete offset, measured from the start of this
// head, and appends the tail payloads in order. Interleaving those two steps
// in a single pass is what produces wrong offsets whenever an earlier
// dynamic child's blob length depends on something computed after it.
func encodeHeadTail(ctx context.Context, breadcrumbs string, children []*ComponentValue) ([]byte, error) {
	type slot struct {
		dynamic bool
		head    []byte // static bytes, or (once rewritten) the 32-byte offset marker
		tail    []byte // only populated for dynamic slots
	}

	slots := make([]slot, len(children))
	for i, child := range children {
		childBreadcrumbs := fmt.Sprintf("%s[%d]", breadcrumbs, i)
		data, dynamic, err := encodeABIValue(ctx, childBreadcrumbs, child)
		if err != nil {
			return nil, err
		}
		if dynamic {
			slots[i] = slot{dynamic: true, head: make([]byte, 32), tail: data}
		} else {
			slots[i] = slot{head: data}
		}
	}

	headSize := 0
	for _, s := range slots {
		headSize += len(s.head)
	}

	offset := headSize
	tail := make([]byte, 0)
	for i := range slots {
		if slots[i].dynamic {
			_ = big.NewInt(int64(offset)).FillBytes(slots[i].head)
			tail = append(tail, slots[i].tail...)
			offset += len(slots[i].tail)
		}
	}

	out := make([]byte, 0, headSize+len(tail))
	for _, s := range slots {
		out = append(out, s.head...)
	}
	out = append(out, tail...)
	return out, nil
}

// encodeABIValue encodes a single value tree node, returning whether the
// result belongs in the tail (dynamic) or inline in the head (static).
func encodeABIValue(ctx context.Context, breadcrumbs string, cv *ComponentValue) (data []byte, dynamic bool, err error) {
	if cv.Component == nil {
		return nil, false, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, cv)
	}
	tc := asTC(cv.Component)
	switch tc.cType {
	case ElementaryComponent:
		return tc.elementaryType.encodeABIData(ctx, breadcrumbs, tc, cv.Value)
	case FixedArrayComponent:
		if len(cv.Children) != tc.arrayLength {
			return nil, false, i18n.NewError(ctx, abimsgs.MsgFixedLengthABIArrayMismatch, len(cv.Children), tc.arrayLength, breadcrumbs)
		}
		data, err = encodeHeadTail(ctx, breadcrumbs, cv.Children)
		return data, isDynamicType(tc.arrayChild), err
	case DynamicArrayComponent:
		body, err := encodeHeadTail(ctx, breadcrumbs, cv.Children)
		if err != nil {
			return nil, false, err
		}
		lengthPrefix := make([]byte, 32)
		big.NewInt(int64(len(cv.Children))).FillBytes(lengthPrefix)
		return append(lengthPrefix, body...), true, nil
	case TupleComponent:
		if len(cv.Children) != len(tc.tupleChildren) {
			return nil, false, i18n.NewError(ctx, abimsgs.MsgTupleABIArrayMismatch, len(cv.Children), len(tc.tupleChildren), breadcrumbs)
		}
		data, err = encodeHeadTail(ctx, breadcrumbs, cv.Children)
		return data, isDynamicType(tc), err
	default:
		return nil, false, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, tc.cType)
	}
}
