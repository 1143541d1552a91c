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
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/evm-abi/internal/abimsgs"
)

// decodeABIElement is the main entry point to the logic, which looks at the component in hand, and determines
// whether to consume data from the head and/or data depending on the type.
func decodeABIElement(ctx context.Context, breadcrumbs string, block []byte, headStart, headPosition int, component *typeComponent) (headBytesRead int, cv *ComponentValue, err error) {
	switch component.cType {
	case ElementaryComponent:
		// All elementary types consume exactly 32 bytes from the head.
		// Any variable data goes into the data section (calculated as an offset from the headStart)
		cv, err := component.elementaryType.decodeABIData(ctx, breadcrumbs, block, headStart, headPosition, component)
		if err != nil {
			return -1, nil, err
		}
		return 32, cv, err
	case FixedArrayComponent:
		// Fixed arrays of a static type sit in the head directly; those of a
		// dynamic type are referenced from the head by a 32 byte offset
		headBytesRead, cv, err := decodeABIFixedArrayBytes(ctx, breadcrumbs, block, headStart, headPosition, component)
		if err != nil {
			return -1, nil, err
		}
		return headBytesRead, cv, err
	case DynamicArrayComponent:
		dataOffset, err := decodeABILength(ctx, breadcrumbs, block, headPosition)
		if err != nil {
			return -1, nil, err
		}
		dataOffset = headStart + dataOffset
		// The dynamic array is a new head, starting at its data offset
		cv, err := decodeABIDynamicArrayBytes(ctx, breadcrumbs, block, dataOffset, component)
		if err != nil {
			return -1, nil, err
		}
		return 32, cv, err
	case TupleComponent:
		return walkTupleABIBytes(ctx, breadcrumbs, block, headStart, headPosition, component)
	default:
		return -1, nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, component.cType)
	}
}

func decodeABISignedInt(ctx context.Context, desc string, block []byte, headStart, headPosition int, component *typeComponent) (cv *ComponentValue, err error) {
	cv = &ComponentValue{Component: component, Leaf: true}
	if headPosition+32 > len(block) {
		return nil, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, component, desc)
	}
	cv.Value = parseInt256TwosComplementBytes(block[headPosition : headPosition+32])
	return cv, nil
}

func decodeABIUnsignedInt(ctx context.Context, desc string, block []byte, headStart, headPosition int, component *typeComponent) (cv *ComponentValue, err error) {
	cv = &ComponentValue{Component: component, Leaf: true}
	if headPosition+32 > len(block) {
		return nil, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, component, desc)
	}
	cv.Value = new(big.Int).SetBytes(block[headPosition : headPosition+32])
	return cv, nil
}

// intToFixed would rescale a decoded integer back into a big.Float by its
// declared decimal point - the inverse of fixedToInt on the encode path.
// Neither fixed nor ufixed values are marshalled by this package, so this is
// dead code kept only as the natural counterpart of fixedToInt; nothing
// calls it.
func intToFixed(ctx context.Context, component *typeComponent, cv *ComponentValue) (*ComponentValue, error) {
	if component.n == 0 {
		return nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, component)
	}
	f := new(big.Float).SetInt(cv.Value.(*big.Int))
	fN := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(component.n)), nil)
	cv.Value = f.Quo(f, new(big.Float).SetInt(fN))
	return cv, nil
}

// decodeABIUnsupportedFixed rejects any attempt to decode a fixed/ufixed
// value - this package parses fixed/ufixed type strings but never marshals
// their values.
func decodeABIUnsupportedFixed(ctx context.Context, desc string, block []byte, headStart, headPosition int, component *typeComponent) (cv *ComponentValue, err error) {
	return nil, i18n.NewError(ctx, abimsgs.MsgBadABITypeComponent, component.String())
}

func decodeABILength(ctx context.Context, desc string, block []byte, offset int) (count int, err error) {
	if offset+32 > len(block) {
		return -1, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIArrayCount, desc)
	}
	i := new(big.Int).SetBytes(block[offset : offset+32])
	if i.BitLen() > 32 {
		return -1, i18n.NewError(ctx, abimsgs.MsgABIArrayCountTooLarge, i.Text(10), desc)
	}
	return int(i.Int64()), nil
}

func decodeABIBytes(ctx context.Context, desc string, block []byte, headStart, headPosition int, component *typeComponent) (cv *ComponentValue, err error) {
	var byteLength int
	dataOffset := headPosition
	if component.m == 0 {
		// Variable length bytes. Offset to data in head...
		dataOffset, err = decodeABILength(ctx, desc, block, headPosition)
		if err != nil {
			return nil, err
		}
		dataOffset = headStart + dataOffset
		// ... then array length ahead of the bytes themselves
		byteLength, err = decodeABILength(ctx, desc, block, dataOffset)
		if err != nil {
			return nil, err
		}
		dataOffset += 32
	} else {
		byteLength = int(component.m)
	}
	cv = &ComponentValue{Component: component, Leaf: true}
	if dataOffset+byteLength > len(block) {
		return nil, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, component, desc)
	}
	b := make([]byte, byteLength)
	copy(b, block[dataOffset:])
	cv.Value = b
	return cv, nil
}

func decodeABIString(ctx context.Context, desc string, block []byte, headStart, headPosition int, component *typeComponent) (cv *ComponentValue, err error) {
	cv, err = decodeABIBytes(ctx, desc, block, headStart, headPosition, component)
	if err != nil {
		return nil, err
	}
	cv.Value = string(cv.Value.([]byte))
	return cv, nil
}

// decodeABIFunctionValue decodes the fixed 24 byte "function" type (a 20 byte
// address plus a 4 byte selector), packed left-aligned in its 32 byte word.
func decodeABIFunctionValue(ctx context.Context, desc string, block []byte, headStart, headPosition int, component *typeComponent) (cv *ComponentValue, err error) {
	cv = &ComponentValue{Component: component, Leaf: true}
	if headPosition+32 > len(block) {
		return nil, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, component, desc)
	}
	b := make([]byte, 24)
	copy(b, block[headPosition:headPosition+24])
	cv.Value = b
	return cv, nil
}

// decodeABIAddress decodes a 20 byte address, right-aligned in its 32 byte
// word (the same layout as a uint160).
func decodeABIAddress(ctx context.Context, desc string, block []byte, headStart, headPosition int, component *typeComponent) (cv *ComponentValue, err error) {
	cv = &ComponentValue{Component: component, Leaf: true}
	if headPosition+32 > len(block) {
		return nil, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, component, desc)
	}
	b := make([]byte, 20)
	copy(b, block[headPosition+12:headPosition+32])
	cv.Value = b
	return cv, nil
}

// decodeABIBool decodes a single byte, right-aligned in its 32 byte word.
// Unlike go-ethereum's tolerant decoder, any value other than 0x00/0x01 is
// rejected rather than silently treated as true.
func decodeABIBool(ctx context.Context, desc string, block []byte, headStart, headPosition int, component *typeComponent) (cv *ComponentValue, err error) {
	cv = &ComponentValue{Component: component, Leaf: true}
	if headPosition+32 > len(block) {
		return nil, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, component, desc)
	}
	word := block[headPosition : headPosition+32]
	for _, b := range word[:31] {
		if b != 0 {
			return nil, i18n.NewError(ctx, abimsgs.MsgInvalidBoolABIValue, word, desc)
		}
	}
	switch word[31] {
	case 0:
		cv.Value = false
	case 1:
		cv.Value = true
	default:
		return nil, i18n.NewError(ctx, abimsgs.MsgInvalidBoolABIValue, word, desc)
	}
	return cv, nil
}

func decodeABIFixedArrayBytes(ctx context.Context, breadcrumbs string, block []byte, headStart, headPosition int, component *typeComponent) (headBytesRead int, cv *ComponentValue, err error) {
	cv = &ComponentValue{
		Component: component,
		Children:  make([]*ComponentValue, component.arrayLength),
	}
	headBytesRead = 0
	// a fixed length sequence of a dynamic type has these parts, using a 'string[2]' type as an example:
	// 0000000000000000000000000000000000000000000000000000000000000020 <= offset of the start of the content
	// 0000000000000000000000000000000000000000000000000000000000000040 <= offset of the 1st element
	// 0000000000000000000000000000000000000000000000000000000000000080 <= offset of the 2nd element
	// 0000000000000000000000000000000000000000000000000000000000000001 <= length of the 1st element
	// 6100000000000000000000000000000000000000000000000000000000000000 <= content of the 1st element
	// 0000000000000000000000000000000000000000000000000000000000000001 <= length of the 2nd element
	// 6200000000000000000000000000000000000000000000000000000000000000 <= content of the 2nd element

	var content []byte
	if isDynamicType(component.arrayChild) {
		if headPosition+32 > len(block) {
			return -1, nil, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIArrayCount, breadcrumbs)
		}
		returnOutput := block[headPosition : headPosition+32]
		offset := binary.BigEndian.Uint64(returnOutput[len(returnOutput)-8:])
		if offset > uint64(len(block)) {
			return -1, nil, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIArrayCount, breadcrumbs)
		}
		content = block[headStart+int(offset):]
	} else {
		content = block[headPosition:]
	}

	if headPosition+32*component.arrayLength > len(block) {
		return -1, nil, i18n.NewError(ctx, abimsgs.MsgNotEnoughBytesABIValue, component, breadcrumbs)
	}

	offset := 0
	for i := 0; i < component.arrayLength; i++ {
		childHeadBytes, child, err := decodeABIElement(ctx, fmt.Sprintf("%s[fix,i:%d,o:%d]", breadcrumbs, i, headPosition),
			content, 0, offset, component.arrayChild)
		if err != nil {
			return -1, nil, err
		}
		cv.Children[i] = child
		headBytesRead += childHeadBytes
		headPosition += childHeadBytes
		offset += childHeadBytes
	}
	if isDynamicType(component.arrayChild) {
		// Only the offset to the content occupies the enclosing head
		return 32, cv, nil
	}
	return headBytesRead, cv, nil
}

// isDynamicType reports whether values of this type vary in byte length,
// and so must be encoded as an offset-plus-tail pair rather than inline.
func isDynamicType(tc *typeComponent) bool {
	switch tc.cType {
	case TupleComponent:
		for _, childType := range tc.tupleChildren {
			if isDynamicType(childType) {
				return true
			}
		}
		return false
	case DynamicArrayComponent:
		return true
	case FixedArrayComponent:
		return isDynamicType(tc.arrayChild)
	case ElementaryComponent:
		tName := tc.elementaryType.name
		// types of bytes3 are not dynamic types, so make sure to check the suffix
		return tName == "string" || (tName == "bytes" && tc.elementarySuffix == "")
	default:
		return false
	}
}

func decodeABIDynamicArrayBytes(ctx context.Context, breadcrumbs string, block []byte, dataOffset int, component *typeComponent) (cv *ComponentValue, err error) {
	arrayLength, err := decodeABILength(ctx, breadcrumbs, block, dataOffset)
	if err != nil {
		return nil, err
	}
	dataOffset += 32
	dataStart := dataOffset
	cv = &ComponentValue{
		Component: component,
		Children:  make([]*ComponentValue, arrayLength),
	}
	position := dataOffset
	for i := 0; i < arrayLength; i++ {
		childHeadBytes, child, err := decodeABIElement(ctx, fmt.Sprintf("%s[dyn,i:%d,b:%d]", breadcrumbs, i, position),
			block, dataStart, position, component.arrayChild)
		if err != nil {
			return nil, err
		}
		cv.Children[i] = child
		position += childHeadBytes
	}
	return cv, nil
}

func walkTupleABIBytes(ctx context.Context, breadcrumbs string, block []byte, headStart, headPosition int, component *typeComponent) (headBytesRead int, cv *ComponentValue, err error) {
	cv = &ComponentValue{
		Component: component,
		Children:  make([]*ComponentValue, len(component.tupleChildren)),
	}
	headBytesRead = 0
	for i, child := range component.tupleChildren {
		childHeadBytes, childValue, err := decodeABIElement(ctx, fmt.Sprintf("%s[tup,i:%d,b:%d]", breadcrumbs, i, headPosition),
			block, headStart, headPosition, child)
		if err != nil {
			return -1, nil, err
		}
		cv.Children[i] = childValue
		headBytesRead += childHeadBytes
		headPosition += childHeadBytes
	}
	return headBytesRead, cv, nil
}
