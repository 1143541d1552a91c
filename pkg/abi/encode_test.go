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
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCallDataBazUintAddress(t *testing.T) {

	e, err := ParseSignature("baz(uint,address)")
	require.NoError(t, err)

	cv, err := e.Inputs.ParseExternalData([]interface{}{
		50,
		"0x0000000000000000000000000000000000000001",
	})
	require.NoError(t, err)

	b, err := e.EncodeCallData(cv)
	require.NoError(t, err)

	assert.Equal(t, ""+
		"a291add6"+
		"0000000000000000000000000000000000000000000000000000000000000032"+
		"0000000000000000000000000000000000000000000000000000000000000001",
		hex.EncodeToString(b))
}

func TestEncodeTupleString(t *testing.T) {

	params := ParameterArray{{Name: "value", Type: "string"}}

	cv, err := params.ParseExternalData([]interface{}{"Ether Token"})
	require.NoError(t, err)

	b, err := cv.EncodeABIData()
	require.NoError(t, err)

	assert.Equal(t, ""+
		"0000000000000000000000000000000000000000000000000000000000000020"+
		"000000000000000000000000000000000000000000000000000000000000000b"+
		"457468657220546f6b656e000000000000000000000000000000000000000000",
		hex.EncodeToString(b))
}

func TestEncodeCallDataNestedDynamicArrays(t *testing.T) {

	e, err := ParseSignature("test(uint[],uint[])")
	require.NoError(t, err)

	cv, err := e.Inputs.ParseExternalData([]interface{}{
		[]interface{}{1},
		[]interface{}{2},
	})
	require.NoError(t, err)

	b, err := e.EncodeCallData(cv)
	require.NoError(t, err)

	assert.Equal(t, ""+
		"f0d7f6eb"+
		"0000000000000000000000000000000000000000000000000000000000000040"+
		"0000000000000000000000000000000000000000000000000000000000000080"+
		"0000000000000000000000000000000000000000000000000000000000000001"+
		"0000000000000000000000000000000000000000000000000000000000000001"+
		"0000000000000000000000000000000000000000000000000000000000000001"+
		"0000000000000000000000000000000000000000000000000000000000000002",
		hex.EncodeToString(b))

	// And it round-trips back through the decoder
	decoded, err := e.DecodeABIInputs(b)
	require.NoError(t, err)
	require.Len(t, decoded.Children, 2)
	assert.Equal(t, big.NewInt(1), decoded.Children[0].Children[0].Value)
	assert.Equal(t, big.NewInt(2), decoded.Children[1].Children[0].Value)
}

func TestEncodeDecodeRoundTripStaticTuple(t *testing.T) {

	params := ParameterArray{
		{Name: "a", Type: "uint256"},
		{Name: "b", Type: "bool"},
		{Name: "c", Type: "address"},
	}

	cv, err := params.ParseExternalData([]interface{}{
		12345,
		true,
		"0x000000000000000000000000000000000000002a",
	})
	require.NoError(t, err)

	b, err := cv.EncodeABIData()
	require.NoError(t, err)
	require.Len(t, b, 3*32)

	decoded, err := params.DecodeABIData(b, 0)
	require.NoError(t, err)

	j, err := decoded.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"12345","b":true,"c":"000000000000000000000000000000000000002a"}`, string(j))
}

func TestEncodeDecodeRoundTripDynamicFixedArray(t *testing.T) {

	// A fixed-size array of a dynamic type (string[2]) is itself dynamic,
	// and must be encoded exactly as a tuple of 2 copies of string would be -
	// no length prefix, each element head/tail within its own slot.
	params := ParameterArray{{Name: "s", Type: "string[2]"}}

	cv, err := params.ParseExternalData([]interface{}{
		[]interface{}{"hello", "a longer string that exceeds one word"},
	})
	require.NoError(t, err)

	b, err := cv.EncodeABIData()
	require.NoError(t, err)

	decoded, err := params.DecodeABIData(b, 0)
	require.NoError(t, err)

	arr := decoded.Children[0]
	require.Len(t, arr.Children, 2)
	assert.Equal(t, "hello", arr.Children[0].Value)
	assert.Equal(t, "a longer string that exceeds one word", arr.Children[1].Value)
}

func TestEncodeOffsetMonotonicity(t *testing.T) {

	// Three dynamic fields in a row - their offsets must strictly increase
	// and each must point within the final buffer.
	params := ParameterArray{
		{Name: "a", Type: "string"},
		{Name: "b", Type: "bytes"},
		{Name: "c", Type: "uint[]"},
	}

	cv, err := params.ParseExternalData([]interface{}{
		"first",
		"0xdeadbeef",
		[]interface{}{1, 2, 3},
	})
	require.NoError(t, err)

	b, err := cv.EncodeABIData()
	require.NoError(t, err)

	lastOffset := big.NewInt(-1)
	for i := 0; i < 3; i++ {
		offset := new(big.Int).SetBytes(b[i*32 : (i+1)*32])
		assert.Equal(t, 1, offset.Cmp(lastOffset))
		assert.Less(t, int(offset.Int64()), len(b))
		lastOffset = offset
	}
}

func TestEncodeWidthEnforcement(t *testing.T) {

	params := ParameterArray{{Name: "v", Type: "uint8"}}

	cv, err := params.ParseExternalData([]interface{}{255})
	require.NoError(t, err)
	_, err = cv.EncodeABIData()
	assert.NoError(t, err)

	cv, err = params.ParseExternalData([]interface{}{256})
	require.NoError(t, err)
	_, err = cv.EncodeABIData()
	assert.Error(t, err)
}

func TestEncodeSignedIntExcludesTrueMinimum(t *testing.T) {

	params := ParameterArray{{Name: "v", Type: "int8"}}

	// -128 is the true two's-complement minimum for int8, but the exclusive
	// lower bound this codec enforces is -127.
	cv, err := params.ParseExternalData([]interface{}{-127})
	require.NoError(t, err)
	_, err = cv.EncodeABIData()
	assert.NoError(t, err)

	cv, err = params.ParseExternalData([]interface{}{-128})
	require.NoError(t, err)
	_, err = cv.EncodeABIData()
	assert.Error(t, err)
}

func TestEncodeFixedValueUnsupported(t *testing.T) {

	// fixed/ufixed type strings parse fine, but marshalling an actual value
	// of either type is not supported - encode must reject it.
	params := ParameterArray{{Name: "v", Type: "fixed128x18"}}

	cv, err := params.ParseExternalData([]interface{}{"1.5"})
	require.NoError(t, err)

	_, err = cv.EncodeABIData()
	assert.Error(t, err)
}

func TestDecodeUfixedValueUnsupported(t *testing.T) {

	params := ParameterArray{{Name: "v", Type: "ufixed128x18"}}

	_, err := params.DecodeABIData(make([]byte, 32), 0)
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTripMultidimensionalTupleArray(t *testing.T) {

	// tuple[2][3] exercises component rewriting across more than one array
	// dimension: the (uint256,bool) tuple components are substituted at the
	// innermost elementary node, then wrapped in two nested fixed array
	// dimensions by parseArrays.
	params := ParameterArray{{
		Name: "grid",
		Type: "tuple[2][3]",
		Components: ParameterArray{
			{Name: "a", Type: "uint256"},
			{Name: "b", Type: "bool"},
		},
	}}

	tc, err := params.TypeComponentTree()
	require.NoError(t, err)
	require.Len(t, tc.TupleChildren(), 1)
	assert.Equal(t, "(uint256,bool)[2][3]", tc.TupleChildren()[0].String())

	row := func(a, b int64) []interface{} {
		return []interface{}{
			[]interface{}{a, b != 0},
			[]interface{}{a + 1, b == 0},
		}
	}
	grid := []interface{}{
		row(1, 1),
		row(3, 0),
		row(5, 1),
	}

	cv, err := params.ParseExternalData([]interface{}{grid})
	require.NoError(t, err)

	b, err := cv.EncodeABIData()
	require.NoError(t, err)
	require.Len(t, b, 3*2*2*32)

	decoded, err := params.DecodeABIData(b, 0)
	require.NoError(t, err)

	outer := decoded.Children[0]
	require.Len(t, outer.Children, 3)
	for i, inner := range outer.Children {
		require.Len(t, inner.Children, 2)
		for j, tuple := range inner.Children {
			wantA, wantB := grid[i].([]interface{})[j].([]interface{})[0].(int64), grid[i].([]interface{})[j].([]interface{})[1].(bool)
			assert.Equal(t, big.NewInt(wantA), tuple.Children[0].Value)
			assert.Equal(t, wantB, tuple.Children[1].Value)
		}
	}
}
