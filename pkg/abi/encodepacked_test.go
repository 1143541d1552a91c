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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePackedUint16String(t *testing.T) {

	params := ParameterArray{
		{Name: "a", Type: "uint16"},
		{Name: "b", Type: "string"},
	}

	cv, err := params.ParseExternalData([]interface{}{0x12, "Elixir ABI"})
	require.NoError(t, err)

	b, err := cv.EncodeABIDataPacked()
	require.NoError(t, err)

	assert.Equal(t, "0012456c6978697220414249", hex.EncodeToString(b))
}

func TestEncodePackedNoPaddingOnBytesN(t *testing.T) {

	params := ParameterArray{{Name: "b", Type: "bytes4"}}

	cv, err := params.ParseExternalData([]interface{}{"0xdeadbeef"})
	require.NoError(t, err)

	b, err := cv.EncodeABIDataPacked()
	require.NoError(t, err)

	assert.Equal(t, "deadbeef", hex.EncodeToString(b))
}

func TestEncodePackedTopLevelDynamicArrayAllowed(t *testing.T) {

	params := ParameterArray{{Name: "a", Type: "uint8[]"}}

	cv, err := params.ParseExternalData([]interface{}{[]interface{}{1, 2, 3}})
	require.NoError(t, err)

	b, err := cv.EncodeABIDataPacked()
	require.NoError(t, err)

	assert.Equal(t, "010203", hex.EncodeToString(b))
}

func TestEncodePackedRejectsTuple(t *testing.T) {

	params := ParameterArray{{
		Name: "a",
		Type: "tuple",
		Components: ParameterArray{
			{Name: "x", Type: "uint256"},
			{Name: "y", Type: "bool"},
		},
	}}

	cv, err := params.ParseExternalData([]interface{}{
		[]interface{}{1, true},
	})
	require.NoError(t, err)

	_, err = cv.EncodeABIDataPacked()
	assert.Error(t, err)
}

func TestEncodePackedRejectsNestedDynamicArray(t *testing.T) {

	// A top-level dynamic array is permitted, but one nested inside another
	// array is ambiguous to hash and must be rejected.
	params := ParameterArray{{Name: "a", Type: "uint8[][]"}}

	cv, err := params.ParseExternalData([]interface{}{
		[]interface{}{
			[]interface{}{1, 2},
			[]interface{}{3},
		},
	})
	require.NoError(t, err)

	_, err = cv.EncodeABIDataPacked()
	assert.Error(t, err)
}
