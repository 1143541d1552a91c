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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignatureBasic(t *testing.T) {

	e, err := ParseSignature("transfer(address,uint256)")
	require.NoError(t, err)

	assert.Equal(t, Function, e.Type)
	assert.Equal(t, "transfer", e.Name)
	require.Len(t, e.Inputs, 2)
	assert.Equal(t, "address", e.Inputs[0].Type)
	assert.Equal(t, "uint256", e.Inputs[1].Type)
}

func TestParseSignatureNoArgs(t *testing.T) {

	e, err := ParseSignature("kill()")
	require.NoError(t, err)
	assert.Equal(t, "kill", e.Name)
	assert.Empty(t, e.Inputs)
}

func TestParseSignatureBareUintDefaultsTo256(t *testing.T) {

	e, err := ParseSignature("baz(uint,address)")
	require.NoError(t, err)
	assert.Equal(t, "uint256", e.Inputs[0].Type)
}

func TestParseSignatureBareIntDefaultsTo256(t *testing.T) {

	e, err := ParseSignature("f(int)")
	require.NoError(t, err)
	assert.Equal(t, "int256", e.Inputs[0].Type)
}

func TestParseSignatureBareFixedDefaults(t *testing.T) {

	e, err := ParseSignature("f(fixed,ufixed)")
	require.NoError(t, err)
	assert.Equal(t, "fixed128x18", e.Inputs[0].Type)
	assert.Equal(t, "ufixed128x18", e.Inputs[1].Type)
}

func TestParseSignatureEnumAliasesToUint8(t *testing.T) {

	e, err := ParseSignature("f(enum)")
	require.NoError(t, err)
	assert.Equal(t, "uint8", e.Inputs[0].Type)
}

func TestParseSignatureArraySuffixes(t *testing.T) {

	e, err := ParseSignature("f(uint256[],uint256[3],string[][2])")
	require.NoError(t, err)
	assert.Equal(t, "uint256[]", e.Inputs[0].Type)
	assert.Equal(t, "uint256[3]", e.Inputs[1].Type)
	assert.Equal(t, "string[][2]", e.Inputs[2].Type)
}

func TestParseSignatureNestedTuple(t *testing.T) {

	e, err := ParseSignature("f((address,uint256)[],bool)")
	require.NoError(t, err)
	assert.Equal(t, "(address,uint256)[]", e.Inputs[0].Type)
	assert.Equal(t, "bool", e.Inputs[1].Type)
}

func TestParseTypeStringStandalone(t *testing.T) {

	tc, err := ParseTypeString("uint256[][3]")
	require.NoError(t, err)
	assert.Equal(t, "uint256[][3]", tc.String())
}

func TestParseTypeStringTuple(t *testing.T) {

	tc, err := ParseTypeString("(address,uint256)")
	require.NoError(t, err)
	assert.Equal(t, "(address,uint256)", tc.String())
}

func TestParseSignatureErrorOnUnknownType(t *testing.T) {

	_, err := ParseSignature("f(frobnicate)")
	assert.Error(t, err)
}

func TestParseSignatureErrorMissingCloseParen(t *testing.T) {

	_, err := ParseSignature("f(uint256")
	assert.Error(t, err)
}

func TestParseTypeStringErrorTrailingGarbage(t *testing.T) {

	_, err := ParseTypeString("uint256extra")
	assert.Error(t, err)
}

func TestParseSignatureErrorSuffixOnNoneType(t *testing.T) {

	_, err := ParseSignature("f(address8)")
	assert.Error(t, err)
}

func TestParseSignatureErrorBadFixedSuffix(t *testing.T) {

	_, err := ParseSignature("f(fixed128)")
	assert.Error(t, err)
}

func TestParseSignatureIdempotentCanonicalForm(t *testing.T) {

	// Re-parsing the canonical string produced from a parse must parse to
	// the same canonical string again.
	e1, err := ParseSignature("f(uint,address,string[])")
	require.NoError(t, err)

	canonical := "f("
	for i, in := range e1.Inputs {
		if i > 0 {
			canonical += ","
		}
		canonical += in.Type
	}
	canonical += ")"

	e2, err := ParseSignature(canonical)
	require.NoError(t, err)

	for i := range e1.Inputs {
		assert.Equal(t, e1.Inputs[i].Type, e2.Inputs[i].Type)
	}
}
