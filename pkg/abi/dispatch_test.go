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

func transferEvent(fromIndexed, toIndexed bool) *Entry {
	return &Entry{
		Type: Event,
		Name: "Transfer",
		Inputs: ParameterArray{
			{Name: "from", Type: "address", Indexed: fromIndexed},
			{Name: "to", Type: "address", Indexed: toIndexed},
			{Name: "value", Type: "uint256"},
		},
	}
}

func TestFindByMethodID(t *testing.T) {

	baz, err := ParseSignature("baz(uint,address)")
	require.NoError(t, err)
	foo, err := ParseSignature("foo(bool)")
	require.NoError(t, err)

	list := ABI{baz, foo}

	id, err := baz.GenerateID()
	require.NoError(t, err)

	found, err := FindByMethodID(list, id)
	require.NoError(t, err)
	assert.Same(t, baz, found)
}

func TestFindByMethodIDNoMatch(t *testing.T) {

	baz, err := ParseSignature("baz(uint,address)")
	require.NoError(t, err)

	_, err = FindByMethodID(ABI{baz}, []byte{0x00, 0x00, 0x00, 0x00})
	assert.Error(t, err)
}

func TestFindEventDisambiguatesByIndexedCount(t *testing.T) {

	nonIndexed := transferEvent(false, false)
	indexed := transferEvent(true, true)

	list := ABI{nonIndexed, indexed}

	topic0, err := indexed.TopicID()
	require.NoError(t, err)

	// topic0 + 2 indexed topic values - matches the "indexed" variant, which
	// declares exactly 2 indexed parameters.
	found, err := FindEvent(list, [][]byte{
		topic0,
		make([]byte, 32),
		make([]byte, 32),
	})
	require.NoError(t, err)
	assert.Same(t, indexed, found)
}

func TestFindEventDisambiguatesZeroIndexed(t *testing.T) {

	nonIndexed := transferEvent(false, false)
	indexed := transferEvent(true, true)

	list := ABI{nonIndexed, indexed}

	topic0, err := nonIndexed.TopicID()
	require.NoError(t, err)

	found, err := FindEvent(list, [][]byte{topic0})
	require.NoError(t, err)
	assert.Same(t, nonIndexed, found)
}

func TestFindEventNoMatch(t *testing.T) {

	indexed := transferEvent(true, true)
	_, err := FindEvent(ABI{indexed}, [][]byte{make([]byte, 32)})
	assert.Error(t, err)
}

func TestFindAndDecode(t *testing.T) {

	baz, err := ParseSignature("baz(uint,address)")
	require.NoError(t, err)

	cv, err := baz.Inputs.ParseExternalData([]interface{}{
		50,
		"0x0000000000000000000000000000000000000001",
	})
	require.NoError(t, err)

	callData, err := baz.EncodeCallData(cv)
	require.NoError(t, err)

	found, decoded, err := FindAndDecode(ABI{baz}, callData)
	require.NoError(t, err)
	assert.Same(t, baz, found)
	require.Len(t, decoded.Children, 2)
}

func TestDecodeEventMixedIndexed(t *testing.T) {

	e := transferEvent(true, true)

	valueParams := ParameterArray{{Name: "value", Type: "uint256"}}
	dataCV, err := valueParams.ParseExternalData([]interface{}{1000})
	require.NoError(t, err)
	data, err := dataCV.EncodeABIData()
	require.NoError(t, err)

	fromTopic := make([]byte, 32)
	fromTopic[31] = 0x11
	toTopic := make([]byte, 32)
	toTopic[31] = 0x22

	values, err := e.DecodeEvent([][]byte{fromTopic, toTopic}, data)
	require.NoError(t, err)
	require.Len(t, values, 3)

	assert.Equal(t, "from", values[0].Name)
	assert.True(t, values[0].Indexed)
	assert.Equal(t, "to", values[1].Name)
	assert.True(t, values[1].Indexed)
	assert.Equal(t, "value", values[2].Name)
	assert.False(t, values[2].Indexed)
}

func TestDecodeEventOpaqueTopicHashForDynamicIndexed(t *testing.T) {

	e := &Entry{
		Type: Event,
		Name: "Logged",
		Inputs: ParameterArray{
			{Name: "tag", Type: "string", Indexed: true},
		},
	}

	topicHash := make([]byte, 32)
	topicHash[0] = 0xab

	values, err := e.DecodeEvent([][]byte{topicHash}, []byte{})
	require.NoError(t, err)
	require.Len(t, values, 1)

	opaque, ok := values[0].Value.(OpaqueTopicHash)
	require.True(t, ok)
	assert.Equal(t, topicHash, []byte(opaque))
}

func TestDecodeEventNotEnoughTopics(t *testing.T) {

	e := transferEvent(true, true)
	// Valid data for the unindexed "value" field, so the only thing missing
	// is the second indexed topic.
	_, err := e.DecodeEvent([][]byte{make([]byte, 32)}, make([]byte, 32))
	assert.Error(t, err)
}
