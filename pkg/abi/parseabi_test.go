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

const sampleERC20ABI = `[
	{
		"type": "function",
		"name": "transfer",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "value", "type": "uint256"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"type": "event",
		"name": "Transfer",
		"inputs": [
			{"name": "from", "type": "address", "indexed": true},
			{"name": "to", "type": "address", "indexed": true},
			{"name": "value", "type": "uint256", "indexed": false}
		]
	},
	{
		"type": "fallback"
	}
]`

func TestParseABIBasic(t *testing.T) {

	parsed, err := ParseABI([]byte(sampleERC20ABI), true)
	require.NoError(t, err)
	require.Len(t, parsed, 3)

	functions := parsed.Functions()
	require.Contains(t, functions, "transfer")

	events := parsed.Events()
	require.Contains(t, events, "Transfer")
}

func TestParseABIExcludesEventsWhenNotRequested(t *testing.T) {

	parsed, err := ParseABI([]byte(sampleERC20ABI), false)
	require.NoError(t, err)

	for _, e := range parsed {
		assert.NotEqual(t, Event, e.Type)
	}
}

func TestParseABISkipsEntryWithUnrecognizedType(t *testing.T) {

	doc := `[
		{"type": "function", "name": "good", "inputs": [{"name":"a","type":"uint256"}]},
		{"type": "function", "name": "bad", "inputs": [{"name":"a","type":"someCustomStruct"}]}
	]`

	parsed, err := ParseABI([]byte(doc), true)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "good", parsed[0].Name)
}

func TestParseABIInvalidJSON(t *testing.T) {

	_, err := ParseABI([]byte("not json"), true)
	assert.Error(t, err)
}

func TestParseABIDispatchIDPerEntryType(t *testing.T) {

	parsed, err := ParseABI([]byte(sampleERC20ABI), true)
	require.NoError(t, err)

	var fn, ev, fb *Entry
	for _, e := range parsed {
		switch e.Type {
		case Function:
			fn = e
		case Event:
			ev = e
		case Fallback:
			fb = e
		}
	}
	require.NotNil(t, fn)
	require.NotNil(t, ev)
	require.NotNil(t, fb)

	fnID, err := fn.DispatchID()
	require.NoError(t, err)
	assert.Len(t, fnID, 4)

	evID, err := ev.DispatchID()
	require.NoError(t, err)
	assert.Len(t, evID, 32)

	fbID, err := fb.DispatchID()
	require.NoError(t, err)
	assert.Nil(t, fbID)
}
