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

func TestDefaultKeccak256MatchesKnownVector(t *testing.T) {

	// keccak256("transfer(address,uint256)")[0:4] is the well-known ERC-20
	// transfer selector.
	e, err := ParseSignature("transfer(address,uint256)")
	require.NoError(t, err)

	id, err := e.GenerateID()
	require.NoError(t, err)

	assert.Equal(t, "a9059cbb", hex.EncodeToString(id))
}

func TestSetKeccak256Override(t *testing.T) {

	original := keccak256Impl
	defer func() { keccak256Impl = original }()

	called := false
	SetKeccak256(func(data []byte) [32]byte {
		called = true
		var out [32]byte
		out[0] = 0xff
		return out
	})

	h := keccak256([]byte("anything"))
	assert.True(t, called)
	assert.Equal(t, byte(0xff), h[0])
}
