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
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedIntBoundsExcludesTrueMinimum(t *testing.T) {

	min, max := signedIntBounds(8)
	assert.Equal(t, big.NewInt(127), max)
	// The true two's-complement minimum for int8 is -128, but this codec's
	// lower bound is exclusive of it.
	assert.Equal(t, big.NewInt(-127), min)

	assert.True(t, checkSignedIntFits(big.NewInt(-127), 8))
	assert.False(t, checkSignedIntFits(big.NewInt(-128), 8))
	assert.True(t, checkSignedIntFits(big.NewInt(127), 8))
	assert.False(t, checkSignedIntFits(big.NewInt(128), 8))
}

func TestSignedIntBounds256(t *testing.T) {

	min, max := signedIntBounds(256)
	assert.True(t, checkSignedIntFits(max, 256))
	assert.False(t, checkSignedIntFits(new(big.Int).Add(max, big.NewInt(1)), 256))
	assert.True(t, checkSignedIntFits(min, 256))
	assert.False(t, checkSignedIntFits(new(big.Int).Sub(min, big.NewInt(1)), 256))
}

func TestCheckUnsignedIntFits(t *testing.T) {

	assert.True(t, checkUnsignedIntFits(big.NewInt(255), 8))
	assert.False(t, checkUnsignedIntFits(big.NewInt(256), 8))
	assert.False(t, checkUnsignedIntFits(big.NewInt(-1), 8))
}

func TestTwosComplementRoundTrip(t *testing.T) {

	for _, v := range []int64{0, 1, -1, 127, -127, 1000000, -1000000} {
		i := big.NewInt(v)
		b := serializeInt256TwosComplementBytes(i)
		require.Len(t, b, 32)
		back := parseInt256TwosComplementBytes(b)
		// Compare by value: *big.Int zero values may differ in their
		// internal slice representation.
		assert.Equal(t, 0, i.Cmp(back), "value %d", v)
	}
}
