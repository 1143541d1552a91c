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

import "golang.org/x/crypto/sha3"

// Keccak256Func is the dependency-injection point for the hash primitive
// this package needs: Ethereum's Keccak-256 (the pre-standardization
// variant - not NIST SHA-3). Selectors and event topics are derived from
// whatever implementation is installed here.
type Keccak256Func func(data []byte) [32]byte

var keccak256Impl Keccak256Func = defaultKeccak256

// SetKeccak256 overrides the Keccak-256 implementation used to derive
// method selectors and event topics. It is intended to be called once,
// during process initialization - this package never calls it itself,
// and reads the installed function concurrently thereafter.
func SetKeccak256(h Keccak256Func) {
	keccak256Impl = h
}

func defaultKeccak256(data []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func keccak256(data []byte) []byte {
	h := keccak256Impl(data)
	return h[:]
}
