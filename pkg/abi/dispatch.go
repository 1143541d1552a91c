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
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/kaleido-io/evm-abi/internal/abimsgs"
)

// ParseABI unmarshals a raw ABI JSON document and applies the type sanity
// gate: any entry containing a leaf type that isn't one of the base
// Solidity keywords (optionally suffixed with digits and array dimensions)
// is dropped with a logged warning rather than failing the whole document -
// this is what lets a library of contract ABIs coexist with the occasional
// entry referencing an external struct or contract type by name.
//
// Events are included in the result only when includeEvents is true.
func ParseABI(tree []byte, includeEvents bool) (ABI, error) {
	return ParseABICtx(context.Background(), tree, includeEvents)
}

func ParseABICtx(ctx context.Context, tree []byte, includeEvents bool) (ABI, error) {
	var raw ABI
	if err := json.Unmarshal(tree, &raw); err != nil {
		return nil, err
	}

	result := make(ABI, 0, len(raw))
	for _, e := range raw {
		if e.Type == "" {
			continue
		}
		if e.Type == Event && !includeEvents {
			continue
		}
		if e.Type == Fallback {
			result = append(result, &Entry{Type: Fallback})
			continue
		}
		if err := e.ValidateCtx(ctx); err != nil {
			log.L(ctx).Warnf("Skipping ABI entry '%s': %s", e.Name, err)
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

// DispatchID returns the identifier used to route incoming call data or log
// topics to this entry: four bytes for functions/constructors/errors, the
// full 32-byte topic hash for events, and nil for fallback (which has none).
func (e *Entry) DispatchID() ([]byte, error) {
	return e.DispatchIDCtx(context.Background())
}

func (e *Entry) DispatchIDCtx(ctx context.Context) ([]byte, error) {
	switch e.Type {
	case Fallback:
		return nil, nil
	case Event:
		return e.TopicIDCtx(ctx)
	default:
		return e.GenerateIDCtx(ctx)
	}
}

// FindByMethodID performs a linear scan of list for the first non-event
// entry whose 4-byte method ID matches id.
func FindByMethodID(list ABI, id []byte) (*Entry, error) {
	return FindByMethodIDCtx(context.Background(), list, id)
}

func FindByMethodIDCtx(ctx context.Context, list ABI, id []byte) (*Entry, error) {
	for _, e := range list {
		if e.Type == Event || e.Type == Fallback {
			continue
		}
		eid, err := e.GenerateIDCtx(ctx)
		if err != nil {
			return nil, err
		}
		if bytes.Equal(eid, id) {
			return e, nil
		}
	}
	return nil, i18n.NewError(ctx, abimsgs.MsgNoSelectorMatch, hex.EncodeToString(id))
}

// FindEvent performs a linear scan of list for an Event entry whose full
// 32-byte topic hash matches topics[0], disambiguating between overloaded
// events sharing a signature-but-not-indexedness by comparing the number of
// indexed parameters to the number of topics supplied beyond topics[0].
//
// topics follows the same convention as an EVM log's Topics field: topics[0]
// is topic0 (the event's signature hash), and topics[1:] are the values of
// the event's indexed parameters, in order.
func FindEvent(list ABI, topics [][]byte) (*Entry, error) {
	return FindEventCtx(context.Background(), list, topics)
}

func FindEventCtx(ctx context.Context, list ABI, topics [][]byte) (*Entry, error) {
	if len(topics) == 0 {
		return nil, i18n.NewError(ctx, abimsgs.MsgNoEventMatch, "", 0)
	}
	topic0 := topics[0]
	indexedPresent := 0
	for _, t := range topics[1:] {
		if t != nil {
			indexedPresent++
		}
	}
	for _, e := range list {
		if e.Type != Event {
			continue
		}
		id, err := e.TopicIDCtx(ctx)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(id, topic0) {
			continue
		}
		indexedCount := 0
		for _, in := range e.Inputs {
			if in.Indexed {
				indexedCount++
			}
		}
		if indexedCount == indexedPresent {
			return e, nil
		}
	}
	return nil, i18n.NewError(ctx, abimsgs.MsgNoEventMatch, hex.EncodeToString(topic0), indexedPresent)
}

// FindAndDecode composes FindByMethodID with DecodeABIInputs: it extracts
// the leading 4 bytes of b as a method ID, locates the matching entry in
// list, and decodes the remainder of b against that entry's inputs.
func FindAndDecode(list ABI, b []byte) (*Entry, *ComponentValue, error) {
	return FindAndDecodeCtx(context.Background(), list, b)
}

func FindAndDecodeCtx(ctx context.Context, list ABI, b []byte) (*Entry, *ComponentValue, error) {
	if len(b) < 4 {
		return nil, nil, i18n.NewError(ctx, abimsgs.MsgNotEnoughtBytesABISignature)
	}
	e, err := FindByMethodIDCtx(ctx, list, b[0:4])
	if err != nil {
		return nil, nil, err
	}
	cv, err := e.DecodeABIInputsCtx(ctx, b)
	return e, cv, err
}

// EventValue is one decoded field of an event log, alongside the metadata
// needed to interpret it: its declared name, canonical type string, and
// whether it arrived as an indexed topic or as part of the unindexed data
// blob.
//
// Value holds a *ComponentValue for every field whose original value could
// be recovered - which is always true for unindexed fields, and true for
// indexed fields of a static type. For an indexed field of a dynamic type
// (string, bytes, any array or tuple), the EVM only ever stores the field's
// own keccak hash in the topic, so the original value is gone; Value holds
// an OpaqueTopicHash instead.
type EventValue struct {
	Name    string
	Type    string
	Indexed bool
	Value   interface{}
}

// OpaqueTopicHash is the 32-byte keccak hash an EVM log stores in place of
// an indexed parameter whose type is dynamic. There is no way to recover the
// original value from it.
type OpaqueTopicHash []byte

// DecodeEvent decodes an event log into its fields, given the indexed topic
// values (NOT including topic0 - the selector already carries the
// information topic0 would confirm) and the unindexed data blob.
func (e *Entry) DecodeEvent(indexedTopics [][]byte, data []byte) ([]*EventValue, error) {
	return e.DecodeEventCtx(context.Background(), indexedTopics, data)
}

func (e *Entry) DecodeEventCtx(ctx context.Context, indexedTopics [][]byte, data []byte) ([]*EventValue, error) {
	unindexedParams := make(ParameterArray, 0, len(e.Inputs))
	for _, p := range e.Inputs {
		if !p.Indexed {
			unindexedParams = append(unindexedParams, p)
		}
	}
	unindexedCV, err := unindexedParams.DecodeABIDataCtx(ctx, data, 0)
	if err != nil {
		return nil, err
	}

	results := make([]*EventValue, len(e.Inputs))
	unindexedIdx := 0
	indexedIdx := 0
	for i, p := range e.Inputs {
		ev := &EventValue{Name: p.Name, Type: p.Type, Indexed: p.Indexed}
		if p.Indexed {
			if indexedIdx >= len(indexedTopics) {
				return nil, i18n.NewError(ctx, abimsgs.MsgNotEnoughTopics, countIndexed(e.Inputs), len(indexedTopics))
			}
			topic := indexedTopics[indexedIdx]
			indexedIdx++

			tc, err := p.typeComponentTreeCtx(ctx)
			if err != nil {
				return nil, err
			}
			if isDynamicType(tc) {
				opaque := make(OpaqueTopicHash, len(topic))
				copy(opaque, topic)
				ev.Value = opaque
			} else {
				if len(topic) != 32 {
					return nil, i18n.NewError(ctx, abimsgs.MsgTopicWrongLength, p.Name, len(topic))
				}
				_, cv, err := decodeABIElement(ctx, p.Name, topic, 0, 0, tc)
				if err != nil {
					return nil, err
				}
				ev.Value = cv
			}
		} else {
			ev.Value = unindexedCV.Children[unindexedIdx]
			unindexedIdx++
		}
		results[i] = ev
	}
	return results, nil
}

func countIndexed(inputs ParameterArray) int {
	n := 0
	for _, p := range inputs {
		if p.Indexed {
			n++
		}
	}
	return n
}
