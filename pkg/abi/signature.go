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

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/evm-abi/internal/abimsgs"
)

// sigParser is a hand-rolled recursive descent parser for the compact
// textual signature grammar - things like "transfer(address,uint256)" or a
// bare type string like "uint256[][3]" - as an alternative to building a
// type tree out of JSON ABI entries.
type sigParser struct {
	ctx context.Context
	s   string
	pos int
}

func (p *sigParser) peek() (byte, bool) {
	if p.pos >= len(p.s) {
		return 0, false
	}
	return p.s[p.pos], true
}

func (p *sigParser) errUnexpected() error {
	if p.pos >= len(p.s) {
		return i18n.NewError(p.ctx, abimsgs.MsgUnexpectedEndOfInput, p.s)
	}
	return i18n.NewError(p.ctx, abimsgs.MsgUnexpectedToken, p.s[p.pos], p.pos, p.s)
}

func (p *sigParser) expectByte(c byte) error {
	b, ok := p.peek()
	if !ok || b != c {
		return p.errUnexpected()
	}
	p.pos++
	return nil
}

// parseIdent matches Ident := [A-Za-z_][A-Za-z0-9_]*
func (p *sigParser) parseIdent() (string, error) {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		isDigit := c >= '0' && c <= '9'
		if isLetter || (p.pos > start && isDigit) {
			p.pos++
		} else {
			break
		}
	}
	if p.pos == start {
		return "", p.errUnexpected()
	}
	return p.s[start:p.pos], nil
}

// parseDigits consumes a run of ASCII digits, if present.
func (p *sigParser) parseDigits() (string, bool) {
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	return p.s[start:p.pos], p.pos > start
}

// scanArraySuffixes greedily consumes zero or more Suffix := '[' Digits? ']'
// productions, returning the consumed text verbatim so it can be handed to
// parseArrays, which already knows how to build nested array components
// from exactly this textual form.
func (p *sigParser) scanArraySuffixes() (string, error) {
	start := p.pos
	for {
		b, ok := p.peek()
		if !ok || b != '[' {
			break
		}
		p.pos++
		for {
			b2, ok2 := p.peek()
			if ok2 && b2 >= '0' && b2 <= '9' {
				p.pos++
			} else {
				break
			}
		}
		if err := p.expectByte(']'); err != nil {
			return "", err
		}
	}
	return p.s[start:p.pos], nil
}

// parseType matches Type := Base Suffix*
func (p *sigParser) parseType() (*typeComponent, error) {
	tc, err := p.parseBase()
	if err != nil {
		return nil, err
	}
	arrays, err := p.scanArraySuffixes()
	if err != nil {
		return nil, err
	}
	if arrays != "" {
		return parseArrays(p.ctx, p.s, tc, arrays)
	}
	return tc, nil
}

// parseBase matches Base, the alternation of elementary type names, a tuple,
// and the enum alias for uint8.
func (p *sigParser) parseBase() (*typeComponent, error) {
	if b, ok := p.peek(); ok && b == '(' {
		return p.parseTuple()
	}

	// Elementary type names are lower-case letters only - any digits that
	// follow are the M / MxN suffix, handled below.
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] >= 'a' && p.s[p.pos] <= 'z' {
		p.pos++
	}
	if p.pos == start {
		return nil, p.errUnexpected()
	}
	name := p.s[start:p.pos]

	if name == "enum" {
		// `enum` appears in textual signatures only - normalise to uint8.
		tc := &typeComponent{cType: ElementaryComponent, elementaryType: elementaryTypes["uint"], elementarySuffix: "8"}
		if err := parseMSuffix(p.ctx, p.s, tc, "8"); err != nil {
			return nil, err
		}
		return tc, nil
	}

	et, ok := elementaryTypes[name]
	if !ok {
		return nil, i18n.NewError(p.ctx, abimsgs.MsgUnsupportedABIType, name, p.s)
	}
	tc := &typeComponent{cType: ElementaryComponent, elementaryType: et}

	switch et.suffixType {
	case suffixTypeNone:
		if digits, hasDigits := p.parseDigits(); hasDigits {
			return nil, i18n.NewError(p.ctx, abimsgs.MsgInvalidABISuffix, digits, p.s)
		}
	case suffixTypeMRequired, suffixTypeMOptional:
		digits, hasDigits := p.parseDigits()
		suffix := digits
		if !hasDigits {
			if et.suffixType == suffixTypeMRequired {
				suffix = et.defaultSuffix
			}
		}
		if suffix != "" {
			if err := parseMSuffix(p.ctx, p.s, tc, suffix); err != nil {
				return nil, err
			}
			tc.elementarySuffix = suffix
		} else {
			tc.elementarySuffix = ""
		}
	case suffixTypeMxNRequired:
		mDigits, hasDigits := p.parseDigits()
		var suffix string
		if !hasDigits {
			suffix = et.defaultSuffix
		} else {
			if err := p.expectByte('x'); err != nil {
				return nil, err
			}
			nDigits, nOk := p.parseDigits()
			if !nOk {
				return nil, i18n.NewError(p.ctx, abimsgs.MsgInvalidABISuffix, mDigits+"x", p.s)
			}
			suffix = mDigits + "x" + nDigits
		}
		if err := parseMxNSuffix(p.ctx, p.s, tc, suffix); err != nil {
			return nil, err
		}
		tc.elementarySuffix = suffix
	}

	return tc, nil
}

// parseTuple matches '(' TypeList? ')'
func (p *sigParser) parseTuple() (*typeComponent, error) {
	if err := p.expectByte('('); err != nil {
		return nil, err
	}
	tc := &typeComponent{cType: TupleComponent}
	if b, ok := p.peek(); ok && b == ')' {
		p.pos++
		return tc, nil
	}
	for {
		child, err := p.parseType()
		if err != nil {
			return nil, err
		}
		tc.tupleChildren = append(tc.tupleChildren, child)
		if b, ok := p.peek(); ok && b == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expectByte(')'); err != nil {
		return nil, err
	}
	return tc, nil
}

// ParseTypeString parses a single type string, such as "uint256[][3]" or
// "(address,uint256)", in isolation - without a wrapping selector.
func ParseTypeString(text string) (TypeComponent, error) {
	return ParseTypeStringCtx(context.Background(), text)
}

func ParseTypeStringCtx(ctx context.Context, text string) (TypeComponent, error) {
	p := &sigParser{ctx: ctx, s: text}
	tc, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, p.errUnexpected()
	}
	return tc, nil
}

// ParseSignature parses a compact textual signature, such as
// "transfer(address,uint256)", into an Entry whose Inputs are already fully
// typed (no JSON, no separate Validate call required).
//
// The returned Entry always has Type Function; callers that need a
// different kind (event, error) should set e.Type after parsing.
func ParseSignature(text string) (*Entry, error) {
	return ParseSignatureCtx(context.Background(), text)
}

func ParseSignatureCtx(ctx context.Context, text string) (*Entry, error) {
	p := &sigParser{ctx: ctx, s: text}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectByte('('); err != nil {
		return nil, err
	}

	var inputs []*typeComponent
	if b, ok := p.peek(); !ok || b != ')' {
		for {
			tc, err := p.parseType()
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, tc)
			if b2, ok2 := p.peek(); ok2 && b2 == ',' {
				p.pos++
				continue
			}
			break
		}
	}
	if err := p.expectByte(')'); err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, p.errUnexpected()
	}

	params := make(ParameterArray, len(inputs))
	for i, tc := range inputs {
		params[i] = &Parameter{Type: tc.String(), parsed: tc}
	}
	return &Entry{Type: Function, Name: name, Inputs: params}, nil
}
