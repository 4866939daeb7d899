/*
Copyright 2026, Cossack Labs Limited

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package whitelist

import (
	"errors"
	"sort"

	"github.com/armon/go-radix"
	"github.com/cossacklabs/acra-rasp/policy"
)

// Errors returned by Builder and Decode
var (
	ErrInvalidCheckType = errors.New("whitelist rule has invalid check type")
	ErrMalformed        = errors.New("malformed whitelist data")
)

// Rule bypasses configured action of CheckType for keys starting with Prefix
type Rule struct {
	CheckType policy.CheckType
	Prefix    string
}

// Builder collects rules and serializes them into the format read by Matches.
// Rules are kept in radix tree keyed by prefix with check type mask as value.
type Builder struct {
	tree *radix.Tree
}

// NewBuilder returns empty Builder
func NewBuilder() *Builder {
	return &Builder{tree: radix.New()}
}

func rulePrefix(prefix string) string {
	if prefix == WildcardRule {
		return ""
	}
	return prefix
}

// Add adds rule for check type t. Prefix "*" matches every key.
func (b *Builder) Add(t policy.CheckType, prefix string) error {
	if !t.IsValid() {
		return ErrInvalidCheckType
	}
	prefix = rulePrefix(prefix)
	mask := uint32(1) << uint(t)
	if value, ok := b.tree.Get(prefix); ok {
		mask |= value.(uint32)
	}
	b.tree.Insert(prefix, mask)
	return nil
}

// AddAll adds rule with prefix for every valid check type
func (b *Builder) AddAll(prefix string) {
	for _, t := range policy.ValidCheckTypes() {
		// can't fail for valid types
		_ = b.Add(t, prefix)
	}
}

// Len returns number of distinct prefixes
func (b *Builder) Len() int {
	return b.tree.Len()
}

// Rules returns added rules sorted by prefix and check type
func (b *Builder) Rules() []Rule {
	var rules []Rule
	b.tree.Walk(func(prefix string, value interface{}) bool {
		rules = append(rules, maskToRules(prefix, value.(uint32))...)
		return false
	})
	return rules
}

func maskToRules(prefix string, mask uint32) []Rule {
	var rules []Rule
	if prefix == "" {
		prefix = WildcardRule
	}
	for _, t := range policy.ValidCheckTypes() {
		if mask&(uint32(1)<<uint(t)) != 0 {
			rules = append(rules, Rule{CheckType: t, Prefix: prefix})
		}
	}
	return rules
}

type trieEdge struct {
	label byte
	node  *trieNode
}

type trieNode struct {
	mask     uint32
	children []trieEdge
	offset   uint32
}

func (node *trieNode) child(label byte) *trieNode {
	for _, edge := range node.children {
		if edge.label == label {
			return edge.node
		}
	}
	child := &trieNode{}
	node.children = append(node.children, trieEdge{label: label, node: child})
	return child
}

func (node *trieNode) size() uint32 {
	return nodeFixedSize + uint32(len(node.children))*childSize
}

// effectiveRules drops check type bits already covered by a shorter prefix
func (b *Builder) effectiveRules() map[string]uint32 {
	out := make(map[string]uint32, b.tree.Len())
	b.tree.Walk(func(prefix string, value interface{}) bool {
		var inherited uint32
		b.tree.WalkPath(prefix, func(parent string, parentValue interface{}) bool {
			if parent != prefix {
				inherited |= parentValue.(uint32)
			}
			return false
		})
		if mask := value.(uint32) &^ inherited; mask != 0 {
			out[prefix] = mask
		}
		return false
	})
	return out
}

// Build serializes rules. Returns policy.ErrWhitelistTooLarge if result doesn't fit into policy store.
func (b *Builder) Build() ([]byte, error) {
	root := &trieNode{}
	for prefix, mask := range b.effectiveRules() {
		node := root
		for i := 0; i < len(prefix); i++ {
			node = node.child(prefix[i])
		}
		node.mask |= mask
	}

	// pre-order layout
	var nodes []*trieNode
	cursor := uint32(HeaderSize)
	var layout func(node *trieNode)
	layout = func(node *trieNode) {
		sort.Slice(node.children, func(i, j int) bool {
			return node.children[i].label < node.children[j].label
		})
		node.offset = cursor
		cursor += node.size()
		nodes = append(nodes, node)
		for _, edge := range node.children {
			layout(edge.node)
		}
	}
	layout(root)
	nodeCount := uint32(len(nodes))

	if int(cursor) > policy.MaxWhitelistSize {
		return nil, policy.ErrWhitelistTooLarge
	}
	data := make([]byte, cursor)
	copy(data, Magic)
	byteOrder.PutUint16(data[4:], FormatVersion)
	byteOrder.PutUint32(data[8:], nodeCount)
	byteOrder.PutUint32(data[12:], cursor)
	for _, node := range nodes {
		offset := node.offset
		byteOrder.PutUint32(data[offset:], node.mask)
		byteOrder.PutUint16(data[offset+4:], uint16(len(node.children)))
		entry := offset + nodeFixedSize
		for _, edge := range node.children {
			data[entry] = edge.label
			byteOrder.PutUint32(data[entry+1:], edge.node.offset)
			entry += childSize
		}
	}
	return data, nil
}

// Decode returns rules stored in serialized whitelist, used to inspect compiled data
func Decode(data []byte) ([]Rule, error) {
	h, ok := readHeader(data)
	if !ok {
		return nil, ErrMalformed
	}
	var rules []Rule
	visited := uint32(0)
	var walk func(offset uint32, prefix []byte) error
	walk = func(offset uint32, prefix []byte) error {
		visited++
		if visited > h.nodeCount {
			return ErrMalformed
		}
		mask, count, ok := readNode(data, offset)
		if !ok {
			return ErrMalformed
		}
		rules = append(rules, maskToRules(string(prefix), mask)...)
		for i := 0; i < count; i++ {
			entry := int(offset) + nodeFixedSize + i*childSize
			child := byteOrder.Uint32(data[entry+1:])
			if child <= offset {
				return ErrMalformed
			}
			if err := walk(child, append(prefix, data[entry])); err != nil {
				return err
			}
		}
		return nil
	}
	// pre-order walk over sorted children returns rules sorted by prefix
	if err := walk(HeaderSize, nil); err != nil {
		return nil, err
	}
	return rules, nil
}
