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
// Package whitelist implements the compact serialized prefix trie used to bypass policy actions
// for (check type, request key) pairs. Matches reads the serialized form in place, Builder compiles rules into it.
//
// Layout (little endian):
//
//	header: magic "RSWL" | version uint16 | reserved uint16 | node count uint32 | total size uint32
//	node:   mask uint32 | child count uint16 | child count x (label byte | child offset uint32)
//
// Root node follows the header. Nodes are stored in pre-order, children sorted by label, so every child offset
// is greater than its parent's.
// Mask has bit (1 << CheckType) set when some rule for that check type ends at the node.
package whitelist

import (
	"encoding/binary"

	"github.com/cossacklabs/acra-rasp/policy"
)

// Format constants
const (
	Magic         = "RSWL"
	FormatVersion = 1
	HeaderSize    = 16
	nodeFixedSize = 6
	childSize     = 5
)

// WildcardRule is a rule which matches every key
const WildcardRule = "*"

var byteOrder = binary.LittleEndian

type header struct {
	version   uint16
	nodeCount uint32
	size      uint32
}

func readHeader(data []byte) (header, bool) {
	if len(data) < HeaderSize || string(data[:4]) != Magic {
		return header{}, false
	}
	h := header{
		version:   byteOrder.Uint16(data[4:6]),
		nodeCount: byteOrder.Uint32(data[8:12]),
		size:      byteOrder.Uint32(data[12:16]),
	}
	// size mismatch means truncated or padded data
	if h.version != FormatVersion || h.nodeCount == 0 || uint64(h.size) != uint64(len(data)) {
		return header{}, false
	}
	return h, true
}

// readNode returns mask and children count of node at offset or false if node doesn't fit into data
func readNode(data []byte, offset uint32) (uint32, int, bool) {
	if uint64(offset)+nodeFixedSize > uint64(len(data)) {
		return 0, 0, false
	}
	mask := byteOrder.Uint32(data[offset:])
	count := int(byteOrder.Uint16(data[offset+4:]))
	if uint64(offset)+nodeFixedSize+uint64(count)*childSize > uint64(len(data)) {
		return 0, 0, false
	}
	return mask, count, true
}

// findChild searches label among sorted children of node at offset
func findChild(data []byte, offset uint32, count int, label byte) (uint32, bool) {
	base := int(offset) + nodeFixedSize
	low, high := 0, count
	for low < high {
		middle := int(uint(low+high) >> 1)
		entry := base + middle*childSize
		current := data[entry]
		switch {
		case current == label:
			return byteOrder.Uint32(data[entry+1:]), true
		case current < label:
			low = middle + 1
		default:
			high = middle
		}
	}
	return 0, false
}

// Matches returns true if whitelist has rule for check type t which is a prefix of key.
// Empty, truncated or malformed data and invalid check types never match.
func Matches(data []byte, t policy.CheckType, key string) bool {
	if !t.IsValid() {
		return false
	}
	if _, ok := readHeader(data); !ok {
		return false
	}
	bit := uint32(1) << uint(t)
	offset := uint32(HeaderSize)
	for i := 0; ; i++ {
		mask, count, ok := readNode(data, offset)
		if !ok {
			return false
		}
		if mask&bit != 0 {
			return true
		}
		if i == len(key) {
			return false
		}
		child, ok := findChild(data, offset, count, key[i])
		// offsets grow in pre-order, anything else is corrupted data
		if !ok || child <= offset {
			return false
		}
		offset = child
	}
}

// Valid returns true if data has correct header. It doesn't walk nodes.
func Valid(data []byte) bool {
	_, ok := readHeader(data)
	return ok
}

// NodeCount returns node count from header or 0 for invalid data
func NodeCount(data []byte) int {
	h, ok := readHeader(data)
	if !ok {
		return 0
	}
	return int(h.nodeCount)
}
