package emu

import (
	"fmt"
	"sort"
)

// DefaultMemorySize is the number of words in APEX data memory.
const DefaultMemorySize = 4096

// Memory is a flat, word-addressed data memory. Address a holds one 32-bit
// word; there is no byte addressing.
type Memory struct {
	words []int32
}

// NewMemory creates a zeroed data memory of size words.
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &Memory{words: make([]int32, size)}
}

// Size returns the number of addressable words.
func (m *Memory) Size() int {
	return len(m.words)
}

func (m *Memory) check(addr int32) error {
	if addr < 0 || int(addr) >= len(m.words) {
		return fmt.Errorf("%w: %d (data memory has %d words)",
			ErrInvalidAddress, addr, len(m.words))
	}
	return nil
}

// Read returns the word at addr.
func (m *Memory) Read(addr int32) (int32, error) {
	if err := m.check(addr); err != nil {
		return 0, err
	}
	return m.words[addr], nil
}

// Write stores value at addr.
func (m *Memory) Write(addr int32, value int32) error {
	if err := m.check(addr); err != nil {
		return err
	}
	m.words[addr] = value
	return nil
}

// NonZero returns every non-zero word keyed by address.
func (m *Memory) NonZero() map[int32]int32 {
	out := make(map[int32]int32)
	for i, w := range m.words {
		if w != 0 {
			out[int32(i)] = w
		}
	}
	return out
}

// NonZeroAddrs returns the addresses of non-zero words in ascending order.
func (m *Memory) NonZeroAddrs() []int32 {
	nz := m.NonZero()
	addrs := make([]int32, 0, len(nz))
	for a := range nz {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Reset zeroes all of memory.
func (m *Memory) Reset() {
	for i := range m.words {
		m.words[i] = 0
	}
}

// Clone returns a deep copy of the memory.
func (m *Memory) Clone() *Memory {
	c := &Memory{words: make([]int32, len(m.words))}
	copy(c.words, m.words)
	return c
}
