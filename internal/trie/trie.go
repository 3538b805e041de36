// Package trie indexes rewrite rules by the literal token keys their match
// patterns start with.
package trie

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

/*
Nodes live in a single arena slice and refer to each other by index. A rule
table is built once and queried at every token position of every file, so
lookups only walk the arena and never allocate besides the result slice.
*/

// NodeIndex is the position of a node in the arena.
type NodeIndex int

// Arena stores all trie nodes. Index 0 is the root.
type Arena struct {
	nodes []arenaNode
}

type arenaNode struct {
	children map[string]NodeIndex
	// values attached to the key sequence ending at this node, in insertion order.
	values []int
}

// NewArena creates an arena holding only the root.
func NewArena() *Arena {
	arena := &Arena{
		nodes: make([]arenaNode, 0, 64),
	}
	arena.nodes = append(arena.nodes, arenaNode{children: make(map[string]NodeIndex)})
	return arena
}

func (a *Arena) newNode() NodeIndex {
	idx := NodeIndex(len(a.nodes))
	a.nodes = append(a.nodes, arenaNode{children: make(map[string]NodeIndex)})
	return idx
}

// Insert attaches value to the node reached by sequence, creating nodes on
// the way. An empty sequence attaches value to the root.
func (a *Arena) Insert(sequence []string, value int) {
	current := NodeIndex(0)
	for _, part := range sequence {
		node := &a.nodes[current]
		childIdx, exists := node.children[part]
		if !exists {
			childIdx = a.newNode()
			// newNode may have grown the slice
			a.nodes[current].children[part] = childIdx
		}
		current = childIdx
	}
	a.nodes[current].values = append(a.nodes[current].values, value)
}

// Prefixes returns the values of every node on the path spelled by keys,
// root first, stopping where the path leaves the trie. next is called with
// the depth and returns the key at that depth, or false when keys run out.
func (a *Arena) Prefixes(next func(depth int) (string, bool)) []int {
	var out []int
	current := NodeIndex(0)
	for depth := 0; ; depth++ {
		out = append(out, a.nodes[current].values...)
		key, ok := next(depth)
		if !ok {
			return out
		}
		child, exists := a.nodes[current].children[key]
		if !exists {
			return out
		}
		current = child
	}
}

// equal checks whether two tries hold the same paths and values.
func (a *Arena) equal(b *Arena) bool {
	if len(a.nodes) != len(b.nodes) {
		return false
	}
	return a.equalNodes(NodeIndex(0), b, NodeIndex(0))
}

func (a *Arena) equalNodes(aIdx NodeIndex, b *Arena, bIdx NodeIndex) bool {
	nodeA := a.nodes[aIdx]
	nodeB := b.nodes[bIdx]

	if !slices.Equal(nodeA.values, nodeB.values) || len(nodeA.children) != len(nodeB.children) {
		return false
	}

	for _, key := range sortedKeys(nodeA.children) {
		childB, exists := nodeB.children[key]
		if !exists || !a.equalNodes(nodeA.children[key], b, childB) {
			return false
		}
	}
	return true
}

// debugString renders the trie as `key(child...)` with the values of a
// node written as `[1,2]` before its children.
func (a *Arena) debugString() string {
	var sb strings.Builder
	a.writeNode(&sb, NodeIndex(0))
	return sb.String()
}

func (a *Arena) writeNode(sb *strings.Builder, idx NodeIndex) {
	node := a.nodes[idx]
	if len(node.values) > 0 {
		sb.WriteByte('[')
		for i, v := range node.values {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(v))
		}
		sb.WriteByte(']')
	}
	for _, key := range sortedKeys(node.children) {
		sb.WriteString(key)
		sb.WriteByte('(')
		a.writeNode(sb, node.children[key])
		sb.WriteByte(')')
	}
}

func sortedKeys(m map[string]NodeIndex) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Trie maps key sequences to rule indices.
type Trie struct {
	arena *Arena
	size  int
}

func New() *Trie {
	return &Trie{arena: NewArena()}
}

// Insert records value under sequence.
func (t *Trie) Insert(sequence []string, value int) {
	t.arena.Insert(sequence, value)
	t.size++
}

// Len returns the number of inserted values.
func (t *Trie) Len() int { return t.size }

// Lookup returns the values stored under every prefix of keys, sorted
// ascending so that rules keep their declaration order.
func (t *Trie) Lookup(next func(depth int) (string, bool)) []int {
	out := t.arena.Prefixes(next)
	sort.Ints(out)
	return out
}

// lookupKeys is Lookup over a fixed key slice.
func (t *Trie) lookupKeys(keys []string) []int {
	return t.Lookup(func(depth int) (string, bool) {
		if depth >= len(keys) {
			return "", false
		}
		return keys[depth], true
	})
}

func (t *Trie) equal(other *Trie) bool {
	return t.arena.equal(other.arena)
}

func (t *Trie) debugString() string {
	return t.arena.debugString()
}
