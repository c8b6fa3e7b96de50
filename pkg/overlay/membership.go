// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package overlay

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"
)

// NodeID identifies a node in the membership table.
type NodeID string

// Node is a membership table entry.
type Node struct {
	ID             NodeID  `yaml:"id"`
	Address        string  `yaml:"address"`
	Trust          float64 `yaml:"trust"`
	ValidatorTrust float64 `yaml:"validator_trust"`
}

// Membership exposes the known nodes and their trust scores.
type Membership interface {
	// Nodes returns all nodes in table order.
	Nodes(ctx context.Context) ([]Node, error)
	// Lookup returns the node with the given id.
	Lookup(ctx context.Context, id NodeID) (Node, error)
}

// StaticTable is a Membership backed by a fixed list of nodes.
type StaticTable struct {
	nodes []Node
	index map[NodeID]int
}

// NewStaticTable creates a table from nodes. Later duplicates of an id are
// ignored.
func NewStaticTable(nodes []Node) *StaticTable {
	table := &StaticTable{index: map[NodeID]int{}}
	for _, node := range nodes {
		if _, ok := table.index[node.ID]; ok {
			continue
		}
		table.index[node.ID] = len(table.nodes)
		table.nodes = append(table.nodes, node)
	}
	return table
}

type tableFile struct {
	Nodes []Node `yaml:"nodes"`
}

// LoadStaticTable reads a yaml membership table from path.
//
//	nodes:
//	  - id: node-1
//	    address: 10.0.0.1:7777
//	    trust: 0.93
//	    validator_trust: 1
func LoadStaticTable(path string) (*StaticTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return ParseStaticTable(data)
}

// ParseStaticTable parses a yaml membership table.
func ParseStaticTable(data []byte) (*StaticTable, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, Error.New("invalid table: %v", err)
	}
	for i, node := range file.Nodes {
		if node.ID == "" {
			return nil, Error.New("node %d: missing id", i)
		}
		if node.Address == "" {
			return nil, Error.New("node %q: missing address", node.ID)
		}
	}
	return NewStaticTable(file.Nodes), nil
}

// Nodes implements Membership.
func (table *StaticTable) Nodes(ctx context.Context) ([]Node, error) {
	return append([]Node(nil), table.nodes...), nil
}

// Lookup implements Membership.
func (table *StaticTable) Lookup(ctx context.Context, id NodeID) (Node, error) {
	i, ok := table.index[id]
	if !ok {
		return Node{}, ErrNodeNotFound.New("%s", id)
	}
	return table.nodes[i], nil
}
