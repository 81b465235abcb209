package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shivasurya/uafscan/internal/cfg"
	"github.com/shivasurya/uafscan/internal/svfg"
)

// Load reads and parses a snapshot file from path.
func Load(path string) (*Graph, Deallocators, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loader: %w", err)
	}
	return Parse(data)
}

// Parse builds a Graph and its deallocator set from raw snapshot JSON.
func Parse(data []byte) (*Graph, Deallocators, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil, fmt.Errorf("loader: invalid snapshot: %w", err)
	}

	g := newGraph()

	if err := g.loadFunctions(snap.Functions); err != nil {
		return nil, nil, err
	}
	if err := g.loadNodes(snap.Nodes); err != nil {
		return nil, nil, err
	}
	// Call sites are interned before edges so that an edge and a PAG entry
	// naming the same call site agree on its CallSiteID regardless of which
	// section of the snapshot is processed first.
	if err := g.loadCallSites(snap.CallSites); err != nil {
		return nil, nil, err
	}
	if err := g.loadEdges(snap.Edges); err != nil {
		return nil, nil, err
	}
	g.resolveUsers()

	dealloc := make(Deallocators, len(snap.Deallocators))
	for _, fn := range snap.Deallocators {
		dealloc[fn] = true
	}

	return g, dealloc, nil
}

func (g *Graph) loadFunctions(functions []FunctionSnapshot) error {
	for _, fn := range functions {
		graph := cfg.NewGraph(fn.Name)
		for _, b := range fn.Blocks {
			bt, err := blockType(b.Type)
			if err != nil {
				return err
			}
			graph.AddBlock(&cfg.BasicBlock{
				ID:           b.ID,
				Type:         bt,
				Predecessors: append([]string(nil), b.Predecessors...),
				Successors:   append([]string(nil), b.Successors...),
				Condition:    b.Condition,
				TrueSucc:     b.TrueSucc,
				FalseSucc:    b.FalseSucc,
			})
			g.blockFunc[b.ID] = fn.Name
		}
		g.cfgs[fn.Name] = graph

		for _, b := range fn.Blocks {
			instrs := make([]*svfg.Instruction, 0, len(b.Instructions))
			for idx, is := range b.Instructions {
				kind, err := instrKind(is.Kind)
				if err != nil {
					return err
				}
				instr := &svfg.Instruction{
					ID:             is.ID,
					Kind:           kind,
					Function:       fn.Name,
					Block:          b.ID,
					Index:          idx,
					Text:           is.Text,
					File:           is.File,
					Line:           is.Line,
					PointerOperand: is.PointerOperand,
					CallTarget:     is.CallTarget,
					CallArgs:       append([]string(nil), is.CallArgs...),
				}
				if _, dup := g.instructions[instr.ID]; dup {
					return fmt.Errorf("loader: duplicate instruction id %q", instr.ID)
				}
				g.instructions[instr.ID] = instr
				instrs = append(instrs, instr)
				// stash the declared user IDs; resolved to pointers once every
				// instruction in the snapshot has been parsed.
				g.pendingUsers = append(g.pendingUsers, pendingUser{from: instr, ids: is.Users})
			}
			g.blockInstrs[b.ID] = instrs
		}
	}
	return nil
}

func (g *Graph) loadNodes(nodes []NodeSnapshot) error {
	for _, ns := range nodes {
		kind, err := nodeKind(ns.Kind)
		if err != nil {
			return err
		}
		node := &svfg.Node{
			ID:       svfg.NodeID(ns.ID),
			Kind:     kind,
			Function: ns.Function,
			Block:    ns.Block,
			Value:    ns.Value,
		}
		if ns.InstructionID != "" {
			instr, ok := g.instructions[ns.InstructionID]
			if !ok {
				return fmt.Errorf("loader: node %q references unknown instruction %q", ns.ID, ns.InstructionID)
			}
			node.Instruction = instr
		}
		g.nodes[node.ID] = node
	}
	return nil
}

func (g *Graph) loadCallSites(sites []CallSiteSnapshot) error {
	for _, cs := range sites {
		id := g.internCallSite(cs.ID)
		instr, ok := g.instructions[cs.InstructionID]
		if !ok {
			return fmt.Errorf("loader: call site %q references unknown instruction %q", cs.ID, cs.InstructionID)
		}
		g.callSiteInstr[id] = instr
		if cs.Callee != "" {
			g.callSiteCallee[id] = cs.Callee
		}
		args := make([]svfg.NodeID, len(cs.Args))
		for i, a := range cs.Args {
			args[i] = svfg.NodeID(a)
		}
		g.callSiteArgs[id] = args
	}
	return nil
}

func (g *Graph) loadEdges(edges []EdgeSnapshot) error {
	for _, es := range edges {
		kind, err := edgeKind(es.Kind)
		if err != nil {
			return err
		}
		edge := svfg.Edge{
			From: svfg.NodeID(es.From),
			To:   svfg.NodeID(es.To),
			Kind: kind,
		}
		if kind.IsInter() {
			if es.CallSite == "" {
				return fmt.Errorf("loader: inter-procedural edge %s->%s missing call_site", es.From, es.To)
			}
			edge.CallSite = g.internCallSite(es.CallSite)
		}
		g.outEdges[edge.From] = append(g.outEdges[edge.From], edge)
		g.inEdges[edge.To] = append(g.inEdges[edge.To], edge)
	}
	return nil
}

// resolveUsers fills in svfg.Instruction.Users now that every instruction in
// the snapshot has been parsed and registered by ID.
func (g *Graph) resolveUsers() {
	for _, pu := range g.pendingUsers {
		for _, id := range pu.ids {
			if u, ok := g.instructions[id]; ok {
				pu.from.Users = append(pu.from.Users, u)
			}
		}
	}
	g.pendingUsers = nil
}

type pendingUser struct {
	from *svfg.Instruction
	ids  []string
}
