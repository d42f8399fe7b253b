// Package tree は CART 方式の回帰木を提供する。
//
// 木は二分木で、内部ノードは「特徴量 > 閾値」で分岐し、真なら左（Left）、
// 偽（閾値と等しい場合を含む）なら右（Right）に進む。葉は定数（RegressionLeaf）
// または局所線形モデル（ModelLeaf）を持つ。
//
// 低レベル API は Build / TreeForecast / CreateForecast、scikit-learn 風の
// API は DecisionTreeRegressor。
package tree

import (
	"fmt"
	"math"
	"strings"
)

// NodeKind distinguishes the two cases of Node.
type NodeKind int

const (
	// LeafNode は予測値（Payload）を持つ終端ノード
	LeafNode NodeKind = iota
	// InternalNode は分割条件と二つの子を持つノード
	InternalNode
)

func (k NodeKind) String() string {
	if k == InternalNode {
		return "internal"
	}
	return "leaf"
}

// Node is one node of a regression tree. Feature, Threshold, Left and Right are
// set only on internal nodes, Payload only on leaves.
type Node struct {
	Kind NodeKind

	Feature   int
	Threshold float64
	// Left は Feature の値が Threshold より大きい行の部分木
	Left *Node
	// Right は Threshold 以下の行の部分木
	Right *Node

	Payload Payload

	// NSamples は学習時にこのノードに到達した行数
	NSamples int
	// Error は学習時の部分集合に対する LeafStrategy の誤差
	Error float64
}

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool { return n.Kind == LeafNode }

// Tree is a built regression tree. Leaf records the strategy that produced the
// leaf payloads so forecasting can pick the matching evaluator.
type Tree struct {
	Root      *Node
	Leaf      LeafKind
	NFeatures int
}

// Walk visits every node in pre-order (node, Left, Right). Root depth is 0.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if n == nil {
			return
		}
		fn(n, depth)
		if n.Kind == InternalNode {
			visit(n.Left, depth+1)
			visit(n.Right, depth+1)
		}
	}
	visit(t.Root, 0)
}

// Depth は最も深い葉の深さを返す（葉のみの木は 0）
func (t *Tree) Depth() int {
	depth := 0
	t.Walk(func(n *Node, d int) {
		if d > depth {
			depth = d
		}
	})
	return depth
}

// NLeaves は葉の数を返す
func (t *Tree) NLeaves() int {
	count := 0
	t.Walk(func(n *Node, _ int) {
		if n.IsLeaf() {
			count++
		}
	})
	return count
}

// NInternal は内部ノードの数を返す
func (t *Tree) NInternal() int {
	count := 0
	t.Walk(func(n *Node, _ int) {
		if !n.IsLeaf() {
			count++
		}
	})
	return count
}

// FeatureImportances returns, per feature, the share of the total error
// reduction achieved by splits on that feature. The result sums to 1 unless
// the tree has no finite reduction, in which case it is all zeros.
func (t *Tree) FeatureImportances() []float64 {
	importances := make([]float64, t.NFeatures)
	total := 0.0
	t.Walk(func(n *Node, _ int) {
		if n.IsLeaf() {
			return
		}
		reduction := n.Error - n.Left.Error - n.Right.Error
		// ModelLeaf の特異な親ノードは誤差が +Inf になる
		if math.IsInf(reduction, 0) || math.IsNaN(reduction) || reduction < 0 {
			return
		}
		importances[n.Feature] += reduction
		total += reduction
	})
	if total > 0 {
		for i := range importances {
			importances[i] /= total
		}
	}
	return importances
}

// String renders the tree as an indented if/else listing.
func (t *Tree) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "RegressionTree(leaf=%s, features=%d)\n", t.Leaf, t.NFeatures)
	writeNode(&sb, t.Root, 1)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node, depth int) {
	if n == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	if n.IsLeaf() {
		fmt.Fprintf(sb, "%sleaf %s (n=%d)\n", indent, n.Payload, n.NSamples)
		return
	}
	fmt.Fprintf(sb, "%sif x[%d] > %g: (n=%d)\n", indent, n.Feature, n.Threshold, n.NSamples)
	writeNode(sb, n.Left, depth+1)
	fmt.Fprintf(sb, "%selse:\n", indent)
	writeNode(sb, n.Right, depth+1)
}
