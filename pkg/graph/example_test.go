package graph_test

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/gexftool/pkg/graph"
)

func ExampleGraph() {
	g := graph.New(0, true, false)
	a := g.AddNode()
	b := g.AddNode()
	_ = g.AddEdge(a, b, 2.5)

	fmt.Println(g.NumberOfNodes(), g.NumberOfEdges(), g.Weight(b, a))
	// Output: 2 1 2.5
}

func ExampleGraph_RestoreNode() {
	g := graph.New(2, false, false)
	_ = g.RemoveNode(0)
	c := g.AddNode()
	_ = g.RestoreNode(0)

	fmt.Println(c, g.Nodes())
	// Output: 2 [0 1 2]
}

func ExampleWrite() {
	g := graph.New(2, true, true)
	_ = g.AddEdge(0, 1, 0.5)

	var buf bytes.Buffer
	if err := graph.Write(g, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "directed": true,
	//   "weighted": true,
	//   "nodes": 2,
	//   "edges": [
	//     {
	//       "source": 0,
	//       "target": 1,
	//       "weight": 0.5
	//     }
	//   ]
	// }
}
