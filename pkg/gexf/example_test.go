package gexf_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/gexftool/pkg/gexf"
)

func ExampleRead() {
	doc := `<gexf xmlns="http://www.gexf.net/1.2draft" version="1.2">
  <graph mode="dynamic" defaultedgetype="undirected">
    <nodes>
      <node id="n0"/>
      <node id="n1" start="2"/>
    </nodes>
    <edges>
      <edge source="n0" target="n1" weight="3.5" start="2"/>
    </edges>
  </graph>
</gexf>`

	g, s, err := gexf.Read(strings.NewReader(doc))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Nodes:", g.NumberOfNodes())
	fmt.Println("Weighted:", g.IsWeighted())
	for _, e := range s {
		fmt.Println(e)
	}
	// Output:
	// Nodes: 1
	// Weighted: true
	// node_addition(1)
	// edge_addition(0, 1, 3.5)
}
