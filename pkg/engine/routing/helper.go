package routing

import (
	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
)

func (re *RoutingEngine) VerticeUandVAreConnected(u, v datastructure.Index) bool {
	return re.graph.VerticeUandVAreConnected(u, v)
}
