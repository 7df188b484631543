package routing

import "errors"

var (
	ErrUnreachable      = errors.New("destination is unreachable from origin")
	ErrQueryCancelled   = errors.New("route query cancelled")
	ErrUnknownAlgorithm = errors.New("unknown routing algorithm")
	ErrUnknownMetric    = errors.New("unknown cost metric")
	ErrInvalidVertex    = errors.New("vertex is not part of the graph")
	ErrSearchState      = errors.New("corrupt search state")
)

const (
	// settled vertices between two context checks
	CANCEL_CHECK_INTERVAL = 256
)

type Algorithm string

const (
	DIJKSTRA Algorithm = "dijkstra"
	ASTAR    Algorithm = "astar"
)

func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case "", ASTAR:
		return ASTAR, nil
	case DIJKSTRA:
		return DIJKSTRA, nil
	default:
		return "", ErrUnknownAlgorithm
	}
}
