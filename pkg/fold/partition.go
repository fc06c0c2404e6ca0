package fold

import (
	"github.com/samber/lo"

	"github.com/Wartets/Origami/pkg/mesh"
)

// partition returns the indices of the pieces that move.
func (e *Engine) partition(s *splitter, pieces []piece, req Request, areas map[int]float64) ([]int, error) {
	var side int
	switch {
	case req.MobilePoint != nil:
		side = s.line.SideOf(*req.MobilePoint)
	case areas[1] < areas[-1]:
		side = 1
	default:
		side = -1
	}

	var mobile []int
	for i, p := range pieces {
		if p.side == side {
			mobile = append(mobile, i)
		}
	}

	if req.TopmostFace != nil {
		if req.MobilePoint == nil {
			e.logger().Debug("topmost face hint ignored without a mobile point", "face", *req.TopmostFace)
		} else {
			flap, err := flapOf(s.m, pieces, mobile, *req.TopmostFace)
			if err != nil {
				return nil, err
			}
			mobile = flap
		}
	}

	if len(mobile) == 0 {
		return nil, invalid("no paper on the mobile side")
	}
	if len(mobile) == len(pieces) {
		return nil, invalid("no paper stays in place")
	}
	return mobile, nil
}

// flapOf narrows the mobile candidates to the flap under the hinted face:
// the pieces reachable from the hinted face's mobile pieces through shared
// vertices, staying on the hinted face's layer.
func flapOf(m *mesh.Mesh, pieces []piece, candidates []int, hint mesh.FaceID) ([]int, error) {
	hinted, ok := m.Face(hint)
	if !ok {
		return nil, invalid("topmost face %s does not exist", hint)
	}

	eligible := lo.Filter(candidates, func(i int, _ int) bool { return pieces[i].layer == hinted.Layer })
	queue := lo.Filter(eligible, func(i int, _ int) bool { return pieces[i].parent == hint })
	if len(queue) == 0 {
		return nil, invalid("topmost face %s has no paper on the mobile side", hint)
	}

	byVertex := make(map[mesh.VertexID][]int)
	for _, i := range eligible {
		for _, id := range pieces[i].verts {
			byVertex[id] = append(byVertex[id], i)
		}
	}

	seen := make(map[int]bool, len(eligible))
	for _, i := range queue {
		seen[i] = true
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, id := range pieces[i].verts {
			for _, j := range byVertex[id] {
				if !seen[j] {
					seen[j] = true
					queue = append(queue, j)
				}
			}
		}
	}
	// Keep piece order stable.
	return lo.Filter(eligible, func(i int, _ int) bool { return seen[i] }), nil
}
