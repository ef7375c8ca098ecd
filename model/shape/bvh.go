package shape

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/hmaddocks/raytracing/model/geom"
)

// BVH is a bounding volume hierarchy over a set of hittables. Construction
// recursively splits the objects at the median along a randomly chosen axis;
// lookups prune whole subtrees whose boxes the ray misses.
type BVH struct {
	root   *bvhNode
	bounds geom.AABB
}

// bvhNode is either a branch (left and right set) or a leaf (object set).
type bvhNode struct {
	left   *bvhNode
	right  *bvhNode
	object Hittable
	bounds geom.AABB
}

// NewBVH builds a hierarchy over objects. Every object must report a bounding
// box and the slice must not be empty.
func NewBVH(rng *rand.Rand, objects []Hittable) (*BVH, error) {
	if len(objects) == 0 {
		return nil, fmt.Errorf("bvh: no objects to partition")
	}
	for _, object := range objects {
		if _, ok := object.Bounds(0, 1); !ok {
			return nil, fmt.Errorf("bvh: object %T has no bounding box", object)
		}
	}
	work := make([]Hittable, len(objects))
	copy(work, objects)
	root := buildBVH(rng, work)
	return &BVH{root: root, bounds: root.bounds}, nil
}

func buildBVH(rng *rand.Rand, objects []Hittable) *bvhNode {
	axis := rng.Intn(3)
	byAxisMin := func(i, j int) bool {
		boxI, _ := objects[i].Bounds(0, 1)
		boxJ, _ := objects[j].Bounds(0, 1)
		return boxI.AxisInterval(axis).Min < boxJ.AxisInterval(axis).Min
	}

	switch len(objects) {
	case 1:
		bounds, _ := objects[0].Bounds(0, 1)
		return &bvhNode{object: objects[0], bounds: bounds}
	case 2:
		sort.Slice(objects, byAxisMin)
		left := buildBVH(rng, objects[:1])
		right := buildBVH(rng, objects[1:])
		return &bvhNode{
			left:   left,
			right:  right,
			bounds: geom.SurroundingBox(left.bounds, right.bounds),
		}
	default:
		sort.Slice(objects, byAxisMin)
		mid := len(objects) / 2
		left := buildBVH(rng, objects[:mid])
		right := buildBVH(rng, objects[mid:])
		return &bvhNode{
			left:   left,
			right:  right,
			bounds: geom.SurroundingBox(left.bounds, right.bounds),
		}
	}
}

func (b *BVH) Hit(r geom.Ray, rayT geom.Interval) (*Hit, bool) {
	return b.root.hit(r, rayT)
}

func (b *BVH) Bounds(_, _ float64) (geom.AABB, bool) {
	return b.bounds, true
}

func (n *bvhNode) hit(r geom.Ray, rayT geom.Interval) (*Hit, bool) {
	if !n.bounds.Hit(r, rayT) {
		return nil, false
	}
	if n.object != nil {
		return n.object.Hit(r, rayT)
	}

	hitLeft, okLeft := n.left.hit(r, rayT)
	// Cap the right-subtree search at the left hit so the closer of the two wins.
	rightT := rayT
	if okLeft {
		rightT = geom.NewInterval(rayT.Min, hitLeft.T)
	}
	if hitRight, okRight := n.right.hit(r, rightT); okRight {
		return hitRight, true
	}
	return hitLeft, okLeft
}
