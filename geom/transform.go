package geom

// Prior describes the node being replaced, as it sits in the host document.
type Prior struct {
	// BBox is the prior node extent in its parent (ancestor) coordinate
	// space.
	BBox BBox
	// Transform is the prior node's own transform attribute.
	Transform Matrix
	// FlipY marks nodes whose fragment was produced by a converter with an
	// inverted vertical axis; alignment has to undo the flip first.
	FlipY bool
}

// Insertion describes where a freshly created node goes.
type Insertion struct {
	// X, Y is the caller supplied insertion point (viewport center, cursor
	// position) in view coordinates.
	X, Y float64
	// Context is the accumulated transform of the insertion parent (layer
	// chain). Identity when inserting at document root.
	Context Matrix
}

// ComputeTransform builds the transform placing a new fragment so that its
// anchor point, after scaling by relScale relative to the prior node, lands
// exactly on the prior node's anchor point in the parent coordinate space.
// newBB is the fragment's own bounding box in converter space.
func ComputeTransform(prior Prior, newBB BBox, anchor Anchor, relScale float64) Matrix {
	composition := Scale(relScale).Mul(prior.Transform)
	if prior.FlipY {
		composition = composition.Mul(FlipY())
	}

	// where the anchor of the new content ends up with scaling alone
	placed := newBB.Transformed(composition, prior.BBox.Space)

	oldX, oldY := prior.BBox.Point(anchor)
	newX, newY := placed.Point(anchor)

	return Translate(oldX-newX, oldY-newY).Mul(composition)
}

// ComputeInsertTransform builds the transform for a fragment without a prior
// node: the anchor point of the scaled fragment is mapped onto the insertion
// point, expressed in the insertion context's own coordinate system.
func ComputeInsertTransform(ins Insertion, newBB BBox, anchor Anchor, scale float64) (Matrix, error) {
	inv, err := ins.Context.Invert()
	if err != nil {
		return Matrix{}, err
	}

	ax, ay := newBB.Point(anchor)
	return inv.
		Mul(Translate(ins.X, ins.Y)).
		Mul(Scale(scale)).
		Mul(Translate(-ax, -ay)), nil
}
