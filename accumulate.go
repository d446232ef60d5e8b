package jsongram

import "github.com/reoring/jsongram/internal/ir"

// objectAccumulator collects the fields of one keyed container. The owner
// slot is left empty until the first field arrives and is re-committed with a
// fresh Object node after every insertion, so the slot always reflects the
// fields seen so far.
type objectAccumulator struct {
	arena    *ir.Arena
	owner    ir.SlotID
	required *ir.Fields
	optional *ir.Fields
}

func newObjectAccumulator(a *ir.Arena, owner ir.SlotID) *objectAccumulator {
	return &objectAccumulator{arena: a, owner: owner, required: ir.NewFields(), optional: ir.NewFields()}
}

// add records field name. build receives a fresh slot for the field value;
// whatever it leaves there (or Null if nothing) becomes the field's node.
// Re-recording a name replaces the earlier entry, moving it between the
// required and optional sets if needed.
func (o *objectAccumulator) add(name string, optional bool, build func(child ir.SlotID) error) (filled bool, err error) {
	child := o.arena.NewSlot()
	err = build(child)
	_, filled = o.arena.Read(child)
	id := o.arena.ReadOrNull(child)
	if optional {
		o.required.Delete(name)
		o.optional.Set(name, id)
	} else {
		o.optional.Delete(name)
		o.required.Set(name, id)
	}
	o.arena.Fill(o.owner, o.arena.Object(o.required, o.optional))
	return filled, err
}

// arrayAccumulator collects the element shape of one indexed container. It
// commits Array(Null) on creation so an array whose elements are never read
// still has a shape; the first element request replaces it.
type arrayAccumulator struct {
	arena  *ir.Arena
	owner  ir.SlotID
	seen  bool
}

func newArrayAccumulator(a *ir.Arena, owner ir.SlotID) *arrayAccumulator {
	a.Fill(owner, a.Array(a.Leaf(ir.KindNull)))
	return &arrayAccumulator{arena: a, owner: owner}
}

// element records the element shape on the first call; later calls record
// nothing and report filled=true.
func (r *arrayAccumulator) element(build func(child ir.SlotID) error) (filled bool, err error) {
	if r.seen {
		return true, nil
	}
	r.seen = true
	child := r.arena.NewSlot()
	err = build(child)
	_, filled = r.arena.Read(child)
	r.arena.Fill(r.owner, r.arena.Array(r.arena.ReadOrNull(child)))
	return filled, err
}
