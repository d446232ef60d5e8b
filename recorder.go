package jsongram

import (
	"strings"

	"github.com/reoring/jsongram/internal/ir"
)

// session is the state shared by every recorder of one inference run.
type session struct {
	arena    *ir.Arena
	maxDepth int
	issues   Issues
	fatal    error
}

func (s *session) abort(path string, err error) error {
	if s.fatal == nil {
		s.fatal = err
		s.issues = AppendIssues(s.issues, IssueAt(path, CodeDepthExceeded, "", err))
	}
	return s.fatal
}

// settle turns the outcome of recording one nested value into the error the
// caller's Decode sees. Fatal failures propagate; anything else is noted and
// swallowed so sibling fields still get recorded.
func (s *session) settle(path string, filled bool, err error) error {
	if s.fatal != nil {
		return s.fatal
	}
	switch {
	case err != nil:
		s.issues = AppendIssues(s.issues, IssueAt(path, CodePartialInference, err.Error(), err))
	case !filled:
		s.issues = AppendIssues(s.issues, IssueAt(path, CodePartialInference, "nothing recorded", nil))
	}
	return nil
}

// recorder implements Decoder by writing what is asked of it into its slot
// and answering with placeholder values.
type recorder struct {
	s     *session
	slot  ir.SlotID
	path  string
	depth int

	obj *objectAccumulator
	arr *arrayAccumulator
}

func (r *recorder) at(token string) string { return r.path + "/" + escapePointer(token) }

func (r *recorder) child(slot ir.SlotID, path string) *recorder {
	return &recorder{s: r.s, slot: slot, path: path, depth: r.depth + 1}
}

// drive runs v.Decode against r, enforcing the depth bound first.
func (r *recorder) drive(v Decodable) error {
	if r.s.fatal != nil {
		return r.s.fatal
	}
	if r.depth > r.s.maxDepth {
		return r.s.abort(r.path, ErrDepthExceeded)
	}
	return v.Decode(r)
}

func (r *recorder) leaf(slot ir.SlotID, k ir.Kind) {
	r.s.arena.Fill(slot, r.s.arena.Leaf(k))
}

func (r *recorder) Keyed() (KeyedDecoder, error) {
	if r.obj == nil {
		r.obj = newObjectAccumulator(r.s.arena, r.slot)
	}
	return &keyedRecorder{r: r}, nil
}

func (r *recorder) Indexed() (IndexedDecoder, error) {
	if r.arr == nil {
		r.arr = newArrayAccumulator(r.s.arena, r.slot)
	}
	return &indexedRecorder{r: r}, nil
}

func (r *recorder) Value() (ValueDecoder, error) { return valueRecorder{r: r}, nil }

type keyedRecorder struct{ r *recorder }

func (k *keyedRecorder) field(key string, optional bool, kind ir.Kind) {
	_, _ = k.r.obj.add(key, optional, func(child ir.SlotID) error {
		k.r.leaf(child, kind)
		return nil
	})
}

func (k *keyedRecorder) nested(key string, optional bool, v Decodable) error {
	path := k.r.at(key)
	filled, err := k.r.obj.add(key, optional, func(child ir.SlotID) error {
		return k.r.child(child, path).drive(v)
	})
	return k.r.s.settle(path, filled, err)
}

// Keys reports no keys: during inference there is no input.
func (k *keyedRecorder) Keys() []string { return nil }

// Contains answers true so that Decode methods branching on presence take
// the branch that reads the key.
func (k *keyedRecorder) Contains(string) bool { return true }

func (k *keyedRecorder) String(key string) (string, error) {
	k.field(key, false, ir.KindString)
	return "", nil
}

func (k *keyedRecorder) Int(key string) (int64, error) {
	k.field(key, false, ir.KindInteger)
	return 0, nil
}

func (k *keyedRecorder) Float(key string) (float64, error) {
	k.field(key, false, ir.KindNumber)
	return 0, nil
}

func (k *keyedRecorder) Bool(key string) (bool, error) {
	k.field(key, false, ir.KindBoolean)
	return false, nil
}

func (k *keyedRecorder) Nested(key string, v Decodable) error {
	return k.nested(key, false, v)
}

func (k *keyedRecorder) OptionalString(key string) (*string, error) {
	k.field(key, true, ir.KindString)
	return new(string), nil
}

func (k *keyedRecorder) OptionalInt(key string) (*int64, error) {
	k.field(key, true, ir.KindInteger)
	return new(int64), nil
}

func (k *keyedRecorder) OptionalFloat(key string) (*float64, error) {
	k.field(key, true, ir.KindNumber)
	return new(float64), nil
}

func (k *keyedRecorder) OptionalBool(key string) (*bool, error) {
	k.field(key, true, ir.KindBoolean)
	return new(bool), nil
}

func (k *keyedRecorder) OptionalNested(key string, v Decodable) (bool, error) {
	if err := k.nested(key, true, v); err != nil {
		return false, err
	}
	return true, nil
}

type indexedRecorder struct{ r *recorder }

// More reports true until the element shape has been recorded, so a
// `for it.More()` loop runs exactly once.
func (it *indexedRecorder) More() bool { return !it.r.arr.seen }

func (it *indexedRecorder) element(kind ir.Kind) {
	_, _ = it.r.arr.element(func(child ir.SlotID) error {
		it.r.leaf(child, kind)
		return nil
	})
}

func (it *indexedRecorder) String() (string, error) {
	it.element(ir.KindString)
	return "", nil
}

func (it *indexedRecorder) Int() (int64, error) {
	it.element(ir.KindInteger)
	return 0, nil
}

func (it *indexedRecorder) Float() (float64, error) {
	it.element(ir.KindNumber)
	return 0, nil
}

func (it *indexedRecorder) Bool() (bool, error) {
	it.element(ir.KindBoolean)
	return false, nil
}

func (it *indexedRecorder) Nested(v Decodable) error {
	path := it.r.at("0")
	filled, err := it.r.arr.element(func(child ir.SlotID) error {
		return it.r.child(child, path).drive(v)
	})
	return it.r.s.settle(path, filled, err)
}

type valueRecorder struct{ r *recorder }

// IsNull records Null only when nothing else has been recorded and always
// answers false so the non-null branch is explored.
func (v valueRecorder) IsNull() bool {
	if _, ok := v.r.s.arena.Read(v.r.slot); !ok {
		v.r.leaf(v.r.slot, ir.KindNull)
	}
	return false
}

func (v valueRecorder) String() (string, error) {
	v.r.leaf(v.r.slot, ir.KindString)
	return "", nil
}

func (v valueRecorder) Int() (int64, error) {
	v.r.leaf(v.r.slot, ir.KindInteger)
	return 0, nil
}

func (v valueRecorder) Float() (float64, error) {
	v.r.leaf(v.r.slot, ir.KindNumber)
	return 0, nil
}

func (v valueRecorder) Bool() (bool, error) {
	v.r.leaf(v.r.slot, ir.KindBoolean)
	return false, nil
}

// Nested lets w decode the same value one level deeper; the depth bound
// stops wrappers that delegate to themselves.
func (v valueRecorder) Nested(w Decodable) error {
	return v.r.child(v.r.slot, v.r.path).drive(w)
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointer(token string) string { return pointerEscaper.Replace(token) }
