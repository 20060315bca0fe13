package metadata

import "github.com/RoaringBitmap/roaring/v2"

// Selection is a set of document positions backed by a roaring bitmap.
type Selection struct {
	rb *roaring.Bitmap
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{rb: roaring.New()}
}

// Select returns the positions of docs that satisfy e. A nil e selects every
// position. Compound expressions combine the selections of their operands.
func Select(e Expr, docs []Document) *Selection {
	n := uint64(len(docs))
	if IsNil(e) {
		return fullSelection(n)
	}

	switch x := e.(type) {
	case *AndExpr:
		s := Select(x.Left, docs)
		s.And(Select(x.Right, docs))
		return s
	case *OrExpr:
		s := Select(x.Left, docs)
		s.Or(Select(x.Right, docs))
		return s
	case *NotExpr:
		s := Select(x.Expr, docs)
		s.rb.Flip(0, n)
		return s
	default:
		s := NewSelection()
		for i, d := range docs {
			if Evaluate(e, d) {
				s.Add(uint32(i))
			}
		}
		return s
	}
}

func fullSelection(n uint64) *Selection {
	s := NewSelection()
	s.rb.AddRange(0, n)
	return s
}

// Add adds a position.
func (s *Selection) Add(pos uint32) { s.rb.Add(pos) }

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool { return s.rb.IsEmpty() }

// Cardinality returns the number of selected positions.
func (s *Selection) Cardinality() uint64 { return s.rb.GetCardinality() }

// ToArray returns the selected positions in ascending order.
func (s *Selection) ToArray() []uint32 { return s.rb.ToArray() }

// And keeps only the positions also selected by other.
func (s *Selection) And(other *Selection) { s.rb.And(other.rb) }

// Or adds the positions selected by other.
func (s *Selection) Or(other *Selection) { s.rb.Or(other.rb) }

// SizeInBytes returns the serialized size of the bitmap.
func (s *Selection) SizeInBytes() uint64 { return s.rb.GetSizeInBytes() }
