package typesystem

// Type is the interface for all types in the system. One recursive sum
// covers both layers of the type language: quantifiers may appear in any
// position (annotations like `List (exists a . a)` need this), while the
// context only ever solves existentials to quantifier-free types, which
// IsMonotype polices at the solve sites.
type Type interface {
	typ()
	String() string
}

// TVar is a rigid type variable, introduced by a forall or exists binder and
// referenced by its source name. Rigid variables are never solved.
type TVar struct {
	Name string
}

// TUnsolved is an existential placeholder that inference has not solved yet.
type TUnsolved struct {
	Existential Existential
}

// TArrow is a function type. Arrows associate to the right.
type TArrow struct {
	Input  Type
	Output Type
}

// TList is a homogeneous list type.
type TList struct {
	Element Type
}

// TCon is a primitive ground type (Bool, Natural, Text).
type TCon struct {
	Name string
}

// The three primitive types.
var (
	BoolType    = TCon{Name: "Bool"}
	NaturalType = TCon{Name: "Natural"}
	TextType    = TCon{Name: "Text"}
)

// Field is one labeled entry of a record or union type. Label order is
// preserved for printing but is not semantically significant.
type Field struct {
	Label string
	Type  Type
}

// TRecord is a record type: a list of fields plus a row tail. A closed
// record has an EmptyRow tail; an open record ends in an unsolved or rigid
// row variable that may absorb further fields.
type TRecord struct {
	Fields []Field
	Tail   Row
}

// TUnion is a union type: a list of alternatives plus a variant tail. The
// tail plays the same role as a record's row, with subtyping polarity
// flipped.
type TUnion struct {
	Alternatives []Field
	Tail         Variant
}

// Domain says what a quantifier binds: an ordinary type variable, a row
// variable (record tails) or a variant variable (union tails).
type Domain int

const (
	DomainType Domain = iota
	DomainFields
	DomainAlternatives
)

func (d Domain) String() string {
	switch d {
	case DomainFields:
		return "Fields"
	case DomainAlternatives:
		return "Alternatives"
	default:
		return "Type"
	}
}

// Forall is universal quantification over a variable of the given domain.
type Forall struct {
	Name   string
	Domain Domain
	Body   Type
}

// Exists is existential quantification over a variable of the given domain.
type Exists struct {
	Name   string
	Domain Domain
	Body   Type
}

func (TVar) typ()      {}
func (TUnsolved) typ() {}
func (TArrow) typ()    {}
func (TList) typ()     {}
func (TCon) typ()      {}
func (TRecord) typ()   {}
func (TUnion) typ()    {}
func (Forall) typ()    {}
func (Exists) typ()    {}

// Row is the tail of a record type.
type Row interface {
	row()
	String() string
}

// EmptyRow closes a record: no further fields are admitted.
type EmptyRow struct{}

// UnsolvedRow is a row existential pending solution.
type UnsolvedRow struct {
	Existential RowExistential
}

// VarRow is a rigid row variable bound by a forall/exists of kind Fields.
type VarRow struct {
	Name string
}

func (EmptyRow) row()    {}
func (UnsolvedRow) row() {}
func (VarRow) row()      {}

// Variant is the tail of a union type, isomorphic to Row.
type Variant interface {
	variant()
	String() string
}

// EmptyVariant closes a union: no further alternatives are admitted.
type EmptyVariant struct{}

// UnsolvedVariant is a variant existential pending solution.
type UnsolvedVariant struct {
	Existential VariantExistential
}

// VarVariant is a rigid variant variable bound by a forall/exists of kind
// Alternatives.
type VarVariant struct {
	Name string
}

func (EmptyVariant) variant()    {}
func (UnsolvedVariant) variant() {}
func (VarVariant) variant()      {}

// IsMonotype reports whether t contains no quantifier. Only monotypes may be
// recorded as existential solutions in the context.
func IsMonotype(t Type) bool {
	switch t := t.(type) {
	case Forall, Exists:
		return false
	case TArrow:
		return IsMonotype(t.Input) && IsMonotype(t.Output)
	case TList:
		return IsMonotype(t.Element)
	case TRecord:
		for _, f := range t.Fields {
			if !IsMonotype(f.Type) {
				return false
			}
		}
	case TUnion:
		for _, a := range t.Alternatives {
			if !IsMonotype(a.Type) {
				return false
			}
		}
	}
	return true
}

// FieldsByLabel returns the record/union field list as a map for label
// lookups during row unification.
func FieldsByLabel(fields []Field) map[string]Type {
	m := make(map[string]Type, len(fields))
	for _, f := range fields {
		m[f.Label] = f.Type
	}
	return m
}
