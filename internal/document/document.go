// Package document defines the in-memory form of the configuration
// document (§6.1) and loads it from HCL text. Loading a document from
// disk is explicitly out of the core's scope (§1); this package is the
// external collaborator §6 describes as calling into the core, mirroring
// how the teacher's adapters/terraform/hcl package turns .tf source into
// a structured tree before anything is evaluated.
package document

// Document is the parsed tree-structured configuration (§6.1): global,
// cost and income top-level blocks.
type Document struct {
	Global Global

	// CostCategories preserves the ordered category_name -> Category
	// mapping of the `cost` block.
	CostCategories []CategoryDoc

	// IncomeCategories preserves the ordered category mapping of the
	// `income` block. When the document declares income as a flat
	// resource sequence (§6.1 `income: Category | {description,
	// resource: [...]}`), it is normalized here into a single category
	// whose Name is empty.
	IncomeCategories []CategoryDoc
}

// Global is the `global` block: const plus variable.
type Global struct {
	Const     []ConstEntry
	Variables []VariableDoc
}

// ConstEntry is one name->value pair of global.const.
type ConstEntry struct {
	Name  string
	Value float64
}

// VariableDoc is one global.variable entry (§6.1 VariableSpec).
type VariableDoc struct {
	Name       string
	Start      float64
	Max        *float64
	Min        *float64
	Period     *int
	GrowthRate *GrowthRateDoc
	Increment  *float64
}

// GrowthRateDoc is a GrowthRateSpec (§6.1): exactly one of the three
// shapes, selected by Type.
type GrowthRateDoc struct {
	Type string // "linear" | "polynomial" | "logistic"

	// linear
	Rate float64

	// polynomial
	Coefficients []float64

	// logistic
	K float64
	R float64
}

// CategoryDoc is a Category (§6.1): a description plus an ordered
// resource sequence.
type CategoryDoc struct {
	Name        string
	Description string
	Resources   []ResourceDoc
}

// ResourceDoc is a Resource (§6.1) together with its CalcFn.
type ResourceDoc struct {
	Name              string
	UseCase           string
	CalculationMethod string
	BillingMethod     string
	Unit              string

	// Direct holds the bare expression string when calculation_function
	// is a plain string (CalcFn: string // direct).
	Direct *string

	// The remaining fields populate a structured CalcFn. Exactly one of
	// Result/Cases/For/Exec is set alongside an optional Preprocess.
	Preprocess []PreprocessDoc
	Result     *string
	Cases      []CaseDoc
	For        *ForDoc
	Exec       []string
}

// PreprocessDoc is one ordered name->expr entry.
type PreprocessDoc struct {
	Name string
	Expr string
}

// CaseDoc is one (case, result) pair.
type CaseDoc struct {
	Case   string
	Result string
}

// ForDoc is a `for` body (§6.1).
type ForDoc struct {
	Iterator    string
	Aggregation string
	Exec        []string
}
