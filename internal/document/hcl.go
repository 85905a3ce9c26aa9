package document

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	ferrors "finsim/internal/errors"
)

// LoadFile reads and parses an HCL configuration document from path.
func LoadFile(path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.TypeModelError, "reading document", err)
	}
	return Parse(src, path)
}

// Parse parses HCL source bytes into a Document.
func Parse(src []byte, filename string) (*Document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, ferrors.Wrap(ferrors.TypeModelError, "parsing HCL document", diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, ferrors.ModelError("unexpected HCL body implementation")
	}

	doc := &Document{}

	for _, block := range body.Blocks {
		switch block.Type {
		case "global":
			g, err := parseGlobal(block.Body)
			if err != nil {
				return nil, err
			}
			doc.Global = g
		case "cost":
			cats, err := parseCategoryContainer(block.Body)
			if err != nil {
				return nil, err
			}
			doc.CostCategories = cats
		case "income":
			cats, err := parseCategoryContainer(block.Body)
			if err != nil {
				return nil, err
			}
			doc.IncomeCategories = cats
		}
	}

	return doc, nil
}

func parseGlobal(body *hclsyntax.Body) (Global, error) {
	var g Global

	for _, block := range body.Blocks {
		switch block.Type {
		case "const":
			entries, err := readScalarAttrs(block.Body)
			if err != nil {
				return g, err
			}
			for _, e := range entries {
				f, ok := e.value.(float64)
				if !ok {
					return g, ferrors.ModelErrorf("global.const.%s must be a number", e.name)
				}
				g.Const = append(g.Const, ConstEntry{Name: e.name, Value: f})
			}
		case "variable":
			if len(block.Labels) != 1 {
				return g, ferrors.ModelError("global.variable block requires exactly one label (its name)")
			}
			v, err := parseVariable(block.Labels[0], block.Body)
			if err != nil {
				return g, err
			}
			g.Variables = append(g.Variables, v)
		}
	}
	return g, nil
}

func parseVariable(name string, body *hclsyntax.Body) (VariableDoc, error) {
	v := VariableDoc{Name: name}

	attrs, err := attrMap(body)
	if err != nil {
		return v, err
	}

	start, ok := attrs["start"]
	if !ok {
		return v, ferrors.ModelErrorf("global.variable.%s missing required field: start", name)
	}
	f, ok := start.(float64)
	if !ok {
		return v, ferrors.ModelErrorf("global.variable.%s.start must be a number", name)
	}
	v.Start = f

	if raw, ok := attrs["max"]; ok {
		f, ok := raw.(float64)
		if !ok {
			return v, ferrors.ModelErrorf("global.variable.%s.max must be a number", name)
		}
		v.Max = &f
	}
	if raw, ok := attrs["min"]; ok {
		f, ok := raw.(float64)
		if !ok {
			return v, ferrors.ModelErrorf("global.variable.%s.min must be a number", name)
		}
		v.Min = &f
	}
	if raw, ok := attrs["period"]; ok {
		f, ok := raw.(float64)
		if !ok {
			return v, ferrors.ModelErrorf("global.variable.%s.period must be a number", name)
		}
		p := int(f)
		v.Period = &p
	}
	if raw, ok := attrs["increment"]; ok {
		f, ok := raw.(float64)
		if !ok {
			return v, ferrors.ModelErrorf("global.variable.%s.increment must be a number", name)
		}
		v.Increment = &f
	}

	for _, block := range body.Blocks {
		if block.Type != "growth_rate" {
			continue
		}
		gr, err := parseGrowthRate(name, block.Body)
		if err != nil {
			return v, err
		}
		v.GrowthRate = &gr
	}

	return v, nil
}

func parseGrowthRate(varName string, body *hclsyntax.Body) (GrowthRateDoc, error) {
	var gr GrowthRateDoc

	attrs, err := attrMap(body)
	if err != nil {
		return gr, err
	}

	typ, ok := attrs["type"].(string)
	if !ok {
		return gr, ferrors.ModelErrorf("global.variable.%s.growth_rate missing required field: type", varName)
	}
	gr.Type = typ

	switch typ {
	case "linear":
		rate, ok := attrs["rate"].(float64)
		if !ok {
			return gr, ferrors.ModelErrorf("global.variable.%s.growth_rate (linear) missing field: rate", varName)
		}
		gr.Rate = rate
	case "polynomial":
		raw, ok := attrs["coefficients"]
		if !ok {
			return gr, ferrors.ModelErrorf("global.variable.%s.growth_rate (polynomial) missing field: coefficients", varName)
		}
		list, ok := raw.([]interface{})
		if !ok {
			return gr, ferrors.ModelErrorf("global.variable.%s.growth_rate.coefficients must be a list of numbers", varName)
		}
		for _, item := range list {
			f, ok := item.(float64)
			if !ok {
				return gr, ferrors.ModelErrorf("global.variable.%s.growth_rate.coefficients must be numbers", varName)
			}
			gr.Coefficients = append(gr.Coefficients, f)
		}
	case "logistic":
		k, ok := attrs["k"].(float64)
		if !ok {
			return gr, ferrors.ModelErrorf("global.variable.%s.growth_rate (logistic) missing field: k", varName)
		}
		r, ok := attrs["r"].(float64)
		if !ok {
			return gr, ferrors.ModelErrorf("global.variable.%s.growth_rate (logistic) missing field: r", varName)
		}
		gr.K = k
		gr.R = r
	default:
		return gr, ferrors.ModelErrorf("global.variable.%s.growth_rate has unsupported type: %s", varName, typ)
	}

	return gr, nil
}

// parseCategoryContainer parses the `cost`/`income` block's children:
// "category" blocks (the normal form) and any bare "resource" blocks
// declared directly inside the container, which §6.1 allows for income
// (a flat sequence of Resources) and are folded into a single unnamed
// category here.
func parseCategoryContainer(body *hclsyntax.Body) ([]CategoryDoc, error) {
	var cats []CategoryDoc
	var flat CategoryDoc
	haveFlat := false

	if desc, ok, err := stringAttr(body, "description"); err != nil {
		return nil, err
	} else if ok {
		flat.Description = desc
		haveFlat = true
	}

	for _, block := range body.Blocks {
		switch block.Type {
		case "category":
			if len(block.Labels) != 1 {
				return nil, ferrors.ModelError("category block requires exactly one label (its name)")
			}
			cat, err := parseCategory(block.Labels[0], block.Body)
			if err != nil {
				return nil, err
			}
			cats = append(cats, cat)
		case "resource":
			if len(block.Labels) != 1 {
				return nil, ferrors.ModelError("resource block requires exactly one label (its name)")
			}
			res, err := parseResource(block.Labels[0], block.Body)
			if err != nil {
				return nil, err
			}
			flat.Resources = append(flat.Resources, res)
			haveFlat = true
		}
	}

	if haveFlat {
		cats = append(cats, flat)
	}
	return cats, nil
}

func parseCategory(name string, body *hclsyntax.Body) (CategoryDoc, error) {
	cat := CategoryDoc{Name: name}

	if desc, ok, err := stringAttr(body, "description"); err != nil {
		return cat, err
	} else if ok {
		cat.Description = desc
	}

	for _, block := range body.Blocks {
		if block.Type != "resource" {
			continue
		}
		if len(block.Labels) != 1 {
			return cat, ferrors.ModelErrorf("category %s: resource block requires exactly one label", name)
		}
		res, err := parseResource(block.Labels[0], block.Body)
		if err != nil {
			return cat, err
		}
		cat.Resources = append(cat.Resources, res)
	}

	return cat, nil
}

func parseResource(name string, body *hclsyntax.Body) (ResourceDoc, error) {
	res := ResourceDoc{Name: name}

	attrs, err := attrMap(body)
	if err != nil {
		return res, err
	}

	for _, field := range []struct {
		key string
		dst *string
	}{
		{"use_case", &res.UseCase},
		{"calculation_method", &res.CalculationMethod},
		{"billing_method", &res.BillingMethod},
		{"unit", &res.Unit},
	} {
		if raw, ok := attrs[field.key]; ok {
			s, ok := raw.(string)
			if !ok {
				return res, ferrors.ModelErrorf("resource %s.%s must be a string", name, field.key)
			}
			*field.dst = s
		}
	}

	if raw, ok := attrs["direct"]; ok {
		s, ok := raw.(string)
		if !ok {
			return res, ferrors.ModelErrorf("resource %s.direct must be a string expression", name)
		}
		res.Direct = &s
	}
	if raw, ok := attrs["result"]; ok {
		s, ok := raw.(string)
		if !ok {
			return res, ferrors.ModelErrorf("resource %s.result must be a string expression", name)
		}
		res.Result = &s
	}
	if raw, ok := attrs["exec"]; ok {
		list, ok := raw.([]interface{})
		if !ok {
			return res, ferrors.ModelErrorf("resource %s.exec must be a list of strings", name)
		}
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return res, ferrors.ModelErrorf("resource %s.exec entries must be strings", name)
			}
			res.Exec = append(res.Exec, s)
		}
	}

	for _, block := range body.Blocks {
		switch block.Type {
		case "preprocess":
			entries, err := readScalarAttrs(block.Body)
			if err != nil {
				return res, err
			}
			for _, e := range entries {
				s, ok := e.value.(string)
				if !ok {
					return res, ferrors.ModelErrorf("resource %s.preprocess.%s must be a string expression", name, e.name)
				}
				res.Preprocess = append(res.Preprocess, PreprocessDoc{Name: e.name, Expr: s})
			}
		case "case":
			cAttrs, err := attrMap(block.Body)
			if err != nil {
				return res, err
			}
			cond, _ := cAttrs["condition"].(string)
			result, _ := cAttrs["result"].(string)
			res.Cases = append(res.Cases, CaseDoc{Case: cond, Result: result})
		case "for":
			fAttrs, err := attrMap(block.Body)
			if err != nil {
				return res, err
			}
			forDoc := &ForDoc{}
			forDoc.Iterator, _ = fAttrs["iterator"].(string)
			forDoc.Aggregation, _ = fAttrs["aggregation"].(string)
			if raw, ok := fAttrs["exec"]; ok {
				list, ok := raw.([]interface{})
				if !ok {
					return res, ferrors.ModelErrorf("resource %s.for.exec must be a list of strings", name)
				}
				for _, item := range list {
					s, _ := item.(string)
					forDoc.Exec = append(forDoc.Exec, s)
				}
			}
			res.For = forDoc
		}
	}

	return res, nil
}

// scalarEntry is one decoded attribute from an arbitrary-key block
// (const, preprocess), preserving declaration order.
type scalarEntry struct {
	name  string
	value interface{}
}

// orderedAttr pairs an attribute with its name for sorting by source
// position; hclsyntax.Body.Attributes is a map and discards order.
type orderedAttr struct {
	name string
	attr *hclsyntax.Attribute
}

// readScalarAttrs decodes every attribute of body in source order,
// returning Go float64/string/[]interface{} values. Used for blocks
// whose attribute names are user-chosen (const, preprocess), where
// JustAttributes-style access is the only option.
func readScalarAttrs(body *hclsyntax.Body) ([]scalarEntry, error) {
	var list []orderedAttr
	for name, attr := range body.Attributes {
		list = append(list, orderedAttr{name, attr})
	}
	// hclsyntax.Body.Attributes is a map; recover declaration order via
	// source range, since the ordered-mapping invariant (§3) matters for
	// preprocess and const alike.
	sortByRange(list)

	var out []scalarEntry
	for _, o := range list {
		val, diags := o.attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, ferrors.Wrap(ferrors.TypeModelError, fmt.Sprintf("evaluating %s", o.name), diags)
		}
		goVal, err := ctyToGo(val)
		if err != nil {
			return nil, ferrors.ModelErrorf("%s: %v", o.name, err)
		}
		out = append(out, scalarEntry{name: o.name, value: goVal})
	}
	return out, nil
}

func sortByRange(list []orderedAttr) {
	for i := 1; i < len(list); i++ {
		j := i
		for j > 0 && list[j-1].attr.SrcRange.Start.Byte > list[j].attr.SrcRange.Start.Byte {
			list[j-1], list[j] = list[j], list[j-1]
			j--
		}
	}
}

func attrMap(body *hclsyntax.Body) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(body.Attributes))
	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, ferrors.Wrap(ferrors.TypeModelError, fmt.Sprintf("evaluating %s", name), diags)
		}
		goVal, err := ctyToGo(val)
		if err != nil {
			return nil, ferrors.ModelErrorf("%s: %v", name, err)
		}
		out[name] = goVal
	}
	return out, nil
}

func stringAttr(body *hclsyntax.Body, key string) (string, bool, error) {
	attr, ok := body.Attributes[key]
	if !ok {
		return "", false, nil
	}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", false, ferrors.Wrap(ferrors.TypeModelError, "evaluating "+key, diags)
	}
	if val.Type() != cty.String {
		return "", false, ferrors.ModelErrorf("%s must be a string", key)
	}
	return val.AsString(), true, nil
}

func ctyToGo(val cty.Value) (interface{}, error) {
	if val.IsNull() {
		return nil, nil
	}
	switch val.Type() {
	case cty.String:
		return val.AsString(), nil
	case cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case cty.Bool:
		return val.True(), nil
	}
	if val.Type().IsTupleType() || val.Type().IsListType() {
		var out []interface{}
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			gv, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported HCL value type: %s", val.Type().FriendlyName())
}
