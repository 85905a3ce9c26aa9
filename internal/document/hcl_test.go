package document

import "testing"

const sampleDoc = `
global {
  const {
    tax_rate = 0.08
  }

  variable "users" {
    start = 1000

    growth_rate {
      type = "linear"
      rate = 0.05
    }
  }
}

cost {
  category "hosting" {
    description = "infrastructure costs"

    resource "mapbox_sdk" {
      use_case           = "map tiles"
      calculation_method = "tiered"
      billing_method      = "monthly"
      unit                = "request"
      direct              = "(global.users - 25000) / 1000 * 4"
    }
  }
}

income {
  resource "subscriptions" {
    direct = "global.users * 9.99"
  }
}
`

func TestParseGlobalConstAndVariable(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), "sample.hcl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Global.Const) != 1 || doc.Global.Const[0].Name != "tax_rate" || doc.Global.Const[0].Value != 0.08 {
		t.Fatalf("unexpected const entries: %+v", doc.Global.Const)
	}
	if len(doc.Global.Variables) != 1 || doc.Global.Variables[0].Name != "users" {
		t.Fatalf("unexpected variables: %+v", doc.Global.Variables)
	}
	if doc.Global.Variables[0].GrowthRate == nil || doc.Global.Variables[0].GrowthRate.Type != "linear" {
		t.Fatalf("expected a linear growth_rate, got %+v", doc.Global.Variables[0].GrowthRate)
	}
}

func TestParseCategorizedCostResource(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), "sample.hcl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.CostCategories) != 1 || doc.CostCategories[0].Name != "hosting" {
		t.Fatalf("unexpected cost categories: %+v", doc.CostCategories)
	}
	res := doc.CostCategories[0].Resources
	if len(res) != 1 || res[0].Name != "mapbox_sdk" || res[0].Direct == nil {
		t.Fatalf("unexpected resources: %+v", res)
	}
}

func TestParseFlatIncomeResourcesFoldIntoOneCategory(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), "sample.hcl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.IncomeCategories) != 1 {
		t.Fatalf("expected flat income resources folded into one category, got %+v", doc.IncomeCategories)
	}
	if len(doc.IncomeCategories[0].Resources) != 1 || doc.IncomeCategories[0].Resources[0].Name != "subscriptions" {
		t.Fatalf("unexpected income resources: %+v", doc.IncomeCategories[0].Resources)
	}
}

func TestParseRejectsMalformedHCL(t *testing.T) {
	if _, err := Parse([]byte("global { const { "), "broken.hcl"); err == nil {
		t.Fatal("expected a parse error for malformed HCL")
	}
}
