package catalog

import (
	"strings"
	"testing"
)

func TestBusinessObjectEmbeddingText(t *testing.T) {
	bo := &BusinessObject{
		Entity: Entity{Name: "Invoice", Description: "A bill issued to a customer"},
		Domain: "Finance",
	}
	want := "Name: Invoice Description: A bill issued to a customer Domain: Finance"
	if got := bo.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestBusinessObjectEmbeddingText_NoDomain(t *testing.T) {
	bo := &BusinessObject{
		Entity: Entity{Name: "Invoice", Description: "A bill"},
	}
	want := "Name: Invoice Description: A bill"
	if got := bo.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestDataElementEmbeddingText(t *testing.T) {
	de := &DataElement{
		Entity:        Entity{Name: "Invoice Amount", Description: "Total due"},
		TechnicalName: "invoice_total_amount",
		DataType:      DataTypeFloat,
		Format:        "decimal(12,2)",
	}
	want := "Name: Invoice Amount Technical Name: invoice_total_amount Description: Total due Data Type: float Format: decimal(12,2)"
	if got := de.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestDomainEmbeddingText(t *testing.T) {
	d := &Domain{
		Entity:                   Entity{Name: "Finance", Description: "Financial data"},
		Owner:                    "CFO Office",
		DataClassificationPolicy: "Confidential by default",
	}
	want := "Name: Finance Description: Financial data Owner: CFO Office Policy: Confidential by default"
	if got := d.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestRuleEmbeddingText(t *testing.T) {
	ru := &Rule{
		Entity:          Entity{Name: "Amount Positive", Description: "Totals must exceed zero"},
		Category:        RuleCategoryValidation,
		ObligationLevel: ObligationMandatory,
		Conditions:      []string{"invoice issued", "amount present"},
		Actions:         []string{"reject invoice"},
		ValidationLogic: "amount > 0",
	}
	want := "Name: Amount Positive Description: Totals must exceed zero Category: validation Obligation: mandatory " +
		"Conditions: invoice issued; amount present Actions: reject invoice Logic: amount > 0"
	if got := ru.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestEmbeddingTextIsPure(t *testing.T) {
	bo := &BusinessObject{
		Entity: Entity{Name: "Customer", Description: "A purchasing party"},
		Domain: "Customer Care",
	}
	first := bo.EmbeddingText()
	for i := 0; i < 5; i++ {
		if got := bo.EmbeddingText(); got != first {
			t.Fatalf("Projection changed between calls: %q vs %q", first, got)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds() {
		parsed, err := ParseKind(string(kind))
		if err != nil {
			t.Errorf("ParseKind(%q) failed: %v", kind, err)
		}
		if parsed != kind {
			t.Errorf("ParseKind(%q) = %q", kind, parsed)
		}
	}

	if _, err := ParseKind("widget"); err == nil {
		t.Error("Expected error for unknown kind")
	}
	if _, err := ParseKind(""); err == nil {
		t.Error("Expected error for empty kind")
	}
}

func TestNewID(t *testing.T) {
	prefixes := map[Kind]string{
		KindBusinessObject: "BO-",
		KindDataElement:    "DE-",
		KindDomain:         "DOM-",
		KindRule:           "R-",
	}
	for kind, prefix := range prefixes {
		id := NewID(kind)
		if !strings.HasPrefix(id, prefix) {
			t.Errorf("NewID(%s) = %q, expected prefix %q", kind, id, prefix)
		}
		if len(id) != len(prefix)+8 {
			t.Errorf("NewID(%s) = %q, expected %d hex chars after prefix", kind, id, 8)
		}
	}

	if NewID(KindRule) == NewID(KindRule) {
		t.Error("Expected distinct ids on successive calls")
	}
}
