package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Entity carries the fields shared by every catalog entity. The id is
// immutable after creation and updated_at never precedes created_at.
type Entity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Embeddable marks entity kinds whose state can be projected to text for
// embedding generation. The projection is pure: the same entity state always
// yields the same text.
type Embeddable interface {
	EmbeddingText() string
}

// DataType enumerates supported data element types.
type DataType string

const (
	DataTypeString   DataType = "string"
	DataTypeInteger  DataType = "integer"
	DataTypeFloat    DataType = "float"
	DataTypeBoolean  DataType = "boolean"
	DataTypeDate     DataType = "date"
	DataTypeDatetime DataType = "datetime"
	DataTypeArray    DataType = "array"
	DataTypeObject   DataType = "object"
	DataTypeBinary   DataType = "binary"
)

// SensitivityLevel enumerates data sensitivity classifications.
type SensitivityLevel string

const (
	SensitivityPublic       SensitivityLevel = "public"
	SensitivityInternal     SensitivityLevel = "internal"
	SensitivityConfidential SensitivityLevel = "confidential"
	SensitivityRestricted   SensitivityLevel = "restricted"
	SensitivityPII          SensitivityLevel = "pii"
	SensitivityPHI          SensitivityLevel = "phi"
	SensitivityPCI          SensitivityLevel = "pci"
)

// MaturityLevel enumerates domain governance maturity levels.
type MaturityLevel string

const (
	MaturityInitial    MaturityLevel = "initial"
	MaturityDeveloping MaturityLevel = "developing"
	MaturityDefined    MaturityLevel = "defined"
	MaturityManaged    MaturityLevel = "managed"
	MaturityOptimized  MaturityLevel = "optimized"
)

// RuleCategory enumerates rule categories.
type RuleCategory string

const (
	RuleCategoryData        RuleCategory = "data"
	RuleCategoryValidation  RuleCategory = "validation"
	RuleCategoryCalculation RuleCategory = "calculation"
	RuleCategoryProcess     RuleCategory = "process"
	RuleCategoryReporting   RuleCategory = "reporting"
	RuleCategoryCompliance  RuleCategory = "compliance"
)

// ObligationLevel enumerates rule obligation levels.
type ObligationLevel string

const (
	ObligationMandatory   ObligationLevel = "mandatory"
	ObligationConditional ObligationLevel = "conditional"
	ObligationOptional    ObligationLevel = "optional"
)

// BusinessObject is a high-level business concept that contains data elements.
type BusinessObject struct {
	Entity
	Domain      string    `json:"domain,omitempty"`
	Steward     string    `json:"steward,omitempty"`
	Criticality int       `json:"criticality,omitempty"` // 1-5, 0 means unset
	Embedding   []float32 `json:"embedding,omitempty"`
}

// EmbeddingText returns the canonical text projection for embedding.
func (b *BusinessObject) EmbeddingText() string {
	parts := []string{
		fmt.Sprintf("Name: %s", b.Name),
		fmt.Sprintf("Description: %s", b.Description),
	}
	if b.Domain != "" {
		parts = append(parts, fmt.Sprintf("Domain: %s", b.Domain))
	}
	return strings.Join(parts, " ")
}

// DataElement is a specific field or attribute belonging to a business object.
type DataElement struct {
	Entity
	TechnicalName    string           `json:"technical_name"`
	DataType         DataType         `json:"data_type"`
	Format           string           `json:"format,omitempty"`
	Domain           string           `json:"domain,omitempty"` // value domain or constraints
	SensitivityLevel SensitivityLevel `json:"sensitivity_level"`
	Embedding        []float32        `json:"embedding,omitempty"`
}

// EmbeddingText returns the canonical text projection for embedding.
func (d *DataElement) EmbeddingText() string {
	parts := []string{
		fmt.Sprintf("Name: %s", d.Name),
		fmt.Sprintf("Technical Name: %s", d.TechnicalName),
		fmt.Sprintf("Description: %s", d.Description),
		fmt.Sprintf("Data Type: %s", d.DataType),
	}
	if d.Format != "" {
		parts = append(parts, fmt.Sprintf("Format: %s", d.Format))
	}
	if d.Domain != "" {
		parts = append(parts, fmt.Sprintf("Domain: %s", d.Domain))
	}
	return strings.Join(parts, " ")
}

// Domain is a business area providing context for objects and rules.
type Domain struct {
	Entity
	Owner                    string        `json:"owner"`
	Steward                  string        `json:"steward,omitempty"`
	ParentDomainID           string        `json:"parent_domain_id,omitempty"`
	MaturityLevel            MaturityLevel `json:"maturity_level"`
	StrategicPriority        int           `json:"strategic_priority,omitempty"` // 1-5, 0 means unset
	DataClassificationPolicy string        `json:"data_classification_policy,omitempty"`
	Embedding                []float32     `json:"embedding,omitempty"`
}

// EmbeddingText returns the canonical text projection for embedding.
func (d *Domain) EmbeddingText() string {
	parts := []string{
		fmt.Sprintf("Name: %s", d.Name),
		fmt.Sprintf("Description: %s", d.Description),
		fmt.Sprintf("Owner: %s", d.Owner),
	}
	if d.DataClassificationPolicy != "" {
		parts = append(parts, fmt.Sprintf("Policy: %s", d.DataClassificationPolicy))
	}
	return strings.Join(parts, " ")
}

// Rule is a business or data rule constraining objects and elements.
type Rule struct {
	Entity
	Category        RuleCategory    `json:"category"`
	ObligationLevel ObligationLevel `json:"obligation_level"`
	DataElements    []string        `json:"data_elements,omitempty"`
	Conditions      []string        `json:"conditions,omitempty"`
	Actions         []string        `json:"actions,omitempty"`
	Exceptions      []string        `json:"exceptions,omitempty"`
	Thresholds      []float64       `json:"thresholds,omitempty"`
	ValidationLogic string          `json:"validation_logic,omitempty"`
	SourceReference string          `json:"source_reference,omitempty"`
	EffectiveDate   string          `json:"effective_date,omitempty"` // ISO date
	RelatedRules    []string        `json:"related_rules,omitempty"`
	Embedding       []float32       `json:"embedding,omitempty"`
}

// EmbeddingText returns the canonical text projection for embedding.
func (r *Rule) EmbeddingText() string {
	parts := []string{
		fmt.Sprintf("Name: %s", r.Name),
		fmt.Sprintf("Description: %s", r.Description),
		fmt.Sprintf("Category: %s", r.Category),
		fmt.Sprintf("Obligation: %s", r.ObligationLevel),
	}
	if len(r.Conditions) > 0 {
		parts = append(parts, fmt.Sprintf("Conditions: %s", strings.Join(r.Conditions, "; ")))
	}
	if len(r.Actions) > 0 {
		parts = append(parts, fmt.Sprintf("Actions: %s", strings.Join(r.Actions, "; ")))
	}
	if r.ValidationLogic != "" {
		parts = append(parts, fmt.Sprintf("Logic: %s", r.ValidationLogic))
	}
	return strings.Join(parts, " ")
}

// EmbeddingCandidate is the projection handed to the similarity ranker.
// It is derived from an entity at query time and never persisted on its own.
type EmbeddingCandidate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Embedding []float32 `json:"embedding"`
}

// EntityRef is a lightweight reference to an entity, used in related-entity
// results.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchResult is a single similarity hit.
type SearchResult struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}
