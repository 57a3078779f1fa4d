package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"data-catalog/backend/internal/catalog"
	"data-catalog/backend/internal/embedding"
	"data-catalog/backend/internal/graph"
	"data-catalog/backend/pkg/config"
	"data-catalog/backend/pkg/logger"
)

func main() {
	withEmbeddings := flag.Bool("embeddings", true, "Generate embeddings for seeded entities (requires OPENAI_API_KEY)")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting catalog seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	repo := graph.NewRepository(driver, cfg.Neo4jDatabase)

	log.Info("Creating constraints and indexes...")
	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var embedder *embedding.Service
	if *withEmbeddings && cfg.OpenAIAPIKey != "" {
		embedder = embedding.NewService(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	} else {
		log.Warn("Seeding without embeddings")
	}

	if err := seedCatalog(ctx, repo, embedder, log); err != nil {
		log.Error("Seeding failed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Seeding completed")
}

// embed generates the vector for an entity, logging and continuing on
// failure so a down embedding service never blocks seeding.
func embed(ctx context.Context, embedder *embedding.Service, entity catalog.Embeddable, log *zap.Logger) []float32 {
	if embedder == nil {
		return nil
	}
	vector, err := embedder.ForEntity(ctx, entity)
	if err != nil {
		log.Warn("Embedding generation failed for seed entity", zap.Error(err))
		return nil
	}
	return vector
}

func seedCatalog(ctx context.Context, repo *graph.Repository, embedder *embedding.Service, log *zap.Logger) error {
	now := time.Now().UTC()
	entity := func(kind catalog.Kind, name, description string) catalog.Entity {
		return catalog.Entity{
			ID:          catalog.NewID(kind),
			Name:        name,
			Description: description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	// Domains
	finance := &catalog.Domain{
		Entity:                   entity(catalog.KindDomain, "Finance", "Financial data covering billing, payments and revenue recognition"),
		Owner:                    "CFO Office",
		Steward:                  "finance-data@company.example",
		MaturityLevel:            catalog.MaturityManaged,
		StrategicPriority:        5,
		DataClassificationPolicy: "Financial records are confidential and retained for seven years",
	}
	customerCare := &catalog.Domain{
		Entity:            entity(catalog.KindDomain, "Customer Care", "Customer master data and support interactions"),
		Owner:             "VP Customer Experience",
		Steward:           "care-data@company.example",
		MaturityLevel:     catalog.MaturityDefined,
		StrategicPriority: 4,
	}
	for _, d := range []*catalog.Domain{finance, customerCare} {
		d.Embedding = embed(ctx, embedder, d, log)
		if err := repo.CreateDomain(ctx, d); err != nil {
			return err
		}
		log.Info("Seeded domain", zap.String("id", d.ID), zap.String("name", d.Name))
	}

	// Business objects
	invoice := &catalog.BusinessObject{
		Entity:      entity(catalog.KindBusinessObject, "Invoice", "A bill issued to a customer for products or services delivered"),
		Domain:      finance.Name,
		Steward:     "billing-team@company.example",
		Criticality: 5,
	}
	customer := &catalog.BusinessObject{
		Entity:      entity(catalog.KindBusinessObject, "Customer", "A person or organization that purchases products or services"),
		Domain:      customerCare.Name,
		Steward:     "care-data@company.example",
		Criticality: 5,
	}
	for _, bo := range []*catalog.BusinessObject{invoice, customer} {
		bo.Embedding = embed(ctx, embedder, bo, log)
		if err := repo.CreateBusinessObject(ctx, bo); err != nil {
			return err
		}
		log.Info("Seeded business object", zap.String("id", bo.ID), zap.String("name", bo.Name))
	}
	if err := repo.LinkBusinessObjectToDomain(ctx, invoice.ID, finance.ID); err != nil {
		return err
	}
	if err := repo.LinkBusinessObjectToDomain(ctx, customer.ID, customerCare.ID); err != nil {
		return err
	}

	// Data elements
	invoiceAmount := &catalog.DataElement{
		Entity:           entity(catalog.KindDataElement, "Invoice Amount", "Total amount due on the invoice including tax"),
		TechnicalName:    "invoice_total_amount",
		DataType:         catalog.DataTypeFloat,
		Format:           "decimal(12,2)",
		SensitivityLevel: catalog.SensitivityConfidential,
	}
	invoiceDueDate := &catalog.DataElement{
		Entity:           entity(catalog.KindDataElement, "Invoice Due Date", "Date by which payment must be received"),
		TechnicalName:    "invoice_due_date",
		DataType:         catalog.DataTypeDate,
		Format:           "YYYY-MM-DD",
		SensitivityLevel: catalog.SensitivityInternal,
	}
	customerEmail := &catalog.DataElement{
		Entity:           entity(catalog.KindDataElement, "Customer Email", "Primary contact email address of the customer"),
		TechnicalName:    "customer_email",
		DataType:         catalog.DataTypeString,
		Format:           "RFC 5322 address",
		SensitivityLevel: catalog.SensitivityPII,
	}
	for _, de := range []*catalog.DataElement{invoiceAmount, invoiceDueDate, customerEmail} {
		de.Embedding = embed(ctx, embedder, de, log)
		if err := repo.CreateDataElement(ctx, de); err != nil {
			return err
		}
		log.Info("Seeded data element", zap.String("id", de.ID), zap.String("name", de.Name))
	}
	for _, link := range []struct{ element, object string }{
		{invoiceAmount.ID, invoice.ID},
		{invoiceDueDate.ID, invoice.ID},
		{customerEmail.ID, customer.ID},
	} {
		if err := repo.LinkDataElementToBusinessObject(ctx, link.element, link.object); err != nil {
			return err
		}
	}

	// Rules
	amountPositive := &catalog.Rule{
		Entity:          entity(catalog.KindRule, "Invoice Amount Positive", "Invoice totals must be greater than zero"),
		Category:        catalog.RuleCategoryValidation,
		ObligationLevel: catalog.ObligationMandatory,
		DataElements:    []string{invoiceAmount.ID},
		Conditions:      []string{"invoice is issued"},
		Actions:         []string{"reject invoice with non-positive total"},
		ValidationLogic: "invoice_total_amount > 0",
		SourceReference: "Billing policy 4.2",
	}
	emailMasking := &catalog.Rule{
		Entity:          entity(catalog.KindRule, "Email Masking", "Customer email addresses must be masked outside production"),
		Category:        catalog.RuleCategoryCompliance,
		ObligationLevel: catalog.ObligationMandatory,
		DataElements:    []string{customerEmail.ID},
		Conditions:      []string{"data leaves the production environment"},
		Actions:         []string{"replace local part with a hash"},
		SourceReference: "Data protection standard 2.1",
	}
	amountPositive.RelatedRules = []string{emailMasking.ID}
	for _, ru := range []*catalog.Rule{amountPositive, emailMasking} {
		ru.Embedding = embed(ctx, embedder, ru, log)
		if err := repo.CreateRule(ctx, ru); err != nil {
			return err
		}
		log.Info("Seeded rule", zap.String("id", ru.ID), zap.String("name", ru.Name))
	}
	for _, link := range []struct{ rule, element string }{
		{amountPositive.ID, invoiceAmount.ID},
		{emailMasking.ID, customerEmail.ID},
	} {
		if err := repo.LinkRuleToDataElement(ctx, link.rule, link.element); err != nil {
			return err
		}
	}
	if err := repo.LinkRuleToDomain(ctx, amountPositive.ID, finance.ID); err != nil {
		return err
	}
	if err := repo.LinkRuleToDomain(ctx, emailMasking.ID, customerCare.ID); err != nil {
		return err
	}

	return nil
}
