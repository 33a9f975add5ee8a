package archive

import (
	"context"
	"os"
	"testing"
	"time"

	"tenderwatch/pkg/models"
)

func skipIfNoES(t *testing.T) {
	if os.Getenv("SKIP_ES_TESTS") == "1" {
		t.Skip("Skipping ES tests (SKIP_ES_TESTS=1)")
	}

	client, err := New(Config{
		Addresses: []string{"http://localhost:9200"},
		Index:     "test-skip-check",
	})
	if err != nil {
		t.Skipf("Skipping ES tests: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !client.Ping(ctx) {
		t.Skip("Skipping ES tests: Elasticsearch not available")
	}
}

func TestClient_IndexAndSearch(t *testing.T) {
	skipIfNoES(t)

	client, err := New(Config{
		Addresses: []string{"http://localhost:9200"},
		Index:     "tenderwatch-archive-test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()

	if err := client.CreateIndex(ctx); err != nil {
		t.Fatalf("CreateIndex() error = %v", err)
	}
	// Idempotent.
	if err := client.CreateIndex(ctx); err != nil {
		t.Fatalf("CreateIndex() second call error = %v", err)
	}

	tender := models.Tender{
		Title:           "Hospital Equipment Procurement",
		Category:        "Medical",
		DepartmentOwner: "Health Department",
		Number:          "TSE-ARCH-001",
		ClosingDate:     "31-12-2025",
	}

	if err := client.IndexTender(ctx, tender); err != nil {
		t.Fatalf("IndexTender() error = %v", err)
	}
	// Re-archiving the same number overwrites, not duplicates.
	if err := client.IndexTender(ctx, tender); err != nil {
		t.Fatalf("IndexTender() second call error = %v", err)
	}
	client.Refresh(ctx)

	results, err := client.Search(ctx, "hospital equipment", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Number != "TSE-ARCH-001" {
		t.Errorf("Number = %q, want TSE-ARCH-001", results[0].Number)
	}
}
