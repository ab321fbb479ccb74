package services_test

import (
	"context"
	"testing"

	"showdown/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithList(ctx, "villain-showdown")
	ctx = services.WithStage(ctx, "spotlight")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if slug, ok := services.ListFromContext(ctx); !ok || slug != "villain-showdown" {
		t.Fatalf("unexpected list slug: %v %v", slug, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "spotlight" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithList(ctx, "")
	ctx = services.WithStage(ctx, "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.ListFromContext(ctx); ok {
		t.Fatal("expected no list value")
	}
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
