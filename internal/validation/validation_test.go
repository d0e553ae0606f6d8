package validation

import (
	"errors"
	"strings"
	"testing"

	"khidmaBack/internal/i18n"
	"khidmaBack/internal/models"
)

func validService() models.ServiceRequest {
	return models.ServiceRequest{
		CategoryID:  3,
		TitleAr:     "تصميم شعار احترافي لشركتك",
		Description: strings.Repeat("وصف الخدمة ", 15),
		Packages: []models.PackageRequest{
			{Tier: models.TierBasic, Name: "Basic", PriceCents: 5000, DeliveryDays: 3},
			{Tier: models.TierPremium, Name: "Premium", PriceCents: 15000, DeliveryDays: 7, Revisions: 3},
		},
	}
}

func TestServiceRequestValid(t *testing.T) {
	v := New()
	if err := v.Struct(i18n.Arabic, validService()); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestShortDescriptionRejectedWithFieldMessage(t *testing.T) {
	v := New()
	req := validService()
	req.Description = strings.Repeat("a", models.MinServiceDescriptionLength-1)

	err := v.Struct(i18n.English, req)
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if got := fields["description"]; got != "Must be at least 120 characters long" {
		t.Fatalf("unexpected description message %q (all: %v)", got, fields)
	}

	err = v.Struct(i18n.Arabic, req)
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if !strings.Contains(fields["description"], "120") {
		t.Fatalf("expected arabic message to mention 120, got %q", fields["description"])
	}
}

func TestDuplicateTiersRejected(t *testing.T) {
	v := New()
	req := validService()
	req.Packages[1].Tier = models.TierBasic

	err := v.Struct(i18n.English, req)
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if got := fields["packages"]; got != "Values must be unique" {
		t.Fatalf("unexpected packages message %q (all: %v)", got, fields)
	}
}

func TestNestedPackageFieldPath(t *testing.T) {
	v := New()
	req := validService()
	req.Packages[0].PriceCents = 0

	err := v.Struct(i18n.English, req)
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if got := fields["packages[0].price_cents"]; got != "Must be greater than 0" {
		t.Fatalf("unexpected nested message %q (all: %v)", got, fields)
	}
}

func TestTooManyPackages(t *testing.T) {
	v := New()
	req := validService()
	req.Packages = append(req.Packages,
		models.PackageRequest{Tier: models.TierStandard, Name: "Std", PriceCents: 1, DeliveryDays: 1},
		models.PackageRequest{Tier: "extra", Name: "Extra", PriceCents: 1, DeliveryDays: 1},
	)
	err := v.Struct(i18n.English, req)
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if got := fields["packages"]; got != "No more than 3 items allowed" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestSlugRule(t *testing.T) {
	v := New()
	req := models.CategoryRequest{Slug: "Web Design", NameAr: "تصميم", NameEn: "Design"}
	err := v.Struct(i18n.English, req)
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fields["slug"]; !ok {
		t.Fatalf("expected slug error, got %v", fields)
	}
	req.Slug = "web-design"
	if err := v.Struct(i18n.English, req); err != nil {
		t.Fatalf("expected valid category, got %v", err)
	}
}
