package extract

import (
	"errors"
	"testing"

	"github.com/mos-jef/title-crm/internal/apperr"
)

func TestParse_PlainJSON(t *testing.T) {
	raw := `{"apnRaw":"123-45-678","apn":"12345678","county":"Lake","state":"MT","acres":"40"}`
	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.APNRaw != "123-45-678" || f.APN != "12345678" {
		t.Errorf("apn fields = %q / %q", f.APNRaw, f.APN)
	}
	if f.County != "Lake" || f.State != "MT" || f.Acres != "40" {
		t.Errorf("unexpected fields: %+v", f)
	}
	// Unmentioned keys decode to empty strings.
	if f.LegalOwner != "" || f.Address != "" {
		t.Errorf("absent fields should be empty: %+v", f)
	}
}

func TestParse_FencedJSON(t *testing.T) {
	raw := "```json\n{\"apn\":\"987\",\"county\":\"Cook\"}\n```"
	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse fenced: %v", err)
	}
	if f.APN != "987" || f.County != "Cook" {
		t.Errorf("fields = %+v", f)
	}
}

func TestParse_BareFence(t *testing.T) {
	raw := "```\n{\"apn\":\"1\"}\n```"
	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.APN != "1" {
		t.Errorf("apn = %q", f.APN)
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse("the card shows APN 123-45-678")
	if err == nil {
		t.Fatal("expected error for non-JSON response")
	}
	var ee *apperr.ExtractionError
	if !errors.As(err, &ee) {
		t.Errorf("error should be ExtractionError, got %T", err)
	}
}

func TestFields_Identifier(t *testing.T) {
	f := Fields{APNRaw: "12-34", APN: "1234"}
	if f.Identifier() != "12-34" {
		t.Errorf("Identifier() = %q, want raw form", f.Identifier())
	}
	f = Fields{APN: "1234"}
	if f.Identifier() != "1234" {
		t.Errorf("Identifier() = %q, want canonical fallback", f.Identifier())
	}
	if (Fields{}).Identifier() != "" {
		t.Error("empty fields should yield empty identifier")
	}
}
