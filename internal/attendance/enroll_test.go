package attendance_test

import (
	"context"
	"errors"
	"testing"

	"huella/internal/attendance"
)

func TestEnrollStoresIdentityWithTemplate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.enroller().Run(ctx, attendance.EnrollRequest{
		GivenName:   "Ana",
		FamilyName:  "Soto",
		ExternalKey: "11111111-1",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	ident, err := h.store.FindByExternalKey(ctx, "11111111-1")
	if err != nil {
		t.Fatalf("FindByExternalKey failed: %v", err)
	}
	if ident == nil {
		t.Fatal("expected identity to be stored")
	}
	if ident.Template == "" {
		t.Fatal("expected non-empty stored template")
	}
	if h.device.closeCount != 1 {
		t.Fatalf("expected session closed once, got %d", h.device.closeCount)
	}
}

func TestEnrollValidationNeverTouchesDevice(t *testing.T) {
	h := newHarness(t)

	cases := []attendance.EnrollRequest{
		{GivenName: "  ", FamilyName: "Soto", ExternalKey: "1-9"},
		{GivenName: "Ana", FamilyName: "", ExternalKey: "1-9"},
		{GivenName: "Ana", FamilyName: "Soto", ExternalKey: "   "},
	}
	for _, req := range cases {
		err := h.enroller().Run(context.Background(), req)
		if !errors.Is(err, attendance.ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", req, err)
		}
	}
	if h.device.enumerateCalls != 0 {
		t.Fatalf("device touched %d times during validation failures", h.device.enumerateCalls)
	}
}

func TestEnrollCaptureFaultLeavesNoIdentity(t *testing.T) {
	h := newHarness(t)
	h.device.enrollErr = errors.New("finger quality too low")

	err := h.enroller().Run(context.Background(), attendance.EnrollRequest{
		GivenName:   "Ana",
		FamilyName:  "Soto",
		ExternalKey: "11111111-1",
	})
	if !errors.Is(err, attendance.ErrCaptureFault) {
		t.Fatalf("expected ErrCaptureFault, got %v", err)
	}

	ident, err := h.store.FindByExternalKey(context.Background(), "11111111-1")
	if err != nil {
		t.Fatalf("FindByExternalKey failed: %v", err)
	}
	if ident != nil {
		t.Fatal("no identity may be written after a capture fault")
	}
	if h.device.closeCount != 1 {
		t.Fatalf("session must close on the fault path, close count %d", h.device.closeCount)
	}
}

func TestEnrollRejectsEmptyDeviceTemplate(t *testing.T) {
	h := newHarness(t)
	h.device.enrollTemplate = nil

	err := h.enroller().Run(context.Background(), attendance.EnrollRequest{
		GivenName:   "Ana",
		FamilyName:  "Soto",
		ExternalKey: "11111111-1",
	})
	if !errors.Is(err, attendance.ErrCaptureFault) {
		t.Fatalf("expected ErrCaptureFault for empty template, got %v", err)
	}
}

func TestEnrollNoDeviceAbortsBeforeCapture(t *testing.T) {
	h := newHarness(t)
	h.device.handles = nil

	err := h.enroller().Run(context.Background(), attendance.EnrollRequest{
		GivenName:   "Ana",
		FamilyName:  "Soto",
		ExternalKey: "11111111-1",
	})
	if !errors.Is(err, attendance.ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
	if h.device.openCount != 0 {
		t.Fatal("device must not be opened when enumeration is empty")
	}
}

func TestReenrollOverwritesExistingTemplate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	req := attendance.EnrollRequest{GivenName: "Ana", FamilyName: "Soto", ExternalKey: "11111111-1"}
	if err := h.enroller().Run(ctx, req); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	first, _ := h.store.FindByExternalKey(ctx, "11111111-1")

	h.device.enrollTemplate = []byte{0x01, 0x02, 0x03, 0x04}
	req.GivenName = "Ana María"
	if err := h.enroller().Run(ctx, req); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	identities, err := h.store.ListIdentities(ctx)
	if err != nil {
		t.Fatalf("ListIdentities failed: %v", err)
	}
	if len(identities) != 1 {
		t.Fatalf("re-enrollment must not duplicate, got %d identities", len(identities))
	}
	if identities[0].Template == first.Template {
		t.Fatal("expected template to be replaced")
	}
	if identities[0].GivenName != "Ana María" {
		t.Fatalf("expected latest name, got %q", identities[0].GivenName)
	}
}
