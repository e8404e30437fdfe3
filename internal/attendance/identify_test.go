package attendance_test

import (
	"context"
	"errors"
	"testing"

	"huella/internal/attendance"
	"huella/internal/capture"
	"huella/internal/identity"
	"huella/internal/testsupport"
)

func TestIdentifyNothingEnrolledNeverOpensDevice(t *testing.T) {
	h := newHarness(t)

	_, err := h.identifier().Run(context.Background())
	if !errors.Is(err, attendance.ErrNothingEnrolled) {
		t.Fatalf("expected ErrNothingEnrolled, got %v", err)
	}
	if h.device.enumerateCalls != 0 || h.device.openCount != 0 {
		t.Fatal("device must not be touched when nothing is enrolled")
	}
	if h.clockingCount(t) != 0 {
		t.Fatal("no clockings may exist")
	}
}

func TestIdentifyMatchRecordsClockingAndPrintsReceipt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	testsupport.Enroll(t, h.store, "Ana", "Soto", "22222222-2", []byte{0x01, 0x02})
	h.device.identifyMatch = &capture.Match{Tag: "22222222-2", Score: 0.87}

	outcome, err := h.identifier().Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.ExternalKey != "22222222-2" || outcome.DisplayName != "Ana Soto" {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
	if !outcome.Recorded {
		t.Fatal("expected clocking to be recorded")
	}
	if outcome.Score != 0.87 {
		t.Fatalf("unexpected score: %v", outcome.Score)
	}

	if h.clockingCount(t) != 1 {
		t.Fatalf("expected one clocking, got %d", h.clockingCount(t))
	}
	if len(h.receipt.lines) != 1 || h.receipt.lines[0] != "Ana Soto" {
		t.Fatalf("unexpected receipt calls: %#v", h.receipt.lines)
	}
	if h.device.identifyCalls != 1 {
		t.Fatalf("expected exactly one identify call, got %d", h.device.identifyCalls)
	}
	if h.device.closeCount != 1 {
		t.Fatalf("expected session closed once, got %d", h.device.closeCount)
	}
}

func TestIdentifyReceiptFailureDoesNotChangeResult(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	testsupport.Enroll(t, h.store, "Ana", "Soto", "22222222-2", []byte{0x01})
	h.device.identifyMatch = &capture.Match{Tag: "22222222-2", Score: 0.87}
	h.receipt.err = errors.New("printer offline")

	outcome, err := h.identifier().Run(ctx)
	if err != nil {
		t.Fatalf("Run must succeed despite receipt failure: %v", err)
	}
	if outcome.ReceiptPrinted {
		t.Fatal("receipt must be reported as not printed")
	}
	if !outcome.Recorded {
		t.Fatal("clocking must still be recorded")
	}
	if h.clockingCount(t) != 1 {
		t.Fatalf("expected the committed clocking to remain, got %d", h.clockingCount(t))
	}
}

func TestIdentifyNoMatchHasNoSideEffects(t *testing.T) {
	h := newHarness(t)

	testsupport.Enroll(t, h.store, "Ana", "Soto", "22222222-2", []byte{0x01})
	h.device.identifyMatch = nil

	_, err := h.identifier().Run(context.Background())
	if !errors.Is(err, attendance.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if h.clockingCount(t) != 0 {
		t.Fatalf("no-match must not write clockings, got %d", h.clockingCount(t))
	}
	if len(h.receipt.lines) != 0 {
		t.Fatal("no-match must not print receipts")
	}
	if h.device.closeCount != 1 {
		t.Fatalf("session must still close, close count %d", h.device.closeCount)
	}
}

func TestIdentifySkipsCorruptTemplate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	testsupport.Enroll(t, h.store, "Ana", "Soto", "22222222-2", []byte{0x01})
	// A row written by something other than the codec.
	err := h.store.Upsert(ctx, identity.Identity{
		GivenName:   "Bruno",
		FamilyName:  "Vera",
		ExternalKey: "33333333-3",
		Template:    "not**valid**base64",
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	h.device.identifyMatch = &capture.Match{Tag: "22222222-2", Score: 0.91}

	outcome, err := h.identifier().Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.ExternalKey != "22222222-2" {
		t.Fatalf("unexpected match: %#v", outcome)
	}
	if len(h.device.lastCandidates) != 1 {
		t.Fatalf("corrupt template must be excluded, candidate set size %d", len(h.device.lastCandidates))
	}
}

func TestIdentifyAllTemplatesCorruptReportsNothingEnrolled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.store.Upsert(ctx, identity.Identity{
		GivenName:   "Bruno",
		FamilyName:  "Vera",
		ExternalKey: "33333333-3",
		Template:    "!!!",
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	_, err = h.identifier().Run(ctx)
	if !errors.Is(err, attendance.ErrNothingEnrolled) {
		t.Fatalf("expected ErrNothingEnrolled, got %v", err)
	}
	if h.device.openCount != 0 {
		t.Fatal("device must not open with an empty candidate set")
	}
}

func TestIdentifyCaptureFaultClosesSession(t *testing.T) {
	h := newHarness(t)

	testsupport.Enroll(t, h.store, "Ana", "Soto", "22222222-2", []byte{0x01})
	h.device.identifyErr = errors.New("sensor read error")

	_, err := h.identifier().Run(context.Background())
	if !errors.Is(err, attendance.ErrCaptureFault) {
		t.Fatalf("expected ErrCaptureFault, got %v", err)
	}
	if h.device.closeCount != 1 {
		t.Fatalf("session must close on the fault path, close count %d", h.device.closeCount)
	}
	if h.clockingCount(t) != 0 {
		t.Fatal("no clocking may be written after a capture fault")
	}
}

func TestIdentifyUnknownTagFallsBackToRawKey(t *testing.T) {
	h := newHarness(t)

	testsupport.Enroll(t, h.store, "Ana", "Soto", "22222222-2", []byte{0x01})
	// The device can report a tag the store no longer knows about.
	h.device.identifyMatch = &capture.Match{Tag: "99999999-9", Score: 0.80}

	outcome, err := h.identifier().Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.DisplayName != "99999999-9" {
		t.Fatalf("expected raw key fallback, got %q", outcome.DisplayName)
	}
	if outcome.Recorded {
		t.Fatal("clocking cannot be recorded for an unenrolled key")
	}
	if h.clockingCount(t) != 0 {
		t.Fatal("no clocking may exist for an unenrolled key")
	}
}
