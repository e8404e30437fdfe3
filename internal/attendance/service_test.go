package attendance_test

import (
	"context"
	"testing"

	"huella/internal/attendance"
	"huella/internal/capture"
	"huella/internal/logging"
	"huella/internal/testsupport"
)

func newService(h *harness) *attendance.Service {
	return attendance.NewService(h.store, h.manager, h.receipt, logging.NewNop())
}

func TestServiceRunEnrollmentCompletesInBackground(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := newService(h)

	svc.RunEnrollment(ctx, attendance.EnrollRequest{
		GivenName:   "Ana",
		FamilyName:  "Soto",
		ExternalKey: "11111111-1",
	})
	svc.Wait()

	ident, err := h.store.FindByExternalKey(ctx, "11111111-1")
	if err != nil {
		t.Fatalf("FindByExternalKey failed: %v", err)
	}
	if ident == nil {
		t.Fatal("expected identity after background enrollment")
	}
}

func TestServiceRunIdentificationCompletesInBackground(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := newService(h)

	testsupport.Enroll(t, h.store, "Ana", "Soto", "22222222-2", []byte{0x01})
	h.device.identifyMatch = &capture.Match{Tag: "22222222-2", Score: 0.9}

	svc.RunIdentification(ctx)
	svc.Wait()

	if h.clockingCount(t) != 1 {
		t.Fatalf("expected one clocking, got %d", h.clockingCount(t))
	}
	if len(h.receipt.lines) != 1 {
		t.Fatalf("expected one receipt line, got %d", len(h.receipt.lines))
	}
}

func TestServiceRunIdentificationFailureLeavesNoClocking(t *testing.T) {
	h := newHarness(t)
	svc := newService(h)

	testsupport.Enroll(t, h.store, "Ana", "Soto", "22222222-2", []byte{0x01})
	h.device.identifyMatch = nil

	svc.RunIdentification(context.Background())
	svc.Wait()

	if h.clockingCount(t) != 0 {
		t.Fatalf("no-match must not write clockings, got %d", h.clockingCount(t))
	}
}

func TestServiceListEnrolledSummariesOrdersByFamilyName(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := newService(h)

	testsupport.Enroll(t, h.store, "Carla", "Zúñiga", "1-9", []byte{0x01})
	testsupport.Enroll(t, h.store, "Ana", "Araya", "2-7", []byte{0x02})
	testsupport.Enroll(t, h.store, "Bruno", "Ávila", "3-5", []byte{0x03})

	summaries, err := svc.ListEnrolledSummaries(ctx)
	if err != nil {
		t.Fatalf("ListEnrolledSummaries failed: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}
	want := []string{
		"Ana Araya (2-7)",
		"Bruno Ávila (3-5)",
		"Carla Zúñiga (1-9)",
	}
	for i := range want {
		if summaries[i] != want[i] {
			t.Fatalf("summary %d: got %q, want %q", i, summaries[i], want[i])
		}
	}
}
