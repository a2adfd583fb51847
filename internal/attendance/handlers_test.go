package attendance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/UtiliTrack/UT-Backend/internal/utils"
)

// swapStore points the package at a mock store for the duration of a test.
func swapStore(t *testing.T, ms *mockStore) {
	t.Helper()
	old := store
	store = ms
	t.Cleanup(func() { store = old })
}

func postClockOut(handler http.HandlerFunc, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/clock-out", strings.NewReader(body))
	ctx := context.WithValue(req.Context(), utils.ContextUserIDKey, userID)
	rr := httptest.NewRecorder()
	handler(rr, req.WithContext(ctx))
	return rr
}

// TestClockOut_IgnoresBodyStaffID verifies the plain clock-out route only ever
// closes the caller's own record: a staff_id naming someone else must not
// close that person's record.
func TestClockOut_IgnoresBodyStaffID(t *testing.T) {
	ms := newMockStore()
	today := DateOf(time.Now())
	victimID := ms.add(AttendanceRecord{
		StaffID:        "staff-victim",
		AttendanceDate: today,
		ClockIn:        today.Add(8 * time.Hour),
	})
	swapStore(t, ms)

	rr := postClockOut(ClockOutHandler, "staff-other",
		`{"staff_id":"staff-victim","lat":6.9271,"lng":79.8612}`)

	// The caller has no open record of their own, so nothing to close.
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rr.Code, rr.Body.String())
	}
	rec, _ := ms.Get(victimID)
	if rec.ClockOut != nil {
		t.Error("expected the other staff member's record to stay open")
	}
}

// TestOverrideClockOut_ClosesTargetRecord verifies the supervisor override
// closes the named staff member's record and stamps the actor.
func TestOverrideClockOut_ClosesTargetRecord(t *testing.T) {
	ms := newMockStore()
	today := DateOf(time.Now())
	id := ms.add(AttendanceRecord{
		StaffID:        "staff-1",
		AttendanceDate: today,
		ClockIn:        today.Add(8 * time.Hour),
	})
	swapStore(t, ms)

	rr := postClockOut(OverrideClockOutHandler, "supervisor-1",
		`{"staff_id":"staff-1","lat":6.9271,"lng":79.8612}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	rec, _ := ms.Get(id)
	if rec.ClockOut == nil {
		t.Fatal("expected the record to be closed")
	}
	if rec.ClockedOutBy == nil || *rec.ClockedOutBy != "supervisor-1" {
		t.Error("expected clocked_out_by to record the supervisor")
	}
}

// TestOverrideClockOut_RequiresStaffID verifies the override route rejects a
// body without a target.
func TestOverrideClockOut_RequiresStaffID(t *testing.T) {
	ms := newMockStore()
	swapStore(t, ms)

	rr := postClockOut(OverrideClockOutHandler, "supervisor-1",
		`{"lat":6.9271,"lng":79.8612}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}
