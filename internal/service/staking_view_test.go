package service

import (
	"strconv"
	"testing"
	"time"

	"ddream/internal/models"
)

func nanosAt(t time.Time) *string {
	s := strconv.FormatInt(t.UnixNano(), 10)
	return &s
}

func TestSplitClaims(t *testing.T) {
	now := time.Now()
	claims := []models.Claim{
		{Amount: "100", ReleaseAt: models.ReleaseAt{AtTime: nanosAt(now.Add(-time.Hour))}},
		{Amount: "50", ReleaseAt: models.ReleaseAt{AtTime: nanosAt(now.Add(time.Hour))}},
	}

	views, total, ready := SplitClaims(claims, now, 0)
	if len(views) != 2 {
		t.Fatalf("expected 2 claim views, got %d", len(views))
	}
	if !views[0].Ready || views[1].Ready {
		t.Fatalf("readiness: got %v %v, want true false", views[0].Ready, views[1].Ready)
	}
	if total != "150" {
		t.Fatalf("total = %s, want 150", total)
	}
	if ready != "100" {
		t.Fatalf("ready = %s, want 100", ready)
	}
}

func TestSplitClaimsAtHeight(t *testing.T) {
	h := int64(500)
	claims := []models.Claim{
		{Amount: "10", ReleaseAt: models.ReleaseAt{AtHeight: &h}},
	}

	// With a known height, readiness compares against it and a pending
	// claim carries a wall-clock estimate.
	if views, _, _ := SplitClaims(claims, time.Now(), 499); views[0].Ready {
		t.Fatalf("claim at height 500 should not be ready at 499")
	} else if views[0].EstimatedRelease == "" {
		t.Fatalf("pending at-height claim should carry a release estimate")
	}
	if views, _, _ := SplitClaims(claims, time.Now(), 500); !views[0].Ready {
		t.Fatalf("claim at height 500 should be ready at 500")
	}
	// With no height available, at-height claims present as ready.
	if views, _, _ := SplitClaims(claims, time.Now(), 0); !views[0].Ready {
		t.Fatalf("claim should be ready with unknown height")
	}
}

func TestSplitClaimsNever(t *testing.T) {
	claims := []models.Claim{
		{Amount: "25", ReleaseAt: models.ReleaseAt{Never: &struct{}{}}},
	}
	views, total, ready := SplitClaims(claims, time.Now(), 100)
	if views[0].Ready {
		t.Fatalf("never-releasing claim must not be ready")
	}
	if total != "25" || ready != "0" {
		t.Fatalf("total/ready = %s/%s, want 25/0", total, ready)
	}
}

func TestSplitClaimsBadTimestamp(t *testing.T) {
	bad := "not-a-number"
	claims := []models.Claim{
		{Amount: "5", ReleaseAt: models.ReleaseAt{AtTime: &bad}},
	}
	views, _, ready := SplitClaims(claims, time.Now(), 0)
	if views[0].Ready {
		t.Fatalf("unparseable release time must read as pending")
	}
	if ready != "0" {
		t.Fatalf("ready = %s, want 0", ready)
	}
}
