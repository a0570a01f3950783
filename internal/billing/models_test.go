package billing

import (
	"testing"
	"time"
)

func TestEntitledPaidPlans(t *testing.T) {
	now := time.Now()
	if !Entitled(Snapshot{Plan: PlanPremium, Status: StatusActive}, now) {
		t.Fatalf("active premium should be entitled")
	}
	if !Entitled(Snapshot{Plan: PlanFamily, Status: StatusActive}, now) {
		t.Fatalf("active family should be entitled")
	}
	if !Entitled(Snapshot{Plan: PlanPremium, Status: StatusCanceled}, now) {
		t.Fatalf("canceled premium keeps its grace period")
	}
	if Entitled(Snapshot{Plan: PlanFree, Status: StatusActive}, now) {
		t.Fatalf("active free plan is not entitled")
	}
}

func TestEntitledTrial(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	if !Entitled(Snapshot{Plan: PlanFree, Status: StatusTrial, TrialEnd: &future}, now) {
		t.Fatalf("running trial should be entitled")
	}
	if Entitled(Snapshot{Plan: PlanFree, Status: StatusTrial, TrialEnd: &past}, now) {
		t.Fatalf("ended trial should not be entitled")
	}
	// Legacy accounts have no trial end recorded at all.
	if !Entitled(Snapshot{Plan: PlanFree, Status: StatusTrial}, now) {
		t.Fatalf("trial without end date must stay entitled")
	}
}

func TestEntitledExpired(t *testing.T) {
	now := time.Now()
	if Entitled(Snapshot{Plan: PlanPremium, Status: StatusExpired}, now) {
		t.Fatalf("expired subscription is not entitled")
	}
	if Entitled(Snapshot{Plan: PlanFamily, Status: "weird"}, now) {
		t.Fatalf("unknown status must fail closed")
	}
}
