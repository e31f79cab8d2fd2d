package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"go-helpdesk/internal/common/models"
)

// fakeSurface records mutation calls and can be programmed to fail per method.
type fakeSurface struct {
	mu       sync.Mutex
	calls    []string
	failures map[string]int // method -> remaining failures
	state    map[string]string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		failures: make(map[string]int),
		state:    make(map[string]string),
	}
}

func (f *fakeSurface) apply(method, field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	if f.failures[method] > 0 {
		f.failures[method]--
		return fmt.Errorf("%s: transient store error", method)
	}
	f.state[field] = value
	return nil
}

func (f *fakeSurface) AssignAgent(_ context.Context, _, agentRef string) error {
	return f.apply("AssignAgent", "agent", agentRef)
}
func (f *fakeSurface) AssignTeam(_ context.Context, _, teamRef string) error {
	return f.apply("AssignTeam", "team", teamRef)
}
func (f *fakeSurface) SetPriority(_ context.Context, _, priority string) error {
	return f.apply("SetPriority", "priority", priority)
}
func (f *fakeSurface) SetStatus(_ context.Context, _, status string) error {
	return f.apply("SetStatus", "status", status)
}
func (f *fakeSurface) SetCategory(_ context.Context, _, category string) error {
	return f.apply("SetCategory", "category", category)
}

func (f *fakeSurface) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, _, _, _, _ string) error {
	f.calls++
	return f.err
}

func TestExecuteOrStopsAtFirstSuccess(t *testing.T) {
	surface := newFakeSurface()
	surface.failures["AssignAgent"] = 10 // A always fails
	exec := NewExecutor(surface, nil, zap.NewNop())

	actions := []models.Action{
		{Type: models.ActionSetAgent, Value: "alice@x.com"}, // fails
		{Type: models.ActionSetStatus, Value: "open"},       // succeeds
		{Type: models.ActionSetCategory, Value: "billing"},  // must never run
	}

	outcomes, failed, partial := exec.Execute(context.Background(), "t1", actions, models.LogicalOr)

	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2 (third action never invoked)", len(outcomes))
	}
	if outcomes[0].OK || !outcomes[1].OK {
		t.Errorf("outcomes = %+v, want fail then success", outcomes)
	}
	if surface.callCount("SetCategory") != 0 {
		t.Error("SetCategory was invoked after the first success")
	}
	if failed {
		t.Error("failed = true, want false (one action succeeded)")
	}
	if partial {
		t.Error("partial = true, want false under OR policy")
	}
}

func TestExecuteOrAllFail(t *testing.T) {
	surface := newFakeSurface()
	surface.failures["AssignAgent"] = 10
	surface.failures["AssignTeam"] = 10
	exec := NewExecutor(surface, nil, zap.NewNop())

	actions := []models.Action{
		{Type: models.ActionSetAgent, Value: "alice@x.com"},
		{Type: models.ActionSetTeam, Value: "tier-2"},
	}

	outcomes, failed, _ := exec.Execute(context.Background(), "t1", actions, models.LogicalOr)
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	if !failed {
		t.Error("failed = false, want true when every action fails")
	}
}

func TestExecuteAndContinuesPastFailure(t *testing.T) {
	surface := newFakeSurface()
	surface.failures["AssignAgent"] = 10
	exec := NewExecutor(surface, nil, zap.NewNop())

	actions := []models.Action{
		{Type: models.ActionSetAgent, Value: "alice@x.com"}, // fails
		{Type: models.ActionSetStatus, Value: "open"},       // succeeds
	}

	outcomes, failed, partial := exec.Execute(context.Background(), "t1", actions, models.LogicalAnd)

	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2 (AND runs everything)", len(outcomes))
	}
	if outcomes[0].OK {
		t.Error("first outcome OK, want failure")
	}
	if !outcomes[1].OK {
		t.Error("second outcome failed, want success")
	}
	if failed {
		t.Error("failed = true, want false")
	}
	if !partial {
		t.Error("partial = false, want true (one failure among successes)")
	}
}

func TestExecuteRetriesTransientErrors(t *testing.T) {
	surface := newFakeSurface()
	surface.failures["SetPriority"] = 1 // fail once, then succeed
	exec := NewExecutor(surface, nil, zap.NewNop())

	actions := []models.Action{{Type: models.ActionSetPriority, Value: "High"}}
	outcomes, failed, _ := exec.Execute(context.Background(), "t1", actions, models.LogicalAnd)

	if failed {
		t.Fatal("failed = true, want recovery on retry")
	}
	if outcomes[0].Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", outcomes[0].Attempts)
	}
	if surface.state["priority"] != "high" {
		t.Errorf("priority = %q, want canonicalized %q", surface.state["priority"], "high")
	}
}

func TestExecuteValidationFailureSkipsMutation(t *testing.T) {
	surface := newFakeSurface()
	exec := NewExecutor(surface, nil, zap.NewNop())

	actions := []models.Action{{Type: models.ActionSetPriority, Value: "supermax"}}
	outcomes, failed, _ := exec.Execute(context.Background(), "t1", actions, models.LogicalAnd)

	if outcomes[0].OK {
		t.Error("invalid option accepted")
	}
	if outcomes[0].Attempts != 0 {
		t.Errorf("Attempts = %d, want 0 (validation failures never reach the store)", outcomes[0].Attempts)
	}
	if surface.callCount("SetPriority") != 0 {
		t.Error("mutation was called despite validation failure")
	}
	if !failed {
		t.Error("failed = false, want true")
	}
}

func TestExecuteIdempotentReapply(t *testing.T) {
	surface := newFakeSurface()
	exec := NewExecutor(surface, nil, zap.NewNop())

	actions := []models.Action{{Type: models.ActionSetStatus, Value: "Closed"}}

	for i := 0; i < 2; i++ {
		outcomes, failed, _ := exec.Execute(context.Background(), "t1", actions, models.LogicalAnd)
		if failed || !outcomes[0].OK {
			t.Fatalf("apply %d failed: %+v", i+1, outcomes)
		}
	}
	if surface.state["status"] != "closed" {
		t.Errorf("status = %q, want %q", surface.state["status"], "closed")
	}
}

func TestNotifyFailureNeverFailsRule(t *testing.T) {
	surface := newFakeSurface()
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	exec := NewExecutor(surface, notifier, zap.NewNop())

	actions := []models.Action{
		{Type: models.ActionAlsoNotify, Config: map[string]interface{}{"channel": "email", "recipient": "ops@x.com"}},
		{Type: models.ActionSetStatus, Value: "open"},
	}

	outcomes, failed, partial := exec.Execute(context.Background(), "t1", actions, models.LogicalAnd)

	if notifier.calls != 1 {
		t.Fatalf("notifier calls = %d, want 1", notifier.calls)
	}
	if !outcomes[0].OK {
		t.Error("notify outcome reads failure, want success despite delivery error")
	}
	if outcomes[0].Detail == "" {
		t.Error("notify outcome should carry the delivery error detail")
	}
	if failed || partial {
		t.Errorf("failed=%v partial=%v, want false/false", failed, partial)
	}
}

func TestExecuteUnknownActionType(t *testing.T) {
	surface := newFakeSurface()
	exec := NewExecutor(surface, nil, zap.NewNop())

	actions := []models.Action{{Type: "send_fax", Value: "x"}}
	outcomes, failed, _ := exec.Execute(context.Background(), "t1", actions, models.LogicalAnd)

	if outcomes[0].OK || !failed {
		t.Error("unknown action type must fail the action")
	}
}

func TestRegisterCustomAction(t *testing.T) {
	surface := newFakeSurface()
	exec := NewExecutor(surface, nil, zap.NewNop())

	var got string
	exec.Register(models.ActionSpec{Type: "add_tag", RequiresValue: true}, func(_ context.Context, _ string, a models.Action) error {
		got = a.Value
		return nil
	})

	actions := []models.Action{{Type: "add_tag", Value: "vip"}}
	outcomes, failed, _ := exec.Execute(context.Background(), "t1", actions, models.LogicalAnd)

	if failed || !outcomes[0].OK {
		t.Fatalf("custom action failed: %+v", outcomes)
	}
	if got != "vip" {
		t.Errorf("handler saw value %q, want vip", got)
	}
}
