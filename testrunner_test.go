package depthfx

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadTestScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "waitVisible"},
			{"action": "screenshot", "label": "initial"},
			{"action": "move", "x": 100, "y": 200},
			{"action": "wait", "frames": 3},
			{"action": "path", "fromX": 0, "fromY": 0, "toX": 800, "toY": 600, "frames": 30},
			{"action": "screenshot", "label": "after-move"}
		]
	}`)

	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(runner.steps))
	}
	if runner.steps[1].Action != "screenshot" || runner.steps[1].Label != "initial" {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Action != "move" || runner.steps[2].X != 100 || runner.steps[2].Y != 200 {
		t.Error("step 2 mismatch")
	}
	if st := runner.steps[4]; st.ToX != 800 || st.ToY != 600 || st.Frames != 30 {
		t.Errorf("step 4 = %+v", st)
	}
}

func TestLoadTestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"invalid json", `not json`, "parse test script"},
		{"empty", `{"steps": []}`, "no steps"},
		{"unknown action", `{"steps": [{"action": "click"}]}`, `unknown action "click"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTestScript([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func mustScript(t *testing.T, data string) *TestRunner {
	t.Helper()
	runner, err := LoadTestScript([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	return runner
}

func TestRunnerStepMove(t *testing.T) {
	e, _ := newTestEffect(t)
	runner := mustScript(t, `{"steps": [{"action": "move", "x": 50, "y": 60}]}`)

	runner.step(e)
	if len(e.injectQueue) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(e.injectQueue))
	}
	if runner.Done() {
		t.Error("runner should not be done while inject queue has events")
	}

	e.processInput()
	runner.step(e)
	if !runner.Done() {
		t.Error("runner should be done after all steps executed and queue drained")
	}
}

func TestRunnerStepWait(t *testing.T) {
	e, _ := newTestEffect(t)
	runner := mustScript(t, `{"steps": [
		{"action": "wait", "frames": 3},
		{"action": "screenshot", "label": "done"}
	]}`)

	// The wait step itself counts as the first frame.
	for frame := 1; frame <= 3; frame++ {
		runner.step(e)
		if runner.Done() {
			t.Fatalf("done during wait at frame %d", frame)
		}
	}

	runner.step(e)
	if !runner.Done() {
		t.Error("runner should be done after screenshot step")
	}
	if len(e.screenshotQueue) != 1 || e.screenshotQueue[0] != "done" {
		t.Errorf("expected screenshot 'done', got %v", e.screenshotQueue)
	}
}

func TestRunnerStepPath(t *testing.T) {
	e, _ := newTestEffect(t)
	runner := mustScript(t, `{"steps": [{"action": "path", "fromX": 10, "fromY": 10, "toX": 200, "toY": 200, "frames": 4}]}`)

	runner.step(e)
	if len(e.injectQueue) != 4 {
		t.Fatalf("expected 4 queued events for path, got %d", len(e.injectQueue))
	}
}

func TestRunnerWaitsForInjectQueue(t *testing.T) {
	e, _ := newTestEffect(t)
	runner := mustScript(t, `{"steps": [
		{"action": "path", "fromX": 0, "fromY": 0, "toX": 100, "toY": 100, "frames": 2},
		{"action": "screenshot", "label": "after"}
	]}`)

	runner.step(e)
	runner.step(e)
	if runner.cursor != 1 {
		t.Errorf("cursor should still be 1, got %d", runner.cursor)
	}

	e.processInput()
	e.processInput()
	runner.step(e)
	if len(e.screenshotQueue) != 1 || e.screenshotQueue[0] != "after" {
		t.Errorf("expected screenshot 'after', got %v", e.screenshotQueue)
	}
	if !runner.Done() {
		t.Error("runner should be done")
	}
}

func TestRunnerWaitVisible(t *testing.T) {
	e, _ := newTestEffect(t)
	runner := mustScript(t, `{"steps": [
		{"action": "waitVisible"},
		{"action": "screenshot", "label": "shown"}
	]}`)

	for range 3 {
		runner.step(e)
	}
	if runner.cursor != 0 {
		t.Fatalf("cursor = %d, want 0 while hidden", runner.cursor)
	}

	// A failed effect never becomes visible; the script moves on.
	e.loadErr = errors.New("boom")
	runner.step(e)
	runner.step(e)
	if !runner.Done() || len(e.screenshotQueue) != 1 {
		t.Errorf("done = %v, screenshots = %v", runner.Done(), e.screenshotQueue)
	}
}

func TestRunnerDrivesEffect(t *testing.T) {
	e, _ := newTestEffect(t)
	e.SetTestRunner(mustScript(t, `{"steps": [
		{"action": "move", "x": 800, "y": 600},
		{"action": "wait", "frames": 2},
		{"action": "screenshot", "label": "x"}
	]}`))

	for range 10 {
		e.tick(testDT)
		if e.testRunner.Done() {
			break
		}
	}
	if !e.testRunner.Done() {
		t.Fatal("script did not finish")
	}
	if len(e.screenshotQueue) != 1 {
		t.Errorf("screenshots = %v, want [x]", e.screenshotQueue)
	}
	e.driver.Update(0)
	if got := e.Uniforms().Pointer; !approxEqual(got.X, 1, epsilon) || !approxEqual(got.Y, -1, epsilon) {
		t.Errorf("pointer = %+v, want (1, -1)", got)
	}
}
