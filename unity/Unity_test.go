//go:build python

package unity_test

import (
	"os"
	"strconv"
	"testing"

	"github.com/samuelfneumann/rlenv/unity"
	"gonum.org/v1/gonum/mat"
)

// unityFile returns the Unity executable to test against, skipping
// the test when none is configured
func unityFile(t *testing.T) string {
	t.Helper()
	file := os.Getenv("RLENV_UNITY_FILE")
	if file == "" {
		t.Skip("RLENV_UNITY_FILE not set")
	}
	return file
}

func TestMakeResetStep(t *testing.T) {
	env, err := unity.Make(unityFile(t), 0)
	if err != nil {
		t.Fatalf("make: %v", err)
	}
	defer env.Close()

	names := env.BrainNames()
	if len(names) == 0 {
		t.Fatalf("brainNames: expected at least one brain")
	}

	infos, err := env.Reset(true)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	info, ok := infos[names[0]]
	if !ok {
		t.Fatalf("reset: no info for brain %v", names[0])
	}
	if len(info.LocalDone) != info.Agents() {
		t.Errorf("reset: %v done flags for %v agents", len(info.LocalDone),
			info.Agents())
	}

	agents := info.Agents()
	actionSize := 4
	if n, err := strconv.Atoi(os.Getenv("RLENV_UNITY_ACTION_SIZE")); err == nil {
		actionSize = n
	}
	infos, err = env.Step(mat.NewDense(agents, actionSize, nil))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if got := infos[names[0]].Agents(); got != agents {
		t.Errorf("step: expected %v agents, got %v", agents, got)
	}
}
