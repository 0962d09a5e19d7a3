package dispatch

import (
	"testing"
)

func TestExecutor_Execute(t *testing.T) {
	tests := []struct {
		name         string
		task         Task
		wantSuccess  bool
		wantPanicked bool
	}{
		{"success", func() {}, true, false},
		{"panic", func() { panic("bad") }, false, true},
		{"panic with error", func() { panic(ErrQueueFull) }, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewExecutor().Execute(tt.task)
			if result.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", result.Success, tt.wantSuccess)
			}
			if result.Panicked != tt.wantPanicked {
				t.Errorf("Panicked = %v, want %v", result.Panicked, tt.wantPanicked)
			}
			if tt.wantPanicked && len(result.PanicStack) == 0 {
				t.Error("expected a stack trace for a panicking task")
			}
		})
	}
}

func TestExecutor_PanicHandler(t *testing.T) {
	var gotValue any
	var gotStack []byte
	e := NewExecutor(WithExecutorPanicHandler(func(v any, stack []byte) {
		gotValue = v
		gotStack = stack
	}))

	result := e.Execute(func() { panic(42) })

	if !result.Panicked {
		t.Fatal("expected panicked result")
	}
	if gotValue != 42 {
		t.Errorf("panic handler value = %v, want 42", gotValue)
	}
	if len(gotStack) == 0 {
		t.Error("panic handler received empty stack")
	}
}

func TestExecutor_PanickingPanicHandler(t *testing.T) {
	e := NewExecutor(WithExecutorPanicHandler(func(any, []byte) {
		panic("handler panic")
	}))

	result := e.Execute(func() { panic("task panic") })
	if result.PanicValue != "task panic" {
		t.Errorf("PanicValue = %v, want task panic", result.PanicValue)
	}
}
