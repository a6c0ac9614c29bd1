package session

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

const supervisorTestPrefix = "session:supervisor_test"

// fakeRunner counts supervisor calls; Connect succeeds once failBefore
// attempts have failed.
type fakeRunner struct {
	failBefore  int
	connects    int
	registers   int
	serves      int
	registerErr error
}

func (r *fakeRunner) Connect(url string) bool {
	r.connects++
	return r.connects > r.failBefore
}

func (r *fakeRunner) Register() error {
	r.registers++
	return r.registerErr
}

func (r *fakeRunner) Serve() {
	r.serves++
}

func TestSupervisor_ConnectsFirstTry(t *testing.T) {
	runner := &fakeRunner{}
	sv := NewSupervisor(runner, "nats://hub:4222", 10, time.Millisecond)

	if err := sv.Run(); err != nil {
		t.Fatalf("%s - Run failed: %v", supervisorTestPrefix, err)
	}
	if runner.connects != 1 {
		t.Errorf("%s - connects = %d, want 1", supervisorTestPrefix, runner.connects)
	}
	if runner.registers != 1 || runner.serves != 1 {
		t.Errorf("%s - registers/serves = %d/%d, want 1/1", supervisorTestPrefix, runner.registers, runner.serves)
	}
}

func TestSupervisor_RetriesThenSucceeds(t *testing.T) {
	runner := &fakeRunner{failBefore: 2}
	sv := NewSupervisor(runner, "nats://hub:4222", 5, time.Millisecond)

	if err := sv.Run(); err != nil {
		t.Fatalf("%s - Run failed: %v", supervisorTestPrefix, err)
	}
	if runner.connects != 3 {
		t.Errorf("%s - connects = %d, want 3", supervisorTestPrefix, runner.connects)
	}
	if runner.serves != 1 {
		t.Errorf("%s - serves = %d, want 1", supervisorTestPrefix, runner.serves)
	}
}

func TestSupervisor_RetriesExhausted(t *testing.T) {
	runner := &fakeRunner{failBefore: 100}
	sv := NewSupervisor(runner, "nats://hub:4222", 4, time.Millisecond)

	err := sv.Run()
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("%s - err = %v, want ErrRetriesExhausted", supervisorTestPrefix, err)
	}
	if runner.connects != 4 {
		t.Errorf("%s - connects = %d, want exactly maxRetries", supervisorTestPrefix, runner.connects)
	}
	if runner.registers != 0 || runner.serves != 0 {
		t.Errorf("%s - registers/serves = %d/%d, want 0/0", supervisorTestPrefix, runner.registers, runner.serves)
	}
}

func TestSupervisor_RegistrationFailureIsSoft(t *testing.T) {
	runner := &fakeRunner{registerErr: fmt.Errorf("hub rejected manifest")}
	sv := NewSupervisor(runner, "nats://hub:4222", 3, time.Millisecond)

	if err := sv.Run(); err != nil {
		t.Fatalf("%s - Run failed: %v", supervisorTestPrefix, err)
	}
	if runner.serves != 1 {
		t.Errorf("%s - serves = %d, want serving despite registration failure", supervisorTestPrefix, runner.serves)
	}
}
