package shutdown

import (
	"context"
	"syscall"
	"testing"
	"time"
)

func TestStopCancels(t *testing.T) {
	ctx, stop := NotifyContext(context.Background(), nil)
	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled by stop")
	}
}

func TestParentCancelPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := NotifyContext(parent, nil)
	defer stop()
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancel not propagated")
	}
}

func TestSignalCancels(t *testing.T) {
	ctx, stop := NotifyContext(context.Background(), nil)
	defer stop()
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("SIGTERM did not cancel")
	}
}
