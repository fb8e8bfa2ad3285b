package relay

import (
	"strings"
	"testing"
	"time"
)

func TestDialRetriesConfiguredAttempts(t *testing.T) {
	// A malformed URI fails in the client before any network I/O, so the
	// loop exercises nothing but the retry schedule.
	start := time.Now()
	_, err := Dial("amqp://%zz", 3, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected dial failure")
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error should report the attempt count: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected two inter-attempt delays, elapsed %s", elapsed)
	}
}

func TestDialDefaultsAttempts(t *testing.T) {
	_, err := Dial("amqp://%zz", 0, time.Millisecond)
	if err == nil {
		t.Fatal("expected dial failure")
	}
	if !strings.Contains(err.Error(), "after 5 attempts") {
		t.Errorf("zero attempts should fall back to 5: %v", err)
	}
}
