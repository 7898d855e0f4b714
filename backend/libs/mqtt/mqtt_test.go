package mqtt

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewClientRejectsMissingSettings(t *testing.T) {
	if _, err := NewClient(Options{ClientID: "control"}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for empty broker")
	}
	if _, err := NewClient(Options{Broker: "tcp://localhost:1883", ClientID: "  "}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for empty client id")
	}
}

func TestDisconnectToleratesNilClient(t *testing.T) {
	Disconnect(nil)
}
