package config

import "testing"

func TestValidateRejectsTimeoutNotExceedingInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Registry.HeartbeatInterval = cfg.Registry.HeartbeatTimeout

	if err := Validate(cfg); err == nil {
		t.Error("expected error when heartbeat timeout does not exceed interval")
	}
}

func TestValidateAcceptsDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Errorf("expected default config to validate, got: %v", err)
	}
}

func TestValidateRejectsMirrorEnabledWithoutBucket(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mirror.Enabled = true
	cfg.Mirror.Bucket = ""

	if err := Validate(cfg); err == nil {
		t.Error("expected error when mirror is enabled without a bucket")
	}
}
