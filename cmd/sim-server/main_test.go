package main

import (
	"testing"
	"time"

	"github.com/emstrain/emstrain/internal/config"
	"github.com/emstrain/emstrain/internal/platform/oracle"
)

func TestBuildOracle_Scripted(t *testing.T) {
	orc, err := buildOracle(&config.Config{OracleMode: config.OracleModeScripted})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := orc.(*oracle.Scripted); !ok {
		t.Errorf("expected *oracle.Scripted, got %T", orc)
	}
}

func TestBuildOracle_HTTP(t *testing.T) {
	orc, err := buildOracle(&config.Config{
		OracleMode:    config.OracleModeHTTP,
		OracleBaseURL: "http://oracle.internal:9000",
		OracleTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := orc.(*oracle.HTTPOracle); !ok {
		t.Errorf("expected *oracle.HTTPOracle, got %T", orc)
	}
}

func TestBuildOracle_OpenAI(t *testing.T) {
	orc, err := buildOracle(&config.Config{
		OracleMode:   config.OracleModeOpenAI,
		OracleAPIKey: "sk-test",
		OracleModel:  "gpt-4o",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := orc.(*oracle.LLMOracle); !ok {
		t.Errorf("expected *oracle.LLMOracle, got %T", orc)
	}
}

func TestBuildOracle_UnknownFallsBackToScripted(t *testing.T) {
	orc, err := buildOracle(&config.Config{OracleMode: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := orc.(*oracle.Scripted); !ok {
		t.Errorf("expected *oracle.Scripted, got %T", orc)
	}
}
