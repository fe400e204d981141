package models

import (
	"encoding/json"
	"testing"
)

func TestMoneyUnmarshalAcceptsStringAndNumber(t *testing.T) {
	var fromString Money
	if err := json.Unmarshal([]byte(`"499.995"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if fromString.String() != "500.00" {
		t.Fatalf("expected half-up 500.00, got %s", fromString.String())
	}

	var fromNumber Money
	if err := json.Unmarshal([]byte(`12.5`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if fromNumber.String() != "12.50" {
		t.Fatalf("expected 12.50, got %s", fromNumber.String())
	}
}

func TestMoneyMarshalFixedTwoDecimals(t *testing.T) {
	raw, err := json.Marshal(MustMoney("1050"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `"1050.00"` {
		t.Fatalf("unexpected json: %s", raw)
	}
}
