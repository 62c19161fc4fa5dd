package validation

import (
	"errors"
	"testing"

	"github.com/vietddude/algowatch/internal/core/domain"
)

func TestStruct_Account(t *testing.T) {
	addr := domain.EncodeAddress(make([]byte, 32))

	ok := domain.Account{Address: addr, Name: "Main", Type: domain.AccountTypeStandard}
	if err := Struct(&ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := domain.Account{Address: "NOT-AN-ADDRESS", Name: "Main", Type: domain.AccountTypeWatch}
	err := Struct(&bad)
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "address" {
		t.Errorf("expected field address, got %s", vErr.Field)
	}

	noType := domain.Account{Address: addr, Name: "Main", Type: "hot"}
	if err := Struct(&noType); !errors.As(err, &vErr) || vErr.Field != "type" {
		t.Errorf("expected type validation error, got %v", err)
	}
}

func TestAddress(t *testing.T) {
	if err := Address("address", domain.EncodeAddress(make([]byte, 32))); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Address("address", "abc"); err == nil {
		t.Error("expected error for short address")
	}
}
