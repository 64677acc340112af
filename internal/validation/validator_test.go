// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Name  string `validate:"required"`
	Level string `validate:"oneof=debug info warn error"`
	Limit int    `validate:"min=1,max=100"`
}

func TestValidateStructOK(t *testing.T) {
	s := sample{Name: "x", Level: "info", Limit: 10}
	if err := ValidateStruct(&s); err != nil {
		t.Errorf("ValidateStruct() error = %v, want nil", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	s := sample{Level: "loud", Limit: 0}
	err := ValidateStruct(&s)
	if err == nil {
		t.Fatal("ValidateStruct() error = nil, want validation failure")
	}

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("error %T is not *Error", err)
	}
	if len(verr.Fields()) != 3 {
		t.Errorf("Fields() = %v, want 3 failures", verr.Fields())
	}
	msg := verr.Error()
	for _, want := range []string{"Name is required", "must be one of", "at least 1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestValidatorIsSingleton(t *testing.T) {
	if Validator() != Validator() {
		t.Error("Validator() returned different instances")
	}
}
