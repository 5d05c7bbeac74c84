package core

import (
	"errors"
	"testing"

	"flowcore/pkg/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore()
	if err != nil {
		t.Fatalf("construct store: %v", err)
	}
	return s
}

func TestNewStoreSeedsDefaults(t *testing.T) {
	s := newTestStore(t)

	if s.Modified() {
		t.Fatalf("fresh case must not be dirty")
	}
	materials := s.Materials()
	if len(materials) != 1 || materials[0].Name != DefaultMaterial || materials[0].ID != 1 {
		t.Fatalf("expected seeded %q with id 1, got %+v", DefaultMaterial, materials)
	}
	got, err := s.GetValue(".//general/flowType")
	if err != nil {
		t.Fatalf("read default flow type: %v", err)
	}
	if got != "incompressible" {
		t.Fatalf("unexpected default flow type %q", got)
	}
}

func TestSetValueNormalizesAndMarksDirty(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetValue(".//general/operatingPressure", " 2.5E4 "); err != nil {
		t.Fatalf("set pressure: %v", err)
	}
	got, err := s.GetValue(".//general/operatingPressure")
	if err != nil {
		t.Fatalf("read pressure back: %v", err)
	}
	if got != "2.5e4" {
		t.Fatalf("expected normalized %q, got %q", "2.5e4", got)
	}
	if !s.Modified() {
		t.Fatalf("successful edit must mark the case dirty")
	}
}

func TestSetValueRejectionsLeaveValueStanding(t *testing.T) {
	s := newTestStore(t)
	const path = ".//general/operatingPressure"

	cases := []struct {
		value string
		code  domain.Code
	}{
		{"-5", domain.CodeOutOfRange},
		{"fast", domain.CodeFloatOnly},
		{"1e9", domain.CodeOutOfRange},
	}
	for _, tc := range cases {
		err := s.SetValue(path, tc.value)
		if !domain.IsValidation(err, tc.code) {
			t.Fatalf("setting %q: expected %s, got %v", tc.value, tc.code, err)
		}
	}

	got, err := s.GetValue(path)
	if err != nil {
		t.Fatalf("read pressure: %v", err)
	}
	if got != "101325" {
		t.Fatalf("rejected edits must leave the prior value, got %q", got)
	}
	if s.Modified() {
		t.Fatalf("rejected edits must not mark the case dirty")
	}
}

func TestSetValueIntegerLeaf(t *testing.T) {
	s := newTestStore(t)
	const path = ".//runConditions/numberOfIterations"

	if err := s.SetValue(path, "500"); err != nil {
		t.Fatalf("set iterations: %v", err)
	}
	if err := s.SetValue(path, "3.5"); !domain.IsValidation(err, domain.CodeIntegerOnly) {
		t.Fatalf("expected integer_only, got %v", err)
	}
}

func TestValueOperationsRequireDeclaredLeaves(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetValue(".//general"); !errors.Is(err, domain.ErrLeafExpected) {
		t.Fatalf("structural read: expected leaf error, got %v", err)
	}
	if err := s.SetValue(".//general", "x"); !errors.Is(err, domain.ErrLeafExpected) {
		t.Fatalf("structural write: expected leaf error, got %v", err)
	}
	if _, err := s.GetValue(".//general/nope"); !errors.Is(err, domain.ErrPathResolution) {
		t.Fatalf("missing node: expected path error, got %v", err)
	}
	if _, err := s.GetValue(".//monitors//name"); !errors.Is(err, domain.ErrPathResolution) {
		t.Fatalf("zero matches: expected path error, got %v", err)
	}
}

func TestAttributeAccess(t *testing.T) {
	s := newTestStore(t)
	const path = ".//materials/material"

	got, err := s.GetAttribute(path, "mid")
	if err != nil {
		t.Fatalf("read mid: %v", err)
	}
	if got != "1" {
		t.Fatalf("expected mid 1, got %q", got)
	}

	if err := s.SetAttribute(path, "mid", "7"); err != nil {
		t.Fatalf("set mid: %v", err)
	}
	if got, _ := s.GetAttribute(path, "mid"); got != "7" {
		t.Fatalf("expected mid 7 after edit, got %q", got)
	}

	if _, err := s.GetAttribute(path, "color"); !errors.Is(err, domain.ErrAttributeUndeclared) {
		t.Fatalf("expected undeclared attribute error, got %v", err)
	}
	if err := s.SetAttribute(path, "color", "red"); !errors.Is(err, domain.ErrAttributeUndeclared) {
		t.Fatalf("undeclared attribute write must fail, got %v", err)
	}
}

func TestSerializeAndReplaceDocument(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetValue(".//general/operatingPressure", "90000"); err != nil {
		t.Fatalf("set pressure: %v", err)
	}
	payload, err := s.SerializeDocument()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	other := newTestStore(t)
	if err := other.ReplaceDocument(payload); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if other.Modified() {
		t.Fatalf("replaced document starts clean")
	}
	got, err := other.GetValue(".//general/operatingPressure")
	if err != nil {
		t.Fatalf("read replaced value: %v", err)
	}
	if got != "90000" {
		t.Fatalf("expected carried value 90000, got %q", got)
	}

	if err := other.ReplaceDocument([]byte("not xml")); err == nil {
		t.Fatalf("garbage payload accepted")
	}
	invalid := []byte(`<?xml version="1.0"?><case><general><operatingPressure>-1</operatingPressure></general></case>`)
	if err := other.ReplaceDocument(invalid); err == nil {
		t.Fatalf("schema-invalid payload accepted")
	}
}
