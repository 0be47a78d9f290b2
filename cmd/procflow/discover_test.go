package main

import (
	"strings"
	"testing"

	"github.com/procflow/procflow/pkg/config"
	"github.com/procflow/procflow/pkg/pipeline"
)

func TestBuildParamsRejectsUnknownObjectType(t *testing.T) {
	objectsFlag = []string{"po", "case"}
	defer func() { objectsFlag = nil }()

	_, err := buildParams(config.Default())
	if err == nil {
		t.Fatal("unknown object type accepted, want error")
	}
	if !strings.Contains(err.Error(), "case") {
		t.Errorf("error %q does not name the bad type", err)
	}
}

func TestBuildParamsRejectsUnknownStartType(t *testing.T) {
	startTypeFlag = "order"
	defer func() { startTypeFlag = "" }()

	_, err := buildParams(config.Default())
	if err == nil {
		t.Fatal("unknown start type accepted, want error")
	}
	if !strings.Contains(err.Error(), "order") {
		t.Errorf("error %q does not name the bad type", err)
	}
}

func TestBuildParamsValidObjects(t *testing.T) {
	objectsFlag = []string{"po", "gr"}
	defer func() { objectsFlag = nil }()

	params, err := buildParams(config.Default())
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if len(params.Objects) != 2 {
		t.Errorf("params.Objects = %v, want [po gr]", params.Objects)
	}
}

func TestBuildParamsValidStartType(t *testing.T) {
	startTypeFlag = "inv"
	defer func() { startTypeFlag = "" }()

	params, err := buildParams(config.Default())
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	params.Normalize()
	if params.Mode != pipeline.ModeStartEvent || params.StartType != "inv" {
		t.Errorf("mode = %s, start type = %s; want start_event/inv",
			params.Mode, params.StartType)
	}
}
