package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := New(CodeMissingColumn, "required column missing")
	got := err.Error()
	if !strings.HasPrefix(got, "[E104] required column missing") {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := Wrap(cause, CodeWriteFailed, "failed to write artifact")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error lost its cause")
	}
	if !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("Error() = %q, should include cause", err.Error())
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CodeUnknown, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestWithContext(t *testing.T) {
	err := New(CodeFileNotFound, "no such file").WithContext("path", "/tmp/x.csv")
	if !strings.Contains(err.Error(), "path=/tmp/x.csv") {
		t.Errorf("Error() = %q, should include context", err.Error())
	}
}

func TestIsCode(t *testing.T) {
	err := Wrap(New(CodeInvalidTimestamp, "bad date"), CodeParseFailed, "load failed")

	if !IsCode(err, CodeParseFailed) {
		t.Error("outer code not matched")
	}
	if IsCode(err, CodeDuckDBInit) {
		t.Error("unrelated code matched")
	}
	if IsCode(nil, CodeUnknown) {
		t.Error("nil error matched a code")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(CodeBuildFailed, "x")); got != CodeBuildFailed {
		t.Errorf("GetCode = %v", got)
	}
	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Errorf("GetCode(plain) = %v, want CodeUnknown", got)
	}
}

func TestConstructors(t *testing.T) {
	if !IsCode(FileNotFound("/x"), CodeFileNotFound) {
		t.Error("FileNotFound code mismatch")
	}
	if !IsCode(MissingColumn("date", []string{"a"}), CodeMissingColumn) {
		t.Error("MissingColumn code mismatch")
	}
	if !IsCode(InvalidTimestamp("nope", 7), CodeInvalidTimestamp) {
		t.Error("InvalidTimestamp code mismatch")
	}
	if !IsCode(ContextCanceled("discover"), CodeContextCanceled) {
		t.Error("ContextCanceled code mismatch")
	}
}
