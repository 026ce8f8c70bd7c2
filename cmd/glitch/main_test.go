package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCollectExpressionsFileAppendsAfterFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "looks.txt")
	body := "# preset\nfileA\n\nfileB\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	got, err := collectExpressions([]string{"flag1", "flag2"}, path)
	if err != nil {
		t.Fatalf("collectExpressions failed: %v", err)
	}
	want := []string{"flag1", "flag2", "fileA", "fileB"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCollectExpressionsFlagsOnly(t *testing.T) {
	got, err := collectExpressions([]string{"c*2"}, "")
	if err != nil {
		t.Fatalf("collectExpressions failed: %v", err)
	}
	want := []string{"c*2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCollectExpressionsMissingFile(t *testing.T) {
	if _, err := collectExpressions(nil, filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("collectExpressions succeeded on a missing file, want error")
	}
}
