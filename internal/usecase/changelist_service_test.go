package usecase

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildChangeList(t *testing.T) {
	t.Run("renders one node per complete row", func(t *testing.T) {
		rows := [][]string{
			{"http://x.com/01/9/10/PO1", "attr1", "string", "red"},
		}

		content, nodes := BuildChangeList(rows)

		want := "<ChangeNode URL=\"http://x.com/01/9/10/PO1\" >\n" +
			"\t<ChangeAttribute Id=\"attr1\" Type=\"string\" Value=\"red\" />\n" +
			"</ChangeNode>\n"
		if content != want {
			t.Errorf("content = %q, want %q", content, want)
		}
		if nodes != 1 {
			t.Errorf("nodes = %d, want 1", nodes)
		}
	})

	t.Run("joins nodes with newlines and ends with one", func(t *testing.T) {
		rows := [][]string{
			{"u1", "i1", "t1", "v1"},
			{"u2", "i2", "t2", "v2"},
		}

		content, nodes := BuildChangeList(rows)

		if nodes != 2 {
			t.Errorf("nodes = %d, want 2", nodes)
		}
		if !strings.HasSuffix(content, "</ChangeNode>\n") {
			t.Errorf("content does not end with a newline: %q", content)
		}
		if strings.Count(content, "<ChangeNode") != 2 {
			t.Errorf("content = %q, want 2 nodes", content)
		}
	})

	t.Run("skips rows missing any of the four values", func(t *testing.T) {
		rows := [][]string{
			{"u1", "", "t1", "v1"},
			{"u2", "i2", "t2"},
			{"", "", "", ""},
			{"u4", "i4", "t4", "v4"},
		}

		_, nodes := BuildChangeList(rows)

		if nodes != 1 {
			t.Errorf("nodes = %d, want 1", nodes)
		}
	})

	t.Run("trims cell values", func(t *testing.T) {
		rows := [][]string{{" u ", " i ", " t ", " v "}}

		content, _ := BuildChangeList(rows)

		if !strings.Contains(content, `URL="u" `) || !strings.Contains(content, `Value="v" `) {
			t.Errorf("content = %q, want trimmed values", content)
		}
	})

	t.Run("escapes XML metacharacters in attributes", func(t *testing.T) {
		rows := [][]string{{`http://x.com?a=1&b=2`, "id", "string", `va"<lue>`}}

		content, _ := BuildChangeList(rows)

		if !strings.Contains(content, `URL="http://x.com?a=1&amp;b=2"`) {
			t.Errorf("content = %q, ampersand not escaped", content)
		}
		if !strings.Contains(content, `Value="va&quot;&lt;lue&gt;"`) {
			t.Errorf("content = %q, quote/brackets not escaped", content)
		}
	})

	t.Run("no usable rows yields empty content", func(t *testing.T) {
		content, nodes := BuildChangeList([][]string{{"only", "three", "cells"}})

		if content != "" || nodes != 0 {
			t.Errorf("content = %q, nodes = %d, want empty", content, nodes)
		}
	})
}

func TestChangelistProcessFile(t *testing.T) {
	t.Run("writes the xml file next to the input", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "changes.xlsx")
		if err := os.WriteFile(input, []byte{}, 0o644); err != nil {
			t.Fatalf("failed to create input: %v", err)
		}

		reader := &fakeReader{tables: map[string][][]string{
			"changes.xlsx": {{"u", "i", "t", "v"}},
		}}
		svc := NewChangelistService(reader)

		result := svc.ProcessFile(input)
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}

		if result.OutputPath != filepath.Join(dir, "changes.xml") {
			t.Errorf("OutputPath = %s, want changes.xml next to the input", result.OutputPath)
		}
		if result.Nodes != 1 {
			t.Errorf("Nodes = %d, want 1", result.Nodes)
		}

		data, err := os.ReadFile(result.OutputPath)
		if err != nil {
			t.Fatalf("output not written: %v", err)
		}
		if !strings.Contains(string(data), "<ChangeNode") {
			t.Errorf("output = %q, want a ChangeNode", data)
		}
	})

	t.Run("an input with no usable rows still writes an empty file", func(t *testing.T) {
		dir := t.TempDir()
		input := filepath.Join(dir, "empty.xlsx")
		if err := os.WriteFile(input, []byte{}, 0o644); err != nil {
			t.Fatalf("failed to create input: %v", err)
		}

		reader := &fakeReader{tables: map[string][][]string{"empty.xlsx": {}}}
		svc := NewChangelistService(reader)

		result := svc.ProcessFile(input)
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "empty.xml"))
		if err != nil {
			t.Fatalf("output not written: %v", err)
		}
		if len(data) != 0 {
			t.Errorf("output = %q, want empty", data)
		}
	})

	t.Run("reader failure is captured in the result", func(t *testing.T) {
		svc := NewChangelistService(&fakeReader{})

		result := svc.ProcessFile("missing.xlsx")
		if result.Err == nil {
			t.Errorf("Err = nil, want read failure")
		}
	})
}

func TestChangelistProcessDirectory(t *testing.T) {
	t.Run("processes workbooks in sorted order and continues past failures", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"b.xlsx", "a.xlsm", "~$a.xlsm", "notes.txt"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644); err != nil {
				t.Fatalf("failed to create %s: %v", name, err)
			}
		}

		reader := &fakeReader{tables: map[string][][]string{
			"a.xlsm": {{"u", "i", "t", "v"}},
			// b.xlsx stays unreadable
		}}
		svc := NewChangelistService(reader)

		results, err := svc.ProcessDirectory(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(results) != 2 {
			t.Fatalf("results = %v, want 2", results)
		}
		if filepath.Base(results[0].InputPath) != "a.xlsm" || results[0].Err != nil {
			t.Errorf("results[0] = %+v, want successful a.xlsm", results[0])
		}
		if filepath.Base(results[1].InputPath) != "b.xlsx" || results[1].Err == nil {
			t.Errorf("results[1] = %+v, want failed b.xlsx", results[1])
		}
	})
}
