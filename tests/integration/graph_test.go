package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGraphBuild(t *testing.T) {
	libDir := setupTestLibrary(t)

	output, err := runLibris(t, libDir, "graph", "build")
	if err != nil {
		t.Fatalf("graph build failed: %v\nOutput: %s", err, output)
	}

	var result struct {
		Status    string  `json:"status"`
		Documents int     `json:"documents"`
		Topics    int     `json:"topics"`
		Links     int     `json:"links"`
		Threshold float64 `json:"threshold"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Status != "built" {
		t.Errorf("expected status 'built', got %q", result.Status)
	}
	if result.Documents != 3 || result.Topics != 2 {
		t.Errorf("expected 3 documents in 2 topics, got %+v", result)
	}
	// Only the two aligned AI vectors clear the default threshold
	if result.Links != 1 {
		t.Errorf("expected 1 link, got %d", result.Links)
	}
	if result.Threshold != 0.3 {
		t.Errorf("expected default threshold 0.3, got %v", result.Threshold)
	}

	// The graph document on disk now carries the derived sections
	data, err := os.ReadFile(filepath.Join(libDir, "data", "knowledge_graph_embeddings.json"))
	if err != nil {
		t.Fatal(err)
	}
	var g struct {
		Clusters []struct {
			Topic string `json:"topic"`
			Color string `json:"color"`
		} `json:"clusters"`
		Links []struct {
			Source     string  `json:"source"`
			Target     string  `json:"target"`
			Similarity float64 `json:"similarity"`
		} `json:"links"`
		Metadata struct {
			TotalLinks int `json:"total_links"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &g); err != nil {
		t.Fatalf("failed to parse graph document: %v", err)
	}
	if len(g.Clusters) != 2 {
		t.Errorf("expected 2 clusters in graph document, got %d", len(g.Clusters))
	}
	if len(g.Links) != 1 || g.Metadata.TotalLinks != 1 {
		t.Fatalf("expected 1 link in graph document, got %d (metadata %d)", len(g.Links), g.Metadata.TotalLinks)
	}
	link := g.Links[0]
	if link.Source != "deep-learning" || link.Target != "ml-basics" {
		t.Errorf("expected link deep-learning -> ml-basics (sorted ids), got %s -> %s", link.Source, link.Target)
	}
	if link.Similarity <= 0.9 {
		t.Errorf("expected high similarity for aligned vectors, got %v", link.Similarity)
	}
}

func TestGraphBuildThresholdFlag(t *testing.T) {
	libDir := setupTestLibrary(t)

	output, err := runLibris(t, libDir, "graph", "build", "--threshold", "0.999")
	if err != nil {
		t.Fatalf("graph build failed: %v\nOutput: %s", err, output)
	}

	var result struct {
		Links     int     `json:"links"`
		Threshold float64 `json:"threshold"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Threshold != 0.999 {
		t.Errorf("expected threshold 0.999, got %v", result.Threshold)
	}
	if result.Links != 0 {
		t.Errorf("expected no links above 0.999, got %d", result.Links)
	}
}

func TestGraphBuildInvalidThreshold(t *testing.T) {
	libDir := setupTestLibrary(t)

	output, err := runLibris(t, libDir, "graph", "build", "--threshold", "1.5")
	if err == nil {
		t.Fatal("expected graph build to reject threshold 1.5")
	}
	if !strings.Contains(output, "between 0 and 1") {
		t.Errorf("expected range error in output, got: %s", output)
	}
}

func TestGraphCheckClean(t *testing.T) {
	libDir := setupTestLibrary(t)

	if output, err := runLibris(t, libDir, "graph", "build"); err != nil {
		t.Fatalf("graph build failed: %v\nOutput: %s", err, output)
	}

	output, err := runLibris(t, libDir, "graph", "check")
	if err != nil {
		t.Fatalf("graph check failed: %v\nOutput: %s", err, output)
	}

	var result struct {
		Status   string `json:"status"`
		Links    int    `json:"links"`
		Clusters int    `json:"clusters"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", result.Status)
	}
	if result.Links != 1 || result.Clusters != 2 {
		t.Errorf("expected 1 link and 2 clusters, got %+v", result)
	}
}

func TestGraphCheckBadLink(t *testing.T) {
	libDir := setupTestLibrary(t)

	// A link pointing at a document with no embedding record
	graphDoc := `{
  "embeddings": {
    "ml-basics": {"embedding": [1, 0], "topic": "AI", "topicConfidence": 0.9}
  },
  "links": [
    {"source": "ml-basics", "target": "ghost", "similarity": 0.5, "weight": 0.5}
  ]
}`
	graphPath := filepath.Join(libDir, "data", "knowledge_graph_embeddings.json")
	if err := os.WriteFile(graphPath, []byte(graphDoc), 0644); err != nil {
		t.Fatal(err)
	}

	output, err := runLibris(t, libDir, "graph", "check")
	if err == nil {
		t.Fatal("expected graph check to fail")
	}
	if code := exitCode(err); code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}

	var result struct {
		Status   string   `json:"status"`
		Problems []string `json:"problems"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Status != "issues" {
		t.Errorf("expected status 'issues', got %q", result.Status)
	}
	found := false
	for _, p := range result.Problems {
		if strings.Contains(p, "ghost") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a problem naming 'ghost', got %v", result.Problems)
	}
}

func TestGraphCheckMissingGraph(t *testing.T) {
	libDir := setupTestLibrary(t)

	if err := os.Remove(filepath.Join(libDir, "data", "knowledge_graph_embeddings.json")); err != nil {
		t.Fatal(err)
	}

	output, err := runLibris(t, libDir, "graph", "check")
	if err == nil {
		t.Fatal("expected graph check to fail without a graph document")
	}
	if code := exitCode(err); code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}
	if !strings.Contains(output, "graph build") {
		t.Errorf("expected build hint in output, got: %s", output)
	}
}

func TestVizToFile(t *testing.T) {
	libDir := setupTestLibrary(t)

	if output, err := runLibris(t, libDir, "graph", "build"); err != nil {
		t.Fatalf("graph build failed: %v\nOutput: %s", err, output)
	}

	output, err := runLibris(t, libDir, "viz", "--output", "graph.html")
	if err != nil {
		t.Fatalf("viz failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, `"output":"graph.html"`) {
		t.Errorf("expected output confirmation, got: %s", output)
	}

	html, err := os.ReadFile(filepath.Join(libDir, "graph.html"))
	if err != nil {
		t.Fatalf("viz did not write the output file: %v", err)
	}
	for _, want := range []string{"cytoscape", "Machine Learning Basics", "The Pasta Guide"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("expected %q in generated HTML", want)
		}
	}
}

func TestVizStdout(t *testing.T) {
	libDir := setupTestLibrary(t)

	if output, err := runLibris(t, libDir, "graph", "build"); err != nil {
		t.Fatalf("graph build failed: %v\nOutput: %s", err, output)
	}

	output, err := runLibris(t, libDir, "viz", "--layout", "circle")
	if err != nil {
		t.Fatalf("viz failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "<!DOCTYPE html>") {
		t.Error("expected HTML on stdout")
	}
	if !strings.Contains(output, `const layout = "circle"`) {
		t.Error("expected circle layout in generated HTML")
	}
}

func TestVizInvalidLayout(t *testing.T) {
	libDir := setupTestLibrary(t)

	if output, err := runLibris(t, libDir, "graph", "build"); err != nil {
		t.Fatalf("graph build failed: %v\nOutput: %s", err, output)
	}

	output, err := runLibris(t, libDir, "viz", "--layout", "spiral")
	if err == nil {
		t.Fatal("expected viz to reject layout 'spiral'")
	}
	if !strings.Contains(output, "spiral") {
		t.Errorf("expected layout name in error, got: %s", output)
	}
}
