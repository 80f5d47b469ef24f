// Package integration provides end-to-end tests for the libris CLI.
package integration

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

var (
	librisBinary string
	librisOnce   sync.Once
	librisErr    error
)

// getLibrisBinary builds the libris binary once and returns its path.
func getLibrisBinary(t *testing.T) string {
	t.Helper()
	librisOnce.Do(func() {
		// Get module root directory
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			librisErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		// Build libris to a temp location
		tmpDir, err := os.MkdirTemp("", "libris-test-*")
		if err != nil {
			librisErr = err
			return
		}
		librisBinary = filepath.Join(tmpDir, "libris")

		cmd := exec.Command("go", "build", "-o", librisBinary, "./cmd/libris")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			librisErr = &buildError{output: string(output), err: err}
			return
		}
	})
	if librisErr != nil {
		t.Fatalf("failed to build libris: %v", librisErr)
	}
	return librisBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// testCollection is the document collection used by the test library.
const testCollection = `[
  {
    "id": "ml-basics",
    "filename": "ml-basics.md",
    "filepath": "documents/ml-basics.md",
    "title": "Machine Learning Basics",
    "authors": ["Rivera"],
    "upload_date": "2025-04-01T10:00:00Z",
    "file_size": 64,
    "summary": "An introduction to supervised learning.",
    "keywords": ["learning", "models"],
    "category": "AI",
    "difficulty": "Beginner"
  },
  {
    "id": "deep-learning",
    "filename": "deep-learning.md",
    "filepath": "documents/deep-learning.md",
    "title": "Deep Learning in Practice",
    "authors": ["Nakamura"],
    "upload_date": "2025-04-02T10:00:00Z",
    "file_size": 64,
    "summary": "Training neural networks end to end.",
    "keywords": ["neural", "networks"],
    "category": "AI",
    "difficulty": "Advanced"
  },
  {
    "id": "pasta-guide",
    "filename": "pasta-guide.md",
    "filepath": "documents/pasta-guide.md",
    "title": "The Pasta Guide",
    "upload_date": "2025-04-03T10:00:00Z",
    "file_size": 64,
    "summary": "Fresh pasta from scratch.",
    "category": "Research",
    "difficulty": "Beginner"
  }
]
`

// testEmbeddings is the embeddings section of the graph document. The
// two AI documents point the same way; the pasta guide is orthogonal.
const testEmbeddings = `{
  "embeddings": {
    "ml-basics": {"embedding": [1, 0], "topic": "AI", "topicConfidence": 0.9},
    "deep-learning": {"embedding": [0.95, 0.05], "topic": "AI", "topicConfidence": 0.8},
    "pasta-guide": {"embedding": [0, 1], "topic": "Cooking", "topicConfidence": 0.7}
  }
}
`

// setupTestLibrary creates a populated library with three documents,
// their files, and an embeddings file.
func setupTestLibrary(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(tmpDir, ".libris", "cache"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ".libris", "config.json"), []byte(`{"version": 1}`), 0644); err != nil {
		t.Fatal(err)
	}

	dataDir := filepath.Join(tmpDir, "data")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "documents.json"), []byte(testCollection), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "knowledge_graph_embeddings.json"), []byte(testEmbeddings), 0644); err != nil {
		t.Fatal(err)
	}

	docsDir := filepath.Join(tmpDir, "documents")
	if err := os.MkdirAll(docsDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"ml-basics.md", "deep-learning.md", "pasta-guide.md"} {
		if err := os.WriteFile(filepath.Join(docsDir, name), []byte("# Test Document\n\nBody text.\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	return tmpDir
}

// runLibris executes libris in dir and returns its combined output.
// The environment is isolated from the runner's global config.
func runLibris(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	bin := getLibrisBinary(t)
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(dir, "xdg-config"),
		"LIBRIS_LIBRARY=",
		"OLLAMA_HOST=",
	)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// exitCode extracts the process exit code from a CombinedOutput error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
