package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	// Create a temp directory structure
	// /tmp/
	//   repo/ (.grove)
	//     subdir/
	//       nested/
	//   empty/

	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	subDir := filepath.Join(repoDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(emptyDir, 0755); err != nil {
		t.Fatal(err)
	}

	// Create marker
	if err := os.Mkdir(filepath.Join(repoDir, ProjectDir), 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{
			name:      "Start at Root",
			startPath: repoDir,
			wantRoot:  repoDir,
			wantErr:   false,
		},
		{
			name:      "Start in Subdir",
			startPath: subDir,
			wantRoot:  repoDir,
			wantErr:   false,
		},
		{
			name:      "Start Nested Deeply",
			startPath: nestedDir,
			wantRoot:  repoDir,
			wantErr:   false,
		},
		{
			name:      "No Root Found",
			startPath: emptyDir,
			wantRoot:  "",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Resolve symlinks on Mac/Linux if needed, but standard TempDir usually fine.
			// Windows might need filepath.EvalSymlinks if obscure.

			got, err := FindRoot(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindRoot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			// Compare cleaned paths to avoid trailing slash issues
			if got != "" {
				// On Windows, drive letters casing can differ sometimes, but filepath.Clean helps
				if filepath.Clean(got) != filepath.Clean(tt.wantRoot) {
					t.Errorf("FindRoot() = %v, want %v", got, tt.wantRoot)
				}
			}
		})
	}
}

func TestDefaultCacheDSN(t *testing.T) {
	repoDir := t.TempDir()
	nested := filepath.Join(repoDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(repoDir, ProjectDir), 0755); err != nil {
		t.Fatal(err)
	}

	got := DefaultCacheDSN(nested)
	want := filepath.Join(repoDir, ProjectDir)
	if filepath.Clean(got) != filepath.Clean(want) {
		t.Errorf("DefaultCacheDSN() = %v, want %v", got, want)
	}
}

func TestResolveDSN(t *testing.T) {
	inTemp := filepath.Join(os.TempDir(), "grove-test-cache")
	outside := filepath.Join(string(os.PathSeparator)+"home", "someone", "notes")
	sandbox := filepath.Join(os.TempDir(), "grove-dev", "notes")

	tests := []struct {
		name  string
		dsn   string
		force bool
		want  string
	}{
		{"No Sandbox", outside, false, outside},
		{"Bare Path Sandboxed", outside, true, sandbox},
		{"Temp Path Trusted", inTemp, true, inTemp},
		{"File Scheme Sandboxed", "file://" + outside, true, "file://" + sandbox},
		{"Bolt Scheme Sandboxed", "bolt://" + outside, true, "bolt://" + sandbox},
		{"Postgres Untouched", "postgres://u@h/db", true, "postgres://u@h/db"},
		{"Memory Untouched", "memory://", true, "memory://"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveDSN(tt.dsn, tt.force); got != tt.want {
				t.Errorf("resolveDSN(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}
