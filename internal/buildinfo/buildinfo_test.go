package buildinfo

import "testing"

func TestShort(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	tests := []struct {
		version, commit, want string
	}{
		{version: "v1.2.0", commit: "0123456789abcdef", want: "v1.2.0"},
		{version: "dev", commit: "0123456789abcdef", want: "0123456"},
		{version: "", commit: "abc", want: "abc"},
		{version: "dev", commit: "unknown", want: "dev"},
	}
	for _, tt := range tests {
		Version, Commit = tt.version, tt.commit
		if got := Short(); got != tt.want {
			t.Fatalf("Short() with version=%q commit=%q = %q, want %q", tt.version, tt.commit, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	Version, Commit, Date = "v0.3.1", "feedfacecafe", "2026-01-02"
	want := "sparkcalc v0.3.1 (commit feedfac, built 2026-01-02)"
	if got := String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
