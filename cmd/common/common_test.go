package common

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestCacheDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("home directory comes from USERPROFILE on windows")
	}
	tests := []struct {
		xdg  string
		home string
		want string
	}{
		{"/var/cache/me", "/home/me", filepath.Join("/var/cache/me", "stillalive")},
		{"", "/home/me", filepath.Join("/home/me", ".cache", "stillalive")},
	}
	for _, tt := range tests {
		t.Setenv("XDG_CACHE_HOME", tt.xdg)
		t.Setenv("HOME", tt.home)
		if got := CacheDir(); got != tt.want {
			t.Errorf("CacheDir() with XDG_CACHE_HOME=%q HOME=%q = %q, want %q", tt.xdg, tt.home, got, tt.want)
		}
	}
}
