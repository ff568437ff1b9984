package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/rpt/pkg"
)

// baseConfig is the base name of the configuration file and the mapping key
// holding flag values inside it.
const baseConfig = "config"

// configExt is the extension of the YAML configuration file.
const configExt = ".yaml"

// defaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

var (
	debugBin  = regexp.MustCompile(`^__debug_bin\d+$`)
	leadDots  = regexp.MustCompile(`^\.+`)
	notEnvKey = regexp.MustCompile(`[^A-Z0-9]+`)
)

// appName returns the executable's base name without extension or leading
// dots. A dlv debug binary is reported as [pkg.Name].
var appName = sync.OnceValue(func() string { return exeName(os.Args[0]) })

func exeName(arg0 string) string {
	if exe, err := os.Executable(); err == nil && arg0 == os.Args[0] {
		arg0 = exe
	}

	name := leadDots.ReplaceAllString(filepath.Base(arg0), "")
	name = strings.TrimSuffix(name, filepath.Ext(name))

	if debugBin.MatchString(name) {
		return pkg.Name
	}

	return name
}

// envKey returns the environment variable overriding the directory of kind,
// e.g. RPT_CACHE_DIR.
func envKey(kind string) string {
	return notEnvKey.ReplaceAllString(strings.ToUpper(appName()+"_"+kind+"_dir"), "_")
}

// appDir resolves the per-user directory of kind ("config" or "cache"). The
// environment override wins, then the platform directory from user, then
// ~/.kind, then the working directory.
func appDir(kind string, user func() (string, error)) string {
	if dir := os.Getenv(envKey(kind)); dir != "" {
		return dir
	}

	dir, err := user()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, "."+kind)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, appName())
}

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(func() string {
	return appDir("config", os.UserConfigDir)
})

// cacheDir returns the cache directory path used for REPL history and
// profiles.
var cacheDir = sync.OnceValue(func() string {
	return appDir("cache", os.UserCacheDir)
})

// configPath joins elem onto the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
