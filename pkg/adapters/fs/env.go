package fs

import (
	"os"
	"runtime"
	"strings"
)

// OSType is the family of the host operating system.
type OSType string

const (
	Windows OSType = "Windows"
	UNIX    OSType = "UNIX"
)

// Env holds the platform facts path handling depends on. It is resolved
// once and passed around by value.
type Env struct {
	Type      OSType
	Separator string
	HomeDir   string
}

// NewEnv builds an Env for goos, reading environment variables through getenv.
func NewEnv(goos string, getenv func(string) string) Env {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	if goos == "windows" {
		home := getenv("USERPROFILE")
		if home == "" {
			home = getenv("HOMEDRIVE") + getenv("HOMEPATH")
		}
		return Env{Type: Windows, Separator: `\`, HomeDir: home}
	}
	return Env{Type: UNIX, Separator: "/", HomeDir: getenv("HOME")}
}

// DetectEnv resolves the Env of the running process.
func DetectEnv() Env {
	return NewEnv(runtime.GOOS, os.Getenv)
}

// ExpandHome replaces a leading "~" with the home directory.
func (e Env) ExpandHome(path string) string {
	if path == "~" {
		return e.HomeDir
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return strings.TrimSuffix(e.HomeDir, e.Separator) + e.Separator + path[2:]
	}
	return path
}

// Dir joins segments into a normalized directory path ending in the
// separator. A leading "~" is expanded.
func (e Env) Dir(segments ...string) Dir {
	joined := e.ExpandHome(strings.Join(segments, e.Separator))
	return Dir{sep: e.Separator, path: e.normalize(joined)}
}

func (e Env) normalize(p string) string {
	sep := e.Separator
	if sep == "" {
		sep = "/"
	}
	p = strings.NewReplacer("/", sep, `\`, sep).Replace(p)

	var b strings.Builder
	last := rune(0)
	for i, r := range p {
		// UNC paths keep their leading double separator.
		if string(r) == sep && string(last) == sep && !(e.Type == Windows && i == 1) {
			continue
		}
		b.WriteRune(r)
		last = r
	}
	out := b.String()
	if out == "" {
		return ""
	}
	if !strings.HasSuffix(out, sep) {
		out += sep
	}
	return out
}

// Dir is a separator-terminated directory path.
type Dir struct {
	sep  string
	path string
}

func (d Dir) String() string { return d.path }

// Sub returns the subdirectory name of d.
func (d Dir) Sub(name string) Dir {
	env := Env{Separator: d.sep}
	if d.sep == `\` {
		env.Type = Windows
	}
	return Dir{sep: d.sep, path: env.normalize(d.path + name)}
}

// File returns the path of the file name inside d.
func (d Dir) File(name string) string {
	return d.path + strings.TrimLeft(name, `/\`)
}
