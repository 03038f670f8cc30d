package fs

import "strings"

// FileName is a path split into directory, base name and extension.
// "dir/file.test.txt" parses to Dir "dir/", Name "file.test", Ext "txt".
type FileName struct {
	Dir  string
	Name string
	Ext  string
}

// ParseFileName splits path. Both separators are recognized. Dot files
// such as ".bashrc" have no extension.
func ParseFileName(path string) FileName {
	i := strings.LastIndexAny(path, `/\`)
	f := FileName{Dir: path[:i+1]}
	base := path[i+1:]
	if dot := strings.LastIndexByte(base, '.'); dot > 0 {
		f.Name, f.Ext = base[:dot], base[dot+1:]
	} else {
		f.Name = base
	}
	return f
}

// FullName joins the parts back into a path.
func (f FileName) FullName() string {
	if f.Ext == "" {
		return f.Dir + f.Name
	}
	return f.Dir + f.Name + "." + f.Ext
}

func (f FileName) String() string { return f.FullName() }

// WithExt returns a copy with the extension replaced.
func (f FileName) WithExt(ext string) FileName {
	f.Ext = strings.TrimPrefix(ext, ".")
	return f
}

// BackupName returns the .bak sibling of path, replacing its extension.
func BackupName(path string) string {
	return ParseFileName(path).WithExt("bak").FullName()
}
