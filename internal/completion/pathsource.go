package completion

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PathToken extracts the trailing path token of linePrefix and the typed
// final component of the name being completed. ok is false when the line
// has no path token before the cursor.
func PathToken(linePrefix string) (token, typed string, ok bool) {
	token = pathTokenRE.FindString(linePrefix)
	if token == "" {
		return "", "", false
	}
	typed = token
	if i := strings.LastIndexByte(token, '/'); i >= 0 {
		typed = token[i+1:]
	}
	return token, typed, true
}

// ScanPathCandidates lists path candidates for the trailing path token of
// linePrefix, the line content up to the cursor. The token's directory part
// is enumerated; relative tokens resolve against baseDir. A line with no
// path token yields no candidates and no error.
func ScanPathCandidates(baseDir, linePrefix string) ([]Candidate, error) {
	token := pathTokenRE.FindString(linePrefix)
	if token == "" {
		return nil, nil
	}

	// Directory part of the token, keeping the typed form so synthesis
	// strips the typed prefix against the same spelling.
	dir := "./"
	if i := strings.LastIndexByte(token, '/'); i >= 0 {
		dir = token[:i+1]
	}

	fsDir := dir
	if !filepath.IsAbs(fsDir) {
		fsDir = filepath.Join(baseDir, fsDir)
	}

	entries, err := os.ReadDir(fsDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", fsDir, err)
	}

	cands := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		cands = append(cands, pathCandidateFor(dir, entry))
	}
	return cands, nil
}

// pathCandidateFor builds the candidate for one directory entry.
func pathCandidateFor(dir string, entry fs.DirEntry) PathCandidate {
	kind := PathKindUnknown
	switch {
	case entry.Type()&fs.ModeSymlink != 0:
		kind = PathKindSymlink
	case entry.IsDir():
		kind = PathKindDirectory
	case entry.Type().IsRegular():
		kind = PathKindFile
	}

	var perm fs.FileMode
	if info, err := entry.Info(); err == nil {
		perm = info.Mode().Perm()
	}

	p := dir + entry.Name()
	if kind == PathKindDirectory {
		p += "/"
	}
	return PathCandidate{Path: p, Perm: perm, Kind: kind}
}
