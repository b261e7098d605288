package reconcile

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Declaration patterns recognized by AuditSources:
//
//	"name": "tenants"                       JSON schema exports, JS migrations
//	core.NewBaseCollection("tenants")       Go migrations
//	schema.Definition{Name: "tenants", ...} catalog definitions
var declPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|[^A-Za-z0-9_])["']?name["']?\s*:\s*["']([A-Za-z0-9_]+)["']`),
	regexp.MustCompile(`New(?:Base|Auth|View)Collection\(\s*"([A-Za-z0-9_]+)"`),
	regexp.MustCompile(`Definition\{\s*Name:\s*"([A-Za-z0-9_]+)"`),
}

var auditExts = map[string]bool{
	".go": true, ".js": true, ".mjs": true, ".cjs": true, ".ts": true, ".json": true,
}

// AuditReport maps each expected collection to the files declaring it.
type AuditReport struct {
	Present map[string][]string `json:"present"`
	Missing []string            `json:"missing"`
}

// AuditSources walks root and reports which expected collections are declared
// somewhere in migration or schema sources. Hidden directories, node_modules
// and vendor are skipped.
func AuditSources(root string, expected []string) (AuditReport, error) {
	want := make(map[string]bool, len(expected))
	for _, name := range expected {
		want[name] = true
	}
	rep := AuditReport{Present: map[string][]string{}}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if !auditExts[filepath.Ext(path)] {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, name := range declaredNames(string(data)) {
			if want[name] {
				rep.Present[name] = append(rep.Present[name], path)
			}
		}
		return nil
	})
	if err != nil {
		return AuditReport{}, err
	}

	for _, name := range expected {
		if _, ok := rep.Present[name]; !ok {
			rep.Missing = append(rep.Missing, name)
		}
	}
	return rep, nil
}

func declaredNames(src string) []string {
	seen := map[string]bool{}
	for _, re := range declPatterns {
		for _, m := range re.FindAllStringSubmatch(src, -1) {
			seen[m[1]] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
