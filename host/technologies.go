package host

import (
	"os"
	"path/filepath"
	"sort"
)

// technologyMarkers maps a workspace-root marker file to the build/package
// tool it identifies. Adapted from the teacher's project-root detector
// (`inspector/repository/detector.go`'s Detector.markers and
// determineProjectType): that code walked upward from an arbitrary file
// looking for the nearest project root, which codegraph never needs since
// the host always already knows its workspace root; what's kept here is
// just the marker-to-technology vocabulary, used to enrich metadata.json's
// technologies list beyond the source-extension-derived language names
// already in graph.Metadata.DetectedLanguages.
var technologyMarkers = map[string]string{
	"pom.xml":          "maven",
	"build.gradle":     "gradle",
	"build.gradle.kts": "gradle",
	"package.json":     "npm",
	"pyproject.toml":   "poetry",
	"requirements.txt": "pip",
}

// DetectTechnologies reports which build/package tools' marker files are
// present at the workspace root (spec §6 metadata.json's "technologies?").
func DetectTechnologies(root string) []string {
	seen := make(map[string]bool)
	for marker, tech := range technologyMarkers {
		if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
			seen[tech] = true
		}
	}
	technologies := make([]string, 0, len(seen))
	for tech := range seen {
		technologies = append(technologies, tech)
	}
	sort.Strings(technologies)
	return technologies
}
