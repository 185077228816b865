package parsing

import "strings"

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"psql":       "PostgreSQL",
	"mysql":      "MySQL",
	"mongo":      "MongoDB",
	"mongodb":    "MongoDB",
	"aws":        "AWS",
	"gcp":        "GCP",
	"ci/cd":      "CI/CD",
	"html5":      "HTML",
	"css3":       "CSS",
}

// NormalizeSkillName normalizes a skill name to its canonical form
func NormalizeSkillName(skillName string) string {
	if skillName == "" {
		return ""
	}

	normalized := strings.TrimSpace(skillName)
	if normalized == "" {
		return ""
	}

	// Check for exact match in normalization map (case-insensitive)
	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	// Short all-caps tokens are treated as acronyms and kept as-is
	if normalized == strings.ToUpper(normalized) && len(normalized) <= 4 {
		return normalized
	}

	// Already mixed case, return as-is
	if normalized != strings.ToUpper(normalized) && normalized != strings.ToLower(normalized) {
		return normalized
	}

	// Single lowercase or uppercase word: capitalize first letter only
	if !strings.Contains(normalized, " ") {
		return strings.ToUpper(normalized[:1]) + strings.ToLower(normalized[1:])
	}

	return normalized
}

// NormalizeSkills normalizes and deduplicates a skill list, preserving order.
func NormalizeSkills(skills []string) []string {
	if len(skills) == 0 {
		return skills
	}

	normalized := make([]string, 0, len(skills))
	seen := make(map[string]bool)
	for _, skill := range skills {
		name := NormalizeSkillName(skill)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		normalized = append(normalized, name)
	}
	return normalized
}
