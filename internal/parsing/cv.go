// Package parsing turns cleaned CV text into a structured ParsedCV document.
// The splitter is deterministic: sections are located by their heading lines
// and each section body is reduced with simple line heuristics, so the same
// input always yields the same document.
package parsing

import (
	"regexp"
	"strings"

	"github.com/shahramhal/ai-career-coach/internal/ingestion"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

// section identifiers used internally by the splitter
const (
	sectionHeader     = "header"
	sectionSummary    = "summary"
	sectionSkills     = "skills"
	sectionExperience = "experience"
	sectionEducation  = "education"
	sectionOther      = "other"
)

// sectionHeadings maps lowercased heading text to a section identifier.
var sectionHeadings = map[string]string{
	"summary":                 sectionSummary,
	"professional summary":    sectionSummary,
	"objective":               sectionSummary,
	"career objective":        sectionSummary,
	"profile":                 sectionSummary,
	"about":                   sectionSummary,
	"about me":                sectionSummary,
	"skills":                  sectionSkills,
	"technical skills":        sectionSkills,
	"core skills":             sectionSkills,
	"key skills":              sectionSkills,
	"technologies":            sectionSkills,
	"core competencies":       sectionSkills,
	"experience":              sectionExperience,
	"work experience":         sectionExperience,
	"professional experience": sectionExperience,
	"employment":              sectionExperience,
	"employment history":      sectionExperience,
	"work history":            sectionExperience,
	"education":               sectionEducation,
	"academic background":     sectionEducation,
	"qualifications":          sectionEducation,
}

var (
	emailRe     = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe     = regexp.MustCompile(`(?:\+?\d{1,3}[\s.\-]?)?(?:\(\d{2,4}\)[\s.\-]?)?\d{3,4}[\s.\-]?\d{3,4}(?:[\s.\-]?\d{2,4})?`)
	linkRe      = regexp.MustCompile(`(?:https?://|www\.)[^\s,;|]+|(?:linkedin\.com|github\.com)/[^\s,;|]+`)
	dateRangeRe = regexp.MustCompile(`(?i)(?:19|20)\d{2}\s*[-–—to]+\s*(?:(?:19|20)\d{2}|present|current|now)|(?:19|20)\d{2}\s*[-–—]\s*$|\b(?:19|20)\d{2}\b`)
	degreeRe    = regexp.MustCompile(`(?i)\b(?:b\.?sc?\.?|m\.?sc?\.?|ph\.?d\.?|mba|bachelor|master|doctorate|diploma|associate)\b`)
)

// ParseCV splits cleaned CV text into a structured document. The input should
// already have gone through ingestion.CleanText; raw text is tolerated but
// sections may be missed. An empty input is a ParseError.
func ParseCV(text string) (*types.ParsedCV, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ParseError{Message: "document contains no text"}
	}

	sections := splitSections(text)

	cv := &types.ParsedCV{
		Contact:    extractContact(sections[sectionHeader], text),
		Summary:    strings.TrimSpace(strings.Join(sections[sectionSummary], "\n")),
		Skills:     NormalizeSkills(extractSkills(sections[sectionSkills])),
		Experience: extractExperience(sections[sectionExperience]),
		Education:  extractEducation(sections[sectionEducation]),
		RawText:    text,
		WordCount:  ingestion.WordCount(text),
	}

	if cv.Skills == nil {
		cv.Skills = []string{}
	}
	if cv.Experience == nil {
		cv.Experience = []types.ExperienceEntry{}
	}
	if cv.Education == nil {
		cv.Education = []types.EducationEntry{}
	}
	return cv, nil
}

// splitSections groups the document's lines under their section headings.
// Everything before the first recognized heading goes into the header block.
func splitSections(text string) map[string][]string {
	sections := make(map[string][]string)
	current := sectionHeader

	for _, line := range strings.Split(text, "\n") {
		if name, ok := headingFor(line); ok {
			current = name
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		sections[current] = append(sections[current], line)
	}
	return sections
}

// headingFor reports whether a line is a section heading. Headings are short
// standalone lines, optionally decorated with markdown markers or colons.
func headingFor(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimLeft(trimmed, "#")
	trimmed = strings.Trim(trimmed, " :*_")
	if trimmed == "" || len(trimmed) > 40 {
		return "", false
	}

	name, ok := sectionHeadings[strings.ToLower(trimmed)]
	if !ok {
		return "", false
	}
	return name, true
}

// extractContact pulls name, email, phone and links out of the header block.
// Email and links fall back to a whole-document scan since many CVs keep them
// in a footer.
func extractContact(header []string, fullText string) types.Contact {
	contact := types.Contact{}

	headerText := strings.Join(header, "\n")
	if email := emailRe.FindString(headerText); email != "" {
		contact.Email = email
	} else {
		contact.Email = emailRe.FindString(fullText)
	}

	links := linkRe.FindAllString(headerText, -1)
	if len(links) == 0 {
		links = linkRe.FindAllString(fullText, -1)
	}
	seen := make(map[string]bool)
	for _, link := range links {
		link = strings.TrimRight(link, ".,;")
		if !seen[link] {
			seen[link] = true
			contact.Links = append(contact.Links, link)
		}
	}

	for _, line := range header {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if contact.Phone == "" && !emailRe.MatchString(trimmed) {
			if phone := phoneRe.FindString(trimmed); phone != "" && digitCount(phone) >= 7 {
				contact.Phone = strings.TrimSpace(phone)
			}
		}
		if contact.Name == "" && looksLikeName(trimmed) {
			contact.Name = trimmed
		}
	}
	return contact
}

// looksLikeName accepts short lines of word characters with no digits,
// emails or URLs. The first such header line is taken as the candidate name.
func looksLikeName(line string) bool {
	if emailRe.MatchString(line) || linkRe.MatchString(line) {
		return false
	}
	if strings.ContainsAny(line, "0123456789@") {
		return false
	}
	words := strings.Fields(line)
	return len(words) >= 1 && len(words) <= 5 && len(line) <= 60
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// extractSkills splits the skills block on list delimiters and bullets.
func extractSkills(lines []string) []string {
	var skills []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimLeft(trimmed, "-*•· ")
		if trimmed == "" {
			continue
		}
		// "Languages: Go, Python" keeps only the list part
		if idx := strings.Index(trimmed, ":"); idx >= 0 && idx < len(trimmed)-1 {
			trimmed = trimmed[idx+1:]
		}
		for _, part := range strings.FieldsFunc(trimmed, func(r rune) bool {
			return r == ',' || r == ';' || r == '|' || r == '•'
		}) {
			if s := strings.TrimSpace(part); s != "" {
				skills = append(skills, s)
			}
		}
	}
	return skills
}

// extractExperience groups the experience block into entries. A non-bullet
// line starts a new entry; bullet lines attach to the current entry.
func extractExperience(lines []string) []types.ExperienceEntry {
	var entries []types.ExperienceEntry
	var current *types.ExperienceEntry

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if bullet, ok := stripBullet(trimmed); ok {
			if current == nil {
				entries = append(entries, types.ExperienceEntry{Bullets: []string{}})
				current = &entries[len(entries)-1]
			}
			current.Bullets = append(current.Bullets, bullet)
			continue
		}

		// A bare date-range line annotates the current entry rather than
		// starting a new one.
		if current != nil && current.Dates == "" && isDateLine(trimmed) {
			current.Dates = trimmed
			continue
		}

		entries = append(entries, parseExperienceHeading(trimmed))
		current = &entries[len(entries)-1]
	}
	return entries
}

// parseExperienceHeading splits "Title at Company, 2020 - 2023" style lines.
func parseExperienceHeading(line string) types.ExperienceEntry {
	entry := types.ExperienceEntry{Bullets: []string{}}

	if dates := dateRangeRe.FindString(line); dates != "" {
		entry.Dates = strings.TrimSpace(dates)
		line = strings.TrimSpace(strings.Trim(strings.Replace(line, dates, "", 1), " ,|(-–—)"))
	}

	for _, sep := range []string{" at ", " @ ", " — ", " – ", " - ", ", ", " | "} {
		if idx := strings.Index(line, sep); idx > 0 {
			entry.Title = strings.TrimSpace(line[:idx])
			entry.Company = strings.TrimSpace(line[idx+len(sep):])
			return entry
		}
	}
	entry.Title = line
	return entry
}

func stripBullet(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• ", "· "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	return "", false
}

func isDateLine(line string) bool {
	return dateRangeRe.MatchString(line) && len(line) <= 40
}

// extractEducation groups the education block into entries. A line with a
// degree keyword starts a new entry; the following line is taken as the
// school when the degree line did not name one.
func extractEducation(lines []string) []types.EducationEntry {
	var entries []types.EducationEntry
	var current *types.EducationEntry

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimLeft(trimmed, "-*•· ")
		if trimmed == "" {
			continue
		}

		dates := dateRangeRe.FindString(trimmed)
		body := trimmed
		if dates != "" {
			body = strings.TrimSpace(strings.Trim(strings.Replace(trimmed, dates, "", 1), " ,|(-–—)"))
		}

		if degreeRe.MatchString(body) || current == nil {
			entry := types.EducationEntry{Dates: strings.TrimSpace(dates)}
			if idx := strings.Index(body, ", "); idx > 0 {
				entry.Degree = strings.TrimSpace(body[:idx])
				entry.School = strings.TrimSpace(body[idx+2:])
			} else if degreeRe.MatchString(body) {
				entry.Degree = body
			} else {
				entry.School = body
			}
			entries = append(entries, entry)
			current = &entries[len(entries)-1]
			continue
		}

		if current.School == "" {
			current.School = body
		}
		if current.Dates == "" && dates != "" {
			current.Dates = strings.TrimSpace(dates)
		}
	}
	return entries
}
