// Package ats scores parsed CVs against a static checklist of what applicant
// tracking systems look for. Scoring is rule-based and deterministic: the same
// document always produces the same report.
package ats

import (
	"fmt"
	"strings"

	"github.com/shahramhal/ai-career-coach/internal/types"
)

// Section weights. They sum to 100 so the overall score needs no rescaling.
const (
	maxContactScore    = 20
	maxSummaryScore    = 10
	maxSkillsScore     = 25
	maxExperienceScore = 30
	maxEducationScore  = 10
	maxLengthScore     = 5
)

// Thresholds for the skills and length checks.
const (
	goodSkillCount = 8
	minWordCount   = 150
	maxWordCount   = 1200
)

// Score evaluates a parsed CV and returns a report with an overall 0-100
// score and per-section findings.
func Score(cv *types.ParsedCV) *types.ATSReport {
	findings := []types.ATSFinding{
		scoreContact(cv.Contact),
		scoreSummary(cv.Summary),
		scoreSkills(cv.Skills),
		scoreExperience(cv.Experience),
		scoreEducation(cv.Education),
		scoreLength(cv.WordCount),
	}

	overall := 0
	for _, f := range findings {
		overall += f.Score
	}

	return &types.ATSReport{
		OverallScore: overall,
		Findings:     findings,
	}
}

func scoreContact(contact types.Contact) types.ATSFinding {
	finding := types.ATSFinding{Section: "contact", MaxScore: maxContactScore}

	if contact.Email != "" {
		finding.Score += 10
	} else {
		finding.Suggestion = "Add an email address so recruiters can reach you."
	}
	if contact.Name != "" {
		finding.Score += 5
	}
	if contact.Phone != "" {
		finding.Score += 3
	}
	if len(contact.Links) > 0 {
		finding.Score += 2
	}

	switch {
	case finding.Score == finding.MaxScore:
		finding.Feedback = "Contact details are complete."
	case contact.Email == "":
		finding.Feedback = "No email address was found."
	default:
		finding.Feedback = "Contact details are partially filled in."
	}
	return finding
}

func scoreSummary(summary string) types.ATSFinding {
	finding := types.ATSFinding{Section: "summary", MaxScore: maxSummaryScore}

	if summary == "" {
		finding.Feedback = "No summary section was found."
		finding.Suggestion = "Open with a two or three sentence professional summary."
		return finding
	}

	finding.Score = maxSummaryScore
	finding.Feedback = "A summary section is present."
	return finding
}

func scoreSkills(skills []string) types.ATSFinding {
	finding := types.ATSFinding{Section: "skills", MaxScore: maxSkillsScore}

	switch {
	case len(skills) == 0:
		finding.Feedback = "No skills section was found."
		finding.Suggestion = "List your technical skills in a dedicated section."
	case len(skills) < goodSkillCount:
		finding.Score = 10 + len(skills)
		finding.Feedback = fmt.Sprintf("Found %d skills.", len(skills))
		finding.Suggestion = fmt.Sprintf("Listing %d or more relevant skills improves keyword matching.", goodSkillCount)
	default:
		finding.Score = maxSkillsScore
		finding.Feedback = fmt.Sprintf("Found %d skills.", len(skills))
	}
	return finding
}

// actionVerbs lists the leading words recruiters and ATS checkers reward in
// experience bullets. Lowercase, matched against the first word of a bullet.
var actionVerbs = map[string]bool{
	"achieved": true, "automated": true, "built": true, "created": true,
	"cut": true, "delivered": true, "designed": true, "developed": true,
	"drove": true, "established": true, "grew": true, "implemented": true,
	"improved": true, "increased": true, "introduced": true, "launched": true,
	"led": true, "maintained": true, "managed": true, "mentored": true,
	"migrated": true, "optimized": true, "owned": true, "reduced": true,
	"refactored": true, "scaled": true, "shipped": true, "streamlined": true,
}

func scoreExperience(entries []types.ExperienceEntry) types.ATSFinding {
	finding := types.ATSFinding{Section: "experience", MaxScore: maxExperienceScore}

	if len(entries) == 0 {
		finding.Feedback = "No experience section was found."
		finding.Suggestion = "Add your work history with job titles, companies and dates."
		return finding
	}

	finding.Score = 8

	withDates := 0
	withBullets := 0
	var bullets []string
	for _, entry := range entries {
		if entry.Dates != "" {
			withDates++
		}
		if len(entry.Bullets) > 0 {
			withBullets++
		}
		bullets = append(bullets, entry.Bullets...)
	}

	if withDates == len(entries) {
		finding.Score += 8
	} else if withDates > 0 {
		finding.Score += 4
	} else {
		finding.Suggestion = "Add date ranges to each position."
	}

	if withBullets == len(entries) {
		finding.Score += 8
	} else if withBullets > 0 {
		finding.Score += 4
	} else {
		finding.Suggestion = "Describe each position with bullet points."
	}

	// Bullet quality: at least half the bullets should carry a number and at
	// least half should open with an action verb.
	if len(bullets) > 0 {
		quantified := 0
		verbLed := 0
		for _, bullet := range bullets {
			if strings.ContainsAny(bullet, "0123456789%") {
				quantified++
			}
			if startsWithActionVerb(bullet) {
				verbLed++
			}
		}
		if quantified*2 >= len(bullets) {
			finding.Score += 3
		} else {
			finding.Suggestion = "Quantify achievements with numbers or percentages."
		}
		if verbLed*2 >= len(bullets) {
			finding.Score += 3
		} else {
			finding.Suggestion = "Open each bullet point with an action verb such as \"Built\" or \"Reduced\"."
		}
	}

	if finding.Score == finding.MaxScore {
		finding.Feedback = fmt.Sprintf("Found %d positions with dates and quantified, verb-led bullet points.", len(entries))
	} else {
		finding.Feedback = fmt.Sprintf("Found %d positions; some are missing dates, bullet points or measurable results.", len(entries))
	}
	return finding
}

// startsWithActionVerb reports whether the bullet's first word, after list
// markers are stripped, is a known action verb.
func startsWithActionVerb(bullet string) bool {
	trimmed := strings.TrimLeft(strings.ToLower(bullet), "-•*– \t")
	first, _, _ := strings.Cut(trimmed, " ")
	return actionVerbs[strings.TrimRight(first, ".,:;")]
}

func scoreEducation(entries []types.EducationEntry) types.ATSFinding {
	finding := types.ATSFinding{Section: "education", MaxScore: maxEducationScore}

	if len(entries) == 0 {
		finding.Feedback = "No education section was found."
		finding.Suggestion = "Add your degrees or certifications."
		return finding
	}

	finding.Score = maxEducationScore
	finding.Feedback = fmt.Sprintf("Found %d education entries.", len(entries))
	return finding
}

func scoreLength(wordCount int) types.ATSFinding {
	finding := types.ATSFinding{Section: "length", MaxScore: maxLengthScore}

	switch {
	case wordCount < minWordCount:
		finding.Feedback = fmt.Sprintf("The document is short at %d words.", wordCount)
		finding.Suggestion = "Expand the experience section with concrete accomplishments."
	case wordCount > maxWordCount:
		finding.Feedback = fmt.Sprintf("The document is long at %d words.", wordCount)
		finding.Suggestion = "Trim older or less relevant positions."
	default:
		finding.Score = maxLengthScore
		finding.Feedback = "The document length is in the normal range."
	}
	return finding
}
