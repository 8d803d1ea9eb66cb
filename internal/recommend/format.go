package recommend

import (
	"fmt"
	"strings"

	"careerbot/internal/domain"
)

const (
	listingHeader = "Here are some job opportunities that might interest you:"
	listingFooter = "Would you like more details about any of these positions?"

	NoJobsMessage = "No jobs found matching your request right now.\n\n" +
		"You could:\n" +
		"- try different keywords or a broader job title\n" +
		"- ask me to recommend jobs based on your interests\n" +
		"- search by a skill, such as \"python\" or \"excel\""
)

// FormatJobListings renders jobs as a numbered Markdown list.
func FormatJobListings(jobs []domain.JobRecord) string {
	if len(jobs) == 0 {
		return NoJobsMessage
	}
	var b strings.Builder
	b.WriteString(listingHeader + "\n\n")
	for i, j := range jobs {
		fmt.Fprintf(&b, "**%d. %s at %s**\n", i+1, j.Title, j.Company)
		fmt.Fprintf(&b, "📍 %s | 💼 %s\n", j.Location, j.JobType)
		fmt.Fprintf(&b, "🔍 Skills: %s\n", SkillsText(j))
		if j.HasApplyLink() {
			fmt.Fprintf(&b, "🔗 [Apply Now](%s)\n", j.ApplyLink)
		}
		b.WriteString("\n")
	}
	b.WriteString(listingFooter)
	return b.String()
}

// SkillsText joins the job's skills, or says none were listed.
func SkillsText(j domain.JobRecord) string {
	if len(j.Skills) == 0 {
		return "Not specified"
	}
	return strings.Join(j.Skills, ", ")
}
