package formatter

const generalTemplate = `### {{.Title}} at {{.Company}}

📍 **Location:** {{.Location}}
💼 **Job type:** {{.JobType}}
🔍 **Skills:** {{.SkillList}}
{{if .Summary}}
{{.Summary}}
{{end}}{{if .HasApplyLink}}
🔗 [Apply Now]({{.ApplyLink}})
{{end}}
Would you like application tips for this position?`

const applicationTemplate = `### Application Tips for {{.Title}} at {{.Company}}

1. **Research the company:** Learn about {{.Company}}'s products, culture and recent news so your interest comes across as genuine.

2. **Tailor your resume:** Highlight your experience with {{.TopSkills}}.

3. **Prepare examples:** Be ready to discuss specific projects where you used similar skills.

4. **Practice for the role:** Review the work a {{.Title}} does day to day and be ready for practical exercises.

5. **Prepare questions:** Have thoughtful questions about the team, projects and growth opportunities.
{{if .HasApplyLink}}
🔗 [Apply Now]({{.ApplyLink}})
{{end}}
Would you like more specific advice for preparing for interviews at {{.Company}}?`

const salaryTemplate = `### Compensation for {{.Title}} at {{.Company}}

The listing does not state a salary. Pay for {{.JobType}} {{.Title}} roles in {{.Location}} depends on experience and the local market.

- Compare salary reports for similar roles in {{.Location}}.
- Ask the recruiter for the range early in the process.
- Weigh the whole package, including benefits and flexibility.

Would you like tips on negotiating an offer for this role?`

const skillsTemplate = `### Requirements for {{.Title}} at {{.Company}}

**Listed skills:** {{.SkillList}}
**Job type:** {{.JobType}}
{{if .Summary}}
{{.Summary}}
{{end}}
Would you like suggestions for building any of these skills?`

const companyTemplate = `### About {{.Company}}

{{.Company}} is hiring a {{.Title}} in {{.Location}} ({{.JobType}}).
{{if .Summary}}
{{.Summary}}
{{end}}
To get a feel for the culture, read the company's careers page and recent news, and ask your interviewers how the team works.

Would you like help preparing questions to ask {{.Company}} during an interview?`

const interviewTemplate = `### Interview Preparation for {{.Title}} at {{.Company}}

1. Review the core skills: {{.SkillList}}.
2. Prepare two or three stories about projects where you used them.
3. Research {{.Company}} and be ready to explain why you want this role.
4. Practice answering common questions out loud.

Would you like a practice interview question for this role?`
