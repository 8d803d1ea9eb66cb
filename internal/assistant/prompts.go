package assistant

import (
	"fmt"
	"strings"

	"careerbot/internal/domain"
	"careerbot/internal/recommend"
)

const historyTurns = 6

const (
	offTopicMessage = "I'm designed to assist with career-related questions, job searching, resume building, " +
		"interviews, mentorship, and professional development. Could you please ask me something " +
		"related to these areas so I can help you with your professional journey?"

	generalFallback = "I'm happy to help with your career journey! What specific questions do you have today?"

	interviewFallback = "I'm happy to help with interview preparation! For most interviews, I recommend:\n" +
		"1. Research the company thoroughly before the interview\n" +
		"2. Prepare examples that demonstrate your skills and experience\n" +
		"3. Practice the STAR method (Situation, Task, Action, Result) for behavioral questions\n" +
		"4. Prepare thoughtful questions to ask the interviewer\n\n" +
		"Would you like specific advice for technical or behavioral interviews?"

	mentorshipFallback = "Finding the right mentor can be transformative for your career! Here are some tips:\n" +
		"1. Identify what specific guidance you're seeking\n" +
		"2. Look within your current organization and extended network\n" +
		"3. Attend industry events and join professional communities\n" +
		"4. Be specific about your goals when approaching potential mentors\n\n" +
		"What industry or specific skills are you looking to develop with a mentor?"

	resumeFallback = "For resume help, I recommend:\n" +
		"1. Using clear formatting\n" +
		"2. Highlighting achievements with numbers\n" +
		"3. Keeping it concise and relevant\n" +
		"4. Customizing for each application\n\n" +
		"Would you like to build a resume now? Just say 'create resume' to begin."
)

const persona = "You are a friendly career assistant. Answer concisely and practically, " +
	"and stay on career topics.\n\n"

func history(conv *domain.Conversation) string {
	turns := conv.Turns
	if n := len(turns); n > 0 && turns[n-1].Role == domain.RoleUser {
		turns = turns[:n-1]
	}
	if len(turns) > historyTurns {
		turns = turns[len(turns)-historyTurns:]
	}
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
	}
	b.WriteString("\n")
	return b.String()
}

func ragPrompt(conv *domain.Conversation, query string, chunks []string) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString(history(conv))
	if len(chunks) > 0 {
		b.WriteString("Relevant job listings:\n")
		for _, c := range chunks {
			b.WriteString("- " + c + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Question: " + query)
	return b.String()
}

func topicPrompt(conv *domain.Conversation, topic, query string) string {
	return persona + history(conv) + topic + " question: " + query
}

func jobPrompt(query string, job domain.JobRecord) string {
	return fmt.Sprintf(persona+`The user is asking about this specific job: %s at %s.

JOB DETAILS:
- Title: %s
- Company: %s
- Location: %s
- Type: %s
- Required Skills: %s

Original user query: %s

Add a short elaboration on the role's likely responsibilities and one tip for applying.`,
		job.Title, job.Company, job.Title, job.Company, job.Location, job.JobType, recommend.SkillsText(job), query)
}

func contextFallback(chunks []string) string {
	if len(chunks) == 0 {
		return generalFallback
	}
	var b strings.Builder
	b.WriteString("Here is what I found in the job listings that may help:\n\n")
	for _, c := range chunks {
		b.WriteString("- " + c + "\n")
	}
	b.WriteString("\nWhat else would you like to know?")
	return b.String()
}
