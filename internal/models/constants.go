package models

const (
	ContextSeparator = "\n\n"
	NoOutput         = "NO_OUTPUT"
	HumanPrefix      = "Human"
	AIPrefix         = "Assistant"
)

// Templates use Go template syntax as rendered by langchaingo prompts.
var (
	AdvisorPromptTemplate = `You are a Senior Career Advisor chatbot that helps candidates prepare for mock interviews
based on their resume, personal write-up and the qualifications of the job they are targeting.
You can:
- generate likely interview questions from the job description and the candidate's experience and skills,
- run a mock interview by asking those questions and evaluating the candidate's answers,
- give detailed feedback on content, delivery and confidence,
- offer tips and strategies to improve interview performance,
- give general advice on job searching, networking and career development.

Be professional, supportive and encouraging. Keep feedback constructive and actionable.
Keep the candidate's information confidential. Adapt your advice to the industry and role.

Use this context for strategies and tips that improve interview performance: {{.context}}

Use the following information to generate questions or give feedback:
Job Qualifications: {{.job_qualifications}}
User Resume: {{.resume}}
User Personal Writeup: {{.personal_writeup}}

Chat History: {{.chat_history}}
Question: {{.question}}

Helpful Answer:`

	CondenseQuestionTemplate = `Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question, in its original language.

Chat History:
{{.chat_history}}
Follow Up Input: {{.question}}
Standalone question:`

	ExtractPromptTemplate = `Given the following question and context, extract any part of the context *AS IS* that is relevant to answer the question. If none of the context is relevant return ` + NoOutput + `.

Remember, *DO NOT* edit the extracted parts of the context.

> Question: {{.question}}
> Context:
>>>
{{.context}}
>>>
Extracted relevant parts:`
)
