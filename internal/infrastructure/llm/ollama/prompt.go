package ollama

import "fmt"

func buildClauseAnswerPrompt(clause, question string) string {
	return fmt.Sprintf(`You are a legal assistant.

Answer the user's question using ONLY the legal clause below.
You MAY explain conditions or limitations mentioned in the clause.
Do NOT add information not present in the clause.
Do NOT give general legal advice.

If the clause does not contain any information relevant to the question, say:
"I cannot answer this from the provided document."

Legal Clause:
%s

Question:
%s

Answer in clear, simple language.
`, clause, question)
}
