package cloud

import "fmt"

func buildAnswerPrompt(clause, question string) string {
	return fmt.Sprintf(`You are a legal assistant.

Answer the user's question using ONLY the legal clause below.
Do NOT add information not present in the clause.

Legal Clause:
%s

Question:
%s

Answer clearly.
`, clause, question)
}

func buildFallbackPrompt(question string) string {
	return fmt.Sprintf(`You are a legal assistant.

The user asked a legal question that was not found in the local legal knowledge base.
Answer the question with general legal information in clear language.
Do not claim to quote the local documents.
If jurisdiction is unclear, mention that laws vary by jurisdiction.

Question:
%s
`, question)
}

func buildSummaryPrompt(document string) string {
	return fmt.Sprintf(`You are a legal document specialist.

Read the following legal document carefully and provide a concise summary (2-3 paragraphs).

The summary should:
1. Identify the key parties and document type
2. Describe the main objectives and scope
3. Highlight the most important terms and conditions
4. Note any critical clauses or obligations

Document:
%s

Provide the summary in clear, professional language.
`, document)
}
