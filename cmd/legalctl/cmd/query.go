package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newRetrieveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "retrieve <query>",
		Short: "Resolve a question to the best matching clause",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := joinArgs(args)
			if err != nil {
				return err
			}
			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			result := rt.engine.Retrieve(cmd.Context(), query)
			return flags.print(cmd.OutOrStdout(), result, func(w io.Writer) {
				fmt.Fprintf(w, "tier:       %s\n", result.Tier)
				if result.HasConfidence {
					fmt.Fprintf(w, "confidence: %.2f\n", result.Confidence)
				}
				if !result.Found() {
					fmt.Fprintln(w, "no matching clause")
					return
				}
				fmt.Fprintf(w, "source:     %s\n\n%s\n", result.Source, result.Clause)
			})
		},
	}
}

func newCandidatesCmd(flags *globalFlags) *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "candidates <query>",
		Short: "List ranked candidate clauses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := joinArgs(args)
			if err != nil {
				return err
			}
			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			candidates := rt.engine.RetrieveCandidates(cmd.Context(), query, topK)
			return flags.print(cmd.OutOrStdout(), candidates, func(w io.Writer) {
				if len(candidates) == 0 {
					fmt.Fprintln(w, "no candidates")
					return
				}
				for i, c := range candidates {
					fmt.Fprintf(w, "%d. [%.2f, hits=%d, %s] %s\n", i+1, c.Confidence, c.LexicalHits, c.Source, firstLine(c.Text))
				}
			})
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "Number of candidates")
	return cmd
}

func newAskCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the index with the configured models",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := joinArgs(args)
			if err != nil {
				return err
			}
			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			result, err := rt.asker.Ask(cmd.Context(), question)
			if err != nil {
				return err
			}
			return flags.print(cmd.OutOrStdout(), result, func(w io.Writer) {
				fmt.Fprintf(w, "%s\n\n", result.Answer)
				fmt.Fprintf(w, "reference:  %s\n", result.ClauseReference)
				fmt.Fprintf(w, "source:     %s\n", result.AnswerSource)
				fmt.Fprintf(w, "confidence: %.2f\n", result.Confidence)
				fmt.Fprintf(w, "risk:       %s (%s)\n", result.Risk.Level, result.Risk.Reason)
			})
		},
	}
}

func firstLine(text string) string {
	const limit = 100
	for i, r := range text {
		if r == '\n' {
			text = text[:i]
			break
		}
	}
	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return text
}
