package cmd

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/chunking"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/extractor"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/storage/localfs"
)

func newBootstrapCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Load the snapshot or build the index from the seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newStderrLogger(cmd, flags)
			rt, err := loadRuntime(flags.config(), logger)
			if err != nil {
				return fmt.Errorf("load runtime: %w", err)
			}
			if !rt.engine.Bootstrap(cmd.Context()) {
				return domain.WrapError(domain.ErrEmptyIndex, "bootstrap",
					fmt.Errorf("no snapshot in %s and no usable seed at %s", rt.cfg.IndexDir, rt.cfg.SeedPath))
			}
			return printStats(cmd.OutOrStdout(), flags, rt.engine.Stats())
		},
	}
}

func newAddCmd(flags *globalFlags) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "add <file>...",
		Short: "Extract, chunk and index documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			chunker := chunking.NewLegalChunker().WithWindow(rt.cfg.ChunkWindowWords, rt.cfg.ChunkStepWords)
			tag := domain.ParseSource(source)

			total := 0
			for _, path := range args {
				texts, err := extractFile(cmd, path, chunker)
				if err != nil {
					return err
				}
				chunks := make([]domain.Chunk, 0, len(texts))
				for _, text := range texts {
					chunks = append(chunks, domain.NewClauseChunk(text, tag))
				}
				added, err := rt.engine.Add(cmd.Context(), chunks, tag)
				if err != nil {
					return fmt.Errorf("index %s: %w", path, err)
				}
				total += added
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d chunks, %d added\n", filepath.Base(path), len(chunks), added)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d chunks, index now holds %d\n", total, rt.engine.Stats().Count)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", string(domain.SourceUpload), "Source tag: upload or knowledge_base")
	return cmd
}

func extractFile(cmd *cobra.Command, path string, chunker *chunking.LegalChunker) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	storage, err := localfs.New(filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	name := filepath.Base(abs)
	doc := &domain.Document{
		Filename:    name,
		MimeType:    mime.TypeByExtension(filepath.Ext(name)),
		StoragePath: name,
	}
	if !extractor.Supported(doc.Filename, doc.MimeType) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "add", fmt.Errorf("unsupported file type: %s", name))
	}
	text, err := extractor.New(storage).Extract(cmd.Context(), doc)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	texts := chunker.Split(text)
	if len(texts) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "add", fmt.Errorf("no text in %s", name))
	}
	return texts, nil
}

func newStatsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index size and composition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := flags.open(cmd)
			if err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), flags, rt.engine.Stats())
		},
	}
}

func printStats(w io.Writer, flags *globalFlags, stats domain.IndexStats) error {
	return flags.print(w, stats, func(w io.Writer) {
		fmt.Fprintf(w, "index kind: %s\n", stats.Kind)
		fmt.Fprintf(w, "dimension:  %d\n", stats.Dimension)
		fmt.Fprintf(w, "chunks:     %d\n", stats.Count)
		sources := make([]string, 0, len(stats.BySource))
		for source := range stats.BySource {
			sources = append(sources, string(source))
		}
		sort.Strings(sources)
		for _, source := range sources {
			fmt.Fprintf(w, "  %-15s %d\n", source, stats.BySource[domain.Source(source)])
		}
	})
}
