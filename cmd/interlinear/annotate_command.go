package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Mr-Dark-debug/interlinear/internal/align"
	"github.com/Mr-Dark-debug/interlinear/internal/analysis"
	"github.com/Mr-Dark-debug/interlinear/internal/config"
	"github.com/Mr-Dark-debug/interlinear/internal/database"
	"github.com/Mr-Dark-debug/interlinear/internal/media"
	"github.com/Mr-Dark-debug/interlinear/internal/tokens"
	"github.com/Mr-Dark-debug/interlinear/internal/tui"
)

type annotateFlags struct {
	audioTokens    string
	sourceTokens   string
	audioFile      string
	backend        string
	mpvSocket      string
	mode           string
	allowAudioOnly bool
	noJournal      bool
}

func newAnnotateCommand(ctx *commandContext) *cobra.Command {
	var flags annotateFlags

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Open the alignment annotator",
		Long: "Open the interactive annotator on a pair of token files. Committed\n" +
			"alignments are journaled unless --no-journal is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			if !isTerminal(cmd.OutOrStdout()) {
				return errors.New("annotate needs an interactive terminal")
			}

			logger, closer, err := ctx.fileLogger()
			if err != nil {
				return err
			}
			defer closer.Close()

			var store database.Store
			if !flags.noJournal {
				svc, err := database.NewDBService(cfg.Paths.JournalDB)
				if err != nil {
					return fmt.Errorf("open journal %s: %w", cfg.Paths.JournalDB, err)
				}
				defer svc.Close()
				store = svc
			}

			ann, err := prepareAnnotation(cmd.Context(), cfg, store, logger)
			if err != nil {
				return err
			}

			model := tui.NewModel(ann.session, ann.player, ann.options)
			program := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, runErr := program.Run()
			closeErr := ann.Close()
			if runErr != nil {
				return fmt.Errorf("annotator: %w", runErr)
			}
			printAnnotationSummary(cmd.OutOrStdout(), ann)
			return closeErr
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func (f *annotateFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.audioTokens, "audio-tokens", "", "Audio token file (overrides paths.audio_tokens)")
	fs.StringVar(&f.sourceTokens, "source-tokens", "", "Source token file (overrides paths.source_tokens)")
	fs.StringVar(&f.audioFile, "audio", "", "Audio file shown in the header (overrides paths.audio_file)")
	fs.StringVar(&f.backend, "player", "", "Player backend: clock or mpv")
	fs.StringVar(&f.mpvSocket, "mpv-socket", "", "mpv IPC socket path")
	fs.StringVarP(&f.mode, "mode", "m", "", "Initial click mode: select or jump")
	fs.BoolVar(&f.allowAudioOnly, "allow-audio-only", false, "Accept alignments without source words")
	fs.BoolVar(&f.noJournal, "no-journal", false, "Do not record alignments in the journal")
}

// apply returns a copy of base with the changed flags applied.
func (f *annotateFlags) apply(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := *base
	changed := cmd.Flags().Changed

	for _, p := range []struct {
		flag  string
		value string
		dst   *string
	}{
		{"audio-tokens", f.audioTokens, &cfg.Paths.AudioTokens},
		{"source-tokens", f.sourceTokens, &cfg.Paths.SourceTokens},
		{"audio", f.audioFile, &cfg.Paths.AudioFile},
		{"mpv-socket", f.mpvSocket, &cfg.Player.MPVSocket},
	} {
		if !changed(p.flag) {
			continue
		}
		expanded, err := config.ExpandPath(p.value)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", p.flag, err)
		}
		*p.dst = expanded
	}
	if changed("player") {
		cfg.Player.Backend = f.backend
	}
	if changed("mode") {
		cfg.Alignment.StartMode = f.mode
	}
	if changed("allow-audio-only") {
		cfg.Alignment.RequireSource = !f.allowAudioOnly
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// annotation bundles everything one annotator run needs.
type annotation struct {
	session *align.Session
	player  media.Player
	journal *database.Journal
	options tui.Options
}

// prepareAnnotation loads the token files, opens the player and, when
// store is non-nil, starts a journal session that records every commit.
func prepareAnnotation(ctx context.Context, cfg *config.Config, store database.Store, logger *slog.Logger) (*annotation, error) {
	audio, source, err := tokens.NewLoader().LoadFiles(cfg.Paths.AudioTokens, cfg.Paths.SourceTokens)
	if err != nil {
		return nil, err
	}

	mode, err := align.ParseClickMode(cfg.Alignment.StartMode)
	if err != nil {
		return nil, err
	}
	policy := align.PolicyStrict
	if !cfg.Alignment.RequireSource {
		policy = align.PolicyAllowAudioOnly
	}

	player, err := media.Open(ctx, cfg.Player.Backend, cfg.Player.MPVSocket, logger)
	if err != nil {
		return nil, fmt.Errorf("open player: %w", err)
	}

	session := align.NewSession(align.Options{
		Policy:    policy,
		Mode:      mode,
		Transport: player,
		Logger:    logger,
	})
	if err := session.LoadTokens(audio, source); err != nil {
		player.Close()
		return nil, err
	}

	ann := &annotation{
		session: session,
		player:  player,
		options: tui.Options{
			TickInterval: time.Duration(cfg.Player.TickIntervalMs) * time.Millisecond,
			SkipMs:       int64(cfg.Player.SkipSeconds) * 1000,
			Title:        annotationTitle(cfg),
			Logger:       logger,
		},
	}

	if store != nil {
		journal, err := database.NewJournal(store, database.SessionInfo{
			AudioTokensPath:  cfg.Paths.AudioTokens,
			SourceTokensPath: cfg.Paths.SourceTokens,
			AudioFile:        cfg.Paths.AudioFile,
			Policy:           policy,
			AudioTokenCount:  len(audio),
			SourceTokenCount: len(source),
		}, logger)
		if err != nil {
			player.Close()
			return nil, err
		}
		session.AddCommitListener(journal)
		ann.journal = journal
	}

	logger.Info("annotation ready",
		slog.Int("audio_tokens", len(audio)),
		slog.Int("source_tokens", len(source)),
		slog.String("policy", policy.String()),
		slog.String("mode", mode.String()),
		slog.String("player", cfg.Player.Backend),
	)
	return ann, nil
}

// Close ends the journal session and releases the player.
func (a *annotation) Close() error {
	var errs []error
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.player.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close player: %w", err))
	}
	return errors.Join(errs...)
}

func annotationTitle(cfg *config.Config) string {
	if cfg.Paths.AudioFile != "" {
		return filepath.Base(cfg.Paths.AudioFile)
	}
	return filepath.Base(cfg.Paths.AudioTokens)
}

func printAnnotationSummary(out io.Writer, a *annotation) {
	c := analysis.FromSession(a.session).Coverage
	fmt.Fprintf(out, "Created %d alignments\n", c.Alignments)
	fmt.Fprintf(out, "Audio tokens aligned:  %d / %d (%.1f%%)\n", c.AlignedAudio, c.AudioTokens, c.AudioPercent)
	fmt.Fprintf(out, "Source tokens aligned: %d / %d (%.1f%%)\n", c.AlignedSource, c.SourceTokens, c.SourcePercent)
	if a.journal != nil {
		fmt.Fprintf(out, "Journal session: %s\n", a.journal.SessionID())
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
