package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/iconidentify/tubegrab/internal/backend"
	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/service"
	"github.com/iconidentify/tubegrab/internal/worker"
)

func newDownloadCmd(a *app) *cobra.Command {
	var (
		mediaType string
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a video or its audio track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDownload(cmd, args[0], mediaType, outDir)
		},
	}
	cmd.Flags().StringVarP(&mediaType, "type", "t", string(domain.MediaVideo), "Format: video or audio")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory for file downloads")
	return cmd
}

func (a *app) runDownload(cmd *cobra.Command, link, rawType, outDir string) error {
	mediaType, err := domain.ParseMediaType(rawType)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("invalid --type: %q (valid: video|audio)", rawType)}
	}
	if err := ensureDir(outDir); err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("failed to create output dir: %w", err)}
	}

	client := backend.NewHTTPClient(a.cfg.Backend)
	client.SetLogger(a.logger)

	// The download counter is sent in the background and drained on exit.
	pool := worker.NewPool(worker.Config{
		Workers:     1,
		QueueSize:   a.cfg.Worker.QueueSize,
		TaskTimeout: a.cfg.Worker.TaskTimeout,
	}, a.logger)
	pool.Start()
	defer func() {
		if err := pool.Stop(a.cfg.Worker.TaskTimeout); err != nil {
			a.logger.Warn("background tasks did not finish", "error", err)
		}
	}()

	svc := service.NewDownloadService(client, pool, a.cfg.Download, a.logger)
	saver := &fileSaver{dir: outDir}

	fmt.Fprintln(a.out, a.styles.Faint.Render(fmt.Sprintf("Requesting %s for %s ...", strings.ToLower(mediaType.Label()), link)))

	outcome, err := svc.Submit(cmd.Context(), svc.NewFormToken(), domain.DownloadRequest{URL: link, Type: mediaType}, saver)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}

	switch outcome.Kind {
	case domain.OutcomeFile:
		fmt.Fprintf(a.out, "%s %s (%s)\n",
			a.styles.Success.Render("Saved"),
			saver.path,
			humanize.Bytes(uint64(saver.written)),
		)
		return nil

	case domain.OutcomeJSON:
		msg := outcome.Message()
		if msg == "" {
			msg = "Download started!"
		}
		fmt.Fprintln(a.out, a.styles.Success.Render(msg))
		for _, kv := range outcomeDetails(outcome.JSON) {
			fmt.Fprintf(a.out, "  %s %s\n", a.styles.Label.Render(kv[0]), kv[1])
		}
		return nil

	default:
		fmt.Fprintln(a.errOut, a.styles.Error.Render("Error: "+outcome.Message()))
		if outcome.Failure != nil && outcome.Failure.Kind == domain.FailureInput {
			return &ExitError{Code: ExitCLIError}
		}
		return &ExitError{Code: ExitDownloadError}
	}
}

// outcomeDetails lists the JSON fields other than status and message,
// sorted by key.
func outcomeDetails(body map[string]any) [][2]string {
	var out [][2]string
	for k, v := range body {
		if k == "status" || k == "message" || v == nil {
			continue
		}
		out = append(out, [2]string{strings.ReplaceAll(k, "_", " "), fmt.Sprint(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
