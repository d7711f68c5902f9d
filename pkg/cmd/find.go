package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"golang.org/x/term"

	"gofileio/pkg/errors"
	"gofileio/pkg/fileio"
	"gofileio/pkg/metrics"
	"gofileio/pkg/types"
)

// proxyDecorator is used for dynamic progress bar text
type proxyDecorator struct {
	mu   sync.Mutex
	text string
}

func (p *proxyDecorator) Decor(ctx decor.Statistics) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}
func (p *proxyDecorator) Sync() (chan int, bool) { return nil, false }
func (p *proxyDecorator) GetConf() decor.WC      { return decor.WC{} }
func (p *proxyDecorator) SetConf(wc decor.WC)    {}
func (p *proxyDecorator) SetText(s string) {
	p.mu.Lock()
	p.text = s
	p.mu.Unlock()
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <start-dir> <target> [target...]",
		Short: "Breadth-first search below start-dir for each target path",
		Long: `Search start-dir and its subdirectories, shallowest first, for a relative file path.
The first match is printed relative to the base directory. With several targets the
searches run concurrently, bounded by --max-parallel.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFind(cmd.OutOrStdout(), args[0], args[1:])
		},
	}
}

// showProgress decides whether progress bars are drawn on out
func (a *app) showProgress(out io.Writer) bool {
	switch a.cfg.Progress {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// runFind searches for every target concurrently and prints results in
// argument order.
func (a *app) runFind(out io.Writer, startDir string, targets []string) error {
	var p *mpb.Progress
	if a.showProgress(out) {
		p = mpb.New(mpb.WithWidth(60), mpb.WithOutput(os.Stderr))
	}

	sem := make(chan struct{}, a.cfg.MaxParallel)
	var wg sync.WaitGroup
	results := make([]types.TargetResult, len(targets))

	for i, target := range targets {
		wg.Add(1)
		sem <- struct{}{}

		var bar *mpb.Bar
		phase := &proxyDecorator{text: "queued"}
		if p != nil {
			bar = p.New(
				1,
				mpb.BarStyle().Rbound("|"),
				mpb.PrependDecorators(
					decor.Name(fmt.Sprintf("%-18s", truncate(target, 18)), decor.WC{W: 20, C: decor.DidentRight}),
				),
				mpb.AppendDecorators(
					decor.CountersNoUnit("%d/%d dirs", decor.WC{W: 14}),
					decor.Name(" "),
					decor.Elapsed(decor.ET_STYLE_GO, decor.WC{W: 4}),
					decor.Name(" "),
					phase,
				),
			)
		}

		go func(i int, target string, bar *mpb.Bar, phase *proxyDecorator) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					if bar != nil {
						bar.Abort(false)
					}
					log.Error().Interface("panic", r).Stack().Str("target", target).Msg("search goroutine panic")
					results[i] = types.TargetResult{Target: target, Err: errors.FileErrorf("panic: %v", r)}
				}
			}()

			onVisit := func(dir string, visited, pending int) {
				phase.SetText(dir)
				if bar != nil {
					// +1 keeps the bar open while the current directory is searched
					bar.SetTotal(int64(visited+pending+1), false)
					bar.SetCurrent(int64(visited))
				}
			}
			finder := a.fio.Finder(
				fileio.WithSkipUnreadable(a.cfg.SkipUnreadable),
				fileio.WithCycleDetection(a.cfg.DetectCycles),
				fileio.WithVisitFunc(onVisit),
			)

			res, err := finder.Find(startDir, target)
			results[i] = types.TargetResult{Target: target, Result: res, Err: err}

			l := log.With().Str("target", target).Str("start", startDir).Logger()
			switch {
			case err != nil:
				l.Error().Err(err).Msg("search failed")
				if bar != nil {
					bar.Abort(false)
				}
				return
			case res.Found():
				l.Info().Str("path", res.BaseRelPath).Int("visited", res.Stats.Visited).
					Dur("took", res.Stats.Duration).Msg("target found")
			default:
				l.Info().Int("visited", res.Stats.Visited).Msg("target not found")
			}
			if bar != nil {
				bar.SetTotal(-1, true)
			}
		}(i, target, bar, phase)
	}

	wg.Wait()
	if p != nil {
		p.Wait()
	}

	if a.cfg.MetricsFile != "" {
		if err := a.exportMetrics(results); err != nil {
			log.Error().Err(err).Msg("failed to export Prometheus metrics")
		} else {
			log.Info().Str("file", a.cfg.MetricsFile).Msg("Prometheus metrics written")
		}
	}

	return reportFind(out, results)
}

// reportFind prints one line per target and turns misses into an error
func reportFind(out io.Writer, results []types.TargetResult) error {
	if len(results) == 1 {
		r := results[0]
		if r.Err != nil {
			return r.Err
		}
		if !r.Result.Found() {
			return errors.FileNotFoundError(r.Target)
		}
		fmt.Fprintln(out, r.Result.BaseRelPath)
		return nil
	}

	var missing []string
	var firstErr error
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "%s\terror: %v\n", r.Target, r.Err)
			if firstErr == nil {
				firstErr = r.Err
			}
		case r.Result.Found():
			fmt.Fprintf(out, "%s\t%s\n", r.Target, r.Result.BaseRelPath)
		default:
			fmt.Fprintf(out, "%s\tnot found\n", r.Target)
			missing = append(missing, r.Target)
		}
	}
	if firstErr != nil {
		return firstErr
	}
	if len(missing) > 0 {
		return errors.FileNotFoundError(strings.Join(missing, ", ")).
			WithContext("missing", len(missing)).
			WithContext("total", len(results))
	}
	return nil
}

func (a *app) exportMetrics(results []types.TargetResult) error {
	text, err := metrics.NewPrometheusExporter().ExportMetrics(results)
	if err != nil {
		return err
	}
	return a.fio.WriteFileWith(a.cfg.MetricsFile, text, types.FileProperties{OverrideFiles: true})
}

// truncate keeps the last n-1 runes of s behind an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}
