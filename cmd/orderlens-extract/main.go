// Command orderlens-extract runs the order pipeline on one exported chat file
//
//	orderlens-extract -in KakaoTalk_chat.txt -shop 우국상 -start 2024-07-01 -end 2024-07-31 -csv out/
//
// The JSON result goes to stdout. LLM_* and EXTRACT_* env keys configure the pipeline
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"orderlens/internal/core/export"
	"orderlens/internal/core/normalize"
	"orderlens/internal/core/order"
	"orderlens/internal/modkit"
	"orderlens/internal/platform/config"
	perr "orderlens/internal/platform/errors"
	"orderlens/internal/platform/logger"
	"orderlens/internal/services/extract/domain"
	extractmod "orderlens/internal/services/extract/module"
)

func main() {
	var (
		in     = flag.String("in", "-", "transcript file, - for stdin")
		shop   = flag.String("shop", "", "shop name")
		start  = flag.String("start", "", "inclusive start date (YYYY-MM-DD or 2024년 7월 1일)")
		end    = flag.String("end", "", "inclusive end date")
		csvDir = flag.String("csv", "", "write the three CSV tables into this directory")
		diag   = flag.String("diag", "", "write model prompts and replies into this directory")
		pretty = flag.Bool("pretty", true, "indent JSON output")
	)
	flag.Parse()

	logger.Init(logger.FromEnv())
	l := logger.Named("extract-cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	text, err := readInput(*in)
	if err != nil {
		l.Fatal().Err(err).Str("in", *in).Msg("read transcript")
	}

	m := extractmod.New(modkit.Deps{Cfg: config.New(), Log: *logger.Get()}, extractmod.Options{DiagDir: *diag})
	analyzer := modkit.MustPortsOf[extractmod.Ports](m).Analyzer

	res, err := analyzer.Analyze(ctx, domain.Request{
		Text:      text,
		StartDate: *start,
		EndDate:   *end,
		ShopName:  *shop,
		JobID:     "cli",
	})
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNoData) {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
		l.Fatal().Err(err).Msg("analysis failed")
	}

	if err := writeJSON(os.Stdout, res, *pretty); err != nil {
		l.Fatal().Err(err).Msg("write result")
	}
	if *csvDir != "" {
		if err := writeCSV(*csvDir, res); err != nil {
			l.Fatal().Err(err).Str("dir", *csvDir).Msg("write csv")
		}
	}
}

func readInput(path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return normalize.Decode(b)
}

func writeJSON(w io.Writer, res order.Result, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

func writeCSV(dir string, res order.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, k := range export.Kinds {
		f, err := os.Create(filepath.Join(dir, k.String()+".csv"))
		if err != nil {
			return err
		}
		if err := export.Write(f, k, res); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
