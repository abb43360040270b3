package main

import (
	"io"
	"os"
	"strings"

	"github.com/Alia5/padlight/internal/config"
	"github.com/Alia5/padlight/internal/configpaths"
	"github.com/Alia5/padlight/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("padlight"),
		kong.Description("4x4 RGB keypad controller"),
		kong.UsageOnError(),
		// Flags and env override config file values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	simulated := ctx.Command() == "run" && cli.Run.Panel == "sim"
	logger, closeFiles, err := log.SetupLogger(log.Options{
		Level: cli.Log.Level,
		File:  cli.Log.File,
		Quiet: simulated,
	})
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	files := logFiles(closeFiles)
	defer files.Close()
	if simulated && cli.Log.File == "" {
		_, _ = os.Stderr.WriteString("simulator owns the terminal; use --log.file to keep logs\n")
	}

	var reports log.ReportLogger
	switch {
	case cli.Log.RawFile != "":
		f, err := os.OpenFile(cli.Log.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open raw log file", "file", cli.Log.RawFile, "error", err)
			reports = log.NewReport(nil)
		} else {
			reports = log.NewReport(f)
			files = append(files, f)
		}
	case cli.Log.Level == "trace" && !simulated:
		reports = log.NewReport(os.Stdout)
	default:
		reports = log.NewReport(nil)
	}

	ctx.Bind(logger)
	ctx.BindTo(reports, (*log.ReportLogger)(nil))

	if err = ctx.Run(); err != nil {
		// FatalIfErrorf exits without running deferred calls
		files.Close()
	}
	ctx.FatalIfErrorf(err)
}

// logFiles are the log outputs opened for this process.
type logFiles []io.Closer

// Close closes every file once.
func (l *logFiles) Close() {
	for _, c := range *l {
		_ = c.Close()
	}
	*l = nil
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("PADLIGHT_CONFIG")
}
