package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/danh0999/Hokori-Learning-sub002/internal/i18n"
	"github.com/danh0999/Hokori-Learning-sub002/internal/quizimport"
)

var errRowsNeedFix = errors.New("some rows need fixing")

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quizimport",
		Short:        "Check quiz spreadsheets offline before uploading them",
		SilenceUsage: true,
	}
	root.AddCommand(validateCmd(), templateCmd())
	return root
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Parse a spreadsheet and print ready questions and rows that need fixing",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
	f := cmd.Flags()
	f.StringP("mode", "m", "QUIZ", "Import mode (QUIZ, JLPT)")
	f.String("default-type", "", "Question type used when a row leaves it empty")
	f.StringP("lang", "l", i18n.DefaultLang, "Language of issue messages (vi, en, ja)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.Bool("strict", false, "Exit non-zero when any row needs fixing")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the blank import template",
		Args:  cobra.NoArgs,
		RunE:  runTemplate,
	}
	f := cmd.Flags()
	f.StringP("output", "o", quizimport.TemplateFileName, "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), handlerOpts)
	default:
		logHandler = slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUIZIMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("quizimport")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizimport")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	}
	return v
}

func runValidate(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	mode, ok := quizimport.ParseMode(v.GetString("mode"))
	if !ok {
		return fmt.Errorf("unknown mode %q", v.GetString("mode"))
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	catalog, err := i18n.NewCatalog(i18n.DefaultLang)
	if err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	lang := catalog.Resolve(v.GetString("lang"))
	msgs := catalog.Messages(lang)

	res, err := quizimport.ParseWorkbook(data, quizimport.Options{
		Mode:                mode,
		DefaultQuestionType: strings.TrimSpace(v.GetString("default-type")),
		Messages:            &msgs,
	})
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	slog.Info("validated spreadsheet",
		"path", args[0], "mode", mode, "lang", lang,
		"ready", len(res.ReadyQuestions), "needs_fix", len(res.NeedsFix))

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := writeOutput(cmd, v.GetString("output"), append(out, '\n')); err != nil {
		return err
	}

	if v.GetBool("strict") && len(res.NeedsFix) > 0 {
		return fmt.Errorf("%w: %d row(s)", errRowsNeedFix, len(res.NeedsFix))
	}
	return nil
}

func runTemplate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	data, err := quizimport.Template()
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	path := v.GetString("output")
	if err := writeOutput(cmd, path, data); err != nil {
		return err
	}
	slog.Info("wrote template", "path", path, "bytes", len(data))
	return nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	var w io.Writer = cmd.OutOrStdout()
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
