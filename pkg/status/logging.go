package status

import (
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 Logger provides user-friendly feedback about the publish pipeline.
// Everything goes to stderr so stdout stays reserved for the preview URL.
type Logger struct {
	log zerolog.Logger // for debug/error logging

	step    pterm.PrefixPrinter
	success pterm.PrefixPrinter
	warn    pterm.PrefixPrinter
	failure pterm.PrefixPrinter
}

// 🎯 NewLogger creates a new status logger
func NewLogger(ctx context.Context) *Logger {
	return &Logger{
		log:     *zerolog.Ctx(ctx),
		step:    *pterm.Info.WithWriter(os.Stderr).WithPrefix(pterm.Prefix{Text: "📤", Style: pterm.Info.Prefix.Style}),
		success: *pterm.Success.WithWriter(os.Stderr).WithPrefix(pterm.Prefix{Text: "✨", Style: pterm.Success.Prefix.Style}),
		warn:    *pterm.Warning.WithWriter(os.Stderr),
		failure: *pterm.Error.WithWriter(os.Stderr),
	}
}

// 📝 Step logs a pipeline step
func (u *Logger) Step(msg string) {
	u.step.Println(msg)
	u.log.Info().Msg(msg)
}

// ✅ Success logs a completed step
func (u *Logger) Success(msg string) {
	u.success.Println(msg)
	u.log.Info().Msg(msg)
}

// ⚠️ Warn logs a non-fatal problem
func (u *Logger) Warn(msg string) {
	u.warn.Println(msg)
	u.log.Warn().Msg(msg)
}

// 🔍 LogValidation logs validation results
func (u *Logger) LogValidation(valid bool, msg string, err error) {
	if valid {
		u.success.Println(msg)
		u.log.Info().Msg(msg)
		return
	}
	u.failure.Println(msg)
	if err != nil {
		u.failure.Println(err.Error())
		u.log.Error().Err(err).Msg(msg)
		return
	}
	u.log.Error().Msg(msg)
}
