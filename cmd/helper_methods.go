package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/kaitiaki/internal/errors"
	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/utils"

	"github.com/briandowns/spinner"
)

// passphraseEnv is read when no passphrase flag is given.
const passphraseEnv = "KAITIAKI_PASSPHRASE"

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do not need trailing newlines; the cleanup function
// adds one before printing.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// passphraseSource is the set of passphrase flags a command registers.
type passphraseSource struct {
	file string
	ask  bool
}

func (p *passphraseSource) reset() {
	p.file = ""
	p.ask = false
}

// resolve returns the passphrase from --passphrase-file, KAITIAKI_PASSPHRASE
// or, with --ask-passphrase, an interactive prompt. An empty result means no
// passphrase, and gpg falls back to the agent.
func (p *passphraseSource) resolve(prompt string) (string, error) {
	if p.file != "" {
		data, err := os.ReadFile(p.file)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase file: %w", err)
		}
		line, _, _ := strings.Cut(string(data), "\n")
		return strings.TrimSuffix(line, "\r"), nil
	}
	if v := os.Getenv(passphraseEnv); v != "" {
		Logger.Debugf("Using passphrase from %s", passphraseEnv)
		return v, nil
	}
	if !p.ask {
		return "", nil
	}

	var (
		passphrase []byte
		err        error
	)
	if utils.IsTerminal() {
		passphrase, err = utils.ReadPassphrase(prompt)
	} else {
		// stdin may be carrying data; ask on the controlling terminal.
		passphrase, err = utils.ReadPassphraseFromTTY(prompt)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", kerrors.ErrPassphraseRequired, err)
	}
	return string(passphrase), nil
}

// formatError renders a workflow error as a spinner final message.
func formatError(action string, err error) string {
	switch {
	case errors.Is(err, kerrors.ErrEngineNotFound):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Install GnuPG or set " + ui.Code.Sprint("engine.binary") + " in the config"
	case errors.Is(err, kerrors.ErrHomedir), errors.Is(err, kerrors.ErrOutputDir):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("kaitiaki config init") + " to create it"
	case errors.Is(err, kerrors.ErrPassphraseRequired):
		return ui.Error.Sprint("✗") + " " + err.Error() + "\n" +
			ui.Info.Sprint("→") + " Use " + ui.Flag.Sprint("--passphrase-file") + " or set " + ui.Code.Sprint(passphraseEnv)
	default:
		return ui.Error.Sprint("✗") + " Failed to " + action + ": " + err.Error()
	}
}
