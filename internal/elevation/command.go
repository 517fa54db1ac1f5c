package elevation

import (
	"strings"
)

// Command returns the program and arguments that relaunch exe with args
// elevated on goos. On Windows the exit code of the elevated instance becomes
// the exit code of the PowerShell wrapper.
func Command(goos, exe string, args []string) (string, []string) {
	if goos != "windows" {
		return "sudo", append([]string{"--", exe}, args...)
	}

	var script strings.Builder

	script.WriteString("$p = Start-Process -FilePath ")
	script.WriteString(powerShellQuote(exe))

	if len(args) > 0 {
		script.WriteString(" -ArgumentList ")
		script.WriteString(powerShellQuote(CommandLine(args)))
	}

	script.WriteString(" -Verb RunAs -Wait -PassThru; exit $p.ExitCode")

	return "powershell.exe", []string{
		"-NoProfile",
		"-NonInteractive",
		"-ExecutionPolicy", "Bypass",
		"-Command", script.String(),
	}
}

// CommandLine joins args into a Windows command line, quoting each argument
// that contains whitespace or quotes so the child's argv matches args.
func CommandLine(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = quoteWindowsArg(arg)
	}

	return strings.Join(quoted, " ")
}

// quoteWindowsArg applies the CommandLineToArgvW rules: backslashes are
// literal unless they precede a quote.
func quoteWindowsArg(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\v\"") {
		return arg
	}

	var b strings.Builder

	b.WriteByte('"')

	slashes := 0

	for i := range len(arg) {
		switch c := arg[i]; c {
		case '\\':
			slashes++

			b.WriteByte(c)
		case '"':
			// Backslashes before a quote are doubled, then the quote is escaped.
			b.WriteString(strings.Repeat(`\`, slashes+1))
			b.WriteByte(c)

			slashes = 0
		default:
			slashes = 0

			b.WriteByte(c)
		}
	}

	// Trailing backslashes must be doubled before the closing quote.
	b.WriteString(strings.Repeat(`\`, slashes))
	b.WriteByte('"')

	return b.String()
}

// powerShellQuote wraps s in single quotes, where only ' needs escaping.
func powerShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
