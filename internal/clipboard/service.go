package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/kvittering/kvittering/internal/config"
)

// Service reads listing URLs from and copies results to the system clipboard
type Service interface {
	// Read reads content from the system clipboard
	Read(ctx context.Context, cfg *config.Config) (string, error)

	// Write copies text to the system clipboard
	Write(ctx context.Context, text string, cfg *config.Config) error
}

// clipboardService implements the Service interface
type clipboardService struct {
	logger Logger
}

// Logger is satisfied by *slog.Logger
type Logger interface {
	Debug(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// NewService creates a new clipboard service
func NewService(logger Logger) Service {
	return &clipboardService{
		logger: logger,
	}
}

// Read returns the trimmed clipboard content. A configured command takes
// precedence over the system integration; OS tools are the last resort.
func (s *clipboardService) Read(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg != nil && cfg.Advanced.Clipboard.Command != "" {
		return s.readWithCommand(ctx, cfg.Advanced.Clipboard.Command)
	}

	text, err := clipboard.ReadAll()
	if err == nil {
		s.logger.Debug("read clipboard using primary method", "text_length", len(text))
		return strings.TrimSpace(text), nil
	}
	s.logger.Debug("primary clipboard read failed, trying system tools", "error", err)

	var parts []string
	switch runtime.GOOS {
	case "darwin":
		parts = []string{"pbpaste"}
	case "linux":
		// Try wl-paste (Wayland) first, then xclip, then xsel
		switch {
		case s.isWSL():
			parts = []string{"powershell.exe", "-command", "Get-Clipboard"}
		case s.commandExists("wl-paste"):
			parts = []string{"wl-paste", "--no-newline"}
		case s.commandExists("xclip"):
			parts = []string{"xclip", "-selection", "clipboard", "-o"}
		case s.commandExists("xsel"):
			parts = []string{"xsel", "--clipboard", "--output"}
		default:
			return "", fmt.Errorf("no clipboard tool found (install xclip, xsel, or wl-clipboard)")
		}
	case "windows":
		parts = []string{"powershell.exe", "-command", "Get-Clipboard"}
	default:
		return "", fmt.Errorf("clipboard reading not supported on %s", runtime.GOOS)
	}

	out, err := exec.CommandContext(ctx, parts[0], parts[1:]...).Output()
	if err != nil {
		return "", fmt.Errorf("failed to execute clipboard command: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (s *clipboardService) readWithCommand(ctx context.Context, command string) (string, error) {
	parts := parseCommand(command)
	if len(parts) == 0 {
		return "", fmt.Errorf("invalid clipboard command in config: %s", command)
	}

	out, err := exec.CommandContext(ctx, parts[0], parts[1:]...).Output()
	if err != nil {
		return "", fmt.Errorf("failed to execute clipboard command: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Write copies text using the configured copy command, the system
// integration, or the OS tools, in that order
func (s *clipboardService) Write(ctx context.Context, text string, cfg *config.Config) error {
	if cfg != nil && cfg.Advanced.Clipboard.CopyCommand != "" {
		return s.copyWithCommand(ctx, text, cfg.Advanced.Clipboard.CopyCommand)
	}

	err := clipboard.WriteAll(text)
	if err == nil {
		s.logger.Debug("successfully copied to clipboard using primary method", "text_length", len(text))
		return nil
	}
	s.logger.Warn("failed to copy to clipboard using primary method", "error", err)

	return s.copyWithDefault(ctx, text)
}

// copyWithDefault copies text using default system clipboard utilities
func (s *clipboardService) copyWithDefault(ctx context.Context, text string) error {
	var parts []string

	switch runtime.GOOS {
	case "windows":
		parts = []string{"clip.exe"}
	case "darwin":
		parts = []string{"pbcopy"}
	case "linux":
		switch {
		case s.isWSL():
			// On WSL, use Windows clip.exe to interface with the Windows clipboard
			parts = []string{"clip.exe"}
		case s.commandExists("wl-copy"):
			parts = []string{"wl-copy"}
		case s.commandExists("xclip"):
			parts = []string{"xclip", "-selection", "clipboard"}
		case s.commandExists("xsel"):
			parts = []string{"xsel", "--clipboard", "--input"}
		default:
			return errors.New("no clipboard tool found (install xclip, xsel, or wl-clipboard)")
		}
	default:
		return fmt.Errorf("clipboard writing not supported on %s", runtime.GOOS)
	}

	return s.run(ctx, text, parts)
}

// copyWithCommand copies text using a specified command
func (s *clipboardService) copyWithCommand(ctx context.Context, text, command string) error {
	parts := parseCommand(command)
	if len(parts) == 0 {
		return fmt.Errorf("invalid clipboard copy command in config: %s", command)
	}
	return s.run(ctx, text, parts)
}

func (s *clipboardService) run(ctx context.Context, text string, parts []string) error {
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Stdin = strings.NewReader(text)

	s.logger.Debug("attempting clipboard command", "command_parts", parts, "text_length", len(text))

	if err := cmd.Run(); err != nil {
		s.logger.Error("failed to copy to clipboard",
			"error", err,
			"os", runtime.GOOS,
			"command", parts[0],
			"text_length", len(text))
		return fmt.Errorf("failed to copy to clipboard with %s: %w", parts[0], err)
	}
	return nil
}

// parseCommand parses a command string into executable parts, respecting quotes
func parseCommand(command string) []string {
	var parts []string
	var current strings.Builder
	var inQuotes bool
	var quoteChar rune

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}

	for _, char := range command {
		switch {
		case char == '\'' || char == '"':
			if !inQuotes {
				inQuotes = true
				quoteChar = char
			} else if char == quoteChar {
				inQuotes = false
			} else {
				current.WriteRune(char)
			}
		case (char == ' ' || char == '\t') && !inQuotes:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()

	return parts
}

// isWSL checks if the application is running in Windows Subsystem for Linux
func (s *clipboardService) isWSL() bool {
	versionBytes, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	version := strings.ToLower(string(versionBytes))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// commandExists checks if a command exists on the system
func (s *clipboardService) commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
