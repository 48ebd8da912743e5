//go:build darwin

package internal

import (
	"os/exec"
	"strings"
)

// skipSystemLocale disables the AppleLocale lookup so tests only see env vars.
var skipSystemLocale = false

// detectSystemLocale checks the locale env vars first, so a terminal override
// wins, then falls back to the AppleLocale preference ("en_US", "sv_SE").
func detectSystemLocale() string {
	if locale := localeFromEnv("LC_MONETARY", "LC_ALL", "LANG"); locale != "" {
		return locale
	}
	if skipSystemLocale {
		return ""
	}

	out, err := exec.Command("defaults", "read", "-g", "AppleLocale").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
