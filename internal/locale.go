package internal

import "os"

// localeFromEnv returns the first of vars holding a real locale; "C" and
// "POSIX" carry no region and are skipped.
func localeFromEnv(vars ...string) string {
	for _, v := range vars {
		locale := os.Getenv(v)
		if locale != "" && locale != "C" && locale != "POSIX" {
			return locale
		}
	}
	return ""
}
