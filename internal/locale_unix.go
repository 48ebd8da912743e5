//go:build !windows && !darwin

package internal

// skipSystemLocale has no effect on Unix, where env vars are the only source.
var skipSystemLocale = false

// detectSystemLocale returns the first usable of LC_MONETARY, LC_ALL and LANG.
func detectSystemLocale() string {
	return localeFromEnv("LC_MONETARY", "LC_ALL", "LANG")
}
